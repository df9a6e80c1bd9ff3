package physics

import (
	"errors"
	"strings"
	"testing"

	"github.com/chewxy/math32"
)

func TestDefaultSettingsValid(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("default settings rejected: %v", err)
	}
}

func TestSettingsValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"restitution above one", func(s *Settings) { s.Restitution = 1.5 }},
		{"negative restitution", func(s *Settings) { s.Restitution = -0.1 }},
		{"zero ground friction", func(s *Settings) { s.GroundFriction = 0 }},
		{"air friction above one", func(s *Settings) { s.AirFriction = 1.2 }},
		{"negative tolerance", func(s *Settings) { s.GroundTolerance = -1 }},
		{"zero player radius", func(s *Settings) { s.Player.Radius = 0 }},
		{"zero player height", func(s *Settings) { s.Player.Height = 0 }},
		{"negative damping", func(s *Settings) { s.Player.Damping = -0.1 }},
		{"no terrain steps", func(s *Settings) { s.Raycast.TerrainSteps = 0 }},
		{"zero normal offset", func(s *Settings) { s.Raycast.NormalOffset = 0 }},
		{"NaN gravity", func(s *Settings) { s.Gravity = math32.NaN() }},
		{"infinite gravity", func(s *Settings) { s.Gravity = math32.Inf(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestSettingsValidateReportsEveryProblem(t *testing.T) {
	s := DefaultSettings()
	s.Restitution = 2
	s.Raycast.TerrainSteps = 0

	err := s.Validate()
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, field := range []string{"restitution", "raycast.terrain_steps"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestSettingsZeroGravityAllowed(t *testing.T) {
	s := DefaultSettings()
	s.Gravity = 0
	if err := s.Validate(); err != nil {
		t.Errorf("zero gravity should be valid: %v", err)
	}
}
