package physics

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// Settings holds every tunable of the simulation. The zero value is not
// usable; start from DefaultSettings.
type Settings struct {
	Gravity         float32 `yaml:"gravity"`
	Restitution     float32 `yaml:"restitution"`
	GroundFriction  float32 `yaml:"ground_friction"`
	AirFriction     float32 `yaml:"air_friction"`
	GroundTolerance float32 `yaml:"ground_tolerance"`

	Player  PlayerSettings  `yaml:"player"`
	Raycast RaycastSettings `yaml:"raycast"`
}

// PlayerSettings describes the capsule used by the player-vs-object path.
type PlayerSettings struct {
	Radius  float32        `yaml:"radius"`
	Height  float32        `yaml:"height"`
	Damping float32        `yaml:"damping"` // applied to the whole velocity after a contact
	Group   CollisionGroup `yaml:"group"`
	Mask    CollisionGroup `yaml:"mask"`
}

type RaycastSettings struct {
	TerrainSteps int     `yaml:"terrain_steps"`
	NormalOffset float32 `yaml:"normal_offset"`
}

func DefaultSettings() Settings {
	return Settings{
		Gravity:         -20.0,
		Restitution:     0.3,
		GroundFriction:  0.9,
		AirFriction:     0.98,
		GroundTolerance: 0.1,
		Player: PlayerSettings{
			Radius:  0.5,
			Height:  1.8,
			Damping: 0.8,
			Group:   GroupPlayer,
			Mask:    GroupEnemy,
		},
		Raycast: RaycastSettings{
			TerrainSteps: 10,
			NormalOffset: 0.1,
		},
	}
}

// Validate rejects settings that would turn later math into NaNs or make the
// simulation gain energy.
func (s Settings) Validate() error {
	var errs []error
	finite := []struct {
		name string
		v    float32
	}{
		{"gravity", s.Gravity},
		{"restitution", s.Restitution},
		{"ground_friction", s.GroundFriction},
		{"air_friction", s.AirFriction},
		{"ground_tolerance", s.GroundTolerance},
		{"player.radius", s.Player.Radius},
		{"player.height", s.Player.Height},
		{"player.damping", s.Player.Damping},
		{"raycast.normal_offset", s.Raycast.NormalOffset},
	}
	for _, f := range finite {
		if !isFinite(f.v) {
			errs = append(errs, fmt.Errorf("%s is not finite", f.name))
		}
	}
	if s.Restitution < 0 || s.Restitution > 1 {
		errs = append(errs, fmt.Errorf("restitution %v outside [0,1]", s.Restitution))
	}
	if s.GroundFriction <= 0 || s.GroundFriction > 1 {
		errs = append(errs, fmt.Errorf("ground_friction %v outside (0,1]", s.GroundFriction))
	}
	if s.AirFriction <= 0 || s.AirFriction > 1 {
		errs = append(errs, fmt.Errorf("air_friction %v outside (0,1]", s.AirFriction))
	}
	if s.GroundTolerance < 0 {
		errs = append(errs, fmt.Errorf("ground_tolerance %v is negative", s.GroundTolerance))
	}
	if s.Player.Radius <= 0 {
		errs = append(errs, fmt.Errorf("player.radius %v must be positive", s.Player.Radius))
	}
	if s.Player.Height <= 0 {
		errs = append(errs, fmt.Errorf("player.height %v must be positive", s.Player.Height))
	}
	if s.Player.Damping < 0 || s.Player.Damping > 1 {
		errs = append(errs, fmt.Errorf("player.damping %v outside [0,1]", s.Player.Damping))
	}
	if s.Raycast.TerrainSteps < 1 {
		errs = append(errs, fmt.Errorf("raycast.terrain_steps %d must be at least 1", s.Raycast.TerrainSteps))
	}
	if s.Raycast.NormalOffset <= 0 {
		errs = append(errs, fmt.Errorf("raycast.normal_offset %v must be positive", s.Raycast.NormalOffset))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

func isFinite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
