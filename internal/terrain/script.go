package terrain

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

var ErrNoHeight = errors.New("script does not define height")

// Script evaluates a tengo program per query. The program reads the globals
// x and z and must assign height. The "math" module is importable.
//
//	math := import("math")
//	height := 3 * math.sin(x / 10) * math.cos(z / 10)
type Script struct {
	compiled *tengo.Compiled
	logger   *slog.Logger
	warned   bool

	// Fallback is returned when an evaluation fails.
	Fallback float32
}

// NewScript compiles src and evaluates it once at the origin to check that it
// defines height.
func NewScript(src string, logger *slog.Logger) (*Script, error) {
	if logger == nil {
		logger = slog.Default()
	}
	script := tengo.NewScript([]byte(src))
	_ = script.Add("x", 0.0)
	_ = script.Add("z", 0.0)
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("terrain: compile script: %w", err)
	}
	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("terrain: run script: %w", err)
	}
	if !compiled.IsDefined("height") {
		return nil, fmt.Errorf("terrain: %w", ErrNoHeight)
	}
	return &Script{compiled: compiled, logger: logger}, nil
}

// Height never fails: runtime errors and non-numeric or non-finite results
// yield Fallback, and the first such failure is logged.
func (s *Script) Height(x, z float32) float32 {
	h, err := s.eval(x, z)
	if err != nil {
		if !s.warned {
			s.warned = true
			s.logger.Warn("Terrain: script evaluation failed, using fallback height",
				"x", x, "z", z, "fallback", s.Fallback, "error", err)
		}
		return s.Fallback
	}
	return h
}

func (s *Script) eval(x, z float32) (float32, error) {
	if err := s.compiled.Set("x", float64(x)); err != nil {
		return 0, err
	}
	if err := s.compiled.Set("z", float64(z)); err != nil {
		return 0, err
	}
	if err := s.compiled.Run(); err != nil {
		return 0, err
	}
	v := s.compiled.Get("height")
	switch v.ValueType() {
	case "float", "int":
	default:
		return 0, fmt.Errorf("height is %s, not a number", v.ValueType())
	}
	h := float32(v.Float())
	if math32.IsNaN(h) || math32.IsInf(h, 0) {
		return 0, fmt.Errorf("height %v is not finite", h)
	}
	return h, nil
}
