package terrain

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/chewxy/math32"
)

// Provider answers height queries for the physics world. Height must be
// defined for every finite (x, z).
type Provider interface {
	Height(x, z float32) float32
}

const (
	KindFlat   = "flat"
	KindWaves  = "waves"
	KindNoise  = "noise"
	KindScript = "script"
)

var (
	ErrUnknownKind   = errors.New("unknown terrain kind")
	ErrInvalidConfig = errors.New("invalid terrain config")
)

// Config selects and tunes a provider. Only the fields of the chosen kind are
// read.
type Config struct {
	Kind       string  `yaml:"kind"`
	Level      float32 `yaml:"level"`
	Amplitude  float32 `yaml:"amplitude"`
	Wavelength float32 `yaml:"wavelength"`

	Seed       int64   `yaml:"seed"`
	Octaves    int     `yaml:"octaves"`
	Lacunarity float32 `yaml:"lacunarity"`
	Gain       float32 `yaml:"gain"`
	Scale      float32 `yaml:"scale"`

	Script string `yaml:"script"`

	Bake BakeConfig `yaml:"bake"`
}

// BakeConfig samples the provider into a HeightMap once at load when Size > 0.
type BakeConfig struct {
	Size     int     `yaml:"size"`
	CellSize float32 `yaml:"cell_size"`
}

func DefaultConfig() Config {
	return Config{
		Kind:       KindFlat,
		Amplitude:  4,
		Wavelength: 40,
		Seed:       7,
		Octaves:    4,
		Lacunarity: 2,
		Gain:       0.5,
		Scale:      0.02,
		Bake:       BakeConfig{CellSize: 1},
	}
}

func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Kind) {
	case KindFlat:
	case KindWaves:
		if !(c.Wavelength > 0) {
			errs = append(errs, fmt.Errorf("wavelength %v must be positive", c.Wavelength))
		}
	case KindNoise:
		if c.Octaves < 1 {
			errs = append(errs, fmt.Errorf("octaves %d must be at least 1", c.Octaves))
		}
		if !(c.Scale > 0) {
			errs = append(errs, fmt.Errorf("scale %v must be positive", c.Scale))
		}
	case KindScript:
		if strings.TrimSpace(c.Script) == "" {
			errs = append(errs, errors.New("script is empty"))
		}
	default:
		return fmt.Errorf("terrain: %w: %q", ErrUnknownKind, c.Kind)
	}
	for _, v := range []float32{c.Level, c.Amplitude, c.Wavelength, c.Lacunarity, c.Gain, c.Scale} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			errs = append(errs, errors.New("terrain parameters must be finite"))
			break
		}
	}
	if c.Bake.Size < 0 || c.Bake.Size == 1 {
		errs = append(errs, fmt.Errorf("bake.size %d must be 0 or at least 2", c.Bake.Size))
	}
	if c.Bake.Size > 0 && !(c.Bake.CellSize > 0) {
		errs = append(errs, fmt.Errorf("bake.cell_size %v must be positive", c.Bake.CellSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("terrain: %w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// New builds the provider described by cfg.
func New(cfg Config, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var p Provider
	switch strings.ToLower(cfg.Kind) {
	case KindFlat:
		p = Flat{Level: cfg.Level}
	case KindWaves:
		p = Waves{Level: cfg.Level, Amplitude: cfg.Amplitude, Wavelength: cfg.Wavelength}
	case KindNoise:
		p = &Noise{
			Level:      cfg.Level,
			Amplitude:  cfg.Amplitude,
			Scale:      cfg.Scale,
			Seed:       cfg.Seed,
			Octaves:    cfg.Octaves,
			Lacunarity: cfg.Lacunarity,
			Gain:       cfg.Gain,
		}
	case KindScript:
		s, err := NewScript(cfg.Script, logger)
		if err != nil {
			return nil, err
		}
		p = s
	}

	if cfg.Bake.Size > 0 {
		hm, err := Bake(p, cfg.Bake.Size, cfg.Bake.CellSize)
		if err != nil {
			return nil, err
		}
		logger.Info("Terrain: baked height map", "kind", cfg.Kind, "size", cfg.Bake.Size, "cell_size", cfg.Bake.CellSize)
		return hm, nil
	}
	logger.Info("Terrain: provider ready", "kind", cfg.Kind)
	return p, nil
}

// Flat is a level plane.
type Flat struct {
	Level float32
}

func (f Flat) Height(x, z float32) float32 {
	return f.Level
}

// Waves layers two sine ridges, the second running diagonally at half the
// wavelength and half the amplitude.
type Waves struct {
	Level      float32
	Amplitude  float32
	Wavelength float32
}

func (w Waves) Height(x, z float32) float32 {
	if !(w.Wavelength > 0) {
		return w.Level
	}
	k := 2 * math.Pi / w.Wavelength
	wave1 := math32.Sin(x*k) * w.Amplitude
	wave2 := math32.Sin((x+z)*2*k) * w.Amplitude / 2
	return w.Level + wave1 + wave2
}
