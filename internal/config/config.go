// Package config loads the simulator's YAML configuration. Defaults are
// applied before decoding, so a file only needs the keys it changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"arenaphys/internal/logging"
	"arenaphys/internal/physics"
	"arenaphys/internal/terrain"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Log     LogConfig        `yaml:"log"`
	Sim     SimConfig        `yaml:"sim"`
	Physics physics.Settings `yaml:"physics"`
	Terrain terrain.Config   `yaml:"terrain"`
	Arena   ArenaConfig      `yaml:"arena"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

type SimConfig struct {
	TickRate int     `yaml:"tick_rate"`
	MaxDelta float32 `yaml:"max_delta"` // seconds; larger frame deltas are clamped
	Ticks    int     `yaml:"ticks"`     // 0 runs until interrupted
}

// ArenaConfig drives what the demo spawns.
type ArenaConfig struct {
	Seed            int64   `yaml:"seed"`
	Radius          float32 `yaml:"radius"`
	Enemies         int     `yaml:"enemies"`
	Pickups         int     `yaml:"pickups"`
	PlayerSpeed     float32 `yaml:"player_speed"`
	EnemySpeed      float32 `yaml:"enemy_speed"`
	ProjectileSpeed float32 `yaml:"projectile_speed"`
	FireEvery       int     `yaml:"fire_every"` // ticks between shots, 0 never fires
	RayDistance     float32 `yaml:"ray_distance"`
}

func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		Sim:     SimConfig{TickRate: 60, MaxDelta: 0.1, Ticks: 600},
		Physics: physics.DefaultSettings(),
		Terrain: terrain.DefaultConfig(),
		Arena: ArenaConfig{
			Seed:            1,
			Radius:          30,
			Enemies:         20,
			Pickups:         10,
			PlayerSpeed:     4,
			EnemySpeed:      3,
			ProjectileSpeed: 30,
			FireEvery:       30,
			RayDistance:     100,
		},
	}
}

// Parse decodes data over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if !logging.ValidFormat(c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	if c.Sim.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("sim.tick_rate %d must be positive", c.Sim.TickRate))
	}
	if !(c.Sim.MaxDelta > 0) {
		errs = append(errs, fmt.Errorf("sim.max_delta %v must be positive", c.Sim.MaxDelta))
	}
	if c.Sim.Ticks < 0 {
		errs = append(errs, fmt.Errorf("sim.ticks %d is negative", c.Sim.Ticks))
	}
	if err := c.Physics.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Terrain.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !(c.Arena.Radius > 0) {
		errs = append(errs, fmt.Errorf("arena.radius %v must be positive", c.Arena.Radius))
	}
	if c.Arena.Enemies < 0 || c.Arena.Pickups < 0 {
		errs = append(errs, errors.New("arena spawn counts must not be negative"))
	}
	if c.Arena.PlayerSpeed < 0 || c.Arena.EnemySpeed < 0 || c.Arena.ProjectileSpeed < 0 {
		errs = append(errs, errors.New("arena speeds must not be negative"))
	}
	if c.Arena.FireEvery > 0 && !(c.Arena.RayDistance > 0) {
		errs = append(errs, fmt.Errorf("arena.ray_distance %v must be positive when firing", c.Arena.RayDistance))
	}
	if c.Arena.FireEvery < 0 {
		errs = append(errs, fmt.Errorf("arena.fire_every %d is negative", c.Arena.FireEvery))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// TickDelta is the fixed step implied by tick_rate, clamped to max_delta.
func (c Config) TickDelta() float32 {
	dt := 1 / float32(c.Sim.TickRate)
	if dt > c.Sim.MaxDelta {
		dt = c.Sim.MaxDelta
	}
	return dt
}
