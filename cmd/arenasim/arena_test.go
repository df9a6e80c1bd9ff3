package main

import (
	"context"
	"testing"

	"arenaphys/internal/config"
	"arenaphys/internal/logging"
	"arenaphys/internal/physics"
	"arenaphys/internal/terrain"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// quietConfig is an empty flat arena with no scripted movement or firing.
func quietConfig() config.Config {
	cfg := config.Default()
	cfg.Terrain = terrain.DefaultConfig()
	cfg.Arena.Enemies = 0
	cfg.Arena.Pickups = 0
	cfg.Arena.PlayerSpeed = 0
	cfg.Arena.EnemySpeed = 0
	cfg.Arena.FireEvery = 0
	return cfg
}

func newTestArena(t *testing.T, cfg config.Config) *arena {
	t.Helper()
	a, err := newArena(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("newArena: %v", err)
	}
	return a
}

func TestArenaProjectileKillsEnemy(t *testing.T) {
	a := newTestArena(t, quietConfig())
	if _, err := a.spawnEnemy(rl.Vector3{X: 5}); err != nil {
		t.Fatal(err)
	}
	a.step(a.cfg.TickDelta())

	if !a.fire() {
		t.Fatal("expected a clear shot at the enemy")
	}
	for i := 0; i < 60 && a.stats.Kills == 0; i++ {
		a.step(a.cfg.TickDelta())
	}

	if a.stats.Kills != 1 || a.stats.Shots != 1 {
		t.Fatalf("stats = %+v", a.stats)
	}
	if a.world.Len() != 0 {
		t.Errorf("enemy and shell should both be gone, %d bodies left", a.world.Len())
	}
	if n := len(a.scene.FindByTag("enemy")) + len(a.scene.FindByTag("projectile")); n != 0 {
		t.Errorf("%d objects left in the scene", n)
	}
}

func TestArenaFireNeedsLineOfSight(t *testing.T) {
	cfg := quietConfig()
	a := newTestArena(t, cfg)
	if a.fire() {
		t.Error("no enemies, nothing to fire at")
	}

	// A hill between the player and the enemy blocks the ray.
	a.world.SetTerrain(func(x, z float32) float32 {
		if x > 2 && x < 3 {
			return 10
		}
		return 0
	})
	if _, err := a.spawnEnemy(rl.Vector3{X: 8}); err != nil {
		t.Fatal(err)
	}
	if a.fire() {
		t.Error("terrain should block the shot")
	}
	if a.stats.Shots != 0 {
		t.Errorf("shots = %d", a.stats.Shots)
	}
}

func TestArenaPickupCollected(t *testing.T) {
	cfg := quietConfig()
	cfg.Physics.Player.Mask = physics.GroupEnemy | physics.GroupPickup
	a := newTestArena(t, cfg)
	if _, err := a.spawnPickup(rl.Vector3{X: 0.6}); err != nil {
		t.Fatal(err)
	}

	a.step(a.cfg.TickDelta())

	if a.stats.Pickups != 1 {
		t.Fatalf("pickups = %d", a.stats.Pickups)
	}
	if a.world.Len() != 0 || len(a.scene.FindByTag("pickup")) != 0 {
		t.Error("collected pickup should be removed")
	}
}

func TestArenaRunKeepsSceneAndWorldInSync(t *testing.T) {
	cfg := config.Default()
	cfg.Sim.Ticks = 120
	cfg.Arena.Enemies = 8
	cfg.Arena.Pickups = 4
	cfg.Arena.FireEvery = 10
	a := newTestArena(t, cfg)

	a.run(context.Background(), nil, nil, false)

	if a.tick != 120 {
		t.Errorf("ran %d ticks, want 120", a.tick)
	}
	// Every scene object except the player has exactly one body.
	if got, want := a.world.Len(), len(a.scene.GameObjects)-1; got != want {
		t.Errorf("world has %d bodies, scene has %d objects", got, want)
	}
	for _, g := range a.scene.GameObjects {
		if g == a.player.GameObject {
			continue
		}
		if a.world.Body(g) == nil {
			t.Errorf("%s has no body", g.Name)
		}
	}
}

func TestArenaRunStopsOnCancel(t *testing.T) {
	cfg := quietConfig()
	cfg.Sim.Ticks = 0
	a := newTestArena(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a.run(ctx, nil, nil, false)

	if a.tick != 0 {
		t.Errorf("cancelled run ticked %d times", a.tick)
	}
}

func TestArenaReload(t *testing.T) {
	a := newTestArena(t, quietConfig())

	next := quietConfig()
	next.Physics.Gravity = -5
	next.Terrain.Level = 3
	reloads := make(chan config.Config, 1)
	reloads <- next
	a.drain(reloads, nil)

	if g := a.world.Settings().Gravity; g != -5 {
		t.Errorf("gravity = %v, want -5", g)
	}
	if h := a.world.TerrainHeight(4, 4); h != 3 {
		t.Errorf("terrain height = %v, want 3", h)
	}

	bad := next
	bad.Physics.Restitution = 5
	a.reload(bad)
	if r := a.world.Settings().Restitution; r != 0.3 {
		t.Errorf("invalid reload applied, restitution = %v", r)
	}
}

func TestClampDelta(t *testing.T) {
	tests := []struct {
		name      string
		dt, limit float32
		want      float32
	}{
		{"in range", 0.016, 0.1, 0.016},
		{"long frame", 0.5, 0.1, 0.1},
		{"negative", -1, 0.1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampDelta(tt.dt, tt.limit); got != tt.want {
				t.Errorf("clampDelta(%v, %v) = %v, want %v", tt.dt, tt.limit, got, tt.want)
			}
		})
	}
}
