package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"arenaphys/internal/config"
	"arenaphys/internal/engine"
	"arenaphys/internal/physics"
	"arenaphys/internal/terrain"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	enemyRadius      = 0.5
	enemyHeight      = 1.8
	enemyMass        = 2.0
	pickupRadius     = 0.3
	pickupMass       = 0.5
	pickupDrop       = 1.0 // spawn height above the ground
	projectileRadius = 0.15
	projectileMass   = 0.1
	eyeLevel         = 0.8 // fraction of the player height
)

type stats struct {
	Shots    int
	Kills    int
	Pickups  int
	Contacts int
}

// arena is the gameplay side of the demo: it owns the scene, spawns and
// steers objects and reacts to contacts. Physics only sees bodies.
type arena struct {
	cfg    config.Config
	logger *slog.Logger
	world  *physics.World
	scene  *engine.Scene
	player *engine.Player
	rng    *rand.Rand

	tick  int
	stats stats
}

func newArena(cfg config.Config, logger *slog.Logger) (*arena, error) {
	provider, err := terrain.New(cfg.Terrain, logger)
	if err != nil {
		return nil, err
	}

	player := engine.NewPlayer("Player", rl.Vector3{Y: provider.Height(0, 0)})
	world, err := physics.NewWorld(cfg.Physics,
		physics.WithLogger(logger),
		physics.WithTerrain(provider.Height),
		physics.WithPlayer(player),
	)
	if err != nil {
		return nil, err
	}

	a := &arena{
		cfg:    cfg,
		logger: logger,
		world:  world,
		scene:  engine.NewScene("Arena"),
		player: player,
		rng:    rand.New(rand.NewSource(cfg.Arena.Seed)),
	}
	a.scene.AddGameObject(player.GameObject)
	a.scene.OnRemoved.AddListener(func(g *engine.GameObject) {
		a.world.RemoveObject(g)
	})
	a.world.OnContact(a.onContact)

	for i := 0; i < cfg.Arena.Enemies; i++ {
		if _, err := a.spawnEnemy(a.randomPoint()); err != nil {
			return nil, err
		}
	}
	for i := 0; i < cfg.Arena.Pickups; i++ {
		if _, err := a.spawnPickup(a.randomPoint()); err != nil {
			return nil, err
		}
	}

	logger.Info("Arena: ready",
		"terrain", cfg.Terrain.Kind, "enemies", cfg.Arena.Enemies, "pickups", cfg.Arena.Pickups, "bodies", world.Len())
	return a, nil
}

// randomPoint picks a spot on the arena disc away from the player spawn.
func (a *arena) randomPoint() rl.Vector3 {
	r := a.cfg.Arena.Radius * (0.2 + 0.8*math32.Sqrt(a.rng.Float32()))
	theta := a.rng.Float32() * 2 * math.Pi
	return rl.Vector3{X: r * math32.Cos(theta), Z: r * math32.Sin(theta)}
}

func (a *arena) spawn(tag string, pos rl.Vector3, radius, height, mass float32, group, mask physics.CollisionGroup, opts ...physics.BodyOption) (*engine.GameObject, error) {
	g := engine.NewGameObject(tag)
	g.Name = fmt.Sprintf("%s-%d", tag, g.UID)
	g.Tags = []string{tag}
	g.Transform.Position = pos
	if _, err := a.world.AddObject(g, radius, height, mass, group, mask, opts...); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", g.Name, err)
	}
	a.scene.AddGameObject(g)
	return g, nil
}

func (a *arena) spawnEnemy(at rl.Vector3) (*engine.GameObject, error) {
	at.Y = a.world.TerrainHeight(at.X, at.Z) + enemyRadius
	return a.spawn("enemy", at, enemyRadius, enemyHeight, enemyMass,
		physics.GroupEnemy, physics.GroupTerrain|physics.GroupEnemy|physics.GroupProjectile)
}

func (a *arena) spawnPickup(at rl.Vector3) (*engine.GameObject, error) {
	at.Y = a.world.TerrainHeight(at.X, at.Z) + pickupRadius + pickupDrop
	return a.spawn("pickup", at, pickupRadius, 2*pickupRadius, pickupMass,
		physics.GroupPickup, physics.GroupTerrain)
}

func (a *arena) spawnProjectile(from, dir rl.Vector3) (*engine.GameObject, error) {
	return a.spawn("projectile", from, projectileRadius, 2*projectileRadius, projectileMass,
		physics.GroupProjectile, physics.GroupEnemy|physics.GroupTerrain,
		physics.WithVelocity(rl.Vector3Scale(dir, a.cfg.Arena.ProjectileSpeed)),
		physics.WithoutGravity(),
	)
}

// step runs one tick: gameplay input, physics, then cleanup of whatever the
// contact handlers destroyed.
func (a *arena) step(dt float32) {
	a.tick++
	a.steerPlayer()
	a.steerEnemies()
	if every := a.cfg.Arena.FireEvery; every > 0 && a.tick%every == 0 {
		a.fire()
	}

	a.world.Update(dt)

	a.expireProjectiles()
	if n := a.scene.FlushDestroyed(); n > 0 {
		a.logger.Debug("Arena: destroyed objects", "tick", a.tick, "count", n)
	}
	if a.tick%a.cfg.Sim.TickRate == 0 {
		a.logger.Debug("Arena: tick", "tick", a.tick, "bodies", a.world.Len(), "grounded", a.player.Grounded)
	}
}

// steerPlayer walks the player around a circle while it has footing.
func (a *arena) steerPlayer() {
	speed := a.cfg.Arena.PlayerSpeed
	if speed == 0 || !a.player.Grounded {
		return
	}
	angle := float32(a.tick) * 0.01
	r := a.cfg.Arena.Radius / 2
	target := rl.Vector3{X: r * math32.Cos(angle), Z: r * math32.Sin(angle)}
	dir := flatDirection(*a.player.PositionRef(), target)
	vel := a.player.VelocityRef()
	vel.X, vel.Z = dir.X*speed, dir.Z*speed
}

// steerEnemies makes every grounded enemy walk at the player.
func (a *arena) steerEnemies() {
	speed := a.cfg.Arena.EnemySpeed
	if speed == 0 {
		return
	}
	target := *a.player.PositionRef()
	for _, g := range a.scene.FindByTag("enemy") {
		b := a.world.Body(g)
		if !g.Active || b == nil || !b.Grounded {
			continue
		}
		dir := flatDirection(*b.Position, target)
		b.Velocity.X, b.Velocity.Z = dir.X*speed, dir.Z*speed
	}
}

// fire shoots at the nearest enemy if a ray from the player's eye reaches it
// before anything else. It reports whether a projectile was spawned.
func (a *arena) fire() bool {
	pos := *a.player.PositionRef()
	eye := rl.Vector3Add(pos, rl.Vector3{Y: a.world.Settings().Player.Height * eyeLevel})

	var target *engine.GameObject
	best := float32(math.MaxFloat32)
	for _, g := range a.scene.FindByTag("enemy") {
		if !g.Active {
			continue
		}
		if d := rl.Vector3Distance(eye, g.Transform.Position); d < best {
			best, target = d, g
		}
	}
	if target == nil {
		return false
	}

	dir := rl.Vector3Subtract(target.Transform.Position, eye)
	hit, ok := a.world.Raycast(eye, dir, a.cfg.Arena.RayDistance, physics.GroupEnemy|physics.GroupTerrain)
	if !ok || hit.Terrain || hit.Body.Entity != target {
		a.logger.Debug("Arena: no line of sight", "target", target.Name, "blocked", ok)
		return false
	}

	if _, err := a.spawnProjectile(eye, rl.Vector3Normalize(dir)); err != nil {
		a.logger.Warn("Arena: fire failed", "error", err)
		return false
	}
	a.stats.Shots++
	a.logger.Debug("Arena: fired", "target", target.Name, "distance", hit.Distance)
	return true
}

// expireProjectiles removes shells that hit the ground or left the arena.
func (a *arena) expireProjectiles() {
	limit := 2 * a.cfg.Arena.Radius
	for _, g := range a.scene.FindByTag("projectile") {
		b := a.world.Body(g)
		if !g.Active || b == nil {
			continue
		}
		p := g.Transform.Position
		if b.Grounded || p.X*p.X+p.Z*p.Z > limit*limit {
			a.scene.Destroy(g)
		}
	}
}

func (a *arena) onContact(c physics.Contact) {
	a.stats.Contacts++
	if c.Player {
		if c.B.Group.Has(physics.GroupPickup) && a.destroy(c.B) {
			a.stats.Pickups++
			a.logger.Info("Arena: pickup collected", "tick", a.tick, "total", a.stats.Pickups)
		}
		return
	}

	shell, other := c.A, c.B
	if !shell.Group.Has(physics.GroupProjectile) {
		shell, other = other, shell
	}
	if !shell.Group.Has(physics.GroupProjectile) || !other.Group.Has(physics.GroupEnemy) {
		return
	}
	// A shell that already hit something this tick is spent.
	if !a.destroy(shell) {
		return
	}
	if a.destroy(other) {
		a.stats.Kills++
		a.logger.Info("Arena: enemy destroyed", "tick", a.tick, "total", a.stats.Kills)
	}
}

// destroy queues the body's object for removal. It reports false if the
// object was already gone.
func (a *arena) destroy(b *physics.Body) bool {
	g, ok := b.Entity.(*engine.GameObject)
	if !ok || !g.Active {
		return false
	}
	a.scene.Destroy(g)
	return true
}

// reload applies a re-read config between ticks. Sim settings and spawn
// counts only take effect on restart.
func (a *arena) reload(cfg config.Config) {
	if err := a.world.SetSettings(cfg.Physics); err != nil {
		a.logger.Warn("Arena: reload rejected", "error", err)
		return
	}
	a.cfg.Physics = cfg.Physics
	a.cfg.Arena.PlayerSpeed = cfg.Arena.PlayerSpeed
	a.cfg.Arena.EnemySpeed = cfg.Arena.EnemySpeed
	a.cfg.Arena.ProjectileSpeed = cfg.Arena.ProjectileSpeed
	a.cfg.Arena.FireEvery = cfg.Arena.FireEvery
	a.cfg.Arena.RayDistance = cfg.Arena.RayDistance

	if cfg.Terrain != a.cfg.Terrain {
		provider, err := terrain.New(cfg.Terrain, a.logger)
		if err != nil {
			a.logger.Warn("Arena: terrain reload rejected", "error", err)
			return
		}
		a.world.SetTerrain(provider.Height)
		a.cfg.Terrain = cfg.Terrain
	}
	a.logger.Info("Arena: config reloaded", "tick", a.tick)
}

func (a *arena) finished() bool {
	return a.cfg.Sim.Ticks > 0 && a.tick >= a.cfg.Sim.Ticks
}

// run ticks until the configured tick count is reached or ctx is cancelled.
// In realtime mode each tick waits for the wall clock and the measured frame
// time is clamped to max_delta; otherwise ticks use the fixed step back to back.
func (a *arena) run(ctx context.Context, reloads <-chan config.Config, errs <-chan error, realtime bool) {
	dt := a.cfg.TickDelta()
	var frames <-chan time.Time
	if realtime {
		ticker := time.NewTicker(time.Duration(float64(time.Second) * float64(dt)))
		defer ticker.Stop()
		frames = ticker.C
	}
	last := time.Now()

	for !a.finished() {
		a.drain(reloads, errs)
		if frames != nil {
			select {
			case <-ctx.Done():
				return
			case now := <-frames:
				dt = clampDelta(float32(now.Sub(last).Seconds()), a.cfg.Sim.MaxDelta)
				last = now
			}
		} else if ctx.Err() != nil {
			return
		}
		a.step(dt)
	}
}

// drain applies every pending reload without blocking.
func (a *arena) drain(reloads <-chan config.Config, errs <-chan error) {
	for {
		select {
		case cfg, ok := <-reloads:
			if !ok {
				return
			}
			a.reload(cfg)
		case err, ok := <-errs:
			if !ok {
				return
			}
			a.logger.Warn("Arena: config watch error", "error", err)
		default:
			return
		}
	}
}

func clampDelta(dt, limit float32) float32 {
	if !(dt > 0) {
		return 0
	}
	if dt > limit {
		return limit
	}
	return dt
}

// flatDirection is the unit xz direction from -> to, or zero when they share
// a column.
func flatDirection(from, to rl.Vector3) rl.Vector3 {
	d := rl.Vector3{X: to.X - from.X, Z: to.Z - from.Z}
	return rl.Vector3Normalize(d)
}
