package physics

import (
	"fmt"
	"log/slog"

	"arenaphys/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HeightFunc maps a horizontal coordinate to the terrain surface height. It
// must never fail; a nil HeightFunc is a flat world at y=0.
type HeightFunc func(x, z float32) float32

// Contact is published to contact listeners after an overlap was resolved.
// For the player path Player is true and A is nil.
type Contact struct {
	A, B   *Body
	Player bool
	Result CollisionResult
}

// World owns the body registry and runs the per-tick pipeline. It is not safe
// for concurrent use.
type World struct {
	settings Settings
	bodies   []*Body
	player   PlayerController
	terrain  HeightFunc
	logger   *slog.Logger

	contacts engine.EventWithArg[Contact]

	// Registry changes requested while a tick is running are applied once it ends.
	stepping   bool
	pendingAdd []*Body

	lastLoggedCount int
}

// Option configures a World at construction.
type Option func(*World)

func WithLogger(l *slog.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithTerrain(h HeightFunc) Option {
	return func(w *World) {
		w.terrain = h
	}
}

func WithPlayer(p PlayerController) Option {
	return func(w *World) {
		w.player = p
	}
}

// NewWorld validates the settings and returns an empty world.
func NewWorld(settings Settings, opts ...Option) (*World, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("physics: new world: %w", err)
	}
	w := &World{
		settings: settings,
		bodies:   make([]*Body, 0),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *World) Settings() Settings {
	return w.settings
}

// SetSettings swaps the tuning between ticks (hot reload). Invalid settings
// are rejected and the current ones kept.
func (w *World) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("physics: set settings: %w", err)
	}
	w.settings = s
	w.logger.Info("Physics: settings updated",
		"gravity", s.Gravity, "restitution", s.Restitution, "terrain_steps", s.Raycast.TerrainSteps)
	return nil
}

// SetTerrain installs the height provider. nil restores the flat world.
func (w *World) SetTerrain(h HeightFunc) {
	w.terrain = h
}

// TerrainHeight samples the configured provider, or 0 without one.
func (w *World) TerrainHeight(x, z float32) float32 {
	if w.terrain == nil {
		return 0
	}
	return w.terrain(x, z)
}

func (w *World) HasTerrain() bool {
	return w.terrain != nil
}

// SetPlayer attaches the player. nil detaches it.
func (w *World) SetPlayer(p PlayerController) {
	w.player = p
}

func (w *World) Player() PlayerController {
	return w.player
}

// OnContact registers a listener for resolved contacts. Listeners may add or
// remove bodies; those changes take effect at the end of the tick.
func (w *World) OnContact(fn func(Contact)) {
	w.contacts.AddListener(fn)
}

// AddObject wraps the entity in a validated Body and registers it.
func (w *World) AddObject(e Entity, radius, height, mass float32, group, mask CollisionGroup, opts ...BodyOption) (*Body, error) {
	b, err := NewBody(e, radius, height, mass, group, mask, opts...)
	if err != nil {
		w.logger.Warn("Physics: rejected body", "error", err)
		return nil, err
	}
	if w.Body(e) != nil {
		return nil, fmt.Errorf("physics: add object: %w", ErrAlreadyRegistered)
	}

	if w.stepping {
		w.pendingAdd = append(w.pendingAdd, b)
	} else {
		w.bodies = append(w.bodies, b)
		w.logCount()
	}
	w.logger.Debug("Physics: body added",
		"group", group.String(), "mask", mask.String(), "radius", radius, "mass", mass, "deferred", w.stepping)
	return b, nil
}

// RemoveObject unregisters the first body wrapping e. Unknown entities are
// ignored.
func (w *World) RemoveObject(e Entity) {
	for i, b := range w.pendingAdd {
		if b.Entity == e {
			w.pendingAdd = append(w.pendingAdd[:i], w.pendingAdd[i+1:]...)
			return
		}
	}
	for i, b := range w.bodies {
		if b.Entity != e || b.removed {
			continue
		}
		if w.stepping {
			b.removed = true
		} else {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			w.logCount()
		}
		w.logger.Debug("Physics: body removed", "group", b.Group.String(), "deferred", w.stepping)
		return
	}
}

// Body returns the live body wrapping e, or nil.
func (w *World) Body(e Entity) *Body {
	for _, b := range w.bodies {
		if b.Entity == e && !b.removed {
			return b
		}
	}
	for _, b := range w.pendingAdd {
		if b.Entity == e {
			return b
		}
	}
	return nil
}

// Bodies returns a snapshot of the registered bodies.
func (w *World) Bodies() []*Body {
	out := make([]*Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		if !b.removed {
			out = append(out, b)
		}
	}
	return out
}

func (w *World) Len() int {
	n := 0
	for _, b := range w.bodies {
		if !b.removed {
			n++
		}
	}
	return n
}

// Update advances the simulation by dt seconds. The caller is responsible
// for clamping dt; non-positive deltas do nothing.
func (w *World) Update(dt float32) {
	if !(dt > 0) {
		return
	}
	w.stepping = true

	// 1-2. Forces
	w.applyGravity(dt)
	w.applyPlayerForces(dt)

	// 3. Integrate
	w.integrate(dt)

	// 4. Ground
	w.ResolveTerrain()

	// 5. Pairs, then the player capsule
	w.resolvePairs()
	w.resolvePlayerContacts()

	w.stepping = false
	w.sweep()
}

func (w *World) applyGravity(dt float32) {
	for _, b := range w.bodies {
		if b.removed || b.Grounded || !b.UseGravity {
			continue
		}
		b.Velocity.Y += w.settings.Gravity * dt
	}
}

// applyPlayerForces applies the same vertical rule as bodies plus horizontal
// drag, which is weaker in the air.
func (w *World) applyPlayerForces(dt float32) {
	vel, grounded, ok := w.playerState()
	if !ok {
		return
	}
	if !*grounded {
		vel.Y += w.settings.Gravity * dt
	}
	friction := w.settings.AirFriction
	if *grounded {
		friction = w.settings.GroundFriction
	}
	vel.X *= friction
	vel.Z *= friction
}

func (w *World) integrate(dt float32) {
	for _, b := range w.bodies {
		if b.removed {
			continue
		}
		*b.Position = rl.Vector3Add(*b.Position, rl.Vector3Scale(b.Velocity, dt))
	}
	if vel, _, ok := w.playerState(); ok {
		pos := w.player.PositionRef()
		*pos = rl.Vector3Add(*pos, rl.Vector3Scale(*vel, dt))
	}
}

// playerState returns the player's velocity and grounded references, or
// ok=false when no usable player is attached.
func (w *World) playerState() (vel *rl.Vector3, grounded *bool, ok bool) {
	if w.player == nil {
		return nil, nil, false
	}
	vel = w.player.VelocityRef()
	grounded = w.player.GroundedRef()
	if vel == nil || grounded == nil || w.player.PositionRef() == nil {
		return nil, nil, false
	}
	return vel, grounded, true
}

// sweep applies registry changes queued during the tick.
func (w *World) sweep() {
	changed := len(w.pendingAdd) > 0
	kept := w.bodies[:0]
	for _, b := range w.bodies {
		if b.removed {
			changed = true
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(w.bodies); i++ {
		w.bodies[i] = nil
	}
	w.bodies = append(kept, w.pendingAdd...)
	w.pendingAdd = w.pendingAdd[:0]
	if changed {
		w.logCount()
	}
}

// logCount reports body-count milestones without flooding the log.
func (w *World) logCount() {
	n := len(w.bodies)
	if n == 0 || n%100 != 0 || n == w.lastLoggedCount {
		return
	}
	w.lastLoggedCount = n
	w.logger.Info("Physics: body count", "bodies", n)
}
