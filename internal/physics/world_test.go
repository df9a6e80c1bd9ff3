package physics

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const eps = 1e-4

func approx(a, b float32) bool {
	return math32.Abs(a-b) < eps
}

func approxVec(a, b rl.Vector3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

func newTestWorld(t *testing.T, opts ...Option) *World {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	w, err := NewWorld(DefaultSettings(), opts...)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func mustAdd(t *testing.T, w *World, e Entity, radius, mass float32, group, mask CollisionGroup, opts ...BodyOption) *Body {
	t.Helper()
	b, err := w.AddObject(e, radius, 2*radius, mass, group, mask, opts...)
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	return b
}

func flat(level float32) HeightFunc {
	return func(x, z float32) float32 { return level }
}

func TestNewWorldRejectsInvalidSettings(t *testing.T) {
	s := DefaultSettings()
	s.Restitution = 3
	if _, err := NewWorld(s); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("expected ErrInvalidSettings, got %v", err)
	}
}

func TestSetSettingsKeepsOldOnError(t *testing.T) {
	w := newTestWorld(t)
	bad := DefaultSettings()
	bad.AirFriction = 0
	if err := w.SetSettings(bad); err == nil {
		t.Fatal("expected error")
	}
	if w.Settings().AirFriction != DefaultSettings().AirFriction {
		t.Error("invalid settings must not be applied")
	}

	good := DefaultSettings()
	good.Gravity = -9.8
	if err := w.SetSettings(good); err != nil {
		t.Fatal(err)
	}
	if w.Settings().Gravity != -9.8 {
		t.Errorf("settings not applied, gravity=%v", w.Settings().Gravity)
	}
}

func TestAddObject(t *testing.T) {
	w := newTestWorld(t)
	p := &point{}

	b := mustAdd(t, w, p, 1, 1, GroupEnemy, GroupEnemy)
	if w.Len() != 1 || w.Body(p) != b {
		t.Fatalf("body not registered, len=%d", w.Len())
	}

	if _, err := w.AddObject(p, 1, 2, 1, GroupEnemy, GroupEnemy); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}
	if _, err := w.AddObject(&point{}, 0, 2, 1, GroupEnemy, GroupEnemy); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius, got %v", err)
	}
	if w.Len() != 1 {
		t.Errorf("rejected bodies must not be registered, len=%d", w.Len())
	}
}

func TestRemoveObject(t *testing.T) {
	w := newTestWorld(t)
	a, b := &point{}, &point{}
	mustAdd(t, w, a, 1, 1, GroupEnemy, GroupEnemy)
	mustAdd(t, w, b, 1, 1, GroupEnemy, GroupEnemy)

	w.RemoveObject(a)
	w.RemoveObject(a)
	w.RemoveObject(&point{})

	if w.Len() != 1 {
		t.Fatalf("expected 1 body, got %d", w.Len())
	}
	if w.Body(a) != nil || w.Body(b) == nil {
		t.Error("wrong body removed")
	}

	// Re-adding after removal is allowed.
	mustAdd(t, w, a, 1, 1, GroupEnemy, GroupEnemy)
	if w.Len() != 2 {
		t.Errorf("expected 2 bodies, got %d", w.Len())
	}
}

func TestUpdateIgnoresNonPositiveDelta(t *testing.T) {
	w := newTestWorld(t)
	p := &point{pos: rl.Vector3{Y: 10}}
	b := mustAdd(t, w, p, 0.5, 1, GroupEnemy, GroupNone, WithVelocity(rl.Vector3{X: 1}))

	w.Update(0)
	w.Update(-1)
	w.Update(math32.NaN())

	if p.pos != (rl.Vector3{Y: 10}) || b.Velocity != (rl.Vector3{X: 1}) {
		t.Errorf("state changed: pos=%v vel=%v", p.pos, b.Velocity)
	}
}

func TestUpdateIntegratesGravity(t *testing.T) {
	w := newTestWorld(t)
	p := &point{pos: rl.Vector3{Y: 10}}
	b := mustAdd(t, w, p, 0.5, 1, GroupEnemy, GroupNone, WithVelocity(rl.Vector3{X: 2}))

	w.Update(0.1)

	// Velocity first, then position with the new velocity.
	if !approx(b.Velocity.Y, -2) {
		t.Errorf("vy = %v, want -2", b.Velocity.Y)
	}
	if !approxVec(p.pos, rl.Vector3{X: 0.2, Y: 9.8}) {
		t.Errorf("pos = %v, want (0.2, 9.8, 0)", p.pos)
	}
}

func TestUpdateWithoutGravity(t *testing.T) {
	w := newTestWorld(t)
	p := &point{pos: rl.Vector3{Y: 10}}
	b := mustAdd(t, w, p, 0.5, 1, GroupProjectile, GroupNone, WithVelocity(rl.Vector3{X: 10}), WithoutGravity())

	w.Update(0.5)

	if b.Velocity != (rl.Vector3{X: 10}) {
		t.Errorf("velocity changed: %v", b.Velocity)
	}
	if !approxVec(p.pos, rl.Vector3{X: 5, Y: 10}) {
		t.Errorf("pos = %v", p.pos)
	}
}

func TestGroundedBodySkipsGravity(t *testing.T) {
	w := newTestWorld(t, WithTerrain(flat(0)))
	p := &point{pos: rl.Vector3{Y: 0.5}}
	b := mustAdd(t, w, p, 0.5, 1, GroupEnemy, GroupTerrain)

	w.Update(0.1)
	if !b.Grounded || !approx(p.pos.Y, 0.5) || b.Velocity.Y != 0 {
		t.Fatalf("after landing: grounded=%v y=%v vy=%v", b.Grounded, p.pos.Y, b.Velocity.Y)
	}

	w.Update(0.1)
	if !b.Grounded || !approx(p.pos.Y, 0.5) || b.Velocity.Y != 0 {
		t.Errorf("resting body moved: grounded=%v y=%v vy=%v", b.Grounded, p.pos.Y, b.Velocity.Y)
	}
}

func TestPlayerForces(t *testing.T) {
	tests := []struct {
		name     string
		grounded bool
		startY   float32
		wantVX   float32
		wantVY   float32
	}{
		{"airborne", false, 5, 9.8, -0.2},
		{"grounded", true, 0, 9, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := newPlayer(rl.Vector3{Y: tt.startY}, rl.Vector3{X: 10})
			player.Grounded = tt.grounded
			w := newTestWorld(t, WithTerrain(flat(0)), WithPlayer(player))

			w.Update(0.01)

			vel := player.VelocityRef()
			if !approx(vel.X, tt.wantVX) || !approx(vel.Y, tt.wantVY) {
				t.Errorf("vel = %v, want (%v, %v)", *vel, tt.wantVX, tt.wantVY)
			}
			if !approx(player.PositionRef().X, tt.wantVX*0.01) {
				t.Errorf("x = %v, want %v", player.PositionRef().X, tt.wantVX*0.01)
			}
			if player.Grounded != tt.grounded {
				t.Errorf("grounded = %v, want %v", player.Grounded, tt.grounded)
			}
		})
	}
}

func TestUpdatePublishesContacts(t *testing.T) {
	w := newTestWorld(t)
	pa, pb := &point{}, &point{pos: rl.Vector3{X: 1.5}}
	a := mustAdd(t, w, pa, 1, 1, GroupEnemy, GroupEnemy, WithoutGravity())
	b := mustAdd(t, w, pb, 1, 1, GroupEnemy, GroupEnemy, WithoutGravity())

	var contacts []Contact
	w.OnContact(func(c Contact) { contacts = append(contacts, c) })

	w.Update(0.001)

	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(contacts))
	}
	if contacts[0].A != a || contacts[0].B != b || contacts[0].Player {
		t.Errorf("unexpected contact %+v", contacts[0])
	}
	if d := rl.Vector3Distance(pa.pos, pb.pos); d < 2-eps {
		t.Errorf("bodies still overlap, distance %v", d)
	}
}

func TestUpdateRespectsGroups(t *testing.T) {
	w := newTestWorld(t)
	pa, pb := &point{}, &point{pos: rl.Vector3{X: 1}}
	mustAdd(t, w, pa, 1, 1, GroupEnemy, GroupEnemy, WithoutGravity())
	mustAdd(t, w, pb, 1, 1, GroupPickup, GroupPickup, WithoutGravity())

	w.Update(0.001)

	if pa.pos.X != 0 || pb.pos.X != 1 {
		t.Errorf("filtered pair was resolved: a=%v b=%v", pa.pos, pb.pos)
	}
}

func TestRegistryChangesDuringTickAreDeferred(t *testing.T) {
	w := newTestWorld(t)
	pa, pb, pc := &point{}, &point{pos: rl.Vector3{X: 1.5}}, &point{pos: rl.Vector3{X: 3}}
	mustAdd(t, w, pa, 1, 1, GroupEnemy, GroupEnemy, WithoutGravity())
	mustAdd(t, w, pb, 1, 1, GroupEnemy, GroupEnemy, WithoutGravity())
	mustAdd(t, w, pc, 1, 1, GroupEnemy, GroupEnemy, WithoutGravity())
	spawned := &point{pos: rl.Vector3{X: 100}}

	contacts := 0
	w.OnContact(func(c Contact) {
		contacts++
		w.RemoveObject(c.B.Entity)
		if _, err := w.AddObject(spawned, 1, 2, 1, GroupEnemy, GroupEnemy); err != nil {
			t.Errorf("AddObject during tick: %v", err)
		}
		if w.Body(spawned) == nil {
			t.Error("pending body should be visible through Body")
		}
	})

	w.Update(0.001)

	if contacts != 1 {
		t.Errorf("removed body kept colliding, contacts=%d", contacts)
	}
	if pc.pos.X != 3 {
		t.Errorf("third body should be untouched, x=%v", pc.pos.X)
	}
	if w.Body(pb) != nil {
		t.Error("removed body still registered")
	}
	if w.Body(spawned) == nil || w.Len() != 3 {
		t.Errorf("spawned body not registered, len=%d", w.Len())
	}
}

func TestRemoveDuringTickIsIdempotent(t *testing.T) {
	w := newTestWorld(t)
	pa, pb := &point{}, &point{pos: rl.Vector3{X: 1.5}}
	mustAdd(t, w, pa, 1, 1, GroupEnemy, GroupEnemy, WithoutGravity())
	mustAdd(t, w, pb, 1, 1, GroupEnemy, GroupEnemy, WithoutGravity())

	w.OnContact(func(c Contact) {
		w.RemoveObject(c.A.Entity)
		w.RemoveObject(c.A.Entity)
	})
	w.Update(0.001)

	if w.Len() != 1 || w.Body(pa) != nil {
		t.Errorf("expected only b to remain, len=%d", w.Len())
	}
	if len(w.Bodies()) != 1 {
		t.Errorf("Bodies() = %d entries", len(w.Bodies()))
	}
}
