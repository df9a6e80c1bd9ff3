package physics

import (
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	ErrNilEntity         = errors.New("entity is nil")
	ErrNilPosition       = errors.New("entity has no position")
	ErrInvalidRadius     = errors.New("radius must be positive and finite")
	ErrInvalidHeight     = errors.New("height must be positive and finite")
	ErrInvalidMass       = errors.New("mass must be positive and finite")
	ErrAlreadyRegistered = errors.New("entity already registered")
	ErrUnknownGroup      = errors.New("unknown collision group")
	ErrInvalidSettings   = errors.New("invalid physics settings")
)

// Entity is anything the world can track. The returned pointer is aliased:
// the world writes resolved positions straight through it.
type Entity interface {
	PositionRef() *rl.Vector3
}

// VelocitySource is implemented by entities that already carry a velocity.
// A non-nil result is copied into the body at registration.
type VelocitySource interface {
	VelocityRef() *rl.Vector3
}

// PlayerController is the movement collaborator that owns the player. The
// world augments these fields each tick but never owns them.
type PlayerController interface {
	Entity
	VelocityRef() *rl.Vector3
	GroundedRef() *bool
}

// Body is the world's record for one registered entity.
type Body struct {
	Entity   Entity
	Position *rl.Vector3 // aliased into Entity
	Velocity rl.Vector3

	Radius float32
	Height float32
	Mass   float32

	Group CollisionGroup
	Mask  CollisionGroup

	Grounded   bool
	UseGravity bool

	removed bool // queued for removal during a tick
}

// BodyOption tweaks a body at construction.
type BodyOption func(*Body)

// WithoutGravity registers a body that ignores gravity (projectiles on a
// straight line, hovering pickups).
func WithoutGravity() BodyOption {
	return func(b *Body) {
		b.UseGravity = false
	}
}

// WithVelocity overrides whatever velocity the entity supplied.
func WithVelocity(v rl.Vector3) BodyOption {
	return func(b *Body) {
		b.Velocity = v
	}
}

// NewBody validates the parameters and wraps the entity. It does not register
// the body anywhere.
func NewBody(e Entity, radius, height, mass float32, group, mask CollisionGroup, opts ...BodyOption) (*Body, error) {
	if e == nil {
		return nil, fmt.Errorf("physics: new body: %w", ErrNilEntity)
	}
	pos := e.PositionRef()
	if pos == nil {
		return nil, fmt.Errorf("physics: new body: %w", ErrNilPosition)
	}
	if !(radius > 0) || !isFinite(radius) {
		return nil, fmt.Errorf("physics: new body: %w (got %v)", ErrInvalidRadius, radius)
	}
	if !(height > 0) || !isFinite(height) {
		return nil, fmt.Errorf("physics: new body: %w (got %v)", ErrInvalidHeight, height)
	}
	if !(mass > 0) || !isFinite(mass) {
		return nil, fmt.Errorf("physics: new body: %w (got %v)", ErrInvalidMass, mass)
	}

	b := &Body{
		Entity:     e,
		Position:   pos,
		Radius:     radius,
		Height:     height,
		Mass:       mass,
		Group:      group,
		Mask:       mask,
		UseGravity: true,
	}
	if vs, ok := e.(VelocitySource); ok {
		if v := vs.VelocityRef(); v != nil {
			b.Velocity = *v
		}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Bottom is the lowest point of the body's sphere.
func (b *Body) Bottom() float32 {
	return b.Position.Y - b.Radius
}
