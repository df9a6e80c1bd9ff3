package engine

import (
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var nextUID atomic.Uint64

type Transform struct {
	Position rl.Vector3
}

// GameObject is the collaborator-side entity: something spawned by gameplay
// code (an enemy, a pickup, a shell) that the physics world tracks by
// pointer identity.
type GameObject struct {
	UID       uint64
	Name      string
	Tags      []string
	Transform Transform
	Active    bool
	Scene     *Scene

	// Velocity is optional; physics copies it at registration when set.
	Velocity *rl.Vector3
}

func NewGameObject(name string) *GameObject {
	return &GameObject{
		UID:    nextUID.Add(1),
		Name:   name,
		Active: true,
	}
}

// PositionRef exposes the position for in-place physics writes.
func (g *GameObject) PositionRef() *rl.Vector3 {
	return &g.Transform.Position
}

// VelocityRef returns the spawn velocity, or nil if the object has none.
func (g *GameObject) VelocityRef() *rl.Vector3 {
	return g.Velocity
}

func (g *GameObject) SetVelocity(v rl.Vector3) {
	g.Velocity = &v
}

func (g *GameObject) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Player is the movement-owned avatar. Its velocity always exists and its
// grounded flag is written back by physics every tick.
type Player struct {
	*GameObject
	Grounded bool
}

func NewPlayer(name string, position rl.Vector3) *Player {
	g := NewGameObject(name)
	g.Transform.Position = position
	g.SetVelocity(rl.Vector3{})
	g.Tags = []string{"player"}
	return &Player{GameObject: g}
}

func (p *Player) GroundedRef() *bool {
	return &p.Grounded
}
