package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// resolvePlayerContacts is the player-vs-object policy. The player is a
// vertical capsule standing on its position and behaves as infinite mass:
// only the player is pushed, objects keep their position and velocity.
func (w *World) resolvePlayerContacts() {
	vel, _, ok := w.playerState()
	if !ok {
		return
	}
	ps := w.settings.Player
	pos := w.player.PositionRef()

	for _, b := range w.bodies {
		if b.removed || !CanCollide(ps.Group, ps.Mask, b.Group, b.Mask) {
			continue
		}

		offset, dist := horizontalDistance(*b.Position, *pos)
		radiusSum := ps.Radius + b.Radius
		if dist >= radiusSum {
			continue
		}
		// Object band starts at the bottom of its sphere.
		objBottom := b.Position.Y - b.Radius
		if !intervalsOverlap(pos.Y, pos.Y+ps.Height, objBottom, objBottom+b.Height) {
			continue
		}

		normal := rl.Vector3{X: 1}
		if dist > degenerateDistance {
			normal = rl.Vector3Scale(offset, 1/dist)
		}

		// Out to exactly the radius sum, height untouched.
		pos.X = b.Position.X + normal.X*radiusSum
		pos.Z = b.Position.Z + normal.Z*radiusSum

		hv := horizontal(*vel)
		if into := rl.Vector3DotProduct(hv, normal); into < 0 {
			hv = rl.Vector3Subtract(hv, rl.Vector3Scale(normal, 2*into))
			vel.X, vel.Z = hv.X, hv.Z
		}
		*vel = rl.Vector3Scale(*vel, ps.Damping)

		w.contacts.Invoke(Contact{
			B:      b,
			Player: true,
			Result: CollisionResult{
				// From the player towards the object, matching the A->B convention.
				Normal:     rl.Vector3Negate(normal),
				Separation: radiusSum - dist,
				Point:      rl.Vector3{X: b.Position.X - normal.X*b.Radius, Y: pos.Y, Z: b.Position.Z - normal.Z*b.Radius},
			},
		})
	}
}
