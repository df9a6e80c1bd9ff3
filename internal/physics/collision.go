package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// degenerateDistance is the centre distance below which no normal can be
// derived from the two positions.
const degenerateDistance = 1e-6

// CollisionResult describes one sphere overlap.
type CollisionResult struct {
	Normal     rl.Vector3 // unit, from A towards B
	Separation float32    // penetration depth, >= 0
	Point      rl.Vector3 // on A's surface along Normal
}

// GetCollisionResult tests two spheres. Coincident centres still report an
// overlap, with an upward normal.
func GetCollisionResult(posA rl.Vector3, radiusA float32, posB rl.Vector3, radiusB float32) (CollisionResult, bool) {
	diff := rl.Vector3Subtract(posB, posA)
	sum := radiusA + radiusB
	distSq := rl.Vector3LengthSqr(diff)
	if distSq >= sum*sum {
		return CollisionResult{}, false
	}

	dist := math32.Sqrt(distSq)
	normal := up
	if dist > degenerateDistance {
		normal = rl.Vector3Scale(diff, 1/dist)
	}
	return CollisionResult{
		Normal:     normal,
		Separation: sum - dist,
		Point:      rl.Vector3Add(posA, rl.Vector3Scale(normal, radiusA)),
	}, true
}

// resolvePairs runs the exhaustive pairwise pass.
func (w *World) resolvePairs() {
	for i := 0; i < len(w.bodies); i++ {
		a := w.bodies[i]
		for j := i + 1; j < len(w.bodies); j++ {
			// A listener may have queued a removal since the outer check.
			if a.removed {
				break
			}
			b := w.bodies[j]
			if b.removed || !CanCollide(a.Group, a.Mask, b.Group, b.Mask) {
				continue
			}
			if res, ok := w.resolveCollision(a, b); ok {
				w.contacts.Invoke(Contact{A: a, B: b, Result: res})
			}
		}
	}
}

// ResolveCollision separates two overlapping bodies and exchanges an impulse
// if they are approaching. It reports whether anything was resolved. The
// group/mask filter is not applied here.
func (w *World) ResolveCollision(a, b *Body) bool {
	_, ok := w.resolveCollision(a, b)
	return ok
}

func (w *World) resolveCollision(a, b *Body) (CollisionResult, bool) {
	diff := rl.Vector3Subtract(*b.Position, *a.Position)
	minDist := a.Radius + b.Radius
	distSq := rl.Vector3LengthSqr(diff)
	if distSq >= minDist*minDist {
		return CollisionResult{}, false
	}
	dist := math32.Sqrt(distSq)
	if dist < degenerateDistance {
		// Coincident centres: no usable normal, leave both alone.
		return CollisionResult{}, false
	}

	normal := rl.Vector3Scale(diff, 1/dist)
	separation := minDist - dist
	if separation <= 0 {
		return CollisionResult{}, false
	}

	// Heavier body is displaced less.
	totalMass := a.Mass + b.Mass
	ratioA := b.Mass / totalMass
	ratioB := a.Mass / totalMass
	*a.Position = rl.Vector3Subtract(*a.Position, rl.Vector3Scale(normal, separation*ratioA))
	*b.Position = rl.Vector3Add(*b.Position, rl.Vector3Scale(normal, separation*ratioB))

	res := CollisionResult{
		Normal:     normal,
		Separation: separation,
		Point:      rl.Vector3Add(*a.Position, rl.Vector3Scale(normal, a.Radius)),
	}

	relVel := rl.Vector3Subtract(b.Velocity, a.Velocity)
	velAlongNormal := rl.Vector3DotProduct(relVel, normal)

	// Already separating
	if velAlongNormal >= 0 {
		return res, true
	}

	j := -(1 + w.settings.Restitution) * velAlongNormal
	j /= 1/a.Mass + 1/b.Mass

	impulse := rl.Vector3Scale(normal, j)
	a.Velocity = rl.Vector3Subtract(a.Velocity, rl.Vector3Scale(impulse, 1/a.Mass))
	b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(impulse, 1/b.Mass))
	return res, true
}
