package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// RaycastHit is the nearest intersection found by Raycast. Body is nil for
// terrain hits.
type RaycastHit struct {
	Body     *Body
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
	Terrain  bool
}

// Raycast returns the nearest body or terrain intersection within
// maxDistance. Only bodies whose group intersects mask are considered; the
// terrain is considered when mask includes GroupTerrain and a provider is
// set. The world is not modified.
func (w *World) Raycast(origin, direction rl.Vector3, maxDistance float32, mask CollisionGroup) (RaycastHit, bool) {
	if !(maxDistance > 0) || rl.Vector3LengthSqr(direction) == 0 {
		return RaycastHit{}, false
	}
	direction = rl.Vector3Normalize(direction)

	var closestHit RaycastHit
	closestHit.Distance = maxDistance
	hit := false

	for _, b := range w.bodies {
		if b.removed || b.Group&mask == 0 {
			continue
		}
		if hitInfo, ok := raycastSphere(origin, direction, *b.Position, b.Radius, closestHit.Distance); ok {
			closestHit = hitInfo
			closestHit.Body = b
			hit = true
		}
	}

	if mask.Has(GroupTerrain) && w.terrain != nil {
		if hitInfo, ok := w.raycastTerrain(origin, direction, closestHit.Distance); ok && (!hit || hitInfo.Distance < closestHit.Distance) {
			closestHit = hitInfo
			hit = true
		}
	}

	return closestHit, hit
}

// raycastSphere projects the centre onto the ray and measures the entry
// point. Rays starting inside the sphere do not hit it.
func raycastSphere(origin, direction, center rl.Vector3, radius, maxDistance float32) (RaycastHit, bool) {
	t := rl.Vector3DotProduct(rl.Vector3Subtract(center, origin), direction)
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}

	closest := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	perpSq := rl.Vector3LengthSqr(rl.Vector3Subtract(center, closest))
	radiusSq := radius * radius
	if perpSq > radiusSq {
		return RaycastHit{}, false
	}

	entry := t - math32.Sqrt(radiusSq-perpSq)
	if entry < 0 || entry > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, entry))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))
	return RaycastHit{Point: point, Normal: normal, Distance: entry}, true
}

// raycastTerrain marches the ray in equal steps and refines the first
// crossing by linear interpolation. Later crossings are not searched, so on
// terrain that rises and falls along the ray a nearer thin ridge between two
// samples can be missed.
func (w *World) raycastTerrain(origin, direction rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	above := origin.Y - w.terrain(origin.X, origin.Z)
	if above < 0 {
		// Starting underground.
		return w.terrainHit(origin, 0), true
	}

	steps := w.settings.Raycast.TerrainSteps
	stepSize := maxDistance / float32(steps)
	prevT, prevAbove := float32(0), above

	for i := 1; i <= steps; i++ {
		t := stepSize * float32(i)
		p := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
		curAbove := p.Y - w.terrain(p.X, p.Z)
		if curAbove < 0 {
			frac := prevAbove / (prevAbove - curAbove)
			hitT := prevT + frac*stepSize
			return w.terrainHit(rl.Vector3Add(origin, rl.Vector3Scale(direction, hitT)), hitT), true
		}
		prevT, prevAbove = t, curAbove
	}
	return RaycastHit{}, false
}

func (w *World) terrainHit(point rl.Vector3, distance float32) RaycastHit {
	return RaycastHit{
		Point:    point,
		Normal:   w.TerrainNormal(point.X, point.Z),
		Distance: distance,
		Terrain:  true,
	}
}

// TerrainNormal estimates the surface normal by forward differences.
func (w *World) TerrainNormal(x, z float32) rl.Vector3 {
	d := w.settings.Raycast.NormalOffset
	h := w.TerrainHeight(x, z)
	dx := (w.TerrainHeight(x+d, z) - h) / d
	dz := (w.TerrainHeight(x, z+d) - h) / d
	return rl.Vector3Normalize(rl.Vector3{X: -dx, Y: 1, Z: -dz})
}
