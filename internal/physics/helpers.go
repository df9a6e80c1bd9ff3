package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

var up = rl.Vector3{X: 0, Y: 1, Z: 0}

// horizontal drops the vertical component.
func horizontal(v rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: v.X, Y: 0, Z: v.Z}
}

// horizontalDistance returns the (x,z) offset from a to b and its length.
func horizontalDistance(a, b rl.Vector3) (rl.Vector3, float32) {
	d := horizontal(rl.Vector3Subtract(b, a))
	return d, math32.Sqrt(d.X*d.X + d.Z*d.Z)
}

// intervalsOverlap reports whether [aMin,aMax] and [bMin,bMax] share an open interior.
func intervalsOverlap(aMin, aMax, bMin, bMax float32) bool {
	return aMin < bMax && aMax > bMin
}
