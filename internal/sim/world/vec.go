package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is the plane type used for positions, velocities and forces.
type Vec2 = mgl64.Vec2

func dist(a, b Vec2) float64 {
	return b.Sub(a).Len()
}

// safeNormalize returns the unit vector of v, or +X when v is too short
// to normalize. Exact-overlap separation relies on the +X fallback.
func safeNormalize(v Vec2) Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{1, 0}
	}
	return v.Mul(1 / l)
}

func clampLen(v Vec2, max float64) Vec2 {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Mul(max / l)
}

func finite(v Vec2) bool {
	return !math.IsNaN(v[0]) && !math.IsInf(v[0], 0) &&
		!math.IsNaN(v[1]) && !math.IsInf(v[1], 0)
}
