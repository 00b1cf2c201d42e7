package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is the vector type shared by every package that touches positions.
type Vec3 = mgl64.Vec3

// Epsilon is the squared-length threshold below which a segment is a point.
const Epsilon = 1e-9

var UnitX = Vec3{1, 0, 0}

func DistSq(a, b Vec3) float64 {
	d := b.Sub(a)
	return d.Dot(d)
}

func Dist(a, b Vec3) float64 { return math.Sqrt(DistSq(a, b)) }

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vec3) Vec3 { return a.Add(b).Mul(0.5) }

// Finite reports whether all three components are finite numbers.
func Finite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Clamp01 limits x to [0, 1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
