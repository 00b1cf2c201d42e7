package chain

import "github.com/san-kum/knotsim/internal/geom"

const (
	// appendSpacing scales the diameter for elements appended in spheres mode,
	// leaving the projector to pull them into contact.
	appendSpacing = 0.9
	// appendLift offsets odd-indexed sphere appends so straight chains can fold.
	appendLift = 0.8
)

// Resize grows or shrinks p to ClampCount(n) elements. Removal is always
// from the tail. New elements are extrapolated by Extend.
func Resize(p Positions, n int, sticks bool) Positions {
	n = ClampCount(n)
	if len(p) > n {
		return p[:n:n].Clone()
	}
	out := p.Clone()
	for len(out) < n {
		out = Extend(out, sticks)
	}
	return out
}

// Extend appends one element to p. The first element sits at the origin,
// the second along +X, and later ones continue the direction of the last
// segment. In sticks mode the new segment copies the previous length; in
// spheres mode it is slightly shorter than the diameter and odd indices are
// lifted in Y.
func Extend(p Positions, sticks bool) Positions {
	var next geom.Vec3
	switch len(p) {
	case 0:
		next = geom.Vec3{}
	case 1:
		step := Diameter * appendSpacing
		if sticks {
			step = Diameter
		}
		next = p[0].Add(geom.UnitX.Mul(step))
	default:
		last, prev := p[len(p)-1], p[len(p)-2]
		dir := last.Sub(prev)
		prevLen := dir.Len()
		if dir.Dot(dir) < 1e-8 {
			dir = geom.UnitX
		} else {
			dir = dir.Mul(1 / prevLen)
		}
		if prevLen == 0 {
			prevLen = Diameter
		}
		step := Diameter * appendSpacing
		if sticks {
			step = prevLen
		}
		next = last.Add(dir.Mul(step))
	}
	if !sticks && len(p)%2 == 1 {
		next[1] += appendLift
	}
	return append(p, next)
}
