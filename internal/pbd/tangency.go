package pbd

import (
	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/geom"
)

// pairNudge is the minimum separation EnforcePairTangency tolerates before
// substituting a fixed direction.
const pairNudge = 1e-9

// relax moves a and b symmetrically so their distance approaches target.
// Coincident points are left untouched.
func relax(p chain.Positions, i, j int, target float64) {
	delta := p[j].Sub(p[i])
	d := delta.Len()
	if d == 0 {
		return
	}
	corr := delta.Mul((d - target) / 2 / d)
	p[i] = p[i].Add(corr)
	p[j] = p[j].Sub(corr)
}

// ProjectTangency pulls every neighbor pair toward distance target. The
// wrap pair (n-1, 0) is included when closed.
func ProjectTangency(p chain.Positions, target float64, closed bool, iters int) {
	pairs := chain.NeighborPairs(len(p), closed)
	for k := 0; k < iters; k++ {
		for _, pr := range pairs {
			relax(p, pr.I, pr.J, target)
		}
	}
}

// EnforcePairTangency relaxes the single pair (i, j) toward target. Unlike
// ProjectTangency it does not skip near-coincident points: it pushes them
// apart along +X.
func EnforcePairTangency(p chain.Positions, i, j int, target float64, iters int) {
	if i == j || i < 0 || j < 0 || i >= len(p) || j >= len(p) {
		return
	}
	for k := 0; k < iters; k++ {
		delta := p[j].Sub(p[i])
		d := delta.Len()
		if d < pairNudge {
			delta = geom.UnitX.Mul(1e-3)
			d = 1e-3
		}
		corr := delta.Mul((d - target) * 0.5 / d)
		p[i] = p[i].Add(corr)
		p[j] = p[j].Sub(corr)
	}
}

// EnforceSegmentLengths relaxes every segment toward its rest length. A
// missing or non-positive entry keeps the segment's current length.
func EnforceSegmentLengths(p chain.Positions, rest []float64, closed bool, iters int) {
	segs := chain.Segments(len(p), closed)
	for k := 0; k < iters; k++ {
		for _, s := range segs {
			delta := p[s.B].Sub(p[s.A])
			d := delta.Len()
			if d < pairNudge {
				continue
			}
			target := d
			if s.Index < len(rest) && rest[s.Index] > 0 {
				target = rest[s.Index]
			}
			corr := delta.Mul((d - target) * 0.5 / d)
			p[s.A] = p[s.A].Add(corr)
			p[s.B] = p[s.B].Sub(corr)
		}
	}
}
