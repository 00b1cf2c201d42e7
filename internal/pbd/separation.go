package pbd

import (
	"math"

	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/geom"
)

// overlapFloor guards the overlap push against near-coincident centers.
const overlapFloor = 1e-8

// ResolveOverlaps pushes apart every listed pair closer than minSep. Pairs
// with |i-j| <= 1 are skipped; which other pairs count as neighbors is the
// caller's choice of list. Pairs already far enough apart are never pulled
// together.
func ResolveOverlaps(p chain.Positions, pairs []chain.Pair, minSep float64, iters int) {
	for k := 0; k < iters; k++ {
		for _, pr := range pairs {
			if absInt(pr.J-pr.I) <= 1 {
				continue
			}
			v := p[pr.J].Sub(p[pr.I])
			d := v.Len()
			if d >= minSep || d <= overlapFloor {
				continue
			}
			push := v.Mul((minSep - d) / 2 / d)
			p[pr.I] = p[pr.I].Sub(push)
			p[pr.J] = p[pr.J].Add(push)
		}
	}
}

// ResolveSelfIntersections separates listed segment pairs whose centerlines
// come closer than 2*radius. Half the deficit is applied along the line
// between the closest points and split evenly over each segment's two
// endpoints.
func ResolveSelfIntersections(p chain.Positions, pairs []chain.SegmentPair, radius float64, iters int) {
	minD := 2 * radius
	minD2 := minD * minD
	for k := 0; k < iters; k++ {
		for _, sp := range pairs {
			a, b := sp.First, sp.Second
			c := geom.ClosestPoints(p[a.A], p[a.B], p[b.A], p[b.B])
			if c.DistSq >= minD2 {
				continue
			}
			d := math.Sqrt(c.DistSq)
			if d < geom.Epsilon {
				continue
			}
			push := (minD - d) * 0.5
			dir := c.C1.Sub(c.C2).Mul(push / d * 0.5)
			p[a.A] = p[a.A].Add(dir)
			p[a.B] = p[a.B].Add(dir)
			p[b.A] = p[b.A].Sub(dir)
			p[b.B] = p[b.B].Sub(dir)
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
