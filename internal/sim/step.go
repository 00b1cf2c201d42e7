package sim

import (
	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/diagnose"
	"github.com/san-kum/knotsim/internal/pbd"
)

// Budget is the iteration count of each half of a settle pass: the
// projection (tangency or fixed lengths) and the separation (overlap or
// self-intersection).
type Budget struct {
	Projection int
	Separation int
}

// SettleBudget mirrors a scripted settle call: the separation pass gets a
// fifth of the projection sweeps, at least one.
func SettleBudget(iters int) Budget {
	if iters < 0 {
		iters = 0
	}
	return Budget{Projection: iters, Separation: max(1, iters/5)}
}

// Project runs one settle pass over buf in place, choosing the constraint
// set from params.Mode.
func Project(buf chain.Positions, params chain.Params, b Budget) {
	n := len(buf)
	switch m := params.Mode.(type) {
	case chain.Spheres:
		pbd.ProjectTangency(buf, params.Diameter, params.Closed, b.Projection)
		pbd.ResolveOverlaps(buf, chain.NonNeighborPairs(n, params.Closed), m.MinSeparation(params.Diameter), b.Separation)
	case chain.Sticks:
		if m.Fixed() {
			pbd.EnforceSegmentLengths(buf, m.RestLengths, params.Closed, b.Projection)
		}
		pbd.ResolveSelfIntersections(buf, chain.SegmentPairs(n, params.Closed), m.Radius, b.Separation)
	}
}

// Step takes ownership of buf, settles it and returns it with the findings
// of a diagnostic scan of the result.
func Step(buf chain.Positions, params chain.Params, b Budget) (chain.Positions, []diagnose.Finding) {
	Project(buf, params, b)
	return buf, diagnose.Check(buf, params)
}
