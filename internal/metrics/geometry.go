package metrics

import (
	"math"

	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/geom"
	"github.com/san-kum/knotsim/internal/sim"
)

// MaxPenetration is the deepest constraint breach seen in any frame: the
// overlap depth between non-neighbor spheres, or the clearance deficit
// between non-adjacent sticks.
type MaxPenetration struct {
	name  string
	worst float64
}

func NewMaxPenetration() *MaxPenetration {
	return &MaxPenetration{name: "max_penetration"}
}

func (m *MaxPenetration) Name() string { return m.name }

func (m *MaxPenetration) Observe(f sim.Frame) {
	p, n := f.Positions, len(f.Positions)
	switch mode := f.Params.Mode.(type) {
	case chain.Spheres:
		minSep := mode.MinSeparation(f.Params.Diameter)
		for _, pr := range chain.NonNeighborPairs(n, f.Params.Closed) {
			m.worst = math.Max(m.worst, minSep-p.Dist(pr.I, pr.J))
		}
	case chain.Sticks:
		minD := mode.Clearance()
		for _, sp := range chain.SegmentPairs(n, f.Params.Closed) {
			a, b := sp.First, sp.Second
			c := geom.ClosestPoints(p[a.A], p[a.B], p[b.A], p[b.B])
			m.worst = math.Max(m.worst, minD-math.Sqrt(c.DistSq))
		}
	}
}

func (m *MaxPenetration) Value() float64 { return m.worst }

func (m *MaxPenetration) Reset() { m.worst = 0 }

// LengthDrift is the largest relative deviation of a segment from its rest
// length while fixed lengths are enforced, or from the unit diameter in
// spheres mode.
type LengthDrift struct {
	name  string
	worst float64
}

func NewLengthDrift() *LengthDrift {
	return &LengthDrift{name: "length_drift"}
}

func (l *LengthDrift) Name() string { return l.name }

func (l *LengthDrift) Observe(f sim.Frame) {
	p := f.Positions
	segs := chain.Segments(len(p), f.Params.Closed)
	switch mode := f.Params.Mode.(type) {
	case chain.Spheres:
		for _, s := range segs {
			l.record(p.Dist(s.A, s.B), f.Params.Diameter)
		}
	case chain.Sticks:
		for k := 0; k < len(mode.RestLengths) && k < len(segs); k++ {
			l.record(p.Dist(segs[k].A, segs[k].B), mode.RestLengths[k])
		}
	}
}

func (l *LengthDrift) record(d, target float64) {
	if target <= 0 {
		return
	}
	l.worst = math.Max(l.worst, math.Abs(d-target)/target)
}

func (l *LengthDrift) Value() float64 { return l.worst }

func (l *LengthDrift) Reset() { l.worst = 0 }

// IterationEffort is the mean number of projection sweeps per frame.
type IterationEffort struct {
	name    string
	sum     float64
	samples int
}

func NewIterationEffort() *IterationEffort {
	return &IterationEffort{name: "iterations_per_frame"}
}

func (e *IterationEffort) Name() string { return e.name }

func (e *IterationEffort) Observe(f sim.Frame) {
	e.sum += float64(f.Iterations)
	e.samples++
}

func (e *IterationEffort) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *IterationEffort) Reset() {
	e.sum = 0
	e.samples = 0
}

// Default returns a fresh set of every metric.
func Default() []sim.Metric {
	return []sim.Metric{
		NewResidual(),
		NewMeanViolation(),
		NewMaxPenetration(),
		NewLengthDrift(),
		NewFindingRate(),
		NewSettleFrame(),
		NewIterationEffort(),
	}
}
