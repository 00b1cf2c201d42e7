// Package diagnose scans a settled chain and reports residual constraint
// violations as findings. It never modifies positions.
package diagnose

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/geom"
)

// segmentSlack loosens the squared clearance test for segment pairs.
const segmentSlack = 1e-6

type Kind int

const (
	Tangency Kind = iota
	Overlap
	SelfIntersection
	LengthDrift
)

func (k Kind) String() string {
	switch k {
	case Tangency:
		return "tangency"
	case Overlap:
		return "overlap"
	case SelfIntersection:
		return "self-intersection"
	default:
		return "length-drift"
	}
}

// Finding is one violated constraint. For element findings I and J are the
// element indices; for SelfIntersection they hold the first segment and
// Other the second.
type Finding struct {
	Kind   Kind
	I, J   int
	Other  chain.Segment
	Dist   float64
	Target float64
}

func (f Finding) String() string {
	switch f.Kind {
	case Tangency:
		return fmt.Sprintf("Tangency error: balls %d-%d dist=%.3f", f.I, f.J, f.Dist)
	case Overlap:
		return fmt.Sprintf("Overlap error: balls %d-%d dist=%.3f", f.I, f.J, f.Dist)
	case SelfIntersection:
		return fmt.Sprintf("Self-intersection risk: seg %d-%d vs %d-%d (d<%.3f)", f.I, f.J, f.Other.A, f.Other.B, f.Target)
	default:
		return fmt.Sprintf("Length drift on seg %d-%d: %.3f vs %.3f", f.I, f.J, f.Dist, f.Target)
	}
}

// Check runs the scan for the mode in params.
func Check(p chain.Positions, params chain.Params) []Finding {
	switch m := params.Mode.(type) {
	case chain.Spheres:
		return checkSpheres(p, params.Diameter, m.Ratio, params.Closed)
	case chain.Sticks:
		return checkSticks(p, m, params.Closed)
	}
	return nil
}

func checkSpheres(p chain.Positions, diameter, ratio float64, closed bool) []Finding {
	var out []Finding
	for _, pr := range chain.NeighborPairs(len(p), closed) {
		i, j := ordered(pr.I, pr.J)
		d := p.Dist(i, j)
		if math.Abs(d-diameter) > chain.Tolerance {
			out = append(out, Finding{Kind: Tangency, I: i, J: j, Dist: d, Target: diameter})
		}
	}
	minSep := diameter*ratio - chain.Tolerance
	for _, pr := range chain.NonNeighborPairs(len(p), closed) {
		d := p.Dist(pr.I, pr.J)
		if d < minSep {
			out = append(out, Finding{Kind: Overlap, I: pr.I, J: pr.J, Dist: d, Target: diameter * ratio})
		}
	}
	return out
}

func checkSticks(p chain.Positions, m chain.Sticks, closed bool) []Finding {
	var out []Finding
	minD := m.Clearance()
	for _, sp := range chain.SegmentPairs(len(p), closed) {
		a, b := sp.First, sp.Second
		c := geom.ClosestPoints(p[a.A], p[a.B], p[b.A], p[b.B])
		if c.DistSq < minD*minD-segmentSlack {
			out = append(out, Finding{Kind: SelfIntersection, I: a.A, J: a.B, Other: b, Dist: math.Sqrt(c.DistSq), Target: minD})
		}
	}
	if m.Fixed() {
		segs := chain.Segments(len(p), closed)
		for k := 0; k < len(m.RestLengths) && k < len(segs); k++ {
			s := segs[k]
			d := p.Dist(s.A, s.B)
			if math.Abs(d-m.RestLengths[k]) > chain.DriftTolerance {
				out = append(out, Finding{Kind: LengthDrift, I: s.A, J: s.B, Dist: d, Target: m.RestLengths[k]})
			}
		}
	}
	return out
}

// Violation sums squared tangency errors and squared penetration depths in
// spheres mode, or squared clearance deficits and rest-length errors in
// sticks mode. It is zero exactly when every constraint holds.
func Violation(p chain.Positions, params chain.Params) float64 {
	sum := 0.0
	switch m := params.Mode.(type) {
	case chain.Spheres:
		for _, pr := range chain.NeighborPairs(len(p), params.Closed) {
			e := p.Dist(pr.I, pr.J) - params.Diameter
			sum += e * e
		}
		minSep := m.MinSeparation(params.Diameter)
		for _, pr := range chain.NonNeighborPairs(len(p), params.Closed) {
			if d := p.Dist(pr.I, pr.J); d < minSep {
				sum += (minSep - d) * (minSep - d)
			}
		}
	case chain.Sticks:
		minD := m.Clearance()
		for _, sp := range chain.SegmentPairs(len(p), params.Closed) {
			a, b := sp.First, sp.Second
			c := geom.ClosestPoints(p[a.A], p[a.B], p[b.A], p[b.B])
			if d := math.Sqrt(c.DistSq); d < minD {
				sum += (minD - d) * (minD - d)
			}
		}
		segs := chain.Segments(len(p), params.Closed)
		for k := 0; k < len(m.RestLengths) && k < len(segs); k++ {
			e := p.Dist(segs[k].A, segs[k].B) - m.RestLengths[k]
			sum += e * e
		}
	}
	return sum
}

// Strings renders findings in scan order.
func Strings(fs []Finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.String()
	}
	return out
}

// Report joins findings under a header, or returns "" when there are none.
func Report(fs []Finding) string {
	if len(fs) == 0 {
		return ""
	}
	return "Constraint issues:\n" + strings.Join(Strings(fs), "\n")
}

func ordered(i, j int) (int, int) {
	if i > j {
		return j, i
	}
	return i, j
}
