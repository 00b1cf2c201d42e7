package diagnose

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/geom"
)

func TestCheckStraightChainClean(t *testing.T) {
	p := chain.Line(11, chain.Diameter)
	params := chain.DefaultParams()

	if fs := Check(p, params); len(fs) != 0 {
		t.Errorf("expected no findings, got %v", Strings(fs))
	}
	if v := Violation(p, params); v != 0 {
		t.Errorf("expected zero violation, got %g", v)
	}
}

func TestCheckTangencyAndOverlap(t *testing.T) {
	p := chain.Line(11, chain.Diameter)
	p[5] = geom.Vec3{0, 0.5, 0}
	fs := Check(p, chain.DefaultParams())

	var tangency, overlap int
	for _, f := range fs {
		switch f.Kind {
		case Tangency:
			tangency++
		case Overlap:
			overlap++
		}
	}
	if tangency != 2 {
		t.Errorf("expected 2 tangency findings, got %d", tangency)
	}
	if overlap == 0 {
		t.Error("expected overlap findings")
	}
	if !strings.Contains(Report(fs), "Overlap error: balls 0-5 dist=0.500") {
		t.Errorf("unexpected report:\n%s", Report(fs))
	}
}

func TestCheckRatioRaisesThreshold(t *testing.T) {
	// an equilateral zig-zag puts i and i+2 exactly one diameter apart
	p := chain.Positions{{0, 0, 0}, {1, math.Sqrt(3), 0}, {2, 0, 0}}
	params := chain.DefaultParams()
	if fs := Check(p, params); len(fs) != 0 {
		t.Errorf("ratio 1: unexpected findings %v", Strings(fs))
	}
	params.Mode = chain.Spheres{Ratio: 1.2}
	fs := Check(p, params)
	if len(fs) != 1 || fs[0].Kind != Overlap {
		t.Errorf("ratio 1.2: expected one overlap, got %v", Strings(fs))
	}
}

func TestCheckClosedWrapPair(t *testing.T) {
	p := chain.Line(4, chain.Diameter)
	params := chain.DefaultParams()
	params.Closed = true
	fs := Check(p, params)

	if len(fs) != 1 {
		t.Fatalf("expected only the wrap tangency, got %v", Strings(fs))
	}
	if fs[0].String() != "Tangency error: balls 0-3 dist=6.000" {
		t.Errorf("unexpected finding %q", fs[0])
	}
}

func TestCheckClosedTriangleBoundary(t *testing.T) {
	// every pair in a closed triangle is adjacent, so no overlap is ever reported
	s := math.Sqrt(3)
	p := chain.Positions{{0, 0, 0}, {2, 0, 0}, {1, s, 0}}
	params := chain.Params{Diameter: chain.Diameter, Closed: true, Mode: chain.Spheres{Ratio: 1.2}}
	if fs := Check(p, params); len(fs) != 0 {
		t.Errorf("expected no findings, got %v", Strings(fs))
	}
}

func TestCheckSticks(t *testing.T) {
	p := chain.Positions{{-1, 0, 0}, {1, 0, 0}, {0, 1, 0.05}, {0, -1, 0.05}}
	params := chain.Params{Diameter: chain.Diameter, Mode: chain.Sticks{Radius: 0.1}}

	fs := Check(p, params)
	if len(fs) != 1 || fs[0].Kind != SelfIntersection {
		t.Fatalf("expected one self-intersection, got %v", Strings(fs))
	}
	if fs[0].String() != "Self-intersection risk: seg 0-1 vs 2-3 (d<0.200)" {
		t.Errorf("unexpected finding %q", fs[0])
	}

	params.Mode = chain.Sticks{Radius: 0.01}
	if fs := Check(p, params); len(fs) != 0 {
		t.Errorf("thin sticks should clear, got %v", Strings(fs))
	}
}

func TestCheckLengthDrift(t *testing.T) {
	p := chain.Positions{{0, 0, 0}, {3, 0, 0}, {3, 4, 0}}
	rest := chain.CaptureRestLengths(p, false)
	params := chain.Params{Diameter: chain.Diameter, Mode: chain.Sticks{Radius: 0.05, RestLengths: rest}}

	if fs := Check(p, params); len(fs) != 0 {
		t.Fatalf("fresh rest lengths should not drift: %v", Strings(fs))
	}

	p[2] = geom.Vec3{3, 4.01, 0}
	fs := Check(p, params)
	if len(fs) != 1 || fs[0].String() != "Length drift on seg 1-2: 4.010 vs 4.000" {
		t.Errorf("unexpected findings %v", Strings(fs))
	}

	// drift is only reported while lengths are fixed
	params.Mode = chain.Sticks{Radius: 0.05}
	if fs := Check(p, params); len(fs) != 0 {
		t.Errorf("unexpected findings without fixed lengths: %v", Strings(fs))
	}
}

func TestReportEmpty(t *testing.T) {
	if Report(nil) != "" {
		t.Error("expected empty report")
	}
}
