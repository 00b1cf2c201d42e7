package sim

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/config"
	"github.com/san-kum/knotsim/internal/geom"
)

func lineSession(n int) *Session {
	return NewSession(chain.Line(n, chain.Diameter), chain.DefaultParams(), DefaultSchedule())
}

func TestStepSatisfiedChainUnchanged(t *testing.T) {
	p := chain.Line(11, chain.Diameter)
	want := p.Clone()

	out, findings := Step(p, chain.DefaultParams(), Budget{Projection: 6, Separation: 2})
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %d", len(findings))
	}
	for i := range out {
		if geom.Dist(out[i], want[i]) > 1e-9 {
			t.Errorf("element %d moved to %v", i, out[i])
		}
	}
}

func TestSettleBudget(t *testing.T) {
	tests := []struct {
		iters int
		want  Budget
	}{
		{20, Budget{20, 4}},
		{4, Budget{4, 1}},
		{0, Budget{0, 1}},
		{-3, Budget{0, 1}},
	}
	for _, tt := range tests {
		if got := SettleBudget(tt.iters); got != tt.want {
			t.Errorf("SettleBudget(%d) = %+v, want %+v", tt.iters, got, tt.want)
		}
	}
}

func TestSchedulerWindow(t *testing.T) {
	s := NewScheduler(DefaultSchedule())
	if got := s.Next(); got != 2 {
		t.Errorf("idle frame: expected 2 iterations, got %d", got)
	}

	s.Kick(3)
	for i := 0; i < 3; i++ {
		if got := s.Next(); got != 6 {
			t.Errorf("settling frame %d: expected 6 iterations, got %d", i, got)
		}
	}
	if s.Active() {
		t.Error("window should be closed")
	}
	if got := s.Next(); got != 2 {
		t.Errorf("expected base iterations after window, got %d", got)
	}

	s.Kick(60)
	s.Kick(10)
	if s.Remaining() != 10 {
		t.Errorf("a later kick replaces the window, got %d", s.Remaining())
	}
}

func TestClampingLaws(t *testing.T) {
	s := lineSession(11)

	if got := s.SetRatio(2.0); got != 1.2 {
		t.Errorf("SetRatio(2.0) = %v", got)
	}
	if got := s.SetRatio(0.1); got != 0.8 {
		t.Errorf("SetRatio(0.1) = %v", got)
	}
	if got := s.SetStickRadius(5); got != 0.6 {
		t.Errorf("SetStickRadius(5) = %v", got)
	}
	if got := s.SetStickRadius(0); got != 0.01 {
		t.Errorf("SetStickRadius(0) = %v", got)
	}
	if got := s.SetCount(1); got != 2 || s.Count() != 2 {
		t.Errorf("SetCount(1) = %d, count %d", got, s.Count())
	}
	if got := s.SetCount(1000); got != 60 || s.Count() != 60 {
		t.Errorf("SetCount(1000) = %d, count %d", got, s.Count())
	}
}

func TestSetCountKicksAndRecaptures(t *testing.T) {
	s := lineSession(5)
	s.SetMode("sticks")
	s.SetCount(8)

	if s.Scheduler().Remaining() != 60 {
		t.Errorf("expected settling window of 60, got %d", s.Scheduler().Remaining())
	}
	if got := len(s.RestLengths()); got != 7 {
		t.Errorf("expected 7 rest lengths, got %d", got)
	}
	for i, l := range s.RestLengths() {
		if math.Abs(l-chain.Diameter) > 1e-9 {
			t.Errorf("segment %d: expected extrapolated length 2, got %f", i, l)
		}
	}
}

func TestSetPositionsTruncates(t *testing.T) {
	s := lineSession(11)

	n, err := s.SetPositions(chain.Positions{{0, 0, 1}, {2, 0, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || s.Count() != 11 {
		t.Errorf("expected 2 copied into 11, got %d into %d", n, s.Count())
	}
	if p := s.Positions(); p[1] != (geom.Vec3{2, 0, 1}) || p[2] != (geom.Vec3{4, 0, 0}) {
		t.Errorf("unexpected positions %v", p[:3])
	}

	n, err = s.SetPositions(chain.Line(20, 2))
	if err != nil {
		t.Fatal(err)
	}
	if n != 11 || s.Count() != 11 {
		t.Errorf("expected 11 copied, got %d (count %d)", n, s.Count())
	}
}

func TestSetPositionsRejectsNaN(t *testing.T) {
	s := lineSession(4)
	before := s.Positions()

	_, err := s.SetPositions(chain.Positions{{math.NaN(), 0, 0}})
	if !errors.Is(err, chain.ErrInvalidPositions) {
		t.Fatalf("expected ErrInvalidPositions, got %v", err)
	}
	for i, v := range s.Positions() {
		if v != before[i] {
			t.Errorf("element %d changed after rejected write", i)
		}
	}
}

func TestSetPositionsFromString(t *testing.T) {
	s := lineSession(3)
	if s.SetPositionsFromString("[[0,0,0],[1,2]]") {
		t.Error("expected malformed text to be rejected")
	}
	if !s.SetPositionsFromString("[[0,0,0],[0,2,0],[0,4,0]]") {
		t.Fatal("expected valid text to be accepted")
	}
	if s.Positions()[2] != (geom.Vec3{0, 4, 0}) {
		t.Errorf("unexpected positions %v", s.Positions())
	}
	if got := s.PositionsString(1); got != "[[0.0,0.0,0.0],[0.0,2.0,0.0],[0.0,4.0,0.0]]" {
		t.Errorf("unexpected text %s", got)
	}
}

func TestDistances(t *testing.T) {
	s := lineSession(5)
	got := s.Distances([]int{0, 1, 99, 3})
	want := []Distance{{0, 1, 2}, {0, 3, 6}, {1, 3, 4}}

	if len(got) != len(want) {
		t.Fatalf("expected %d distances, got %v", len(want), got)
	}
	for i := range want {
		if got[i].I != want[i].I || got[i].J != want[i].J || math.Abs(got[i].D-want[i].D) > 1e-12 {
			t.Errorf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestLoadPreset(t *testing.T) {
	s := lineSession(4)
	if err := s.LoadPreset("figure8_16"); err != nil {
		t.Fatal(err)
	}
	if s.Count() != 16 || s.Preset() != "figure8_16" {
		t.Errorf("expected figure8_16 with 16 elements, got %s with %d", s.Preset(), s.Count())
	}
	if s.Scheduler().Remaining() != 60 {
		t.Errorf("expected settling window after preset load")
	}
}

func TestLoadPresetUnknown(t *testing.T) {
	s := lineSession(4)
	before := s.Positions()

	err := s.LoadPreset("granny")
	if !errors.Is(err, config.ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
	if s.Count() != 4 || s.Preset() != "" || s.Positions()[3] != before[3] {
		t.Error("unknown preset must leave the session untouched")
	}
}

func TestDragAndRelease(t *testing.T) {
	s := lineSession(5)
	if err := s.Drag(2, geom.Vec3{4, 1, 0}); err != nil {
		t.Fatal(err)
	}
	if s.Scheduler().Remaining() != 10 {
		t.Errorf("drag should open a 10 frame window, got %d", s.Scheduler().Remaining())
	}
	if len(s.Findings()) == 0 {
		t.Error("dragged chain should report tangency findings")
	}
	s.Release()
	if s.Scheduler().Remaining() != 60 {
		t.Errorf("release should open a 60 frame window, got %d", s.Scheduler().Remaining())
	}

	if err := s.Drag(7, geom.Vec3{}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestModeSwitchCapturesRest(t *testing.T) {
	s := lineSession(4)
	if err := s.SetMode("ropes"); !errors.Is(err, chain.ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
	if err := s.SetMode("sticks"); err != nil {
		t.Fatal(err)
	}
	if s.Mode() != "sticks" || len(s.RestLengths()) != 3 {
		t.Errorf("expected sticks with 3 rest lengths, got %s %v", s.Mode(), s.RestLengths())
	}

	s.SetFixedLengths(true)
	m, ok := s.Params().Mode.(chain.Sticks)
	if !ok || !m.Fixed() {
		t.Fatalf("expected fixed sticks, got %#v", s.Params().Mode)
	}
}

func TestSticksFixedLengthsRecover(t *testing.T) {
	params := chain.Params{Diameter: chain.Diameter, Mode: chain.Sticks{Radius: 0.05}}
	s := NewSession(chain.Line(5, chain.Diameter), params, DefaultSchedule())
	s.SetFixedLengths(true)

	if err := s.Drag(4, geom.Vec3{8, 0.5, 0}); err != nil {
		t.Fatal(err)
	}
	s.Release()
	for i := 0; i < 60; i++ {
		if err := s.Advance(); err != nil {
			t.Fatal(err)
		}
	}
	if fs := s.Findings(); len(fs) != 0 {
		t.Errorf("expected rest lengths restored, got %v", fs)
	}
}

func TestClosedTriangleHasNoOverlapPairs(t *testing.T) {
	p := chain.Positions{{0, 0, 0}, {2, 0, 0}, {1, 1, 0}}
	s := NewSession(p, chain.Params{Diameter: chain.Diameter, Mode: chain.Spheres{Ratio: 1.2}}, DefaultSchedule())
	if err := s.SetClosed(true); err != nil {
		t.Fatal(err)
	}
	if n := len(chain.NonNeighborPairs(3, true)); n != 0 {
		t.Fatalf("expected no non-neighbor pairs, got %d", n)
	}
	for i := 0; i < 20; i++ {
		s.Advance()
	}
	for _, f := range s.Findings() {
		t.Errorf("unexpected finding %s", f)
	}
}

func TestPerturbDeterministic(t *testing.T) {
	a, b := lineSession(11), lineSession(11)

	ia, err := a.Perturb(rand.New(rand.NewSource(7)), -1, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	ib, _ := b.Perturb(rand.New(rand.NewSource(7)), -1, 1.5)
	if ia != ib {
		t.Fatalf("same seed picked elements %d and %d", ia, ib)
	}
	pa, pb := a.Positions(), b.Positions()
	if pa[ia] != pb[ib] {
		t.Error("same seed should displace identically")
	}
	if d := geom.Dist(pa[ia], chain.Line(11, 2)[ia]); math.Abs(d-1.5) > 1e-9 {
		t.Errorf("expected displacement 1.5, got %f", d)
	}
	if a.Scheduler().Remaining() != 60 {
		t.Error("perturb should end with a release window")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Preset = ""
	cfg.Count = 7
	cfg.Mode = "sticks"
	cfg.FixedLengths = true

	s, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.Count() != 7 || !s.Sticks() || !s.FixedLengths() {
		t.Errorf("unexpected session: count %d mode %s fixed %v", s.Count(), s.Mode(), s.FixedLengths())
	}

	cfg.Mode = "ropes"
	if _, err := FromConfig(cfg); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestPositionsPool(t *testing.T) {
	pool := NewPositionsPool(4)
	buf := pool.GetAndCopy(chain.Line(4, 1))
	if buf[3] != (geom.Vec3{3, 0, 0}) {
		t.Errorf("unexpected copy %v", buf)
	}
	pool.Put(buf)
	pool.Put(make(chain.Positions, 2))
	if got := pool.Get(); len(got) != 4 {
		t.Errorf("expected buffer of 4, got %d", len(got))
	}
}
