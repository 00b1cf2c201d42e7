package sim

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/config"
	"github.com/san-kum/knotsim/internal/diagnose"
	"github.com/san-kum/knotsim/internal/geom"
	"github.com/san-kum/knotsim/internal/pbd"
)

const (
	topologyIters   = 40
	topologyOverlap = 8
	presetIters     = 60
	presetOverlap   = 12
)

// Session owns the authoritative chain. Every mutation goes through the
// same transaction: copy into a working buffer, settle, diagnose, publish.
// A failed transaction leaves the published chain untouched.
//
// A Session is not safe for concurrent use.
type Session struct {
	pos    chain.Positions
	closed bool
	sticks bool
	ratio  float64
	radius float64
	fixed  bool
	rest   []float64

	sched    *Scheduler
	pool     *PositionsPool
	findings []diagnose.Finding
	frame    int
	iters    int
	preset   string
}

// NewSession adopts a copy of p. Counts outside the valid range are
// resized, and mode parameters are clamped.
func NewSession(p chain.Positions, params chain.Params, sched Schedule) *Session {
	s := &Session{
		closed: params.Closed,
		ratio:  chain.DefaultRatio,
		radius: chain.DefaultStickRadius,
		sched:  NewScheduler(sched),
	}
	switch m := params.Mode.(type) {
	case chain.Spheres:
		s.ratio = chain.ClampRatio(m.Ratio)
	case chain.Sticks:
		s.sticks = true
		s.radius = chain.ClampStickRadius(m.Radius)
		if m.Fixed() {
			s.fixed = true
			s.rest = slices.Clone(m.RestLengths)
		}
	}
	if len(p) < chain.MinCount || len(p) > chain.MaxCount {
		p = chain.Resize(p, len(p), s.sticks)
	} else {
		p = p.Clone()
	}
	s.pos = p
	s.pool = NewPositionsPool(len(p))
	s.rescan()
	return s
}

// FromConfig builds a session from a run configuration, loading its preset
// or, without one, an extrapolated chain of the configured count.
func FromConfig(cfg *config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	s := NewSession(chain.Line(chain.MinCount, chain.Diameter), params, ScheduleFromConfig(cfg.Iterations))
	if cfg.Preset != "" {
		if err := s.LoadPreset(cfg.Preset); err != nil {
			return nil, err
		}
	} else {
		s.SetCount(cfg.Count)
	}
	if cfg.FixedLengths {
		s.SetFixedLengths(true)
	}
	return s, nil
}

// Params assembles the solver parameters for the current state.
func (s *Session) Params() chain.Params {
	var mode chain.Mode = chain.Spheres{Ratio: s.ratio}
	if s.sticks {
		st := chain.Sticks{Radius: s.radius}
		if s.fixed {
			st.RestLengths = s.rest
			if st.RestLengths == nil {
				st.RestLengths = []float64{}
			}
		}
		mode = st
	}
	return chain.Params{Diameter: chain.Diameter, Closed: s.closed, Mode: mode}
}

func (s *Session) working() chain.Positions {
	if s.pool.Size() != len(s.pos) {
		s.pool = NewPositionsPool(len(s.pos))
	}
	return s.pool.GetAndCopy(s.pos)
}

func (s *Session) publish(work chain.Positions, findings []diagnose.Finding) error {
	if !work.IsValid() {
		s.pool.Put(work)
		return chain.ErrInvalidPositions
	}
	old := s.pos
	s.pos = work
	s.pool.Put(old)
	s.findings = findings
	return nil
}

func (s *Session) commit(work chain.Positions) error {
	return s.publish(work, diagnose.Check(work, s.Params()))
}

func (s *Session) settle(b Budget) error {
	work, findings := Step(s.working(), s.Params(), b)
	return s.publish(work, findings)
}

func (s *Session) rescan() {
	s.findings = diagnose.Check(s.pos, s.Params())
}

// relaxTopology is the heavy sphere settle run after the chain's shape
// changes discontinuously. It runs in both modes.
func (s *Session) relaxTopology(work chain.Positions, tangency, pair, overlap int) {
	n := len(work)
	pbd.ProjectTangency(work, chain.Diameter, s.closed, tangency)
	if s.closed {
		pbd.EnforcePairTangency(work, 0, n-1, chain.Diameter, pair)
	}
	pbd.ResolveOverlaps(work, chain.NonNeighborPairs(n, s.closed), chain.Diameter*s.ratio, overlap)
}

// Advance runs one frame with the scheduler's iteration count.
func (s *Session) Advance() error {
	s.iters = s.sched.Next()
	s.frame++
	return s.settle(Budget{Projection: s.iters, Separation: s.sched.Overlap})
}

// Settle runs a single settle pass of iters projection sweeps.
func (s *Session) Settle(iters int) error {
	return s.settle(SettleBudget(iters))
}

func (s *Session) Positions() chain.Positions { return s.pos.Clone() }

func (s *Session) PositionsString(digits int) string {
	return chain.FormatPositions(s.pos, digits)
}

// SetPositions overwrites the leading elements with p, truncating to the
// shorter length, and rescans. It returns the number of elements copied.
func (s *Session) SetPositions(p chain.Positions) (int, error) {
	work := s.working()
	n := work.CopyFrom(p)
	if err := s.commit(work); err != nil {
		return 0, err
	}
	return n, nil
}

// SetPositionsFromString parses a position list and applies it. It reports
// false without changing anything when the text is malformed.
func (s *Session) SetPositionsFromString(text string) bool {
	p, err := chain.ParsePositions(text)
	if err != nil {
		return false
	}
	_, err = s.SetPositions(p)
	return err == nil
}

// Distances measures every pair drawn from indices, in list order.
// Indices outside the chain are skipped.
func (s *Session) Distances(indices []int) []Distance {
	var out []Distance
	for a := 0; a < len(indices); a++ {
		for b := a + 1; b < len(indices); b++ {
			i, j := indices[a], indices[b]
			if !s.inRange(i) || !s.inRange(j) {
				continue
			}
			out = append(out, Distance{I: i, J: j, D: s.pos.Dist(i, j)})
		}
	}
	return out
}

func (s *Session) inRange(i int) bool { return i >= 0 && i < len(s.pos) }

// CaptureRestLengths records the current segment lengths as rest lengths.
func (s *Session) CaptureRestLengths() {
	s.rest = chain.CaptureRestLengths(s.pos, s.closed)
	s.rescan()
}

func (s *Session) RestLengths() []float64 { return slices.Clone(s.rest) }

func (s *Session) Ratio() float64 { return s.ratio }

func (s *Session) SetRatio(v float64) float64 {
	s.ratio = chain.ClampRatio(v)
	s.rescan()
	return s.ratio
}

func (s *Session) StickRadius() float64 { return s.radius }

func (s *Session) SetStickRadius(v float64) float64 {
	s.radius = chain.ClampStickRadius(v)
	s.rescan()
	return s.radius
}

func (s *Session) Count() int { return len(s.pos) }

// SetCount grows or shrinks the chain from the tail and returns the
// clamped count.
func (s *Session) SetCount(n int) int {
	n = chain.ClampCount(n)
	if n == len(s.pos) {
		return n
	}
	work := chain.Resize(s.pos, n, s.sticks)
	s.rest = chain.CaptureRestLengths(work, s.closed)
	s.sched.Kick(s.sched.SettleFrames)
	if err := s.commit(work); err != nil {
		return len(s.pos)
	}
	return n
}

func (s *Session) Closed() bool { return s.closed }

// SetClosed switches topology and pulls the chain into the new shape.
func (s *Session) SetClosed(closed bool) error {
	if closed == s.closed {
		return nil
	}
	prev := s.closed
	s.closed = closed
	work := s.working()
	s.relaxTopology(work, topologyIters, topologyIters, topologyOverlap)
	prevRest := s.rest
	s.rest = chain.CaptureRestLengths(work, closed)
	if err := s.commit(work); err != nil {
		s.closed, s.rest = prev, prevRest
		return err
	}
	s.sched.Kick(s.sched.SettleFrames)
	return nil
}

func (s *Session) Mode() string { return s.Params().Mode.Name() }

func (s *Session) Sticks() bool { return s.sticks }

// SetMode switches between spheres and sticks. Entering sticks mode
// recaptures rest lengths.
func (s *Session) SetMode(name string) error {
	m, err := chain.ParseModeName(name)
	if err != nil {
		return err
	}
	_, s.sticks = m.(chain.Sticks)
	if s.sticks {
		s.rest = chain.CaptureRestLengths(s.pos, s.closed)
	}
	s.rescan()
	return nil
}

func (s *Session) FixedLengths() bool { return s.fixed }

// SetFixedLengths toggles rest-length enforcement in sticks mode. Turning it
// on captures the current lengths.
func (s *Session) SetFixedLengths(on bool) {
	s.fixed = on
	if on {
		s.rest = chain.CaptureRestLengths(s.pos, s.closed)
	}
	s.rescan()
}

func (s *Session) Preset() string { return s.preset }

// LoadPreset replaces the chain with a catalog shape and settles it. An
// unknown name leaves the session unchanged.
func (s *Session) LoadPreset(name string) error {
	p, err := config.GetPreset(name)
	if err != nil {
		return err
	}
	work := p.Positions()
	s.relaxTopology(work, presetIters, 0, presetOverlap)
	prevRest := s.rest
	s.rest = chain.CaptureRestLengths(work, s.closed)
	if err := s.commit(work); err != nil {
		s.rest = prevRest
		return err
	}
	s.preset = name
	s.sched.Kick(s.sched.SettleFrames)
	return nil
}

// Drag moves element i to target and opens a short settling window.
func (s *Session) Drag(i int, target geom.Vec3) error {
	if !s.inRange(i) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	if !geom.Finite(target) {
		return chain.ErrInvalidPositions
	}
	work := s.working()
	work[i] = target
	if err := s.commit(work); err != nil {
		return err
	}
	s.sched.Kick(s.sched.DragFrames)
	return nil
}

// Release ends a drag with a full settling window.
func (s *Session) Release() {
	s.sched.Kick(s.sched.SettleFrames)
}

// Perturb drags one element by magnitude in a random direction and
// releases it. A negative or out-of-range element is picked at random.
func (s *Session) Perturb(rng *rand.Rand, element int, magnitude float64) (int, error) {
	if !s.inRange(element) {
		element = rng.Intn(len(s.pos))
	}
	dir := geom.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	if dir.Len() < geom.Epsilon {
		dir = geom.UnitX
	}
	target := s.pos[element].Add(dir.Normalize().Mul(magnitude))
	if err := s.Drag(element, target); err != nil {
		return element, err
	}
	s.Release()
	return element, nil
}

func (s *Session) Findings() []diagnose.Finding { return slices.Clone(s.findings) }

func (s *Session) Report() string { return diagnose.Report(s.findings) }

func (s *Session) Violation() float64 { return diagnose.Violation(s.pos, s.Params()) }

func (s *Session) Frame() int { return s.frame }

// Iterations is the projection count used by the last frame.
func (s *Session) Iterations() int { return s.iters }

func (s *Session) Scheduler() *Scheduler { return s.sched }

func (s *Session) snapshot() Frame {
	return Frame{
		Index:      s.frame,
		Positions:  s.Positions(),
		Params:     s.Params(),
		Findings:   s.Findings(),
		Iterations: s.iters,
		Violation:  s.Violation(),
	}
}
