package metrics

import "github.com/san-kum/knotsim/internal/sim"

// FindingRate is the fraction of frames that ended with no findings.
type FindingRate struct {
	name    string
	clean   int
	samples int
}

func NewFindingRate() *FindingRate {
	return &FindingRate{
		name: "clean_frames",
	}
}

func (r *FindingRate) Name() string {
	return r.name
}

func (r *FindingRate) Observe(f sim.Frame) {
	r.samples++
	if len(f.Findings) == 0 {
		r.clean++
	}
}

func (r *FindingRate) Value() float64 {
	if r.samples == 0 {
		return 1.0
	}
	return float64(r.clean) / float64(r.samples)
}

func (r *FindingRate) Reset() {
	r.clean = 0
	r.samples = 0
}

// SettleFrame records the first frame after which no findings remain,
// or -1 if the chain never came clean.
type SettleFrame struct {
	name  string
	first int
}

func NewSettleFrame() *SettleFrame {
	return &SettleFrame{name: "settle_frame", first: -1}
}

func (s *SettleFrame) Name() string { return s.name }

func (s *SettleFrame) Observe(f sim.Frame) {
	if len(f.Findings) != 0 {
		s.first = -1
		return
	}
	if s.first < 0 {
		s.first = f.Index
	}
}

func (s *SettleFrame) Value() float64 { return float64(s.first) }

func (s *SettleFrame) Reset() { s.first = -1 }
