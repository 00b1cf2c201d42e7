package metrics

import "github.com/san-kum/knotsim/internal/sim"

// Violation tracks the residual constraint violation: the value of the most
// recent frame and the running mean.
type Violation struct {
	name    string
	mean    bool
	last    float64
	sum     float64
	samples int
}

func NewResidual() *Violation {
	return &Violation{name: "residual_violation"}
}

func NewMeanViolation() *Violation {
	return &Violation{name: "mean_violation", mean: true}
}

func (v *Violation) Name() string { return v.name }

func (v *Violation) Observe(f sim.Frame) {
	v.last = f.Violation
	v.sum += f.Violation
	v.samples++
}

func (v *Violation) Value() float64 {
	if !v.mean {
		return v.last
	}
	if v.samples == 0 {
		return 0
	}
	return v.sum / float64(v.samples)
}

func (v *Violation) Reset() {
	v.last = 0
	v.sum = 0
	v.samples = 0
}
