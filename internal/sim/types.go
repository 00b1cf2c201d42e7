package sim

import (
	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/diagnose"
)

// Frame is what observers and metrics see after each published step.
// Positions is a snapshot owned by the receiver.
type Frame struct {
	Index      int
	Positions  chain.Positions
	Params     chain.Params
	Findings   []diagnose.Finding
	Iterations int
	Violation  float64
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

type RunConfig struct {
	Frames int
	// Record keeps a snapshot of every frame in Result.Trajectory.
	Record bool
}

type Result struct {
	Seed       int64
	Frames     int
	Violations []float64
	Trajectory []chain.Positions
	Final      chain.Positions
	Findings   []diagnose.Finding
	Metrics    map[string]float64
}

// Distance is one entry of a pairwise distance query.
type Distance struct {
	I, J int
	D    float64
}
