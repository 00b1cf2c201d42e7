package chain

import (
	"fmt"
	"math"
)

const (
	Radius   = 1.0
	Diameter = 2 * Radius

	// Tolerance is the post-settle slack for tangency and overlap checks.
	Tolerance = 1e-4
	// DriftTolerance is the slack for rest-length drift in sticks mode.
	DriftTolerance = 1e-3

	MinCount = 2
	MaxCount = 60

	MinRatio     = 0.8
	MaxRatio     = 1.2
	DefaultRatio = 1.0

	MinStickRadius     = 0.01
	MaxStickRadius     = 0.60
	DefaultStickRadius = 0.05
)

// Mode selects the constraint set a settle pass enforces. It is either
// Spheres or Sticks.
type Mode interface {
	Name() string
	isMode()
}

// Spheres enforces neighbor tangency and keeps non-neighbors at least
// Diameter*Ratio apart.
type Spheres struct {
	Ratio float64
}

// Sticks treats every edge as a capsule of the given Radius. A non-nil
// RestLengths enables fixed-length enforcement against those targets.
type Sticks struct {
	Radius      float64
	RestLengths []float64
}

func (Spheres) Name() string { return "spheres" }
func (Sticks) Name() string  { return "sticks" }
func (Spheres) isMode()      {}
func (Sticks) isMode()       {}

// MinSeparation is the closest two non-adjacent centers may get.
func (m Spheres) MinSeparation(diameter float64) float64 { return diameter * m.Ratio }

// Clearance is the closest two non-adjacent segments may get.
func (m Sticks) Clearance() float64 { return 2 * m.Radius }

// Fixed reports whether rest lengths are being enforced.
func (m Sticks) Fixed() bool { return m.RestLengths != nil }

// Params is everything a settle pass needs besides the positions.
type Params struct {
	Diameter float64
	Closed   bool
	Mode     Mode
}

// DefaultParams returns an open sphere chain at ratio 1.
func DefaultParams() Params {
	return Params{Diameter: Diameter, Mode: Spheres{Ratio: DefaultRatio}}
}

// ParseModeName maps a mode name to a zero-configured Mode.
func ParseModeName(name string) (Mode, error) {
	switch name {
	case "spheres", "balls", "":
		return Spheres{Ratio: DefaultRatio}, nil
	case "sticks":
		return Sticks{Radius: DefaultStickRadius}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

func ClampRatio(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultRatio
	}
	return math.Max(MinRatio, math.Min(MaxRatio, v))
}

func ClampStickRadius(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultStickRadius
	}
	return math.Max(MinStickRadius, math.Min(MaxStickRadius, v))
}

func ClampCount(n int) int {
	if n < MinCount {
		return MinCount
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}
