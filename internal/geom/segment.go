package geom

// Degeneracy names the branch ClosestPoints took for a segment pair.
type Degeneracy int

const (
	// BothPoints: both segments collapse to points.
	BothPoints Degeneracy = iota
	// FirstPoint: only the first segment collapses to a point.
	FirstPoint
	// SecondPoint: only the second segment collapses to a point.
	SecondPoint
	// Parallel: both are proper segments with parallel directions.
	Parallel
	// Skew: the general case solved through the 2x2 system.
	Skew
)

func (d Degeneracy) String() string {
	switch d {
	case BothPoints:
		return "both-points"
	case FirstPoint:
		return "first-point"
	case SecondPoint:
		return "second-point"
	case Parallel:
		return "parallel"
	default:
		return "skew"
	}
}

// Contact is the result of a closest-point query between two segments.
// S and T are the parameters along the first and second segment, C1 and C2
// the corresponding points.
type Contact struct {
	S, T   float64
	C1, C2 Vec3
	DistSq float64
	Case   Degeneracy
}

// segmentPair holds the quantities shared by every branch.
type segmentPair struct {
	p1, p2 Vec3
	d1, d2 Vec3
	r      Vec3
	a, e   float64 // squared lengths
	f      float64 // d2·r
}

func newSegmentPair(p1, q1, p2, q2 Vec3) segmentPair {
	sp := segmentPair{p1: p1, p2: p2, d1: q1.Sub(p1), d2: q2.Sub(p2), r: p1.Sub(p2)}
	sp.a = sp.d1.Dot(sp.d1)
	sp.e = sp.d2.Dot(sp.d2)
	sp.f = sp.d2.Dot(sp.r)
	return sp
}

func (sp segmentPair) classify() Degeneracy {
	switch {
	case sp.a <= Epsilon && sp.e <= Epsilon:
		return BothPoints
	case sp.a <= Epsilon:
		return FirstPoint
	case sp.e <= Epsilon:
		return SecondPoint
	}
	b := sp.d1.Dot(sp.d2)
	if sp.a*sp.e-b*b <= Epsilon*sp.a*sp.e {
		return Parallel
	}
	return Skew
}

// ClosestPoints returns the closest points between segment p1-q1 and
// segment p2-q2 together with their squared distance.
func ClosestPoints(p1, q1, p2, q2 Vec3) Contact {
	sp := newSegmentPair(p1, q1, p2, q2)
	c := Contact{Case: sp.classify()}

	switch c.Case {
	case BothPoints:
		c.S, c.T = 0, 0
	case FirstPoint:
		c.S = 0
		c.T = Clamp01(sp.f / sp.e)
	case SecondPoint:
		c.T = 0
		c.S = Clamp01(-sp.d1.Dot(sp.r) / sp.a)
	case Parallel:
		c.S, c.T = sp.solveFrom(0)
	case Skew:
		b := sp.d1.Dot(sp.d2)
		cc := sp.d1.Dot(sp.r)
		denom := sp.a*sp.e - b*b
		c.S, c.T = sp.solveFrom(Clamp01((b*sp.f - cc*sp.e) / denom))
	}

	c.C1 = sp.p1.Add(sp.d1.Mul(c.S))
	c.C2 = sp.p2.Add(sp.d2.Mul(c.T))
	c.DistSq = DistSq(c.C1, c.C2)
	return c
}

// solveFrom computes t for a given s on the first segment and re-clamps s
// when t falls outside the second segment.
func (sp segmentPair) solveFrom(s float64) (float64, float64) {
	b := sp.d1.Dot(sp.d2)
	cc := sp.d1.Dot(sp.r)
	t := (b*s + sp.f) / sp.e
	switch {
	case t < 0:
		t = 0
		s = Clamp01(-cc / sp.a)
	case t > 1:
		t = 1
		s = Clamp01((b - cc) / sp.a)
	}
	return s, t
}
