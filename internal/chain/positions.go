package chain

import (
	"github.com/san-kum/knotsim/internal/geom"
)

// Positions is an ordered buffer of element centers. Index order defines
// adjacency.
type Positions []geom.Vec3

func (p Positions) Clone() Positions {
	c := make(Positions, len(p))
	copy(c, p)
	return c
}

func (p Positions) IsValid() bool {
	for _, v := range p {
		if !geom.Finite(v) {
			return false
		}
	}
	return true
}

// CopyFrom overwrites the leading points of p with src. Mismatched lengths
// are truncated to the shorter of the two; the number of copied points is
// returned.
func (p Positions) CopyFrom(src Positions) int {
	return copy(p, src)
}

func (p Positions) Dist(i, j int) float64 { return geom.Dist(p[i], p[j]) }

// Centroid returns the mean of all points.
func (p Positions) Centroid() geom.Vec3 {
	var c geom.Vec3
	if len(p) == 0 {
		return c
	}
	for _, v := range p {
		c = c.Add(v)
	}
	return c.Mul(1 / float64(len(p)))
}

// Points converts the buffer to plain coordinate triples.
func (p Positions) Points() [][3]float64 {
	out := make([][3]float64, len(p))
	for i, v := range p {
		out[i] = [3]float64(v)
	}
	return out
}

func FromPoints(pts [][3]float64) Positions {
	p := make(Positions, len(pts))
	for i, v := range pts {
		p[i] = geom.Vec3(v)
	}
	return p
}

// Line lays n elements along +X with the given spacing, starting at the origin.
func Line(n int, spacing float64) Positions {
	p := make(Positions, n)
	for i := range p {
		p[i] = geom.Vec3{float64(i) * spacing, 0, 0}
	}
	return p
}

// CaptureRestLengths measures every segment of p in segment order.
func CaptureRestLengths(p Positions, closed bool) []float64 {
	segs := Segments(len(p), closed)
	rest := make([]float64, len(segs))
	for k, s := range segs {
		rest[k] = p.Dist(s.A, s.B)
	}
	return rest
}
