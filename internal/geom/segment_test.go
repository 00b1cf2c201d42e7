package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClosestPointsPerpendicular(t *testing.T) {
	c := ClosestPoints(Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0.5, 1, 0}, Vec3{0.5, 2, 0})

	require.Equal(t, Skew, c.Case)
	require.InDelta(t, 1.0, math.Sqrt(c.DistSq), 1e-12)
	require.InDelta(t, 0.5, c.C1.X(), 1e-12)
	require.InDelta(t, 0.0, c.C1.Y(), 1e-12)
	require.InDelta(t, 0.5, c.C2.X(), 1e-12)
	require.InDelta(t, 1.0, c.C2.Y(), 1e-12)
}

func TestClosestPointsCrossing(t *testing.T) {
	c := ClosestPoints(Vec3{-1, 0, 0}, Vec3{1, 0, 0}, Vec3{0, -1, 0.25}, Vec3{0, 1, 0.25})

	require.Equal(t, Skew, c.Case)
	require.InDelta(t, 0.0625, c.DistSq, 1e-12)
	require.InDelta(t, 0.5, c.S, 1e-12)
	require.InDelta(t, 0.5, c.T, 1e-12)
}

func TestClosestPointsDegenerate(t *testing.T) {
	tests := []struct {
		name           string
		p1, q1, p2, q2 Vec3
		want           Degeneracy
		dist           float64
	}{
		{"both points", Vec3{0, 0, 0}, Vec3{0, 0, 0}, Vec3{3, 4, 0}, Vec3{3, 4, 0}, BothPoints, 5},
		{"first point", Vec3{1, 1, 0}, Vec3{1, 1, 0}, Vec3{0, 0, 0}, Vec3{2, 0, 0}, FirstPoint, 1},
		{"second point", Vec3{0, 0, 0}, Vec3{2, 0, 0}, Vec3{3, 0, 0}, Vec3{3, 0, 0}, SecondPoint, 1},
		{"parallel overlap", Vec3{0, 0, 0}, Vec3{2, 0, 0}, Vec3{1, 1, 0}, Vec3{3, 1, 0}, Parallel, 1},
		{"parallel disjoint", Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{4, 0, 0}, Vec3{5, 0, 0}, Parallel, 3},
		{"skew clamped", Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{3, -1, 2}, Vec3{3, 1, 2}, Skew, math.Sqrt(8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ClosestPoints(tt.p1, tt.q1, tt.p2, tt.q2)
			require.Equal(t, tt.want, c.Case)
			require.InDelta(t, tt.dist, math.Sqrt(c.DistSq), 1e-9)
			require.GreaterOrEqual(t, c.S, 0.0)
			require.LessOrEqual(t, c.S, 1.0)
			require.GreaterOrEqual(t, c.T, 0.0)
			require.LessOrEqual(t, c.T, 1.0)
		})
	}
}

func TestClosestPointsSymmetric(t *testing.T) {
	a1, a2 := Vec3{0.3, -1, 0.2}, Vec3{1.7, 2, -0.4}
	b1, b2 := Vec3{-2, 0.5, 1}, Vec3{2, 0.1, -1}

	ab := ClosestPoints(a1, a2, b1, b2)
	ba := ClosestPoints(b1, b2, a1, a2)
	require.InDelta(t, ab.DistSq, ba.DistSq, 1e-12)
}

func TestDist(t *testing.T) {
	require.InDelta(t, 5.0, Dist(Vec3{0, 0, 0}, Vec3{3, 4, 0}), 1e-12)
	require.Equal(t, Vec3{1, 1, 1}, Midpoint(Vec3{0, 0, 0}, Vec3{2, 2, 2}))
	require.False(t, Finite(Vec3{math.NaN(), 0, 0}))
	require.True(t, Finite(UnitX))
}
