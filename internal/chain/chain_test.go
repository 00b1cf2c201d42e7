package chain

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/knotsim/internal/geom"
	"github.com/stretchr/testify/require"
)

func TestClamps(t *testing.T) {
	require.Equal(t, 1.2, ClampRatio(2.0))
	require.Equal(t, 0.8, ClampRatio(0.1))
	require.Equal(t, 0.975, ClampRatio(0.975))
	require.Equal(t, DefaultRatio, ClampRatio(math.NaN()))

	require.Equal(t, 0.60, ClampStickRadius(5))
	require.Equal(t, 0.01, ClampStickRadius(-1))

	require.Equal(t, 2, ClampCount(1))
	require.Equal(t, 60, ClampCount(1000))
	require.Equal(t, 16, ClampCount(16))
}

func TestNeighborPairs(t *testing.T) {
	open := NeighborPairs(5, false)
	require.Len(t, open, 4)
	require.Equal(t, Pair{I: 3, J: 4}, open[3])

	closed := NeighborPairs(5, true)
	require.Len(t, closed, 5)
	require.Equal(t, Pair{I: 4, J: 0}, closed[4])

	// two elements never produce a separate wrap pair
	require.Len(t, NeighborPairs(2, true), 1)
}

func TestNonNeighborPairs(t *testing.T) {
	open := NonNeighborPairs(11, false)
	require.Contains(t, open, Pair{I: 0, J: 10})
	require.Len(t, open, 45)

	closed := NonNeighborPairs(11, true)
	require.NotContains(t, closed, Pair{I: 0, J: 10})
	require.Len(t, closed, 44)

	for _, p := range closed {
		require.Greater(t, p.J-p.I, 1)
	}
}

func TestClosedTriangleHasNoNonAdjacentPairs(t *testing.T) {
	require.Empty(t, NonNeighborPairs(3, true))
	require.Empty(t, SegmentPairs(3, true))

	require.Equal(t, []Pair{{I: 0, J: 2}}, NonNeighborPairs(3, false))
}

func TestSegmentPairs(t *testing.T) {
	require.Empty(t, SegmentPairs(3, false))

	pairs := SegmentPairs(4, false)
	require.Len(t, pairs, 1)
	require.Equal(t, 0, pairs[0].First.A)
	require.Equal(t, 2, pairs[0].Second.A)

	// the closing segment 4->0 shares a vertex with segment 0->1
	for _, sp := range SegmentPairs(5, true) {
		require.False(t, sp.First.SharesVertex(sp.Second))
	}
	require.Len(t, SegmentPairs(5, true), 5)
}

func TestSegmentCount(t *testing.T) {
	require.Equal(t, 10, SegmentCount(11, false))
	require.Equal(t, 11, SegmentCount(11, true))
	require.Equal(t, 1, SegmentCount(2, true))
	require.Equal(t, 0, SegmentCount(1, false))
}

func TestResizeSpheres(t *testing.T) {
	p := Resize(nil, 4, false)
	require.Len(t, p, 4)
	require.Equal(t, geom.Vec3{0, 0, 0}, p[0])
	require.InDelta(t, 1.8, p[1].X(), 1e-12)
	require.InDelta(t, 0.8, p[1].Y(), 1e-12)
	require.InDelta(t, 0.0, p[2].Z(), 1e-12)
	dir := p[2].Sub(p[1]).Normalize()
	lift := p[3].Sub(p[2]).Sub(dir.Mul(1.8))
	require.InDelta(t, 0.8, lift.Y(), 1e-9)
	require.InDelta(t, 0.0, lift.X(), 1e-9)

	shrunk := Resize(p, 1, false)
	require.Len(t, shrunk, 2)
	require.Equal(t, p[:2], shrunk)
}

func TestResizeSticksKeepsSegmentLength(t *testing.T) {
	p := Positions{{0, 0, 0}, {0, 3, 0}}
	p = Resize(p, 4, true)

	require.Len(t, p, 4)
	require.InDelta(t, 3.0, p.Dist(1, 2), 1e-12)
	require.InDelta(t, 3.0, p.Dist(2, 3), 1e-12)
	require.InDelta(t, 9.0, p[3].Y(), 1e-12)
}

func TestResizeCoincidentTailFallsBackToX(t *testing.T) {
	p := Positions{{1, 1, 1}, {1, 1, 1}}
	p = Extend(p, true)
	require.InDelta(t, 1+Diameter, p[2].X(), 1e-12)
}

func TestResizeClamps(t *testing.T) {
	require.Len(t, Resize(Line(5, 2), 1000, false), MaxCount)
}

func TestCopyFromTruncates(t *testing.T) {
	dst := Line(3, 2)
	n := dst.CopyFrom(Positions{{9, 9, 9}, {8, 8, 8}, {7, 7, 7}, {6, 6, 6}})
	require.Equal(t, 3, n)
	require.Equal(t, geom.Vec3{7, 7, 7}, dst[2])

	dst = Line(3, 2)
	n = dst.CopyFrom(Positions{{9, 9, 9}})
	require.Equal(t, 1, n)
	require.Equal(t, geom.Vec3{2, 0, 0}, dst[1])
}

func TestCaptureRestLengths(t *testing.T) {
	p := Positions{{0, 0, 0}, {3, 0, 0}, {3, 4, 0}}
	require.Equal(t, []float64{3, 4}, CaptureRestLengths(p, false))
	require.Equal(t, []float64{3, 4, 5}, CaptureRestLengths(p, true))
}

func TestFormatParseRoundTrip(t *testing.T) {
	p := Positions{{1.5, -2, 0.25}, {0, 0, 1e-7}}
	s := FormatPositions(p, 6)
	require.Equal(t, "[[1.500000,-2.000000,0.250000],[0.000000,0.000000,0.000000]]", s)

	got, err := ParsePositions(s)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.InDelta(t, 0.25, got[0].Z(), 1e-12)

	require.Equal(t, "[[null,1.0,2.0]]", FormatPositions(Positions{{math.Inf(1), 1, 2}}, 1))
}

func TestParsePositionsYAML(t *testing.T) {
	p, err := ParsePositions("- [0, 0, 0]\n- [2, 0, 0]\n")
	require.NoError(t, err)
	require.Len(t, p, 2)
}

func TestParsePositionsRejects(t *testing.T) {
	for _, s := range []string{"", "[[1,2]]", "[[1,2,null]]", "{a: 1}", "[[1,2,3"} {
		_, err := ParsePositions(s)
		require.Error(t, err, s)
		require.True(t, errors.Is(err, ErrMalformedPositions), s)
	}
}

func TestParseModeName(t *testing.T) {
	m, err := ParseModeName("sticks")
	require.NoError(t, err)
	require.Equal(t, "sticks", m.Name())

	_, err = ParseModeName("ropes")
	require.ErrorIs(t, err, ErrUnknownMode)
}
