package chain

// Pair is an unordered pair of element indices.
type Pair struct {
	I, J int
}

// Segment is the edge between elements A and B; Index is its position in
// segment order, which is also its index into rest lengths.
type Segment struct {
	Index int
	A, B  int
}

func (s Segment) SharesVertex(o Segment) bool {
	return s.A == o.A || s.A == o.B || s.B == o.A || s.B == o.B
}

// SegmentPair is two segments that share no vertex.
type SegmentPair struct {
	First, Second Segment
}

// wraps reports whether the closing edge n-1 -> 0 exists as a distinct edge.
func wraps(n int, closed bool) bool { return closed && n >= 3 }

func SegmentCount(n int, closed bool) int {
	if n < 2 {
		return 0
	}
	if wraps(n, closed) {
		return n
	}
	return n - 1
}

func Segments(n int, closed bool) []Segment {
	count := SegmentCount(n, closed)
	segs := make([]Segment, count)
	for i := range segs {
		segs[i] = Segment{Index: i, A: i, B: (i + 1) % n}
	}
	return segs
}

// IsAdjacent reports whether elements i and j are neighbors in the chain.
func IsAdjacent(i, j, n int, closed bool) bool {
	if i > j {
		i, j = j, i
	}
	if j-i == 1 {
		return true
	}
	return wraps(n, closed) && i == 0 && j == n-1
}

// NeighborPairs lists the tangency pairs: (i, i+1) in order, then the wrap
// pair (n-1, 0) when closed.
func NeighborPairs(n int, closed bool) []Pair {
	if n < 2 {
		return nil
	}
	pairs := make([]Pair, 0, n)
	for i := 0; i < n-1; i++ {
		pairs = append(pairs, Pair{I: i, J: i + 1})
	}
	if wraps(n, closed) {
		pairs = append(pairs, Pair{I: n - 1, J: 0})
	}
	return pairs
}

// NonNeighborPairs lists every pair the overlap constraint applies to.
func NonNeighborPairs(n int, closed bool) []Pair {
	var pairs []Pair
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if IsAdjacent(i, j, n, closed) {
				continue
			}
			pairs = append(pairs, Pair{I: i, J: j})
		}
	}
	return pairs
}

// SegmentPairs lists every pair of segments that share no vertex.
func SegmentPairs(n int, closed bool) []SegmentPair {
	segs := Segments(n, closed)
	var pairs []SegmentPair
	for a := 0; a < len(segs); a++ {
		for b := a + 1; b < len(segs); b++ {
			if segs[a].SharesVertex(segs[b]) {
				continue
			}
			pairs = append(pairs, SegmentPair{First: segs[a], Second: segs[b]})
		}
	}
	return pairs
}
