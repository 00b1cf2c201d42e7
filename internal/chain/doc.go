// Package chain defines the data model shared by the solver, the
// diagnostics scan and the session layer.
//
//   - [Positions]: the mutable buffer of element centers the solver works on
//   - [Params]: topology plus the active [Mode]
//   - [Spheres], [Sticks]: the two constraint modes
//   - [Pair], [Segment], [SegmentPair]: index enumeration honoring topology
//
// Parameter setters never fail. Out-of-range values are clamped with
// [ClampRatio], [ClampStickRadius] and [ClampCount].
//
// # Topology
//
// A closed chain treats element n-1 as adjacent to element 0. For n <= 2 the
// wrap pair coincides with the only neighbor pair and is not duplicated. A
// closed chain of exactly three elements has no non-adjacent pair at all, so
// overlap and self-intersection checks never apply to it.
package chain
