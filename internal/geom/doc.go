// Package geom provides the geometric primitives used by the chain solver.
//
// Vectors are [mgl64.Vec3] values; the package adds distance helpers and
// the closest-point query between two finite segments:
//
//   - [Dist], [DistSq]: point distances
//   - [ClosestPoints]: closest points between segments p1-q1 and p2-q2
//
// # Degenerate Segments
//
// [ClosestPoints] classifies the pair before solving. A segment whose squared
// length is at most [Epsilon] is treated as a point, and nearly parallel
// segments fall back to the start of the first segment before clamping:
//
//	c := geom.ClosestPoints(p1, q1, p2, q2)
//	if c.DistSq < minD*minD {
//	    // separate along c.C1 - c.C2
//	}
package geom
