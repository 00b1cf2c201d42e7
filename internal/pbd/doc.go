// Package pbd implements the position-based correction passes that keep a
// chain of spheres or sticks consistent.
//
// Every pass mutates the buffer in place and runs a caller-chosen number of
// iterations. None of them report non-convergence; residual violations are
// the business of package diagnose.
//
//   - [ProjectTangency]: neighbor distance toward a uniform target
//   - [EnforcePairTangency]: a single pair toward a target
//   - [ResolveOverlaps]: one-sided repulsion of listed element pairs
//   - [ResolveSelfIntersections]: capsule separation of listed segment pairs
//   - [EnforceSegmentLengths]: each segment toward its rest length
package pbd
