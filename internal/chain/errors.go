package chain

import "errors"

var (
	// ErrMalformedPositions indicates position text that is not a list of 3D points.
	ErrMalformedPositions = errors.New("chain: malformed position list")

	// ErrInvalidPositions indicates a buffer holding NaN or Inf coordinates.
	ErrInvalidPositions = errors.New("chain: invalid positions (NaN or Inf detected)")

	// ErrUnknownMode indicates a mode name other than spheres or sticks.
	ErrUnknownMode = errors.New("chain: unknown mode")
)
