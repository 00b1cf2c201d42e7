package sim

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRunConfig = errors.New("sim: invalid run configuration")
	ErrIndexOutOfRange  = errors.New("sim: element index out of range")
)

// FrameError reports the frame at which a run stopped.
type FrameError struct {
	Frame int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }
