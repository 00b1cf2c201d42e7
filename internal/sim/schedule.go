package sim

import "github.com/san-kum/knotsim/internal/config"

// Schedule holds the per-frame iteration policy.
type Schedule struct {
	Base         int
	Settling     int
	SettleFrames int
	DragFrames   int
	Overlap      int
}

func DefaultSchedule() Schedule {
	return ScheduleFromConfig(config.DefaultConfig().Iterations)
}

func ScheduleFromConfig(it config.IterationConfig) Schedule {
	return Schedule{
		Base:         it.Base,
		Settling:     it.Settling,
		SettleFrames: it.SettleFrames,
		DragFrames:   it.DragFrames,
		Overlap:      it.Overlap,
	}
}

// Scheduler raises the iteration count for a window of frames after a
// discontinuous change and falls back to the base count afterwards.
type Scheduler struct {
	Schedule
	remaining int
}

func NewScheduler(s Schedule) *Scheduler {
	return &Scheduler{Schedule: s}
}

// Kick restarts the settling window with the given length. A shorter kick
// replaces a longer one.
func (s *Scheduler) Kick(frames int) {
	if frames < 0 {
		frames = 0
	}
	s.remaining = frames
}

// Next returns the projection iterations for the coming frame and consumes
// one settling frame.
func (s *Scheduler) Next() int {
	if s.remaining > 0 {
		s.remaining--
		return s.Settling
	}
	return s.Base
}

func (s *Scheduler) Remaining() int { return s.remaining }

// Active reports whether the settling window is open.
func (s *Scheduler) Active() bool { return s.remaining > 0 }
