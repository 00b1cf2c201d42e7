package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/knotsim/internal/chain"
)

// Simulator drives a session frame by frame and feeds metrics and
// observers.
type Simulator struct {
	session   *Session
	metrics   []Metric
	observers []Observer
}

func New(session *Session) *Simulator {
	return &Simulator{
		session:   session,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) Session() *Session { return s.session }

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Violations: make([]float64, 0, cfg.Frames),
		Metrics:    make(map[string]float64),
	}
	if cfg.Record {
		result.Trajectory = make([]chain.Positions, 0, cfg.Frames+1)
		result.Trajectory = append(result.Trajectory, s.session.Positions())
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, &FrameError{Frame: i, Err: ctx.Err()}
		default:
		}

		if err := s.session.Advance(); err != nil {
			s.finish(result)
			return result, &FrameError{Frame: i, Err: err}
		}

		f := s.session.snapshot()
		result.Violations = append(result.Violations, f.Violation)
		if cfg.Record {
			result.Trajectory = append(result.Trajectory, f.Positions)
		}
		for _, m := range s.metrics {
			m.Observe(f)
		}
		for _, obs := range s.observers {
			obs.OnFrame(f)
		}
		result.Frames++
	}

	s.finish(result)
	return result, nil
}

func (s *Simulator) finish(result *Result) {
	result.Final = s.session.Positions()
	result.Findings = s.session.Findings()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg RunConfig) error {
	if cfg.Frames < 0 {
		return fmt.Errorf("%w: frames must be non-negative, got %d", ErrInvalidRunConfig, cfg.Frames)
	}
	return nil
}

// RunWithCallback advances until callback returns false, the context ends,
// or maxFrames frames have run. maxFrames <= 0 means no limit.
func (s *Simulator) RunWithCallback(ctx context.Context, maxFrames int, callback func(Frame) bool) error {
	for i := 0; maxFrames <= 0 || i < maxFrames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.session.Advance(); err != nil {
			return &FrameError{Frame: i, Err: err}
		}
		if !callback(s.session.snapshot()) {
			return nil
		}
	}
	return nil
}
