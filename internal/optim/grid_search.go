package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/knotsim/internal/sim"
)

var ErrNoTrials = errors.New("optim: no trial completed")

// Objective scores a finished run. Lower is better.
type Objective func(r *sim.Result) float64

// MetricObjective scores a run by one named metric plus effortWeight times
// the mean iterations per frame.
func MetricObjective(metric string, effortWeight float64) Objective {
	return func(r *sim.Result) float64 {
		v, ok := r.Metrics[metric]
		if !ok {
			return math.Inf(1)
		}
		return v + effortWeight*r.Metrics["iterations_per_frame"]
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// Search evaluates every grid point and returns the lowest-scoring one.
// A point whose build or run fails is recorded and skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*sim.Simulator, error),
	runCfg sim.RunConfig,
	objective Objective,
) (map[string]float64, float64, error) {
	trials, err := g.Trials(ctx, build, runCfg, objective)
	if err != nil {
		return nil, 0, err
	}
	return Best(trials)
}

// Trials evaluates every grid point and returns them in grid order.
func (g *GridSearch) Trials(
	ctx context.Context,
	build func(params map[string]float64) (*sim.Simulator, error),
	runCfg sim.RunConfig,
	objective Objective,
) ([]Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d parameter names but %d ranges", len(g.paramNames), len(g.ranges))
	}
	var trials []Trial
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, runCfg, objective, &trials); err != nil {
		return nil, err
	}
	return trials, nil
}

// Best picks the lowest-scoring successful trial. Ties keep the earlier one.
func Best(trials []Trial) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	for _, t := range trials {
		if t.Err != nil {
			continue
		}
		if bestParams == nil || t.Score < best {
			best = t.Score
			bestParams = make(map[string]float64, len(t.Params))
			for k, v := range t.Params {
				bestParams[k] = v
			}
		}
	}
	if bestParams == nil {
		return nil, 0, ErrNoTrials
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build func(map[string]float64) (*sim.Simulator, error),
	runCfg sim.RunConfig,
	objective Objective,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		trial := Trial{Params: current, Score: math.Inf(1)}
		s, err := build(current)
		if err != nil {
			trial.Err = err
			*trials = append(*trials, trial)
			return nil
		}

		result, err := s.Run(ctx, runCfg)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			trial.Err = err
			*trials = append(*trials, trial)
			return nil
		}

		trial.Score = objective(result)
		*trials = append(*trials, trial)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, runCfg, objective, trials); err != nil {
			return err
		}
	}
	return nil
}

// Range returns n evenly spaced values from lo to hi inclusive.
func Range(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
