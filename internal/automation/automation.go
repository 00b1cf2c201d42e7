package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/knotsim/internal/config"
	"github.com/san-kum/knotsim/internal/diagnose"
	"github.com/san-kum/knotsim/internal/geom"
	"github.com/san-kum/knotsim/internal/sim"
)

var (
	ErrEmptyStep         = errors.New("automation: step has no operation")
	ErrMalformedStep     = errors.New("automation: malformed step")
	ErrExpectationFailed = errors.New("automation: expectation failed")
)

// Scenario is a scripted sequence of session operations.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// DragStep moves one element and optionally releases it.
type DragStep struct {
	Element int        `yaml:"element"`
	To      [3]float64 `yaml:"to"`
	Release bool       `yaml:"release"`
}

// ScenarioStep holds one or more operations. They run in field order.
type ScenarioStep struct {
	Preset       string    `yaml:"preset"`
	Mode         string    `yaml:"mode"`
	Count        *int      `yaml:"count"`
	Ratio        *float64  `yaml:"ratio"`
	StickRadius  *float64  `yaml:"stick_radius"`
	Closed       *bool     `yaml:"closed"`
	FixedLengths *bool     `yaml:"fixed_lengths"`
	Positions    string    `yaml:"positions"`
	CaptureRest  bool      `yaml:"capture_rest"`
	Drag         *DragStep `yaml:"drag"`
	Release      bool      `yaml:"release"`
	Settle       int       `yaml:"settle"`
	Frames       int       `yaml:"frames"`
	Distances    []int     `yaml:"distances"`
	Print        bool      `yaml:"print"`
	Digits       int       `yaml:"digits"`
	ExpectClean  bool      `yaml:"expect_clean"`
}

// StepResult is what a step leaves behind for the caller.
type StepResult struct {
	Step      int
	Count     int
	Distances []sim.Distance
	Findings  []string
	Positions string
	Violation float64
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	for i, step := range scenario.Steps {
		if step.empty() {
			return nil, fmt.Errorf("step %d: %w", i+1, ErrEmptyStep)
		}
	}
	return &scenario, nil
}

func (s ScenarioStep) empty() bool {
	return s.Preset == "" && s.Mode == "" && s.Count == nil && s.Ratio == nil &&
		s.StickRadius == nil && s.Closed == nil && s.FixedLengths == nil &&
		s.Positions == "" && !s.CaptureRest && s.Drag == nil && !s.Release &&
		s.Settle == 0 && s.Frames == 0 && s.Distances == nil && !s.Print && !s.ExpectClean
}

// RunScenario applies every step to session in order, echoing progress to
// out. It stops at the first failing step.
func RunScenario(ctx context.Context, scenario *Scenario, session *sim.Session, out io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		fmt.Fprintf(out, "Running step %d/%d\n", i+1, len(scenario.Steps))
		res, err := runStep(ctx, step, session, out)
		res.Step = i + 1
		results = append(results, res)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return results, nil
}

func runStep(ctx context.Context, step ScenarioStep, s *sim.Session, out io.Writer) (StepResult, error) {
	var res StepResult

	if step.Preset != "" {
		if err := s.LoadPreset(step.Preset); err != nil {
			return res, err
		}
	}
	if step.Mode != "" {
		if err := s.SetMode(step.Mode); err != nil {
			return res, err
		}
	}
	if step.Count != nil {
		s.SetCount(*step.Count)
	}
	if step.Ratio != nil {
		s.SetRatio(*step.Ratio)
	}
	if step.StickRadius != nil {
		s.SetStickRadius(*step.StickRadius)
	}
	if step.Closed != nil {
		if err := s.SetClosed(*step.Closed); err != nil {
			return res, err
		}
	}
	if step.FixedLengths != nil {
		s.SetFixedLengths(*step.FixedLengths)
	}
	if step.Positions != "" {
		if !s.SetPositionsFromString(step.Positions) {
			return res, fmt.Errorf("%w: positions", ErrMalformedStep)
		}
	}
	if step.CaptureRest {
		s.CaptureRestLengths()
	}
	if step.Drag != nil {
		if err := s.Drag(step.Drag.Element, geom.Vec3(step.Drag.To)); err != nil {
			return res, err
		}
		if step.Drag.Release {
			s.Release()
		}
	}
	if step.Release {
		s.Release()
	}
	if step.Settle > 0 {
		if err := s.Settle(step.Settle); err != nil {
			return res, err
		}
	}
	if step.Frames > 0 {
		if err := sim.New(s).RunWithCallback(ctx, step.Frames, func(sim.Frame) bool { return true }); err != nil {
			return res, err
		}
	}

	res.Count = s.Count()
	res.Findings = diagnose.Strings(s.Findings())
	res.Violation = s.Violation()

	if step.Distances != nil {
		res.Distances = s.Distances(step.Distances)
		for _, d := range res.Distances {
			fmt.Fprintf(out, "  d(%d,%d) = %.6f\n", d.I, d.J, d.D)
		}
	}
	if step.Print {
		digits := step.Digits
		if digits <= 0 {
			digits = 6
		}
		res.Positions = s.PositionsString(digits)
		fmt.Fprintf(out, "  %s\n", res.Positions)
	}
	if step.ExpectClean && len(res.Findings) > 0 {
		return res, fmt.Errorf("%w: %s", ErrExpectationFailed, res.Findings[0])
	}

	return res, nil
}

// ParameterSweep settles a preset at evenly spaced values of one parameter.
type ParameterSweep struct {
	Preset    string
	Mode      string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Frames    int
}

type SweepResult struct {
	ParamValue float64
	Applied    float64
	Residual   float64
	Findings   int
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, out io.Writer) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one step", ErrMalformedStep)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := config.DefaultConfig()
		cfg.Preset = sweep.Preset
		cfg.Mode = sweep.Mode
		s, err := sim.FromConfig(cfg)
		if err != nil {
			return nil, err
		}

		var applied float64
		switch sweep.ParamName {
		case "ratio":
			applied = s.SetRatio(paramVal)
		case "stick_radius", "radius":
			applied = s.SetStickRadius(paramVal)
		case "count":
			applied = float64(s.SetCount(int(paramVal + 0.5)))
		default:
			return nil, fmt.Errorf("%w: unknown sweep parameter %q", ErrMalformedStep, sweep.ParamName)
		}
		s.Release()

		if _, err := sim.New(s).Run(ctx, sim.RunConfig{Frames: sweep.Frames}); err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Applied:    applied,
			Residual:   s.Violation(),
			Findings:   len(s.Findings()),
		})

		fmt.Fprintf(out, "Sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, applied)
	}

	return results, nil
}

// MonteCarloConfig drags a random element of a preset by a fixed magnitude
// in each trial and lets it settle.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Frames       int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID  int
	Seed     int64
	Element  int
	Residual float64
	Findings []string
	Clean    bool
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	elements := make([]int, cfg.NumTrials)
	factory := func(seed int64) (*sim.Simulator, error) {
		s, err := sim.FromConfig(cfg.Base)
		if err != nil {
			return nil, err
		}
		el, err := s.Perturb(rand.New(rand.NewSource(seed)), -1, cfg.Perturbation)
		if err != nil {
			return nil, err
		}
		elements[seed-cfg.Seed] = el
		return sim.New(s), nil
	}

	runs, err := sim.NewEnsemble(factory, cfg.NumTrials, cfg.Seed).Run(ctx, sim.RunConfig{Frames: cfg.Frames})
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		residual := 0.0
		if n := len(r.Violations); n > 0 {
			residual = r.Violations[n-1]
		}
		results[i] = MonteCarloResult{
			TrialID:  i,
			Seed:     r.Seed,
			Element:  elements[i],
			Residual: residual,
			Findings: diagnose.Strings(r.Findings),
			Clean:    len(r.Findings) == 0,
		}
	}
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (clean int, dirty int) {
	for _, r := range results {
		if r.Clean {
			clean++
		} else {
			dirty++
		}
	}
	return
}
