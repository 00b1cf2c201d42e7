package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/knotsim/internal/chain"
)

const (
	DefaultPreset       = "default11"
	DefaultFrames       = 120
	DefaultBaseIters    = 2
	DefaultSettlingIter = 6
	DefaultSettleFrames = 60
	DefaultDragFrames   = 10
	DefaultOverlapIters = 1
	DefaultPerturbSeed  = 42
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Preset       string          `yaml:"preset"`
	Count        int             `yaml:"count"`
	Mode         string          `yaml:"mode"`
	Ratio        float64         `yaml:"ratio"`
	StickRadius  float64         `yaml:"stick_radius"`
	Closed       bool            `yaml:"closed"`
	FixedLengths bool            `yaml:"fixed_lengths"`
	Frames       int             `yaml:"frames"`
	Iterations   IterationConfig `yaml:"iterations"`
	Perturb      PerturbConfig   `yaml:"perturb"`
}

// IterationConfig controls how many relaxation sweeps a frame gets.
type IterationConfig struct {
	Base         int `yaml:"base"`
	Settling     int `yaml:"settling"`
	SettleFrames int `yaml:"settle_frames"`
	DragFrames   int `yaml:"drag_frames"`
	Overlap      int `yaml:"overlap"`
}

// PerturbConfig describes a single displaced element applied before a run.
// A zero magnitude disables it.
type PerturbConfig struct {
	Seed      int64   `yaml:"seed"`
	Element   int     `yaml:"element"`
	Magnitude float64 `yaml:"magnitude"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:      DefaultPreset,
		Count:       11,
		Mode:        "spheres",
		Ratio:       chain.DefaultRatio,
		StickRadius: chain.DefaultStickRadius,
		Frames:      DefaultFrames,
		Iterations: IterationConfig{
			Base:         DefaultBaseIters,
			Settling:     DefaultSettlingIter,
			SettleFrames: DefaultSettleFrames,
			DragFrames:   DefaultDragFrames,
			Overlap:      DefaultOverlapIters,
		},
		Perturb: PerturbConfig{Seed: DefaultPerturbSeed, Element: -1},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings that cannot be clamped into range later.
func (c *Config) Validate() error {
	if _, err := chain.ParseModeName(c.Mode); err != nil {
		return err
	}
	if c.Preset != "" {
		if _, err := GetPreset(c.Preset); err != nil {
			return err
		}
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames must be non-negative, got %d", ErrInvalidConfig, c.Frames)
	}
	it := c.Iterations
	if it.Base < 0 || it.Settling < 0 || it.SettleFrames < 0 || it.DragFrames < 0 || it.Overlap < 0 {
		return fmt.Errorf("%w: iteration counts must be non-negative", ErrInvalidConfig)
	}
	return nil
}

// Params builds solver parameters for the configured mode. Rest lengths are
// not known until positions are loaded, so fixed lengths are left to the
// session.
func (c *Config) Params() (chain.Params, error) {
	mode, err := chain.ParseModeName(c.Mode)
	if err != nil {
		return chain.Params{}, err
	}
	switch mode.(type) {
	case chain.Spheres:
		mode = chain.Spheres{Ratio: chain.ClampRatio(c.Ratio)}
	case chain.Sticks:
		mode = chain.Sticks{Radius: chain.ClampStickRadius(c.StickRadius)}
	}
	return chain.Params{Diameter: chain.Diameter, Closed: c.Closed, Mode: mode}, nil
}
