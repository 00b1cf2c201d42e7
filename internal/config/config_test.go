package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/knotsim/internal/chain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Preset != DefaultPreset {
		t.Errorf("expected preset %s, got %s", DefaultPreset, cfg.Preset)
	}
	if cfg.Iterations.Base != 2 || cfg.Iterations.Settling != 6 {
		t.Errorf("unexpected iteration defaults: %+v", cfg.Iterations)
	}
	if cfg.Iterations.SettleFrames != 60 || cfg.Iterations.DragFrames != 10 {
		t.Errorf("unexpected settle windows: %+v", cfg.Iterations)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Preset = "trefoil11"
	cfg.Mode = "sticks"
	cfg.StickRadius = 0.2
	cfg.Closed = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Preset != "trefoil11" || got.Mode != "sticks" || !got.Closed {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.StickRadius != 0.2 {
		t.Errorf("expected stick radius 0.2, got %f", got.StickRadius)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("mode: sticks\nframes: 30\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Frames != 30 {
		t.Errorf("expected 30 frames, got %d", cfg.Frames)
	}
	if cfg.Iterations.Settling != DefaultSettlingIter {
		t.Errorf("expected default settling iterations, got %d", cfg.Iterations.Settling)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown mode", func(c *Config) { c.Mode = "ribbons" }, chain.ErrUnknownMode},
		{"unknown preset", func(c *Config) { c.Preset = "granny" }, ErrUnknownPreset},
		{"negative frames", func(c *Config) { c.Frames = -1 }, ErrInvalidConfig},
		{"negative overlap", func(c *Config) { c.Iterations.Overlap = -2 }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParamsClamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ratio = 5
	params, err := cfg.Params()
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := params.Mode.(chain.Spheres); !ok || m.Ratio != chain.MaxRatio {
		t.Errorf("expected clamped spheres mode, got %#v", params.Mode)
	}

	cfg.Mode = "sticks"
	cfg.StickRadius = 0
	params, _ = cfg.Params()
	if m, ok := params.Mode.(chain.Sticks); !ok || m.Radius != chain.MinStickRadius || m.Fixed() {
		t.Errorf("expected clamped sticks mode, got %#v", params.Mode)
	}
}

func TestGetPreset(t *testing.T) {
	p, err := GetPreset("trefoil11")
	if err != nil {
		t.Fatalf("expected preset, got %v", err)
	}
	if p.Count() != 11 {
		t.Errorf("expected 11 elements, got %d", p.Count())
	}

	pos := p.Positions()
	pos[0][0] = 99
	if Presets["trefoil11"].Points[0][0] == 99 {
		t.Error("Positions must not alias the catalog")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if _, err := GetPreset("granny"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	want := []string{"default11", "double_overhand_18", "figure8_16", "knot_9_29", "stevedore_22", "trefoil11"}
	if len(names) != len(want) {
		t.Fatalf("expected %d presets, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestPresetCounts(t *testing.T) {
	counts := map[string]int{
		"default11": 11, "trefoil11": 11, "figure8_16": 16,
		"double_overhand_18": 18, "stevedore_22": 22, "knot_9_29": 9,
	}
	for name, n := range counts {
		if got := Presets[name].Count(); got != n {
			t.Errorf("%s: expected %d elements, got %d", name, n, got)
		}
	}
}

func TestDefaultZigzag(t *testing.T) {
	p := Presets["default11"]
	if p.Points[3] != [3]float64{5.4, 0.8, 0} {
		t.Errorf("unexpected element 3: %v", p.Points[3])
	}
	lo, hi := p.Bounds()
	if lo[1] != 0 || hi[1] != 0.8 || hi[0] != 18 {
		t.Errorf("unexpected bounds %v %v", lo, hi)
	}
}
