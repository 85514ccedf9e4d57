package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/table"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Params().Validate(); err != nil {
		t.Errorf("default params invalid: %v", err)
	}
	if !cfg.Rack {
		t.Error("default config should rack the balls")
	}
	if cfg.Table.Width != table.StandardWidth || cfg.Table.Length != table.StandardLength {
		t.Errorf("unexpected table size %vx%v", cfg.Table.Width, cfg.Table.Length)
	}

	s, err := cfg.NewSimulation()
	if err != nil {
		t.Fatalf("NewSimulation failed: %v", err)
	}
	if n := len(s.Balls()); n != table.NumBalls {
		t.Errorf("expected %d balls, got %d", table.NumBalls, n)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.yaml")
	cfg := GetPreset("pair", "head_on")
	cfg.Physics.Mu = 0.3
	cfg.MaxEvents = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Physics.Mu != 0.3 || loaded.MaxEvents != 42 {
		t.Errorf("loaded physics mu=%v max_events=%d", loaded.Physics.Mu, loaded.MaxEvents)
	}
	if len(loaded.Balls) != 2 || loaded.Balls[1].Y != 150 {
		t.Errorf("balls not preserved: %+v", loaded.Balls)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("shot:\n  angle: 45\n  force: 200\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Shot.Angle != 45 || cfg.Shot.Force != 200 {
		t.Errorf("shot not read: %+v", cfg.Shot)
	}
	if cfg.Physics.Gravity != dynamo.DefaultGravity {
		t.Errorf("expected default gravity, got %v", cfg.Physics.Gravity)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("CUESIM_DATA_DIR="+dir+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CUESIM_MU", "0.5")
	t.Setenv("CUESIM_MAX_EVENTS", "77")
	t.Setenv("CUESIM_RADIUS", "3")
	t.Setenv("CUESIM_GRAVITY", "not a number")
	t.Cleanup(func() { os.Unsetenv("CUESIM_DATA_DIR") })

	cfg := DefaultConfig()
	cfg.ApplyEnv(envFile)

	if cfg.Physics.Mu != 0.5 {
		t.Errorf("mu = %v, want 0.5", cfg.Physics.Mu)
	}
	if cfg.MaxEvents != 77 {
		t.Errorf("max events = %d, want 77", cfg.MaxEvents)
	}
	if cfg.Physics.Radius != 3 || cfg.Physics.CaptureRadius != 6 {
		t.Errorf("radius %v capture %v, want 3 and 6", cfg.Physics.Radius, cfg.Physics.CaptureRadius)
	}
	if cfg.Physics.Gravity != dynamo.DefaultGravity {
		t.Errorf("bad gravity should be ignored, got %v", cfg.Physics.Gravity)
	}
	if cfg.DataDir != dir {
		t.Errorf("data dir = %q, want %q from .env", cfg.DataDir, dir)
	}
}

func TestBuildBalls(t *testing.T) {
	p := dynamo.DefaultParams()
	tbl, _ := table.NewStandard(table.StandardWidth, table.StandardLength)

	t.Run("rack with moved cue", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Balls = []BallConfig{{ID: 0, X: 40, Y: 60}}
		balls, err := cfg.BuildBalls(p, tbl)
		if err != nil {
			t.Fatal(err)
		}
		if len(balls) != table.NumBalls {
			t.Errorf("expected %d balls, got %d", table.NumBalls, len(balls))
		}
		if balls[0].Pos != dynamo.V(40, 60) || balls[0].Type != ball.Cue {
			t.Errorf("cue not moved: %v", balls[0])
		}
	})

	t.Run("explicit balls", func(t *testing.T) {
		cfg := GetPreset("pair", "head_on")
		balls, err := cfg.BuildBalls(p, tbl)
		if err != nil {
			t.Fatal(err)
		}
		if len(balls) != 2 || balls[1].Type != ball.Solid {
			t.Errorf("unexpected balls %v", balls)
		}
	})

	errCases := []struct {
		name string
		cfg  *Config
	}{
		{"off table", shot(0, 10, BallConfig{ID: 0, X: -5, Y: 10})},
		{"no balls", shot(0, 10)},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.BuildBalls(p, tbl); !errors.Is(err, dynamo.ErrInvalidGeometry) {
				t.Errorf("expected ErrInvalidGeometry, got %v", err)
			}
		})
	}
}

func TestNewSimulationRejectsBadPhysics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Physics.Radius = -1
	if _, err := cfg.NewSimulation(); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("single", "straight")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Shot.Force != 300 {
		t.Errorf("expected force 300, got %f", cfg.Shot.Force)
	}

	cfg.Balls[0].X = 1
	if Presets["single"]["straight"].Balls[0].X == 1 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("single", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "straight") != nil {
		t.Error("expected nil for nonexistent group")
	}
	if Lookup("single") != nil {
		t.Error("expected nil for a reference without a name")
	}
	if Lookup("pocket/corner") == nil {
		t.Error("expected pocket/corner to resolve")
	}
}

func TestListPresets(t *testing.T) {
	if presets := ListPresets("rack"); len(presets) != 2 || presets[0] != "break" {
		t.Errorf("unexpected rack presets %v", presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent group")
	}
}

func TestPresetsPlayOut(t *testing.T) {
	for _, group := range Groups() {
		for _, name := range ListPresets(group) {
			t.Run(group+"/"+name, func(t *testing.T) {
				cfg := GetPreset(group, name)
				s, err := cfg.NewSimulation()
				if err != nil {
					t.Fatalf("build failed: %v", err)
				}
				st := cfg.Strike()
				if err := s.Strike(st.Ball, st.Phi, st.Force); err != nil {
					t.Fatalf("strike failed: %v", err)
				}
				res, err := s.StepUntilQuiescent(context.Background())
				if err != nil {
					t.Fatalf("run failed: %v", err)
				}
				if res.NumEvents() == 0 {
					t.Error("expected at least one event")
				}
				if group == "pocket" && len(res.Pocketed) != 1 {
					t.Errorf("expected the ball to drop, pocketed %v", res.Pocketed)
				}
			})
		}
	}
}
