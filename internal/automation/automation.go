package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/cuesim/internal/config"
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/metrics"
	"github.com/san-kum/cuesim/internal/sim"
	"github.com/san-kum/cuesim/internal/table"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of shots.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one shot. The layout comes from Preset or from the Config
// file; Angle and Force override the shot when set.
type ScenarioStep struct {
	Preset string   `yaml:"preset"`
	Config string   `yaml:"config"`
	Angle  *float64 `yaml:"angle"`
	Force  *float64 `yaml:"force"`
	SaveAs string   `yaml:"save_as"`
}

// StepResult is a played scenario step.
type StepResult struct {
	Name   string
	Params dynamo.Params
	Table  *table.Table
	Strike sim.Strike
	Result *sim.Result
	Config *config.Config
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

func (s ScenarioStep) resolve() (*config.Config, string, error) {
	var cfg *config.Config
	name := s.Preset
	switch {
	case s.Config != "":
		c, err := config.Load(s.Config)
		if err != nil {
			return nil, "", err
		}
		cfg, name = c, s.Config
	case s.Preset != "":
		cfg = config.Lookup(s.Preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset %q", s.Preset)
		}
	default:
		return nil, "", fmt.Errorf("step needs a preset or a config")
	}

	if s.Angle != nil {
		cfg.Shot.Angle = *s.Angle
	}
	if s.Force != nil {
		cfg.Shot.Force = *s.Force
	}
	if s.SaveAs != "" {
		name = s.SaveAs
	}
	return cfg, name, nil
}

// RunScenario plays every step in order with the standard metrics. It stops
// at the first failing step and returns the steps played so far.
func RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, name, err := step.resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Printf("Running step %d/%d: %s\n", i+1, len(scenario.Steps), name)

		s, err := cfg.NewSimulation()
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		for _, m := range metrics.Standard(s.Params()) {
			s.AddMetric(m)
		}

		st := cfg.Strike()
		if err := s.Strike(st.Ball, st.Phi, st.Force); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		result, err := s.StepUntilQuiescent(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{
			Name:   name,
			Params: s.Params(),
			Table:  s.Table(),
			Strike: st,
			Result: result,
			Config: cfg,
		})
	}

	return results, nil
}

// MonteCarloConfig perturbs one shot to estimate how forgiving it is.
// AngleJitter is in degrees and ForceJitter a fraction of the force; both
// are the half-width of a uniform distribution.
type MonteCarloConfig struct {
	Base        *config.Config
	AngleJitter float64
	ForceJitter float64
	NumTrials   int
	Seed        int64
	Workers     int
}

type MonteCarloResult struct {
	TrialID  int
	Strike   sim.Strike
	Events   int
	Pocketed []int
}

// RunMonteCarlo plays NumTrials perturbed copies of the base shot in
// parallel. The same seed gives the same trials.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Base == nil || cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("monte carlo needs a base shot and at least one trial")
	}

	base, err := cfg.Base.NewSimulation()
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	strikes := make([]sim.Strike, cfg.NumTrials)
	for i := range strikes {
		c := cfg.Base.Clone()
		c.Shot.Angle += (rng.Float64() - 0.5) * 2 * cfg.AngleJitter
		c.Shot.Force *= 1 + (rng.Float64()-0.5)*2*cfg.ForceJitter
		strikes[i] = c.Strike()
	}

	runs, err := sim.Sweep(ctx, base, strikes, sim.SweepOptions{Limit: cfg.Workers})
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		results[i] = MonteCarloResult{
			TrialID:  i,
			Strike:   strikes[i],
			Events:   r.NumEvents(),
			Pocketed: r.Pocketed,
		}
	}
	return results, nil
}

// MonteCarloStats counts the trials that pocketed ball id and those that
// did not.
func MonteCarloStats(results []MonteCarloResult, id int) (made int, missed int) {
	for _, r := range results {
		hit := false
		for _, p := range r.Pocketed {
			if p == id {
				hit = true
				break
			}
		}
		if hit {
			made++
		} else {
			missed++
		}
	}
	return
}
