package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/sim"
	"github.com/san-kum/cuesim/internal/table"
)

const (
	DefaultDataDir  = ".cuesim"
	DefaultSampleDt = 0.01
	DefaultAngle    = 90.0
	DefaultForce    = 800.0
)

type Config struct {
	Physics   PhysicsConfig `yaml:"physics"`
	Table     TableConfig   `yaml:"table"`
	Shot      ShotConfig    `yaml:"shot"`
	Rack      bool          `yaml:"rack"`
	Balls     []BallConfig  `yaml:"balls,omitempty"`
	MaxEvents int           `yaml:"max_events"`
	SampleDt  float64       `yaml:"sample_dt"`
	DataDir   string        `yaml:"data_dir"`
}

type PhysicsConfig struct {
	Mu            float64 `yaml:"mu"`
	Gravity       float64 `yaml:"gravity"`
	Radius        float64 `yaml:"radius"`
	CaptureRadius float64 `yaml:"capture_radius"`
	SpeedEpsilon  float64 `yaml:"speed_epsilon"`
	TimeEpsilon   float64 `yaml:"time_epsilon"`
}

type TableConfig struct {
	Width  float64 `yaml:"width"`
	Length float64 `yaml:"length"`
}

// ShotConfig is the cue strike. Angle is in degrees counter-clockwise from +x.
type ShotConfig struct {
	Ball  int     `yaml:"ball"`
	Angle float64 `yaml:"angle"`
	Force float64 `yaml:"force"`
}

// BallConfig places one ball. With Rack set it moves the racked ball of the
// same id instead of adding one.
type BallConfig struct {
	ID int     `yaml:"id"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
}

func DefaultConfig() *Config {
	p := dynamo.DefaultParams()
	return &Config{
		Physics: PhysicsConfig{
			Mu:            p.Mu,
			Gravity:       p.Gravity,
			Radius:        p.Radius,
			CaptureRadius: p.CaptureRadius,
			SpeedEpsilon:  p.SpeedEpsilon,
			TimeEpsilon:   p.TimeEpsilon,
		},
		Table: TableConfig{
			Width:  table.StandardWidth,
			Length: table.StandardLength,
		},
		Shot: ShotConfig{
			Ball:  0,
			Angle: DefaultAngle,
			Force: DefaultForce,
		},
		Rack:      true,
		MaxEvents: p.MaxEvents,
		SampleDt:  DefaultSampleDt,
		DataDir:   DefaultDataDir,
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
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Balls = append([]BallConfig(nil), c.Balls...)
	return &out
}

// ApplyEnv loads .env style files (a missing file is fine) and overlays any
// CUESIM_* variables set in the environment.
func (c *Config) ApplyEnv(files ...string) {
	_ = godotenv.Load(files...)

	c.Physics.Mu = getEnvFloat("CUESIM_MU", c.Physics.Mu)
	c.Physics.Gravity = getEnvFloat("CUESIM_GRAVITY", c.Physics.Gravity)
	if r := getEnvFloat("CUESIM_RADIUS", c.Physics.Radius); r != c.Physics.Radius {
		// keep the pocket mouth proportional to the ball
		c.Physics.CaptureRadius *= r / c.Physics.Radius
		c.Physics.Radius = r
	}
	c.MaxEvents = getEnvInt("CUESIM_MAX_EVENTS", c.MaxEvents)
	c.DataDir = getEnv("CUESIM_DATA_DIR", c.DataDir)
}

func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		Mu:            c.Physics.Mu,
		Gravity:       c.Physics.Gravity,
		Radius:        c.Physics.Radius,
		CaptureRadius: c.Physics.CaptureRadius,
		SpeedEpsilon:  c.Physics.SpeedEpsilon,
		TimeEpsilon:   c.Physics.TimeEpsilon,
		MaxEvents:     c.MaxEvents,
	}
}

func (c *Config) BuildTable() (*table.Table, error) {
	return table.NewStandard(c.Table.Width, c.Table.Length)
}

// BuildBalls lays out the balls described by c on tbl.
func (c *Config) BuildBalls(p dynamo.Params, tbl *table.Table) ([]*ball.Ball, error) {
	var balls []*ball.Ball
	if c.Rack {
		apex, cue := table.RackSpot(tbl)
		balls = table.Rack(p, apex, cue)
	}

	for _, bc := range c.Balls {
		pos := dynamo.V(bc.X, bc.Y)
		if !tbl.Contains(pos, p.Radius) {
			return nil, fmt.Errorf("ball %d at %v is off the table: %w", bc.ID, pos, dynamo.ErrInvalidGeometry)
		}
		placed := false
		for _, b := range balls {
			if b.ID == bc.ID {
				b.Respot(pos)
				placed = true
			}
		}
		if !placed {
			balls = append(balls, ball.New(bc.ID, ball.TypeForNumber(bc.ID), pos, p))
		}
	}

	if len(balls) == 0 {
		return nil, fmt.Errorf("no balls configured: %w", dynamo.ErrInvalidGeometry)
	}
	return balls, nil
}

// Strike converts the shot to simulation units.
func (c *Config) Strike() sim.Strike {
	return sim.Strike{
		Ball:  c.Shot.Ball,
		Phi:   c.Shot.Angle * math.Pi / 180,
		Force: c.Shot.Force,
	}
}

// NewSimulation builds a ready-to-strike simulation from c.
func (c *Config) NewSimulation() (*sim.Simulation, error) {
	p := c.Params()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	tbl, err := c.BuildTable()
	if err != nil {
		return nil, err
	}
	balls, err := c.BuildBalls(p, tbl)
	if err != nil {
		return nil, err
	}
	return sim.New(p, tbl, balls)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
