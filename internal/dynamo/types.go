package dynamo

import (
	"fmt"
	"math"
)

// Vec2 is a point or direction on the table plane.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Polar returns the vector of length mag pointing along phi.
func Polar(phi, mag float64) Vec2 {
	return Vec2{X: mag * math.Cos(phi), Y: mag * math.Sin(phi)}
}

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2    { return Vec2{X: v.X * s, Y: v.Y * s} }
func (v Vec2) Dot(o Vec2) float64      { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Norm() float64           { return math.Hypot(v.X, v.Y) }
func (v Vec2) NormSquared() float64    { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Angle() float64          { return math.Atan2(v.Y, v.X) }
func (v Vec2) IsZero() bool            { return v.X == 0 && v.Y == 0 }
func (v Vec2) Distance(o Vec2) float64 { return v.Sub(o).Norm() }

// Unit returns v scaled to length one, or the zero vector when v has no length.
func (v Vec2) Unit() Vec2 {
	n := v.Norm()
	if n == 0 {
		return Vec2{}
	}
	return v.Scale(1 / n)
}

func (v Vec2) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", v.X, v.Y)
}

// Params holds the physical constants of one table session.
// A Params value is never mutated once a simulation has been built from it.
type Params struct {
	Mu            float64 `json:"mu" yaml:"mu"`
	Gravity       float64 `json:"gravity" yaml:"gravity"`
	Radius        float64 `json:"radius" yaml:"radius"`
	CaptureRadius float64 `json:"capture_radius" yaml:"capture_radius"`
	SpeedEpsilon  float64 `json:"speed_epsilon" yaml:"speed_epsilon"`
	TimeEpsilon   float64 `json:"time_epsilon" yaml:"time_epsilon"`
	MaxEvents     int     `json:"max_events" yaml:"max_events"`
}

const (
	DefaultMu           = 1.0     // rolling friction
	DefaultGravity      = 980.665 // cm/s^2
	DefaultRadius       = 2.8575  // cm
	DefaultSpeedEpsilon = 0.001   // cm/s
	DefaultTimeEpsilon  = 1e-9    // s
	DefaultMaxEvents    = 10000
)

func DefaultParams() Params {
	return Params{
		Mu:            DefaultMu,
		Gravity:       DefaultGravity,
		Radius:        DefaultRadius,
		CaptureRadius: 2 * DefaultRadius,
		SpeedEpsilon:  DefaultSpeedEpsilon,
		TimeEpsilon:   DefaultTimeEpsilon,
		MaxEvents:     DefaultMaxEvents,
	}
}

// Deceleration is the constant rate mu*g at which a rolling ball loses speed.
func (p Params) Deceleration() float64 { return p.Mu * p.Gravity }

func (p Params) Validate() error {
	positive := []struct {
		name string
		val  float64
	}{
		{"mu", p.Mu},
		{"gravity", p.Gravity},
		{"radius", p.Radius},
		{"capture_radius", p.CaptureRadius},
		{"speed_epsilon", p.SpeedEpsilon},
	}
	for _, f := range positive {
		if !(f.val > 0) || math.IsInf(f.val, 0) {
			return fmt.Errorf("%s must be positive, got %v: %w", f.name, f.val, ErrParameterBounds)
		}
	}
	if !(p.TimeEpsilon >= 0) || math.IsInf(p.TimeEpsilon, 0) {
		return fmt.Errorf("time_epsilon must be non-negative, got %v: %w", p.TimeEpsilon, ErrParameterBounds)
	}
	if p.MaxEvents <= 0 {
		return fmt.Errorf("max_events must be positive, got %d: %w", p.MaxEvents, ErrParameterBounds)
	}
	return nil
}

// FirstAdmissible picks the event time from a predicate's candidate roots:
// the smallest finite root strictly after TimeEpsilon and no later than
// horizon for which accept (when non-nil) reports true.
func (p Params) FirstAdmissible(roots []float64, horizon float64, accept func(t float64) bool) (float64, bool) {
	best := math.Inf(1)
	for _, t := range roots {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			continue
		}
		if t <= p.TimeEpsilon || t > horizon || t >= best {
			continue
		}
		if accept != nil && !accept(t) {
			continue
		}
		best = t
	}
	return best, !math.IsInf(best, 1)
}
