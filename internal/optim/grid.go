package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/cuesim/internal/sim"
)

// Score rates a played shot; lower is better.
type Score func(r *sim.Result) float64

// GridSearch plays every angle/force combination from a fixed layout.
type GridSearch struct {
	Ball    int
	Angles  []float64 // radians
	Forces  []float64
	Workers int
}

func NewGridSearch(ball int, angles, forces []float64) *GridSearch {
	return &GridSearch{Ball: ball, Angles: angles, Forces: forces}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// Search returns the strike with the lowest score. Ties keep the first
// strike in angle-major order.
func (g *GridSearch) Search(ctx context.Context, base *sim.Simulation, score Score, metrics func() []sim.Metric) (sim.Strike, float64, error) {
	strikes := make([]sim.Strike, 0, len(g.Angles)*len(g.Forces))
	for _, phi := range g.Angles {
		for _, f := range g.Forces {
			strikes = append(strikes, sim.Strike{Ball: g.Ball, Phi: phi, Force: f})
		}
	}
	if len(strikes) == 0 {
		return sim.Strike{}, 0, fmt.Errorf("empty search grid")
	}

	results, err := sim.Sweep(ctx, base, strikes, sim.SweepOptions{Limit: g.Workers, Metrics: metrics})
	if err != nil {
		return sim.Strike{}, 0, err
	}

	best, bestIdx := math.Inf(1), 0
	for i, r := range results {
		if v := score(r); v < best {
			best, bestIdx = v, i
		}
	}
	return strikes[bestIdx], best, nil
}

// MinimizeMetric scores by a named metric.
func MinimizeMetric(name string) Score {
	return func(r *sim.Result) float64 {
		v, ok := r.Metrics[name]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

// MaximizeMetric scores by the negated metric.
func MaximizeMetric(name string) Score {
	return func(r *sim.Result) float64 {
		v, ok := r.Metrics[name]
		if !ok {
			return math.Inf(1)
		}
		return -v
	}
}
