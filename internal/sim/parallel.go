package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SweepOptions controls a parallel batch of shots.
type SweepOptions struct {
	// Limit bounds the number of concurrent simulations; <= 0 means NumCPU.
	Limit int
	// Metrics, when set, builds a fresh metric set for every shot.
	Metrics func() []Metric
}

// Sweep plays every strike against its own copy of base in parallel and
// returns the results in strike order. The first failing shot cancels the
// rest.
func Sweep(ctx context.Context, base *Simulation, strikes []Strike, opts SweepOptions) ([]*Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	results := make([]*Result, len(strikes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, st := range strikes {
		g.Go(func() error {
			s := base.Clone()
			if opts.Metrics != nil {
				for _, m := range opts.Metrics() {
					s.AddMetric(m)
				}
			}
			if err := s.Strike(st.Ball, st.Phi, st.Force); err != nil {
				return err
			}
			res, err := s.StepUntilQuiescent(gctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
