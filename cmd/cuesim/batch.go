package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"text/tabwriter"

	"github.com/san-kum/cuesim/internal/automation"
	"github.com/san-kum/cuesim/internal/metrics"
	"github.com/san-kum/cuesim/internal/optim"
	"github.com/san-kum/cuesim/internal/sim"
	"github.com/san-kum/cuesim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	trials      int
	seed        int64
	angleJitter float64
	forceJitter float64
	minForce    float64
	maxForce    float64
	forceSteps  int
	metricName  string
	maximize    bool
)

func batchCommands() []*cobra.Command {
	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "play a scripted sequence of shots",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&save, "save", true, "store every step")

	mcCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "estimate how often a shot works under stroke noise",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addShotFlags(mcCmd)
	mcCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	mcCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time)")
	mcCmd.Flags().Float64Var(&angleJitter, "angle-jitter", 1, "angle noise half-width (degrees)")
	mcCmd.Flags().Float64Var(&forceJitter, "force-jitter", 0.05, "force noise half-width (fraction)")
	mcCmd.Flags().IntVar(&workers, "workers", 0, "parallel shots (0 = all cpus)")

	searchCmd := &cobra.Command{
		Use:   "search [preset]",
		Short: "grid search strike angle and force for a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearch,
	}
	addShotFlags(searchCmd)
	searchCmd.Flags().Float64Var(&fromAngle, "from", 0, "first angle (degrees)")
	searchCmd.Flags().Float64Var(&toAngle, "to", 360, "last angle (degrees)")
	searchCmd.Flags().IntVar(&steps, "steps", 73, "number of angles")
	searchCmd.Flags().Float64Var(&minForce, "min-force", 200, "softest strike")
	searchCmd.Flags().Float64Var(&maxForce, "max-force", 1000, "hardest strike")
	searchCmd.Flags().IntVar(&forceSteps, "force-steps", 5, "number of forces")
	searchCmd.Flags().StringVar(&metricName, "metric", "pocketed", "metric to optimise")
	searchCmd.Flags().BoolVar(&maximize, "max", true, "maximise instead of minimise")
	searchCmd.Flags().IntVar(&workers, "workers", 0, "parallel shots (0 = all cpus)")

	return []*cobra.Command{scenarioCmd, mcCmd, searchCmd}
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	log.Printf("[SCENARIO] %s: %d steps", sc.Name, len(sc.Steps))
	results, err := automation.RunScenario(ctx, sc)

	store := storage.New(dataDir)
	if save {
		if ierr := store.Init(); ierr != nil {
			return ierr
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tEVENTS\tTIME\tPOCKETED\tRUN")
	for i, r := range results {
		runID := "-"
		if save {
			id, serr := store.Save(storage.Run{
				Name:     r.Name,
				Params:   r.Params,
				Table:    r.Table,
				Strike:   r.Strike,
				Result:   r.Result,
				SampleDt: r.Config.SampleDt,
			})
			if serr != nil {
				return serr
			}
			runID = id
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.3fs\t%v\t%s\n", i+1, r.Name, r.Result.NumEvents(), r.Result.Duration(), r.Result.Pocketed, runID)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	log.Printf("[MONTECARLO] %s: %d trials, ±%.2f° ±%.0f%%", name, trials, angleJitter, forceJitter*100)
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:        cfg,
		AngleJitter: angleJitter,
		ForceJitter: forceJitter,
		NumTrials:   trials,
		Seed:        seed,
		Workers:     workers,
	})
	if err != nil {
		return err
	}

	counts := make(map[int]int)
	events := 0
	for _, r := range results {
		events += r.Events
		for _, id := range r.Pocketed {
			counts[id]++
		}
	}

	fmt.Printf("trials: %d\n", len(results))
	fmt.Printf("mean events: %.1f\n", float64(events)/float64(len(results)))
	made, missed := automation.MonteCarloStats(results, cfg.Shot.Ball)
	fmt.Printf("struck ball pocketed: %d, stayed up: %d\n", made, missed)
	for id := 0; id <= 15; id++ {
		if n, ok := counts[id]; ok {
			fmt.Printf("  ball %d: %5.1f%%\n", id, 100*float64(n)/float64(len(results)))
		}
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if steps < 1 || forceSteps < 1 {
		return fmt.Errorf("grid needs at least one angle and one force")
	}

	base, err := cfg.NewSimulation()
	if err != nil {
		return err
	}

	angles := optim.Linspace(fromAngle*math.Pi/180, toAngle*math.Pi/180, steps)
	forces := optim.Linspace(minForce, maxForce, forceSteps)
	g := optim.NewGridSearch(cfg.Shot.Ball, angles, forces)
	g.Workers = workers

	score := optim.MinimizeMetric(metricName)
	if maximize {
		score = optim.MaximizeMetric(metricName)
	}

	ctx, cancel := interruptible()
	defer cancel()

	log.Printf("[SEARCH] %s: %d shots for %s", name, len(angles)*len(forces), metricName)
	best, val, err := g.Search(ctx, base, score, func() []sim.Metric { return metrics.Standard(base.Params()) })
	if err != nil {
		return err
	}
	if maximize {
		val = -val
	}

	fmt.Printf("best strike: ball %d at %.2f° with %.0f cm/s\n", best.Ball, best.Phi*180/math.Pi, best.Force)
	fmt.Printf("%s: %.6f\n", metricName, val)
	return nil
}
