package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/cuesim/internal/config"
	"github.com/san-kum/cuesim/internal/metrics"
	"github.com/san-kum/cuesim/internal/sim"
	"github.com/san-kum/cuesim/internal/storage"
	"github.com/san-kum/cuesim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	envFile    string
	preset     string
	angle      float64
	force      float64
	cueBall    int
	save       bool
	watch      bool
	showEvents bool
	// sweep
	fromAngle float64
	toAngle   float64
	steps     int
	workers   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cuesim",
		Short:         "event-driven pool shot simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "environment file")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "play one shot to rest",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShot,
	}
	addShotFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", true, "store the run")
	runCmd.Flags().BoolVar(&watch, "watch", false, "replay the shot when done")
	runCmd.Flags().BoolVar(&showEvents, "events", false, "print the event log")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "play the same shot over a range of angles",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addShotFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&fromAngle, "from", 80, "first angle (degrees)")
	sweepCmd.Flags().Float64Var(&toAngle, "to", 100, "last angle (degrees)")
	sweepCmd.Flags().IntVar(&steps, "steps", 21, "number of angles")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel shots (0 = all cpus)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print a run and its events",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot ball speed and kinetic energy",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&cueBall, "ball", 0, "ball id to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json or svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json or svg")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")

	watchCmd := &cobra.Command{
		Use:   "watch [run_id]",
		Short: "replay a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  watchRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).Delete(args[0])
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, listCmd, showCmd, plotCmd, exportCmd, watchCmd, presetsCmd, deleteCmd)
	rootCmd.AddCommand(batchCommands()...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addShotFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset as group/name")
	cmd.Flags().Float64Var(&angle, "angle", config.DefaultAngle, "strike angle in degrees")
	cmd.Flags().Float64Var(&force, "force", config.DefaultForce, "strike speed (cm/s)")
	cmd.Flags().IntVar(&cueBall, "ball", 0, "ball to strike")
}

// loadConfig resolves the shot from, in increasing priority: defaults, a
// preset, a config file, the environment and explicit flags.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	cfg, name := config.DefaultConfig(), "rack/break"

	ref := preset
	if len(args) > 0 {
		ref = args[0]
	}
	if ref != "" {
		cfg = config.Lookup(ref)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (see cuesim presets)", ref)
		}
		name = ref
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		name = strings.TrimSuffix(configFile, ".yaml")
		log.Printf("[CONFIG] loaded %s", configFile)
	}

	cfg.ApplyEnv(envFile)

	if cmd.Flags().Changed("angle") {
		cfg.Shot.Angle = angle
	}
	if cmd.Flags().Changed("force") {
		cfg.Shot.Force = force
	}
	if cmd.Flags().Changed("ball") {
		cfg.Shot.Ball = cueBall
	}
	if !cmd.Flags().Changed("data") && cfg.DataDir != "" {
		dataDir = cfg.DataDir
	}
	return cfg, name, nil
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runShot(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	s, err := cfg.NewSimulation()
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard(s.Params()) {
		s.AddMetric(m)
	}

	st := cfg.Strike()
	if err := s.Strike(st.Ball, st.Phi, st.Force); err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("playing %s: ball %d at %.1f° with %.0f cm/s\n", name, st.Ball, cfg.Shot.Angle, st.Force)
	start := time.Now()
	result, err := s.StepUntilQuiescent(ctx)
	if err != nil {
		// keep the partial run for inspection
		log.Printf("[SIM] %v", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("events: %d\n", result.NumEvents())
	fmt.Printf("table time: %.3fs\n", result.Duration())
	fmt.Printf("pocketed: %v\n", result.Pocketed)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	if showEvents {
		fmt.Println()
		fmt.Print(viz.EventTable(result))
	}

	if save {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		runID, serr := store.Save(storage.Run{
			Name:     name,
			Params:   s.Params(),
			Table:    s.Table(),
			Strike:   st,
			Result:   result,
			SampleDt: cfg.SampleDt,
		})
		if serr != nil {
			return serr
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}

	if err != nil {
		return err
	}
	if watch {
		return viz.RunReplay(name, s.Params(), s.Table(), result)
	}
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}

	base, err := cfg.NewSimulation()
	if err != nil {
		return err
	}

	strikes := make([]sim.Strike, steps)
	angles := make([]float64, steps)
	for i := range strikes {
		a := fromAngle
		if steps > 1 {
			a += (toAngle - fromAngle) * float64(i) / float64(steps-1)
		}
		c := cfg.Clone()
		c.Shot.Angle = a
		angles[i], strikes[i] = a, c.Strike()
	}

	ctx, cancel := interruptible()
	defer cancel()

	log.Printf("[SWEEP] %s: %d shots from %.2f° to %.2f°", name, steps, fromAngle, toAngle)
	start := time.Now()
	results, err := sim.Sweep(ctx, base, strikes, sim.SweepOptions{
		Limit:   workers,
		Metrics: func() []sim.Metric { return metrics.Standard(base.Params()) },
	})
	if err != nil {
		return err
	}
	log.Printf("[SWEEP] done in %v", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ANGLE\tEVENTS\tTIME\tTRAVEL\tPOCKETED")
	for i, r := range results {
		fmt.Fprintf(w, "%.2f\t%d\t%.3fs\t%.1f\t%v\n", angles[i], r.NumEvents(), r.Duration(), r.Metrics["travel"], r.Pocketed)
	}
	return w.Flush()
}
