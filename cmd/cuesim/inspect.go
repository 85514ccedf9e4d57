package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/cuesim/internal/config"
	"github.com/san-kum/cuesim/internal/export"
	"github.com/san-kum/cuesim/internal/sim"
	"github.com/san-kum/cuesim/internal/storage"
	"github.com/san-kum/cuesim/internal/table"
	"github.com/san-kum/cuesim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tEVENTS\tDURATION\tPOCKETED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3fs\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Events,
			run.Duration,
			len(run.Pocketed),
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("table: %.0f x %.0f\n", meta.Width, meta.Length)
	fmt.Printf("strike: ball %d, phi %.4f rad, force %.1f\n", meta.Strike.Ball, meta.Strike.Phi, meta.Strike.Force)
	fmt.Printf("events: %d over %.3fs\n", meta.Events, meta.Duration)
	fmt.Printf("pocketed: %v\n", meta.Pocketed)
	fmt.Println("\nmetrics:")
	printMetrics(meta.Metrics)
	fmt.Println()
	fmt.Print(viz.EventTable(result))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	columns, times, rows, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d (every %.3fs)\n\n", len(times), meta.SampleDt)

	speed, ok := storage.Column(columns, rows, fmt.Sprintf("b%d_speed", cueBall))
	if !ok {
		return fmt.Errorf("run %s has no ball %d", meta.ID, cueBall)
	}
	fmt.Println(viz.Plot(speed, fmt.Sprintf("ball %d speed (cm/s)", cueBall), 80, 10))
	fmt.Println()

	energy := make([]float64, len(rows))
	for i, col := range columns {
		if !strings.HasSuffix(col, "_speed") {
			continue
		}
		for j, r := range rows {
			energy[j] += 0.5 * r[i] * r[i]
		}
	}
	fmt.Println(viz.Plot(energy, "kinetic energy per unit mass", 80, 10))
	return nil
}

// replayInputs rebuilds what a stored run needs for replay and export.
func replayInputs(st *storage.Store, runID string) (*storage.RunMetadata, *table.Table, *sim.Result, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	tbl, err := table.NewStandard(meta.Width, meta.Length)
	if err != nil {
		return nil, nil, nil, err
	}
	result, err := st.LoadResult(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	return meta, tbl, result, nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, tbl, result, err := replayInputs(st, args[0])
	if err != nil {
		return err
	}

	if exportFormat != "json" && exportFormat != "svg" {
		return fmt.Errorf("unknown format %q (json or svg)", exportFormat)
	}

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "json":
		err = export.ExportJSON(out, meta, result)
	case "svg":
		dt := meta.SampleDt
		if dt <= 0 {
			dt = config.DefaultSampleDt
		}
		frames := sim.NewTrajectory(meta.Params, result).Sample(dt)
		_, err = fmt.Fprintln(out, export.ShotSVG(tbl, meta.Params.Radius, frames, 4))
	}
	if err != nil {
		return err
	}

	if exportOut != "" {
		fmt.Printf("exported %s to %s\n", meta.ID, exportOut)
	}
	return nil
}

func watchRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, tbl, result, err := replayInputs(st, args[0])
	if err != nil {
		return err
	}
	return viz.RunReplay(meta.Name, meta.Params, tbl, result)
}

func listPresets(cmd *cobra.Command, args []string) error {
	groups := config.Groups()
	if len(args) > 0 {
		if config.ListPresets(args[0]) == nil {
			fmt.Printf("no presets in group: %s\n", args[0])
			return nil
		}
		groups = args[:1]
	}
	for _, g := range groups {
		fmt.Printf("%s:\n", g)
		for _, p := range config.ListPresets(g) {
			c := config.GetPreset(g, p)
			fmt.Printf("  %s/%s\tangle %.0f° force %.0f\n", g, p, c.Shot.Angle, c.Shot.Force)
		}
	}
	return nil
}
