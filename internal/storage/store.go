package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/event"
	"github.com/san-kum/cuesim/internal/sim"
	"github.com/san-kum/cuesim/internal/table"
)

const (
	metadataFile = "metadata.json"
	resultFile   = "result.json"
	eventsFile   = "events.csv"
	samplesFile  = "samples.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Params    dynamo.Params      `json:"params"`
	Width     float64            `json:"width"`
	Length    float64            `json:"length"`
	Strike    sim.Strike         `json:"strike"`
	Events    int                `json:"events"`
	Duration  float64            `json:"duration"`
	Pocketed  []int              `json:"pocketed"`
	SampleDt  float64            `json:"sample_dt"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Run is everything needed to store one shot.
type Run struct {
	Name     string
	Params   dynamo.Params
	Table    *table.Table
	Strike   sim.Strike
	Result   *sim.Result
	SampleDt float64
}

// Save writes the run into a new directory and returns its id.
func (s *Store) Save(run Run) (string, error) {
	if run.Result == nil || run.Table == nil {
		return "", fmt.Errorf("incomplete run %q", run.Name)
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%d", sanitize(run.Name), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      run.Name,
		Timestamp: now,
		Params:    run.Params,
		Width:     run.Table.Width,
		Length:    run.Table.Length,
		Strike:    run.Strike,
		Events:    run.Result.NumEvents(),
		Duration:  run.Result.Duration(),
		Pocketed:  run.Result.Pocketed,
		SampleDt:  run.SampleDt,
		Metrics:   run.Result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, resultFile), run.Result); err != nil {
		return "", err
	}
	if err := writeEvents(filepath.Join(runDir, eventsFile), run.Result); err != nil {
		return "", err
	}

	frames := sim.NewTrajectory(run.Params, run.Result).Sample(run.SampleDt)
	if err := writeSamples(filepath.Join(runDir, samplesFile), frames); err != nil {
		return "", err
	}

	return runID, nil
}

func sanitize(name string) string {
	if name == "" {
		return "shot"
	}
	return strings.NewReplacer("/", "-", " ", "_", string(filepath.Separator), "-").Replace(name)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func writeEvents(path string, res *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"step", "time", "dt", "kind", "ball", "other", "cushion", "pocket", "speed", "energy"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, rec := range res.Records {
		ev := rec.Event
		speed, energy := 0.0, 0.0
		if ev.Ball >= 0 && ev.Ball < len(rec.Balls) {
			speed = rec.Balls[ev.Ball].Speed
		}
		for _, b := range rec.Balls {
			energy += 0.5 * b.Speed * b.Speed
		}
		row := []string{
			strconv.Itoa(rec.Step),
			formatFloat(rec.Time),
			formatFloat(ev.Time),
			ev.Kind.String(),
			strconv.Itoa(idAt(rec.Balls, ev.Ball)),
			strconv.Itoa(idAt(rec.Balls, ev.Other)),
			strconv.Itoa(ev.Cushion),
			strconv.Itoa(ev.Pocket),
			formatFloat(speed),
			formatFloat(energy),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// idAt maps an arena index from an event to a ball id.
func idAt(balls []sim.Snapshot, i int) int {
	if i < 0 || i >= len(balls) {
		return -1
	}
	return balls[i].ID
}

func writeSamples(path string, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(frames) == 0 {
		w.Flush()
		return w.Error()
	}

	header := []string{"time"}
	for _, b := range frames[0].Balls {
		header = append(header, fmt.Sprintf("b%d_x", b.ID), fmt.Sprintf("b%d_y", b.ID), fmt.Sprintf("b%d_speed", b.ID))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, fr := range frames {
		row := []string{formatFloat(fr.Time)}
		for _, b := range fr.Balls {
			row = append(row, formatFloat(b.Pos.X), formatFloat(b.Pos.Y), formatFloat(b.Speed))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadResult reads back the full event log of a run for replay.
func (s *Store) LoadResult(runID string) (*sim.Result, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, resultFile))
	if err != nil {
		return nil, err
	}

	var res sim.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// EventRow is one line of events.csv.
type EventRow struct {
	Step    int
	Time    float64
	Dt      float64
	Kind    event.Kind
	Ball    int
	Other   int
	Cushion int
	Pocket  int
	Speed   float64
	Energy  float64
}

func (s *Store) LoadEvents(runID string) ([]EventRow, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, eventsFile))
	if err != nil {
		return nil, err
	}

	rows := make([]EventRow, 0, len(records))
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 10 {
			continue
		}
		kind, err := event.ParseKind(rec[3])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", eventsFile, i+1, err)
		}

		ints := make([]int, 0, 5)
		for _, j := range []int{0, 4, 5, 6, 7} {
			v, err := strconv.Atoi(rec[j])
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", eventsFile, i+1, err)
			}
			ints = append(ints, v)
		}
		floats := make([]float64, 0, 4)
		for _, j := range []int{1, 2, 8, 9} {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", eventsFile, i+1, err)
			}
			floats = append(floats, v)
		}

		rows = append(rows, EventRow{
			Step: ints[0], Ball: ints[1], Other: ints[2], Cushion: ints[3], Pocket: ints[4],
			Time: floats[0], Dt: floats[1], Speed: floats[2], Energy: floats[3],
			Kind: kind,
		})
	}
	return rows, nil
}

// LoadSamples returns the sample column names (without time), the sample
// times and one row of values per time.
func (s *Store) LoadSamples(runID string) ([]string, []float64, [][]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, nil, nil, err
	}

	if len(records) < 2 {
		return []string{}, []float64{}, [][]float64{}, nil
	}

	columns := records[0][1:]
	times := make([]float64, 0, len(records)-1)
	rows := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		row := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				val = 0
			}
			row = append(row, val)
		}
		rows = append(rows, row)
	}

	return columns, times, rows, nil
}

// Column extracts one named series from LoadSamples output.
func Column(columns []string, rows [][]float64, name string) ([]float64, bool) {
	idx := -1
	for i, c := range columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		if idx < len(r) {
			out[i] = r[idx]
		}
	}
	return out, true
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// Delete removes a stored run.
func (s *Store) Delete(runID string) error {
	if runID == "" || strings.ContainsAny(runID, `/\`) {
		return fmt.Errorf("invalid run id %q", runID)
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}
