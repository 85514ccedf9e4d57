package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/event"
	"github.com/san-kum/cuesim/internal/sim"
	"github.com/san-kum/cuesim/internal/storage"
)

type ExportData struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Width    float64            `json:"width"`
	Length   float64            `json:"length"`
	Params   dynamo.Params      `json:"params"`
	Strike   sim.Strike         `json:"strike"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	Events   []event.Event      `json:"events"`
	Initial  []sim.Snapshot     `json:"initial"`
	Final    []sim.Snapshot     `json:"final"`
	Pocketed []int              `json:"pocketed"`
	Metrics  map[string]float64 `json:"metrics"`
}

func NewExportData(meta *storage.RunMetadata, result *sim.Result) ExportData {
	data := ExportData{
		ID:       meta.ID,
		Name:     meta.Name,
		Width:    meta.Width,
		Length:   meta.Length,
		Params:   meta.Params,
		Strike:   meta.Strike,
		Duration: result.Duration(),
		Steps:    result.NumEvents(),
		Times:    make([]float64, len(result.Records)),
		Events:   make([]event.Event, len(result.Records)),
		Initial:  result.Initial,
		Final:    result.Final,
		Pocketed: result.Pocketed,
		Metrics:  result.Metrics,
	}
	for i, rec := range result.Records {
		data.Times[i] = rec.Time
		data.Events[i] = rec.Event
	}
	return data
}

// ExportJSON writes the run as indented json.
func ExportJSON(w io.Writer, meta *storage.RunMetadata, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, result))
}
