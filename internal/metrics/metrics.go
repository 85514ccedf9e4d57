// Package metrics provides summaries of a shot computed from its event stream.
package metrics

import (
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/event"
	"github.com/san-kum/cuesim/internal/sim"
)

// Standard returns a fresh set of the metrics recorded for every stored run.
func Standard(p dynamo.Params) []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergyDrift(p),
		NewTravel(),
		NewPocketed(),
		NewEventCount(event.KindHitBall),
		NewEventCount(event.KindHitCushion),
		NewEventCount(event.KindHitPocket),
	}
}
