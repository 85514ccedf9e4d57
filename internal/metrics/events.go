package metrics

import (
	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/event"
)

// EventCount counts applied events of one kind.
type EventCount struct {
	kind  event.Kind
	count int
}

func NewEventCount(kind event.Kind) *EventCount {
	return &EventCount{kind: kind}
}

func (c *EventCount) Name() string { return "events_" + c.kind.String() }

func (c *EventCount) Observe(ev event.Event, t float64, balls []*ball.Ball) {
	if ev.Kind == c.kind {
		c.count++
	}
}

func (c *EventCount) Value() float64 { return float64(c.count) }
func (c *EventCount) Reset()         { c.count = 0 }

// Pocketed is the number of balls off the table after the last event.
type Pocketed struct {
	count int
}

func NewPocketed() *Pocketed { return &Pocketed{} }

func (p *Pocketed) Name() string { return "pocketed" }

func (p *Pocketed) Observe(ev event.Event, t float64, balls []*ball.Ball) {
	p.count = 0
	for _, b := range balls {
		if b.IsPocketed() {
			p.count++
		}
	}
}

func (p *Pocketed) Value() float64 { return float64(p.count) }
func (p *Pocketed) Reset()         { p.count = 0 }
