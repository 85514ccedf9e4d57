package sim

import (
	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/event"
)

// Observer is notified after every applied event. t is the simulation time
// of the event and balls is the arena in its post-event state; observers
// must not modify or retain it.
type Observer interface {
	OnEvent(ev event.Event, t float64, balls []*ball.Ball)
}

type Metric interface {
	Name() string
	Observe(ev event.Event, t float64, balls []*ball.Ball)
	Value() float64
	Reset()
}

// Primer is implemented by metrics that need the state a run starts from.
type Primer interface {
	Prime(t float64, balls []*ball.Ball)
}

// Snapshot is a copy of the kinematic state of one ball.
type Snapshot struct {
	ID     int         `json:"id"`
	Type   ball.Type   `json:"type"`
	State  ball.State  `json:"state"`
	Pos    dynamo.Vec2 `json:"pos"`
	Phi    float64     `json:"phi"`
	Speed  float64     `json:"speed"`
	Pocket int         `json:"pocket"`
}

func SnapshotOf(b *ball.Ball) Snapshot {
	return Snapshot{
		ID:     b.ID,
		Type:   b.Type,
		State:  b.State,
		Pos:    b.Pos,
		Phi:    b.Phi,
		Speed:  b.Speed,
		Pocket: b.Pocket,
	}
}

func snapshotAll(balls []*ball.Ball) []Snapshot {
	out := make([]Snapshot, len(balls))
	for i, b := range balls {
		out[i] = SnapshotOf(b)
	}
	return out
}

// Ball rebuilds a live ball from the snapshot.
func (s Snapshot) Ball(p dynamo.Params) *ball.Ball {
	b := ball.New(s.ID, s.Type, s.Pos, p)
	switch s.State {
	case ball.Moving:
		b.Hit(s.Phi, s.Speed)
	case ball.Pocketed:
		b.Capture(s.Pocket)
	default:
		b.Phi = s.Phi
	}
	return b
}

// Record is one applied event with the state of every ball right after it.
type Record struct {
	Step  int         `json:"step"`
	Time  float64     `json:"time"`
	Event event.Event `json:"event"`
	Balls []Snapshot  `json:"balls"`
}

// Result is the outcome of running a simulation to rest.
type Result struct {
	StartTime float64            `json:"start_time"`
	EndTime   float64            `json:"end_time"`
	Initial   []Snapshot         `json:"initial"`
	Final     []Snapshot         `json:"final"`
	Records   []Record           `json:"records"`
	Pocketed  []int              `json:"pocketed"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (r *Result) Duration() float64 { return r.EndTime - r.StartTime }

func (r *Result) NumEvents() int { return len(r.Records) }

// Count returns how many events of the given kind were applied.
func (r *Result) Count(k event.Kind) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Event.Kind == k {
			n++
		}
	}
	return n
}

// Strike is a cue impulse on one ball.
type Strike struct {
	Ball  int     `json:"ball" yaml:"ball"`
	Phi   float64 `json:"phi" yaml:"phi"`
	Force float64 `json:"force" yaml:"force"`
}
