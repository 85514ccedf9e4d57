package metrics

import (
	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/event"
)

// Travel is the total path length rolled by all balls. Paths between
// events are straight, so summing chord lengths is exact. The last leg of
// a ball dropping into a pocket is not counted since its position is
// cleared on capture.
type Travel struct {
	last  map[int]dynamo.Vec2
	total float64
}

func NewTravel() *Travel {
	return &Travel{last: make(map[int]dynamo.Vec2)}
}

func (tr *Travel) Name() string { return "travel" }

func (tr *Travel) Prime(t float64, balls []*ball.Ball) {
	for _, b := range balls {
		if !b.IsPocketed() {
			tr.last[b.ID] = b.Pos
		}
	}
}

func (tr *Travel) Observe(ev event.Event, t float64, balls []*ball.Ball) {
	for _, b := range balls {
		if b.IsPocketed() {
			delete(tr.last, b.ID)
			continue
		}
		if prev, ok := tr.last[b.ID]; ok {
			tr.total += prev.Distance(b.Pos)
		}
		tr.last[b.ID] = b.Pos
	}
}

func (tr *Travel) Value() float64 { return tr.total }

func (tr *Travel) Reset() {
	tr.last = make(map[int]dynamo.Vec2)
	tr.total = 0
}
