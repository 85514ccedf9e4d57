package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/event"
	"github.com/san-kum/cuesim/internal/table"
)

// Simulation owns a set of balls on a table and advances them from event to
// event. It is not safe for concurrent use.
type Simulation struct {
	params dynamo.Params
	world  event.World
	index  map[int]int

	t    float64
	step int

	metrics   []Metric
	observers []Observer
	records   []Record
}

// New validates the parameters and geometry and takes a private copy of
// balls. Ball ids must be unique; the order of balls fixes the order in
// which events are considered.
func New(params dynamo.Params, tbl *table.Table, balls []*ball.Ball) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if tbl == nil {
		return nil, fmt.Errorf("no table: %w", dynamo.ErrInvalidGeometry)
	}
	if err := tbl.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		params:    params,
		index:     make(map[int]int, len(balls)),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
	arena := make([]*ball.Ball, 0, len(balls))
	for i, b := range balls {
		if b == nil {
			return nil, fmt.Errorf("ball at index %d is nil: %w", i, dynamo.ErrInvalidGeometry)
		}
		if _, dup := s.index[b.ID]; dup {
			return nil, fmt.Errorf("duplicate ball id %d: %w", b.ID, dynamo.ErrInvalidGeometry)
		}
		if !b.Pos.IsValid() {
			return nil, fmt.Errorf("ball %d has a non-finite position: %w", b.ID, dynamo.ErrInvalidGeometry)
		}
		c := b.Clone()
		c.Rebind(params)
		s.index[c.ID] = len(arena)
		arena = append(arena, c)
	}
	s.world = event.World{Balls: arena, Table: tbl, Params: params}
	return s, nil
}

func (s *Simulation) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulation) Params() dynamo.Params { return s.params }
func (s *Simulation) Table() *table.Table   { return s.world.Table }
func (s *Simulation) Time() float64         { return s.t }
func (s *Simulation) Steps() int            { return s.step }

// Ball returns a copy of the ball with the given id.
func (s *Simulation) Ball(id int) (*ball.Ball, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.world.Balls[i].Clone(), true
}

// Balls returns copies of every ball in arena order.
func (s *Simulation) Balls() []*ball.Ball {
	out := make([]*ball.Ball, len(s.world.Balls))
	for i, b := range s.world.Balls {
		out[i] = b.Clone()
	}
	return out
}

// Pocketed lists the ids of captured balls in arena order.
func (s *Simulation) Pocketed() []int {
	ids := make([]int, 0)
	for _, b := range s.world.Balls {
		if b.IsPocketed() {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// Moving reports whether any ball is still rolling.
func (s *Simulation) Moving() bool {
	for _, b := range s.world.Balls {
		if b.IsMoving() {
			return true
		}
	}
	return false
}

// Clone returns an independent simulation with the same table, parameters
// and ball states. Metrics and observers are not carried over.
func (s *Simulation) Clone() *Simulation {
	c := &Simulation{
		params:    s.params,
		index:     make(map[int]int, len(s.index)),
		t:         s.t,
		step:      s.step,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
	arena := make([]*ball.Ball, len(s.world.Balls))
	for i, b := range s.world.Balls {
		arena[i] = b.Clone()
		c.index[b.ID] = i
	}
	c.world = event.World{Balls: arena, Table: s.world.Table, Params: s.params}
	return c
}

// Strike sets the ball with the given id rolling along phi with speed force.
func (s *Simulation) Strike(id int, phi, force float64) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("strike ball %d: %w", id, dynamo.ErrUnknownBall)
	}
	if math.IsNaN(force) || math.IsInf(force, 0) || force < 0 {
		return fmt.Errorf("strike ball %d with force %v: %w", id, force, dynamo.ErrInvalidStrike)
	}
	if math.IsNaN(phi) || math.IsInf(phi, 0) {
		return fmt.Errorf("strike ball %d along %v: %w", id, phi, dynamo.ErrInvalidStrike)
	}
	b := s.world.Balls[i]
	if b.IsPocketed() {
		return fmt.Errorf("strike pocketed ball %d: %w", id, dynamo.ErrInvalidStrike)
	}
	b.Hit(phi, force)
	return nil
}

// NextEvent finds the earliest event from the current state. It reports
// false when nothing will happen, i.e. the table is at rest.
func (s *Simulation) NextEvent() (event.Event, bool) {
	w := &s.world
	best := event.Null()
	consider := func(e event.Event) {
		if e = e.Evaluate(w); e.Before(best) {
			best = e
		}
	}

	for i, b := range w.Balls {
		if !b.IsMoving() {
			continue
		}
		consider(event.StopRolling(i))
		for p := range w.Table.Pockets {
			consider(event.HitPocket(i, p))
		}
		for c := range w.Table.Cushions {
			consider(event.HitCushion(i, c))
		}
		// every resting ball, and each moving pair once
		for j, o := range w.Balls {
			if j == i || o.IsPocketed() || (o.IsMoving() && j > i) {
				continue
			}
			consider(event.HitBall(i, j))
		}
	}
	return best, !best.IsNull()
}

// Apply advances every ball to the instant of ev and performs its effect.
func (s *Simulation) Apply(ev event.Event) {
	if ev.IsNull() || math.IsInf(ev.Time, 0) || math.IsNaN(ev.Time) {
		return
	}
	for _, b := range s.world.Balls {
		b.Update(ev.Time)
	}
	s.t += ev.Time
	ev.Apply(&s.world)
	s.step++

	s.records = append(s.records, Record{
		Step:  s.step,
		Time:  s.t,
		Event: ev,
		Balls: snapshotAll(s.world.Balls),
	})
	for _, m := range s.metrics {
		m.Observe(ev, s.t, s.world.Balls)
	}
	for _, obs := range s.observers {
		obs.OnEvent(ev, s.t, s.world.Balls)
	}
}

// StepUntilQuiescent applies events until no ball moves. It stops with a
// *dynamo.SimError wrapping dynamo.ErrNoQuiescence once more than
// MaxEvents events would be needed, and with dynamo.ErrContextCanceled when
// ctx is done. The partial result is returned in both cases.
func (s *Simulation) StepUntilQuiescent(ctx context.Context) (*Result, error) {
	for _, m := range s.metrics {
		m.Reset()
		if pm, ok := m.(Primer); ok {
			pm.Prime(s.t, s.world.Balls)
		}
	}
	s.records = make([]Record, 0)
	result := &Result{
		StartTime: s.t,
		Initial:   snapshotAll(s.world.Balls),
		Metrics:   make(map[string]float64),
	}

	var err error
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			err = &dynamo.SimError{Time: s.t, Step: s.step, Message: ctx.Err().Error(), Wrapped: dynamo.ErrContextCanceled}
		default:
		}
		if err != nil {
			break
		}

		ev, ok := s.NextEvent()
		if !ok {
			break
		}
		if n >= s.params.MaxEvents {
			err = &dynamo.SimError{
				Time:    s.t,
				Step:    s.step,
				Message: fmt.Sprintf("still moving after %d events", n),
				Wrapped: dynamo.ErrNoQuiescence,
			}
			break
		}
		s.Apply(ev)
	}

	s.finish(result)
	return result, err
}

// PlayTurn strikes the cue ball and runs the table to rest.
func (s *Simulation) PlayTurn(ctx context.Context, phi, force float64) (*Result, error) {
	cue, found := 0, false
	for _, b := range s.world.Balls {
		if b.Type == ball.Cue {
			cue, found = b.ID, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("no cue ball on the table: %w", dynamo.ErrUnknownBall)
	}
	if err := s.Strike(cue, phi, force); err != nil {
		return nil, err
	}
	return s.StepUntilQuiescent(ctx)
}

func (s *Simulation) finish(r *Result) {
	r.EndTime = s.t
	r.Final = snapshotAll(s.world.Balls)
	r.Records = s.records
	r.Pocketed = s.Pocketed()
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}
