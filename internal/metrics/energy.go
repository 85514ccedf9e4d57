package metrics

import (
	"math"

	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/event"
)

// Energy is the mean kinetic energy per unit mass over all observed events.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(ev event.Event, t float64, balls []*ball.Ball) {
	e.totalEnergy += event.KineticEnergy(balls)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of kinetic energy across a
// ball or cushion impact. Both are elastic, so anything above rounding
// noise points at a wrong event time or a bad collision response.
type EnergyDrift struct {
	name     string
	decel    float64
	lastTime float64
	speeds   map[int]float64
	maxDrift float64
}

func NewEnergyDrift(p dynamo.Params) *EnergyDrift {
	return &EnergyDrift{
		name:   "energy_drift",
		decel:  p.Deceleration(),
		speeds: make(map[int]float64),
	}
}

func (e *EnergyDrift) Name() string { return e.name }

// Prime records the state a run starts from.
func (e *EnergyDrift) Prime(t float64, balls []*ball.Ball) {
	e.lastTime = t
	for _, b := range balls {
		e.speeds[b.ID] = movingSpeed(b)
	}
}

func (e *EnergyDrift) Observe(ev event.Event, t float64, balls []*ball.Ball) {
	primed := len(e.speeds) > 0
	dt := t - e.lastTime

	if primed && (ev.Kind == event.KindHitBall || ev.Kind == event.KindHitCushion) {
		before := 0.0
		for _, v := range e.speeds {
			v = math.Max(0, v-e.decel*dt)
			before += 0.5 * v * v
		}
		after := event.KineticEnergy(balls)
		if before > 0 {
			e.maxDrift = math.Max(e.maxDrift, math.Abs(after-before)/before)
		}
	}

	e.Prime(t, balls)
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.lastTime = 0
	e.speeds = make(map[int]float64)
	e.maxDrift = 0
}

func movingSpeed(b *ball.Ball) float64 {
	if !b.IsMoving() {
		return 0
	}
	return b.Speed
}
