package ball

import (
	"fmt"
	"math"

	"github.com/san-kum/cuesim/internal/dynamo"
)

type Type int

const (
	Solid Type = iota
	Striped
	Eight
	Cue
)

func (t Type) String() string {
	switch t {
	case Solid:
		return "solid"
	case Striped:
		return "striped"
	case Eight:
		return "eight"
	case Cue:
		return "cue"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// TypeForNumber maps a rack number to its ball type: 1-7 solid, 8 eight,
// 9-15 striped, anything else is the cue ball.
func TypeForNumber(n int) Type {
	switch {
	case n >= 1 && n <= 7:
		return Solid
	case n == 8:
		return Eight
	case n >= 9 && n <= 15:
		return Striped
	}
	return Cue
}

type State int

const (
	Stationary State = iota
	Moving
	Pocketed
)

func (s State) String() string {
	switch s {
	case Stationary:
		return "stationary"
	case Moving:
		return "moving"
	case Pocketed:
		return "pocketed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Ball is a disc rolling on the table. Its motion since the last state change
// is cached as polynomial coefficients:
//
//	r(t) = RCoeffs . [1, t, t^2]
//	v(t) = VCoeffs . [1, t]
//
// which are valid until StopTime and recomputed whenever Pos, Phi or Speed change.
type Ball struct {
	ID    int
	Type  Type
	State State
	Pos   dynamo.Vec2
	Phi   float64
	Speed float64

	// Pocket is the id of the pocket holding the ball, -1 while on the table.
	Pocket int

	RCoeffs [2][3]float64
	VCoeffs [2][2]float64

	decel   float64
	epsilon float64
}

func New(id int, typ Type, pos dynamo.Vec2, p dynamo.Params) *Ball {
	b := &Ball{
		ID:      id,
		Type:    typ,
		State:   Stationary,
		Pos:     pos,
		Pocket:  -1,
		decel:   p.Deceleration(),
		epsilon: p.SpeedEpsilon,
	}
	b.setCoeffs()
	return b
}

// Clone returns an independent copy bound to the same physical parameters.
func (b *Ball) Clone() *Ball {
	c := *b
	return &c
}

// Rebind attaches the ball to a new set of physical parameters.
func (b *Ball) Rebind(p dynamo.Params) {
	b.decel = p.Deceleration()
	b.epsilon = p.SpeedEpsilon
	b.setCoeffs()
}

func (b *Ball) Is(other *Ball) bool { return other != nil && b.ID == other.ID }

func (b *Ball) IsMoving() bool   { return b.State == Moving }
func (b *Ball) IsPocketed() bool { return b.State == Pocketed }

// Direction is the unit vector of travel; meaningless while Speed is zero.
func (b *Ball) Direction() dynamo.Vec2 { return dynamo.Polar(b.Phi, 1) }

func (b *Ball) Velocity() dynamo.Vec2 { return dynamo.Polar(b.Phi, b.Speed) }

// StopTime is the time until friction brings the ball to rest.
func (b *Ball) StopTime() float64 {
	if b.State != Moving || b.decel <= 0 {
		return 0
	}
	return b.Speed / b.decel
}

func (b *Ball) Deceleration() float64 { return b.decel }

// Hit applies a cue impulse along phi.
func (b *Ball) Hit(phi, force float64) {
	b.Phi = phi
	b.Speed = force
	if b.Speed < b.epsilon {
		b.Speed = 0
		b.State = Stationary
	} else {
		b.State = Moving
	}
	b.setCoeffs()
}

// SetVelocity replaces the ball's velocity, keeping the previous heading
// when the new velocity is zero.
func (b *Ball) SetVelocity(v dynamo.Vec2) {
	speed := v.Norm()
	if speed < b.epsilon {
		b.Speed = 0
		b.State = Stationary
	} else {
		b.Phi = v.Angle()
		b.Speed = speed
		b.State = Moving
	}
	b.setCoeffs()
}

// Stop forces the ball to rest where it is.
func (b *Ball) Stop() {
	b.Speed = 0
	b.State = Stationary
	b.setCoeffs()
}

// Update advances the ball by dt along its trajectory. Time past StopTime
// is clamped so the ball rests at its stopping point.
func (b *Ball) Update(dt float64) {
	if b.State == Pocketed || dt <= 0 {
		return
	}
	if b.State == Moving {
		if stop := b.StopTime(); dt > stop {
			dt = stop
		}
		b.Pos = b.evalR(dt)
		b.Speed = math.Max(0, b.Speed-b.decel*dt)
	}
	if b.Speed < b.epsilon {
		b.Speed = 0
		b.State = Stationary
	} else {
		b.State = Moving
	}
	b.setCoeffs()
}

// PositionAt returns r(t) without changing the ball, clamped at rest.
func (b *Ball) PositionAt(t float64) dynamo.Vec2 {
	if b.State != Moving {
		return b.Pos
	}
	return b.evalR(math.Min(math.Max(t, 0), b.StopTime()))
}

// VelocityAt returns v(t) without changing the ball, zero once at rest.
func (b *Ball) VelocityAt(t float64) dynamo.Vec2 {
	if b.State != Moving {
		return dynamo.Vec2{}
	}
	t = math.Max(t, 0)
	if t >= b.StopTime() {
		return dynamo.Vec2{}
	}
	return dynamo.Vec2{
		X: b.VCoeffs[0][0] + b.VCoeffs[0][1]*t,
		Y: b.VCoeffs[1][0] + b.VCoeffs[1][1]*t,
	}
}

// Reset clears position, velocity and coefficients.
func (b *Ball) Reset() {
	b.Pos = dynamo.Vec2{}
	b.Phi = 0
	b.Speed = 0
	b.State = Stationary
	b.RCoeffs = [2][3]float64{}
	b.VCoeffs = [2][2]float64{}
}

// Capture removes the ball from play into the given pocket.
func (b *Ball) Capture(pocket int) {
	b.Reset()
	b.State = Pocketed
	b.Pocket = pocket
}

// Respot returns a pocketed ball to the table at pos.
func (b *Ball) Respot(pos dynamo.Vec2) {
	b.Reset()
	b.Pos = pos
	b.Pocket = -1
	b.setCoeffs()
}

func (b *Ball) evalR(t float64) dynamo.Vec2 {
	t2 := t * t
	return dynamo.Vec2{
		X: b.RCoeffs[0][0] + b.RCoeffs[0][1]*t + b.RCoeffs[0][2]*t2,
		Y: b.RCoeffs[1][0] + b.RCoeffs[1][1]*t + b.RCoeffs[1][2]*t2,
	}
}

func (b *Ball) setCoeffs() {
	if b.State == Pocketed {
		b.RCoeffs = [2][3]float64{}
		b.VCoeffs = [2][2]float64{}
		return
	}

	cos, sin := math.Cos(b.Phi), math.Sin(b.Phi)
	speed, decel := b.Speed, b.decel
	if b.State != Moving {
		speed, decel = 0, 0
	}

	b.RCoeffs = [2][3]float64{
		{b.Pos.X, speed * cos, -0.5 * decel * cos},
		{b.Pos.Y, speed * sin, -0.5 * decel * sin},
	}
	b.VCoeffs = [2][2]float64{
		{speed * cos, -decel * cos},
		{speed * sin, -decel * sin},
	}
}

func (b *Ball) String() string {
	return fmt.Sprintf("ball %d (%s, %s) at %v speed %.4f", b.ID, b.Type, b.State, b.Pos, b.Speed)
}
