// Package event predicts and applies the discrete occurrences of a shot.
//
// An [Event] is a small value: a [Kind] tag, the arena indices of the
// balls, cushion or pocket it concerns, and the time until it happens.
// Events never hold pointers into the ball collection; they are evaluated
// against a read-only [World], compared by time, and the winner is applied
// by the owner of the world.
package event

import (
	"fmt"
	"math"

	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/table"
)

type Kind int

const (
	KindNull Kind = iota
	KindStopRolling
	KindHitBall
	KindHitCushion
	KindHitPocket
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindStopRolling:
		return "stop_rolling"
	case KindHitBall:
		return "hit_ball"
	case KindHitCushion:
		return "hit_cushion"
	case KindHitPocket:
		return "hit_pocket"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindNull; k <= KindHitPocket; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return KindNull, fmt.Errorf("unknown event kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// World is the state events are evaluated against and applied to.
type World struct {
	Balls  []*ball.Ball
	Table  *table.Table
	Params dynamo.Params
}

type Event struct {
	Kind    Kind    `json:"kind"`
	Ball    int     `json:"ball"`
	Other   int     `json:"other"`
	Cushion int     `json:"cushion"`
	Pocket  int     `json:"pocket"`
	Time    float64 `json:"dt"`
}

func Null() Event {
	return Event{Kind: KindNull, Ball: -1, Other: -1, Cushion: -1, Pocket: -1, Time: math.Inf(1)}
}

func StopRolling(b int) Event {
	e := Null()
	e.Kind, e.Ball = KindStopRolling, b
	return e
}

func HitBall(b, other int) Event {
	e := Null()
	e.Kind, e.Ball, e.Other = KindHitBall, b, other
	return e
}

func HitCushion(b, cushion int) Event {
	e := Null()
	e.Kind, e.Ball, e.Cushion = KindHitCushion, b, cushion
	return e
}

func HitPocket(b, pocket int) Event {
	e := Null()
	e.Kind, e.Ball, e.Pocket = KindHitPocket, b, pocket
	return e
}

func (e Event) IsNull() bool { return e.Kind == KindNull }

// Before reports whether e happens strictly earlier than o.
func (e Event) Before(o Event) bool { return e.Time < o.Time }

// Evaluate returns a copy of e with Time set to the time until it occurs
// in w, or +Inf when it does not occur.
func (e Event) Evaluate(w *World) Event {
	switch e.Kind {
	case KindStopRolling:
		e.Time = stopRollingTime(w, e.Ball)
	case KindHitBall:
		e.Time = hitBallTime(w, e.Ball, e.Other)
	case KindHitCushion:
		e.Time = hitCushionTime(w, e.Ball, e.Cushion)
	case KindHitPocket:
		e.Time = hitPocketTime(w, e.Ball, e.Pocket)
	default:
		e.Time = math.Inf(1)
	}
	if math.IsNaN(e.Time) {
		e.Time = math.Inf(1)
	}
	return e
}

// Apply performs the discontinuous state change of e on the balls it
// concerns. Time must already have been advanced to the event instant.
func (e Event) Apply(w *World) {
	switch e.Kind {
	case KindStopRolling:
		w.Balls[e.Ball].Stop()
	case KindHitBall:
		collide(w.Balls[e.Ball], w.Balls[e.Other])
	case KindHitCushion:
		b := w.Balls[e.Ball]
		b.SetVelocity(w.Table.Cushions[e.Cushion].Reflect(b.Velocity()))
	case KindHitPocket:
		w.Balls[e.Ball].Capture(w.Table.Pockets[e.Pocket].ID)
	}
}

func (e Event) String() string {
	switch e.Kind {
	case KindStopRolling:
		return fmt.Sprintf("%s ball=%d dt=%.6f", e.Kind, e.Ball, e.Time)
	case KindHitBall:
		return fmt.Sprintf("%s ball=%d other=%d dt=%.6f", e.Kind, e.Ball, e.Other, e.Time)
	case KindHitCushion:
		return fmt.Sprintf("%s ball=%d cushion=%d dt=%.6f", e.Kind, e.Ball, e.Cushion, e.Time)
	case KindHitPocket:
		return fmt.Sprintf("%s ball=%d pocket=%d dt=%.6f", e.Kind, e.Ball, e.Pocket, e.Time)
	}
	return e.Kind.String()
}
