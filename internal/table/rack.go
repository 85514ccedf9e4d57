package table

import (
	"math"

	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
)

const (
	NumBalls = 16 // 0=cue, 1-7=solids, 8=eight, 9-15=stripes

	// Rack spacing in ball radii. Slightly looser than touching so that no
	// pair starts in contact: row pitch sqrt(3)+0.05, lateral pitch 1.05.
	rowPitch     = 1.782
	lateralPitch = 1.05
	rackRows     = 5
)

// RackSpot returns the standard rack positions on t: the apex on the foot
// spot three quarters down the table, the cue ball on the head spot.
func RackSpot(t *Table) (apex, cue dynamo.Vec2) {
	return dynamo.V(t.Width/2, 3*t.Length/4), dynamo.V(t.Width/2, t.Length/4)
}

// Rack lays out the 15 object balls in a triangle opening away from the cue
// ball, the 1 ball on the apex and the 8 ball in the middle of the third row.
// The cue ball (id 0) is placed at cue. Balls are returned in id order.
func Rack(p dynamo.Params, apex, cue dynamo.Vec2) []*ball.Ball {
	heading := apex.Sub(cue).Unit()
	if heading.IsZero() {
		heading = dynamo.V(0, 1)
	}
	lateral := dynamo.V(-heading.Y, heading.X)

	balls := make([]*ball.Ball, NumBalls)
	balls[0] = ball.New(0, ball.Cue, cue, p)

	next := 2
	for row := 0; row < rackRows; row++ {
		for j := 0; j <= row; j++ {
			along := float64(row) * rowPitch * p.Radius
			across := float64(2*j-row) * lateralPitch * p.Radius
			pos := apex.Add(heading.Scale(along)).Add(lateral.Scale(across))

			var n int
			switch {
			case row == 0:
				n = 1
			case row == 2 && j == 1:
				n = 8
			default:
				if next == 8 {
					next++
				}
				n = next
				next++
			}
			balls[n] = ball.New(n, ball.TypeForNumber(n), pos, p)
		}
	}
	return balls
}

// MinSeparation returns the smallest center distance between any two balls
// still on the table, or +Inf when fewer than two remain.
func MinSeparation(balls []*ball.Ball) float64 {
	best := math.Inf(1)
	for i := range balls {
		if balls[i].IsPocketed() {
			continue
		}
		for j := i + 1; j < len(balls); j++ {
			if balls[j].IsPocketed() {
				continue
			}
			if d := balls[i].Pos.Distance(balls[j].Pos); d < best {
				best = d
			}
		}
	}
	return best
}
