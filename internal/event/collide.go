package event

import "github.com/san-kum/cuesim/internal/ball"

// collide resolves an equal-mass elastic impact between striker and target.
// In the target's rest frame the striker hands over its whole velocity
// component along the line of centres and keeps the perpendicular part.
func collide(striker, target *ball.Ball) {
	n := target.Pos.Sub(striker.Pos).Unit()
	if n.IsZero() {
		return
	}

	// a resting target makes this the identity frame
	frame := target.Velocity()
	rel := striker.Velocity().Sub(frame)

	along := n.Scale(rel.Dot(n))
	striker.SetVelocity(rel.Sub(along).Add(frame))
	target.SetVelocity(along.Add(frame))
}

// Momentum is the total momentum of balls on the table for unit masses.
func Momentum(balls []*ball.Ball) (px, py float64) {
	for _, b := range balls {
		if !b.IsMoving() {
			continue
		}
		v := b.Velocity()
		px += v.X
		py += v.Y
	}
	return px, py
}

// KineticEnergy is the total kinetic energy of balls on the table for unit masses.
func KineticEnergy(balls []*ball.Ball) float64 {
	e := 0.0
	for _, b := range balls {
		if b.IsMoving() {
			e += 0.5 * b.Speed * b.Speed
		}
	}
	return e
}
