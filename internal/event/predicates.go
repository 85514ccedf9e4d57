package event

import (
	"math"

	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
)

const (
	// below this a cushion normal or center separation is treated as degenerate
	degenerate = 1e-12

	// contacts closer than contactSlop ball radii count as touching
	contactSlop = 1e-6
)

// trajectory is a ball's position polynomial r(t) = c0 + c1*t + c2*t^2
// read off its cached coefficient matrix.
type trajectory struct {
	c0, c1, c2 dynamo.Vec2
}

func trajectoryOf(b *ball.Ball) trajectory {
	return trajectory{
		c0: dynamo.V(b.RCoeffs[0][0], b.RCoeffs[1][0]),
		c1: dynamo.V(b.RCoeffs[0][1], b.RCoeffs[1][1]),
		c2: dynamo.V(b.RCoeffs[0][2], b.RCoeffs[1][2]),
	}
}

func (tr trajectory) minus(o trajectory) trajectory {
	return trajectory{c0: tr.c0.Sub(o.c0), c1: tr.c1.Sub(o.c1), c2: tr.c2.Sub(o.c2)}
}

func (tr trajectory) at(t float64) dynamo.Vec2 {
	return tr.c0.Add(tr.c1.Scale(t)).Add(tr.c2.Scale(t * t))
}

func (tr trajectory) rate(t float64) dynamo.Vec2 {
	return tr.c1.Add(tr.c2.Scale(2 * t))
}

// closing reports whether the separation tr is shrinking faster than the
// speed epsilon right now.
func closing(p dynamo.Params, tr trajectory) bool {
	return tr.c0.Dot(tr.c1) < -p.SpeedEpsilon*tr.c0.Norm()
}

// distanceRoots solves |tr(t)|^2 = radius^2 and keeps the first admissible
// root at which the separation is shrinking.
func distanceRoots(p dynamo.Params, tr trajectory, radius, horizon float64) float64 {
	roots := dynamo.SolveQuartic(
		tr.c2.Dot(tr.c2),
		2*tr.c1.Dot(tr.c2),
		tr.c1.Dot(tr.c1)+2*tr.c0.Dot(tr.c2),
		2*tr.c0.Dot(tr.c1),
		tr.c0.Dot(tr.c0)-radius*radius,
	)
	t, ok := p.FirstAdmissible(roots, horizon, func(t float64) bool {
		return tr.at(t).Dot(tr.rate(t)) < 0
	})
	if !ok {
		return math.Inf(1)
	}
	return t
}

func stopRollingTime(w *World, i int) float64 {
	b := w.Balls[i]
	if !b.IsMoving() {
		return math.Inf(1)
	}
	return b.StopTime()
}

func hitCushionTime(w *World, i, ci int) float64 {
	b := w.Balls[i]
	if !b.IsMoving() {
		return math.Inf(1)
	}
	c := w.Table.Cushions[ci]
	l, l0 := c.Line()
	ln := l.Norm()
	if ln < degenerate {
		return math.Inf(1)
	}

	tr := trajectoryOf(b)
	qa, qb, qc := l.Dot(tr.c2), l.Dot(tr.c1), l.Dot(tr.c0)+l0
	horizon := b.StopTime()
	along := c.B.Sub(c.A)
	span := along.NormSquared()

	// already against the cushion and pressing into it: bounce now
	if dist := qc / ln; math.Abs(dist) <= w.Params.Radius*(1+contactSlop) {
		side := math.Copysign(1, dist)
		u := tr.c0.Sub(c.A).Dot(along) / span
		if side*qb < -w.Params.SpeedEpsilon*ln && u >= 0 && u <= 1 {
			return 0
		}
	}

	best := math.Inf(1)
	for _, side := range []float64{1, -1} {
		offset := side * w.Params.Radius * ln
		roots := dynamo.SolveQuadratic(qa, qb, qc-offset)
		t, ok := w.Params.FirstAdmissible(roots, horizon, func(t float64) bool {
			// distance to the line must be shrinking on this side
			if side*l.Dot(tr.rate(t)) >= 0 {
				return false
			}
			u := tr.at(t).Sub(c.A).Dot(along) / span
			return u >= 0 && u <= 1
		})
		if ok && t < best {
			best = t
		}
	}
	return best
}

func hitPocketTime(w *World, i, pi int) float64 {
	b := w.Balls[i]
	if !b.IsMoving() {
		return math.Inf(1)
	}
	tr := trajectoryOf(b)
	tr.c0 = tr.c0.Sub(w.Table.Pockets[pi].Center)
	if tr.c0.Norm() <= w.Params.CaptureRadius {
		return 0
	}
	return distanceRoots(w.Params, tr, w.Params.CaptureRadius, b.StopTime())
}

func hitBallTime(w *World, i, j int) float64 {
	bi, bj := w.Balls[i], w.Balls[j]
	if i == j || bi.IsPocketed() || bj.IsPocketed() {
		return math.Inf(1)
	}
	if !bi.IsMoving() && !bj.IsMoving() {
		return math.Inf(1)
	}

	tr := trajectoryOf(bi).minus(trajectoryOf(bj))
	if tr.c0.Norm() < degenerate {
		return math.Inf(1)
	}

	// touching and closing, e.g. the second contact of a simultaneous hit
	contact := 2 * w.Params.Radius
	if tr.c0.Norm() <= contact+contactSlop*w.Params.Radius && closing(w.Params, tr) {
		return 0
	}

	horizon := math.Inf(1)
	for _, b := range []*ball.Ball{bi, bj} {
		if b.IsMoving() {
			horizon = math.Min(horizon, b.StopTime())
		}
	}
	return distanceRoots(w.Params, tr, contact, horizon)
}
