// Package dynamo provides the shared primitives of the billiards engine.
//
// The package defines the small value types every other package builds on:
//
//   - [Vec2]: a 2D vector on the table plane
//   - [Params]: the immutable physical parameters of one table session
//   - [SolveQuadratic], [SolveCubic], [SolveQuartic]: closed-form real
//     root finders used by the event predicates
//   - [SimError]: a step-loop fault with simulation context
//
// # Example
//
//	p := dynamo.DefaultParams()
//	roots := dynamo.SolveQuartic(a4, a3, a2, a1, a0)
//	t, ok := p.FirstAdmissible(roots, horizon, approaching)
//
// # Thread Safety
//
// Everything here is either a value type or a pure function and may be
// used from any goroutine.
package dynamo
