package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrParameterBounds indicates a physical parameter outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidGeometry indicates malformed table geometry.
	ErrInvalidGeometry = errors.New("dynamo: invalid table geometry")

	// ErrUnknownBall indicates a ball id that is not on the table.
	ErrUnknownBall = errors.New("dynamo: unknown ball")

	// ErrInvalidStrike indicates a strike that cannot be applied.
	ErrInvalidStrike = errors.New("dynamo: invalid strike")

	// ErrNoQuiescence indicates the step loop did not come to rest within its event budget.
	ErrNoQuiescence = errors.New("dynamo: simulation did not reach rest")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimError wraps a step-loop fault with simulation context.
type SimError struct {
	Time    float64
	Step    int
	Message string
	Wrapped error
}

func (e *SimError) Error() string {
	if e.Wrapped == nil {
		return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
	}
	return fmt.Sprintf("step %d (t=%.4f): %s: %v", e.Step, e.Time, e.Message, e.Wrapped)
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
