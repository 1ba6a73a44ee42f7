package allocator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports malformed rooms, roster or durations
	ErrInvalidInput = errors.New("invalid allocation input")
	// ErrPrecondition reports inputs the caller must fix before invoking the engine
	ErrPrecondition = errors.New("precondition violation")
	// ErrInfeasible reports a hard rule that cannot be met in strict mode
	ErrInfeasible = errors.New("infeasible constraint")
	// ErrNoCandidate is returned when the budget ran out before any attempt finished
	ErrNoCandidate = errors.New("no candidate allocation within budget")
)

// PreconditionError carries the counts that did not match
type PreconditionError struct {
	What     string
	Expected int
	Actual   int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violation: %s: expected %d, got %d", e.What, e.Expected, e.Actual)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

// InfeasibleError names the room (or housekeeper) a hard rule failed for
type InfeasibleError struct {
	Room        int
	Housekeeper int
	Reason      string
}

func (e *InfeasibleError) Error() string {
	if e.Room != 0 {
		return fmt.Sprintf("infeasible constraint: room %d: %s", e.Room, e.Reason)
	}
	return fmt.Sprintf("infeasible constraint: housekeeper %d: %s", e.Housekeeper, e.Reason)
}

func (e *InfeasibleError) Unwrap() error { return ErrInfeasible }
