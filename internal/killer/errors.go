package killer

import (
	"errors"
	"fmt"
)

// ErrContradiction marks a search branch as infeasible: some reducer
// emptied a cell's domain, or an unsatisfiable cage was requested. It is
// caught by the propagation loop and never reaches callers of Solve.
var ErrContradiction = errors.New("contradiction")

// ErrRecursionExhausted is returned when the speculative search exceeds
// its depth cap. Callers treat it as "couldn't decide".
var ErrRecursionExhausted = errors.New("recursion depth exhausted")

// MalformedPuzzleError reports user-supplied cages that do not partition
// the board or reference invalid cell indices.
type MalformedPuzzleError struct {
	Reason string
}

func (e *MalformedPuzzleError) Error() string {
	return fmt.Sprintf("malformed puzzle: %s", e.Reason)
}

func malformed(format string, args ...interface{}) error {
	return &MalformedPuzzleError{Reason: fmt.Sprintf(format, args...)}
}
