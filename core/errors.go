package core

import (
	"errors"
	"fmt"
)

var (
	ErrGridParse        = errors.New("invalid grid description")
	ErrEmptyStateSpace  = errors.New("grid has no non-terminal states")
	ErrNoConvergingPath = errors.New("greedy rollout did not reach a terminal state")
	ErrInvalidConfig    = errors.New("invalid training configuration")
	ErrShapeMismatch    = errors.New("q-table shape does not match grid")
)

// GridParseError reports a problem with a grid description.
// Line is 1-based and counts the header; 0 means the description as a whole.
type GridParseError struct {
	Line   int
	Reason string
	Err    error
}

func (e *GridParseError) Error() string {
	msg := e.Reason
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return "grid description: " + msg
}

func (e *GridParseError) Unwrap() error {
	return e.Err
}

func (e *GridParseError) Is(target error) bool {
	return target == ErrGridParse
}
