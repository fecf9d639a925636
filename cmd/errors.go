package cmd

import (
	"errors"

	"github.com/zeu5/qgrid/core"
)

const (
	exitGeneric          = 1
	exitGridParse        = 10
	exitEmptyStateSpace  = 11
	exitNoConvergingPath = 12
	exitQTable           = 13
	exitConfig           = 14
)

// ExitError carries the process exit code alongside the error.
type ExitError struct {
	err  error
	code int
}

func (e *ExitError) Error() string {
	return e.err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.err
}

func (e *ExitError) ExitCode() int {
	return e.code
}

// withExitCode classifies err by the sentinel it wraps.
func withExitCode(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	code := exitGeneric
	switch {
	case errors.Is(err, core.ErrGridParse):
		code = exitGridParse
	case errors.Is(err, core.ErrEmptyStateSpace):
		code = exitEmptyStateSpace
	case errors.Is(err, core.ErrNoConvergingPath):
		code = exitNoConvergingPath
	case errors.Is(err, core.ErrShapeMismatch):
		code = exitQTable
	case errors.Is(err, core.ErrInvalidConfig):
		code = exitConfig
	}
	return &ExitError{err: err, code: code}
}

func qtableError(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{err: err, code: exitQTable}
}
