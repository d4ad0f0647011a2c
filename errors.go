package checker

import (
	"errors"
	"fmt"

	"github.com/ethereum-optimism/infra/op-checker/exitcodes"
)

// RuntimeError is a run that could not complete: a check returned an error, a
// report could not be written, or the configuration is unusable. Unit names
// the unit that aborted the run and is empty for configuration errors.
type RuntimeError struct {
	Unit string
	Err  error
}

func (e *RuntimeError) Error() string {
	if e.Unit == "" {
		return fmt.Sprintf("runtime error: %v", e.Err)
	}
	return fmt.Sprintf("runtime error in unit %q: %v", e.Unit, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// ExitCode implements cli.ExitCoder
func (e *RuntimeError) ExitCode() int {
	return exitcodes.RuntimeErr
}

// NewRuntimeError wraps an error that is not tied to a unit
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

func newUnitError(unit string, err error) *RuntimeError {
	return &RuntimeError{Unit: unit, Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return errors.As(err, &runtimeErr)
}

// AbortingUnit returns the description of the unit that aborted a run
func AbortingUnit(err error) (string, bool) {
	var runtimeErr *RuntimeError
	if !errors.As(err, &runtimeErr) || runtimeErr.Unit == "" {
		return "", false
	}
	return runtimeErr.Unit, true
}

// TestFailureError is a completed run in which at least one subtest failed
type TestFailureError struct {
	Result *RunResult
}

func (e *TestFailureError) Error() string {
	if e.Result == nil {
		return "subtest failures"
	}
	return fmt.Sprintf("subtest failures: %s", e.Result)
}

// ExitCode implements cli.ExitCoder
func (e *TestFailureError) ExitCode() int {
	return exitcodes.TestFailure
}

func NewTestFailureError(result *RunResult) *TestFailureError {
	return &TestFailureError{Result: result}
}

// IsTestFailureError checks if the error is or wraps a TestFailureError
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return errors.As(err, &testErr)
}
