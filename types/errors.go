package types

import (
	"errors"
	"fmt"
)

// InvalidArgumentError is returned when a caller violates a precondition:
// an empty description, a nil child or a width below the minimum.
type InvalidArgumentError struct {
	Arg    string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Arg, e.Reason)
}

// NewInvalidArgumentError creates a new InvalidArgumentError
func NewInvalidArgumentError(arg, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Arg: arg, Reason: reason}
}

// IsInvalidArgument checks if the error is or wraps an InvalidArgumentError
func IsInvalidArgument(err error) bool {
	var argErr *InvalidArgumentError
	return err != nil && errors.As(err, &argErr)
}

// InvalidOperationError is returned when an operation cannot be applied to
// otherwise valid inputs, e.g. comparing digests of different sizes.
type InvalidOperationError struct {
	Op     string
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %s: %s", e.Op, e.Reason)
}

// NewInvalidOperationError creates a new InvalidOperationError
func NewInvalidOperationError(op, reason string) *InvalidOperationError {
	return &InvalidOperationError{Op: op, Reason: reason}
}

// IsInvalidOperation checks if the error is or wraps an InvalidOperationError
func IsInvalidOperation(err error) bool {
	var opErr *InvalidOperationError
	return err != nil && errors.As(err, &opErr)
}
