// Package harness implements the Unit -> Test -> Subtest hierarchy: ordered
// execution, pass/fail aggregation and report rendering.
package harness

import "github.com/ethereum-optimism/infra/op-checker/types"

// Check is the behavior behind a subtest. A returned error is not a failed
// check: it aborts the whole traversal.
type Check interface {
	Check() (types.Result, error)
}

// CheckFunc adapts an ordinary function to the Check interface
type CheckFunc func() (types.Result, error)

func (f CheckFunc) Check() (types.Result, error) {
	return f()
}

// Predicate adapts a boolean function that cannot fail
func Predicate(fn func() bool) Check {
	return CheckFunc(func() (types.Result, error) {
		return types.ResultFromBool(fn()), nil
	})
}

// Static returns a check that always yields result
func Static(result types.Result) Check {
	return CheckFunc(func() (types.Result, error) {
		return result, nil
	})
}

// Hook runs before the children of a Test or Unit
type Hook func() error
