package types

import "fmt"

// Result represents the outcome of a single subtest run
type Result int

const (
	// Failed is the zero value so that a subtest which never ran reports as failed
	Failed Result = iota
	Passed
)

// String returns the label used in rendered reports
func (r Result) String() string {
	switch r {
	case Passed:
		return "Passed"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// IsValid reports whether r is one of the known results
func (r Result) IsValid() bool {
	return r == Passed || r == Failed
}

// ResultFromBool maps a boolean check outcome onto a Result
func ResultFromBool(ok bool) Result {
	if ok {
		return Passed
	}
	return Failed
}
