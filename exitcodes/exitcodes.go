// Package exitcodes defines the standard exit codes used by op-checker.
package exitcodes

// Exit code constants used by op-checker
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when every subtest of every unit passes
// * TestFailure (1): Used when the run completed but one or more subtests failed
// * RuntimeErr (2): Used when the run was aborted, e.g. by a check error or an unwritable report
const (
	Success     = 0 // All subtests pass
	TestFailure = 1 // Subtest failures
	RuntimeErr  = 2 // Aborted runs and configuration errors
)
