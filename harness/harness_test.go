package harness

import (
	"errors"
	"time"

	"github.com/ethereum-optimism/infra/op-checker/types"
)

var errBoom = errors.New("boom")

// fixedClock always reports the same instant
type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

// steppingClock advances by step on every reading
type steppingClock struct {
	t    time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

// countingCheck records how often it ran and returns the configured result
type countingCheck struct {
	result types.Result
	err    error
	runs   int
}

func (c *countingCheck) Check() (types.Result, error) {
	c.runs++
	return c.result, c.err
}

var refTime = time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
