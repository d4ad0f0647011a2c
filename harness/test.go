package harness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum-optimism/infra/op-checker/format"
	"github.com/ethereum-optimism/infra/op-checker/types"
)

const (
	// MinWidth is the narrowest rule a Test or Unit will render
	MinWidth = 80
)

// Test is an ordered collection of subtests
type Test struct {
	description string
	width       int
	setup       Hook
	subtests    []*Subtest
	passed      int
}

type TestOption func(*Test)

// WithTestWidth sets the width of the horizontal rules
func WithTestWidth(width int) TestOption {
	return func(t *Test) {
		t.width = width
	}
}

// WithTestSetup registers logic that runs before the subtests on every Run
func WithTestSetup(hook Hook) TestOption {
	return func(t *Test) {
		t.setup = hook
	}
}

// NewTest creates an empty test
func NewTest(description string, opts ...TestOption) (*Test, error) {
	if strings.TrimSpace(description) == "" {
		return nil, types.NewInvalidArgumentError("description", "must not be empty")
	}
	t := &Test{
		description: description,
		width:       MinWidth,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.width < MinWidth {
		return nil, types.NewInvalidArgumentError("width",
			fmt.Sprintf("%d is less than the minimum valid width %d", t.width, MinWidth))
	}
	return t, nil
}

// AddSubtest appends s to the test
func (t *Test) AddSubtest(s *Subtest) error {
	if s == nil {
		return types.NewInvalidArgumentError("subtest", "must not be nil")
	}
	t.subtests = append(t.subtests, s)
	return nil
}

func (t *Test) Description() string {
	return t.description
}

// Passed returns the number of subtests that passed in the last complete Run
func (t *Test) Passed() int {
	return t.passed
}

// Total returns the number of subtests in the test
func (t *Test) Total() int {
	return len(t.subtests)
}

// Subtests returns the subtests in insertion order
func (t *Test) Subtests() []*Subtest {
	out := make([]*Subtest, len(t.subtests))
	copy(out, t.subtests)
	return out
}

// Run runs the subtests present when the call starts, in order. Subtests
// added while running are picked up by the next Run. The passed counter is
// only replaced once every subtest has run.
func (t *Test) Run() error {
	if t.setup != nil {
		if err := t.setup(); err != nil {
			return fmt.Errorf("test %q setup: %w", t.description, err)
		}
	}

	n := len(t.subtests)
	passed := 0
	for i := 0; i < n; i++ {
		s := t.subtests[i]
		if err := s.Run(); err != nil {
			return fmt.Errorf("test %q: %w", t.description, err)
		}
		if s.Result() == types.Passed {
			passed++
		}
	}
	t.passed = passed
	return nil
}

// Render returns the block report of the test
func (t *Test) Render() string {
	rule := format.MustBar('-', t.width)

	var b strings.Builder
	b.WriteString(t.description)
	b.WriteString("\n")
	b.WriteString(rule)
	b.WriteString("\n")
	for i, s := range t.subtests {
		b.WriteString("\t")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(s.Render())
		b.WriteString("\n")
	}
	b.WriteString(rule)
	b.WriteString("\n")
	b.WriteString("Passed: ")
	b.WriteString(format.PassRate(t.passed, t.Total()))
	return b.String()
}

func (t *Test) String() string {
	return t.Render()
}
