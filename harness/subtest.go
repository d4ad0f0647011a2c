package harness

import (
	"fmt"
	"strings"

	"github.com/ethereum-optimism/infra/op-checker/format"
	"github.com/ethereum-optimism/infra/op-checker/types"
)

// DefaultSubtestWidth is the rendered line width of a subtest
const DefaultSubtestWidth = 150

// Subtest is the smallest executable node
type Subtest struct {
	description string
	width       int
	check       Check
	result      types.Result
}

type SubtestOption func(*Subtest)

// WithSubtestWidth overrides the rendered line width
func WithSubtestWidth(width int) SubtestOption {
	return func(s *Subtest) {
		s.width = width
	}
}

// NewSubtest creates a subtest whose outcome is decided by check
func NewSubtest(description string, check Check, opts ...SubtestOption) (*Subtest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, types.NewInvalidArgumentError("description", "must not be empty")
	}
	if check == nil {
		return nil, types.NewInvalidArgumentError("check", "must not be nil")
	}

	s := &Subtest{
		description: description,
		width:       DefaultSubtestWidth,
		check:       check,
		result:      types.Failed,
	}
	for _, opt := range opts {
		opt(s)
	}

	// description, result and the two separating spaces must fit, measured
	// in display columns like every other width in a report
	minWidth := format.Width(description) + format.Width(s.result.String()) + 2
	if s.width < minWidth {
		return nil, types.NewInvalidArgumentError("width",
			fmt.Sprintf("%d is less than the minimum valid width %d", s.width, minWidth))
	}
	return s, nil
}

func (s *Subtest) Description() string {
	return s.description
}

func (s *Subtest) Result() types.Result {
	return s.result
}

// Run executes the check and records its result. On error the previous
// result is left untouched.
func (s *Subtest) Run() error {
	result, err := s.check.Check()
	if err != nil {
		return fmt.Errorf("subtest %q: %w", s.description, err)
	}
	if !result.IsValid() {
		return types.NewInvalidOperationError("run",
			fmt.Sprintf("subtest %q produced unknown result %d", s.description, int(result)))
	}
	s.result = result
	return nil
}

// Render returns the single report line for the subtest
func (s *Subtest) Render() string {
	res := s.result.String()
	pad := s.width - format.Width(s.description) - format.Width(res) - 2
	return s.description + " " + format.Dots(pad) + " " + res
}

func (s *Subtest) String() string {
	return s.Render()
}
