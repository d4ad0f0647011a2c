package harness

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum-optimism/infra/op-checker/digest"
	"github.com/ethereum-optimism/infra/op-checker/format"
	"github.com/ethereum-optimism/infra/op-checker/types"
)

// TimestampLayout is the layout of the timestamp in a unit header
const TimestampLayout = "2006-01-02 15:04:05"

// DigestPrefix starts the last line of every unit report
const DigestPrefix = "UNIT DIGEST: "

// Clock supplies the time used for run timing and report headers
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock reads the wall clock; its readings carry the monotonic
// component so elapsed times are immune to clock steps.
var SystemClock Clock = systemClock{}

// Unit is an ordered collection of tests and the granularity of a report file
type Unit struct {
	description string
	width       int
	setup       Hook
	clock       Clock
	digestSize  digest.Size
	tests       []*Test

	passed  int
	total   int
	elapsed time.Duration
	digest  string
}

type UnitOption func(*Unit)

// WithUnitWidth sets the width of the report rules
func WithUnitWidth(width int) UnitOption {
	return func(u *Unit) {
		u.width = width
	}
}

// WithUnitSetup registers logic that runs before the tests on every Run
func WithUnitSetup(hook Hook) UnitOption {
	return func(u *Unit) {
		u.setup = hook
	}
}

// WithClock replaces the system clock
func WithClock(clock Clock) UnitOption {
	return func(u *Unit) {
		u.clock = clock
	}
}

// WithDigestSize selects the hash used for the digest line
func WithDigestSize(size digest.Size) UnitOption {
	return func(u *Unit) {
		u.digestSize = size
	}
}

// NewUnit creates an empty unit
func NewUnit(description string, opts ...UnitOption) (*Unit, error) {
	if strings.TrimSpace(description) == "" {
		return nil, types.NewInvalidArgumentError("description", "must not be empty")
	}
	u := &Unit{
		description: description,
		width:       MinWidth,
		clock:       SystemClock,
		digestSize:  digest.Default,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.width < MinWidth {
		return nil, types.NewInvalidArgumentError("width",
			fmt.Sprintf("%d is less than the minimum valid width %d", u.width, MinWidth))
	}
	if u.clock == nil {
		return nil, types.NewInvalidArgumentError("clock", "must not be nil")
	}
	if !u.digestSize.IsValid() {
		return nil, types.NewInvalidArgumentError("digestSize",
			fmt.Sprintf("unsupported digest size %d", int(u.digestSize)))
	}
	return u, nil
}

// AddTest appends t to the unit
func (u *Unit) AddTest(t *Test) error {
	if t == nil {
		return types.NewInvalidArgumentError("test", "must not be nil")
	}
	u.tests = append(u.tests, t)
	return nil
}

func (u *Unit) Description() string {
	return u.description
}

func (u *Unit) Passed() int {
	return u.passed
}

func (u *Unit) Total() int {
	return u.total
}

// Elapsed returns the duration of the last complete Run
func (u *Unit) Elapsed() time.Duration {
	return u.elapsed
}

// Digest returns the hex digest of the last Render, or "" before the first one
func (u *Unit) Digest() string {
	return u.digest
}

// Tests returns the tests in insertion order
func (u *Unit) Tests() []*Test {
	out := make([]*Test, len(u.tests))
	copy(out, u.tests)
	return out
}

// Run runs the tests present when the call starts, in order, and times the
// traversal. Counters restart from zero on every Run and are only replaced
// when the whole traversal succeeds.
func (u *Unit) Run() error {
	start := u.clock.Now()

	if u.setup != nil {
		if err := u.setup(); err != nil {
			return fmt.Errorf("unit %q setup: %w", u.description, err)
		}
	}

	n := len(u.tests)
	passed, total := 0, 0
	for i := 0; i < n; i++ {
		t := u.tests[i]
		if err := t.Run(); err != nil {
			return fmt.Errorf("unit %q: %w", u.description, err)
		}
		passed += t.Passed()
		total += t.Total()
	}

	u.elapsed = u.clock.Now().Sub(start)
	u.passed = passed
	u.total = total
	return nil
}

// Render returns the full unit report. The last line is the digest of every
// byte above it.
func (u *Unit) Render() (string, error) {
	rule := format.MustBar('=', u.width)
	header := strings.ToUpper(u.description) + " (" + u.clock.Now().Format(TimestampLayout) + ")"
	elapsedMs := u.elapsed.Milliseconds()

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\n")
	}

	line(rule)
	line(format.Center(header, u.width))
	line(rule)
	for i, t := range u.tests {
		line("Test #" + strconv.Itoa(i+1) + " - " + t.Render())
		line(rule)
	}
	line("Average Execution Time : " + format.Float(format.Ratio(float64(elapsedMs), len(u.tests))) + " ms")
	line("Total Execution Time   : " + strconv.FormatInt(elapsedMs, 10) + " ms")
	line("Total Passed           : " + format.PassRate(u.passed, u.total))
	line(rule)

	body := b.String()
	sum, err := digest.ComputeHex([]byte(body), u.digestSize)
	if err != nil {
		return "", fmt.Errorf("unit %q digest: %w", u.description, err)
	}
	u.digest = sum
	return body + DigestPrefix + sum + "\n", nil
}

// Report is a snapshot of a unit after a run
type Report struct {
	Description string        `json:"description"`
	Passed      int           `json:"passed"`
	Total       int           `json:"total"`
	Elapsed     time.Duration `json:"elapsed"`
	Digest      string        `json:"digest"`
}

// Snapshot returns the counters and digest of the unit
func (u *Unit) Snapshot() Report {
	return Report{
		Description: u.description,
		Passed:      u.passed,
		Total:       u.total,
		Elapsed:     u.elapsed,
		Digest:      u.digest,
	}
}
