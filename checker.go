package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum-optimism/infra/op-checker/format"
	"github.com/ethereum-optimism/infra/op-checker/harness"
	"github.com/ethereum-optimism/infra/op-checker/ledger"
	"github.com/ethereum-optimism/infra/op-checker/reporting"
	"github.com/ethereum-optimism/infra/op-checker/types"
)

const tracerName = "github.com/ethereum-optimism/infra/op-checker"

// ReportSink resolves and writes the report file of a unit
type ReportSink interface {
	Prepare(description string, overwrite bool) (string, error)
	Write(path string, report string) error
}

// DigestLedger remembers the previous outcome of every unit
type DigestLedger interface {
	Record(rec ledger.Record) (ledger.Record, bool, error)
}

// ReportStore receives every written report
type ReportStore interface {
	Put(e reporting.Entry)
}

// Status is the overall outcome of a run
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// UnitResult describes one unit of a completed run
type UnitResult struct {
	Report  harness.Report
	Path    string
	Changed bool
}

// RunResult describes a completed run
type RunResult struct {
	RunID    string
	Status   Status
	Passed   int
	Total    int
	Duration time.Duration
	Units    []UnitResult
}

func (r *RunResult) String() string {
	return fmt.Sprintf("Run %s: %s, %d units, passed %s in %s",
		r.RunID, r.Status, len(r.Units), format.PassRate(r.Passed, r.Total), r.Duration)
}

// Options configures a Checker
type Options struct {
	Sink        ReportSink
	Log         log.Logger
	KeepHistory bool // write indexed files instead of replacing the canonical report
	Ledger      DigestLedger
	Store       ReportStore
	Reporter    MetricsReporter
}

// Checker runs an ordered list of units and writes one report per unit
type Checker struct {
	sink        ReportSink
	log         log.Logger
	keepHistory bool
	ledger      DigestLedger
	store       ReportStore
	reporter    MetricsReporter
	tracer      trace.Tracer
	units       []*harness.Unit
}

// New creates a Checker. A sink is required; everything else is optional.
func New(opts Options) (*Checker, error) {
	if opts.Sink == nil {
		return nil, types.NewInvalidArgumentError("sink", "must not be nil")
	}
	if opts.Log == nil {
		opts.Log = log.New()
	}
	if opts.Reporter == nil {
		opts.Reporter = NewDefaultMetricsReporter()
	}
	return &Checker{
		sink:        opts.Sink,
		log:         opts.Log,
		keepHistory: opts.KeepHistory,
		ledger:      opts.Ledger,
		store:       opts.Store,
		reporter:    opts.Reporter,
		tracer:      otel.Tracer(tracerName),
	}, nil
}

// AddUnit appends u to the checker
func (c *Checker) AddUnit(u *harness.Unit) error {
	if u == nil {
		return types.NewInvalidArgumentError("unit", "must not be nil")
	}
	c.units = append(c.units, u)
	return nil
}

// Units returns the units in insertion order
func (c *Checker) Units() []*harness.Unit {
	out := make([]*harness.Unit, len(c.units))
	copy(out, c.units)
	return out
}

// Run runs the units present when the call starts, in order, writing each
// report as soon as its unit completes. The first error aborts the run:
// later units are not run and the failing unit gets no report, while
// reports already written stay on disk. The returned *RuntimeError names the
// unit that aborted the run. ctx only carries tracing.
func (c *Checker) Run(ctx context.Context) (*RunResult, error) {
	runID := uuid.New().String()
	ctx, span := c.tracer.Start(ctx, "checker.run", trace.WithAttributes(
		attribute.String("run_id", runID),
	))
	defer span.End()

	start := time.Now()
	n := len(c.units)
	c.log.Info("Starting checker run", "run_id", runID, "units", n)

	result := &RunResult{
		RunID: runID,
		Units: make([]UnitResult, 0, n),
	}
	for i := 0; i < n; i++ {
		ur, err := c.runUnit(ctx, runID, c.units[i])
		if err != nil {
			result.Duration = time.Since(start)
			c.log.Error("Checker run aborted", "run_id", runID, "unit", c.units[i].Description(), "err", err)
			c.reporter.ReportError("run_aborted", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, newUnitError(c.units[i].Description(), err)
		}
		result.Units = append(result.Units, ur)
		result.Passed += ur.Report.Passed
		result.Total += ur.Report.Total
	}

	result.Duration = time.Since(start)
	result.Status = StatusPass
	if result.Passed != result.Total {
		result.Status = StatusFail
	}
	span.SetAttributes(
		attribute.Int("passed", result.Passed),
		attribute.Int("total", result.Total),
	)
	c.reporter.ReportRun(result)
	c.log.Info("Checker run completed", "run_id", runID, "status", result.Status,
		"passed", result.Passed, "total", result.Total, "duration", result.Duration)
	return result, nil
}

func (c *Checker) runUnit(ctx context.Context, runID string, u *harness.Unit) (UnitResult, error) {
	_, span := c.tracer.Start(ctx, "checker.unit", trace.WithAttributes(
		attribute.String("unit", u.Description()),
	))
	defer span.End()

	fail := func(err error) (UnitResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return UnitResult{}, err
	}

	c.log.Debug("Running unit", "run_id", runID, "unit", u.Description())
	if err := u.Run(); err != nil {
		return fail(err)
	}

	report, err := u.Render()
	if err != nil {
		return fail(err)
	}
	path, err := c.sink.Prepare(u.Description(), !c.keepHistory)
	if err != nil {
		return fail(fmt.Errorf("failed to prepare report file for unit %q: %w", u.Description(), err))
	}
	if err := c.sink.Write(path, report); err != nil {
		return fail(fmt.Errorf("failed to write report for unit %q: %w", u.Description(), err))
	}

	ur := UnitResult{
		Report: u.Snapshot(),
		Path:   path,
	}
	ur.Changed = c.recordLedger(runID, ur)

	if c.store != nil {
		c.store.Put(reporting.Entry{
			RunID:     runID,
			Path:      path,
			WrittenAt: time.Now(),
			Changed:   ur.Changed,
			Report:    ur.Report,
			Content:   report,
		})
	}
	c.reporter.ReportUnit(ur)

	span.SetAttributes(
		attribute.Int("passed", ur.Report.Passed),
		attribute.Int("total", ur.Report.Total),
		attribute.String("digest", ur.Report.Digest),
	)
	c.log.Info("Unit report written", "run_id", runID, "unit", u.Description(),
		"passed", ur.Report.Passed, "total", ur.Report.Total, "path", path)
	return ur, nil
}

// recordLedger stores the unit outcome and reports whether its pass counts
// differ from the previous run. Ledger failures are logged, not fatal.
func (c *Checker) recordLedger(runID string, ur UnitResult) bool {
	if c.ledger == nil {
		return false
	}
	rec := ledger.Record{
		Unit:     ur.Report.Description,
		RunID:    runID,
		Digest:   ur.Report.Digest,
		Passed:   ur.Report.Passed,
		Total:    ur.Report.Total,
		Recorded: time.Now(),
	}
	prev, found, err := c.ledger.Record(rec)
	if err != nil {
		c.log.Warn("Failed to record unit in ledger", "unit", rec.Unit, "err", err)
		c.reporter.ReportError("ledger", err)
		return false
	}
	if !found || prev.SameOutcome(rec) {
		return false
	}
	c.log.Warn("Unit outcome changed since previous run", "unit", rec.Unit,
		"previous", format.PassRate(prev.Passed, prev.Total),
		"current", format.PassRate(rec.Passed, rec.Total),
		"previous_run_id", prev.RunID)
	return true
}
