package checker

import (
	"github.com/ethereum-optimism/infra/op-checker/metrics"
)

// MetricsReporter is responsible for reporting metrics from checker runs.
type MetricsReporter interface {
	ReportUnit(result UnitResult)
	ReportRun(result *RunResult)
	ReportError(label string, err error)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportUnit reports the outcome of a single unit.
func (r *DefaultMetricsReporter) ReportUnit(result UnitResult) {
	metrics.RecordUnit(
		result.Report.Description,
		result.Report.Passed,
		result.Report.Total,
		result.Report.Elapsed,
	)
	metrics.RecordReportWritten(result.Report.Description)
	if result.Changed {
		metrics.RecordOutcomeChange(result.Report.Description)
	}
}

// ReportRun reports the outcome of a whole run.
func (r *DefaultMetricsReporter) ReportRun(result *RunResult) {
	metrics.RecordRun(string(result.Status), result.Duration)
}

// ReportError reports an error that aborted or degraded a run.
func (r *DefaultMetricsReporter) ReportError(label string, err error) {
	metrics.RecordErrorDetails(label, err)
}
