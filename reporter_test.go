package checker

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-checker/harness"
)

// gathered returns the value of the named metric whose labels include label=value
func gathered(t *testing.T, name, label, value string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() != label || lp.GetValue() != value {
					continue
				}
				if m.GetCounter() != nil {
					return m.GetCounter().GetValue()
				}
				return m.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func TestDefaultMetricsReporter_ReportUnit(t *testing.T) {
	reporter := NewDefaultMetricsReporter()

	written := gathered(t, "checker_reports_written_total", "unit", "reporter-unit")
	changes := gathered(t, "checker_unit_outcome_changes_total", "unit", "reporter-unit")

	reporter.ReportUnit(UnitResult{
		Report:  harness.Report{Description: "reporter-unit", Passed: 1, Total: 4, Elapsed: 20 * time.Millisecond},
		Changed: true,
	})

	assert.Equal(t, written+1, gathered(t, "checker_reports_written_total", "unit", "reporter-unit"))
	assert.Equal(t, changes+1, gathered(t, "checker_unit_outcome_changes_total", "unit", "reporter-unit"))
	assert.Equal(t, 0.25, gathered(t, "checker_unit_pass_ratio", "unit", "reporter-unit"))
}

func TestDefaultMetricsReporter_ReportRunAndError(t *testing.T) {
	reporter := NewDefaultMetricsReporter()

	runs := gathered(t, "checker_runs_total", "result", string(StatusFail))
	reporter.ReportRun(&RunResult{Status: StatusFail, Duration: time.Second})
	assert.Equal(t, runs+1, gathered(t, "checker_runs_total", "result", string(StatusFail)))

	before := gathered(t, "checker_errors_total", "error", "run_aborted.boom")
	reporter.ReportError("run_aborted", errors.New("boom"))
	assert.Equal(t, before+1, gathered(t, "checker_errors_total", "error", "run_aborted.boom"))
}
