package metrics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ethereum-optimism/infra/op-checker/types"
)

const (
	MetricsNamespace = "checker"
)

var (
	Debug                bool = true
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "runs_total",
		Help:      "Count of checker runs by outcome",
	}, []string{
		"result",
	})

	subtestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "subtests_total",
		Help:      "Count of executed subtests by unit and result",
	}, []string{
		"unit",
		"result",
	})

	unitPassRatio = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "unit_pass_ratio",
		Help:      "Fraction of subtests that passed in the last run of a unit",
	}, []string{
		"unit",
	})

	unitDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "unit_duration_seconds",
		Help:      "Duration of the last run of a unit",
	}, []string{
		"unit",
	})

	reportsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "reports_written_total",
		Help:      "Count of unit reports written to disk",
	}, []string{
		"unit",
	})

	unitOutcomeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "unit_outcome_changes_total",
		Help:      "Count of runs where a unit's pass counts differed from the previous run",
	}, []string{
		"unit",
	})

	runDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of the last checker run",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordUnit records the outcome of one unit run
func RecordUnit(unit string, passed int, total int, duration time.Duration) {
	if Debug {
		log.Debug("metric set",
			"m", "unit",
			"unit", unit,
			"passed", passed,
			"total", total,
			"duration", duration)
	}
	subtestsTotal.WithLabelValues(unit, types.Passed.String()).Add(float64(passed))
	subtestsTotal.WithLabelValues(unit, types.Failed.String()).Add(float64(total - passed))
	ratio := 0.0
	if total > 0 {
		ratio = float64(passed) / float64(total)
	}
	unitPassRatio.WithLabelValues(unit).Set(ratio)
	unitDuration.WithLabelValues(unit).Set(duration.Seconds())
}

func RecordReportWritten(unit string) {
	reportsWritten.WithLabelValues(unit).Inc()
}

func RecordOutcomeChange(unit string) {
	unitOutcomeChanges.WithLabelValues(unit).Inc()
}

// RecordRun records the outcome of a whole traversal
func RecordRun(result string, duration time.Duration) {
	runsTotal.WithLabelValues(result).Inc()
	runDuration.Set(duration.Seconds())
}
