package checker

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-checker/format"
)

// ResultFormatter is responsible for formatting and displaying run results.
type ResultFormatter interface {
	FormatResults(result *RunResult) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	logger log.Logger
	out    io.Writer
	color  bool
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter writing to
// out, or stdout when out is nil.
func NewConsoleResultFormatter(logger log.Logger, out io.Writer, color bool) *ConsoleResultFormatter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleResultFormatter{
		logger: logger,
		out:    out,
		color:  color,
	}
}

// FormatResults renders one row per unit plus a totals footer.
func (f *ConsoleResultFormatter) FormatResults(result *RunResult) error {
	if result == nil {
		return fmt.Errorf("no result to format")
	}
	f.logger.Debug("Printing results...", "run_id", result.RunID)

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(fmt.Sprintf("Checker Results (%s)", formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"#", "Unit", "Duration", "Tests", "Passed", "Failed", "Pass %", "Changed", "Digest",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Unit", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Pass %", Align: text.AlignRight},
		{Name: "Digest", WidthMax: 16, WidthMaxEnforcer: text.Trim},
	})

	for i, u := range result.Units {
		t.AppendRow(table.Row{
			i + 1,
			u.Report.Description,
			formatDuration(u.Report.Elapsed),
			u.Report.Total,
			u.Report.Passed,
			u.Report.Total - u.Report.Passed,
			format.Float(format.Percent(u.Report.Passed, u.Report.Total)),
			changedString(u.Changed),
			u.Report.Digest,
		})
	}

	if f.color {
		if result.Status == StatusPass {
			t.SetStyle(table.StyleColoredBlackOnGreenWhite)
		} else {
			t.SetStyle(table.StyleColoredBlackOnRedWhite)
		}
	}

	t.AppendFooter(table.Row{
		"",
		"TOTAL",
		formatDuration(result.Duration),
		result.Total,
		result.Passed,
		result.Total - result.Passed,
		format.Float(format.Percent(result.Passed, result.Total)),
		"",
		getResultString(result.Status),
	})

	t.Render()
	_, err := fmt.Fprintln(f.out, result.String())
	return err
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func getResultString(status Status) string {
	switch status {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

func changedString(changed bool) string {
	if changed {
		return "yes"
	}
	return ""
}
