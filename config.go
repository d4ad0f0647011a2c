package checker

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-checker/digest"
	"github.com/ethereum-optimism/infra/op-checker/flags"
)

// Config holds the application configuration
type Config struct {
	Checklist       string        // Path to the checklist file
	OutputDir       string        // Directory that receives the unit report directories
	KeepHistory     bool          // Write indexed report files instead of replacing the canonical one
	DigestSize      digest.Size   // Size of the report digest
	RunInterval     time.Duration // Interval between checker runs
	RunOnce         bool          // Indicates if the service should exit after one run
	LedgerDir       string        // Directory of the digest ledger, empty disables it
	HealthzAddr     string
	MetricsAddr     string
	ReportStoreSize int
	Color           bool
	Log             log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	checklist, err := filepath.Abs(ctx.String(flags.Checklist.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for checklist '%s': %w", ctx.String(flags.Checklist.Name), err)
	}
	outputDir, err := filepath.Abs(ctx.String(flags.OutputDir.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for output directory '%s': %w", ctx.String(flags.OutputDir.Name), err)
	}

	var ledgerDir string
	if dir := ctx.String(flags.LedgerDir.Name); dir != "" {
		ledgerDir, err = filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for ledger directory '%s': %w", dir, err)
		}
	}

	size := digest.Size(ctx.Int(flags.DigestBits.Name))
	if !size.IsValid() {
		return nil, fmt.Errorf("invalid digest size: %d. Must be one of: %d, %d, %d",
			int(size), int(digest.Bits256), int(digest.Bits384), int(digest.Bits512))
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	if runInterval < 0 {
		return nil, fmt.Errorf("run interval must not be negative: %s", runInterval)
	}

	return &Config{
		Checklist:       checklist,
		OutputDir:       outputDir,
		KeepHistory:     ctx.Bool(flags.KeepHistory.Name),
		DigestSize:      size,
		RunInterval:     runInterval,
		RunOnce:         runInterval == 0,
		LedgerDir:       ledgerDir,
		HealthzAddr:     ctx.String(flags.HealthzAddr.Name),
		MetricsAddr:     ctx.String(flags.MetricsAddr.Name),
		ReportStoreSize: ctx.Int(flags.ReportStoreSize.Name),
		Color:           ctx.Bool(flags.Color.Name),
		Log:             log,
	}, nil
}
