package checker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"

	"github.com/ethereum-optimism/infra/op-checker/checklist"
	"github.com/ethereum-optimism/infra/op-checker/exitcodes"
	"github.com/ethereum-optimism/infra/op-checker/ledger"
	"github.com/ethereum-optimism/infra/op-checker/reporting"
	"github.com/ethereum-optimism/infra/op-checker/service"
)

// app implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &app{}

// app loads a checklist once and runs it, either a single time or at a fixed
// interval, serving the latest reports while it is alive.
type app struct {
	ctx       context.Context
	config    *Config
	version   string
	checker   *Checker
	ledger    *ledger.Ledger
	store     *reporting.Store
	service   *service.Service
	formatter ResultFormatter
	result    atomic.Pointer[RunResult]

	running  atomic.Bool
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	shutdownCallback func(error) // Callback to signal application shutdown
}

// NewApp wires the checklist, report sink, ledger, store and servers
// described by config.
func NewApp(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*app, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating op-checker with config",
		"checklist", config.Checklist,
		"outputDir", config.OutputDir,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce,
		"keepHistory", config.KeepHistory,
		"digestSize", config.DigestSize)

	units, err := checklist.Load(config.Checklist, checklist.Options{
		Log:        config.Log,
		DigestSize: config.DigestSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist: %w", err)
	}

	sink, err := reporting.NewFileSink(config.OutputDir, config.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create report sink: %w", err)
	}

	store, err := reporting.NewStore(config.ReportStoreSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create report store: %w", err)
	}

	opts := Options{
		Sink:        sink,
		Log:         config.Log,
		KeepHistory: config.KeepHistory,
		Store:       store,
	}

	var ldg *ledger.Ledger
	if config.LedgerDir != "" {
		ldg, err = ledger.Open(config.LedgerDir, config.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
		opts.Ledger = ldg
	}

	c, err := New(opts)
	if err != nil {
		closeLedger(ldg, config)
		return nil, fmt.Errorf("failed to create checker: %w", err)
	}
	for _, u := range units {
		if err := c.AddUnit(u); err != nil {
			closeLedger(ldg, config)
			return nil, fmt.Errorf("failed to add unit: %w", err)
		}
	}
	config.Log.Info("op-checker: loaded checklist", "units", len(units))

	return &app{
		ctx:     ctx,
		config:  config,
		version: version,
		checker: c,
		ledger:  ldg,
		store:   store,
		service: service.New(service.Config{
			HealthzAddr: config.HealthzAddr,
			MetricsAddr: config.MetricsAddr,
			Reports:     store,
			Log:         config.Log,
		}),
		formatter:        NewConsoleResultFormatter(config.Log, os.Stdout, config.Color),
		done:             make(chan struct{}),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the checklist immediately and, unless in run-once mode, again
// at every interval.
// Start implements the cliapp.Lifecycle interface.
func (a *app) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			a.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	a.ctx = ctx
	a.done = make(chan struct{})
	a.running.Store(true)
	a.service.Start(ctx)

	if a.config.RunOnce {
		a.config.Log.Info("Starting op-checker in run-once mode")
	} else {
		a.config.Log.Info("Starting op-checker in continuous mode", "interval", a.config.RunInterval)
	}

	if err := a.runChecks(); err != nil {
		a.config.Log.Error("Runtime error running checks", "error", err)
		return err
	}

	if a.config.RunOnce {
		a.config.Log.Info("Checks completed, exiting (run-once mode)")

		if result := a.result.Load(); result != nil && result.Status == StatusFail {
			a.config.Log.Warn("Run-once checker run completed with failures, returning exit code 1")
			return NewTestFailureError(result)
		}

		go func() {
			a.shutdownCallback(nil)
		}()
		return nil
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.config.Log.Debug("Starting periodic checker goroutine", "interval", a.config.RunInterval)

		for {
			select {
			case <-time.After(a.config.RunInterval):
				if !a.running.Load() {
					a.config.Log.Debug("Service stopped, exiting periodic checker")
					return
				}

				a.config.Log.Info("Running periodic checks")
				if err := a.runChecks(); err != nil {
					a.config.Log.Error("Error running periodic checks", "error", err)
				}

			case <-a.done:
				a.config.Log.Debug("Done signal received, stopping periodic checker")
				return

			case <-ctx.Done():
				a.config.Log.Debug("Context canceled, stopping periodic checker")
				a.running.Store(false)
				return
			}
		}
	}()
	a.config.Log.Debug("op-checker started successfully")
	return nil
}

// runChecks runs every unit and prints the results table
func (a *app) runChecks() error {
	result, err := a.checker.Run(a.ctx)
	if err != nil {
		return err
	}
	a.result.Store(result)

	if err := a.formatter.FormatResults(result); err != nil {
		a.config.Log.Warn("Failed to print results", "error", err)
	}
	a.config.Log.Info("Checker run completed", "run_id", result.RunID, "status", result.Status)
	return nil
}

// Stop stops the periodic runner, the servers and the ledger. The periodic
// runner may already have exited on context cancellation; the servers and
// the ledger are released exactly once either way.
// Stop implements the cliapp.Lifecycle interface.
func (a *app) Stop(ctx context.Context) error {
	a.config.Log.Info("Stopping op-checker")

	a.stopOnce.Do(func() {
		a.running.Store(false)

		close(a.done)
		a.wg.Wait()

		a.service.Shutdown(ctx)
		closeLedger(a.ledger, a.config)

		a.config.Log.Info("op-checker stopped successfully")
	})
	return nil
}

// Stopped returns true if op-checker is stopped.
// Stopped implements the cliapp.Lifecycle interface.
func (a *app) Stopped() bool {
	return !a.running.Load()
}

// Result returns the outcome of the latest completed run
func (a *app) Result() *RunResult {
	return a.result.Load()
}

func closeLedger(l *ledger.Ledger, config *Config) {
	if l == nil {
		return
	}
	if err := l.Close(); err != nil {
		config.Log.Warn("Failed to close ledger", "error", err)
	}
}
