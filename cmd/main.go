package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	checker "github.com/ethereum-optimism/infra/op-checker"
	"github.com/ethereum-optimism/infra/op-checker/exitcodes"
	"github.com/ethereum-optimism/infra/op-checker/flags"
	"github.com/ethereum-optimism/optimism/devnet-sdk/telemetry"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "op-checker"
	app.Usage = "Hierarchical checklist runner"
	app.Description = "op-checker runs units of tests and subtests and writes one digest-signed report per unit"
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Action = cliapp.LifecycleCmd(run)
	app.ExitErrHandler = func(c *cli.Context, err error) {
		cli.HandleExitCoder(exitCoder(err))
	}

	// Start telemetry
	ctx, shutdown, err := telemetry.SetupOpenTelemetry(
		context.Background(),
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer shutdown()

	ctx = ctxinterrupt.WithSignalWaiterMain(ctx)
	err = app.RunContext(ctx, os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
	logCfg := oplog.ReadCLIConfig(ctx)
	log := oplog.NewLogger(oplog.AppOut(ctx), logCfg)
	oplog.SetGlobalLogHandler(log.Handler())
	oplog.SetupDefaults()

	cfg, err := checker.NewConfig(ctx, log)
	if err != nil {
		return nil, checker.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	cfg.Log.Debug("Config", "config", cfg)

	app, err := checker.NewApp(ctx.Context, cfg, Version, closeApp)
	if err != nil {
		return nil, checker.NewRuntimeError(fmt.Errorf("failed to create op-checker: %w", err))
	}

	return app, nil
}

// exitCoder maps err to the process exit code. Run errors carry their own
// code; anything else, such as a flag that fails to parse, is a
// configuration error.
func exitCoder(err error) cli.ExitCoder {
	if err == nil {
		return nil
	}
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return cli.Exit(err.Error(), exitErr.ExitCode())
	}
	return cli.Exit(err.Error(), exitcodes.RuntimeErr)
}
