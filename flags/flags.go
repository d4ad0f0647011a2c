package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
)

const EnvVarPrefix = "OP_CHECKER"

var (
	OutputDir = &cli.StringFlag{
		Name:     "output-dir",
		Value:    "",
		Required: true,
		EnvVars:  opservice.PrefixEnvVar(EnvVarPrefix, "OUTPUT_DIR"),
		Usage:    "Existing directory that receives one report directory per unit",
	}
	Checklist = &cli.StringFlag{
		Name:     "checklist",
		Value:    "",
		Required: true,
		EnvVars:  opservice.PrefixEnvVar(EnvVarPrefix, "CHECKLIST"),
		Usage:    "Path to the checklist describing units, tests and subtests (.yaml, .yml, .toml or .json)",
	}
	KeepHistory = &cli.BoolFlag{
		Name:    "keep-history",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "KEEP_HISTORY"),
		Usage:   "Write each run to a new indexed report file instead of replacing the previous report",
	}
	DigestBits = &cli.IntFlag{
		Name:    "digest-bits",
		Value:   256,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "DIGEST_BITS"),
		Usage:   "Size of the SHA-2 report digest: 256, 384 or 512",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RUN_INTERVAL"),
		Usage:   "Interval between checker runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	LedgerDir = &cli.StringFlag{
		Name:    "ledger-dir",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LEDGER_DIR"),
		Usage:   "Directory of the digest ledger used to detect outcome changes between runs. Empty disables the ledger.",
	}
	HealthzAddr = &cli.StringFlag{
		Name:    "healthz.addr",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "HEALTHZ_ADDR"),
		Usage:   "Listen address of the healthz and reports server (e.g. '0.0.0.0:8080'). Empty disables it.",
	}
	MetricsAddr = &cli.StringFlag{
		Name:    "metrics.addr",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "METRICS_ADDR"),
		Usage:   "Listen address of the prometheus metrics server (e.g. '0.0.0.0:7300'). Empty disables it.",
	}
	ReportStoreSize = &cli.IntFlag{
		Name:    "report-store-size",
		Value:   256,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "REPORT_STORE_SIZE"),
		Usage:   "Number of units whose latest report is served by the reports endpoint",
	}
	Color = &cli.BoolFlag{
		Name:    "color",
		Value:   true,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "COLOR"),
		Usage:   "Color the results table printed after each run",
	}
)

var requiredFlags = []cli.Flag{
	OutputDir,
	Checklist,
}

var optionalFlags = []cli.Flag{
	KeepHistory,
	DigestBits,
	RunInterval,
	LedgerDir,
	HealthzAddr,
	MetricsAddr,
	ReportStoreSize,
	Color,
}
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
