// Package flags defines the command line flags of the zeckit tool.
package flags

import (
	"time"

	"github.com/urfave/cli/v2"
)

var (
	// VerbosityFlag defines the logrus verbosity.
	VerbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity (trace, debug, info=default, warn, error, fatal, panic)",
		Value: "info",
	}
	// LogFormatFlag specifies the log output format.
	LogFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Usage: "Specify log formatting. Supports: text, json, fluentd.",
		Value: "text",
	}
	// LogFileFlag specifies a file to additionally write all logs into.
	LogFileFlag = &cli.StringFlag{
		Name:  "log-file",
		Usage: "Specify log file name, relative or absolute",
	}
	// ConfigFileFlag loads flag values from a YAML file.
	ConfigFileFlag = &cli.StringFlag{
		Name:  "config-file",
		Usage: "The filepath to a yaml file with flag values",
	}
	// ComposeDirFlag is the directory holding the docker compose project.
	ComposeDirFlag = &cli.StringFlag{
		Name:  "compose-dir",
		Usage: "Directory containing the devnet docker compose project",
		Value: ".",
	}

	// BackendFlag selects the light-client backend started by up.
	BackendFlag = &cli.StringFlag{
		Name:    "backend",
		Aliases: []string{"b"},
		Usage:   "Light-client backend: lwd (lightwalletd), zaino, or none",
		Value:   "none",
	}
	// FreshFlag wipes volumes before starting.
	FreshFlag = &cli.BoolFlag{
		Name:    "fresh",
		Aliases: []string{"f"},
		Usage:   "Force fresh start (remove volumes)",
	}
	// PurgeFlag removes volumes when taking the devnet down.
	PurgeFlag = &cli.BoolFlag{
		Name:    "purge",
		Aliases: []string{"p"},
		Usage:   "Remove volumes (clean slate)",
	}
	// GoldenFlag runs the golden end-to-end flow instead of smoke tests.
	GoldenFlag = &cli.BoolFlag{
		Name:  "golden",
		Usage: "Run golden E2E flow instead of smoke tests",
	}

	// NodeRPCFlag is the node JSON-RPC endpoint.
	NodeRPCFlag = &cli.StringFlag{
		Name:  "node-rpc",
		Usage: "Node JSON-RPC endpoint",
		Value: "http://127.0.0.1:8232",
	}
	// FaucetURLFlag is the faucet REST base URL.
	FaucetURLFlag = &cli.StringFlag{
		Name:  "faucet-url",
		Usage: "Faucet REST base URL",
		Value: "http://127.0.0.1:8080",
	}
	// BackendAddrFlag is the backend's host TCP address.
	BackendAddrFlag = &cli.StringFlag{
		Name:  "backend-addr",
		Usage: "Host TCP address of the light-client backend",
		Value: "127.0.0.1:9067",
	}

	// WalletTimeoutFlag bounds the wallet readiness wait. First boot can
	// spend a very long time trial-decrypting, hence the generous default.
	WalletTimeoutFlag = &cli.DurationFlag{
		Name:  "wallet-timeout",
		Usage: "How long to wait for the wallet console to become ready",
		Value: 100 * time.Minute,
	}
	// MiningTimeoutFlag bounds the wait for the chain to reach maturity height.
	MiningTimeoutFlag = &cli.DurationFlag{
		Name:  "mining-timeout",
		Usage: "How long to wait for the chain to reach coinbase maturity height",
		Value: 30 * time.Minute,
	}
	// MaturityHeightFlag is the height at which block rewards mature.
	MaturityHeightFlag = &cli.Uint64Flag{
		Name:  "maturity-height",
		Usage: "Chain height at which the first block rewards become spendable",
		Value: 101,
	}
)
