// Package main defines zeckit, the developer toolkit that bootstraps and
// validates a local multi-service blockchain devnet: a Zebra node, an
// optional light-client backend, a wallet, and a faucet.
package main

import (
	"fmt"
	"os"

	joonix "github.com/joonix/log"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"github.com/zeckit/zeckit/cmd/zeckit/flags"
	"github.com/zeckit/zeckit/io/logs"
	"github.com/zeckit/zeckit/runtime/version"
)

var log = logrus.WithField("prefix", "main")

var appFlags = []cli.Flag{
	flags.VerbosityFlag,
	flags.LogFormatFlag,
	flags.LogFileFlag,
	flags.ConfigFileFlag,
	flags.ComposeDirFlag,
	flags.NodeRPCFlag,
	flags.FaucetURLFlag,
	flags.BackendAddrFlag,
	flags.WalletTimeoutFlag,
	flags.MiningTimeoutFlag,
	flags.MaturityHeightFlag,
}

func main() {
	app := cli.App{}
	app.Name = "zeckit"
	app.Usage = "developer toolkit for a local Zcash devnet on Zebra"
	app.Version = version.GetVersion()
	app.Flags = appFlags
	app.Commands = []*cli.Command{
		upCommand,
		downCommand,
		statusCommand,
		testCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		// Load any flags from file, if specified.
		if ctx.IsSet(flags.ConfigFileFlag.Name) {
			if err := altsrc.InitInputSourceWithContext(
				appFlags,
				altsrc.NewYamlSourceFromFlagFunc(flags.ConfigFileFlag.Name))(ctx); err != nil {
				return err
			}
		}

		level, err := logrus.ParseLevel(ctx.String(flags.VerbosityFlag.Name))
		if err != nil {
			return err
		}
		logrus.SetLevel(level)

		format := ctx.String(flags.LogFormatFlag.Name)
		switch format {
		case "text":
			formatter := new(prefixed.TextFormatter)
			formatter.TimestampFormat = "2006-01-02 15:04:05"
			formatter.FullTimestamp = true
			// Persistent log files see ANSI color codes as gibberish.
			formatter.DisableColors = ctx.String(flags.LogFileFlag.Name) != ""
			logrus.SetFormatter(formatter)
		case "fluentd":
			logrus.SetFormatter(joonix.NewFormatter())
		case "json":
			logrus.SetFormatter(&logrus.JSONFormatter{})
		default:
			return fmt.Errorf("unknown log format %s", format)
		}

		if logFileName := ctx.String(flags.LogFileFlag.Name); logFileName != "" {
			if err := logs.ConfigurePersistentLogging(logFileName, format); err != nil {
				log.WithError(err).Error("Failed to configure logging to disk")
			}
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
