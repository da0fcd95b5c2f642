package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/logrusorgru/aurora"
	"github.com/urfave/cli/v2"
	"github.com/zeckit/zeckit/cmd/zeckit/flags"
	"github.com/zeckit/zeckit/devnet/backend"
	"github.com/zeckit/zeckit/devnet/bootstrap"
	"github.com/zeckit/zeckit/devnet/faucet"
	"github.com/zeckit/zeckit/devnet/params"
	"github.com/zeckit/zeckit/devnet/runner"
	"github.com/zeckit/zeckit/devnet/verify"
	"github.com/zeckit/zeckit/devnet/zebra"
)

var au = aurora.NewAurora(true)

const banner = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// devnetParams builds the parameter set from defaults plus flag overrides.
func devnetParams(ctx *cli.Context) *params.DevnetParams {
	p := params.Default()
	p.ComposeDir = ctx.String(flags.ComposeDirFlag.Name)
	p.NodeRPCURL = ctx.String(flags.NodeRPCFlag.Name)
	p.FaucetURL = ctx.String(flags.FaucetURLFlag.Name)
	p.BackendAddr = ctx.String(flags.BackendAddrFlag.Name)
	p.WalletPoll.Deadline = ctx.Duration(flags.WalletTimeoutFlag.Name)
	p.MiningPoll.Deadline = ctx.Duration(flags.MiningTimeoutFlag.Name)
	p.MaturityHeight = ctx.Uint64(flags.MaturityHeightFlag.Name)
	return p
}

var upCommand = &cli.Command{
	Name:  "up",
	Usage: "Start the devnet and bootstrap it to a mining, spendable state",
	Flags: []cli.Flag{
		flags.BackendFlag,
		flags.FreshFlag,
	},
	Action: func(ctx *cli.Context) error {
		kind, err := backend.KindFromFlag(ctx.String(flags.BackendFlag.Name))
		if err != nil {
			return err
		}
		fmt.Println(au.Cyan(banner))
		fmt.Println(au.Cyan("  ZecKit - Starting Devnet").Bold())
		fmt.Println(au.Cyan(banner))
		fmt.Println()

		seq := bootstrap.New(bootstrap.Config{
			Backend: kind,
			Fresh:   ctx.Bool(flags.FreshFlag.Name),
			Params:  devnetParams(ctx),
		})
		return seq.Run(ctx.Context)
	},
}

var downCommand = &cli.Command{
	Name:  "down",
	Usage: "Stop the devnet",
	Flags: []cli.Flag{
		flags.PurgeFlag,
	},
	Action: func(ctx *cli.Context) error {
		p := devnetParams(ctx)
		compose := runner.NewCompose(runner.NewExecRunner(p.ComposeDir))
		purge := ctx.Bool(flags.PurgeFlag.Name)
		if purge {
			fmt.Println("Stopping devnet and removing volumes...")
		} else {
			fmt.Println("Stopping devnet...")
		}
		if err := compose.Down(ctx.Context, purge); err != nil {
			return err
		}
		fmt.Println("Devnet stopped")
		return nil
	},
}

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "Show devnet status",
	Action: func(ctx *cli.Context) error {
		p := devnetParams(ctx)
		r := runner.NewExecRunner(p.ComposeDir)
		compose := runner.NewCompose(r)

		fmt.Println(au.Cyan(banner))
		fmt.Println(au.Cyan("  ZecKit - Devnet Status").Bold())
		fmt.Println(au.Cyan(banner))
		fmt.Println()

		if !compose.IsRunning(ctx.Context) {
			fmt.Println("  Devnet is not running")
			return nil
		}
		rows, err := compose.PS(ctx.Context)
		if err != nil {
			return err
		}
		for _, row := range rows {
			fmt.Printf("  %s\n", row)
		}
		fmt.Println()

		if kind, err := backend.NewDetector(runner.NewDocker(r), p).Detect(ctx.Context); err == nil {
			fmt.Printf("  Backend: %s\n", kind)
		} else {
			fmt.Println("  Backend: none")
		}
		node := zebra.NewClient(p.NodeRPCURL, p.ProbeTimeout)
		if height, err := node.BlockCount(ctx.Context); err == nil {
			fmt.Printf("  Block Height: %s\n", humanize.Comma(int64(height)))
		} else {
			fmt.Printf("  Block Height: unavailable (%v)\n", err)
		}
		if info, err := node.Info(ctx.Context); err == nil && info.Subversion != "" {
			fmt.Printf("  Node: %s\n", info.Subversion)
		}
		fc := faucet.NewClient(p.FaucetURL, p.ProbeTimeout, p.FundingTimeout)
		if stats, err := fc.GetStats(ctx.Context); err == nil {
			fmt.Printf("  Faucet Balance: %v\n", stats.Balance())
		}
		return nil
	},
}

var testCommand = &cli.Command{
	Name:  "test",
	Usage: "Run functional checks against the live devnet",
	Flags: []cli.Flag{
		flags.GoldenFlag,
	},
	Action: func(ctx *cli.Context) error {
		p := devnetParams(ctx)
		r := verify.New(p)

		if ctx.Bool(flags.GoldenFlag.Name) {
			fmt.Println(au.Cyan(banner))
			fmt.Println(au.Cyan("  ZecKit - Golden End-to-End Flow").Bold())
			fmt.Println(au.Cyan(banner))
			fmt.Println()
			return r.RunGolden(ctx.Context)
		}

		fmt.Println(au.Cyan(banner))
		fmt.Println(au.Cyan("  ZecKit - Running Smoke Tests").Bold())
		fmt.Println(au.Cyan(banner))
		fmt.Println()
		_, err := r.RunSmoke(ctx.Context)
		return err
	},
}
