package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/zeckit/zeckit/devnet/wallet"
)

// goldenStage is one step of the golden end-to-end flow.
type goldenStage struct {
	name string
	run  func(ctx context.Context) error
}

// goldenState carries facts forward between golden stages.
type goldenState struct {
	serverURI string
	address   string
}

// goldenStages returns the six-stage golden flow. Unlike smoke mode, every
// stage is fatal: golden mode asserts full end-to-end correctness.
func (r *Runner) goldenStages(st *goldenState) []goldenStage {
	return []goldenStage{
		{name: "generate receiving address", run: func(ctx context.Context) error {
			kind, err := r.detector.Detect(ctx)
			if err != nil {
				return err
			}
			st.serverURI = r.detector.ServerURI(kind)
			out, err := r.console.Run(ctx, st.serverURI, wallet.Script{"addresses"})
			if err != nil {
				return err
			}
			st.address, err = wallet.ExtractAddress(out, wallet.Unified)
			return err
		}},
		{name: "fund address", run: func(ctx context.Context) error {
			if err := r.faucet.AddFunds(ctx, 100, r.p.FaucetAdminSecret); err != nil {
				log.WithError(err).Debug("Dev add-funds escape hatch unavailable")
			}
			txid, err := r.faucet.Request(ctx, st.address, r.p.FundingAmount)
			if err != nil {
				return err
			}
			log.WithField("txid", txid).Info("Funded receiving address")
			return nil
		}},
		{name: "autoshield transparent funds", run: func(ctx context.Context) error {
			out, err := r.console.RunSyncing(ctx, st.serverURI, wallet.Script{"shield"})
			if err != nil {
				return err
			}
			txid, err := wallet.ExtractTxID(out)
			if err != nil {
				return errors.Wrap(err, "shield produced no transaction")
			}
			log.WithField("txid", txid).Info("Shielded transparent funds")
			return nil
		}},
		{name: "shielded send", run: func(ctx context.Context) error {
			send := fmt.Sprintf("send %v", r.p.ShieldedSendAmount)
			out, err := r.console.RunSyncing(ctx, st.serverURI, wallet.Script{send})
			if err != nil {
				return err
			}
			txid, err := wallet.ExtractTxID(out)
			if err != nil {
				return errors.Wrap(err, "send produced no transaction")
			}
			log.WithField("txid", txid).Info("Shielded send broadcast")
			return nil
		}},
		{name: "rescan wallet", run: func(ctx context.Context) error {
			_, err := r.console.RunSyncing(ctx, st.serverURI, wallet.Script{"rescan"})
			return err
		}},
		{name: "verify shielded balance", run: func(ctx context.Context) error {
			out, err := r.console.Run(ctx, st.serverURI, wallet.Script{"balance"})
			if err != nil {
				return err
			}
			if !hasShieldedSection(out) {
				return errors.New("wallet state shows no shielded balance section")
			}
			balance := wallet.ExtractBalance(out)
			log.WithField("shielded", balance.Shielded).Info("Final wallet state verified")
			return nil
		}},
	}
}

// RunGolden executes the golden flow, aborting at the first failing stage
// and reporting which stage of the flow failed.
func (r *Runner) RunGolden(ctx context.Context) error {
	st := &goldenState{}
	stages := r.goldenStages(st)
	for i, stage := range stages {
		fmt.Printf("  [%d/%d] %s... ", i+1, len(stages), stage.name)
		if err := stage.run(ctx); err != nil {
			fmt.Printf("%s\n", au.Red("✗ FAIL"))
			return errors.Wrapf(err, "golden stage %d/%d (%s)", i+1, len(stages), stage.name)
		}
		fmt.Printf("%s\n", au.Green("✓ PASS"))
	}
	fmt.Println()
	fmt.Printf("  %s\n", au.Green("Golden end-to-end flow passed").Bold())
	return nil
}

func hasShieldedSection(output string) bool {
	for _, field := range []string{"orchard_balance", "sapling_balance", "shielded_balance"} {
		if strings.Contains(output, field) {
			return true
		}
	}
	return false
}
