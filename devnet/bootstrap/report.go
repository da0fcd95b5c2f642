package bootstrap

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/logrusorgru/aurora"
	"github.com/zeckit/zeckit/devnet/backend"
)

var au = aurora.NewAurora(true)

const banner = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// printReport prints connection information and the live chain status. It is
// best-effort: the devnet is already up by the time this runs, so a failed
// status query only degrades the report, never the bootstrap.
func (s *Sequencer) printReport(ctx context.Context) {
	p := s.cfg.Params

	fmt.Println()
	fmt.Println(au.Cyan(banner))
	fmt.Println(au.Cyan("  Services Ready").Bold())
	fmt.Println(au.Cyan(banner))
	fmt.Println()
	fmt.Printf("  Node RPC:   %s\n", p.NodeRPCURL)
	fmt.Printf("  Faucet API: %s\n", p.FaucetURL)
	switch s.cfg.Backend {
	case backend.Lightwalletd:
		fmt.Printf("  Lightwalletd: http://%s\n", p.BackendAddr)
	case backend.Zaino:
		fmt.Printf("  Zaino: http://%s\n", p.BackendAddr)
	}
	if s.fixtureAddr != "" {
		fmt.Printf("  Fixture: %s\n", s.fixtureAddr)
	}

	if height, err := s.node.BlockCount(ctx); err == nil {
		fmt.Println()
		fmt.Println(au.Cyan(banner))
		fmt.Println(au.Cyan("  Blockchain Status").Bold())
		fmt.Println(au.Cyan(banner))
		fmt.Println()
		fmt.Printf("  Block Height: %s\n", humanize.Comma(int64(height)))
		fmt.Printf("  Network: %s\n", p.WalletChain)
		fmt.Println("  Mining: Active (internal miner)")
		if s.balance.Total() > 0 {
			fmt.Printf("  Wallet Funds: %v available\n", s.balance.Total())
		} else {
			fmt.Println("  Wallet Funds: still maturing")
		}
	} else {
		log.WithError(err).Warn("Could not query chain status for the report")
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  • Run tests: zeckit test")
	fmt.Printf("  • View fixtures: cat %s/unified-addresses.json\n", p.FixturesDir)
	fmt.Println()
}
