// Package verify exercises the live devnet end to end. It reuses the same
// primitives the bootstrap is built from: readiness probes, backend
// detection and console text extraction. Two modes exist with opposite
// failure semantics: smoke mode runs five independent checks and tolerates
// inconclusive preconditions, golden mode runs six sequential stages and
// aborts at the first failure because it asserts full correctness.
package verify

import (
	"fmt"

	"github.com/logrusorgru/aurora"
	"github.com/sirupsen/logrus"
	"github.com/zeckit/zeckit/devnet/backend"
	"github.com/zeckit/zeckit/devnet/faucet"
	"github.com/zeckit/zeckit/devnet/health"
	"github.com/zeckit/zeckit/devnet/params"
	"github.com/zeckit/zeckit/devnet/runner"
	"github.com/zeckit/zeckit/devnet/wallet"
	"github.com/zeckit/zeckit/devnet/zebra"
)

var (
	log = logrus.WithField("prefix", "verify")
	au  = aurora.NewAurora(true)
)

// Outcome is the terminal state of one verification stage.
type Outcome int

const (
	// Pass means the stage's assertion held.
	Pass Outcome = iota
	// Fail means the stage's assertion was violated.
	Fail
	// Skip means a precondition could not yet be satisfied; the stage is
	// inconclusive but successful. Skip never counts as a failure.
	Skip
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	default:
		return "SKIP"
	}
}

// StageResult records how one stage ended.
type StageResult struct {
	Name    string
	Outcome Outcome
	Detail  string
}

// Runner drives the verification stages against a live devnet.
type Runner struct {
	p        *params.DevnetParams
	checker  *health.Checker
	faucet   *faucet.Client
	node     *zebra.Client
	console  *wallet.Console
	detector *backend.Detector
}

// New returns a Runner executing real external commands.
func New(p *params.DevnetParams) *Runner {
	return NewWithRunner(p, runner.NewExecRunner(p.ComposeDir))
}

// NewWithRunner returns a Runner using the given command runner. Tests
// inject a fake runner here.
func NewWithRunner(p *params.DevnetParams, r runner.CommandRunner) *Runner {
	docker := runner.NewDocker(r)
	return &Runner{
		p:        p,
		checker:  health.NewChecker(p.ProbeTimeout),
		faucet:   faucet.NewClient(p.FaucetURL, p.ProbeTimeout, p.FundingTimeout),
		node:     zebra.NewClient(p.NodeRPCURL, p.ProbeTimeout),
		console:  wallet.NewConsole(docker, p),
		detector: backend.NewDetector(docker, p),
	}
}

func printResult(index, total int, res StageResult) {
	prefix := fmt.Sprintf("  [%d/%d] %s... ", index, total, res.Name)
	switch res.Outcome {
	case Pass:
		fmt.Printf("%s%s\n", prefix, au.Green("✓ PASS"))
	case Skip:
		fmt.Printf("%s%s %s\n", prefix, au.Yellow("~ SKIP"), res.Detail)
	default:
		fmt.Printf("%s%s %s\n", prefix, au.Red("✗ FAIL"), res.Detail)
	}
}
