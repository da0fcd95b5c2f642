// Package bootstrap brings the devnet from nothing to a mining, spendable
// network in one strictly ordered pipeline: start containers, gate on each
// service's readiness in dependency order, route mining rewards to a
// discovered wallet address, then wait out mining and coinbase maturity.
//
// Failure handling is deliberately asymmetric and is expressed as an
// explicit per-stage policy rather than scattered conditionals: base network
// availability (containers, readiness gates, mining maturity) aborts the
// whole bootstrap on failure, while wallet conveniences (address discovery,
// config patching, fixtures, sync, balance) degrade to warnings, because
// they can be retried out of band once the network itself is up.
package bootstrap

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/zeckit/zeckit/devnet/backend"
	"github.com/zeckit/zeckit/devnet/faucet"
	"github.com/zeckit/zeckit/devnet/fixture"
	"github.com/zeckit/zeckit/devnet/health"
	"github.com/zeckit/zeckit/devnet/params"
	"github.com/zeckit/zeckit/devnet/runner"
	"github.com/zeckit/zeckit/devnet/wallet"
	"github.com/zeckit/zeckit/devnet/zebra"
)

var log = logrus.WithField("prefix", "bootstrap")

// OnFailure decides what a failed stage does to the rest of the pipeline.
type OnFailure int

const (
	// Abort stops the bootstrap immediately. No partial devnet is left
	// half-configured without a clear error.
	Abort OnFailure = iota
	// Warn logs the failure and continues. Used for wallet conveniences
	// that do not affect the correctness of the network itself.
	Warn
)

// Stage is one step of the bootstrap pipeline.
type Stage struct {
	Name      string
	OnFailure OnFailure
	// Skip, when non-nil and true at execution time, bypasses the stage.
	Skip func() bool
	Run  func(ctx context.Context) error
}

// Config selects what to bootstrap.
type Config struct {
	// Backend is the requested light-client backend.
	Backend backend.Kind
	// Fresh wipes all volumes before starting.
	Fresh bool
	// Params carries endpoints, names and poll policies.
	Params *params.DevnetParams
}

// Sequencer executes the bootstrap pipeline.
type Sequencer struct {
	cfg Config

	compose  *runner.Compose
	docker   *runner.Docker
	checker  *health.Checker
	node     *zebra.Client
	faucet   *faucet.Client
	console  *wallet.Console
	detector *backend.Detector

	// newSink builds the progress sink each polling stage reports into.
	newSink func(msg string, ticks int) health.ProgressSink

	// Facts discovered while the pipeline runs.
	serverURI   string
	minerAddr   string
	fixtureAddr string
	balance     wallet.Balance
}

// New returns a Sequencer running real external commands from the compose
// directory in cfg.Params.
func New(cfg Config) *Sequencer {
	return NewWithRunner(cfg, runner.NewExecRunner(cfg.Params.ComposeDir))
}

// NewWithRunner returns a Sequencer using the given command runner. Tests
// inject a fake runner here.
func NewWithRunner(cfg Config, r runner.CommandRunner) *Sequencer {
	p := cfg.Params
	docker := runner.NewDocker(r)
	detector := backend.NewDetector(docker, p)
	return &Sequencer{
		cfg:      cfg,
		compose:  runner.NewCompose(r),
		docker:   docker,
		checker:  health.NewChecker(p.ProbeTimeout),
		node:     zebra.NewClient(p.NodeRPCURL, p.ProbeTimeout),
		faucet:   faucet.NewClient(p.FaucetURL, p.ProbeTimeout, p.FundingTimeout),
		console:  wallet.NewConsole(docker, p),
		detector: detector,
		newSink:  health.NewProgressBar,
		// The wallet needs a server URI before detection has run; default
		// to the requested backend's service.
		serverURI: detector.ServerURI(cfg.Backend),
	}
}

// SetProgressSinkFactory overrides how polling progress is rendered.
func (s *Sequencer) SetProgressSinkFactory(f func(msg string, ticks int) health.ProgressSink) {
	s.newSink = f
}

// Stages returns the ordered pipeline with its failure policy, inspectable
// without running anything.
func (s *Sequencer) Stages() []Stage {
	noBackend := func() bool { return s.cfg.Backend == backend.None }
	noMinerAddr := func() bool { return s.minerAddr == "" }
	return []Stage{
		{Name: "start containers", OnFailure: Abort, Run: s.startContainers},
		{Name: "node ready", OnFailure: Abort, Run: s.waitNode},
		{Name: "backend ready", OnFailure: Abort, Skip: noBackend, Run: s.waitBackend},
		{Name: "wallet ready", OnFailure: Abort, Run: s.waitWallet},
		{Name: "faucet ready", OnFailure: Abort, Run: s.waitFaucet},
		{Name: "discover wallet address", OnFailure: Warn, Run: s.discoverAddress},
		{Name: "patch miner address", OnFailure: Warn, Skip: noMinerAddr, Run: s.patchMinerAddress},
		{Name: "restart node", OnFailure: Warn, Skip: noMinerAddr, Run: s.restartNode},
		{Name: "mining maturity", OnFailure: Abort, Run: s.waitMiningMaturity},
		{Name: "coinbase maturity window", OnFailure: Abort, Run: s.waitCoinbaseMaturity},
		{Name: "generate address fixtures", OnFailure: Warn, Run: s.writeFixtures},
		{Name: "sync wallet", OnFailure: Warn, Run: s.syncWallet},
		{Name: "check balance", OnFailure: Warn, Run: s.checkBalance},
	}
}

// Run executes the pipeline and prints connection information on success.
// The report is always reached when no Abort stage fails, regardless of how
// many Warn stages degraded.
func (s *Sequencer) Run(ctx context.Context) error {
	if err := s.runStages(ctx, s.Stages()); err != nil {
		return err
	}
	s.printReport(ctx)
	return nil
}

func (s *Sequencer) runStages(ctx context.Context, stages []Stage) error {
	for i, st := range stages {
		entry := log.WithField("stage", st.Name)
		if st.Skip != nil && st.Skip() {
			entry.Debug("Skipping stage")
			continue
		}
		entry.Infof("Stage %d/%d", i+1, len(stages))
		if err := st.Run(ctx); err != nil {
			if st.OnFailure == Abort {
				s.dumpServiceLogs(ctx)
				return errors.Wrapf(err, "stage %q", st.Name)
			}
			entry.WithError(err).Warn("Stage failed, continuing")
		}
	}
	return nil
}

func (s *Sequencer) startContainers(ctx context.Context) error {
	if s.cfg.Fresh {
		log.Info("Cleaning up old data")
		if err := s.compose.Down(ctx, true); err != nil {
			return err
		}
	}
	if s.cfg.Backend == backend.None {
		return s.compose.Up(ctx, "zebra", "faucet")
	}
	profile := "lwd"
	if s.cfg.Backend == backend.Zaino {
		profile = "zaino"
	}
	log.WithField("profile", profile).Info("Building images")
	if err := s.compose.BuildProfile(ctx, profile); err != nil {
		return err
	}
	return s.compose.UpProfile(ctx, profile)
}

func (s *Sequencer) waitNode(ctx context.Context) error {
	p := s.cfg.Params
	probe := func(ctx context.Context) health.Outcome {
		return s.checker.ProbeRPC(ctx, p.NodeRPCURL)
	}
	return health.Poll(ctx, probe, p.NodePoll, s.newSink("Starting node", p.NodePoll.Ticks()))
}

// waitBackend gates on the backend port accepting TCP connections, then
// confirms by detection which implementation is actually running. The
// detected kind wins over the requested one if an operator swapped them.
func (s *Sequencer) waitBackend(ctx context.Context) error {
	p := s.cfg.Params
	probe := func(ctx context.Context) health.Outcome {
		return s.checker.ProbeTCP(ctx, p.BackendAddr)
	}
	msg := "Starting " + s.cfg.Backend.String()
	if err := health.Poll(ctx, probe, p.BackendPoll, s.newSink(msg, p.BackendPoll.Ticks())); err != nil {
		return err
	}
	kind, err := s.detector.Detect(ctx)
	if err != nil {
		return err
	}
	if kind != s.cfg.Backend {
		log.WithFields(logrus.Fields{
			"requested": s.cfg.Backend.String(),
			"detected":  kind.String(),
		}).Warn("Detected backend differs from requested one, using detected")
	}
	s.serverURI = s.detector.ServerURI(kind)
	return nil
}

// waitWallet polls the wallet console until it can list its transparent
// addresses, the first sign that the wallet has a usable datadir and can
// reach its backend.
func (s *Sequencer) waitWallet(ctx context.Context) error {
	p := s.cfg.Params
	probe := func(ctx context.Context) health.Outcome {
		out, err := s.console.Run(ctx, s.serverURI, wallet.Script{"t_addresses"})
		if err != nil {
			return health.NotReady(err)
		}
		if strings.Contains(out, "tm") && strings.Contains(out, "encoded_address") {
			return health.Ready()
		}
		return health.NotReady(errors.New("wallet has no transparent address yet"))
	}
	return health.Poll(ctx, probe, p.WalletPoll, s.newSink("Starting wallet", p.WalletPoll.Ticks()))
}

func (s *Sequencer) waitFaucet(ctx context.Context) error {
	p := s.cfg.Params
	probe := func(ctx context.Context) health.Outcome {
		return s.checker.ProbeREST(ctx, p.FaucetURL+"/health")
	}
	return health.Poll(ctx, probe, p.FaucetPoll, s.newSink("Starting faucet", p.FaucetPoll.Ticks()))
}

func (s *Sequencer) discoverAddress(ctx context.Context) error {
	out, err := s.console.Run(ctx, s.serverURI, wallet.Script{"t_addresses"})
	if err != nil {
		return err
	}
	addr, err := wallet.ExtractAddress(out, wallet.Transparent)
	if err != nil {
		return errors.Wrap(err, "mining will use the default address in the node config")
	}
	s.minerAddr = addr
	log.WithField("address", addr).Info("Discovered wallet transparent address")
	return nil
}

func (s *Sequencer) patchMinerAddress(_ context.Context) error {
	return zebra.SetMinerAddress(s.cfg.Params.ZebraConfigPath, s.minerAddr)
}

func (s *Sequencer) restartNode(ctx context.Context) error {
	p := s.cfg.Params
	log.Info("Restarting node with new miner address")
	if err := s.docker.Restart(ctx, p.NodeContainer); err != nil {
		return err
	}
	if err := sleepCtx(ctx, p.NodeRestartWait); err != nil {
		return err
	}
	probe := func(ctx context.Context) health.Outcome {
		return s.checker.ProbeRPC(ctx, p.NodeRPCURL)
	}
	return health.Poll(ctx, probe, p.NodePoll, s.newSink("Restarting node", p.NodePoll.Ticks()))
}

// waitMiningMaturity blocks until the chain reaches the height at which the
// first block rewards mature. Nothing downstream is meaningful without it,
// so a timeout here is fatal.
func (s *Sequencer) waitMiningMaturity(ctx context.Context) error {
	p := s.cfg.Params
	probe := func(ctx context.Context) health.Outcome {
		height, err := s.node.BlockCount(ctx)
		if err != nil {
			return health.NotReady(err)
		}
		if height >= p.MaturityHeight {
			return health.Ready()
		}
		return health.NotReady(errors.Errorf("height %d of %d", height, p.MaturityHeight))
	}
	log.WithField("targetHeight", p.MaturityHeight).Info("Mining blocks to maturity")
	return health.Poll(ctx, probe, p.MiningPoll, s.newSink("Mining to maturity", p.MiningPoll.Ticks()))
}

func (s *Sequencer) waitCoinbaseMaturity(ctx context.Context) error {
	log.WithField("wait", s.cfg.Params.CoinbaseMaturityWait).Info("Waiting for coinbase maturity confirmations")
	return sleepCtx(ctx, s.cfg.Params.CoinbaseMaturityWait)
}

func (s *Sequencer) writeFixtures(ctx context.Context) error {
	out, err := s.console.Run(ctx, s.serverURI, wallet.Script{"addresses"})
	if err != nil {
		return err
	}
	addr, err := wallet.ExtractAddress(out, wallet.Unified)
	if err != nil {
		return err
	}
	if err := fixture.Write(s.cfg.Params.FixturesDir, &fixture.Fixture{
		Address:   addr,
		Kind:      "unified",
		Receivers: []string{"orchard"},
	}); err != nil {
		return err
	}
	s.fixtureAddr = addr
	log.WithField("address", shorten(addr)).Info("Generated unified address fixture")
	return nil
}

// syncWallet kicks a sync and tolerates everything short of an explicit sync
// error in the output; an already-running sync is not a failure.
func (s *Sequencer) syncWallet(ctx context.Context) error {
	out, err := s.console.RunSyncing(ctx, s.serverURI, wallet.Script{"sync run"})
	if err != nil {
		return err
	}
	if strings.Contains(out, "Sync error") {
		return errors.New("wallet reported a sync error")
	}
	log.Info("Wallet synced with blockchain")
	return nil
}

func (s *Sequencer) checkBalance(ctx context.Context) error {
	out, err := s.console.Run(ctx, s.serverURI, wallet.Script{"balance"})
	if err != nil {
		return err
	}
	s.balance = wallet.ExtractBalance(out)
	if s.balance.Total() == 0 {
		log.Info("Wallet synced but balance not yet available, blocks still maturing")
	} else {
		log.WithFields(logrus.Fields{
			"transparent": s.balance.Transparent,
			"shielded":    s.balance.Shielded,
		}).Info("Wallet balance available")
	}
	return nil
}

// dumpServiceLogs surfaces recent service output so an aborted bootstrap is
// diagnosable without re-running docker commands by hand.
func (s *Sequencer) dumpServiceLogs(ctx context.Context) {
	for _, service := range []string{"zebra", "faucet"} {
		lines, err := s.compose.Logs(ctx, service, 20)
		if err != nil {
			log.WithError(err).WithField("service", service).Debug("Could not fetch service logs")
			continue
		}
		for _, line := range lines {
			log.WithField("service", service).Debug(line)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait canceled")
	case <-time.After(d):
		return nil
	}
}

func shorten(addr string) string {
	if len(addr) <= 20 {
		return addr
	}
	return addr[:20] + "..."
}
