// Package params holds the tunable knobs of the local devnet: endpoints,
// container and service names, funding amounts, and the poll policy gating
// each bootstrap stage. None of the numeric bounds are contracts; they are
// sized for slow first-boot container initialization and may be overridden
// from the command line.
package params

import "time"

// PollPolicy bounds a polling loop. A poll is abandoned once either bound is
// exceeded; a zero value disables that bound. At least one bound must be set.
type PollPolicy struct {
	// Interval is the delay between consecutive probe attempts.
	Interval time.Duration
	// MaxAttempts bounds the number of probe attempts. Zero means unbounded.
	MaxAttempts int
	// Deadline bounds the total elapsed wall time. Zero means unbounded.
	Deadline time.Duration
}

// Ticks estimates how many probe attempts the policy allows, for sizing
// progress reporting. Returns 0 when the policy is unbounded.
func (p PollPolicy) Ticks() int {
	if p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	if p.Deadline > 0 && p.Interval > 0 {
		return int(p.Deadline/p.Interval) + 1
	}
	return 0
}

// DevnetParams carries every endpoint, name and bound the orchestrator needs.
type DevnetParams struct {
	// ComposeDir is the directory holding the docker compose project.
	ComposeDir string

	// NodeRPCURL is the Zebra JSON-RPC endpoint on the host.
	NodeRPCURL string
	// FaucetURL is the faucet REST base URL on the host.
	FaucetURL string
	// BackendAddr is the host TCP address of whichever light-client backend
	// is active. Backends only speak gRPC, so reachability is probed with a
	// bare TCP connect.
	BackendAddr string

	// NodeContainer and WalletContainer are docker container names.
	NodeContainer   string
	WalletContainer string
	// ZainoPattern and LightwalletdPattern are the container name substrings
	// used to detect which backend is running.
	ZainoPattern        string
	LightwalletdPattern string
	// BackendPort is the gRPC port the backends expose inside the compose
	// network, used to derive the wallet's --server URI.
	BackendPort int

	// WalletDataDir and WalletChain are passed to the wallet console.
	WalletDataDir string
	WalletChain   string

	// ZebraConfigPath is the node configuration file whose miner_address
	// field is patched once a wallet address is known.
	ZebraConfigPath string
	// FixturesDir is where discovered address fixtures are persisted.
	FixturesDir string

	// ProbeTimeout bounds every single-shot readiness probe.
	ProbeTimeout time.Duration

	NodePoll          PollPolicy
	BackendPoll       PollPolicy
	WalletPoll        PollPolicy
	FaucetPoll        PollPolicy
	MiningPoll        PollPolicy
	FaucetBalancePoll PollPolicy

	// MaturityHeight is the chain height at which the first block rewards
	// become spendable.
	MaturityHeight uint64
	// CoinbaseMaturityWait is the fixed settle time after reaching maturity
	// height before mined funds are treated as usable.
	CoinbaseMaturityWait time.Duration
	// NodeRestartWait is the settle time after restarting the node with a
	// patched miner address.
	NodeRestartWait time.Duration

	// FundingAmount is the small fixed amount requested from the faucet.
	FundingAmount float64
	// ShieldedSendAmount is the amount moved in the golden shielded send.
	ShieldedSendAmount float64
	// FaucetMinBalance is the functional minimum below which a funding
	// request is skipped rather than failed.
	FaucetMinBalance float64
	// FundingTimeout bounds a faucet funding request, which broadcasts a
	// real transaction and so needs far more patience than a health probe.
	FundingTimeout time.Duration
	// FaucetAdminSecret authenticates the development-only add-funds escape
	// hatch.
	FaucetAdminSecret string
}

// Default returns the parameters of the standard single-host devnet.
func Default() *DevnetParams {
	return &DevnetParams{
		ComposeDir: ".",

		NodeRPCURL:  "http://127.0.0.1:8232",
		FaucetURL:   "http://127.0.0.1:8080",
		BackendAddr: "127.0.0.1:9067",

		NodeContainer:       "zeckit-zebra",
		WalletContainer:     "zeckit-zingo-wallet",
		ZainoPattern:        "zaino",
		LightwalletdPattern: "lightwalletd",
		BackendPort:         9067,

		WalletDataDir: "/var/zingo",
		WalletChain:   "regtest",

		ZebraConfigPath: "docker/configs/zebra.toml",
		FixturesDir:     "fixtures",

		ProbeTimeout: 5 * time.Second,

		NodePoll:          PollPolicy{Interval: 2 * time.Second, Deadline: 2 * time.Minute},
		BackendPoll:       PollPolicy{Interval: 2 * time.Second, Deadline: 3 * time.Minute},
		WalletPoll:        PollPolicy{Interval: 2 * time.Second, Deadline: 100 * time.Minute},
		FaucetPoll:        PollPolicy{Interval: 2 * time.Second, MaxAttempts: 30},
		MiningPoll:        PollPolicy{Interval: 2 * time.Second, Deadline: 30 * time.Minute},
		FaucetBalancePoll: PollPolicy{Interval: 2 * time.Second, MaxAttempts: 5},

		MaturityHeight:       101,
		CoinbaseMaturityWait: 2 * time.Minute,
		NodeRestartWait:      15 * time.Second,

		FundingAmount:      1.0,
		ShieldedSendAmount: 0.1,
		FaucetMinBalance:   1.0,
		FundingTimeout:     45 * time.Second,
		FaucetAdminSecret:  "dev-secret-change-in-production",
	}
}
