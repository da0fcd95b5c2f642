package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeckit/zeckit/devnet/fixture"
	"github.com/zeckit/zeckit/devnet/params"
)

// consoleRunner answers docker commands with canned wallet console output.
type consoleRunner struct {
	calls        [][]string
	containers   string
	shieldOutput string
	sendOutput   string
}

func (f *consoleRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	joined := strings.Join(args, " ")
	switch {
	case strings.Contains(joined, "ps --format"):
		return f.containers, nil
	case strings.Contains(joined, "sync run"):
		return "sync complete", nil
	case strings.Contains(joined, "shield"):
		return f.shieldOutput, nil
	case strings.Contains(joined, "send "):
		return f.sendOutput, nil
	case strings.Contains(joined, "rescan"):
		return "rescan complete", nil
	case strings.Contains(joined, "balance"):
		return `{"verified_orchard_balance": 10_000_000}`, nil
	case strings.Contains(joined, "addresses"):
		return `{"address": "uregtest1zkuzfv5m3yhv2j4fmvq5rjurkxenxyq8r7h4daun2zkznrjaa8ra8asgdm8wwgwjvlww"}`, nil
	default:
		return "", nil
	}
}

func (f *consoleRunner) sawCommand(marker string) bool {
	for _, c := range f.calls {
		if strings.Contains(strings.Join(c, " "), marker) {
			return true
		}
	}
	return false
}

// faucetOpts shapes the fake faucet's behavior per test.
type faucetOpts struct {
	statsBody string
	txid      string
}

func fakeServices(t *testing.T, opts faucetOpts) (*httptest.Server, *httptest.Server) {
	t.Helper()
	node := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result": 150, "error": null}`)
	}))
	t.Cleanup(node.Close)

	faucetSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			fmt.Fprint(w, `{"status": "healthy"}`)
		case "/stats":
			fmt.Fprint(w, opts.statsBody)
		case "/address":
			fmt.Fprint(w, `{"address": "uregtest1faucetownaddress"}`)
		case "/request":
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.NotEmpty(t, body["address"])
			fmt.Fprintf(w, `{"txid": %q}`, opts.txid)
		case "/admin/add-funds":
			fmt.Fprint(w, `{"status": "ok"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(faucetSrv.Close)
	return node, faucetSrv
}

func verifyParams(t *testing.T, nodeURL, faucetURL string) *params.DevnetParams {
	t.Helper()
	p := params.Default()
	p.NodeRPCURL = nodeURL
	p.FaucetURL = faucetURL
	p.FixturesDir = filepath.Join(t.TempDir(), "fixtures")
	p.ProbeTimeout = time.Second
	p.FundingTimeout = time.Second
	p.FaucetBalancePoll = params.PollPolicy{Interval: time.Millisecond, MaxAttempts: 2}
	return p
}

func outcomes(results []StageResult) map[string]Outcome {
	out := make(map[string]Outcome, len(results))
	for _, r := range results {
		out[r.Name] = r.Outcome
	}
	return out
}

func TestRunSmoke_AllPass(t *testing.T) {
	node, faucetSrv := fakeServices(t, faucetOpts{
		statsBody: `{"faucet_address": "uregtest1faucet", "current_balance": 100}`,
		txid:      "a3f8d21b",
	})
	r := &consoleRunner{containers: "zeckit-zebra\ndevnet-zaino\n"}
	p := verifyParams(t, node.URL, faucetSrv.URL)

	results, err := NewWithRunner(p, r).RunSmoke(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 5)
	for name, outcome := range outcomes(results) {
		assert.Equal(t, Pass, outcome, name)
	}

	// The funding check persisted the test address it generated.
	f, err := fixture.Load(p.FixturesDir)
	require.NoError(t, err)
	assert.Contains(t, f.Address, "uregtest1")
}

func TestRunSmoke_MissingBalanceFieldFails(t *testing.T) {
	node, faucetSrv := fakeServices(t, faucetOpts{
		statsBody: `{"faucet_address": "uregtest1faucet"}`,
		txid:      "a3f8d21b",
	})
	r := &consoleRunner{containers: "devnet-zaino\n"}
	p := verifyParams(t, node.URL, faucetSrv.URL)

	results, err := NewWithRunner(p, r).RunSmoke(context.Background())
	require.Error(t, err)
	got := outcomes(results)
	assert.Equal(t, Fail, got["Faucet stats endpoint"])
	// The other checks still ran to completion.
	assert.Equal(t, Pass, got["Node RPC connectivity"])
	assert.Equal(t, Pass, got["Faucet address retrieval"])
	require.Len(t, results, 5)
}

func TestRunSmoke_LowFaucetBalanceSkipsFundingWithoutFailing(t *testing.T) {
	node, faucetSrv := fakeServices(t, faucetOpts{
		statsBody: `{"faucet_address": "uregtest1faucet", "current_balance": 0.05}`,
		txid:      "a3f8d21b",
	})
	r := &consoleRunner{containers: "devnet-zaino\n"}
	p := verifyParams(t, node.URL, faucetSrv.URL)

	results, err := NewWithRunner(p, r).RunSmoke(context.Background())
	require.NoError(t, err, "a skipped check must not fail the run")
	got := outcomes(results)
	assert.Equal(t, Skip, got["Faucet funding request"])
	assert.Equal(t, Pass, got["Faucet stats endpoint"])
}

func TestRunSmoke_NoBackendFailsFundingCheckOnly(t *testing.T) {
	node, faucetSrv := fakeServices(t, faucetOpts{
		statsBody: `{"faucet_address": "uregtest1faucet", "current_balance": 100}`,
		txid:      "a3f8d21b",
	})
	r := &consoleRunner{containers: "zeckit-zebra\n"}
	p := verifyParams(t, node.URL, faucetSrv.URL)

	results, err := NewWithRunner(p, r).RunSmoke(context.Background())
	require.Error(t, err)
	got := outcomes(results)
	assert.Equal(t, Fail, got["Faucet funding request"])
	assert.Equal(t, Pass, got["Node RPC connectivity"])
}

func TestRunSmoke_ReusesPersistedTestAddress(t *testing.T) {
	node, faucetSrv := fakeServices(t, faucetOpts{
		statsBody: `{"faucet_address": "uregtest1faucet", "current_balance": 100}`,
		txid:      "a3f8d21b",
	})
	r := &consoleRunner{containers: "devnet-zaino\n"}
	p := verifyParams(t, node.URL, faucetSrv.URL)
	require.NoError(t, fixture.Write(p.FixturesDir, &fixture.Fixture{
		Address: "uregtest1persistedfixtureaddress",
		Kind:    "unified",
	}))

	_, err := NewWithRunner(p, r).RunSmoke(context.Background())
	require.NoError(t, err)
	assert.False(t, r.sawCommand("echo -e 'addresses"),
		"with a persisted fixture the wallet must not be asked for an address")
}

func TestRunGolden_AllStagesPass(t *testing.T) {
	node, faucetSrv := fakeServices(t, faucetOpts{
		statsBody: `{"faucet_address": "uregtest1faucet", "current_balance": 100}`,
		txid:      "a3f8d21b",
	})
	r := &consoleRunner{
		containers:   "devnet-zaino\n",
		shieldOutput: `{"txid": "shieldtx01"}`,
		sendOutput:   `{"txid": "sendtx02"}`,
	}
	p := verifyParams(t, node.URL, faucetSrv.URL)

	require.NoError(t, NewWithRunner(p, r).RunGolden(context.Background()))
	assert.True(t, r.sawCommand("rescan"))
}

func TestRunGolden_MissingShieldTxIDAborts(t *testing.T) {
	node, faucetSrv := fakeServices(t, faucetOpts{
		statsBody: `{"faucet_address": "uregtest1faucet", "current_balance": 100}`,
		txid:      "a3f8d21b",
	})
	r := &consoleRunner{
		containers:   "devnet-zaino\n",
		shieldOutput: "Error: no transparent funds to shield",
		sendOutput:   `{"txid": "sendtx02"}`,
	}
	p := verifyParams(t, node.URL, faucetSrv.URL)

	err := NewWithRunner(p, r).RunGolden(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "golden stage 3/6")
	assert.Contains(t, err.Error(), "autoshield")
	assert.False(t, r.sawCommand("rescan"), "stages after the aborted one must not run")
}

func TestHasShieldedSection(t *testing.T) {
	assert.True(t, hasShieldedSection(`"verified_orchard_balance": 0`))
	assert.True(t, hasShieldedSection(`"sapling_balance": 10`))
	assert.False(t, hasShieldedSection(`"transparent_balance": 10`))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "PASS", Pass.String())
	assert.Equal(t, "FAIL", Fail.String())
	assert.Equal(t, "SKIP", Skip.String())
}
