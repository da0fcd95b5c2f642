// Package wallet drives the interactive wallet console as a black box: a
// scripted sequence of commands is piped to its stdin inside the running
// container, and every fact the orchestrator needs is recovered by scanning
// the captured stdout text. All of that scraping lives behind this package
// so that a future structured output mode only changes internals here.
package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/zeckit/zeckit/devnet/params"
	"github.com/zeckit/zeckit/devnet/runner"
)

var log = logrus.WithField("prefix", "wallet")

// Script is the ordered list of console commands piped to the wallet. A
// terminating quit is appended automatically.
type Script []string

// Console runs scripts against the wallet container.
type Console struct {
	docker *runner.Docker
	p      *params.DevnetParams
}

// NewConsole returns a Console over the given docker wrapper.
func NewConsole(docker *runner.Docker, p *params.DevnetParams) *Console {
	return &Console{docker: docker, p: p}
}

// Run executes the script against the wallet with syncing disabled, which is
// what every read-only fact extraction wants: no network wait, just state.
func (c *Console) Run(ctx context.Context, serverURI string, script Script) (string, error) {
	return c.run(ctx, serverURI, script, true)
}

// RunSyncing executes the script with chain syncing enabled, for commands
// that must observe or advance sync state (sync run, shield, send, rescan).
func (c *Console) RunSyncing(ctx context.Context, serverURI string, script Script) (string, error) {
	return c.run(ctx, serverURI, script, false)
}

func (c *Console) run(ctx context.Context, serverURI string, script Script, nosync bool) (string, error) {
	cmds := append(append(Script{}, script...), "quit")
	flags := fmt.Sprintf("--data-dir %s --server %s --chain %s", c.p.WalletDataDir, serverURI, c.p.WalletChain)
	if nosync {
		flags += " --nosync"
	}
	shellCmd := fmt.Sprintf("echo -e '%s' | zingo-cli %s 2>&1", strings.Join(cmds, `\n`), flags)

	log.WithField("script", strings.Join(script, "; ")).Debug("Running wallet console script")
	out, err := c.docker.Exec(ctx, c.p.WalletContainer, shellCmd)
	if err != nil {
		return out, errors.Wrap(err, "wallet console")
	}
	return out, nil
}
