// Package runner executes the external container-management commands the
// devnet is assembled from. Everything runs synchronously with captured
// output; the devnet has no concurrent stages, so one command at a time is
// the whole model.
package runner

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "runner")

// CommandRunner runs one external command to completion and returns its
// captured standard output. A non-zero exit is reported as an error carrying
// whatever the command wrote to stderr.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner is the production CommandRunner, backed by os/exec.
type ExecRunner struct {
	// Dir is the working directory commands run in. Empty means the
	// process's own working directory.
	Dir string
}

// NewExecRunner returns an ExecRunner rooted at dir.
func NewExecRunner(dir string) *ExecRunner {
	return &ExecRunner{Dir: dir}
}

// Run executes the command and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.WithField("command", name+" "+strings.Join(args, " ")).Debug("Running external command")
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return stdout.String(), errors.Wrapf(err, "%s failed: %s", name, detail)
	}
	return stdout.String(), nil
}
