package runner

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Compose drives the docker compose project the devnet services live in.
type Compose struct {
	runner CommandRunner
}

// NewCompose returns a Compose wrapper over the given runner.
func NewCompose(r CommandRunner) *Compose {
	return &Compose{runner: r}
}

// Up starts the named services detached.
func (c *Compose) Up(ctx context.Context, services ...string) error {
	args := append([]string{"compose", "up", "-d"}, services...)
	if _, err := c.runner.Run(ctx, "docker", args...); err != nil {
		return errors.Wrap(err, "compose up")
	}
	return nil
}

// BuildProfile builds the images of the named compose profile. Docker caches
// aggressively, so repeated builds are cheap once images exist.
func (c *Compose) BuildProfile(ctx context.Context, profile string) error {
	if _, err := c.runner.Run(ctx, "docker", "compose", "--profile", profile, "build"); err != nil {
		return errors.Wrapf(err, "compose build --profile %s", profile)
	}
	return nil
}

// UpProfile starts every service of the named compose profile detached.
func (c *Compose) UpProfile(ctx context.Context, profile string) error {
	if _, err := c.runner.Run(ctx, "docker", "compose", "--profile", profile, "up", "-d"); err != nil {
		return errors.Wrapf(err, "compose up --profile %s", profile)
	}
	return nil
}

// Down stops the project. With volumes set, named volumes are removed too,
// wiping all chain and wallet state.
func (c *Compose) Down(ctx context.Context, volumes bool) error {
	args := []string{"compose", "down"}
	if volumes {
		args = append(args, "-v")
	}
	if _, err := c.runner.Run(ctx, "docker", args...); err != nil {
		return errors.Wrap(err, "compose down")
	}
	return nil
}

// PS lists the project's service rows, header stripped.
func (c *Compose) PS(ctx context.Context) ([]string, error) {
	out, err := c.runner.Run(ctx, "docker", "compose", "ps", "--format", "table")
	if err != nil {
		return nil, errors.Wrap(err, "compose ps")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) <= 1 {
		return nil, nil
	}
	return lines[1:], nil
}

// Logs returns the last tail lines of one service's logs.
func (c *Compose) Logs(ctx context.Context, service string, tail int) ([]string, error) {
	out, err := c.runner.Run(ctx, "docker", "compose", "logs", "--tail", strconv.Itoa(tail), service)
	if err != nil {
		return nil, errors.Wrapf(err, "compose logs %s", service)
	}
	return strings.Split(strings.TrimRight(out, "\n"), "\n"), nil
}

// IsRunning reports whether any service of the project is up.
func (c *Compose) IsRunning(ctx context.Context) bool {
	out, err := c.runner.Run(ctx, "docker", "compose", "ps", "-q")
	return err == nil && strings.TrimSpace(out) != ""
}
