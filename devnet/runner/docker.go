package runner

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Docker issues plain docker commands against individual containers, for the
// operations compose has no equivalent of: exec-ing a scripted console into
// a running container, restarting one container in place, and listing the
// names of whatever is currently running.
type Docker struct {
	runner CommandRunner
}

// NewDocker returns a Docker wrapper over the given runner.
func NewDocker(r CommandRunner) *Docker {
	return &Docker{runner: r}
}

// Exec runs shellCmd under sh -c inside the named container and returns the
// captured stdout. Callers that need stderr interleaved redirect it inside
// shellCmd itself.
func (d *Docker) Exec(ctx context.Context, container, shellCmd string) (string, error) {
	out, err := d.runner.Run(ctx, "docker", "exec", "-i", container, "sh", "-c", shellCmd)
	if err != nil {
		return out, errors.Wrapf(err, "exec in %s", container)
	}
	return out, nil
}

// Restart restarts the named container in place.
func (d *Docker) Restart(ctx context.Context, container string) error {
	if _, err := d.runner.Run(ctx, "docker", "restart", container); err != nil {
		return errors.Wrapf(err, "restart %s", container)
	}
	return nil
}

// ContainerNames lists the names of all running containers.
func (d *Docker) ContainerNames(ctx context.Context) ([]string, error) {
	out, err := d.runner.Run(ctx, "docker", "ps", "--format", "{{.Names}}")
	if err != nil {
		return nil, errors.Wrap(err, "docker ps")
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
