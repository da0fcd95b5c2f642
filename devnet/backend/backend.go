// Package backend determines which of the two mutually exclusive
// light-client backends is active and derives the endpoint other components
// must target. Detection is intentionally never cached: an operator may swap
// backends between stages, so every caller that needs the current backend
// asks again.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/zeckit/zeckit/devnet/params"
	"github.com/zeckit/zeckit/devnet/runner"
)

var log = logrus.WithField("prefix", "backend")

// ErrNoBackend is returned when no known backend container is running.
var ErrNoBackend = errors.New("no backend detected")

// Kind identifies the active light-client backend implementation.
type Kind int

const (
	// None means the devnet runs without a light-client backend.
	None Kind = iota
	// Zaino is the Zaino indexer backend.
	Zaino
	// Lightwalletd is the lightwalletd backend.
	Lightwalletd
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Zaino:
		return "zaino"
	case Lightwalletd:
		return "lightwalletd"
	default:
		return "none"
	}
}

// KindFromFlag maps the --backend flag value to a Kind.
func KindFromFlag(value string) (Kind, error) {
	switch value {
	case "zaino":
		return Zaino, nil
	case "lwd":
		return Lightwalletd, nil
	case "none":
		return None, nil
	default:
		return None, errors.Errorf("invalid backend %q, use 'lwd', 'zaino', or 'none'", value)
	}
}

// Detector inspects the running containers for a backend.
type Detector struct {
	docker *runner.Docker
	p      *params.DevnetParams
}

// NewDetector returns a Detector over the given docker wrapper.
func NewDetector(docker *runner.Docker, p *params.DevnetParams) *Detector {
	return &Detector{docker: docker, p: p}
}

// Detect returns the active backend kind. A container whose name matches the
// zaino pattern wins, then one matching the lightwalletd pattern; with
// neither present the devnet has no backend and ErrNoBackend is returned.
func (d *Detector) Detect(ctx context.Context) (Kind, error) {
	names, err := d.docker.ContainerNames(ctx)
	if err != nil {
		return None, errors.Wrap(err, "could not list containers")
	}
	for _, name := range names {
		if strings.Contains(name, d.p.ZainoPattern) {
			log.WithField("container", name).Debug("Detected zaino backend")
			return Zaino, nil
		}
	}
	for _, name := range names {
		if strings.Contains(name, d.p.LightwalletdPattern) {
			log.WithField("container", name).Debug("Detected lightwalletd backend")
			return Lightwalletd, nil
		}
	}
	return None, ErrNoBackend
}

// ServerURI returns the in-network URI the wallet console connects to for
// the given backend. The wallet runs inside the compose network, so the URI
// uses the compose service name, not a host address. A devnet without a
// backend still points the wallet at the lightwalletd service name so the
// console can start; its commands then fail fast instead of hanging.
func (d *Detector) ServerURI(k Kind) string {
	service := d.p.LightwalletdPattern
	if k == Zaino {
		service = d.p.ZainoPattern
	}
	return fmt.Sprintf("http://%s:%d", service, d.p.BackendPort)
}

// HostAddr returns the host TCP address used to probe backend reachability.
func (d *Detector) HostAddr() string {
	return d.p.BackendAddr
}
