// Package health decides when the devnet's services are safe to build on.
// The services share no readiness protocol: the node is a JSON-RPC server,
// the faucet is a REST API, and the light-client backends only accept raw
// TCP connections. Each gets a probe speaking its own protocol, and a
// bounded poller turns single-shot probes into stage gates.
package health

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "health")

// Status classifies a single probe attempt.
type Status int

const (
	// StatusReady means the service answered and the caller may proceed.
	StatusReady Status = iota
	// StatusNotReady means the service is not answering yet but another
	// attempt is worthwhile. It is the only status that permits a retry.
	StatusNotReady
	// StatusFatal means the service will never become ready under current
	// conditions and polling must stop immediately.
	StatusFatal
)

// Outcome is the result of one probe attempt. Err carries the reason for
// StatusNotReady and StatusFatal and is nil for StatusReady.
type Outcome struct {
	Status Status
	Err    error
}

// Ready is the successful outcome.
func Ready() Outcome { return Outcome{Status: StatusReady} }

// NotReady is a retryable outcome with the given reason.
func NotReady(err error) Outcome { return Outcome{Status: StatusNotReady, Err: err} }

// Fatal is a non-retryable outcome with the given reason.
func Fatal(err error) Outcome { return Outcome{Status: StatusFatal, Err: err} }

// EndpointKind selects which protocol a service is probed with.
type EndpointKind int

const (
	// KindRPC probes with an idempotent JSON-RPC status call over HTTP.
	KindRPC EndpointKind = iota
	// KindREST probes with a GET against a health path.
	KindREST
	// KindRawTCP probes with a bare TCP connect, for services that reject
	// HTTP outright. Reachability is the only observable signal they offer.
	KindRawTCP
)

// Endpoint identifies one probeable service.
type Endpoint struct {
	Kind EndpointKind
	// URL is the full probe URL for KindRPC and KindREST.
	URL string
	// Addr is the host:port dialed for KindRawTCP.
	Addr string
}

// Checker performs single-shot readiness probes. Probes are purely
// observational and never block longer than the configured per-call timeout.
// An unreachable endpoint is always NotReady, never Fatal: on a devnet that
// is still booting, unreachable is the expected starting state.
type Checker struct {
	client  *http.Client
	timeout time.Duration
}

// NewChecker returns a Checker whose probes each give up after timeout.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Probe dispatches to the protocol-specific probe for the endpoint.
func (c *Checker) Probe(ctx context.Context, ep Endpoint) Outcome {
	switch ep.Kind {
	case KindRPC:
		return c.ProbeRPC(ctx, ep.URL)
	case KindREST:
		return c.ProbeREST(ctx, ep.URL)
	case KindRawTCP:
		return c.ProbeTCP(ctx, ep.Addr)
	default:
		return Fatal(errors.Errorf("unknown endpoint kind %d", ep.Kind))
	}
}

// ProbeRPC issues a single getblockcount call. Any syntactically valid
// response with an HTTP success status counts as ready; transport failures
// and non-success statuses are retryable.
func (c *Checker) ProbeRPC(ctx context.Context, url string) Outcome {
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "health",
		"method":  "getblockcount",
		"params":  []interface{}{},
	})
	if err != nil {
		return Fatal(errors.Wrap(err, "could not marshal rpc probe"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Fatal(errors.Wrap(err, "could not build rpc probe"))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return NotReady(errors.Wrap(err, "rpc endpoint unreachable"))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.WithError(err).Debug("Could not close probe response body")
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NotReady(errors.Errorf("rpc endpoint returned %s", resp.Status))
	}
	return Ready()
}

// ProbeREST issues a GET against a health path. A present status field with
// an explicit "unhealthy" value is still retryable: the service is up but
// not yet functional.
func (c *Checker) ProbeREST(ctx context.Context, url string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Fatal(errors.Wrap(err, "could not build rest probe"))
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return NotReady(errors.Wrap(err, "rest endpoint unreachable"))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.WithError(err).Debug("Could not close probe response body")
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NotReady(errors.Errorf("rest endpoint returned %s", resp.Status))
	}

	var payload struct {
		Status string `json:"status"`
	}
	// A body that is not JSON, or has no status field, is still a healthy
	// 2xx answer.
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Status == "unhealthy" {
		return NotReady(errors.New("service reports unhealthy"))
	}
	return Ready()
}

// ProbeTCP attempts a bare TCP connect. A successful connect is ready
// regardless of any application-level response.
func (c *Checker) ProbeTCP(_ context.Context, addr string) Outcome {
	conn, err := net.DialTimeout("tcp", addr, c.timeout)
	if err != nil {
		return NotReady(errors.Wrapf(err, "%s unreachable", addr))
	}
	if err := conn.Close(); err != nil {
		log.WithError(err).Debug("Could not close probe connection")
	}
	return Ready()
}
