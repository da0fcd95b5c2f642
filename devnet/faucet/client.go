// Package faucet is a REST client for the devnet faucet service.
package faucet

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "faucet")

// Stats is the faucet's /stats payload. Pointer fields distinguish a field
// that is absent from one whose value is zero; a zero balance is a valid
// answer on a fresh network.
type Stats struct {
	FaucetAddress  *string  `json:"faucet_address"`
	CurrentBalance *float64 `json:"current_balance"`
}

// Balance returns the reported balance, defaulting to zero when absent.
func (s *Stats) Balance() float64 {
	if s.CurrentBalance == nil {
		return 0
	}
	return *s.CurrentBalance
}

// Client talks to one faucet instance.
type Client struct {
	base           string
	client         *http.Client
	timeout        time.Duration
	fundingTimeout time.Duration
}

// NewClient returns a Client. timeout bounds ordinary calls; fundingTimeout
// bounds Request, which broadcasts a real transaction and needs tens of
// seconds of patience.
func NewClient(base string, timeout, fundingTimeout time.Duration) *Client {
	return &Client{
		base:           strings.TrimRight(base, "/"),
		client:         &http.Client{},
		timeout:        timeout,
		fundingTimeout: fundingTimeout,
	}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return errors.Wrapf(err, "could not build GET %s", path)
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, timeout time.Duration, payload, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "could not marshal POST %s body", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "could not build POST %s", path)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "faucet %s", path)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.WithError(err).Debug("Could not close faucet response body")
		}
	}()
	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "could not read faucet %s response", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("faucet %s returned %s: %s", path, resp.Status, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "could not decode faucet %s response", path)
	}
	return nil
}

// Health calls GET /health and returns the optional status field.
func (c *Client) Health(ctx context.Context) (string, error) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", &payload); err != nil {
		return "", err
	}
	return payload.Status, nil
}

// GetStats calls GET /stats.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	if err := c.get(ctx, "/stats", stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Address calls GET /address and returns the faucet's own address.
func (c *Client) Address(ctx context.Context) (string, error) {
	var payload struct {
		Address *string `json:"address"`
	}
	if err := c.get(ctx, "/address", &payload); err != nil {
		return "", err
	}
	if payload.Address == nil {
		return "", errors.New("faucet /address response has no address field")
	}
	return *payload.Address, nil
}

// Request asks the faucet to fund address with amount and returns the
// broadcast transaction id.
func (c *Client) Request(ctx context.Context, address string, amount float64) (string, error) {
	var payload struct {
		TxID string `json:"txid"`
	}
	body := map[string]interface{}{"address": address, "amount": amount}
	if err := c.post(ctx, "/request", c.fundingTimeout, body, &payload); err != nil {
		return "", err
	}
	if payload.TxID == "" {
		return "", errors.New("faucet /request response has no txid")
	}
	return payload.TxID, nil
}

// AddFunds uses the development-only escape hatch to seed the faucet with
// liquidity.
func (c *Client) AddFunds(ctx context.Context, amount float64, secret string) error {
	body := map[string]interface{}{"amount": amount, "secret": secret}
	return c.post(ctx, "/admin/add-funds", c.timeout, body, nil)
}
