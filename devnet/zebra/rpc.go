// Package zebra talks to the devnet's Zebra node: a thin JSON-RPC client for
// the calls the orchestrator needs, and the single configuration mutation it
// performs (pointing block rewards at a discovered wallet address).
package zebra

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "zebra")

// Client is a JSON-RPC client bound to one node endpoint.
type Client struct {
	url    string
	client *http.Client
}

// NewClient returns a Client with the given per-call timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, result interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      method,
		Method:  method,
		Params:  []interface{}{},
	})
	if err != nil {
		return errors.Wrap(err, "could not marshal rpc request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "could not build rpc request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "rpc call %s", method)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.WithError(err).Debug("Could not close rpc response body")
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("rpc call %s returned %s", method, resp.Status)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return errors.Wrapf(err, "could not decode %s response", method)
	}
	if rpcResp.Error != nil {
		return errors.Errorf("rpc call %s: %s (code %d)", method, rpcResp.Error.Message, rpcResp.Error.Code)
	}
	if rpcResp.Result == nil {
		return errors.Errorf("rpc call %s returned no result", method)
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return errors.Wrapf(err, "could not unmarshal %s result", method)
	}
	return nil
}

// BlockCount returns the node's current chain height.
func (c *Client) BlockCount(ctx context.Context) (uint64, error) {
	var height uint64
	if err := c.call(ctx, "getblockcount", &height); err != nil {
		return 0, err
	}
	return height, nil
}

// Info is the subset of the getinfo response shown in status reports.
type Info struct {
	Build      string `json:"build"`
	Subversion string `json:"subversion"`
}

// Info returns the node's build information.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	info := &Info{}
	if err := c.call(ctx, "getinfo", info); err != nil {
		return nil, err
	}
	return info, nil
}
