package zebra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "getblockcount", req.Method)
		assert.Empty(t, req.Params)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result": 42, "error": null, "id": "getblockcount"}`)
	}))
	defer srv.Close()

	height, err := NewClient(srv.URL, time.Second).BlockCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), height)
}

func TestBlockCount_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result": null, "error": {"code": -32601, "message": "Method not found"}}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).BlockCount(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Method not found")
}

func TestBlockCount_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).BlockCount(context.Background())
	require.Error(t, err)
}

func TestInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getinfo", req.Method)
		fmt.Fprint(w, `{"result": {"build": "1.9.0", "subversion": "/Zebra:1.9.0/"}, "error": null}`)
	}))
	defer srv.Close()

	info, err := NewClient(srv.URL, time.Second).Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.9.0", info.Build)
	assert.Equal(t, "/Zebra:1.9.0/", info.Subversion)
}

func TestBlockCount_NoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error": null}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).BlockCount(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no result")
}
