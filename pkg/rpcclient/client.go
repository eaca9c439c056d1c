// Copyright 2025 Certen Protocol
//
// Client is the JSON-RPC 2.0 caller used by the ordering pipeline's
// leader-forward path, replication's fan-out, and the block builder's
// gap-fill fetch. Every outgoing call is built with a fixed per-call
// timeout, per §7's "every outgoing RPC has a finite request timeout
// configured at client construction."

package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/radiusxyz/sequencer/pkg/jsonrpc"
)

// Client is a minimal JSON-RPC 2.0 client over net/http.
type Client struct {
	httpClient *http.Client
}

// New builds a client with the given per-call timeout.
func New(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Call issues a JSON-RPC request to url and decodes the result into out (if
// non-nil).
func (c *Client) Call(ctx context.Context, url, method string, params any, out any) error {
	paramsRaw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("rpcclient: marshal params: %w", err)
	}
	req := jsonrpc.Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  paramsRaw,
		ID:      json.RawMessage(`1`),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("rpcclient: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpcclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("rpcclient: %s: %w", method, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("rpcclient: read response: %w", err)
	}

	var resp jsonrpc.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("rpcclient: decode response: %w", err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("rpcclient: decode result: %w", err)
		}
	}
	return nil
}

// Multicast calls method on every url concurrently, returning as soon as
// the first successful reply decodes, or an error once every call has
// failed. Used by the block builder's gap-fill fetch
// (get_encrypted_transaction_with_order_commitment).
func Multicast[T any](ctx context.Context, c *Client, urls []string, method string, params any) (T, error) {
	var zero T
	type result struct {
		val T
		err error
	}
	resultCh := make(chan result, len(urls))
	for _, url := range urls {
		url := url
		go func() {
			var v T
			err := c.Call(ctx, url, method, params, &v)
			resultCh <- result{val: v, err: err}
		}()
	}

	var lastErr error
	for range urls {
		r := <-resultCh
		if r.err == nil {
			return r.val, nil
		}
		lastErr = r.err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("rpcclient: multicast %s: no peers", method)
	}
	return zero, lastErr
}
