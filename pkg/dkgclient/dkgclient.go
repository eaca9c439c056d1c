// Copyright 2025 Certen Protocol
//
// Client is the distributed-key-generation service client the block
// builder uses to obtain SKDE threshold-decryption keys. spec.md treats the
// DKG service as an external collaborator "consumed as a request/response
// client" — implemented here as a thin JSON-RPC client over the configured
// distributed_key_generation_rpc_url.

package dkgclient

import (
	"context"
	"fmt"
	"time"

	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/rpcclient"
)

// Client fetches SKDE decryption keys by key_id.
type Client struct {
	url    string
	client *rpcclient.Client
}

// New builds a DKG client against the given RPC URL.
func New(url string) *Client {
	return &Client{url: url, client: rpcclient.New(10 * time.Second)}
}

type getDecryptionKeyParams struct {
	KeyID string `json:"key_id"`
}

type getDecryptionKeyResult struct {
	SecretKey string `json:"secret_key"`
}

// GetDecryptionKey fetches the SKDE secret key for keyID, making up to three
// attempts and stopping early once ctx is done. If no attempt succeeds, the
// last error is wrapped in ErrDecryptionKeyUnavailable, which aborts the
// caller's block build.
func (c *Client) GetDecryptionKey(ctx context.Context, keyID string) (string, error) {
	const attempts = 3
	var lastErr error
	for i := 0; i < attempts; i++ {
		var result getDecryptionKeyResult
		err := c.client.Call(ctx, c.url, "get_decryption_key", getDecryptionKeyParams{KeyID: keyID}, &result)
		if err == nil {
			return result.SecretKey, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("dkgclient: key %s: %w: %v", keyID, rollup.ErrDecryptionKeyUnavailable, lastErr)
}
