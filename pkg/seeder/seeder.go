// Copyright 2025 Certen Protocol
//
// Client resolves sequencer on-chain addresses to external RPC URLs via the
// seeder directory service. spec.md treats the seeder as an external
// collaborator "consumed as a name -> endpoint lookup"; this is a thin
// JSON-RPC client, grounded on the teacher's pkg/ethereum.Client
// constructor-plus-method style.

package seeder

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/radiusxyz/sequencer/pkg/rpcclient"
)

// Client resolves addresses against one seeder endpoint.
type Client struct {
	url    string
	client *rpcclient.Client
}

// New builds a seeder client against the given RPC URL.
func New(url string) *Client {
	return &Client{url: url, client: rpcclient.New(10 * time.Second)}
}

type getRPCURLParams struct {
	Address common.Address `json:"address"`
}

type getRPCURLResult struct {
	RPCURL *string `json:"rpc_url"`
}

// Resolve returns the external RPC URL registered for addr, or nil if the
// seeder has no entry (the sequencer is registered on-chain but
// unreachable).
func (c *Client) Resolve(ctx context.Context, addr common.Address) (*string, error) {
	var result getRPCURLResult
	if err := c.client.Call(ctx, c.url, "get_rpc_url", getRPCURLParams{Address: addr}, &result); err != nil {
		return nil, err
	}
	return result.RPCURL, nil
}

// ResolveAll resolves a whole sequencer address list in one pass, preserving
// order and nil entries for unreachable sequencers.
func (c *Client) ResolveAll(ctx context.Context, addrs []common.Address) ([]*string, error) {
	out := make([]*string, len(addrs))
	for i, addr := range addrs {
		url, err := c.Resolve(ctx, addr)
		if err != nil {
			return nil, err
		}
		out[i] = url
	}
	return out, nil
}
