// Copyright 2025 Certen Protocol
//
// Client is the on-chain liveness contract client: the reconciler's source
// of cluster membership and rollup registration events. spec.md treats this
// as an external collaborator "consumed as a typed event stream plus write
// methods" — grounded on the teacher's pkg/ethereum.Client.CallContract
// (ABI pack/call/unpack) and GetBlock-family methods, narrowed to the three
// read operations the reconciler needs plus a new-head subscription.

package liveness

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/radiusxyz/sequencer/pkg/rollup"
)

// RollupInfo mirrors the on-chain rollup registration record read by
// get_rollup_info_list.
type RollupInfo struct {
	RollupID                 string
	RollupType               string
	EncryptedTransactionType string
	OrderCommitmentType      string
	Owner                    common.Address
	ServiceManagerAddress    common.Address
	ExecutorAddresses        []common.Address
}

// Client reads sequencer/rollup views from one (platform, service_provider)
// liveness contract and streams new platform blocks.
type Client struct {
	eth             *ethclient.Client
	contractAddr    common.Address
	contractABI     abi.ABI
	platform        rollup.Platform
	serviceProvider rollup.ServiceProvider
}

// New dials rpcURL and parses contractABIJSON for later contract calls.
func New(rpcURL string, contractAddr common.Address, contractABIJSON string, platform rollup.Platform, serviceProvider rollup.ServiceProvider) (*Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("liveness: dial %s: %w: %v", rpcURL, rollup.ErrNetwork, err)
	}
	parsedABI, err := abi.JSON(strings.NewReader(contractABIJSON))
	if err != nil {
		return nil, fmt.Errorf("liveness: parse abi: %w", err)
	}
	return &Client{
		eth:             eth,
		contractAddr:    contractAddr,
		contractABI:     parsedABI,
		platform:        platform,
		serviceProvider: serviceProvider,
	}, nil
}

func (c *Client) call(ctx context.Context, method string, out any, params ...any) error {
	callData, err := c.contractABI.Pack(method, params...)
	if err != nil {
		return fmt.Errorf("liveness: pack %s: %w", method, err)
	}
	result, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &c.contractAddr, Data: callData}, nil)
	if err != nil {
		return fmt.Errorf("liveness: call %s: %w: %v", method, rollup.ErrNetwork, err)
	}
	if err := c.contractABI.UnpackIntoInterface(out, method, result); err != nil {
		return fmt.Errorf("liveness: unpack %s: %w", method, err)
	}
	return nil
}

// GetSequencerList returns the ordered sequencer address list for a cluster
// at a given platform block height.
func (c *Client) GetSequencerList(ctx context.Context, clusterID string, platformBlockHeight uint64) ([]common.Address, error) {
	var out struct{ Sequencers []common.Address }
	if err := c.call(ctx, "getSequencerList", &out, clusterID, new(big.Int).SetUint64(platformBlockHeight)); err != nil {
		return nil, err
	}
	return out.Sequencers, nil
}

// GetRollupInfoList returns the registered rollups for a cluster at a given
// platform block height.
func (c *Client) GetRollupInfoList(ctx context.Context, clusterID string, platformBlockHeight uint64) ([]RollupInfo, error) {
	var out struct{ Rollups []RollupInfo }
	if err := c.call(ctx, "getRollupInfoList", &out, clusterID, new(big.Int).SetUint64(platformBlockHeight)); err != nil {
		return nil, err
	}
	return out.Rollups, nil
}

// GetClusterIDList returns every cluster this node participates in at
// (platform, service_provider).
func (c *Client) GetClusterIDList(ctx context.Context, nodeAddress common.Address) ([]string, error) {
	var out struct{ ClusterIDs []string }
	if err := c.call(ctx, "getClusterIdList", &out, nodeAddress); err != nil {
		return nil, err
	}
	return out.ClusterIDs, nil
}

// BlockStream subscribes to new platform block headers.
func (c *Client) BlockStream(ctx context.Context) (<-chan *types.Header, ethereum.Subscription, error) {
	headers := make(chan *types.Header, 16)
	sub, err := c.eth.SubscribeNewHead(ctx, headers)
	if err != nil {
		return nil, nil, fmt.Errorf("liveness: subscribe: %w: %v", rollup.ErrNetwork, err)
	}
	return headers, sub, nil
}

// Platform and ServiceProvider identify which liveness view this client
// serves, used by the reconciler to key its supervisor map.
func (c *Client) Platform() rollup.Platform                 { return c.platform }
func (c *Client) ServiceProvider() rollup.ServiceProvider    { return c.serviceProvider }
