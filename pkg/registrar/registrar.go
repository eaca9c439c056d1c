// Copyright 2025 Certen Protocol
//
// Registrar is the uniform interface the block builder calls to publish a
// finalized block's commitment on-chain. Concrete adapters for EigenLayer
// and Symbiotic live in the eigenlayer and symbiotic subpackages; both are
// grounded on the teacher's pkg/ethereum.Client transactor/nonce/gas-price
// plumbing and pkg/chain/strategy.ChainExecutionStrategy's adapter shape,
// narrowed to the single operation the spec calls for.

package registrar

import (
	"context"
	"fmt"
	"sync"

	"github.com/radiusxyz/sequencer/pkg/rollup"
)

// Registrar publishes one rollup's block commitment to an on-chain
// validation service.
type Registrar interface {
	RegisterBlockCommitment(ctx context.Context, clusterID, rollupID string, rollupBlockHeight uint64, commitment rollup.Hash32) (txHash string, err error)
}

// Local is the no-op registrar for rollup.PlatformLocal, matching §9's
// "the local (non-Ethereum) platform is unimplemented!; callers MUST
// surface a clear error."
type Local struct{}

// RegisterBlockCommitment always fails with ErrUnimplemented.
func (Local) RegisterBlockCommitment(_ context.Context, _, rollupID string, height uint64, _ rollup.Hash32) (string, error) {
	return "", fmt.Errorf("registrar: local platform, rollup %s height %d: %w", rollupID, height, rollup.ErrUnimplemented)
}

// Registry resolves a rollup's validation info to the matching Registrar
// implementation. Entries may be replaced at runtime by add_validation_info,
// so lookups and updates are guarded by a read/write lock per §5's "readers
// take a read lock, writers take a write lock" cached-map convention.
type Registry struct {
	mu         sync.RWMutex
	byProvider map[rollup.ServiceProvider]Registrar
}

// NewRegistry builds a registry from concrete provider adapters.
func NewRegistry(eigenLayer, symbiotic Registrar) *Registry {
	return &Registry{byProvider: map[rollup.ServiceProvider]Registrar{
		rollup.ServiceProviderEigenLayer: eigenLayer,
		rollup.ServiceProviderSymbiotic:  symbiotic,
	}}
}

// For returns the registrar matching a rollup's validation info, or Local{}
// if the platform is not Ethereum.
func (r *Registry) For(v rollup.ValidationInfo) Registrar {
	if v.Platform != rollup.PlatformEthereum {
		return Local{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if reg, ok := r.byProvider[v.ServiceProvider]; ok {
		return reg
	}
	return Local{}
}

// Set installs (or replaces) the registrar for a service provider, called by
// add_validation_info when an operator registers a validation contract at
// runtime.
func (r *Registry) Set(provider rollup.ServiceProvider, reg Registrar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byProvider[provider] = reg
}
