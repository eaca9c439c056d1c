// Copyright 2025 Certen Protocol
//
// Registrar publishes block commitments to a Symbiotic middleware contract.
// Thin configuration wrapper around pkg/registrar.EVMRegistrar.

package symbiotic

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/radiusxyz/sequencer/pkg/registrar"
	"github.com/radiusxyz/sequencer/pkg/rollup"
)

const registerMethod = "registerBlockCommitment"

// Registrar is the Symbiotic block-commitment publisher.
type Registrar struct {
	evm *registrar.EVMRegistrar
}

// New connects to the Symbiotic middleware contract.
func New(rpcURL string, chainID int64, middlewareAddr common.Address, contractABIJSON, signingKeyHex string, gasLimit uint64) (*Registrar, error) {
	evm, err := registrar.NewEVMRegistrar(rpcURL, chainID, middlewareAddr, contractABIJSON, registerMethod, signingKeyHex, gasLimit)
	if err != nil {
		return nil, err
	}
	return &Registrar{evm: evm}, nil
}

// RegisterBlockCommitment implements registrar.Registrar.
func (r *Registrar) RegisterBlockCommitment(ctx context.Context, clusterID, rollupID string, rollupBlockHeight uint64, commitment rollup.Hash32) (string, error) {
	return r.evm.RegisterBlockCommitment(ctx, clusterID, rollupID, rollupBlockHeight, commitment)
}
