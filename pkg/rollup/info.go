// Copyright 2025 Certen Protocol
//
// SequencingInfoPayload and ValidationInfoPayload are closed tagged unions
// describing, respectively, a liveness contract and a commitment-validation
// contract to dial at runtime, grounded on
// original_source/src/rpc/internal/add_sequencing_info.rs and
// add_validation_info.rs's SequencingInfoPayload::{Ethereum,Local} /
// ValidationInfoPayload::{EigenLayer,Symbiotic} enums. Represented here as
// tagged structs per the tagged-variants-over-inheritance design note.

package rollup

import (
	"encoding/json"
	"fmt"
)

// EthereumSequencingInfo names the on-chain liveness contract a cluster's
// membership is read from.
type EthereumSequencingInfo struct {
	RPCURL          string `json:"rpc_url"`
	ContractAddress string `json:"contract_address"`
	ContractABI     string `json:"contract_abi"`
}

// LocalSequencingInfo is the unimplemented non-Ethereum variant; callers
// MUST surface ErrUnimplemented per §9.
type LocalSequencingInfo struct{}

// SequencingInfoPayload is the add_sequencing_info request's tagged payload.
type SequencingInfoPayload struct {
	Platform Platform
	Ethereum *EthereumSequencingInfo
	Local    *LocalSequencingInfo
}

func (p SequencingInfoPayload) MarshalJSON() ([]byte, error) {
	switch p.Platform {
	case PlatformEthereum:
		return json.Marshal(struct {
			Platform Platform `json:"platform"`
			*EthereumSequencingInfo
		}{p.Platform, p.Ethereum})
	case PlatformLocal:
		return json.Marshal(struct {
			Platform Platform `json:"platform"`
			*LocalSequencingInfo
		}{p.Platform, p.Local})
	default:
		return nil, fmt.Errorf("sequencing info payload: %w: unknown platform %q", ErrDeserialize, p.Platform)
	}
}

func (p *SequencingInfoPayload) UnmarshalJSON(data []byte) error {
	var tag struct {
		Platform Platform `json:"platform"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	p.Platform = tag.Platform
	switch tag.Platform {
	case PlatformEthereum:
		var v EthereumSequencingInfo
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrDeserialize, err)
		}
		p.Ethereum = &v
	case PlatformLocal:
		var v LocalSequencingInfo
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrDeserialize, err)
		}
		p.Local = &v
	default:
		return fmt.Errorf("sequencing info payload: %w: unknown platform %q", ErrDeserialize, tag.Platform)
	}
	return nil
}

// SequencingInfoRecord is the persisted form, keyed by (platform,
// service_provider).
type SequencingInfoRecord struct {
	Platform        Platform              `json:"platform"`
	ServiceProvider ServiceProvider       `json:"service_provider"`
	Payload         SequencingInfoPayload `json:"payload"`
}

// EigenLayerValidationInfo names the EigenLayer commitment-validation
// contract for a (platform, service_provider) pair.
type EigenLayerValidationInfo struct {
	RPCURL          string `json:"rpc_url"`
	ChainID         int64  `json:"chain_id"`
	ContractAddress string `json:"contract_address"`
	ContractABI     string `json:"contract_abi"`
	GasLimit        uint64 `json:"gas_limit"`
}

// SymbioticValidationInfo names the Symbiotic commitment-validation
// contract for a (platform, service_provider) pair.
type SymbioticValidationInfo struct {
	RPCURL          string `json:"rpc_url"`
	ChainID         int64  `json:"chain_id"`
	ContractAddress string `json:"contract_address"`
	ContractABI     string `json:"contract_abi"`
	GasLimit        uint64 `json:"gas_limit"`
}

// ValidationInfoPayload is the add_validation_info request's tagged payload.
type ValidationInfoPayload struct {
	ServiceProvider ServiceProvider
	EigenLayer      *EigenLayerValidationInfo
	Symbiotic       *SymbioticValidationInfo
}

func (p ValidationInfoPayload) MarshalJSON() ([]byte, error) {
	switch p.ServiceProvider {
	case ServiceProviderEigenLayer:
		return json.Marshal(struct {
			ServiceProvider ServiceProvider `json:"service_provider"`
			*EigenLayerValidationInfo
		}{p.ServiceProvider, p.EigenLayer})
	case ServiceProviderSymbiotic:
		return json.Marshal(struct {
			ServiceProvider ServiceProvider `json:"service_provider"`
			*SymbioticValidationInfo
		}{p.ServiceProvider, p.Symbiotic})
	default:
		return nil, fmt.Errorf("validation info payload: %w: unknown service provider %q", ErrDeserialize, p.ServiceProvider)
	}
}

func (p *ValidationInfoPayload) UnmarshalJSON(data []byte) error {
	var tag struct {
		ServiceProvider ServiceProvider `json:"service_provider"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	p.ServiceProvider = tag.ServiceProvider
	switch tag.ServiceProvider {
	case ServiceProviderEigenLayer:
		var v EigenLayerValidationInfo
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrDeserialize, err)
		}
		p.EigenLayer = &v
	case ServiceProviderSymbiotic:
		var v SymbioticValidationInfo
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrDeserialize, err)
		}
		p.Symbiotic = &v
	default:
		return fmt.Errorf("validation info payload: %w: unknown service provider %q", ErrDeserialize, tag.ServiceProvider)
	}
	return nil
}

// ValidationInfoRecord is the persisted form, keyed by (platform,
// service_provider).
type ValidationInfoRecord struct {
	Platform        Platform              `json:"platform"`
	ServiceProvider ServiceProvider       `json:"service_provider"`
	Payload         ValidationInfoPayload `json:"payload"`
}

// ClusterIDList is the set of cluster IDs this node manages at one
// (platform, service_provider) pair, mutated by add_cluster/Deregister.
type ClusterIDList struct {
	ClusterIDs []string `json:"cluster_ids"`
}

// Insert adds id if not already present.
func (l *ClusterIDList) Insert(id string) {
	for _, existing := range l.ClusterIDs {
		if existing == id {
			return
		}
	}
	l.ClusterIDs = append(l.ClusterIDs, id)
}

// Remove drops id if present.
func (l *ClusterIDList) Remove(id string) {
	out := l.ClusterIDs[:0]
	for _, existing := range l.ClusterIDs {
		if existing != id {
			out = append(out, existing)
		}
	}
	l.ClusterIDs = out
}
