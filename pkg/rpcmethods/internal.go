// Copyright 2025 Certen Protocol
//
// Internal-surface handlers: operator management of sequencing/validation
// contracts and cluster membership, grounded on
// original_source/src/rpc/internal/{add_sequencing_info,add_validation_info,
// add_cluster,deregister}.rs. Unlike the original, registering a sequencer
// or deregistering one against the seeder directory is the seeder's own
// write surface (not exposed by pkg/seeder.Client here — see DESIGN.md), so
// add_cluster/Deregister only maintain this node's local cluster_id_list
// bookkeeping.

package rpcmethods

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/radiusxyz/sequencer/pkg/appstate"
	"github.com/radiusxyz/sequencer/pkg/liveness"
	"github.com/radiusxyz/sequencer/pkg/registrar/eigenlayer"
	"github.com/radiusxyz/sequencer/pkg/registrar/symbiotic"
	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/store"
)

type addSequencingInfoParams struct {
	Platform        rollup.Platform              `json:"platform"`
	ServiceProvider rollup.ServiceProvider       `json:"service_provider"`
	Payload         rollup.SequencingInfoPayload `json:"payload"`
}

// AddSequencingInfo registers a liveness contract descriptor and, for the
// Ethereum platform, dials it immediately and starts its supervised
// reconciliation loop.
func AddSequencingInfo(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p addSequencingInfoParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("add_sequencing_info: %w: %v", rollup.ErrDeserialize, err)
	}

	record := rollup.SequencingInfoRecord{Platform: p.Platform, ServiceProvider: p.ServiceProvider, Payload: p.Payload}
	if err := store.Put(app.DB, store.SequencingInfoKey(string(p.Platform), string(p.ServiceProvider)), record); err != nil {
		return nil, fmt.Errorf("add_sequencing_info: persist: %w", rollup.ErrDatabase)
	}

	switch p.Platform {
	case rollup.PlatformEthereum:
		if p.Payload.Ethereum == nil {
			return nil, fmt.Errorf("add_sequencing_info: %w: ethereum platform missing payload", rollup.ErrDeserialize)
		}
		client, err := liveness.New(p.Payload.Ethereum.RPCURL, common.HexToAddress(p.Payload.Ethereum.ContractAddress), p.Payload.Ethereum.ContractABI, p.Platform, p.ServiceProvider)
		if err != nil {
			return nil, err
		}
		app.AddLivenessClient(client)
		return nil, nil
	case rollup.PlatformLocal:
		return nil, fmt.Errorf("add_sequencing_info: local platform: %w", rollup.ErrUnimplemented)
	default:
		return nil, fmt.Errorf("add_sequencing_info: %w: unknown platform %q", rollup.ErrDeserialize, p.Platform)
	}
}

type addValidationInfoParams struct {
	Platform        rollup.Platform              `json:"platform"`
	ServiceProvider rollup.ServiceProvider       `json:"service_provider"`
	Payload         rollup.ValidationInfoPayload `json:"payload"`
}

// AddValidationInfo registers a commitment-validation contract descriptor
// and installs the matching Registrar adapter into the shared registry.
func AddValidationInfo(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p addValidationInfoParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("add_validation_info: %w: %v", rollup.ErrDeserialize, err)
	}

	record := rollup.ValidationInfoRecord{Platform: p.Platform, ServiceProvider: p.ServiceProvider, Payload: p.Payload}
	if err := store.Put(app.DB, store.ValidationInfoKey(string(p.Platform), string(p.ServiceProvider)), record); err != nil {
		return nil, fmt.Errorf("add_validation_info: persist: %w", rollup.ErrDatabase)
	}

	switch p.ServiceProvider {
	case rollup.ServiceProviderEigenLayer:
		if p.Payload.EigenLayer == nil {
			return nil, fmt.Errorf("add_validation_info: %w: eigen_layer missing payload", rollup.ErrDeserialize)
		}
		v := p.Payload.EigenLayer
		reg, err := eigenlayer.New(v.RPCURL, v.ChainID, common.HexToAddress(v.ContractAddress), v.ContractABI, app.Config.SigningKey, v.GasLimit)
		if err != nil {
			return nil, err
		}
		app.Registrars.Set(rollup.ServiceProviderEigenLayer, reg)
		return nil, nil
	case rollup.ServiceProviderSymbiotic:
		if p.Payload.Symbiotic == nil {
			return nil, fmt.Errorf("add_validation_info: %w: symbiotic missing payload", rollup.ErrDeserialize)
		}
		v := p.Payload.Symbiotic
		reg, err := symbiotic.New(v.RPCURL, v.ChainID, common.HexToAddress(v.ContractAddress), v.ContractABI, app.Config.SigningKey, v.GasLimit)
		if err != nil {
			return nil, err
		}
		app.Registrars.Set(rollup.ServiceProviderSymbiotic, reg)
		return nil, nil
	default:
		return nil, fmt.Errorf("add_validation_info: %w: unknown service provider %q", rollup.ErrDeserialize, p.ServiceProvider)
	}
}

type clusterParams struct {
	Platform        string `json:"platform"`
	ServiceProvider string `json:"service_provider"`
	ClusterID       string `json:"cluster_id"`
}

// AddCluster marks cluster_id as one this node manages at (platform,
// service_provider); the reconciler picks it up on its next observed block.
func AddCluster(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p clusterParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("add_cluster: %w: %v", rollup.ErrDeserialize, err)
	}
	key := store.ClusterIDListKey(p.Platform, p.ServiceProvider)
	handle, err := store.GetMutOr(app.DB, key, func() rollup.ClusterIDList { return rollup.ClusterIDList{} })
	if err != nil {
		return nil, fmt.Errorf("add_cluster: %w", rollup.ErrDatabase)
	}
	handle.Value.Insert(p.ClusterID)
	if err := handle.Update(); err != nil {
		return nil, fmt.Errorf("add_cluster: %w", rollup.ErrDatabase)
	}
	return nil, nil
}

// Deregister drops cluster_id from this node's managed set at (platform,
// service_provider).
func Deregister(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p clusterParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("deregister: %w: %v", rollup.ErrDeserialize, err)
	}
	key := store.ClusterIDListKey(p.Platform, p.ServiceProvider)
	handle, err := store.GetMutOr(app.DB, key, func() rollup.ClusterIDList { return rollup.ClusterIDList{} })
	if err != nil {
		return nil, fmt.Errorf("deregister: %w", rollup.ErrDatabase)
	}
	handle.Value.Remove(p.ClusterID)
	if err := handle.Update(); err != nil {
		return nil, fmt.Errorf("deregister: %w", rollup.ErrDatabase)
	}
	return nil, nil
}

type getClusterParams struct {
	Platform            string `json:"platform"`
	ServiceProvider     string `json:"service_provider"`
	ClusterID           string `json:"cluster_id"`
	PlatformBlockHeight uint64 `json:"platform_block_height"`
}

// GetCluster returns the cluster snapshot the reconciler wrote for the given
// (platform, service_provider, cluster_id, platform_block_height).
func GetCluster(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p getClusterParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("get_cluster: %w: %v", rollup.ErrDeserialize, err)
	}
	key := store.ClusterKey(p.Platform, p.ServiceProvider, p.ClusterID, p.PlatformBlockHeight)
	cluster, err := store.Get[rollup.Cluster](app.DB, key)
	if err != nil {
		return nil, mapStoreErr(err, "get_cluster")
	}
	return cluster, nil
}

type platformProviderParams struct {
	Platform        string `json:"platform"`
	ServiceProvider string `json:"service_provider"`
}

type clusterIDListResult struct {
	ClusterIDs []string `json:"cluster_ids"`
}

// GetClusterIDList returns every cluster_id this node manages at (platform,
// service_provider).
func GetClusterIDList(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p platformProviderParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("get_cluster_id_list: %w: %v", rollup.ErrDeserialize, err)
	}
	list, err := store.GetOr(app.DB, store.ClusterIDListKey(p.Platform, p.ServiceProvider), func() rollup.ClusterIDList { return rollup.ClusterIDList{} })
	if err != nil {
		return nil, fmt.Errorf("get_cluster_id_list: %w", rollup.ErrDatabase)
	}
	return clusterIDListResult{ClusterIDs: list.ClusterIDs}, nil
}

type sequencingInfosResult struct {
	SequencingInfos []rollup.SequencingInfoRecord `json:"sequencing_infos"`
}

// GetSequencingInfos lists every registered sequencing-info record.
func GetSequencingInfos(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	records, err := store.ScanPrefix[rollup.SequencingInfoRecord](app.DB, store.SequencingInfoPrefix())
	if err != nil {
		return nil, fmt.Errorf("get_sequencing_infos: %w", rollup.ErrDatabase)
	}
	return sequencingInfosResult{SequencingInfos: records}, nil
}

// GetSequencingInfo returns the sequencing-info record for one (platform,
// service_provider) pair.
func GetSequencingInfo(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p platformProviderParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("get_sequencing_info: %w: %v", rollup.ErrDeserialize, err)
	}
	record, err := store.Get[rollup.SequencingInfoRecord](app.DB, store.SequencingInfoKey(p.Platform, p.ServiceProvider))
	if err != nil {
		return nil, mapStoreErr(err, "get_sequencing_info")
	}
	return record, nil
}

type debugGetRollupParams struct {
	RollupID string `json:"rollup_id"`
}

type debugGetRollupResult struct {
	Rollup rollup.Rollup `json:"rollup"`
}

// DebugGetRollup is the supplemented operator-debug getter from
// original_source's rpc/internal/debug/get_rollup.rs.
func DebugGetRollup(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p debugGetRollupParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("debug_get_rollup: %w: %v", rollup.ErrDeserialize, err)
	}
	rec, err := store.Get[rollup.Rollup](app.DB, store.RollupKey(p.RollupID))
	if err != nil {
		return nil, mapStoreErr(err, "debug_get_rollup")
	}
	return debugGetRollupResult{Rollup: rec}, nil
}

// mapStoreErr wraps a store.ErrNotFound as rollup.ErrNotFound (distinguished
// for the default-insert idiom in callers that need it) and everything else
// as rollup.ErrDatabase, per §7's propagation rules.
func mapStoreErr(err error, op string) error {
	if store.IsNotFound(err) {
		return fmt.Errorf("%s: %w", op, rollup.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, rollup.ErrDatabase)
}
