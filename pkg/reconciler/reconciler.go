// Copyright 2025 Certen Protocol
//
// Reconciler runs one supervised subscription task per (platform,
// service_provider) liveness contract, translating on-chain new-block
// events into Cluster snapshots and Rollup records. Grounded on spec.md
// §4.2 directly; the respawn-on-fault supervisor loop follows the shape of
// the teacher's pkg/consensus/health_monitor.go ConsensusHealthMonitor
// (ticking loop, context-cancellable, logged restarts), generalized from a
// fixed check interval to a subscribed event stream with a fixed 5-second
// respawn backoff.

package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"

	"github.com/radiusxyz/sequencer/pkg/liveness"
	"github.com/radiusxyz/sequencer/pkg/logging"
	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/seeder"
	"github.com/radiusxyz/sequencer/pkg/store"
)

const respawnDelay = 5 * time.Second

// defaultBlockMargin bounds the sliding window of cluster snapshots kept per
// cluster; heights older than current-blockMargin are pruned.
const defaultBlockMargin = 256

// Reconciler owns the reconciliation loop for every liveness client it is
// asked to supervise.
type Reconciler struct {
	DB     *store.DB
	Seeder *seeder.Client
	logger *log.Logger
}

// New builds a Reconciler over shared dependencies.
func New(db *store.DB, seederClient *seeder.Client) *Reconciler {
	return &Reconciler{DB: db, Seeder: seederClient, logger: nil}
}

// Supervise runs client's block subscription until ctx is cancelled,
// respawning it 5 seconds after any fault. nodeAddress is this node's
// on-chain address under client's platform, used to compute my_index.
func (r *Reconciler) Supervise(ctx context.Context, client *liveness.Client, nodeAddress common.Address) {
	logger := logging.New(fmt.Sprintf("reconciler-%s-%s", client.Platform(), client.ServiceProvider()))
	back := backoff.NewConstantBackOff(respawnDelay)

	for {
		if ctx.Err() != nil {
			return
		}
		if err := r.run(ctx, client, nodeAddress, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("subscription task faulted, respawning in %s: %v", respawnDelay, err)
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(back.NextBackOff()):
		}
	}
}

func (r *Reconciler) run(ctx context.Context, client *liveness.Client, nodeAddress common.Address, logger *log.Logger) error {
	headers, sub, err := client.BlockStream(ctx)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return err
		case header := <-headers:
			r.reconcileHeight(ctx, client, nodeAddress, header.Number.Uint64(), logger)
		}
	}
}

func (r *Reconciler) reconcileHeight(ctx context.Context, client *liveness.Client, nodeAddress common.Address, platformHeight uint64, logger *log.Logger) {
	clusterIDs, err := client.GetClusterIDList(ctx, nodeAddress)
	if err != nil {
		logger.Printf("get_cluster_id_list at height %d: %v", platformHeight, err)
		return
	}

	for _, clusterID := range clusterIDs {
		if err := r.reconcileCluster(ctx, client, nodeAddress, clusterID, platformHeight); err != nil {
			logger.Printf("reconcile cluster %s at height %d: %v", clusterID, platformHeight, err)
			continue
		}
	}
}

func (r *Reconciler) reconcileCluster(ctx context.Context, client *liveness.Client, nodeAddress common.Address, clusterID string, platformHeight uint64) error {
	sequencers, err := client.GetSequencerList(ctx, clusterID, platformHeight)
	if err != nil {
		return fmt.Errorf("get_sequencer_list: %w", err)
	}

	myIndex := -1
	for i, addr := range sequencers {
		if addr == nodeAddress {
			myIndex = i
			break
		}
	}

	rollupInfos, err := client.GetRollupInfoList(ctx, clusterID, platformHeight)
	if err != nil {
		return fmt.Errorf("get_rollup_info_list: %w", err)
	}

	rollupIDList := make([]string, 0, len(rollupInfos))
	for _, info := range rollupInfos {
		rollupIDList = append(rollupIDList, info.RollupID)
		if err := r.upsertRollup(clusterID, client.Platform(), client.ServiceProvider(), info); err != nil {
			return fmt.Errorf("upsert rollup %s: %w", info.RollupID, err)
		}
	}

	urls, err := r.Seeder.ResolveAll(ctx, sequencers)
	if err != nil {
		return fmt.Errorf("resolve sequencer rpc urls: %w", err)
	}

	snapshot := rollup.Cluster{
		Platform:            client.Platform(),
		ServiceProvider:     client.ServiceProvider(),
		ClusterID:           clusterID,
		PlatformBlockHeight: platformHeight,
		SequencerRPCURLList: urls,
		RollupIDList:        rollupIDList,
		MyIndex:             myIndex,
		BlockMargin:         defaultBlockMargin,
	}
	if err := store.Put(r.DB, store.ClusterKey(string(client.Platform()), string(client.ServiceProvider()), clusterID, platformHeight), snapshot); err != nil {
		return fmt.Errorf("persist cluster snapshot: %w", err)
	}

	r.pruneStaleSnapshots(string(client.Platform()), string(client.ServiceProvider()), clusterID, platformHeight)
	return nil
}

// upsertRollup inserts a fresh Rollup record deriving
// encrypted_transaction_type = Skde by default, or merges only the executor
// list into an existing record — the rest of a Rollup's fields are
// write-once per spec.md §3. platform/serviceProvider come from the liveness
// client the rollup was observed on, since a Rollup's ValidationInfo and its
// own Platform/ServiceProvider must match the cluster snapshot key the
// ordering pipeline and cluster sync handlers look it up by.
func (r *Reconciler) upsertRollup(clusterID string, platform rollup.Platform, serviceProvider rollup.ServiceProvider, info liveness.RollupInfo) error {
	key := store.RollupKey(info.RollupID)
	existing, err := store.Get[rollup.Rollup](r.DB, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		fresh := rollup.Rollup{
			RollupID:                 info.RollupID,
			ClusterID:                clusterID,
			Platform:                 platform,
			ServiceProvider:          serviceProvider,
			RollupType:               info.RollupType,
			EncryptedTransactionType: rollup.EncryptedTransactionTypeSkde,
			OrderCommitmentType:      rollup.OrderCommitmentType(info.OrderCommitmentType),
			Owner:                    info.Owner,
			ValidationInfo: rollup.ValidationInfo{
				Platform:              platform,
				ServiceProvider:       serviceProvider,
				ServiceManagerAddress: info.ServiceManagerAddress,
			},
			ExecutorAddressList: info.ExecutorAddresses,
		}
		return store.Put(r.DB, key, fresh)
	}

	existing.ExecutorAddressList = mergeExecutors(existing.ExecutorAddressList, info.ExecutorAddresses)
	return store.Put(r.DB, key, existing)
}

func mergeExecutors(current, incoming []common.Address) []common.Address {
	seen := make(map[common.Address]bool, len(current))
	out := make([]common.Address, 0, len(current)+len(incoming))
	for _, a := range current {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	for _, a := range incoming {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}

func (r *Reconciler) pruneStaleSnapshots(platform, serviceProvider, clusterID string, platformHeight uint64) {
	if platformHeight < defaultBlockMargin {
		return
	}
	threshold := platformHeight - defaultBlockMargin

	keys, err := store.ScanKeys(r.DB, store.ClusterPrefix(platform, serviceProvider, clusterID))
	if err != nil {
		return
	}
	for _, key := range keys {
		if store.ClusterKeyHeight(key) < threshold {
			_ = store.Delete(r.DB, key)
		}
	}
}
