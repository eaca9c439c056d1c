// Copyright 2025 Certen Protocol
//
// Cluster-surface handlers: the three replicated operations of §4.4 plus
// the finalize_block local hook of §4.5, grounded directly on
// original_source/src/task/block_builder.rs's finalize_block/sync_block
// height-advance-then-build sequence. Every write here is keyed by
// (rollup_id, height, order) or (rollup_id, height), so replaying the same
// message twice is a no-op (P4).

package rpcmethods

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/radiusxyz/sequencer/pkg/appstate"
	"github.com/radiusxyz/sequencer/pkg/logging"
	"github.com/radiusxyz/sequencer/pkg/replication"
	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/store"
)

var clusterLogger = logging.New("rpcmethods-cluster")

// hashRawTransaction computes the same Keccak-256 digest the block builder
// uses, so a synced raw transaction indexes under the identical hash key a
// locally-decrypted one would.
func hashRawTransaction(tx rollup.RawTransaction) [32]byte {
	return crypto.Keccak256Hash(tx.Data)
}

// SyncEncryptedTransaction applies a leader-forwarded admission to this
// follower's store: the envelope under both key forms, the commitment, and
// a tentative block-commitment cell keyed by (rollup, height, order).
func SyncEncryptedTransaction(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p replication.SyncEncryptedTransactionParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("sync_encrypted_transaction: %w: %v", rollup.ErrDeserialize, err)
	}
	m := p.Message

	rawHash, err := m.EncryptedTransaction.RawTransactionHash()
	if err != nil {
		return nil, err
	}
	if err := store.Put(app.DB, store.EncryptedTransactionByOrderKey(m.RollupID, m.RollupBlockHeight, m.TransactionOrder), m.EncryptedTransaction); err != nil {
		return nil, fmt.Errorf("sync_encrypted_transaction: %w", rollup.ErrDatabase)
	}
	if err := store.Put(app.DB, store.EncryptedTransactionByHashKey(m.RollupID, rawHash), m.EncryptedTransaction); err != nil {
		return nil, fmt.Errorf("sync_encrypted_transaction: %w", rollup.ErrDatabase)
	}
	if err := store.Put(app.DB, store.OrderCommitmentKey(m.RollupID, m.RollupBlockHeight, m.TransactionOrder), m.OrderCommitment); err != nil {
		return nil, fmt.Errorf("sync_encrypted_transaction: %w", rollup.ErrDatabase)
	}
	if err := store.Put(app.DB, store.TentativeCommitmentKey(m.RollupID, m.RollupBlockHeight, m.TransactionOrder), m.OrderHash); err != nil {
		return nil, fmt.Errorf("sync_encrypted_transaction: %w", rollup.ErrDatabase)
	}
	return nil, nil
}

// SyncRawTransaction applies a leader-pushed decrypted (or never-encrypted)
// transaction directly, letting a follower's block build skip both the
// gap-fill fetch and the decrypt step for this order.
func SyncRawTransaction(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p replication.SyncRawTransactionParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("sync_raw_transaction: %w: %v", rollup.ErrDeserialize, err)
	}
	m := p.Message

	if err := store.Put(app.DB, store.RawTransactionByOrderKey(m.RollupID, m.RollupBlockHeight, m.TransactionOrder), m.RawTransaction); err != nil {
		return nil, fmt.Errorf("sync_raw_transaction: %w", rollup.ErrDatabase)
	}
	hash := rollup.Hash32(hashRawTransaction(m.RawTransaction))
	if err := store.Put(app.DB, store.RawTransactionByHashKey(m.RollupID, hash), m.RawTransaction); err != nil {
		return nil, fmt.Errorf("sync_raw_transaction: %w", rollup.ErrDatabase)
	}
	return nil, nil
}

type syncBlockResult struct{}

// SyncBlock advances a follower's metadata to the next height and enqueues
// its own asynchronous block build for the finalized height, per §4.4.
func SyncBlock(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p replication.SyncBlockParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("sync_block: %w: %v", rollup.ErrDeserialize, err)
	}
	if err := advanceHeightAndBuild(context.Background(), app, p.Message.RollupID, p.Message.RollupBlockHeight, p.Message.PlatformBlockHeight, p.TransactionCount); err != nil {
		return nil, err
	}
	return syncBlockResult{}, nil
}

type finalizeBlockParams struct {
	Message          replication.SyncBlockMessage `json:"message"`
	Signature        rollup.HexBytes              `json:"signature"`
	TransactionCount uint64                       `json:"transaction_count"`
}

// FinalizeBlock is the leader's local hook (§4.5): it performs the same
// metadata advance as SyncBlock, fans the same event out to followers, and
// enqueues its own block build.
func FinalizeBlock(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p finalizeBlockParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("finalize_block: %w: %v", rollup.ErrDeserialize, err)
	}

	rollupRec, err := store.Get[rollup.Rollup](app.DB, store.RollupKey(p.Message.RollupID))
	if err != nil {
		return nil, mapStoreErr(err, "finalize_block")
	}
	if !rollupRec.HasExecutor(common.HexToAddress(p.Message.ExecutorAddress)) {
		return nil, fmt.Errorf("finalize_block: executor %s: %w", p.Message.ExecutorAddress, rollup.ErrNotFoundExecutorAddress)
	}

	finishedHeight, cluster, err := advanceHeightAndBuildWithCluster(context.Background(), app, p.Message.RollupID, p.Message.RollupBlockHeight, p.Message.PlatformBlockHeight, p.TransactionCount)
	if err != nil {
		return nil, err
	}

	urls := cluster.OthersRPCURLList()
	key := fmt.Sprintf("%s:%d", p.Message.RollupID, finishedHeight)
	syncParams := replication.SyncBlockParams{Message: p.Message, TransactionCount: p.TransactionCount}
	app.Fanout.SyncBlock(urls, key, syncParams)

	return nil, nil
}

// advanceHeightAndBuild is SyncBlock's body, shared with FinalizeBlock.
func advanceHeightAndBuild(ctx context.Context, app *appstate.AppState, rollupID string, rollupBlockHeight, platformBlockHeight, transactionCount uint64) error {
	_, _, err := advanceHeightAndBuildWithCluster(ctx, app, rollupID, rollupBlockHeight, platformBlockHeight, transactionCount)
	return err
}

// advanceHeightAndBuildWithCluster advances RollupMetadata from the message's
// rollupBlockHeight to rollupBlockHeight+1, enqueues an asynchronous block
// build for rollupBlockHeight with transactionCount transactions, and
// returns rollupBlockHeight plus the cluster snapshot used to decide
// leadership, so FinalizeBlock can reuse it for its own fan-out. The
// finished height is keyed off the replicated message rather than the
// follower's local metadata, so a lagging or freshly-joined follower still
// advances and builds the height the leader actually finalized.
func advanceHeightAndBuildWithCluster(ctx context.Context, app *appstate.AppState, rollupID string, rollupBlockHeight, platformBlockHeight, transactionCount uint64) (uint64, rollup.Cluster, error) {
	rollupRec, err := store.Get[rollup.Rollup](app.DB, store.RollupKey(rollupID))
	if err != nil {
		return 0, rollup.Cluster{}, mapStoreErr(err, "finalize")
	}

	handle, err := store.GetMutOr(app.DB, store.RollupMetadataKey(rollupID), func() rollup.RollupMetadata {
		return rollup.RollupMetadata{RollupID: rollupID, ClusterID: rollupRec.ClusterID, OrderHash: rollup.ZeroHash32}
	})
	if err != nil {
		return 0, rollup.Cluster{}, fmt.Errorf("finalize: %w", rollup.ErrDatabase)
	}

	finishedHeight := rollupBlockHeight
	nextHeight := finishedHeight + 1

	clusterKey := store.ClusterKey(string(rollupRec.Platform), string(rollupRec.ServiceProvider), rollupRec.ClusterID, platformBlockHeight)
	cluster, err := store.Get[rollup.Cluster](app.DB, clusterKey)
	if err != nil {
		handle.Discard()
		return 0, rollup.Cluster{}, fmt.Errorf("finalize: cluster %s: %w", rollupRec.ClusterID, rollup.ErrDatabase)
	}

	handle.Value.AdvanceHeight(nextHeight, cluster.IsLeader(nextHeight), platformBlockHeight)
	if err := handle.Update(); err != nil {
		return 0, rollup.Cluster{}, fmt.Errorf("finalize: persist metadata: %w", rollup.ErrDatabase)
	}

	go func() {
		if err := app.BlockBuilder.BuildBlock(ctx, rollupRec, finishedHeight, transactionCount, cluster); err != nil {
			clusterLogger.Printf("build block %s@%d: %v", rollupID, finishedHeight, err)
		}
	}()

	return finishedHeight, cluster, nil
}

type rawTransactionListParams struct {
	RollupID          string `json:"rollup_id"`
	RollupBlockHeight uint64 `json:"rollup_block_height"`
}

type rawTransactionListResult struct {
	RawTransactions []rollup.RawTransaction `json:"raw_transactions"`
}

// GetRawTransactionList lists every raw transaction admitted at
// (rollup_id, height), in order. Shared by the cluster and external
// surfaces.
func GetRawTransactionList(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p rawTransactionListParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("get_raw_transaction_list: %w: %v", rollup.ErrDeserialize, err)
	}
	txs, err := store.ScanPrefix[rollup.RawTransaction](app.DB, store.RawTransactionByHeightPrefix(p.RollupID, p.RollupBlockHeight))
	if err != nil {
		return nil, fmt.Errorf("get_raw_transaction_list: %w", rollup.ErrDatabase)
	}
	return rawTransactionListResult{RawTransactions: txs}, nil
}
