// Copyright 2025 Certen Protocol
//
// Pipeline implements the leader-only ordering admission path, grounded on
// original_source/src/rpc/external/send_encrypted_transaction.rs: load the
// rollup, acquire the metadata lock, either forward to the leader (follower)
// or chain the order hash and issue a commitment (leader), fan out, return.

package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/radiusxyz/sequencer/pkg/replication"
	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/rpcclient"
	"github.com/radiusxyz/sequencer/pkg/signer"
	"github.com/radiusxyz/sequencer/pkg/store"
)

const (
	methodSendEncryptedTransaction = "send_encrypted_transaction"
	methodSendRawTransaction       = "send_raw_transaction"
)

// Pipeline is the per-node ordering admission entry point shared by the
// external RPC handler.
type Pipeline struct {
	DB      *store.DB
	Signers *signer.Cache
	Fanout  *replication.Fanout
	Client  *rpcclient.Client
}

// New builds a Pipeline over the given shared dependencies.
func New(db *store.DB, signers *signer.Cache, fanout *replication.Fanout, client *rpcclient.Client) *Pipeline {
	return &Pipeline{DB: db, Signers: signers, Fanout: fanout, Client: client}
}

type sendEncryptedTransactionParams struct {
	RollupID             string                      `json:"rollup_id"`
	EncryptedTransaction rollup.EncryptedTransaction `json:"encrypted_transaction"`
}

// SendEncryptedTransaction implements spec §4.3 steps 1-9.
func (p *Pipeline) SendEncryptedTransaction(ctx context.Context, rollupID string, tx rollup.EncryptedTransaction) (rollup.OrderCommitment, error) {
	var zero rollup.OrderCommitment

	rollupRec, err := store.Get[rollup.Rollup](p.DB, store.RollupKey(rollupID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return zero, fmt.Errorf("ordering: rollup %s: %w", rollupID, rollup.ErrNotFound)
		}
		return zero, fmt.Errorf("ordering: rollup %s: %w", rollupID, rollup.ErrDatabase)
	}
	if tx.Type != rollupRec.EncryptedTransactionType {
		return zero, fmt.Errorf("ordering: rollup %s expects %s, got %s: %w",
			rollupID, rollupRec.EncryptedTransactionType, tx.Type, rollup.ErrUnsupportedEncryptedMempool)
	}

	handle, err := store.GetMutOr(p.DB, store.RollupMetadataKey(rollupID), func() rollup.RollupMetadata {
		return rollup.RollupMetadata{RollupID: rollupID, ClusterID: rollupRec.ClusterID, OrderHash: rollup.ZeroHash32}
	})
	if err != nil {
		return zero, fmt.Errorf("ordering: metadata %s: %w", rollupID, rollup.ErrDatabase)
	}

	clusterKey := store.ClusterKey(string(rollupRec.Platform), string(rollupRec.ServiceProvider), handle.Value.ClusterID, handle.Value.PlatformBlockHeight)
	clusterRec, err := store.Get[rollup.Cluster](p.DB, clusterKey)
	if err != nil {
		handle.Discard()
		return zero, fmt.Errorf("ordering: cluster %s: %w", handle.Value.ClusterID, rollup.ErrDatabase)
	}

	if !handle.Value.IsLeader {
		height := handle.Value.RollupBlockHeight
		handle.Discard()
		return p.forwardToLeader(ctx, &clusterRec, height, rollupID, tx)
	}

	// Leader path, under lock: steps 5a-5d.
	rawHash, err := tx.RawTransactionHash()
	if err != nil {
		handle.Discard()
		return zero, err
	}
	order := handle.Value.TransactionOrder
	previousOrderHash := handle.Value.OrderHash
	newOrderHash := rollup.NextOrderHash(previousOrderHash, rawHash)
	height := handle.Value.RollupBlockHeight

	handle.Value.TransactionOrder = order + 1
	handle.Value.OrderHash = newOrderHash
	if err := handle.Update(); err != nil {
		return zero, fmt.Errorf("ordering: persist metadata %s: %w", rollupID, rollup.ErrDatabase)
	}

	// Signing and persistence may run outside the lock: (order,
	// previous_order_hash) are now stable witnesses.
	commitment, err := p.issueCommitment(rollupRec, height, order, previousOrderHash, rawHash)
	if err != nil {
		return zero, err
	}

	if err := store.Put(p.DB, store.EncryptedTransactionByOrderKey(rollupID, height, order), tx); err != nil {
		return zero, fmt.Errorf("ordering: persist envelope: %w", rollup.ErrDatabase)
	}
	if err := store.Put(p.DB, store.EncryptedTransactionByHashKey(rollupID, rawHash), tx); err != nil {
		return zero, fmt.Errorf("ordering: persist envelope: %w", rollup.ErrDatabase)
	}
	if err := store.Put(p.DB, store.OrderCommitmentKey(rollupID, height, order), commitment); err != nil {
		return zero, fmt.Errorf("ordering: persist commitment: %w", rollup.ErrDatabase)
	}

	p.fanOut(rollupRec, clusterRec, rollupID, height, order, tx, commitment, newOrderHash)

	return commitment, nil
}

func (p *Pipeline) issueCommitment(rollupRec rollup.Rollup, height, order uint64, previousOrderHash, rawHash rollup.Hash32) (rollup.OrderCommitment, error) {
	var zero rollup.OrderCommitment
	switch rollupRec.OrderCommitmentType {
	case rollup.OrderCommitmentTypeTransactionHash:
		return rollup.OrderCommitment{
			Type:            rollup.OrderCommitmentTypeTransactionHash,
			TransactionHash: rawHash.String(),
		}, nil
	case rollup.OrderCommitmentTypeSign:
		data := rollup.SignedOrderCommitmentData{
			RollupID:          rollupRec.RollupID,
			BlockHeight:       height,
			TransactionOrder:  order,
			PreviousOrderHash: previousOrderHash,
		}
		s, err := p.Signers.Get(rollupRec.Platform)
		if err != nil {
			return zero, fmt.Errorf("ordering: %w: %v", rollup.ErrSignature, err)
		}
		sig, err := s.SignOrderCommitment(data)
		if err != nil {
			return zero, err
		}
		return rollup.OrderCommitment{
			Type: rollup.OrderCommitmentTypeSign,
			Sign: &rollup.SignedOrderCommitment{Data: data, Signature: sig},
		}, nil
	default:
		return zero, fmt.Errorf("ordering: rollup %s: %w: unknown order commitment type %q", rollupRec.RollupID, rollup.ErrDeserialize, rollupRec.OrderCommitmentType)
	}
}

func (p *Pipeline) forwardToLeader(ctx context.Context, cluster *rollup.Cluster, height uint64, rollupID string, tx rollup.EncryptedTransaction) (rollup.OrderCommitment, error) {
	var zero rollup.OrderCommitment
	leaderURL, err := cluster.LeaderRPCURL(height)
	if err != nil {
		return zero, err
	}
	var commitment rollup.OrderCommitment
	params := sendEncryptedTransactionParams{RollupID: rollupID, EncryptedTransaction: tx}
	if err := p.Client.Call(ctx, leaderURL, methodSendEncryptedTransaction, params, &commitment); err != nil {
		return zero, fmt.Errorf("ordering: forward to leader %s: %w: %v", leaderURL, rollup.ErrNetwork, err)
	}
	return commitment, nil
}

func (p *Pipeline) fanOut(rollupRec rollup.Rollup, cluster rollup.Cluster, rollupID string, height, order uint64, tx rollup.EncryptedTransaction, commitment rollup.OrderCommitment, newOrderHash rollup.Hash32) {
	urls := cluster.OthersRPCURLList()
	key := fmt.Sprintf("%s:%d:%d", rollupID, height, order)
	message := replication.SyncEncryptedTransactionMessage{
		RollupID:             rollupID,
		RollupBlockHeight:    height,
		TransactionOrder:     order,
		EncryptedTransaction: tx,
		OrderCommitment:      commitment,
		OrderHash:            newOrderHash,
	}
	params := replication.SyncEncryptedTransactionParams{Message: message}
	if s, err := p.Signers.Get(rollupRec.Platform); err == nil {
		if sig, err := s.Sign(message.OrderHash[:]); err == nil {
			params.Signature = sig
		}
	}
	p.Fanout.SyncEncryptedTransaction(urls, key, params)
}

type sendRawTransactionParams struct {
	RollupID string `json:"rollup_id"`
	Data     []byte `json:"data"`
}

// SendRawTransaction is the supplemented admission path for rollups whose
// encrypted_transaction_type is None: the same leader/follower, order-hash
// chaining and commitment-issuance algorithm as SendEncryptedTransaction,
// applied directly to a plaintext envelope instead of a decrypt-later one.
func (p *Pipeline) SendRawTransaction(ctx context.Context, rollupID string, data []byte) (rollup.OrderCommitment, error) {
	var zero rollup.OrderCommitment

	rollupRec, err := store.Get[rollup.Rollup](p.DB, store.RollupKey(rollupID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return zero, fmt.Errorf("ordering: rollup %s: %w", rollupID, rollup.ErrNotFound)
		}
		return zero, fmt.Errorf("ordering: rollup %s: %w", rollupID, rollup.ErrDatabase)
	}
	if rollupRec.EncryptedTransactionType != rollup.EncryptedTransactionTypeNone {
		return zero, fmt.Errorf("ordering: rollup %s requires %s envelopes, not a bare raw transaction: %w",
			rollupID, rollupRec.EncryptedTransactionType, rollup.ErrUnsupportedEncryptedMempool)
	}

	handle, err := store.GetMutOr(p.DB, store.RollupMetadataKey(rollupID), func() rollup.RollupMetadata {
		return rollup.RollupMetadata{RollupID: rollupID, ClusterID: rollupRec.ClusterID, OrderHash: rollup.ZeroHash32}
	})
	if err != nil {
		return zero, fmt.Errorf("ordering: metadata %s: %w", rollupID, rollup.ErrDatabase)
	}

	clusterKey := store.ClusterKey(string(rollupRec.Platform), string(rollupRec.ServiceProvider), handle.Value.ClusterID, handle.Value.PlatformBlockHeight)
	clusterRec, err := store.Get[rollup.Cluster](p.DB, clusterKey)
	if err != nil {
		handle.Discard()
		return zero, fmt.Errorf("ordering: cluster %s: %w", handle.Value.ClusterID, rollup.ErrDatabase)
	}

	if !handle.Value.IsLeader {
		height := handle.Value.RollupBlockHeight
		handle.Discard()
		return p.forwardRawToLeader(ctx, &clusterRec, height, rollupID, data)
	}

	rawHash := rollup.Hash32(crypto.Keccak256Hash(data))
	order := handle.Value.TransactionOrder
	previousOrderHash := handle.Value.OrderHash
	newOrderHash := rollup.NextOrderHash(previousOrderHash, rawHash)
	height := handle.Value.RollupBlockHeight

	handle.Value.TransactionOrder = order + 1
	handle.Value.OrderHash = newOrderHash
	if err := handle.Update(); err != nil {
		return zero, fmt.Errorf("ordering: persist metadata %s: %w", rollupID, rollup.ErrDatabase)
	}

	commitment, err := p.issueCommitment(rollupRec, height, order, previousOrderHash, rawHash)
	if err != nil {
		return zero, err
	}

	rawTx := rollup.RawTransaction{RollupID: rollupID, Data: data}
	if err := store.Put(p.DB, store.RawTransactionByOrderKey(rollupID, height, order), rawTx); err != nil {
		return zero, fmt.Errorf("ordering: persist raw transaction: %w", rollup.ErrDatabase)
	}
	if err := store.Put(p.DB, store.RawTransactionByHashKey(rollupID, rawHash), rawTx); err != nil {
		return zero, fmt.Errorf("ordering: persist raw transaction: %w", rollup.ErrDatabase)
	}
	if err := store.Put(p.DB, store.OrderCommitmentKey(rollupID, height, order), commitment); err != nil {
		return zero, fmt.Errorf("ordering: persist commitment: %w", rollup.ErrDatabase)
	}

	p.fanOutRaw(rollupRec, clusterRec, rollupID, height, order, rawTx)

	return commitment, nil
}

func (p *Pipeline) forwardRawToLeader(ctx context.Context, cluster *rollup.Cluster, height uint64, rollupID string, data []byte) (rollup.OrderCommitment, error) {
	var zero rollup.OrderCommitment
	leaderURL, err := cluster.LeaderRPCURL(height)
	if err != nil {
		return zero, err
	}
	var commitment rollup.OrderCommitment
	params := sendRawTransactionParams{RollupID: rollupID, Data: data}
	if err := p.Client.Call(ctx, leaderURL, methodSendRawTransaction, params, &commitment); err != nil {
		return zero, fmt.Errorf("ordering: forward to leader %s: %w: %v", leaderURL, rollup.ErrNetwork, err)
	}
	return commitment, nil
}

func (p *Pipeline) fanOutRaw(rollupRec rollup.Rollup, cluster rollup.Cluster, rollupID string, height, order uint64, rawTx rollup.RawTransaction) {
	urls := cluster.OthersRPCURLList()
	key := fmt.Sprintf("%s:%d:%d", rollupID, height, order)
	message := replication.SyncRawTransactionMessage{
		RollupID:          rollupID,
		RollupBlockHeight: height,
		TransactionOrder:  order,
		RawTransaction:    rawTx,
	}
	params := replication.SyncRawTransactionParams{Message: message}
	if s, err := p.Signers.Get(rollupRec.Platform); err == nil {
		if sig, err := s.Sign(rawTx.Data); err == nil {
			params.Signature = sig
		}
	}
	p.Fanout.SyncRawTransaction(urls, key, params)
}
