// Copyright 2025 Certen Protocol
//
// External-surface handlers: the end-user-facing admission and lookup
// methods of §4.3 and §6's External row.

package rpcmethods

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/radiusxyz/sequencer/pkg/appstate"
	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/store"
)

type sendEncryptedTransactionParams struct {
	RollupID             string                      `json:"rollup_id"`
	EncryptedTransaction rollup.EncryptedTransaction `json:"encrypted_transaction"`
}

// SendEncryptedTransaction implements §4.3's admission algorithm.
func SendEncryptedTransaction(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p sendEncryptedTransactionParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("send_encrypted_transaction: %w: %v", rollup.ErrDeserialize, err)
	}
	return app.Ordering.SendEncryptedTransaction(ctx, p.RollupID, p.EncryptedTransaction)
}

type sendRawTransactionParams struct {
	RollupID string `json:"rollup_id"`
	Data     []byte `json:"data"`
}

// SendRawTransaction is the supplemented admission path for
// encrypted_transaction_type = none rollups.
func SendRawTransaction(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p sendRawTransactionParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("send_raw_transaction: %w: %v", rollup.ErrDeserialize, err)
	}
	return app.Ordering.SendRawTransaction(ctx, p.RollupID, p.Data)
}

type byHashParams struct {
	RollupID           string        `json:"rollup_id"`
	RawTransactionHash rollup.Hash32 `json:"raw_transaction_hash"`
}

type byOrderParams struct {
	RollupID          string `json:"rollup_id"`
	RollupBlockHeight uint64 `json:"rollup_block_height"`
	TransactionOrder  uint64 `json:"transaction_order"`
}

// GetEncryptedTransactionWithTransactionHash looks up an admitted envelope
// by its plaintext raw-transaction hash.
func GetEncryptedTransactionWithTransactionHash(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p byHashParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("get_encrypted_transaction_with_transaction_hash: %w: %v", rollup.ErrDeserialize, err)
	}
	tx, err := store.Get[rollup.EncryptedTransaction](app.DB, store.EncryptedTransactionByHashKey(p.RollupID, p.RawTransactionHash))
	if err != nil {
		return nil, mapStoreErr(err, "get_encrypted_transaction_with_transaction_hash")
	}
	return tx, nil
}

// GetEncryptedTransactionWithOrderCommitment looks up an admitted envelope
// by (rollup, height, order). This is the method name block-builder
// gap-fill fetches call against peers.
func GetEncryptedTransactionWithOrderCommitment(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p byOrderParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("get_encrypted_transaction_with_order_commitment: %w: %v", rollup.ErrDeserialize, err)
	}
	tx, err := store.Get[rollup.EncryptedTransaction](app.DB, store.EncryptedTransactionByOrderKey(p.RollupID, p.RollupBlockHeight, p.TransactionOrder))
	if err != nil {
		return nil, mapStoreErr(err, "get_encrypted_transaction_with_order_commitment")
	}
	return tx, nil
}

// GetRawTransactionWithTransactionHash looks up a decrypted transaction by
// its hash.
func GetRawTransactionWithTransactionHash(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p byHashParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("get_raw_transaction_with_transaction_hash: %w: %v", rollup.ErrDeserialize, err)
	}
	tx, err := store.Get[rollup.RawTransaction](app.DB, store.RawTransactionByHashKey(p.RollupID, p.RawTransactionHash))
	if err != nil {
		return nil, mapStoreErr(err, "get_raw_transaction_with_transaction_hash")
	}
	return tx, nil
}

// GetRawTransactionWithOrderCommitment looks up a decrypted transaction by
// (rollup, height, order).
func GetRawTransactionWithOrderCommitment(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p byOrderParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("get_raw_transaction_with_order_commitment: %w: %v", rollup.ErrDeserialize, err)
	}
	tx, err := store.Get[rollup.RawTransaction](app.DB, store.RawTransactionByOrderKey(p.RollupID, p.RollupBlockHeight, p.TransactionOrder))
	if err != nil {
		return nil, mapStoreErr(err, "get_raw_transaction_with_order_commitment")
	}
	return tx, nil
}

// GetOrderCommitment looks up the commitment issued for (rollup, height,
// order).
func GetOrderCommitment(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p byOrderParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("get_order_commitment: %w: %v", rollup.ErrDeserialize, err)
	}
	commitment, err := store.Get[rollup.OrderCommitment](app.DB, store.OrderCommitmentKey(p.RollupID, p.RollupBlockHeight, p.TransactionOrder))
	if err != nil {
		return nil, mapStoreErr(err, "get_order_commitment")
	}
	return commitment, nil
}

type rollupIDParams struct {
	RollupID string `json:"rollup_id"`
}

// GetRollup looks up the immutable rollup record.
func GetRollup(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p rollupIDParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("get_rollup: %w: %v", rollup.ErrDeserialize, err)
	}
	rec, err := store.Get[rollup.Rollup](app.DB, store.RollupKey(p.RollupID))
	if err != nil {
		return nil, mapStoreErr(err, "get_rollup")
	}
	return rec, nil
}

// GetRollupMetadata looks up the mutable per-rollup counter record.
func GetRollupMetadata(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p rollupIDParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("get_rollup_metadata: %w: %v", rollup.ErrDeserialize, err)
	}
	meta, err := store.Get[rollup.RollupMetadata](app.DB, store.RollupMetadataKey(p.RollupID))
	if err != nil {
		return nil, mapStoreErr(err, "get_rollup_metadata")
	}
	return meta, nil
}

type getBlockParams struct {
	RollupID          string `json:"rollup_id"`
	RollupBlockHeight uint64 `json:"rollup_block_height"`
}

// GetBlock looks up the finalized block record for (rollup, height).
func GetBlock(ctx context.Context, app *appstate.AppState, raw json.RawMessage) (any, error) {
	var p getBlockParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("get_block: %w: %v", rollup.ErrDeserialize, err)
	}
	block, err := store.Get[rollup.Block](app.DB, store.BlockKey(p.RollupID, p.RollupBlockHeight))
	if err != nil {
		return nil, mapStoreErr(err, "get_block")
	}
	return block, nil
}
