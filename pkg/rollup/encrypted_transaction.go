// Copyright 2025 Certen Protocol
//
// EncryptedTransaction is a closed tagged union (Pvde | Skde), represented
// as a Go struct with a Type discriminator and hand-written JSON
// marshaling, per the tagged-variants-over-inheritance design note: dispatch
// on the tag, never subclass.

package rollup

import (
	"encoding/json"
	"fmt"
)

// PvdeEnvelope is the time-lock-puzzle variant. The decryption path is a
// stub (pkg/pvde always returns ErrUnimplemented); the envelope shape is
// carried so admission and replication are symmetric across variants.
type PvdeEnvelope struct {
	RawTransactionHash Hash32   `json:"raw_transaction_hash"`
	Payload            HexBytes `json:"payload"`
	TimeLockPuzzle     HexBytes `json:"time_lock_puzzle"`
}

// SkdeEnvelope is the threshold-decryption variant. KeyID selects the
// distributed-key-generation key the block builder fetches at decrypt time.
type SkdeEnvelope struct {
	RawTransactionHash Hash32   `json:"raw_transaction_hash"`
	Payload            HexBytes `json:"payload"`
	KeyID              string   `json:"key_id"`
}

// EncryptedTransaction is the tagged union stored by the ordering pipeline.
type EncryptedTransaction struct {
	Type EncryptedTransactionType
	Pvde *PvdeEnvelope
	Skde *SkdeEnvelope
}

// RawTransactionHash returns the plaintext-transaction hash transmitted in
// the envelope's open part, the value the order-hash chain commits to
// before decryption ever happens.
func (e *EncryptedTransaction) RawTransactionHash() (Hash32, error) {
	switch e.Type {
	case EncryptedTransactionTypePvde:
		if e.Pvde == nil {
			return Hash32{}, fmt.Errorf("encrypted transaction: %w: pvde variant missing payload", ErrDeserialize)
		}
		return e.Pvde.RawTransactionHash, nil
	case EncryptedTransactionTypeSkde:
		if e.Skde == nil {
			return Hash32{}, fmt.Errorf("encrypted transaction: %w: skde variant missing payload", ErrDeserialize)
		}
		return e.Skde.RawTransactionHash, nil
	default:
		return Hash32{}, fmt.Errorf("encrypted transaction: %w: unknown variant %q", ErrDeserialize, e.Type)
	}
}

func (e EncryptedTransaction) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EncryptedTransactionTypePvde:
		return json.Marshal(struct {
			Type EncryptedTransactionType `json:"type"`
			*PvdeEnvelope
		}{e.Type, e.Pvde})
	case EncryptedTransactionTypeSkde:
		return json.Marshal(struct {
			Type EncryptedTransactionType `json:"type"`
			*SkdeEnvelope
		}{e.Type, e.Skde})
	default:
		return nil, fmt.Errorf("encrypted transaction: %w: unknown variant %q", ErrDeserialize, e.Type)
	}
}

func (e *EncryptedTransaction) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type EncryptedTransactionType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	e.Type = tag.Type
	switch tag.Type {
	case EncryptedTransactionTypePvde:
		var v PvdeEnvelope
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrDeserialize, err)
		}
		e.Pvde = &v
	case EncryptedTransactionTypeSkde:
		var v SkdeEnvelope
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrDeserialize, err)
		}
		e.Skde = &v
	default:
		return fmt.Errorf("encrypted transaction: %w: unknown variant %q", ErrDeserialize, tag.Type)
	}
	return nil
}
