// Copyright 2025 Certen Protocol

package rollup

import (
	"encoding/json"
	"fmt"
)

// SignedOrderCommitmentData is the payload a Sign-type commitment's
// signature covers.
type SignedOrderCommitmentData struct {
	RollupID          string `json:"rollup_id"`
	BlockHeight       uint64 `json:"block_height"`
	TransactionOrder  uint64 `json:"transaction_order"`
	PreviousOrderHash Hash32 `json:"previous_order_hash"`
}

// SignedOrderCommitment is the Sign-variant payload: the data above plus the
// per-platform signer's signature over its canonical JSON encoding.
type SignedOrderCommitment struct {
	Data      SignedOrderCommitmentData `json:"data"`
	Signature HexBytes                  `json:"signature"`
}

// OrderCommitment is the tagged union handed back to a submitter: either a
// bare hex-encoded transaction hash, or a signed receipt over the ordering
// witness.
type OrderCommitment struct {
	Type            OrderCommitmentType
	TransactionHash string
	Sign            *SignedOrderCommitment
}

func (c OrderCommitment) MarshalJSON() ([]byte, error) {
	switch c.Type {
	case OrderCommitmentTypeTransactionHash:
		return json.Marshal(struct {
			Type            OrderCommitmentType `json:"type"`
			TransactionHash string               `json:"transaction_hash"`
		}{c.Type, c.TransactionHash})
	case OrderCommitmentTypeSign:
		return json.Marshal(struct {
			Type OrderCommitmentType `json:"type"`
			*SignedOrderCommitment
		}{c.Type, c.Sign})
	default:
		return nil, fmt.Errorf("order commitment: %w: unknown variant %q", ErrDeserialize, c.Type)
	}
}

func (c *OrderCommitment) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type OrderCommitmentType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	c.Type = tag.Type
	switch tag.Type {
	case OrderCommitmentTypeTransactionHash:
		var v struct {
			TransactionHash string `json:"transaction_hash"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrDeserialize, err)
		}
		c.TransactionHash = v.TransactionHash
	case OrderCommitmentTypeSign:
		var v SignedOrderCommitment
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrDeserialize, err)
		}
		c.Sign = &v
	default:
		return fmt.Errorf("order commitment: %w: unknown variant %q", ErrDeserialize, tag.Type)
	}
	return nil
}
