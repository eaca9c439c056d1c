// Copyright 2025 Certen Protocol

package rollup

import "golang.org/x/crypto/sha3"

// NextOrderHash advances the per-height order-hash chain:
// h_{i+1} = SHA3-256(h_i || raw_transaction_hash_i).
func NextOrderHash(previous Hash32, rawTransactionHash Hash32) Hash32 {
	h := sha3.New256()
	h.Write(previous[:])
	h.Write(rawTransactionHash[:])
	var out Hash32
	h.Sum(out[:0])
	return out
}
