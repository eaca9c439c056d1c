// Copyright 2025 Certen Protocol
//
// PVDE (time-lock-puzzle encryption) decryption is unimplemented in the
// current core, per spec.md §9's open question: "the local (non-Ethereum)
// platform is unimplemented!; callers MUST surface a clear error." No real
// zero-knowledge proving library is wired here because nothing calls one.

package pvde

import (
	"fmt"

	"github.com/radiusxyz/sequencer/pkg/rollup"
)

// Decryptor always fails. It exists so the block builder's dispatch on
// encrypted_transaction_type has a concrete Pvde branch to call rather than
// a missing-case panic.
type Decryptor struct{}

// New returns the stub PVDE decryptor.
func New() *Decryptor {
	return &Decryptor{}
}

// Decrypt always returns ErrUnimplemented.
func (*Decryptor) Decrypt(envelope *rollup.PvdeEnvelope) ([]byte, error) {
	return nil, fmt.Errorf("pvde: time-lock-puzzle decryption: %w", rollup.ErrUnimplemented)
}
