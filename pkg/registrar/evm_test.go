// Copyright 2025 Certen Protocol
//
// EVMRegistrar Construction Tests

package registrar

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

const minimalEVMABI = `[{"type":"function","name":"registerBlockCommitment","inputs":[],"outputs":[]}]`

func TestNewEVMRegistrar_RejectsMalformedABI(t *testing.T) {
	_, err := NewEVMRegistrar("http://127.0.0.1:1", 1, common.Address{}, `not json`, "registerBlockCommitment", testPrivateKeyHex, 100000)
	if err == nil {
		t.Error("expected error for malformed contract ABI, got nil")
	}
}

func TestNewEVMRegistrar_RejectsMalformedSigningKey(t *testing.T) {
	_, err := NewEVMRegistrar("http://127.0.0.1:1", 1, common.Address{}, minimalEVMABI, "registerBlockCommitment", "not-a-key", 100000)
	if err == nil {
		t.Error("expected error for malformed signing key, got nil")
	}
}

func TestNewEVMRegistrar_SucceedsWithValidInputs(t *testing.T) {
	r, err := NewEVMRegistrar("http://127.0.0.1:1", 1, common.Address{}, minimalEVMABI, "registerBlockCommitment", testPrivateKeyHex, 100000)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if r.fromAddress == (common.Address{}) {
		t.Error("expected a derived from-address, got the zero address")
	}
}

const testPrivateKeyHex = "0000000000000000000000000000000000000000000000000000000000000001"
