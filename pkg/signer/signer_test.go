// Copyright 2025 Certen Protocol
//
// Signer Tests

package signer

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/radiusxyz/sequencer/pkg/rollup"
)

const testPrivateKeyHex = "0000000000000000000000000000000000000000000000000000000000000001"

func TestNew_RejectsMalformedKey(t *testing.T) {
	if _, err := New("not-a-hex-key"); err == nil {
		t.Error("expected error for malformed private key, got nil")
	}
}

func TestNew_AcceptsBareAndPrefixedHex(t *testing.T) {
	bare, err := New("0000000000000000000000000000000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("bare: %v", err)
	}
	prefixed, err := New("0x0000000000000000000000000000000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("prefixed: %v", err)
	}
	if bare.Address() != prefixed.Address() {
		t.Errorf("addresses differ for the same key: %v vs %v", bare.Address(), prefixed.Address())
	}
}

func TestSign_ProducesRecoverableSignature(t *testing.T) {
	s, err := New(testPrivateKeyHex)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	data := []byte("order commitment payload")

	sig, err := s.Sign(data)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	digest := crypto.Keccak256(data)
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		t.Fatalf("recover pubkey: %v", err)
	}
	if got := crypto.PubkeyToAddress(*pub); got != s.Address() {
		t.Errorf("recovered address %v, want %v", got, s.Address())
	}
}

func TestSign_DifferentDataProducesDifferentSignatures(t *testing.T) {
	s, err := New(testPrivateKeyHex)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sig1, err := s.Sign([]byte("a"))
	if err != nil {
		t.Fatalf("sign a: %v", err)
	}
	sig2, err := s.Sign([]byte("b"))
	if err != nil {
		t.Fatalf("sign b: %v", err)
	}
	if bytes.Equal(sig1, sig2) {
		t.Error("expected distinct signatures for distinct payloads")
	}
}

func TestSignOrderCommitment_IsDeterministicForEqualData(t *testing.T) {
	s, err := New(testPrivateKeyHex)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	data := rollup.SignedOrderCommitmentData{
		RollupID:         "rollup-1",
		BlockHeight:      3,
		TransactionOrder: 2,
	}

	sig1, err := s.SignOrderCommitment(data)
	if err != nil {
		t.Fatalf("sign 1: %v", err)
	}
	sig2, err := s.SignOrderCommitment(data)
	if err != nil {
		t.Fatalf("sign 2: %v", err)
	}
	if !bytes.Equal(sig1, sig2) {
		t.Error("expected identical signatures for canonically identical payloads")
	}
}

func TestCache_GetCachesAcrossCalls(t *testing.T) {
	cache := NewCache(map[rollup.Platform]string{rollup.PlatformEthereum: testPrivateKeyHex})

	first, err := cache.Get(rollup.PlatformEthereum)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	second, err := cache.Get(rollup.PlatformEthereum)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if first != second {
		t.Error("expected the same *Signer instance to be returned on repeated Get calls")
	}
}

func TestCache_GetUnknownPlatformErrors(t *testing.T) {
	cache := NewCache(nil)
	if _, err := cache.Get(rollup.PlatformEthereum); err == nil {
		t.Error("expected error for platform with no configured key, got nil")
	}
}
