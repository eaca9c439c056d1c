// Copyright 2025 Certen Protocol
//
// Per-platform ECDSA signer, grounded on the teacher's pkg/ethereum/client.go
// key-handling helpers (HexToECDSA, PubkeyToAddress) but narrowed to the one
// operation the sequencer needs: signing a canonical-JSON payload and
// returning the recoverable secp256k1 signature bytes.

package signer

import (
	"crypto/ecdsa"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/radiusxyz/sequencer/pkg/commitment"
	"github.com/radiusxyz/sequencer/pkg/rollup"
)

// Signer holds one node's signing key for one platform.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// New parses a hex-encoded (optionally 0x-prefixed) secp256k1 private key.
func New(privateKeyHex string) (*Signer, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("signer: %w: %v", rollup.ErrSignature, err)
	}
	pub, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("signer: %w: public key is not ECDSA", rollup.ErrSignature)
	}
	return &Signer{privateKey: privateKey, address: crypto.PubkeyToAddress(*pub)}, nil
}

// Address returns the signer's on-chain address.
func (s *Signer) Address() common.Address {
	return s.address
}

// Sign hashes data with Keccak-256 and returns the recoverable signature.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	digest := crypto.Keccak256(data)
	sig, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("signer: %w: %v", rollup.ErrSignature, err)
	}
	return sig, nil
}

// SignOrderCommitment signs the canonical JSON encoding of an order
// commitment's data field, the payload §4.3 step 6 specifies for Sign-type
// commitments. Canonical encoding keeps the signed bytes stable regardless
// of how the struct was re-marshaled on the verifying side.
func (s *Signer) SignOrderCommitment(data rollup.SignedOrderCommitmentData) ([]byte, error) {
	raw, err := commitment.MarshalCanonical(data)
	if err != nil {
		return nil, fmt.Errorf("signer: %w: %v", rollup.ErrSignature, err)
	}
	return s.Sign(raw)
}

// Cache is a process-wide map of signers keyed by platform, constructed on
// first use per §9's "cached map keyed by tuple" design note: readers take a
// read lock, writers (the first caller for a platform) take a write lock.
type Cache struct {
	mu      sync.RWMutex
	signers map[rollup.Platform]*Signer
	keys    map[rollup.Platform]string
}

// NewCache builds a signer cache from a static platform -> hex-key map
// (loaded from config).
func NewCache(keysByPlatform map[rollup.Platform]string) *Cache {
	return &Cache{
		signers: make(map[rollup.Platform]*Signer),
		keys:    keysByPlatform,
	}
}

// Get returns the signer for platform, constructing and caching it on first
// use.
func (c *Cache) Get(platform rollup.Platform) (*Signer, error) {
	c.mu.RLock()
	s, ok := c.signers[platform]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.signers[platform]; ok {
		return s, nil
	}
	hexKey, ok := c.keys[platform]
	if !ok {
		return nil, fmt.Errorf("signer: no signing key configured for platform %q", platform)
	}
	s, err := New(hexKey)
	if err != nil {
		return nil, err
	}
	c.signers[platform] = s
	return s, nil
}
