// Copyright 2025 Certen Protocol
//
// Merkle Root Tests

package blockbuilder

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/radiusxyz/sequencer/pkg/rollup"
)

func TestMerkleRoot_Empty(t *testing.T) {
	if got := MerkleRoot(nil); got != rollup.ZeroHash32 {
		t.Errorf("got %s, want zero hash", got)
	}
}

func TestMerkleRoot_SingleLeafDuplicatesBeforePairing(t *testing.T) {
	leaf := rollup.Hash32{1}
	want := keccakPair(leaf, leaf)

	if got := MerkleRoot([]rollup.Hash32{leaf}); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestMerkleRoot_TwoLeaves(t *testing.T) {
	a, b := rollup.Hash32{1}, rollup.Hash32{2}
	want := keccakPair(a, b)

	if got := MerkleRoot([]rollup.Hash32{a, b}); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestMerkleRoot_OddCountDuplicatesLastLeaf(t *testing.T) {
	a, b, c := rollup.Hash32{1}, rollup.Hash32{2}, rollup.Hash32{3}

	level := []rollup.Hash32{keccakPair(a, b), keccakPair(c, c)}
	want := keccakPair(level[0], level[1])

	if got := MerkleRoot([]rollup.Hash32{a, b, c}); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestMerkleRoot_OrderSensitive(t *testing.T) {
	a, b := rollup.Hash32{1}, rollup.Hash32{2}

	forward := MerkleRoot([]rollup.Hash32{a, b})
	reversed := MerkleRoot([]rollup.Hash32{b, a})
	if forward == reversed {
		t.Error("swapping leaf order must change the root")
	}
}

func TestKeccakPair_MatchesRawKeccak256(t *testing.T) {
	a, b := rollup.Hash32{0xaa}, rollup.Hash32{0xbb}
	want := crypto.Keccak256(a[:], b[:])

	got := keccakPair(a, b)
	if string(got[:]) != string(want) {
		t.Errorf("got %x, want %x", got, want)
	}
}
