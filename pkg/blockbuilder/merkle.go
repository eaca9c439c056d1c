// Copyright 2025 Certen Protocol
//
// MerkleRoot computes the block commitment. Grounded on the teacher's
// pkg/merkle.Tree (level-by-level reduction, sync-safe leaf copies) and
// cross-checked against original_source/src/task/block_builder.rs's
// get_merkle_root/merkle_proof helpers, which is the algorithm this spec's
// P3 invariant actually requires: Keccak-256, and an odd level is reduced by
// duplicating its last leaf rather than promoting it unpaired — the
// opposite of the teacher's own pkg/merkle (SHA-256, promote-odd-leaf).

package blockbuilder

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/radiusxyz/sequencer/pkg/rollup"
)

func keccakPair(left, right rollup.Hash32) rollup.Hash32 {
	var out rollup.Hash32
	digest := crypto.Keccak256(left[:], right[:])
	copy(out[:], digest)
	return out
}

// MerkleRoot reduces hashes to a single Keccak-256 commitment. An empty
// input yields the zero hash; a single-element input yields
// keccak256(h0 || h0), since the first reduction round duplicates the lone
// leaf before pairing it — the loop runs at least once whenever hashes is
// non-empty.
func MerkleRoot(hashes []rollup.Hash32) rollup.Hash32 {
	if len(hashes) == 0 {
		return rollup.ZeroHash32
	}

	queue := make([]rollup.Hash32, len(hashes))
	copy(queue, hashes)

	for {
		if len(queue)%2 != 0 {
			queue = append(queue, queue[len(queue)-1])
		}
		next := make([]rollup.Hash32, len(queue)/2)
		for i := range next {
			next[i] = keccakPair(queue[2*i], queue[2*i+1])
		}
		queue = next
		if len(queue) == 1 {
			break
		}
	}

	return queue[0]
}
