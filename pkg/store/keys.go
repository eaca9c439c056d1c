// Copyright 2025 Certen Protocol
//
// Key builders. Each entity type gets a discriminator-prefixed byte key,
// following the teacher's pkg/ledger/store.go keySysBlockPrefix convention:
// a short ASCII prefix followed by big-endian-encoded numeric components and
// raw string components.

package store

import (
	"encoding/binary"
)

var (
	prefixRollup             = []byte("rollup/")
	prefixCluster             = []byte("cluster/")
	prefixRollupMetadata      = []byte("rollup_metadata/")
	prefixEncryptedTxByOrder  = []byte("enc_tx/order/")
	prefixEncryptedTxByHash   = []byte("enc_tx/hash/")
	prefixRawTxByOrder        = []byte("raw_tx/order/")
	prefixRawTxByHash         = []byte("raw_tx/hash/")
	prefixOrderCommitment     = []byte("order_commitment/")
	prefixTentativeCommitment = []byte("tentative_commitment/")
	prefixBlock               = []byte("block/")
	prefixSequencingInfo      = []byte("sequencing_info/")
	prefixValidationInfo      = []byte("validation_info/")
	prefixClusterIDList       = []byte("cluster_id_list/")
)

func u64(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// RollupKey addresses the immutable Rollup record.
func RollupKey(rollupID string) []byte {
	return append(append([]byte{}, prefixRollup...), rollupID...)
}

// ClusterKey addresses a Cluster snapshot keyed by
// (platform, service_provider, cluster_id, platform_block_height).
func ClusterKey(platform, serviceProvider, clusterID string, platformBlockHeight uint64) []byte {
	k := append([]byte{}, prefixCluster...)
	k = append(k, platform...)
	k = append(k, '/')
	k = append(k, serviceProvider...)
	k = append(k, '/')
	k = append(k, clusterID...)
	k = append(k, '/')
	k = append(k, u64(platformBlockHeight)...)
	return k
}

// ClusterPrefix addresses every snapshot height for one cluster, used to
// scan-and-prune stale entries.
func ClusterPrefix(platform, serviceProvider, clusterID string) []byte {
	k := append([]byte{}, prefixCluster...)
	k = append(k, platform...)
	k = append(k, '/')
	k = append(k, serviceProvider...)
	k = append(k, '/')
	k = append(k, clusterID...)
	k = append(k, '/')
	return k
}

// RollupMetadataKey addresses the per-rollup mutable metadata record.
func RollupMetadataKey(rollupID string) []byte {
	return append(append([]byte{}, prefixRollupMetadata...), rollupID...)
}

// EncryptedTransactionByOrderKey addresses an envelope by its admission
// position.
func EncryptedTransactionByOrderKey(rollupID string, height, order uint64) []byte {
	k := append([]byte{}, prefixEncryptedTxByOrder...)
	k = append(k, rollupID...)
	k = append(k, '/')
	k = append(k, u64(height)...)
	k = append(k, u64(order)...)
	return k
}

// EncryptedTransactionByHashKey addresses an envelope by its plaintext
// raw-transaction hash.
func EncryptedTransactionByHashKey(rollupID string, rawTransactionHash [32]byte) []byte {
	k := append([]byte{}, prefixEncryptedTxByHash...)
	k = append(k, rollupID...)
	k = append(k, '/')
	k = append(k, rawTransactionHash[:]...)
	return k
}

// RawTransactionByOrderKey addresses a decrypted transaction by position.
func RawTransactionByOrderKey(rollupID string, height, order uint64) []byte {
	k := append([]byte{}, prefixRawTxByOrder...)
	k = append(k, rollupID...)
	k = append(k, '/')
	k = append(k, u64(height)...)
	k = append(k, u64(order)...)
	return k
}

// RawTransactionByHashKey addresses a decrypted transaction by its hash.
func RawTransactionByHashKey(rollupID string, rawTransactionHash [32]byte) []byte {
	k := append([]byte{}, prefixRawTxByHash...)
	k = append(k, rollupID...)
	k = append(k, '/')
	k = append(k, rawTransactionHash[:]...)
	return k
}

// OrderCommitmentKey addresses the commitment issued for (rollup, height, order).
func OrderCommitmentKey(rollupID string, height, order uint64) []byte {
	k := append([]byte{}, prefixOrderCommitment...)
	k = append(k, rollupID...)
	k = append(k, '/')
	k = append(k, u64(height)...)
	k = append(k, u64(order)...)
	return k
}

// TentativeCommitmentKey addresses the block-commitment cell a follower
// sets speculatively on sync_encrypted_transaction, keyed by
// (rollup, height, order).
func TentativeCommitmentKey(rollupID string, height, order uint64) []byte {
	k := append([]byte{}, prefixTentativeCommitment...)
	k = append(k, rollupID...)
	k = append(k, '/')
	k = append(k, u64(height)...)
	k = append(k, u64(order)...)
	return k
}

// BlockKey addresses the finalized block record for (rollup, height).
func BlockKey(rollupID string, height uint64) []byte {
	k := append([]byte{}, prefixBlock...)
	k = append(k, rollupID...)
	k = append(k, '/')
	k = append(k, u64(height)...)
	return k
}

// SequencingInfoKey addresses an operator-registered sequencing-info record,
// keyed by (platform, service_provider) — the same pair a liveness.Client is
// constructed from.
func SequencingInfoKey(platform, serviceProvider string) []byte {
	k := append([]byte{}, prefixSequencingInfo...)
	k = append(k, platform...)
	k = append(k, '/')
	k = append(k, serviceProvider...)
	return k
}

// SequencingInfoPrefix addresses every registered sequencing-info record,
// used by get_sequencing_infos to list them all.
func SequencingInfoPrefix() []byte {
	return append([]byte{}, prefixSequencingInfo...)
}

// ValidationInfoKey addresses an operator-registered validation-info record,
// keyed by (platform, service_provider).
func ValidationInfoKey(platform, serviceProvider string) []byte {
	k := append([]byte{}, prefixValidationInfo...)
	k = append(k, platform...)
	k = append(k, '/')
	k = append(k, serviceProvider...)
	return k
}

// ClusterIDListKey addresses the set of cluster IDs this node manages at
// (platform, service_provider), mutated by add_cluster / Deregister.
func ClusterIDListKey(platform, serviceProvider string) []byte {
	k := append([]byte{}, prefixClusterIDList...)
	k = append(k, platform...)
	k = append(k, '/')
	k = append(k, serviceProvider...)
	return k
}

// RawTransactionByHeightPrefix addresses every raw transaction admitted at
// (rollupID, height), in ascending transaction_order — badger iterates keys
// in lexical order and the order suffix is big-endian, so a prefix scan
// yields them correctly ordered.
func RawTransactionByHeightPrefix(rollupID string, height uint64) []byte {
	k := append([]byte{}, prefixRawTxByOrder...)
	k = append(k, rollupID...)
	k = append(k, '/')
	k = append(k, u64(height)...)
	return k
}

// ClusterKeyHeight extracts the platform_block_height encoded in the last 8
// bytes of a key produced by ClusterKey, for pruning scans over
// ClusterPrefix results.
func ClusterKeyHeight(key []byte) uint64 {
	if len(key) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
