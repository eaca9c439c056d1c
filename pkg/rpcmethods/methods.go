// Copyright 2025 Certen Protocol
//
// Method tables: the three JSON-RPC surfaces' (method name -> Handler)
// bindings, consumed by cmd/sequencer/main.go via rpcserver.Server.RegisterAll.

package rpcmethods

// InternalMethods is the operator-management surface: dynamic registration
// of sequencing/validation contracts and cluster membership, plus debug
// getters. Bound to the internal RPC listener, which is expected to sit
// behind an operator-only network boundary.
func InternalMethods() map[string]Handler {
	return map[string]Handler{
		"add_sequencing_info":  AddSequencingInfo,
		"add_validation_info":  AddValidationInfo,
		"add_cluster":          AddCluster,
		"deregister":           Deregister,
		"get_cluster":          GetCluster,
		"get_cluster_id_list":  GetClusterIDList,
		"get_sequencing_infos": GetSequencingInfos,
		"get_sequencing_info":  GetSequencingInfo,
		"debug_get_rollup":     DebugGetRollup,
	}
}

// ClusterMethods is the leader/follower replication surface: the three
// sync_* operations other cluster members call on this node, plus the raw
// transaction listing shared with the external surface.
func ClusterMethods() map[string]Handler {
	return map[string]Handler{
		"sync_encrypted_transaction": SyncEncryptedTransaction,
		"sync_raw_transaction":       SyncRawTransaction,
		"sync_block":                 SyncBlock,
		"finalize_block":             FinalizeBlock,
		"get_raw_transaction_list":   GetRawTransactionList,
	}
}

// ExternalMethods is the end-user-facing admission and lookup surface.
func ExternalMethods() map[string]Handler {
	return map[string]Handler{
		"send_encrypted_transaction":                     SendEncryptedTransaction,
		"send_raw_transaction":                            SendRawTransaction,
		"get_encrypted_transaction_with_transaction_hash": GetEncryptedTransactionWithTransactionHash,
		"get_encrypted_transaction_with_order_commitment": GetEncryptedTransactionWithOrderCommitment,
		"get_raw_transaction_with_transaction_hash":       GetRawTransactionWithTransactionHash,
		"get_raw_transaction_with_order_commitment":       GetRawTransactionWithOrderCommitment,
		"get_order_commitment":                            GetOrderCommitment,
		"get_raw_transaction_list":                        GetRawTransactionList,
		"get_rollup":                                      GetRollup,
		"get_rollup_metadata":                             GetRollupMetadata,
		"get_block":                                       GetBlock,
	}
}
