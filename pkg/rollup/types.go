// Copyright 2025 Certen Protocol
//
// Domain entities for the rollup sequencer: rollups, per-rollup mutable
// metadata, and the finalized block record. Cluster snapshots live in
// cluster.go; encrypted/order-commitment tagged unions live in their own
// files.

package rollup

import "github.com/ethereum/go-ethereum/common"

// Platform selects the on-chain liveness contract family a rollup's cluster
// view is read from.
type Platform string

const (
	PlatformEthereum Platform = "ethereum"
	// PlatformLocal has no real liveness contract; registrar calls against
	// it always fail with ErrUnimplemented.
	PlatformLocal Platform = "local"
)

// ServiceProvider selects which restaking service backs a cluster's
// liveness and validation contracts.
type ServiceProvider string

const (
	ServiceProviderEigenLayer ServiceProvider = "eigen_layer"
	ServiceProviderSymbiotic  ServiceProvider = "symbiotic"
)

// EncryptedTransactionType is the mempool encryption scheme a rollup
// requires of submitted transactions.
type EncryptedTransactionType string

const (
	EncryptedTransactionTypePvde EncryptedTransactionType = "pvde"
	EncryptedTransactionTypeSkde EncryptedTransactionType = "skde"
	EncryptedTransactionTypeNone EncryptedTransactionType = "none"
)

// OrderCommitmentType selects what a leader hands back to an admitted
// submitter as its receipt.
type OrderCommitmentType string

const (
	OrderCommitmentTypeTransactionHash OrderCommitmentType = "transaction_hash"
	OrderCommitmentTypeSign            OrderCommitmentType = "sign"
)

// ValidationInfo names the on-chain contract a rollup's block commitments
// are registered against.
type ValidationInfo struct {
	Platform             Platform        `json:"platform"`
	ServiceProvider       ServiceProvider `json:"service_provider"`
	ServiceManagerAddress common.Address  `json:"service_manager_address"`
}

// Rollup is the immutable-identity / mutable-executor-list record created
// the first time a rollup is observed in an on-chain rollup-info list.
type Rollup struct {
	RollupID                 string                   `json:"rollup_id"`
	ClusterID                string                   `json:"cluster_id"`
	Platform                 Platform                 `json:"platform"`
	ServiceProvider          ServiceProvider          `json:"service_provider"`
	RollupType               string                   `json:"rollup_type"`
	EncryptedTransactionType EncryptedTransactionType `json:"encrypted_transaction_type"`
	OrderCommitmentType      OrderCommitmentType      `json:"order_commitment_type"`
	Owner                    common.Address           `json:"owner"`
	ValidationInfo           ValidationInfo           `json:"validation_info"`
	ExecutorAddressList      []common.Address         `json:"executor_address_list"`
}

// HasExecutor reports whether addr is a member of the current executor set.
func (r *Rollup) HasExecutor(addr common.Address) bool {
	for _, e := range r.ExecutorAddressList {
		if e == addr {
			return true
		}
	}
	return false
}

// RollupMetadata is the per-rollup mutable record guarded by the store's
// exclusive get_mut lock. transaction_order resets to zero on every height
// transition; order_hash is the SHA3-256 chain over admitted raw-transaction
// hashes at the current height.
type RollupMetadata struct {
	RollupID            string  `json:"rollup_id"`
	ClusterID           string  `json:"cluster_id"`
	RollupBlockHeight   uint64  `json:"rollup_block_height"`
	TransactionOrder    uint64  `json:"transaction_order"`
	OrderHash           Hash32  `json:"order_hash"`
	IsLeader            bool    `json:"is_leader"`
	PlatformBlockHeight uint64  `json:"platform_block_height"`
}

// AdvanceHeight resets the per-height counters for the next rollup block,
// as performed by both sync_block (follower) and finalize_block (leader).
func (m *RollupMetadata) AdvanceHeight(nextHeight uint64, isLeader bool, platformBlockHeight uint64) {
	m.RollupBlockHeight = nextHeight
	m.OrderHash = ZeroHash32
	m.TransactionOrder = 0
	m.IsLeader = isLeader
	m.PlatformBlockHeight = platformBlockHeight
}

// RawTransaction is the decrypted form of a submitted envelope, stored under
// the same (rollup_id, height, order) and (rollup_id, raw_transaction_hash)
// key pair as its encrypted counterpart.
type RawTransaction struct {
	RollupID string `json:"rollup_id"`
	Data     []byte `json:"data"`
}

// Block is the finalized per-(rollup_id, height) record: ordered
// transactions, the builder's attestation, and the Merkle-root block
// commitment registered on-chain by the leader.
type Block struct {
	RollupID              string                `json:"rollup_id"`
	RollupBlockHeight      uint64                `json:"rollup_block_height"`
	EncryptedTransactions []EncryptedTransaction `json:"encrypted_transactions"`
	RawTransactions       []RawTransaction       `json:"raw_transactions"`
	BuilderAddress        common.Address         `json:"builder_address"`
	BuilderSignature      HexBytes              `json:"builder_signature"`
	Commitment            Hash32                `json:"commitment"`
	IsLeader              bool                  `json:"is_leader"`
}
