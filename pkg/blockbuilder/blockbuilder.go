// Copyright 2025 Certen Protocol
//
// Builder implements the per-(rollup, height) block-building task, grounded
// on original_source/src/task/block_builder.rs's block_builder/
// block_builder_skde/fetch_missing_transaction/decrypt_skde_transaction: walk
// the admitted transaction orders, fill any gap from peers, decrypt, compute
// the Merkle commitment, persist the block, and (leader only) register the
// commitment on-chain.

package blockbuilder

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/singleflight"

	"github.com/radiusxyz/sequencer/pkg/dkgclient"
	"github.com/radiusxyz/sequencer/pkg/logging"
	"github.com/radiusxyz/sequencer/pkg/pvde"
	"github.com/radiusxyz/sequencer/pkg/registrar"
	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/rpcclient"
	"github.com/radiusxyz/sequencer/pkg/signer"
	"github.com/radiusxyz/sequencer/pkg/store"
)

// MethodGetEncryptedTransactionWithOrderCommitment is the gap-fill fetch
// method name, called against every other cluster member until one answers.
const MethodGetEncryptedTransactionWithOrderCommitment = "get_encrypted_transaction_with_order_commitment"

// Builder assembles and finalizes blocks for one node.
type Builder struct {
	DB         *store.DB
	Signers    *signer.Cache
	DKGClient  *dkgclient.Client
	PVDE       *pvde.Decryptor
	Registrars *registrar.Registry
	RPC        *rpcclient.Client
	logger     *log.Logger
	fetchGroup singleflight.Group
}

// New builds a Builder over the given shared dependencies.
func New(db *store.DB, signers *signer.Cache, dkg *dkgclient.Client, pvdeDecryptor *pvde.Decryptor, registrars *registrar.Registry, rpc *rpcclient.Client) *Builder {
	return &Builder{
		DB:         db,
		Signers:    signers,
		DKGClient:  dkg,
		PVDE:       pvdeDecryptor,
		Registrars: registrars,
		RPC:        rpc,
		logger:     logging.New("block-builder"),
	}
}

type getEncryptedTransactionWithOrderCommitmentParams struct {
	RollupID          string `json:"rollup_id"`
	RollupBlockHeight uint64 `json:"rollup_block_height"`
	TransactionOrder  uint64 `json:"transaction_order"`
}

// BuildBlock walks orders [0, transactionCount), decrypts whatever isn't
// already decrypted, computes the Merkle commitment, persists the block, and
// registers the commitment on-chain when this node is the height's leader.
func (b *Builder) BuildBlock(ctx context.Context, rollupRec rollup.Rollup, height, transactionCount uint64, cluster rollup.Cluster) error {
	b.logger.Printf("building block rollup=%s height=%d transactions=%d", rollupRec.RollupID, height, transactionCount)

	encryptedTransactions := make([]rollup.EncryptedTransaction, 0, transactionCount)
	rawTransactions := make([]rollup.RawTransaction, 0, transactionCount)
	hashes := make([]rollup.Hash32, 0, transactionCount)
	decryptionKeys := make(map[string]string)

	for order := uint64(0); order < transactionCount; order++ {
		rawTx, rawFound, err := tryGet[rollup.RawTransaction](b.DB, store.RawTransactionByOrderKey(rollupRec.RollupID, height, order))
		if err != nil {
			return fmt.Errorf("blockbuilder: load raw transaction %s/%d/%d: %w", rollupRec.RollupID, height, order, rollup.ErrDatabase)
		}

		var encTx rollup.EncryptedTransaction
		encFound := false
		if !rawFound {
			encTx, encFound, err = tryGet[rollup.EncryptedTransaction](b.DB, store.EncryptedTransactionByOrderKey(rollupRec.RollupID, height, order))
			if err != nil {
				return fmt.Errorf("blockbuilder: load encrypted transaction %s/%d/%d: %w", rollupRec.RollupID, height, order, rollup.ErrDatabase)
			}
			if !encFound {
				encTx, err = b.fetchMissingTransaction(ctx, rollupRec.RollupID, height, order, cluster)
				if err != nil {
					return err
				}
				encFound = true
			}
		}

		if !rawFound {
			decrypted, err := b.decrypt(ctx, rollupRec.RollupID, encTx, decryptionKeys)
			if err != nil {
				return err
			}
			if err := store.Put(b.DB, store.RawTransactionByOrderKey(rollupRec.RollupID, height, order), decrypted); err != nil {
				return fmt.Errorf("blockbuilder: persist raw transaction: %w", rollup.ErrDatabase)
			}
			rawTx = decrypted
			encryptedTransactions = append(encryptedTransactions, encTx)
		}

		hash := rollup.Hash32(crypto.Keccak256Hash(rawTx.Data))
		hashes = append(hashes, hash)
		rawTransactions = append(rawTransactions, rawTx)
		if err := store.Put(b.DB, store.RawTransactionByHashKey(rollupRec.RollupID, hash), rawTx); err != nil {
			return fmt.Errorf("blockbuilder: persist raw transaction by hash: %w", rollup.ErrDatabase)
		}
	}

	commitment := MerkleRoot(hashes)
	isLeader := cluster.IsLeader(height)

	var builderAddress [20]byte
	var builderSignature rollup.HexBytes
	if s, err := b.Signers.Get(rollupRec.Platform); err == nil {
		builderAddress = s.Address()
		if sig, err := s.Sign(commitment[:]); err == nil {
			builderSignature = sig
		}
	} else {
		b.logger.Printf("no signer for platform %s, block %s/%d carries no builder signature", rollupRec.Platform, rollupRec.RollupID, height)
	}

	block := rollup.Block{
		RollupID:              rollupRec.RollupID,
		RollupBlockHeight:      height,
		EncryptedTransactions: encryptedTransactions,
		RawTransactions:       rawTransactions,
		BuilderAddress:        builderAddress,
		BuilderSignature:      builderSignature,
		Commitment:            commitment,
		IsLeader:              isLeader,
	}
	if err := store.Put(b.DB, store.BlockKey(rollupRec.RollupID, height), block); err != nil {
		return fmt.Errorf("blockbuilder: persist block %s/%d: %w", rollupRec.RollupID, height, rollup.ErrDatabase)
	}

	if !isLeader {
		return nil
	}

	reg := b.Registrars.For(rollupRec.ValidationInfo)
	txHash, err := reg.RegisterBlockCommitment(ctx, rollupRec.ClusterID, rollupRec.RollupID, height, commitment)
	if err != nil {
		if errors.Is(err, rollup.ErrUnimplemented) {
			b.logger.Printf("commitment registration unimplemented for rollup %s: %v", rollupRec.RollupID, err)
			return nil
		}
		return fmt.Errorf("blockbuilder: register commitment %s/%d: %w", rollupRec.RollupID, height, err)
	}
	b.logger.Printf("registered commitment rollup=%s height=%d tx=%s", rollupRec.RollupID, height, txHash)
	return nil
}

// fetchMissingTransaction gap-fills order from peers. Concurrent builds of
// the same (rollup, height, order) — e.g. a leader rebuild racing a
// follower's own build after a respawn — share one multicast via
// singleflight rather than each issuing their own fan-out.
func (b *Builder) fetchMissingTransaction(ctx context.Context, rollupID string, height, order uint64, cluster rollup.Cluster) (rollup.EncryptedTransaction, error) {
	urls := cluster.OthersRPCURLList()
	if len(urls) == 0 {
		return rollup.EncryptedTransaction{}, fmt.Errorf("blockbuilder: gap-fill %s/%d/%d: %w: no peers", rollupID, height, order, rollup.ErrEmptySequencerList)
	}
	params := getEncryptedTransactionWithOrderCommitmentParams{RollupID: rollupID, RollupBlockHeight: height, TransactionOrder: order}
	key := fmt.Sprintf("%s/%d/%d", rollupID, height, order)

	v, err, _ := b.fetchGroup.Do(key, func() (any, error) {
		return rpcclient.Multicast[rollup.EncryptedTransaction](ctx, b.RPC, urls, MethodGetEncryptedTransactionWithOrderCommitment, params)
	})
	if err != nil {
		return rollup.EncryptedTransaction{}, fmt.Errorf("blockbuilder: gap-fill %s: %w: %v", key, rollup.ErrNetwork, err)
	}
	return v.(rollup.EncryptedTransaction), nil
}

func (b *Builder) decrypt(ctx context.Context, rollupID string, tx rollup.EncryptedTransaction, decryptionKeys map[string]string) (rollup.RawTransaction, error) {
	switch tx.Type {
	case rollup.EncryptedTransactionTypeSkde:
		if tx.Skde == nil {
			return rollup.RawTransaction{}, fmt.Errorf("blockbuilder: %w: skde variant missing payload", rollup.ErrDeserialize)
		}
		key, ok := decryptionKeys[tx.Skde.KeyID]
		if !ok {
			fetched, err := b.DKGClient.GetDecryptionKey(ctx, tx.Skde.KeyID)
			if err != nil {
				return rollup.RawTransaction{}, fmt.Errorf("blockbuilder: %w", err)
			}
			key = fetched
			decryptionKeys[tx.Skde.KeyID] = key
		}
		plain, err := aesDecrypt(key, tx.Skde.Payload)
		if err != nil {
			return rollup.RawTransaction{}, fmt.Errorf("blockbuilder: decrypt skde payload: %w: %v", rollup.ErrDecryptionKeyUnavailable, err)
		}
		return rollup.RawTransaction{RollupID: rollupID, Data: plain}, nil
	case rollup.EncryptedTransactionTypePvde:
		if tx.Pvde == nil {
			return rollup.RawTransaction{}, fmt.Errorf("blockbuilder: %w: pvde variant missing payload", rollup.ErrDeserialize)
		}
		if _, err := b.PVDE.Decrypt(tx.Pvde); err != nil {
			return rollup.RawTransaction{}, fmt.Errorf("blockbuilder: pvde: %w", err)
		}
		return rollup.RawTransaction{}, fmt.Errorf("blockbuilder: %w", rollup.ErrUnimplemented)
	default:
		return rollup.RawTransaction{}, fmt.Errorf("blockbuilder: %w: unknown encrypted transaction type %q", rollup.ErrUnsupportedEncryptedMempool, tx.Type)
	}
}

// aesDecrypt opens an AES-256-GCM envelope, the nonce occupying its first
// gcm.NonceSize() (12) bytes. The pack carries no SKDE threshold-decryption library
// (skde is Rust-only and unreachable from this corpus), so the fetched
// per-key_id secret is stretched into an AES key with SHA-256 and used as a
// stand-in symmetric primitive; see DESIGN.md.
func aesDecrypt(secret string, ciphertext []byte) ([]byte, error) {
	keyArr := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(keyArr[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}

func tryGet[T any](d *store.DB, key []byte) (T, bool, error) {
	v, err := store.Get[T](d, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			var zero T
			return zero, false, nil
		}
		return v, false, err
	}
	return v, true, nil
}
