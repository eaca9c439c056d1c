// Copyright 2025 Certen Protocol
//
// EVMRegistrar is the shared transaction-sending plumbing behind both the
// eigenlayer and symbiotic adapters: both publish to an EVM contract, differ
// only in contract address/ABI/method name. Grounded on the teacher's
// pkg/ethereum.Client.SendContractTransaction (nonce fetch, 5-Gwei gas-price
// floor, manual types.NewTransaction + EIP155 signing, bind.WaitMined).

package registrar

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/radiusxyz/sequencer/pkg/rollup"
)

const minGasPriceWei = 5_000_000_000 // 5 Gwei floor.

// nonceCounter tracks the next nonce to use for one sender address, so
// concurrent registrations across rollups on the same EOA do not collide.
type nonceCounter struct {
	mu   sync.Mutex
	next *uint64
}

// EVMRegistrar sends register-commitment transactions to a single contract.
type EVMRegistrar struct {
	client       *ethclient.Client
	chainID      *big.Int
	contractAddr common.Address
	contractABI  abi.ABI
	methodName   string
	privateKey   *ecdsa.PrivateKey
	fromAddress  common.Address
	gasLimit     uint64

	noncesMu sync.Mutex
	nonces   map[common.Address]*nonceCounter
}

// NewEVMRegistrar dials rpcURL and parses contractABIJSON for later calls to
// methodName(clusterID, rollupID, height, commitment).
func NewEVMRegistrar(rpcURL string, chainID int64, contractAddr common.Address, contractABIJSON, methodName, signingKeyHex string, gasLimit uint64) (*EVMRegistrar, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("registrar: dial %s: %w: %v", rpcURL, rollup.ErrNetwork, err)
	}
	parsedABI, err := abi.JSON(strings.NewReader(contractABIJSON))
	if err != nil {
		return nil, fmt.Errorf("registrar: parse abi: %w", err)
	}
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(signingKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("registrar: %w: %v", rollup.ErrSignature, err)
	}
	pub, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("registrar: %w: public key is not ECDSA", rollup.ErrSignature)
	}
	return &EVMRegistrar{
		client:       client,
		chainID:      big.NewInt(chainID),
		contractAddr: contractAddr,
		contractABI:  parsedABI,
		methodName:   methodName,
		privateKey:   privateKey,
		fromAddress:  crypto.PubkeyToAddress(*pub),
		gasLimit:     gasLimit,
		nonces:       make(map[common.Address]*nonceCounter),
	}, nil
}

func (r *EVMRegistrar) nonceCounterFor(addr common.Address) *nonceCounter {
	r.noncesMu.Lock()
	defer r.noncesMu.Unlock()
	nc, ok := r.nonces[addr]
	if !ok {
		nc = &nonceCounter{}
		r.nonces[addr] = nc
	}
	return nc
}

// RegisterBlockCommitment packs and sends the register-commitment
// transaction, waiting for it to be mined.
func (r *EVMRegistrar) RegisterBlockCommitment(ctx context.Context, clusterID, rollupID string, rollupBlockHeight uint64, commitment rollup.Hash32) (string, error) {
	callData, err := r.contractABI.Pack(r.methodName, clusterID, rollupID, new(big.Int).SetUint64(rollupBlockHeight), [32]byte(commitment))
	if err != nil {
		return "", fmt.Errorf("registrar: pack %s: %w", r.methodName, err)
	}

	nc := r.nonceCounterFor(r.fromAddress)
	nc.mu.Lock()
	defer nc.mu.Unlock()

	var nonce uint64
	if nc.next != nil {
		nonce = *nc.next
	} else {
		pending, err := r.client.PendingNonceAt(ctx, r.fromAddress)
		if err != nil {
			return "", fmt.Errorf("registrar: nonce: %w: %v", rollup.ErrNetwork, err)
		}
		nonce = pending
	}

	gasPrice, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("registrar: gas price: %w: %v", rollup.ErrNetwork, err)
	}
	if gasPrice.Cmp(big.NewInt(minGasPriceWei)) < 0 {
		gasPrice = big.NewInt(minGasPriceWei)
	}

	tx := types.NewTransaction(nonce, r.contractAddr, big.NewInt(0), r.gasLimit, gasPrice, callData)
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(r.chainID), r.privateKey)
	if err != nil {
		return "", fmt.Errorf("registrar: %w: %v", rollup.ErrSignature, err)
	}
	if err := r.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("registrar: send: %w: %v", rollup.ErrNetwork, err)
	}
	next := nonce + 1
	nc.next = &next

	if _, err := bind.WaitMined(ctx, r.client, signedTx); err != nil {
		return "", fmt.Errorf("registrar: wait mined: %w: %v", rollup.ErrNetwork, err)
	}
	return signedTx.Hash().Hex(), nil
}
