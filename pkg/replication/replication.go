// Copyright 2025 Certen Protocol
//
// Fanout is the leader-initiated, fire-and-forget multicast of replication
// messages to followers. Grounded on spec.md §9's "fire-and-forget
// fan-outs... emulate with a bounded worker pool fed by an unbounded
// channel; back-pressure is acceptable only to the point of dropping
// duplicate work," and on the original source's sync_encrypted_transaction/
// sync_block helpers (tokio::spawn + multicast).

package replication

import (
	"context"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/radiusxyz/sequencer/pkg/logging"
	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/rpcclient"
)

const (
	methodSyncEncryptedTransaction = "sync_encrypted_transaction"
	methodSyncRawTransaction       = "sync_raw_transaction"
	methodSyncBlock                = "sync_block"

	callTimeout = 5 * time.Second
)

// SyncEncryptedTransactionMessage is the leader-forwarded admission record.
type SyncEncryptedTransactionMessage struct {
	RollupID             string                       `json:"rollup_id"`
	RollupBlockHeight    uint64                        `json:"rollup_block_height"`
	TransactionOrder     uint64                        `json:"transaction_order"`
	EncryptedTransaction rollup.EncryptedTransaction   `json:"encrypted_transaction"`
	OrderCommitment      rollup.OrderCommitment        `json:"order_commitment"`
	OrderHash            rollup.Hash32                 `json:"order_hash"`
}

// SyncEncryptedTransactionParams is the signed envelope sent over the wire.
type SyncEncryptedTransactionParams struct {
	Message   SyncEncryptedTransactionMessage `json:"message"`
	Signature rollup.HexBytes                 `json:"signature"`
}

// SyncRawTransactionMessage is the supplemented (original_source-derived)
// operation that pushes a raw transaction to followers right after the
// leader admits it through send_raw_transaction (rollups whose
// encrypted_transaction_type is None), avoiding a follower-side gap-fill
// round trip.
type SyncRawTransactionMessage struct {
	RollupID          string `json:"rollup_id"`
	RollupBlockHeight uint64 `json:"rollup_block_height"`
	TransactionOrder  uint64 `json:"transaction_order"`
	RawTransaction    rollup.RawTransaction `json:"raw_transaction"`
}

// SyncRawTransactionParams is the signed envelope sent over the wire.
type SyncRawTransactionParams struct {
	Message   SyncRawTransactionMessage `json:"message"`
	Signature rollup.HexBytes           `json:"signature"`
}

// SyncBlockMessage advances a follower's metadata to the next height and
// enqueues its own block build for the finalized height.
type SyncBlockMessage struct {
	ExecutorAddress     string `json:"executor_address"`
	RollupID            string `json:"rollup_id"`
	PlatformBlockHeight uint64 `json:"platform_block_height"`
	RollupBlockHeight   uint64 `json:"rollup_block_height"`
}

// SyncBlockParams is the signed envelope sent over the wire, plus the
// transaction count needed to drive the recipient's block build.
type SyncBlockParams struct {
	Message          SyncBlockMessage `json:"message"`
	Signature        rollup.HexBytes  `json:"signature"`
	TransactionCount uint64           `json:"transaction_count"`
}

type job struct {
	key    string
	method string
	urls   []string
	params any
}

// Fanout is a bounded worker pool fed by an unbounded channel, deduplicating
// in-flight work by (rollup_id, height, order) for transaction syncs and
// (rollup_id, height) for block syncs.
type Fanout struct {
	client  *rpcclient.Client
	logger  *log.Logger
	jobs    chan job
	mu      sync.Mutex
	inFlight map[string]bool
}

// NewFanout starts runtime.NumCPU()*4 worker goroutines.
func NewFanout(client *rpcclient.Client) *Fanout {
	f := &Fanout{
		client:   client,
		logger:   logging.New("replication"),
		jobs:     make(chan job, 4096),
		inFlight: make(map[string]bool),
	}
	workers := runtime.NumCPU() * 4
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go f.worker()
	}
	return f
}

func (f *Fanout) worker() {
	for j := range f.jobs {
		f.run(j)
	}
}

func (f *Fanout) run(j job) {
	defer func() {
		f.mu.Lock()
		delete(f.inFlight, j.key)
		f.mu.Unlock()
	}()
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	for _, url := range j.urls {
		if err := f.client.Call(ctx, url, j.method, j.params, nil); err != nil {
			f.logger.Printf("%s -> %s failed: %v", j.method, url, err)
		}
	}
}

func (f *Fanout) enqueue(key, method string, urls []string, params any) {
	if len(urls) == 0 {
		return
	}
	f.mu.Lock()
	if f.inFlight[key] {
		f.mu.Unlock()
		return
	}
	f.inFlight[key] = true
	f.mu.Unlock()

	// The buffered channel absorbs normal load; when it is full the job is
	// handed over from its own goroutine, so new work is never dropped.
	j := job{key: key, method: method, urls: urls, params: params}
	select {
	case f.jobs <- j:
	default:
		go func() { f.jobs <- j }()
	}
}

// SyncEncryptedTransaction fans out an admitted envelope to every follower
// in cluster, deduplicated by (rollup, height, order).
func (f *Fanout) SyncEncryptedTransaction(urls []string, key string, params SyncEncryptedTransactionParams) {
	f.enqueue("enc:"+key, methodSyncEncryptedTransaction, urls, params)
}

// SyncRawTransaction fans out a decrypted transaction, deduplicated by
// (rollup, height, order).
func (f *Fanout) SyncRawTransaction(urls []string, key string, params SyncRawTransactionParams) {
	f.enqueue("raw:"+key, methodSyncRawTransaction, urls, params)
}

// SyncBlock fans out a block-finalization event, deduplicated by
// (rollup, height).
func (f *Fanout) SyncBlock(urls []string, key string, params SyncBlockParams) {
	f.enqueue("block:"+key, methodSyncBlock, urls, params)
}
