// Copyright 2025 Certen Protocol
//
// Typed store façade over an embedquickstore. Generalizes the teacher's
// pkg/kvdb.KVAdapter (a thin KV wrapper) and pkg/ledger.LedgerStore (typed
// accessors over byte keys) into the generic get/get_or/get_mut/get_mut_or/
// put/update vocabulary the sequencer's domain packages are built against.
//
// badger.Txn is the one engine in the teacher's dependency set whose
// transaction type naturally expresses get_mut's "read, hold an exclusive
// scope, write-or-discard" shape, so it is the underlying engine rather than
// the teacher's CometBFT dbm.DB.

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v2"
)

// ErrNotFound is returned by Get/GetMut when the key is absent, in place of
// badger.ErrKeyNotFound, so callers can distinguish it with errors.Is without
// importing badger themselves. It drives the get-or-default idiom.
var ErrNotFound = errors.New("store: not found")

// ErrDeserialize wraps a JSON decode failure. Deserialization failure is
// fatal for the key's caller: it is never recovered.
var ErrDeserialize = errors.New("store: deserialize")

// DB is the typed store façade. The zero value is not usable; construct
// with Open.
type DB struct {
	bdb *badger.DB

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Open opens (creating if absent) a badger database rooted at path.
func Open(path string) (*DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &DB{bdb: bdb, locks: make(map[string]*sync.Mutex)}, nil
}

// Close releases the underlying database files.
func (d *DB) Close() error {
	return d.bdb.Close()
}

func (d *DB) keyLock(key []byte) *sync.Mutex {
	k := string(key)
	d.locksMu.Lock()
	defer d.locksMu.Unlock()
	m, ok := d.locks[k]
	if !ok {
		m = &sync.Mutex{}
		d.locks[k] = m
	}
	return m
}

// Get loads and decodes the value stored at key.
func Get[T any](d *DB, key []byte) (T, error) {
	var out T
	err := d.bdb.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("store: get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &out); err != nil {
				return fmt.Errorf("%w: %v", ErrDeserialize, err)
			}
			return nil
		})
	})
	return out, err
}

// Put serializes and stores value at key.
func Put[T any](d *DB, key []byte, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	return d.bdb.Update(func(txn *badger.Txn) error {
		return txn.Set(key, raw)
	})
}

// GetOr loads the value at key, atomically inserting def() if absent.
func GetOr[T any](d *DB, key []byte, def func() T) (T, error) {
	var out T
	err := d.bdb.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == nil {
			return item.Value(func(val []byte) error {
				if err := json.Unmarshal(val, &out); err != nil {
					return fmt.Errorf("%w: %v", ErrDeserialize, err)
				}
				return nil
			})
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("store: get %s: %w", key, err)
		}
		out = def()
		raw, merr := json.Marshal(out)
		if merr != nil {
			return fmt.Errorf("%w: %v", ErrDeserialize, merr)
		}
		return txn.Set(key, raw)
	})
	return out, err
}

// Handle is a scope-bound exclusive lock on a key, returned by GetMut and
// GetMutOr. Callers mutate *Handle.Value in place; Update commits it and
// releases the lock, Discard releases without writing. A handle that is
// never resolved (no Update, no Discard) leaks its key's lock — callers
// MUST defer one of the two immediately after acquiring the handle.
type Handle[T any] struct {
	db       *DB
	key      []byte
	mu       *sync.Mutex
	released bool
	Value    T
}

// GetMut acquires the exclusive lock for key and loads its current value.
// Returns ErrNotFound (with the lock already released) if absent — callers that
// want create-if-absent semantics should use GetMutOr instead.
func GetMut[T any](d *DB, key []byte) (*Handle[T], error) {
	mu := d.keyLock(key)
	mu.Lock()
	v, err := Get[T](d, key)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	return &Handle[T]{db: d, key: key, mu: mu, Value: v}, nil
}

// GetMutOr acquires the exclusive lock for key and loads its current value,
// atomically inserting def() under the same lock if the key is absent.
func GetMutOr[T any](d *DB, key []byte, def func() T) (*Handle[T], error) {
	mu := d.keyLock(key)
	mu.Lock()
	v, err := Get[T](d, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			mu.Unlock()
			return nil, err
		}
		v = def()
	}
	return &Handle[T]{db: d, key: key, mu: mu, Value: v}, nil
}

// Update persists the handle's current Value and releases the lock.
func (h *Handle[T]) Update() error {
	if h.released {
		return fmt.Errorf("store: handle for %s already released", h.key)
	}
	h.released = true
	defer h.mu.Unlock()
	return Put(h.db, h.key, h.Value)
}

// Discard releases the lock without writing.
func (h *Handle[T]) Discard() {
	if h.released {
		return
	}
	h.released = true
	h.mu.Unlock()
}

// IsNotFound reports whether err wraps ErrNotFound, letting callers outside
// this package avoid importing "errors" for the common case.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Delete removes key, if present.
func Delete(d *DB, key []byte) error {
	return d.bdb.Update(func(txn *badger.Txn) error {
		err := txn.Delete(key)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("store: delete %s: %w", key, err)
		}
		return nil
	})
}

// ScanPrefix decodes every value stored under prefix, in key iteration
// order. Used by list-style RPC handlers (get_raw_transaction_list,
// get_sequencing_infos) that have no single-key address to Get.
func ScanPrefix[T any](d *DB, prefix []byte) ([]T, error) {
	var out []T
	err := d.bdb.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var v T
			if err := it.Item().Value(func(val []byte) error {
				if err := json.Unmarshal(val, &v); err != nil {
					return fmt.Errorf("%w: %v", ErrDeserialize, err)
				}
				return nil
			}); err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	return out, err
}

// ScanKeys returns every key stored under prefix, in iteration order. Used
// by the reconciler to find stale cluster snapshots to prune.
func ScanKeys(d *DB, prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := d.bdb.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}
