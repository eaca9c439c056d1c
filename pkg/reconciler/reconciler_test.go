// Copyright 2025 Certen Protocol
//
// Reconciler Store-Level Tests

package reconciler

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/radiusxyz/sequencer/pkg/liveness"
	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/store"
)

func newTestReconciler(t *testing.T) *Reconciler {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "badger"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, nil)
}

func TestUpsertRollup_InsertsFreshRecordWithSkdeDefault(t *testing.T) {
	r := newTestReconciler(t)
	info := liveness.RollupInfo{
		RollupID:            "rollup-1",
		RollupType:          "optimistic",
		OrderCommitmentType: "transaction_hash",
		ExecutorAddresses:   []common.Address{common.HexToAddress("0x1")},
	}

	if err := r.upsertRollup("cluster-1", rollup.PlatformEthereum, rollup.ServiceProviderEigenLayer, info); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.Get[rollup.Rollup](r.DB, store.RollupKey("rollup-1"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EncryptedTransactionType != rollup.EncryptedTransactionTypeSkde {
		t.Errorf("got %v, want default skde encrypted transaction type", got.EncryptedTransactionType)
	}
	if len(got.ExecutorAddressList) != 1 {
		t.Errorf("got %d executors, want 1", len(got.ExecutorAddressList))
	}
	if got.Platform != rollup.PlatformEthereum || got.ServiceProvider != rollup.ServiceProviderEigenLayer {
		t.Errorf("got platform=%q service_provider=%q, want them set from the observing client", got.Platform, got.ServiceProvider)
	}
	if got.ValidationInfo.Platform != rollup.PlatformEthereum || got.ValidationInfo.ServiceProvider != rollup.ServiceProviderEigenLayer {
		t.Errorf("got validation_info platform=%q service_provider=%q, want them set so Registrars.For resolves correctly", got.ValidationInfo.Platform, got.ValidationInfo.ServiceProvider)
	}
}

func TestUpsertRollup_MergesExecutorsWithoutOverwritingOtherFields(t *testing.T) {
	r := newTestReconciler(t)
	first := liveness.RollupInfo{RollupID: "rollup-1", RollupType: "optimistic", ExecutorAddresses: []common.Address{common.HexToAddress("0x1")}}
	if err := r.upsertRollup("cluster-1", rollup.PlatformEthereum, rollup.ServiceProviderEigenLayer, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := liveness.RollupInfo{RollupID: "rollup-1", RollupType: "zk", ExecutorAddresses: []common.Address{common.HexToAddress("0x1"), common.HexToAddress("0x2")}}
	if err := r.upsertRollup("cluster-1", rollup.PlatformEthereum, rollup.ServiceProviderEigenLayer, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := store.Get[rollup.Rollup](r.DB, store.RollupKey("rollup-1"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RollupType != "optimistic" {
		t.Errorf("got rollup type %q, want original optimistic to survive (write-once fields)", got.RollupType)
	}
	if len(got.ExecutorAddressList) != 2 {
		t.Errorf("got %d executors, want 2 after merging a new address", len(got.ExecutorAddressList))
	}
}

func TestMergeExecutors_DeduplicatesAndPreservesOrder(t *testing.T) {
	a, b, c := common.HexToAddress("0x1"), common.HexToAddress("0x2"), common.HexToAddress("0x3")
	got := mergeExecutors([]common.Address{a, b}, []common.Address{b, c})
	want := []common.Address{a, b, c}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPruneStaleSnapshots_RemovesOnlyHeightsBelowMargin(t *testing.T) {
	r := newTestReconciler(t)
	const platform, serviceProvider, clusterID = "ethereum", "eigen_layer", "cluster-1"

	for _, h := range []uint64{0, 100, defaultBlockMargin + 50} {
		snapshot := rollup.Cluster{ClusterID: clusterID, PlatformBlockHeight: h}
		if err := store.Put(r.DB, store.ClusterKey(platform, serviceProvider, clusterID, h), snapshot); err != nil {
			t.Fatalf("seed height %d: %v", h, err)
		}
	}

	r.pruneStaleSnapshots(platform, serviceProvider, clusterID, defaultBlockMargin+50)

	keys, err := store.ScanKeys(r.DB, store.ClusterPrefix(platform, serviceProvider, clusterID))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d remaining snapshots, want 2", len(keys))
	}
	for i, want := range []uint64{100, defaultBlockMargin + 50} {
		if got := store.ClusterKeyHeight(keys[i]); got != want {
			t.Errorf("remaining snapshot %d height = %d, want %d", i, got, want)
		}
	}
}
