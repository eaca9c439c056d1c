// Copyright 2025 Certen Protocol
//
// Builder Tests

package blockbuilder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/rpcclient"
	"github.com/radiusxyz/sequencer/pkg/signer"
	"github.com/radiusxyz/sequencer/pkg/store"
)

func newTestBuilder(t *testing.T) (*Builder, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "badger"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	b := New(db, signer.NewCache(nil), nil, nil, nil, rpcclient.New(time.Second))
	return b, db
}

func twoNodeFollowerCluster() rollup.Cluster {
	self := "self"
	leader := "leader"
	return rollup.Cluster{
		Platform:            rollup.PlatformEthereum,
		ServiceProvider:     rollup.ServiceProviderEigenLayer,
		ClusterID:           "cluster-1",
		SequencerRPCURLList: []*string{&leader, &self},
		MyIndex:             1,
	}
}

func TestBuildBlock_AssemblesBlockFromAlreadyDecryptedTransactions(t *testing.T) {
	b, db := newTestBuilder(t)
	rollupRec := rollup.Rollup{RollupID: "rollup-1", Platform: rollup.PlatformEthereum}
	cluster := twoNodeFollowerCluster()

	for order, data := range []string{"tx-a", "tx-b"} {
		tx := rollup.RawTransaction{RollupID: "rollup-1", Data: []byte(data)}
		if err := store.Put(db, store.RawTransactionByOrderKey("rollup-1", 4, uint64(order)), tx); err != nil {
			t.Fatalf("seed raw tx %d: %v", order, err)
		}
	}

	if err := b.BuildBlock(context.Background(), rollupRec, 4, 2, cluster); err != nil {
		t.Fatalf("build block: %v", err)
	}

	block, err := store.Get[rollup.Block](db, store.BlockKey("rollup-1", 4))
	if err != nil {
		t.Fatalf("get block: %v", err)
	}
	if len(block.RawTransactions) != 2 {
		t.Fatalf("got %d raw transactions, want 2", len(block.RawTransactions))
	}
	if block.IsLeader {
		t.Error("got IsLeader=true for a follower, want false")
	}
	if block.Commitment == rollup.ZeroHash32 {
		t.Error("expected a non-zero commitment for a non-empty block")
	}
}

func TestBuildBlock_EmptyTransactionCountProducesZeroCommitment(t *testing.T) {
	b, db := newTestBuilder(t)
	rollupRec := rollup.Rollup{RollupID: "rollup-1", Platform: rollup.PlatformEthereum}
	cluster := twoNodeFollowerCluster()

	if err := b.BuildBlock(context.Background(), rollupRec, 0, 0, cluster); err != nil {
		t.Fatalf("build block: %v", err)
	}

	block, err := store.Get[rollup.Block](db, store.BlockKey("rollup-1", 0))
	if err != nil {
		t.Fatalf("get block: %v", err)
	}
	if block.Commitment != rollup.ZeroHash32 {
		t.Errorf("got %v, want zero commitment for an empty block", block.Commitment)
	}
}

func TestBuildBlock_GapFillWithNoPeersErrors(t *testing.T) {
	b, _ := newTestBuilder(t)
	rollupRec := rollup.Rollup{RollupID: "rollup-1", Platform: rollup.PlatformEthereum}
	cluster := rollup.Cluster{
		Platform:            rollup.PlatformEthereum,
		ServiceProvider:     rollup.ServiceProviderEigenLayer,
		ClusterID:           "cluster-1",
		SequencerRPCURLList: nil,
		MyIndex:             0,
	}

	err := b.BuildBlock(context.Background(), rollupRec, 9, 1, cluster)
	if err == nil {
		t.Error("expected gap-fill error for a rollup with no stored transaction and no peers, got nil")
	}
}
