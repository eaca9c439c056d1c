// Copyright 2025 Certen Protocol
//
// Ordering Pipeline Tests

package ordering

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/radiusxyz/sequencer/pkg/replication"
	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/rpcclient"
	"github.com/radiusxyz/sequencer/pkg/signer"
	"github.com/radiusxyz/sequencer/pkg/store"
)

func strPtr(s string) *string { return &s }

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "badger"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	client := rpcclient.New(time.Second)
	fanout := replication.NewFanout(client)
	signers := signer.NewCache(nil)
	return New(db, signers, fanout, client)
}

func seedRollup(t *testing.T, p *Pipeline, rollupID string, txType rollup.EncryptedTransactionType) {
	t.Helper()
	rec := rollup.Rollup{
		RollupID:                 rollupID,
		ClusterID:                "cluster-1",
		Platform:                 rollup.PlatformEthereum,
		ServiceProvider:          rollup.ServiceProviderEigenLayer,
		EncryptedTransactionType: txType,
		OrderCommitmentType:      rollup.OrderCommitmentTypeTransactionHash,
	}
	if err := store.Put(p.DB, store.RollupKey(rollupID), rec); err != nil {
		t.Fatalf("seed rollup: %v", err)
	}
	cluster := rollup.Cluster{
		Platform:            rollup.PlatformEthereum,
		ServiceProvider:     rollup.ServiceProviderEigenLayer,
		ClusterID:           "cluster-1",
		PlatformBlockHeight: 0,
		SequencerRPCURLList: []*string{strPtr("self")},
		MyIndex:             0,
	}
	if err := store.Put(p.DB, store.ClusterKey(string(rollup.PlatformEthereum), string(rollup.ServiceProviderEigenLayer), "cluster-1", 0), cluster); err != nil {
		t.Fatalf("seed cluster: %v", err)
	}
}

func TestSendRawTransaction_RejectsWrongEnvelopeType(t *testing.T) {
	p := newTestPipeline(t)
	seedRollup(t, p, "rollup-1", rollup.EncryptedTransactionTypeSkde)

	if _, err := p.SendRawTransaction(context.Background(), "rollup-1", []byte("data")); err == nil {
		t.Error("expected error for rollup requiring skde envelopes, got nil")
	}
}

func TestSendRawTransaction_AsLeaderAdvancesOrderAndChainsHash(t *testing.T) {
	p := newTestPipeline(t)
	seedRollup(t, p, "rollup-1", rollup.EncryptedTransactionTypeNone)

	first, err := p.SendRawTransaction(context.Background(), "rollup-1", []byte("tx-1"))
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	if first.TransactionHash == "" {
		t.Error("expected a non-empty transaction hash commitment")
	}

	second, err := p.SendRawTransaction(context.Background(), "rollup-1", []byte("tx-2"))
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if second.TransactionHash == first.TransactionHash {
		t.Error("distinct raw transactions must receive distinct commitments")
	}

	meta, err := store.Get[rollup.RollupMetadata](p.DB, store.RollupMetadataKey("rollup-1"))
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if meta.TransactionOrder != 2 {
		t.Errorf("transaction order = %d, want 2 after two admissions", meta.TransactionOrder)
	}
	if meta.OrderHash == rollup.ZeroHash32 {
		t.Error("order hash should have advanced past genesis")
	}

	tx0, err := store.Get[rollup.RawTransaction](p.DB, store.RawTransactionByOrderKey("rollup-1", 0, 0))
	if err != nil {
		t.Fatalf("get raw tx at order 0: %v", err)
	}
	if string(tx0.Data) != "tx-1" {
		t.Errorf("order 0 data = %q, want tx-1", tx0.Data)
	}
}

func TestSendRawTransaction_UnknownRollupIsNotFound(t *testing.T) {
	p := newTestPipeline(t)
	if _, err := p.SendRawTransaction(context.Background(), "missing", []byte("x")); err == nil {
		t.Error("expected not-found error for unknown rollup, got nil")
	}
}
