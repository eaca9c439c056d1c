// Copyright 2025 Certen Protocol
//
// Rollup Domain Tests

package rollup

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestHash32_HexRoundTrip(t *testing.T) {
	var h Hash32
	h[0] = 0xde
	h[1] = 0xad
	h[31] = 0xef

	raw, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Hash32
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != h {
		t.Errorf("round trip mismatch: got %s, want %s", back, h)
	}
}

func TestHash32FromHex_RejectsWrongLength(t *testing.T) {
	if _, err := Hash32FromHex("0xdead"); err == nil {
		t.Error("expected error for short hash, got nil")
	}
}

func TestHash32FromHex_AcceptsBareAndPrefixed(t *testing.T) {
	bare := "000000000000000000000000000000000000000000000000000000000000000001"[2:]
	prefixed := "0x" + bare

	a, err := Hash32FromHex(bare)
	if err != nil {
		t.Fatalf("bare: %v", err)
	}
	b, err := Hash32FromHex(prefixed)
	if err != nil {
		t.Fatalf("prefixed: %v", err)
	}
	if a != b {
		t.Errorf("bare and 0x-prefixed forms disagree: %s != %s", a, b)
	}
}

func TestNextOrderHash_ChainsAndIsOrderSensitive(t *testing.T) {
	a := Hash32{1}
	b := Hash32{2}

	first := NextOrderHash(ZeroHash32, a)
	second := NextOrderHash(first, b)

	if first == ZeroHash32 {
		t.Error("chained hash must not equal the genesis hash")
	}
	if second == first {
		t.Error("chaining a second hash must change the result")
	}

	// swapping admission order must produce a different chain.
	swapped := NextOrderHash(NextOrderHash(ZeroHash32, b), a)
	if swapped == second {
		t.Error("order hash chain must be sensitive to admission order")
	}
}

func TestEncryptedTransaction_SkdeRoundTrip(t *testing.T) {
	want := EncryptedTransaction{
		Type: EncryptedTransactionTypeSkde,
		Skde: &SkdeEnvelope{
			RawTransactionHash: Hash32{9},
			Payload:            HexBytes{1, 2, 3},
			KeyID:              "key-1",
		},
	}

	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got EncryptedTransaction
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != EncryptedTransactionTypeSkde || got.Skde == nil {
		t.Fatalf("got %+v, want skde variant", got)
	}
	if got.Skde.KeyID != "key-1" || got.Pvde != nil {
		t.Errorf("skde payload mismatch: %+v", got.Skde)
	}

	hash, err := got.RawTransactionHash()
	if err != nil {
		t.Fatalf("raw transaction hash: %v", err)
	}
	if hash != want.Skde.RawTransactionHash {
		t.Errorf("hash mismatch: got %s, want %s", hash, want.Skde.RawTransactionHash)
	}
}

func TestEncryptedTransaction_PvdeRoundTrip(t *testing.T) {
	want := EncryptedTransaction{
		Type: EncryptedTransactionTypePvde,
		Pvde: &PvdeEnvelope{
			RawTransactionHash: Hash32{4},
			Payload:            HexBytes{5, 6},
			TimeLockPuzzle:     HexBytes{7, 8},
		},
	}

	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got EncryptedTransaction
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != EncryptedTransactionTypePvde || got.Pvde == nil || got.Skde != nil {
		t.Fatalf("got %+v, want pvde variant", got)
	}
}

func TestEncryptedTransaction_UnknownVariantRejected(t *testing.T) {
	raw := []byte(`{"type":"bogus"}`)
	var got EncryptedTransaction
	if err := json.Unmarshal(raw, &got); err == nil {
		t.Error("expected error unmarshaling unknown variant, got nil")
	}
}

func TestOrderCommitment_TransactionHashRoundTrip(t *testing.T) {
	want := OrderCommitment{
		Type:            OrderCommitmentTypeTransactionHash,
		TransactionHash: "0xabc",
	}
	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got OrderCommitment
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.TransactionHash != want.TransactionHash || got.Sign != nil {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestOrderCommitment_SignRoundTrip(t *testing.T) {
	want := OrderCommitment{
		Type: OrderCommitmentTypeSign,
		Sign: &SignedOrderCommitment{
			Data: SignedOrderCommitmentData{
				RollupID:          "rollup-1",
				BlockHeight:       10,
				TransactionOrder:  2,
				PreviousOrderHash: Hash32{3},
			},
			Signature: HexBytes{0xaa, 0xbb},
		},
	}
	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got OrderCommitment
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Sign == nil || got.Sign.Data.RollupID != "rollup-1" || got.Sign.Data.BlockHeight != 10 {
		t.Errorf("got %+v, want matching sign payload", got.Sign)
	}
}

func strPtr(s string) *string { return &s }

func TestCluster_LeaderIndexWrapsByHeightModN(t *testing.T) {
	c := Cluster{
		SequencerRPCURLList: []*string{strPtr("a"), strPtr("b"), strPtr("c")},
		MyIndex:             1,
	}

	cases := map[uint64]int{0: 0, 1: 1, 2: 2, 3: 0, 4: 1}
	for height, want := range cases {
		got, err := c.LeaderIndex(height)
		if err != nil {
			t.Fatalf("height %d: %v", height, err)
		}
		if got != want {
			t.Errorf("height %d: got leader index %d, want %d", height, got, want)
		}
	}

	if !c.IsLeader(4) {
		t.Error("node at MyIndex 1 should lead height 4 (4 mod 3 == 1)")
	}
	if c.IsLeader(3) {
		t.Error("node at MyIndex 1 should not lead height 3 (3 mod 3 == 0)")
	}
}

func TestCluster_LeaderIndexEmptyList(t *testing.T) {
	c := Cluster{}
	if _, err := c.LeaderIndex(0); err == nil {
		t.Error("expected error for empty sequencer list, got nil")
	}
}

func TestCluster_OthersRPCURLListExcludesSelfAndEmpty(t *testing.T) {
	c := Cluster{
		SequencerRPCURLList: []*string{strPtr("self"), nil, strPtr("peer"), strPtr("")},
		MyIndex:             0,
	}
	others := c.OthersRPCURLList()
	if len(others) != 1 || others[0] != "peer" {
		t.Errorf("got %v, want [peer]", others)
	}
}

func TestRollupMetadata_AdvanceHeightResetsPerHeightCounters(t *testing.T) {
	m := RollupMetadata{
		RollupID:          "rollup-1",
		RollupBlockHeight:  3,
		TransactionOrder:   7,
		OrderHash:          Hash32{1, 2, 3},
	}

	m.AdvanceHeight(4, true, 100)

	if m.RollupBlockHeight != 4 {
		t.Errorf("height = %d, want 4", m.RollupBlockHeight)
	}
	if m.TransactionOrder != 0 {
		t.Errorf("transaction order = %d, want reset to 0", m.TransactionOrder)
	}
	if m.OrderHash != ZeroHash32 {
		t.Errorf("order hash = %s, want reset to zero", m.OrderHash)
	}
	if !m.IsLeader {
		t.Error("is_leader should carry the value passed to AdvanceHeight")
	}
	if m.PlatformBlockHeight != 100 {
		t.Errorf("platform block height = %d, want 100", m.PlatformBlockHeight)
	}
}

func TestRollup_HasExecutor(t *testing.T) {
	addr := common.HexToAddress("0x0000000000000000000000000000000000000001")
	other := common.HexToAddress("0x0000000000000000000000000000000000000002")
	r := Rollup{ExecutorAddressList: []common.Address{addr, other}}
	if !r.HasExecutor(addr) {
		t.Error("expected addr to be found in executor list")
	}
	if r.HasExecutor(common.HexToAddress("0x0000000000000000000000000000000000000009")) {
		t.Error("unexpected executor match")
	}
}
