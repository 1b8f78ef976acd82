package pod

import (
	"testing"

	"github.com/lumeranet/ledgerengine/core/lastid"
	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/crypto"
)

func buildChain(t *testing.T, nEntries int) (*Chain, crypto.Hash) {
	t.Helper()
	ring := lastid.NewRing()
	genesis := crypto.Hash{1}
	rec := NewRecorder(genesis, ring)
	chain := NewChain(genesis)
	for i := 0; i < nEntries; i++ {
		rec.Tick()
		if i%3 == 0 {
			chain.Append(rec.RecordBatch([]types.Transaction{{Fee: int64(i)}}))
		} else {
			chain.Append(rec.EmitTick())
		}
	}
	return chain, genesis
}

// TestChainVerifySucceedsOnGenuineChain is invariant 5 in the testable
// properties list: re-hashing from the previous tip reproduces a
// validly produced entry's id.
func TestChainVerifySucceedsOnGenuineChain(t *testing.T) {
	chain, _ := buildChain(t, 10)
	if err := chain.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestChainVerifyRejectsTamperedEntry(t *testing.T) {
	chain, _ := buildChain(t, 10)
	chain.entries[5].NumHashes++
	if err := chain.Verify(); err == nil {
		t.Fatal("expected Verify to reject a tampered entry")
	}
}

func TestChainVerifyParallelMatchesSerial(t *testing.T) {
	chain, _ := buildChain(t, 40)
	if err := chain.Verify(); err != nil {
		t.Fatalf("serial Verify: %v", err)
	}
	if err := chain.VerifyParallel(16); err != nil {
		t.Fatalf("VerifyParallel: %v", err)
	}
}

func TestChainVerifyParallelRejectsTamperedEntry(t *testing.T) {
	chain, _ := buildChain(t, 40)
	chain.entries[33].Id = crypto.Hash{0xFF}
	if err := chain.VerifyParallel(16); err == nil {
		t.Fatal("expected VerifyParallel to reject a tampered entry")
	}
}
