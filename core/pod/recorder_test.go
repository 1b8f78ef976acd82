package pod

import (
	"testing"

	"github.com/lumeranet/ledgerengine/core/lastid"
	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/crypto"
)

func TestRecorderTickThenEmit(t *testing.T) {
	ring := lastid.NewRing()
	genesis := crypto.Hash{1}
	r := NewRecorder(genesis, ring)

	r.Tick()
	r.Tick()
	r.Tick()
	entry := r.EmitTick()

	if entry.NumHashes != 3 {
		t.Fatalf("expected 3 accumulated ticks, got %d", entry.NumHashes)
	}
	if !entry.IsTick() {
		t.Fatal("expected an empty-transaction tick entry")
	}
	if entry.Id != crypto.HashN(genesis, 3) {
		t.Errorf("expected the tick entry id to be H^3(genesis)")
	}
	if !ring.Has(entry.Id) {
		t.Error("expected the new tip to be registered in the ring")
	}
}

func TestRecorderRecordBatchResetsCounter(t *testing.T) {
	ring := lastid.NewRing()
	genesis := crypto.Hash{1}
	r := NewRecorder(genesis, ring)

	r.Tick()
	r.Tick()
	batch := []types.Transaction{{Fee: 1}}
	entry := r.RecordBatch(batch)

	if entry.NumHashes != 2 {
		t.Fatalf("expected 2 accumulated ticks before the batch, got %d", entry.NumHashes)
	}
	if entry.IsTick() {
		t.Fatal("expected a non-empty work entry")
	}

	// The idle counter must have reset: a following tick-only emission
	// reports 1, not 3.
	r.Tick()
	next := r.EmitTick()
	if next.NumHashes != 1 {
		t.Fatalf("expected the idle counter to have reset after RecordBatch, got %d", next.NumHashes)
	}
}
