package lastid

import (
	"errors"
	"testing"

	"github.com/lumeranet/ledgerengine/crypto"
)

func TestReserveUnknownTip(t *testing.T) {
	r := NewRing()
	err := r.Reserve(crypto.Signature{1}, crypto.Hash{1})
	if !errors.Is(err, ErrLastIdNotFound) {
		t.Fatalf("expected ErrLastIdNotFound, got %v", err)
	}
}

// TestReserveDuplicateSignature is scenario S3 from the testable
// properties list.
func TestReserveDuplicateSignature(t *testing.T) {
	r := NewRing()
	tip := crypto.Hash{1}
	sig := crypto.Signature{1}
	r.Register(tip)

	if err := r.Reserve(sig, tip); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if err := r.Reserve(sig, tip); !errors.Is(err, ErrDuplicateSignature) {
		t.Fatalf("expected ErrDuplicateSignature on the second reserve, got %v", err)
	}
}

// TestRingEvictionDropsSignatures is scenario S4: once a tip is
// evicted past capacity, reserving against it fails as not-found.
func TestRingEvictionDropsSignatures(t *testing.T) {
	r := NewRing()
	original := crypto.Hash{0xAA}
	r.Register(original)

	for i := 0; i < MaxEntryIds; i++ {
		var h crypto.Hash
		h[0] = byte(i)
		h[1] = byte(i >> 8)
		h[2] = 1 // keep distinct from `original`
		r.Register(h)
	}

	if r.Has(original) {
		t.Fatal("expected the original tip to have been evicted")
	}
	if err := r.Reserve(crypto.Signature{1}, original); !errors.Is(err, ErrLastIdNotFound) {
		t.Fatalf("expected ErrLastIdNotFound after eviction, got %v", err)
	}
	if got := r.Len(); got != MaxEntryIds {
		t.Fatalf("expected ring to stay at capacity %d, got %d", MaxEntryIds, got)
	}
}

func TestUpdateAndGetStatus(t *testing.T) {
	r := NewRing()
	tip := crypto.Hash{1}
	sig := crypto.Signature{1}
	r.Register(tip)
	_ = r.Reserve(sig, tip)

	wantErr := errors.New("boom")
	r.UpdateStatus(sig, tip, Result{Err: wantErr})

	got, ok := r.GetStatus(sig)
	if !ok {
		t.Fatal("expected GetStatus to find the signature")
	}
	if got.Err != wantErr {
		t.Errorf("expected recorded error %v, got %v", wantErr, got.Err)
	}
}

func TestClearSignaturesKeepsTips(t *testing.T) {
	r := NewRing()
	tip := crypto.Hash{1}
	sig := crypto.Signature{1}
	r.Register(tip)
	_ = r.Reserve(sig, tip)

	r.ClearSignatures()

	if !r.Has(tip) {
		t.Fatal("expected ClearSignatures to keep the tip registered")
	}
	if err := r.Reserve(sig, tip); err != nil {
		t.Fatalf("expected the signature set to have been cleared, got %v", err)
	}
}

func TestCountValid(t *testing.T) {
	r := NewRing()
	a, b := crypto.Hash{1}, crypto.Hash{2}
	r.Register(a)

	got := r.CountValid([]crypto.Hash{a, b})
	if len(got) != 1 || got[0].Index != 0 {
		t.Fatalf("expected exactly one valid candidate at index 0, got %+v", got)
	}
}
