package wire

import (
	"context"
	"testing"
	"time"

	"github.com/lumeranet/ledgerengine/core/types"
)

func TestTransactionEncodeDecodeRoundTrip(t *testing.T) {
	tx := &types.Transaction{Fee: 3, KeyList: []types.AccountId{{1}}}
	data, err := EncodeTransaction(tx)
	if err != nil {
		t.Fatalf("EncodeTransaction: %v", err)
	}
	got, err := DecodeTransaction(data)
	if err != nil {
		t.Fatalf("DecodeTransaction: %v", err)
	}
	if got.Fee != tx.Fee {
		t.Errorf("expected fee %d, got %d", tx.Fee, got.Fee)
	}
}

func TestEntryEncodeDecodeRoundTrip(t *testing.T) {
	e := &types.Entry{NumHashes: 5, Transactions: []types.Transaction{{Fee: 1}}}
	data, err := EncodeEntry(e)
	if err != nil {
		t.Fatalf("EncodeEntry: %v", err)
	}
	got, err := DecodeEntry(data)
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	if got.NumHashes != e.NumHashes || len(got.Transactions) != 1 {
		t.Errorf("round trip mismatch: got %+v", got)
	}
}

func TestMemoryLinkFetchPacketsBlocksUntilSend(t *testing.T) {
	link := NewMemoryLink()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan []*Packet, 1)
	go func() {
		pkts, _ := link.FetchPackets(ctx)
		done <- pkts
	}()

	time.Sleep(10 * time.Millisecond)
	link.SendPacket(&Packet{Data: []byte("hi")})

	select {
	case pkts := <-done:
		if len(pkts) != 1 {
			t.Fatalf("expected 1 packet, got %d", len(pkts))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for FetchPackets")
	}
}

func TestMemoryLinkFetchPacketsRespectsCancellation(t *testing.T) {
	link := NewMemoryLink()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := link.FetchPackets(ctx); err == nil {
		t.Fatal("expected FetchPackets to report the cancellation error")
	}
}

func TestMemoryLinkRequestRepairRecorded(t *testing.T) {
	link := NewMemoryLink()
	if err := link.RequestRepair(context.Background(), 42); err != nil {
		t.Fatalf("RequestRepair: %v", err)
	}
	got := link.Repairs()
	if len(got) != 1 || got[0] != 42 {
		t.Fatalf("expected repair request for height 42, got %v", got)
	}
}

func TestPacketMarkChecked(t *testing.T) {
	p := &Packet{Data: []byte("x")}
	if p.Checked() {
		t.Fatal("expected a fresh packet to be unchecked")
	}
	p.MarkChecked(true)
	if !p.Checked() || !p.Valid {
		t.Fatal("expected the packet to be checked and valid")
	}
}
