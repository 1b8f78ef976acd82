package node

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/lumeranet/ledgerengine/core/lastid"
	"github.com/lumeranet/ledgerengine/core/pod"
	"github.com/lumeranet/ledgerengine/core/program/system"
	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/crypto"
	"github.com/lumeranet/ledgerengine/ledgerstore"
	"github.com/lumeranet/ledgerengine/rotation"
	"github.com/lumeranet/ledgerengine/wire"
)

func writeTestGenesis(t *testing.T, f *os.File, mint, dest types.AccountId) crypto.Hash {
	t.Helper()
	genesisTip := crypto.Hash{7}
	store := ledgerstore.New(f)

	tick := types.Entry{Id: genesisTip}
	if err := store.Append(&tick); err != nil {
		t.Fatalf("append genesis tick: %v", err)
	}

	data, err := system.Instruction{Kind: system.KindTransfer, Tokens: 1000}.Encode()
	if err != nil {
		t.Fatalf("encode mint instruction: %v", err)
	}
	mintTx := types.Transaction{ProgramId: system.ID, KeyList: []types.AccountId{mint, dest}, LastId: genesisTip, Userdata: data}
	mintTx.Signature[0] = 0xAA
	mintEntry := types.Entry{NumHashes: 1, Id: crypto.HashOnce(genesisTip), Transactions: []types.Transaction{mintTx}}
	if err := store.Append(&mintEntry); err != nil {
		t.Fatalf("append mint entry: %v", err)
	}
	return mintEntry.Id
}

// TestSupervisorRotatesAndAnnounces mirrors spec scenario S6: a node
// boots as a validator, a LeaderSchedule names it leader a couple of
// heights out, and once replay crosses that boundary the supervisor
// rebuilds from the ledger and reports the transition on its
// RotationNotice feed (§4.8, §9's event-package wiring).
func TestSupervisorRotatesAndAnnounces(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "ledger-*")
	if err != nil {
		t.Fatalf("create temp ledger: %v", err)
	}
	defer f.Close()

	mint, dest := types.AccountId{0xAA}, types.AccountId{0xBB}
	tip := writeTestGenesis(t, f, mint, dest)

	self := types.AccountId{0x01}
	other := types.AccountId{0x02}
	schedule := rotation.NewSchedule()
	schedule.Set(2, other)
	schedule.Set(3, self)

	sourceRing := lastid.NewRing()
	sourceRing.Register(tip)
	sourceRecorder := pod.NewRecorder(tip, sourceRing)
	data, err := system.Instruction{Kind: system.KindTransfer, Tokens: 10}.Encode()
	if err != nil {
		t.Fatalf("encode transfer instruction: %v", err)
	}
	extraTx := types.Transaction{ProgramId: system.ID, KeyList: []types.AccountId{mint, dest}, LastId: tip, Userdata: data}
	extraTx.Signature[0] = 0xCC
	extraEntry := sourceRecorder.RecordBatch([]types.Transaction{extraTx})

	payload, err := wire.EncodeEntry(&extraEntry)
	if err != nil {
		t.Fatalf("encode entry: %v", err)
	}
	link := wire.NewMemoryLink()
	link.SendBlob(&wire.Blob{Header: wire.BlobHeader{Index: 2}, Payload: payload})

	cfg := Config{
		Self:           self,
		Schedule:       schedule,
		Ledger:         f,
		Link:           link,
		GenesisMint:    mint,
		GenesisBalance: 10000,
	}

	sup, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	notices := make(chan RotationNotice, 4)
	sub := sup.SubscribeRotations(notices)
	defer sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	select {
	case n := <-notices:
		if n.WasLeader {
			t.Fatal("expected the rotating term to have been a validator term")
		}
		if n.Height != 2 {
			t.Fatalf("expected rotation rebuild height 2 (ledger only carries genesis), got %d", n.Height)
		}
	case <-time.After(1500 * time.Millisecond):
		t.Fatal("timed out waiting for a RotationNotice")
	}

	cancel()
	<-done
}
