package ledgerstore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumeranet/ledgerengine/core/executor"
	"github.com/lumeranet/ledgerengine/core/lastid"
	"github.com/lumeranet/ledgerengine/core/program"
	"github.com/lumeranet/ledgerengine/core/program/system"
	"github.com/lumeranet/ledgerengine/core/state"
	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/crypto"
)

func mintGenesisTx(t *testing.T, mint, dest types.AccountId, tip crypto.Hash) types.Transaction {
	t.Helper()
	data, err := system.Instruction{Kind: system.KindTransfer, Tokens: 1000}.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	tx := types.Transaction{ProgramId: system.ID, KeyList: []types.AccountId{mint, dest}, LastId: tip}
	tx.Userdata = data
	tx.Signature[0] = 0xAA
	return tx
}

func writeGenesisLedger(t *testing.T) ([]byte, types.AccountId, types.AccountId) {
	t.Helper()
	genesisTip := crypto.Hash{1}
	mint, dest := types.AccountId{0xAA}, types.AccountId{0xBB}

	var buf bytes.Buffer
	store := New(&buf)

	tick := types.Entry{Id: genesisTip}
	if err := store.Append(&tick); err != nil {
		t.Fatalf("append tick: %v", err)
	}

	mintEntry := types.Entry{NumHashes: 1, Id: crypto.HashOnce(genesisTip), Transactions: []types.Transaction{mintGenesisTx(t, mint, dest, genesisTip)}}
	if err := store.Append(&mintEntry); err != nil {
		t.Fatalf("append mint entry: %v", err)
	}

	return buf.Bytes(), mint, dest
}

func TestValidateGenesisAcceptsWellFormedPair(t *testing.T) {
	data, _, _ := writeGenesisLedger(t)
	entries, err := ReadAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if err := ValidateGenesis(entries); err != nil {
		t.Fatalf("ValidateGenesis: %v", err)
	}
}

func TestValidateGenesisRejectsNonTickFirst(t *testing.T) {
	entries := []types.Entry{
		{Transactions: []types.Transaction{{}}},
		{Transactions: []types.Transaction{{}}},
	}
	if err := ValidateGenesis(entries); err == nil {
		t.Fatal("expected a non-tick first entry to be rejected")
	}
}

func TestValidateGenesisRejectsTooShort(t *testing.T) {
	if err := ValidateGenesis([]types.Entry{{}}); err == nil {
		t.Fatal("expected a single-entry ledger to be rejected")
	}
}

// TestReplayFromRebuildsState is scenario S6's recovery step: replay
// reproduces the same AccountStore the original execution produced.
func TestReplayFromRebuildsState(t *testing.T) {
	data, mint, dest := writeGenesisLedger(t)

	store := state.NewAccountStore()
	store.Commit([]state.Update{{Id: mint, Account: types.Account{OwnerProgramId: system.ID, Balance: 10000}}})
	ring := lastid.NewRing()
	ring.Register(crypto.Hash{1})
	registry := program.NewRegistry()
	registry.Register(system.ID, system.Program{})
	exec := executor.New(store, ring, registry, nil)

	result, err := ReplayFrom(bytes.NewReader(data), exec)
	require.NoError(t, err)
	require.Equal(t, 1, result.TransactionN, "expected 1 replayed transaction")

	got, ok := store.Get(dest)
	require.True(t, ok, "expected dest account to exist after replay")
	require.Equal(t, int64(1000), got.Balance, "expected dest to hold 1000 after replay")
}
