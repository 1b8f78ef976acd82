package budget

import (
	"errors"
	"testing"
	"time"

	"github.com/lumeranet/ledgerengine/core/executor"
	"github.com/lumeranet/ledgerengine/core/lastid"
	"github.com/lumeranet/ledgerengine/core/program"
	"github.com/lumeranet/ledgerengine/core/state"
	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/crypto"
)

func newHarness(t *testing.T) (*executor.Executor, *state.AccountStore, *lastid.Ring) {
	t.Helper()
	store := state.NewAccountStore()
	ring := lastid.NewRing()
	registry := program.NewRegistry()
	registry.Register(ID, Program{})
	return executor.New(store, ring, registry, nil), store, ring
}

func mustEncode(t *testing.T, instr Instruction) []byte {
	t.Helper()
	data, err := instr.Encode()
	if err != nil {
		t.Fatalf("encode instruction: %v", err)
	}
	return data
}

// TestBudgetUnconditionalPayThroughApply exercises NewContract followed
// by the matching ApplySignature that releases a Pay plan.
func TestBudgetUnconditionalPayThroughApply(t *testing.T) {
	exec, store, ring := newHarness(t)
	tip := crypto.Hash{1}
	ring.Register(tip)

	funder, contractAcct, recipient := types.AccountId{1}, types.AccountId{2}, types.AccountId{3}
	store.Commit([]state.Update{{Id: funder, Account: types.Account{Balance: 100}}})

	newContract := Instruction{Kind: KindNewContract, NewContract: Contract{
		Tokens: 10,
		Plan:   Plan{Kind: PlanPay, Pay: Payment{Tokens: 10, To: recipient}},
	}}
	tx1 := types.Transaction{
		ProgramId: ID,
		KeyList:   []types.AccountId{funder, contractAcct},
		LastId:    tip,
		Userdata:  mustEncode(t, newContract),
	}
	tx1.Signature[0] = 1
	if err := exec.ExecuteOne(&tx1); err != nil {
		t.Fatalf("NewContract: %v", err)
	}

	apply := Instruction{Kind: KindApplySignature}
	tx2 := types.Transaction{
		ProgramId: ID,
		KeyList:   []types.AccountId{funder, contractAcct, recipient},
		LastId:    tip,
		Userdata:  mustEncode(t, apply),
	}
	tx2.Signature[0] = 2
	if err := exec.ExecuteOne(&tx2); err != nil {
		t.Fatalf("ApplySignature: %v", err)
	}

	got, ok := store.Get(recipient)
	if !ok || got.Balance != 10 {
		t.Fatalf("expected recipient to hold 10, got %+v, ok=%v", got, ok)
	}
}

// TestBudgetSecondApplyAfterResolutionFails ensures a resolved contract
// can't be drained twice (the first-to-reserve-wins rule from §9).
func TestBudgetSecondApplyAfterResolutionFails(t *testing.T) {
	exec, store, ring := newHarness(t)
	tip := crypto.Hash{1}
	ring.Register(tip)

	funder, contractAcct, recipient := types.AccountId{1}, types.AccountId{2}, types.AccountId{3}
	store.Commit([]state.Update{{Id: funder, Account: types.Account{Balance: 100}}})

	newContract := Instruction{Kind: KindNewContract, NewContract: Contract{
		Tokens: 10,
		Plan:   Plan{Kind: PlanPay, Pay: Payment{Tokens: 10, To: recipient}},
	}}
	tx1 := types.Transaction{ProgramId: ID, KeyList: []types.AccountId{funder, contractAcct}, LastId: tip, Userdata: mustEncode(t, newContract)}
	tx1.Signature[0] = 1
	if err := exec.ExecuteOne(&tx1); err != nil {
		t.Fatalf("NewContract: %v", err)
	}

	apply := Instruction{Kind: KindApplySignature}
	for i, sig := range []byte{2, 3} {
		tx := types.Transaction{ProgramId: ID, KeyList: []types.AccountId{funder, contractAcct, recipient}, LastId: tip, Userdata: mustEncode(t, apply)}
		tx.Signature[0] = sig
		err := exec.ExecuteOne(&tx)
		if i == 0 && err != nil {
			t.Fatalf("first apply should succeed: %v", err)
		}
		if i == 1 && err == nil {
			t.Fatal("expected the second apply against a resolved contract to fail")
		}
	}
}

// TestScenario_S5_TamperedUserdataPayment mirrors spec scenario S5: a
// BudgetPlan NewContract whose declared payment no longer matches its
// declared token amount is rejected before ever touching balances.
func TestScenario_S5_TamperedUserdataPayment(t *testing.T) {
	exec, store, ring := newHarness(t)
	tip := crypto.Hash{1}
	ring.Register(tip)

	funder, contractAcct, recipient := types.AccountId{1}, types.AccountId{2}, types.AccountId{3}
	store.Commit([]state.Update{{Id: funder, Account: types.Account{Balance: 100}}})

	tampered := Instruction{Kind: KindNewContract, NewContract: Contract{
		Tokens: 1,
		Plan:   Plan{Kind: PlanPay, Pay: Payment{Tokens: 2, To: recipient}},
	}}
	tx := types.Transaction{ProgramId: ID, KeyList: []types.AccountId{funder, contractAcct}, LastId: tip, Userdata: mustEncode(t, tampered)}
	tx.Signature[0] = 1

	err := exec.ExecuteOne(&tx)
	if !errors.Is(err, executor.ErrProgramRuntimeError) {
		t.Fatalf("expected ErrProgramRuntimeError from the branch-sum mismatch, got %v", err)
	}
	if got, ok := store.Get(contractAcct); ok {
		t.Fatalf("expected no commit for a rejected contract, got %+v", got)
	}
	if got, _ := store.Get(funder); got.Balance != 100 {
		t.Fatalf("expected the funder's balance untouched, got %d", got.Balance)
	}
}

// TestBudgetOrPlanFirstBranchWins exercises the cancelable-transfer
// shape: whichever witness is supplied first resolves the contract.
func TestBudgetOrPlanFirstBranchWins(t *testing.T) {
	exec, store, ring := newHarness(t)
	tip := crypto.Hash{1}
	ring.Register(tip)

	funder, contractAcct, payee := types.AccountId{1}, types.AccountId{2}, types.AccountId{3}
	store.Commit([]state.Update{{Id: funder, Account: types.Account{Balance: 100}}})

	plan := Plan{
		Kind: PlanOr,
		A:    Branch{Condition: Condition{Kind: ConditionSignature, Witness: payee}, Payment: Payment{Tokens: 5, To: payee}},
		B:    Branch{Condition: Condition{Kind: ConditionSignature, Witness: funder}, Payment: Payment{Tokens: 5, To: funder}},
	}
	newContract := Instruction{Kind: KindNewContract, NewContract: Contract{Tokens: 5, Plan: plan}}
	tx1 := types.Transaction{ProgramId: ID, KeyList: []types.AccountId{funder, contractAcct}, LastId: tip, Userdata: mustEncode(t, newContract)}
	tx1.Signature[0] = 1
	if err := exec.ExecuteOne(&tx1); err != nil {
		t.Fatalf("NewContract: %v", err)
	}

	apply := Instruction{Kind: KindApplySignature}
	tx2 := types.Transaction{ProgramId: ID, KeyList: []types.AccountId{payee, contractAcct, payee}, LastId: tip, Userdata: mustEncode(t, apply)}
	tx2.Signature[0] = 2
	if err := exec.ExecuteOne(&tx2); err != nil {
		t.Fatalf("ApplySignature: %v", err)
	}

	got, ok := store.Get(payee)
	if !ok || got.Balance != 5 {
		t.Fatalf("expected the payee branch to have resolved, got %+v, ok=%v", got, ok)
	}
}

func TestInstructionEncodeDecodeRoundTrip(t *testing.T) {
	want := Instruction{Kind: KindApplyTimestamp, At: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	data := mustEncode(t, want)
	got, err := decodeInstruction(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.At.Equal(want.At) {
		t.Errorf("expected At %v, got %v", want.At, got.At)
	}
}
