package budget

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/lumeranet/ledgerengine/core/program"
	"github.com/lumeranet/ledgerengine/core/types"
)

// ID is the BudgetPlan program's well-known program id.
var ID types.ProgramId = types.ProgramId{1}

// InstructionKind tags an Instruction.
type InstructionKind byte

const (
	KindNewContract InstructionKind = iota
	KindApplyTimestamp
	KindApplySignature
	// KindNewVote supplements the original's Vote transaction, routed
	// through the same program id (§8 "Supplemented from
	// original_source"). The vote payload itself is opaque to this
	// program; NewVote is a no-op state transition that exists purely
	// so a vote transaction passes ordinary executor validation.
	KindNewVote
)

// Instruction is the BudgetPlan program's tagged-union userdata
// payload, the Go shape of original_source's Instruction enum.
type Instruction struct {
	Kind InstructionKind

	NewContract Contract
	// Fee is the transaction fee the client declares for a NewContract
	// instruction, mirroring the original's `self.fee` in verify_plan:
	// the plan's branches must sum to contract.Tokens-Fee. It should
	// match the carrying Transaction's own Fee field.
	Fee int64
	At  time.Time // ApplyTimestamp
	Vote Vote
}

// Vote carries the version metadata the original's NewVote instruction
// stamps onto the chain tip it's built against.
type Vote struct {
	Version            uint64
	ContactInfoVersion uint64
}

// Encode serializes instr for use as a Transaction's Userdata.
func (instr Instruction) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(instr); err != nil {
		return nil, fmt.Errorf("budget: encode instruction: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeInstruction(userdata []byte) (Instruction, error) {
	var instr Instruction
	if err := gob.NewDecoder(bytes.NewReader(userdata)).Decode(&instr); err != nil {
		return Instruction{}, fmt.Errorf("budget: decode instruction: %w", err)
	}
	return instr, nil
}

// accountState is the contract account's StateBytes payload: the
// Contract plus a resolution flag that makes the "first witness to
// reserve a signature against the contract resolves it" rule (§9)
// concrete — once Resolved, further Apply* instructions are rejected.
type accountState struct {
	Contract Contract
	Resolved bool
}

func decodeState(data []byte) (accountState, error) {
	if len(data) == 0 {
		return accountState{}, fmt.Errorf("budget: account holds no contract state")
	}
	var st accountState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return accountState{}, fmt.Errorf("budget: decode contract state: %w", err)
	}
	return st, nil
}

func (st accountState) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(st); err != nil {
		return nil, fmt.Errorf("budget: encode contract state: %w", err)
	}
	return buf.Bytes(), nil
}

// Program is the built-in BudgetPlan program.
type Program struct{}

// Execute dispatches instr.Kind. Key-list conventions:
//
//	NewContract:            [funder (fee payer), contractAccount]
//	ApplyTimestamp/Signature: [witness (fee payer), contractAccount, destination]
//	NewVote:                [voter (fee payer)]
func (Program) Execute(view program.AccountView, userdata []byte) error {
	instr, err := decodeInstruction(userdata)
	if err != nil {
		return err
	}
	switch instr.Kind {
	case KindNewContract:
		return executeNewContract(view, instr.NewContract, instr.Fee)
	case KindApplyTimestamp:
		w := Witness{Kind: WitnessTimestamp, At: instr.At, Account: view.Key(0)}
		return executeApply(view, w)
	case KindApplySignature:
		w := Witness{Kind: WitnessSignature, Account: view.Key(0)}
		return executeApply(view, w)
	case KindNewVote:
		return nil
	default:
		return fmt.Errorf("budget: unknown instruction kind %d", instr.Kind)
	}
}

func executeNewContract(view program.AccountView, contract Contract, fee int64) error {
	if view.Len() < 2 {
		return fmt.Errorf("budget: NewContract needs a funder and a contract account")
	}
	// verify_plan (§8 invariant 3): fee must be non-negative, bounded
	// by the contract's declared tokens, and every plan branch must
	// disburse exactly tokens-fee.
	if fee < 0 || fee > contract.Tokens {
		return fmt.Errorf("budget: fee %d out of range for %d tokens", fee, contract.Tokens)
	}
	if !contract.Plan.Verify(contract.Tokens - fee) {
		return fmt.Errorf("budget: plan does not verify against %d tokens after fee", contract.Tokens-fee)
	}
	funder := view.Get(0)
	contractAccount := view.Get(1)

	funder.Balance -= contract.Tokens
	contractAccount.Balance += contract.Tokens
	contractAccount.OwnerProgramId = ID

	st := accountState{Contract: contract}
	data, err := st.encode()
	if err != nil {
		return err
	}
	contractAccount.StateBytes = data

	view.Set(0, funder)
	view.Set(1, contractAccount)
	return nil
}

func executeApply(view program.AccountView, w Witness) error {
	if view.Len() < 3 {
		return fmt.Errorf("budget: Apply needs a witness, a contract account, and a destination")
	}
	contractAccount := view.Get(1)
	if contractAccount.OwnerProgramId != ID {
		return fmt.Errorf("budget: account is not a BudgetPlan contract")
	}
	st, err := decodeState(contractAccount.StateBytes)
	if err != nil {
		return err
	}
	if st.Resolved {
		return fmt.Errorf("budget: contract already resolved")
	}

	branch, ok := resolveBranch(st.Contract.Plan, w)
	if !ok {
		return fmt.Errorf("budget: no branch satisfied by the supplied witness")
	}
	destination := view.Key(2)
	if branch.Payment.To != destination {
		return fmt.Errorf("budget: resolved branch pays a different destination than supplied")
	}

	dest := view.Get(2)
	dest.Balance += branch.Payment.Tokens
	contractAccount.Balance -= branch.Payment.Tokens
	st.Resolved = true
	data, err := st.encode()
	if err != nil {
		return err
	}
	contractAccount.StateBytes = data

	view.Set(1, contractAccount)
	view.Set(2, dest)
	return nil
}

// resolveBranch finds the first plan branch whose condition the given
// witness satisfies. For Pay, there is no condition; it always
// resolves. For After, the single branch must be satisfied. For Or,
// the first (in declared order, A then B) branch satisfied by w wins
// — the "first-to-reserve-signature-wins" rule from §9, since in
// practice A and B carry disjoint witness accounts and only one
// Apply* transaction can name the witness that makes its branch true.
func resolveBranch(p Plan, w Witness) (Branch, bool) {
	switch p.Kind {
	case PlanPay:
		return Branch{Payment: p.Pay}, true
	case PlanAfter:
		if p.A.Condition.Satisfied(w) {
			return p.A, true
		}
		return Branch{}, false
	case PlanOr:
		if p.A.Condition.Satisfied(w) {
			return p.A, true
		}
		if p.B.Condition.Satisfied(w) {
			return p.B, true
		}
		return Branch{}, false
	default:
		return Branch{}, false
	}
}
