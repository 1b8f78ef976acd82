// Package system implements the built-in System program: account
// creation, token transfer, and owner reassignment (§4.4). It is the
// only program the executor permits to change an account's
// owner-program-id (§4.3 step 6).
package system

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/lumeranet/ledgerengine/core/program"
	"github.com/lumeranet/ledgerengine/core/types"
)

// Kind tags which System instruction an Instruction carries.
type Kind byte

const (
	KindCreateAccount Kind = iota
	KindTransfer
	KindAssign
)

// Instruction is the System program's tagged-union userdata payload.
type Instruction struct {
	Kind Kind

	// CreateAccount fields: create the account at key-list index 1,
	// funded by a debit against index 0's balance, no-op here (funding
	// is a separate Transfer in the same batch in the reference flow).
	Owner types.ProgramId
	Space uint32

	// Transfer fields: move Tokens from key-list index 0 to index 1.
	Tokens int64

	// Assign fields: reassign the account at key-list index 0 to
	// NewOwner.
	NewOwner types.ProgramId
}

// Encode serializes instr for use as a Transaction's Userdata.
func (instr Instruction) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(instr); err != nil {
		return nil, fmt.Errorf("system: encode instruction: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeInstruction is the inverse of Instruction.Encode, exported so
// callers outside this package (e.g. ledgerstore's genesis check) can
// inspect a System transaction's userdata without dispatching it.
func DecodeInstruction(userdata []byte) (Instruction, error) {
	var instr Instruction
	if err := gob.NewDecoder(bytes.NewReader(userdata)).Decode(&instr); err != nil {
		return Instruction{}, fmt.Errorf("system: decode instruction: %w", err)
	}
	return instr, nil
}

// Program is the built-in System program.
type Program struct{}

// ID is the System program's well-known program id: the zero value,
// matching the original's convention that the system program occupies
// id 0.
var ID types.ProgramId

// Execute dispatches on instr.Kind.
func (Program) Execute(view program.AccountView, userdata []byte) error {
	instr, err := DecodeInstruction(userdata)
	if err != nil {
		return err
	}
	switch instr.Kind {
	case KindCreateAccount:
		return executeCreateAccount(view, instr)
	case KindTransfer:
		return executeTransfer(view, instr)
	case KindAssign:
		return executeAssign(view, instr)
	default:
		return fmt.Errorf("system: unknown instruction kind %d", instr.Kind)
	}
}

func executeCreateAccount(view program.AccountView, instr Instruction) error {
	if view.Len() < 2 {
		return fmt.Errorf("system: CreateAccount needs a target account at index 1")
	}
	if instr.Space > types.MaxStateBytes {
		return fmt.Errorf("system: requested space %d exceeds the maximum account size", instr.Space)
	}
	target := view.Get(1)
	target.OwnerProgramId = instr.Owner
	if target.StateBytes == nil {
		target.StateBytes = make([]byte, instr.Space)
	}
	view.Set(1, target)
	return nil
}

func executeTransfer(view program.AccountView, instr Instruction) error {
	if view.Len() < 2 {
		return fmt.Errorf("system: Transfer needs a source and destination account")
	}
	from := view.Get(0)
	to := view.Get(1)
	from.Balance -= instr.Tokens
	to.Balance += instr.Tokens
	view.Set(0, from)
	view.Set(1, to)
	return nil
}

func executeAssign(view program.AccountView, instr Instruction) error {
	if view.Len() < 1 {
		return fmt.Errorf("system: Assign needs a target account at index 0")
	}
	target := view.Get(0)
	target.OwnerProgramId = instr.NewOwner
	view.Set(0, target)
	return nil
}
