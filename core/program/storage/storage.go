// Package storage implements the Storage built-in program: an account
// that holds a caller-supplied proof blob capped at a fixed size
// (§4.4's "illustrative additional programs").
package storage

import (
	"fmt"

	"github.com/lumeranet/ledgerengine/core/program"
	"github.com/lumeranet/ledgerengine/core/types"
)

// ID is the Storage program's well-known program id.
var ID = types.ProgramId{2}

// MaxBlobSize bounds the stored proof blob.
const MaxBlobSize = 1024

// Program is the built-in Storage program: KeyList = [payer, target].
// Userdata is the raw blob to store, replacing the target account's
// StateBytes outright (single-slot storage, not a true append log,
// matching the "minimal illustrative state machine" scope of §4.4).
type Program struct{}

func (Program) Execute(view program.AccountView, userdata []byte) error {
	if view.Len() < 2 {
		return fmt.Errorf("storage: needs a payer and a target account")
	}
	if len(userdata) > MaxBlobSize {
		return fmt.Errorf("storage: blob of %d bytes exceeds the %d byte cap", len(userdata), MaxBlobSize)
	}
	target := view.Get(1)
	target.StateBytes = append([]byte(nil), userdata...)
	view.Set(1, target)
	return nil
}
