// Package types holds the core data-model shared by every domain
// package: accounts, transactions, and the Entries that bind them to
// the hash chain (§3).
package types

import "github.com/lumeranet/ledgerengine/crypto"

// AccountId identifies an account by its Ed25519 public key. Equality
// is by value, matching §3's "addressable by value; equality by
// bytes."
type AccountId [crypto.PublicKeySize]byte

// ProgramId identifies a built-in or dynamically-loaded program, using
// the same 32-byte key space as AccountId.
type ProgramId [crypto.PublicKeySize]byte

// MaxStateBytes bounds Account.StateBytes; the System program's
// CreateAccount instruction enforces it at creation time (§3's "space"
// parameter carried over from the original).
const MaxStateBytes = 1 << 16

// Account is the unit of ledger state: a token balance plus
// program-owned opaque bytes.
type Account struct {
	OwnerProgramId ProgramId
	Balance        int64
	StateBytes     []byte
}

// Clone returns a deep copy, used by AccountStore so the copies it
// hands out and stores never alias a caller's StateBytes slice.
func (a Account) Clone() Account {
	out := Account{OwnerProgramId: a.OwnerProgramId, Balance: a.Balance}
	if a.StateBytes != nil {
		out.StateBytes = append([]byte(nil), a.StateBytes...)
	}
	return out
}
