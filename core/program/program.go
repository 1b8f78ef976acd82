// Package program implements the ProgramRegistry and the account-view
// contract built-in and dynamically-loaded programs execute against
// (§4.4).
package program

import "github.com/lumeranet/ledgerengine/core/types"

// AccountView exposes the in-flight, mutable copies of the accounts a
// transaction's key-list references, keyed by key-list index. Index 0
// is always the fee payer (§3). Programs never see the AccountStore
// directly — only this bounded view, matching the teacher's pattern of
// handing EVM precompiles a StateDB view rather than the whole state.
type AccountView interface {
	Len() int
	Key(i int) types.AccountId
	Get(i int) types.Account
	Set(i int, a types.Account)
}

// Program is the single-operation capability every built-in and
// dynamically-loaded program implements (§9's "tagged variants ...
// dynamic programs implement a single-operation capability").
type Program interface {
	Execute(view AccountView, userdata []byte) error
}
