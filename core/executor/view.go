package executor

import "github.com/lumeranet/ledgerengine/core/types"

// view is the concrete program.AccountView the executor hands to the
// dispatched program: the in-flight copies of every key-list account,
// indexed the same way as the transaction's key list.
type view struct {
	keys     []types.AccountId
	accounts []types.Account
}

func (v *view) Len() int                  { return len(v.accounts) }
func (v *view) Key(i int) types.AccountId { return v.keys[i] }
func (v *view) Get(i int) types.Account   { return v.accounts[i] }
func (v *view) Set(i int, a types.Account) { v.accounts[i] = a }
