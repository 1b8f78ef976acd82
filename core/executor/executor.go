package executor

import (
	"fmt"
	"sync/atomic"

	"github.com/lumeranet/ledgerengine/core/lastid"
	"github.com/lumeranet/ledgerengine/core/program"
	"github.com/lumeranet/ledgerengine/core/state"
	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/log"
	"github.com/lumeranet/ledgerengine/metrics"
)

// systemID is the well-known program id authorized to reassign an
// account's owner-program-id (§4.3 step 6). It is the zero ProgramId,
// matching core/program/system.ID.
var systemID types.ProgramId

// Executor applies one Transaction at a time against a shared
// AccountStore, LastIdRing, and program.Registry (§4.3).
type Executor struct {
	store    *state.AccountStore
	ring     *lastid.Ring
	registry *program.Registry
	log      log.Logger
	sink     metrics.MetricsSink

	committed atomic.Int64
}

// New returns an Executor wired to the given shared components. sink
// is the injected MetricsSink (§9's "isolate globals behind an
// interface so tests can inject a counting stub"); a nil sink falls
// back to metrics.NoopSink, the FullNode default when no concrete
// backend is configured.
func New(store *state.AccountStore, ring *lastid.Ring, registry *program.Registry, sink metrics.MetricsSink) *Executor {
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	return &Executor{
		store:    store,
		ring:     ring,
		registry: registry,
		log:      log.New("component", "executor"),
		sink:     sink,
	}
}

// Ring returns the LastIdRing this executor validates against, so
// callers that replay a ledger can register each Entry's tip as it
// becomes the newest recent id (§4.8's deterministic recovery path).
func (e *Executor) Ring() *lastid.Ring {
	return e.ring
}

// CommittedCount reports the number of transactions this executor has
// successfully applied, the figure the JSON-RPC getTransactionCount
// query reports (§6) since this design has no per-account nonce.
func (e *Executor) CommittedCount() int64 {
	return e.committed.Load()
}

// ExecuteOne applies a single transaction, returning its executor
// error (nil on success). This is the per-transaction pipeline
// described in §4.3, steps 1-8.
func (e *Executor) ExecuteOne(tx *types.Transaction) error {
	if err := e.executeOne(tx); err != nil {
		e.sink.IncCounter("executor/rejected", 1)
		e.ring.UpdateStatus(tx.Signature, tx.LastId, lastid.Result{Err: err})
		e.log.Debug("transaction rejected", "err", err)
		return err
	}
	e.committed.Add(1)
	e.sink.IncCounter("executor/committed", 1)
	e.ring.UpdateStatus(tx.Signature, tx.LastId, lastid.Result{})
	return nil
}

func (e *Executor) executeOne(tx *types.Transaction) error {
	if len(tx.KeyList) == 0 {
		return ErrAccountNotFound
	}

	// 1. Load.
	feePayer, ok := e.store.Get(tx.KeyList[0])
	if !ok {
		return ErrAccountNotFound
	}
	if feePayer.Balance < tx.Fee {
		return ErrInsufficientFundsForFee
	}

	accounts := make([]types.Account, len(tx.KeyList))
	accounts[0] = feePayer
	for i := 1; i < len(tx.KeyList); i++ {
		if a, ok := e.store.Get(tx.KeyList[i]); ok {
			accounts[i] = a
		}
		// Missing non-fee-payer accounts are lazily created with the
		// zero Account value (§3's "created lazily on first credit").
	}

	// 2. Reserve.
	if err := e.ring.Reserve(tx.Signature, tx.LastId); err != nil {
		if err == lastid.ErrDuplicateSignature {
			return ErrDuplicateSignature
		}
		return ErrLastIdNotFound
	}

	// 3. Pre-snapshot.
	preOwners := make([]types.ProgramId, len(accounts))
	var preTotal int64
	for i, a := range accounts {
		preOwners[i] = a.OwnerProgramId
		preTotal += a.Balance
	}

	// 4. Debit fee.
	accounts[0].Balance -= tx.Fee

	// preDispatchBalances is the baseline the "external account must
	// not lose tokens" check (step 6) compares against: the state
	// immediately before the program runs, so the executor's own fee
	// debit is never mistaken for program-caused spend.
	preDispatchBalances := make([]int64, len(accounts))
	for i, a := range accounts {
		preDispatchBalances[i] = a.Balance
	}

	// 5. Dispatch.
	prog, ok := e.registry.Lookup(tx.ProgramId)
	if !ok {
		return ErrUnknownContractId
	}
	v := &view{keys: tx.KeyList, accounts: accounts}
	if err := prog.Execute(v, tx.Userdata); err != nil {
		return fmt.Errorf("%w: %v", ErrProgramRuntimeError, err)
	}

	// 6. Post-check, per touched account.
	for i, a := range accounts {
		if a.OwnerProgramId != preOwners[i] {
			authorized := preOwners[i] == systemID && tx.ProgramId == systemID
			if !authorized {
				return ErrModifiedContractId
			}
		}
		if a.Balance < 0 {
			return ErrResultWithNegativeTokens
		}
		if preOwners[i] != tx.ProgramId && a.Balance < preDispatchBalances[i] {
			return ErrExternalAccountTokenSpend
		}
	}

	// 7. Balance-sum check. The fee leaves the touched-account set
	// entirely (collected externally, out of scope here), so the
	// conserved quantity is pre_total minus the fee just debited.
	var postTotal int64
	for _, a := range accounts {
		postTotal += a.Balance
	}
	if postTotal != preTotal-tx.Fee {
		return ErrUnbalancedTransaction
	}

	// 8. Commit.
	updates := make([]state.Update, len(accounts))
	for i, a := range accounts {
		updates[i] = state.Update{Id: tx.KeyList[i], Account: a}
	}
	e.store.Commit(updates)
	return nil
}

// ExecuteSerial applies batch strictly in order, returning one error
// per transaction (nil on success); an error on one transaction never
// affects the next (§4.3 "Batching").
func (e *Executor) ExecuteSerial(batch []types.Transaction) []error {
	out := make([]error, len(batch))
	for i := range batch {
		out[i] = e.ExecuteOne(&batch[i])
	}
	return out
}

// ExecuteBatch is semantically equivalent to ExecuteSerial
// (input-order commit); no pipeline calls it, the leader's Execute
// stage goes through ExecuteOne. It is implemented serially here
// because the shared AccountStore/LastIdRing locks already serialize
// the critical section; concurrent pre-validation is left to callers
// that can partition the batch by disjoint key sets.
func (e *Executor) ExecuteBatch(batch []types.Transaction) []error {
	return e.ExecuteSerial(batch)
}
