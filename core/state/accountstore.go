// Package state holds the process-wide AccountStore, the
// reader/writer-guarded map of account id to Account (§4.1), grounded
// in the teacher's core/state StateDB: a map guarded by sync.RWMutex,
// with a deterministic digest folded over sorted keys.
package state

import (
	"sort"
	"sync"

	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/crypto"
	"github.com/lumeranet/ledgerengine/log"
)

// Update is one (id, Account) pair in a batch commit.
type Update struct {
	Id      types.AccountId
	Account types.Account
}

// AccountStore is the shared, mutable mapping of account id to
// Account. Construct one with NewAccountStore; the zero value has no
// map or logger and is not usable.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[types.AccountId]types.Account
	log      log.Logger
}

// NewAccountStore returns an empty store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[types.AccountId]types.Account),
		log:      log.New("component", "accountstore"),
	}
}

// Get returns a copy of the account at id, and whether it exists.
func (s *AccountStore) Get(id types.AccountId) (types.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return types.Account{}, false
	}
	return a.Clone(), true
}

// Commit applies updates atomically: readers observe either the full
// pre-state or the full post-state, never a partial mix (§4.1).
// Accounts whose balance lands at zero are removed.
func (s *AccountStore) Commit(updates []Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range updates {
		if u.Account.Balance == 0 {
			delete(s.accounts, u.Id)
			continue
		}
		s.accounts[u.Id] = u.Account.Clone()
	}
	s.log.Debug("committed batch", "accounts", len(updates))
}

// SnapshotHash computes a deterministic digest over every account in
// sorted id order, folding (id, owner, balance, state-bytes) per
// account so the result is stable across equivalent states regardless
// of insertion history (§4.1, invariant 6 in §8).
func (s *AccountStore) SnapshotHash() crypto.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]types.AccountId, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return lessBytes(ids[i][:], ids[j][:])
	})

	tip := crypto.Hash{}
	for _, id := range ids {
		a := s.accounts[id]
		buf := make([]byte, 0, len(id)+len(a.OwnerProgramId)+8+len(a.StateBytes))
		buf = append(buf, id[:]...)
		buf = append(buf, a.OwnerProgramId[:]...)
		buf = appendInt64(buf, a.Balance)
		buf = append(buf, a.StateBytes...)
		tip = crypto.HashAppend(tip, crypto.Sum256(buf))
	}
	return tip
}

// Len returns the number of accounts currently held, used by tests and
// the garbage-collection invariant check.
func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

func lessBytes(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func appendInt64(buf []byte, v int64) []byte {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(u>>(56-8*i)))
	}
	return buf
}
