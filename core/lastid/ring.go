// Package lastid implements the LastIdRing (§4.2): a bounded FIFO of
// recent chain-tip hashes, each carrying the set of transaction
// signatures already applied under that tip, sharded the way the
// teacher's core/txpool shards pending transactions by sender — one
// lock-protected bucket per key, here per tip.
package lastid

import (
	"sync"
	"time"

	"github.com/lumeranet/ledgerengine/crypto"
)

// MaxEntryIds bounds the ring's capacity (§3).
const MaxEntryIds = 16384

// Result is the recorded outcome of a transaction's execution, stored
// under its signature once known.
type Result struct {
	Err error
}

type bucket struct {
	createdAt time.Time
	sigs      map[crypto.Signature]Result
}

// Ring is the LastIdRing: a bounded, evicting sequence of recent chain
// tips.
type Ring struct {
	mu      sync.RWMutex
	order   []crypto.Hash // oldest first
	buckets map[crypto.Hash]*bucket
}

// NewRing returns an empty ring.
func NewRing() *Ring {
	return &Ring{buckets: make(map[crypto.Hash]*bucket)}
}

// Register appends tip, evicting the oldest tip and its signature set
// together when the ring is at capacity.
func (r *Ring) Register(tip crypto.Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.buckets[tip]; exists {
		return
	}
	if len(r.order) >= MaxEntryIds {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.buckets, oldest)
	}
	r.order = append(r.order, tip)
	r.buckets[tip] = &bucket{createdAt: time.Now(), sigs: make(map[crypto.Signature]Result)}
}

// Reserve records that signature has been seen under tip, failing if
// tip is unknown or the signature was already reserved there (§4.2).
func (r *Ring) Reserve(sig crypto.Signature, tip crypto.Hash) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buckets[tip]
	if !ok {
		return ErrLastIdNotFound
	}
	if _, dup := b.sigs[sig]; dup {
		return ErrDuplicateSignature
	}
	b.sigs[sig] = Result{}
	return nil
}

// UpdateStatus records the execution outcome for a previously reserved
// signature.
func (r *Ring) UpdateStatus(sig crypto.Signature, tip crypto.Hash, result Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buckets[tip]
	if !ok {
		return
	}
	b.sigs[sig] = result
}

// GetStatus scans every tip bucket for sig and returns its recorded
// result, if any.
func (r *Ring) GetStatus(sig crypto.Signature) (Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, tip := range r.order {
		if res, ok := r.buckets[tip].sigs[sig]; ok {
			return res, true
		}
	}
	return Result{}, false
}

// TipTimestamp is one entry of CountValid's result.
type TipTimestamp struct {
	Index     int
	CreatedAt time.Time
}

// CountValid reports, for each candidate tip still present in the
// ring, its index in tips and registration timestamp.
func (r *Ring) CountValid(tips []crypto.Hash) []TipTimestamp {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []TipTimestamp
	for i, tip := range tips {
		if b, ok := r.buckets[tip]; ok {
			out = append(out, TipTimestamp{Index: i, CreatedAt: b.createdAt})
		}
	}
	return out
}

// ClearSignatures drops every bucket's signature set while keeping the
// tips registered, used by tests and by role-transition recovery.
func (r *Ring) ClearSignatures() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.buckets {
		b.sigs = make(map[crypto.Signature]Result)
	}
}

// Len reports the number of tips currently held.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Has reports whether tip is currently registered.
func (r *Ring) Has(tip crypto.Hash) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.buckets[tip]
	return ok
}
