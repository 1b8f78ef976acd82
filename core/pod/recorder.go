package pod

import (
	"sync"

	"github.com/lumeranet/ledgerengine/core/lastid"
	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/crypto"
	"github.com/lumeranet/ledgerengine/log"
)

// Recorder is the serial hasher: it holds a single mutable
// (current tip, hashes since last entry) pair and emits Entries that
// bind transaction batches to the chain (§4.5).
//
// Tick, EmitTick and RecordBatch all take the same exclusive lock;
// RecordBatch holds it across advance-tip, register-tip-with-the-ring,
// and handing back the emitted Entry, and EmitTick across register and
// hand-back, so two observers of the emitted stream always see the same
// sequence of (tip, transactions), and the tip is visible to the
// executor via the ring before any downstream consumer can reference
// it (§4.5's recorder invariant).
type Recorder struct {
	mu        sync.Mutex
	tip       crypto.Hash
	numHashes uint64

	ring *lastid.Ring
	log  log.Logger
}

// NewRecorder starts a recorder at genesis, registering it in ring.
func NewRecorder(genesis crypto.Hash, ring *lastid.Ring) *Recorder {
	ring.Register(genesis)
	return &Recorder{tip: genesis, ring: ring, log: log.New("component", "pod-recorder")}
}

// Tip returns the current chain tip.
func (r *Recorder) Tip() crypto.Hash {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tip
}

// Tick advances the tip by one idle hash step without emitting an
// Entry, the per-step unit of "idle tick" mode (§4.5).
func (r *Recorder) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tip = crypto.HashOnce(r.tip)
	r.numHashes++
}

// EmitTick closes out accumulated idle ticks as a Tick Entry (empty
// transactions), registers the new tip, and resets the counter.
func (r *Recorder) EmitTick() types.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := types.Entry{NumHashes: r.numHashes, Id: r.tip}
	r.ring.Register(r.tip)
	r.numHashes = 0
	r.log.Debug("emitted tick entry", "num_hashes", entry.NumHashes)
	return entry
}

// RecordBatch folds a transaction batch's payload digest into the
// tip, emits the resulting Work Entry, registers the new tip, and
// resets the idle counter — the "record batch" mode of §4.5.
func (r *Recorder) RecordBatch(batch []types.Transaction) types.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := merkleOf(batch)
	r.tip = crypto.HashAppend(r.tip, m)
	entry := types.Entry{NumHashes: r.numHashes, Id: r.tip, Transactions: batch}
	r.ring.Register(r.tip)
	r.numHashes = 0
	r.log.Debug("emitted work entry", "num_hashes", entry.NumHashes, "transactions", len(batch))
	return entry
}
