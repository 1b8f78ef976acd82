package validator

import (
	"sync"

	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/wire"
)

// DefaultWindowSize bounds how far ahead of the next expected entry a
// blob may buffer before the gap is reported for repair (§4.7's
// "buffered up to a fixed window size").
const DefaultWindowSize = 1024

// Window reassembles blobs into a contiguous run of Entries at the
// node's known chain height, buffering out-of-order arrivals and
// reporting gaps it cannot yet fill, grounded on
// original_source/src/fullnode.rs's shared_window and on the teacher's
// eth/downloader queue's out-of-order header/body reassembly.
type Window struct {
	mu   sync.Mutex
	next uint64
	buf  map[uint64]types.Entry
	size int
}

// NewWindow returns a Window expecting the entry at sequence index
// start next.
func NewWindow(start uint64, size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{next: start, buf: make(map[uint64]types.Entry), size: size}
}

// NextIndex reports the next sequence index this window is waiting on.
func (w *Window) NextIndex() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.next
}

// Insert decodes b's Entry payload and folds it into the window. It
// returns the contiguous run of entries now ready for replay (in
// order, possibly empty), and if the window is holding a gap it
// cannot close on its own, the lowest missing sequence index to repair.
func (w *Window) Insert(b *wire.Blob) ([]types.Entry, uint64, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := b.Header.Index
	if idx < w.next {
		return nil, 0, false, nil // stale duplicate, already applied
	}

	entry, err := wire.DecodeEntry(b.Payload)
	if err != nil {
		return nil, 0, false, err
	}
	if _, exists := w.buf[idx]; !exists {
		if idx-w.next >= uint64(w.size) {
			// Beyond the buffering window: drop it: a repair response
			// for the gap below will eventually supply the
			// predecessor this blob needs anyway.
			return nil, w.next, true, nil
		}
		w.buf[idx] = *entry
	}

	var out []types.Entry
	for {
		e, ok := w.buf[w.next]
		if !ok {
			break
		}
		out = append(out, e)
		delete(w.buf, w.next)
		w.next++
	}
	if len(out) == 0 {
		return nil, w.next, true, nil
	}
	return out, 0, false, nil
}
