package node

import (
	"context"
	"fmt"

	"github.com/lumeranet/ledgerengine/ledgerstore"
	"github.com/lumeranet/ledgerengine/wire"
)

// persistingBroadcaster decorates a wire.Broadcaster so that every
// blob a leader term emits is durably appended to the ledger file
// before (and regardless of) being handed to the gossip layer — the
// "recorded then broadcast" ordering implied by §4.6 step 5, so a
// crash after append but before broadcast still leaves the ledger
// consistent for the next rebuild.
type persistingBroadcaster struct {
	next  wire.Broadcaster
	store *ledgerstore.Store
}

func newPersistingBroadcaster(next wire.Broadcaster, w LedgerFile) *persistingBroadcaster {
	return &persistingBroadcaster{next: next, store: ledgerstore.New(w)}
}

func (b *persistingBroadcaster) Broadcast(ctx context.Context, blobs []*wire.Blob) error {
	for _, blob := range blobs {
		entry, err := wire.DecodeEntry(blob.Payload)
		if err != nil {
			return fmt.Errorf("node: decode blob for persistence: %w", err)
		}
		if err := b.store.Append(entry); err != nil {
			return fmt.Errorf("node: append to ledger: %w", err)
		}
	}
	return b.next.Broadcast(ctx, blobs)
}
