package wire

import (
	"context"
	"sync"
)

// MemoryLink is an in-memory Fetcher/Broadcaster/RepairSink, the
// reference implementation used by tests in place of the real UDP
// streaming layer (§6's external collaborator boundary).
type MemoryLink struct {
	mu      sync.Mutex
	packets []*Packet
	blobs   []*Blob
	repairs []uint64
	cond    *sync.Cond
}

// NewMemoryLink returns an empty link.
func NewMemoryLink() *MemoryLink {
	l := &MemoryLink{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// SendPacket injects a packet as if it had arrived over the network.
func (l *MemoryLink) SendPacket(p *Packet) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.packets = append(l.packets, p)
	l.cond.Broadcast()
}

// SendBlob injects a blob as if it had arrived over the network.
func (l *MemoryLink) SendBlob(b *Blob) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blobs = append(l.blobs, b)
	l.cond.Broadcast()
}

// FetchPackets implements Fetcher.
func (l *MemoryLink) FetchPackets(ctx context.Context) ([]*Packet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.packets) == 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.waitOrCancel(ctx)
	}
	out := l.packets
	l.packets = nil
	return out, nil
}

// FetchBlobs implements Fetcher.
func (l *MemoryLink) FetchBlobs(ctx context.Context) ([]*Blob, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.blobs) == 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.waitOrCancel(ctx)
	}
	out := l.blobs
	l.blobs = nil
	return out, nil
}

// waitOrCancel blocks on the condition variable until a send wakes it
// or ctx is canceled: a helper goroutine broadcasts on the condition
// when ctx is done, so the wait never outlives cancellation (§5).
func (l *MemoryLink) waitOrCancel(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.cond.Broadcast()
			l.mu.Unlock()
		case <-done:
		}
	}()
	l.cond.Wait()
	close(done)
}

// SubmitTransaction implements TransactionSink by feeding p back in as
// if a client had sent it over the transaction socket, the in-memory
// stand-in for "the same broadcast path validators use for any
// transaction" (§4.7 step 4).
func (l *MemoryLink) SubmitTransaction(ctx context.Context, p *Packet) error {
	l.SendPacket(p)
	return nil
}

// Broadcast implements Broadcaster by recording blobs for inspection
// in tests (a real implementation would fan them out to peer sockets).
func (l *MemoryLink) Broadcast(ctx context.Context, blobs []*Blob) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blobs = append(l.blobs, blobs...)
	return nil
}

// RequestRepair implements RepairSink by recording the requested height.
func (l *MemoryLink) RequestRepair(ctx context.Context, height uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.repairs = append(l.repairs, height)
	return nil
}

// Repairs returns every height requested so far, for test assertions.
func (l *MemoryLink) Repairs() []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]uint64(nil), l.repairs...)
}
