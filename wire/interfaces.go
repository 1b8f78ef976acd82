package wire

import "context"

// Fetcher receives datagrams on one or more sockets. LeaderPipeline's
// Fetch stage and ValidatorPipeline's BlobFetch stage both depend on
// this seam rather than a concrete net.PacketConn, so role transitions
// can re-share the same handle between pipelines without re-binding a
// port (§4.8).
type Fetcher interface {
	// FetchPackets blocks until at least one transaction packet is
	// available or ctx is done.
	FetchPackets(ctx context.Context) ([]*Packet, error)
	// FetchBlobs blocks until at least one blob is available or ctx is
	// done.
	FetchBlobs(ctx context.Context) ([]*Blob, error)
}

// Broadcaster turns an emitted Entry into blobs and pushes them to
// peers; the erasure-coding and peer-selection logic is the external
// gossip/streaming layer's job (§4.6 step 5).
type Broadcaster interface {
	Broadcast(ctx context.Context, blobs []*Blob) error
}

// RepairSink is where the Window stage reports a gap it cannot fill
// from the buffered run, handing the request to the external gossip
// layer (§4.7).
type RepairSink interface {
	RequestRepair(ctx context.Context, height uint64) error
}

// TransactionSink is the "same broadcast path validators use for any
// transaction" that the Vote stage submits its signed vote
// transaction through (§4.7 step 4) — the same transaction-ingest
// surface a client would use, not the Entry/blob broadcast path.
type TransactionSink interface {
	SubmitTransaction(ctx context.Context, p *Packet) error
}
