// Package leader implements the LeaderPipeline (§4.6): the multi-stage
// producer Fetch -> SignatureVerify -> Execute -> Record -> Broadcast,
// grounded on original_source/src/transaction_processoring_stage.rs's
// tick-producer-plus-worker-threads shape and on the teacher's
// miner/worker.go sealing loop for the "stage owns its own goroutine,
// stages are stitched together by bounded channels" idiom.
package leader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lumeranet/ledgerengine/core/executor"
	"github.com/lumeranet/ledgerengine/core/pod"
	"github.com/lumeranet/ledgerengine/core/program/budget"
	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/crypto"
	"github.com/lumeranet/ledgerengine/log"
	"github.com/lumeranet/ledgerengine/metrics"
	"github.com/lumeranet/ledgerengine/rotation"
	"github.com/lumeranet/ledgerengine/wire"
)

// Status is the terminal reason Pipeline.Run returned.
type Status int

const (
	// StatusExited means ctx was canceled; the caller (the supervisor)
	// is shutting the node down entirely.
	StatusExited Status = iota
	// StatusRotated means the pipeline reached its scheduled rotation
	// height and handed off cleanly (§4.6 "Role exit").
	StatusRotated
)

// Result reports why Run returned and, on StatusRotated, the height at
// which the next leader's term begins.
type Result struct {
	Status Status
	Height uint64
}

// Config tunes queue depths, chunking, and the idle-tick cadence. Zero
// values are replaced with sane defaults by New.
type Config struct {
	// StartHeight is the chain height this pipeline begins recording
	// at (the previous leader's or validator's final height).
	StartHeight uint64
	// ChunkSize bounds how many verified transactions are collected
	// into a single Entry's transaction payload before it is recorded.
	ChunkSize int
	// QueueDepth bounds every inter-stage channel, the backpressure
	// mechanism described in §4.6 and §5.
	QueueDepth int
	// TickInterval is the idle-hash step period; TickEntryEvery is how
	// many steps accumulate before a Tick Entry is emitted.
	TickInterval   time.Duration
	TickEntryEvery uint64
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 64
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = 8
	}
	if c.TickInterval <= 0 {
		c.TickInterval = 10 * time.Millisecond
	}
	if c.TickEntryEvery == 0 {
		c.TickEntryEvery = 8
	}
	return c
}

// Pipeline is a single leader term: it owns no sockets of its own,
// only the wire.Fetcher/Broadcaster handles the supervisor hands it,
// so role transitions can reuse the same bound ports (§4.8).
type Pipeline struct {
	cfg      Config
	exec     *executor.Executor
	recorder *pod.Recorder
	schedule *rotation.Schedule
	fetcher  wire.Fetcher
	bcast    wire.Broadcaster
	log      log.Logger
	sink     metrics.MetricsSink
}

// New returns a Pipeline ready to record starting at cfg.StartHeight.
// sink is the injected MetricsSink; a nil sink falls back to
// metrics.NoopSink.
func New(cfg Config, exec *executor.Executor, recorder *pod.Recorder, schedule *rotation.Schedule, fetcher wire.Fetcher, bcast wire.Broadcaster, sink metrics.MetricsSink) *Pipeline {
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	return &Pipeline{
		cfg:      cfg.withDefaults(),
		exec:     exec,
		recorder: recorder,
		schedule: schedule,
		fetcher:  fetcher,
		bcast:    bcast,
		log:      log.New("component", "leader-pipeline"),
		sink:     sink,
	}
}

// candidate is a decoded transaction annotated with its
// SignatureVerify verdict, the unit SignatureVerify hands to Execute.
type candidate struct {
	tx    *types.Transaction
	valid bool
}

// height is an atomic chain-height counter shared across stages so
// Execute can observe a height advanced by Record/Tick without a lock.
type height struct{ v atomic.Uint64 }

func (h *height) set(n uint64) { h.v.Store(n) }
func (h *height) add(n uint64) { h.v.Add(n) }
func (h *height) get() uint64  { return h.v.Load() }

// timedEntry pairs an emitted Entry with the global chain height it
// landed at, so Broadcast can stamp the blob's sequence index in the
// same height-space the LeaderSchedule and the ValidatorPipeline's
// Window both use, rather than a pipeline-local counter.
type timedEntry struct {
	entry  types.Entry
	height uint64
}

// rotationGate centralizes rotation-boundary detection. Both Record
// and Tick advance the shared height, so the check can't live in
// Execute alone: a leader idling on tick-only entries (no submitted
// transactions) would never revisit that check and so would never
// notice it had crossed its boundary. Every stage that advances height
// reports the new value to arrive; the first report that reaches the
// boundary cancels the pipeline.
type rotationGate struct {
	height uint64
	has    bool
	cancel context.CancelFunc
	once   sync.Once
	result Result
}

func newRotationGate(height uint64, has bool, cancel context.CancelFunc) *rotationGate {
	return &rotationGate{height: height, has: has, cancel: cancel}
}

func (g *rotationGate) arrive(newHeight uint64) {
	if !g.has || newHeight < g.height {
		return
	}
	g.once.Do(func() {
		g.result = Result{Status: StatusRotated, Height: g.height}
		g.cancel()
	})
}

// Run drives the pipeline until ctx is canceled or this leader's term
// reaches its scheduled rotation boundary.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	pctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h := &height{}
	h.set(p.cfg.StartHeight)
	rotationHeight, hasRotation := p.schedule.NextBoundaryAfter(p.cfg.StartHeight)
	gate := newRotationGate(rotationHeight, hasRotation, cancel)

	packets := make(chan []*wire.Packet, p.cfg.QueueDepth)
	candidates := make(chan []candidate, p.cfg.QueueDepth)
	batches := make(chan []types.Transaction, p.cfg.QueueDepth)
	fromBatches := make(chan timedEntry, p.cfg.QueueDepth)
	fromTicks := make(chan timedEntry, p.cfg.QueueDepth)
	entries := make(chan timedEntry, p.cfg.QueueDepth)

	g, gctx := errgroup.WithContext(pctx)

	g.Go(func() error {
		defer close(packets)
		return p.fetchStage(gctx, packets)
	})
	g.Go(func() error {
		defer close(candidates)
		return p.verifyStage(gctx, packets, candidates)
	})
	g.Go(func() error {
		defer close(batches)
		return p.executeStage(gctx, candidates, batches)
	})
	g.Go(func() error {
		defer close(fromBatches)
		return p.recordStage(gctx, batches, fromBatches, h, gate)
	})
	g.Go(func() error {
		defer close(fromTicks)
		return p.tickStage(gctx, fromTicks, h, gate)
	})
	g.Go(func() error {
		defer close(entries)
		fanIn(gctx, fromBatches, fromTicks, entries)
		return nil
	})
	g.Go(func() error {
		return p.broadcastStage(gctx, entries)
	})

	if err := g.Wait(); err != nil && pctx.Err() == nil {
		return Result{}, err
	}
	return gate.result, nil
}

func (p *Pipeline) fetchStage(ctx context.Context, out chan<- []*wire.Packet) error {
	for {
		pkts, err := p.fetcher.FetchPackets(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		kept := pkts[:0]
		for _, pkt := range pkts {
			if len(pkt.Data) > wire.MaxTransactionPacketSize {
				p.sink.IncCounter("leader/dropped", 1)
				continue
			}
			kept = append(kept, pkt)
		}
		select {
		case out <- kept:
		case <-ctx.Done():
			return nil
		}
	}
}

func (p *Pipeline) verifyStage(ctx context.Context, in <-chan []*wire.Packet, out chan<- []candidate) error {
	for {
		select {
		case pkts, ok := <-in:
			if !ok {
				return nil
			}
			cands := p.verifyBatch(pkts)
			select {
			case out <- cands:
			case <-ctx.Done():
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// verifyBatch decodes each packet into a Transaction and checks its
// fee payer's Ed25519 signature over the signed byte form, the batched
// Ed25519 check of §4.6 step 2.
func (p *Pipeline) verifyBatch(pkts []*wire.Packet) []candidate {
	cands := make([]candidate, 0, len(pkts))
	pubkeys := make([][crypto.PublicKeySize]byte, 0, len(pkts))
	msgs := make([][]byte, 0, len(pkts))
	sigs := make([]crypto.Signature, 0, len(pkts))
	txs := make([]*types.Transaction, 0, len(pkts))

	for _, pkt := range pkts {
		tx, err := wire.DecodeTransaction(pkt.Data)
		if err != nil {
			p.sink.IncCounter("leader/dropped", 1)
			continue
		}
		feePayer, ok := tx.FeePayer()
		if !ok {
			p.sink.IncCounter("leader/dropped", 1)
			continue
		}
		msg, err := tx.SignedBytes()
		if err != nil {
			p.sink.IncCounter("leader/dropped", 1)
			continue
		}
		txs = append(txs, tx)
		pubkeys = append(pubkeys, [crypto.PublicKeySize]byte(feePayer))
		msgs = append(msgs, msg)
		sigs = append(sigs, tx.Signature)
	}

	verdicts := crypto.VerifyBatch(pubkeys, msgs, sigs)
	for i, tx := range txs {
		cands = append(cands, candidate{tx: tx, valid: verdicts[i]})
	}
	return cands
}

// executeStage drops invalid or pre-check-failing candidates, executes
// the rest one at a time through ExecuteOne (dropping any the executor
// rejects), and hands the committed transactions to Record in
// ChunkSize-sized groups (§4.6 step 3). Rotation
// detection happens downstream in Record/Tick, the stages that
// actually advance height.
func (p *Pipeline) executeStage(ctx context.Context, in <-chan []candidate, out chan<- []types.Transaction) error {
	var pending []types.Transaction
	flush := func() {
		if len(pending) == 0 {
			return
		}
		select {
		case out <- pending:
		case <-ctx.Done():
		}
		pending = nil
	}

	for {
		select {
		case cands, ok := <-in:
			if !ok {
				flush()
				return nil
			}
			for _, c := range cands {
				if !c.valid || !budget.PreCheck(c.tx) {
					p.sink.IncCounter("leader/dropped", 1)
					continue
				}
				if err := p.exec.ExecuteOne(c.tx); err == nil {
					pending = append(pending, *c.tx)
				}
			}
			for len(pending) >= p.cfg.ChunkSize {
				chunk := pending[:p.cfg.ChunkSize]
				pending = pending[p.cfg.ChunkSize:]
				select {
				case out <- chunk:
				case <-ctx.Done():
					return nil
				}
			}
		case <-ctx.Done():
			flush()
			return nil
		}
	}
}

func (p *Pipeline) recordStage(ctx context.Context, in <-chan []types.Transaction, out chan<- timedEntry, h *height, gate *rotationGate) error {
	for {
		select {
		case batch, ok := <-in:
			if !ok {
				return nil
			}
			entry := p.recorder.RecordBatch(batch)
			at := h.get()
			h.add(1)
			p.sink.IncCounter("leader/entries", 1)
			select {
			case out <- timedEntry{entry: entry, height: at}:
			case <-ctx.Done():
				return nil
			}
			gate.arrive(at + 1)
		case <-ctx.Done():
			return nil
		}
	}
}

// tickStage drives PoDRecorder's idle mode from a dedicated goroutine
// so Entry emission continues even under zero transaction load (§4.6).
func (p *Pipeline) tickStage(ctx context.Context, out chan<- timedEntry, h *height, gate *rotationGate) error {
	ticker := time.NewTicker(p.cfg.TickInterval)
	defer ticker.Stop()
	var steps uint64
	for {
		select {
		case <-ticker.C:
			p.recorder.Tick()
			steps++
			if steps >= p.cfg.TickEntryEvery {
				steps = 0
				entry := p.recorder.EmitTick()
				at := h.get()
				h.add(1)
				p.sink.IncCounter("leader/entries", 1)
				select {
				case out <- timedEntry{entry: entry, height: at}:
				case <-ctx.Done():
					return nil
				}
				gate.arrive(at + 1)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (p *Pipeline) broadcastStage(ctx context.Context, in <-chan timedEntry) error {
	for {
		select {
		case te, ok := <-in:
			if !ok {
				return nil
			}
			payload, err := wire.EncodeEntry(&te.entry)
			if err != nil {
				p.log.Warn("failed to encode entry for broadcast", "err", err)
				continue
			}
			blob := &wire.Blob{Header: wire.BlobHeader{Index: te.height, Size: uint32(len(payload))}, Payload: payload}
			if err := p.bcast.Broadcast(ctx, []*wire.Blob{blob}); err != nil && ctx.Err() == nil {
				p.log.Warn("broadcast failed", "err", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// fanIn merges a and b into out until both are closed or ctx is
// canceled. Both forwarding goroutines guard their send on ctx.Done so
// a broadcastStage that has already returned on cancellation can never
// leave a goroutine here blocked on a full out forever (§5's prompt-
// cancellation guarantee).
func fanIn(ctx context.Context, a, b <-chan timedEntry, out chan<- timedEntry) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for e := range a {
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for e := range b {
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()
}
