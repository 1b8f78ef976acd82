// Package validator implements the ValidatorPipeline (§4.7): the
// multi-stage consumer BlobFetch -> Window -> Replay -> Vote, grounded
// on original_source/src/fullnode.rs's TxSigner/window/replicate_stage
// trio and on the teacher's eth/downloader's queue-and-import shape
// for out-of-order block reassembly.
package validator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lumeranet/ledgerengine/core/executor"
	"github.com/lumeranet/ledgerengine/core/lastid"
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
	// StatusExited means ctx was canceled by the supervisor.
	StatusExited Status = iota
	// StatusRotated means chain height crossed this node's own
	// scheduled leader boundary (§4.7 "Role exit").
	StatusRotated
)

// Result reports why Run returned and, on StatusRotated, the height at
// which this node's leader term begins.
type Result struct {
	Status Status
	Height uint64
}

// Signer abstracts the key material the Vote stage needs to sign its
// vote transaction; real signing is an external collaborator's
// responsibility per §1 (the node never holds a private key in this
// package), so this is a narrow seam a caller supplies.
type Signer interface {
	Sign(msg []byte) (crypto.Signature, error)
}

// Config tunes queue depth, verification block size, and vote cadence.
type Config struct {
	Self types.AccountId
	// StartHeight and StartTip are this pipeline's entry sequence
	// index and the chain tip it must verify the first Entry against.
	StartHeight    uint64
	StartTip       crypto.Hash
	WindowSize     int
	QueueDepth     int
	VerifyBlock    int
	VoteInterval   time.Duration
	VoteProgramKey types.AccountId
}

func (c Config) withDefaults() Config {
	if c.QueueDepth <= 0 {
		c.QueueDepth = 8
	}
	if c.VerifyBlock <= 0 {
		c.VerifyBlock = 16
	}
	if c.VoteInterval <= 0 {
		c.VoteInterval = time.Second // §4.7: "≥ 1 second in the reference"
	}
	return c
}

// Pipeline is a single validator term.
type Pipeline struct {
	cfg      Config
	exec     *executor.Executor
	ring     *lastid.Ring
	schedule *rotation.Schedule
	fetcher  wire.Fetcher
	repair   wire.RepairSink
	votes    wire.TransactionSink
	signer   Signer
	window   *Window
	log      log.Logger
	sink     metrics.MetricsSink

	mu  sync.Mutex
	tip crypto.Hash
}

// New returns a Pipeline ready to replay starting at cfg.StartHeight.
// sink is the injected MetricsSink; a nil sink falls back to
// metrics.NoopSink.
func New(cfg Config, exec *executor.Executor, ring *lastid.Ring, schedule *rotation.Schedule, fetcher wire.Fetcher, repair wire.RepairSink, votes wire.TransactionSink, signer Signer, sink metrics.MetricsSink) *Pipeline {
	cfg = cfg.withDefaults()
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	return &Pipeline{
		cfg:      cfg,
		exec:     exec,
		ring:     ring,
		schedule: schedule,
		fetcher:  fetcher,
		repair:   repair,
		votes:    votes,
		signer:   signer,
		window:   NewWindow(cfg.StartHeight, cfg.WindowSize),
		log:      log.New("component", "validator-pipeline"),
		sink:     sink,
		tip:      cfg.StartTip,
	}
}

func (p *Pipeline) currentTip() crypto.Hash {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tip
}

func (p *Pipeline) setTip(h crypto.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tip = h
}

// Run drives BlobFetch+Window, Replay, and Vote concurrently until ctx
// is canceled or this node's own leader term begins.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	pctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runs := make(chan []types.Entry, p.cfg.QueueDepth)

	rotationHeight, hasRotation := p.schedule.NextBoundaryAfter(p.cfg.StartHeight)

	var wg sync.WaitGroup
	var result Result
	result.Status = StatusExited
	var replayErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(runs)
		if err := p.fetchAndWindowStage(pctx, runs); err != nil && pctx.Err() == nil {
			replayErr = err
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		r, err := p.replayStage(pctx, runs, rotationHeight, hasRotation, cancel)
		result = r
		if err != nil && pctx.Err() == nil {
			replayErr = err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.voteStage(pctx)
	}()

	wg.Wait()
	if replayErr != nil {
		return Result{}, replayErr
	}
	return result, nil
}

// fetchAndWindowStage is BlobFetch+Window fused into one goroutine:
// Window's bookkeeping is cheap enough that splitting it into its own
// stage would only add a channel hop without any real concurrency gain
// (§4.7 steps 1-2).
func (p *Pipeline) fetchAndWindowStage(ctx context.Context, out chan<- []types.Entry) error {
	for {
		blobs, err := p.fetcher.FetchBlobs(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		for _, b := range blobs {
			run, gapAt, hasGap, err := p.window.Insert(b)
			if err != nil {
				p.log.Warn("dropping unparseable blob", "err", err)
				continue
			}
			if hasGap {
				p.sink.IncCounter("validator/gaps", 1)
				if p.repair != nil {
					if err := p.repair.RequestRepair(ctx, gapAt); err != nil {
						p.log.Warn("repair request failed", "height", gapAt, "err", err)
					}
				}
				continue
			}
			if len(run) == 0 {
				continue
			}
			select {
			case out <- run:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// replayStage verifies each contiguous run's chain hashes, applies it
// via the executor, and checks for this node's own rotation boundary
// (§4.7 step 3 and "Role exit").
func (p *Pipeline) replayStage(ctx context.Context, in <-chan []types.Entry, rotationHeight uint64, hasRotation bool, cancel context.CancelFunc) (Result, error) {
	height := p.cfg.StartHeight
	for {
		select {
		case run, ok := <-in:
			if !ok {
				return Result{Status: StatusExited}, nil
			}
			prev := p.currentTip()
			chain := pod.NewChain(prev)
			for _, e := range run {
				chain.Append(e)
			}
			if err := chain.VerifyParallel(p.cfg.VerifyBlock); err != nil {
				return Result{}, fmt.Errorf("validator: %w", err)
			}

			for i, e := range run {
				for j := range e.Transactions {
					tx := e.Transactions[j]
					// A failed replay here means ledger corruption: the
					// transaction was already accepted into this Entry
					// by the leader (§7's replay/parse errors are fatal).
					if err := p.exec.ExecuteOne(&tx); err != nil {
						return Result{}, fmt.Errorf("validator: replay entry %d: %w", height+uint64(i), err)
					}
				}
				p.ring.Register(e.Id)
				p.sink.IncCounter("validator/replayed", 1)
			}
			height += uint64(len(run))
			p.setTip(run[len(run)-1].Id)

			if hasRotation && height >= rotationHeight {
				if leader, ok := p.schedule.LeaderAt(rotationHeight); ok && leader == p.cfg.Self {
					cancel()
					return Result{Status: StatusRotated, Height: rotationHeight}, nil
				}
			}
		case <-ctx.Done():
			return Result{Status: StatusExited}, nil
		}
	}
}

// voteStage emits a signed vote transaction pointing at the current
// tip once per VoteInterval (§4.7 step 4), submitted through the same
// transaction-ingest path any client uses.
func (p *Pipeline) voteStage(ctx context.Context) {
	if p.signer == nil || p.votes == nil {
		return
	}
	ticker := time.NewTicker(p.cfg.VoteInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := p.emitVote(ctx); err != nil {
				p.log.Warn("vote emission failed", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pipeline) emitVote(ctx context.Context) error {
	instr := budget.Instruction{Kind: budget.KindNewVote, Vote: budget.Vote{}}
	data, err := instr.Encode()
	if err != nil {
		return err
	}
	tx := types.Transaction{
		ProgramId: budget.ID,
		KeyList:   []types.AccountId{p.cfg.Self},
		LastId:    p.currentTip(),
		Userdata:  data,
	}
	msg, err := tx.SignedBytes()
	if err != nil {
		return err
	}
	sig, err := p.signer.Sign(msg)
	if err != nil {
		return err
	}
	tx.Signature = sig

	data, err = tx.Encode()
	if err != nil {
		return err
	}
	return p.votes.SubmitTransaction(ctx, &wire.Packet{Data: data})
}
