package pod

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/crypto"
)

// Chain holds an ordered sequence of Entries and verifies them by
// re-hashing from a starting tip (§4.5).
type Chain struct {
	genesis crypto.Hash
	entries []types.Entry
}

// NewChain returns a chain rooted at genesis with no entries yet.
func NewChain(genesis crypto.Hash) *Chain {
	return &Chain{genesis: genesis}
}

// Append adds e to the chain without verifying it; callers that need
// the guarantee call Verify or VerifyParallel afterward.
func (c *Chain) Append(e types.Entry) {
	c.entries = append(c.entries, e)
}

// Entries returns the chain's entries in order.
func (c *Chain) Entries() []types.Entry { return c.entries }

// ExpectedId re-derives an Entry's id from its predecessor tip,
// matching the hashing rule Recorder uses to produce it. Exported so
// the ValidatorPipeline's incremental Replay stage can check an
// individual Entry against its running tip without constructing a
// full Chain (§4.5/§4.7).
func ExpectedId(prev crypto.Hash, e types.Entry) crypto.Hash {
	intermediate := crypto.HashN(prev, e.NumHashes)
	if e.IsTick() {
		return intermediate
	}
	return crypto.HashAppend(intermediate, merkleOf(e.Transactions))
}

// Verify re-derives every entry id starting from the chain's genesis
// tip and rejects on the first mismatch (§4.5).
func (c *Chain) Verify() error {
	return verifyRange(c.genesis, c.entries)
}

func verifyRange(prev crypto.Hash, entries []types.Entry) error {
	for i, e := range entries {
		want := ExpectedId(prev, e)
		if want != e.Id {
			return fmt.Errorf("pod: entry %d: id mismatch: got %x, want %x", i, e.Id, want)
		}
		prev = e.Id
	}
	return nil
}

// VerifyParallel verifies the chain in fixed-size blocks, fanning
// block-local verification out across a bounded worker pool while
// still checking the running tip serially across block boundaries
// (§4.5's "fixed-size blocks").
func (c *Chain) VerifyParallel(blockSize int) error {
	if blockSize <= 0 {
		blockSize = 16
	}
	type block struct {
		start int
		prev  crypto.Hash
		slice []types.Entry
	}
	var blocks []block
	prev := c.genesis
	for start := 0; start < len(c.entries); start += blockSize {
		end := start + blockSize
		if end > len(c.entries) {
			end = len(c.entries)
		}
		blocks = append(blocks, block{start: start, prev: prev, slice: c.entries[start:end]})
		for _, e := range c.entries[start:end] {
			prev = e.Id
		}
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, b := range blocks {
		b := b
		g.Go(func() error {
			if err := verifyRange(b.prev, b.slice); err != nil {
				return fmt.Errorf("pod: block starting at %d: %w", b.start, err)
			}
			return nil
		})
	}
	return g.Wait()
}
