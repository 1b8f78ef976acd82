// Package ledgerstore implements the ledger file format named in §6:
// an append-only stream of length-prefixed serialized Entries, and the
// genesis-pair validation and replay logic the FullNode supervisor
// uses for its recovery path (§4.8).
package ledgerstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/lumeranet/ledgerengine/core/executor"
	"github.com/lumeranet/ledgerengine/core/program/system"
	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/log"
)

// ErrInvalidGenesis is returned when the first two records in a
// ledger file are not the distinguished genesis Tick/mint-transfer
// pair (§6).
var ErrInvalidGenesis = errors.New("ledgerstore: invalid genesis pair")

// Store wraps an append-only ledger file: length-prefixed
// (uint32 big-endian size + gob payload) Entries.
type Store struct {
	w   io.Writer
	log log.Logger
}

// New wraps w as an append target. w is typically an *os.File opened
// for append.
func New(w io.Writer) *Store {
	return &Store{w: w, log: log.New("component", "ledgerstore")}
}

// Append writes e to the underlying writer with its length prefix.
func (s *Store) Append(e *types.Entry) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))
	if _, err := s.w.Write(header[:]); err != nil {
		return fmt.Errorf("ledgerstore: write length prefix: %w", err)
	}
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("ledgerstore: write entry: %w", err)
	}
	return nil
}

// ReadAll decodes every length-prefixed Entry from r in order.
func ReadAll(r io.Reader) ([]types.Entry, error) {
	var entries []types.Entry
	for {
		var header [4]byte
		_, err := io.ReadFull(r, header[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ledgerstore: read length prefix: %w", err)
		}
		size := binary.BigEndian.Uint32(header[:])
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("ledgerstore: read entry payload: %w", err)
		}
		e, err := types.DecodeEntry(buf)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// ValidateGenesis checks that the first two entries are the
// distinguished genesis pair: a Tick whose id seeds the chain,
// followed by exactly one System-program transfer minting the initial
// balance (§6).
func ValidateGenesis(entries []types.Entry) error {
	if len(entries) < 2 {
		return ErrInvalidGenesis
	}
	if !entries[0].IsTick() {
		return ErrInvalidGenesis
	}
	mint := entries[1]
	if mint.IsTick() || len(mint.Transactions) != 1 {
		return ErrInvalidGenesis
	}
	tx := mint.Transactions[0]
	if tx.ProgramId != system.ID {
		return ErrInvalidGenesis
	}
	instr, err := system.DecodeInstruction(tx.Userdata)
	if err != nil || instr.Kind != system.KindTransfer {
		return ErrInvalidGenesis
	}
	return nil
}

// ReplayResult is the deterministic state ReplayFrom rebuilds.
type ReplayResult struct {
	Entries      []types.Entry
	FinalTip     types.Entry
	TransactionN int
}

// ReplayFrom re-runs every historical Entry's transactions through
// exec, rebuilding the AccountStore and LastIdRing from scratch — the
// supervisor's role-transition recovery path (§4.8, scenario S6).
func ReplayFrom(r io.Reader, exec *executor.Executor) (*ReplayResult, error) {
	entries, err := ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := ValidateGenesis(entries); err != nil {
		return nil, err
	}

	result := &ReplayResult{Entries: entries}
	for _, e := range entries {
		if !e.IsTick() {
			for i := range e.Transactions {
				tx := e.Transactions[i]
				// Replay is a strict re-application: a transaction
				// that failed originally wasn't in the Entry at all
				// (§7), so every transaction replayed here is expected to
				// succeed; a failure here means ledger corruption.
				if err := exec.ExecuteOne(&tx); err != nil {
					return nil, fmt.Errorf("ledgerstore: replay: %w", err)
				}
				result.TransactionN++
			}
		}
		// Register this entry's id so a later entry's transactions,
		// whose LastId may point at it rather than at genesis, find a
		// known tip to reserve their signature against.
		exec.Ring().Register(e.Id)
	}
	if len(entries) > 0 {
		result.FinalTip = entries[len(entries)-1]
	}
	return result, nil
}
