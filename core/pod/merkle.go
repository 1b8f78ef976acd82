// Package pod implements the serial proof-of-dedication hash chain:
// the PoDRecorder that produces Entries, and the EntryChain that
// verifies them (§4.5).
package pod

import (
	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/crypto"
)

// merkleOf computes a binary Merkle root over a transaction batch's
// signatures, duplicating the last node on an odd count at each level.
// This is the payload digest M fed into HashAppend when a Work Entry
// is emitted (§4.5).
func merkleOf(txs []types.Transaction) crypto.Hash {
	if len(txs) == 0 {
		return crypto.Hash{}
	}
	level := make([]crypto.Hash, len(txs))
	for i, tx := range txs {
		level[i] = crypto.Sum256(tx.Signature[:])
	}
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]crypto.Hash, len(level)/2)
		for i := range next {
			buf := make([]byte, 0, crypto.HashSize*2)
			buf = append(buf, level[2*i][:]...)
			buf = append(buf, level[2*i+1][:]...)
			next[i] = crypto.Sum256(buf)
		}
		level = next
	}
	return level[0]
}
