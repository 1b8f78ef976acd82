package types

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/lumeranet/ledgerengine/crypto"
)

// Entry is the atomic unit of the hash chain: either a Tick (no
// transactions) or a Work entry binding a transaction batch to the
// chain (§3).
type Entry struct {
	NumHashes    uint64
	Id           crypto.Hash
	Transactions []Transaction
}

// IsTick reports whether e carries no transactions.
func (e *Entry) IsTick() bool {
	return len(e.Transactions) == 0
}

// Encode serializes e with encoding/gob.
func (e *Entry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, fmt.Errorf("types: encode entry: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeEntry is the inverse of Encode.
func DecodeEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&e); err != nil {
		return nil, fmt.Errorf("types: decode entry: %w", err)
	}
	return &e, nil
}
