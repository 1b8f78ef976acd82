package types

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/lumeranet/ledgerengine/crypto"
)

// Transaction is a client-submitted instruction against one program,
// touching an ordered list of accounts. KeyList[0] is always the fee
// payer (§3).
type Transaction struct {
	Signature crypto.Signature
	Fee       int64
	ProgramId ProgramId
	KeyList   []AccountId
	LastId    crypto.Hash
	Userdata  []byte
}

// FeePayer returns the fee-paying signer, the only account whose
// signature is checked against Signature.
func (t *Transaction) FeePayer() (AccountId, bool) {
	if len(t.KeyList) == 0 {
		return AccountId{}, false
	}
	return t.KeyList[0], true
}

// SignedBytes returns the byte sequence the Signature covers: every
// field except the signature itself (§3).
func (t *Transaction) SignedBytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	body := struct {
		Fee       int64
		ProgramId ProgramId
		KeyList   []AccountId
		LastId    crypto.Hash
		Userdata  []byte
	}{t.Fee, t.ProgramId, t.KeyList, t.LastId, t.Userdata}
	if err := enc.Encode(body); err != nil {
		return nil, fmt.Errorf("types: encode signed bytes: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode serializes t with encoding/gob, the wire and ledger-file
// codec named in §6.
func (t *Transaction) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t); err != nil {
		return nil, fmt.Errorf("types: encode transaction: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeTransaction is the inverse of Encode.
func DecodeTransaction(data []byte) (*Transaction, error) {
	var t Transaction
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&t); err != nil {
		return nil, fmt.Errorf("types: decode transaction: %w", err)
	}
	return &t, nil
}
