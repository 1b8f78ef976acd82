// Package wire defines the external streaming seam: the UDP
// transaction and blob framing named in §6, and the Fetcher/
// Broadcaster interfaces the pipelines depend on. The UDP socket
// layer and erasure coding themselves are an external collaborator's
// responsibility (§1); this package only specifies the framing and
// provides an in-memory reference implementation for tests.
package wire

import (
	"net/netip"

	"github.com/lumeranet/ledgerengine/core/types"
)

// MaxTransactionPacketSize bounds a single transaction packet (the
// "≤ MTU" rule in §6); oversized packets are dropped at Fetch with a
// metrics counter.
const MaxTransactionPacketSize = 1232 // conservative UDP MTU, matching the teacher's own packet-size constants

// Packet is a raw datagram received on a transaction socket. Valid and
// MarkChecked can carry a 0/1 signature verdict; the leader pipeline's
// SignatureVerify stage keeps its verdicts in its own records and does
// not set them (§4.6).
type Packet struct {
	Data    []byte
	Valid   bool
	checked bool
}

// Checked reports whether MarkChecked has been called on this packet.
func (p *Packet) Checked() bool { return p.checked }

// MarkChecked records verdict as the packet's signature-verification result.
func (p *Packet) MarkChecked(verdict bool) {
	p.checked = true
	p.Valid = verdict
}

// EncodeTransaction serializes tx as a wire packet, matching the
// encoding/gob round-trip named in §6.
func EncodeTransaction(tx *types.Transaction) ([]byte, error) {
	return tx.Encode()
}

// DecodeTransaction is the inverse of EncodeTransaction.
func DecodeTransaction(data []byte) (*types.Transaction, error) {
	return types.DecodeTransaction(data)
}

// BlobHeader is the fixed framing prefix before a Blob's gob-encoded
// Entry payload (§6).
type BlobHeader struct {
	Index       uint64
	SourceID    types.AccountId
	Size        uint32
	Destination netip.AddrPort
}

// Blob is a fixed-header-framed Entry (or fragment thereof); the
// fragmentation/erasure-coding scheme itself is the external
// streaming layer's concern (§6).
type Blob struct {
	Header  BlobHeader
	Payload []byte // gob-encoded Entry or fragment
}

// EncodeEntry wraps e as a Blob payload.
func EncodeEntry(e *types.Entry) ([]byte, error) {
	return e.Encode()
}

// DecodeEntry is the inverse of EncodeEntry.
func DecodeEntry(data []byte) (*types.Entry, error) {
	return types.DecodeEntry(data)
}
