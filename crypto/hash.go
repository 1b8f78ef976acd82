// Package crypto wraps the hashing and signature-verification
// primitives the ledger's hash chain and executor need. Per the
// design notes, key generation and signing themselves are an external
// collaborator's responsibility (the node never holds a private key);
// this package only ever verifies.
package crypto

import (
	"golang.org/x/crypto/sha3"
)

// HashSize is the width of a chain tip / digest in bytes.
const HashSize = 32

// Hash is a 32-byte SHA3-256 digest, used both for Entry ids and for
// AccountStore snapshot digests.
type Hash [HashSize]byte

// IsZero reports whether h is the all-zero hash, the value a genesis
// Tick's predecessor is defined against.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Sum256 hashes data into a single Hash.
func Sum256(data []byte) Hash {
	return Hash(sha3.Sum256(data))
}

// HashOnce advances a chain tip by one hashing step: next = H(prev).
func HashOnce(prev Hash) Hash {
	return Sum256(prev[:])
}

// HashN iterates HashOnce n times, the core operation of the idle-tick
// PoD recorder mode (§4.5).
func HashN(prev Hash, n uint64) Hash {
	cur := prev
	for i := uint64(0); i < n; i++ {
		cur = HashOnce(cur)
	}
	return cur
}

// HashAppend computes H(prev || payload), the "record batch" step in
// §4.5: the tip absorbs a transaction-batch digest.
func HashAppend(prev Hash, payload Hash) Hash {
	buf := make([]byte, 0, HashSize*2)
	buf = append(buf, prev[:]...)
	buf = append(buf, payload[:]...)
	return Sum256(buf)
}
