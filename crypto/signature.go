package crypto

import (
	"golang.org/x/crypto/ed25519"
)

// SignatureSize is the width of an Ed25519 signature in bytes.
const SignatureSize = ed25519.SignatureSize

// PublicKeySize is the width of an Ed25519 public key in bytes —
// AccountId and ProgramId both reuse this width (§3).
const PublicKeySize = ed25519.PublicKeySize

// Signature is a raw Ed25519 signature.
type Signature [SignatureSize]byte

// Verify reports whether sig is a valid Ed25519 signature of msg under
// the given 32-byte public key.
func Verify(pubkey [PublicKeySize]byte, msg []byte, sig Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(pubkey[:]), msg, sig[:])
}

// VerifyBatch verifies N independent (pubkey, msg, sig) triples and
// reports a 0/1 verdict per entry, matching the SignatureVerify
// stage's packet annotation in §4.6. The teacher offloads batched
// Ed25519 verification to vectorized code; this is the scalar
// equivalent — a plain serial loop over Verify, since ed25519.Verify
// has no batched/SIMD counterpart in golang.org/x/crypto/ed25519.
func VerifyBatch(pubkeys [][PublicKeySize]byte, msgs [][]byte, sigs []Signature) []bool {
	n := len(sigs)
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = Verify(pubkeys[i], msgs[i], sigs[i])
	}
	return out
}
