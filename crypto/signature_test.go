package crypto

import (
	"testing"

	"golang.org/x/crypto/ed25519"
)

func signFixture(t *testing.T, msg []byte) ([PublicKeySize]byte, Signature) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	var pk [PublicKeySize]byte
	copy(pk[:], pub)
	var sig Signature
	copy(sig[:], ed25519.Sign(priv, msg))
	return pk, sig
}

func TestVerifyAcceptsGenuineSignature(t *testing.T) {
	msg := []byte("a transaction's signed bytes")
	pk, sig := signFixture(t, msg)
	if !Verify(pk, msg, sig) {
		t.Fatal("Verify rejected a genuine signature")
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	pk, sig := signFixture(t, []byte("original message"))
	if Verify(pk, []byte("tampered message"), sig) {
		t.Fatal("Verify accepted a signature over a different message")
	}
}

func TestVerifyBatchMixesValidAndInvalid(t *testing.T) {
	msg1 := []byte("first")
	msg2 := []byte("second")
	pk1, sig1 := signFixture(t, msg1)
	pk2, sig2 := signFixture(t, msg2)

	pubkeys := [][PublicKeySize]byte{pk1, pk2}
	msgs := [][]byte{msg1, msg1} // second uses the wrong message
	sigs := []Signature{sig1, sig2}

	got := VerifyBatch(pubkeys, msgs, sigs)
	if len(got) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(got))
	}
	if !got[0] {
		t.Error("expected verdict[0] true for a genuine signature")
	}
	if got[1] {
		t.Error("expected verdict[1] false: signature was produced over msg2, checked against msg1")
	}
}
