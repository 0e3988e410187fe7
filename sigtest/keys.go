package sigtest

import (
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/crypto"
)

// NewSigner returns a signer with a random key.
func NewSigner(t testing.TB) *crypto.Signer {
	t.Helper()
	s, err := crypto.GenerateSigner()
	if err != nil {
		t.Fatalf("cannot generate signer: %s", err)
	}
	return s
}

// NewSigners returns n signers with random keys.
func NewSigners(t testing.TB, n int) []*crypto.Signer {
	t.Helper()
	signers := make([]*crypto.Signer, n)
	for i := range signers {
		signers[i] = NewSigner(t)
	}
	return signers
}

// NewAddress returns a random address, not backed by any key.
func NewAddress(t testing.TB) common.Address {
	t.Helper()
	var a common.Address
	if _, err := rand.Read(a[:]); err != nil {
		t.Fatalf("cannot read random: %s", err)
	}
	return a
}

// NewHash returns a random hash.
func NewHash(t testing.TB) common.Hash {
	t.Helper()
	var h common.Hash
	if _, err := rand.Read(h[:]); err != nil {
		t.Fatalf("cannot read random: %s", err)
	}
	return h
}

// Sign returns an EIP-712 flavoured static signature of the digest.
func Sign(t testing.TB, s *crypto.Signer, digest common.Hash) []byte {
	t.Helper()
	sig, err := s.Sign(digest, crypto.SigTypeEIP712)
	if err != nil {
		t.Fatalf("cannot sign: %s", err)
	}
	return sig
}
