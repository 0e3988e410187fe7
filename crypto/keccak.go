package crypto

import (
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ethSignPrefix is prepended to a 32 byte digest before signing it with
// the eth_sign method.
var ethSignPrefix = []byte("\x19Ethereum Signed Message:\n32")

// Keccak256 returns the legacy Keccak-256 digest of the concatenation of
// given byte slices. This is the hash function used by the on-chain
// verifier, not the standardized SHA3-256.
func Keccak256(data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		// hash.Hash Write never returns an error.
		_, _ = h.Write(b)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}

// EthSignDigest returns the digest that is signed when a 32 byte message is
// signed using the eth_sign method.
func EthSignDigest(digest common.Hash) common.Hash {
	return Keccak256(ethSignPrefix, digest[:])
}
