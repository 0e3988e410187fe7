package topology

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/crypto"
	"github.com/iov-one/walletsig/errors"
)

var (
	staticDigestPrefix = []byte("Sequence static digest:\n")
	nestedConfigPrefix = []byte("Sequence nested config:\n")
)

// HashNode returns the hash of given tree, as computed by the on-chain
// verifier.
//
// The hash of a signer leaf is not a digest but the leaf itself: the
// weight as a 12 byte big endian integer followed by the address.
func HashNode(t Topology) common.Hash {
	switch t := t.(type) {
	case *SignerLeaf:
		return EncodeSignerLeaf(t.Address, t.Weight)
	case *SubdigestLeaf:
		return crypto.Keccak256(staticDigestPrefix, t.Subdigest[:])
	case *NestedLeaf:
		inner := HashNode(t.Tree)
		return crypto.Keccak256(nestedConfigPrefix, inner[:], word(uint64(t.Threshold)), word(uint64(t.Weight)))
	case *NodeLeaf:
		return t.NodeHash
	case *Node:
		left, right := HashNode(t.Left), HashNode(t.Right)
		return crypto.Keccak256(left[:], right[:])
	}
	panic(fmt.Sprintf("unknown topology type %T", t))
}

// EncodeSignerLeaf packs a signer leaf into its 32 byte hash form.
func EncodeSignerLeaf(addr common.Address, weight uint8) common.Hash {
	var h common.Hash
	h[11] = weight
	copy(h[12:], addr[:])
	return h
}

// IsEncodedSignerLeaf returns true if given hash has the shape of a packed
// signer leaf: the 11 most significant bytes are zero.
func IsEncodedSignerLeaf(h common.Hash) bool {
	for _, b := range h[:11] {
		if b != 0 {
			return false
		}
	}
	return true
}

// DecodeSignerLeaf unpacks a hash created by EncodeSignerLeaf.
func DecodeSignerLeaf(h common.Hash) (*SignerLeaf, error) {
	if !IsEncodedSignerLeaf(h) {
		return nil, errors.Wrapf(errors.ErrInput, "%s is not an encoded signer leaf", h.Hex())
	}
	return &SignerLeaf{
		Address: common.BytesToAddress(h[12:]),
		Weight:  h[11],
	}, nil
}

// word returns n as a 32 byte big endian ABI word.
func word(n uint64) []byte {
	b := make([]byte, 32)
	binary.BigEndian.PutUint64(b[24:], n)
	return b
}
