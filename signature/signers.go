package signature

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/crypto"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/topology"
)

// Part is a signature collected from a signer.
type Part struct {
	Signature []byte
	// IsDynamic forces the signature to be validated by the signer
	// contract even if it has the shape of an ECDSA signature.
	IsDynamic bool
}

// EncodeOption changes the behaviour of EncodeSigners.
type EncodeOption func(*treeEncoder)

// WithoutPruning makes EncodeSigners emit the whole configuration tree
// instead of replacing subtrees without weight by their hash.
func WithoutPruning() EncodeOption {
	return func(e *treeEncoder) {
		e.noPrune = true
	}
}

// EncodeSigners builds a signature for a configuration out of the collected
// signature parts and the subdigests that are approved without signature.
// It returns the encoded signature together with the weight it collects.
//
// The signature is of NoChainIDDynamic type when chainID is nil or zero and
// of Dynamic type otherwise. Subtrees collecting no weight are pruned to
// their hash.
func EncodeSigners(
	c *topology.WalletConfig,
	parts map[common.Address]Part,
	subdigests []common.Hash,
	chainID *big.Int,
	opts ...EncodeOption,
) ([]byte, uint64, error) {
	if c == nil || c.Tree == nil {
		return nil, 0, errors.Wrap(errors.ErrConfig, "missing configuration tree")
	}
	e := treeEncoder{parts: parts, subdigests: make(map[common.Hash]bool, len(subdigests))}
	for _, s := range subdigests {
		e.subdigests[s] = true
	}
	for _, opt := range opts {
		opt(&e)
	}

	enc, err := e.encode(c.Tree)
	if err != nil {
		return nil, 0, err
	}

	t := Dynamic
	if chainID == nil || chainID.Sign() == 0 {
		t = NoChainIDDynamic
	}
	head := make([]byte, 7)
	head[0] = byte(t)
	binary.BigEndian.PutUint16(head[1:], c.Threshold)
	binary.BigEndian.PutUint32(head[3:], c.Checkpoint)
	return append(head, enc.bytes...), enc.weight, nil
}

// HasEnoughSigningPower returns true if the collected signature parts reach
// the threshold of the configuration.
func HasEnoughSigningPower(c *topology.WalletConfig, parts map[common.Address]Part) (bool, error) {
	_, weight, err := EncodeSigners(c, parts, nil, nil)
	if err != nil {
		return false, err
	}
	return weight >= uint64(c.Threshold), nil
}

type treeEncoder struct {
	parts      map[common.Address]Part
	subdigests map[common.Hash]bool
	noPrune    bool
}

type encodedTree struct {
	bytes  []byte
	weight uint64
	// branch is true when the encoding holds more than one top level
	// part and must be wrapped when used as a right child.
	branch bool
}

func (e *treeEncoder) encode(t topology.Topology) (encodedTree, error) {
	switch t := t.(type) {
	case *topology.Node:
		left, err := e.encode(t.Left)
		if err != nil {
			return encodedTree{}, err
		}
		right, err := e.encode(t.Right)
		if err != nil {
			return encodedTree{}, err
		}
		_, leftSigner := t.Left.(*topology.SignerLeaf)
		_, rightSigner := t.Right.(*topology.SignerLeaf)
		if !e.noPrune && left.weight == 0 && right.weight == 0 && !leftSigner && !rightSigner {
			return e.node(topology.HashNode(t)), nil
		}
		var buf bytes.Buffer
		buf.Write(left.bytes)
		if right.branch {
			if err := writeBranch(&buf, right.bytes); err != nil {
				return encodedTree{}, err
			}
		} else {
			buf.Write(right.bytes)
		}
		return encodedTree{
			bytes:  buf.Bytes(),
			weight: topology.AddWeight(left.weight, right.weight),
			branch: true,
		}, nil
	case *topology.NestedLeaf:
		inner, err := e.encode(t.Tree)
		if err != nil {
			return encodedTree{}, errors.Wrap(err, "nested tree")
		}
		if !e.noPrune && inner.weight == 0 {
			return e.node(topology.HashNode(t)), nil
		}
		var buf bytes.Buffer
		if err := writeNested(&buf, t.Weight, t.Threshold, inner.bytes); err != nil {
			return encodedTree{}, err
		}
		var weight uint64
		if inner.weight >= uint64(t.Threshold) {
			weight = uint64(t.Weight)
		}
		return encodedTree{bytes: buf.Bytes(), weight: weight}, nil
	case *topology.NodeLeaf:
		return e.node(t.NodeHash), nil
	case *topology.SubdigestLeaf:
		var buf bytes.Buffer
		writeHash(&buf, PartSubdigest, t.Subdigest)
		var weight uint64
		if e.subdigests[t.Subdigest] {
			weight = topology.InfiniteWeight
		}
		return encodedTree{bytes: buf.Bytes(), weight: weight}, nil
	case *topology.SignerLeaf:
		var buf bytes.Buffer
		part, ok := e.parts[t.Address]
		if !ok {
			writeAddress(&buf, t.Address, t.Weight)
			return encodedTree{bytes: buf.Bytes()}, nil
		}
		addr := t.Address
		dynamic := part.IsDynamic || len(part.Signature) != crypto.SignatureLength
		if err := writeSignature(&buf, t.Weight, &addr, part.Signature, dynamic); err != nil {
			return encodedTree{}, err
		}
		return encodedTree{bytes: buf.Bytes(), weight: uint64(t.Weight)}, nil
	case nil:
		return encodedTree{}, errors.Wrap(errors.ErrConfig, "missing subtree")
	}
	return encodedTree{}, errors.WithType(errors.ErrInput, t)
}

func (e *treeEncoder) node(h common.Hash) encodedTree {
	var buf bytes.Buffer
	writeHash(&buf, PartNode, h)
	return encodedTree{bytes: buf.Bytes()}
}
