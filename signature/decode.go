package signature

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/topology"
)

const (
	// maxPartLength is the largest length a three byte length prefix can
	// hold.
	maxPartLength = 1<<24 - 1

	// maxTreeDepth bounds the nesting of branch and nested parts.
	maxTreeDepth = 256
)

// Decode parses an encoded signature. The result is either
// *UnrecoveredSignature or *UnrecoveredChainedSignature.
func Decode(b []byte) (Decoded, error) {
	if len(b) == 0 {
		return nil, errors.Wrap(errors.ErrFormat, "empty signature")
	}
	switch t := Type(b[0]); t {
	case Legacy:
		// The legacy threshold is two bytes wide and its high byte is
		// the type byte itself.
		return decodeBody(t, b)
	case Dynamic, NoChainIDDynamic:
		return decodeBody(t, b[1:])
	case Chained:
		return decodeChained(b[1:])
	default:
		return nil, errors.Wrapf(errors.ErrFormat, "unknown signature type %d", b[0])
	}
}

// DecodeSignature parses an encoded signature that must not be chained.
func DecodeSignature(b []byte) (*UnrecoveredSignature, error) {
	d, err := Decode(b)
	if err != nil {
		return nil, err
	}
	s, ok := d.(*UnrecoveredSignature)
	if !ok {
		return nil, errors.Wrap(errors.ErrFormat, "unexpected chained signature")
	}
	return s, nil
}

func decodeBody(t Type, b []byte) (*UnrecoveredSignature, error) {
	r := reader{b: b}
	head, err := r.take(6)
	if err != nil {
		return nil, errors.Wrap(err, "signature header")
	}
	tree, err := DecodeTree(r.rest())
	if err != nil {
		return nil, err
	}
	return &UnrecoveredSignature{
		Type:       t,
		Threshold:  binary.BigEndian.Uint16(head[:2]),
		Checkpoint: binary.BigEndian.Uint32(head[2:]),
		Tree:       tree,
	}, nil
}

func decodeChained(b []byte) (*UnrecoveredChainedSignature, error) {
	var segments []*UnrecoveredSignature
	r := reader{b: b}
	for !r.done() {
		raw, err := r.prefixed()
		if err != nil {
			return nil, errors.Wrapf(err, "chain segment %d", len(segments))
		}
		if len(raw) > 0 && Type(raw[0]) == Chained {
			return nil, errors.Wrapf(errors.ErrFormat, "chain segment %d: chained signature cannot be nested", len(segments))
		}
		s, err := DecodeSignature(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "chain segment %d", len(segments))
		}
		segments = append(segments, s)
	}
	if len(segments) == 0 {
		return nil, errors.Wrap(errors.ErrFormat, "empty chained signature")
	}
	return &UnrecoveredChainedSignature{Main: segments[0], Suffix: segments[1:]}, nil
}

// DecodeTree parses a sequence of encoded tree parts. Every part is
// appended to the right of the tree parsed so far, so that a sequence
// a, b, c results in ((a, b), c). A right subtree that is an internal node
// is expressed with a branch part.
func DecodeTree(b []byte) (topology.Unrecovered, error) {
	return decodeTree(b, 0)
}

func decodeTree(b []byte, depth int) (topology.Unrecovered, error) {
	if depth > maxTreeDepth {
		return nil, errors.Wrapf(errors.ErrFormat, "tree nested deeper than %d levels", maxTreeDepth)
	}
	var tree topology.Unrecovered
	r := reader{b: b}
	for !r.done() {
		part, err := decodePart(&r, depth)
		if err != nil {
			return nil, err
		}
		if tree == nil {
			tree = part
		} else {
			tree = &topology.UnrecoveredNode{Left: tree, Right: part}
		}
	}
	if tree == nil {
		return nil, errors.Wrap(errors.ErrFormat, "Empty signature tree")
	}
	return tree, nil
}

func decodePart(r *reader, depth int) (topology.Unrecovered, error) {
	kind, err := r.byte()
	if err != nil {
		return nil, err
	}
	switch PartType(kind) {
	case PartSignature:
		weight, err := r.byte()
		if err != nil {
			return nil, errors.Wrap(err, "signature weight")
		}
		sig, err := r.take(66)
		if err != nil {
			return nil, errors.Wrap(err, "signature")
		}
		return &topology.UnrecoveredSignatureLeaf{Weight: weight, Signature: clone(sig)}, nil
	case PartAddress:
		weight, err := r.byte()
		if err != nil {
			return nil, errors.Wrap(err, "signer weight")
		}
		addr, err := r.take(common.AddressLength)
		if err != nil {
			return nil, errors.Wrap(err, "signer address")
		}
		return &topology.SignerLeaf{Address: common.BytesToAddress(addr), Weight: weight}, nil
	case PartDynamicSignature:
		weight, err := r.byte()
		if err != nil {
			return nil, errors.Wrap(err, "signature weight")
		}
		raw, err := r.take(common.AddressLength)
		if err != nil {
			return nil, errors.Wrap(err, "signer address")
		}
		sig, err := r.prefixed()
		if err != nil {
			return nil, errors.Wrap(err, "dynamic signature")
		}
		addr := common.BytesToAddress(raw)
		return &topology.UnrecoveredSignatureLeaf{
			Weight:    weight,
			Signature: clone(sig),
			Address:   &addr,
			IsDynamic: true,
		}, nil
	case PartNode:
		h, err := r.take(common.HashLength)
		if err != nil {
			return nil, errors.Wrap(err, "node hash")
		}
		return &topology.NodeLeaf{NodeHash: common.BytesToHash(h)}, nil
	case PartBranch:
		raw, err := r.prefixed()
		if err != nil {
			return nil, errors.Wrap(err, "branch")
		}
		return decodeTree(raw, depth+1)
	case PartSubdigest:
		h, err := r.take(common.HashLength)
		if err != nil {
			return nil, errors.Wrap(err, "subdigest")
		}
		return &topology.SubdigestLeaf{Subdigest: common.BytesToHash(h)}, nil
	case PartNested:
		weight, err := r.byte()
		if err != nil {
			return nil, errors.Wrap(err, "nested weight")
		}
		thr, err := r.take(2)
		if err != nil {
			return nil, errors.Wrap(err, "nested threshold")
		}
		raw, err := r.prefixed()
		if err != nil {
			return nil, errors.Wrap(err, "nested tree")
		}
		tree, err := decodeTree(raw, depth+1)
		if err != nil {
			return nil, errors.Wrap(err, "nested tree")
		}
		return &topology.UnrecoveredNestedLeaf{
			Tree:      tree,
			Weight:    weight,
			Threshold: binary.BigEndian.Uint16(thr),
		}, nil
	default:
		return nil, errors.Wrapf(errors.ErrFormat, "unknown signature part type %d", kind)
	}
}

// reader consumes a byte slice. Reading past its end is a format error.
// Returned slices share the memory of the input and are capped, so that
// appending to them never writes into the input.
type reader struct {
	b   []byte
	off int
}

func (r *reader) done() bool {
	return r.off >= len(r.b)
}

func (r *reader) rest() []byte {
	return r.b[r.off:]
}

func (r *reader) take(n int) ([]byte, error) {
	if len(r.b)-r.off < n {
		return nil, errors.Wrapf(errors.ErrFormat, "truncated: need %d bytes at offset %d, have %d", n, r.off, len(r.b)-r.off)
	}
	b := r.b[r.off : r.off+n : r.off+n]
	r.off += n
	return b, nil
}

// clone copies a payload kept by a decoded leaf, so that the leaf does not
// pin the whole input.
func clone(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

func (r *reader) byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// prefixed reads a three byte big endian length followed by that many
// bytes.
func (r *reader) prefixed() ([]byte, error) {
	l, err := r.take(3)
	if err != nil {
		return nil, err
	}
	return r.take(int(l[0])<<16 | int(l[1])<<8 | int(l[2]))
}
