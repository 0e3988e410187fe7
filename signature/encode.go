package signature

import (
	"bytes"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/crypto"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/topology"
)

// Encode serializes a decoded signature. Decoding the result gives back an
// equal value.
func Encode(d Decoded) ([]byte, error) {
	switch d := d.(type) {
	case *UnrecoveredSignature:
		return encodeSignature(d)
	case *UnrecoveredChainedSignature:
		main, err := encodeSignature(d.Main)
		if err != nil {
			return nil, errors.Wrap(err, "chain segment 0")
		}
		suffix := make([][]byte, len(d.Suffix))
		for i, s := range d.Suffix {
			if suffix[i], err = encodeSignature(s); err != nil {
				return nil, errors.Wrapf(err, "chain segment %d", i+1)
			}
		}
		return Chain(main, suffix...)
	case nil:
		return nil, errors.Wrap(errors.ErrEmpty, "signature")
	}
	return nil, errors.WithType(errors.ErrInput, d)
}

// EncodeRecovered serializes a recovered signature into the bytes it was
// recovered from.
func EncodeRecovered(r Recovered) ([]byte, error) {
	switch r := r.(type) {
	case *Signature:
		return Encode(r.Unrecovered())
	case *ChainedSignature:
		return Encode(r.Unrecovered())
	case nil:
		return nil, errors.Wrap(errors.ErrEmpty, "signature")
	}
	return nil, errors.WithType(errors.ErrInput, r)
}

func encodeSignature(s *UnrecoveredSignature) ([]byte, error) {
	if s == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "signature")
	}
	tree, err := EncodeTree(s.Tree)
	if err != nil {
		return nil, err
	}
	var head []byte
	switch s.Type {
	case Legacy:
		if s.Threshold > 0xff {
			return nil, errors.Wrapf(errors.ErrOverflow, "legacy threshold %d does not fit in a byte", s.Threshold)
		}
		head = make([]byte, 6)
	case Dynamic, NoChainIDDynamic:
		head = make([]byte, 7)
		head[0] = byte(s.Type)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "%s signature cannot be a chain segment", s.Type)
	}
	binary.BigEndian.PutUint16(head[len(head)-6:], s.Threshold)
	binary.BigEndian.PutUint32(head[len(head)-4:], s.Checkpoint)
	return append(head, tree...), nil
}

// EncodeTree serializes an unrecovered tree. A right child that is an
// internal node is wrapped in a branch part.
func EncodeTree(t topology.Unrecovered) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTree(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTree(w *bytes.Buffer, t topology.Unrecovered) error {
	switch t := t.(type) {
	case *topology.UnrecoveredNode:
		if err := writeTree(w, t.Left); err != nil {
			return err
		}
		if _, ok := t.Right.(*topology.UnrecoveredNode); !ok {
			return writeTree(w, t.Right)
		}
		sub, err := EncodeTree(t.Right)
		if err != nil {
			return err
		}
		return writeBranch(w, sub)
	case *topology.UnrecoveredNestedLeaf:
		sub, err := EncodeTree(t.Tree)
		if err != nil {
			return errors.Wrap(err, "nested tree")
		}
		return writeNested(w, t.Weight, t.Threshold, sub)
	case *topology.UnrecoveredSignatureLeaf:
		return writeSignature(w, t.Weight, t.Address, t.Signature, t.IsDynamic)
	case *topology.SignerLeaf:
		if t.Signature != nil {
			addr := t.Address
			return writeSignature(w, t.Weight, &addr, t.Signature, t.IsDynamic)
		}
		writeAddress(w, t.Address, t.Weight)
		return nil
	case *topology.NodeLeaf:
		writeHash(w, PartNode, t.NodeHash)
		return nil
	case *topology.SubdigestLeaf:
		writeHash(w, PartSubdigest, t.Subdigest)
		return nil
	case nil:
		return errors.Wrap(errors.ErrFormat, "Empty signature tree")
	}
	return errors.WithType(errors.ErrInput, t)
}

// writeSignature writes a static part for a regular ECDSA signature and a
// dynamic part for anything else.
func writeSignature(w *bytes.Buffer, weight uint8, addr *common.Address, sig []byte, dynamic bool) error {
	if !dynamic && len(sig) == crypto.SignatureLength {
		w.WriteByte(byte(PartSignature))
		w.WriteByte(weight)
		w.Write(sig)
		return nil
	}
	if addr == nil {
		return errors.Wrap(errors.ErrFormat, "dynamic signature part requires a signer address")
	}
	w.WriteByte(byte(PartDynamicSignature))
	w.WriteByte(weight)
	w.Write(addr[:])
	return writePrefixed(w, sig)
}

func writeAddress(w *bytes.Buffer, addr common.Address, weight uint8) {
	w.WriteByte(byte(PartAddress))
	w.WriteByte(weight)
	w.Write(addr[:])
}

func writeHash(w *bytes.Buffer, kind PartType, h common.Hash) {
	w.WriteByte(byte(kind))
	w.Write(h[:])
}

func writeBranch(w *bytes.Buffer, sub []byte) error {
	w.WriteByte(byte(PartBranch))
	return writePrefixed(w, sub)
}

func writeNested(w *bytes.Buffer, weight uint8, threshold uint16, sub []byte) error {
	w.WriteByte(byte(PartNested))
	w.WriteByte(weight)
	var thr [2]byte
	binary.BigEndian.PutUint16(thr[:], threshold)
	w.Write(thr[:])
	return writePrefixed(w, sub)
}

func writePrefixed(w *bytes.Buffer, b []byte) error {
	if len(b) > maxPartLength {
		return errors.Wrapf(errors.ErrOverflow, "part of %d bytes exceeds the three byte length prefix", len(b))
	}
	w.Write([]byte{byte(len(b) >> 16), byte(len(b) >> 8), byte(len(b))})
	w.Write(b)
	return nil
}
