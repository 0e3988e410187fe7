package signature

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/topology"
	"golang.org/x/sync/errgroup"
)

// TrimOption changes the behaviour of Trim.
type TrimOption func(*trimmer)

// KeepSubdigests prevents Trim from folding subdigest leaves into the hash
// of a pruned subtree.
func KeepSubdigests() TrimOption {
	return func(t *trimmer) {
		t.keepSubdigests = true
	}
}

// Satisfied marks subdigests the signed payload satisfies. Their leaves
// carry the signature weight and are never folded into a hash.
func Satisfied(subdigests ...common.Hash) TrimOption {
	return func(t *trimmer) {
		if t.satisfied == nil {
			t.satisfied = make(map[common.Hash]bool, len(subdigests))
		}
		for _, h := range subdigests {
			t.satisfied[h] = true
		}
	}
}

// Trim returns the shortest encoding of a signature that recovers to the
// same configuration. Every subtree that holds no signature part is
// replaced by its hash. Trimming a trimmed signature returns it unchanged.
func Trim(ctx context.Context, b []byte, opts ...TrimOption) ([]byte, error) {
	d, err := Decode(b)
	if err != nil {
		return nil, err
	}
	d, err = TrimDecoded(ctx, d, opts...)
	if err != nil {
		return nil, err
	}
	return Encode(d)
}

// TrimDecoded trims every segment of a decoded signature.
func TrimDecoded(ctx context.Context, d Decoded, opts ...TrimOption) (Decoded, error) {
	var tr trimmer
	for _, opt := range opts {
		opt(&tr)
	}
	switch d := d.(type) {
	case *UnrecoveredSignature:
		return tr.signature(ctx, d)
	case *UnrecoveredChainedSignature:
		segments := append([]*UnrecoveredSignature{d.Main}, d.Suffix...)
		trimmed := make([]*UnrecoveredSignature, len(segments))
		g, gctx := errgroup.WithContext(ctx)
		for i, seg := range segments {
			i, seg := i, seg
			g.Go(func() (err error) {
				trimmed[i], err = tr.signature(gctx, seg)
				return errors.Wrapf(err, "chain segment %d", i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return &UnrecoveredChainedSignature{Main: trimmed[0], Suffix: trimmed[1:]}, nil
	case nil:
		return nil, errors.Wrap(errors.ErrEmpty, "signature")
	}
	return nil, errors.WithType(errors.ErrInput, d)
}

// TrimTree prunes an unrecovered tree. The returned tree hashes to the same
// value once recovered.
func TrimTree(ctx context.Context, t topology.Unrecovered, opts ...TrimOption) (topology.Unrecovered, error) {
	var tr trimmer
	for _, opt := range opts {
		opt(&tr)
	}
	trimmed, _, err := tr.tree(ctx, t)
	return trimmed, err
}

type trimmer struct {
	keepSubdigests bool
	satisfied      map[common.Hash]bool
}

func (tr trimmer) signature(ctx context.Context, s *UnrecoveredSignature) (*UnrecoveredSignature, error) {
	if s == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "signature")
	}
	tree, _, err := tr.tree(ctx, s.Tree)
	if err != nil {
		return nil, err
	}
	return &UnrecoveredSignature{
		Type:       s.Type,
		Threshold:  s.Threshold,
		Checkpoint: s.Checkpoint,
		Tree:       tree,
	}, nil
}

// tree returns the trimmed tree and whether it can be pruned to a hash,
// which is the case when it holds no signature part.
func (tr trimmer) tree(ctx context.Context, t topology.Unrecovered) (topology.Unrecovered, bool, error) {
	switch t := t.(type) {
	case *topology.UnrecoveredNode:
		left, lp, err := tr.tree(ctx, t.Left)
		if err != nil {
			return nil, false, err
		}
		right, rp, err := tr.tree(ctx, t.Right)
		if err != nil {
			return nil, false, err
		}
		node := &topology.UnrecoveredNode{Left: left, Right: right}
		if lp && rp {
			return tr.prune(ctx, node)
		}
		return node, false, nil
	case *topology.UnrecoveredNestedLeaf:
		inner, prunable, err := tr.tree(ctx, t.Tree)
		if err != nil {
			return nil, false, err
		}
		nested := &topology.UnrecoveredNestedLeaf{Tree: inner, Weight: t.Weight, Threshold: t.Threshold}
		if prunable {
			return tr.prune(ctx, nested)
		}
		return nested, false, nil
	case *topology.UnrecoveredSignatureLeaf:
		return t, false, nil
	case *topology.SignerLeaf:
		if t.Signature != nil {
			return t, false, nil
		}
		return t, true, nil
	case *topology.SubdigestLeaf:
		// The leaf may be what satisfies the threshold, so it is only
		// folded together with a prunable sibling.
		return t, !tr.keepSubdigests && !tr.satisfied[t.Subdigest], nil
	case *topology.NodeLeaf:
		return leafOf(t.NodeHash), true, nil
	case nil:
		return nil, false, errors.Wrap(errors.ErrFormat, "Empty signature tree")
	}
	return nil, false, errors.WithType(errors.ErrInput, t)
}

// prune replaces a tree without signature parts by a single leaf of the
// same hash. The hash does not depend on the subdigest because no
// signature has to be recovered.
func (tr trimmer) prune(ctx context.Context, t topology.Unrecovered) (topology.Unrecovered, bool, error) {
	recovered, err := RecoverTopology(ctx, t, common.Hash{}, refuseValidator)
	if err != nil {
		return nil, false, err
	}
	h := topology.HashNode(recovered)
	walletsig.GetLogger(ctx).Debug("subtree pruned", "hash", h.Hex())
	return leafOf(h), true, nil
}

// leafOf returns the leaf encoding a hash. A hash shaped like a packed
// signer leaf is expressed as an address part, which is shorter to encode.
func leafOf(h common.Hash) topology.Unrecovered {
	if topology.IsEncodedSignerLeaf(h) {
		// Cannot fail on a signer shaped hash.
		if leaf, err := topology.DecodeSignerLeaf(h); err == nil {
			return leaf
		}
	}
	return &topology.NodeLeaf{NodeHash: h}
}
