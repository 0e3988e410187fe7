package signature

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig"
	"github.com/iov-one/walletsig/crypto"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/topology"
	"golang.org/x/sync/errgroup"
)

// maxRecoveries bounds the number of signature parts recovered at the same
// time.
const maxRecoveries = 16

// RecoverTopology resolves every signature part of the tree into a signer
// leaf holding that signature. ECDSA signatures are recovered from the
// subdigest, dynamic signatures are checked by v, which may be nil for
// trees without dynamic signatures.
//
// Signature parts are recovered concurrently, at most maxRecoveries at a
// time. The first failure cancels the context passed to v and is returned.
func RecoverTopology(ctx context.Context, t topology.Unrecovered, subdigest common.Hash, v Validator) (topology.Topology, error) {
	g, gctx := errgroup.WithContext(ctx)
	// One more slot for the walk itself.
	g.SetLimit(maxRecoveries + 1)
	rc := recoverer{ctx: gctx, group: g, subdigest: subdigest, validator: v}

	var tree topology.Topology
	g.Go(func() (err error) {
		tree, err = rc.tree(t)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tree, nil
}

// recoverer walks an unrecovered tree and schedules the recovery of each
// signature part on its group. Leaves returned by the walk are complete
// only once the group is done.
type recoverer struct {
	ctx       context.Context
	group     *errgroup.Group
	subdigest common.Hash
	validator Validator
}

func (rc recoverer) tree(t topology.Unrecovered) (topology.Topology, error) {
	switch t := t.(type) {
	case *topology.UnrecoveredNode:
		left, err := rc.tree(t.Left)
		if err != nil {
			return nil, err
		}
		right, err := rc.tree(t.Right)
		if err != nil {
			return nil, err
		}
		return &topology.Node{Left: left, Right: right}, nil
	case *topology.UnrecoveredNestedLeaf:
		tree, err := rc.tree(t.Tree)
		if err != nil {
			return nil, err
		}
		return &topology.NestedLeaf{Tree: tree, Weight: t.Weight, Threshold: t.Threshold}, nil
	case *topology.UnrecoveredSignatureLeaf:
		if err := rc.ctx.Err(); err != nil {
			return nil, err
		}
		leaf := new(topology.SignerLeaf)
		rc.group.Go(func() error {
			recovered, err := recoverLeaf(rc.ctx, t, rc.subdigest, rc.validator)
			if err != nil {
				return err
			}
			*leaf = *recovered
			return nil
		})
		return leaf, nil
	case *topology.SignerLeaf:
		return t, nil
	case *topology.SubdigestLeaf:
		return t, nil
	case *topology.NodeLeaf:
		return t, nil
	case nil:
		return nil, errors.Wrap(errors.ErrFormat, "Empty signature tree")
	}
	return nil, errors.WithType(errors.ErrInput, t)
}

// recoverLeaf returns the signer leaf of a single signature part.
func recoverLeaf(ctx context.Context, t *topology.UnrecoveredSignatureLeaf, subdigest common.Hash, v Validator) (*topology.SignerLeaf, error) {
	if !t.IsDynamic {
		addr, err := crypto.RecoverSigner(subdigest, t.Signature)
		if err != nil {
			if errors.ErrInvalidSignature.Is(err) {
				return nil, errors.Wrap(&InvalidSignatureLeafError{Leaf: t}, err.Error())
			}
			return nil, err
		}
		if t.Address != nil && *t.Address != addr {
			return nil, errors.Wrapf(&InvalidSignatureLeafError{Leaf: t}, "recovered %s", addr.Hex())
		}
		return &topology.SignerLeaf{Address: addr, Weight: t.Weight, Signature: t.Signature}, nil
	}

	if t.Address == nil {
		return nil, errors.Wrap(errors.ErrFormat, "dynamic signature part without signer address")
	}
	if v == nil {
		return nil, errors.Wrapf(errors.ErrUnsupported, "no validator for dynamic signature of %s", t.Address.Hex())
	}
	ok, err := v.IsValidSignature(ctx, *t.Address, subdigest, t.Signature)
	if err != nil {
		return nil, errors.Wrapf(err, "validate signature of %s", t.Address.Hex())
	}
	if !ok {
		return nil, errors.Wrap(&InvalidSignatureLeafError{Leaf: t}, "contract validation")
	}
	walletsig.GetLogger(ctx).Debug("dynamic signature accepted", "signer", t.Address.Hex())
	return &topology.SignerLeaf{Address: *t.Address, Weight: t.Weight, Signature: t.Signature, IsDynamic: true}, nil
}

// RecoverSignature recovers a single signature for a payload. A
// NoChainIDDynamic signature is always recovered with chain ID zero.
func RecoverSignature(ctx context.Context, s *UnrecoveredSignature, p Payload, v Validator) (*Signature, error) {
	if s == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "signature")
	}
	if s.Type == NoChainIDDynamic {
		p.ChainID = new(big.Int)
	}
	return recoverWithSubdigest(ctx, s, p.Subdigest(), v)
}

func recoverWithSubdigest(ctx context.Context, s *UnrecoveredSignature, subdigest common.Hash, v Validator) (*Signature, error) {
	if s.Type == Chained {
		return nil, errors.Wrap(errors.ErrFormat, "chained signature cannot be nested")
	}
	tree, err := RecoverTopology(ctx, s.Tree, subdigest, v)
	if err != nil {
		return nil, err
	}
	return &Signature{
		Type:      s.Type,
		Subdigest: subdigest,
		Config: &topology.WalletConfig{
			Version:    topology.Version,
			Threshold:  s.Threshold,
			Checkpoint: s.Checkpoint,
			Tree:       tree,
		},
	}, nil
}

// RecoverSubdigest recovers a signature for an already computed subdigest.
// Chained signatures cannot be recovered this way because every segment
// signs a different payload.
func RecoverSubdigest(ctx context.Context, d Decoded, subdigest common.Hash, v Validator) (Recovered, error) {
	switch d := d.(type) {
	case *UnrecoveredSignature:
		return recoverWithSubdigest(ctx, d, subdigest, v)
	case *UnrecoveredChainedSignature:
		return nil, errors.Wrap(errors.ErrInput, "chained signature requires a full payload")
	case nil:
		return nil, errors.Wrap(errors.ErrEmpty, "signature")
	}
	return nil, errors.WithType(errors.ErrInput, d)
}

// RecoverPayload recovers a decoded signature for a payload.
func RecoverPayload(ctx context.Context, d Decoded, p Payload, v Validator) (Recovered, error) {
	switch d := d.(type) {
	case *UnrecoveredSignature:
		return RecoverSignature(ctx, d, p, v)
	case *UnrecoveredChainedSignature:
		return RecoverChained(ctx, d, p, v)
	case nil:
		return nil, errors.Wrap(errors.ErrEmpty, "signature")
	}
	return nil, errors.WithType(errors.ErrInput, d)
}

// RecoverChained recovers every segment of a chained signature. The main
// segment signs the payload. Every following segment signs the update to
// the configuration recovered from the segment before it, and must carry a
// strictly lower checkpoint.
func RecoverChained(ctx context.Context, c *UnrecoveredChainedSignature, p Payload, v Validator) (*ChainedSignature, error) {
	if c == nil || c.Main == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "chained signature")
	}
	main, err := RecoverSignature(ctx, c.Main, p, v)
	if err != nil {
		return nil, errors.Wrap(err, "chain segment 0")
	}

	logger := walletsig.GetLogger(ctx)
	suffix := make([]*Signature, 0, len(c.Suffix))
	prev := main
	for i, seg := range c.Suffix {
		imageHash := prev.Config.ImageHash()
		sig, err := RecoverSignature(ctx, seg, SetImageHashPayload(p.Address, p.ChainID, imageHash), v)
		if err != nil {
			return nil, errors.Wrapf(err, "chain segment %d", i+1)
		}
		if sig.Config.Checkpoint >= prev.Config.Checkpoint {
			return nil, errors.Wrapf(errors.ErrCheckpoint,
				"chain segment %d checkpoint %d is not lower than %d", i+1, sig.Config.Checkpoint, prev.Config.Checkpoint)
		}
		logger.Debug("chain segment recovered", "segment", i+1, "checkpoint", sig.Config.Checkpoint, "approves", imageHash.Hex())
		suffix = append(suffix, sig)
		prev = sig
	}
	return &ChainedSignature{Main: main, Suffix: suffix}, nil
}

// Recover decodes and recovers a signature for a payload.
func Recover(ctx context.Context, b []byte, p Payload, v Validator) (Recovered, error) {
	d, err := Decode(b)
	if err != nil {
		return nil, err
	}
	return RecoverPayload(ctx, d, p, v)
}
