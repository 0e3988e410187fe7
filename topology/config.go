package topology

import (
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/crypto"
	"github.com/iov-one/walletsig/errors"
)

// Version of the configuration scheme implemented by this package.
const Version = 2

// InfiniteWeight is the weight of a satisfied subdigest leaf. It reaches
// any threshold.
const InfiniteWeight uint64 = math.MaxUint64

// AddWeight returns a+b, saturating at InfiniteWeight.
func AddWeight(a, b uint64) uint64 {
	if a > InfiniteWeight-b {
		return InfiniteWeight
	}
	return a + b
}

// WalletConfig is the authority of a wallet at a given checkpoint.
type WalletConfig struct {
	Version    int
	Threshold  uint16
	Checkpoint uint32
	Tree       Topology
}

// NewWalletConfig returns a validated configuration.
func NewWalletConfig(threshold uint16, checkpoint uint32, tree Topology) (*WalletConfig, error) {
	c := &WalletConfig{
		Version:    Version,
		Threshold:  threshold,
		Checkpoint: checkpoint,
		Tree:       tree,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate returns an error if the configuration cannot authorize anything.
// Reachability of the threshold is not checked when the tree contains
// pruned subtrees, because their weight is unknown.
func (c *WalletConfig) Validate() error {
	if c.Version != Version {
		return errors.Wrapf(errors.ErrConfig, "version %d", c.Version)
	}
	if c.Tree == nil {
		return errors.Wrap(errors.ErrConfig, "no tree")
	}
	if c.Threshold == 0 {
		return errors.Wrap(errors.ErrConfig, "threshold must be greater than 0")
	}
	if w, opaque := MaxWeight(c.Tree); !opaque && w < uint64(c.Threshold) {
		return errors.Wrapf(errors.ErrConfig,
			"threshold %d is unreachable, maximum weight is %d", c.Threshold, w)
	}
	return nil
}

// ImageHash returns the image hash of the configuration. Two configurations
// represent the same authority if and only if their image hashes are equal.
func (c *WalletConfig) ImageHash() common.Hash {
	return ImageHash(c.Tree, c.Threshold, c.Checkpoint)
}

// ImageHash returns
//
//	keccak256(keccak256(hashNode(tree) ‖ threshold) ‖ checkpoint)
//
// where both integers are encoded as 32 byte ABI words.
func ImageHash(tree Topology, threshold uint16, checkpoint uint32) common.Hash {
	root := HashNode(tree)
	inner := crypto.Keccak256(root[:], word(uint64(threshold)))
	return crypto.Keccak256(inner[:], word(uint64(checkpoint)))
}

// MaxWeight returns the weight collected if every signer of the tree signed
// and every subdigest was satisfied. Opaque is true if the tree contains at
// least one pruned subtree.
func MaxWeight(t Topology) (weight uint64, opaque bool) {
	switch t := t.(type) {
	case *Node:
		l, lo := MaxWeight(t.Left)
		r, ro := MaxWeight(t.Right)
		return AddWeight(l, r), lo || ro
	case *SignerLeaf:
		return uint64(t.Weight), false
	case *SubdigestLeaf:
		return InfiniteWeight, false
	case *NestedLeaf:
		inner, o := MaxWeight(t.Tree)
		if inner >= uint64(t.Threshold) || o {
			return uint64(t.Weight), o
		}
		return 0, false
	case *NodeLeaf:
		return 0, true
	}
	return 0, false
}

// Signer is a signer address together with its weight.
type Signer struct {
	Address common.Address
	Weight  uint8
}

// SignersOf returns all signer leaves of the tree, including those of nested
// configurations, in depth first order.
func SignersOf(t Topology) []Signer {
	var signers []Signer
	walk(t, func(t Topology) {
		if s, ok := t.(*SignerLeaf); ok {
			signers = append(signers, Signer{Address: s.Address, Weight: s.Weight})
		}
	})
	return signers
}

// HasSubdigest returns true if the tree contains a leaf for given subdigest.
func HasSubdigest(t Topology, subdigest common.Hash) bool {
	var found bool
	walk(t, func(t Topology) {
		if s, ok := t.(*SubdigestLeaf); ok && s.Subdigest == subdigest {
			found = true
		}
	})
	return found
}

// walk calls fn for every leaf of the tree, descending into nested
// configurations.
func walk(t Topology, fn func(Topology)) {
	switch t := t.(type) {
	case *Node:
		walk(t.Left, fn)
		walk(t.Right, fn)
	case *NestedLeaf:
		walk(t.Tree, fn)
	default:
		fn(t)
	}
}
