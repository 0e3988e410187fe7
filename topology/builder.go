package topology

import (
	"github.com/iov-one/walletsig/errors"
)

// Builder turns an ordered member list into a tree. Builders are
// deterministic and every builder keeps the leaves in member order.
type Builder func(members []Member) (Topology, error)

// optimizerThreshold is the largest member count for which the legacy
// shape is cheaper to verify than the balanced one.
const optimizerThreshold = 8

// LegacyBuilder folds members from the left. Each member is attached as
// the right child of the tree built so far, producing a tree of linear
// depth.
func LegacyBuilder(members []Member) (Topology, error) {
	leaves, err := toLeaves(members, LegacyBuilder)
	if err != nil {
		return nil, err
	}
	tree := leaves[0]
	for _, leaf := range leaves[1:] {
		tree = &Node{Left: tree, Right: leaf}
	}
	return tree, nil
}

// MerkleBuilder pairs adjacent nodes in rounds until a single root is left.
// An odd node at the end of a round is carried to the next round as it is.
func MerkleBuilder(members []Member) (Topology, error) {
	nodes, err := toLeaves(members, MerkleBuilder)
	if err != nil {
		return nil, err
	}
	for n := len(nodes); n > 1; n = (n + 1) / 2 {
		for i := 0; i < (n+1)/2; i++ {
			j := 2 * i
			if j+1 < n {
				nodes[i] = &Node{Left: nodes[j], Right: nodes[j+1]}
			} else {
				nodes[i] = nodes[j]
			}
		}
	}
	return nodes[0], nil
}

// OptimizedBuilder uses MerkleBuilder for more than eight members and
// LegacyBuilder otherwise.
func OptimizedBuilder(members []Member) (Topology, error) {
	if len(members) > optimizerThreshold {
		return MerkleBuilder(members)
	}
	return LegacyBuilder(members)
}

// toLeaves converts members into leaves. Nested members are built using
// given builder.
func toLeaves(members []Member, b Builder) ([]Topology, error) {
	if len(members) == 0 {
		return nil, errors.Wrap(errors.ErrConfig, "empty signers tree")
	}
	leaves := make([]Topology, len(members))
	for i, m := range members {
		switch m := m.(type) {
		case SimpleSigner:
			leaves[i] = &SignerLeaf{Address: m.Address, Weight: m.Weight}
		case SimpleSubdigest:
			leaves[i] = &SubdigestLeaf{Subdigest: m.Subdigest}
		case SimpleNested:
			tree, err := b(m.Members)
			if err != nil {
				return nil, errors.Wrapf(err, "nested member %d", i)
			}
			leaves[i] = &NestedLeaf{Tree: tree, Weight: m.Weight, Threshold: m.Threshold}
		default:
			return nil, errors.Wrapf(errors.ErrInput, "unknown member type %T", m)
		}
	}
	return leaves, nil
}
