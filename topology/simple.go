package topology

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/errors"
)

// Member is an element of a flat configuration description. It is
// implemented by SimpleSigner, SimpleSubdigest and SimpleNested.
type Member interface {
	member()
}

// SimpleSigner is a signer member.
type SimpleSigner struct {
	Address common.Address
	Weight  uint8
}

// SimpleSubdigest is a pre-approved subdigest member.
type SimpleSubdigest struct {
	Subdigest common.Hash
}

// SimpleNested is a member that is itself a threshold policy.
type SimpleNested struct {
	Threshold uint16
	Weight    uint8
	Members   []Member
}

func (SimpleSigner) member()    {}
func (SimpleSubdigest) member() {}
func (SimpleNested) member()    {}

// SimpleWalletConfig describes a configuration as an ordered member list.
// It is the compact form of a WalletConfig: together with the builder it
// rebuilds the exact tree.
type SimpleWalletConfig struct {
	Threshold  uint16
	Checkpoint uint32
	Members    []Member
}

// ToWalletConfig builds the tree of given simple configuration. When b is
// nil, OptimizedBuilder is used.
func ToWalletConfig(sc SimpleWalletConfig, b Builder) (*WalletConfig, error) {
	if b == nil {
		b = OptimizedBuilder
	}
	tree, err := b(sc.Members)
	if err != nil {
		return nil, errors.Wrap(err, "build tree")
	}
	return NewWalletConfig(sc.Threshold, sc.Checkpoint, tree)
}

// ToSimpleWalletConfig flattens a configuration into its member list.
// Members are listed in the order of the tree leaves. A configuration
// holding pruned subtrees cannot be flattened.
func ToSimpleWalletConfig(c *WalletConfig) (SimpleWalletConfig, error) {
	members, err := Members(c.Tree)
	if err != nil {
		return SimpleWalletConfig{}, err
	}
	return SimpleWalletConfig{
		Threshold:  c.Threshold,
		Checkpoint: c.Checkpoint,
		Members:    members,
	}, nil
}

// Members returns the leaves of the tree as members, left to right.
func Members(t Topology) ([]Member, error) {
	switch t := t.(type) {
	case *Node:
		left, err := Members(t.Left)
		if err != nil {
			return nil, err
		}
		right, err := Members(t.Right)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	case *SignerLeaf:
		return []Member{SimpleSigner{Address: t.Address, Weight: t.Weight}}, nil
	case *SubdigestLeaf:
		return []Member{SimpleSubdigest{Subdigest: t.Subdigest}}, nil
	case *NestedLeaf:
		inner, err := Members(t.Tree)
		if err != nil {
			return nil, errors.Wrap(err, "nested")
		}
		return []Member{SimpleNested{Threshold: t.Threshold, Weight: t.Weight, Members: inner}}, nil
	case *NodeLeaf:
		return nil, errors.Wrapf(errors.ErrConfig, "pruned subtree %s has no members", t.NodeHash.Hex())
	}
	return nil, errors.Wrapf(errors.ErrHuman, "unknown topology type %T", t)
}

// EditAction describes a configuration change.
type EditAction struct {
	// Add signers at the end of the top level member list.
	Add []SimpleSigner
	// Remove top level signers.
	Remove []common.Address
	// Threshold replaces the current threshold if not zero.
	Threshold uint16
	// Checkpoint of the new configuration. Zero means the current
	// checkpoint incremented by one.
	Checkpoint uint32
}

// EditConfig returns a new configuration created by applying given change.
// The current configuration is not modified.
func EditConfig(c *WalletConfig, action EditAction, b Builder) (*WalletConfig, error) {
	sc, err := ToSimpleWalletConfig(c)
	if err != nil {
		return nil, errors.Wrap(err, "current configuration")
	}

	checkpoint := action.Checkpoint
	if checkpoint == 0 {
		if c.Checkpoint == ^uint32(0) {
			return nil, errors.Wrap(errors.ErrOverflow, "checkpoint")
		}
		checkpoint = c.Checkpoint + 1
	}
	if checkpoint <= c.Checkpoint {
		return nil, errors.Wrapf(errors.ErrCheckpoint,
			"new checkpoint %d must be greater than %d", checkpoint, c.Checkpoint)
	}

	removed := make(map[common.Address]bool, len(action.Remove))
	for _, a := range action.Remove {
		removed[a] = true
	}
	members := make([]Member, 0, len(sc.Members)+len(action.Add))
	present := make(map[common.Address]bool)
	for _, m := range sc.Members {
		if s, ok := m.(SimpleSigner); ok {
			if removed[s.Address] {
				continue
			}
			present[s.Address] = true
		}
		members = append(members, m)
	}
	for _, s := range action.Add {
		if present[s.Address] {
			return nil, errors.Wrapf(errors.ErrInput, "signer %s already present", s.Address.Hex())
		}
		present[s.Address] = true
		members = append(members, s)
	}

	threshold := sc.Threshold
	if action.Threshold != 0 {
		threshold = action.Threshold
	}
	return ToWalletConfig(SimpleWalletConfig{
		Threshold:  threshold,
		Checkpoint: checkpoint,
		Members:    members,
	}, b)
}
