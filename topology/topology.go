package topology

import (
	"github.com/ethereum/go-ethereum/common"
)

// Topology is a recovered configuration tree. It is implemented by *Node,
// *SignerLeaf, *SubdigestLeaf, *NestedLeaf and *NodeLeaf only.
type Topology interface {
	topology()
}

// Unrecovered is a configuration tree as decoded from a signature, before
// any signature part is resolved to a signer. It is implemented by
// *UnrecoveredNode, *UnrecoveredNestedLeaf, *UnrecoveredSignatureLeaf and by
// the leaves that need no recovery: *SignerLeaf, *SubdigestLeaf and
// *NodeLeaf.
type Unrecovered interface {
	unrecovered()
}

// Node joins two subtrees. Order matters: swapping children changes both
// the hash and the encoding.
type Node struct {
	Left  Topology
	Right Topology
}

// SignerLeaf grants Weight to a signature of Address.
type SignerLeaf struct {
	Address common.Address
	Weight  uint8
	// Signature is set only when the leaf was recovered from a signature.
	Signature []byte
	// IsDynamic is true when the signature was validated by the signer
	// contract rather than by ECDSA recovery.
	IsDynamic bool
}

// SubdigestLeaf carries a pre-approved subdigest. Signing that exact
// subdigest requires no signature at all.
type SubdigestLeaf struct {
	Subdigest common.Hash
}

// NestedLeaf is a sub-policy. It contributes Weight to its parent only when
// Tree reaches Threshold.
type NestedLeaf struct {
	Tree      Topology
	Weight    uint8
	Threshold uint16
}

// NodeLeaf is an opaque placeholder of a pruned subtree.
type NodeLeaf struct {
	NodeHash common.Hash
}

func (*Node) topology()          {}
func (*SignerLeaf) topology()    {}
func (*SubdigestLeaf) topology() {}
func (*NestedLeaf) topology()    {}
func (*NodeLeaf) topology()      {}

// UnrecoveredNode joins two unrecovered subtrees.
type UnrecoveredNode struct {
	Left  Unrecovered
	Right Unrecovered
}

// UnrecoveredNestedLeaf is a NestedLeaf holding an unrecovered subtree.
type UnrecoveredNestedLeaf struct {
	Tree      Unrecovered
	Weight    uint8
	Threshold uint16
}

// UnrecoveredSignatureLeaf is a signature part that was not yet resolved to
// a signer. Address is known upfront only for dynamic signatures.
type UnrecoveredSignatureLeaf struct {
	Weight    uint8
	Signature []byte
	Address   *common.Address
	IsDynamic bool
}

func (*UnrecoveredNode) unrecovered()          {}
func (*UnrecoveredNestedLeaf) unrecovered()    {}
func (*UnrecoveredSignatureLeaf) unrecovered() {}
func (*SignerLeaf) unrecovered()               {}
func (*SubdigestLeaf) unrecovered()            {}
func (*NodeLeaf) unrecovered()                 {}

// Unrecover returns the unrecovered form of a tree. Signer leaves holding a
// signature become signature leaves that keep their address, every other
// leaf is kept as it is.
func Unrecover(t Topology) Unrecovered {
	switch t := t.(type) {
	case *Node:
		return &UnrecoveredNode{Left: Unrecover(t.Left), Right: Unrecover(t.Right)}
	case *NestedLeaf:
		return &UnrecoveredNestedLeaf{Tree: Unrecover(t.Tree), Weight: t.Weight, Threshold: t.Threshold}
	case *SignerLeaf:
		if t.Signature == nil {
			return t
		}
		addr := t.Address
		return &UnrecoveredSignatureLeaf{
			Weight:    t.Weight,
			Signature: t.Signature,
			Address:   &addr,
			IsDynamic: t.IsDynamic,
		}
	case *SubdigestLeaf:
		return t
	case *NodeLeaf:
		return t
	}
	panic("unknown topology type")
}
