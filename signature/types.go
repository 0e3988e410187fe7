package signature

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/topology"
)

// Type is the first byte of an encoded signature.
type Type uint8

const (
	// Legacy signature has a single byte threshold. The type byte is read
	// by the verifier as the high byte of a two byte threshold.
	Legacy Type = 0
	// Dynamic signature is valid on a single chain.
	Dynamic Type = 1
	// NoChainIDDynamic signature is valid on every chain. The subdigest
	// is always computed with chain ID zero.
	NoChainIDDynamic Type = 2
	// Chained signature is a sequence of signatures proving a path of
	// configuration updates.
	Chained Type = 3
)

func (t Type) String() string {
	switch t {
	case Legacy:
		return "legacy"
	case Dynamic:
		return "dynamic"
	case NoChainIDDynamic:
		return "no chain id dynamic"
	case Chained:
		return "chained"
	}
	return "unknown"
}

// PartType is the first byte of every element of an encoded tree.
type PartType uint8

const (
	PartSignature        PartType = 0
	PartAddress          PartType = 1
	PartDynamicSignature PartType = 2
	PartNode             PartType = 3
	PartBranch           PartType = 4
	PartSubdigest        PartType = 5
	PartNested           PartType = 6
)

// Decoded is a decoded signature, either *UnrecoveredSignature or
// *UnrecoveredChainedSignature.
type Decoded interface {
	decoded()
}

// UnrecoveredSignature is a single signature as decoded from bytes.
type UnrecoveredSignature struct {
	Type       Type
	Threshold  uint16
	Checkpoint uint32
	Tree       topology.Unrecovered
}

// UnrecoveredChainedSignature is a decoded chained signature. Main is the
// first segment. Suffix holds the following segments in encoding order,
// each signed by an older configuration than the one before.
type UnrecoveredChainedSignature struct {
	Main   *UnrecoveredSignature
	Suffix []*UnrecoveredSignature
}

func (*UnrecoveredSignature) decoded()        {}
func (*UnrecoveredChainedSignature) decoded() {}

// Recovered is a recovered signature, either *Signature or
// *ChainedSignature.
type Recovered interface {
	recovered()
}

// Signature is a recovered signature. Config holds the configuration tree
// with every signature part resolved to its signer.
type Signature struct {
	Type      Type
	Subdigest common.Hash
	Config    *topology.WalletConfig
}

// ChainedSignature is a recovered chained signature. Suffix has exactly one
// element less than the number of encoded segments.
type ChainedSignature struct {
	Main   *Signature
	Suffix []*Signature
}

func (*Signature) recovered()        {}
func (*ChainedSignature) recovered() {}

// Unrecovered returns the signature in its decoded form. Encoding the result
// gives the bytes the signature was recovered from.
func (s *Signature) Unrecovered() *UnrecoveredSignature {
	return &UnrecoveredSignature{
		Type:       s.Type,
		Threshold:  s.Config.Threshold,
		Checkpoint: s.Config.Checkpoint,
		Tree:       topology.Unrecover(s.Config.Tree),
	}
}

// Unrecovered returns the chained signature in its decoded form.
func (s *ChainedSignature) Unrecovered() *UnrecoveredChainedSignature {
	suffix := make([]*UnrecoveredSignature, len(s.Suffix))
	for i, sig := range s.Suffix {
		suffix[i] = sig.Unrecovered()
	}
	return &UnrecoveredChainedSignature{Main: s.Main.Unrecovered(), Suffix: suffix}
}

// Weight returns the weight collected by the signature. A subdigest leaf
// holding the signed subdigest reaches any threshold.
func (s *Signature) Weight() uint64 {
	return RecoveredWeight(s.Config.Tree, s.Subdigest)
}

// Signers returns every signer that provided a signature.
func (s *Signature) Signers() []SignedBy {
	return SignaturesOf(s.Config.Tree)
}

// IsValid returns true if the collected weight reaches the threshold.
func (s *Signature) IsValid() bool {
	return s.Weight() >= uint64(s.Config.Threshold)
}

// IsValid returns true if every segment of the chain reaches its threshold.
func (s *ChainedSignature) IsValid() bool {
	if !s.Main.IsValid() {
		return false
	}
	for _, sig := range s.Suffix {
		if !sig.IsValid() {
			return false
		}
	}
	return true
}

// DeepestConfig returns the configuration of the last segment, the oldest
// configuration a signature proves a path from.
func DeepestConfig(r Recovered) *topology.WalletConfig {
	switch r := r.(type) {
	case *Signature:
		return r.Config
	case *ChainedSignature:
		if len(r.Suffix) == 0 {
			return r.Main.Config
		}
		return r.Suffix[len(r.Suffix)-1].Config
	}
	return nil
}

// RecoveredWeight returns the weight of a recovered tree for given
// subdigest. Signer leaves count only when they hold a signature.
func RecoveredWeight(t topology.Topology, subdigest common.Hash) uint64 {
	switch t := t.(type) {
	case *topology.Node:
		return topology.AddWeight(RecoveredWeight(t.Left, subdigest), RecoveredWeight(t.Right, subdigest))
	case *topology.SignerLeaf:
		if t.Signature != nil {
			return uint64(t.Weight)
		}
	case *topology.SubdigestLeaf:
		if t.Subdigest == subdigest {
			return topology.InfiniteWeight
		}
	case *topology.NestedLeaf:
		if RecoveredWeight(t.Tree, subdigest) >= uint64(t.Threshold) {
			return uint64(t.Weight)
		}
	}
	return 0
}

// SignedBy is a signer together with the signature it provided.
type SignedBy struct {
	Address   common.Address
	Signature []byte
	IsDynamic bool
}

// SignaturesOf returns every signer of a recovered tree that provided a
// signature, including signers of nested configurations, in depth first
// order.
func SignaturesOf(t topology.Topology) []SignedBy {
	switch t := t.(type) {
	case *topology.Node:
		return append(SignaturesOf(t.Left), SignaturesOf(t.Right)...)
	case *topology.NestedLeaf:
		return SignaturesOf(t.Tree)
	case *topology.SignerLeaf:
		if t.Signature != nil {
			return []SignedBy{{Address: t.Address, Signature: t.Signature, IsDynamic: t.IsDynamic}}
		}
	}
	return nil
}
