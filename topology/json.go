package topology

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iov-one/walletsig/errors"
)

// jsonNode is the JSON representation shared by all topology elements. The
// set of fields present decides the element kind.
type jsonNode struct {
	Left      json.RawMessage `json:"left,omitempty"`
	Right     json.RawMessage `json:"right,omitempty"`
	Address   *common.Address `json:"address,omitempty"`
	Weight    *uint8          `json:"weight,omitempty"`
	Signature hexutil.Bytes   `json:"signature,omitempty"`
	IsDynamic bool            `json:"isDynamic,omitempty"`
	Subdigest *common.Hash    `json:"subdigest,omitempty"`
	Threshold *uint16         `json:"threshold,omitempty"`
	Tree      json.RawMessage `json:"tree,omitempty"`
	NodeHash  *common.Hash    `json:"nodeHash,omitempty"`
}

// MarshalTopology serializes a tree into JSON.
func MarshalTopology(t Topology) ([]byte, error) {
	var n jsonNode
	switch t := t.(type) {
	case *Node:
		left, err := MarshalTopology(t.Left)
		if err != nil {
			return nil, err
		}
		right, err := MarshalTopology(t.Right)
		if err != nil {
			return nil, err
		}
		n.Left, n.Right = left, right
	case *SignerLeaf:
		addr, weight := t.Address, t.Weight
		n.Address, n.Weight = &addr, &weight
		n.Signature, n.IsDynamic = t.Signature, t.IsDynamic
	case *SubdigestLeaf:
		sub := t.Subdigest
		n.Subdigest = &sub
	case *NestedLeaf:
		tree, err := MarshalTopology(t.Tree)
		if err != nil {
			return nil, err
		}
		weight, threshold := t.Weight, t.Threshold
		n.Tree, n.Weight, n.Threshold = tree, &weight, &threshold
	case *NodeLeaf:
		h := t.NodeHash
		n.NodeHash = &h
	default:
		return nil, errors.Wrapf(errors.ErrHuman, "unknown topology type %T", t)
	}
	return json.Marshal(n)
}

// UnmarshalTopology deserializes a tree created by MarshalTopology.
func UnmarshalTopology(raw []byte) (Topology, error) {
	var n jsonNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	switch {
	case n.Left != nil || n.Right != nil:
		if n.Left == nil || n.Right == nil {
			return nil, errors.Wrap(errors.ErrInput, "node requires both left and right")
		}
		left, err := UnmarshalTopology(n.Left)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}
		right, err := UnmarshalTopology(n.Right)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}
		return &Node{Left: left, Right: right}, nil
	case n.Tree != nil:
		if n.Weight == nil || n.Threshold == nil {
			return nil, errors.Wrap(errors.ErrInput, "nested leaf requires weight and threshold")
		}
		tree, err := UnmarshalTopology(n.Tree)
		if err != nil {
			return nil, errors.Wrap(err, "nested")
		}
		return &NestedLeaf{Tree: tree, Weight: *n.Weight, Threshold: *n.Threshold}, nil
	case n.Address != nil:
		if n.Weight == nil {
			return nil, errors.Wrap(errors.ErrInput, "signer leaf requires weight")
		}
		return &SignerLeaf{
			Address:   *n.Address,
			Weight:    *n.Weight,
			Signature: n.Signature,
			IsDynamic: n.IsDynamic,
		}, nil
	case n.Subdigest != nil:
		return &SubdigestLeaf{Subdigest: *n.Subdigest}, nil
	case n.NodeHash != nil:
		return &NodeLeaf{NodeHash: *n.NodeHash}, nil
	}
	return nil, errors.Wrap(errors.ErrInput, "unknown topology element")
}

type jsonWalletConfig struct {
	Version    int             `json:"version"`
	Threshold  uint16          `json:"threshold"`
	Checkpoint uint32          `json:"checkpoint"`
	Tree       json.RawMessage `json:"tree"`
}

func (c WalletConfig) MarshalJSON() ([]byte, error) {
	tree, err := MarshalTopology(c.Tree)
	if err != nil {
		return nil, errors.Wrap(err, "tree")
	}
	return json.Marshal(jsonWalletConfig{
		Version:    c.Version,
		Threshold:  c.Threshold,
		Checkpoint: c.Checkpoint,
		Tree:       tree,
	})
}

func (c *WalletConfig) UnmarshalJSON(raw []byte) error {
	var jc jsonWalletConfig
	if err := json.Unmarshal(raw, &jc); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if jc.Tree == nil {
		return errors.Wrap(errors.ErrInput, "missing tree")
	}
	tree, err := UnmarshalTopology(jc.Tree)
	if err != nil {
		return errors.Wrap(err, "tree")
	}
	if jc.Version == 0 {
		jc.Version = Version
	}
	*c = WalletConfig{
		Version:    jc.Version,
		Threshold:  jc.Threshold,
		Checkpoint: jc.Checkpoint,
		Tree:       tree,
	}
	return nil
}

type jsonMember struct {
	Address   *common.Address   `json:"address,omitempty"`
	Weight    *uint8            `json:"weight,omitempty"`
	Subdigest *common.Hash      `json:"subdigest,omitempty"`
	Threshold *uint16           `json:"threshold,omitempty"`
	Members   []json.RawMessage `json:"members,omitempty"`
}

func marshalMember(m Member) ([]byte, error) {
	var jm jsonMember
	switch m := m.(type) {
	case SimpleSigner:
		jm.Address, jm.Weight = &m.Address, &m.Weight
	case SimpleSubdigest:
		jm.Subdigest = &m.Subdigest
	case SimpleNested:
		jm.Threshold, jm.Weight = &m.Threshold, &m.Weight
		jm.Members = make([]json.RawMessage, len(m.Members))
		for i, inner := range m.Members {
			raw, err := marshalMember(inner)
			if err != nil {
				return nil, err
			}
			jm.Members[i] = raw
		}
	default:
		return nil, errors.Wrapf(errors.ErrHuman, "unknown member type %T", m)
	}
	return json.Marshal(jm)
}

func unmarshalMember(raw []byte) (Member, error) {
	var jm jsonMember
	if err := json.Unmarshal(raw, &jm); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	switch {
	case jm.Members != nil:
		if jm.Weight == nil || jm.Threshold == nil {
			return nil, errors.Wrap(errors.ErrInput, "nested member requires weight and threshold")
		}
		members, err := unmarshalMembers(jm.Members)
		if err != nil {
			return nil, errors.Wrap(err, "nested")
		}
		return SimpleNested{Threshold: *jm.Threshold, Weight: *jm.Weight, Members: members}, nil
	case jm.Address != nil:
		if jm.Weight == nil {
			return nil, errors.Wrap(errors.ErrInput, "signer member requires weight")
		}
		return SimpleSigner{Address: *jm.Address, Weight: *jm.Weight}, nil
	case jm.Subdigest != nil:
		return SimpleSubdigest{Subdigest: *jm.Subdigest}, nil
	}
	return nil, errors.Wrap(errors.ErrInput, "unknown member")
}

func unmarshalMembers(raws []json.RawMessage) ([]Member, error) {
	members := make([]Member, len(raws))
	for i, raw := range raws {
		m, err := unmarshalMember(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "member %d", i)
		}
		members[i] = m
	}
	return members, nil
}

type jsonSimpleWalletConfig struct {
	Threshold  uint16            `json:"threshold"`
	Checkpoint uint32            `json:"checkpoint"`
	Members    []json.RawMessage `json:"members"`
}

func (c SimpleWalletConfig) MarshalJSON() ([]byte, error) {
	jc := jsonSimpleWalletConfig{
		Threshold:  c.Threshold,
		Checkpoint: c.Checkpoint,
		Members:    make([]json.RawMessage, len(c.Members)),
	}
	for i, m := range c.Members {
		raw, err := marshalMember(m)
		if err != nil {
			return nil, errors.Wrapf(err, "member %d", i)
		}
		jc.Members[i] = raw
	}
	return json.Marshal(jc)
}

func (c *SimpleWalletConfig) UnmarshalJSON(raw []byte) error {
	var jc jsonSimpleWalletConfig
	if err := json.Unmarshal(raw, &jc); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	members, err := unmarshalMembers(jc.Members)
	if err != nil {
		return err
	}
	*c = SimpleWalletConfig{
		Threshold:  jc.Threshold,
		Checkpoint: jc.Checkpoint,
		Members:    members,
	}
	return nil
}
