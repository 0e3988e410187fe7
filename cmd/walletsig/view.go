package main

import (
	"encoding/json"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/signature"
	"github.com/iov-one/walletsig/topology"
)

// decodedView is the JSON representation of a decoded signature segment.
type decodedView struct {
	Type       string          `json:"type"`
	Threshold  uint16          `json:"threshold"`
	Checkpoint uint32          `json:"checkpoint"`
	Tree       json.RawMessage `json:"tree"`
}

func viewDecoded(d signature.Decoded) (interface{}, error) {
	switch d := d.(type) {
	case *signature.UnrecoveredSignature:
		return viewSegment(d)
	case *signature.UnrecoveredChainedSignature:
		views := make([]decodedView, 0, 1+len(d.Suffix))
		for _, s := range append([]*signature.UnrecoveredSignature{d.Main}, d.Suffix...) {
			v, err := viewSegment(s)
			if err != nil {
				return nil, err
			}
			views = append(views, v)
		}
		return views, nil
	}
	return nil, errors.WithType(errors.ErrInput, d)
}

func viewSegment(s *signature.UnrecoveredSignature) (decodedView, error) {
	tree, err := json.Marshal(viewTree(s.Tree))
	if err != nil {
		return decodedView{}, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return decodedView{
		Type:       s.Type.String(),
		Threshold:  s.Threshold,
		Checkpoint: s.Checkpoint,
		Tree:       tree,
	}, nil
}

// viewTree returns a JSON friendly representation of an unrecovered tree.
// Leaves that need no recovery use the configuration JSON format.
func viewTree(t topology.Unrecovered) interface{} {
	switch t := t.(type) {
	case *topology.UnrecoveredNode:
		return map[string]interface{}{"left": viewTree(t.Left), "right": viewTree(t.Right)}
	case *topology.UnrecoveredNestedLeaf:
		return map[string]interface{}{"weight": t.Weight, "threshold": t.Threshold, "tree": viewTree(t.Tree)}
	case *topology.UnrecoveredSignatureLeaf:
		v := map[string]interface{}{"weight": t.Weight, "signature": hexutil.Bytes(t.Signature)}
		if t.Address != nil {
			v["address"] = t.Address
		}
		if t.IsDynamic {
			v["isDynamic"] = true
		}
		return v
	case *topology.SignerLeaf:
		return map[string]interface{}{"address": t.Address, "weight": t.Weight}
	case *topology.SubdigestLeaf:
		return map[string]interface{}{"subdigest": t.Subdigest}
	case *topology.NodeLeaf:
		return map[string]interface{}{"nodeHash": t.NodeHash}
	}
	return nil
}

// recoveredView is the JSON representation of a recovered signature
// segment.
type recoveredView struct {
	Type      string                 `json:"type"`
	Subdigest common.Hash            `json:"subdigest"`
	ImageHash common.Hash            `json:"imageHash"`
	Weight    string                 `json:"weight"`
	Valid     bool                   `json:"valid"`
	Signers   []common.Address       `json:"signers"`
	Config    *topology.WalletConfig `json:"config"`
}

func viewRecovered(r signature.Recovered) interface{} {
	switch r := r.(type) {
	case *signature.Signature:
		return viewSignature(r)
	case *signature.ChainedSignature:
		views := []recoveredView{viewSignature(r.Main)}
		for _, s := range r.Suffix {
			views = append(views, viewSignature(s))
		}
		return views
	}
	return nil
}

func viewSignature(s *signature.Signature) recoveredView {
	signers := []common.Address{}
	for _, sb := range s.Signers() {
		signers = append(signers, sb.Address)
	}
	weight := "infinite"
	if w := s.Weight(); w != topology.InfiniteWeight {
		weight = strconv.FormatUint(w, 10)
	}
	return recoveredView{
		Type:      s.Type.String(),
		Subdigest: s.Subdigest,
		ImageHash: s.Config.ImageHash(),
		Weight:    weight,
		Valid:     s.IsValid(),
		Signers:   signers,
		Config:    s.Config,
	}
}
