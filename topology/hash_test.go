package topology

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/crypto"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/sigtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSignerLeaf(t *testing.T) {
	addr := common.HexToAddress("0x07ab71Fe97F9122a2dBE3797aa441623f5a59DB1")
	got := HashNode(&SignerLeaf{Address: addr, Weight: 3})
	want := common.HexToHash("0x00000000000000000000000307ab71fe97f9122a2dbe3797aa441623f5a59db1")
	assert.Equal(t, want, got)

	// Signature does not change the hash of a signer.
	signed := HashNode(&SignerLeaf{Address: addr, Weight: 3, Signature: []byte{1, 2, 3}})
	assert.Equal(t, want, signed)
}

func TestHashNode(t *testing.T) {
	a := &SignerLeaf{Address: common.HexToAddress("0x01"), Weight: 1}
	b := &SubdigestLeaf{Subdigest: common.HexToHash("0x02")}
	ha, hb := HashNode(a), HashNode(b)

	assert.Equal(t, crypto.Keccak256([]byte("Sequence static digest:\n"), b.Subdigest[:]), hb)
	assert.Equal(t, crypto.Keccak256(ha[:], hb[:]), HashNode(&Node{Left: a, Right: b}))
	assert.NotEqual(t, HashNode(&Node{Left: a, Right: b}), HashNode(&Node{Left: b, Right: a}),
		"children order must change the hash")

	nested := &NestedLeaf{Tree: &Node{Left: a, Right: b}, Weight: 2, Threshold: 1}
	inner := HashNode(nested.Tree)
	wantNested := crypto.Keccak256(
		[]byte("Sequence nested config:\n"),
		inner[:],
		common.LeftPadBytes([]byte{1}, 32),
		common.LeftPadBytes([]byte{2}, 32),
	)
	assert.Equal(t, wantNested, HashNode(nested))

	// Pruned subtree keeps the hash of the subtree.
	pruned := &Node{Left: &NodeLeaf{NodeHash: HashNode(nested)}, Right: a}
	assert.Equal(t, HashNode(&Node{Left: nested, Right: a}), HashNode(pruned))
}

func TestImageHash(t *testing.T) {
	tree := &Node{
		Left:  &SignerLeaf{Address: sigtest.NewAddress(t), Weight: 1},
		Right: &SignerLeaf{Address: sigtest.NewAddress(t), Weight: 1},
	}
	c := &WalletConfig{Version: Version, Threshold: 1, Checkpoint: 7, Tree: tree}

	root := HashNode(tree)
	inner := crypto.Keccak256(root[:], common.LeftPadBytes([]byte{1}, 32))
	want := crypto.Keccak256(inner[:], common.LeftPadBytes([]byte{7}, 32))
	assert.Equal(t, want, c.ImageHash())

	other := &WalletConfig{Version: Version, Threshold: 1, Checkpoint: 8, Tree: tree}
	assert.NotEqual(t, c.ImageHash(), other.ImageHash())
	other = &WalletConfig{Version: Version, Threshold: 2, Checkpoint: 7, Tree: tree}
	assert.NotEqual(t, c.ImageHash(), other.ImageHash())
}

func TestEncodedSignerLeaf(t *testing.T) {
	addr := sigtest.NewAddress(t)
	h := EncodeSignerLeaf(addr, 200)
	require.True(t, IsEncodedSignerLeaf(h))

	leaf, err := DecodeSignerLeaf(h)
	require.NoError(t, err)
	assert.Equal(t, &SignerLeaf{Address: addr, Weight: 200}, leaf)

	h[0] = 1
	assert.False(t, IsEncodedSignerLeaf(h))
	_, err = DecodeSignerLeaf(h)
	assert.True(t, errors.ErrInput.Is(err))
}

func TestHashKnownAnswers(t *testing.T) {
	a := &SignerLeaf{Address: common.HexToAddress("0x07ab71Fe97F9122a2dBE3797aa441623f5a59DB1"), Weight: 1}
	b := &SignerLeaf{Address: common.HexToAddress("0xe4b6a1b7a0e7d2b19c3a3d5c2ff1c1e1b94a2d10"), Weight: 2}
	sub := &SubdigestLeaf{Subdigest: common.HexToHash("0x02")}
	pair := &Node{Left: a, Right: b}

	cases := map[string]struct {
		got  common.Hash
		want string
	}{
		"subdigest leaf": {
			got:  HashNode(sub),
			want: "0x491330f2453412cc9e6a1cf12cd3ccf48ea6e2308722fe9449f7c13202aa6647",
		},
		"node": {
			got:  HashNode(&Node{Left: a, Right: sub}),
			want: "0x40a143cab7f014769eed2b0fbcb0df927f3e070073ec9df7acaa76874fae0387",
		},
		"nested leaf": {
			got:  HashNode(&NestedLeaf{Tree: &Node{Left: a, Right: sub}, Weight: 2, Threshold: 1}),
			want: "0xf67c17c1a1f331a0618fcc57003ab4090bcc1e9c1e7ea4c0e610cc7a491c05ea",
		},
		"image hash": {
			got:  ImageHash(pair, 1, 7),
			want: "0x717fc5caebd5fc70641aedcd790774f389f7de44e06151af669db20248e62e61",
		},
		"image hash with wide checkpoint": {
			got:  ImageHash(pair, 2, 1667830200),
			want: "0x63ecda77302caf1cccbe75731bb1b2bc8136e99409dab0e3f2e73c2a964cc182",
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, common.HexToHash(tc.want), tc.got)
		})
	}
}
