package topology

import (
	"fmt"
	"testing"

	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/sigtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSigners(t *testing.T, n int) []Member {
	members := make([]Member, n)
	for i := range members {
		members[i] = SimpleSigner{Address: sigtest.NewAddress(t), Weight: uint8(i%3 + 1)}
	}
	return members
}

func leaf(m Member) Topology {
	s := m.(SimpleSigner)
	return &SignerLeaf{Address: s.Address, Weight: s.Weight}
}

func TestLegacyBuilderShape(t *testing.T) {
	m := newSigners(t, 4)
	tree, err := LegacyBuilder(m)
	require.NoError(t, err)

	want := &Node{
		Left: &Node{
			Left:  &Node{Left: leaf(m[0]), Right: leaf(m[1])},
			Right: leaf(m[2]),
		},
		Right: leaf(m[3]),
	}
	assert.Equal(t, want, tree)
}

func TestMerkleBuilderShape(t *testing.T) {
	m := newSigners(t, 5)
	tree, err := MerkleBuilder(m)
	require.NoError(t, err)

	want := &Node{
		Left: &Node{
			Left:  &Node{Left: leaf(m[0]), Right: leaf(m[1])},
			Right: &Node{Left: leaf(m[2]), Right: leaf(m[3])},
		},
		Right: leaf(m[4]),
	}
	assert.Equal(t, want, tree)

	single, err := MerkleBuilder(m[:1])
	require.NoError(t, err)
	assert.Equal(t, leaf(m[0]), single)

	three, err := MerkleBuilder(m[:3])
	require.NoError(t, err)
	assert.Equal(t, &Node{
		Left:  &Node{Left: leaf(m[0]), Right: leaf(m[1])},
		Right: leaf(m[2]),
	}, three)
}

func depth(t Topology) int {
	switch t := t.(type) {
	case *Node:
		l, r := depth(t.Left), depth(t.Right)
		if l > r {
			return l + 1
		}
		return r + 1
	case *NestedLeaf:
		return depth(t.Tree) + 1
	}
	return 0
}

func TestOptimizedBuilder(t *testing.T) {
	small := newSigners(t, 8)
	tree, err := OptimizedBuilder(small)
	require.NoError(t, err)
	legacy, err := LegacyBuilder(small)
	require.NoError(t, err)
	assert.Equal(t, legacy, tree)
	assert.Equal(t, 7, depth(tree))

	large := newSigners(t, 9)
	tree, err = OptimizedBuilder(large)
	require.NoError(t, err)
	merkle, err := MerkleBuilder(large)
	require.NoError(t, err)
	assert.Equal(t, merkle, tree)
	assert.Equal(t, 4, depth(tree))
}

func TestBuildersRejectEmptyMembers(t *testing.T) {
	builders := map[string]Builder{
		"legacy":    LegacyBuilder,
		"merkle":    MerkleBuilder,
		"optimized": OptimizedBuilder,
	}
	for name, b := range builders {
		t.Run(name, func(t *testing.T) {
			_, err := b(nil)
			assert.True(t, errors.ErrConfig.Is(err))

			_, err = b([]Member{SimpleNested{Threshold: 1, Weight: 1}})
			assert.True(t, errors.ErrConfig.Is(err))
		})
	}
}

func TestBuilderRoundTrip(t *testing.T) {
	builders := map[string]Builder{
		"legacy":    LegacyBuilder,
		"merkle":    MerkleBuilder,
		"optimized": OptimizedBuilder,
	}
	for name, b := range builders {
		for n := 1; n <= 20; n++ {
			t.Run(fmt.Sprintf("%s %d members", name, n), func(t *testing.T) {
				members := newSigners(t, n)
				if n > 2 {
					members[1] = SimpleSubdigest{Subdigest: sigtest.NewHash(t)}
					members[n-1] = SimpleNested{
						Threshold: 2,
						Weight:    1,
						Members:   newSigners(t, n/2+1),
					}
				}
				sc := SimpleWalletConfig{Threshold: 1, Checkpoint: uint32(n), Members: members}

				c, err := ToWalletConfig(sc, b)
				require.NoError(t, err)
				got, err := ToSimpleWalletConfig(c)
				require.NoError(t, err)
				assert.Equal(t, sc, got)
			})
		}
	}
}

func TestToSimpleWalletConfigPruned(t *testing.T) {
	c := &WalletConfig{
		Version:   Version,
		Threshold: 1,
		Tree: &Node{
			Left:  &SignerLeaf{Address: sigtest.NewAddress(t), Weight: 1},
			Right: &NodeLeaf{NodeHash: sigtest.NewHash(t)},
		},
	}
	_, err := ToSimpleWalletConfig(c)
	assert.True(t, errors.ErrConfig.Is(err))
}
