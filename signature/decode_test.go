package signature

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/sigtest"
	"github.com/iov-one/walletsig/sigtest/assert"
	"github.com/iov-one/walletsig/topology"
)

func TestDecode(t *testing.T) {
	signer := common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")

	cases := map[string]struct {
		raw     string
		want    Decoded
		wantErr *errors.Error
		errMsg  string
	}{
		"legacy signature": {
			raw: "0x0001636911b8" + "01" + "05" + strings.TrimPrefix(signer.Hex(), "0x"),
			want: &UnrecoveredSignature{
				Type:       Legacy,
				Threshold:  1,
				Checkpoint: 0x636911b8,
				Tree:       &topology.SignerLeaf{Address: signer, Weight: 5},
			},
		},
		"dynamic signature": {
			raw: "0x01" + "0102" + "00000007" + "05" + strings.Repeat("ab", 32),
			want: &UnrecoveredSignature{
				Type:       Dynamic,
				Threshold:  0x0102,
				Checkpoint: 7,
				Tree:       &topology.SubdigestLeaf{Subdigest: common.HexToHash("0x" + strings.Repeat("ab", 32))},
			},
		},
		"no chain id signature with two parts": {
			raw: "0x02" + "0001" + "00000000" + "03" + strings.Repeat("11", 32) + "03" + strings.Repeat("22", 32),
			want: &UnrecoveredSignature{
				Type:      NoChainIDDynamic,
				Threshold: 1,
				Tree: &topology.UnrecoveredNode{
					Left:  &topology.NodeLeaf{NodeHash: common.HexToHash("0x" + strings.Repeat("11", 32))},
					Right: &topology.NodeLeaf{NodeHash: common.HexToHash("0x" + strings.Repeat("22", 32))},
				},
			},
		},
		"empty signature tree": {
			raw:     "0x0001ffffffff",
			wantErr: errors.ErrFormat,
			errMsg:  "Empty signature tree",
		},
		"empty input": {
			raw:     "0x",
			wantErr: errors.ErrFormat,
		},
		"unknown type": {
			raw:     "0x04000100000000",
			wantErr: errors.ErrFormat,
			errMsg:  "unknown signature type",
		},
		"unknown part type": {
			raw:     "0x01000100000000" + "07",
			wantErr: errors.ErrFormat,
			errMsg:  "unknown signature part type",
		},
		"truncated header": {
			raw:     "0x010001",
			wantErr: errors.ErrFormat,
		},
		"truncated signature part": {
			raw:     "0x01000100000000" + "0001" + strings.Repeat("aa", 30),
			wantErr: errors.ErrFormat,
		},
		"truncated dynamic signature": {
			raw:     "0x01000100000000" + "0201" + strings.Repeat("aa", 20) + "000010" + "aabb",
			wantErr: errors.ErrFormat,
		},
		"empty nested tree": {
			raw:     "0x01000100000000" + "06" + "01" + "0001" + "000000",
			wantErr: errors.ErrFormat,
			errMsg:  "Empty signature tree",
		},
		"empty chain": {
			raw:     "0x03",
			wantErr: errors.ErrFormat,
		},
		"nested chain": {
			raw:     "0x03" + "000001" + "03",
			wantErr: errors.ErrFormat,
			errMsg:  "cannot be nested",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := Decode(mustHex(t, tc.raw))
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Fatalf("want %q in error message, got %q", tc.errMsg, err)
				}
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeAppendsToTheRight(t *testing.T) {
	a, b, c := sigtest.NewHash(t), sigtest.NewHash(t), sigtest.NewHash(t)
	raw := append([]byte{byte(PartNode)}, a[:]...)
	raw = append(raw, byte(PartSubdigest))
	raw = append(raw, b[:]...)
	raw = append(raw, byte(PartNode))
	raw = append(raw, c[:]...)

	tree, err := DecodeTree(raw)
	assert.Nil(t, err)
	want := &topology.UnrecoveredNode{
		Left: &topology.UnrecoveredNode{
			Left:  &topology.NodeLeaf{NodeHash: a},
			Right: &topology.SubdigestLeaf{Subdigest: b},
		},
		Right: &topology.NodeLeaf{NodeHash: c},
	}
	assert.Equal(t, want, tree)
}

func TestDecodeSignatureRejectsChain(t *testing.T) {
	inner := mustHex(t, "0x0001636911b8"+"03"+strings.Repeat("11", 32))
	chained, err := Chain(inner)
	assert.Nil(t, err)

	_, err = DecodeSignature(chained)
	assert.IsErr(t, errors.ErrFormat, err)

	s, err := DecodeSignature(inner)
	assert.Nil(t, err)
	assert.Equal(t, Legacy, s.Type)
}

// branches returns a dynamic signature holding a node part wrapped in depth
// branch parts.
func branches(depth int) []byte {
	const node = 1 + common.HashLength
	raw := []byte{byte(Dynamic), 0, 1, 0, 0, 0, 0}
	for i := depth - 1; i >= 0; i-- {
		// Content of a branch is i inner branch headers and the node.
		l := node + 4*i
		raw = append(raw, byte(PartBranch), byte(l>>16), byte(l>>8), byte(l))
	}
	raw = append(raw, byte(PartNode))
	return append(raw, make([]byte, common.HashLength)...)
}

func TestDecodeNestingDepth(t *testing.T) {
	cases := map[string]struct {
		depth   int
		wantErr *errors.Error
	}{
		"single branch": {
			depth: 1,
		},
		"deepest accepted": {
			depth: maxTreeDepth,
		},
		"one level too deep": {
			depth:   maxTreeDepth + 1,
			wantErr: errors.ErrFormat,
		},
		"very deep": {
			depth:   10000,
			wantErr: errors.ErrFormat,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			d, err := Decode(branches(tc.depth))
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			// A branch around a single part decodes to that part.
			want := &topology.NodeLeaf{NodeHash: common.Hash{}}
			assert.Equal(t, want, d.(*UnrecoveredSignature).Tree)
		})
	}
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	sig := make([]byte, 66)
	sig[65] = 1
	raw := append([]byte{byte(Dynamic), 0, 1, 0, 0, 0, 0, byte(PartSignature), 1}, sig...)

	s, err := DecodeSignature(raw)
	assert.Nil(t, err)
	raw[len(raw)-1] = 2

	leaf := s.Tree.(*topology.UnrecoveredSignatureLeaf)
	assert.EqualBytes(t, sig, leaf.Signature)
}

func TestDecodeBranchAroundSingleNode(t *testing.T) {
	a, b := sigtest.NewHash(t), sigtest.NewHash(t)
	head := []byte{byte(Dynamic), 0, 1, 0, 0, 0, 2}
	left := append([]byte{byte(PartNode)}, a[:]...)
	right := append([]byte{byte(PartNode)}, b[:]...)

	var wrapped []byte
	wrapped = append(wrapped, head...)
	wrapped = append(wrapped, left...)
	wrapped = append(wrapped, byte(PartBranch), 0, 0, byte(len(right)))
	wrapped = append(wrapped, right...)

	var plain []byte
	plain = append(plain, head...)
	plain = append(plain, left...)
	plain = append(plain, right...)

	d, err := DecodeSignature(wrapped)
	assert.Nil(t, err)
	want := &topology.UnrecoveredNode{
		Left:  &topology.NodeLeaf{NodeHash: a},
		Right: &topology.NodeLeaf{NodeHash: b},
	}
	assert.Equal(t, want, d.Tree)

	// A collapsed right child is written without a branch.
	again, err := Encode(d)
	assert.Nil(t, err)
	assert.EqualBytes(t, plain, again)

	sub := sigtest.NewHash(t)
	fromWrapped, err := RecoverSubdigest(ctx(t), d, sub, nil)
	assert.Nil(t, err)
	fromPlain, err := Recover(ctx(t), plain, Payload{}, nil)
	assert.Nil(t, err)
	assert.Equal(t, fromWrapped.(*Signature).Config.ImageHash(), fromPlain.(*Signature).Config.ImageHash())
}
