package signature

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iov-one/walletsig/crypto"
	"github.com/iov-one/walletsig/sigtest"
	"github.com/iov-one/walletsig/topology"
	"github.com/stretchr/testify/require"
)

// newConfig returns a configuration of given signers, each with weight one.
func newConfig(t testing.TB, signers []*crypto.Signer, threshold uint16, checkpoint uint32) *topology.WalletConfig {
	t.Helper()
	members := make([]topology.Member, len(signers))
	for i, s := range signers {
		members[i] = topology.SimpleSigner{Address: s.Address(), Weight: 1}
	}
	c, err := topology.ToWalletConfig(topology.SimpleWalletConfig{
		Threshold:  threshold,
		Checkpoint: checkpoint,
		Members:    members,
	}, nil)
	require.NoError(t, err)
	return c
}

func newPayload(t testing.TB) Payload {
	return Payload{
		Address: sigtest.NewAddress(t),
		ChainID: big.NewInt(1),
		Digest:  sigtest.NewHash(t),
	}
}

// signParts signs the payload subdigest with every given signer.
func signParts(t testing.TB, p Payload, signers ...*crypto.Signer) map[common.Address]Part {
	t.Helper()
	sub := p.Subdigest()
	parts := make(map[common.Address]Part, len(signers))
	for _, s := range signers {
		parts[s.Address()] = Part{Signature: sigtest.Sign(t, s, sub)}
	}
	return parts
}

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hexutil.Decode(s)
	require.NoError(t, err)
	return b
}

func ctx(t testing.TB) context.Context {
	return context.Background()
}
