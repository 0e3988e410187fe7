package erc1271

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/crypto"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/signature"
	"github.com/iov-one/walletsig/sigtest"
	"github.com/iov-one/walletsig/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContract answers isValidSignature calls, accepting a single
// signature for a single digest.
type fakeContract struct {
	address common.Address
	digest  common.Hash
	accept  []byte
	result  []byte
	err     error
	calls   int
	block   *big.Int
}

func (c *fakeContract) CallContract(_ context.Context, call ethereum.CallMsg, block *big.Int) ([]byte, error) {
	c.calls++
	c.block = block
	if c.err != nil {
		return nil, c.err
	}
	if call.To == nil || *call.To != c.address {
		return nil, nil
	}
	if c.result != nil {
		return c.result, nil
	}
	method := ContractABI.Methods[methodName]
	if !bytes.Equal(call.Data[:4], method.ID) {
		return nil, errors.Wrap(errors.ErrInput, "unknown method")
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}
	digest := args[0].([32]byte)
	sig := args[1].([]byte)
	magic := [4]byte{}
	if common.Hash(digest) == c.digest && bytes.Equal(sig, c.accept) {
		magic = MagicValue
	}
	return method.Outputs.Pack(magic)
}

func TestIsValidSignature(t *testing.T) {
	signer := sigtest.NewSigner(t)
	digest := sigtest.NewHash(t)
	contract := &fakeContract{
		address: sigtest.NewAddress(t),
		digest:  digest,
		accept:  []byte("wallet approval"),
	}
	walletSig := append([]byte("wallet approval"), byte(crypto.SigTypeWalletBytes32))
	ethSign, err := signer.Sign(digest, crypto.SigTypeEthSign)
	require.NoError(t, err)

	cases := map[string]struct {
		signer    common.Address
		sig       []byte
		caller    *fakeContract
		want      bool
		wantErr   *errors.Error
		wantCalls int
	}{
		"eip712 signature": {
			signer: signer.Address(),
			sig:    sigtest.Sign(t, signer, digest),
			want:   true,
		},
		"eth sign signature": {
			signer: signer.Address(),
			sig:    ethSign,
			want:   true,
		},
		"ecdsa signature of another signer": {
			signer: sigtest.NewAddress(t),
			sig:    sigtest.Sign(t, signer, digest),
			want:   false,
		},
		"accepted by contract": {
			signer:    contract.address,
			sig:       walletSig,
			want:      true,
			wantCalls: 1,
		},
		"rejected by contract": {
			signer:    contract.address,
			sig:       append([]byte("forged"), byte(crypto.SigTypeWalletBytes32)),
			want:      false,
			wantCalls: 1,
		},
		"account without code": {
			signer:    sigtest.NewAddress(t),
			sig:       walletSig,
			want:      false,
			wantCalls: 1,
		},
		"call failure": {
			signer:    contract.address,
			sig:       walletSig,
			caller:    &fakeContract{address: contract.address, err: errors.ErrNotFound},
			wantErr:   ErrContractCall,
			wantCalls: 1,
		},
		"malformed result": {
			signer:    contract.address,
			sig:       walletSig,
			caller:    &fakeContract{address: contract.address, result: []byte{1, 2, 3}},
			wantErr:   ErrContractCall,
			wantCalls: 1,
		},
		"empty signature": {
			signer:  contract.address,
			sig:     nil,
			wantErr: errors.ErrFormat,
		},
		"unknown signature type": {
			signer:  contract.address,
			sig:     []byte{1, 2, 9},
			wantErr: errors.ErrUnsupported,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			caller := tc.caller
			if caller == nil {
				cp := *contract
				caller = &cp
			}
			v := NewValidator(caller)
			got, err := v.IsValidSignature(context.Background(), tc.signer, digest, tc.sig)
			assert.Equal(t, tc.wantCalls, caller.calls)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "unexpected error %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAtBlock(t *testing.T) {
	contract := &fakeContract{address: sigtest.NewAddress(t)}
	v := NewValidator(contract)
	pinned := v.AtBlock(big.NewInt(42))

	sig := []byte{0xaa, byte(crypto.SigTypeWalletBytes32)}
	_, err := pinned.IsValidSignature(context.Background(), contract.address, common.Hash{}, sig)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), contract.block)

	_, err = v.IsValidSignature(context.Background(), contract.address, common.Hash{}, sig)
	require.NoError(t, err)
	assert.Nil(t, contract.block)
}

func TestRecoverWithContractSigner(t *testing.T) {
	signer := sigtest.NewSigner(t)
	p := signature.Payload{Address: sigtest.NewAddress(t), ChainID: big.NewInt(10), Digest: sigtest.NewHash(t)}
	contract := &fakeContract{
		address: sigtest.NewAddress(t),
		digest:  p.Subdigest(),
		accept:  []byte{0xbe, 0xef},
	}
	c, err := topology.NewWalletConfig(2, 1, &topology.Node{
		Left:  &topology.SignerLeaf{Address: signer.Address(), Weight: 1},
		Right: &topology.SignerLeaf{Address: contract.address, Weight: 1},
	})
	require.NoError(t, err)

	parts := map[common.Address]signature.Part{
		signer.Address(): {Signature: sigtest.Sign(t, signer, p.Subdigest())},
		contract.address: {Signature: []byte{0xbe, 0xef, byte(crypto.SigTypeWalletBytes32)}},
	}
	raw, weight, err := signature.EncodeSigners(c, parts, nil, p.ChainID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), weight)

	r, err := signature.Recover(context.Background(), raw, p, NewValidator(contract))
	require.NoError(t, err)
	sig := r.(*signature.Signature)
	assert.True(t, sig.IsValid())
	assert.Equal(t, c.ImageHash(), sig.Config.ImageHash())
	assert.Len(t, sig.Signers(), 2)

	// Same signature for another digest is refused by the contract.
	other := p
	other.Digest = sigtest.NewHash(t)
	_, err = signature.Recover(context.Background(), raw, other, NewValidator(contract))
	require.Error(t, err)
	assert.True(t, errors.ErrInvalidSignature.Is(err))
	leaf, ok := signature.AsInvalidSignatureLeaf(err)
	require.True(t, ok)
	assert.Equal(t, contract.address, *leaf.Leaf.Address)
}
