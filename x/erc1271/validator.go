package erc1271

import (
	"bytes"
	"context"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/iov-one/walletsig"
	"github.com/iov-one/walletsig/crypto"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/signature"
)

// MagicValue is returned by isValidSignature when a signature is accepted.
var MagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}

const methodName = "isValidSignature"

const contractABI = `[{
	"type": "function",
	"name": "isValidSignature",
	"stateMutability": "view",
	"inputs": [
		{"name": "_hash", "type": "bytes32"},
		{"name": "_signature", "type": "bytes"}
	],
	"outputs": [
		{"name": "magicValue", "type": "bytes4"}
	]
}]`

// ContractABI is the ABI of the ERC-1271 isValidSignature method.
var ContractABI = mustParseABI(contractABI)

func mustParseABI(raw string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return a
}

// Validator checks dynamic signature parts. It is safe for concurrent use
// as long as the underlying caller is.
type Validator struct {
	caller ethereum.ContractCaller
	// block is the block the calls are made against. Nil means latest.
	block  *big.Int
	closer func()
}

var _ signature.Validator = (*Validator)(nil)

// NewValidator returns a validator calling contracts through caller.
func NewValidator(caller ethereum.ContractCaller) *Validator {
	return &Validator{caller: caller}
}

// Dial connects to the JSON-RPC node at rawurl. Close releases the
// connection.
func Dial(ctx context.Context, rawurl string) (*Validator, error) {
	client, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, errors.Wrapf(ErrContractCall, "dial %q: %s", rawurl, err)
	}
	v := NewValidator(client)
	v.closer = client.Close
	return v, nil
}

// AtBlock returns a copy of the validator that calls contracts in the state
// of given block instead of the latest one.
func (v *Validator) AtBlock(block *big.Int) *Validator {
	cp := *v
	cp.block = block
	return &cp
}

// Close releases the connection opened by Dial.
func (v *Validator) Close() {
	if v.closer != nil {
		v.closer()
	}
}

// IsValidSignature implements signature.Validator. The last byte of sig is
// the signature type. EIP-712 and eth_sign signatures are recovered and
// compared with the signer, wallet signatures are passed without their type
// byte to the isValidSignature method of the signer.
func (v *Validator) IsValidSignature(ctx context.Context, signer common.Address, subdigest common.Hash, sig []byte) (bool, error) {
	if len(sig) == 0 {
		return false, errors.Wrap(errors.ErrFormat, "empty dynamic signature")
	}
	switch t := crypto.SigType(sig[len(sig)-1]); t {
	case crypto.SigTypeEIP712, crypto.SigTypeEthSign:
		addr, err := crypto.RecoverSigner(subdigest, sig)
		if err != nil {
			if errors.ErrInvalidSignature.Is(err) {
				return false, nil
			}
			return false, err
		}
		return addr == signer, nil
	case crypto.SigTypeWalletBytes32:
		return v.call(ctx, signer, subdigest, sig[:len(sig)-1])
	default:
		return false, errors.Wrapf(errors.ErrUnsupported, "dynamic signature type %d", t)
	}
}

func (v *Validator) call(ctx context.Context, contract common.Address, subdigest common.Hash, sig []byte) (bool, error) {
	if v.caller == nil {
		return false, errors.Wrap(ErrContractCall, "no contract caller")
	}
	input, err := ContractABI.Pack(methodName, [32]byte(subdigest), sig)
	if err != nil {
		return false, errors.Wrap(errors.ErrInput, err.Error())
	}
	out, err := v.caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: input}, v.block)
	if err != nil {
		return false, errors.Wrapf(ErrContractCall, "%s: %s", contract.Hex(), err)
	}
	logger := walletsig.GetLogger(ctx)
	// An account without code returns nothing.
	if len(out) == 0 {
		logger.Debug("isValidSignature returned no data", "contract", contract.Hex())
		return false, nil
	}
	res, err := ContractABI.Unpack(methodName, out)
	if err != nil {
		return false, errors.Wrapf(ErrContractCall, "%s: decode result: %s", contract.Hex(), err)
	}
	magic, ok := res[0].([4]byte)
	if !ok {
		return false, errors.Wrapf(ErrContractCall, "%s: unexpected result %T", contract.Hex(), res[0])
	}
	accepted := bytes.Equal(magic[:], MagicValue[:])
	logger.Debug("isValidSignature", "contract", contract.Hex(), "accepted", accepted)
	return accepted, nil
}
