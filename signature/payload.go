package signature

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/iov-one/walletsig/crypto"
)

// SetImageHashTypeHash is the type hash of the message authorizing a
// configuration update.
var SetImageHashTypeHash = crypto.Keccak256([]byte("SetImageHash(bytes32 imageHash)"))

// Payload is a digest signed on behalf of a wallet on a given chain.
type Payload struct {
	Address common.Address
	// ChainID is zero when nil.
	ChainID *big.Int
	Digest  common.Hash
}

// Subdigest returns the hash that every signer signs. It binds the digest
// to the wallet and the chain.
func (p Payload) Subdigest() common.Hash {
	return Subdigest(p.ChainID, p.Address, p.Digest)
}

// Subdigest returns keccak256(0x1901 ‖ chainID ‖ wallet ‖ digest) with the
// chain ID as a 32 byte word.
func Subdigest(chainID *big.Int, wallet common.Address, digest common.Hash) common.Hash {
	id := new(big.Int)
	if chainID != nil {
		id.Set(chainID)
	}
	return crypto.Keccak256([]byte{0x19, 0x01}, math.U256Bytes(id), wallet[:], digest[:])
}

// SetImageHashMessage returns the message authorizing the wallet to switch
// to the configuration with given image hash.
func SetImageHashMessage(imageHash common.Hash) []byte {
	return append(SetImageHashTypeHash.Bytes(), imageHash[:]...)
}

// SetImageHashDigest returns the digest of SetImageHashMessage.
func SetImageHashDigest(imageHash common.Hash) common.Hash {
	return crypto.Keccak256(SetImageHashMessage(imageHash))
}

// SetImageHashPayload returns the payload a configuration signs to approve
// the update of wallet to the configuration with given image hash.
func SetImageHashPayload(wallet common.Address, chainID *big.Int, imageHash common.Hash) Payload {
	return Payload{Address: wallet, ChainID: chainID, Digest: SetImageHashDigest(imageHash)}
}
