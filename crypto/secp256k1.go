package crypto

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/walletsig/errors"
)

// SigType is the last byte of an encoded signature. It declares how the
// signed digest was prepared before signing.
type SigType byte

const (
	// SigTypeEIP712 signature is created directly over the digest.
	SigTypeEIP712 SigType = 1
	// SigTypeEthSign signature is created over the eth_sign prefixed
	// digest.
	SigTypeEthSign SigType = 2
	// SigTypeWalletBytes32 signature must be validated by the signing
	// contract itself (ERC-1271).
	SigTypeWalletBytes32 SigType = 3
)

// SignatureLength is the size of a static signature: 32 bytes r, 32 bytes
// s, 1 byte v and 1 byte signature type.
const SignatureLength = 66

// RecoverSigner returns the address of the key that created given static
// signature over the digest. The signature type byte decides which digest
// flavour is used for the recovery.
func RecoverSigner(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, errors.Wrapf(errors.ErrFormat,
			"signature is %d bytes long, want %d", len(sig), SignatureLength)
	}

	var hash common.Hash
	switch t := SigType(sig[SignatureLength-1]); t {
	case SigTypeEIP712:
		hash = digest
	case SigTypeEthSign:
		hash = EthSignDigest(digest)
	default:
		return common.Address{}, errors.Wrapf(errors.ErrUnsupported, "static signature type %d", t)
	}

	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return common.Address{}, errors.Wrapf(errors.ErrFormat, "recovery id %d", sig[64])
	}
	rsv := make([]byte, 65)
	copy(rsv, sig[:64])
	rsv[64] = v

	pub, err := ethcrypto.SigToPub(hash[:], rsv)
	if err != nil {
		return common.Address{}, errors.Wrap(errors.ErrInvalidSignature, err.Error())
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

// Signer is a secp256k1 private key able to produce static signatures.
type Signer struct {
	key *ecdsa.PrivateKey
}

// GenerateSigner returns a signer with a new random private key.
func GenerateSigner() (*Signer, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}
	return &Signer{key: key}, nil
}

// SignerFromHex loads a signer from a hex encoded private key.
func SignerFromHex(raw string) (*Signer, error) {
	key, err := ethcrypto.HexToECDSA(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return &Signer{key: key}, nil
}

// Address returns the address derived from the public key.
func (s *Signer) Address() common.Address {
	return ethcrypto.PubkeyToAddress(s.key.PublicKey)
}

// Hex returns the hex encoded private key, without 0x prefix.
func (s *Signer) Hex() string {
	return common.Bytes2Hex(ethcrypto.FromECDSA(s.key))
}

// Sign returns a static signature of given type over the digest.
func (s *Signer) Sign(digest common.Hash, t SigType) ([]byte, error) {
	var hash common.Hash
	switch t {
	case SigTypeEIP712:
		hash = digest
	case SigTypeEthSign:
		hash = EthSignDigest(digest)
	default:
		return nil, errors.Wrapf(errors.ErrUnsupported, "static signature type %d", t)
	}
	rsv, err := ethcrypto.Sign(hash[:], s.key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	sig := make([]byte, SignatureLength)
	copy(sig, rsv[:64])
	sig[64] = rsv[64] + 27
	sig[65] = byte(t)
	return sig, nil
}
