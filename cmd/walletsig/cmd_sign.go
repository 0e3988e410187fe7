package main

import (
	"flag"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/crypto"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/signature"
)

func cmdSubdigest(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the subdigest signed by wallet signers for given digest.

When -image-hash is provided, the digest approving an update to the
configuration with that image hash is used instead of -digest.
`)
		fl.PrintDefaults()
	}
	var (
		walletFl    = flAddress(fl, "wallet", env("WALLETSIG_WALLET", ""), "Wallet address. You can use WALLETSIG_WALLET environment variable to set it.")
		chainIDFl   = flBigInt(fl, "chain-id", env("WALLETSIG_CHAIN_ID", "0"), "Chain ID. Zero for signatures valid on every chain. You can use WALLETSIG_CHAIN_ID environment variable to set it.")
		digestFl    = flHash(fl, "digest", "", "Digest to sign.")
		imageHashFl = flHash(fl, "image-hash", "", "Image hash of the configuration to approve.")
	)
	fl.Parse(args)

	p, err := payloadOf(*walletFl, chainIDFl, *digestFl, *imageHashFl)
	if err != nil {
		return err
	}
	sub := p.Subdigest()
	return writeHex(output, sub[:])
}

func cmdSignDigest(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Sign the subdigest of a digest and print the signature part in JSON format.

Signature parts of many signers can be concatenated and passed to the
encode-signers command.
`)
		fl.PrintDefaults()
	}
	var (
		keyFl       = flHex(fl, "key", env("WALLETSIG_PRIV_KEY", ""), "Hex encoded secp256k1 private key. You can use WALLETSIG_PRIV_KEY environment variable to set it.")
		walletFl    = flAddress(fl, "wallet", env("WALLETSIG_WALLET", ""), "Wallet address. You can use WALLETSIG_WALLET environment variable to set it.")
		chainIDFl   = flBigInt(fl, "chain-id", env("WALLETSIG_CHAIN_ID", "0"), "Chain ID. Zero for signatures valid on every chain. You can use WALLETSIG_CHAIN_ID environment variable to set it.")
		digestFl    = flHash(fl, "digest", "", "Digest to sign.")
		imageHashFl = flHash(fl, "image-hash", "", "Image hash of the configuration to approve.")
		typeFl      = fl.String("type", "eip712", "Signature type, eip712 or eth_sign.")
		dynamicFl   = fl.Bool("dynamic", false, "Force the signature to be validated as a dynamic signature.")
	)
	fl.Parse(args)

	if len(*keyFl) == 0 {
		return errors.Wrap(errors.ErrEmpty, "private key")
	}
	signer, err := crypto.SignerFromHex(common.Bytes2Hex(*keyFl))
	if err != nil {
		return err
	}
	var sigType crypto.SigType
	switch *typeFl {
	case "eip712":
		sigType = crypto.SigTypeEIP712
	case "eth_sign":
		sigType = crypto.SigTypeEthSign
	default:
		return errors.Wrapf(errors.ErrInput, "unknown signature type %q", *typeFl)
	}

	p, err := payloadOf(*walletFl, chainIDFl, *digestFl, *imageHashFl)
	if err != nil {
		return err
	}
	sig, err := signer.Sign(p.Subdigest(), sigType)
	if err != nil {
		return err
	}
	return writeJSON(output, part{
		Address:   signer.Address(),
		Signature: sig,
		Dynamic:   *dynamicFl,
	})
}

// payloadOf returns the payload for either a digest or an approval of a
// configuration update.
func payloadOf(wallet common.Address, chainID *big.Int, digest, imageHash common.Hash) (signature.Payload, error) {
	switch {
	case digest != (common.Hash{}) && imageHash != (common.Hash{}):
		return signature.Payload{}, errors.Wrap(errors.ErrInput, "digest and image hash cannot be used together")
	case imageHash != (common.Hash{}):
		return signature.SetImageHashPayload(wallet, chainID, imageHash), nil
	case digest != (common.Hash{}):
		return signature.Payload{Address: wallet, ChainID: chainID, Digest: digest}, nil
	}
	return signature.Payload{}, errors.Wrap(errors.ErrEmpty, "digest")
}
