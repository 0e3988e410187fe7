package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/signature"
	"github.com/iov-one/walletsig/x/erc1271"
)

func cmdEncodeSigners(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read signature parts in JSON format, as created by the sign-digest command,
and print the hex encoded signature of the configuration.

The command fails if the collected weight does not reach the threshold,
unless -partial is used.
`)
		fl.PrintDefaults()
	}
	var (
		configFl     = fl.String("config", "", "Path to the configuration file.")
		chainIDFl    = flBigInt(fl, "chain-id", env("WALLETSIG_CHAIN_ID", "0"), "Chain ID. Zero for signatures valid on every chain. You can use WALLETSIG_CHAIN_ID environment variable to set it.")
		subdigestsFl = flHashes(fl, "subdigest", "Subdigest leaf satisfied by the signed payload. Can be used many times.")
		noPruneFl    = fl.Bool("no-prune", false, "Keep the whole configuration tree.")
		partialFl    = fl.Bool("partial", false, "Allow a signature that does not reach the threshold.")
	)
	fl.Parse(args)

	if *configFl == "" || *configFl == "-" {
		return errors.Wrap(errors.ErrEmpty, "configuration file path")
	}
	c, err := readConfig(*configFl, nil)
	if err != nil {
		return err
	}
	parts, err := readParts(input)
	if err != nil {
		return err
	}
	var opts []signature.EncodeOption
	if *noPruneFl {
		opts = append(opts, signature.WithoutPruning())
	}
	raw, weight, err := signature.EncodeSigners(c, parts, *subdigestsFl, chainIDFl, opts...)
	if err != nil {
		return err
	}

	ctx, err := newContext()
	if err != nil {
		return err
	}
	walletsig.GetLogger(ctx).Info("signature encoded", "weight", weight, "threshold", c.Threshold, "parts", len(parts))
	if weight < uint64(c.Threshold) && !*partialFl {
		return errors.Wrapf(errors.ErrInvalidSignature, "weight %d does not reach threshold %d", weight, c.Threshold)
	}
	return writeHex(output, raw)
}

func cmdDecode(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a hex encoded signature and print its decoded form in JSON format.
Signature parts are not recovered.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	raw, err := readHex(input)
	if err != nil {
		return err
	}
	d, err := signature.Decode(raw)
	if err != nil {
		return err
	}
	v, err := viewDecoded(d)
	if err != nil {
		return err
	}
	return writeJSON(output, v)
}

func cmdRecover(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a hex encoded signature, recover it for given payload and print the
recovered configuration of every segment in JSON format.

Dynamic signatures of contract signers are validated by calling the
isValidSignature method through the JSON-RPC node given by -rpc.
`)
		fl.PrintDefaults()
	}
	var (
		walletFl  = flAddress(fl, "wallet", env("WALLETSIG_WALLET", ""), "Wallet address. You can use WALLETSIG_WALLET environment variable to set it.")
		chainIDFl = flBigInt(fl, "chain-id", env("WALLETSIG_CHAIN_ID", "0"), "Chain ID. You can use WALLETSIG_CHAIN_ID environment variable to set it.")
		digestFl  = flHash(fl, "digest", "", "Signed digest.")
		rpcFl     = fl.String("rpc", env("WALLETSIG_RPC", ""), "Ethereum JSON-RPC endpoint used to validate contract signatures. You can use WALLETSIG_RPC environment variable to set it.")
	)
	fl.Parse(args)

	raw, err := readHex(input)
	if err != nil {
		return err
	}
	if *digestFl == (common.Hash{}) {
		return errors.Wrap(errors.ErrEmpty, "digest")
	}
	ctx, err := newContext()
	if err != nil {
		return err
	}

	var validator signature.Validator
	if *rpcFl != "" {
		v, err := erc1271.Dial(ctx, *rpcFl)
		if err != nil {
			return err
		}
		defer v.Close()
		validator = v
	}

	p := signature.Payload{Address: *walletFl, ChainID: chainIDFl, Digest: *digestFl}
	r, err := signature.Recover(ctx, raw, p, validator)
	if err != nil {
		return err
	}
	return writeJSON(output, viewRecovered(r))
}

func cmdTrim(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a hex encoded signature and print its shortest form. Every subtree
without a signature is replaced by its hash. Pass the subdigests satisfied by
the signed payload with -subdigest so that their leaves are kept.
`)
		fl.PrintDefaults()
	}
	var (
		keepFl       = fl.Bool("keep-subdigests", false, "Do not prune subdigest leaves.")
		subdigestsFl = flHashes(fl, "subdigest", "Subdigest leaf satisfied by the signed payload. Can be used many times.")
	)
	fl.Parse(args)

	raw, err := readHex(input)
	if err != nil {
		return err
	}
	ctx, err := newContext()
	if err != nil {
		return err
	}
	var opts []signature.TrimOption
	if *keepFl {
		opts = append(opts, signature.KeepSubdigests())
	}
	if len(*subdigestsFl) > 0 {
		opts = append(opts, signature.Satisfied(*subdigestsFl...))
	}
	trimmed, err := signature.Trim(ctx, raw, opts...)
	if err != nil {
		return err
	}
	walletsig.GetLogger(ctx).Debug("signature trimmed", "before", len(raw), "after", len(trimmed))
	return writeHex(output, trimmed)
}

func cmdChain(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Join hex encoded signatures given as arguments into a chained signature.

The first signature signs the payload with the newest configuration. Every
following signature approves the configuration of the signature before it
and is signed by an older configuration.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	if fl.NArg() == 0 {
		return errors.Wrap(errors.ErrEmpty, "signatures")
	}
	segments := make([][]byte, fl.NArg())
	for i, arg := range fl.Args() {
		b, err := decodeHex(arg)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "signature %d: %s", i, err)
		}
		segments[i] = b
	}
	chained, err := signature.Chain(segments[0], segments[1:]...)
	if err != nil {
		return err
	}
	return writeHex(output, chained)
}
