package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/topology"
)

func cmdBuildConfig(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Build a wallet configuration and print it in JSON format.

Members are declared using -signer and -subdigest flags, in the order they
are placed in the tree. When no member is declared, a member list in JSON
format is read from the input, for example:

  {"threshold": 2, "checkpoint": 1, "members": [
    {"address": "0x...", "weight": 1},
    {"weight": 1, "threshold": 1, "members": [...]}
  ]}
`)
		fl.PrintDefaults()
	}
	var (
		thresholdFl  = fl.Uint("threshold", 1, "Weight required for a signature to be valid.")
		checkpointFl = fl.Uint("checkpoint", 0, "Checkpoint of the configuration. Must be higher than the checkpoint of any previous configuration.")
		builderFl    = fl.String("builder", "optimized", "Tree shape, one of legacy, merkle and optimized.")
		signersFl    = flSigners(fl, "signer", "Signer declared as <address>:<weight>. Can be used many times.")
		subdigestsFl = flHashes(fl, "subdigest", "Pre-approved subdigest. Can be used many times.")
	)
	fl.Parse(args)

	builder, err := builderByName(*builderFl)
	if err != nil {
		return err
	}

	var sc topology.SimpleWalletConfig
	if len(*signersFl) == 0 && len(*subdigestsFl) == 0 {
		raw, err := ioutil.ReadAll(input)
		if err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}
		if err := json.Unmarshal(raw, &sc); err != nil {
			return errors.Wrap(err, "member list")
		}
	} else {
		if *thresholdFl > 0xffff {
			return errors.Wrapf(errors.ErrOverflow, "threshold %d", *thresholdFl)
		}
		if *checkpointFl > 0xffffffff {
			return errors.Wrapf(errors.ErrOverflow, "checkpoint %d", *checkpointFl)
		}
		sc.Threshold = uint16(*thresholdFl)
		sc.Checkpoint = uint32(*checkpointFl)
		for _, s := range *signersFl {
			sc.Members = append(sc.Members, s)
		}
		for _, h := range *subdigestsFl {
			sc.Members = append(sc.Members, topology.SimpleSubdigest{Subdigest: h})
		}
	}

	c, err := topology.ToWalletConfig(sc, builder)
	if err != nil {
		return err
	}
	return writeJSON(output, c)
}

func builderByName(name string) (topology.Builder, error) {
	switch name {
	case "legacy":
		return topology.LegacyBuilder, nil
	case "merkle":
		return topology.MerkleBuilder, nil
	case "optimized", "":
		return topology.OptimizedBuilder, nil
	}
	return nil, errors.Wrapf(errors.ErrInput, "unknown builder %q", name)
}

func cmdImageHash(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a wallet configuration in JSON format and print its image hash.
`)
		fl.PrintDefaults()
	}
	var (
		configFl = fl.String("config", "-", "Path to the configuration file. Use - to read it from the input.")
	)
	fl.Parse(args)

	c, err := readConfig(*configFl, input)
	if err != nil {
		return err
	}
	h := c.ImageHash()
	return writeHex(output, h[:])
}
