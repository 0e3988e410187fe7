package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iov-one/walletsig"
	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/signature"
	"github.com/iov-one/walletsig/topology"
)

// newContext returns a context carrying a logger writing to stderr. Only
// messages of the level declared by WALLETSIG_LOG_LEVEL or higher are
// written.
func newContext() (context.Context, error) {
	level := env("WALLETSIG_LOG_LEVEL", "info")
	allow, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "log level: %s", err)
	}
	logger := log.NewFilter(log.NewTMLogger(log.NewSyncWriter(os.Stderr)), allow)
	return walletsig.WithLogger(context.Background(), logger), nil
}

// readHex reads all input and decodes it as a single hex encoded value.
func readHex(input io.Reader) ([]byte, error) {
	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	b, err := decodeHex(string(raw))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "hex input: %s", err)
	}
	return b, nil
}

func writeHex(output io.Writer, b []byte) error {
	_, err := fmt.Fprintln(output, hexutil.Encode(b))
	return err
}

func writeJSON(output io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	_, err = fmt.Fprintln(output, string(b))
	return err
}

// readConfig loads a wallet configuration from a JSON file. A path of "-"
// reads the configuration from given input.
func readConfig(path string, input io.Reader) (*topology.WalletConfig, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = ioutil.ReadAll(input)
	} else {
		raw, err = ioutil.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read configuration: %s", err)
	}
	var c topology.WalletConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrap(err, "configuration")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// part is the JSON representation of a single collected signature, as
// written by sign-digest.
type part struct {
	Address   common.Address `json:"address"`
	Signature hexutil.Bytes  `json:"signature"`
	Dynamic   bool           `json:"dynamic,omitempty"`
}

// readParts reads a stream of JSON encoded parts until the end of input.
func readParts(input io.Reader) (map[common.Address]signature.Part, error) {
	parts := make(map[common.Address]signature.Part)
	dec := json.NewDecoder(input)
	for {
		var p part
		switch err := dec.Decode(&p); err {
		case nil:
		case io.EOF:
			return parts, nil
		default:
			return nil, errors.Wrapf(errors.ErrInput, "signature part %d: %s", len(parts), err)
		}
		if _, ok := parts[p.Address]; ok {
			return nil, errors.Wrapf(errors.ErrInput, "duplicated signature of %s", p.Address.Hex())
		}
		parts[p.Address] = signature.Part{Signature: p.Signature, IsDynamic: p.Dynamic}
	}
}
