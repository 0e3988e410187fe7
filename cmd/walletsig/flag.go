package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iov-one/walletsig/topology"
)

// flHex returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flHex(fl *flag.FlagSet, name, defaultVal, usage string) *flagbytes {
	var b flagbytes
	if defaultVal != "" {
		if err := b.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q hex encoded flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&b, name, usage)
	return &b
}

type flagbytes []byte

func (b flagbytes) String() string {
	if len(b) == 0 {
		return ""
	}
	return hexutil.Encode(b)
}

func (b *flagbytes) Set(raw string) error {
	val, err := decodeHex(raw)
	if err != nil {
		return err
	}
	*b = val
	return nil
}

// flAddress returns an address flag. The value is hex encoded, with or
// without the 0x prefix.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *common.Address {
	var a flagaddr
	if defaultVal != "" {
		if err := a.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&a, name, usage)
	return (*common.Address)(&a)
}

type flagaddr common.Address

func (a flagaddr) String() string {
	return common.Address(a).Hex()
}

func (a *flagaddr) Set(raw string) error {
	b, err := decodeHex(raw)
	if err != nil {
		return err
	}
	if len(b) != common.AddressLength {
		return fmt.Errorf("address must be %d bytes long", common.AddressLength)
	}
	*a = flagaddr(common.BytesToAddress(b))
	return nil
}

// flHash returns a 32 byte hash flag.
func flHash(fl *flag.FlagSet, name, defaultVal, usage string) *common.Hash {
	var h flaghash
	if defaultVal != "" {
		if err := h.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q hash flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&h, name, usage)
	return (*common.Hash)(&h)
}

type flaghash common.Hash

func (h flaghash) String() string {
	return common.Hash(h).Hex()
}

func (h *flaghash) Set(raw string) error {
	b, err := decodeHex(raw)
	if err != nil {
		return err
	}
	if len(b) != common.HashLength {
		return fmt.Errorf("hash must be %d bytes long", common.HashLength)
	}
	*h = flaghash(common.BytesToHash(b))
	return nil
}

// flBigInt returns an integer flag of arbitrary size. Decimal and 0x
// prefixed hexadecimal notations are accepted.
func flBigInt(fl *flag.FlagSet, name, defaultVal, usage string) *big.Int {
	n := new(big.Int)
	if defaultVal != "" {
		if err := (*flagbig)(n).Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q integer flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var((*flagbig)(n), name, usage)
	return n
}

type flagbig big.Int

func (n *flagbig) String() string {
	return (*big.Int)(n).String()
}

func (n *flagbig) Set(raw string) error {
	if _, ok := (*big.Int)(n).SetString(raw, 0); !ok {
		return fmt.Errorf("invalid integer %q", raw)
	}
	return nil
}

// flSigners returns a repeatable flag declaring a signer as address:weight.
func flSigners(fl *flag.FlagSet, name, usage string) *flagsigners {
	var s flagsigners
	fl.Var(&s, name, usage)
	return &s
}

type flagsigners []topology.SimpleSigner

func (s flagsigners) String() string {
	chunks := make([]string, len(s))
	for i, signer := range s {
		chunks[i] = fmt.Sprintf("%s:%d", signer.Address.Hex(), signer.Weight)
	}
	return strings.Join(chunks, ",")
}

func (s *flagsigners) Set(raw string) error {
	chunks := strings.Split(raw, ":")
	if len(chunks) != 2 {
		return fmt.Errorf("signer must be declared as <address>:<weight>, got %q", raw)
	}
	var addr flagaddr
	if err := addr.Set(chunks[0]); err != nil {
		return err
	}
	weight, err := strconv.ParseUint(chunks[1], 10, 8)
	if err != nil {
		return fmt.Errorf("invalid weight: %s", err)
	}
	*s = append(*s, topology.SimpleSigner{Address: common.Address(addr), Weight: uint8(weight)})
	return nil
}

// flHashes returns a repeatable 32 byte hash flag.
func flHashes(fl *flag.FlagSet, name, usage string) *flaghashes {
	var h flaghashes
	fl.Var(&h, name, usage)
	return &h
}

type flaghashes []common.Hash

func (h flaghashes) String() string {
	chunks := make([]string, len(h))
	for i, hash := range h {
		chunks[i] = hash.Hex()
	}
	return strings.Join(chunks, ",")
}

func (h *flaghashes) Set(raw string) error {
	var hash flaghash
	if err := hash.Set(raw); err != nil {
		return err
	}
	*h = append(*h, common.Hash(hash))
	return nil
}

// decodeHex decodes a hex string with or without the 0x prefix.
func decodeHex(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
		raw = "0x" + raw
	}
	return hexutil.Decode(raw)
}
