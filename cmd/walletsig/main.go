package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/walletsig"
	"github.com/iov-one/walletsig/errors"
)

// command reads its input from in and writes its result to out. Flags are
// parsed from args, which do not contain the program and command names.
// Diagnostics go to the logger attached by newContext.
type command func(in io.Reader, out io.Writer, args []string) error

// commands maps the first program argument to its implementation.
//
// Each command does a single thing so that commands can be piped. To build
// a 2 of 2 wallet, sign a digest with both keys and drop what the signature
// does not need:
//
//	$ walletsig build-config -threshold 2 -signer $A:1 -signer $B:1 > config.json
//	$ (walletsig sign-digest -key $KEY_A -digest $D ; walletsig sign-digest -key $KEY_B -digest $D) \
//	    | walletsig encode-signers -config config.json \
//	    | walletsig trim
var commands = map[string]command{
	"build-config":   cmdBuildConfig,
	"chain":          cmdChain,
	"decode":         cmdDecode,
	"encode-signers": cmdEncodeSigners,
	"image-hash":     cmdImageHash,
	"recover":        cmdRecover,
	"sign-digest":    cmdSignDigest,
	"subdigest":      cmdSubdigest,
	"trim":           cmdTrim,
	"version":        cmdVersion,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "%s encodes, recovers and trims wallet configuration signatures.\n\n", os.Args[0])
		usage(os.Stderr)
		os.Exit(2)
	}
	name := os.Args[1]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", name)
		usage(os.Stderr)
		os.Exit(2)
	}
	if err := safeRun(cmd, os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", name, err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "Usage: %s <command> [<flags>]\n\n", os.Args[0])
	fmt.Fprintf(w, "Commands:\n\t%s\n\n", strings.Join(names, "\n\t"))
	fmt.Fprintf(w, "Use '%s <command> -help' for the flags of a command.\n", os.Args[0])
}

// safeRun calls cmd and returns a panic as an errors.ErrPanic.
func safeRun(cmd command, in io.Reader, out io.Writer, args []string) (err error) {
	defer errors.Recover(&err)
	return cmd(in, out, args)
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	_, err := fmt.Fprintln(out, walletsig.Version())
	return err
}
