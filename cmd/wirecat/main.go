// Command wirecat is a small demonstration harness for the wire codec and
// the PHF generator - not a schema compiler, just enough glue to encode a
// handful of scalar flags to the wire format and dump the resulting tag
// stream, or build a perfect hash table over a newline-delimited key file
// and report its shape.
package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/arborcodec/wire/bufrw"
	"github.com/arborcodec/wire/phf"
	"github.com/arborcodec/wire/varint"
	"github.com/arborcodec/wire/wire"
)

func main() {
	var (
		set      []string
		varintP  bool
		keysFile string
	)
	flag.StringArrayVar(&set, "set", nil, "key=value pair to encode as a struct field (repeatable)")
	flag.BoolVar(&varintP, "varint", false, "use the continuation-varint policy instead of fixed-LE")
	flag.StringVar(&keysFile, "keys", "", "newline-delimited key file to build a perfect hash table over")
	flag.Parse()

	if keysFile != "" {
		if err := runPHF(keysFile); err != nil {
			fmt.Fprintln(os.Stderr, "wirecat:", err)
			os.Exit(1)
		}
		return
	}

	if err := runEncode(set, varintP); err != nil {
		fmt.Fprintln(os.Stderr, "wirecat:", err)
		os.Exit(1)
	}
}

func runEncode(set []string, useVarint bool) error {
	policies := wire.Default
	if useVarint {
		policies = wire.Policies{Int: varint.Varint, Usize: varint.Varint}
	}

	var buf bytes.Buffer
	enc := wire.NewEncoder(bufrw.NewWriter(&buf), policies)

	if err := enc.BeginStruct(len(set)); err != nil {
		return err
	}
	for _, kv := range set {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--set %q: expected key=value", kv)
		}
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			if err := enc.EncodeI64(n); err != nil {
				return err
			}
			continue
		}
		if err := enc.EncodeString(v); err != nil {
			return err
		}
	}

	fmt.Println(hex.EncodeToString(buf.Bytes()))
	return nil
}

func runPHF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var keys []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			keys = append(keys, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	layout, err := phf.Build(keys, func(s string) []byte { return []byte(s) })
	if err != nil {
		return err
	}

	fmt.Printf("keys=%d buckets=%d key=0x%016x\n", len(keys), len(layout.Displacements), layout.Key)
	for _, k := range keys {
		idx := phf.Lookup(layout, []byte(k))
		if layout.Entries[idx] != k {
			return fmt.Errorf("internal error: lookup(%q) resolved to %q", k, layout.Entries[idx])
		}
	}
	fmt.Println("all keys verified")
	return nil
}
