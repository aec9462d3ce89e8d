// Package wire implements the tag-prefixed, skippable, length-delimited
// binary format: a recursive encoder/decoder over scalars, byte strings,
// sequences, maps, structs, tuples, options and variants, parameterized by
// an integer policy and a length (usize) policy.
//
// The format is self-describing about shape (every value is exactly one
// tag byte plus a payload whose grammar is fixed by the tag's kind) but not
// about policy: a stream written with one (Int, Usize) pair must be read
// back with the identical pair.
package wire

import "github.com/arborcodec/wire/varint"

// Policies bundles the two orthogonal encoding choices: Int governs
// u16/u32/u64/u128 and their signed counterparts, Usize governs lengths and
// element counts.
type Policies struct {
	Int   varint.Policy
	Usize varint.Policy
}

// Default is (fixed-LE, fixed-LE): a reasonable native-endian-agnostic
// default for callers that don't care. The scalar round-trip, struct
// round-trip and skip-identity tests exercise every combination
// explicitly; the other tests use this default.
var Default = Policies{Int: varint.FixedLE, Usize: varint.FixedLE}
