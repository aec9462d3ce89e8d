// Package varint implements the integer subsystem the wire codec is built
// on: fixed-width little/big-endian integers, LEB128-style continuation
// varints, and the zigzag mapping from signed to unsigned integers.
//
// Two policies are exposed as small enums rather than compile-time type
// parameters (Go has no const generics over encoding strategy): Policy
// selects fixed-LE, fixed-BE, or continuation-varint for u16/u32/u64/u128
// and their signed counterparts; the same enum doubles as the usize policy
// for lengths and counts. A stream is not self-describing about which
// policy was used to write it - the reader must be constructed with the
// same policy as the writer.
package varint

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Policy selects how multi-byte integers and lengths are encoded.
type Policy uint8

const (
	// FixedLE encodes the natural width of the type, little-endian.
	FixedLE Policy = iota
	// FixedBE encodes the natural width of the type, big-endian.
	FixedBE
	// Varint encodes as a continuation varint (LEB128-style, 7-bit groups).
	Varint
)

func (p Policy) String() string {
	switch p {
	case FixedLE:
		return "FixedLE"
	case FixedBE:
		return "FixedBE"
	case Varint:
		return "Varint"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// byteOrder returns the binary.ByteOrder for a fixed policy. Any policy
// other than FixedBE, Varint included, yields binary.LittleEndian; callers
// must branch on p before calling this.
func (p Policy) byteOrder() binary.ByteOrder {
	if p == FixedBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Uint128 is a 128-bit unsigned integer, split into high and low 64-bit
// halves since Go has no native 128-bit integer type.
type Uint128 struct {
	Hi, Lo uint64
}

// Overflow is returned by continuation-varint decoders when the encoded
// value does not fit the target width, or when a canonical encoding would
// have used fewer continuation groups than were present.
var Overflow = fmt.Errorf("varint: overflow or non-canonical encoding")

// Truncated is returned when the byte slice runs out before a value is
// fully decoded.
var Truncated = fmt.Errorf("varint: truncated")

// groups returns the maximum number of 7-bit continuation groups a value of
// bitWidth bits can require: ceil(bitWidth / 7).
func groups(bitWidth int) int {
	return (bitWidth + 6) / 7
}

// AppendUvarint appends the continuation-varint encoding of v to dst and
// returns the extended slice. Encoding is canonical: the fewest groups that
// represent v, with the high bit set on every group but the last.
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// AppendUvarint128 appends the continuation-varint encoding of a Uint128.
func AppendUvarint128(dst []byte, v Uint128) []byte {
	if v.Hi == 0 {
		return AppendUvarint(dst, v.Lo)
	}
	lo, hi := v.Lo, v.Hi
	for i := 0; i < 18; i++ {
		b := byte(lo) & 0x7F
		lo = lo>>7 | (hi&0x7F)<<57
		hi >>= 7
		if lo != 0 || hi != 0 {
			dst = append(dst, b|0x80)
		} else {
			return append(dst, b)
		}
	}
	return append(dst, byte(lo))
}

// Uvarint decodes a continuation varint from b into a uint64, rejecting
// overflow past 64 bits and non-canonical trailing zero groups. Returns the
// value and the number of bytes consumed.
func Uvarint(b []byte) (uint64, int, error) {
	return uvarintN(b, 64)
}

// UvarintN decodes a continuation varint from b, rejecting values that do
// not fit in bitWidth bits (bitWidth one of 8, 16, 32, 64).
func UvarintN(b []byte, bitWidth int) (uint64, int, error) {
	return uvarintN(b, bitWidth)
}

func uvarintN(b []byte, bitWidth int) (uint64, int, error) {
	maxGroups := groups(bitWidth)
	var v uint64
	var n int
	for {
		if n >= len(b) {
			return 0, 0, Truncated
		}
		if n >= maxGroups {
			return 0, 0, Overflow
		}
		c := b[n]
		v |= uint64(c&0x7F) << (7 * n)
		n++
		if c&0x80 == 0 {
			break
		}
	}
	// The tenth group of a 64-bit value carries only bit 63; anything more
	// would have been shifted out of v above.
	if bitWidth == 64 && n == maxGroups && b[n-1]&0x7F > 1 {
		return 0, 0, Overflow
	}
	// Reject values that overflow the target width: any bits set above
	// bitWidth (only reachable when bitWidth isn't a multiple of 7).
	if bitWidth < 64 && v>>uint(bitWidth) != 0 {
		return 0, 0, Overflow
	}
	// Reject non-canonical encodings: a trailing zero group that could have
	// been omitted (the last byte emitted was zero, and more than one group
	// was used).
	if n > 1 && b[n-1] == 0 {
		return 0, 0, Overflow
	}
	return v, n, nil
}

// maxGroups128 is ceil(128/7): the most continuation groups a 128-bit
// value can need.
const maxGroups128 = 19

// Uvarint128 decodes a continuation varint into a Uint128.
func Uvarint128(b []byte) (Uint128, int, error) {
	var lo, hi uint64
	var n int
	var lastByte byte
	for {
		if n >= len(b) {
			return Uint128{}, 0, Truncated
		}
		if n >= maxGroups128 {
			return Uint128{}, 0, Overflow
		}
		c := b[n]
		lastByte = c
		shift := uint(7 * n)
		chunk := uint64(c & 0x7F)
		switch {
		case shift < 64 && shift+7 <= 64:
			lo |= chunk << shift
		case shift < 64:
			lo |= chunk << shift
			hi |= chunk >> (64 - shift)
		default:
			hi |= chunk << (shift - 64)
		}
		n++
		if c&0x80 == 0 {
			break
		}
	}
	// Group 18 (the 19th, last possible) only has 2 meaningful bits (bits
	// 126-127); a 7-bit chunk with any of its top 5 bits set would carry
	// the value past 128 bits.
	if n == maxGroups128 && lastByte&0x7F > 0x03 {
		return Uint128{}, 0, Overflow
	}
	if n > 1 && lastByte == 0 {
		return Uint128{}, 0, Overflow
	}
	return Uint128{Hi: hi, Lo: lo}, n, nil
}

// ZigZagEncode64 maps a signed value to an unsigned one so that small-
// magnitude values (positive or negative) map to small unsigneds:
// (n << 1) ^ (n >> (width-1)), the shift being arithmetic.
func ZigZagEncode64(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

// ZigZagDecode64 inverts ZigZagEncode64.
func ZigZagDecode64(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

func ZigZagEncode32(n int32) uint32 {
	return uint32((n << 1) ^ (n >> 31))
}

func ZigZagDecode32(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

func ZigZagEncode16(n int16) uint16 {
	return uint16((n << 1) ^ (n >> 15))
}

func ZigZagDecode16(u uint16) int16 {
	return int16(u>>1) ^ -int16(u&1)
}

// ZigZagEncode128 zigzags a signed 128-bit value represented as two's
// complement in (hi, lo). The arithmetic shift by 127 is either all-zero
// bits (non-negative) or all-one bits (negative), matching the sign of hi.
func ZigZagEncode128(hi uint64, lo uint64) Uint128 {
	var signMask uint64
	if int64(hi) < 0 {
		signMask = ^uint64(0)
	}
	shiftedHi := hi<<1 | lo>>63
	shiftedLo := lo << 1
	return Uint128{Hi: shiftedHi ^ signMask, Lo: shiftedLo ^ signMask}
}

// ZigZagDecode128 inverts ZigZagEncode128, returning the sign-extended
// two's-complement (hi, lo) pair.
func ZigZagDecode128(v Uint128) (hi uint64, lo uint64) {
	negative := v.Lo&1 != 0
	lo = v.Lo>>1 | v.Hi<<63
	hi = v.Hi >> 1
	if negative {
		lo = ^lo
		hi = ^hi
	}
	return hi, lo
}

// FixedWidthBytes returns sizeof(T) in bytes for the unsigned integer widths the
// codec supports: 8, 16, 32, 64, 128 bits.
func FixedWidthBytes(bitWidth int) int {
	return bitWidth / 8
}

// LeadingZeroGroups reports whether the minimum-group encoding of v needs
// fewer continuation groups than n, i.e. whether an n-group encoding of v
// is non-canonical.
func LeadingZeroGroups(v uint64, n int) bool {
	return groups(bits.Len64(v)) < n && n > 1
}
