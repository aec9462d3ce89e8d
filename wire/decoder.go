package wire

import (
	"encoding/binary"
	"math"

	"github.com/arborcodec/wire/bufrw"
	"github.com/arborcodec/wire/diag"
	"github.com/arborcodec/wire/tag"
	"github.com/arborcodec/wire/varint"
)

// Decoder reads tag-prefixed values from a bufrw.Reader under a fixed pair
// of Policies. Every borrowed slice a Decoder returns (EncodeBytes's
// counterpart, DecodeBytes) is only valid while the Decoder's backing
// storage is not mutated.
type Decoder struct {
	r        *bufrw.Reader
	policies Policies
	sink     diag.Sink
}

// NewDecoder wraps r for decoding under p, reporting errors through sink.
// A nil sink defaults to diag.Immediate{}.
func NewDecoder(r *bufrw.Reader, p Policies, sink diag.Sink) *Decoder {
	if sink == nil {
		sink = diag.Immediate{}
	}
	return &Decoder{r: r, policies: p, sink: sink}
}

// Pos returns the decoder's current byte offset from the origin.
func (d *Decoder) Pos() int {
	return d.r.Pos()
}

func (d *Decoder) readTag() (tag.Tag, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, d.sink.Report(&diag.Error{Kind: diag.Truncated, Pos: d.r.Pos(), Cause: err})
	}
	return tag.Tag(b), nil
}

// expectKind reads a tag and asserts its kind matches want, reporting at
// the position one less than current (the tag byte was just consumed).
func (d *Decoder) expectKind(want tag.Kind) (tag.Tag, error) {
	t, err := d.readTag()
	if err != nil {
		return 0, err
	}
	if t.Kind() != want {
		return 0, d.sink.Report(&diag.Error{
			Kind:     diag.UnexpectedKind,
			Pos:      d.r.Pos() - 1,
			Expected: want,
			Actual:   t.Kind(),
		})
	}
	return t, nil
}

// readIntPayload reads the out-of-band payload for a Continuation tag
// whose data was Sentinel, per d.policies.Int, returning a bitWidth-sized
// unsigned value.
func (d *Decoder) readIntPayload(bitWidth int) (uint64, error) {
	switch d.policies.Int {
	case varint.Varint:
		rest, err := d.r.ReadBytes(d.r.Len())
		if err != nil {
			return 0, d.truncated()
		}
		v, n, err := varint.UvarintN(rest, bitWidth)
		if err != nil {
			return 0, d.sink.Report(&diag.Error{Kind: diag.Overflow, Pos: d.r.Pos(), Cause: err})
		}
		// Un-consume the bytes past what the varint actually used: we
		// peeked the whole remainder above to hand the decoder a slice,
		// so rewind the reader so that exactly n bytes stay consumed.
		d.r.Unread(len(rest) - n)
		return v, nil
	default:
		width := varint.FixedWidthBytes(bitWidth)
		buf, err := d.r.ReadBytes(width)
		if err != nil {
			return 0, d.truncated()
		}
		order := d.byteOrder()
		switch bitWidth {
		case 16:
			return uint64(order.Uint16(buf)), nil
		case 32:
			return uint64(order.Uint32(buf)), nil
		case 64:
			return order.Uint64(buf), nil
		}
		return 0, nil
	}
}

func (d *Decoder) byteOrder() binary.ByteOrder {
	if d.policies.Int == varint.FixedBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (d *Decoder) truncated() error {
	return d.sink.Report(&diag.Error{Kind: diag.Truncated, Pos: d.r.Pos()})
}

// DecodeBool matches the two literal patterns; anything else is a
// BadBoolean diagnostic.
func (d *Decoder) DecodeBool() (bool, error) {
	t, err := d.expectKind(tag.Byte)
	if err != nil {
		return false, err
	}
	switch t.Data() {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, d.sink.Report(&diag.Error{Kind: diag.BadBoolean, Pos: d.r.Pos() - 1, Actual: t.Data()})
	}
}

// DecodeU8 reads a single-byte scalar.
func (d *Decoder) DecodeU8() (uint8, error) {
	t, err := d.expectKind(tag.Byte)
	if err != nil {
		return 0, err
	}
	if t.Data() != tag.Sentinel {
		return t.Data(), nil
	}
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, d.truncated()
	}
	return b, nil
}

// DecodeI8 inverts EncodeI8: a plain reinterpret cast, no zigzag.
func (d *Decoder) DecodeI8() (int8, error) {
	v, err := d.DecodeU8()
	if err != nil {
		return 0, err
	}
	return int8(v), nil
}

// readContinuation is the shared body of every multi-byte integer decode.
func (d *Decoder) readContinuation(bitWidth int) (uint64, error) {
	t, err := d.expectKind(tag.Continuation)
	if err != nil {
		return 0, err
	}
	if t.Data() != tag.Sentinel {
		return uint64(t.Data()), nil
	}
	return d.readIntPayload(bitWidth)
}

func (d *Decoder) DecodeU16() (uint16, error) {
	v, err := d.readContinuation(16)
	return uint16(v), err
}

func (d *Decoder) DecodeU32() (uint32, error) {
	v, err := d.readContinuation(32)
	return uint32(v), err
}

func (d *Decoder) DecodeU64() (uint64, error) {
	return d.readContinuation(64)
}

func (d *Decoder) DecodeI16() (int16, error) {
	v, err := d.DecodeU16()
	if err != nil {
		return 0, err
	}
	return varint.ZigZagDecode16(v), nil
}

func (d *Decoder) DecodeI32() (int32, error) {
	v, err := d.DecodeU32()
	if err != nil {
		return 0, err
	}
	return varint.ZigZagDecode32(v), nil
}

func (d *Decoder) DecodeI64() (int64, error) {
	v, err := d.DecodeU64()
	if err != nil {
		return 0, err
	}
	return varint.ZigZagDecode64(v), nil
}

// DecodeU128 reads a 128-bit unsigned integer.
func (d *Decoder) DecodeU128() (varint.Uint128, error) {
	t, err := d.expectKind(tag.Continuation)
	if err != nil {
		return varint.Uint128{}, err
	}
	if t.Data() != tag.Sentinel {
		return varint.Uint128{Lo: uint64(t.Data())}, nil
	}
	switch d.policies.Int {
	case varint.Varint:
		rest, err := d.r.ReadBytes(d.r.Len())
		if err != nil {
			return varint.Uint128{}, d.truncated()
		}
		v, n, err := varint.Uvarint128(rest)
		if err != nil {
			return varint.Uint128{}, d.sink.Report(&diag.Error{Kind: diag.Overflow, Pos: d.r.Pos(), Cause: err})
		}
		d.r.Unread(len(rest) - n)
		return v, nil
	default:
		buf, err := d.r.ReadBytes(16)
		if err != nil {
			return varint.Uint128{}, d.truncated()
		}
		if d.policies.Int == varint.FixedBE {
			return varint.Uint128{Hi: binary.BigEndian.Uint64(buf[0:8]), Lo: binary.BigEndian.Uint64(buf[8:16])}, nil
		}
		return varint.Uint128{Lo: binary.LittleEndian.Uint64(buf[0:8]), Hi: binary.LittleEndian.Uint64(buf[8:16])}, nil
	}
}

// DecodeI128 inverts EncodeI128, returning the sign-extended two's
// complement (hi, lo) pair.
func (d *Decoder) DecodeI128() (hi, lo uint64, err error) {
	v, err := d.DecodeU128()
	if err != nil {
		return 0, 0, err
	}
	hi, lo = varint.ZigZagDecode128(v)
	return hi, lo, nil
}

// DecodeChar reads a u32 and validates it as a Unicode scalar value.
func (d *Decoder) DecodeChar() (rune, error) {
	v, err := d.DecodeU32()
	if err != nil {
		return 0, err
	}
	r := rune(v)
	if v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
		return 0, d.sink.Report(&diag.Error{Kind: diag.BadCharacter, Pos: d.r.Pos(), Actual: v})
	}
	return r, nil
}

func (d *Decoder) DecodeF32() (float32, error) {
	v, err := d.DecodeU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (d *Decoder) DecodeF64() (float64, error) {
	v, err := d.DecodeU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// readLength resolves a count/length following kind: inline if data !=
// Sentinel, else decode per the usize policy.
func (d *Decoder) readLength(k tag.Kind) (int, error) {
	t, err := d.expectKind(k)
	if err != nil {
		return 0, err
	}
	if t.Data() != tag.Sentinel {
		return int(t.Data()), nil
	}
	switch d.policies.Usize {
	case varint.Varint:
		rest, err := d.r.ReadBytes(d.r.Len())
		if err != nil {
			return 0, d.truncated()
		}
		v, n, err := varint.Uvarint(rest)
		if err != nil {
			return 0, d.sink.Report(&diag.Error{Kind: diag.Overflow, Pos: d.r.Pos(), Cause: err})
		}
		d.r.Unread(len(rest) - n)
		return int(v), nil
	default:
		buf, err := d.r.ReadBytes(8)
		if err != nil {
			return 0, d.truncated()
		}
		if d.policies.Usize == varint.FixedBE {
			return int(binary.BigEndian.Uint64(buf)), nil
		}
		return int(binary.LittleEndian.Uint64(buf)), nil
	}
}

// DecodeBytes reads a length-prefixed opaque byte run and returns it
// borrowed from the backing storage.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	n, err := d.readLength(tag.Prefix)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	b, err := d.r.ReadBytes(n)
	if err != nil {
		return nil, d.truncated()
	}
	return b, nil
}

// DecodeString reads a byte run and interprets it as UTF-8. No validation
// beyond the raw conversion is performed; callers that need strict UTF-8
// checking should use utf8.Valid on the result.
func (d *Decoder) DecodeString() (string, error) {
	b, err := d.DecodeBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodePack reads a fixed-size packed tuple's length prefix and returns a
// bounded sub-reader over exactly that many bytes, positioned so that if
// the caller never finishes reading it, d still advances past the whole
// packed region.
func (d *Decoder) DecodePack() (*bufrw.Reader, error) {
	n, err := d.readLength(tag.Prefix)
	if err != nil {
		return nil, err
	}
	child, err := d.r.Limit(n)
	if err != nil {
		return nil, d.truncated()
	}
	return child, nil
}

// Remaining wraps a Decoder with a count that decrements on each element a
// caller reads, returned by Sequence/Map/Struct/Tuple.
type Remaining struct {
	D *Decoder
	N int
}

// Next decrements the remaining count, reporting IndexOutOfBounds if
// already zero.
func (r *Remaining) Next() error {
	if r.N <= 0 {
		return r.D.sink.Report(&diag.Error{Kind: diag.IndexOutOfBounds, Pos: r.D.r.Pos(), Expected: 1, Actual: 0})
	}
	r.N--
	return nil
}

// Sequence reads a Tag(Sequence, N) header and returns a Remaining(N).
func (d *Decoder) Sequence() (*Remaining, error) {
	n, err := d.readLength(tag.Sequence)
	if err != nil {
		return nil, err
	}
	return &Remaining{D: d, N: n}, nil
}

// Map reads a Tag(Sequence, 2N) header and returns a Remaining(N) of
// key/value pairs.
func (d *Decoder) Map() (*Remaining, error) {
	n, err := d.readLength(tag.Sequence)
	if err != nil {
		return nil, err
	}
	return &Remaining{D: d, N: n / 2}, nil
}

// Struct reads a Tag(Sequence, 2F) header and returns a Remaining(F) field
// pairs, exactly like Map - a forward-compatible reader observes a raw
// count of pairs and skips whatever it doesn't recognize.
func (d *Decoder) Struct() (*Remaining, error) {
	return d.Map()
}

// Tuple reads a Tag(Sequence, 2F) header, identically to Struct.
func (d *Decoder) Tuple() (*Remaining, error) {
	return d.Map()
}

// DecodeOption reads the option header, returning true (Some, payload
// follows) or false (None, nothing follows). Any other Sequence data value
// is ExpectedOption.
func (d *Decoder) DecodeOption() (bool, error) {
	t, err := d.expectKind(tag.Sequence)
	if err != nil {
		return false, err
	}
	switch t.Data() {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, d.sink.Report(&diag.Error{Kind: diag.ExpectedOption, Pos: d.r.Pos() - 1, Actual: t.Data()})
	}
}

// DecodeVariant asserts Tag(Sequence, 2) and returns d itself so the
// caller can read the discriminant then the payload with the same typed
// methods used everywhere else.
func (d *Decoder) DecodeVariant() (*Decoder, error) {
	t, err := d.expectKind(tag.Sequence)
	if err != nil {
		return nil, err
	}
	if t.Data() != 2 {
		return nil, d.sink.Report(&diag.Error{Kind: diag.UnexpectedKind, Pos: d.r.Pos() - 1, Expected: "variant(2)", Actual: t.Data()})
	}
	return d, nil
}

// DecodeUnitStruct degrades to SkipAny: a unit struct carries no payload
// of interest to a reader that only wants to move past it.
func (d *Decoder) DecodeUnitStruct() error {
	return d.SkipAny()
}

// SkipAny reads one tag and discards its payload without interpreting it,
// the operation that makes the format forward-compatible: a decoder can
// walk past any validly encoded value, known or not, by dispatching on
// kind alone.
func (d *Decoder) SkipAny() error {
	t, err := d.readTag()
	if err != nil {
		return err
	}
	switch t.Kind() {
	case tag.Byte:
		if t.Data() == tag.Sentinel {
			if _, err := d.r.ReadByte(); err != nil {
				return d.truncated()
			}
		}
		return nil
	case tag.Prefix:
		n, err := d.skipLengthPayload(t)
		if err != nil {
			return err
		}
		if err := d.r.Skip(n); err != nil {
			return d.truncated()
		}
		return nil
	case tag.Sequence:
		n, err := d.skipLengthPayload(t)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := d.SkipAny(); err != nil {
				return err
			}
		}
		return nil
	case tag.Continuation:
		if t.Data() == tag.Sentinel {
			if err := d.skipIntPayload(); err != nil {
				return err
			}
		}
		return nil
	default:
		return d.sink.Report(&diag.Error{Kind: diag.UnexpectedKind, Pos: d.r.Pos() - 1, Actual: t.Kind()})
	}
}

// skipIntPayload discards a sentinel-tagged continuation payload without
// knowing the original type's width, decoding (and discarding) a u128 per
// §4.5's "skip one u128 varint" rule - the widest integer the format
// supports, so it over-reads a narrower varint by zero bytes.
func (d *Decoder) skipIntPayload() error {
	switch d.policies.Int {
	case varint.Varint:
		rest, err := d.r.ReadBytes(d.r.Len())
		if err != nil {
			return d.truncated()
		}
		_, n, err := varint.Uvarint128(rest)
		if err != nil {
			return d.sink.Report(&diag.Error{Kind: diag.Overflow, Pos: d.r.Pos(), Cause: err})
		}
		d.r.Unread(len(rest) - n)
		return nil
	default:
		// Fixed policy: the skipper has no type information to know
		// which fixed width was used, so it cannot skip a bare
		// Tag(Continuation,Sentinel) under the fixed policy in
		// isolation. In practice every fixed-policy caller knows the
		// field's static type and calls the typed Decode* method
		// instead of SkipAny for continuation-kind values; SkipAny's
		// fixed-policy path is only reachable for genuinely unknown
		// fields, which this format does not support under the fixed
		// integer policy. Skip the maximum width (u128, 16 bytes) as
		// the conservative upper bound.
		return d.r.Skip(16)
	}
}

// skipLengthPayload resolves the inline-or-sentinel count already implied
// by t without re-reading the tag byte (SkipAny already consumed it).
func (d *Decoder) skipLengthPayload(t tag.Tag) (int, error) {
	if t.Data() != tag.Sentinel {
		return int(t.Data()), nil
	}
	switch d.policies.Usize {
	case varint.Varint:
		rest, err := d.r.ReadBytes(d.r.Len())
		if err != nil {
			return 0, d.truncated()
		}
		v, n, err := varint.Uvarint(rest)
		if err != nil {
			return 0, d.sink.Report(&diag.Error{Kind: diag.Overflow, Pos: d.r.Pos(), Cause: err})
		}
		d.r.Unread(len(rest) - n)
		return int(v), nil
	default:
		buf, err := d.r.ReadBytes(8)
		if err != nil {
			return 0, d.truncated()
		}
		if d.policies.Usize == varint.FixedBE {
			return int(binary.BigEndian.Uint64(buf)), nil
		}
		return int(binary.LittleEndian.Uint64(buf)), nil
	}
}
