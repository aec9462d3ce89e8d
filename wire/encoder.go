package wire

import (
	"encoding/binary"
	"math"

	"github.com/arborcodec/wire/bufrw"
	"github.com/arborcodec/wire/tag"
	"github.com/arborcodec/wire/varint"
)

// Encoder writes tag-prefixed values to a bufrw.Writer under a fixed pair
// of Policies.
type Encoder struct {
	w        bufrw.Writer
	policies Policies
	tagBuf   [1]byte
}

// NewEncoder wraps w for encoding under p.
func NewEncoder(w bufrw.Writer, p Policies) *Encoder {
	return &Encoder{w: w, policies: p}
}

func (e *Encoder) writeTag(t tag.Tag) error {
	e.tagBuf[0] = byte(t)
	return e.w.WriteBytes(e.tagBuf[:])
}

// EncodeBool writes the single required literal bit pattern for bool:
// Tag(Byte,0) for false, Tag(Byte,1) for true.
func (e *Encoder) EncodeBool(v bool) error {
	if v {
		return e.writeTag(tag.True)
	}
	return e.writeTag(tag.False)
}

// EncodeU8 writes a single-byte scalar: inline in the tag if it fits,
// otherwise Tag(Byte,Sentinel) followed by the raw byte.
func (e *Encoder) EncodeU8(v uint8) error {
	if tag.Fits(uint64(v)) {
		return e.writeTag(tag.New(tag.Byte, v))
	}
	if err := e.writeTag(tag.New(tag.Byte, tag.Sentinel)); err != nil {
		return err
	}
	e.tagBuf[0] = v
	return e.w.WriteBytes(e.tagBuf[:])
}

// EncodeI8 reinterprets v as a u8 and defers to EncodeU8. Unlike the wider
// signed widths, i8 is not zigzagged: the source this format distills
// excludes i8 from its zigzag family (it only ever pays the zigzag cost for
// multi-byte integers, where small negative magnitudes would otherwise cost
// a full width of continuation groups), so a single byte round-trips as a
// plain two's-complement reinterpret cast.
func (e *Encoder) EncodeI8(v int8) error {
	return e.EncodeU8(uint8(v))
}

// writeContinuation is the shared body of every multi-byte integer
// encode: emit Tag(Continuation, data), inlining small values, else emit
// the sentinel tag and the payload per e.policies.Int.
func (e *Encoder) writeContinuation(v uint64, bitWidth int) error {
	if tag.Fits(v) {
		return e.writeTag(tag.New(tag.Continuation, uint8(v)))
	}
	if err := e.writeTag(tag.New(tag.Continuation, tag.Sentinel)); err != nil {
		return err
	}
	return e.writeIntPayload(v, bitWidth)
}

func (e *Encoder) writeIntPayload(v uint64, bitWidth int) error {
	switch e.policies.Int {
	case varint.Varint:
		return e.w.WriteBytes(varint.AppendUvarint(nil, v))
	default:
		buf := make([]byte, varint.FixedWidthBytes(bitWidth))
		order := e.byteOrder()
		switch bitWidth {
		case 16:
			order.PutUint16(buf, uint16(v))
		case 32:
			order.PutUint32(buf, uint32(v))
		case 64:
			order.PutUint64(buf, v)
		}
		return e.w.WriteBytes(buf)
	}
}

func (e *Encoder) byteOrder() binary.ByteOrder {
	if e.policies.Int == varint.FixedBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// EncodeU16/U32/U64 delegate to the integer policy.
func (e *Encoder) EncodeU16(v uint16) error { return e.writeContinuation(uint64(v), 16) }
func (e *Encoder) EncodeU32(v uint32) error { return e.writeContinuation(uint64(v), 32) }
func (e *Encoder) EncodeU64(v uint64) error { return e.writeContinuation(v, 64) }

func (e *Encoder) EncodeI16(v int16) error { return e.EncodeU16(varint.ZigZagEncode16(v)) }
func (e *Encoder) EncodeI32(v int32) error { return e.EncodeU32(varint.ZigZagEncode32(v)) }
func (e *Encoder) EncodeI64(v int64) error { return e.EncodeU64(varint.ZigZagEncode64(v)) }

// EncodeU128 writes a 128-bit unsigned integer. Unlike the narrower
// widths, the sentinel-inlining test still applies (values < Sentinel
// still fit the tag byte), but the fixed-width payload, when taken, is 16
// bytes instead of a machine width.
func (e *Encoder) EncodeU128(v varint.Uint128) error {
	if v.Hi == 0 && tag.Fits(v.Lo) {
		return e.writeTag(tag.New(tag.Continuation, uint8(v.Lo)))
	}
	if err := e.writeTag(tag.New(tag.Continuation, tag.Sentinel)); err != nil {
		return err
	}
	if e.policies.Int == varint.Varint {
		return e.w.WriteBytes(varint.AppendUvarint128(nil, v))
	}
	buf := make([]byte, 16)
	if e.policies.Int == varint.FixedBE {
		binary.BigEndian.PutUint64(buf[0:8], v.Hi)
		binary.BigEndian.PutUint64(buf[8:16], v.Lo)
	} else {
		binary.LittleEndian.PutUint64(buf[0:8], v.Lo)
		binary.LittleEndian.PutUint64(buf[8:16], v.Hi)
	}
	return e.w.WriteBytes(buf)
}

// EncodeI128 zigzags (hi, lo) and defers to EncodeU128.
func (e *Encoder) EncodeI128(hi, lo uint64) error {
	return e.EncodeU128(varint.ZigZagEncode128(hi, lo))
}

// EncodeChar encodes a rune via the u32 path.
func (e *Encoder) EncodeChar(r rune) error {
	return e.EncodeU32(uint32(r))
}

// EncodeF32/F64 encode the IEEE-754 bit pattern via the corresponding
// unsigned integer path; floats are not a distinct wire kind.
func (e *Encoder) EncodeF32(v float32) error { return e.EncodeU32(math.Float32bits(v)) }
func (e *Encoder) EncodeF64(v float64) error { return e.EncodeU64(math.Float64bits(v)) }

// writeLength emits Tag(kind, n) inline if n fits, else Tag(kind,Sentinel)
// followed by n encoded per the usize policy.
func (e *Encoder) writeLength(k tag.Kind, n int) error {
	if tag.Fits(uint64(n)) {
		return e.writeTag(tag.New(k, uint8(n)))
	}
	if err := e.writeTag(tag.New(k, tag.Sentinel)); err != nil {
		return err
	}
	switch e.policies.Usize {
	case varint.Varint:
		return e.w.WriteBytes(varint.AppendUvarint(nil, uint64(n)))
	default:
		buf := make([]byte, 8)
		if e.policies.Usize == varint.FixedBE {
			binary.BigEndian.PutUint64(buf, uint64(n))
		} else {
			binary.LittleEndian.PutUint64(buf, uint64(n))
		}
		return e.w.WriteBytes(buf)
	}
}

// EncodeBytes writes a length-prefixed opaque byte run: strings, raw byte
// slices, and packed arrays all share this shape.
func (e *Encoder) EncodeBytes(b []byte) error {
	if err := e.writeLength(tag.Prefix, len(b)); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return e.w.WriteBytes(b)
}

// EncodeString writes a UTF-8 string as a byte run.
func (e *Encoder) EncodeString(s string) error {
	return e.EncodeBytes([]byte(s))
}

// EncodePacked writes pre-encoded inner bytes as a fixed-size packed
// tuple: Tag(Prefix, byte-len) then the concatenation verbatim. Callers
// build the inner concatenation by encoding each field against a scratch
// Encoder first (see Decoder.DecodePack for the corresponding bounded
// sub-reader on the way back in).
func (e *Encoder) EncodePacked(inner []byte) error {
	return e.EncodeBytes(inner)
}

// BeginSequence writes the sequence header for n recursively-encoded
// elements (arrays, vectors). The caller must then encode exactly n
// elements.
func (e *Encoder) BeginSequence(n int) error {
	return e.writeLength(tag.Sequence, n)
}

// BeginMap writes the sequence header for a map of n entries, flattened as
// 2n key/value encodings.
func (e *Encoder) BeginMap(n int) error {
	return e.writeLength(tag.Sequence, 2*n)
}

// BeginStruct writes the sequence header for a struct of f fields, encoded
// identically to a map (the caller encodes the field discriminant, usually
// a tag integer or a field-name string, then the value, for each field).
func (e *Encoder) BeginStruct(f int) error {
	return e.writeLength(tag.Sequence, 2*f)
}

// BeginTuple writes the sequence header for a tuple of f fields, encoded
// identically to a map.
func (e *Encoder) BeginTuple(f int) error {
	return e.writeLength(tag.Sequence, 2*f)
}

// EncodeNone writes the literal none marker Tag(Sequence,0).
func (e *Encoder) EncodeNone() error {
	return e.writeTag(tag.None)
}

// EncodeSomeHeader writes the literal some marker Tag(Sequence,1). The
// caller must follow it with the encoded payload.
func (e *Encoder) EncodeSomeHeader() error {
	return e.writeTag(tag.Some)
}

// BeginVariant writes the literal variant marker Tag(Sequence,2). The
// caller must follow it with the encoded discriminant, then the encoded
// payload.
func (e *Encoder) BeginVariant() error {
	return e.writeTag(tag.Variant)
}
