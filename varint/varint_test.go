package varint

import (
	"bytes"
	"math"
	"testing"
)

func TestContinuationVarint1000(t *testing.T) {
	// encode(1000) yields exactly [232, 7].
	got := AppendUvarint(nil, 1000)
	want := []byte{232, 7}
	if !bytes.Equal(got, want) {
		t.Fatalf("AppendUvarint(1000) = %v, want %v", got, want)
	}

	v, n, err := Uvarint(want)
	if err != nil {
		t.Fatalf("Uvarint: %v", err)
	}
	if v != 1000 || n != 2 {
		t.Fatalf("Uvarint([232,7]) = (%d, %d), want (1000, 2)", v, n)
	}
}

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 63, 64, 127, 128, 1000, 1 << 20, math.MaxUint32, math.MaxUint64}
	for _, v := range values {
		enc := AppendUvarint(nil, v)
		got, n, err := Uvarint(enc)
		if err != nil {
			t.Fatalf("Uvarint(AppendUvarint(%d)): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %d -> %v -> %d", v, enc, got)
		}
		if n != len(enc) {
			t.Fatalf("Uvarint consumed %d bytes, encoding is %d bytes", n, len(enc))
		}
	}
}

func TestUvarintNRejectsOverflow(t *testing.T) {
	// 300 needs 9 bits; does not fit in a u8.
	enc := AppendUvarint(nil, 300)
	if _, _, err := UvarintN(enc, 8); err == nil {
		t.Fatalf("UvarintN(300, 8 bits) should overflow")
	}
	// 255 fits exactly in a u8.
	enc = AppendUvarint(nil, 255)
	v, _, err := UvarintN(enc, 8)
	if err != nil || v != 255 {
		t.Fatalf("UvarintN(255, 8 bits) = (%d, %v), want (255, nil)", v, err)
	}
}

func TestUvarintRejectsNonCanonical(t *testing.T) {
	// A trailing zero group that could have been omitted: 0 encoded as
	// two groups [0x80, 0x00] instead of the canonical single [0x00].
	_, _, err := Uvarint([]byte{0x80, 0x00})
	if err == nil {
		t.Fatalf("expected non-canonical trailing zero group to be rejected")
	}
}

func TestUvarintTruncated(t *testing.T) {
	_, _, err := Uvarint([]byte{0x80})
	if err != Truncated {
		t.Fatalf("Uvarint([0x80]) = %v, want Truncated", err)
	}
	_, _, err = Uvarint(nil)
	if err != Truncated {
		t.Fatalf("Uvarint(nil) = %v, want Truncated", err)
	}
}

func TestUvarint128RoundTrip(t *testing.T) {
	cases := []Uint128{
		{},
		{Lo: 1},
		{Lo: math.MaxUint64},
		{Hi: 1, Lo: 0},
		{Hi: math.MaxUint64, Lo: math.MaxUint64},
		{Hi: 0x0102030405060708, Lo: 0x1122334455667788},
	}
	for _, v := range cases {
		enc := AppendUvarint128(nil, v)
		got, n, err := Uvarint128(enc)
		if err != nil {
			t.Fatalf("Uvarint128(AppendUvarint128(%+v)): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %+v -> %v -> %+v", v, enc, got)
		}
		if n != len(enc) {
			t.Fatalf("Uvarint128 consumed %d of %d bytes", n, len(enc))
		}
	}
}

func TestZigZagBoundaries(t *testing.T) {
	// zz_encode(0)=0, zz_encode(-1)=1, zz_encode(1)=2,
	// zz_encode(MIN)=U::MAX, zz_encode(MAX)=U::MAX-1.
	if got := ZigZagEncode64(0); got != 0 {
		t.Errorf("ZigZagEncode64(0) = %d, want 0", got)
	}
	if got := ZigZagEncode64(-1); got != 1 {
		t.Errorf("ZigZagEncode64(-1) = %d, want 1", got)
	}
	if got := ZigZagEncode64(1); got != 2 {
		t.Errorf("ZigZagEncode64(1) = %d, want 2", got)
	}
	if got := ZigZagEncode64(math.MinInt64); got != math.MaxUint64 {
		t.Errorf("ZigZagEncode64(MinInt64) = %d, want MaxUint64", got)
	}
	if got := ZigZagEncode64(math.MaxInt64); got != math.MaxUint64-1 {
		t.Errorf("ZigZagEncode64(MaxInt64) = %d, want MaxUint64-1", got)
	}
}

func TestZigZagBoundaries32(t *testing.T) {
	// zz_encode(i32::MIN) == u32::MAX, zz_encode(i32::MAX) == u32::MAX-1.
	if got := ZigZagEncode32(math.MinInt32); got != math.MaxUint32 {
		t.Errorf("ZigZagEncode32(MinInt32) = %d, want MaxUint32", got)
	}
	if got := ZigZagEncode32(math.MaxInt32); got != math.MaxUint32-1 {
		t.Errorf("ZigZagEncode32(MaxInt32) = %d, want MaxUint32-1", got)
	}
}

func TestZigZagRoundTrip(t *testing.T) {
	values := []int64{0, -1, 1, -2, 2, math.MinInt64, math.MaxInt64, -12345, 12345}
	for _, v := range values {
		got := ZigZagDecode64(ZigZagEncode64(v))
		if got != v {
			t.Fatalf("zigzag round trip %d -> %d", v, got)
		}
	}
}

// FuzzUvarintCanonical checks that decoding never accepts a non-canonical
// encoding and that any bytes it does accept re-encode to the same bytes it
// consumed (the §8.1 "varint canonicality" law).
func FuzzUvarintCanonical(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(1))
	f.Add(uint64(127))
	f.Add(uint64(128))
	f.Add(uint64(1000))
	f.Add(uint64(math.MaxUint32))
	f.Add(uint64(math.MaxUint64))
	f.Fuzz(func(t *testing.T, v uint64) {
		enc := AppendUvarint(nil, v)
		got, n, err := Uvarint(enc)
		if err != nil {
			t.Fatalf("Uvarint(AppendUvarint(%d)) = %v", v, err)
		}
		if got != v || n != len(enc) {
			t.Fatalf("round trip %d -> %v -> (%d, %d)", v, enc, got, n)
		}
		if reenc := AppendUvarint(nil, got); !bytes.Equal(reenc, enc) {
			t.Fatalf("re-encode %d -> %v, want %v", got, reenc, enc)
		}
	})
}

// FuzzZigZagRoundTrip64 checks the §8.1 zigzag round-trip law over arbitrary
// signed 64-bit values.
func FuzzZigZagRoundTrip64(f *testing.F) {
	f.Add(int64(0))
	f.Add(int64(-1))
	f.Add(int64(1))
	f.Add(int64(math.MinInt64))
	f.Add(int64(math.MaxInt64))
	f.Fuzz(func(t *testing.T, n int64) {
		if got := ZigZagDecode64(ZigZagEncode64(n)); got != n {
			t.Fatalf("zigzag round trip %d -> %d", n, got)
		}
	})
}

func TestZigZagRoundTrip128(t *testing.T) {
	cases := []struct{ hi, lo uint64 }{
		{0, 0},
		{0, 1},
		{math.MaxUint64, math.MaxUint64}, // -1
		{0x8000000000000000, 0},          // min 128-bit signed
		{0x7FFFFFFFFFFFFFFF, math.MaxUint64},
	}
	for _, c := range cases {
		enc := ZigZagEncode128(c.hi, c.lo)
		gotHi, gotLo := ZigZagDecode128(enc)
		if gotHi != c.hi || gotLo != c.lo {
			t.Fatalf("zigzag128 round trip (%#x,%#x) -> %+v -> (%#x,%#x)", c.hi, c.lo, enc, gotHi, gotLo)
		}
	}
}
