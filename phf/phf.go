// Package phf builds and queries a two-level compress-hash-displace (CHD)
// minimal-collision perfect hash table over a caller-supplied key set. The
// resulting Layout is plain data - entries, a displacements slice, a final
// map, and the seed that makes them consistent - meant to be written
// verbatim into a position-independent buffer (a file, an mmap region) so
// it can be queried without re-running the builder.
//
// Grounded on the CHD construction in opencoff/go-chd, adapted from a
// single uint64 key space to an arbitrary-key space (any K with a
// caller-supplied canonical []byte form) and from that package's
// largest-bucket-first order to the ascending order this codec's
// source specifies, which changes which seed a given key set converges on
// but not the algorithm's correctness.
package phf

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/dchest/siphash"
)

// Lambda is the average bucket size the displacement table is sized for:
// B = ceil(N / Lambda).
const Lambda = 5

// seed is the fixed PRNG seed every build starts from, making two builds
// over the same key set and buffer layout converge on the same HashKey.
const seed = 1234567890

// maxAttempts bounds the outer seed-search loop. Exhausting it is
// practically unreachable for any reasonable N; it exists so a
// pathological input fails instead of looping forever.
const maxAttempts = 1 << 20

// Entry is a two-component displacement pair stored per bucket.
type Entry struct {
	D1, D2 uint32
}

// Hashes is the per-key triple (g, f1, f2) a HashKey and a key's canonical
// byte form reduce to. Derived from one 128-bit SipHash-2-4 digest rather
// than three independent hash calls, keeping the generator allocation-free
// on its hot path.
type Hashes struct {
	G, F1, F2 uint32
}

func computeHashes(key uint64, keyBytes []byte) Hashes {
	lo, hi := siphash.Hash128(key, 0, keyBytes)
	return Hashes{G: uint32(lo), F1: uint32(lo >> 32), F2: uint32(hi)}
}

// displace combines (f1, f2) with a bucket's chosen (d1, d2) via wrapping
// 32-bit arithmetic, per the source algorithm.
func displace(f1, f2, d1, d2 uint32) uint32 {
	return (d1 ^ f1) + (d2 ^ f2)
}

// Layout is the buffer-ready output of a successful build: Entries in
// their original order, Displacements sized ceil(N/Lambda), a final Map of
// length N resolving a computed slot to an entry index, and the HashKey
// seed all of it was verified under.
type Layout[T any] struct {
	Entries       []T
	Displacements []Entry
	Map           []uint32
	Key           uint64
}

// Sentinel marks an unplaced slot in Map during construction; no valid Map
// entry in a finished Layout equals it.
const Sentinel = ^uint32(0)

// FailedPhf is returned when every candidate seed up to maxAttempts fails
// to place every bucket.
var FailedPhf = fmt.Errorf("phf: failed to find a perfect hash after exhausting candidate seeds")

// Build constructs a Layout over entries, using keyBytes to obtain each
// entry's canonical key bytes. Two builds over an identical entries slice
// (same order, same keyBytes results) always produce the same Layout.Key
// and Layout.Map, since the candidate-seed search is seeded
// deterministically.
func Build[T any](entries []T, keyBytes func(T) []byte) (*Layout[T], error) {
	n := len(entries)
	if n == 0 {
		return &Layout[T]{Entries: entries, Displacements: nil, Map: nil, Key: 0}, nil
	}

	bucketCount := (n + Lambda - 1) / Lambda
	rng := rand.New(rand.NewSource(seed))

	for attempt := 0; attempt < maxAttempts; attempt++ {
		key := rng.Uint64()
		m, disp, ok := tryGenerate(entries, keyBytes, key, uint32(n), uint32(bucketCount))
		if ok {
			return &Layout[T]{Entries: entries, Displacements: disp, Map: m, Key: key}, nil
		}
	}
	return nil, FailedPhf
}

type bucket struct {
	index int // bucket index, i.e. slot into the Displacements table
	items []int
}

// tryGenerate attempts to place every bucket for one candidate key. It
// returns ok=false if any bucket exhausts the (d1,d2) search space.
func tryGenerate[T any](entries []T, keyBytes func(T) []byte, key uint64, n, bucketCount uint32) ([]uint32, []Entry, bool) {
	hashes := make([]Hashes, len(entries))
	for i, e := range entries {
		hashes[i] = computeHashes(key, keyBytes(e))
	}

	buckets := make([]bucket, bucketCount)
	for i := range buckets {
		buckets[i].index = i
	}
	for i, h := range hashes {
		b := h.G % bucketCount
		buckets[b].items = append(buckets[b].items, i)
	}

	// Ascending by size: the source sorts this way (not the canonical CHD
	// "largest first"), and that choice is load-bearing for which seed a
	// given key set converges to.
	sort.Slice(buckets, func(i, j int) bool {
		return len(buckets[i].items) < len(buckets[j].items)
	})

	disp := make([]Entry, bucketCount)
	m := make([]uint32, n)
	for i := range m {
		m[i] = Sentinel
	}
	tryMap := make([]uint64, n)
	var generation uint64

	type placement struct {
		slot, entryIdx uint32
	}
	scratch := make([]placement, 0, Lambda*2)

	for _, b := range buckets {
		if len(b.items) == 0 {
			disp[b.index] = Entry{}
			continue
		}
		placed := false
	displaceSearch:
		for d1 := uint32(0); d1 < n; d1++ {
			for d2 := uint32(0); d2 < n; d2++ {
				generation++
				scratch = scratch[:0]
				ok := true
				for _, idx := range b.items {
					h := hashes[idx]
					slot := displace(h.F1, h.F2, d1, d2) % n
					if m[slot] != Sentinel || tryMap[slot] == generation {
						ok = false
						break
					}
					tryMap[slot] = generation
					scratch = append(scratch, placement{slot: slot, entryIdx: uint32(idx)})
				}
				if !ok {
					continue
				}
				for _, p := range scratch {
					m[p.slot] = p.entryIdx
				}
				disp[b.index] = Entry{D1: d1, D2: d2}
				placed = true
				break displaceSearch
			}
		}
		if !placed {
			return nil, nil, false
		}
	}
	return m, disp, true
}

// Lookup resolves key against a previously built Layout, returning the
// entry index a key hashes to. It does not verify equality: callers must
// compare the returned entry's own key against the looked-up key to guard
// against keys absent from the original build (Lookup never returns an
// error: it returns some index for any key, or -1 when the Layout is empty).
func Lookup[T any](l *Layout[T], keyBytes []byte) int {
	n := uint32(len(l.Map))
	if n == 0 {
		return -1
	}
	bucketCount := uint32(len(l.Displacements))
	h := computeHashes(l.Key, keyBytes)
	d := l.Displacements[h.G%bucketCount]
	slot := displace(h.F1, h.F2, d.D1, d.D2) % n
	return int(l.Map[slot])
}

// Get is a convenience wrapper around Lookup that also dereferences into
// Layout.Entries.
func Get[T any](l *Layout[T], keyBytes []byte) T {
	return l.Entries[Lookup(l, keyBytes)]
}
