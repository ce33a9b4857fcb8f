// Package fingerprint computes structure and query fingerprints as
// fixed-width bit vectors, per spec.md §3 and §4.4. The bit-vector
// primitives below are adapted from the teacher's
// src/molecule_fingerprint.go Fingerprint type (SetBit/GetBit/CountBits
// over a []uint64 word array); the path/ECFP bit-setting logic in that
// file assumed a pure-Go molecule graph and is not reused here, since
// this package derives bits from core's native Avalon/generic fingerprint
// calls instead of walking atoms in Go.
package fingerprint

import "math/bits"

// BitVector is a fixed-width bit vector, backed by 64-bit words exactly
// as the teacher's Fingerprint type was.
type BitVector struct {
	words []uint64
	width int
}

// NewBitVector allocates a zeroed vector of the given width.
func NewBitVector(width int) *BitVector {
	return &BitVector{
		words: make([]uint64, (width+63)/64),
		width: width,
	}
}

// FromBitList builds a vector of the given width with exactly the listed
// bit positions set, as produced by core.AvalonFingerprint /
// core.GenericFingerprint.
func FromBitList(width int, bitPositions []int) *BitVector {
	bv := NewBitVector(width)
	for _, pos := range bitPositions {
		bv.Set(pos)
	}
	return bv
}

// Width returns the vector's bit width.
func (bv *BitVector) Width() int { return bv.width }

// Set sets the bit at pos. Out-of-range positions are ignored.
func (bv *BitVector) Set(pos int) {
	if pos < 0 || pos >= bv.width {
		return
	}
	bv.words[pos/64] |= 1 << uint(pos%64)
}

// Test reports whether the bit at pos is set.
func (bv *BitVector) Test(pos int) bool {
	if pos < 0 || pos >= bv.width {
		return false
	}
	return bv.words[pos/64]&(1<<uint(pos%64)) != 0
}

// Count returns the number of set bits.
func (bv *BitVector) Count() int {
	n := 0
	for _, w := range bv.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Bits returns the sorted list of set bit positions — the same
// representation used for the `fp` index field (spec.md §3: "one indexed
// ... token per set bit position").
func (bv *BitVector) Bits() []int {
	out := make([]int, 0, bv.Count())
	for i, w := range bv.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, i*64+b)
			w &= w - 1
		}
	}
	return out
}

// SupersetOf reports whether bv's set bits are a superset of other's,
// i.e. other is a bit-subset of bv. This is the screening invariant
// test: bits(query_fp(S)) ⊆ bits(structure_fp(M)) (spec.md §3 invariant
// 4).
func (bv *BitVector) SupersetOf(other *BitVector) bool {
	if bv.width != other.width {
		return false
	}
	for i := range bv.words {
		if other.words[i]&^bv.words[i] != 0 {
			return false
		}
	}
	return true
}
