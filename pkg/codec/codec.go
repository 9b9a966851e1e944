// Package codec composes the rANS coder (package rans) and the multiset
// BST (package multiset) into the bits-back Multiset/SWOR codecs (spec
// §4.3, §4.4), and defines the contract any per-symbol codec must satisfy
// to plug into them (spec §6.1).
package codec

import (
	"github.com/ha1tch/msc/pkg/rans"
)

// SymbolCodec is the contract any per-symbol codec must satisfy: a
// stateless pair of functions operating on a lane of a rANS state (spec
// §6.1). Implementations must satisfy the inverse law
// Decode(Encode(st, s)) == (st, s) and keep every pushed/popped interval
// within precision: start+freq <= 2^P, freq >= 1.
type SymbolCodec[S any] interface {
	Encode(st *rans.State, lane int, sym S) error
	Decode(st *rans.State, lane int) (S, error)
}

// ScaleIndex returns the precision-P scaled interval of the single index
// idx out of n total indices (start = idx*2^P/n, up to the next index's
// start).
func ScaleIndex(idx, n uint64, precBits uint) (start, freq uint32) {
	return ScaleRange(idx, idx+1, n, precBits)
}

// ScaleRange returns the precision-P scaled interval spanning indices
// [lo, hi) out of n total indices: start = lo*2^P/n, freq = hi*2^P/n -
// start. This is the scaling helper spec §4.4 calls out as shared with
// symcodec.Uniform.
func ScaleRange(lo, hi, n uint64, precBits uint) (start, freq uint32) {
	scale := uint64(1) << precBits
	s := (lo * scale) / n
	e := (hi * scale) / n
	return uint32(s), uint32(e - s)
}

// scaledRange is a package-local alias of ScaleRange, used by SWOR;
// scaleInterval is the matching alias of ScaleIndex and has no caller in
// this package.
func scaleInterval(idx, n uint64, precBits uint) (start, freq uint32) {
	return ScaleIndex(idx, n, precBits)
}

func scaledRange(lo, hi, n uint64, precBits uint) (start, freq uint32) {
	return ScaleRange(lo, hi, n, precBits)
}

// DecodeIndex inverts ScaleIndex: given a coded point cf and n total
// indices at precision precBits, it finds the unique idx such that
// cf falls within [idx*2^P/n, (idx+1)*2^P/n). The direct quotient is a
// good first guess but integer rounding can put it off by one, so it is
// corrected by walking toward the containing interval.
func DecodeIndex(cf uint32, n uint64, precBits uint) uint64 {
	scale := uint64(1) << precBits
	idx := (uint64(cf) * n) / scale
	if idx >= n {
		idx = n - 1
	}
	for {
		s, f := ScaleIndex(idx, n, precBits)
		if uint64(s) <= uint64(cf) && uint64(cf) < uint64(s)+uint64(f) {
			return idx
		}
		if uint64(cf) < uint64(s) {
			idx--
		} else {
			idx++
		}
	}
}

func decodeIndex(cf uint32, n uint64, precBits uint) uint64 {
	return DecodeIndex(cf, n, precBits)
}
