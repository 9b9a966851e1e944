package codec

import (
	"errors"
	"fmt"

	"github.com/ha1tch/msc/pkg/multiset"
	"github.com/ha1tch/msc/pkg/rans"
)

// ErrEmptyMultiset is returned by SWOR.Decode when asked to sample from
// an empty multiset.
var ErrEmptyMultiset = errors.New("codec: cannot sample from an empty multiset")

// SWOR implements sampling-without-replacement against a multiset (spec
// §4.4): Decode samples a symbol by decoding bits from the rANS state
// ("bits-back") and shrinks the multiset by one occurrence; Encode is its
// exact inverse, re-adding the bits Decode removed.
type SWOR[S any] struct {
	Less multiset.Less[S]

	// Cache, if set, is passed through to every multiset.Insert/Remove
	// call so the Decode/Encode loop interns each freshly rebuilt node
	// (see package internal/nodecache) instead of leaving it as a
	// one-off allocation.
	Cache multiset.Interner[S]
}

// NewSWOR returns a SWOR codec using the given symbol ordering.
func NewSWOR[S any](less multiset.Less[S]) *SWOR[S] {
	return &SWOR[S]{Less: less}
}

// NewSWORWithCache returns a SWOR codec that interns every node it
// rebuilds through cache, so structurally-equal subtrees produced across
// repeated Decode/Encode calls are physically shared.
func NewSWORWithCache[S any](less multiset.Less[S], cache multiset.Interner[S]) *SWOR[S] {
	return &SWOR[S]{Less: less, Cache: cache}
}

// Decode samples one symbol out of m: it finds the element at a
// uniformly-scaled index, pops the interval proportional to that
// element's multiplicity (the bits-back step), and returns the symbol
// together with the submultiset that remains after removing it.
func (w *SWOR[S]) Decode(st *rans.State, lane int, m *multiset.Node[S]) (*multiset.Node[S], S, error) {
	var zero S
	n := multiset.Size(m)
	if n == 0 {
		return nil, zero, ErrEmptyMultiset
	}
	params := st.Params()
	if uint64(n) > params.MaxSymbols() {
		return nil, zero, rans.ErrPrecisionExhausted
	}

	cf := st.CF(lane)
	idx := decodeIndex(cf, uint64(n), params.PrecBits)

	iv, sym, err := multiset.ReverseLookup(m, uint32(idx))
	if err != nil {
		return nil, zero, fmt.Errorf("codec: SWOR.Decode: %w", err)
	}

	start, freq := scaledRange(uint64(iv.Start), uint64(iv.Start)+uint64(iv.Freq), uint64(n), params.PrecBits)
	if err := st.Pop(lane, start, freq); err != nil {
		return nil, zero, fmt.Errorf("codec: SWOR.Decode: %w", err)
	}

	remaining, err := multiset.Remove(m, sym, w.Less, w.Cache)
	if err != nil {
		return nil, zero, fmt.Errorf("codec: SWOR.Decode: %w", err)
	}
	return remaining, sym, nil
}

// Encode inverts Decode: it reinserts sym into submultiset, looks up the
// forward interval of the resulting multiset, and pushes that interval
// back onto st — reclaiming exactly the bits the matching Decode popped.
func (w *SWOR[S]) Encode(st *rans.State, lane int, sym S, submultiset *multiset.Node[S]) (*multiset.Node[S], error) {
	m := multiset.Insert(submultiset, sym, w.Less, w.Cache)
	n := multiset.Size(m)

	params := st.Params()
	if uint64(n) > params.MaxSymbols() {
		return nil, rans.ErrPrecisionExhausted
	}

	iv, err := multiset.ForwardLookup(m, sym, w.Less)
	if err != nil {
		return nil, fmt.Errorf("codec: SWOR.Encode: %w", err)
	}

	start, freq := scaledRange(uint64(iv.Start), uint64(iv.Start)+uint64(iv.Freq), uint64(n), params.PrecBits)
	if err := st.Push(lane, start, freq); err != nil {
		return nil, fmt.Errorf("codec: SWOR.Encode: %w", err)
	}
	return m, nil
}
