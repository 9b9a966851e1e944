package codec

import (
	"fmt"

	"github.com/ha1tch/msc/pkg/multiset"
	"github.com/ha1tch/msc/pkg/rans"
)

// Multiset composes SWOR with a caller-supplied SymbolCodec to encode and
// decode whole multisets (spec §4.3). Encoding draws every element out of
// the multiset via SWOR (the bits-back step) and re-encodes it with the
// symbol codec; decoding inverts this one symbol at a time.
type Multiset[S any] struct {
	Less  multiset.Less[S]
	Codec SymbolCodec[S]

	swor *SWOR[S]
}

// NewMultiset returns a Multiset codec over symbol type S, ordered by
// less and using symCodec to encode/decode each sampled symbol.
func NewMultiset[S any](less multiset.Less[S], symCodec SymbolCodec[S]) *Multiset[S] {
	return &Multiset[S]{Less: less, Codec: symCodec, swor: NewSWOR(less)}
}

// NewMultisetWithCache is NewMultiset plus a structural-sharing cache
// (see package internal/nodecache): every node the embedded SWOR codec
// rebuilds while draining or refilling the multiset is interned through
// cache, so repeated Encode/Decode calls over the run physically share
// structurally-equal subtrees instead of reallocating them.
func NewMultisetWithCache[S any](less multiset.Less[S], symCodec SymbolCodec[S], cache multiset.Interner[S]) *Multiset[S] {
	return &Multiset[S]{Less: less, Codec: symCodec, swor: NewSWORWithCache(less, cache)}
}

// Encode drains m completely: for each of its Size(m) elements, it draws
// one symbol via SWOR and re-encodes it with the symbol codec. The net
// bits pushed to st are the symbol codec's cost minus the ordering
// entropy SWOR reclaims (spec §4.3, §1). If Size(m) exceeds 2^P of st's
// params, the first step fails with an error wrapping
// rans.ErrPrecisionExhausted; Encode does not split a large multiset.
func (c *Multiset[S]) Encode(st *rans.State, lane int, m *multiset.Node[S]) error {
	n := multiset.Size(m)
	for i := uint32(0); i < n; i++ {
		next, sym, err := c.swor.Decode(st, lane, m)
		if err != nil {
			return fmt.Errorf("codec: Multiset.Encode step %d: %w", i, err)
		}
		if err := c.Codec.Encode(st, lane, sym); err != nil {
			return fmt.Errorf("codec: Multiset.Encode step %d: symbol codec: %w", i, err)
		}
		m = next
	}
	return nil
}

// Decode reconstructs a multiset of the given size from st, inverting
// Encode step by step: it decodes one symbol via the symbol codec, then
// inverts SWOR to both reinsert the symbol and reclaim the bits SWOR's
// decode would have removed (spec §4.3).
func (c *Multiset[S]) Decode(st *rans.State, lane int, size uint32) (*multiset.Node[S], error) {
	var m *multiset.Node[S]
	for i := uint32(0); i < size; i++ {
		sym, err := c.Codec.Decode(st, lane)
		if err != nil {
			return nil, fmt.Errorf("codec: Multiset.Decode step %d: symbol codec: %w", i, err)
		}
		next, err := c.swor.Encode(st, lane, sym, m)
		if err != nil {
			return nil, fmt.Errorf("codec: Multiset.Decode step %d: %w", i, err)
		}
		m = next
	}
	return m, nil
}
