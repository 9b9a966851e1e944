package symcodec

import (
	"fmt"

	"github.com/ha1tch/msc/pkg/codec"
	"github.com/ha1tch/msc/pkg/rans"
)

// SequenceCodec iterates a fixed-length element codec over a []E of
// exactly Len elements, with no length prefix (spec §4.5).
//
// Elements are pushed in reverse index order during Encode (the rANS
// stack's LIFO discipline, same reasoning as ByteArrayCodec) so Decode
// recovers them in forward order.
type SequenceCodec[E any] struct {
	Elem codec.SymbolCodec[E]
	Len  int
}

// Sequence returns a codec iterating elem over exactly length elements.
func Sequence[E any](elem codec.SymbolCodec[E], length int) *SequenceCodec[E] {
	return &SequenceCodec[E]{Elem: elem, Len: length}
}

func (s *SequenceCodec[E]) Encode(st *rans.State, lane int, seq []E) error {
	if len(seq) != s.Len {
		return fmt.Errorf("symcodec: sequence length %d != fixed length %d", len(seq), s.Len)
	}
	for i := len(seq) - 1; i >= 0; i-- {
		if err := s.Elem.Encode(st, lane, seq[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SequenceCodec[E]) Decode(st *rans.State, lane int) ([]E, error) {
	out := make([]E, s.Len)
	for i := 0; i < s.Len; i++ {
		v, err := s.Elem.Decode(st, lane)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// VariableLengthSequenceCodec is SequenceCodec plus a length prefix
// (Uniform over 0..MaxLen), the same length-then-elements LIFO ordering
// as ByteArrayCodec.
type VariableLengthSequenceCodec[E any] struct {
	Elem   codec.SymbolCodec[E]
	MaxLen int
	length *UniformCodec
}

// VariableLengthSequence returns a codec for []E of length 0..maxLen.
func VariableLengthSequence[E any](elem codec.SymbolCodec[E], maxLen int) *VariableLengthSequenceCodec[E] {
	return &VariableLengthSequenceCodec[E]{Elem: elem, MaxLen: maxLen, length: Uniform(maxLen + 1)}
}

func (s *VariableLengthSequenceCodec[E]) Encode(st *rans.State, lane int, seq []E) error {
	if len(seq) > s.MaxLen {
		return fmt.Errorf("symcodec: sequence length %d exceeds max %d", len(seq), s.MaxLen)
	}
	for i := len(seq) - 1; i >= 0; i-- {
		if err := s.Elem.Encode(st, lane, seq[i]); err != nil {
			return err
		}
	}
	return s.length.Encode(st, lane, len(seq))
}

func (s *VariableLengthSequenceCodec[E]) Decode(st *rans.State, lane int) ([]E, error) {
	n, err := s.length.Decode(st, lane)
	if err != nil {
		return nil, err
	}
	out := make([]E, n)
	for i := 0; i < n; i++ {
		v, err := s.Elem.Decode(st, lane)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
