// Package symcodec implements the reference per-symbol codec family spec
// §4.5 calls out as boundary auxiliaries: Uniform, Categorical, ByteArray,
// and Sequence/VariableLengthSequence. These are the application-facing
// codecs the Multiset/SWOR codecs in package codec are composed with; the
// core itself requires only the codec.SymbolCodec interface.
package symcodec

import (
	"errors"

	"github.com/ha1tch/msc/pkg/codec"
	"github.com/ha1tch/msc/pkg/rans"
)

// ErrSymbolOutOfRange is returned when Encode is asked to encode a symbol
// outside the codec's domain.
var ErrSymbolOutOfRange = errors.New("symcodec: symbol out of range")

// UniformCodec encodes an integer in [0, N) with uniform probability
// 1/N, scaled to the state's coding precision (spec §4.5).
type UniformCodec struct {
	N uint64
}

// Uniform returns a codec over symbols 0..n-1 with equal probability.
func Uniform(n int) *UniformCodec {
	return &UniformCodec{N: uint64(n)}
}

// Encode pushes sym's precision-scaled interval.
func (u *UniformCodec) Encode(st *rans.State, lane int, sym int) error {
	if sym < 0 || uint64(sym) >= u.N {
		return ErrSymbolOutOfRange
	}
	if u.N > st.Params().MaxSymbols() {
		return rans.ErrPrecisionExhausted
	}
	start, freq := codec.ScaleIndex(uint64(sym), u.N, st.Params().PrecBits)
	return st.Push(lane, start, freq)
}

// Decode reads the lane's coded point, finds the index whose scaled
// interval contains it, and pops that interval.
func (u *UniformCodec) Decode(st *rans.State, lane int) (int, error) {
	if u.N > st.Params().MaxSymbols() {
		return 0, rans.ErrPrecisionExhausted
	}
	cf := st.CF(lane)
	idx := codec.DecodeIndex(cf, u.N, st.Params().PrecBits)
	start, freq := codec.ScaleIndex(idx, u.N, st.Params().PrecBits)
	if err := st.Pop(lane, start, freq); err != nil {
		return 0, err
	}
	return int(idx), nil
}
