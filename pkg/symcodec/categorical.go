package symcodec

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ha1tch/msc/pkg/rans"
)

// CategoricalCodec encodes an integer symbol drawn from a fixed
// categorical distribution, whose probabilities are quantized to the
// state's coding precision. Quantization follows the same
// largest-remainder correction ans.BuildTable in the teacher package
// uses: round each bucket down, then nudge the largest bucket so the
// total lands exactly on 2^P.
type CategoricalCodec struct {
	freqs   []uint32
	cumFreq []uint32 // len(freqs)+1; cumFreq[i] is symbol i's start
}

// Categorical builds a quantized frequency table from probs (need not
// sum to 1; only relative weight matters) at the given precision.
func Categorical(probs []float64, precBits uint) (*CategoricalCodec, error) {
	n := len(probs)
	if n == 0 {
		return nil, errors.New("symcodec: empty probability table")
	}
	scale := uint64(1) << precBits
	if uint64(n) > scale {
		return nil, fmt.Errorf("symcodec: %d symbols exceeds precision 2^%d", n, precBits)
	}

	var total float64
	for _, p := range probs {
		total += p
	}
	if total <= 0 {
		return nil, errors.New("symcodec: probabilities must sum to a positive value")
	}

	raw := make([]uint64, n)
	var sum uint64
	for i, p := range probs {
		if p < 0 {
			return nil, fmt.Errorf("symcodec: negative probability at index %d", i)
		}
		f := uint64((p / total) * float64(scale))
		if f == 0 {
			f = 1
		}
		raw[i] = f
		sum += f
	}

	if sum != scale {
		maxIdx := 0
		for i, f := range raw {
			if f > raw[maxIdx] {
				maxIdx = i
			}
		}
		if sum > scale {
			raw[maxIdx] -= sum - scale
		} else {
			raw[maxIdx] += scale - sum
		}
	}

	freqs := make([]uint32, n)
	cumFreq := make([]uint32, n+1)
	for i, f := range raw {
		freqs[i] = uint32(f)
		cumFreq[i+1] = cumFreq[i] + uint32(f)
	}

	return &CategoricalCodec{freqs: freqs, cumFreq: cumFreq}, nil
}

// Encode pushes sym's quantized interval.
func (c *CategoricalCodec) Encode(st *rans.State, lane int, sym int) error {
	if sym < 0 || sym >= len(c.freqs) {
		return ErrSymbolOutOfRange
	}
	return st.Push(lane, c.cumFreq[sym], c.freqs[sym])
}

// Decode reads the lane's coded point, binary-searches the cumulative
// table for the containing symbol, and pops its interval.
func (c *CategoricalCodec) Decode(st *rans.State, lane int) (int, error) {
	cf := st.CF(lane)
	sym := sort.Search(len(c.freqs), func(i int) bool { return c.cumFreq[i+1] > cf })
	if sym >= len(c.freqs) {
		return 0, fmt.Errorf("symcodec: categorical decode mismatch at cf=%d", cf)
	}
	if err := st.Pop(lane, c.cumFreq[sym], c.freqs[sym]); err != nil {
		return 0, err
	}
	return sym, nil
}
