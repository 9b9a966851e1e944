package codec_test

import (
	"math/rand"
	"testing"

	"github.com/ha1tch/msc/pkg/codec"
	"github.com/ha1tch/msc/pkg/multiset"
	"github.com/ha1tch/msc/pkg/rans"
	"github.com/ha1tch/msc/pkg/symcodec"
)

var intLess = multiset.Ordered[int]()

func newMsState(t *testing.T) *rans.State {
	t.Helper()
	s, err := rans.New(rans.Params{HeadBits: 32, TailBits: 16, PrecBits: 14}, 1)
	if err != nil {
		t.Fatalf("rans.New: %v", err)
	}
	return s
}

// TestS1MultisetRoundtrip is spec §8 S1: sequence [0, 255, 128, 128] coded
// with Uniform(256) through the Multiset codec from an empty state must
// decode back to a multiset equal to the original.
func TestS1MultisetRoundtrip(t *testing.T) {
	st := newMsState(t)
	seq := []int{0, 255, 128, 128}
	m := multiset.Build(seq, intLess)

	mc := codec.NewMultiset(intLess, symcodec.Uniform(256))
	if err := mc.Encode(st, 0, m); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := mc.Decode(st, 0, uint32(len(seq)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !multiset.Equal(got, m, intLess) {
		t.Errorf("decoded multiset != original")
	}
}

// TestS6SkewedMultisetSavings is spec §8 S6: a multiset of 1,000 random
// 8-bit symbols with skewed multiplicities encodes to strictly fewer bits
// than a plain per-symbol sequence coding, and round-trips exactly.
func TestS6SkewedMultisetSavings(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	// Skew heavily toward a handful of symbols so the ordering entropy
	// SWOR reclaims is large relative to the per-symbol cost.
	weights := make([]float64, 256)
	for i := range weights {
		weights[i] = 1
	}
	for _, s := range []int{7, 42, 100, 200} {
		weights[s] = 400
	}
	var total float64
	for _, w := range weights {
		total += w
	}

	n := 1000
	seq := make([]int, n)
	for i := range seq {
		r := rng.Float64() * total
		var acc float64
		sym := 0
		for s, w := range weights {
			acc += w
			if r < acc {
				sym = s
				break
			}
		}
		seq[i] = sym
	}

	m := multiset.Build(seq, intLess)
	uniform := symcodec.Uniform(256)

	msState := newMsState(t)
	mc := codec.NewMultiset(intLess, uniform)
	if err := mc.Encode(msState, 0, m); err != nil {
		t.Fatalf("Multiset Encode: %v", err)
	}
	msData, err := msState.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	seqState := newMsState(t)
	for i := n - 1; i >= 0; i-- {
		if err := uniform.Encode(seqState, 0, seq[i]); err != nil {
			t.Fatalf("sequence Encode: %v", err)
		}
	}
	seqData, err := seqState.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	if len(msData) >= len(seqData) {
		t.Errorf("multiset coding did not save bits: multiset=%d bytes, sequence=%d bytes", len(msData), len(seqData))
	}

	got, err := mc.Decode(msState, 0, uint32(n))
	if err != nil {
		t.Fatalf("Multiset Decode: %v", err)
	}
	if !multiset.Equal(got, m, intLess) {
		t.Errorf("decoded multiset != original")
	}
}

// TestMultisetRoundtripRandom is the universal invariant 1 (round-trip
// multiset) exercised at the Multiset-codec level across varied sizes and
// alphabets.
func TestMultisetRoundtripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for trial := 0; trial < 50; trial++ {
		st := newMsState(t)
		n := 1 + rng.Intn(60)
		alphabet := 1 + rng.Intn(32)
		seq := make([]int, n)
		for i := range seq {
			seq[i] = rng.Intn(alphabet)
		}
		m := multiset.Build(seq, intLess)

		mc := codec.NewMultiset(intLess, symcodec.Uniform(alphabet))
		if err := mc.Encode(st, 0, m); err != nil {
			t.Fatalf("trial %d: Encode: %v", trial, err)
		}
		got, err := mc.Decode(st, 0, uint32(n))
		if err != nil {
			t.Fatalf("trial %d: Decode: %v", trial, err)
		}
		if !multiset.Equal(got, m, intLess) {
			t.Fatalf("trial %d: decoded multiset != original", trial)
		}
	}
}
