package main

import (
	"bytes"
	"math"

	"github.com/klauspost/compress/flate"
)

// flateBaseline returns the flate-compressed size of data, the baseline
// cmd/msc bench compares the multiset codec's savings against.
func flateBaseline(data []byte) (int, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

// multisetEntropyBits returns log2(M! / prod(n_i!)), the theoretical
// number of bits the ordering of a multiset with the given multiplicities
// carries (spec.md §1's "approximately log2(M!/prod n_i!) bits" claim),
// computed via the log-gamma function to avoid overflowing M! directly.
func multisetEntropyBits(counts []uint32) float64 {
	var m float64
	logFact := func(n float64) float64 {
		g, _ := math.Lgamma(n + 1)
		return g / math.Ln2
	}
	var sumLogFact float64
	for _, n := range counts {
		m += float64(n)
		sumLogFact += logFact(float64(n))
	}
	return logFact(m) - sumLogFact
}
