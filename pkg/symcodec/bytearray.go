package symcodec

import (
	"fmt"

	"github.com/ha1tch/msc/pkg/rans"
)

// ByteArrayCodec encodes a []byte by prepending its length (via Uniform
// over 0..MaxLen) and then each byte (via Uniform(256)) — spec §4.5.
//
// Because a rANS state is a LIFO stack, the push order must be the exact
// reverse of the pop order Decode needs: bytes are pushed in forward
// index order (so the last byte ends up on top), then the length is
// pushed last, on top of everything — so Decode can pop the length
// first and then unwind the bytes from the end back to the start.
type ByteArrayCodec struct {
	MaxLen int
	bytes  *UniformCodec
	length *UniformCodec
}

// ByteArray returns a codec for byte slices no longer than maxLen.
func ByteArray(maxLen int) *ByteArrayCodec {
	return &ByteArrayCodec{MaxLen: maxLen, bytes: Uniform(256), length: Uniform(maxLen + 1)}
}

func (b *ByteArrayCodec) Encode(st *rans.State, lane int, sym []byte) error {
	if len(sym) > b.MaxLen {
		return fmt.Errorf("symcodec: byte array length %d exceeds max %d", len(sym), b.MaxLen)
	}
	for i := 0; i < len(sym); i++ {
		if err := b.bytes.Encode(st, lane, int(sym[i])); err != nil {
			return err
		}
	}
	return b.length.Encode(st, lane, len(sym))
}

func (b *ByteArrayCodec) Decode(st *rans.State, lane int) ([]byte, error) {
	n, err := b.length.Decode(st, lane)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		v, err := b.bytes.Decode(st, lane)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}
