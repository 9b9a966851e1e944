package main

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/ha1tch/msc/pkg/rans"
)

// containerMagic identifies a pack output file.
var containerMagic = [4]byte{'M', 'S', 'C', '1'}

// container is the on-disk format a "pack" writes and "unpack" reads: a
// small fixed header (format tag, coder params, element count, run id)
// followed by the serialized rANS state (spec.md §6.3's wire format,
// wrapped with the bookkeeping a standalone file needs that a bare
// in-memory State doesn't carry).
type container struct {
	Params  rans.Params
	Count   uint32
	RunID   uuid.UUID
	StateBytes []byte
}

func writeContainer(c container) ([]byte, error) {
	if err := c.Params.Validate(); err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}
	buf := make([]byte, 0, 4+3*8+4+16+4+len(c.StateBytes))
	buf = append(buf, containerMagic[:]...)
	buf = appendUint64(buf, uint64(c.Params.HeadBits))
	buf = appendUint64(buf, uint64(c.Params.TailBits))
	buf = appendUint64(buf, uint64(c.Params.PrecBits))
	buf = appendUint32(buf, c.Count)
	buf = append(buf, c.RunID[:]...)
	buf = appendUint32(buf, uint32(len(c.StateBytes)))
	buf = append(buf, c.StateBytes...)
	return buf, nil
}

func readContainer(data []byte) (container, error) {
	var c container
	if len(data) < 4 {
		return c, fmt.Errorf("container: truncated header")
	}
	if [4]byte{data[0], data[1], data[2], data[3]} != containerMagic {
		return c, fmt.Errorf("container: not a pack file (bad magic)")
	}
	off := 4

	head, off, err := readUint64(data, off)
	if err != nil {
		return c, err
	}
	tail, off, err := readUint64(data, off)
	if err != nil {
		return c, err
	}
	prec, off, err := readUint64(data, off)
	if err != nil {
		return c, err
	}
	c.Params = rans.Params{HeadBits: uint(head), TailBits: uint(tail), PrecBits: uint(prec)}
	if err := c.Params.Validate(); err != nil {
		return c, fmt.Errorf("container: %w", err)
	}

	count, off, err := readUint32(data, off)
	if err != nil {
		return c, err
	}
	c.Count = count

	if off+16 > len(data) {
		return c, fmt.Errorf("container: truncated run id")
	}
	copy(c.RunID[:], data[off:off+16])
	off += 16

	stateLen, off, err := readUint32(data, off)
	if err != nil {
		return c, err
	}
	if off+int(stateLen) > len(data) {
		return c, fmt.Errorf("container: truncated state")
	}
	c.StateBytes = data[off : off+int(stateLen)]
	return c, nil
}

func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func readUint64(data []byte, off int) (uint64, int, error) {
	if off+8 > len(data) {
		return 0, off, fmt.Errorf("container: truncated field")
	}
	return binary.BigEndian.Uint64(data[off : off+8]), off + 8, nil
}

func readUint32(data []byte, off int) (uint32, int, error) {
	if off+4 > len(data) {
		return 0, off, fmt.Errorf("container: truncated field")
	}
	return binary.BigEndian.Uint32(data[off : off+4]), off + 4, nil
}
