// Package lznt1 implements the LZNT1 decoder used by SMB2 compression.
package lznt1

import (
	"encoding/binary"
	"errors"
)

var (
	ErrUnexpectedEOF = errors.New("lznt1: unexpected end of stream")
	ErrInvalidOffset = errors.New("lznt1: lookback offset out of bounds")
	ErrInputTooShort = errors.New("lznt1: input buffer too short for expected data")
	ErrOutputLimit   = errors.New("lznt1: output exceeds limit")
)

const (
	minMatch             = 3
	chunkSizeMask        = uint16(0x0fff) // Chunk size minus one
	chunkCompressedFlag  = uint16(0x8000)
	tagGroupSize         = 8  // Items per tag byte
	initialSplit         = 12 // Length bits of a tuple at the start of a chunk
	initialSplitBoundary = 16 // Decoded chunk size at which the split first moves
)

// output is the decoded buffer with its size limit.
type output struct {
	buf   []byte
	limit int
}

func (o *output) grow(n int) error {
	if o.limit > 0 && len(o.buf)+n > o.limit {
		return ErrOutputLimit
	}
	return nil
}

// Decompress decodes an LZNT1 stream made of chunks, each prefixed by a
// 2-byte header. A zero header or a single trailing zero byte ends the
// stream. If `limit` > 0, the output may not grow beyond limit bytes.
func Decompress(src []byte, limit int) ([]byte, error) {
	out := &output{limit: limit}
	if limit > 0 {
		out.buf = make([]byte, 0, min(limit, 8*len(src)))
	}

	pos := 0
	for pos < len(src) {
		if pos+1 == len(src) && src[pos] == 0 {
			break
		}

		if pos+2 > len(src) {
			return nil, ErrUnexpectedEOF
		}

		header := binary.LittleEndian.Uint16(src[pos:])
		pos += 2
		if header == 0 {
			break
		}

		size := int(header&chunkSizeMask) + 1
		if pos+size > len(src) {
			return nil, ErrInputTooShort
		}

		chunk := src[pos : pos+size]
		if header&chunkCompressedFlag != 0 {
			if err := out.decodeChunk(chunk); err != nil {
				return nil, err
			}
		} else {
			if err := out.grow(len(chunk)); err != nil {
				return nil, err
			}
			out.buf = append(out.buf, chunk...)
		}

		pos += size
	}

	return out.buf, nil
}

// decodeChunk appends the contents of a compressed chunk.
func (o *output) decodeChunk(src []byte) error {
	start := len(o.buf)

	// Offsets and lengths share a 16-bit tuple. The offset gets more bits
	// as the decoded chunk grows.
	split := initialSplit
	boundary := initialSplitBoundary

	pos := 0
	for pos < len(src) {
		tag := src[pos]
		pos++

		for i := range tagGroupSize {
			if pos >= len(src) {
				return nil
			}

			if (tag>>i)&1 == 0 {
				if err := o.grow(1); err != nil {
					return err
				}
				o.buf = append(o.buf, src[pos])
				pos++
			} else {
				if pos+2 > len(src) {
					return ErrUnexpectedEOF
				}

				tuple := int(binary.LittleEndian.Uint16(src[pos:]))
				pos += 2

				length := tuple&(1<<split-1) + minMatch
				offset := tuple>>split + 1
				if err := o.copyMatch(offset, length); err != nil {
					return err
				}
			}

			for len(o.buf)-start > boundary {
				if split > 0 {
					split--
				}
				boundary <<= 1
			}
		}
	}

	return nil
}

// copyMatch copies length bytes from offset bytes back. The source may
// overlap the bytes being produced.
func (o *output) copyMatch(offset, length int) error {
	if offset > len(o.buf) {
		return ErrInvalidOffset
	}

	if err := o.grow(length); err != nil {
		return err
	}

	pos := len(o.buf) - offset
	for i := range length {
		o.buf = append(o.buf, o.buf[pos+i])
	}

	return nil
}
