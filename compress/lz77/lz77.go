// Package lz77 implements the decoder of the plain LZ77 compression
// algorithm as specified in MS-XCA.
package lz77

import (
	"encoding/binary"
	"errors"
)

var (
	ErrInvalidFormat = errors.New("lz77: invalid compressed stream")
	ErrUnexpectedEOF = errors.New("lz77: unexpected end of stream")
	ErrInvalidOffset = errors.New("lz77: invalid match offset")
	ErrOutputLimit   = errors.New("lz77: output exceeds limit")
)

const (
	minMatch = 3

	// Lengths below these values fit into the token or the nibble.
	tokenLengthMax  = 7
	nibbleLengthMax = 15
)

// reader reads the flag words, tokens and length extensions of a stream.
type reader struct {
	src []byte
	pos int

	// A nibble byte serves two matches: the low nibble first, then the high
	// one for the next match that needs it.
	nibble     byte
	haveNibble bool
}

func (r *reader) u8() (byte, error) {
	if r.pos >= len(r.src) {
		return 0, ErrUnexpectedEOF
	}
	b := r.src[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) u16() (uint16, error) {
	if r.pos+2 > len(r.src) {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint16(r.src[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.pos+4 > len(r.src) {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.src[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) done() bool {
	return r.pos >= len(r.src)
}

// matchLength decodes the length of a match whose token carries baseLen.
func (r *reader) matchLength(baseLen int) (int, error) {
	if baseLen < tokenLengthMax {
		return baseLen + minMatch, nil
	}

	var nib int
	if r.haveNibble {
		nib = int(r.nibble >> 4)
		r.haveNibble = false
	} else {
		b, err := r.u8()
		if err != nil {
			return 0, err
		}
		r.nibble = b
		r.haveNibble = true
		nib = int(b & 0x0f)
	}

	if nib < nibbleLengthMax {
		return nib + tokenLengthMax + minMatch, nil
	}

	b, err := r.u8()
	if err != nil {
		return 0, err
	}

	if b < 0xff {
		return int(b) + nibbleLengthMax + tokenLengthMax + minMatch, nil
	}

	// The 16-bit value, or the 32-bit value following a zero, holds the
	// length minus 3.
	v16, err := r.u16()
	if err != nil {
		return 0, err
	}

	m := uint32(v16)
	if v16 == 0 {
		if m, err = r.u32(); err != nil {
			return 0, err
		}
	}

	if m < nibbleLengthMax+tokenLengthMax {
		return 0, ErrInvalidFormat
	}

	return int(m) + minMatch, nil
}

// Decompress decodes src into a new buffer.
// If `limit` > 0, the output may not grow beyond limit bytes.
func Decompress(src []byte, limit int) ([]byte, error) {
	r := &reader{src: src}
	var dst []byte
	if limit > 0 {
		dst = make([]byte, 0, min(limit, 8*len(src)))
	}

	var flags uint32
	flagCount := 0
	for {
		if flagCount == 0 {
			// The stream may end at a flag word boundary.
			if r.done() {
				return dst, nil
			}

			f, err := r.u32()
			if err != nil {
				return nil, err
			}
			flags, flagCount = f, 32
		}

		flagCount--
		if (flags>>flagCount)&1 == 0 {
			b, err := r.u8()
			if err != nil {
				return nil, err
			}

			if limit > 0 && len(dst) >= limit {
				return nil, ErrOutputLimit
			}
			dst = append(dst, b)
			continue
		}

		// A match flag with no input left ends the stream.
		if r.done() {
			return dst, nil
		}

		token, err := r.u16()
		if err != nil {
			return nil, err
		}

		offset := int(token>>3) + 1
		if offset > len(dst) {
			return nil, ErrInvalidOffset
		}

		length, err := r.matchLength(int(token & 7))
		if err != nil {
			return nil, err
		}

		if limit > 0 && len(dst)+length > limit {
			return nil, ErrOutputLimit
		}

		pos := len(dst) - offset
		for i := range length {
			dst = append(dst, dst[pos+i])
		}
	}
}
