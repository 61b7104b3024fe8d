// Package lz77huff implements the decoder of the LZ77+Huffman compression
// algorithm as specified in MS-XCA.
//
// A compressed stream starts with a 256-byte table of 4-bit Huffman code
// lengths for 512 symbols, followed by the Huffman-coded bit stream read in
// little-endian 16-bit words. Symbols 0-255 are literals, 256 ends the
// stream, and 257-511 are matches copying earlier output.
package lz77huff

import (
	"errors"
	"fmt"
)

var (
	ErrTooShortInput           = errors.New("lz77huff: input too short")
	ErrTreeOverflow            = errors.New("lz77huff: prefix code tree overflow")
	ErrInvalidTreeNode         = errors.New("lz77huff: invalid prefix code tree node")
	ErrTruncatedBitstream      = errors.New("lz77huff: unexpected end of stream")
	ErrBackReferenceOutOfRange = errors.New("lz77huff: match offset out of range")
	ErrIncompleteDecode        = errors.New("lz77huff: input does not end at the end of stream marker")
	ErrInputTooLarge           = errors.New("lz77huff: input too large")
	ErrOutputLimit             = errors.New("lz77huff: output exceeds limit")
)

const (
	// MaxInputSize is the largest compressed input Decompress accepts.
	MaxInputSize = 16 << 20

	// DefaultOutputLimit caps the output when the caller passes no limit.
	DefaultOutputLimit = 64 << 20

	headerSize = tableSize + 4 // Code length table and the initial bit window
)

// decoder holds the state of one Decompress call.
type decoder struct {
	tree  *prefixCodeTree
	bs    *bitstream
	out   []byte
	limit int
}

// Decompress decodes src into a new buffer.
// If limit > 0, the output may not grow beyond limit bytes; otherwise
// DefaultOutputLimit applies. On error no output is returned.
func Decompress(src []byte, limit int) ([]byte, error) {
	if len(src) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(src))
	}

	if len(src) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrTooShortInput, len(src), headerSize)
	}

	if limit <= 0 {
		limit = DefaultOutputLimit
	}

	symbols, err := parseCodeLengths(src)
	if err != nil {
		return nil, err
	}
	sortSymbols(symbols)

	tree, err := buildTree(symbols)
	if err != nil {
		return nil, err
	}

	bs, err := newBitstream(src, tableSize)
	if err != nil {
		return nil, err
	}

	d := &decoder{
		tree:  tree,
		bs:    bs,
		out:   make([]byte, 0, min(limit, 4*len(src))),
		limit: limit,
	}

	if err := d.run(); err != nil {
		return nil, err
	}

	return d.out, nil
}

// run decodes symbols until the end of stream marker.
func (d *decoder) run() error {
	for {
		sym, err := d.tree.decodeSymbol(d.bs)
		if errors.Is(err, ErrTruncatedBitstream) {
			return fmt.Errorf("%w: %w", ErrIncompleteDecode, err)
		} else if err != nil {
			return err
		}

		switch {
		case sym < endOfStream:
			if len(d.out) >= d.limit {
				return ErrOutputLimit
			}
			d.out = append(d.out, byte(sym))

		case sym == endOfStream:
			if !d.bs.consumed() {
				return fmt.Errorf("%w: %d bytes left after it", ErrIncompleteDecode, len(d.bs.src)-d.bs.pos)
			}
			return nil

		default:
			if err := d.match(sym - endOfStream); err != nil {
				return err
			}
		}
	}
}

// match decodes the offset and length of a match token and copies the
// referenced bytes. The copy may overlap the bytes it produces.
func (d *decoder) match(v uint16) error {
	exp := uint(v >> offsetExpShift)
	offset := 1<<exp + int(d.bs.lookup(exp))

	ml, err := readMatchLength(v&lengthCodeMask, d.bs)
	if err != nil {
		return err
	}

	// The offset bits are already in the window; consuming them may
	// refill it from behind the raw length bytes.
	if err := d.bs.skip(exp); err != nil {
		return err
	}

	if offset > len(d.out) {
		return fmt.Errorf("%w: offset %d, %d bytes decoded", ErrBackReferenceOutOfRange, offset, len(d.out))
	}

	length := ml.copyLength()
	if len(d.out)+length > d.limit {
		return ErrOutputLimit
	}

	pos := len(d.out) - offset
	for i := range length {
		d.out = append(d.out, d.out[pos+i])
	}

	return nil
}
