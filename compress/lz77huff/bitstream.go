package lz77huff

import "encoding/binary"

// bitstream is a 32-bit window over the compressed input. The window is
// refilled 16 bits at a time from little-endian words; bits are consumed
// from the top of the window.
type bitstream struct {
	src   []byte
	pos   int    // next unread input byte
	bits  uint32 // window, valid bits are left-aligned
	count uint   // number of valid bits in the window
}

// newBitstream loads the initial window from the two words at start.
func newBitstream(src []byte, start int) (*bitstream, error) {
	bs := &bitstream{src: src, pos: start}
	hi, err := bs.readUint16()
	if err != nil {
		return nil, err
	}

	lo, err := bs.readUint16()
	if err != nil {
		return nil, err
	}

	bs.bits = uint32(hi)<<16 | uint32(lo)
	bs.count = 32
	return bs, nil
}

// lookup returns the next n bits without consuming them.
// It returns 0 if n is 0 or larger than the number of valid bits.
func (bs *bitstream) lookup(n uint) uint32 {
	if n == 0 || n > bs.count {
		return 0
	}
	return bs.bits >> (32 - n)
}

// skip consumes n bits, pulling in the next word once fewer than 16 bits
// are left. Requests lookup would refuse are ignored.
func (bs *bitstream) skip(n uint) error {
	if n == 0 || n > bs.count {
		return nil
	}

	bs.bits <<= n
	bs.count -= n
	if bs.count < 16 {
		w, err := bs.readUint16()
		if err != nil {
			return err
		}
		bs.bits |= uint32(w) << (16 - bs.count)
		bs.count += 16
	}

	return nil
}

// readByte reads a raw byte at the current input position.
func (bs *bitstream) readByte() (byte, error) {
	if bs.pos >= len(bs.src) {
		return 0, ErrTruncatedBitstream
	}
	b := bs.src[bs.pos]
	bs.pos++
	return b, nil
}

// readUint16 reads a raw little-endian word at the current input position.
func (bs *bitstream) readUint16() (uint16, error) {
	if bs.pos+2 > len(bs.src) {
		return 0, ErrTruncatedBitstream
	}
	v := binary.LittleEndian.Uint16(bs.src[bs.pos : bs.pos+2])
	bs.pos += 2
	return v, nil
}

// consumed reports whether every input byte has been read.
func (bs *bitstream) consumed() bool {
	return bs.pos == len(bs.src)
}
