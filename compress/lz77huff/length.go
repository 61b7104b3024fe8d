package lz77huff

// lengthTier tells how a match length was encoded.
type lengthTier uint8

const (
	tierShort lengthTier = iota // 4-bit code taken from the match symbol
	tierByte                    // code 15 followed by one raw byte
	tierWord                    // code 15, byte 0xff, then a raw uint16
)

const (
	minMatch       = 3   // Shortest match the format can encode
	byteEscape     = 15  // Length code announcing an extension byte
	wordEscape     = 270 // byteEscape plus an extension byte of 0xff
	lengthCodeMask = 0x0f
	offsetExpShift = 4
	endOfStream    = 256
)

// matchLength is a decoded match length before the minMatch bias is added.
type matchLength struct {
	tier  lengthTier
	value int
}

// copyLength returns the number of bytes the match copies.
func (m matchLength) copyLength() int {
	return m.value + minMatch
}

// readMatchLength decodes the length of a match whose symbol carries the
// 4-bit length code lcode. Extension bytes are read raw from the input,
// not from the bit window.
func readMatchLength(lcode uint16, bs *bitstream) (matchLength, error) {
	if lcode < byteEscape {
		return matchLength{tier: tierShort, value: int(lcode)}, nil
	}

	b, err := bs.readByte()
	if err != nil {
		return matchLength{}, err
	}

	v := int(b) + byteEscape
	if v != wordEscape {
		return matchLength{tier: tierByte, value: v}, nil
	}

	w, err := bs.readUint16()
	if err != nil {
		return matchLength{}, err
	}

	return matchLength{tier: tierWord, value: int(w)}, nil
}
