package lz77huff

import (
	"bytes"
	"encoding/binary"
	"math/bits"
	"testing"

	"github.com/icza/bitio"
)

// prefixCode is a canonical Huffman code.
type prefixCode struct {
	code   uint32
	length uint8
}

// streamOp is one symbol of a stream under construction.
type streamOp struct {
	symbol   uint16
	raw      []byte // length extension bytes
	extra    uint32 // offset bits
	extraLen uint8
}

// streamBuilder assembles compressed streams for tests. It lays out the
// 16-bit words and the raw length bytes in the order the decoder reads them.
type streamBuilder struct {
	t       *testing.T
	lengths [symbolCount]uint8
	codes   map[uint16]prefixCode
	ops     []streamOp
	rawAt   []int // positions of the raw bytes in the last bytes() result
}

// newStreamBuilder returns a builder for the given code lengths.
func newStreamBuilder(t *testing.T, lengths map[uint16]uint8) *streamBuilder {
	b := &streamBuilder{t: t, codes: make(map[uint16]prefixCode)}
	for s, l := range lengths {
		b.lengths[s] = l
	}

	var symbols []prefixCodeSymbol
	for s, l := range b.lengths {
		symbols = append(symbols, prefixCodeSymbol{symbol: uint16(s), length: l})
	}
	sortSymbols(symbols)

	var code uint32
	n := uint8(1)
	for _, s := range symbols {
		if s.length == 0 {
			continue
		}
		code <<= s.length - n
		n = s.length
		b.codes[s.symbol] = prefixCode{code: code, length: n}
		code++
	}

	return b
}

// fullLengths assigns a 9-bit code to each of the 512 symbols.
func fullLengths() map[uint16]uint8 {
	lengths := make(map[uint16]uint8, symbolCount)
	for s := range uint16(symbolCount) {
		lengths[s] = 9
	}
	return lengths
}

func (b *streamBuilder) literal(c byte) {
	b.ops = append(b.ops, streamOp{symbol: uint16(c)})
}

func (b *streamBuilder) literals(data []byte) {
	for _, c := range data {
		b.literal(c)
	}
}

func (b *streamBuilder) match(offset, length int) {
	if offset < 1 || offset > 0xffff || length < minMatch || length > 0xffff+minMatch {
		b.t.Fatalf("match offset %d length %d cannot be encoded", offset, length)
	}

	exp := bits.Len(uint(offset)) - 1
	op := streamOp{
		extra:    uint32(offset - 1<<exp),
		extraLen: uint8(exp),
	}

	var lcode int
	switch l := length - minMatch; {
	case l < byteEscape:
		lcode = l
	case l < wordEscape:
		lcode = byteEscape
		op.raw = []byte{byte(l - byteEscape)}
	default:
		lcode = byteEscape
		op.raw = []byte{0xff, byte(l), byte(l >> 8)}
	}

	if exp == 0 && lcode == 0 {
		b.t.Fatalf("match offset %d length %d has the end of stream symbol", offset, length)
	}

	op.symbol = uint16(endOfStream + exp<<offsetExpShift + lcode)
	b.ops = append(b.ops, op)
}

func (b *streamBuilder) end() {
	b.ops = append(b.ops, streamOp{symbol: endOfStream})
}

// table returns the packed code length table.
func (b *streamBuilder) table() []byte {
	table := make([]byte, tableSize)
	for s, l := range b.lengths {
		table[s/2] |= l << (4 * (s % 2))
	}
	return table
}

// bytes returns the compressed stream.
func (b *streamBuilder) bytes() []byte {
	type slot struct {
		word  int
		raw   byte
		isRaw bool
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	slots := []slot{{word: 0}, {word: 1}}
	consumed, loaded := 0, 2

	// advance mirrors bitstream.skip: a word is loaded as soon as fewer
	// than 16 bits remain in the window.
	advance := func(n int) {
		if n == 0 {
			return
		}
		consumed += n
		if 16*loaded-consumed < 16 {
			slots = append(slots, slot{word: loaded})
			loaded++
		}
	}

	for _, op := range b.ops {
		c, ok := b.codes[op.symbol]
		if !ok {
			b.t.Fatalf("symbol %d has no code", op.symbol)
		}

		if err := w.WriteBits(uint64(c.code), c.length); err != nil {
			b.t.Fatal(err)
		}
		for range c.length {
			advance(1)
		}

		for _, r := range op.raw {
			slots = append(slots, slot{raw: r, isRaw: true})
		}

		if op.extraLen > 0 {
			if err := w.WriteBits(uint64(op.extra), op.extraLen); err != nil {
				b.t.Fatal(err)
			}
			advance(int(op.extraLen))
		}
	}

	if err := w.Close(); err != nil {
		b.t.Fatal(err)
	}

	stream := buf.Bytes()
	if len(stream) < 2*loaded {
		stream = append(stream, make([]byte, 2*loaded-len(stream))...)
	}

	out := b.table()
	b.rawAt = b.rawAt[:0]
	for _, s := range slots {
		if s.isRaw {
			b.rawAt = append(b.rawAt, len(out))
			out = append(out, s.raw)
			continue
		}
		word := uint16(stream[2*s.word])<<8 | uint16(stream[2*s.word+1])
		out = binary.LittleEndian.AppendUint16(out, word)
	}

	return out
}

// longestMatch finds the longest earlier occurrence of data[pos:].
func longestMatch(data []byte, pos int) (offset, length int) {
	const maxLength = 0xffff + minMatch
	for off := 1; off <= min(pos, 0xffff); off++ {
		n := 0
		for pos+n < len(data) && n < maxLength && data[pos+n-off] == data[pos+n] {
			n++
		}
		if n > length {
			offset, length = off, n
			if n == maxLength {
				break
			}
		}
	}
	return
}

// encode produces a stream for data using greedy matching over the full
// 512-symbol alphabet.
func encode(t *testing.T, data []byte) []byte {
	b := newStreamBuilder(t, fullLengths())
	for i := 0; i < len(data); {
		offset, length := longestMatch(data, i)
		// Offset 1 with length 3 would be the end of stream symbol.
		if length >= minMatch && (offset > 1 || length > minMatch) {
			b.match(offset, length)
			i += length
			continue
		}
		b.literal(data[i])
		i++
	}
	b.end()
	return b.bytes()
}
