// Package testutil builds compressed test vectors.
package testutil

import (
	"bytes"
	"encoding/binary"

	"github.com/icza/bitio"
)

// LZ77HuffmanLiterals returns an LZ77+Huffman stream that encodes data as
// literals only. Every literal and the end marker get a 9-bit code, so the
// code of literal b is b itself and the end marker is 100000000.
func LZ77HuffmanLiterals(data []byte) []byte {
	out := make([]byte, 256, 256+4+len(data)*9/8+4)
	for i := 0; i < 128; i++ {
		out[i] = 0x99
	}
	out[128] = 0x09

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	for _, b := range data {
		w.TryWriteBits(uint64(b), 9)
	}
	w.TryWriteBits(0x100, 9)
	if w.TryError != nil {
		panic(w.TryError)
	}
	if err := w.Close(); err != nil {
		panic(err)
	}

	// The decoder holds 16 to 32 bits in its window, so it reads one word
	// past the last bit it consumes.
	consumed := 9 * (len(data) + 1)
	words := max(2, (consumed+15)/16+1)

	stream := buf.Bytes()
	stream = append(stream, make([]byte, 2*words-len(stream))...)
	for i := range words {
		out = binary.LittleEndian.AppendUint16(out, binary.BigEndian.Uint16(stream[2*i:]))
	}

	return out
}
