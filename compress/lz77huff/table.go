package lz77huff

import (
	"cmp"
	"slices"
)

const (
	tableSize   = 256 // Packed code length table, two symbols per byte
	symbolCount = 512 // 256 literals, the end marker and 255 match tokens
)

// prefixCodeSymbol pairs a symbol with the length of its Huffman code.
type prefixCodeSymbol struct {
	symbol uint16
	length uint8
}

// parseCodeLengths unpacks the code length table at the start of src.
// The low nibble of byte i holds the length of symbol 2i, the high nibble
// the length of symbol 2i+1. A zero length marks an unused symbol.
func parseCodeLengths(src []byte) ([]prefixCodeSymbol, error) {
	if len(src) < tableSize {
		return nil, ErrTooShortInput
	}

	symbols := make([]prefixCodeSymbol, symbolCount)
	for i, b := range src[:tableSize] {
		symbols[2*i] = prefixCodeSymbol{symbol: uint16(2 * i), length: b & 0x0f}
		symbols[2*i+1] = prefixCodeSymbol{symbol: uint16(2*i + 1), length: b >> 4}
	}

	return symbols, nil
}

// sortSymbols orders the symbols by code length, then by symbol value.
// Canonical code assignment depends on this exact order.
func sortSymbols(symbols []prefixCodeSymbol) {
	slices.SortFunc(symbols, func(a, b prefixCodeSymbol) int {
		if c := cmp.Compare(a.length, b.length); c != 0 {
			return c
		}
		return cmp.Compare(a.symbol, b.symbol)
	})
}
