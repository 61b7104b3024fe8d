package lz77

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecompress(t *testing.T) {
	alphabet := []byte("abcdefghijklmnopqrstuvwxyz")

	tests := []struct {
		name string
		src  []byte
		want []byte
	}{
		{"empty", nil, nil},
		{
			"literals",
			append([]byte{0x3f, 0x00, 0x00, 0x00}, alphabet...),
			alphabet,
		},
		{
			"16-bit length",
			[]byte{0xff, 0xff, 0xff, 0x1f, 'a', 'b', 'c', 0x17, 0x00, 0x0f, 0xff, 0x26, 0x01},
			bytes.Repeat([]byte("abc"), 100),
		},
		{
			// Two matches share the nibble byte 0x21: 11 and 12 bytes.
			"shared nibble",
			[]byte{0xff, 0xff, 0xff, 0x7f, 'a', 0x07, 0x00, 0x21, 0x07, 0x00},
			bytes.Repeat([]byte{'a'}, 24),
		},
		{
			"8-bit length",
			[]byte{0xff, 0xff, 0xff, 0x7f, 'a', 0x07, 0x00, 0x0f, 0x05},
			bytes.Repeat([]byte{'a'}, 1+30),
		},
		{
			"32-bit length",
			[]byte{0xff, 0xff, 0xff, 0x7f, 'a', 0x07, 0x00, 0x0f, 0xff, 0x00, 0x00, 0xe8, 0x03, 0x00, 0x00},
			bytes.Repeat([]byte{'a'}, 1+1003),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompress(tt.src, 0)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecompressErrors(t *testing.T) {
	abc := []byte{0xff, 0xff, 0xff, 0x1f, 'a', 'b', 'c', 0x17, 0x00, 0x0f, 0xff, 0x26, 0x01}

	tests := []struct {
		name  string
		src   []byte
		limit int
		want  error
	}{
		{"short flags", []byte{0x00, 0x00}, 0, ErrUnexpectedEOF},
		{"missing literal", []byte{0x00, 0x00, 0x00, 0x00}, 0, ErrUnexpectedEOF},
		{"short token", []byte{0xff, 0xff, 0xff, 0x7f, 'a', 0x07}, 0, ErrUnexpectedEOF},
		{"offset before output", []byte{0xff, 0xff, 0xff, 0x7f, 'a', 0x08, 0x00}, 0, ErrInvalidOffset},
		{"missing nibble", []byte{0xff, 0xff, 0xff, 0x7f, 'a', 0x07, 0x00}, 0, ErrUnexpectedEOF},
		{"short 32-bit length", []byte{0xff, 0xff, 0xff, 0x7f, 'a', 0x07, 0x00, 0x0f, 0xff, 0x00, 0x00, 0xe8}, 0, ErrUnexpectedEOF},
		{"length too small", []byte{0xff, 0xff, 0xff, 0x7f, 'a', 0x07, 0x00, 0x0f, 0xff, 0x10, 0x00}, 0, ErrInvalidFormat},
		{"literal limit", abc, 2, ErrOutputLimit},
		{"match limit", abc, 299, ErrOutputLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Decompress(tt.src, tt.limit)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got error %v, want %v", err, tt.want)
			}
			if out != nil {
				t.Errorf("got %d bytes of output along with an error", len(out))
			}
		})
	}
}

func TestDecompressLimit(t *testing.T) {
	src := []byte{0xff, 0xff, 0xff, 0x1f, 'a', 'b', 'c', 0x17, 0x00, 0x0f, 0xff, 0x26, 0x01}
	got, err := Decompress(src, 300)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 300 {
		t.Errorf("got %d bytes, want 300", len(got))
	}
}
