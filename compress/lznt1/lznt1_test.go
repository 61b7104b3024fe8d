package lznt1

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"testing"
)

// rawChunks stores data in uncompressed chunks of at most 4096 bytes.
func rawChunks(data []byte) []byte {
	var out []byte
	for len(data) > 0 {
		n := min(len(data), 4096)
		out = binary.LittleEndian.AppendUint16(out, 0x3000|uint16(n-1))
		out = append(out, data[:n]...)
		data = data[n:]
	}
	return append(out, 0x00, 0x00)
}

func TestDecompress(t *testing.T) {
	random := make([]byte, 10000)
	rand.Read(random)

	// 'a' 'b' 'c' and a tuple of offset 3, length 9.
	abc := []byte{0x05, 0xb0, 0x08, 'a', 'b', 'c', 0x06, 0x20}

	// Once more than 16 bytes are decoded the tuple has 11 length bits, so
	// 0x1003 means offset 3, length 6.
	var split []byte
	split = append(split, 0x00)
	split = append(split, "abcdefgh"...)
	split = append(split, 0x00)
	split = append(split, "ijklmnop"...)
	split = append(split, 0x10, 'q', 'r', 's', 't', 0x03, 0x10)
	split = append(binary.LittleEndian.AppendUint16(nil, 0xb000|uint16(len(split)-1)), split...)

	tests := []struct {
		name string
		src  []byte
		want []byte
	}{
		{"empty", nil, nil},
		{"raw chunks", rawChunks(random), random},
		{"compressed chunk", abc, bytes.Repeat([]byte("abc"), 4)},
		{"mixed chunks", append(rawChunks([]byte("xyz"))[:5], abc...), []byte("xyzabcabcabcabc")},
		{"trailing zero byte", append(append([]byte{}, abc...), 0x00), bytes.Repeat([]byte("abc"), 4)},
		{"split moves", split, []byte("abcdefghijklmnopqrstrstrst")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompress(tt.src, 0)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Error("output does not match input")
			}
		})
	}
}

func TestDecompressErrors(t *testing.T) {
	abc := []byte{0x05, 0xb0, 0x08, 'a', 'b', 'c', 0x06, 0x20}

	tests := []struct {
		name  string
		src   []byte
		limit int
		want  error
	}{
		{"short header", []byte{0x05}, 0, ErrUnexpectedEOF},
		{"short chunk", abc[:5], 0, ErrInputTooShort},
		{"short tuple", []byte{0x01, 0xb0, 0x01, 0x06}, 0, ErrUnexpectedEOF},
		{"offset before output", []byte{0x02, 0xb0, 0x01, 0x06, 0x20}, 0, ErrInvalidOffset},
		{"raw chunk limit", rawChunks(make([]byte, 100)), 99, ErrOutputLimit},
		{"literal limit", abc, 2, ErrOutputLimit},
		{"match limit", abc, 11, ErrOutputLimit},
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
	data := make([]byte, 5000)
	rand.Read(data)

	got, err := Decompress(rawChunks(data), len(data))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("output does not match input")
	}
}
