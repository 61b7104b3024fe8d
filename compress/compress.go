package compress

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mike76-dev/xpresshuff/compress/lz77"
	"github.com/mike76-dev/xpresshuff/compress/lz77huff"
	"github.com/mike76-dev/xpresshuff/compress/lznt1"
	"github.com/mike76-dev/xpresshuff/smb2"
	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedAlgorithm = errors.New("compress: unsupported compression algorithm")
	ErrOutputLimit          = errors.New("compress: output exceeds limit")
)

// DefaultLimit is the output limit used when the caller passes none.
const DefaultLimit = lz77huff.DefaultOutputLimit

// algorithmNames maps configuration names to algorithm IDs.
var algorithmNames = map[string]uint16{
	"none":         smb2.COMPRESSION_NONE,
	"lznt1":        smb2.COMPRESSION_LZNT1,
	"lz77":         smb2.COMPRESSION_LZ77,
	"lz77+huffman": smb2.COMPRESSION_LZ77_HUFFMAN,
	"pattern_v1":   smb2.COMPRESSION_PATTERN_V1,
	"lz4":          smb2.COMPRESSION_LZ4,
}

// ParseAlgorithm returns the algorithm ID for the given name.
func ParseAlgorithm(name string) (uint16, error) {
	algo, ok := algorithmNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return algo, nil
}

// AlgorithmName returns the name of the algorithm.
func AlgorithmName(algo uint16) string {
	for name, id := range algorithmNames {
		if id == algo {
			return name
		}
	}
	return fmt.Sprintf("unknown (%#04x)", algo)
}

// Decompressor performs decompression of data.
type Decompressor struct {
	algorithm uint16
	logger    *zap.SugaredLogger
}

// New returns an initialized Decompressor.
func New(algo uint16) *Decompressor {
	return &Decompressor{algorithm: algo}
}

// SetLogger sets the logger for debug output. A nil logger disables it.
func (d *Decompressor) SetLogger(logger *zap.SugaredLogger) {
	d.logger = logger
}

// Decompress decompresses the provided input.
// If `limit` > 0, it enforces a maximum output size, otherwise DefaultLimit applies.
func (d *Decompressor) Decompress(src []byte, limit int) (dst []byte, err error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if d.logger != nil {
		d.logger.Debugf("decompressing %d bytes (%s): %s", len(src), AlgorithmName(d.algorithm), hexPrefix(src, 32))
	}

	switch d.algorithm {
	case smb2.COMPRESSION_NONE:
		if len(src) > limit {
			return nil, ErrOutputLimit
		}
		dst = append([]byte(nil), src...)

	case smb2.COMPRESSION_LZNT1:
		dst, err = lznt1.Decompress(src, limit)

	case smb2.COMPRESSION_LZ77:
		dst, err = lz77.Decompress(src, limit)

	case smb2.COMPRESSION_LZ77_HUFFMAN:
		dst, err = lz77huff.Decompress(src, limit)

	case smb2.COMPRESSION_LZ4:
		dst, err = decompressLZ4(src, limit)

	case smb2.COMPRESSION_PATTERN_V1:
		var v1 smb2.PatternV1
		if err = v1.Unmarshal(src); err == nil {
			dst, err = ExpandPatternV1(v1, limit)
		}

	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, AlgorithmName(d.algorithm))
	}

	if err != nil {
		if d.logger != nil {
			d.logger.Debugf("decompression failed (%s): %v", AlgorithmName(d.algorithm), err)
		}
		return nil, err
	}

	if d.logger != nil {
		d.logger.Debugf("decompressed %d bytes into %d bytes", len(src), len(dst))
	}

	return dst, nil
}

// decompressLZ4 decodes a raw LZ4 block. The block does not carry its
// decoded size, so the buffer is doubled until the block fits or the limit
// is reached.
func decompressLZ4(src []byte, limit int) ([]byte, error) {
	size := min(limit, max(4*len(src), 64))
	for {
		buf := make([]byte, size)
		n, err := lz4.UncompressBlock(src, buf)
		if err == nil {
			return buf[:n], nil
		}

		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) || size == limit {
			return nil, fmt.Errorf("compress: lz4: %w", err)
		}

		size = min(2*size, limit)
	}
}

// hexPrefix returns the hex encoding of at most n leading bytes of b.
func hexPrefix(b []byte, n int) string {
	if len(b) <= n {
		return hex.EncodeToString(b)
	}
	return hex.EncodeToString(b[:n]) + "..."
}
