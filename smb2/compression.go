package smb2

import "encoding/binary"

const (
	// Compression capabilities.
	COMPRESSION_CAPABILITIES_FLAG_NONE    = 0x00000000
	COMPRESSION_CAPABILITIES_FLAG_CHAINED = 0x00000001
)

const (
	// Compression algorithms.
	COMPRESSION_NONE         = 0x0000
	COMPRESSION_LZNT1        = 0x0001
	COMPRESSION_LZ77         = 0x0002
	COMPRESSION_LZ77_HUFFMAN = 0x0003
	COMPRESSION_PATTERN_V1   = 0x0004
	COMPRESSION_LZ4          = 0x0005
)

// OriginalCompressedSegmentSize returns the OriginalCompressedSegmentSize field of
// the SMB2_COMPRESSION_TRANSFORM_HEADER.
func (h Header) OriginalCompressedSegmentSize() uint32 {
	return binary.LittleEndian.Uint32(h[4:8])
}

// SetOriginalCompressedSegmentSize sets the OriginalCompressedSegmentSize field of
// the SMB2_COMPRESSION_TRANSFORM_HEADER.
func (h Header) SetOriginalCompressedSegmentSize(size uint32) {
	binary.LittleEndian.PutUint32(h[4:8], size)
}

// CompressionAlgorithm returns the CompressionAlgorithm field of the unchained
// SMB2_COMPRESSION_TRANSFORM_HEADER.
func (h Header) CompressionAlgorithm() uint16 {
	return binary.LittleEndian.Uint16(h[8:10])
}

// SetCompressionAlgorithm sets the CompressionAlgorithm field of the unchained
// SMB2_COMPRESSION_TRANSFORM_HEADER.
func (h Header) SetCompressionAlgorithm(algo uint16) {
	binary.LittleEndian.PutUint16(h[8:10], algo)
}

// CompressionFlags returns the Flags field of the SMB2_COMPRESSION_TRANSFORM_HEADER.
// For a chained message this is the Flags field of the first payload header.
func (h Header) CompressionFlags() uint16 {
	return binary.LittleEndian.Uint16(h[10:12])
}

// SetCompressionFlags sets the Flags field of the SMB2_COMPRESSION_TRANSFORM_HEADER.
func (h Header) SetCompressionFlags(flags uint16) {
	binary.LittleEndian.PutUint16(h[10:12], flags)
}

// Offset returns the Offset field of the unchained SMB2_COMPRESSION_TRANSFORM_HEADER,
// i.e. the size of the uncompressed data preceding the compressed payload.
func (h Header) Offset() uint32 {
	return binary.LittleEndian.Uint32(h[12:16])
}

// SetOffset sets the Offset field of the unchained SMB2_COMPRESSION_TRANSFORM_HEADER.
func (h Header) SetOffset(offset uint32) {
	binary.LittleEndian.PutUint32(h[12:16], offset)
}

// PayloadHeader is a typecast from SMB2_COMPRESSION_TRANSFORM_HEADER to
// SMB2_COMPRESSION_CHAINED_PAYLOAD_HEADER.
type PayloadHeader []byte

// CompressionAlgorithm returns the CompressionAlgorithm field of the
// SMB2_COMPRESSION_CHAINED_PAYLOAD_HEADER.
func (ph PayloadHeader) CompressionAlgorithm() uint16 {
	return binary.LittleEndian.Uint16(ph[:2])
}

// SetCompressionAlgorithm sets the CompressionAlgorithm field of the
// SMB2_COMPRESSION_CHAINED_PAYLOAD_HEADER.
func (ph PayloadHeader) SetCompressionAlgorithm(algo uint16) {
	binary.LittleEndian.PutUint16(ph[:2], algo)
}

// Flags returns the Flags field of the SMB2_COMPRESSION_CHAINED_PAYLOAD_HEADER.
func (ph PayloadHeader) Flags() uint16 {
	return binary.LittleEndian.Uint16(ph[2:4])
}

// SetFlags sets the Flags field of the SMB2_COMPRESSION_CHAINED_PAYLOAD_HEADER.
func (ph PayloadHeader) SetFlags(flags uint16) {
	binary.LittleEndian.PutUint16(ph[2:4], flags)
}

// Length returns the Length field of the SMB2_COMPRESSION_CHAINED_PAYLOAD_HEADER.
func (ph PayloadHeader) Length() uint32 {
	return binary.LittleEndian.Uint32(ph[4:8])
}

// SetLength sets the Length field of the SMB2_COMPRESSION_CHAINED_PAYLOAD_HEADER.
func (ph PayloadHeader) SetLength(length uint32) {
	binary.LittleEndian.PutUint32(ph[4:8], length)
}

// HasOriginalPayloadSize returns true if the payload starts with an
// OriginalPayloadSize field, which is the case for the actual compression
// algorithms but not for COMPRESSION_NONE and COMPRESSION_PATTERN_V1.
func HasOriginalPayloadSize(algo uint16) bool {
	switch algo {
	case COMPRESSION_LZNT1, COMPRESSION_LZ77, COMPRESSION_LZ77_HUFFMAN, COMPRESSION_LZ4:
		return true
	default:
		return false
	}
}

// PatternV1 represents a SMB2_COMPRESSION_PATTERN_PAYLOAD_V1 structure.
type PatternV1 struct {
	Pattern     uint8
	Repetitions uint32
}

// Marshal converts a PatternV1 structure into a byte sequence.
func (p PatternV1) Marshal() []byte {
	b := make([]byte, SMB2CompressionPatternV1PayloadSize)
	b[0] = p.Pattern
	binary.LittleEndian.PutUint32(b[4:8], p.Repetitions)
	return b
}

// Unmarshal converts a byte sequence into a PatternV1 structure.
func (p *PatternV1) Unmarshal(b []byte) error {
	if len(b) != SMB2CompressionPatternV1PayloadSize {
		return ErrWrongLength
	}
	p.Pattern = b[0]
	p.Repetitions = binary.LittleEndian.Uint32(b[4:8])
	return nil
}
