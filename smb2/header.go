package smb2

import (
	"encoding/binary"
	"errors"
)

const (
	PROTOCOL_SMB             = 0x424d53ff
	PROTOCOL_SMB2            = 0x424d53fe
	PROTOCOL_SMB2_ENCRYPTED  = 0x424d53fd
	PROTOCOL_SMB2_COMPRESSED = 0x424d53fc
)

var (
	ErrEncryptedMessage = errors.New("message encryption not supported")
	ErrWrongLength      = errors.New("wrong data length")
	ErrWrongFormat      = errors.New("wrong data format")
	ErrWrongProtocol    = errors.New("unsupported protocol")
	ErrInvalidParameter = errors.New("wrong parameter supplied")
)

const (
	SMB2HeaderSize = 64

	SMB2CompressionTransformHeaderSize  = 16
	SMB2CompressionPayloadHeaderOffset  = 8
	SMB2CompressionPayloadHeaderSize    = 8
	SMB2CompressionPatternV1PayloadSize = 8
)

// Header extends the raw byte sequence with SMB functionality.
type Header []byte

// ProtocolID returns the ProtocolID of the header.
func (h Header) ProtocolID() uint32 {
	return binary.LittleEndian.Uint32(h[:4])
}

// SetProtocolID sets the ProtocolID of the header.
func (h Header) SetProtocolID(id uint32) {
	binary.LittleEndian.PutUint32(h[:4], id)
}

// IsSmb2 returns true if the SMB2 signature is detected in the header.
func (h Header) IsSmb2() bool {
	return len(h) >= 4 && h.ProtocolID() == PROTOCOL_SMB2
}

// IsCompressed returns true if the message starts with an
// SMB2_COMPRESSION_TRANSFORM_HEADER.
func (h Header) IsCompressed() bool {
	return len(h) >= 4 && h.ProtocolID() == PROTOCOL_SMB2_COMPRESSED
}

// Validate returns an error if the message cannot carry an
// SMB2_COMPRESSION_TRANSFORM_HEADER.
func (h Header) Validate() error {
	if len(h) < 4 {
		return ErrWrongLength
	}

	switch h.ProtocolID() {
	case PROTOCOL_SMB2_COMPRESSED:
		if len(h) < SMB2CompressionTransformHeaderSize {
			return ErrWrongLength
		}
		return nil

	case PROTOCOL_SMB2_ENCRYPTED:
		return ErrEncryptedMessage

	default:
		return ErrWrongProtocol
	}
}
