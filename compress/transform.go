package compress

import (
	"encoding/binary"
	"slices"

	"github.com/mike76-dev/xpresshuff/smb2"
	"go.uber.org/zap"
)

// MessageDecoder decompresses SMB2 messages that carry an
// SMB2_COMPRESSION_TRANSFORM_HEADER.
type MessageDecoder struct {
	algorithms []uint16
	maxSize    int
	logger     *zap.SugaredLogger
}

// NewMessageDecoder returns a MessageDecoder accepting the given algorithms.
// COMPRESSION_NONE payloads of chained messages are always accepted.
// maxSize caps the OriginalCompressedSegmentSize; values <= 0 mean DefaultLimit.
func NewMessageDecoder(algorithms []uint16, maxSize int) *MessageDecoder {
	if maxSize <= 0 {
		maxSize = DefaultLimit
	}
	return &MessageDecoder{
		algorithms: slices.Clone(algorithms),
		maxSize:    maxSize,
	}
}

// SetLogger sets the logger for debug output. A nil logger disables it.
func (md *MessageDecoder) SetLogger(logger *zap.SugaredLogger) {
	md.logger = logger
}

// newDecompressor returns a Decompressor sharing the logger.
func (md *MessageDecoder) newDecompressor(algo uint16) *Decompressor {
	d := New(algo)
	d.SetLogger(md.logger)
	return d
}

// Decompress decompresses the received message.
func (md *MessageDecoder) Decompress(msg []byte) ([]byte, error) {
	if err := smb2.Header(msg).Validate(); err != nil {
		return nil, err
	}

	ocss := smb2.Header(msg).OriginalCompressedSegmentSize()
	if uint64(ocss) > uint64(md.maxSize) {
		return nil, smb2.ErrInvalidParameter
	}

	var output []byte
	start := 0
	chained := smb2.Header(msg).CompressionFlags() == smb2.COMPRESSION_CAPABILITIES_FLAG_CHAINED
	if chained {
		offset := smb2.SMB2CompressionPayloadHeaderOffset
		for offset != len(msg) {
			if offset+smb2.SMB2CompressionPayloadHeaderSize > len(msg) {
				return nil, smb2.ErrWrongFormat
			}

			ph := smb2.PayloadHeader(msg[offset:])
			algo := ph.CompressionAlgorithm()
			if algo != smb2.COMPRESSION_NONE && !slices.Contains(md.algorithms, algo) {
				return nil, smb2.ErrInvalidParameter
			}

			length := int(ph.Length())
			payloadStart := offset + smb2.SMB2CompressionPayloadHeaderSize
			if length > len(msg)-payloadStart {
				return nil, smb2.ErrInvalidParameter
			}
			payload := msg[payloadStart : payloadStart+length]

			if md.logger != nil {
				md.logger.Debugf("chained payload at %d: %s, %d bytes", offset, AlgorithmName(algo), length)
			}

			limit := int(ocss) - len(output)
			if limit <= 0 {
				return nil, smb2.ErrWrongLength
			}

			if smb2.HasOriginalPayloadSize(algo) {
				if len(payload) < 4 {
					return nil, smb2.ErrWrongFormat
				}

				ops := binary.LittleEndian.Uint32(payload[:4])
				if uint64(ops) > uint64(limit) {
					return nil, smb2.ErrInvalidParameter
				}

				chunk, err := md.newDecompressor(algo).Decompress(payload[4:], int(ops))
				if err != nil {
					return nil, err
				}

				if uint32(len(chunk)) != ops {
					return nil, smb2.ErrWrongLength
				}

				output = append(output, chunk...)
			} else {
				chunk, err := md.newDecompressor(algo).Decompress(payload, limit)
				if err != nil {
					return nil, err
				}

				output = append(output, chunk...)
			}

			offset = payloadStart + length
		}
	} else {
		start = int(smb2.Header(msg).Offset())
		if start > len(msg)-smb2.SMB2CompressionTransformHeaderSize {
			return nil, smb2.ErrInvalidParameter
		}

		algo := smb2.Header(msg).CompressionAlgorithm()
		if !slices.Contains(md.algorithms, algo) {
			return nil, smb2.ErrInvalidParameter
		}

		if md.logger != nil {
			md.logger.Debugf("unchained payload: %s, %d bytes uncompressed prefix", AlgorithmName(algo), start)
		}

		output = append(output, msg[smb2.SMB2CompressionTransformHeaderSize:smb2.SMB2CompressionTransformHeaderSize+start]...)

		buf, err := md.newDecompressor(algo).Decompress(msg[smb2.SMB2CompressionTransformHeaderSize+start:], int(ocss))
		if err != nil {
			return nil, err
		}

		output = append(output, buf...)
	}

	if uint32(len(output)-start) != ocss {
		return nil, smb2.ErrWrongLength
	}

	if len(output) < smb2.SMB2HeaderSize || !smb2.Header(output).IsSmb2() {
		return nil, smb2.ErrWrongProtocol
	}

	return output, nil
}
