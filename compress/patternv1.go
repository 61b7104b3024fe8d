package compress

import (
	"bytes"

	"github.com/mike76-dev/xpresshuff/smb2"
)

// ExpandPatternV1 returns the byte sequence described by a
// SMB2_COMPRESSION_PATTERN_PAYLOAD_V1 structure.
func ExpandPatternV1(p smb2.PatternV1, limit int) ([]byte, error) {
	if limit > 0 && uint64(p.Repetitions) > uint64(limit) {
		return nil, ErrOutputLimit
	}

	return bytes.Repeat([]byte{p.Pattern}, int(p.Repetitions)), nil
}
