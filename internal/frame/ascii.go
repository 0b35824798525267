package frame

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrOddHex is returned when an ASCII frame body has an odd number of hex
// digits between LF and CR.
var ErrOddHex = errors.New("frame: odd hex digit count")

const (
	asciiStart = '\n' // LF
	asciiEnd   = '\r' // CR
)

// EncodeASCII wraps a raw frame body (as returned by Encode) in the ASCII
// wire envelope: LF, two uppercase hex digits per body byte, CR.
func EncodeASCII(raw []byte) []byte {
	out := make([]byte, 0, 2+len(raw)*2)
	out = append(out, asciiStart)
	hexBytes := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(hexBytes, raw)
	out = append(out, bytes.ToUpper(hexBytes)...)
	out = append(out, asciiEnd)
	return out
}

// DecodeASCIIBody hex-decodes the text between a frame's LF and CR (neither
// delimiter included) back into the raw body Decode expects.
func DecodeASCIIBody(hexBody []byte) ([]byte, error) {
	if len(hexBody)%2 != 0 {
		return nil, ErrOddHex
	}
	raw := make([]byte, hex.DecodedLen(len(hexBody)))
	if _, err := hex.Decode(raw, hexBody); err != nil {
		return nil, fmt.Errorf("frame: decode ascii body: %w", err)
	}
	return raw, nil
}

// SplitASCIIFrames scans buf for complete LF...CR frames, returning each
// frame's hex body (exclusive of the delimiters) and the number of bytes of
// buf consumed (including any garbage discarded before the first LF).
// Bytes between one frame's CR and the next LF are discarded; callers that
// want to log the discard should inspect the gap themselves before calling
// this, since SplitASCIIFrames only reports how much was consumed.
func SplitASCIIFrames(buf []byte) (bodies [][]byte, consumed int) {
	for {
		start := bytes.IndexByte(buf[consumed:], asciiStart)
		if start < 0 {
			return bodies, consumed
		}
		start += consumed
		end := bytes.IndexByte(buf[start+1:], asciiEnd)
		if end < 0 {
			return bodies, consumed
		}
		end += start + 1
		bodies = append(bodies, buf[start+1:end])
		consumed = end + 1
	}
}
