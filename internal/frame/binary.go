package frame

import (
	"bytes"
	"errors"
)

const (
	binaryStart = 0x7E
	binaryEsc   = 0x7D
	escXor      = 0x20
)

// ErrUnescapedFlag is a framing error: a literal 0x7E appeared inside the
// body of a binary frame (only the leading byte is allowed to be 0x7E
// unescaped).
var ErrUnescapedFlag = errors.New("frame: unescaped 0x7E inside binary frame")

// ErrNeedMoreData signals that buf does not yet contain a complete binary
// frame; the caller should read more bytes and retry from the same offset.
var ErrNeedMoreData = errors.New("frame: incomplete binary frame")

// StuffBinary byte-stuffs a raw frame body (as returned by Encode) for the
// binary wire encoding: 0x7D -> 0x7D 0x5D, 0x7E -> 0x7D 0x5E. The leading
// 0x7E start byte is not part of raw and is added separately by
// EncodeBinary.
func StuffBinary(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for _, b := range raw {
		switch b {
		case binaryEsc:
			out = append(out, binaryEsc, 0x5D)
		case binaryStart:
			out = append(out, binaryEsc, 0x5E)
		default:
			out = append(out, b)
		}
	}
	return out
}

// EncodeBinary wraps a raw frame body in the binary wire envelope: a
// leading unstuffed 0x7E followed by the stuffed body.
func EncodeBinary(raw []byte) []byte {
	out := make([]byte, 0, 1+len(raw)+4)
	out = append(out, binaryStart)
	out = append(out, StuffBinary(raw)...)
	return out
}

// ScanBinaryFrame assumes buf[0] == 0x7E (the caller has already discarded
// up to the start byte) and attempts to unstuff one complete frame body
// from buf[1:]. It returns the unstuffed raw body, the number of bytes of
// buf consumed (including the leading 0x7E), and an error.
//
// ErrNeedMoreData means buf holds a valid-so-far prefix but not a complete
// frame yet; the caller should read more and retry with the same buf
// (after appending). ErrUnescapedFlag means a literal 0x7E appeared inside
// the body; the caller should treat this as a framing error (per spec,
// abort the connection) after consuming the returned byte count so the next
// scan starts at the offending 0x7E.
func ScanBinaryFrame(buf []byte) (body []byte, consumed int, err error) {
	if len(buf) < 1 || buf[0] != binaryStart {
		return nil, 0, errors.New("frame: ScanBinaryFrame requires a leading 0x7E")
	}

	var logical []byte
	i := 1
	for {
		if i >= len(buf) {
			return nil, 0, ErrNeedMoreData
		}
		b := buf[i]
		switch {
		case b == binaryStart:
			// Unescaped 0x7E inside the body: framing error. Consumed
			// excludes this byte so the caller resyncs on it as the next
			// frame's start.
			return nil, i, ErrUnescapedFlag
		case b == binaryEsc:
			if i+1 >= len(buf) {
				return nil, 0, ErrNeedMoreData
			}
			logical = append(logical, buf[i+1]^escXor)
			i += 2
		default:
			logical = append(logical, b)
			i++
		}

		if len(logical) >= 1 {
			need := int(logical[0]) + 3
			if len(logical) > need {
				// Should not happen since we stop exactly at need, but
				// guards against a malformed length shrinking mid-scan.
				return nil, 0, ErrNeedMoreData
			}
			if len(logical) == need {
				return logical, i, nil
			}
		}
	}
}

// DiscardUntilBinaryStart returns the index of the first 0x7E in buf, or -1
// if none is present (the caller should discard the whole buffer but keep
// watching, mirroring the ASCII discard-until-LF rule).
func DiscardUntilBinaryStart(buf []byte) int {
	return bytes.IndexByte(buf, binaryStart)
}
