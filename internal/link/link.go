// Package link abstracts the two physical transports the panel speaks over
// (a local serial device or a raw TCP bridge) behind one read/write-frame
// contract, handling per-transport read timeouts, discard-until-sync framing
// recovery, the 60-second mid-frame guard, and reconnect-with-backoff.
package link

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/nx584/panelgw/internal/frame"
)

// Protocol selects the wire encoding for a connection. It is fixed for the
// lifetime of a Conn/Manager; the two encodings are never mixed mid-stream.
type Protocol int

const (
	ASCII Protocol = iota
	Binary
)

func (p Protocol) String() string {
	if p == Binary {
		return "binary"
	}
	return "ascii"
}

// midFrameGuard is the maximum time a partially-received frame may sit in
// the buffer before the connection is declared lost. A var, not a const,
// so tests can shrink it instead of sleeping 60+ real seconds.
var midFrameGuard = 60 * time.Second

// rawIO is the minimal transport surface a Conn needs: timeout-bounded
// reads, best-effort writes, and a way to release the underlying handle.
type rawIO interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// classifyFunc maps a raw Read result to nil (data, keep going),
// ErrReadTimeout, or ErrConnectionLost. Each transport supplies its own
// (serial and TCP disagree on what a timeout looks like at the syscall
// level).
type classifyFunc func(n int, err error) error

// Conn is one live connection: a transport plus frame accumulation state.
// It is not reconnect-aware; Manager owns reconnection.
type Conn struct {
	io       rawIO
	classify classifyFunc
	protocol Protocol
	log      *slog.Logger

	buf       bytes.Buffer
	syncingAt time.Time // zero until the start byte of a frame has been seen
}

func newConn(io rawIO, classify classifyFunc, protocol Protocol, log *slog.Logger) *Conn {
	return &Conn{io: io, classify: classify, protocol: protocol, log: log}
}

// Close releases the underlying transport.
func (c *Conn) Close() error { return c.io.Close() }

// ReadFrame blocks until one complete, checksum-verified frame has been
// received, ErrReadTimeout if the transport's read timeout elapsed with no
// complete frame pending, or ErrConnectionLost if the connection must be
// torn down (fatal transport error, framing violation, or mid-frame guard
// expiry).
func (c *Conn) ReadFrame() (frame.Frame, error) {
	readBuf := make([]byte, 512)
	for {
		raw, ready, ferr := c.tryExtract()
		if ferr != nil {
			return frame.Frame{}, ferr
		}
		if ready {
			c.syncingAt = time.Time{}
			f, err := frame.Decode(raw)
			if err != nil {
				// Checksum mismatch: drop this frame and keep reading (§7c).
				c.log.Warn("frame_decode_error", "error", err)
				continue
			}
			return f, nil
		}

		n, err := c.io.Read(readBuf)
		if cerr := c.classify(n, err); cerr != nil {
			if cerr == ErrReadTimeout && !c.syncingAt.IsZero() && time.Since(c.syncingAt) > midFrameGuard {
				return frame.Frame{}, ErrConnectionLost
			}
			return frame.Frame{}, cerr
		}
		if n > 0 {
			c.buf.Write(readBuf[:n])
		}
	}
}

// tryExtract attempts to pull one complete frame out of the accumulated
// buffer without blocking. ready=false, ferr=nil means "need more bytes".
func (c *Conn) tryExtract() (raw []byte, ready bool, ferr error) {
	if c.protocol == Binary {
		return c.tryExtractBinary()
	}
	return c.tryExtractASCII()
}

func (c *Conn) tryExtractASCII() (raw []byte, ready bool, ferr error) {
	data := c.buf.Bytes()
	lf := bytes.IndexByte(data, '\n')
	if lf < 0 {
		if len(data) > 0 {
			c.log.Warn("ascii_discard", "bytes", len(data))
			c.buf.Reset()
		}
		return nil, false, nil
	}
	if lf > 0 {
		c.log.Warn("ascii_discard", "bytes", lf)
		c.buf.Next(lf)
		data = c.buf.Bytes()
		lf = 0
	}
	if c.syncingAt.IsZero() {
		c.syncingAt = time.Now()
	}
	cr := bytes.IndexByte(data[1:], '\r')
	if cr < 0 {
		return nil, false, nil
	}
	cr++ // index into data, not data[1:]
	hexBody := data[1:cr]
	body, err := frame.DecodeASCIIBody(hexBody)
	c.buf.Next(cr + 1)
	if err != nil {
		c.log.Warn("ascii_frame_error", "error", err)
		return nil, false, nil
	}
	return body, true, nil
}

func (c *Conn) tryExtractBinary() (raw []byte, ready bool, ferr error) {
	data := c.buf.Bytes()
	idx := frame.DiscardUntilBinaryStart(data)
	if idx < 0 {
		if len(data) > 0 {
			c.log.Warn("binary_discard", "bytes", len(data))
			c.buf.Reset()
		}
		return nil, false, nil
	}
	if idx > 0 {
		c.log.Warn("binary_discard", "bytes", idx)
		c.buf.Next(idx)
		data = c.buf.Bytes()
	}
	if c.syncingAt.IsZero() {
		c.syncingAt = time.Now()
	}
	body, consumed, err := frame.ScanBinaryFrame(data)
	switch err {
	case nil:
		c.buf.Next(consumed)
		return body, true, nil
	case frame.ErrNeedMoreData:
		return nil, false, nil
	case frame.ErrUnescapedFlag:
		c.buf.Next(consumed)
		return nil, false, fmt.Errorf("%w: %v", ErrConnectionLost, err)
	default:
		return nil, false, fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
}

// WriteFrame encodes and writes one frame in the connection's protocol.
func (c *Conn) WriteFrame(msgType byte, ackRequired bool, data []byte) error {
	raw, err := frame.Encode(msgType, ackRequired, data)
	if err != nil {
		return err
	}
	var wire []byte
	if c.protocol == Binary {
		wire = frame.EncodeBinary(raw)
	} else {
		wire = frame.EncodeASCII(raw)
	}
	if _, err := c.io.Write(wire); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	return nil
}
