package link

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nx584/panelgw/internal/frame"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeIO replays a scripted sequence of reads, one per Read call, and
// records every Write.
type fakeIO struct {
	reads   [][]byte // nil entry means "timeout" (n=0, err=nil)
	writes  [][]byte
	closed  bool
	readErr error // returned alongside the final scripted read, if set
}

func (f *fakeIO) Read(p []byte) (int, error) {
	if len(f.reads) == 0 {
		return 0, io.EOF
	}
	next := f.reads[0]
	f.reads = f.reads[1:]
	if next == nil {
		return 0, nil
	}
	n := copy(p, next)
	var err error
	if len(f.reads) == 0 {
		err = f.readErr
	}
	return n, err
}

func (f *fakeIO) Write(p []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeIO) Close() error { f.closed = true; return nil }

func alwaysTimeoutClassify(n int, err error) error {
	if err == nil && n == 0 {
		return ErrReadTimeout
	}
	if err != nil {
		return ErrConnectionLost
	}
	return nil
}

func TestReadFrameASCIIRoundTrip(t *testing.T) {
	raw, _ := frame.Encode(0x28, false, nil)
	wire := frame.EncodeASCII(raw)

	io := &fakeIO{reads: [][]byte{wire}}
	c := newConn(io, alwaysTimeoutClassify, ASCII, testLogger())

	f, err := c.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if f.MsgType != 0x28 {
		t.Fatalf("msgtype = 0x%02X, want 0x28", f.MsgType)
	}
}

func TestReadFrameBinaryRoundTrip(t *testing.T) {
	raw, _ := frame.Encode(0x06, true, []byte{0x01, 0x02, 0x03})
	wire := frame.EncodeBinary(raw)

	io := &fakeIO{reads: [][]byte{wire[:2], wire[2:]}}
	c := newConn(io, alwaysTimeoutClassify, Binary, testLogger())

	f, err := c.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if f.MsgType != 0x06 || !f.AckRequired {
		t.Fatalf("got msgtype=0x%02X ack=%v", f.MsgType, f.AckRequired)
	}
}

func TestReadFrameDiscardsGarbageBeforeSync(t *testing.T) {
	raw, _ := frame.Encode(0x28, false, nil)
	wire := frame.EncodeBinary(raw)
	garbage := []byte{0x01, 0x02, 0x03}

	io := &fakeIO{reads: [][]byte{append(garbage, wire...)}}
	c := newConn(io, alwaysTimeoutClassify, Binary, testLogger())

	f, err := c.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if f.MsgType != 0x28 {
		t.Fatalf("msgtype = 0x%02X, want 0x28", f.MsgType)
	}
}

// TestMidFrameGuardReturnsConnectionLost covers the first half of Scenario
// E: a binary stream delivers a partial frame then stalls past the
// mid-frame guard; ReadFrame must surface ErrConnectionLost rather than
// hang. Reconnection itself is covered by the Manager tests.
func TestMidFrameGuardReturnsConnectionLost(t *testing.T) {
	old := midFrameGuard
	midFrameGuard = 10 * time.Millisecond
	defer func() { midFrameGuard = old }()

	io := &fakeIO{reads: [][]byte{{0x7E, 0x05}, nil, nil, nil}}
	c := newConn(io, alwaysTimeoutClassify, Binary, testLogger())

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		_, err := c.ReadFrame()
		if err == ErrConnectionLost {
			return
		}
		if err != ErrReadTimeout {
			t.Fatalf("got %v, want ErrReadTimeout or ErrConnectionLost", err)
		}
		io.reads = append(io.reads, nil)
	}
	t.Fatal("mid-frame guard never fired")
}

func TestWriteFrameEncodesAndSends(t *testing.T) {
	io := &fakeIO{}
	c := newConn(io, alwaysTimeoutClassify, Binary, testLogger())
	if err := c.WriteFrame(0x28, false, nil); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if len(io.writes) != 1 {
		t.Fatalf("got %d writes, want 1", len(io.writes))
	}
	raw, _ := frame.Encode(0x28, false, nil)
	want := frame.EncodeBinary(raw)
	if string(io.writes[0]) != string(want) {
		t.Fatalf("got % X, want % X", io.writes[0], want)
	}
}
