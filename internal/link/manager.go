package link

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/nx584/panelgw/internal/frame"
)

// linearBackOff implements backoff.BackOff with the spec's reconnect
// policy: start at 10s, grow by 10s per attempt, cap at 60s. Unlike
// cenkalti/backoff's own ExponentialBackOff it never returns backoff.Stop;
// reconnection is retried until it succeeds or the Manager is closed.
type linearBackOff struct {
	cur, step, max time.Duration
}

var _ backoff.BackOff = (*linearBackOff)(nil)

func newLinearBackOff() *linearBackOff {
	return &linearBackOff{cur: 10 * time.Second, step: 10 * time.Second, max: 60 * time.Second}
}

func (b *linearBackOff) NextBackOff() time.Duration {
	d := b.cur
	b.cur += b.step
	if b.cur > b.max {
		b.cur = b.max
	}
	return d
}

func (b *linearBackOff) Reset() { b.cur = 10 * time.Second }

// Dialer opens a fresh Conn. Manager calls it once up front and again on
// every reconnect.
type Dialer func() (*Conn, error)

// Manager owns one logical connection to the panel, transparently
// reconnecting (with the spec's linear backoff) whenever the underlying
// Conn reports ErrConnectionLost. It is not safe for concurrent ReadFrame
// calls (the controller loop is its only reader); WriteFrame may be called
// from the same goroutine that drives ReadFrame.
type Manager struct {
	dial    Dialer
	log     *slog.Logger
	sleepFn func(time.Duration)

	mu        sync.Mutex
	conn      *Conn
	pendingTx []byte // not used: WriteFrame keeps the failed frame in a local and re-sends it once after reconnect
	closed    bool
}

// NewManager dials once synchronously and returns a ready Manager.
func NewManager(dial Dialer, log *slog.Logger) (*Manager, error) {
	conn, err := dial()
	if err != nil {
		return nil, err
	}
	return &Manager{dial: dial, log: log, sleepFn: time.Sleep, conn: conn}, nil
}

// ReadFrame reads one frame, transparently reconnecting on ErrConnectionLost.
// It returns ErrReadTimeout when no frame arrived within the transport's read
// timeout, and ErrConnectionLost only once the Manager has been closed.
func (m *Manager) ReadFrame() (frame.Frame, error) {
	for {
		m.mu.Lock()
		conn := m.conn
		closed := m.closed
		m.mu.Unlock()
		if closed {
			return frame.Frame{}, ErrConnectionLost
		}

		f, err := conn.ReadFrame()
		if err == nil {
			return f, nil
		}
		if err == ErrReadTimeout {
			return frame.Frame{}, ErrReadTimeout
		}
		m.reconnect(conn)
	}
}

// WriteFrame writes one frame synchronously; if the write fails it reconnects
// and re-attempts the same write exactly once (best-effort, per spec §7f).
func (m *Manager) WriteFrame(msgType byte, ackRequired bool, data []byte) error {
	raw, err := frame.Encode(msgType, ackRequired, data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	writeErr := conn.writeRaw(raw)
	if writeErr == nil {
		return nil
	}
	m.log.Warn("outbound_write_failed", "error", writeErr)
	m.reconnect(conn)

	m.mu.Lock()
	conn = m.conn
	m.mu.Unlock()
	return conn.writeRaw(raw)
}

// reconnect closes stale (it may already be closed), sleeps, and redials
// with linear backoff until a new Conn is established. A concurrent caller
// that already observed the reconnect (conn != stale) is a no-op.
func (m *Manager) reconnect(stale *Conn) {
	m.mu.Lock()
	if m.conn != stale {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	_ = stale.Close()
	m.log.Warn("connection_lost_reconnecting")
	m.sleepFn(10 * time.Second)

	policy := newLinearBackOff()
	_ = backoff.Retry(func() error {
		conn, err := m.dial()
		if err != nil {
			m.log.Warn("reconnect_failed", "error", err)
			return err
		}
		m.mu.Lock()
		m.conn = conn
		m.mu.Unlock()
		m.log.Info("reconnected")
		return nil
	}, policy)
}

// Close releases the current connection and marks the Manager closed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}

// writeRaw writes an already-encoded frame body (bypassing frame.Encode,
// since callers may need to retry the exact same bytes after a reconnect).
func (c *Conn) writeRaw(raw []byte) error {
	var wire []byte
	if c.protocol == Binary {
		wire = frame.EncodeBinary(raw)
	} else {
		wire = frame.EncodeASCII(raw)
	}
	if _, err := c.io.Write(wire); err != nil {
		return err
	}
	return nil
}
