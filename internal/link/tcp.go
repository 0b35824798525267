package link

import (
	"errors"
	"log/slog"
	"net"
	"os"
	"time"
)

const tcpReadTimeout = 500 * time.Millisecond

// tcpIO adapts a net.Conn to rawIO, setting a fresh read deadline before
// every Read so each call observes the spec's 500ms socket timeout.
type tcpIO struct {
	conn net.Conn
}

func (t *tcpIO) Read(p []byte) (int, error) {
	_ = t.conn.SetReadDeadline(time.Now().Add(tcpReadTimeout))
	return t.conn.Read(p)
}

func (t *tcpIO) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *tcpIO) Close() error                { return t.conn.Close() }

// DialTCP connects to a raw TCP serial bridge at addr ("host:port") and
// returns a Conn speaking protocol over it. A timed-out deadline is a
// ReadTimeout; recv returning 0 bytes with no error, or any other read
// error, is ConnectionLost.
func DialTCP(addr string, protocol Protocol, log *slog.Logger) (*Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, tcpReadTimeout)
	if err != nil {
		return nil, err
	}
	classify := func(n int, err error) error {
		if err == nil {
			if n == 0 {
				return ErrConnectionLost
			}
			return nil
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ErrReadTimeout
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return ErrReadTimeout
		}
		return ErrConnectionLost
	}
	return newConn(&tcpIO{conn: conn}, classify, protocol, log), nil
}
