package link

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/tarm/serial"
)

const serialReadTimeout = 250 * time.Millisecond

// DialSerial opens a local serial device at the given baud rate and returns
// a Conn speaking protocol over it. tarm/serial reports a read timeout as
// (0, nil) and anything else (device removed, etc.) as a genuine error.
func DialSerial(device string, baud int, protocol Protocol, log *slog.Logger) (*Conn, error) {
	cfg := &serial.Config{Name: device, Baud: baud, ReadTimeout: serialReadTimeout}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	classify := func(n int, err error) error {
		if err == nil {
			if n == 0 {
				return ErrReadTimeout
			}
			return nil
		}
		if errors.Is(err, io.EOF) {
			return ErrReadTimeout
		}
		return ErrConnectionLost
	}
	return newConn(port, classify, protocol, log), nil
}
