package main

import (
	"fmt"
	"log/slog"

	"github.com/nx584/panelgw/internal/config"
	"github.com/nx584/panelgw/internal/link"
)

// newDialer builds the link.Dialer for the configured transport
// (mutually-exclusive -serial/-tcp, validated by config.Config.validate)
// and wire protocol (ASCII by default, Binary per [config].use_binary_protocol).
func newDialer(cfg *config.Config, fc *config.FileConfig, log *slog.Logger) (link.Dialer, error) {
	protocol := link.ASCII
	if fc.UseBinaryProtocol {
		protocol = link.Binary
	}

	switch {
	case cfg.SerialDevice != "":
		return func() (*link.Conn, error) {
			return link.DialSerial(cfg.SerialDevice, cfg.Baud, protocol, log)
		}, nil
	case cfg.TCPAddr != "":
		return func() (*link.Conn, error) {
			return link.DialTCP(cfg.TCPAddr, protocol, log)
		}, nil
	default:
		return nil, fmt.Errorf("no transport configured")
	}
}
