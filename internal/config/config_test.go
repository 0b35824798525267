package config

import (
	"os"
	"testing"
)

func TestApplyEnvOverrides_Basic(t *testing.T) {
	base := &Config{
		SerialDevice: "/dev/ttyUSB0",
		Baud:         9600,
		ListenAddr:   ":9430",
		LogFormat:    "text",
		LogLevel:     "info",
	}

	os.Setenv("PANELGW_BAUD", "38400")
	os.Setenv("PANELGW_MDNS_ENABLE", "true")
	os.Setenv("PANELGW_LOG_LEVEL", "debug")
	t.Cleanup(func() {
		os.Unsetenv("PANELGW_BAUD")
		os.Unsetenv("PANELGW_MDNS_ENABLE")
		os.Unsetenv("PANELGW_LOG_LEVEL")
	})

	if err := applyEnvOverrides(base, map[string]struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base.Baud != 38400 {
		t.Fatalf("baud = %d, want 38400", base.Baud)
	}
	if !base.MDNSEnable {
		t.Fatal("expected mdnsEnable true")
	}
	if base.LogLevel != "debug" {
		t.Fatalf("log level = %q, want debug", base.LogLevel)
	}
}

func TestApplyEnvOverrides_FlagPrecedence(t *testing.T) {
	base := &Config{Baud: 9600}
	os.Setenv("PANELGW_BAUD", "38400")
	t.Cleanup(func() { os.Unsetenv("PANELGW_BAUD") })

	if err := applyEnvOverrides(base, map[string]struct{}{"baud": {}}); err != nil {
		t.Fatalf("err: %v", err)
	}
	if base.Baud != 9600 {
		t.Fatalf("baud = %d, want unchanged 9600", base.Baud)
	}
}

func TestApplyEnvOverrides_BadInt(t *testing.T) {
	base := &Config{Baud: 9600}
	os.Setenv("PANELGW_BAUD", "notanumber")
	t.Cleanup(func() { os.Unsetenv("PANELGW_BAUD") })

	if err := applyEnvOverrides(base, map[string]struct{}{}); err == nil {
		t.Fatal("expected error for bad integer")
	}
}

func TestValidateRejectsBothOrNeitherTransport(t *testing.T) {
	neither := &Config{LogFormat: "text", LogLevel: "info", ConfigPath: "x"}
	if err := neither.validate(); err == nil {
		t.Fatal("expected error when neither -serial nor -tcp is set")
	}

	both := &Config{SerialDevice: "/dev/ttyUSB0", Baud: 9600, TCPAddr: "localhost:1234", LogFormat: "text", LogLevel: "info", ConfigPath: "x"}
	if err := both.validate(); err == nil {
		t.Fatal("expected error when both -serial and -tcp are set")
	}
}

func TestValidateAcceptsTCPOnly(t *testing.T) {
	c := &Config{TCPAddr: "localhost:1234", LogFormat: "json", LogLevel: "warn", ConfigPath: "x"}
	if err := c.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadTimeoutBySelectedTransport(t *testing.T) {
	serial := &Config{SerialDevice: "/dev/ttyUSB0"}
	if got := serial.ReadTimeout(); got.Milliseconds() != 250 {
		t.Fatalf("serial read timeout = %v, want 250ms", got)
	}
	tcp := &Config{TCPAddr: "localhost:1234"}
	if got := tcp.ReadTimeout(); got.Milliseconds() != 500 {
		t.Fatalf("tcp read timeout = %v, want 500ms", got)
	}
}
