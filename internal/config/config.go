// Package config resolves process configuration from three layers: CLI
// flags (highest precedence), PANELGW_* environment variables, and built-in
// defaults. The panel-domain settings that are meant to be edited by hand
// and learned over time (zone names, email recipients, per-partition flag
// classification) live in a separate INI file handled by ini.go.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the flag/env-resolved process configuration: transport
// selection, the path to the INI file, and the ambient HTTP/metrics/logging
// surface. Panel-domain settings (max zone, idle heartbeat, email, etc.)
// come from the INI file loaded separately via LoadFile.
type Config struct {
	SerialDevice string
	Baud         int
	TCPAddr      string

	ConfigPath string

	ListenAddr  string
	MetricsAddr string

	LogFormat string
	LogLevel  string

	MDNSEnable bool
	MDNSName   string
}

// ParseFlags parses os.Args, applies PANELGW_* env overrides for any flag
// left at its default, validates the result, and returns it. The second
// return value reports whether -version was given (caller prints and exits
// without further validation in that case, matching the teacher's
// parseFlags contract).
func ParseFlags() (*Config, bool) {
	cfg := &Config{}

	serialDevice := flag.String("serial", "", "Serial device path (e.g. /dev/ttyUSB0); mutually exclusive with -tcp")
	baud := flag.Int("baud", 9600, "Serial baud rate")
	tcpAddr := flag.String("tcp", "", "host:port of a TCP-to-serial bridge; mutually exclusive with -serial")
	configPath := flag.String("config", "/etc/panelgw.ini", "Path to the panelgw INI config file")
	listenAddr := flag.String("listen", ":9430", "HTTP API listen address")
	metricsAddr := flag.String("metrics-addr", "", "Metrics HTTP listen address (e.g., :9100); empty disables")
	logFormat := flag.String("log-format", "text", "Log format: text|json")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	mdnsEnable := flag.Bool("mdns-enable", false, "Enable mDNS advertisement of the HTTP API")
	mdnsName := flag.String("mdns-name", "", "mDNS instance name (default panelgw-<hostname>)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	setFlags := map[string]struct{}{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })

	cfg.SerialDevice = *serialDevice
	cfg.Baud = *baud
	cfg.TCPAddr = *tcpAddr
	cfg.ConfigPath = *configPath
	cfg.ListenAddr = *listenAddr
	cfg.MetricsAddr = *metricsAddr
	cfg.LogFormat = *logFormat
	cfg.LogLevel = *logLevel
	cfg.MDNSEnable = *mdnsEnable
	cfg.MDNSName = *mdnsName

	if *showVersion {
		return cfg, true
	}

	if err := applyEnvOverrides(cfg, setFlags); err != nil {
		fmt.Printf("environment override error: %v\n", err)
		return nil, false
	}
	if err := cfg.validate(); err != nil {
		fmt.Printf("configuration error: %v\n", err)
		return nil, false
	}
	return cfg, false
}

func (c *Config) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if c.SerialDevice == "" && c.TCPAddr == "" {
		return errors.New("one of -serial or -tcp must be set")
	}
	if c.SerialDevice != "" && c.TCPAddr != "" {
		return errors.New("-serial and -tcp are mutually exclusive")
	}
	if c.SerialDevice != "" && c.Baud <= 0 {
		return fmt.Errorf("baud must be > 0 (got %d)", c.Baud)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.LogLevel)
	}
	if c.ConfigPath == "" {
		return errors.New("-config must not be empty")
	}
	return nil
}

// applyEnvOverrides maps PANELGW_* environment variables onto cfg, skipping
// any field whose flag was explicitly set on the command line (flag wins).
func applyEnvOverrides(c *Config, set map[string]struct{}) error {
	var firstErr error
	get := func(k string) (string, bool) {
		v, ok := os.LookupEnv(k)
		return strings.TrimSpace(v), ok
	}
	setString := func(flagName, env string, dst *string) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(flagName, env string, dst *int) {
		if _, ok := set[flagName]; ok {
			return
		}
		v, ok := get(env)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("invalid %s: %w", env, err)
			}
			return
		}
		*dst = n
	}
	setBool := func(flagName, env string, dst *bool) {
		if _, ok := set[flagName]; ok {
			return
		}
		v, ok := get(env)
		if !ok || v == "" {
			return
		}
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}

	setString("serial", "PANELGW_SERIAL", &c.SerialDevice)
	setInt("baud", "PANELGW_BAUD", &c.Baud)
	setString("tcp", "PANELGW_TCP", &c.TCPAddr)
	setString("config", "PANELGW_CONFIG", &c.ConfigPath)
	setString("listen", "PANELGW_LISTEN", &c.ListenAddr)
	setString("metrics-addr", "PANELGW_METRICS", &c.MetricsAddr)
	setString("log-format", "PANELGW_LOG_FORMAT", &c.LogFormat)
	setString("log-level", "PANELGW_LOG_LEVEL", &c.LogLevel)
	setBool("mdns-enable", "PANELGW_MDNS_ENABLE", &c.MDNSEnable)
	setString("mdns-name", "PANELGW_MDNS_NAME", &c.MDNSName)

	return firstErr
}

// ReadTimeout returns the per-transport read timeout documented in spec.md
// §6: 250ms for serial, 500ms for TCP.
func (c *Config) ReadTimeout() time.Duration {
	if c.SerialDevice != "" {
		return 250 * time.Millisecond
	}
	return 500 * time.Millisecond
}
