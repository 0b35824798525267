package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
)

// FileConfig is the panel-domain configuration loaded from the INI file
// named by Config.ConfigPath: §6 [config]/[zones]/[email]/[partition_<n>].
// No other section is read; listen addresses come from flags/env only.
type FileConfig struct {
	UseBinaryProtocol    bool
	ZoneNameUpdate       bool
	MaxZone              int
	IdleHeartbeatSeconds int
	EuroDateFormat       bool

	// Zones maps a 1-based zone number to its learned name.
	Zones map[int]string

	Email EmailConfig

	// Partitions maps a 1-based partition number to its flag classification.
	Partitions map[int]PartitionEmailConfig
}

// EmailConfig holds the [email] section: SMTP endpoint plus recipient lists
// keyed by alert category (mirrors original_source/nx584/mail.py's three
// recipient sets).
type EmailConfig struct {
	FromAddr    string
	SMTPHost    string
	System      []string // recipients for system-status asserted/deasserted alerts
	Alarms      []string // recipients for log events matching AlarmEvents
	AlarmEvents []string // log event names that also notify Alarms (default below)
	Events      []string // recipients for every log event
}

// DefaultAlarmEvents is used when [email].alarm_events is absent, matching
// mail.py's hardcoded fallback set.
var DefaultAlarmEvents = []string{"Alarm", "Alarm restore", "Manual fire"}

// PartitionEmailConfig is a [partition_<n>] section. Unlike the original
// project (where the same keys held literal recipient addresses), spec.md
// §6 documents all four keys as comma-lists of *flag names*; recipients
// always come from [email]. Flags restricts which condition-flag changes
// this partition reports on at all (empty means "all"); IgnoreFlags
// suppresses specific flags even if Flags would otherwise include them.
// StatusFlags/AlarmFlags classify which of the reported flags escalate to
// the [email].system vs [email].alarms recipient lists.
type PartitionEmailConfig struct {
	Flags       []string
	IgnoreFlags []string
	StatusFlags []string
	AlarmFlags  []string
}

func defaultFileConfig() *FileConfig {
	return &FileConfig{
		UseBinaryProtocol:    false,
		ZoneNameUpdate:       true,
		MaxZone:              8,
		IdleHeartbeatSeconds: 120,
		EuroDateFormat:       false,
		Zones:                map[int]string{},
		Partitions:           map[int]PartitionEmailConfig{},
	}
}

// LoadFile reads and parses path. A missing file is not an error: the
// documented defaults apply and the file is created on first rewrite (spec
// §7 "config I/O failure: log, continue running" covers read errors other
// than not-exist the same way — callers log and proceed with defaults).
func LoadFile(path string) (*FileConfig, error) {
	fc := defaultFileConfig()

	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return fc, fmt.Errorf("load %s: %w", path, err)
	}

	sec := cfg.Section("config")
	fc.UseBinaryProtocol = sec.Key("use_binary_protocol").MustBool(fc.UseBinaryProtocol)
	fc.ZoneNameUpdate = sec.Key("zone_name_update").MustBool(fc.ZoneNameUpdate)
	fc.MaxZone = sec.Key("max_zone").MustInt(fc.MaxZone)
	fc.IdleHeartbeatSeconds = sec.Key("idle_time_heartbeat_seconds").MustInt(fc.IdleHeartbeatSeconds)
	fc.EuroDateFormat = sec.Key("euro_date_format").MustBool(fc.EuroDateFormat)

	if zonesSec, err := cfg.GetSection("zones"); err == nil {
		for _, key := range zonesSec.Keys() {
			n, convErr := strconv.Atoi(key.Name())
			if convErr != nil {
				continue
			}
			fc.Zones[n] = key.String()
		}
	}

	if emailSec, err := cfg.GetSection("email"); err == nil {
		fc.Email = EmailConfig{
			FromAddr:    emailSec.Key("fromaddr").String(),
			SMTPHost:    emailSec.Key("smtphost").String(),
			System:      splitList(emailSec.Key("system").String()),
			Alarms:      splitList(emailSec.Key("alarms").String()),
			AlarmEvents: splitList(emailSec.Key("alarm_events").String()),
			Events:      splitList(emailSec.Key("events").String()),
		}
	}
	if len(fc.Email.AlarmEvents) == 0 {
		fc.Email.AlarmEvents = append([]string(nil), DefaultAlarmEvents...)
	}

	for _, name := range cfg.SectionStrings() {
		number, ok := partitionSectionNumber(name)
		if !ok {
			continue
		}
		psec := cfg.Section(name)
		fc.Partitions[number] = PartitionEmailConfig{
			Flags:       splitList(psec.Key("flags").String()),
			IgnoreFlags: splitList(psec.Key("ignore_flags").String()),
			StatusFlags: splitList(psec.Key("status_flags").String()),
			AlarmFlags:  splitList(psec.Key("alarm_flags").String()),
		}
	}

	return fc, nil
}

// SaveZoneName rewrites the [zones] section's <n> entry to name and
// persists the file in place, preserving every other section. Called by
// the controller's onZoneName hook when ZoneNameUpdate is enabled and a
// fresh Zone Name reply arrives (spec.md §6 "rewritten when zone names are
// learned").
func SaveZoneName(path string, number int, name string) error {
	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	cfg.Section("zones").Key(strconv.Itoa(number)).SetValue(name)
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// KnownZoneName reports a zone name previously learned from the file, for
// Controller's knownZoneNames hook (skips the startup zone-name request for
// zones already named).
func (fc *FileConfig) KnownZoneName(number int) (string, bool) {
	name, ok := fc.Zones[number]
	return name, ok
}

// SortedZoneNumbers returns the numbers with a configured name, ascending;
// used only for deterministic iteration in tests/logging.
func (fc *FileConfig) SortedZoneNumbers() []int {
	out := make([]int, 0, len(fc.Zones))
	for n := range fc.Zones {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func partitionSectionNumber(name string) (int, bool) {
	const prefix = "partition_"
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}
