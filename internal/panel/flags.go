// Package panel holds the in-memory mirror of panel state: zones,
// partitions, the system singleton, users, and the log event history, along
// with the fixed bit-vocabulary tables used to decode condition/type/status
// bytes off the wire.
package panel

// ZoneConditionFlags is the 1-byte, 7-name vocabulary for Zone.ConditionFlags.
// Bit order matches the wire: index 0 is bit 0 (LSB).
var ZoneConditionFlags = [8]string{
	"Faulted",
	"Tamper",
	"Trouble",
	"Bypass",
	"Inhibit",
	"Low Battery",
	"Loss of Supervision",
	"",
}

// ZoneTypeFlags is the 3-byte, 24-name vocabulary for Zone.TypeFlags.
var ZoneTypeFlags = [3][8]string{
	{
		"Fire", "24 Hour", "Key-switch", "Follower",
		"Entry/Exit Delay 1", "Entry/Exit Delay 2", "Interior", "Local Only",
	},
	{
		"Keypad Sounder", "Yelping Siren", "Steady Siren", "Chime",
		"Bypassable", "Group Bypassable", "Force Armable", "Entry Guard",
	},
	{
		"Fast Loop Response", "Double EOL Tamper", "Trouble Disables This Zone",
		"Cross Zone", "Dialer Delay", "Swinger Shutdown", "Restorable", "Listen In",
	},
}

// PartitionConditionFlags is the 6-byte, 48-name vocabulary for
// Partition.ConditionFlags. byte0 bit6 is "Armed" (required by the
// documented partition-status decode scenario).
var PartitionConditionFlags = [6][8]string{
	{
		"Bit 0 Unused", "Bit 1 Unused", "Bit 2 Unused", "Entry",
		"Exit1", "Exit2", "Armed", "Stay",
	},
	{
		"Chime Mode", "Entry/Exit Delay", "Previous Alarm", "Siren On",
		"Steady Siren On", "Alarm Memory", "Tamper", "Cancel Entered",
	},
	{
		"Code Entered", "Cancel Pending", "Silent Exit Enabled", "Entryguard (Arm-Stay)",
		"Chime On (Sensor)", "Entry", "Delay Expiration Warning", "Auto Home Inhibited",
	},
	{
		"Sensor Low Battery", "Sensor Lost Supervision", "Zone Bypassed",
		"Force Arm Zone Violation", "Ready", "Not Ready", "Common Zone Not Ready",
		"Zone Faults Present",
	},
	{
		"Recent Closing Being Timed", "Exit Error Triggered", "Auto Home Inhibited 2",
		"Recent Closing", "Exit1", "Exit2", "Led Extinguish", "Cross Timing",
	},
	{
		"Recent Closing Being Timed 2", "Exit Error Triggered 2", "Warning/Trouble",
		"Fire Trouble", "Night Chime", "Recent Closing 2", "Latch Key Supervision",
		"Non-Bypassable",
	},
}

// SystemStatusFlags is the 9-byte, 72-name vocabulary for System.StatusFlags.
// Byte groups 1 and 2 (index 1 and 2) are the "error bank": asserted flags in
// these groups log at error level, de-asserted at warn, per spec.
var SystemStatusFlags = [9][8]string{
	{
		"Line Seizure", "Off Hook", "Initial Handshake Received", "Download In Progress",
		"Dialer Delay In Progress", "Using Backup Phone", "Listen In Active", "Two-way Lockout",
	},
	{
		"Ground Fault", "Phone Fault", "Fail To Communicate", "Fuse Fault",
		"Box Tamper", "Siren Tamper/Trouble", "Bell Fuse Tamper", "Fire",
	},
	{
		"Low Battery", "AC Fail", "Low Battery Memory", "Ground Fault Memory",
		"Fire Alarm Verification Being Timed", "Smoke Power Reset",
		"50 Hz / 60 Hz Line Frequency", "Timing a High Voltage Battery Charge",
	},
	{
		"Communication Since Last Autotest", "Power Up Delay In Progress", "Walk Test Mode",
		"Loss Of System Time", "Enroll Requested", "Test Fixture Mode", "Controls Input", "Dealer Mode",
	},
	{
		"Fire Alarm Sounding", "Line Seizure In Progress", "General Alarm", "Zone Bypass Test",
		"Phone Test In Progress", "Siren Test In Progress", "Module Supervision Trouble",
		"Line Monitoring Disabled",
	},
	{
		"AC Power", "Low Battery", "RF Jam Detected", "Box Tamper 2",
		"Device Low Battery 2", "Keypad Supervision Trouble", "Keyfob Supervision Trouble",
		"Module Trouble",
	},
	{
		"Housecode Lockout", "Module Fault", "Output Trouble", "Zone Expander Trouble",
		"2-Wire Smoke Zone Trouble", "RF Sensor Trouble", "Programming Token In Use",
		"Bus Device Fault",
	},
	{
		"Smoke Detector Reset", "Test Point Active", "Command Output Active", "Alarm Memory",
		"Programming Mode", "Transmitter Low Battery", "Polling Loop Trouble",
		"System Tamper Trouble",
	},
	{
		"Valid partition 1", "Valid partition 2", "Valid partition 3", "Valid partition 4",
		"Valid partition 5", "Valid partition 6", "Valid partition 7", "Valid partition 8",
	},
}

// SystemErrorBankGroups names the SystemStatusFlags byte indices whose
// asserted/de-asserted transitions log at error/warn instead of info.
var SystemErrorBankGroups = map[int]bool{1: true, 2: true}

// UserAuthorityFlagsMaster is selected when data[4]&0x80 != 0.
var UserAuthorityFlagsMaster = [8]string{
	"Master", "Arm/Disarm", "Bypass Zones", "Open/Close Report",
	"Access All Partitions", "Duress Code", "Output Access", "",
}

// UserAuthorityFlagsStandard is selected when data[4]&0x80 == 0.
var UserAuthorityFlagsStandard = [8]string{
	"Arm Only", "Report Only", "Access Selected Partitions", "Keypad Panic Activation",
	"Time Window Restricted", "Arm/Disarm", "Bypass Zones", "",
}

// flagsFromByte appends, in vocabulary order, every name whose bit is set in
// b. Empty vocab entries (unused bit positions) are skipped.
func flagsFromByte(b byte, vocab [8]string) []string {
	var out []string
	for bit := 0; bit < 8; bit++ {
		if vocab[bit] == "" {
			continue
		}
		if b&(1<<uint(bit)) != 0 {
			out = append(out, vocab[bit])
		}
	}
	return out
}

// flagsFromBytes appends names for every byte/vocab pair, in order.
func flagsFromBytes(data []byte, vocab [][8]string) []string {
	var out []string
	for i, v := range vocab {
		if i >= len(data) {
			break
		}
		out = append(out, flagsFromByte(data[i], v)...)
	}
	return out
}
