package panel

import (
	"fmt"
	"time"
)

// ZoneEventNames covers event_type codes 0..39: events reported against a zone.
var ZoneEventNames = [40]string{
	"Alarm", "Alarm Restore", "Burglary Alarm", "Burglary Restore",
	"Tamper Alarm", "Tamper Restore", "Panic Alarm", "Panic Restore",
	"Duress", "Supervisory Alarm", "Supervisory Restore", "Fault",
	"Restore", "Low Battery", "Low Battery Restore", "Loss of Supervision",
	"Supervision Restore", "Sensor Reset", "Sensor Tamper", "Sensor Tamper Restore",
	"Bypass", "Unbypass", "Trouble", "Trouble Restore",
	"Verified Fire Alarm", "Smoke Alarm", "Smoke Restore", "Gas Alarm",
	"Gas Restore", "Water Alarm", "Water Restore", "Freeze Alarm",
	"Freeze Restore", "Heat Alarm", "Heat Restore", "Foil Break",
	"Glass Break", "Glass Break Restore", "Soak Test", "Open",
}

// UserEventNames covers event_type codes 40..55: events reported against a user.
var UserEventNames = [16]string{
	"Disarmed", "Armed", "Armed Stay", "Armed Instant",
	"Cancel", "Auto-Arm Failed", "Code Entered", "Access Denied",
	"Bypass", "Unbypass", "Late to Close", "Early Open",
	"Closing Report", "Opening Report", "Code Changed", "Code Added",
}

// DeviceEventNames covers event_type codes 56..63: events reported against an X-10 device.
var DeviceEventNames = [8]string{
	"X-10 Command", "Remote Programming", "Keypad Lockout", "Keypad Restore",
	"Relay Output Change", "Module Trouble", "Module Restore", "Phone Test",
}

// SystemEventNames covers event_type codes 64..127: bare, panel-wide events.
// Includes, verbatim, the default email.alarm_events entries ("Alarm",
// "Alarm restore", "Manual fire") as required by spec.
var SystemEventNames = [64]string{
	"Alarm", "Alarm restore", "Manual fire", "Fire Alarm",
	"Fire Restore", "Panic", "Panic Restore", "Duress",
	"Ambulance", "Ambulance Restore", "Supervisory", "Supervisory Restore",
	"AC Fail", "AC Restore", "Low System Battery", "Low System Battery Restore",
	"RF Jam", "RF Jam Restore", "Phone Line Fault", "Phone Line Restore",
	"Fail To Communicate", "Communicate Restore", "Download Start", "Download End",
	"Log Full", "Time/Date Reset", "Time/Date Changed", "Walk Test Start",
	"Walk Test End", "Program Mode Entry", "Program Mode Exit", "Enrollment Complete",
	"Exit Error", "Recent Closing", "Cross Zone Alarm", "Cross Zone Restore",
	"Early Open", "Late To Close", "Auto-Arm Failed", "Auto-Arm Success",
	"Partial Arm", "Full Arm", "Output Activated", "Output Restored",
	"Service Required", "Service Restored", "Sensor Reset", "Group Bypass",
	"Group Unbypass", "Zone Expander Fault", "Zone Expander Restore", "Module Added",
	"Module Removed", "Test Transmission", "First Opening", "Closing Extend",
	"Two-Way Voice Connected", "Two-Way Voice Disconnected", "Trouble Acknowledged",
	"Alarm Acknowledged", "System Reset", "Box Tamper", "Box Tamper Restore",
	"Unknown Event",
}

// LogEvent is a single panel log history entry.
type LogEvent struct {
	Number          int
	EventType       int
	Reportable      bool
	ZoneUserDevice  int
	PartitionNumber int
	Timestamp       time.Time
}

// EventString formats the event per spec.md: "Zone N <event>", "User N
// <event>", "Device N <event>", or the bare event name, depending on which
// disjoint code table contains EventType.
func (e LogEvent) EventString() string {
	switch {
	case e.EventType < 40:
		return fmt.Sprintf("Zone %d %s", e.ZoneUserDevice, ZoneEventNames[e.EventType])
	case e.EventType < 56:
		return fmt.Sprintf("User %d %s", e.ZoneUserDevice, UserEventNames[e.EventType-40])
	case e.EventType < 64:
		return fmt.Sprintf("Device %d %s", e.ZoneUserDevice, DeviceEventNames[e.EventType-56])
	default:
		idx := e.EventType - 64
		if idx < 0 || idx >= len(SystemEventNames) {
			return "Unknown Event"
		}
		return SystemEventNames[idx]
	}
}

// DecodeLogEvent decodes a Log Event payload (7 bytes):
//
//	data[0]: bit7 reportable, bits0-6 event_type
//	data[1]: zone/user/device number
//	data[2]: partition number (1-based, 0 if not applicable)
//	data[3],data[4]: month,day (day,month if euroDateFormat)
//	data[5]: hour
//	data[6]: minute
//
// The year is inferred from now, rolling back one year if the decoded month
// is after now's month (the log entry must have preceded a year boundary).
func DecodeLogEvent(number int, data []byte, euroDateFormat bool, now time.Time) LogEvent {
	e := LogEvent{
		Number:          number,
		Reportable:      data[0]&0x80 != 0,
		EventType:       int(data[0] & 0x7F),
		ZoneUserDevice:  int(data[1]),
		PartitionNumber: int(data[2]),
	}

	month, day := int(data[3]), int(data[4])
	if euroDateFormat {
		day, month = month, day
	}
	hour, minute := int(data[5]), int(data[6])

	year := now.Year()
	if month > int(now.Month()) {
		year--
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		e.Timestamp = now
		return e
	}
	e.Timestamp = time.Date(year, time.Month(month), day, hour, minute, 0, 0, now.Location())
	return e
}
