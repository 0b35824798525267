package controller

import "github.com/nx584/panelgw/internal/panel"

// DeviceCommand is the decoded payload of an X-10 message (msgtype 9).
type DeviceCommand struct {
	House   byte
	Unit    int
	Command string
}

// QueuedEvent is what the controller pushes to the shared event queue; the
// HTTP /events endpoint serializes these directly. Exactly one of the
// pointer fields is set, matching Kind.
type QueuedEvent struct {
	Kind      string `json:"kind"`
	Zone      *panel.Zone      `json:"zone,omitempty"`
	Partition *panel.Partition `json:"partition,omitempty"`
	System    *panel.System    `json:"system,omitempty"`
	Device    *DeviceCommand   `json:"device,omitempty"`
	Log       *panel.LogEvent  `json:"log,omitempty"`
}

const (
	KindZoneStatus      = "zone_status"
	KindPartitionStatus = "partition"
	KindSystemStatus    = "system"
	KindDeviceCommand   = "device-command"
	KindLogEvent        = "log"
)
