package controller

import (
	"strings"
	"time"

	"github.com/nx584/panelgw/internal/frame"
	"github.com/nx584/panelgw/internal/panel"
)

const (
	msgtypeZoneName        = 0x03
	msgtypeZoneStatus      = 0x04
	msgtypePartitionStatus = 0x06
	msgtypeSystemStatus    = 0x08
	msgtypeX10Message      = 0x09
	msgtypeLogEvent        = 0x0A
	msgtypeUserInfoReply   = 0x12
)

// dispatch maps a decoded inbound frame to its handler by an explicit
// switch table (the source looked handlers up by constructed function name
// process_msg_N; re-architected here as a plain mapping, per design note).
// Unknown types are logged and ignored; a handler that panics is recovered
// and logged and does not abort the loop (model state is not rolled back —
// handlers are idempotent within a message, so a retried update is
// harmless).
func (c *Controller) dispatch(f frame.Frame) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("handler_failed", "msgtype", f.MsgType, "panic", r)
		}
	}()
	switch f.MsgType {
	case msgtypeZoneName:
		c.handleZoneName(f.Data)
	case msgtypeZoneStatus:
		c.handleZoneStatus(f.Data)
	case msgtypePartitionStatus:
		c.handlePartitionStatus(f.Data)
	case msgtypeSystemStatus:
		c.handleSystemStatus(f.Data)
	case msgtypeX10Message:
		c.handleX10Message(f.Data)
	case msgtypeLogEvent:
		c.handleLogEvent(f.Data)
	case msgtypeUserInfoReply:
		c.handleUserInfoReply(f.Data)
	default:
		c.log.Debug("unhandled_msgtype", "msgtype", f.MsgType)
	}
}

func (c *Controller) handleZoneName(data []byte) {
	if len(data) < 1 {
		return
	}
	zoneNumber := int(data[0]) + 1
	name := strings.TrimRight(string(data[1:]), "\x00 ")

	if c.settings.ZoneNameUpdate {
		c.registry.MutateZone(zoneNumber, func(z *panel.Zone) { z.Name = name })
		c.onZoneName(zoneNumber, name)
	}
}

func (c *Controller) handleZoneStatus(data []byte) {
	if len(data) < 6 {
		return
	}
	var zone panel.Zone
	zoneNumber := int(data[0]) + 1
	c.registry.MutateZone(zoneNumber, func(z *panel.Zone) {
		z.ApplyStatus(data[5], data[2:5])
		zone = *z
	})
	c.events.Push(QueuedEvent{Kind: KindZoneStatus, Zone: &zone})
	c.notifyZoneStatus(zone)
}

func (c *Controller) handlePartitionStatus(data []byte) {
	if len(data) < 8 {
		return
	}
	partitionNumber := int(data[0]) + 1
	conditionBytes := append(append([]byte(nil), data[1:5]...), data[6:8]...)
	lastUser := data[5]

	var previous, current []string
	var partition panel.Partition
	c.registry.MutatePartition(partitionNumber, func(p *panel.Partition) {
		previous = p.ConditionFlags
		p.ApplyStatus(conditionBytes, lastUser)
		current = p.ConditionFlags
		partition = *p
	})
	asserted, deasserted := panel.Diff(previous, current)

	c.events.Push(QueuedEvent{Kind: KindPartitionStatus, Partition: &partition})
	c.notifyPartitionStatus(partition, asserted, deasserted)
}

func (c *Controller) handleSystemStatus(data []byte) {
	if len(data) < 10 {
		return
	}
	panelID := data[0]
	statusBytes := data[1:10]

	var previous []string
	var system panel.System
	c.registry.MutateSystem(func(s *panel.System) {
		previous = s.ApplyStatus(panelID, statusBytes)
		system = *s
	})

	asserted, deasserted := panel.Diff(previous, system.StatusFlags)
	for _, flag := range asserted {
		if panel.IsErrorBankFlag(flag) {
			c.log.Error("system_flag_asserted", "flag", flag)
		} else {
			c.log.Info("system_flag_asserted", "flag", flag)
		}
	}
	for _, flag := range deasserted {
		if panel.IsErrorBankFlag(flag) {
			c.log.Warn("system_flag_deasserted", "flag", flag)
		} else {
			c.log.Info("system_flag_deasserted", "flag", flag)
		}
	}

	for _, n := range system.ValidPartitions() {
		c.outbound.push(cmdPartitionStatusRequest(n))
	}

	c.events.Push(QueuedEvent{Kind: KindSystemStatus, System: &system})
	c.notifySystemStatus(system, previous)
}

func (c *Controller) handleX10Message(data []byte) {
	if len(data) < 3 {
		return
	}
	device := DeviceCommand{
		House: 'A' + data[0],
		Unit:  int(data[1]),
	}
	switch data[2] {
	case 0x28:
		device.Command = "on"
	case 0x38:
		device.Command = "off"
	default:
		device.Command = string(rune(data[2]))
	}

	c.events.Push(QueuedEvent{Kind: KindDeviceCommand, Device: &device})
	c.notifyDeviceCommand(device.House, device.Unit, device.Command)
}

func (c *Controller) handleLogEvent(data []byte) {
	if len(data) < 7 {
		return
	}
	event := panel.DecodeLogEvent(0, data, c.settings.EuroDateFormat, time.Now())
	c.events.Push(QueuedEvent{Kind: KindLogEvent, Log: &event})
	c.notifyLogEvent(event)
}

func (c *Controller) handleUserInfoReply(data []byte) {
	if len(data) < 6 {
		return
	}
	userNumber := int(data[0])
	c.registry.MutateUser(userNumber, func(u *panel.User) {
		u.ApplyUserInformation(data)
	})
}
