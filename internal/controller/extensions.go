package controller

import "github.com/nx584/panelgw/internal/panel"

// Extension hooks replace the source's plug-in registry (which loaded
// callback objects by name) with a single capability-interface list: any
// value satisfying one or more of the hook interfaces below may be
// registered, and the controller type-asserts before calling each hook it
// has a handler for. Discovery of extension implementations is out of
// scope; callers construct and register them directly.
type (
	ZoneStatusExtension interface {
		OnZoneStatus(zone panel.Zone)
	}
	PartitionStatusExtension interface {
		OnPartitionStatus(partition panel.Partition, asserted, deasserted []string)
	}
	DeviceCommandExtension interface {
		OnDeviceCommand(house byte, unit int, command string)
	}
	SystemStatusExtension interface {
		OnSystemStatus(system panel.System, previousFlags []string)
	}
	LogEventExtension interface {
		OnLogEvent(event panel.LogEvent)
	}
)

// RegisterExtension adds ext to the controller's extension list. ext may
// implement any subset of the hook interfaces above; unsupported hooks are
// silently skipped for that extension.
func (c *Controller) RegisterExtension(ext any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extensions = append(c.extensions, ext)
}

func (c *Controller) notifyZoneStatus(z panel.Zone) {
	for _, ext := range c.snapshotExtensions() {
		if h, ok := ext.(ZoneStatusExtension); ok {
			h.OnZoneStatus(z)
		}
	}
}

func (c *Controller) notifyPartitionStatus(p panel.Partition, asserted, deasserted []string) {
	for _, ext := range c.snapshotExtensions() {
		if h, ok := ext.(PartitionStatusExtension); ok {
			h.OnPartitionStatus(p, asserted, deasserted)
		}
	}
}

func (c *Controller) notifyDeviceCommand(house byte, unit int, command string) {
	for _, ext := range c.snapshotExtensions() {
		if h, ok := ext.(DeviceCommandExtension); ok {
			h.OnDeviceCommand(house, unit, command)
		}
	}
}

func (c *Controller) notifySystemStatus(s panel.System, previous []string) {
	for _, ext := range c.snapshotExtensions() {
		if h, ok := ext.(SystemStatusExtension); ok {
			h.OnSystemStatus(s, previous)
		}
	}
}

func (c *Controller) notifyLogEvent(e panel.LogEvent) {
	for _, ext := range c.snapshotExtensions() {
		if h, ok := ext.(LogEventExtension); ok {
			h.OnLogEvent(e)
		}
	}
}

func (c *Controller) snapshotExtensions() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.extensions...)
}
