package main

import (
	"log/slog"

	"github.com/nx584/panelgw/internal/config"
	"github.com/nx584/panelgw/internal/controller"
)

// controllerSettings maps the loaded file config onto controller.Settings.
func controllerSettings(fc *config.FileConfig) controller.Settings {
	s := controller.DefaultSettings()
	s.MaxZone = fc.MaxZone
	s.IdleHeartbeatSeconds = fc.IdleHeartbeatSeconds
	s.EuroDateFormat = fc.EuroDateFormat
	s.ZoneNameUpdate = fc.ZoneNameUpdate
	return s
}

// zoneNamePersister returns the controller's onZoneName hook: it updates
// the in-memory FileConfig and best-effort rewrites the INI file (spec.md
// §7e "config I/O failure: log, continue running").
func zoneNamePersister(path string, fc *config.FileConfig, log *slog.Logger) func(int, string) {
	return func(zoneNumber int, name string) {
		fc.Zones[zoneNumber] = name
		if err := config.SaveZoneName(path, zoneNumber, name); err != nil {
			log.Warn("zone_name_save_failed", "zone", zoneNumber, "error", err)
		}
	}
}
