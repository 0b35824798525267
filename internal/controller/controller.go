// Package controller implements the single-threaded poll/dispatch/ack/pace
// loop that owns the panel's in-memory model and the outbound command
// queue. It is the only writer of internal/panel's registries.
package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nx584/panelgw/internal/eventqueue"
	"github.com/nx584/panelgw/internal/frame"
	"github.com/nx584/panelgw/internal/panel"
)

// link is the subset of *link.Manager (or *link.Conn) the controller needs;
// defined here so tests can supply a fake without importing internal/link.
type link interface {
	ReadFrame() (frame.Frame, error)
	WriteFrame(msgType byte, ackRequired bool, data []byte) error
}

// readTimeoutClassifier reports whether a link error means "no frame
// available right now, try again" (for internal/link, errors.Is against
// link.ErrReadTimeout); Run treats such errors as idle ticks.
type readTimeoutClassifier func(error) bool

// Settings carries the subset of config needed by the loop. Supplied by
// internal/config at startup; zone names are supplied separately via New's
// knownZoneNames argument since they come from the same config file but are mutable
// (learned and persisted as Zone Name replies arrive).
type Settings struct {
	MaxZone              int
	IdleHeartbeatSeconds int
	EuroDateFormat       bool
	ZoneNameUpdate       bool
	EventQueueLength     int
	EventQueueStart      int
}

// DefaultSettings matches the documented config defaults (§6).
func DefaultSettings() Settings {
	return Settings{
		MaxZone:              8,
		IdleHeartbeatSeconds: 120,
		EuroDateFormat:       false,
		ZoneNameUpdate:       true,
		EventQueueLength:     100,
		EventQueueStart:      0,
	}
}

// Controller owns the registry, outbound queue, and event queue, and runs
// the single poll/dispatch/ack/heartbeat loop.
type Controller struct {
	link     link
	settings Settings
	registry *panel.Registry
	events   *eventqueue.Queue
	outbound outboundQueue
	log      *slog.Logger

	knownZoneNames func(zoneNumber int) (string, bool)
	onZoneName     func(zoneNumber int, name string)

	mu         sync.Mutex
	extensions []any

	lastActivity time.Time
}

// New constructs a Controller. knownZoneNames reports whether a zone's name
// is already known from config (skipping the name-request at startup if
// so); onZoneName is called whenever a Zone Name reply updates a name, so
// the caller can persist it back to config. Both may be nil.
func New(l link, settings Settings, registry *panel.Registry, events *eventqueue.Queue, log *slog.Logger, knownZoneNames func(int) (string, bool), onZoneName func(int, string)) *Controller {
	if knownZoneNames == nil {
		knownZoneNames = func(int) (string, bool) { return "", false }
	}
	if onZoneName == nil {
		onZoneName = func(int, string) {}
	}
	return &Controller{
		link:           l,
		settings:       settings,
		registry:       registry,
		events:         events,
		log:            log,
		knownZoneNames: knownZoneNames,
		onZoneName:     onZoneName,
	}
}

// Registry exposes the shared panel model for HTTP handlers.
func (c *Controller) Registry() *panel.Registry { return c.registry }

// Events exposes the shared event queue for HTTP long-poll handlers.
func (c *Controller) Events() *eventqueue.Queue { return c.events }

// Run performs the startup sequence then loops until ctx is cancelled.
// Handler failures are logged and do not abort the loop; a connection-lost
// error from link.ReadFrame is returned so the caller can decide whether to
// restart the controller (the link itself already retries reconnects
// internally — this only returns if the caller's link implementation gives
// up entirely, which internal/link.Manager does only after it has been
// closed).
func (c *Controller) Run(ctx context.Context, isReadTimeout readTimeoutClassifier) error {
	c.lastActivity = time.Now()
	c.runStartupSequence()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		f, err := c.link.ReadFrame()
		if err != nil {
			if isReadTimeout(err) {
				c.onIdle()
				continue
			}
			return err
		}

		c.lastActivity = time.Now()
		if f.AckRequired {
			if werr := c.link.WriteFrame(msgPositiveAck, false, nil); werr != nil {
				c.log.Warn("ack_write_failed", "error", werr)
			}
		}
		c.dispatch(f)
	}
}

// runStartupSequence matches the documented startup order: clock-set,
// system-status request, then per zone 1..MaxZone a zone-status request and
// (if the name isn't already known) a zone-name request.
func (c *Controller) runStartupSequence() {
	now := time.Now()
	c.outbound.push(cmdSetClock(now.Year(), int(now.Month()), now.Day(), now.Hour(), now.Minute(), int(now.Weekday())))
	c.outbound.push(cmdSystemStatusRequest())
	for zone := 1; zone <= c.settings.MaxZone; zone++ {
		c.outbound.push(cmdZoneStatusRequest(zone))
		if _, known := c.knownZoneNames(zone); !known {
			c.outbound.push(cmdZoneNameRequest(zone))
		}
	}
}

// onIdle runs on every ReadTimeout: drain at most one outbound command if
// the link has been quiet less than IdleHeartbeatSeconds, else enqueue a
// system-status request as a heartbeat and reset the idle watchdog.
func (c *Controller) onIdle() {
	idle := time.Duration(c.settings.IdleHeartbeatSeconds) * time.Second
	if time.Since(c.lastActivity) < idle {
		c.drainOne()
		return
	}
	c.outbound.push(cmdSystemStatusRequest())
	c.lastActivity = time.Now()
}

func (c *Controller) drainOne() {
	item, ok := c.outbound.pop()
	if !ok {
		return
	}
	if err := c.link.WriteFrame(item.msgType, false, item.data); err != nil {
		c.log.Warn("outbound_send_failed", "msgtype", item.msgType, "error", err)
	}
}

// Enqueue* methods are the HTTP layer's only way to mutate the outbound
// queue; they never touch the registry directly.

func (c *Controller) EnqueueArm(kind string, partitionNumber int) bool {
	command, ok := cmdArm(kind, partitionNumber)
	if !ok {
		return false
	}
	c.outbound.push(command)
	return true
}

func (c *Controller) EnqueueDisarm(pin4 [4]int, partitionNumber int) {
	c.outbound.push(cmdDisarm(pin4, partitionNumber))
}

func (c *Controller) EnqueueZoneBypassToggle(zoneNumber int) {
	c.outbound.push(cmdZoneBypassToggle(zoneNumber))
}

func (c *Controller) EnqueueUserInfoRequest(masterPin [6]int, userNumber int) {
	c.outbound.push(cmdUserInfoRequest(masterPin, userNumber))
}

func (c *Controller) EnqueueSetUserCode(masterPin [6]int, userNumber int, userPin [6]int) {
	c.outbound.push(cmdSetUserCode(masterPin, userNumber, userPin))
}

// PendingOutbound reports the outbound queue depth.
func (c *Controller) PendingOutbound() int { return c.outbound.len() }
