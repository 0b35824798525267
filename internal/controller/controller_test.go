package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nx584/panelgw/internal/eventqueue"
	"github.com/nx584/panelgw/internal/frame"
	"github.com/nx584/panelgw/internal/panel"
)

var errFakeTimeout = errors.New("fake: timeout")

func isFakeTimeout(err error) bool { return err == errFakeTimeout }

type writtenFrame struct {
	msgType byte
	ack     bool
	data    []byte
}

// fakeLink replays scripted ReadFrame results and records every WriteFrame.
type fakeLink struct {
	reads  []readResult
	writes []writtenFrame
}

type readResult struct {
	frame frame.Frame
	err   error
}

func (f *fakeLink) ReadFrame() (frame.Frame, error) {
	if len(f.reads) == 0 {
		return frame.Frame{}, errFakeTimeout
	}
	r := f.reads[0]
	f.reads = f.reads[1:]
	return r.frame, r.err
}

func (f *fakeLink) WriteFrame(msgType byte, ackRequired bool, data []byte) error {
	f.writes = append(f.writes, writtenFrame{msgType, ackRequired, append([]byte(nil), data...)})
	return nil
}

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestController(t *testing.T, l *fakeLink, settings Settings) *Controller {
	t.Helper()
	registry := panel.NewRegistry()
	events := eventqueue.New(100, 0)
	return New(l, settings, registry, events, testLogger(), nil, nil)
}

// runBriefly drives Run for a short deadline on a background goroutine
// and cancels it, giving the loop enough time to drain the fake link's
// scripted reads and at least one idle tick.
func runBriefly(t *testing.T, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = c.Run(ctx, isFakeTimeout)
}

func TestStartupSequenceEnqueuesExpectedCommands(t *testing.T) {
	l := &fakeLink{}
	settings := DefaultSettings()
	settings.MaxZone = 2
	c := newTestController(t, l, settings)

	c.runStartupSequence()

	var got []cmd
	for {
		item, ok := c.outbound.pop()
		if !ok {
			break
		}
		got = append(got, item)
	}

	want := []struct {
		msgType byte
		data    []byte
	}{
		{msgSetClock, nil}, // data varies with wall clock; checked separately below
		{msgSystemStatusRequest, nil},
		{msgZoneStatusRequest, []byte{0x00}},
		{msgZoneNameRequest, []byte{0x00}},
		{msgZoneStatusRequest, []byte{0x01}},
		{msgZoneNameRequest, []byte{0x01}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d commands, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].msgType != w.msgType {
			t.Fatalf("command %d: msgtype = 0x%02X, want 0x%02X", i, got[i].msgType, w.msgType)
		}
		if w.data != nil && string(got[i].data) != string(w.data) {
			t.Fatalf("command %d: data = % X, want % X", i, got[i].data, w.data)
		}
	}
}

// Scenario A: GET /command?cmd=arm&type=stay enqueues [0x3E, 0x00, 0x01];
// after one drain the wire carries that payload with ack_required=false.
func TestScenarioAArmStay(t *testing.T) {
	l := &fakeLink{}
	c := newTestController(t, l, DefaultSettings())

	if ok := c.EnqueueArm(ArmStay, 1); !ok {
		t.Fatal("EnqueueArm returned false")
	}
	c.drainOne()

	if len(l.writes) != 1 {
		t.Fatalf("got %d writes, want 1", len(l.writes))
	}
	w := l.writes[0]
	if w.msgType != 0x3E || w.ack != false || string(w.data) != string([]byte{0x00, 0x01}) {
		t.Fatalf("got msgtype=0x%02X ack=%v data=% X, want 0x3E false [00 01]", w.msgType, w.ack, w.data)
	}
}

// Scenario B: GET /command?cmd=disarm&master_pin=1234 enqueues
// [0x3C, 0x21, 0x43, 0xFF, 0x01, 0x01].
func TestScenarioBDisarm(t *testing.T) {
	l := &fakeLink{}
	c := newTestController(t, l, DefaultSettings())

	c.EnqueueDisarm([4]int{1, 2, 3, 4}, 1)
	c.drainOne()

	if len(l.writes) != 1 {
		t.Fatalf("got %d writes, want 1", len(l.writes))
	}
	w := l.writes[0]
	want := []byte{0x21, 0x43, 0xFF, 0x01, 0x01}
	if w.msgType != 0x3C || string(w.data) != string(want) {
		t.Fatalf("got msgtype=0x%02X data=% X, want 0x3C % X", w.msgType, w.data, want)
	}
}

// Scenario C: feeding the documented partition-status payload yields
// armed=true, last_user=0x62, and a Partition numbered 1.
func TestScenarioCPartitionStatus(t *testing.T) {
	l := &fakeLink{}
	c := newTestController(t, l, DefaultSettings())

	data := []byte{0x00, 0x68, 0x00, 0xE0, 0x40, 0x62, 0x04, 0x82, 0x02, 0x07}
	c.handlePartitionStatus(data)

	p, ok := c.Registry().PartitionSnapshot(1)
	if !ok {
		t.Fatal("partition 1 not found")
	}
	if !p.Armed() {
		t.Fatal("expected armed=true")
	}
	if p.LastUser != 0x62 {
		t.Fatalf("last_user = 0x%02X, want 0x62", p.LastUser)
	}
}

func TestHandleZoneStatusPushesEventAndUpdatesRegistry(t *testing.T) {
	l := &fakeLink{}
	c := newTestController(t, l, DefaultSettings())

	// zone 1 (data[0]=0x00), type bytes data[2:5], condition data[5]=0x01 (faulted+on).
	data := []byte{0x00, 0x00, 0x40, 0x00, 0x00, 0x01}
	c.handleZoneStatus(data)

	z, ok := c.Registry().ZoneSnapshot(1)
	if !ok {
		t.Fatal("zone 1 not found")
	}
	if !z.State {
		t.Fatal("expected zone state = true")
	}

	events := c.Events().Get(0, time.Second)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	payload, ok := events[0].Payload.(QueuedEvent)
	if !ok || payload.Kind != KindZoneStatus {
		t.Fatalf("got %#v, want a zone_status QueuedEvent", events[0].Payload)
	}
}

func TestHandleSystemStatusEnqueuesPartitionRequestsForValidPartitions(t *testing.T) {
	l := &fakeLink{}
	c := newTestController(t, l, DefaultSettings())

	data := make([]byte, 10)
	data[0] = 0x01          // panel id
	data[9] = 0x03          // byte8 (index 9 in data, index8 of statusBytes): valid partitions 1 and 2
	c.handleSystemStatus(data)

	if n := c.outbound.len(); n != 2 {
		t.Fatalf("outbound queue has %d items, want 2", n)
	}
	first, _ := c.outbound.pop()
	second, _ := c.outbound.pop()
	if first.msgType != msgPartitionStatusRequest || second.msgType != msgPartitionStatusRequest {
		t.Fatalf("expected two partition-status requests, got %v %v", first, second)
	}
	if string(first.data) != string([]byte{0x00}) || string(second.data) != string([]byte{0x01}) {
		t.Fatalf("got data % X / % X, want [00] / [01]", first.data, second.data)
	}
}

func TestRunDrainsOutboundDuringIdlePeriod(t *testing.T) {
	l := &fakeLink{}
	settings := DefaultSettings()
	settings.IdleHeartbeatSeconds = 120
	c := newTestController(t, l, settings)
	c.EnqueueArm(ArmStay, 1)

	runBriefly(t, c)

	found := false
	for _, w := range l.writes {
		if w.msgType == 0x3E {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the queued arm command to have been drained during idle ticks")
	}
}
