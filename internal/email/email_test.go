package email

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nx584/panelgw/internal/config"
	"github.com/nx584/panelgw/internal/panel"
)

type sentMessage struct {
	addr string
	from string
	to   []string
	body string
}

func newTestNotifier(cfg config.EmailConfig, partitions map[int]config.PartitionEmailConfig) (*Notifier, *[]sentMessage) {
	var sent []sentMessage
	n := New(cfg, partitions, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.sendFunc = func(addr, from string, to []string, msg []byte) error {
		sent = append(sent, sentMessage{addr: addr, from: from, to: to, body: string(msg)})
		return nil
	}
	return n, &sent
}

func baseEmailConfig() config.EmailConfig {
	return config.EmailConfig{
		FromAddr:    "panel@example.com",
		SMTPHost:    "mail.example.com:25",
		System:      []string{"ops@example.com"},
		Alarms:      []string{"oncall@example.com"},
		AlarmEvents: []string{"Alarm", "Alarm restore", "Manual fire"},
		Events:      []string{"log@example.com"},
	}
}

func TestUnconfiguredNotifierIsNoOp(t *testing.T) {
	n, sent := newTestNotifier(config.EmailConfig{}, nil)
	n.OnSystemStatus(panel.System{StatusFlags: []string{"AC Fail"}}, nil)
	if len(*sent) != 0 {
		t.Fatalf("expected no mail sent, got %d", len(*sent))
	}
}

func TestOnSystemStatusSendsOnFlagTransition(t *testing.T) {
	n, sent := newTestNotifier(baseEmailConfig(), nil)
	n.OnSystemStatus(panel.System{StatusFlags: []string{"AC Fail"}}, nil)

	if len(*sent) != 1 {
		t.Fatalf("got %d messages, want 1", len(*sent))
	}
	if (*sent)[0].to[0] != "ops@example.com" {
		t.Fatalf("recipient = %q, want ops@example.com", (*sent)[0].to[0])
	}
}

func TestOnSystemStatusNoOpWhenFlagsUnchanged(t *testing.T) {
	n, sent := newTestNotifier(baseEmailConfig(), nil)
	n.OnSystemStatus(panel.System{StatusFlags: []string{"AC Fail"}}, []string{"AC Fail"})
	if len(*sent) != 0 {
		t.Fatalf("expected no mail sent for unchanged flags, got %d", len(*sent))
	}
}

func TestOnPartitionStatusRoutesByClassification(t *testing.T) {
	partitions := map[int]config.PartitionEmailConfig{
		1: {
			Flags:       []string{"Armed", "Alarm", "Chime"},
			IgnoreFlags: []string{"Chime"},
			StatusFlags: []string{"Armed"},
			AlarmFlags:  []string{"Alarm"},
		},
	}
	n, sent := newTestNotifier(baseEmailConfig(), partitions)

	n.OnPartitionStatus(panel.Partition{Number: 1}, []string{"Armed", "Alarm", "Chime"}, nil)

	if len(*sent) != 2 {
		t.Fatalf("got %d messages, want 2 (status + alarm)", len(*sent))
	}
	var sawStatus, sawAlarm bool
	for _, m := range *sent {
		if m.to[0] == "ops@example.com" {
			sawStatus = true
		}
		if m.to[0] == "oncall@example.com" {
			sawAlarm = true
		}
	}
	if !sawStatus || !sawAlarm {
		t.Fatalf("expected both status and alarm mail, got %+v", *sent)
	}
}

func TestOnPartitionStatusUnknownPartitionIsNoOp(t *testing.T) {
	n, sent := newTestNotifier(baseEmailConfig(), map[int]config.PartitionEmailConfig{})
	n.OnPartitionStatus(panel.Partition{Number: 9}, []string{"Armed"}, nil)
	if len(*sent) != 0 {
		t.Fatalf("expected no mail for unconfigured partition, got %d", len(*sent))
	}
}

func TestOnLogEventAlarmEventNotifiesBothLists(t *testing.T) {
	n, sent := newTestNotifier(baseEmailConfig(), nil)
	event := panel.LogEvent{EventType: 64, Timestamp: time.Now()} // "Alarm" in SystemEventNames[0]

	n.OnLogEvent(event)

	if len(*sent) != 1 {
		t.Fatalf("got %d messages, want 1", len(*sent))
	}
	recipients := (*sent)[0].to
	if len(recipients) != 2 {
		t.Fatalf("recipients = %v, want both log and oncall addresses", recipients)
	}
}

func TestOnLogEventNonAlarmOnlyNotifiesEvents(t *testing.T) {
	n, sent := newTestNotifier(baseEmailConfig(), nil)
	event := panel.LogEvent{EventType: 64 + 3, Timestamp: time.Now()} // "Fire Alarm", not in AlarmEvents

	n.OnLogEvent(event)

	if len(*sent) != 1 {
		t.Fatalf("got %d messages, want 1", len(*sent))
	}
	if len((*sent)[0].to) != 1 || (*sent)[0].to[0] != "log@example.com" {
		t.Fatalf("recipients = %v, want only log@example.com", (*sent)[0].to)
	}
}
