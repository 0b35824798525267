// Package email sends best-effort SMTP alerts on system and partition
// condition-flag transitions and on log events, grounded directly on
// original_source/nx584/mail.py's three notification paths. It registers
// as a controller.SystemStatusExtension, controller.PartitionStatusExtension,
// and controller.LogEventExtension.
package email

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/nx584/panelgw/internal/config"
	"github.com/nx584/panelgw/internal/panel"
)

// Notifier sends alerts per the loaded [email]/[partition_<n>] config. A
// Notifier with an empty FromAddr or SMTPHost is a configured no-op
// (mail.py's MissingEmailConfig short-circuit): every On* hook returns
// without attempting a connection.
type Notifier struct {
	cfg  config.EmailConfig
	part map[int]config.PartitionEmailConfig
	log  *slog.Logger

	// sendFunc defaults to smtp.SendMail; overridden in tests.
	sendFunc func(addr string, from string, to []string, msg []byte) error
}

// New constructs a Notifier from the loaded file config.
func New(email config.EmailConfig, partitions map[int]config.PartitionEmailConfig, log *slog.Logger) *Notifier {
	return &Notifier{
		cfg:      email,
		part:     partitions,
		log:      log,
		sendFunc: func(addr, from string, to []string, msg []byte) error { return smtp.SendMail(addr, nil, from, to, msg) },
	}
}

func (n *Notifier) configured() bool {
	return n.cfg.FromAddr != "" && n.cfg.SMTPHost != ""
}

func (n *Notifier) send(subject string, recipients []string, body string) {
	if !n.configured() || len(recipients) == 0 {
		return
	}
	msg := buildMessage(n.cfg.FromAddr, recipients, subject, body)
	if err := n.sendFunc(n.cfg.SMTPHost, n.cfg.FromAddr, recipients, msg); err != nil {
		n.log.Warn("email_send_failed", "subject", subject, "error", err)
	}
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// OnSystemStatus implements controller.SystemStatusExtension: mails
// [email].system whenever the asserted/de-asserted flag sets differ from
// the previous snapshot.
func (n *Notifier) OnSystemStatus(system panel.System, previous []string) {
	asserted, deasserted := panel.Diff(previous, system.StatusFlags)
	if len(asserted) == 0 && len(deasserted) == 0 {
		return
	}
	body := fmt.Sprintf(
		"Security System alert.\n\nThe following new flags have been asserted:\n%s\n\nThe following flags are now de-asserted:\n%s\n",
		strings.Join(asserted, ","), strings.Join(deasserted, ","))
	n.send("Security System Alert", n.cfg.System, body)
}

// OnPartitionStatus implements controller.PartitionStatusExtension: filters
// asserted/deasserted flags through the partition's Flags/IgnoreFlags
// classification, then routes StatusFlags hits to [email].system and
// AlarmFlags hits to [email].alarms.
func (n *Notifier) OnPartitionStatus(partition panel.Partition, asserted, deasserted []string) {
	pc, ok := n.part[partition.Number]
	if !ok {
		return
	}
	asserted = filterFlags(asserted, pc)
	deasserted = filterFlags(deasserted, pc)
	if len(asserted) == 0 && len(deasserted) == 0 {
		return
	}

	if hit := intersects(asserted, deasserted, pc.StatusFlags); hit {
		body := fmt.Sprintf("Security System partition %d status change.\nAsserted: %s\nDe-asserted: %s\n",
			partition.Number, strings.Join(asserted, ","), strings.Join(deasserted, ","))
		n.send(fmt.Sprintf("Security System Partition %d Alert", partition.Number), n.cfg.System, body)
	}
	if hit := intersects(asserted, deasserted, pc.AlarmFlags); hit {
		body := fmt.Sprintf("Security System partition %d alarm change.\nAsserted: %s\nDe-asserted: %s\n",
			partition.Number, strings.Join(asserted, ","), strings.Join(deasserted, ","))
		n.send(fmt.Sprintf("Security System Partition %d Alert", partition.Number), n.cfg.Alarms, body)
	}
}

// OnLogEvent implements controller.LogEventExtension: always mails
// [email].events; additionally mails [email].alarms when the event string
// matches one of [email].alarm_events (default "Alarm,Alarm restore,Manual
// fire"), per mail.py's send_log_event_mail.
func (n *Notifier) OnLogEvent(event panel.LogEvent) {
	text := event.EventString()
	recipients := append([]string(nil), n.cfg.Events...)
	for _, alarmName := range n.cfg.AlarmEvents {
		if alarmName == text {
			recipients = append(recipients, n.cfg.Alarms...)
			break
		}
	}
	if len(recipients) == 0 {
		return
	}
	body := fmt.Sprintf("%s at %s", text, event.Timestamp.Format(time.RFC1123))
	n.send(fmt.Sprintf("Security: %s", text), dedupe(recipients), body)
}

func filterFlags(flags []string, pc config.PartitionEmailConfig) []string {
	ignore := toSet(pc.IgnoreFlags)
	allow := toSet(pc.Flags)
	var out []string
	for _, f := range flags {
		if ignore[f] {
			continue
		}
		if len(allow) > 0 && !allow[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func intersects(asserted, deasserted, classified []string) bool {
	if len(classified) == 0 {
		return false
	}
	set := toSet(classified)
	for _, f := range asserted {
		if set[f] {
			return true
		}
	}
	for _, f := range deasserted {
		if set[f] {
			return true
		}
	}
	return false
}

func toSet(flags []string) map[string]bool {
	if len(flags) == 0 {
		return nil
	}
	out := make(map[string]bool, len(flags))
	for _, f := range flags {
		out[f] = true
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
