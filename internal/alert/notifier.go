package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/postcareplus/postcare-sms/internal/directory"
	"github.com/postcareplus/postcare-sms/internal/langtable"
	"github.com/postcareplus/postcare-sms/internal/repository"
	"github.com/postcareplus/postcare-sms/internal/scoring"
	"github.com/postcareplus/postcare-sms/internal/sms"
)

// Escalation is one request to notify caregivers about a patient.
type Escalation struct {
	PatientRef       string
	PatientName      string
	Phone            string
	Region           string
	Result           scoring.Result
	EmergencyContext bool
	Detail           string
}

// Outcome reports what the fan-out did; partial send failures live in
// the alert record, not in an error.
type Outcome struct {
	Level         Level
	Type          Type
	Notifications []repository.NotificationResult
}

type Notifier struct {
	dir    directory.Directory
	sender sms.Sender
	table  langtable.Table
	alerts repository.AlertStore
}

func NewNotifier(dir directory.Directory, sender sms.Sender, table langtable.Table, alerts repository.AlertStore) *Notifier {
	return &Notifier{dir: dir, sender: sender, table: table, alerts: alerts}
}

type target struct {
	roleLabel   string
	contact     directory.Contact
	doctorAlert bool
}

// Escalate resolves the tier, sends the fixed fan-out for it, and
// appends exactly one alert record. Zero resolvable targets at LOW tier
// is a valid outcome, not an error.
func (n *Notifier) Escalate(ctx context.Context, e Escalation) (Outcome, error) {
	level := LevelFor(e.Result)
	alertType := TypeFor(e.Result, e.EmergencyContext)

	targets := n.targetsFor(level, e.Region)
	results := make([]repository.NotificationResult, 0, len(targets))
	for _, tg := range targets {
		text := n.renderProviderMessage(tg, level, e)
		res := repository.NotificationResult{
			Role:  tg.roleLabel,
			Name:  tg.contact.Name,
			Phone: tg.contact.Phone,
			Sent:  true,
		}
		if err := n.sender.Send(ctx, tg.contact.Phone, text); err != nil {
			slog.Error("caregiver notification failed", "role", tg.roleLabel, "phone", tg.contact.Phone, "error", err)
			res.Sent = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}

	rec := &repository.AlertRecord{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now(),
		PatientRef:    e.PatientRef,
		Phone:         e.Phone,
		Level:         string(level),
		Type:          string(alertType),
		Notifications: results,
	}
	if err := n.alerts.AppendAlert(ctx, rec); err != nil {
		slog.Error("failed to append alert record", "patient_ref", e.PatientRef, "level", level, "error", err)
	}
	slog.Info("escalation processed", "patient_ref", e.PatientRef, "level", level, "type", alertType, "notifications", len(results))

	return Outcome{Level: level, Type: alertType, Notifications: results}, nil
}

func (n *Notifier) targetsFor(level Level, region string) []target {
	var targets []target
	addFixed := func(role directory.Role, doctorAlert bool) {
		c, ok := n.dir.GetFixed(role)
		if !ok {
			slog.Warn("fixed caregiver role missing from directory", "role", role)
			return
		}
		targets = append(targets, target{roleLabel: string(role), contact: c, doctorAlert: doctorAlert})
	}
	// fallback controls what happens when the region has no contact:
	// medium and low traffic reroutes to the default region, the high
	// tier skips the regional step instead of substituting.
	addRegional := func(fallback bool) {
		c, ok := n.dir.GetRegional(region)
		if !ok && fallback {
			c, ok = n.dir.DefaultRegional()
		}
		if !ok {
			return
		}
		targets = append(targets, target{roleLabel: string(directory.RoleRegionalCHW), contact: c})
	}

	switch level {
	case LevelEmergency:
		addFixed(directory.RoleEmergencyDoctor, true)
		addFixed(directory.RolePrimaryDoctor, true)
		addFixed(directory.RoleCoordinator, false)
	case LevelHigh:
		addFixed(directory.RolePrimaryDoctor, true)
		addFixed(directory.RoleCoordinator, false)
		addRegional(false)
	case LevelMedium:
		addFixed(directory.RoleCoordinator, false)
		addRegional(true)
	case LevelLow:
		addRegional(true)
	}
	return targets
}

func (n *Notifier) renderProviderMessage(tg target, level Level, e Escalation) string {
	params := map[string]string{
		"patient_name": e.PatientName,
		"phone":        e.Phone,
		"level":        string(level),
		"severity":     fmt.Sprintf("%.1f", e.Result.Severity),
		"alerts":       joinTags(e.Result.Alerts),
		"detail":       e.Detail,
	}
	if tg.doctorAlert {
		return n.table.Render(langtable.KeyProviderAlert, params)
	}
	return n.table.Render(langtable.KeyCHWReport, params)
}

func joinTags(tags []scoring.Tag) string {
	if len(tags) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}

// SendDailySummary texts the coordinator a per-level count of the last
// 24 hours of alert records.
func (n *Notifier) SendDailySummary(ctx context.Context) error {
	coordinator, ok := n.dir.GetFixed(directory.RoleCoordinator)
	if !ok {
		return fmt.Errorf("coordinator contact is missing from directory")
	}
	since := time.Now().Add(-24 * time.Hour)
	counts, err := n.alerts.CountAlertsByLevelSince(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to count alerts: %w", err)
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	text := n.table.Render(langtable.KeyDailySummary, map[string]string{
		"date":      time.Now().Format("2006-01-02"),
		"emergency": fmt.Sprintf("%d", counts[string(LevelEmergency)]),
		"high":      fmt.Sprintf("%d", counts[string(LevelHigh)]),
		"medium":    fmt.Sprintf("%d", counts[string(LevelMedium)]),
		"low":       fmt.Sprintf("%d", counts[string(LevelLow)]),
		"total":     fmt.Sprintf("%d", total),
	})
	if err := n.sender.Send(ctx, coordinator.Phone, text); err != nil {
		return fmt.Errorf("failed to send daily summary: %w", err)
	}
	slog.Info("daily summary sent", "coordinator", coordinator.Phone, "total_alerts", total)
	return nil
}
