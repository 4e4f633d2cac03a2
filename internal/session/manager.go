package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/postcareplus/postcare-sms/internal/advisor"
	"github.com/postcareplus/postcare-sms/internal/alert"
	"github.com/postcareplus/postcare-sms/internal/config"
	"github.com/postcareplus/postcare-sms/internal/langtable"
	"github.com/postcareplus/postcare-sms/internal/repository"
	"github.com/postcareplus/postcare-sms/internal/scoring"
	"github.com/postcareplus/postcare-sms/internal/sms"
)

// Manager drives patient conversations end to end: it owns the session
// lifecycle, runs the transition machine, and orders the side effects so
// that state is persisted before caregivers are notified and before
// replies go out. Messages for one phone are handled strictly one at a
// time.
type Manager struct {
	cfg      *config.Config
	repo     repository.Repository
	sender   sms.Sender
	scorer   scoring.Scorer
	advisor  advisor.Advisor
	table    langtable.Table
	notifier *alert.Notifier
	machine  *Machine

	mu         sync.Mutex
	phoneLocks map[string]*sync.Mutex
}

func NewManager(
	cfg *config.Config,
	repo repository.Repository,
	sender sms.Sender,
	scorer scoring.Scorer,
	adv advisor.Advisor,
	table langtable.Table,
	notifier *alert.Notifier,
) *Manager {
	return &Manager{
		cfg:        cfg,
		repo:       repo,
		sender:     sender,
		scorer:     scorer,
		advisor:    adv,
		table:      table,
		notifier:   notifier,
		machine:    NewMachine(table),
		phoneLocks: make(map[string]*sync.Mutex),
	}
}

// PatientInfo is the enrollment data for a new session.
type PatientInfo struct {
	Name     string
	Region   string
	Language string
}

type StartResult struct {
	SessionID   string
	WelcomeText string
	// SendErr reports a gateway failure; the session exists regardless.
	SendErr error
}

// InboundResult is what one inbound message produced. SendErr carries
// gateway failures for replies that were already persisted to history.
type InboundResult struct {
	OutboundMessages    []string
	EscalationTriggered bool
	SendErr             error
}

func (m *Manager) phoneLock(phone string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.phoneLocks[phone]
	if !ok {
		l = &sync.Mutex{}
		m.phoneLocks[phone] = l
	}
	return l
}

// StartSession begins a follow-up conversation for an enrolled patient.
// A new session is always created; an existing active session for the
// phone stays in storage and stops being resolvable as the latest.
func (m *Manager) StartSession(ctx context.Context, patientRef, phone string, info PatientInfo) (StartResult, error) {
	lock := m.phoneLock(phone)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	lang := info.Language
	if lang == "" {
		lang = m.cfg.DefaultLanguage
	}
	sess := &repository.Session{
		ID:             uuid.NewString(),
		PatientRef:     patientRef,
		Phone:          phone,
		PatientName:    info.Name,
		Region:         info.Region,
		Language:       lang,
		State:          repository.StateMainMenu,
		StartedAt:      now,
		LastActivityAt: now,
		PendingVitals:  make(map[string]repository.PendingVital),
	}

	params := map[string]string{"name": info.Name}
	text := m.table.Render(langtable.KeyWelcome, params) + "\n\n" + m.table.Render(langtable.KeyMainMenu, params)
	sess.AppendMessage(repository.DirectionOutbound, text, now)

	if err := m.repo.Create(ctx, sess); err != nil {
		return StartResult{}, fmt.Errorf("failed to create session: %w", err)
	}
	slog.Info("session started", "session_id", sess.ID, "patient_ref", patientRef, "region", info.Region)

	res := StartResult{SessionID: sess.ID, WelcomeText: text}
	if err := m.sender.Send(ctx, phone, text); err != nil {
		slog.Error("failed to send welcome message", "session_id", sess.ID, "error", err)
		res.SendErr = err
	}
	return res, nil
}

// HandleInboundMessage processes one patient SMS. Effect order is
// fixed: run the machine, call scorer and advisor if a round completed,
// persist the session, then escalate, then send replies. Collaborator
// failures before persistence abort the whole step; send failures after
// it do not roll anything back.
func (m *Manager) HandleInboundMessage(ctx context.Context, phone, text string) (InboundResult, error) {
	lock := m.phoneLock(phone)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	sess, err := m.activeSession(ctx, phone, now)
	if err != nil {
		return InboundResult{}, err
	}
	if sess == nil {
		return m.replyUnknownPatient(ctx, phone)
	}

	step, err := m.machine.Step(sess, text, now)
	if err != nil {
		return InboundResult{}, err
	}

	sess.AppendMessage(repository.DirectionInbound, text, now)
	if step.ClearVitals {
		sess.ClearPendingVitals()
	}
	if step.StoredVital != "" {
		sess.StoreVital(step.StoredVital, step.StoredValue, now)
	}

	replies := append([]string(nil), step.Replies...)
	var escalations []alert.Escalation

	if step.CompletedVitals != nil {
		result, err := m.scorer.Score(ctx, *step.CompletedVitals)
		if err != nil {
			return InboundResult{}, fmt.Errorf("scoring failed: %w", err)
		}
		advice, err := m.advisor.AdviseVitals(ctx, *step.CompletedVitals, result, m.patientContext(sess))
		if err != nil {
			return InboundResult{}, fmt.Errorf("advice generation failed: %w", err)
		}
		replies = append(replies, advice)
		sess.ClearPendingVitals()
		if result.NeedsAttention || result.Severity > 5 {
			escalations = append(escalations, alert.Escalation{Result: result, Detail: "vitals collection round"})
		}
	}

	if step.FreeText != "" {
		reply, err := m.advisor.Reply(ctx, step.FreeText, m.patientContext(sess))
		if err != nil {
			return InboundResult{}, fmt.Errorf("reply generation failed: %w", err)
		}
		replies = append(replies, reply)
	}

	if step.DoctorRequested {
		escalations = append(escalations, alert.Escalation{
			Result: doctorRequestResult(),
			Detail: "patient requested doctor contact",
		})
	}
	if step.EmergencyDetected || step.EmergencyFollowup {
		sess.EmergencyDetail = text
		escalations = append(escalations, alert.Escalation{
			Result:           emergencyResult(),
			EmergencyContext: true,
			Detail:           text,
		})
	}

	sess.State = step.Next
	if step.EndSession {
		endedAt := now
		sess.EndedAt = &endedAt
	}
	for _, r := range replies {
		sess.AppendMessage(repository.DirectionOutbound, r, now)
	}
	if err := m.repo.Update(ctx, sess); err != nil {
		return InboundResult{}, fmt.Errorf("failed to persist session: %w", err)
	}

	res := InboundResult{OutboundMessages: replies}
	for _, e := range escalations {
		e.PatientRef = sess.PatientRef
		e.PatientName = sess.PatientName
		e.Phone = sess.Phone
		e.Region = sess.Region
		if _, err := m.notifier.Escalate(ctx, e); err != nil {
			slog.Error("escalation failed", "session_id", sess.ID, "error", err)
		}
		res.EscalationTriggered = true
	}

	var sendErrs []error
	for _, r := range replies {
		if err := m.sender.Send(ctx, phone, r); err != nil {
			slog.Error("failed to send reply", "session_id", sess.ID, "error", err)
			sendErrs = append(sendErrs, err)
		}
	}
	res.SendErr = errors.Join(sendErrs...)
	return res, nil
}

// activeSession resolves the latest non-ended session for the phone and
// applies timeout expiry lazily: a session past the inactivity window is
// ended on sight and treated as absent.
func (m *Manager) activeSession(ctx context.Context, phone string, now time.Time) (*repository.Session, error) {
	sess, err := m.repo.GetActiveByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if sess == nil {
		return nil, nil
	}
	if now.Sub(sess.LastActivityAt) > m.cfg.SessionTimeout() {
		slog.Info("session timed out", "session_id", sess.ID, "phone", phone, "last_activity_at", sess.LastActivityAt)
		if err := m.repo.MarkEnded(ctx, sess.ID, now); err != nil {
			return nil, fmt.Errorf("failed to end expired session: %w", err)
		}
		return nil, nil
	}
	return sess, nil
}

func (m *Manager) replyUnknownPatient(ctx context.Context, phone string) (InboundResult, error) {
	notice := m.table.Render(langtable.KeyUnknownPatient, nil)
	res := InboundResult{OutboundMessages: []string{notice}}
	if err := m.sender.Send(ctx, phone, notice); err != nil {
		slog.Error("failed to send unknown patient notice", "phone", phone, "error", err)
		res.SendErr = err
	}
	return res, nil
}

func (m *Manager) patientContext(sess *repository.Session) advisor.PatientContext {
	return advisor.PatientContext{
		PatientRef: sess.PatientRef,
		Name:       sess.PatientName,
		Region:     sess.Region,
		Language:   sess.Language,
	}
}

// doctorRequestResult is the synthetic scoring result for a menu doctor
// request, shaped so the policy table resolves it to the lowest tier.
func doctorRequestResult() scoring.Result {
	return scoring.Result{
		Severity:      1,
		RecoveryScore: 0.8,
		Alerts:        []scoring.Tag{scoring.TagDoctorRequest},
	}
}

// emergencyResult is the synthetic scoring result for keyword-detected
// and menu-entered emergencies; the policy table resolves it to the
// emergency tier without any special casing there.
func emergencyResult() scoring.Result {
	return scoring.Result{
		Severity:       9,
		RecoveryScore:  0.1,
		Alerts:         []scoring.Tag{scoring.TagEmergency},
		NeedsAttention: true,
	}
}

// RunCleanupLoop deletes sessions whose last activity is older than the
// retention window, on the configured interval, until ctx is cancelled.
func (m *Manager) RunCleanupLoop(ctx context.Context) {
	interval := m.cfg.CleanupInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	slog.Info("session cleanup loop started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("session cleanup loop stopped")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-m.cfg.SessionRetention())
			n, err := m.repo.DeleteInactiveBefore(ctx, cutoff)
			if err != nil {
				slog.Error("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("removed stale sessions", "count", n, "cutoff", cutoff)
			}
		}
	}
}
