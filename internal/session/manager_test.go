package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	langtableimpl "github.com/postcareplus/postcare-sms/external/langtable"
	"github.com/postcareplus/postcare-sms/internal/advisor"
	"github.com/postcareplus/postcare-sms/internal/alert"
	"github.com/postcareplus/postcare-sms/internal/config"
	"github.com/postcareplus/postcare-sms/internal/directory"
	"github.com/postcareplus/postcare-sms/internal/repository"
	"github.com/postcareplus/postcare-sms/internal/scoring"
)

const testPhone = "+250780000001"

type memRepo struct {
	sessions map[string]*repository.Session
	alerts   []*repository.AlertRecord
}

func newMemRepo() *memRepo {
	return &memRepo{sessions: make(map[string]*repository.Session)}
}

func cloneSession(s *repository.Session) *repository.Session {
	c := *s
	c.MessageHistory = append([]repository.Message(nil), s.MessageHistory...)
	c.PendingVitals = make(map[string]repository.PendingVital, len(s.PendingVitals))
	for k, v := range s.PendingVitals {
		c.PendingVitals[k] = v
	}
	if s.EndedAt != nil {
		e := *s.EndedAt
		c.EndedAt = &e
	}
	return &c
}

func (r *memRepo) Create(_ context.Context, s *repository.Session) error {
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

func (r *memRepo) GetActiveByPhone(_ context.Context, phone string) (*repository.Session, error) {
	var latest *repository.Session
	for _, s := range r.sessions {
		if s.Phone != phone || s.State == repository.StateEnded {
			continue
		}
		if latest == nil || s.StartedAt.After(latest.StartedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	return cloneSession(latest), nil
}

func (r *memRepo) Update(_ context.Context, s *repository.Session) error {
	if _, ok := r.sessions[s.ID]; !ok {
		return errors.New("session not found")
	}
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

func (r *memRepo) MarkEnded(_ context.Context, sessionID string, endedAt time.Time) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return errors.New("session not found")
	}
	s.State = repository.StateEnded
	s.EndedAt = &endedAt
	return nil
}

func (r *memRepo) DeleteInactiveBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, s := range r.sessions {
		if s.LastActivityAt.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *memRepo) AppendAlert(_ context.Context, rec *repository.AlertRecord) error {
	r.alerts = append(r.alerts, rec)
	return nil
}

func (r *memRepo) CountAlertsByLevelSince(_ context.Context, _ time.Time) (map[string]int, error) {
	counts := make(map[string]int)
	for _, a := range r.alerts {
		counts[a.Level]++
	}
	return counts, nil
}

type sentMessage struct {
	phone string
	text  string
}

type mockSender struct {
	sent    []sentMessage
	failFor map[string]error
}

func (m *mockSender) Send(_ context.Context, phone, text string) error {
	if err, ok := m.failFor[phone]; ok {
		return err
	}
	m.sent = append(m.sent, sentMessage{phone: phone, text: text})
	return nil
}

func (m *mockSender) sentTo(phone string) []string {
	var texts []string
	for _, s := range m.sent {
		if s.phone == phone {
			texts = append(texts, s.text)
		}
	}
	return texts
}

type mockScorer struct {
	result scoring.Result
	err    error
	calls  []scoring.Vitals
}

func (m *mockScorer) Score(_ context.Context, v scoring.Vitals) (scoring.Result, error) {
	m.calls = append(m.calls, v)
	if m.err != nil {
		return scoring.Result{}, m.err
	}
	return m.result, nil
}

type mockAdvisor struct {
	adviseErr error
	replyErr  error
}

func (m *mockAdvisor) AdviseVitals(_ context.Context, _ scoring.Vitals, _ scoring.Result, _ advisor.PatientContext) (string, error) {
	if m.adviseErr != nil {
		return "", m.adviseErr
	}
	return "inama: komeza gufata imiti yawe", nil
}

func (m *mockAdvisor) Reply(_ context.Context, freeText string, _ advisor.PatientContext) (string, error) {
	if m.replyErr != nil {
		return "", m.replyErr
	}
	return "igisubizo: " + freeText, nil
}

type mockDirectory struct {
	fixed    map[directory.Role]directory.Contact
	regional map[string]directory.Contact
}

func (m *mockDirectory) GetFixed(role directory.Role) (directory.Contact, bool) {
	c, ok := m.fixed[role]
	return c, ok
}

func (m *mockDirectory) GetRegional(region string) (directory.Contact, bool) {
	c, ok := m.regional[region]
	return c, ok
}

func (m *mockDirectory) DefaultRegional() (directory.Contact, bool) {
	c, ok := m.regional["gasabo"]
	return c, ok
}

type harness struct {
	mgr    *Manager
	repo   *memRepo
	sender *mockSender
	scorer *mockScorer
	adv    *mockAdvisor
}

func newHarness() *harness {
	cfg := &config.Config{
		DefaultLanguage:       "rw",
		SessionTimeoutSec:     1800,
		SessionRetentionHours: 24,
		CleanupIntervalHours:  24,
	}
	repo := newMemRepo()
	sender := &mockSender{failFor: map[string]error{}}
	scorer := &mockScorer{result: scoring.Result{Severity: 2, RecoveryScore: 0.8}}
	adv := &mockAdvisor{}
	table := langtableimpl.NewKinyarwandaTable()
	dir := &mockDirectory{
		fixed: map[directory.Role]directory.Contact{
			directory.RolePrimaryDoctor:   {Name: "Dr. Muganga", Phone: "+doc", Role: directory.RolePrimaryDoctor},
			directory.RoleEmergencyDoctor: {Name: "Dr. Byihutirwa", Phone: "+emdoc", Role: directory.RoleEmergencyDoctor},
			directory.RoleCoordinator:     {Name: "Coordinator", Phone: "+coord", Role: directory.RoleCoordinator},
		},
		regional: map[string]directory.Contact{
			"gasabo": {Name: "Uwimana", Phone: "+chw", Role: directory.RoleRegionalCHW, Region: "gasabo"},
		},
	}
	notifier := alert.NewNotifier(dir, sender, table, repo)
	return &harness{
		mgr:    NewManager(cfg, repo, sender, scorer, adv, table, notifier),
		repo:   repo,
		sender: sender,
		scorer: scorer,
		adv:    adv,
	}
}

func (h *harness) start(t *testing.T) string {
	t.Helper()
	res, err := h.mgr.StartSession(context.Background(), "patient-1", testPhone, PatientInfo{Name: "Mukamana", Region: "gasabo"})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return res.SessionID
}

func (h *harness) inbound(t *testing.T, text string) InboundResult {
	t.Helper()
	res, err := h.mgr.HandleInboundMessage(context.Background(), testPhone, text)
	if err != nil {
		t.Fatalf("HandleInboundMessage(%q): %v", text, err)
	}
	return res
}

func (h *harness) session(t *testing.T, id string) *repository.Session {
	t.Helper()
	s, ok := h.repo.sessions[id]
	if !ok {
		t.Fatalf("session %s not in store", id)
	}
	return s
}

func TestStartSessionCreatesAndWelcomes(t *testing.T) {
	h := newHarness()
	id := h.start(t)

	s := h.session(t, id)
	if s.State != repository.StateMainMenu {
		t.Errorf("state = %q, want main_menu", s.State)
	}
	if s.Language != "rw" {
		t.Errorf("language = %q, want default rw", s.Language)
	}
	sent := h.sender.sentTo(testPhone)
	if len(sent) != 1 || !strings.Contains(sent[0], "Mukamana") {
		t.Errorf("welcome message = %q", sent)
	}
}

func TestVitalsRoundEndToEnd(t *testing.T) {
	h := newHarness()
	h.scorer.result = scoring.Result{
		Severity:       6,
		RecoveryScore:  0.5,
		Alerts:         []scoring.Tag{scoring.TagFever},
		NeedsAttention: true,
	}
	id := h.start(t)

	h.inbound(t, "1")
	h.inbound(t, "6")
	h.inbound(t, "7")
	h.inbound(t, "37.5")
	res := h.inbound(t, "8")

	if len(h.scorer.calls) != 1 {
		t.Fatalf("scorer calls = %d, want exactly 1 per round", len(h.scorer.calls))
	}
	v := h.scorer.calls[0]
	if v.Pain != 6 || v.WoundHealing != 7 || v.TemperatureC != 37.5 || v.Mobility != 8 {
		t.Errorf("scored vitals = %+v", v)
	}

	s := h.session(t, id)
	if s.State != repository.StateFreeConversation {
		t.Errorf("state = %q, want free_conversation", s.State)
	}
	if len(s.PendingVitals) != 0 {
		t.Errorf("pending vitals not cleared after commit: %v", s.PendingVitals)
	}

	if len(res.OutboundMessages) != 2 {
		t.Fatalf("outbound = %d messages, want summary plus advice", len(res.OutboundMessages))
	}
	if !strings.Contains(res.OutboundMessages[1], "inama") {
		t.Errorf("advice missing from replies: %q", res.OutboundMessages)
	}
	if !res.EscalationTriggered {
		t.Error("fever result should trigger escalation")
	}
	if len(h.repo.alerts) != 1 || h.repo.alerts[0].Level != "medium" {
		t.Errorf("alert records = %+v, want one medium record", h.repo.alerts)
	}
}

func TestBenignRoundDoesNotEscalate(t *testing.T) {
	h := newHarness()
	h.start(t)

	h.inbound(t, "1")
	h.inbound(t, "2")
	h.inbound(t, "8")
	h.inbound(t, "36.8")
	res := h.inbound(t, "9")

	if res.EscalationTriggered {
		t.Error("healthy vitals must not page caregivers")
	}
	if len(h.repo.alerts) != 0 {
		t.Errorf("alert records = %d, want none", len(h.repo.alerts))
	}
}

func TestRepromptDoesNotAdvanceOrScore(t *testing.T) {
	h := newHarness()
	id := h.start(t)

	h.inbound(t, "1")
	h.inbound(t, "ndabize")
	h.inbound(t, "11")

	s := h.session(t, id)
	if s.State != repository.StateCollectingPain {
		t.Errorf("state = %q, want still collecting_pain", s.State)
	}
	if len(s.PendingVitals) != 0 {
		t.Errorf("rejected input stored vitals: %v", s.PendingVitals)
	}
	if len(h.scorer.calls) != 0 {
		t.Errorf("scorer called %d times before round completion", len(h.scorer.calls))
	}
}

func TestEmergencyKeywordNotifiesEmergencyContacts(t *testing.T) {
	h := newHarness()
	id := h.start(t)

	h.inbound(t, "2")
	res := h.inbound(t, "sinshobora guhumeka neza")

	if !res.EscalationTriggered {
		t.Fatal("emergency keyword should escalate")
	}
	s := h.session(t, id)
	if s.State != repository.StateEmergencyMode {
		t.Errorf("state = %q, want emergency_mode", s.State)
	}
	if s.EmergencyDetail == "" {
		t.Error("emergency detail should record the triggering text")
	}

	if len(h.repo.alerts) != 1 {
		t.Fatalf("alert records = %d, want 1", len(h.repo.alerts))
	}
	rec := h.repo.alerts[0]
	if rec.Level != "emergency" || rec.Type != "emergency" {
		t.Errorf("record level/type = %s/%s", rec.Level, rec.Type)
	}
	if len(rec.Notifications) != 3 {
		t.Fatalf("notifications = %d, want emergency doctor, primary doctor and coordinator", len(rec.Notifications))
	}

	// every message in emergency mode re-notifies
	h.inbound(t, "ndacyababara")
	if len(h.repo.alerts) != 2 {
		t.Errorf("followup message should append another record, got %d", len(h.repo.alerts))
	}
}

func TestDoctorRequestIsLowTier(t *testing.T) {
	h := newHarness()
	id := h.start(t)

	res := h.inbound(t, "5")
	if !res.EscalationTriggered {
		t.Fatal("doctor request should escalate")
	}
	if len(h.repo.alerts) != 1 || h.repo.alerts[0].Level != "low" {
		t.Fatalf("alert records = %+v, want one low record", h.repo.alerts)
	}
	if n := len(h.repo.alerts[0].Notifications); n != 1 {
		t.Errorf("notifications = %d, want regional CHW only", n)
	}
	if s := h.session(t, id); s.State != repository.StateMainMenu {
		t.Errorf("state = %q, want main_menu", s.State)
	}
}

func TestFreeConversationReply(t *testing.T) {
	h := newHarness()
	h.start(t)

	h.inbound(t, "2")
	res := h.inbound(t, "ese nshobora kurya inyama?")

	if len(res.OutboundMessages) != 1 {
		t.Fatalf("outbound = %d, want one advisor reply", len(res.OutboundMessages))
	}
	if !strings.Contains(res.OutboundMessages[0], "igisubizo") {
		t.Errorf("reply = %q", res.OutboundMessages[0])
	}
	if res.EscalationTriggered {
		t.Error("ordinary question must not escalate")
	}
}

func TestSessionTimeoutExpiresLazily(t *testing.T) {
	h := newHarness()
	id := h.start(t)
	h.repo.sessions[id].LastActivityAt = time.Now().Add(-1801 * time.Second)

	res := h.inbound(t, "1")

	if len(res.OutboundMessages) != 1 || !strings.Contains(res.OutboundMessages[0], "Ntibaguzi") {
		t.Errorf("expired session should get the unknown patient notice, got %q", res.OutboundMessages)
	}
	if s := h.session(t, id); s.State != repository.StateEnded {
		t.Errorf("expired session state = %q, want ended", s.State)
	}
}

func TestSessionJustInsideTimeoutStillActive(t *testing.T) {
	h := newHarness()
	id := h.start(t)
	h.repo.sessions[id].LastActivityAt = time.Now().Add(-1799 * time.Second)

	h.inbound(t, "1")

	if s := h.session(t, id); s.State != repository.StateCollectingPain {
		t.Errorf("state = %q, want collecting_pain", s.State)
	}
}

func TestUnknownPhoneGetsNotice(t *testing.T) {
	h := newHarness()

	res := h.inbound(t, "muraho")

	if len(res.OutboundMessages) != 1 || !strings.Contains(res.OutboundMessages[0], "Ntibaguzi") {
		t.Errorf("outbound = %q, want unknown patient notice", res.OutboundMessages)
	}
	if len(h.repo.sessions) != 0 {
		t.Error("no session should be created for an unknown phone")
	}
}

func TestMenuExitEndsSession(t *testing.T) {
	h := newHarness()
	id := h.start(t)

	h.inbound(t, "0")

	s := h.session(t, id)
	if s.State != repository.StateEnded || s.EndedAt == nil {
		t.Errorf("state = %q, endedAt = %v", s.State, s.EndedAt)
	}

	// the ended session no longer resolves; the next text gets the notice
	res := h.inbound(t, "1")
	if !strings.Contains(res.OutboundMessages[0], "Ntibaguzi") {
		t.Errorf("post-exit message got %q", res.OutboundMessages)
	}
}

func TestSendFailureDoesNotRollBack(t *testing.T) {
	h := newHarness()
	id := h.start(t)
	h.sender.failFor[testPhone] = errors.New("gateway down")

	res, err := h.mgr.HandleInboundMessage(context.Background(), testPhone, "1")
	if err != nil {
		t.Fatalf("send failure must not fail the step: %v", err)
	}
	if res.SendErr == nil {
		t.Error("SendErr should carry the gateway failure")
	}
	if s := h.session(t, id); s.State != repository.StateCollectingPain {
		t.Errorf("state = %q, want persisted collecting_pain", s.State)
	}
}

func TestScorerFailureAbortsPersistence(t *testing.T) {
	h := newHarness()
	id := h.start(t)

	h.inbound(t, "1")
	h.inbound(t, "6")
	h.inbound(t, "7")
	h.inbound(t, "37.5")

	h.scorer.err = errors.New("model unavailable")
	if _, err := h.mgr.HandleInboundMessage(context.Background(), testPhone, "8"); err == nil {
		t.Fatal("scorer failure should abort the step")
	}

	s := h.session(t, id)
	if s.State != repository.StateCollectingMobility {
		t.Errorf("state = %q, want unchanged collecting_mobility", s.State)
	}
	if len(s.PendingVitals) != 3 {
		t.Errorf("pending vitals = %d, want the three captured values intact", len(s.PendingVitals))
	}
	if len(h.repo.alerts) != 0 {
		t.Error("aborted step must not escalate")
	}
}

func TestReplayedRoundScoresAgain(t *testing.T) {
	h := newHarness()
	h.start(t)

	collect := func() {
		h.inbound(t, "1")
		h.inbound(t, "6")
		h.inbound(t, "7")
		h.inbound(t, "37.5")
		h.inbound(t, "8")
	}
	collect()

	// a new session always inserts and becomes the resolvable one
	h.start(t)
	collect()

	if len(h.scorer.calls) != 2 {
		t.Fatalf("scorer calls = %d, want one per completed round", len(h.scorer.calls))
	}
	if h.scorer.calls[0].Pain != h.scorer.calls[1].Pain {
		t.Error("identical rounds should submit identical vitals")
	}
}

func TestCleanupLoopDeletesStaleSessions(t *testing.T) {
	h := newHarness()
	id := h.start(t)
	h.repo.sessions[id].LastActivityAt = time.Now().Add(-25 * time.Hour)

	n, err := h.repo.DeleteInactiveBefore(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if len(h.repo.sessions) != 0 {
		t.Error("stale session should be gone")
	}
}
