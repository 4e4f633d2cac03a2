package repository

import "time"

// ConversationState is the closed set of states a patient session can be
// in. Persisted as text; Valid guards against unknown values coming back
// from storage.
type ConversationState string

const (
	StateInitial               ConversationState = "initial"
	StateMainMenu              ConversationState = "main_menu"
	StateCollectingPain        ConversationState = "collecting_pain"
	StateCollectingWound       ConversationState = "collecting_wound"
	StateCollectingTemperature ConversationState = "collecting_temperature"
	StateCollectingMobility    ConversationState = "collecting_mobility"
	StateFreeConversation      ConversationState = "free_conversation"
	StateEmergencyMode         ConversationState = "emergency_mode"
	StateEnded                 ConversationState = "ended"
)

func (s ConversationState) Valid() bool {
	switch s {
	case StateInitial, StateMainMenu, StateCollectingPain, StateCollectingWound,
		StateCollectingTemperature, StateCollectingMobility, StateFreeConversation,
		StateEmergencyMode, StateEnded:
		return true
	}
	return false
}

// Collecting reports whether the session is mid vitals collection. The
// session invariant is that PendingVitals is non-empty only in these
// states.
func (s ConversationState) Collecting() bool {
	switch s {
	case StateCollectingPain, StateCollectingWound, StateCollectingTemperature, StateCollectingMobility:
		return true
	}
	return false
}

type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

type Message struct {
	Timestamp time.Time        `json:"timestamp"`
	Direction MessageDirection `json:"direction"`
	Text      string           `json:"text"`
}

// Pending vital names used as PendingVitals keys.
const (
	VitalPain        = "pain"
	VitalWound       = "wound"
	VitalTemperature = "temperature"
	VitalMobility    = "mobility"
)

type PendingVital struct {
	Value      float64   `json:"value"`
	CapturedAt time.Time `json:"captured_at"`
}

// messageHistoryLimit caps persisted history size; oldest entries are
// dropped first. The bound is a storage concern, not a correctness one.
const messageHistoryLimit = 50

type Session struct {
	ID              string
	PatientRef      string
	Phone           string
	PatientName     string
	Region          string
	Language        string
	State           ConversationState
	StartedAt       time.Time
	LastActivityAt  time.Time
	EndedAt         *time.Time
	MessageHistory  []Message
	PendingVitals   map[string]PendingVital
	EmergencyDetail string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (s *Session) AppendMessage(direction MessageDirection, text string, at time.Time) {
	s.MessageHistory = append(s.MessageHistory, Message{
		Timestamp: at,
		Direction: direction,
		Text:      text,
	})
	if len(s.MessageHistory) > messageHistoryLimit {
		s.MessageHistory = s.MessageHistory[len(s.MessageHistory)-messageHistoryLimit:]
	}
	s.LastActivityAt = at
}

func (s *Session) StoreVital(name string, value float64, at time.Time) {
	if s.PendingVitals == nil {
		s.PendingVitals = make(map[string]PendingVital)
	}
	s.PendingVitals[name] = PendingVital{Value: value, CapturedAt: at}
}

func (s *Session) ClearPendingVitals() {
	s.PendingVitals = make(map[string]PendingVital)
}

type NotificationResult struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// AlertRecord is one append-only audit entry per escalation, regardless
// of how many notifications the fan-out attempted. Never read back into
// live decision logic.
type AlertRecord struct {
	ID            string
	CreatedAt     time.Time
	PatientRef    string
	Phone         string
	Level         string
	Type          string
	Notifications []NotificationResult
}
