package repository

import (
	"context"
	"time"
)

// SessionStore persists conversation sessions keyed by phone number.
// Updates are synchronous; the caller may rely on the write having
// happened when the call returns (single writer per phone).
type SessionStore interface {
	// Create always inserts a new session, even when an active one
	// exists for the phone; lookup returns the latest, the older one
	// stays in storage for audit.
	Create(ctx context.Context, s *Session) error
	// GetActiveByPhone returns the most recently started non-ended
	// session for the phone, or nil when there is none. Timeout-based
	// expiry is the lifecycle manager's concern, not the store's.
	GetActiveByPhone(ctx context.Context, phone string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	MarkEnded(ctx context.Context, sessionID string, endedAt time.Time) error
	// DeleteInactiveBefore removes sessions whose last activity is older
	// than the cutoff and returns how many were removed.
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type AlertStore interface {
	AppendAlert(ctx context.Context, rec *AlertRecord) error
	CountAlertsByLevelSince(ctx context.Context, since time.Time) (map[string]int, error)
}

type Repository interface {
	SessionStore
	AlertStore
}
