package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/postcareplus/postcare-sms/internal/repository"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, s *repository.Session) error {
	history, vitals, err := marshalSessionJSON(s)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO sessions (id, patient_ref, phone, patient_name, region, language, state,
		                       started_at, last_activity_at, message_history, pending_vitals, emergency_detail)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		s.ID, s.PatientRef, s.Phone, s.PatientName, s.Region, s.Language, string(s.State),
		s.StartedAt, s.LastActivityAt, history, vitals, s.EmergencyDetail)
	return err
}

func (r *PostgresRepository) GetActiveByPhone(ctx context.Context, phone string) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, patient_ref, phone, patient_name, region, language, state,
		        started_at, last_activity_at, ended_at, message_history, pending_vitals,
		        emergency_detail, created_at, updated_at
		 FROM sessions
		 WHERE phone = $1 AND state != 'ended'
		 ORDER BY started_at DESC
		 LIMIT 1`,
		phone)
	return scanSession(row)
}

func scanSession(row pgx.Row) (*repository.Session, error) {
	var s repository.Session
	var state string
	var history, vitals []byte
	err := row.Scan(&s.ID, &s.PatientRef, &s.Phone, &s.PatientName, &s.Region, &s.Language, &state,
		&s.StartedAt, &s.LastActivityAt, &s.EndedAt, &history, &vitals,
		&s.EmergencyDetail, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.State = repository.ConversationState(state)
	if !s.State.Valid() {
		return nil, fmt.Errorf("session %s has unknown state %q", s.ID, state)
	}
	if err := json.Unmarshal(history, &s.MessageHistory); err != nil {
		return nil, fmt.Errorf("session %s has invalid message history: %w", s.ID, err)
	}
	if err := json.Unmarshal(vitals, &s.PendingVitals); err != nil {
		return nil, fmt.Errorf("session %s has invalid pending vitals: %w", s.ID, err)
	}
	return &s, nil
}

func (r *PostgresRepository) Update(ctx context.Context, s *repository.Session) error {
	history, vitals, err := marshalSessionJSON(s)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE sessions
		 SET state = $2, last_activity_at = $3, ended_at = $4, message_history = $5,
		     pending_vitals = $6, emergency_detail = $7, updated_at = NOW()
		 WHERE id = $1`,
		s.ID, string(s.State), s.LastActivityAt, s.EndedAt, history, vitals, s.EmergencyDetail)
	return err
}

func (r *PostgresRepository) MarkEnded(ctx context.Context, sessionID string, endedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET state = 'ended', ended_at = $2, updated_at = NOW() WHERE id = $1`,
		sessionID, endedAt)
	return err
}

func (r *PostgresRepository) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE last_activity_at < $1`,
		cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) AppendAlert(ctx context.Context, rec *repository.AlertRecord) error {
	notifications, err := json.Marshal(rec.Notifications)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO alerts (id, created_at, patient_ref, phone, level, alert_type, notifications)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.CreatedAt, rec.PatientRef, rec.Phone, rec.Level, rec.Type, notifications)
	return err
}

func (r *PostgresRepository) CountAlertsByLevelSince(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT level, COUNT(*) FROM alerts WHERE created_at >= $1 GROUP BY level`,
		since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		counts[level] = count
	}
	return counts, rows.Err()
}

func marshalSessionJSON(s *repository.Session) (history, vitals []byte, err error) {
	if s.MessageHistory == nil {
		s.MessageHistory = []repository.Message{}
	}
	if s.PendingVitals == nil {
		s.PendingVitals = map[string]repository.PendingVital{}
	}
	history, err = json.Marshal(s.MessageHistory)
	if err != nil {
		return nil, nil, err
	}
	vitals, err = json.Marshal(s.PendingVitals)
	if err != nil {
		return nil, nil, err
	}
	return history, vitals, nil
}
