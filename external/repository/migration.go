package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		patient_ref TEXT NOT NULL,
		phone TEXT NOT NULL,
		patient_name TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT 'rw',
		state TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		last_activity_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		message_history JSONB NOT NULL DEFAULT '[]',
		pending_vitals JSONB NOT NULL DEFAULT '{}',
		emergency_detail TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_active_phone ON sessions (phone, started_at DESC) WHERE state != 'ended'`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_last_activity ON sessions (last_activity_at)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		patient_ref TEXT NOT NULL,
		phone TEXT NOT NULL,
		level TEXT NOT NULL,
		alert_type TEXT NOT NULL,
		notifications JSONB NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts (created_at)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
