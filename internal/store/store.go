// Package store holds the Postgres persistence layer: tenants and their
// departments, guests, orders, reservations, and the message log.
package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Store wraps one *sql.DB. All queries are plain SQL on the shared pool so
// reads observe prior writes.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the engine tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tenants (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			channel_id TEXT NOT NULL UNIQUE,
			channel_number TEXT NOT NULL DEFAULT '',
			languages TEXT[] NOT NULL DEFAULT '{}',
			timezone TEXT NOT NULL DEFAULT 'UTC',
			system_context TEXT NOT NULL DEFAULT '',
			menu_context TEXT NOT NULL DEFAULT '',
			faq_context TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS departments (
			id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL REFERENCES tenants(id),
			name TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			group_channel_id TEXT NOT NULL DEFAULT '',
			hours JSONB NOT NULL DEFAULT '[]',
			fallback_dept_id UUID,
			is_escalation BOOLEAN NOT NULL DEFAULT FALSE,
			position INT NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS guests (
			id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL REFERENCES tenants(id),
			channel_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			room_number TEXT NOT NULL DEFAULT '',
			table_number TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (tenant_id, channel_id)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL REFERENCES tenants(id),
			guest_id UUID NOT NULL REFERENCES guests(id),
			department_id UUID NOT NULL REFERENCES departments(id),
			items JSONB NOT NULL,
			room_number TEXT NOT NULL DEFAULT '',
			table_number TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			queued_until_open BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			confirmed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS reservations (
			id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL REFERENCES tenants(id),
			guest_id UUID NOT NULL REFERENCES guests(id),
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			party_size INT NOT NULL,
			guest_name TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL REFERENCES tenants(id),
			guest_id UUID NOT NULL REFERENCES guests(id),
			direction TEXT NOT NULL,
			sender TEXT NOT NULL,
			content TEXT NOT NULL,
			intent TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON messages (tenant_id, guest_id, created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
