package store

import (
	"context"
	"time"

	"gastino/internal/models"

	"github.com/google/uuid"
)

// SaveMessage appends one message to the conversation log.
func (s *Store) SaveMessage(ctx context.Context, m *models.MessageRecord) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, tenant_id, guest_id, direction, sender, content, intent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.TenantID, m.GuestID, m.Direction, m.Sender, m.Content, m.Intent, m.CreatedAt,
	)
	return err
}

// History returns the most recent messages of a conversation in
// chronological order, capped at limit.
func (s *Store) History(ctx context.Context, tenantID, guestID string, limit int) ([]models.MessageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, guest_id, direction, sender, content, intent, created_at
		FROM (
			SELECT id, tenant_id, guest_id, direction, sender, content, intent, created_at
			FROM messages
			WHERE tenant_id = $1 AND guest_id = $2
			ORDER BY created_at DESC
			LIMIT $3
		) recent
		ORDER BY created_at ASC`, tenantID, guestID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MessageRecord
	for rows.Next() {
		var m models.MessageRecord
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.GuestID, &m.Direction, &m.Sender,
			&m.Content, &m.Intent, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
