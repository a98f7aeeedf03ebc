package store

import (
	"context"
	"database/sql"
	"time"

	"gastino/internal/models"

	"github.com/google/uuid"
)

// GetOrCreateGuest returns the guest identified by (tenant, channel id),
// creating the record on first contact. The profile name from the channel
// payload seeds the name and is adopted later if the record has none.
func (s *Store) GetOrCreateGuest(ctx context.Context, tenantID, channelID, profileName string) (*models.Guest, error) {
	var g models.Guest
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, channel_id, name, language, room_number, table_number, created_at
		FROM guests
		WHERE tenant_id = $1 AND channel_id = $2`, tenantID, channelID).Scan(
		&g.ID, &g.TenantID, &g.ChannelID, &g.Name, &g.Language,
		&g.RoomNumber, &g.TableNumber, &g.CreatedAt,
	)
	if err == nil {
		if g.Name == "" && profileName != "" {
			g.Name = profileName
			_, _ = s.db.ExecContext(ctx,
				`UPDATE guests SET name = $2 WHERE id = $1`, g.ID, profileName)
		}
		return &g, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	g = models.Guest{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		ChannelID: channelID,
		Name:      profileName,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO guests (id, tenant_id, channel_id, name, language, room_number, table_number, created_at)
		VALUES ($1, $2, $3, $4, '', '', '', $5)`,
		g.ID, g.TenantID, g.ChannelID, g.Name, g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateGuestLanguage stores the detected language pin on the guest record.
func (s *Store) UpdateGuestLanguage(ctx context.Context, guestID, language string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE guests SET language = $2 WHERE id = $1`, guestID, language)
	return err
}

// UpdateGuestLocation remembers the room and/or table number. Empty values
// never overwrite stored ones.
func (s *Store) UpdateGuestLocation(ctx context.Context, guestID, roomNumber, tableNumber string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE guests
		SET room_number  = COALESCE(NULLIF($2, ''), room_number),
		    table_number = COALESCE(NULLIF($3, ''), table_number)
		WHERE id = $1`, guestID, roomNumber, tableNumber)
	return err
}

// GuestByID loads a guest by primary key.
func (s *Store) GuestByID(ctx context.Context, id string) (*models.Guest, error) {
	var g models.Guest
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, channel_id, name, language, room_number, table_number, created_at
		FROM guests
		WHERE id = $1`, id).Scan(
		&g.ID, &g.TenantID, &g.ChannelID, &g.Name, &g.Language,
		&g.RoomNumber, &g.TableNumber, &g.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
