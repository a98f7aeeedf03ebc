package store

import (
	"context"
	"time"

	"gastino/internal/models"

	"github.com/google/uuid"
)

// CreateReservation inserts a reservation request.
func (s *Store) CreateReservation(ctx context.Context, r *models.Reservation) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = models.ReservationStatusPending
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reservations (id, tenant_id, guest_id, date, time, party_size,
		                          guest_name, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, r.TenantID, r.GuestID, r.Date, r.Time, r.PartySize,
		r.GuestName, r.Notes, r.Status, r.CreatedAt,
	)
	return err
}

// ReservationsByGuest returns a guest's reservations, newest first.
func (s *Store) ReservationsByGuest(ctx context.Context, tenantID, guestID string) ([]models.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, guest_id, date, time, party_size, guest_name, notes, status, created_at
		FROM reservations
		WHERE tenant_id = $1 AND guest_id = $2
		ORDER BY created_at DESC`, tenantID, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Reservation
	for rows.Next() {
		var r models.Reservation
		if err := rows.Scan(
			&r.ID, &r.TenantID, &r.GuestID, &r.Date, &r.Time, &r.PartySize,
			&r.GuestName, &r.Notes, &r.Status, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
