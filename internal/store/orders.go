package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"gastino/internal/models"

	"github.com/google/uuid"
)

// CreateOrder inserts an order. The write must succeed before any staff
// notification for it is sent.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	itemsRaw, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, tenant_id, guest_id, department_id, items,
		                    room_number, table_number, status, queued_until_open, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.TenantID, o.GuestID, o.DepartmentID, itemsRaw,
		o.RoomNumber, o.TableNumber, o.Status, o.QueuedUntilOpen, o.CreatedAt,
	)
	return err
}

// ConfirmLatestPending marks the most recent pending order of a department
// confirmed and returns it. Staff group confirmations resolve to this order.
func (s *Store) ConfirmLatestPending(ctx context.Context, tenantID, departmentID string) (*models.Order, error) {
	now := time.Now().UTC()
	var o models.Order
	var itemsRaw []byte
	err := s.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = 'confirmed', confirmed_at = $3
		WHERE id = (
			SELECT id FROM orders
			WHERE tenant_id = $1 AND department_id = $2 AND status = 'pending'
			ORDER BY created_at DESC
			LIMIT 1
		)
		RETURNING id, tenant_id, guest_id, department_id, items,
		          room_number, table_number, status, queued_until_open, created_at`,
		tenantID, departmentID, now).Scan(
		&o.ID, &o.TenantID, &o.GuestID, &o.DepartmentID, &itemsRaw,
		&o.RoomNumber, &o.TableNumber, &o.Status, &o.QueuedUntilOpen, &o.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsRaw, &o.Items); err != nil {
		return nil, err
	}
	o.ConfirmedAt = &now
	return &o, nil
}

// OrderByID loads an order by primary key.
func (s *Store) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	var itemsRaw []byte
	var confirmedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, guest_id, department_id, items,
		       room_number, table_number, status, queued_until_open, created_at, confirmed_at
		FROM orders
		WHERE id = $1`, id).Scan(
		&o.ID, &o.TenantID, &o.GuestID, &o.DepartmentID, &itemsRaw,
		&o.RoomNumber, &o.TableNumber, &o.Status, &o.QueuedUntilOpen, &o.CreatedAt, &confirmedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsRaw, &o.Items); err != nil {
		return nil, err
	}
	if confirmedAt.Valid {
		o.ConfirmedAt = &confirmedAt.Time
	}
	return &o, nil
}
