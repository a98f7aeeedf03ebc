package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"gastino/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderMarshalsItems(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs(
			"order-1", "tenant-1", "guest-1", "dept-kitchen",
			[]byte(`[{"name":"Pizza Margherita","quantity":1}]`),
			"204", "", models.OrderStatusPending, false, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	order := &models.Order{
		ID:           "order-1",
		TenantID:     "tenant-1",
		GuestID:      "guest-1",
		DepartmentID: "dept-kitchen",
		Items:        []models.OrderItem{{Name: "Pizza Margherita", Quantity: 1}},
		RoomNumber:   "204",
		Status:       models.OrderStatusPending,
		CreatedAt:    time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreateOrder(context.Background(), order))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderDefaultsStatusAndID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	order := &models.Order{
		TenantID:     "tenant-1",
		GuestID:      "guest-1",
		DepartmentID: "dept-kitchen",
		Items:        []models.OrderItem{{Name: "Pizza", Quantity: 1}},
	}
	require.NoError(t, s.CreateOrder(context.Background(), order))

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmLatestPendingReturnsConfirmedOrder(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE orders")).
		WithArgs("tenant-1", "dept-kitchen", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tenant_id", "guest_id", "department_id", "items",
			"room_number", "table_number", "status", "queued_until_open", "created_at",
		}).AddRow(
			"order-1", "tenant-1", "guest-1", "dept-kitchen",
			[]byte(`[{"name":"Pizza","quantity":1}]`),
			"204", "", "confirmed", false, created,
		))

	order, err := s.ConfirmLatestPending(context.Background(), "tenant-1", "dept-kitchen")
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	require.NotNil(t, order.ConfirmedAt)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Pizza", order.Items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmLatestPendingNoPendingOrder(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE orders")).
		WithArgs("tenant-1", "dept-bar", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.ConfirmLatestPending(context.Background(), "tenant-1", "dept-bar")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
