package state

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gastino/internal/common/logger"
	"gastino/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, window time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, window, logger.NewTestLogger(t)), mr
}

func TestGetCreatesDefaultState(t *testing.T) {
	s, _ := newTestStore(t, 30*time.Minute)

	st, err := s.Get(context.Background(), "t1", "g1", "de")
	require.NoError(t, err)

	assert.Equal(t, "t1", st.TenantID)
	assert.Equal(t, "g1", st.GuestID)
	assert.Equal(t, "de", st.Language)
	assert.Nil(t, st.Order)
	assert.Nil(t, st.Reservation)
}

func TestPutGetRoundtrip(t *testing.T) {
	s, _ := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	st := &models.ConversationState{
		TenantID: "t1",
		GuestID:  "g1",
		Language: "it",
		Order: &models.OrderDraft{
			Items: []models.OrderItem{
				{Name: "Aperol Spritz", Quantity: 2},
				{Name: "Pizza Margherita", Quantity: 1},
			},
			DepartmentID: "dept-bar",
		},
	}
	require.NoError(t, s.Put(ctx, st))

	got, err := s.Get(ctx, "t1", "g1", "en")
	require.NoError(t, err)

	assert.Equal(t, "it", got.Language)
	require.NotNil(t, got.Order)
	require.Len(t, got.Order.Items, 2)
	assert.Equal(t, "Aperol Spritz", got.Order.Items[0].Name)
	assert.Equal(t, "Pizza Margherita", got.Order.Items[1].Name)
	assert.Equal(t, "dept-bar", got.Order.DepartmentID)
	assert.False(t, got.LastActivity.IsZero())
}

func TestStaleDraftsExpireButLanguageSurvives(t *testing.T) {
	s, mr := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	stale := models.ConversationState{
		TenantID:     "t1",
		GuestID:      "g1",
		Language:     "it",
		Order:        &models.OrderDraft{Items: []models.OrderItem{{Name: "Cola", Quantity: 1}}},
		Reservation:  &models.ReservationDraft{Date: "2026-09-01"},
		LastActivity: time.Now().Add(-2 * time.Hour),
	}
	raw, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, mr.Set("state:t1:g1", string(raw)))

	got, err := s.Get(ctx, "t1", "g1", "en")
	require.NoError(t, err)

	assert.Nil(t, got.Order)
	assert.Nil(t, got.Reservation)
	assert.Equal(t, "it", got.Language)
}

func TestRecentDraftsSurvive(t *testing.T) {
	s, mr := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	recent := models.ConversationState{
		TenantID:     "t1",
		GuestID:      "g1",
		Language:     "de",
		Order:        &models.OrderDraft{Items: []models.OrderItem{{Name: "Cola", Quantity: 1}}},
		LastActivity: time.Now().Add(-5 * time.Minute),
	}
	raw, err := json.Marshal(recent)
	require.NoError(t, err)
	require.NoError(t, mr.Set("state:t1:g1", string(raw)))

	got, err := s.Get(ctx, "t1", "g1", "en")
	require.NoError(t, err)

	require.NotNil(t, got.Order)
	assert.Len(t, got.Order.Items, 1)
}

func TestCorruptStateDiscarded(t *testing.T) {
	s, mr := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set("state:t1:g1", "{not json"))

	got, err := s.Get(ctx, "t1", "g1", "en")
	require.NoError(t, err)
	assert.Equal(t, "en", got.Language)
	assert.Nil(t, got.Order)
}

func TestClear(t *testing.T) {
	s, mr := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	st := &models.ConversationState{TenantID: "t1", GuestID: "g1", Language: "en"}
	require.NoError(t, s.Put(ctx, st))
	require.NoError(t, s.Clear(ctx, "t1", "g1"))

	assert.False(t, mr.Exists("state:t1:g1"))
}
