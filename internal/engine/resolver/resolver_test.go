package resolver

import (
	"context"
	"testing"
	"time"

	apperrors "gastino/internal/common/errors"
	"gastino/internal/common/logger"
	"gastino/internal/models"
	"gastino/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTenantStore struct {
	snapshots map[string]*models.TenantSnapshot
	calls     int
}

func (f *fakeTenantStore) TenantByChannelID(ctx context.Context, channelID string) (*models.TenantSnapshot, error) {
	f.calls++
	snap, ok := f.snapshots[channelID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return snap, nil
}

func testSnapshot() *models.TenantSnapshot {
	return &models.TenantSnapshot{
		Tenant: models.Tenant{
			ID:        "tenant-1",
			Name:      "Hotel Sonnenhof",
			Type:      models.BusinessHotel,
			ChannelID: "chan-1",
			Languages: []string{"de", "it", "en"},
		},
		Departments: []models.Department{
			{ID: "dept-kitchen", Name: "kitchen", Position: 0, Active: true},
			{ID: "dept-bar", Name: "bar", Position: 1, Active: true},
		},
	}
}

func newTestResolver(t *testing.T, tenants TenantStore) *Resolver {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(tenants, client, 5*time.Minute, logger.NewTestLogger(t))
}

func TestResolveKnownTenant(t *testing.T) {
	fake := &fakeTenantStore{snapshots: map[string]*models.TenantSnapshot{
		"chan-1": testSnapshot(),
	}}
	r := newTestResolver(t, fake)

	snap, err := r.Resolve(context.Background(), "chan-1")
	require.NoError(t, err)
	assert.Equal(t, "Hotel Sonnenhof", snap.Tenant.Name)
	assert.Len(t, snap.Departments, 2)
}

func TestResolveCachesSnapshot(t *testing.T) {
	fake := &fakeTenantStore{snapshots: map[string]*models.TenantSnapshot{
		"chan-1": testSnapshot(),
	}}
	r := newTestResolver(t, fake)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "chan-1")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, "chan-1")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls, "second resolve should hit the cache")
}

func TestResolveUnknownTenant(t *testing.T) {
	fake := &fakeTenantStore{snapshots: map[string]*models.TenantSnapshot{}}
	r := newTestResolver(t, fake)

	_, err := r.Resolve(context.Background(), "chan-missing")
	require.Error(t, err)

	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeTenantNotFound, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestInvalidateForcesReadThrough(t *testing.T) {
	fake := &fakeTenantStore{snapshots: map[string]*models.TenantSnapshot{
		"chan-1": testSnapshot(),
	}}
	r := newTestResolver(t, fake)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "chan-1")
	require.NoError(t, err)
	require.NoError(t, r.Invalidate(ctx, "chan-1"))

	_, err = r.Resolve(ctx, "chan-1")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)
}
