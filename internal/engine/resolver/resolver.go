// Package resolver maps inbound channel identifiers to tenant snapshots.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "gastino/internal/common/errors"
	"gastino/internal/common/logger"
	"gastino/internal/models"
	"gastino/internal/store"

	"github.com/redis/go-redis/v9"
)

// TenantStore is the persistence dependency of the resolver.
type TenantStore interface {
	TenantByChannelID(ctx context.Context, channelID string) (*models.TenantSnapshot, error)
}

// Resolver serves tenant snapshots with a bounded-staleness Redis cache in
// front of Postgres. Unknown channels are a terminal resolution error: the
// caller drops the message and alerts ops, no guest reply is sent.
type Resolver struct {
	store  TenantStore
	cache  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func New(tenants TenantStore, cache *redis.Client, ttl time.Duration, log logger.Logger) *Resolver {
	return &Resolver{
		store:  tenants,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

func cacheKey(channelID string) string {
	return fmt.Sprintf("tenant:%s", channelID)
}

// Resolve returns the tenant snapshot for a channel identifier.
func (r *Resolver) Resolve(ctx context.Context, channelID string) (*models.TenantSnapshot, error) {
	key := cacheKey(channelID)

	if raw, err := r.cache.Get(ctx, key).Result(); err == nil {
		var snap models.TenantSnapshot
		if err := json.Unmarshal([]byte(raw), &snap); err == nil {
			return &snap, nil
		}
		// corrupt cache entry, fall through to the database
		_ = r.cache.Del(ctx, key).Err()
	}

	snap, err := r.store.TenantByChannelID(ctx, channelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewTenantNotFoundError(channelID)
		}
		return nil, apperrors.NewTenantLookupFailedError(err)
	}

	if raw, err := json.Marshal(snap); err == nil {
		if err := r.cache.Set(ctx, key, raw, r.ttl).Err(); err != nil {
			r.logger.Warn("tenant cache write failed", map[string]interface{}{
				"channel_id": channelID,
				"error":      err.Error(),
			})
		}
	}

	return snap, nil
}

// Invalidate drops the cached snapshot, forcing the next resolve to read
// through. Admin updates call this so config changes surface within a
// message, not a TTL.
func (r *Resolver) Invalidate(ctx context.Context, channelID string) error {
	return r.cache.Del(ctx, cacheKey(channelID)).Err()
}
