// Package state implements the per-conversation working memory on Redis.
// One JSON value per (tenant, guest) key, replaced wholesale on write.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gastino/internal/common/logger"
	"gastino/internal/models"

	"github.com/redis/go-redis/v9"
)

// Store reads and writes conversation state. Drafts older than the
// inactivity window are cleared opportunistically on read; the language pin
// survives expiry.
type Store struct {
	client *redis.Client
	window time.Duration
	logger logger.Logger
}

func New(client *redis.Client, window time.Duration, log logger.Logger) *Store {
	return &Store{
		client: client,
		window: window,
		logger: log,
	}
}

func stateKey(tenantID, guestID string) string {
	return fmt.Sprintf("state:%s:%s", tenantID, guestID)
}

// Get loads the state for a conversation, creating a default one pinned to
// defaultLanguage when none exists. Corrupt stored state is discarded rather
// than failing the message.
func (s *Store) Get(ctx context.Context, tenantID, guestID, defaultLanguage string) (*models.ConversationState, error) {
	fresh := &models.ConversationState{
		TenantID: tenantID,
		GuestID:  guestID,
		Language: defaultLanguage,
	}

	raw, err := s.client.Get(ctx, stateKey(tenantID, guestID)).Result()
	if err == redis.Nil {
		return fresh, nil
	}
	if err != nil {
		return nil, err
	}

	var st models.ConversationState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.logger.Warn("discarding corrupt conversation state", map[string]interface{}{
			"tenant_id": tenantID,
			"guest_id":  guestID,
			"error":     err.Error(),
		})
		return fresh, nil
	}

	if st.Language == "" {
		st.Language = defaultLanguage
	}

	if st.ExpireStale(time.Now(), s.window) {
		s.logger.Debug("cleared stale drafts", map[string]interface{}{
			"tenant_id": tenantID,
			"guest_id":  guestID,
		})
	}

	return &st, nil
}

// Put replaces the stored state. LastActivity is stamped here so every write
// restarts the inactivity window. The key TTL is twice the window; expiry
// semantics are enforced on read, the TTL only reclaims abandoned keys.
func (s *Store) Put(ctx context.Context, st *models.ConversationState) error {
	st.LastActivity = time.Now().UTC()
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, stateKey(st.TenantID, st.GuestID), raw, 2*s.window).Err()
}

// Clear removes the stored state entirely.
func (s *Store) Clear(ctx context.Context, tenantID, guestID string) error {
	return s.client.Del(ctx, stateKey(tenantID, guestID)).Err()
}
