// Package archive indexes conversation messages into Elasticsearch for
// search and analytics. Indexing is fire-and-forget; the message is already
// durable in Postgres and an archive miss must never fail routing.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gastino/internal/common/database"
	"gastino/internal/common/logger"
	"gastino/internal/models"
)

// Archiver records one conversation message in the search index.
type Archiver interface {
	Index(ctx context.Context, rec *models.MessageRecord)
}

type Indexer struct {
	client *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewIndexer(client *database.ElasticsearchClient, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  client.Index,
		logger: log,
	}
}

type document struct {
	TenantID  string    `json:"tenant_id"`
	GuestID   string    `json:"guest_id"`
	Direction string    `json:"direction"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Indexer) Index(ctx context.Context, rec *models.MessageRecord) {
	if err := i.indexRecord(ctx, rec); err != nil {
		i.logger.Warn("failed to archive message", map[string]interface{}{
			"tenant_id":  rec.TenantID,
			"message_id": rec.ID,
			"error":      err.Error(),
		})
	}
}

func (i *Indexer) indexRecord(ctx context.Context, rec *models.MessageRecord) error {
	body, err := json.Marshal(document{
		TenantID:  rec.TenantID,
		GuestID:   rec.GuestID,
		Direction: string(rec.Direction),
		Sender:    string(rec.Sender),
		Content:   rec.Content,
		Intent:    rec.Intent,
		CreatedAt: rec.CreatedAt,
	})
	if err != nil {
		return err
	}

	es := i.client.Client
	res, err := es.Index(
		i.index,
		bytes.NewReader(body),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(rec.ID),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch index error: %s", res.Status())
	}
	return nil
}

// Nop discards archive writes. Used when Elasticsearch is disabled.
type Nop struct{}

func (Nop) Index(context.Context, *models.MessageRecord) {}
