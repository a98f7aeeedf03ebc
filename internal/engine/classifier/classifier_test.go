package classifier

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gastino/internal/ai"
	"gastino/internal/common/logger"
	"gastino/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerFunc func(ctx context.Context, req ai.Request) (string, error)

func (f providerFunc) Complete(ctx context.Context, req ai.Request) (string, error) {
	return f(ctx, req)
}

func testInput() Input {
	return Input{
		Snapshot: &models.TenantSnapshot{
			Tenant: models.Tenant{
				ID:        "tenant-1",
				Name:      "Hotel Sonnenhof",
				Type:      models.BusinessHotel,
				Languages: []string{"de", "it", "en"},
			},
		},
		Guest: &models.Guest{ID: "guest-1", Name: "Anna"},
		State: &models.ConversationState{TenantID: "tenant-1", GuestID: "guest-1", Language: "de"},
		Text:  "2x Aperol Spritz bitte",
		Now:   time.Now(),
	}
}

// fullOutput renders a complete classifier document; the strict schema
// requires every field to be present.
func fullOutput(category, language, items string) string {
	return fmt.Sprintf(`{
		"category": %q,
		"language": %q,
		"confidence": 0.95,
		"department_hint": "bar",
		"items": %s,
		"reservation_date": "",
		"reservation_time": "",
		"party_size": 0,
		"guest_name": "",
		"room_number": "",
		"table_number": ""
	}`, category, language, items)
}

func newTestClassifier(t *testing.T, p ai.Provider) *Classifier {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = time.Second
	return New(p, cfg, logger.NewTestLogger(t))
}

func TestClassifyOrderItems(t *testing.T) {
	p := providerFunc(func(ctx context.Context, req ai.Request) (string, error) {
		return fullOutput("ORDER_ITEM", "de", `[{"name": "Aperol Spritz", "quantity": 2, "notes": ""}]`), nil
	})
	c := newTestClassifier(t, p)

	intent, err := c.Classify(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, models.IntentOrderItem, intent.Category)
	assert.Equal(t, "de", intent.Language)
	assert.Equal(t, "bar", intent.DepartmentHint)
	require.Len(t, intent.Items, 1)
	assert.Equal(t, "Aperol Spritz", intent.Items[0].Name)
	assert.Equal(t, 2, intent.Items[0].Quantity)
}

func TestClassifyStripsMarkdownFences(t *testing.T) {
	p := providerFunc(func(ctx context.Context, req ai.Request) (string, error) {
		return "```json\n" + fullOutput("GENERAL_QUESTION", "en", "[]") + "\n```", nil
	})
	c := newTestClassifier(t, p)

	intent, err := c.Classify(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, models.IntentGeneralQuestion, intent.Category)
}

func TestClassifyOutOfSetCategoryCoercesToUnknown(t *testing.T) {
	p := providerFunc(func(ctx context.Context, req ai.Request) (string, error) {
		return fullOutput("ROOM_UPGRADE", "de", "[]"), nil
	})
	c := newTestClassifier(t, p)

	intent, err := c.Classify(context.Background(), testInput())
	require.Error(t, err)
	assert.Equal(t, models.IntentUnknown, intent.Category)
	assert.Equal(t, "de", intent.Language)
}

func TestClassifyUnparseableOutputCoercesToUnknown(t *testing.T) {
	p := providerFunc(func(ctx context.Context, req ai.Request) (string, error) {
		return "I think the guest wants a drink.", nil
	})
	c := newTestClassifier(t, p)

	intent, err := c.Classify(context.Background(), testInput())
	require.Error(t, err)
	assert.Equal(t, models.IntentUnknown, intent.Category)
}

func TestClassifyProviderErrorCoercesToUnknown(t *testing.T) {
	p := providerFunc(func(ctx context.Context, req ai.Request) (string, error) {
		return "", errors.New("connection refused")
	})
	c := newTestClassifier(t, p)

	intent, err := c.Classify(context.Background(), testInput())
	require.Error(t, err)
	assert.Equal(t, models.IntentUnknown, intent.Category)
	assert.Equal(t, "de", intent.Language)
}

func TestClassifyRetriesTransientFailure(t *testing.T) {
	calls := 0
	p := providerFunc(func(ctx context.Context, req ai.Request) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return fullOutput("ESCALATION_REQUEST", "en", "[]"), nil
	})
	cfg := DefaultConfig()
	cfg.MaxRetries = 1
	cfg.Timeout = time.Second
	c := New(p, cfg, logger.NewTestLogger(t))

	intent, err := c.Classify(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, models.IntentEscalationRequest, intent.Category)
}

func TestClassifyUnsupportedLanguageFallsBackToPin(t *testing.T) {
	p := providerFunc(func(ctx context.Context, req ai.Request) (string, error) {
		return fullOutput("GENERAL_QUESTION", "fr", "[]"), nil
	})
	c := newTestClassifier(t, p)

	intent, err := c.Classify(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, "de", intent.Language)
}

func TestClassifyClampsZeroQuantity(t *testing.T) {
	p := providerFunc(func(ctx context.Context, req ai.Request) (string, error) {
		return fullOutput("ORDER_ITEM", "de", `[{"name": "Cola", "quantity": 0, "notes": ""}]`), nil
	})
	c := newTestClassifier(t, p)

	intent, err := c.Classify(context.Background(), testInput())
	require.NoError(t, err)
	require.Len(t, intent.Items, 1)
	assert.Equal(t, 1, intent.Items[0].Quantity)
}
