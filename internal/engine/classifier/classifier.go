// Package classifier turns an inbound guest message into a structured
// intent from the closed category set. It never fails a message: provider
// errors, timeouts, and invalid output all coerce to UNKNOWN so the router
// can escalate.
package classifier

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"gastino/internal/ai"
	apperrors "gastino/internal/common/errors"
	"gastino/internal/common/logger"
	"gastino/internal/common/validation"
	"gastino/internal/models"
)

var fenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// Input bundles everything one classification needs.
type Input struct {
	Snapshot *models.TenantSnapshot
	Guest    *models.Guest
	State    *models.ConversationState
	History  []models.MessageRecord
	Text     string
	Now      time.Time
}

type Classifier struct {
	provider ai.Provider
	config   Config
	logger   logger.Logger
}

func New(provider ai.Provider, cfg Config, log logger.Logger) *Classifier {
	return &Classifier{
		provider: provider,
		config:   cfg,
		logger:   log,
	}
}

// Classify returns the intent for a message. The returned intent is always
// usable; a non-nil error reports why the result was coerced to UNKNOWN.
func (c *Classifier) Classify(ctx context.Context, in Input) (*models.Intent, error) {
	fallback := &models.Intent{
		Category: models.IntentUnknown,
		Language: c.pinnedLanguage(in),
	}

	content, err := c.complete(ctx, in)
	if err != nil {
		c.logger.Warn("classification provider failed, coercing to UNKNOWN", map[string]interface{}{
			"tenant_id": in.Snapshot.Tenant.ID,
			"error":     err.Error(),
		})
		return fallback, err
	}

	intent, err := c.parse(content)
	if err != nil {
		c.logger.Warn("classifier output rejected, coercing to UNKNOWN", map[string]interface{}{
			"tenant_id": in.Snapshot.Tenant.ID,
			"content":   truncate(content, 200),
			"error":     err.Error(),
		})
		return fallback, err
	}

	c.coerceLanguage(intent, in)
	normalizeEntities(intent)
	return intent, nil
}

// complete calls the provider with bounded retries and exponential backoff.
// The parent ctx carries the per-message budget; once it is done no further
// attempts are made.
func (c *Classifier) complete(ctx context.Context, in Input) (string, error) {
	req := ai.Request{
		System:      buildSystemPrompt(in.Snapshot, in.Guest, in.State, in.Now),
		History:     historyTurns(in.History),
		User:        in.Text,
		Temperature: 0,
		MaxTokens:   c.config.MaxTokens,
		Schema: &ai.Schema{
			Name:   "intent_classification",
			Schema: json.RawMessage(outputSchemaJSON),
		},
	}

	var lastErr error
	attempts := c.config.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		content, err := c.provider.Complete(attemptCtx, req)
		cancel()

		if err == nil {
			return content, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", apperrors.NewClassificationTimeoutError()
		}

		if attempt < attempts {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-ctx.Done():
				return "", apperrors.NewClassificationTimeoutError()
			case <-time.After(backoff):
			}
		}
	}

	return "", apperrors.NewClassificationFailedError(lastErr)
}

type rawIntent struct {
	Category       string  `json:"category"`
	Language       string  `json:"language"`
	Confidence     float64 `json:"confidence"`
	DepartmentHint string  `json:"department_hint"`
	Items          []struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
		Notes    string `json:"notes"`
	} `json:"items"`
	ReservationDate string `json:"reservation_date"`
	ReservationTime string `json:"reservation_time"`
	PartySize       int    `json:"party_size"`
	GuestName       string `json:"guest_name"`
	RoomNumber      string `json:"room_number"`
	TableNumber     string `json:"table_number"`
}

func (c *Classifier) parse(content string) (*models.Intent, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if matches := fenceRe.FindStringSubmatch(content); len(matches) > 1 {
			content = matches[1]
		}
	}

	result, err := validation.ValidateJSON(outputSchemaJSON, []byte(content))
	if err != nil {
		return nil, apperrors.NewIntentValidationFailedError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewIntentValidationFailedError(strings.Join(result.Errors, "; "))
	}

	var raw rawIntent
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, apperrors.NewIntentValidationFailedError(err.Error())
	}

	category := models.IntentCategory(strings.ToUpper(strings.TrimSpace(raw.Category)))
	if !category.Valid() {
		// schema enum should prevent this, but the closed set is enforced here too
		category = models.IntentUnknown
	}

	intent := &models.Intent{
		Category:        category,
		Language:        strings.ToLower(strings.TrimSpace(raw.Language)),
		Confidence:      raw.Confidence,
		DepartmentHint:  strings.ToLower(strings.TrimSpace(raw.DepartmentHint)),
		ReservationDate: raw.ReservationDate,
		ReservationTime: raw.ReservationTime,
		PartySize:       raw.PartySize,
		GuestName:       strings.TrimSpace(raw.GuestName),
		RoomNumber:      strings.TrimSpace(raw.RoomNumber),
		TableNumber:     strings.TrimSpace(raw.TableNumber),
	}
	for _, it := range raw.Items {
		intent.Items = append(intent.Items, models.OrderItem{
			Name:     strings.TrimSpace(it.Name),
			Quantity: it.Quantity,
			Notes:    strings.TrimSpace(it.Notes),
		})
	}
	return intent, nil
}

// coerceLanguage keeps the detected language only when the tenant supports
// it; otherwise the pinned language wins.
func (c *Classifier) coerceLanguage(intent *models.Intent, in Input) {
	if intent.Language != "" && in.Snapshot.Tenant.SupportsLanguage(intent.Language) {
		return
	}
	intent.Language = c.pinnedLanguage(in)
}

func (c *Classifier) pinnedLanguage(in Input) string {
	if in.State != nil && in.State.Language != "" {
		return in.State.Language
	}
	return in.Snapshot.Tenant.DefaultLanguage()
}

func normalizeEntities(intent *models.Intent) {
	items := intent.Items[:0]
	for _, it := range intent.Items {
		if it.Name == "" {
			continue
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		items = append(items, it)
	}
	intent.Items = items
	if intent.PartySize < 0 {
		intent.PartySize = 0
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
