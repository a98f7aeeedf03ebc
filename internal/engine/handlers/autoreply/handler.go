// Package autoreply answers general guest questions from the tenant's
// business context (FAQ, menu, opening hours) via the AI provider.
package autoreply

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gastino/internal/ai"
	apperrors "gastino/internal/common/errors"
	"gastino/internal/common/logger"
	"gastino/internal/engine/respond"
	"gastino/internal/models"
)

type Input struct {
	Snapshot *models.TenantSnapshot
	Guest    *models.Guest
	History  []models.MessageRecord
	Text     string
	Language string
}

type Handler struct {
	provider ai.Provider
	config   Config
	logger   logger.Logger
}

func NewHandler(provider ai.Provider, config Config, log logger.Logger) *Handler {
	return &Handler{
		provider: provider,
		config:   config,
		logger:   log,
	}
}

// Execute generates a reply grounded in the tenant context. When generation
// fails the guest still gets a localized apology; the error is returned so
// the caller can record the failure.
func (h *Handler) Execute(ctx context.Context, input *Input) (respond.Result, error) {
	reply, err := h.generate(ctx, input)
	if err != nil {
		h.logger.Error("reply generation failed", map[string]interface{}{
			"tenant_id": input.Snapshot.Tenant.ID,
			"guest_id":  input.Guest.ID,
			"error":     err.Error(),
		})
		return respond.Result{Kind: respond.KindApology}, err
	}

	return respond.Result{Kind: respond.KindVerbatim, Text: reply}, nil
}

func (h *Handler) generate(ctx context.Context, input *Input) (string, error) {
	req := ai.Request{
		System:      h.buildSystemPrompt(input),
		History:     historyTurns(input.History),
		User:        input.Text,
		Temperature: h.config.Temperature,
		MaxTokens:   h.config.MaxTokens,
	}

	var lastErr error
	attempts := h.config.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
		reply, err := h.provider.Complete(attemptCtx, req)
		cancel()
		if err == nil {
			reply = strings.TrimSpace(reply)
			if reply != "" {
				return reply, nil
			}
			err = fmt.Errorf("provider returned an empty reply")
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", apperrors.NewGenerationTimeoutError()
		}
		if attempt < attempts {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			h.logger.Warn("reply generation attempt failed, retrying", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			select {
			case <-ctx.Done():
				return "", apperrors.NewGenerationTimeoutError()
			case <-time.After(backoff):
			}
		}
	}

	return "", apperrors.NewGenerationFailedError(lastErr)
}

func (h *Handler) buildSystemPrompt(input *Input) string {
	var b strings.Builder
	b.WriteString("You are the friendly digital concierge of the business below. ")
	b.WriteString("Answer the guest's question using only the business information provided. ")
	b.WriteString("If the information does not cover the question, say so politely and offer to pass the question to the team. ")
	b.WriteString("Keep replies short and conversational, suitable for a chat message. Do not invent prices, times or availability.\n\n")
	b.WriteString(input.Snapshot.ContextBlock())
	fmt.Fprintf(&b, "\nReply in %s.", languageName(input.Language))
	if input.Guest != nil && input.Guest.Name != "" {
		fmt.Fprintf(&b, " The guest's name is %s.", input.Guest.Name)
	}
	return b.String()
}

func historyTurns(history []models.MessageRecord) []ai.Turn {
	turns := make([]ai.Turn, 0, len(history))
	for _, m := range history {
		role := ai.RoleUser
		if m.Direction == models.DirectionOutbound {
			role = ai.RoleAssistant
		}
		turns = append(turns, ai.Turn{Role: role, Content: m.Content})
	}
	return turns
}

func languageName(code string) string {
	switch strings.ToLower(code) {
	case "de":
		return "German"
	case "it":
		return "Italian"
	case "fr":
		return "French"
	case "es":
		return "Spanish"
	default:
		return "English"
	}
}
