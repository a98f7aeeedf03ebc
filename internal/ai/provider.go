// Package ai wraps the chat-completion provider behind a small interface so
// classification and reply generation can be tested with fakes.
package ai

import (
	"context"
	"encoding/json"
)

// Role of a conversation turn handed to the provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior conversation message.
type Turn struct {
	Role    string
	Content string
}

// Schema constrains the provider output to a JSON schema in strict mode.
type Schema struct {
	Name   string
	Schema json.Marshaler
}

// Request is a single chat completion call.
type Request struct {
	System      string
	History     []Turn
	User        string
	Temperature float32
	MaxTokens   int
	Schema      *Schema
}

// Provider performs chat completions. Implementations must honor ctx
// cancellation; the engine enforces the per-message budget through it.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}
