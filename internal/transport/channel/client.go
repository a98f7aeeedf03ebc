// Package channel implements the outbound side of the messaging channel:
// a Graph-style HTTP API taking one text message per call.
package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gastino/internal/common/config"
	"gastino/internal/common/logger"
)

// Sender delivers one text message to a channel id (guest phone or staff
// group). Implementations retry transient failures internally; a returned
// error is final.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	logger     logger.Logger
}

func NewClient(cfg config.ChannelConfig, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: config.GetDuration(cfg.Timeout)},
		baseURL:    cfg.BaseURL,
		token:      cfg.AccessToken,
		maxRetries: cfg.MaxRetries,
		logger:     log,
	}
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

// SendText posts one message, retrying transient failures with exponential
// backoff. Client errors (4xx) fail immediately.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	body, err := json.Marshal(textPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: text},
	})
	if err != nil {
		return err
	}

	var lastErr error
	attempts := c.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = c.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		if _, permanent := lastErr.(*permanentError); permanent {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}

		if attempt < attempts {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			c.logger.Warn("message delivery failed, retrying", map[string]interface{}{
				"to":      to,
				"attempt": attempt,
				"error":   lastErr.Error(),
			})
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(backoff):
			}
		}
	}

	return lastErr
}

type permanentError struct {
	status int
	body   string
}

func (e *permanentError) Error() string {
	return fmt.Sprintf("channel rejected message (status %d): %s", e.status, e.body)
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &permanentError{status: resp.StatusCode, body: string(respBody)}
	}
	return fmt.Errorf("channel returned status %d: %s", resp.StatusCode, respBody)
}
