// Package webhook receives channel callbacks: the verification handshake and
// inbound message batches. The endpoint always answers 200 on POST so the
// channel does not retry messages the engine has already accepted.
package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"gastino/internal/common/logger"
	"gastino/internal/models"
)

// Submitter enqueues an accepted inbound message for routing.
type Submitter interface {
	Submit(msg *models.InboundMessage) bool
}

type Handler struct {
	verifyToken string
	submitter   Submitter
	logger      logger.Logger
}

func NewHandler(verifyToken string, submitter Submitter, log logger.Logger) *Handler {
	return &Handler{
		verifyToken: verifyToken,
		submitter:   submitter,
		logger:      log,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/webhook", h.verify)
	r.Post("/webhook", h.receive)
}

// verify answers the channel's subscription handshake.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	h.logger.Warn("webhook verification rejected", map[string]interface{}{
		"mode": q.Get("hub.mode"),
	})
	w.WriteHeader(http.StatusForbidden)
}

// Channel payload, Graph webhook shape.
type payload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Metadata struct {
					PhoneNumberID string `json:"phone_number_id"`
				} `json:"metadata"`
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					From      string `json:"from"`
					GroupID   string `json:"group_id,omitempty"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	defer w.WriteHeader(http.StatusOK)

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.logger.Warn("failed to read webhook body", map[string]interface{}{"error": err.Error()})
		return
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		h.logger.Warn("discarding malformed webhook payload", map[string]interface{}{"error": err.Error()})
		return
	}

	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			names := make(map[string]string, len(value.Contacts))
			for _, c := range value.Contacts {
				names[c.WaID] = c.Profile.Name
			}

			for _, m := range value.Messages {
				if m.Type != "" && m.Type != "text" {
					continue
				}
				if m.Text.Body == "" {
					continue
				}

				msg := &models.InboundMessage{
					ChannelID:   value.Metadata.PhoneNumberID,
					From:        m.From,
					GroupID:     m.GroupID,
					ProfileName: names[m.From],
					Text:        m.Text.Body,
					ReceivedAt:  parseTimestamp(m.Timestamp),
				}
				if !h.submitter.Submit(msg) {
					h.logger.Warn("message not accepted for routing", map[string]interface{}{
						"channel_id": msg.ChannelID,
					})
				}
			}
		}
	}
}

func parseTimestamp(s string) time.Time {
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil && unix > 0 {
		return time.Unix(unix, 0).UTC()
	}
	return time.Now().UTC()
}
