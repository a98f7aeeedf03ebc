package models

import "time"

// OrderItem is one line of an order, kept in receipt order.
type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// OrderDraft accumulates ORDER_ITEM turns until the guest submits.
type OrderDraft struct {
	Items        []OrderItem `json:"items"`
	DepartmentID string      `json:"department_id,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ReservationDraft accumulates reservation entities across turns.
// Date is "YYYY-MM-DD", Time is "HH:MM".
type ReservationDraft struct {
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	PartySize int    `json:"party_size,omitempty"`
	GuestName string `json:"guest_name,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// MissingFields lists the entities still required before the reservation can
// be written.
func (d *ReservationDraft) MissingFields() []string {
	var missing []string
	if d.Date == "" {
		missing = append(missing, "date")
	}
	if d.Time == "" {
		missing = append(missing, "time")
	}
	if d.PartySize <= 0 {
		missing = append(missing, "party_size")
	}
	if d.GuestName == "" {
		missing = append(missing, "guest_name")
	}
	return missing
}

// Complete reports whether all required reservation entities are present.
func (d *ReservationDraft) Complete() bool {
	return len(d.MissingFields()) == 0
}

// ConversationState is the per-(tenant, guest) working memory: the pinned
// language and any open drafts. It is replaced wholesale on write.
type ConversationState struct {
	TenantID     string            `json:"tenant_id"`
	GuestID      string            `json:"guest_id"`
	Language     string            `json:"language"`
	Order        *OrderDraft       `json:"order,omitempty"`
	Reservation  *ReservationDraft `json:"reservation,omitempty"`
	LastActivity time.Time         `json:"last_activity"`
}

// ExpireStale clears open drafts when the conversation has been idle longer
// than the window. The language pin and identity survive expiry.
func (s *ConversationState) ExpireStale(now time.Time, window time.Duration) bool {
	if s.LastActivity.IsZero() || now.Sub(s.LastActivity) <= window {
		return false
	}
	expired := s.Order != nil || s.Reservation != nil
	s.Order = nil
	s.Reservation = nil
	return expired
}
