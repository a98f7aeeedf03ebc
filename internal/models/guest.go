package models

import "time"

// Guest is a known conversation partner of a tenant, keyed by their channel
// identifier (phone number). RoomNumber/TableNumber are remembered across
// conversations so guests do not repeat them for every order.
type Guest struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ChannelID   string    `json:"channel_id"`
	Name        string    `json:"name,omitempty"`
	Language    string    `json:"language,omitempty"`
	RoomNumber  string    `json:"room_number,omitempty"`
	TableNumber string    `json:"table_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
