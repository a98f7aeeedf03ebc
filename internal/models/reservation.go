package models

import "time"

// ReservationStatus tracks a reservation request.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Reservation is a persisted reservation request. Date is "YYYY-MM-DD",
// Time is "HH:MM" local to the tenant.
type Reservation struct {
	ID        string            `json:"id"`
	TenantID  string            `json:"tenant_id"`
	GuestID   string            `json:"guest_id"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	PartySize int               `json:"party_size"`
	GuestName string            `json:"guest_name"`
	Notes     string            `json:"notes,omitempty"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}
