package models

import "time"

// OrderStatus tracks an order through its staff lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a submitted order routed to exactly one department. Items keep
// receipt order. QueuedUntilOpen marks orders accepted while the target
// department was outside its service hours.
type Order struct {
	ID              string      `json:"id"`
	TenantID        string      `json:"tenant_id"`
	GuestID         string      `json:"guest_id"`
	DepartmentID    string      `json:"department_id"`
	Items           []OrderItem `json:"items"`
	RoomNumber      string      `json:"room_number,omitempty"`
	TableNumber     string      `json:"table_number,omitempty"`
	Status          OrderStatus `json:"status"`
	QueuedUntilOpen bool        `json:"queued_until_open"`
	CreatedAt       time.Time   `json:"created_at"`
	ConfirmedAt     *time.Time  `json:"confirmed_at,omitempty"`
}

// ShortID returns the first 8 characters of the order id for staff messages.
func (o *Order) ShortID() string {
	if len(o.ID) > 8 {
		return o.ID[:8]
	}
	return o.ID
}
