package models

// IntentCategory is the closed classification set. Anything outside this set
// coming back from the provider is coerced to IntentUnknown.
type IntentCategory string

const (
	IntentGeneralQuestion    IntentCategory = "GENERAL_QUESTION"
	IntentOrderItem          IntentCategory = "ORDER_ITEM"
	IntentOrderSubmit        IntentCategory = "ORDER_SUBMIT"
	IntentReservationRequest IntentCategory = "RESERVATION_REQUEST"
	IntentReservationConfirm IntentCategory = "RESERVATION_CONFIRM"
	IntentEscalationRequest  IntentCategory = "ESCALATION_REQUEST"
	IntentUnknown            IntentCategory = "UNKNOWN"
)

// AllIntentCategories lists the closed set in routing-table order.
var AllIntentCategories = []IntentCategory{
	IntentGeneralQuestion,
	IntentOrderItem,
	IntentOrderSubmit,
	IntentReservationRequest,
	IntentReservationConfirm,
	IntentEscalationRequest,
	IntentUnknown,
}

// Valid reports whether the category is a member of the closed set.
func (c IntentCategory) Valid() bool {
	for _, v := range AllIntentCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Intent is the structured classification of one inbound message. Entity
// fields are only populated when the category implies them.
type Intent struct {
	Category       IntentCategory `json:"category"`
	Language       string         `json:"language"`
	Confidence     float64        `json:"confidence"`
	DepartmentHint string         `json:"department_hint,omitempty"`

	// ORDER_ITEM entities
	Items []OrderItem `json:"items,omitempty"`

	// RESERVATION_REQUEST entities
	ReservationDate string `json:"reservation_date,omitempty"`
	ReservationTime string `json:"reservation_time,omitempty"`
	PartySize       int    `json:"party_size,omitempty"`
	GuestName       string `json:"guest_name,omitempty"`

	// Guest profile entities
	RoomNumber  string `json:"room_number,omitempty"`
	TableNumber string `json:"table_number,omitempty"`
}
