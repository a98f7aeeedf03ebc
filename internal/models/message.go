package models

import "time"

// Direction of a logged message relative to the engine.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// SenderType identifies who authored a logged message.
type SenderType string

const (
	SenderGuest     SenderType = "guest"
	SenderAssistant SenderType = "assistant"
	SenderStaff     SenderType = "staff"
)

// InboundMessage is a raw message received on the webhook, before tenant
// resolution. ChannelID is the tenant channel it arrived on, From the sender
// channel id. GroupID is set when the message came from a staff group chat.
type InboundMessage struct {
	ChannelID   string    `json:"channel_id"`
	From        string    `json:"from"`
	GroupID     string    `json:"group_id,omitempty"`
	ProfileName string    `json:"profile_name,omitempty"`
	Text        string    `json:"text"`
	ReceivedAt  time.Time `json:"received_at"`
}

// OutboundMessage is the rendered payload handed to the delivery client.
type OutboundMessage struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// MessageRecord is one persisted conversation message.
type MessageRecord struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenant_id"`
	GuestID   string     `json:"guest_id"`
	Direction Direction  `json:"direction"`
	Sender    SenderType `json:"sender"`
	Content   string     `json:"content"`
	Intent    string     `json:"intent,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
