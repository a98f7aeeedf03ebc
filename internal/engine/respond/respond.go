// Package respond renders handler results into guest-facing text in the
// conversation language. It owns all localized copy; handlers only produce
// structured results.
package respond

import (
	"fmt"
	"strings"

	"gastino/internal/models"
)

// Kind tags what a handler produced.
type Kind string

const (
	KindVerbatim             Kind = "verbatim"
	KindAskOrderItems        Kind = "ask_order_items"
	KindOrderDraft           Kind = "order_draft"
	KindOrderSubmitted       Kind = "order_submitted"
	KindOrderInPreparation   Kind = "order_in_preparation"
	KindEscalationAck        Kind = "escalation_ack"
	KindReservationConfirmed Kind = "reservation_confirmed"
	KindReservationPending   Kind = "reservation_pending"
	KindAskReservationInfo   Kind = "ask_reservation_info"
	KindApology              Kind = "apology"
)

// SubmittedOrder is one department's share of a submitted order batch.
type SubmittedOrder struct {
	DeptLabel string
	Items     []models.OrderItem
	Queued    bool // accepted outside the department's service hours
}

// Result is the structured outcome a handler returns for rendering.
type Result struct {
	Kind        Kind
	Text        string // verbatim replies (AI-generated, already localized)
	Items       []models.OrderItem
	DeptLabel   string
	Orders      []SubmittedOrder
	Reservation *models.ReservationDraft
	Missing     []string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Language resolves the conversation language against the tenant's supported
// set, falling back to the tenant default.
func (g *Generator) Language(lang string, tenant *models.Tenant) string {
	if lang != "" && tenant.SupportsLanguage(lang) {
		return strings.ToLower(lang)
	}
	return tenant.DefaultLanguage()
}

// Render produces the outbound guest text for a handler result.
func (g *Generator) Render(res Result, lang string, tenant *models.Tenant) string {
	lang = g.Language(lang, tenant)
	c := copyFor(lang)

	switch res.Kind {
	case KindVerbatim:
		return res.Text

	case KindAskOrderItems:
		return c.askOrderItems

	case KindOrderDraft:
		return fmt.Sprintf(c.orderDraft, formatItems(res.Items)) + "\n" + c.orderDraftHint

	case KindOrderSubmitted:
		var b strings.Builder
		b.WriteString(c.orderSubmitted)
		for _, o := range res.Orders {
			fmt.Fprintf(&b, "\n- %s: %s", o.DeptLabel, formatItems(o.Items))
		}
		for _, o := range res.Orders {
			if o.Queued {
				b.WriteString("\n" + fmt.Sprintf(c.queuedNote, o.DeptLabel))
			}
		}
		return b.String()

	case KindOrderInPreparation:
		return c.orderInPreparation

	case KindEscalationAck:
		return c.escalationAck

	case KindReservationConfirmed:
		r := res.Reservation
		return fmt.Sprintf(c.reservationConfirmed, r.Date, r.Time, r.PartySize)

	case KindReservationPending:
		r := res.Reservation
		return fmt.Sprintf(c.reservationPending, r.Date, r.Time, r.PartySize)

	case KindAskReservationInfo:
		labels := make([]string, 0, len(res.Missing))
		for _, f := range res.Missing {
			if l, ok := c.fieldLabels[f]; ok {
				labels = append(labels, l)
			}
		}
		return fmt.Sprintf(c.askReservationInfo, strings.Join(labels, ", "))

	case KindApology:
		return c.apology
	}

	return c.apology
}

func formatItems(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		s := fmt.Sprintf("%dx %s", it.Quantity, it.Name)
		if it.Notes != "" {
			s += " (" + it.Notes + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}
