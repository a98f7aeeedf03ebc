package classifier

import (
	"fmt"
	"strings"
	"time"

	"gastino/internal/ai"
	"gastino/internal/models"
)

const categoryRules = `You classify guest messages for a hospitality business into exactly one category:

GENERAL_QUESTION: questions about the business, menu, amenities, opening hours, small talk.
ORDER_ITEM: the guest names food or drinks they want (adds items, does not finish).
ORDER_SUBMIT: the guest finishes an order ("that's all", "send it", confirms the draft).
RESERVATION_REQUEST: the guest wants a table/room reservation or adds reservation details.
RESERVATION_CONFIRM: the guest confirms a reservation summary you proposed.
ESCALATION_REQUEST: the guest asks for a human, complains, or reports a problem.
UNKNOWN: none of the above fits.

Extract entities only when present in the message:
- items: ordered items with quantity (default 1) and preparation notes.
- department_hint: the department the guest addressed (kitchen, bar, reception, housekeeping) if any.
- reservation_date (YYYY-MM-DD), reservation_time (HH:MM, 24h), party_size, guest_name.
- room_number / table_number when the guest states where they are.

language is the two-letter code of the language the message is written in.
confidence is between 0 and 1. Respond with JSON only.`

// buildSystemPrompt assembles the classification context: category rules,
// date anchors in the tenant's timezone, tenant knowledge, and the current
// conversation state.
func buildSystemPrompt(snap *models.TenantSnapshot, guest *models.Guest, st *models.ConversationState, now time.Time) string {
	loc := snap.Tenant.Location()
	today := now.In(loc)

	var b strings.Builder
	b.WriteString(categoryRules)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Today is %s (%s). Tomorrow is %s.\n",
		today.Format("2006-01-02"), today.Weekday(), today.AddDate(0, 0, 1).Format("2006-01-02"))
	b.WriteString("\n")
	b.WriteString(snap.ContextBlock())

	if guest != nil {
		fmt.Fprintf(&b, "\nGuest: %s", guest.Name)
		if guest.RoomNumber != "" {
			fmt.Fprintf(&b, ", room %s", guest.RoomNumber)
		}
		if guest.TableNumber != "" {
			fmt.Fprintf(&b, ", table %s", guest.TableNumber)
		}
		b.WriteString("\n")
	}

	if st != nil {
		if st.Order != nil && len(st.Order.Items) > 0 {
			b.WriteString("Open order draft: ")
			parts := make([]string, 0, len(st.Order.Items))
			for _, it := range st.Order.Items {
				parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
			}
			b.WriteString(strings.Join(parts, ", ") + "\n")
		}
		if st.Reservation != nil {
			fmt.Fprintf(&b, "Open reservation draft: date=%s time=%s party_size=%d name=%s\n",
				st.Reservation.Date, st.Reservation.Time, st.Reservation.PartySize, st.Reservation.GuestName)
		}
	}

	return b.String()
}

// historyTurns converts logged messages into provider turns, guest messages
// as user turns and engine replies as assistant turns.
func historyTurns(history []models.MessageRecord) []ai.Turn {
	turns := make([]ai.Turn, 0, len(history))
	for _, m := range history {
		role := ai.RoleUser
		if m.Direction == models.DirectionOutbound {
			role = ai.RoleAssistant
		}
		turns = append(turns, ai.Turn{Role: role, Content: m.Content})
	}
	return turns
}
