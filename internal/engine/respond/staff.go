package respond

import (
	"fmt"
	"strings"

	"gastino/internal/models"
)

// Staff notifications are deliberately language-neutral and terse; staff
// groups see them for every guest regardless of conversation language.

// FormatStaffOrder renders the department group notification for one order.
func FormatStaffOrder(o *models.Order, deptLabel string, guest *models.Guest) string {
	var b strings.Builder
	b.WriteString("\U0001F514 NEW ORDER – " + deptLabel + "\n")
	if o.RoomNumber != "" {
		fmt.Fprintf(&b, "Room: %s\n", o.RoomNumber)
	}
	if o.TableNumber != "" {
		fmt.Fprintf(&b, "Table: %s\n", o.TableNumber)
	}
	if guest != nil && guest.Name != "" {
		fmt.Fprintf(&b, "Guest: %s\n", guest.Name)
	}
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %dx %s", it.Quantity, it.Name)
		if it.Notes != "" {
			fmt.Fprintf(&b, " (%s)", it.Notes)
		}
		b.WriteString("\n")
	}
	if o.QueuedUntilOpen {
		b.WriteString("(received outside service hours)\n")
	}
	fmt.Fprintf(&b, "Order-ID: %s", o.ShortID())
	return b.String()
}

// FormatStaffReservation renders the staff notification for a reservation
// request.
func FormatStaffReservation(r *models.Reservation, guest *models.Guest) string {
	var b strings.Builder
	b.WriteString("\U0001F4C5 RESERVATION REQUEST\n")
	fmt.Fprintf(&b, "Date: %s %s\n", r.Date, r.Time)
	fmt.Fprintf(&b, "Guests: %d\n", r.PartySize)
	fmt.Fprintf(&b, "Name: %s\n", r.GuestName)
	if guest != nil && guest.ChannelID != "" {
		fmt.Fprintf(&b, "Contact: %s\n", guest.ChannelID)
	}
	if r.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", r.Notes)
	}
	fmt.Fprintf(&b, "Status: %s", r.Status)
	return b.String()
}

// FormatStaffEscalation renders the verbatim forward of a guest message that
// needs human attention.
func FormatStaffEscalation(guest *models.Guest, text string) string {
	var b strings.Builder
	b.WriteString("⚠️ GUEST NEEDS ASSISTANCE\n")
	if guest != nil {
		if guest.Name != "" {
			fmt.Fprintf(&b, "Guest: %s\n", guest.Name)
		}
		if guest.ChannelID != "" {
			fmt.Fprintf(&b, "Contact: %s\n", guest.ChannelID)
		}
		if guest.RoomNumber != "" {
			fmt.Fprintf(&b, "Room: %s\n", guest.RoomNumber)
		}
	}
	b.WriteString("Message:\n" + text)
	return b.String()
}
