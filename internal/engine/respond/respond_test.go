package respond

import (
	"testing"

	"gastino/internal/models"

	"github.com/stretchr/testify/assert"
)

func testTenant() *models.Tenant {
	return &models.Tenant{
		ID:        "tenant-1",
		Name:      "Hotel Sonnenhof",
		Languages: []string{"de", "it", "en"},
	}
}

func TestLanguageFallsBackToTenantDefault(t *testing.T) {
	g := NewGenerator()
	tenant := testTenant()

	tests := []struct {
		name string
		lang string
		want string
	}{
		{name: "supported language kept", lang: "it", want: "it"},
		{name: "unsupported language falls back", lang: "fr", want: "de"},
		{name: "empty language falls back", lang: "", want: "de"},
		{name: "case insensitive", lang: "DE", want: "de"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Language(tt.lang, tenant))
		})
	}
}

func TestRenderOrderDraft(t *testing.T) {
	g := NewGenerator()
	out := g.Render(Result{
		Kind: KindOrderDraft,
		Items: []models.OrderItem{
			{Name: "Aperol Spritz", Quantity: 2},
			{Name: "Pizza Margherita", Quantity: 1, Notes: "senza basilico"},
		},
	}, "de", testTenant())

	assert.Contains(t, out, "2x Aperol Spritz")
	assert.Contains(t, out, "1x Pizza Margherita (senza basilico)")
	assert.Contains(t, out, "Bestellung")
}

func TestRenderOrderSubmittedWithQueuedNote(t *testing.T) {
	g := NewGenerator()
	out := g.Render(Result{
		Kind: KindOrderSubmitted,
		Orders: []SubmittedOrder{
			{DeptLabel: "Küche", Items: []models.OrderItem{{Name: "Pizza", Quantity: 1}}},
			{DeptLabel: "Bar", Items: []models.OrderItem{{Name: "Aperol Spritz", Quantity: 2}}, Queued: true},
		},
	}, "de", testTenant())

	assert.Contains(t, out, "Küche: 1x Pizza")
	assert.Contains(t, out, "Bar: 2x Aperol Spritz")
	assert.Contains(t, out, "Bar ist gerade geschlossen")
}

func TestRenderAskReservationInfo(t *testing.T) {
	g := NewGenerator()
	out := g.Render(Result{
		Kind:    KindAskReservationInfo,
		Missing: []string{"date", "party_size"},
	}, "en", testTenant())

	assert.Contains(t, out, "the date")
	assert.Contains(t, out, "the number of guests")
}

func TestRenderVerbatimPassesThrough(t *testing.T) {
	g := NewGenerator()
	out := g.Render(Result{Kind: KindVerbatim, Text: "Das Frühstück gibt es bis 10:30 Uhr."}, "de", testTenant())
	assert.Equal(t, "Das Frühstück gibt es bis 10:30 Uhr.", out)
}

func TestRenderUnknownLanguageTableUsesEnglish(t *testing.T) {
	g := NewGenerator()
	tenant := &models.Tenant{Languages: []string{"pt"}}

	out := g.Render(Result{Kind: KindEscalationAck}, "pt", tenant)
	assert.Contains(t, out, "I've informed the team")
}

func TestFormatStaffOrder(t *testing.T) {
	o := &models.Order{
		ID:           "abcdef12-3456-7890-abcd-ef1234567890",
		DepartmentID: "dept-bar",
		Items: []models.OrderItem{
			{Name: "Aperol Spritz", Quantity: 2},
		},
		RoomNumber: "204",
	}
	guest := &models.Guest{Name: "Anna", ChannelID: "+4912345"}

	out := FormatStaffOrder(o, "Bar", guest)
	assert.Contains(t, out, "NEW ORDER – Bar")
	assert.Contains(t, out, "Room: 204")
	assert.Contains(t, out, "Guest: Anna")
	assert.Contains(t, out, "2x Aperol Spritz")
	assert.Contains(t, out, "Order-ID: abcdef12")
}

func TestFormatStaffEscalationForwardsVerbatim(t *testing.T) {
	guest := &models.Guest{Name: "Anna", ChannelID: "+4912345"}
	out := FormatStaffEscalation(guest, "Die Klimaanlage tropft!!")
	assert.Contains(t, out, "Die Klimaanlage tropft!!")
	assert.Contains(t, out, "Anna")
}
