package models

import (
	"fmt"
	"strings"
	"time"
)

// BusinessType identifies the kind of property a tenant runs.
type BusinessType string

const (
	BusinessHotel          BusinessType = "hotel"
	BusinessRestaurant     BusinessType = "restaurant"
	BusinessVacationRental BusinessType = "vacation_rental"
	BusinessBar            BusinessType = "bar"
)

// Tenant is one property (hotel, restaurant, ...) served by the engine.
// ChannelID is the messaging channel identifier inbound messages carry;
// it is the resolution key and must be unique across tenants.
type Tenant struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Type          BusinessType `json:"type"`
	ChannelID     string       `json:"channel_id"`
	ChannelNumber string       `json:"channel_number"`
	Languages     []string     `json:"languages"`
	Timezone      string       `json:"timezone"`
	SystemContext string       `json:"system_context"`
	MenuContext   string       `json:"menu_context"`
	FAQContext    string       `json:"faq_context"`
	Active        bool         `json:"active"`
	CreatedAt     time.Time    `json:"created_at"`
}

// DefaultLanguage returns the tenant's first configured language, "en" when
// none are configured.
func (t *Tenant) DefaultLanguage() string {
	if len(t.Languages) > 0 {
		return t.Languages[0]
	}
	return "en"
}

// SupportsLanguage reports whether code is in the tenant's supported set.
func (t *Tenant) SupportsLanguage(code string) bool {
	for _, l := range t.Languages {
		if strings.EqualFold(l, code) {
			return true
		}
	}
	return false
}

// Location resolves the tenant timezone, falling back to UTC.
func (t *Tenant) Location() *time.Location {
	if t.Timezone != "" {
		if loc, err := time.LoadLocation(t.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// TenantSnapshot is the immutable per-message view of a tenant and its
// departments. Departments keep the tenant-defined order.
type TenantSnapshot struct {
	Tenant      Tenant       `json:"tenant"`
	Departments []Department `json:"departments"`
}

// DepartmentByID returns the department with the given id, or nil.
func (s *TenantSnapshot) DepartmentByID(id string) *Department {
	for i := range s.Departments {
		if s.Departments[i].ID == id {
			return &s.Departments[i]
		}
	}
	return nil
}

// EscalationDepartment returns the tenant's escalation target, or nil when
// none is configured.
func (s *TenantSnapshot) EscalationDepartment() *Department {
	for i := range s.Departments {
		if s.Departments[i].IsEscalation && s.Departments[i].Active {
			return &s.Departments[i]
		}
	}
	return nil
}

// ContextBlock assembles the tenant knowledge blocks handed to the AI
// provider. Empty blocks are skipped.
func (s *TenantSnapshot) ContextBlock() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Business: %s (%s)\n", s.Tenant.Name, s.Tenant.Type)
	if s.Tenant.SystemContext != "" {
		b.WriteString("About:\n" + s.Tenant.SystemContext + "\n")
	}
	if s.Tenant.MenuContext != "" {
		b.WriteString("Menu:\n" + s.Tenant.MenuContext + "\n")
	}
	if s.Tenant.FAQContext != "" {
		b.WriteString("FAQ:\n" + s.Tenant.FAQContext + "\n")
	}
	if len(s.Departments) > 0 {
		b.WriteString("Departments: ")
		names := make([]string, 0, len(s.Departments))
		for _, d := range s.Departments {
			if d.Active {
				names = append(names, d.Name)
			}
		}
		b.WriteString(strings.Join(names, ", ") + "\n")
	}
	return b.String()
}
