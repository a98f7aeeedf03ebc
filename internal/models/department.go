package models

import (
	"fmt"
	"time"
)

// HoursInterval is one open interval in local wall-clock time, "HH:MM".
// An interval whose close is before its open wraps past midnight.
type HoursInterval struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Department is a staff destination inside a tenant: kitchen, bar,
// housekeeping, reception. GroupChannelID is the staff group chat that
// receives notifications. Position is the tenant-defined order used as the
// deterministic tie-break during routing.
type Department struct {
	ID             string          `json:"id"`
	TenantID       string          `json:"tenant_id"`
	Name           string          `json:"name"`
	DisplayName    string          `json:"display_name"`
	GroupChannelID string          `json:"group_channel_id"`
	Hours          []HoursInterval `json:"hours,omitempty"`
	FallbackDeptID string          `json:"fallback_dept_id,omitempty"`
	IsEscalation   bool            `json:"is_escalation"`
	Position       int             `json:"position"`
	Active         bool            `json:"active"`
}

// Label returns the guest-facing department name.
func (d *Department) Label() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// IsOpenAt reports whether the department is open at the given local time.
// A department with no configured hours is always open.
func (d *Department) IsOpenAt(t time.Time) bool {
	if len(d.Hours) == 0 {
		return true
	}
	now := t.Hour()*60 + t.Minute()
	for _, h := range d.Hours {
		open, err1 := parseClock(h.Open)
		close, err2 := parseClock(h.Close)
		if err1 != nil || err2 != nil {
			continue
		}
		if open <= close {
			if now >= open && now < close {
				return true
			}
		} else {
			// interval wraps past midnight
			if now >= open || now < close {
				return true
			}
		}
	}
	return false
}

func parseClock(s string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%d:%d", &hh, &mm); err != nil {
		return 0, err
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return hh*60 + mm, nil
}
