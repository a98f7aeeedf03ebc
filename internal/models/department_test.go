package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 5, 1, hour, min, 0, 0, time.UTC)
}

func TestIsOpenAt(t *testing.T) {
	tests := []struct {
		name  string
		hours []HoursInterval
		when  time.Time
		want  bool
	}{
		{name: "no declared hours means always open", hours: nil, when: at(3, 0), want: true},
		{name: "inside interval", hours: []HoursInterval{{Open: "12:00", Close: "22:00"}}, when: at(18, 30), want: true},
		{name: "before opening", hours: []HoursInterval{{Open: "12:00", Close: "22:00"}}, when: at(11, 59), want: false},
		{name: "at opening minute", hours: []HoursInterval{{Open: "12:00", Close: "22:00"}}, when: at(12, 0), want: true},
		{name: "at closing minute", hours: []HoursInterval{{Open: "12:00", Close: "22:00"}}, when: at(22, 0), want: false},
		{
			name:  "second interval of a split day",
			hours: []HoursInterval{{Open: "12:00", Close: "14:30"}, {Open: "18:00", Close: "22:00"}},
			when:  at(19, 0),
			want:  true,
		},
		{
			name:  "between split intervals",
			hours: []HoursInterval{{Open: "12:00", Close: "14:30"}, {Open: "18:00", Close: "22:00"}},
			when:  at(16, 0),
			want:  false,
		},
		{name: "midnight wrap evening side", hours: []HoursInterval{{Open: "20:00", Close: "02:00"}}, when: at(23, 30), want: true},
		{name: "midnight wrap morning side", hours: []HoursInterval{{Open: "20:00", Close: "02:00"}}, when: at(1, 30), want: true},
		{name: "midnight wrap closed daytime", hours: []HoursInterval{{Open: "20:00", Close: "02:00"}}, when: at(12, 0), want: false},
		{name: "malformed interval is skipped", hours: []HoursInterval{{Open: "noon", Close: "22:00"}}, when: at(13, 0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Department{Hours: tt.hours}
			assert.Equal(t, tt.want, d.IsOpenAt(tt.when))
		})
	}
}

func TestLabelPrefersDisplayName(t *testing.T) {
	d := Department{Name: "kitchen", DisplayName: "Küche"}
	assert.Equal(t, "Küche", d.Label())

	d.DisplayName = ""
	assert.Equal(t, "kitchen", d.Label())
}
