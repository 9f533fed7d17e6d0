// Package mapview holds the map client's view model: the per-person location
// history, the date and person selection, and the markers derived from them.
package mapview

import (
	"sort"
	"time"

	"locationShare/models"
)

// DateLayout is the calendar-day format used for location dates.
const DateLayout = "2006-01-02"

// DefaultDate is the date selected when the map first opens.
const DefaultDate = "2025-01-01"

// History maps a person's name to their location entries.
type History map[string][]models.Location

// DemoHistory returns the built-in demo dataset. Each call returns a fresh copy.
func DemoHistory() History {
	return History{
		"Alice": {
			{Date: "2025-01-01", Lat: 40.7128, Lng: -74.006},
			{Date: "2025-01-02", Lat: 40.7138, Lng: -74.001},
		},
		"Bob": {
			{Date: "2025-01-01", Lat: 34.0522, Lng: -118.2437},
			{Date: "2025-01-03", Lat: 34.0522, Lng: -118.24},
		},
	}
}

// People returns the known names in sorted order.
func (h History) People() []string {
	out := make([]string, 0, len(h))
	for name := range h {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ValidDate reports whether s is a calendar day in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
