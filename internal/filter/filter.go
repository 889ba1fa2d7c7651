// Package filter narrows the written feed to a subset of events.
//
// A filter combines any of these criteria, all of which must hold:
//   - Date range (from/to dates, inclusive)
//   - Venue names (substring matching, case-insensitive)
//   - Cities (substring matching, case-insensitive)
//   - Genres (substring matching against genre or category, case-insensitive)
//   - Weekends only (Friday evening counts as weekend; see Matches)
//
// Example usage:
//
//	// Keep only weekend jazz in Santa Barbara
//	f := filter.NewFilter()
//	f.WeekendsOnly = true
//	f.Cities = []string{"Santa Barbara"}
//	f.Genres = []string{"jazz"}
//
//	kept := f.Apply(records)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/svb-events/internal/event"
)

// Filter represents event filtering criteria
type Filter struct {
	// Date range filtering
	DateFrom *time.Time `json:"date_from,omitempty" yaml:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty" yaml:"date_to,omitempty"`

	// Venue name filtering (case-insensitive substring match)
	Venues []string `json:"venues,omitempty" yaml:"venues,omitempty"`

	// City filtering (case-insensitive substring match)
	Cities []string `json:"cities,omitempty" yaml:"cities,omitempty"`

	// Genre filtering, matched against both genre and category
	Genres []string `json:"genres,omitempty" yaml:"genres,omitempty"`

	// Weekend-only filtering
	WeekendsOnly bool `json:"weekends_only,omitempty" yaml:"weekends_only,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all events until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Venues: []string{},
		Cities: []string{},
		Genres: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f == nil || (f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Venues) == 0 &&
		len(f.Cities) == 0 &&
		len(f.Genres) == 0 &&
		!f.WeekendsOnly)
}

// Matches checks if a record matches all active filter criteria.
// An empty filter matches all records.
//
// Matching logic:
//   - Date range: the record's local date must be within DateFrom and DateTo (inclusive)
//   - Venues: venue name must contain at least one entry
//   - Cities: city must contain at least one entry
//   - Genres: genre or category must contain at least one entry
//   - WeekendsOnly: Saturday, Sunday, or a Friday start at or after 17:00
//
// Records without a start time pass the date criteria.
func (f *Filter) Matches(r event.Record) bool {
	if f.IsEmpty() {
		return true
	}

	if !r.Start.IsZero() {
		date := r.Date()
		if f.DateFrom != nil && date.Before(dateOnly(*f.DateFrom)) {
			return false
		}
		if f.DateTo != nil && date.After(dateOnly(*f.DateTo)) {
			return false
		}
		if f.WeekendsOnly && !isWeekend(r.Start) {
			return false
		}
	}

	if len(f.Venues) > 0 && !containsAny(r.VenueName, f.Venues) {
		return false
	}

	if len(f.Cities) > 0 && !containsAny(r.City, f.Cities) {
		return false
	}

	if len(f.Genres) > 0 && !containsAny(r.Genre, f.Genres) && !containsAny(r.Category, f.Genres) {
		return false
	}

	return true
}

// Apply returns only the matching records. If the filter is empty, returns the
// original slice unchanged.
func (f *Filter) Apply(records []event.Record) []event.Record {
	if f.IsEmpty() {
		return records
	}

	filtered := make([]event.Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			filtered = append(filtered, r)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: Aug 1, 2025 | Cities: Santa Barbara | Genres: jazz | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}

	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}

	if len(f.Venues) > 0 {
		parts = append(parts, fmt.Sprintf("Venues: %s", strings.Join(f.Venues, ", ")))
	}

	if len(f.Cities) > 0 {
		parts = append(parts, fmt.Sprintf("Cities: %s", strings.Join(f.Cities, ", ")))
	}

	if len(f.Genres) > 0 {
		parts = append(parts, fmt.Sprintf("Genres: %s", strings.Join(f.Genres, ", ")))
	}

	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	if f == nil {
		return NewFilter()
	}
	clone := &Filter{
		WeekendsOnly: f.WeekendsOnly,
		Venues:       cloneStrings(f.Venues),
		Cities:       cloneStrings(f.Cities),
		Genres:       cloneStrings(f.Genres),
	}

	if f.DateFrom != nil {
		df := *f.DateFrom
		clone.DateFrom = &df
	}

	if f.DateTo != nil {
		dt := *f.DateTo
		clone.DateTo = &dt
	}

	return clone
}

func containsAny(value string, needles []string) bool {
	lower := strings.ToLower(value)
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

func isWeekend(start time.Time) bool {
	switch start.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	case time.Friday:
		return start.Hour() >= 17
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
