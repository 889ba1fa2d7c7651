package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/svb-events/internal/event"
)

// SortOrder represents the available preview orderings
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByVenue SortOrder = "venue"
	SortByTitle SortOrder = "title"
)

// sortRecords sorts records in place. Unknown orders fall back to date order.
func sortRecords(records []event.Record, order SortOrder) {
	switch order {
	case SortByVenue:
		sort.SliceStable(records, func(i, j int) bool {
			vi, vj := strings.ToLower(records[i].VenueName), strings.ToLower(records[j].VenueName)
			if vi != vj {
				return vi < vj
			}
			// If venues are equal, sort by date
			return compareByDate(records[i], records[j])
		})
	case SortByTitle:
		sort.SliceStable(records, func(i, j int) bool {
			ti, tj := strings.ToLower(records[i].Title), strings.ToLower(records[j].Title)
			if ti != tj {
				return ti < tj
			}
			// If titles are equal, sort by date
			return compareByDate(records[i], records[j])
		})
	default:
		sort.SliceStable(records, func(i, j int) bool {
			return compareByDate(records[i], records[j])
		})
	}
}

// compareByDate reports whether record i should come before record j.
// Records without a start go last; ties break on ID.
func compareByDate(i, j event.Record) bool {
	if !i.Start.IsZero() && !j.Start.IsZero() && !i.Start.Equal(j.Start) {
		return i.Start.Before(j.Start)
	}

	// If only one start is valid, put the valid one first
	if !i.Start.IsZero() && j.Start.IsZero() {
		return true
	}
	if i.Start.IsZero() && !j.Start.IsZero() {
		return false
	}

	return i.ID < j.ID
}
