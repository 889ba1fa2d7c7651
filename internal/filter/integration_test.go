package filter_test

import (
	"testing"
	"time"

	"github.com/pfrederiksen/svb-events/internal/event"
	"github.com/pfrederiksen/svb-events/internal/filter"
)

// TestIntegration runs a merged feed through a filter the way the pipeline does
func TestIntegration(t *testing.T) {
	pdt := time.FixedZone("PDT", -7*60*60)
	now := time.Date(2025, time.August, 4, 12, 0, 0, 0, pdt)

	scraped := []event.Record{
		{ID: "a", Title: "Jane Doe", VenueName: "SOhO", City: "Santa Barbara", Genre: "Jazz", Start: time.Date(2025, time.August, 5, 19, 0, 0, 0, pdt)},
		{ID: "b", Title: "The Tones", VenueName: "Cold Spring Tavern", City: "Santa Barbara", Genre: "Rock", Start: time.Date(2025, time.August, 9, 13, 0, 0, 0, pdt)},
		{ID: "c", Title: "Old Show", VenueName: "SOhO", City: "Santa Barbara", Genre: "Jazz", Start: time.Date(2025, time.July, 1, 19, 0, 0, 0, pdt)},
	}
	ticketed := []event.Record{
		{ID: "tm-1", Title: "Arena Tour", VenueName: "Santa Barbara Bowl", City: "Santa Barbara", Genre: "Rock", Start: time.Date(2025, time.August, 10, 20, 0, 0, 0, pdt)},
		{ID: "tm-2", Title: "Campus Jazz", VenueName: "Campbell Hall", City: "Goleta", Genre: "Jazz", Start: time.Date(2025, time.August, 8, 19, 30, 0, 0, pdt)},
	}

	merged := event.MergeAll(now, scraped, ticketed)
	if len(merged) != 4 {
		t.Fatalf("MergeAll() returned %d records, want 4", len(merged))
	}

	f := filter.NewFilter()
	f.Cities = []string{"santa barbara"}
	f.WeekendsOnly = true

	kept := f.Apply(merged)
	if len(kept) != 2 {
		t.Fatalf("Apply() returned %d records, want 2: %+v", len(kept), kept)
	}
	if kept[0].ID != "b" || kept[1].ID != "tm-1" {
		t.Errorf("Apply() = [%s %s], want [b tm-1]", kept[0].ID, kept[1].ID)
	}

	jazz := &filter.Filter{Genres: []string{"jazz"}}
	if got := jazz.Apply(merged); len(got) != 2 {
		t.Errorf("jazz filter kept %d records, want 2", len(got))
	}
}

func TestEmptyFilterBehavior(t *testing.T) {
	records := []event.Record{
		{ID: "1", Title: "One"},
		{ID: "2", Title: "Two"},
	}

	f := filter.NewFilter()
	if got := f.Apply(records); len(got) != len(records) {
		t.Errorf("empty filter returned %d records, want %d", len(got), len(records))
	}
	if f.String() != "No active filters" {
		t.Errorf("String() = %q", f.String())
	}
}
