// Package calendar exports the event feed as an iCalendar (.ics) file.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/svb-events/internal/event"
	"github.com/pfrederiksen/svb-events/internal/storage"
)

const (
	// DefaultName is the calendar display name.
	DefaultName = "Santa Barbara Live Music"

	productID = "-//svb-events//svb-events//EN"
	uidDomain = "svb-events"

	defaultDuration = 2 * time.Hour
)

// Build creates a calendar with one VEVENT per record. Records without a start
// time are skipped.
func Build(records []event.Record, name string, now time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	stamp := now.UTC()
	for _, r := range records {
		if r.Start.IsZero() {
			continue
		}
		end := r.End
		if end.IsZero() || end.Before(r.Start) {
			end = r.Start.Add(defaultDuration)
		}

		ev := cal.AddEvent(fmt.Sprintf("%s@%s", r.ID, uidDomain))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(r.Start)
		ev.SetEndAt(end)
		ev.SetSummary(r.Title)
		if loc := location(r); loc != "" {
			ev.SetLocation(loc)
		}
		if desc := description(r); desc != "" {
			ev.SetDescription(desc)
		}
		if r.URL != "" {
			ev.SetURL(r.URL)
		}
		ev.SetStatus(ics.ObjectStatusConfirmed)
	}
	return cal
}

// Encode serializes records as an iCalendar document.
func Encode(records []event.Record, name string, now time.Time) string {
	return Build(records, name, now).Serialize()
}

// WriteICS writes records as an iCalendar file, replacing path atomically.
func WriteICS(path string, records []event.Record, name string, now time.Time) error {
	expanded, err := storage.ExpandHome(path)
	if err != nil {
		return err
	}
	if err := storage.WriteAtomic(expanded, []byte(Encode(records, name, now))); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

func location(r event.Record) string {
	parts := make([]string, 0, 2)
	if r.VenueName != "" {
		parts = append(parts, r.VenueName)
	}
	if r.Address != "" {
		parts = append(parts, r.Address)
	} else if r.City != "" {
		parts = append(parts, r.City)
	}
	return strings.Join(parts, ", ")
}

func description(r event.Record) string {
	var lines []string
	switch {
	case r.Genre != "" && r.Category != "":
		lines = append(lines, fmt.Sprintf("%s / %s", r.Category, r.Genre))
	case r.Category != "":
		lines = append(lines, r.Category)
	}
	if r.TimeDefaulted {
		lines = append(lines, "Start time not listed")
	}
	if r.Source != "" {
		lines = append(lines, "Source: "+r.Source)
	}
	return strings.Join(lines, "\n")
}
