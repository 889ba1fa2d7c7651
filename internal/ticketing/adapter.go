package ticketing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pfrederiksen/svb-events/internal/datetime"
	"github.com/pfrederiksen/svb-events/internal/event"
	"github.com/pfrederiksen/svb-events/internal/extract"
	"github.com/pfrederiksen/svb-events/internal/logger"
	"github.com/pfrederiksen/svb-events/internal/normalize"
)

const (
	SourceName = "ticketmaster"

	// DefaultMaxPages bounds paging per location.
	DefaultMaxPages = 5

	categoryArt = "Art"
)

// DefaultLocations are searched when none are configured.
var DefaultLocations = []string{"Santa Barbara", "Goleta", "93101"}

// Adapter is the source adapter for the Discovery API.
type Adapter struct {
	client    *Client
	locations []string
	maxPages  int
}

// NewAdapter creates an Adapter. Empty locations and a non-positive maxPages take
// the defaults.
func NewAdapter(client *Client, locations []string, maxPages int) *Adapter {
	if len(locations) == 0 {
		locations = DefaultLocations
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Adapter{client: client, locations: locations, maxPages: maxPages}
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return SourceName }

// FetchEvents implements source.Adapter. A failing location is logged and skipped.
func (a *Adapter) FetchEvents(ctx context.Context) []event.Record {
	out := []event.Record{}
	if !a.client.HasKey() {
		logger.Info("Ticketmaster API key missing, skipping", nil)
		return out
	}

	seen := make(map[string]bool)
	for _, loc := range a.locations {
		for page := 0; page < a.maxPages; page++ {
			result, err := a.client.Search(ctx, loc, page)
			if err != nil {
				logger.Warn("Ticketmaster search failed", logger.Fields{
					"location": loc,
					"page":     page,
					"error":    err.Error(),
				})
				break
			}

			for _, ev := range result.Embedded.Events {
				r, err := Map(ev)
				if err != nil {
					logger.Debug("Could not map Ticketmaster event", logger.Fields{
						"id":    ev.ID,
						"error": err.Error(),
					})
					continue
				}
				// Locations overlap; the same event comes back for a city and its zip.
				if seen[r.ID] {
					continue
				}
				seen[r.ID] = true
				out = append(out, r)
			}

			if page >= result.Page.TotalPages-1 {
				break
			}
		}
	}
	return out
}

// Map converts a Discovery event into a record.
func Map(ev Event) (event.Record, error) {
	if ev.ID == "" || strings.TrimSpace(ev.Name) == "" {
		return event.Record{}, fmt.Errorf("event without id or name")
	}
	if len(ev.Embedded.Venues) == 0 {
		return event.Record{}, fmt.Errorf("event %s has no venue", ev.ID)
	}
	start, err := startTime(ev)
	if err != nil {
		return event.Record{}, fmt.Errorf("event %s: %w", ev.ID, err)
	}

	v := ev.Embedded.Venues[0]
	city := normalize.Clean(v.City.Name)
	if city == "" {
		city = normalize.DefaultCity
	}
	zip := strings.TrimSpace(v.PostalCode)
	if zip == "" {
		zip = normalize.DefaultZip
	}

	category, genre := event.DefaultCategory, extract.DefaultGenre
	if len(ev.Classifications) > 0 {
		c := ev.Classifications[0]
		if !strings.Contains(c.Segment.Name, "Music") {
			category = categoryArt
		}
		if g := normalize.Clean(c.Genre.Name); g != "" && !strings.EqualFold(g, "Undefined") {
			genre = g
		}
	}

	r := event.Record{
		ID:         "tm-" + ev.ID,
		Title:      normalize.Clean(ev.Name),
		Category:   category,
		Genre:      genre,
		VenueName:  normalize.Clean(v.Name),
		Address:    address(v, city),
		City:       city,
		Zip:        zip,
		Start:      start,
		End:        start.Add(datetime.DefaultDuration),
		Popularity: popularity(ev.Popularity),
		Source:     SourceName,
		URL:        ev.URL,
	}
	if err := r.Validate(); err != nil {
		return event.Record{}, err
	}
	return r, nil
}

// startTime prefers the UTC instant and falls back to the local date and time.
func startTime(ev Event) (time.Time, error) {
	s := ev.Dates.Start
	if s.DateTime != "" {
		t, err := time.Parse(time.RFC3339, s.DateTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing start %q: %w", s.DateTime, err)
		}
		return datetime.InZone(t), nil
	}
	if s.LocalDate == "" || s.LocalTime == "" {
		return time.Time{}, fmt.Errorf("no start time")
	}
	date, err := time.Parse("2006-01-02", s.LocalDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing local date %q: %w", s.LocalDate, err)
	}
	clock, err := time.Parse("15:04:05", s.LocalTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing local time %q: %w", s.LocalTime, err)
	}
	start, _ := datetime.Compose(date, datetime.TimeRange{
		Start: datetime.Clock{Hour: clock.Hour(), Minute: clock.Minute()},
	})
	return start, nil
}

func address(v Venue, city string) string {
	parts := make([]string, 0, 3)
	if line := normalize.Clean(v.Address.Line1); line != "" {
		parts = append(parts, line)
	}
	parts = append(parts, city)
	state := v.State.StateCode
	if state == "" {
		state = normalize.DefaultState
	}
	tail := state
	if v.PostalCode != "" {
		tail += " " + v.PostalCode
	}
	return strings.Join(append(parts, tail), ", ")
}

// popularity scales the API's 0-1 score to 0-100.
func popularity(p *float64) int {
	if p == nil {
		return event.DefaultPopularity
	}
	n := int(math.Round(*p * 100))
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	}
	return n
}
