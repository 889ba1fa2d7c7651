package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/svb-events/internal/normalize"
)

const (
	// DefaultCategory is used when nothing more specific classifies an event.
	DefaultCategory = "Music"

	// DefaultPopularity is the mid-range ranking hint for events without one.
	DefaultPopularity = 50

	// DefaultIDPrefix prefixes IDs of scraped listings.
	DefaultIDPrefix = "lnsb"

	venueSlugLen = 24
	titleSlugLen = 32

	defaultDuration = 2 * time.Hour
)

// Validation errors.
var (
	ErrMissingID      = errors.New("event has no id")
	ErrMissingTitle   = errors.New("event has no title")
	ErrMissingStart   = errors.New("event has no start time")
	ErrEndBeforeStart = errors.New("event ends before it starts")
)

// Record is one normalized event.
type Record struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Genre         string    `json:"genre"`
	VenueName     string    `json:"venue_name"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	Zip           string    `json:"zip"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Popularity    int       `json:"popularity"`
	Source        string    `json:"source,omitempty"`
	URL           string    `json:"url,omitempty"`
	TimeDefaulted bool      `json:"time_defaulted,omitempty"` // Start came from the default-time policy
}

// NewID builds the identity key "<prefix>-<yyyymmdd>-<venue slug>-<title slug>".
// It is a pure function of its inputs.
func NewID(prefix string, date time.Time, venue, title string) string {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	return fmt.Sprintf("%s-%s-%s-%s",
		prefix,
		date.Format("20060102"),
		normalize.Slug(venue, venueSlugLen),
		normalize.Slug(title, titleSlugLen),
	)
}

// Validate checks the invariants every emitted record must hold.
func (r Record) Validate() error {
	switch {
	case r.ID == "":
		return ErrMissingID
	case strings.TrimSpace(r.Title) == "":
		return ErrMissingTitle
	case r.Start.IsZero():
		return ErrMissingStart
	case !r.End.IsZero() && r.End.Before(r.Start):
		return ErrEndBeforeStart
	}
	return nil
}

// Date returns the record's local calendar date.
func (r Record) Date() time.Time {
	y, m, d := r.Start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MarshalJSON writes unknown genre, venue_name, address and zip as null, and a
// zero end as null.
func (r Record) MarshalJSON() ([]byte, error) {
	var end *time.Time
	if !r.End.IsZero() {
		end = &r.End
	}
	return json.Marshal(struct {
		ID            string     `json:"id"`
		Title         string     `json:"title"`
		Category      string     `json:"category"`
		Genre         *string    `json:"genre"`
		VenueName     *string    `json:"venue_name"`
		Address       *string    `json:"address"`
		City          string     `json:"city"`
		Zip           *string    `json:"zip"`
		Start         time.Time  `json:"start"`
		End           *time.Time `json:"end"`
		Popularity    int        `json:"popularity"`
		Source        string     `json:"source,omitempty"`
		URL           string     `json:"url,omitempty"`
		TimeDefaulted bool       `json:"time_defaulted,omitempty"`
	}{
		ID:            r.ID,
		Title:         r.Title,
		Category:      r.Category,
		Genre:         nullable(r.Genre),
		VenueName:     nullable(r.VenueName),
		Address:       nullable(r.Address),
		City:          r.City,
		Zip:           nullable(r.Zip),
		Start:         r.Start,
		End:           end,
		Popularity:    r.Popularity,
		Source:        r.Source,
		URL:           r.URL,
		TimeDefaulted: r.TimeDefaulted,
	})
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// startLayouts are the timestamp shapes older outputs and secondary sources use.
var startLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// UnmarshalJSON accepts the current record shape and older variants: a "venue" key
// in place of "venue_name", null strings, fractional popularity and loosely
// formatted timestamps. An unparseable start decodes as the zero time.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            string   `json:"id"`
		Title         *string  `json:"title"`
		Category      *string  `json:"category"`
		Genre         *string  `json:"genre"`
		VenueName     *string  `json:"venue_name"`
		Venue         *string  `json:"venue"`
		Address       *string  `json:"address"`
		City          *string  `json:"city"`
		Zip           *string  `json:"zip"`
		Start         *string  `json:"start"`
		End           *string  `json:"end"`
		Popularity    *float64 `json:"popularity"`
		Source        string   `json:"source"`
		URL           string   `json:"url"`
		TimeDefaulted bool     `json:"time_defaulted"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	venue := deref(raw.VenueName)
	if venue == "" {
		venue = deref(raw.Venue)
	}

	*r = Record{
		ID:            raw.ID,
		Title:         deref(raw.Title),
		Category:      deref(raw.Category),
		Genre:         deref(raw.Genre),
		VenueName:     venue,
		Address:       deref(raw.Address),
		City:          deref(raw.City),
		Zip:           deref(raw.Zip),
		Start:         parseTimestamp(deref(raw.Start)),
		End:           parseTimestamp(deref(raw.End)),
		Popularity:    DefaultPopularity,
		Source:        raw.Source,
		URL:           raw.URL,
		TimeDefaulted: raw.TimeDefaulted,
	}
	if raw.Popularity != nil {
		r.Popularity = int(*raw.Popularity)
	}
	if r.Category == "" {
		r.Category = DefaultCategory
	}
	if r.End.IsZero() && !r.Start.IsZero() {
		r.End = r.Start.Add(defaultDuration)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
