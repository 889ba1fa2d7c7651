package event

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

var pdt = time.FixedZone("PDT", -7*60*60)

func TestNewID(t *testing.T) {
	date := time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC)

	t.Run("deterministic", func(t *testing.T) {
		id1 := NewID("lnsb", date, "Soho", "Jane Doe")
		id2 := NewID("lnsb", date, "Soho", "Jane Doe")
		if id1 != id2 {
			t.Errorf("NewID should be deterministic, got %s vs %s", id1, id2)
		}
		if id1 != "lnsb-20250805-soho-jane-doe" {
			t.Errorf("NewID() = %s, want lnsb-20250805-soho-jane-doe", id1)
		}
	})

	t.Run("default prefix", func(t *testing.T) {
		if got := NewID("", date, "Soho", "Jane Doe"); !strings.HasPrefix(got, DefaultIDPrefix+"-") {
			t.Errorf("NewID() = %s, want %s prefix", got, DefaultIDPrefix)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		base := NewID("lnsb", date, "Soho", "Jane Doe")
		others := []string{
			NewID("lnsb", date, "Lobero Theatre", "Jane Doe"),
			NewID("lnsb", date, "Soho", "John Doe"),
			NewID("lnsb", date.AddDate(0, 0, 1), "Soho", "Jane Doe"),
		}
		for _, other := range others {
			if other == base {
				t.Errorf("NewID collision: %s", other)
			}
		}
	})

	t.Run("long venues sharing a prefix", func(t *testing.T) {
		a := strings.Repeat("A", 33)
		id1 := NewID("lnsb", date, a+"1", "Jane Doe")
		id2 := NewID("lnsb", date, a+"2", "Jane Doe")
		if id1 == id2 {
			t.Errorf("truncated venues collided: %s", id1)
		}
	})

	t.Run("empty names still produce segments", func(t *testing.T) {
		id := NewID("lnsb", date, "", "!!!")
		if strings.Contains(id, "--") || strings.HasSuffix(id, "-") {
			t.Errorf("NewID() = %s has an empty segment", id)
		}
	})
}

func TestValidate(t *testing.T) {
	start := time.Date(2025, time.August, 5, 19, 0, 0, 0, pdt)
	valid := Record{ID: "a", Title: "Jane Doe", Start: start, End: start.Add(2 * time.Hour)}

	tests := []struct {
		name    string
		modify  func(r *Record)
		wantErr error
	}{
		{"valid", func(r *Record) {}, nil},
		{"no id", func(r *Record) { r.ID = "" }, ErrMissingID},
		{"blank title", func(r *Record) { r.Title = "  " }, ErrMissingTitle},
		{"no start", func(r *Record) { r.Start = time.Time{} }, ErrMissingStart},
		{"end before start", func(r *Record) { r.End = start.Add(-time.Hour) }, ErrEndBeforeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.modify(&r)
			if err := r.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordJSON(t *testing.T) {
	start := time.Date(2025, time.August, 5, 19, 0, 0, 0, pdt)
	r := Record{
		ID:         "lnsb-20250805-soho-jane-doe",
		Title:      "Jane Doe",
		Category:   "Music",
		Genre:      "Jazz",
		VenueName:  "Soho",
		Address:    "1221 State St, Santa Barbara, CA 93101",
		City:       "Santa Barbara",
		Zip:        "93101",
		Start:      start,
		End:        start.Add(2 * time.Hour),
		Popularity: DefaultPopularity,
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	for _, want := range []string{`"venue_name":"Soho"`, `"start":"2025-08-05T19:00:00-07:00"`, `"end":"2025-08-05T21:00:00-07:00"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Marshal() = %s, missing %s", data, want)
		}
	}
	if strings.Contains(string(data), "time_defaulted") {
		t.Errorf("Marshal() = %s, want time_defaulted omitted", data)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back.ID != r.ID || !back.Start.Equal(r.Start) || !back.End.Equal(r.End) || back.VenueName != "Soho" {
		t.Errorf("Unmarshal() = %+v, want %+v", back, r)
	}
}

func TestRecordJSON_UnknownFieldsAreNull(t *testing.T) {
	start := time.Date(2025, time.August, 5, 19, 0, 0, 0, pdt)
	r := Record{
		ID:         "lnsb-20250805-the-backyard-jane-doe",
		Title:      "Jane Doe",
		Category:   "Music",
		City:       "Santa Barbara",
		Start:      start,
		Popularity: DefaultPopularity,
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	for _, want := range []string{`"genre":null`, `"venue_name":null`, `"address":null`, `"zip":null`, `"end":null`, `"city":"Santa Barbara"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Marshal() = %s, missing %s", data, want)
		}
	}
	if i, j := strings.Index(string(data), `"id"`), strings.Index(string(data), `"popularity"`); i < 0 || j < i {
		t.Errorf("Marshal() = %s, want id before popularity", data)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back.Address != "" || back.Genre != "" || !back.End.IsZero() || !back.Start.Equal(start) {
		t.Errorf("Unmarshal() = %+v", back)
	}
}

func TestRecordUnmarshal_Legacy(t *testing.T) {
	input := `{
		"id": "lnsb-001",
		"title": "Jane Doe",
		"category": null,
		"genre": null,
		"venue": "Soho",
		"zip": null,
		"city": "Santa Barbara",
		"start": "2025-07-20T19:00:00-07:00",
		"popularity": 0.75
	}`

	var r Record
	if err := json.Unmarshal([]byte(input), &r); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if r.VenueName != "Soho" {
		t.Errorf("VenueName = %q, want Soho from legacy venue key", r.VenueName)
	}
	if r.Category != DefaultCategory {
		t.Errorf("Category = %q, want %q", r.Category, DefaultCategory)
	}
	if r.Genre != "" || r.Zip != "" {
		t.Errorf("null strings decoded as %q %q, want empty", r.Genre, r.Zip)
	}
	if got := r.End.Sub(r.Start); got != 2*time.Hour {
		t.Errorf("missing end defaulted to start+%s, want 2h", got)
	}
	if r.Popularity != 0 {
		t.Errorf("Popularity = %d, want 0", r.Popularity)
	}
}

func TestRecordUnmarshal_BadStart(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"id":"x","title":"T","start":"soon"}`), &r); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !r.Start.IsZero() {
		t.Errorf("Start = %s, want zero time for unparseable input", r.Start)
	}
	if r.Popularity != DefaultPopularity {
		t.Errorf("Popularity = %d, want %d", r.Popularity, DefaultPopularity)
	}
}
