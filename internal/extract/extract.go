package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pfrederiksen/svb-events/internal/datetime"
	"github.com/pfrederiksen/svb-events/internal/event"
	"github.com/pfrederiksen/svb-events/internal/logger"
	"github.com/pfrederiksen/svb-events/internal/normalize"
	"github.com/pfrederiksen/svb-events/internal/segment"
	"github.com/pfrederiksen/svb-events/internal/trace"
	"github.com/pfrederiksen/svb-events/internal/venue"
)

// Rejection reasons.
var (
	ErrNoVenue = errors.New("no usable venue")
	ErrNoTitle = errors.New("no usable title")
	ErrNoDate  = errors.New("no resolvable date")
	ErrNoTime  = errors.New("no time and missing-time policy is reject")
)

// Extractor converts RawUnits into records. The zero value rejects untimed units,
// uses no venue directory and takes today from the clock.
type Extractor struct {
	Directory *venue.Directory
	Policy    datetime.TimePolicy
	Today     time.Time // Reference date for year inference; time.Now when zero
	GraceDays *int      // Grace window for year inference; DefaultGraceDays when nil
	Prefix    string    // ID prefix; event.DefaultIDPrefix when empty
	Source    string    // Stamped on every record
	URL       string    // Stamped on every record
	Trace     trace.Sink
}

// Stats summarizes an ExtractAll pass.
type Stats struct {
	Units     int            `json:"units"`
	Extracted int            `json:"extracted"`
	Defaulted int            `json:"defaulted"`
	Rejected  map[string]int `json:"rejected"` // Count per rejection reason
}

// Rejection is one unit the extractor refused, for tracing.
type Rejection struct {
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// parenClause matches a parenthesized genre such as "(Jazz)".
var parenClause = regexp.MustCompile(`\(([^()]*)\)`)

// Extract builds one record from a unit, or returns the reason it was rejected.
func (x *Extractor) Extract(u segment.RawUnit) (event.Record, error) {
	text := normalize.Clean(normalize.StripBullet(u.Text))

	dateText := firstNonEmpty(u.Date, u.Header)
	body := text
	// Units under a day header carry no date of their own. Elsewhere the date token
	// is cut so "Aug 5 - 7 pm" does not read as a 5-7 pm range.
	if u.Header == "" {
		if tok := datetime.FindDate(text); tok != "" {
			if dateText == "" {
				dateText = tok
			}
			body = normalize.Clean(strings.Replace(text, tok, " ", 1))
		}
	}

	venueName, title, tr, timed := x.fields(u, body)

	venueName = normalize.Clean(venueName)
	if venueName == "" || normalize.IsBoilerplate(venueName) || normalize.IsRegionHeader(venueName) {
		return event.Record{}, ErrNoVenue
	}

	title, genre := splitGenre(title)
	if title == "" || normalize.IsBoilerplate(title) {
		return event.Record{}, ErrNoTitle
	}

	date, err := datetime.ResolveDate(dateText, x.today(), x.graceDays())
	if err != nil {
		return event.Record{}, ErrNoDate
	}
	if u.Header != "" && datetime.WeekdayMismatch(u.Header, date) {
		logger.Warn("Day header weekday does not match its date", logger.Fields{
			"header": u.Header,
			"date":   date.Format("2006-01-02"),
		})
	}

	var start, end time.Time
	defaulted := false
	switch {
	case timed:
		start, end = datetime.Compose(date, tr)
	case x.Policy == datetime.PolicyDefault:
		start, end = datetime.ComposeDefault(date)
		defaulted = true
	default:
		return event.Record{}, ErrNoTime
	}

	info := x.Directory.LookupHint(venueName, u.Region)
	if info.Matched {
		venueName = info.Name
	} else if addr := firstNonEmpty(normalize.FindAddress(u.Address), normalize.FindAddress(text)); addr != "" {
		info.Address = addr
		info.City = normalize.ParseCity(addr)
		info.Zip = normalize.ParseZip(addr)
	}

	category, genre := Classify(venueName, title, genre)

	r := event.Record{
		ID:            event.NewID(x.Prefix, date, venueName, title),
		Title:         title,
		Category:      category,
		Genre:         genre,
		VenueName:     venueName,
		Address:       info.Address,
		City:          info.City,
		Zip:           info.Zip,
		Start:         start,
		End:           end,
		Popularity:    event.DefaultPopularity,
		Source:        x.Source,
		URL:           x.URL,
		TimeDefaulted: defaulted,
	}
	if err := r.Validate(); err != nil {
		return event.Record{}, fmt.Errorf("invalid record: %w", err)
	}
	return r, nil
}

// fields picks venue, title and time for a unit. Markup-provided fields win; the
// rest come from splitting body on the separator and locating the time field.
func (x *Extractor) fields(u segment.RawUnit, body string) (venueName, title string, tr datetime.TimeRange, timed bool) {
	parts := segment.Fields(body)

	venueName = u.Venue
	var rest []string
	switch {
	case venueName != "":
		rest = parts
	case len(parts) > 1:
		venueName = parts[0]
		rest = parts[1:]
	}

	var err error
	if u.TimeText != "" {
		tr, err = datetime.ParseTimeRange(u.TimeText)
		timed = err == nil
	}
	if !timed {
		var found bool
		if tr, rest, found = findTimeField(rest); found {
			timed = true
		}
	}
	if !timed {
		if c, ok := datetime.ISOClock(u.Date); ok {
			tr, timed = datetime.TimeRange{Start: c}, true
		}
	}

	title = u.Title
	if title == "" {
		for _, f := range rest {
			if u.Venue != "" && strings.EqualFold(f, u.Venue) {
				continue
			}
			title = f
			break
		}
	}
	return venueName, normalize.Clean(title), tr, timed
}

var bareHour = regexp.MustCompile(`^\d{1,2}(?::\d{2})?$`)

// findTimeField scans fields one at a time and returns the time together with the
// fields that remain once it is removed. A field that is entirely time text wins
// over one that only contains a time. A bare hour right before such a field opens
// a range, as in "7 - 9 pm".
func findTimeField(fields []string) (datetime.TimeRange, []string, bool) {
	for i, f := range fields {
		tr, ok := wholeTime(f)
		if !ok {
			continue
		}
		if i > 0 && bareHour.MatchString(fields[i-1]) {
			if joined, ok := wholeTime(fields[i-1] + "-" + f); ok {
				return joined, without(fields, i-1, i+1, ""), true
			}
		}
		return tr, without(fields, i, i+1, ""), true
	}
	for i, f := range fields {
		tr, span, err := datetime.FindTime(f)
		if err != nil {
			continue
		}
		return tr, without(fields, i, i+1, leftover(f, span)), true
	}
	return datetime.TimeRange{}, fields, false
}

func wholeTime(field string) (datetime.TimeRange, bool) {
	tr, span, err := datetime.FindTime(field)
	if err != nil || leftover(field, span) != "" {
		return datetime.TimeRange{}, false
	}
	return tr, true
}

// leftover is field with the span cut out, or "" when only punctuation remains.
func leftover(field string, span [2]int) string {
	return strings.Trim(strings.ReplaceAll(normalize.Clean(field[:span[0]]+" "+field[span[1]:]), "()", ""), " -,.;:")
}

// without returns fields[:from] + repl + fields[to:] as a new slice, skipping an empty repl.
func without(fields []string, from, to int, repl string) []string {
	out := make([]string, 0, len(fields))
	out = append(out, fields[:from]...)
	if repl != "" {
		out = append(out, repl)
	}
	return append(out, fields[to:]...)
}

// splitGenre removes the first parenthesized clause from title and returns it as
// the genre.
func splitGenre(title string) (string, string) {
	m := parenClause.FindStringSubmatchIndex(title)
	if m == nil {
		return title, ""
	}
	genre := normalize.Clean(title[m[2]:m[3]])
	rest := normalize.Clean(title[:m[0]] + " " + title[m[1]:])
	return strings.Trim(rest, " -"), genre
}

// ExtractAll extracts every unit, collecting records and rejection counts.
func (x *Extractor) ExtractAll(units []segment.RawUnit) ([]event.Record, Stats) {
	sink := trace.OrNop(x.Trace)
	stats := Stats{Units: len(units), Rejected: make(map[string]int)}
	records := make([]event.Record, 0, len(units))
	var rejected []Rejection

	for _, u := range units {
		r, err := x.Extract(u)
		if err != nil {
			stats.Rejected[err.Error()]++
			rejected = append(rejected, Rejection{Text: u.Text, Reason: err.Error()})
			logger.Debug("Rejected unit", logger.Fields{
				"text":     u.Text,
				"strategy": u.Strategy,
				"reason":   err.Error(),
			})
			continue
		}
		if r.TimeDefaulted {
			stats.Defaulted++
		}
		records = append(records, r)
	}
	stats.Extracted = len(records)

	sink.Record("extract_records", records)
	sink.Record("extract_rejected", rejected)
	sink.Record("extract_stats", stats)
	return records, stats
}

func (x *Extractor) today() time.Time {
	if x.Today.IsZero() {
		return time.Now()
	}
	return x.Today
}

func (x *Extractor) graceDays() int {
	if x.GraceDays == nil {
		return datetime.DefaultGraceDays
	}
	return *x.GraceDays
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
