package datetime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultDuration is assumed for events listed without an end time.
	DefaultDuration = 2 * time.Hour

	// DefaultStartHour is used by PolicyDefault when no time is listed.
	DefaultStartHour = 19
)

// ErrNoTime is returned when text contains no recognizable time.
var ErrNoTime = errors.New("no time found")

// TimePolicy decides what happens to a listing without a time.
type TimePolicy string

const (
	// PolicyReject drops listings without a time.
	PolicyReject TimePolicy = "reject"
	// PolicyDefault starts such listings at DefaultStartHour and flags them as defaulted.
	PolicyDefault TimePolicy = "default"
)

// ParsePolicy converts a configuration value into a TimePolicy.
func ParsePolicy(s string) (TimePolicy, error) {
	switch TimePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyReject, "":
		return PolicyReject, nil
	case PolicyDefault:
		return PolicyDefault, nil
	default:
		return "", fmt.Errorf("unknown missing-time policy %q (want reject or default)", s)
	}
}

// Clock is hour and minute on a 24-hour clock.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// TimeRange is a parsed start time with an optional end time.
type TimeRange struct {
	Start  Clock
	End    Clock
	HasEnd bool
}

const meridiem = `(a\.m\.|p\.m\.|am\b|pm\b|a\.m\b|p\.m\b)`

var (
	// "5-8 pm", "8 pm-12 am", "7:30 to 10pm"
	rangePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*` + meridiem + `?\s*(?:-|to|until|till)\s*(\d{1,2})(?::(\d{2}))?\s*` + meridiem)
	// "8pm-11"
	openRangePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*` + meridiem + `\s*(?:-|to|until|till)\s*(\d{1,2})(?::(\d{2}))?\b`)
	// "7 pm", "7:30pm"
	singlePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*` + meridiem)

	noonPattern     = regexp.MustCompile(`(?i)\bnoon\b`)
	midnightPattern = regexp.MustCompile(`(?i)\bmidnight\b`)

	// "2025-08-05T19:00:00-07:00", "2025-08-05 19:00"
	isoClockPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ](\d{2}):(\d{2})`)
)

// ISOClock returns the 24-hour clock of an ISO-8601 timestamp, when text holds one.
func ISOClock(text string) (Clock, bool) {
	m := isoClockPattern.FindStringSubmatch(text)
	if m == nil {
		return Clock{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return Clock{}, false
	}
	return Clock{Hour: hour, Minute: minute}, true
}

// ParseTimeRange parses the first time or time range in text.
func ParseTimeRange(text string) (TimeRange, error) {
	tr, _, err := FindTime(text)
	return tr, err
}

// FindTime parses the first time or time range in text and returns its byte span.
//
// A range with a single meridiem marker applies it to both bounds; explicit markers
// on both bounds are used as given. "noon" and "midnight" read as 12 pm and 12 am.
func FindTime(text string) (TimeRange, [2]int, error) {
	src := midnightPattern.ReplaceAllStringFunc(noonPattern.ReplaceAllStringFunc(text, padTo("12pm")), padTo("12am"))

	type candidate struct {
		loc   []int
		match []string
		kind  int
	}
	var best *candidate
	for kind, re := range []*regexp.Regexp{rangePattern, openRangePattern, singlePattern} {
		loc := re.FindStringSubmatchIndex(src)
		if loc == nil {
			continue
		}
		if best == nil || loc[0] < best.loc[0] {
			best = &candidate{loc: loc, match: submatches(src, loc), kind: kind}
		}
	}
	if best == nil {
		return TimeRange{}, [2]int{}, ErrNoTime
	}

	var tr TimeRange
	var err error
	switch best.kind {
	case 0:
		tr, err = buildRange(best.match[1], best.match[2], best.match[3], best.match[4], best.match[5], best.match[6])
	case 1:
		tr, err = buildRange(best.match[1], best.match[2], best.match[3], best.match[4], best.match[5], "")
	default:
		var start Clock
		start, err = toClock(best.match[1], best.match[2], best.match[3])
		tr = TimeRange{Start: start}
	}
	if err != nil {
		return TimeRange{}, [2]int{}, err
	}
	return tr, [2]int{best.loc[0], best.loc[1]}, nil
}

func buildRange(h1, m1, mer1, h2, m2, mer2 string) (TimeRange, error) {
	// Meridiem inheritance: a single marker applies to both bounds.
	if mer1 == "" {
		mer1 = mer2
	}
	if mer2 == "" {
		mer2 = mer1
	}
	start, err := toClock(h1, m1, mer1)
	if err != nil {
		return TimeRange{}, err
	}
	end, err := toClock(h2, m2, mer2)
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRange{Start: start, End: end, HasEnd: true}, nil
}

func toClock(hourText, minuteText, mer string) (Clock, error) {
	hour, err := strconv.Atoi(hourText)
	if err != nil || hour < 1 || hour > 12 {
		return Clock{}, ErrNoTime
	}
	minute := 0
	if minuteText != "" {
		minute, err = strconv.Atoi(minuteText)
		if err != nil || minute > 59 {
			return Clock{}, ErrNoTime
		}
	}
	switch strings.ToLower(strings.TrimSpace(mer) + " ")[0] {
	case 'a':
		if hour == 12 {
			hour = 0
		}
	case 'p':
		if hour < 12 {
			hour += 12
		}
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// Zone returns the fixed offset used for the region in the given month:
// -07:00 for March through November, -08:00 otherwise.
func Zone(month time.Month) *time.Location {
	if month >= time.March && month <= time.November {
		return pdt
	}
	return pst
}

var (
	pdt = time.FixedZone("PDT", -7*60*60)
	pst = time.FixedZone("PST", -8*60*60)
)

// InZone converts t to the regional offset for its month.
func InZone(t time.Time) time.Time {
	return t.In(Zone(t.In(pdt).Month()))
}

// Compose combines a calendar date with a time range into start and end instants.
//
// An end at or before the start is moved to the next day. Without an end, the event
// lasts DefaultDuration.
func Compose(date time.Time, tr TimeRange) (start, end time.Time) {
	loc := Zone(date.Month())
	y, m, d := date.Date()
	start = time.Date(y, m, d, tr.Start.Hour, tr.Start.Minute, 0, 0, loc)
	if !tr.HasEnd {
		return start, start.Add(DefaultDuration)
	}
	end = time.Date(y, m, d, tr.End.Hour, tr.End.Minute, 0, 0, loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// ComposeDefault places an untimed listing at DefaultStartHour for DefaultDuration.
func ComposeDefault(date time.Time) (start, end time.Time) {
	return Compose(date, TimeRange{Start: Clock{Hour: DefaultStartHour}})
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

// padTo returns a replacement func that keeps the replaced text at its original
// width, so byte offsets reported by FindTime still index the caller's text.
func padTo(repl string) func(string) string {
	return func(match string) string {
		if len(match) < len(repl) {
			return repl
		}
		return repl + strings.Repeat(" ", len(match)-len(repl))
	}
}
