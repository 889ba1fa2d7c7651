package datetime

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultGraceDays is how far before today a yearless date may resolve.
	DefaultGraceDays = 2

	// MaxLookaheadDays bounds how far after the grace floor a yearless date may resolve.
	MaxLookaheadDays = 370
)

// ErrNoDate is returned when text contains no recognizable date.
var ErrNoDate = errors.New("no date found")

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

const monthAlt = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var (
	// "TUESDAY - August 5", "Friday, Aug. 8th, 2025"
	headerPattern = regexp.MustCompile(`(?i)^\s*(mon|tues?|wed(?:nes)?|thu(?:rs)?|fri|sat(?:ur)?|sun)(?:day)?\.?\s*[-,:]?\s*(` + monthAlt + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:\s*,?\s*(\d{4}))?\s*$`)

	monthDayPattern = regexp.MustCompile(`(?i)\b(` + monthAlt + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:\s*,?\s*(\d{4})\b)?`)
	isoPattern      = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})`)
	slashPattern    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2}|\d{4}))?\b`)
)

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// IsDateHeader reports whether a cleaned line is a day header like "TUESDAY - August 5".
func IsDateHeader(line string) bool {
	return headerPattern.MatchString(line)
}

// FindDate returns the first date token in text, or "" when there is none.
func FindDate(text string) string {
	best := ""
	bestAt := -1
	for _, re := range []*regexp.Regexp{isoPattern, monthDayPattern, slashPattern} {
		if loc := re.FindStringIndex(text); loc != nil && (bestAt < 0 || loc[0] < bestAt) {
			best, bestAt = text[loc[0]:loc[1]], loc[0]
		}
	}
	return best
}

// ResolveDate converts a day header or date token into a calendar date at midnight UTC.
//
// Explicit years are used as given. Without a year the month and day map to the first
// matching date on or after today minus graceDays, trying this year and then next year,
// and never further than MaxLookaheadDays past that floor. The weekday word of a header
// is ignored; see WeekdayMismatch.
func ResolveDate(text string, today time.Time, graceDays int) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, ErrNoDate
	}

	if m := isoPattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return exactDate(year, time.Month(month), day)
	}

	if m := headerPattern.FindStringSubmatch(text); m != nil {
		return monthDay(m[2], m[3], m[4], today, graceDays)
	}

	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		return monthDay(m[1], m[2], m[3], today, graceDays)
	}

	if m := slashPattern.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if m[3] != "" {
			year, _ := strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
			return exactDate(year, time.Month(month), day)
		}
		return inferYear(time.Month(month), day, today, graceDays)
	}

	return time.Time{}, ErrNoDate
}

// WeekdayMismatch reports whether a header names a weekday other than the one date
// falls on. Headers without a weekday never mismatch.
func WeekdayMismatch(header string, date time.Time) bool {
	m := headerPattern.FindStringSubmatch(header)
	if m == nil {
		return false
	}
	want, ok := weekdays[strings.ToLower(m[1])[:3]]
	return ok && want != date.Weekday()
}

func monthDay(monthText, dayText, yearText string, today time.Time, graceDays int) (time.Time, error) {
	month, ok := months[strings.ToLower(monthText)[:3]]
	if !ok {
		return time.Time{}, ErrNoDate
	}
	day, err := strconv.Atoi(dayText)
	if err != nil {
		return time.Time{}, ErrNoDate
	}
	if yearText != "" {
		year, _ := strconv.Atoi(yearText)
		return exactDate(year, month, day)
	}
	return inferYear(month, day, today, graceDays)
}

func exactDate(year int, month time.Month, day int) (time.Time, error) {
	d, ok := validDate(year, month, day)
	if !ok {
		return time.Time{}, ErrNoDate
	}
	return d, nil
}

func inferYear(month time.Month, day int, today time.Time, graceDays int) (time.Time, error) {
	if graceDays < 0 {
		graceDays = 0
	}
	floor := DateOf(today).AddDate(0, 0, -graceDays)
	limit := floor.AddDate(0, 0, MaxLookaheadDays)

	for year := floor.Year(); year <= floor.Year()+1; year++ {
		candidate, ok := validDate(year, month, day)
		if !ok {
			continue
		}
		if candidate.Before(floor) {
			continue
		}
		if candidate.After(limit) {
			break
		}
		return candidate, nil
	}
	return time.Time{}, ErrNoDate
}

func validDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes Feb 30 into March.
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// DateOf returns t's calendar date, as seen in t's own location, at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
