package segment

import (
	"regexp"
	"strings"

	"github.com/pfrederiksen/svb-events/internal/normalize"
	"github.com/pfrederiksen/svb-events/internal/trace"
)

// DefaultMinLength is the shortest unit text handed to the extractor.
const DefaultMinLength = 6

// Strategy names, in cascade order.
const (
	StrategySelector  = "selector"
	StrategyHeader    = "header"
	StrategyDelimiter = "delimiter"
	StrategyHeuristic = "heuristic"
)

// RawUnit is a block of text believed to describe one event, with the context
// needed to extract it on its own.
type RawUnit struct {
	Text     string `json:"text"`
	Header   string `json:"header,omitempty"`    // Day header in effect, e.g. "TUESDAY - August 5"
	Region   string `json:"region,omitempty"`    // Region section the unit was listed under
	Venue    string `json:"venue,omitempty"`     // Venue read from markup, if any
	Title    string `json:"title,omitempty"`     // Title read from markup, if any
	TimeText string `json:"time_text,omitempty"` // Time read from markup, if any
	Date     string `json:"date,omitempty"`      // Date read from markup, if any
	Address  string `json:"address,omitempty"`   // Address read from markup, if any
	Strategy string `json:"strategy"`
}

// Options tunes Segment.
type Options struct {
	MinLength int        // Minimum cleaned unit length; DefaultMinLength when zero
	Trace     trace.Sink // Receives each strategy's output; may be nil
}

type strategy struct {
	name string
	run  func(*Page) []RawUnit
}

var cascade = []strategy{
	{StrategySelector, selectorUnits},
	{StrategyHeader, headerUnits},
	{StrategyDelimiter, delimiterUnits},
	{StrategyHeuristic, heuristicUnits},
}

// Segment runs the strategy cascade over page and returns the units of the first
// strategy that yields at least one unit after filtering.
func Segment(page *Page, opts Options) []RawUnit {
	if page == nil {
		return nil
	}
	sink := trace.OrNop(opts.Trace)
	minLen := opts.MinLength
	if minLen <= 0 {
		minLen = DefaultMinLength
	}

	sink.Record("segment_lines", page.Lines())
	for _, s := range cascade {
		units := filter(s.run(page), minLen)
		for i := range units {
			units[i].Strategy = s.name
		}
		sink.Record("segment_"+s.name, units)
		if len(units) > 0 {
			return units
		}
	}
	return nil
}

// filter cleans unit text and drops units that cannot be events.
func filter(units []RawUnit, minLen int) []RawUnit {
	out := make([]RawUnit, 0, len(units))
	for _, u := range units {
		u.Text = normalize.Clean(normalize.StripBullet(u.Text))
		if Discard(u.Text, minLen) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Discard reports whether cleaned unit text is too short to be an event or is a
// navigation phrase or region header.
func Discard(text string, minLen int) bool {
	if len(text) < minLen {
		return true
	}
	if normalize.IsBoilerplate(text) || normalize.IsRegionHeader(text) {
		return true
	}
	_, region := normalize.RegionLine(text)
	return region
}

// separator matches the canonical field separator: a hyphen with whitespace on at
// least one side, so "7-9" and "Jay-Z" stay intact.
var separator = regexp.MustCompile(`\s+-\s*|\s*-\s+`)

// Fields splits cleaned text on the canonical separator and drops empty fields.
func Fields(text string) []string {
	parts := separator.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func countSeparators(text string) int {
	return len(separator.FindAllStringIndex(strings.TrimSpace(text), -1))
}
