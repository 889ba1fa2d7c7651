package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/pfrederiksen/svb-events/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult is the run summary printed after a build
type OutputResult struct {
	RunID      string         `json:"run_id"`
	Generated  string         `json:"generated"`
	Output     string         `json:"output"`
	EventCount int            `json:"event_count"`
	NewEvents  []event.Record `json:"new_events"`
	Sources    map[string]int `json:"sources"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the summary as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs the summary as human-readable text
func writeText(w io.Writer, result *OutputResult) error {
	fmt.Fprintf(w, "Wrote %d events to %s (generated %s)\n", result.EventCount, result.Output, result.Generated)

	sources := make([]string, 0, len(result.Sources))
	for s := range result.Sources {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	for _, s := range sources {
		fmt.Fprintf(w, "  %s: %d\n", s, result.Sources[s])
	}

	if len(result.NewEvents) == 0 {
		fmt.Fprintln(w, "No new events since the previous run.")
		return nil
	}
	fmt.Fprintf(w, "\n%d new:\n", len(result.NewEvents))
	for _, r := range result.NewEvents {
		fmt.Fprintf(w, "  NEW: %s  %s @ %s\n", startLabel(r), r.Title, r.VenueName)
	}
	return nil
}

// previewColumns are the columns of the debug preview table.
var previewColumns = []string{"Start", "Venue", "Title", "Genre", "City"}

const maxCellWidth = 40

// WritePreview prints records as an aligned table. Widths are measured in
// terminal cells so venue names with wide or combining characters line up.
func WritePreview(w io.Writer, records []event.Record) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, previewColumns)
	for _, r := range records {
		rows = append(rows, []string{
			startLabel(r),
			runewidth.Truncate(r.VenueName, maxCellWidth, "…"),
			runewidth.Truncate(r.Title, maxCellWidth, "…"),
			r.Genre,
			r.City,
		})
	}

	widths := make([]int, len(previewColumns))
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	for n, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == len(row)-1 {
				sb.WriteString(cell)
				continue
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " ")); err != nil {
			return err
		}
		if n == 0 {
			sep := make([]string, len(widths))
			for i, cw := range widths {
				sep[i] = strings.Repeat("-", cw)
			}
			if _, err := fmt.Fprintln(w, strings.Join(sep, "  ")); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "(%d events)\n", len(records))
	return err
}

func startLabel(r event.Record) string {
	if r.Start.IsZero() {
		return "?"
	}
	label := r.Start.Format("Mon Jan 2 15:04")
	if r.TimeDefaulted {
		label += "*"
	}
	return label
}
