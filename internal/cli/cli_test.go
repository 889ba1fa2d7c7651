package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/pfrederiksen/svb-events/internal/config"
	"github.com/pfrederiksen/svb-events/internal/event"
	"github.com/pfrederiksen/svb-events/internal/pipeline"
)

const listingText = "TUESDAY – August 5\n* Soho - Jane Doe (Jazz) - 7-9 pm\n* SANTA BARBARA\n* "

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.APIKeyEnv, "")
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"empty", pipeline.ErrNoEvents, ExitEmpty},
		{"wrapped empty", fmt.Errorf("run: %w", pipeline.ErrNoEvents), ExitEmpty},
		{"other error", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRootCmd_Build(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "listing.txt", listingText)
	output := filepath.Join(dir, "events.json")
	ics := filepath.Join(dir, "events.ics")

	stdout, err := execute(t, "--input", input, "--output", output, "--ics", ics, "--format", "json")
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	var result OutputResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("summary is not JSON: %v\n%s", err, stdout)
	}
	if result.EventCount != 1 {
		t.Errorf("EventCount = %d, want 1", result.EventCount)
	}
	if result.Sources["livenotessb"] != 1 {
		t.Errorf("Sources = %v, want livenotessb: 1", result.Sources)
	}
	if len(result.NewEvents) != 1 || !strings.HasSuffix(result.NewEvents[0].ID, "-soho-jane-doe") {
		t.Errorf("NewEvents = %+v", result.NewEvents)
	}

	for _, p := range []string{output, ics} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s not written: %v", p, err)
		}
	}

	// A second run finds nothing new.
	stdout, err = execute(t, "--input", input, "--output", output)
	if err != nil {
		t.Fatalf("second Execute() unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "No new events since the previous run.") {
		t.Errorf("second run summary = %q", stdout)
	}
}

func TestRootCmd_EmptyRun(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	dir := t.TempDir()
	input := writeFile(t, dir, "listing.html", "<html><body><p>Welcome</p></body></html>")
	cfgPath := writeFile(t, dir, "config.yaml", fmt.Sprintf(`
source:
  url: %s
fetch:
  max_attempts: 1
ticketmaster:
  enabled: false
`, server.URL))
	output := filepath.Join(dir, "events.json")

	_, err := execute(t, "--config", cfgPath, "--input", input, "--output", output)
	if got := ExitCode(err); got != ExitEmpty {
		t.Fatalf("ExitCode = %d (err %v), want %d", got, err, ExitEmpty)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("output written on an empty run")
	}

	_, err = execute(t, "--config", cfgPath, "--input", input, "--output", output, "--allow-empty")
	if err != nil {
		t.Fatalf("Execute() with --allow-empty unexpected error: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output not written with --allow-empty: %v", err)
	}
}

func TestRootCmd_InvalidFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"bad missing-time", []string{"--missing-time", "guess"}, config.ErrInvalidMissingTime},
		{"bad format", []string{"--format", "xml"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("Execute() expected error, got nil")
			}
			if ExitCode(err) != ExitError {
				t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitError)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_FlagsAndFallback(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "source: [unclosed\n")

	cmd := NewRootCmd()
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ParseFlags([]string{
		"--config", cfgPath,
		"--output", "feed.json",
		"--no-previous",
		"--missing-time", "default",
		"--city", "Santa Barbara", "--city", "Goleta",
		"--genre", "jazz",
		"--venue", "SOhO",
		"--from", "2025-08-01",
		"--to", "2025-08-31",
		"--debug",
	})
	if err != nil {
		t.Fatalf("ParseFlags() unexpected error: %v", err)
	}

	cfg, format, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig() unexpected error: %v", err)
	}
	if format != FormatText {
		t.Errorf("format = %q, want text", format)
	}

	checks := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"output", cfg.Output.Path, "feed.json"},
		{"merge previous", cfg.Output.MergePrevious, false},
		{"missing time", cfg.Extraction.MissingTime, "default"},
		{"cities", strings.Join(cfg.Filter.Cities, "|"), "Santa Barbara|Goleta"},
		{"genres", strings.Join(cfg.Filter.Genres, "|"), "jazz"},
		{"venues", strings.Join(cfg.Filter.Venues, "|"), "SOhO"},
		{"from", cfg.Filter.From, "2025-08-01"},
		{"to", cfg.Filter.To, "2025-08-31"},
		{"log level", cfg.Logging.Level, "debug"},
		{"fallback url", cfg.Source.URL, config.DefaultURL},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if c.got != c.want {
				t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
			}
		})
	}
}

func TestScheduleCmd_InvalidCron(t *testing.T) {
	_, err := execute(t, "schedule", "--cron", "every tuesday")
	if err == nil || !strings.Contains(err.Error(), "invalid cron spec") {
		t.Errorf("Execute() error = %v, want invalid cron spec", err)
	}
}

func TestWriteOutput_Text(t *testing.T) {
	pdt := time.FixedZone("PDT", -7*60*60)
	result := &OutputResult{
		Generated:  "2025-08-01T19:00:00Z",
		Output:     "events.json",
		EventCount: 2,
		Sources:    map[string]int{"ticketmaster": 1, "livenotessb": 1},
		NewEvents: []event.Record{
			{ID: "a", Title: "Jane Doe", VenueName: "Soho", Start: time.Date(2025, time.August, 5, 19, 0, 0, 0, pdt)},
		},
	}

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatText); err != nil {
		t.Fatalf("WriteOutput() unexpected error: %v", err)
	}
	got := buf.String()
	for _, want := range []string{
		"Wrote 2 events to events.json",
		"  livenotessb: 1\n  ticketmaster: 1",
		"NEW: Tue Aug 5 19:00  Jane Doe @ Soho",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	if err := WriteOutput(&buf, result, "xml"); err == nil {
		t.Error("WriteOutput() expected error for unknown format")
	}
}

func TestWritePreview_AlignsWideText(t *testing.T) {
	pdt := time.FixedZone("PDT", -7*60*60)
	records := []event.Record{
		{ID: "a", Title: "Jane Doe", VenueName: "Soho", Genre: "Jazz", City: "Santa Barbara", Start: time.Date(2025, time.August, 5, 19, 0, 0, 0, pdt)},
		{ID: "b", Title: "東京 Trio", VenueName: "Café Luna", Genre: "Jazz", City: "Goleta", Start: time.Date(2025, time.August, 6, 20, 0, 0, 0, pdt), TimeDefaulted: true},
	}

	var buf bytes.Buffer
	if err := WritePreview(&buf, records); err != nil {
		t.Fatalf("WritePreview() unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), buf.String())
	}

	column := func(line, cell string) int {
		idx := strings.Index(line, cell)
		if idx < 0 {
			t.Fatalf("cell %q not found in %q", cell, line)
		}
		return runewidth.StringWidth(line[:idx])
	}
	want := column(lines[0], "Genre")
	for i, title := range []string{"Jane Doe", "東京 Trio"} {
		row := lines[i+2]
		if got := column(row, "Jazz"); got != want {
			t.Errorf("row %q: genre column at %d, want %d", title, got, want)
		}
	}
	if !strings.Contains(lines[3], "20:00*") {
		t.Errorf("defaulted start not marked: %q", lines[3])
	}
	if lines[4] != "(2 events)" {
		t.Errorf("footer = %q", lines[4])
	}
}

func TestSortRecords(t *testing.T) {
	pdt := time.FixedZone("PDT", -7*60*60)
	day := func(d int) time.Time { return time.Date(2025, time.August, d, 19, 0, 0, 0, pdt) }
	base := []event.Record{
		{ID: "c", Title: "bravo", VenueName: "Soho", Start: day(7)},
		{ID: "a", Title: "Alpha", VenueName: "Lobero", Start: day(9)},
		{ID: "z", Title: "Undated", VenueName: "Arlington"},
		{ID: "b", Title: "charlie", VenueName: "soho", Start: day(5)},
	}

	tests := []struct {
		order SortOrder
		want  string
	}{
		{SortByDate, "b,c,a,z"},
		{SortByVenue, "z,a,b,c"},
		{SortByTitle, "a,c,b,z"},
		{"unknown", "b,c,a,z"},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			records := append([]event.Record(nil), base...)
			sortRecords(records, tt.order)
			ids := make([]string, len(records))
			for i, r := range records {
				ids[i] = r.ID
			}
			if got := strings.Join(ids, ","); got != tt.want {
				t.Errorf("sortRecords(%s) = %s, want %s", tt.order, got, tt.want)
			}
		})
	}
}
