package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/svb-events/internal/config"
	"github.com/pfrederiksen/svb-events/internal/event"
	"github.com/pfrederiksen/svb-events/internal/filter"
	"github.com/pfrederiksen/svb-events/internal/metrics"
	"github.com/pfrederiksen/svb-events/internal/mirror"
	"github.com/pfrederiksen/svb-events/internal/scraper"
	"github.com/pfrederiksen/svb-events/internal/source"
	"github.com/pfrederiksen/svb-events/internal/storage"
)

var (
	pdt   = time.FixedZone("PDT", -7*60*60)
	clock = time.Date(2025, time.August, 1, 12, 0, 0, 0, pdt)
)

const listingText = "TUESDAY – August 5\n* Soho - Jane Doe (Jazz) - 7-9 pm\n* SANTA BARBARA\n* "

type fakeAdapter struct {
	name    string
	records []event.Record
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) FetchEvents(context.Context) []event.Record { return f.records }

func adapters(batches ...[]event.Record) []source.Adapter {
	out := make([]source.Adapter, len(batches))
	for i, b := range batches {
		out[i] = &fakeAdapter{name: "fake" + string(rune('a'+i)), records: b}
	}
	return out
}

func rec(id, city string, day int) event.Record {
	return event.Record{
		ID:    id,
		Title: "Show " + id,
		City:  city,
		Start: time.Date(2025, time.August, day, 19, 0, 0, 0, pdt),
		End:   time.Date(2025, time.August, day, 21, 0, 0, 0, pdt),
	}
}

func newStore(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New(filepath.Join(t.TempDir(), "events.json"))
	if err != nil {
		t.Fatalf("storage.New() unexpected error: %v", err)
	}
	return s
}

func fixedNow() time.Time { return clock }

func ids(records []event.Record) string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return strings.Join(out, ",")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) unexpected error: %v", path, err)
	}
	return string(data)
}

func TestRun_MergesPreviousAndSources(t *testing.T) {
	store := newStore(t)
	stale := rec("gone", "Santa Barbara", 1)
	stale.Start = clock.Add(-48 * time.Hour)
	stale.End = stale.Start.Add(time.Hour)
	if _, err := store.Save([]event.Record{rec("old", "Santa Barbara", 3), stale}, clock); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	updated := rec("old", "Santa Barbara", 3)
	updated.Title = "Updated"

	dir := t.TempDir()
	res, err := Run(context.Background(), Options{
		Adapters: adapters(
			[]event.Record{rec("a", "Santa Barbara", 5)},
			[]event.Record{updated, rec("b", "Goleta", 4)},
		),
		Store:         store,
		MergePrevious: true,
		Mirrors:       []mirror.Publisher{mirror.NewFile(filepath.Join(dir, "mirror.json"))},
		ICSPath:       filepath.Join(dir, "events.ics"),
		MetricsPath:   filepath.Join(dir, "run.prom"),
		Metrics:       metrics.New(),
		Now:           fixedNow,
	})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if got := ids(res.Records); got != "old,b,a" {
		t.Errorf("records = %s, want old,b,a", got)
	}
	if res.Records[0].Title != "Updated" {
		t.Errorf("adapter record should replace previous, title = %q", res.Records[0].Title)
	}
	if res.Collected != 3 || res.Previous != 2 {
		t.Errorf("Collected = %d, Previous = %d; want 3, 2", res.Collected, res.Previous)
	}
	if len(res.Diff.New) != 2 || len(res.Diff.Gone) != 1 {
		t.Errorf("Diff new = %d, gone = %d; want 2, 1", len(res.Diff.New), len(res.Diff.Gone))
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
	if res.Document.Generated != "2025-08-01T19:00:00Z" {
		t.Errorf("Generated = %q", res.Document.Generated)
	}

	written, err := store.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if got := ids(written); got != "old,b,a" {
		t.Errorf("written = %s, want old,b,a", got)
	}

	if got := readFile(t, filepath.Join(dir, "mirror.json")); got != readFile(t, store.Path()) {
		t.Error("mirror content differs from primary output")
	}
	if got := strings.Count(readFile(t, filepath.Join(dir, "events.ics")), "BEGIN:VEVENT"); got != 3 {
		t.Errorf("calendar has %d events, want 3", got)
	}
	prom := readFile(t, filepath.Join(dir, "run.prom"))
	for _, want := range []string{"svb_events_output_events 3", "svb_events_output_new_events 2", "svb_events_run_empty 0"} {
		if !strings.Contains(prom, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestRun_EmptyLeavesOutputUntouched(t *testing.T) {
	store := newStore(t)
	if _, err := store.Save([]event.Record{rec("old", "Santa Barbara", 3)}, clock); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	before := readFile(t, store.Path())

	dir := t.TempDir()
	_, err := Run(context.Background(), Options{
		Adapters:      adapters(nil, []event.Record{}),
		Store:         store,
		MergePrevious: true,
		ICSPath:       filepath.Join(dir, "events.ics"),
		MetricsPath:   filepath.Join(dir, "run.prom"),
		Metrics:       metrics.New(),
		Now:           fixedNow,
	})
	if !errors.Is(err, ErrNoEvents) {
		t.Fatalf("Run() error = %v, want ErrNoEvents", err)
	}
	if after := readFile(t, store.Path()); after != before {
		t.Error("output changed on an empty run")
	}
	if _, err := os.Stat(filepath.Join(dir, "events.ics")); !os.IsNotExist(err) {
		t.Error("calendar written on an empty run")
	}
	if !strings.Contains(readFile(t, filepath.Join(dir, "run.prom")), "svb_events_run_empty 1") {
		t.Error("metrics should record the empty run")
	}
}

func TestRun_AllowEmptyKeepsPrevious(t *testing.T) {
	store := newStore(t)
	if _, err := store.Save([]event.Record{rec("old", "Santa Barbara", 3)}, clock); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	res, err := Run(context.Background(), Options{
		Adapters:      adapters(nil),
		Store:         store,
		MergePrevious: true,
		AllowEmpty:    true,
		Now:           fixedNow,
	})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if got := ids(res.Records); got != "old" {
		t.Errorf("records = %s, want old", got)
	}
}

func TestRun_AllowEmptyWritesEmptyDocument(t *testing.T) {
	store := newStore(t)

	res, err := Run(context.Background(), Options{
		Adapters:   adapters(nil),
		Store:      store,
		AllowEmpty: true,
		Now:        fixedNow,
	})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if len(res.Records) != 0 {
		t.Errorf("records = %s, want none", ids(res.Records))
	}
	if got := readFile(t, store.Path()); !strings.Contains(got, `"events": []`) {
		t.Errorf("output = %s, want an empty events array", got)
	}
}

func TestRun_MalformedPrevious(t *testing.T) {
	store := newStore(t)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := Run(context.Background(), Options{
		Adapters:      adapters([]event.Record{rec("a", "Santa Barbara", 5)}),
		Store:         store,
		MergePrevious: true,
		Now:           fixedNow,
	})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if got := ids(res.Records); got != "a" {
		t.Errorf("records = %s, want a", got)
	}
	if res.Previous != 0 {
		t.Errorf("Previous = %d, want 0", res.Previous)
	}
}

func TestRun_WithoutMerge(t *testing.T) {
	store := newStore(t)
	if _, err := store.Save([]event.Record{rec("old", "Santa Barbara", 3)}, clock); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	res, err := Run(context.Background(), Options{
		Adapters: adapters([]event.Record{rec("a", "Santa Barbara", 5)}),
		Store:    store,
		Now:      fixedNow,
	})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if got := ids(res.Records); got != "a" {
		t.Errorf("records = %s, want a", got)
	}
	if len(res.Diff.Gone) != 1 {
		t.Errorf("Diff.Gone = %d, want 1", len(res.Diff.Gone))
	}
}

func TestRun_Filter(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Adapters: adapters([]event.Record{rec("a", "Santa Barbara", 5), rec("b", "Goleta", 4)}),
		Store:    newStore(t),
		Filter:   &filter.Filter{Cities: []string{"goleta"}},
		Now:      fixedNow,
	})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if got := ids(res.Records); got != "b" {
		t.Errorf("records = %s, want b", got)
	}
}

func TestRun_RequiresStore(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Error("Run() expected error without storage")
	}
}

func TestFromConfig_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "listing.txt")
	if err := os.WriteFile(input, []byte(listingText), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Source.InputFile = input
	cfg.Ticketmaster.Enabled = false
	cfg.Output.Path = filepath.Join(dir, "events.json")
	cfg.Mirrors.Paths = []string{filepath.Join(dir, "mirror.json")}

	opts, err := FromConfig(context.Background(), cfg, BuildOptions{Today: clock, DryRunMirrors: true})
	if err != nil {
		t.Fatalf("FromConfig() unexpected error: %v", err)
	}
	if len(opts.Adapters) != 1 || opts.Adapters[0].Name() != scraper.SourceName {
		t.Fatalf("adapters = %v, want only the scraper", opts.Adapters)
	}
	opts.Now = fixedNow

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if got := ids(res.Records); got != "lnsb-20250805-soho-jane-doe" {
		t.Errorf("records = %s", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "mirror.json")); !os.IsNotExist(err) {
		t.Error("dry-run mirror was written")
	}
}

func TestProviders_Order(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source.InputFile = "listing.html"
	cfg.Source.RenderFallback = true

	var names []string
	for _, p := range Providers(cfg) {
		names = append(names, p.Name())
	}
	if got := strings.Join(names, ","); got != "file,http,render" {
		t.Errorf("providers = %s, want file,http,render", got)
	}

	if got := len(Providers(config.DefaultConfig())); got != 1 {
		t.Errorf("default providers = %d, want 1", got)
	}
}

func TestFromConfig_Ticketmaster(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Path = filepath.Join(t.TempDir(), "events.json")

	opts, err := FromConfig(context.Background(), cfg, BuildOptions{})
	if err != nil {
		t.Fatalf("FromConfig() unexpected error: %v", err)
	}
	if len(opts.Adapters) != 2 || opts.Adapters[1].Name() != "ticketmaster" {
		t.Errorf("adapters = %d, want scraper and ticketmaster", len(opts.Adapters))
	}
}

func TestMirrors(t *testing.T) {
	mc := config.MirrorConfig{
		Paths: []string{"", "copy.json"},
		Gist:  config.GistConfig{ID: "abc123"},
	}
	got := Mirrors(context.Background(), mc)
	if len(got) != 1 || got[0].Name() != "file:copy.json" {
		t.Errorf("Mirrors() = %v, want only the file mirror (gist has no token)", got)
	}

	mc.Gist.Token = "ghp_token"
	got = Mirrors(context.Background(), mc)
	if len(got) != 2 || got[1].Name() != "gist:abc123/events.json" {
		t.Errorf("Mirrors() = %v, want file and gist mirrors", got)
	}
}
