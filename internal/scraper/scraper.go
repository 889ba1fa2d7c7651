package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/pfrederiksen/svb-events/internal/event"
	"github.com/pfrederiksen/svb-events/internal/extract"
	"github.com/pfrederiksen/svb-events/internal/logger"
	"github.com/pfrederiksen/svb-events/internal/segment"
	"github.com/pfrederiksen/svb-events/internal/trace"
)

// SourceName identifies records produced by the scraper.
const SourceName = "livenotessb"

// Report describes the most recent successful parse.
type Report struct {
	Provider string        `json:"provider"`
	Strategy string        `json:"strategy"`
	Units    int           `json:"units"`
	Stats    extract.Stats `json:"stats"`
}

// Options configures a Scraper.
type Options struct {
	Providers []Provider         // Tried in order
	Extractor *extract.Extractor // Required
	MinLength int                // Passed to the segmenter
	Trace     trace.Sink
}

// Scraper is the source adapter for the listing page.
type Scraper struct {
	providers []Provider
	extractor *extract.Extractor
	minLength int
	trace     trace.Sink
	last      Report
}

// New creates a Scraper. Records are stamped with SourceName unless the extractor
// already names a source.
func New(opts Options) *Scraper {
	x := opts.Extractor
	if x == nil {
		x = &extract.Extractor{}
	}
	if x.Source == "" {
		x.Source = SourceName
	}
	if x.Trace == nil {
		x.Trace = opts.Trace
	}
	return &Scraper{
		providers: opts.Providers,
		extractor: x,
		minLength: opts.MinLength,
		trace:     trace.OrNop(opts.Trace),
	}
}

// Name implements source.Adapter.
func (s *Scraper) Name() string { return SourceName }

// Report returns what the last FetchEvents call parsed.
func (s *Scraper) Report() Report { return s.last }

// FetchEvents implements source.Adapter. Providers are tried in order until one
// yields at least one record; failures are logged and an empty slice is returned
// when every provider fails.
func (s *Scraper) FetchEvents(ctx context.Context) []event.Record {
	s.last = Report{}
	for _, p := range s.providers {
		if ctx.Err() != nil {
			logger.Warn("Scrape cancelled", logger.Fields{"provider": p.Name()})
			break
		}

		content, err := p.Page(ctx)
		if err != nil {
			logger.Warn("Provider failed", logger.Fields{
				"provider": p.Name(),
				"error":    err.Error(),
			})
			continue
		}

		records, report, err := s.Parse(content)
		report.Provider = p.Name()
		s.last = report
		if err != nil {
			logger.Warn("Could not parse page", logger.Fields{
				"provider": p.Name(),
				"error":    err.Error(),
			})
			continue
		}
		if len(records) == 0 {
			logger.Warn("Provider page held no events", logger.Fields{
				"provider": p.Name(),
				"units":    report.Units,
				"rejected": report.Stats.Rejected,
			})
			continue
		}

		logger.Info("Scraped listing", logger.Fields{
			"provider":  p.Name(),
			"strategy":  report.Strategy,
			"units":     report.Units,
			"events":    len(records),
			"defaulted": report.Stats.Defaulted,
		})
		return records
	}
	return []event.Record{}
}

// Parse segments and extracts one page. HTML is detected by a leading tag;
// anything else is treated as plain text.
func (s *Scraper) Parse(content string) ([]event.Record, Report, error) {
	var page *segment.Page
	if looksLikeHTML(content) {
		var err error
		if page, err = segment.NewHTMLPage(content); err != nil {
			return nil, Report{}, fmt.Errorf("parsing HTML: %w", err)
		}
	} else {
		page = segment.NewTextPage(content)
	}

	units := segment.Segment(page, segment.Options{MinLength: s.minLength, Trace: s.trace})
	report := Report{Units: len(units)}
	if len(units) > 0 {
		report.Strategy = units[0].Strategy
	}

	records, stats := s.extractor.ExtractAll(units)
	report.Stats = stats
	return records, report, nil
}

func looksLikeHTML(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<") || strings.Contains(head, "<html") || strings.Contains(head, "<body")
}
