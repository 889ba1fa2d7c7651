package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/svb-events/internal/calendar"
	"github.com/pfrederiksen/svb-events/internal/config"
	"github.com/pfrederiksen/svb-events/internal/extract"
	"github.com/pfrederiksen/svb-events/internal/filter"
	"github.com/pfrederiksen/svb-events/internal/logger"
	"github.com/pfrederiksen/svb-events/internal/metrics"
	"github.com/pfrederiksen/svb-events/internal/mirror"
	"github.com/pfrederiksen/svb-events/internal/scraper"
	"github.com/pfrederiksen/svb-events/internal/source"
	"github.com/pfrederiksen/svb-events/internal/storage"
	"github.com/pfrederiksen/svb-events/internal/ticketing"
	"github.com/pfrederiksen/svb-events/internal/trace"
	"github.com/pfrederiksen/svb-events/internal/venue"
)

// BuildOptions adjusts how FromConfig wires a run.
type BuildOptions struct {
	DryRunMirrors bool      // Log mirror publishes instead of performing them
	Today         time.Time // Reference date for year inference; time.Now when zero
}

// FromConfig assembles run options from cfg. Optional pieces that fail to set up
// (the trace directory, the S3 mirror) are logged and left out.
func FromConfig(ctx context.Context, cfg *config.Config, bo BuildOptions) (Options, error) {
	store, err := storage.New(cfg.Output.Path)
	if err != nil {
		return Options{}, fmt.Errorf("output path: %w", err)
	}

	sink := traceSink(cfg.TraceDir)
	directory := venueDirectory(cfg.VenuesFile)

	grace := cfg.Extraction.GraceDays
	x := &extract.Extractor{
		Directory: directory,
		Policy:    cfg.Extraction.Policy(),
		Today:     bo.Today,
		GraceDays: &grace,
		Prefix:    cfg.Extraction.IDPrefix,
		URL:       cfg.Source.URL,
		Trace:     sink,
	}

	adapters := []source.Adapter{
		scraper.New(scraper.Options{
			Providers: Providers(cfg),
			Extractor: x,
			MinLength: cfg.Extraction.MinUnitLength,
			Trace:     sink,
		}),
	}
	if cfg.Ticketmaster.Enabled {
		client := ticketing.NewClient(cfg.Ticketmaster.APIKey).WithRetry(ticketing.RetryPolicy{
			ConnectTimeout:  cfg.Fetch.ConnectTimeout,
			ReadTimeout:     cfg.Fetch.ReadTimeout,
			MaxAttempts:     cfg.Fetch.MaxAttempts,
			InitialInterval: cfg.Fetch.InitialInterval,
			MaxInterval:     cfg.Fetch.MaxInterval,
		})
		adapters = append(adapters, ticketing.NewAdapter(client, cfg.Ticketmaster.Locations, cfg.Ticketmaster.MaxPages))
	}

	from, to, err := cfg.Filter.Dates()
	if err != nil {
		return Options{}, err
	}

	mirrors := Mirrors(ctx, cfg.Mirrors)
	if bo.DryRunMirrors {
		for i, m := range mirrors {
			mirrors[i] = mirror.NewDryRun(m)
		}
	}

	return Options{
		Adapters:      adapters,
		Budget:        cfg.Budget,
		Store:         store,
		MergePrevious: cfg.Output.MergePrevious,
		AllowEmpty:    cfg.Output.AllowEmpty,
		Filter: &filter.Filter{
			Cities:       cfg.Filter.Cities,
			Venues:       cfg.Filter.Venues,
			Genres:       cfg.Filter.Genres,
			WeekendsOnly: cfg.Filter.WeekendsOnly,
			DateFrom:     from,
			DateTo:       to,
		},
		Mirrors:      mirrors,
		ICSPath:      cfg.Output.ICSPath,
		CalendarName: calendar.DefaultName,
		MetricsPath:  cfg.Output.MetricsPath,
		Metrics:      metrics.New(),
	}, nil
}

// Providers returns the scraper's page providers in the order they are tried:
// the local input file, the HTTP fetcher, then the headless renderer.
func Providers(cfg *config.Config) []scraper.Provider {
	var providers []scraper.Provider
	if cfg.Source.InputFile != "" {
		providers = append(providers, scraper.FileProvider{Path: cfg.Source.InputFile})
	}
	providers = append(providers, scraper.NewFetcher(scraper.FetchOptions{
		URL:             cfg.Source.URL,
		UserAgent:       cfg.Source.UserAgent,
		ConnectTimeout:  cfg.Fetch.ConnectTimeout,
		ReadTimeout:     cfg.Fetch.ReadTimeout,
		MaxAttempts:     cfg.Fetch.MaxAttempts,
		InitialInterval: cfg.Fetch.InitialInterval,
		MaxInterval:     cfg.Fetch.MaxInterval,
	}))
	if cfg.Source.RenderFallback {
		providers = append(providers, &scraper.Renderer{
			URL:       cfg.Source.URL,
			UserAgent: cfg.Source.UserAgent,
			Timeout:   cfg.Source.RenderTimeout,
			WaitFor:   cfg.Source.RenderWaitFor,
		})
	}
	return providers
}

// Mirrors builds the configured publishers. An S3 or gist mirror that cannot be
// set up is logged and skipped.
func Mirrors(ctx context.Context, mc config.MirrorConfig) []mirror.Publisher {
	var out []mirror.Publisher
	for _, p := range mc.Paths {
		if p != "" {
			out = append(out, mirror.NewFile(p))
		}
	}
	if mc.S3.Bucket != "" {
		m, err := mirror.NewS3(ctx, mirror.S3Options{
			Bucket:       mc.S3.Bucket,
			Key:          mc.S3.Key,
			Region:       mc.S3.Region,
			Profile:      mc.S3.Profile,
			CacheControl: mc.S3.CacheControl,
		})
		if err != nil {
			logger.Warn("S3 mirror disabled", logger.Fields{
				"bucket": mc.S3.Bucket,
				"error":  err.Error(),
			})
		} else {
			out = append(out, m)
		}
	}
	if mc.Gist.ID != "" {
		g, err := mirror.NewGist(mc.Gist.ID, mc.Gist.Filename, mc.Gist.Token)
		if err != nil {
			logger.Warn("Gist mirror disabled", logger.Fields{
				"gist":  mc.Gist.ID,
				"error": err.Error(),
			})
		} else {
			out = append(out, g)
		}
	}
	return out
}

func venueDirectory(path string) *venue.Directory {
	if path == "" {
		return venue.Builtin()
	}
	d, err := venue.Load(path)
	if err != nil {
		logger.Warn("Could not load venue file, using regional defaults", logger.Fields{
			"path":  path,
			"error": err.Error(),
		})
	}
	return d
}

func traceSink(dir string) trace.Sink {
	if dir == "" {
		return trace.Nop{}
	}
	d, err := trace.NewDir(dir)
	if err != nil {
		logger.Warn("Trace directory unavailable", logger.Fields{
			"path":  dir,
			"error": err.Error(),
		})
		return trace.Nop{}
	}
	return d
}
