package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/svb-events/internal/calendar"
	"github.com/pfrederiksen/svb-events/internal/event"
	"github.com/pfrederiksen/svb-events/internal/filter"
	"github.com/pfrederiksen/svb-events/internal/logger"
	"github.com/pfrederiksen/svb-events/internal/metrics"
	"github.com/pfrederiksen/svb-events/internal/mirror"
	"github.com/pfrederiksen/svb-events/internal/scraper"
	"github.com/pfrederiksen/svb-events/internal/source"
	"github.com/pfrederiksen/svb-events/internal/storage"
)

// ErrNoEvents is returned when no adapter produced a record and empty output is
// not allowed. Nothing is written in that case.
var ErrNoEvents = errors.New("no events collected from any source")

// Options configures a Run.
type Options struct {
	Adapters []source.Adapter // Run in order; later adapters win on ID conflicts
	Budget   time.Duration    // Overall source budget; zero is unlimited

	Store         *storage.Storage // Required
	MergePrevious bool
	AllowEmpty    bool

	Filter       *filter.Filter
	Mirrors      []mirror.Publisher
	ICSPath      string
	CalendarName string
	MetricsPath  string
	Metrics      *metrics.Run

	Now func() time.Time // time.Now when nil
}

// Result summarizes a completed run.
type Result struct {
	RunID     string
	Batches   []source.Batch
	Collected int
	Previous  int
	Records   []event.Record
	Document  *storage.Document
	Diff      *event.DiffResult
	Mirrors   mirror.Result
	Elapsed   time.Duration
}

// reporter is implemented by adapters that expose extraction statistics.
type reporter interface {
	Report() scraper.Report
}

// Run performs one feed build.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Store == nil {
		return nil, errors.New("pipeline: storage is required")
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	started := now()
	res := &Result{RunID: uuid.NewString()}
	fields := func(extra logger.Fields) logger.Fields {
		f := logger.Fields{"run_id": res.RunID}
		for k, v := range extra {
			f[k] = v
		}
		return f
	}

	logger.Info("Run started", fields(logger.Fields{
		"sources": len(opts.Adapters),
		"output":  opts.Store.Path(),
	}))

	res.Batches = source.Collect(ctx, opts.Budget, opts.Adapters...)
	for _, b := range res.Batches {
		opts.Metrics.ObserveSource(b.Source, len(b.Records), b.Elapsed, failureReason(b))
		logger.Info("Source finished", fields(logger.Fields{
			"source":     b.Source,
			"events":     len(b.Records),
			"elapsed_ms": b.Elapsed.Milliseconds(),
			"skipped":    b.Skipped,
		}))
	}
	for _, a := range opts.Adapters {
		if r, ok := a.(reporter); ok {
			rep := r.Report()
			opts.Metrics.ObserveExtraction(rep.Units, rep.Stats.Defaulted, rep.Stats.Rejected)
		}
	}
	res.Collected = source.Total(res.Batches)

	if res.Collected == 0 && !opts.AllowEmpty {
		res.Elapsed = now().Sub(started)
		opts.Metrics.Finish(now(), res.Elapsed, true)
		writeMetrics(opts, fields)
		logger.Warn("No events collected, leaving output untouched", fields(nil))
		return res, ErrNoEvents
	}

	previous, err := opts.Store.Load()
	if err != nil {
		logger.Warn("Could not read previous output, starting fresh", fields(logger.Fields{
			"path":  opts.Store.Path(),
			"error": err.Error(),
		}))
		previous = nil
	}
	res.Previous = len(previous)

	batches := source.Records(res.Batches)
	if opts.MergePrevious {
		batches = append([][]event.Record{previous}, batches...)
	}
	merged := event.MergeAll(started, batches...)
	res.Records = opts.Filter.Apply(merged)
	if dropped := len(merged) - len(res.Records); dropped > 0 {
		logger.Info("Filter applied", fields(logger.Fields{
			"filter":  opts.Filter.String(),
			"dropped": dropped,
		}))
	}

	doc, err := opts.Store.Save(res.Records, now())
	if err != nil {
		return res, fmt.Errorf("writing output: %w", err)
	}
	res.Document = doc
	logger.Info("Output written", fields(logger.Fields{
		"path":      opts.Store.Path(),
		"events":    len(res.Records),
		"generated": doc.Generated,
	}))

	if len(opts.Mirrors) > 0 {
		data, err := storage.Encode(doc)
		if err != nil {
			logger.Error("Could not encode mirror payload", fields(nil), err)
		} else {
			res.Mirrors = mirror.PublishAll(ctx, data, opts.Mirrors...)
		}
	}

	if opts.ICSPath != "" {
		if err := calendar.WriteICS(opts.ICSPath, res.Records, opts.CalendarName, now()); err != nil {
			logger.Error("Could not write calendar", fields(logger.Fields{"path": opts.ICSPath}), err)
		}
	}

	res.Diff = event.Diff(previous, res.Records)
	opts.Metrics.ObserveOutput(len(res.Records), len(res.Diff.New))
	res.Elapsed = now().Sub(started)
	opts.Metrics.Finish(now(), res.Elapsed, len(res.Records) == 0)
	writeMetrics(opts, fields)

	logger.Info("Run finished", fields(logger.Fields{
		"collected":   res.Collected,
		"written":     len(res.Records),
		"new":         len(res.Diff.New),
		"changed":     len(res.Diff.Changed),
		"gone":        len(res.Diff.Gone),
		"elapsed_ms":  res.Elapsed.Milliseconds(),
		"mirror_fail": len(res.Mirrors.Failed),
	}))
	return res, nil
}

func failureReason(b source.Batch) string {
	switch {
	case b.Failure != "":
		return "panic"
	case b.Skipped:
		return "budget"
	}
	return ""
}

func writeMetrics(opts Options, fields func(logger.Fields) logger.Fields) {
	if opts.MetricsPath == "" {
		return
	}
	if err := opts.Metrics.WriteTextfile(opts.MetricsPath); err != nil {
		logger.Error("Could not write metrics", fields(logger.Fields{"path": opts.MetricsPath}), err)
	}
}
