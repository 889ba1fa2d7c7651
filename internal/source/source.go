package source

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/svb-events/internal/event"
	"github.com/pfrederiksen/svb-events/internal/logger"
)

// Adapter is one source of event records.
//
// FetchEvents must not panic or return partial garbage on failure; it returns an
// empty slice instead. The context carries the remaining run budget.
type Adapter interface {
	Name() string
	FetchEvents(ctx context.Context) []event.Record
}

// Batch is the contribution of one adapter to a run.
type Batch struct {
	Source  string
	Records []event.Record
	Elapsed time.Duration
	Skipped bool   // Budget ran out before the adapter started
	Failure string // Recovered panic, if any
}

// Collect runs adapters sequentially and returns one Batch per adapter, in order.
// A budget of zero or less means no overall limit.
func Collect(ctx context.Context, budget time.Duration, adapters ...Adapter) []Batch {
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	batches := make([]Batch, 0, len(adapters))
	for _, a := range adapters {
		if ctx.Err() != nil {
			logger.Warn("Source budget exhausted, skipping adapter", logger.Fields{
				"source": a.Name(),
			})
			batches = append(batches, Batch{Source: a.Name(), Skipped: true})
			continue
		}
		batches = append(batches, run(ctx, a))
	}
	return batches
}

func run(ctx context.Context, a Adapter) (b Batch) {
	b.Source = a.Name()
	start := time.Now()
	defer func() {
		b.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			b.Records = nil
			b.Failure = fmt.Sprint(r)
			logger.Error("Source adapter panicked", logger.Fields{
				"source": b.Source,
			}, fmt.Errorf("panic: %v", r))
		}
	}()

	b.Records = a.FetchEvents(ctx)
	logger.Info("Source finished", logger.Fields{
		"source": b.Source,
		"events": len(b.Records),
	})
	return b
}

// Records returns the record slices of batches in order, ready for event.MergeAll.
func Records(batches []Batch) [][]event.Record {
	out := make([][]event.Record, 0, len(batches))
	for _, b := range batches {
		out = append(out, b.Records)
	}
	return out
}

// Total counts the records across batches.
func Total(batches []Batch) int {
	n := 0
	for _, b := range batches {
		n += len(b.Records)
	}
	return n
}
