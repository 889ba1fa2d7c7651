package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/pfrederiksen/svb-events/internal/logger"
	"github.com/pfrederiksen/svb-events/internal/storage"
)

// Publisher defines the interface for copying the feed somewhere else
type Publisher interface {
	// Name identifies the publisher in logs
	Name() string
	// Publish writes the encoded feed
	Publish(ctx context.Context, data []byte) error
}

// File mirrors the feed to a local path.
type File struct {
	Path string
}

// NewFile creates a file mirror.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Name returns the mirror path.
func (f *File) Name() string {
	return "file:" + f.Path
}

// Publish writes data atomically to the mirror path.
func (f *File) Publish(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := storage.ExpandHome(f.Path)
	if err != nil {
		return err
	}
	return storage.WriteAtomic(path, data)
}

// Result is the outcome of one PublishAll call.
type Result struct {
	Published []string
	Failed    map[string]error
}

// PublishAll runs every publisher in order. Failures are logged and collected;
// they never stop the remaining publishers.
func PublishAll(ctx context.Context, data []byte, publishers ...Publisher) Result {
	res := Result{Failed: make(map[string]error)}
	for _, p := range publishers {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, data); err != nil {
			logger.Warn("Mirror publish failed", logger.Fields{
				"mirror": p.Name(),
				"error":  err.Error(),
			})
			res.Failed[p.Name()] = err
			continue
		}
		logger.Info("Mirror published", logger.Fields{
			"mirror": p.Name(),
			"bytes":  len(data),
		})
		res.Published = append(res.Published, p.Name())
	}
	return res
}

// Err joins the collected failures, or returns nil when every mirror succeeded.
func (r Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for name, err := range r.Failed {
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return errors.Join(errs...)
}
