package mirror

import (
	"context"

	"github.com/pfrederiksen/svb-events/internal/logger"
)

// DryRun logs what would be published without writing anything
type DryRun struct {
	Target Publisher
}

// NewDryRun wraps target so that Publish only logs.
func NewDryRun(target Publisher) *DryRun {
	return &DryRun{Target: target}
}

// Name returns the wrapped publisher's name.
func (d *DryRun) Name() string {
	if d.Target == nil {
		return "dry-run"
	}
	return "dry-run:" + d.Target.Name()
}

// Publish logs the size of the feed that would be written
func (d *DryRun) Publish(_ context.Context, data []byte) error {
	logger.Info("Dry run: skipping mirror", logger.Fields{
		"mirror": d.Name(),
		"bytes":  len(data),
	})
	return nil
}
