package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/svb-events/internal/logger"
	"github.com/pfrederiksen/svb-events/internal/pipeline"
)

var (
	flagCron   string
	flagRunNow bool
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Rebuild the feed on a cron schedule until interrupted",
		Long: `Runs the build on a standard five-field cron schedule. A build that is still
running when the next one is due is skipped. SIGINT or SIGTERM stops the scheduler
after the current build finishes.`,
		RunE: runSchedule,
	}

	cmd.Flags().StringVar(&flagCron, "cron", "", "Cron spec, e.g. \"0 */6 * * *\" (defaults to the config schedule)")
	cmd.Flags().BoolVar(&flagRunNow, "now", false, "Run one build immediately before waiting for the schedule")

	return cmd
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, format, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	spec := flagCron
	if spec == "" {
		spec = cfg.Schedule
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := func() {
		err := build(ctx, cfg, format, cmd.OutOrStdout(), cmd.ErrOrStderr())
		switch {
		case err == nil:
		case errors.Is(err, pipeline.ErrNoEvents):
			logger.Warn("Scheduled build found no events", logger.Fields{"cron": spec})
		default:
			logger.Error("Scheduled build failed", logger.Fields{"cron": spec}, err)
		}
	}

	c := cron.New(cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})))
	if _, err := c.AddFunc(spec, job); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	if flagRunNow {
		job()
	}

	c.Start()
	logger.Info("Scheduler started", logger.Fields{
		"cron": spec,
		"next": c.Entries()[0].Next,
	})

	<-ctx.Done()
	logger.Info("Signal received, waiting for the current build", nil)
	<-c.Stop().Done()
	logger.Info("Scheduler stopped", nil)
	return nil
}

// cronLogger routes cron's own logging through the package logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, kvFields(keysAndValues), err)
}

func kvFields(kv []interface{}) logger.Fields {
	fields := logger.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
