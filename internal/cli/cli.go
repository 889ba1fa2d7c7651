package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/svb-events/internal/config"
	"github.com/pfrederiksen/svb-events/internal/logger"
	"github.com/pfrederiksen/svb-events/internal/pipeline"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitEmpty   = 2
)

var (
	flagConfigPath  string
	flagOutput      string
	flagInput       string
	flagICS         string
	flagAllowEmpty  bool
	flagNoPrevious  bool
	flagDebug       bool
	flagDryRun      bool
	flagMissingTime string
	flagCities      []string
	flagGenres      []string
	flagVenues      []string
	flagFrom        string
	flagTo          string
	flagFormat      string
	flagSort        string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "svb-events",
		Short: "Build the Santa Barbara live music event feed",
		Long: `Scrapes the Live Notes SB listing page and the Ticketmaster Discovery API,
merges the results with the previous feed and writes a normalized events.json.`,
		RunE:          runBuild,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&flagConfigPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&flagOutput, "output", "", "Output file (overrides output.path)")
	flags.StringVar(&flagInput, "input", "", "Parse a saved listing page instead of fetching it first")
	flags.StringVar(&flagICS, "ics", "", "Also write an iCalendar file to this path")
	flags.BoolVar(&flagAllowEmpty, "allow-empty", false, "Write the feed even when no source returned events")
	flags.BoolVar(&flagNoPrevious, "no-previous", false, "Do not merge the previous output")
	flags.BoolVar(&flagDebug, "debug", false, "Enable debug logging and print a preview table")
	flags.BoolVar(&flagDryRun, "dry-run", false, "Log mirror uploads instead of performing them")
	flags.StringVar(&flagMissingTime, "missing-time", "", "Policy for listings without a time: reject or default")
	flags.StringSliceVar(&flagCities, "city", nil, "Only keep events in these cities (repeatable)")
	flags.StringSliceVar(&flagGenres, "genre", nil, "Only keep events of these genres (repeatable)")
	flags.StringSliceVar(&flagVenues, "venue", nil, "Only keep events at these venues (repeatable)")
	flags.StringVar(&flagFrom, "from", "", "Only keep events on or after this date (YYYY-MM-DD)")
	flags.StringVar(&flagTo, "to", "", "Only keep events on or before this date (YYYY-MM-DD)")
	flags.StringVar(&flagFormat, "format", "text", "Run summary format: text or json")
	flags.StringVar(&flagSort, "sort", string(SortByDate), "Preview order: date, venue or title")

	cmd.AddCommand(newScheduleCmd())

	return cmd
}

// runBuild is the main command logic
func runBuild(cmd *cobra.Command, args []string) error {
	cfg, format, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return build(cmd.Context(), cfg, format, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// build runs one pipeline pass and reports it.
func build(ctx context.Context, cfg *config.Config, format OutputFormat, out, debugOut io.Writer) error {
	opts, err := pipeline.FromConfig(ctx, cfg, pipeline.BuildOptions{DryRunMirrors: flagDryRun})
	if err != nil {
		return err
	}

	res, err := pipeline.Run(ctx, opts)
	if err != nil {
		return err
	}

	if flagDebug {
		preview := append(res.Records[:0:0], res.Records...)
		sortRecords(preview, SortOrder(strings.ToLower(flagSort)))
		if err := WritePreview(debugOut, preview); err != nil {
			return fmt.Errorf("writing preview: %w", err)
		}
	}

	result := &OutputResult{
		RunID:      res.RunID,
		Generated:  res.Document.Generated,
		Output:     cfg.Output.Path,
		EventCount: len(res.Records),
		NewEvents:  res.Diff.New,
		Sources:    make(map[string]int, len(res.Batches)),
	}
	for _, b := range res.Batches {
		result.Sources[b.Source] = len(b.Records)
	}
	if err := WriteOutput(out, result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// loadConfig reads the config file, applies command-line overrides and sets up
// logging. A config file that cannot be read or parsed is logged and replaced by
// the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, OutputFormat, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return nil, "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		logger.Error("Could not load configuration, using defaults", logger.Fields{
			"path": flagConfigPath,
		}, err)
		cfg = config.DefaultConfig()
		cfg.ApplyEnv()
	}

	applyFlags(cmd, cfg)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	configureLogging(cfg, cmd.ErrOrStderr())
	return cfg, format, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}
	if changed("output") {
		cfg.Output.Path = flagOutput
	}
	if changed("input") {
		cfg.Source.InputFile = flagInput
	}
	if changed("ics") {
		cfg.Output.ICSPath = flagICS
	}
	if flagAllowEmpty {
		cfg.Output.AllowEmpty = true
	}
	if flagNoPrevious {
		cfg.Output.MergePrevious = false
	}
	if changed("missing-time") {
		cfg.Extraction.MissingTime = flagMissingTime
	}
	if changed("city") {
		cfg.Filter.Cities = flagCities
	}
	if changed("genre") {
		cfg.Filter.Genres = flagGenres
	}
	if changed("venue") {
		cfg.Filter.Venues = flagVenues
	}
	if changed("from") {
		cfg.Filter.From = flagFrom
	}
	if changed("to") {
		cfg.Filter.To = flagTo
	}
	if flagDebug {
		cfg.Logging.Level = "debug"
	}
}

func configureLogging(cfg *config.Config, w io.Writer) {
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logger.LevelInfo
	}
	logger.SetDefault(logger.NewWithFormat(level, cfg.Logging.Format, w))
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, pipeline.ErrNoEvents):
		return ExitEmpty
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	started := time.Now()
	err := NewRootCmd().ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	logger.Debug("Exiting", logger.Fields{
		"code":       ExitCode(err),
		"elapsed_ms": time.Since(started).Milliseconds(),
	})
	os.Exit(ExitCode(err))
}
