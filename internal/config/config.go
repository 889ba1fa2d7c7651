package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/svb-events/internal/datetime"
)

// Environment overrides.
const (
	APIKeyEnv    = "TM_API_KEY"   // Ticketmaster.APIKey
	GistTokenEnv = "GITHUB_TOKEN" // Mirrors.Gist.Token
)

// Validation errors.
var (
	ErrInvalidMissingTime = errors.New("extraction.missing_time must be 'reject' or 'default'")
	ErrInvalidMinLength   = errors.New("extraction.min_unit_length must be at least 1")
	ErrInvalidGraceDays   = errors.New("extraction.grace_days must be non-negative")
	ErrInvalidMaxAttempts = errors.New("fetch.max_attempts must be at least 1")
	ErrInvalidTimeout     = errors.New("fetch timeouts must be positive")
	ErrMissingOutputPath  = errors.New("output.path is required")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat   = errors.New("logging.format must be 'json' or 'console'")
	ErrInvalidBudget      = errors.New("budget must be non-negative")
	ErrInvalidFilterDate  = errors.New("filter dates must be YYYY-MM-DD")
	ErrInvalidFilterRange = errors.New("filter.from must not be after filter.to")
)

// FilterDateLayout is the layout of filter.from and filter.to.
const FilterDateLayout = "2006-01-02"

// Config is the top-level run configuration.
type Config struct {
	Source       SourceConfig       `yaml:"source"`
	Fetch        FetchConfig        `yaml:"fetch"`
	Extraction   ExtractionConfig   `yaml:"extraction"`
	Ticketmaster TicketmasterConfig `yaml:"ticketmaster"`
	Output       OutputConfig       `yaml:"output"`
	Mirrors      MirrorConfig       `yaml:"mirrors"`
	Filter       FilterConfig       `yaml:"filter"`
	Logging      LoggingConfig      `yaml:"logging"`

	// VenuesFile replaces the built-in venue table when set.
	VenuesFile string `yaml:"venues_file"`

	// TraceDir receives intermediate parse artifacts when set.
	TraceDir string `yaml:"trace_dir"`

	// Budget bounds the wall-clock time of all sources together; zero is unlimited.
	Budget time.Duration `yaml:"budget"`

	// Schedule is the cron spec used by the schedule command when --cron is not given.
	Schedule string `yaml:"schedule"`
}

// SourceConfig describes where the listing page comes from.
type SourceConfig struct {
	URL            string        `yaml:"url"`
	UserAgent      string        `yaml:"user_agent"`
	InputFile      string        `yaml:"input_file"`
	RenderFallback bool          `yaml:"render_fallback"`
	RenderTimeout  time.Duration `yaml:"render_timeout"`
	RenderWaitFor  string        `yaml:"render_wait_for"`
}

// FetchConfig is the HTTP timeout and retry policy.
type FetchConfig struct {
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
}

// ExtractionConfig tunes segmentation and field extraction.
type ExtractionConfig struct {
	MissingTime   string `yaml:"missing_time"`
	MinUnitLength int    `yaml:"min_unit_length"`
	GraceDays     int    `yaml:"grace_days"`
	IDPrefix      string `yaml:"id_prefix"`
}

// Policy returns the missing-time policy. Validate guarantees it parses.
func (e ExtractionConfig) Policy() datetime.TimePolicy {
	p, err := datetime.ParsePolicy(e.MissingTime)
	if err != nil {
		return datetime.PolicyReject
	}
	return p
}

// TicketmasterConfig configures the Discovery API source.
type TicketmasterConfig struct {
	Enabled   bool     `yaml:"enabled"`
	APIKey    string   `yaml:"api_key"`
	Locations []string `yaml:"locations"`
	MaxPages  int      `yaml:"max_pages"`
}

// OutputConfig describes the artifacts a run writes.
type OutputConfig struct {
	Path          string `yaml:"path"`
	MergePrevious bool   `yaml:"merge_previous"`
	AllowEmpty    bool   `yaml:"allow_empty"`
	ICSPath       string `yaml:"ics_path"`
	MetricsPath   string `yaml:"metrics_path"`
}

// MirrorConfig lists best-effort copies of the output.
type MirrorConfig struct {
	Paths []string `yaml:"paths"`
	S3    S3Config   `yaml:"s3"`
	Gist  GistConfig `yaml:"gist"`
}

// GistConfig is an optional GitHub Gist mirror. It is disabled while ID is empty.
type GistConfig struct {
	ID       string `yaml:"id"`
	Filename string `yaml:"filename"`
	Token    string `yaml:"token"`
}

// S3Config is an optional S3 mirror. It is disabled while Bucket is empty.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Key          string `yaml:"key"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	CacheControl string `yaml:"cache_control"`
}

// FilterConfig restricts which records are written.
type FilterConfig struct {
	Cities       []string `yaml:"cities"`
	Venues       []string `yaml:"venues"`
	Genres       []string `yaml:"genres"`
	WeekendsOnly bool     `yaml:"weekends_only"`
	From         string   `yaml:"from"`
	To           string   `yaml:"to"`
}

// Dates parses From and To. An empty bound is returned as nil. To covers
// its whole day.
func (f FilterConfig) Dates() (from, to *time.Time, err error) {
	if f.From != "" {
		t, err := time.ParseInLocation(FilterDateLayout, f.From, datetime.Zone(time.January))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: got %q", ErrInvalidFilterDate, f.From)
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, datetime.Zone(t.Month()))
		from = &t
	}
	if f.To != "" {
		t, err := time.ParseInLocation(FilterDateLayout, f.To, datetime.Zone(time.January))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: got %q", ErrInvalidFilterDate, f.To)
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, datetime.Zone(t.Month()))
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, ErrInvalidFilterRange
	}
	return from, to, nil
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default values.
const (
	DefaultURL             = "https://livenotessb.com/"
	DefaultOutputPath      = "events.json"
	DefaultConnectTimeout  = 5 * time.Second
	DefaultReadTimeout     = 45 * time.Second
	DefaultMaxAttempts     = 3
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 10 * time.Second
	DefaultRenderTimeout   = 60 * time.Second
	DefaultMinUnitLength   = 6
	DefaultMaxPages        = 5
	DefaultS3Key           = "events.json"
	DefaultGistFilename    = "events.json"
	DefaultSchedule        = "0 */6 * * *"
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URL:           DefaultURL,
			RenderTimeout: DefaultRenderTimeout,
		},
		Fetch: FetchConfig{
			ConnectTimeout:  DefaultConnectTimeout,
			ReadTimeout:     DefaultReadTimeout,
			MaxAttempts:     DefaultMaxAttempts,
			InitialInterval: DefaultInitialInterval,
			MaxInterval:     DefaultMaxInterval,
		},
		Extraction: ExtractionConfig{
			MissingTime:   string(datetime.PolicyReject),
			MinUnitLength: DefaultMinUnitLength,
			GraceDays:     datetime.DefaultGraceDays,
		},
		Ticketmaster: TicketmasterConfig{
			Enabled:  true,
			MaxPages: DefaultMaxPages,
		},
		Output: OutputConfig{
			Path:          DefaultOutputPath,
			MergePrevious: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Schedule: DefaultSchedule,
	}
}

// Normalize fills missing or zero values with defaults so partially filled files
// still behave.
func (c *Config) Normalize() {
	if c.Source.URL == "" {
		c.Source.URL = DefaultURL
	}
	if c.Source.RenderTimeout <= 0 {
		c.Source.RenderTimeout = DefaultRenderTimeout
	}
	if c.Fetch.ConnectTimeout == 0 {
		c.Fetch.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Fetch.ReadTimeout == 0 {
		c.Fetch.ReadTimeout = DefaultReadTimeout
	}
	if c.Fetch.MaxAttempts == 0 {
		c.Fetch.MaxAttempts = DefaultMaxAttempts
	}
	if c.Fetch.InitialInterval <= 0 {
		c.Fetch.InitialInterval = DefaultInitialInterval
	}
	if c.Fetch.MaxInterval < c.Fetch.InitialInterval {
		c.Fetch.MaxInterval = DefaultMaxInterval
	}
	c.Extraction.MissingTime = strings.ToLower(strings.TrimSpace(c.Extraction.MissingTime))
	if c.Extraction.MissingTime == "" {
		c.Extraction.MissingTime = string(datetime.PolicyReject)
	}
	if c.Extraction.MinUnitLength == 0 {
		c.Extraction.MinUnitLength = DefaultMinUnitLength
	}
	if c.Ticketmaster.MaxPages <= 0 {
		c.Ticketmaster.MaxPages = DefaultMaxPages
	}
	if c.Output.Path == "" {
		c.Output.Path = DefaultOutputPath
	}
	if c.Mirrors.S3.Bucket != "" && c.Mirrors.S3.Key == "" {
		c.Mirrors.S3.Key = DefaultS3Key
	}
	if c.Mirrors.Gist.ID != "" && c.Mirrors.Gist.Filename == "" {
		c.Mirrors.Gist.Filename = DefaultGistFilename
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		c.Ticketmaster.APIKey = key
	}
	if token := strings.TrimSpace(os.Getenv(GistTokenEnv)); token != "" {
		c.Mirrors.Gist.Token = token
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := datetime.ParsePolicy(c.Extraction.MissingTime); err != nil {
		return fmt.Errorf("%w: got %q", ErrInvalidMissingTime, c.Extraction.MissingTime)
	}
	if c.Extraction.MinUnitLength < 1 {
		return ErrInvalidMinLength
	}
	if c.Extraction.GraceDays < 0 {
		return ErrInvalidGraceDays
	}
	if c.Fetch.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.Fetch.ConnectTimeout <= 0 || c.Fetch.ReadTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return ErrMissingOutputPath
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return ErrInvalidLogFormat
	}
	if c.Budget < 0 {
		return ErrInvalidBudget
	}
	if _, _, err := c.Filter.Dates(); err != nil {
		return err
	}
	return nil
}

// Load reads the configuration at path.
//
// An empty path or a missing file yields DefaultConfig. File values overlay the
// defaults, so a key left out of the file keeps its default. Environment
// overrides are applied before validation.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	cfg.Normalize()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}
