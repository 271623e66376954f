package executor

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/time/rate"

	"github.com/aryankumar/batchrun/internal/util"
)

// DefaultThreadWorkers is the thread substrate's default pool size. Thread
// workers mostly wait on I/O, so the default is well above the CPU count.
const DefaultThreadWorkers = 100

// ProgressConfig configures the progress sink of a run
type ProgressConfig struct {
	// Enabled is nil when unset; a label then turns progress on
	Enabled *bool
	Label   string
	// LabelSet marks a label as given even when it is empty
	LabelSet bool
	// Sink is a built-in sink name, "bar" when empty
	Sink string
	// Factory, when set, overrides Sink
	Factory SinkFactory
}

// IsEnabled resolves the progress flag: an explicit value wins, otherwise
// progress is on exactly when a label is given, the empty label included
func (p ProgressConfig) IsEnabled() bool {
	if p.Enabled != nil {
		return *p.Enabled
	}
	return p.LabelSet || p.Label != ""
}

// Config holds engine configuration. Zero values select defaults.
type Config struct {
	Workers   int
	BatchSize int
	Progress  ProgressConfig
	// RateLimit caps task starts per second across the pool, 0 disables it
	RateLimit float64
	RateBurst int
	Logger    *slog.Logger
	// Output receives progress bar output, os.Stderr when nil
	Output io.Writer
	// WorkerPath and WorkerArgs start isolated workers; the current
	// executable with no arguments when empty
	WorkerPath string
	WorkerArgs []string

	// sink is built from Progress.Factory by validate when progress is on
	sink Sink
}

// Option configures an engine
type Option func(*Config)

// WithWorkers sets the pool size
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithBatchSize sets how many tasks are submitted per wave
func WithBatchSize(n int) Option {
	return func(c *Config) {
		c.BatchSize = n
	}
}

// WithProgress explicitly enables or disables the progress sink
func WithProgress(enabled bool) Option {
	return func(c *Config) {
		c.Progress.Enabled = &enabled
	}
}

// WithProgressLabel sets the text shown by the progress sink. Any label,
// even "", enables progress unless WithProgress(false) is also given.
func WithProgressLabel(label string) Option {
	return func(c *Config) {
		c.Progress.Label = label
		c.Progress.LabelSet = true
	}
}

// WithProgressSink selects a built-in sink by name
func WithProgressSink(name string) Option {
	return func(c *Config) {
		c.Progress.Sink = name
	}
}

// WithProgressSinkFactory plugs in a custom sink implementation
func WithProgressSinkFactory(factory SinkFactory) Option {
	return func(c *Config) {
		c.Progress.Factory = factory
	}
}

// WithRateLimit caps task starts per second with the given burst
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Config) {
		c.RateLimit = perSecond
		c.RateBurst = burst
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithOutput sets where progress output is written
func WithOutput(w io.Writer) Option {
	return func(c *Config) {
		c.Output = w
	}
}

// WithWorkerCommand sets the binary and arguments used to start isolated workers
func WithWorkerCommand(path string, args ...string) Option {
	return func(c *Config) {
		c.WorkerPath = path
		c.WorkerArgs = args
	}
}

// validate checks the configuration and fills in defaults
func (c *Config) validate(defaultWorkers int) error {
	if c.Workers < 0 {
		return util.NewValidationError("workers", c.Workers, "must be a positive integer")
	}
	if c.Workers == 0 {
		c.Workers = defaultWorkers
	}

	if c.BatchSize < 0 {
		return util.NewValidationError("batch_size", c.BatchSize, "must be a positive integer")
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}

	if c.RateLimit < 0 {
		return util.NewValidationError("rate_limit", c.RateLimit, "must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = 1
	}

	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Output == nil {
		c.Output = os.Stderr
	}

	if c.Progress.Factory == nil {
		factory, err := lookupSink(c.Progress.Sink)
		if err != nil {
			return err
		}
		c.Progress.Factory = factory
	}
	if c.Progress.IsEnabled() {
		c.sink = c.Progress.Factory(c.Progress.Label, c.Output, c.Logger)
		if c.sink == nil {
			return util.NewValidationError("progress_sink", nil, "factory returned no sink")
		}
	}
	return nil
}

// limiter returns the configured rate limiter, nil when unlimited
func (c *Config) limiter() *rate.Limiter {
	if c.RateLimit <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.RateLimit), c.RateBurst)
}
