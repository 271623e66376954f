package executor

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/aryankumar/batchrun/internal/util"
)

// Sink receives progress signals from the engine's control goroutine.
// It is never called concurrently.
type Sink interface {
	Init(total int) error
	Update(amount int) error
	Close() error
}

// SinkFactory builds a sink for a run
type SinkFactory func(label string, w io.Writer, logger *slog.Logger) Sink

// Built-in sink names
const (
	SinkBar  = "bar"
	SinkLog  = "log"
	SinkNone = "none"
)

var sinkFactories = map[string]SinkFactory{
	SinkBar:  NewBarSink,
	SinkLog:  NewLogSink,
	SinkNone: func(string, io.Writer, *slog.Logger) Sink { return NoopSink{} },
}

// SinkNames lists the built-in sink names
func SinkNames() []string {
	names := make([]string, 0, len(sinkFactories))
	for name := range sinkFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupSink resolves a sink name, "" meaning the bar sink
func lookupSink(name string) (SinkFactory, error) {
	if name == "" {
		name = SinkBar
	}
	factory, ok := sinkFactories[name]
	if !ok {
		return nil, util.NewValidationError("progress_sink", name,
			fmt.Sprintf("unknown progress sink, expected one of %v", SinkNames()))
	}
	return factory, nil
}

// NoopSink ignores every signal
type NoopSink struct{}

func (NoopSink) Init(int) error   { return nil }
func (NoopSink) Update(int) error { return nil }
func (NoopSink) Close() error     { return nil }

// BarSink renders a terminal progress bar
type BarSink struct {
	label string
	w     io.Writer
	bar   *progressbar.ProgressBar
}

// NewBarSink creates a bar sink writing to w
func NewBarSink(label string, w io.Writer, _ *slog.Logger) Sink {
	return &BarSink{label: label, w: w}
}

func (s *BarSink) Init(total int) error {
	s.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(s.w),
		progressbar.OptionSetDescription(s.label),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(s.w)
		}),
	)
	return nil
}

func (s *BarSink) Update(amount int) error {
	return s.bar.Add(amount)
}

func (s *BarSink) Close() error {
	return s.bar.Close()
}

// LogSink reports progress as structured log lines.
// Useful when stderr is not a terminal.
type LogSink struct {
	label     string
	logger    *slog.Logger
	total     int
	completed int
	start     time.Time
}

// NewLogSink creates a log sink
func NewLogSink(label string, _ io.Writer, logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{label: label, logger: logger}
}

func (s *LogSink) Init(total int) error {
	s.total = total
	s.start = time.Now()
	s.logger.Info("progress started", "label", s.label, "total", total)
	return nil
}

func (s *LogSink) Update(amount int) error {
	s.completed += amount
	s.logger.Info("progress",
		"label", s.label,
		"progress", fmt.Sprintf("%d/%d", s.completed, s.total))
	return nil
}

func (s *LogSink) Close() error {
	s.logger.Info("progress finished",
		"label", s.label,
		"completed", s.completed,
		"total", s.total,
		"duration", time.Since(s.start))
	return nil
}

// guardedSink enforces the Init → Update* → Close contract on any sink.
// Close is idempotent.
type guardedSink struct {
	inner       Sink
	initialized bool
	closed      bool
}

func (g *guardedSink) Init(total int) error {
	if g.initialized {
		return util.NewInternalStateError("progress", "init called twice")
	}
	g.initialized = true
	return g.inner.Init(total)
}

func (g *guardedSink) Update(amount int) error {
	if !g.initialized {
		return util.NewInternalStateError("progress", "update called before init")
	}
	if g.closed {
		return util.NewInternalStateError("progress", "update called after close")
	}
	if amount <= 0 {
		return util.NewInternalStateError("progress", "update amount must be positive, got %d", amount)
	}
	return g.inner.Update(amount)
}

func (g *guardedSink) Close() error {
	if !g.initialized {
		return util.NewInternalStateError("progress", "close called before init")
	}
	if g.closed {
		return nil
	}
	g.closed = true
	return g.inner.Close()
}
