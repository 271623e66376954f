package output

import (
	"fmt"
	"io"

	"github.com/aryankumar/batchrun/internal/executor"
	"github.com/aryankumar/batchrun/internal/util"
)

// Format represents the output format type
type Format string

const (
	// FormatTable outputs data in a borderless table
	FormatTable Format = "table"
	// FormatJSON outputs data in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs data in YAML format
	FormatYAML Format = "yaml"
	// FormatJSONLines outputs one JSON object per record
	FormatJSONLines Format = "jsonl"
)

// ParseFormat validates an output format name, "" meaning table
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatJSONLines:
		return FormatJSONLines, nil
	default:
		return "", util.NewValidationError("output", name,
			fmt.Sprintf("must be one of %s, %s, %s, %s", FormatTable, FormatJSON, FormatJSONLines, FormatYAML))
	}
}

// Formatter defines the interface for output formatting
type Formatter interface {
	// Format outputs a single data item to the writer
	Format(w io.Writer, data interface{}) error

	// FormatRecords outputs the records of a run to the writer
	FormatRecords(w io.Writer, records []executor.Record) error
}

// Option is a functional option for configuring formatters
type Option func(*Options)

// Options holds configuration for formatters
type Options struct {
	// NoColor disables color output
	NoColor bool

	// NoHeaders disables table headers
	NoHeaders bool

	// Wide enables wide output with additional columns
	Wide bool

	// Sorted orders records by task index instead of completion order
	Sorted bool
}

// WithNoColor disables color output
func WithNoColor(noColor bool) Option {
	return func(o *Options) {
		o.NoColor = noColor
	}
}

// WithNoHeaders disables table headers
func WithNoHeaders(noHeaders bool) Option {
	return func(o *Options) {
		o.NoHeaders = noHeaders
	}
}

// WithWide enables wide output
func WithWide(wide bool) Option {
	return func(o *Options) {
		o.Wide = wide
	}
}

// WithSorted orders records by task index
func WithSorted(sorted bool) Option {
	return func(o *Options) {
		o.Sorted = sorted
	}
}

// NewFormatter creates a new formatter based on the specified format
func NewFormatter(format Format, opts ...Option) Formatter {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	switch format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatJSONLines:
		return NewJSONLinesFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}

// recordItem is the structured form of a record for JSON and YAML output
type recordItem struct {
	Index    int         `json:"index" yaml:"index"`
	WorkerID int         `json:"workerId" yaml:"workerId"`
	Duration string      `json:"duration" yaml:"duration"`
	Value    interface{} `json:"value" yaml:"value"`
}

// recordItems converts records for structured output, honoring Sorted
func recordItems(records []executor.Record, opts *Options) []recordItem {
	if opts.Sorted {
		records = executor.SortByIndex(records)
	}

	items := make([]recordItem, len(records))
	for i, r := range records {
		items[i] = recordItem{
			Index:    r.Index,
			WorkerID: r.WorkerID,
			Duration: r.Duration.String(),
			Value:    r.Value,
		}
	}
	return items
}
