package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aryankumar/batchrun/internal/executor"
)

// encodeFunc writes one value in a serialization format
type encodeFunc func(w io.Writer, v interface{}) error

// StructuredFormatter renders data through a serialization encoder.
// In streaming mode each record is encoded on its own, which for JSON
// gives one object per line.
type StructuredFormatter struct {
	format  Format
	encode  encodeFunc
	stream  bool
	options *Options
}

// NewJSONFormatter creates a formatter writing indented JSON
func NewJSONFormatter(opts *Options) *StructuredFormatter {
	return newStructured(FormatJSON, encodeJSON("  "), false, opts)
}

// NewJSONLinesFormatter creates a formatter writing one compact JSON
// object per record
func NewJSONLinesFormatter(opts *Options) *StructuredFormatter {
	return newStructured(FormatJSONLines, encodeJSON(""), true, opts)
}

// NewYAMLFormatter creates a formatter writing YAML
func NewYAMLFormatter(opts *Options) *StructuredFormatter {
	return newStructured(FormatYAML, encodeYAML, false, opts)
}

func newStructured(format Format, encode encodeFunc, stream bool, opts *Options) *StructuredFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &StructuredFormatter{
		format:  format,
		encode:  encode,
		stream:  stream,
		options: opts,
	}
}

// Kind reports the format this formatter writes
func (f *StructuredFormatter) Kind() Format {
	return f.format
}

// Format outputs a single data item
func (f *StructuredFormatter) Format(w io.Writer, data interface{}) error {
	return f.encode(w, data)
}

// FormatRecords outputs run records as one document, or one line per
// record when streaming
func (f *StructuredFormatter) FormatRecords(w io.Writer, records []executor.Record) error {
	items := recordItems(records, f.options)
	if !f.stream {
		return f.encode(w, items)
	}

	for _, item := range items {
		if err := f.encode(w, item); err != nil {
			return fmt.Errorf("encoding record %d: %w", item.Index, err)
		}
	}
	return nil
}

func encodeJSON(indent string) encodeFunc {
	return func(w io.Writer, v interface{}) error {
		enc := json.NewEncoder(w)
		if indent != "" {
			enc.SetIndent("", indent)
		}
		return enc.Encode(v)
	}
}

func encodeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}
