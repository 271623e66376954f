// Package output provides formatters for displaying batchrun results.
//
// The package supports table, JSON, JSON Lines and YAML output behind a
// single Formatter interface.
//
// # Basic Usage
//
//	formatter := output.NewFormatter(output.FormatTable, output.WithSorted(true))
//
//	// Format the records of a run
//	formatter.FormatRecords(os.Stdout, engine.Results())
//
//	// Format any other value, e.g. the function listing
//	formatter.Format(os.Stdout, []map[string]interface{}{{"name": "pow"}})
//
// # Formatters
//
// Table Formatter:
//   - Borderless tables with tab-separated columns
//   - Optional color highlighting for worker ids and durations
//   - Summary line with task count, worker count and durations
//   - Wide mode adds a DURATION column and disables value truncation
//
// Structured Formatters (JSON, JSON Lines, YAML) emit one object per record
// with index, workerId, duration and value. JSON Lines writes each record on
// its own line for line-oriented tools.
//
// # Color Support
//
// Colors are enabled only for TTY outputs and can be disabled with
// WithNoColor(true).
package output
