package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/aryankumar/batchrun/internal/executor"
)

// maxValueWidth bounds the VALUE column outside wide mode
const maxValueWidth = 50

// TableFormatter formats output as a borderless, tab-separated table
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{
		options: opts,
	}
}

// Format outputs a single data item as a table
func (f *TableFormatter) Format(w io.Writer, data interface{}) error {
	table := f.createTable(w)

	switch v := data.(type) {
	case map[string]interface{}:
		return f.formatMap(table, v)
	case []map[string]interface{}:
		return f.formatMapSlice(table, v)
	case string:
		fmt.Fprintln(w, v)
		return nil
	default:
		fmt.Fprintln(w, v)
		return nil
	}
}

// FormatRecords outputs run records as a table followed by a summary line
func (f *TableFormatter) FormatRecords(w io.Writer, records []executor.Record) error {
	colors := NewColorScheme(w, f.options.NoColor)

	if len(records) == 0 {
		fmt.Fprintln(w, colors.Warning("No results"))
		return nil
	}

	if f.options.Sorted {
		records = executor.SortByIndex(records)
	}

	table := f.createTable(w)

	headers := []string{"INDEX", "WORKER", "VALUE"}
	if f.options.Wide {
		headers = append(headers, "DURATION")
	}

	if !f.options.NoHeaders {
		for i, h := range headers {
			headers[i] = colors.Header(h)
		}
		table.SetHeader(headers)
	}

	for _, rec := range records {
		table.Append(f.formatRecordRow(rec, colors))
	}

	table.Render()

	f.printSummary(w, records, colors)

	return nil
}

// formatRecordRow formats a single record as a table row
func (f *TableFormatter) formatRecordRow(rec executor.Record, colors *ColorScheme) []string {
	var value string
	switch {
	case rec.Value == nil:
		value = colors.Muted("<nil>")
	default:
		value = fmt.Sprintf("%v", rec.Value)
		if !f.options.Wide && len(value) > maxValueWidth {
			value = value[:maxValueWidth-3] + "..."
		}
	}

	row := []string{strconv.Itoa(rec.Index), colors.Worker(rec.WorkerID), value}
	if f.options.Wide {
		row = append(row, colors.Duration(rec.Duration))
	}
	return row
}

// formatMap formats a map as a two-column table (key-value pairs)
func (f *TableFormatter) formatMap(table *tablewriter.Table, data map[string]interface{}) error {
	if !f.options.NoHeaders {
		table.SetHeader([]string{"KEY", "VALUE"})
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		table.Append([]string{k, fmt.Sprintf("%v", data[k])})
	}

	table.Render()
	return nil
}

// formatMapSlice formats a slice of maps as a table.
// Columns follow the sorted keys of the first map.
func (f *TableFormatter) formatMapSlice(table *tablewriter.Table, data []map[string]interface{}) error {
	if len(data) == 0 {
		return nil
	}

	keys := make([]string, 0, len(data[0]))
	for k := range data[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if !f.options.NoHeaders {
		headers := make([]string, len(keys))
		for i, k := range keys {
			headers[i] = strings.ToUpper(k)
		}
		table.SetHeader(headers)
	}

	for _, item := range data {
		row := make([]string, len(keys))
		for i, k := range keys {
			row[i] = fmt.Sprintf("%v", item[k])
		}
		table.Append(row)
	}

	table.Render()
	return nil
}

// createTable creates a new borderless table
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	return table
}

// printSummary prints a summary of the records
func (f *TableFormatter) printSummary(w io.Writer, records []executor.Record, colors *ColorScheme) {
	summary := executor.Summarize(records)

	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Summary: ")

	fmt.Fprintf(w, "%s, %s, %s\n",
		colors.Success(fmt.Sprintf("%d tasks", summary.Total)),
		colors.Worker(fmt.Sprintf("%d workers", summary.Workers)),
		colors.Duration(fmt.Sprintf("avg=%s max=%s", summary.AvgDuration.Round(time.Microsecond), summary.MaxDuration.Round(time.Microsecond))))
}
