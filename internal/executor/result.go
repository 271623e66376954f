package executor

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Record is the outcome of one successful task
type Record struct {
	// WorkerID is the thread id or process id that ran the task.
	// It is only meaningful while that worker is alive.
	WorkerID int           `json:"workerId" yaml:"workerId"`
	Index    int           `json:"index" yaml:"index"`
	Value    interface{}   `json:"value" yaml:"value"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Aggregator accumulates records across every batch of a run, in completion
// order. It is owned by the engine's control goroutine and is not safe for
// concurrent use.
type Aggregator struct {
	records []Record
}

// Append adds a record
func (a *Aggregator) Append(rec Record) {
	a.records = append(a.records, rec)
}

// Len returns the number of records collected so far
func (a *Aggregator) Len() int {
	return len(a.records)
}

// Snapshot returns a copy of the records in completion order
func (a *Aggregator) Snapshot() []Record {
	out := make([]Record, len(a.records))
	copy(out, a.records)
	return out
}

// Values extracts the task return values from records
func Values(records []Record) []interface{} {
	values := make([]interface{}, len(records))
	for i, r := range records {
		values[i] = r.Value
	}
	return values
}

// GroupByWorker groups records by the worker that produced them
func GroupByWorker(records []Record) map[int][]Record {
	grouped := make(map[int][]Record)
	for _, r := range records {
		grouped[r.WorkerID] = append(grouped[r.WorkerID], r)
	}
	return grouped
}

// WorkerIDs returns the distinct worker ids in order of first appearance
func WorkerIDs(records []Record) []int {
	seen := make(map[int]bool)
	ids := make([]int, 0)

	for _, r := range records {
		if !seen[r.WorkerID] {
			seen[r.WorkerID] = true
			ids = append(ids, r.WorkerID)
		}
	}

	return ids
}

// SortByIndex returns a copy of records ordered by task index
func SortByIndex(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})
	return sorted
}

// AverageDuration calculates the average duration of all records
func AverageDuration(records []Record) time.Duration {
	if len(records) == 0 {
		return 0
	}

	var total time.Duration
	for _, r := range records {
		total += r.Duration
	}

	return total / time.Duration(len(records))
}

// MaxDuration returns the longest task duration
func MaxDuration(records []Record) time.Duration {
	if len(records) == 0 {
		return 0
	}

	max := records[0].Duration
	for _, r := range records {
		if r.Duration > max {
			max = r.Duration
		}
	}
	return max
}

// MinDuration returns the shortest task duration
func MinDuration(records []Record) time.Duration {
	if len(records) == 0 {
		return 0
	}

	min := records[0].Duration
	for _, r := range records {
		if r.Duration < min {
			min = r.Duration
		}
	}
	return min
}

// Summary describes a completed run
type Summary struct {
	Total       int           `json:"total" yaml:"total"`
	Workers     int           `json:"workers" yaml:"workers"`
	AvgDuration time.Duration `json:"avgDuration" yaml:"avgDuration"`
	MaxDuration time.Duration `json:"maxDuration" yaml:"maxDuration"`
	MinDuration time.Duration `json:"minDuration" yaml:"minDuration"`
}

// Summarize creates a summary of the records
func Summarize(records []Record) Summary {
	return Summary{
		Total:       len(records),
		Workers:     len(WorkerIDs(records)),
		AvgDuration: AverageDuration(records),
		MaxDuration: MaxDuration(records),
		MinDuration: MinDuration(records),
	}
}

// String returns a human-readable string representation of the summary
func (s Summary) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total: %d, ", s.Total))
	sb.WriteString(fmt.Sprintf("Workers: %d", s.Workers))

	if s.Total > 0 {
		sb.WriteString(fmt.Sprintf(", Avg: %s", s.AvgDuration.Round(time.Microsecond)))
		sb.WriteString(fmt.Sprintf(", Max: %s", s.MaxDuration.Round(time.Microsecond)))
		sb.WriteString(fmt.Sprintf(", Min: %s", s.MinDuration.Round(time.Microsecond)))
	}

	return sb.String()
}
