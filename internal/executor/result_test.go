package executor

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestAggregator(t *testing.T) {
	var agg Aggregator
	agg.Append(Record{Index: 2, Value: "b"})
	agg.Append(Record{Index: 0, Value: "a"})

	if agg.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", agg.Len())
	}

	snap := agg.Snapshot()
	if snap[0].Index != 2 || snap[1].Index != 0 {
		t.Errorf("snapshot should keep completion order, got %+v", snap)
	}

	snap[0].Value = "mutated"
	if agg.Snapshot()[0].Value != "b" {
		t.Error("snapshot should be a copy")
	}
}

func TestValuesAndSort(t *testing.T) {
	records := []Record{
		{Index: 2, Value: 30},
		{Index: 0, Value: 10},
		{Index: 1, Value: 20},
	}

	if got := Values(records); !reflect.DeepEqual(got, []interface{}{30, 10, 20}) {
		t.Errorf("unexpected values %v", got)
	}

	sorted := SortByIndex(records)
	if got := Values(sorted); !reflect.DeepEqual(got, []interface{}{10, 20, 30}) {
		t.Errorf("unexpected sorted values %v", got)
	}
	if records[0].Index != 2 {
		t.Error("SortByIndex modified its input")
	}
}

func TestGroupByWorker(t *testing.T) {
	records := []Record{
		{WorkerID: 7, Index: 0},
		{WorkerID: 9, Index: 1},
		{WorkerID: 7, Index: 2},
	}

	grouped := GroupByWorker(records)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(grouped))
	}
	if len(grouped[7]) != 2 || len(grouped[9]) != 1 {
		t.Errorf("unexpected grouping %v", grouped)
	}

	if ids := WorkerIDs(records); !reflect.DeepEqual(ids, []int{7, 9}) {
		t.Errorf("expected ids in first-seen order, got %v", ids)
	}
}

func TestDurations(t *testing.T) {
	tests := []struct {
		name        string
		records     []Record
		expectedAvg time.Duration
		expectedMax time.Duration
		expectedMin time.Duration
	}{
		{
			name: "empty",
		},
		{
			name: "mixed",
			records: []Record{
				{Duration: 100 * time.Millisecond},
				{Duration: 200 * time.Millisecond},
				{Duration: 300 * time.Millisecond},
			},
			expectedAvg: 200 * time.Millisecond,
			expectedMax: 300 * time.Millisecond,
			expectedMin: 100 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AverageDuration(tt.records); got != tt.expectedAvg {
				t.Errorf("avg: expected %v, got %v", tt.expectedAvg, got)
			}
			if got := MaxDuration(tt.records); got != tt.expectedMax {
				t.Errorf("max: expected %v, got %v", tt.expectedMax, got)
			}
			if got := MinDuration(tt.records); got != tt.expectedMin {
				t.Errorf("min: expected %v, got %v", tt.expectedMin, got)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	records := []Record{
		{WorkerID: 1, Duration: 2 * time.Millisecond},
		{WorkerID: 2, Duration: 4 * time.Millisecond},
	}

	s := Summarize(records)
	if s.Total != 2 || s.Workers != 2 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.AvgDuration != 3*time.Millisecond {
		t.Errorf("expected avg 3ms, got %v", s.AvgDuration)
	}

	str := s.String()
	for _, want := range []string{"Total: 2", "Workers: 2", "Avg: 3ms"} {
		if !strings.Contains(str, want) {
			t.Errorf("expected %q in %q", want, str)
		}
	}

	if empty := Summarize(nil).String(); strings.Contains(empty, "Avg") {
		t.Errorf("empty summary should omit durations, got %q", empty)
	}
}
