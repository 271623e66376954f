package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aryankumar/batchrun/internal/util"
)

func TestParseJob(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantErr     bool
		errContains string
		wantTasks   int
	}{
		{
			name: "yaml job",
			content: `
function: pow
substrate: thread
workers: 2
batchSize: 2
progress:
  label: powers
kwargs:
  - {a: 1, b: 2}
  - {a: 2, b: 2}
  - {a: 3, b: 2}
`,
			wantTasks: 3,
		},
		{
			name:      "json job",
			content:   `{"function": "sleep", "kwargs": [{"sleep_time": 0.1}]}`,
			wantTasks: 1,
		},
		{
			name: "repeat",
			content: `
function: pi
repeat: 4
kwargs:
  - {iterations: 1000}
`,
			wantTasks: 4,
		},
		{
			name:        "missing function",
			content:     "kwargs: [{a: 1}]",
			wantErr:     true,
			errContains: "function",
		},
		{
			name:        "unknown field",
			content:     "function: pow\nparallelism: 3\n",
			wantErr:     true,
			errContains: "parallelism",
		},
		{
			name:        "kwargs entry not a mapping",
			content:     "function: pow\nkwargs:\n  - 3\n",
			wantErr:     true,
		},
		{
			name:        "null kwargs entry",
			content:     "function: pow\nkwargs:\n  - null\n",
			wantErr:     true,
			errContains: "kwargs[0]",
		},
		{
			name:        "negative workers",
			content:     "function: pow\nworkers: -1\n",
			wantErr:     true,
			errContains: "workers",
		},
		{
			name:        "empty document",
			content:     "",
			wantErr:     true,
			errContains: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := ParseJob([]byte(tt.content))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !util.IsConfigError(err) {
					t.Errorf("expected config error, got %v", err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(job.Tasks()); got != tt.wantTasks {
				t.Errorf("got %d tasks, want %d", got, tt.wantTasks)
			}
		})
	}
}

func TestLoadJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	content := "function: pow\nkwargs:\n  - {a: 10, b: 2}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write job: %v", err)
	}

	job, err := LoadJob(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Function != "pow" {
		t.Errorf("got function %q, want pow", job.Function)
	}
	if job.Kwargs[0]["a"] != 10 {
		t.Errorf("expected integer kwarg 10, got %#v", job.Kwargs[0]["a"])
	}

	if _, err := LoadJob(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing job file")
	}
}

func TestJobSpec_Precedence(t *testing.T) {
	job := &JobSpec{Function: "pow", Workers: 3}
	job.ApplyProfile(ProfileConfig{Substrate: "process", Workers: 10, BatchSize: 20})
	job.ApplyDefaults(DefaultsConfig{Substrate: "thread", BatchSize: 1000, ProgressSink: "log"})

	if job.Workers != 3 {
		t.Errorf("job value should win, got workers %d", job.Workers)
	}
	if job.Substrate != "process" {
		t.Errorf("profile should beat defaults, got substrate %q", job.Substrate)
	}
	if job.BatchSize != 20 {
		t.Errorf("profile should beat defaults, got batch size %d", job.BatchSize)
	}
	if job.Progress.Sink != "log" {
		t.Errorf("defaults should fill the sink, got %q", job.Progress.Sink)
	}
}
