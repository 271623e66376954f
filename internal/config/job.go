package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aryankumar/batchrun/internal/util"
)

// LoadJob reads and validates a job file. JSON job files are accepted as
// well since JSON is valid YAML.
func LoadJob(path string) (*JobSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	job, err := ParseJob(data)
	if err != nil {
		return nil, fmt.Errorf("job file %s: %w", path, err)
	}
	return job, nil
}

// ParseJob decodes and validates a job document
func ParseJob(data []byte) (*JobSpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var job JobSpec
	if err := dec.Decode(&job); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, util.NewValidationError("job", nil, "job file is empty")
		}
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate checks the fields a job cannot run without
func (j *JobSpec) Validate() error {
	if j.Function == "" {
		return util.NewValidationError("function", nil, "function name is required")
	}
	if j.Workers < 0 {
		return util.NewValidationError("workers", j.Workers, "must be a positive integer")
	}
	if j.BatchSize < 0 {
		return util.NewValidationError("batchSize", j.BatchSize, "must be a positive integer")
	}
	if j.Repeat < 0 {
		return util.NewValidationError("repeat", j.Repeat, "must not be negative")
	}
	if j.RateLimit < 0 {
		return util.NewValidationError("rateLimit", j.RateLimit, "must not be negative")
	}
	for i, kw := range j.Kwargs {
		if kw == nil {
			return util.NewValidationError(fmt.Sprintf("kwargs[%d]", i), nil, "each entry must be a mapping")
		}
	}
	return nil
}

// Tasks returns the kwargs list expanded by Repeat
func (j *JobSpec) Tasks() []map[string]interface{} {
	times := max(j.Repeat, 1)
	tasks := make([]map[string]interface{}, 0, len(j.Kwargs)*times)
	for i := 0; i < times; i++ {
		tasks = append(tasks, j.Kwargs...)
	}
	return tasks
}

// ApplyProfile fills settings the job leaves unset from a profile
func (j *JobSpec) ApplyProfile(p ProfileConfig) {
	if j.Substrate == "" {
		j.Substrate = p.Substrate
	}
	if j.Workers == 0 {
		j.Workers = p.Workers
	}
	if j.BatchSize == 0 {
		j.BatchSize = p.BatchSize
	}
	if j.RateLimit == 0 {
		j.RateLimit = p.RateLimit
	}
}

// ApplyDefaults fills settings still unset from the defaults file
func (j *JobSpec) ApplyDefaults(d DefaultsConfig) {
	if j.Substrate == "" {
		j.Substrate = d.Substrate
	}
	if j.Workers == 0 {
		j.Workers = d.Workers
	}
	if j.BatchSize == 0 {
		j.BatchSize = d.BatchSize
	}
	if j.Progress.Sink == "" {
		j.Progress.Sink = d.ProgressSink
	}
}
