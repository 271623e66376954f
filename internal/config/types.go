package config

// BatchrunConfig represents the batchrun defaults file structure
type BatchrunConfig struct {
	// Defaults apply to every run unless a job file or flag overrides them
	Defaults DefaultsConfig `yaml:"defaults,omitempty" json:"defaults,omitempty"`

	// Profiles are named execution presets selected with --profile
	Profiles map[string]ProfileConfig `yaml:"profiles,omitempty" json:"profiles,omitempty"`
}

// DefaultsConfig contains default configuration values
type DefaultsConfig struct {
	// Substrate is the default worker substrate (thread, process)
	Substrate string `yaml:"substrate,omitempty" json:"substrate,omitempty"`

	// Workers is the pool size, 0 meaning the substrate default
	Workers int `yaml:"workers,omitempty" json:"workers,omitempty"`

	// BatchSize is the number of tasks submitted per wave
	BatchSize int `yaml:"batchSize,omitempty" json:"batchSize,omitempty"`

	// OutputFormat is the default output format (table, json, yaml)
	OutputFormat string `yaml:"outputFormat,omitempty" json:"outputFormat,omitempty"`

	// ProgressSink is the default progress sink (bar, log, none)
	ProgressSink string `yaml:"progressSink,omitempty" json:"progressSink,omitempty"`

	// NoColor disables colored output
	NoColor bool `yaml:"noColor,omitempty" json:"noColor,omitempty"`
}

// ProfileConfig is a named set of execution settings
type ProfileConfig struct {
	Substrate string  `yaml:"substrate,omitempty" json:"substrate,omitempty"`
	Workers   int     `yaml:"workers,omitempty" json:"workers,omitempty"`
	BatchSize int     `yaml:"batchSize,omitempty" json:"batchSize,omitempty"`
	RateLimit float64 `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`
}

// JobSpec is the content of a job file
type JobSpec struct {
	// Function is the registered function name to run
	Function string `yaml:"function" json:"function"`

	Substrate string   `yaml:"substrate,omitempty" json:"substrate,omitempty"`
	Workers   int      `yaml:"workers,omitempty" json:"workers,omitempty"`
	BatchSize int      `yaml:"batchSize,omitempty" json:"batchSize,omitempty"`
	RateLimit float64  `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`
	Progress  Progress `yaml:"progress,omitempty" json:"progress,omitempty"`

	// Repeat runs the kwargs list this many times, 0 or 1 meaning once
	Repeat int `yaml:"repeat,omitempty" json:"repeat,omitempty"`

	// Kwargs holds one keyword-argument set per task
	Kwargs []map[string]interface{} `yaml:"kwargs" json:"kwargs"`
}

// Progress configures progress reporting for a job
type Progress struct {
	// Enabled is nil when unset; a label then enables progress
	Enabled *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Label   string `yaml:"label,omitempty" json:"label,omitempty"`
	Sink    string `yaml:"sink,omitempty" json:"sink,omitempty"`
}
