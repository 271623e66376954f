package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestManager_Load(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		wantErr       bool
		wantProfiles  int
		wantWorkers   int
		wantSubstrate string
		wantFormat    string
	}{
		{
			name: "valid config with profiles",
			configContent: `
defaults:
  substrate: process
  workers: 8
  outputFormat: json
profiles:
  io:
    substrate: thread
    workers: 200
  cpu:
    substrate: process
    batchSize: 50
`,
			wantProfiles:  2,
			wantWorkers:   8,
			wantSubstrate: "process",
			wantFormat:    "json",
		},
		{
			name: "minimal config with defaults",
			configContent: `
defaults:
  batchSize: 10
`,
			wantSubstrate: "thread",
			wantFormat:    "table",
		},
		{
			name:          "missing file",
			configContent: "",
			wantSubstrate: "thread",
			wantFormat:    "table",
		},
		{
			name:          "malformed yaml",
			configContent: "defaults: [unclosed",
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, ".batchrun.yaml")

			if tt.configContent != "" {
				if err := os.WriteFile(configPath, []byte(tt.configContent), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}
			}

			manager := NewManager(configPath)
			config, err := manager.Load()

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(config.Profiles) != tt.wantProfiles {
				t.Errorf("got %d profiles, want %d", len(config.Profiles), tt.wantProfiles)
			}
			if config.Defaults.Workers != tt.wantWorkers {
				t.Errorf("got workers %d, want %d", config.Defaults.Workers, tt.wantWorkers)
			}
			if config.Defaults.Substrate != tt.wantSubstrate {
				t.Errorf("got substrate %q, want %q", config.Defaults.Substrate, tt.wantSubstrate)
			}
			if config.Defaults.OutputFormat != tt.wantFormat {
				t.Errorf("got output format %q, want %q", config.Defaults.OutputFormat, tt.wantFormat)
			}
			if config.Defaults.ProgressSink != "bar" {
				t.Errorf("got progress sink %q, want bar", config.Defaults.ProgressSink)
			}
		})
	}
}

func TestManager_EnvOverride(t *testing.T) {
	t.Setenv("BATCHRUN_DEFAULTS_WORKERS", "12")

	manager := NewManager(filepath.Join(t.TempDir(), "missing.yaml"))
	config, err := manager.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Defaults.Workers != 12 {
		t.Errorf("got workers %d, want 12 from environment", config.Defaults.Workers)
	}
}

func TestManager_GetProfile(t *testing.T) {
	configContent := `
profiles:
  io:
    substrate: thread
    workers: 64
    rateLimit: 5
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".batchrun.yaml")

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	manager := NewManager(configPath)
	if _, err := manager.Load(); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	tests := []struct {
		name        string
		profile     string
		wantFound   bool
		wantWorkers int
	}{
		{
			name:        "existing profile",
			profile:     "io",
			wantFound:   true,
			wantWorkers: 64,
		},
		{
			name:      "non-existent profile",
			profile:   "gpu",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, found := manager.GetProfile(tt.profile)

			if found != tt.wantFound {
				t.Errorf("got found=%v, want %v", found, tt.wantFound)
			}

			if tt.wantFound {
				if profile.Workers != tt.wantWorkers {
					t.Errorf("got workers %d, want %d", profile.Workers, tt.wantWorkers)
				}
				if profile.RateLimit != 5 {
					t.Errorf("got rate limit %v, want 5", profile.RateLimit)
				}
			}
		})
	}

	if names := manager.ProfileNames(); len(names) != 1 || names[0] != "io" {
		t.Errorf("unexpected profile names %v", names)
	}
}
