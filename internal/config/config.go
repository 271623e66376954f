package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultConfigName = ".batchrun"
	defaultConfigDir  = ".batchrun"
	envPrefix         = "BATCHRUN"
)

// Manager handles batchrun configuration
type Manager struct {
	configPath string
	config     *BatchrunConfig
	viper      *viper.Viper
}

// NewManager creates a new configuration manager
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
		viper:      viper.New(),
		config:     &BatchrunConfig{},
	}
}

// Load loads the batchrun configuration from file.
// A missing file is not an error; defaults are used instead.
func (m *Manager) Load() (*BatchrunConfig, error) {
	if m.configPath != "" {
		m.viper.SetConfigFile(m.configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		// Check ~/.batchrun/.batchrun.yaml, then ~/.batchrun.yaml
		m.viper.AddConfigPath(filepath.Join(home, defaultConfigDir))
		m.viper.AddConfigPath(home)
		m.viper.SetConfigName(defaultConfigName)
		m.viper.SetConfigType("yaml")
	}

	// BATCHRUN_DEFAULTS_WORKERS overrides defaults.workers
	m.viper.SetEnvPrefix(envPrefix)
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()
	registerDefaults(m.viper)

	m.config = &BatchrunConfig{}

	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := m.viper.Unmarshal(m.config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	m.applyDefaults()

	return m.config, nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *BatchrunConfig {
	return m.config
}

// GetProfile returns a named execution profile
func (m *Manager) GetProfile(name string) (*ProfileConfig, bool) {
	if m.config.Profiles == nil {
		return nil, false
	}

	profile, ok := m.config.Profiles[name]
	return &profile, ok
}

// ProfileNames returns the configured profile names in sorted order
func (m *Manager) ProfileNames() []string {
	names := make([]string, 0, len(m.config.Profiles))
	for name := range m.config.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// registerDefaults makes every defaults key known to viper so that
// environment overrides apply even when the file omits the key
func registerDefaults(v *viper.Viper) {
	v.SetDefault("defaults.substrate", "thread")
	v.SetDefault("defaults.workers", 0)
	v.SetDefault("defaults.batchSize", 0)
	v.SetDefault("defaults.outputFormat", "table")
	v.SetDefault("defaults.progressSink", "bar")
	v.SetDefault("defaults.noColor", false)
}

// applyDefaults fills values an explicit empty entry in the file left unset
func (m *Manager) applyDefaults() {
	if m.config == nil {
		return
	}

	if m.config.Defaults.Substrate == "" {
		m.config.Defaults.Substrate = "thread"
	}

	if m.config.Defaults.OutputFormat == "" {
		m.config.Defaults.OutputFormat = "table"
	}

	if m.config.Defaults.ProgressSink == "" {
		m.config.Defaults.ProgressSink = "bar"
	}
}
