package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager manages server configuration with thread-safe reads and writes
type Manager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
}

// NewManager creates a new configuration manager.
// If the config file doesn't exist, it creates one with default values.
func NewManager(configPath string) (*Manager, error) {
	m := &Manager{
		configPath: configPath,
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Info("config file not found, creating from defaults", "path", configPath)
		if err := m.createDefaultConfig(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		slog.Info("created default config file", "path", configPath)
	}

	if err := m.load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Set global config on initialization
	SetGlobalConfig(m.config)

	return m, nil
}

// Get returns a copy of the current configuration (thread-safe read)
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg := *m.config
	return &cfg
}

// Update atomically updates the configuration using a function.
// The function receives a mutable copy of the config.
// If the function returns an error, changes are not saved.
func (m *Manager) Update(fn func(*Config) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	updatedCfg := *m.config
	if err := fn(&updatedCfg); err != nil {
		return err
	}

	updatedCfg.UpdateTimestamp()

	if err := m.writeConfig(&updatedCfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	m.config = &updatedCfg
	SetGlobalConfig(&updatedCfg)

	return nil
}

// load reads the config file and updates the in-memory config
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// Zero limits would make every list endpoint return nothing.
	defaults := DefaultConfig()
	if cfg.Pagination.DefaultLimit <= 0 {
		cfg.Pagination.DefaultLimit = defaults.Pagination.DefaultLimit
	}
	if cfg.Pagination.MaxLimit <= 0 {
		cfg.Pagination.MaxLimit = defaults.Pagination.MaxLimit
	}
	if cfg.Pagination.DefaultLimit > cfg.Pagination.MaxLimit {
		slog.Warn("pagination default_limit exceeds max_limit; clamping",
			"default_limit", cfg.Pagination.DefaultLimit, "max_limit", cfg.Pagination.MaxLimit)
		cfg.Pagination.DefaultLimit = cfg.Pagination.MaxLimit
	}
	if cfg.Analytics.DefaultWindowDays <= 0 {
		cfg.Analytics.DefaultWindowDays = defaults.Analytics.DefaultWindowDays
	}
	if cfg.Analytics.MaxWindowDays <= 0 {
		cfg.Analytics.MaxWindowDays = defaults.Analytics.MaxWindowDays
	}
	if cfg.Analytics.StatsCacheTTLSeconds <= 0 {
		cfg.Analytics.StatsCacheTTLSeconds = defaults.Analytics.StatsCacheTTLSeconds
	}

	m.config = &cfg
	return nil
}

// writeConfig writes the config to disk atomically using temp file + rename
func (m *Manager) writeConfig(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tempPath := m.configPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp config: %w", err)
	}

	if err := os.Rename(tempPath, m.configPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a new config file with default values
func (m *Manager) createDefaultConfig() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultCfg := DefaultConfig()

	data, err := yaml.Marshal(defaultCfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	header := `# Server Configuration
# This file is automatically created on first run.
# Edit this file to configure server settings.

`
	fullData := []byte(header + string(data))

	if err := os.WriteFile(m.configPath, fullData, 0644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}
