package config

import (
	"sync"
	"time"
)

var (
	globalConfig   *Config
	globalConfigMu sync.RWMutex
)

// SetGlobalConfig sets the global configuration instance (for tests and initialization)
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig returns the global configuration instance. Before a
// Manager has loaded one, defaults are returned so callers never see nil.
func GetGlobalConfig() *Config {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	if globalConfig == nil {
		return DefaultConfig()
	}
	return globalConfig
}

// Config represents the server configuration stored in config.yaml
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Pagination PaginationConfig `yaml:"pagination"`
	Analytics  AnalyticsConfig  `yaml:"analytics"`
}

// ServerConfig holds server metadata settings
type ServerConfig struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	LastUpdatedAt int64  `yaml:"last_updated_at"` // Unix timestamp
}

// PaginationConfig bounds list endpoints
type PaginationConfig struct {
	DefaultLimit int32 `yaml:"default_limit"`
	MaxLimit     int32 `yaml:"max_limit"`
}

// AnalyticsConfig holds analytics window and caching settings
type AnalyticsConfig struct {
	DefaultWindowDays    int `yaml:"default_window_days"`
	MaxWindowDays        int `yaml:"max_window_days"`
	StatsCacheTTLSeconds int `yaml:"stats_cache_ttl_seconds"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:          "Admin Backend",
			Description:   "",
			LastUpdatedAt: time.Now().Unix(),
		},
		Pagination: PaginationConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
		},
		Analytics: AnalyticsConfig{
			DefaultWindowDays:    30,
			MaxWindowDays:        365,
			StatsCacheTTLSeconds: 30,
		},
	}
}

// UpdateTimestamp sets the current Unix timestamp for LastUpdatedAt
func (c *Config) UpdateTimestamp() {
	c.Server.LastUpdatedAt = time.Now().Unix()
}
