package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"backend/internal/config"
)

func TestNewManager_CreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	m, err := config.NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}

	cfg := m.Get()
	if cfg.Pagination.DefaultLimit != 20 || cfg.Pagination.MaxLimit != 100 {
		t.Fatalf("unexpected pagination defaults: %+v", cfg.Pagination)
	}
	if cfg.Analytics.DefaultWindowDays != 30 || cfg.Analytics.MaxWindowDays != 365 {
		t.Fatalf("unexpected analytics defaults: %+v", cfg.Analytics)
	}

	// NewManager installs the loaded config globally.
	if config.GetGlobalConfig().Pagination.MaxLimit != 100 {
		t.Fatalf("expected global config to be set")
	}
}

func TestNewManager_ClampsInvalidLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("pagination:\n  default_limit: 500\n  max_limit: 100\nanalytics:\n  default_window_days: -1\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	m, err := config.NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := m.Get()
	if cfg.Pagination.DefaultLimit != 100 {
		t.Fatalf("expected default_limit clamped to max, got %d", cfg.Pagination.DefaultLimit)
	}
	if cfg.Analytics.DefaultWindowDays != 30 {
		t.Fatalf("expected invalid window to fall back to default, got %d", cfg.Analytics.DefaultWindowDays)
	}
}

func TestManagerUpdate_PersistsAndRollsBackOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m, err := config.NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if err := m.Update(func(c *config.Config) error {
		c.Server.Name = "Staging Admin"
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// A fresh manager sees the persisted value.
	reloaded, err := config.NewManager(path)
	if err != nil {
		t.Fatalf("NewManager reload: %v", err)
	}
	if got := reloaded.Get().Server.Name; got != "Staging Admin" {
		t.Fatalf("expected persisted name, got %q", got)
	}

	// A failed update leaves the config untouched.
	if err := m.Update(func(c *config.Config) error {
		c.Server.Name = "Broken"
		return os.ErrPermission
	}); err == nil {
		t.Fatalf("expected update error")
	}
	if got := m.Get().Server.Name; got != "Staging Admin" {
		t.Fatalf("expected name unchanged after failed update, got %q", got)
	}
}
