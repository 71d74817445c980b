package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  token: test-token
  max_attempts: 5
  retry_delay: 500ms
cache:
  warm_on_start: true
  refresh_cron: "@hourly"
redis:
  addr: localhost:6379
admin_ids: [7, 42]
http_port: 9090
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Storage.Token != "test-token" {
		t.Errorf("Storage.Token = %q", cfg.Storage.Token)
	}
	if cfg.Storage.MaxAttempts != 5 {
		t.Errorf("Storage.MaxAttempts = %d, want 5", cfg.Storage.MaxAttempts)
	}
	if cfg.Storage.RetryDelay != 500*time.Millisecond {
		t.Errorf("Storage.RetryDelay = %v", cfg.Storage.RetryDelay)
	}
	if !cfg.Cache.WarmOnStart {
		t.Error("Cache.WarmOnStart = false, want true")
	}
	if len(cfg.AdminIDs) != 2 || cfg.AdminIDs[0] != 7 {
		t.Errorf("AdminIDs = %v", cfg.AdminIDs)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d, want 9090", cfg.HTTPPort)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `storage: {token: x}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Storage.MaxAttempts != 3 {
		t.Errorf("default MaxAttempts = %d, want 3", cfg.Storage.MaxAttempts)
	}
	if cfg.Storage.RetryDelay != 2*time.Second {
		t.Errorf("default RetryDelay = %v, want 2s", cfg.Storage.RetryDelay)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("default HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if got := cfg.FoldersPath(); got != filepath.Join("data", "allowed_folders.json") {
		t.Errorf("FoldersPath() = %q", got)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "storage: [not a map")

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadConfig_EnvFallbacks(t *testing.T) {
	t.Setenv("YANDEX_DISK_TOKEN", "env-token")
	t.Setenv("VISITLOG_ADMIN_IDS", "1, 2,3")

	path := writeConfig(t, `http_port: 8080`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Storage.Token != "env-token" {
		t.Errorf("Storage.Token = %q, want env fallback", cfg.Storage.Token)
	}
	if len(cfg.AdminIDs) != 3 {
		t.Errorf("AdminIDs = %v, want 3 ids", cfg.AdminIDs)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Storage.Token = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "token") {
		t.Errorf("Validate() = %v, want token error", err)
	}

	cfg.Storage.Token = "x"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	cfg.HTTPPort = 99999
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}
}
