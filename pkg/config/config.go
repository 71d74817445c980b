// Package config loads the application configuration from YAML with
// environment-variable fallbacks for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Storage backend
	Storage StorageConfig `yaml:"storage"`

	// Directory-listing cache
	Cache CacheConfig `yaml:"cache"`

	// Conversation-state store; empty Addr keeps state in memory
	Redis RedisConfig `yaml:"redis"`

	// Local data files (allow-list, allowed users)
	Data DataConfig `yaml:"data"`

	// Voice transcription
	OpenAIKey string `yaml:"openai_key"`

	// Administrators (always allowed, may manage users and folders)
	AdminIDs []int64 `yaml:"admin_ids"`

	// Health and metrics endpoint
	HTTPPort int `yaml:"http_port"`
}

// StorageConfig holds the remote storage client configuration
type StorageConfig struct {
	Token             string        `yaml:"token"`
	BaseURL           string        `yaml:"base_url"`
	MaxAttempts       int           `yaml:"max_attempts"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// CacheConfig holds listing-cache behavior
type CacheConfig struct {
	WarmOnStart bool   `yaml:"warm_on_start"`
	RefreshCron string `yaml:"refresh_cron"`
}

// RedisConfig holds the optional Redis state store configuration
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	StateTTL time.Duration `yaml:"state_ttl"`
}

// DataConfig holds paths of the local persistence files
type DataConfig struct {
	Dir         string `yaml:"dir"`
	FoldersFile string `yaml:"folders_file"`
	UsersFile   string `yaml:"users_file"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// Default returns a configuration built from defaults and environment
// variables alone, for running without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Storage.MaxAttempts == 0 {
		c.Storage.MaxAttempts = 3
	}
	if c.Storage.RetryDelay == 0 {
		c.Storage.RetryDelay = 2 * time.Second
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.FoldersFile == "" {
		c.Data.FoldersFile = "allowed_folders.json"
	}
	if c.Data.UsersFile == "" {
		c.Data.UsersFile = "allowed_users.json"
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = 8080
	}
}

func (c *Config) applyEnv() {
	if c.Storage.Token == "" {
		c.Storage.Token = os.Getenv("YANDEX_DISK_TOKEN")
	}
	if c.OpenAIKey == "" {
		c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = os.Getenv("VISITLOG_REDIS_ADDR")
	}
	if ids := os.Getenv("VISITLOG_ADMIN_IDS"); ids != "" && len(c.AdminIDs) == 0 {
		for _, part := range strings.Split(ids, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err == nil {
				c.AdminIDs = append(c.AdminIDs, id)
			}
		}
	}
}

// FoldersPath returns the full path of the allow-list file.
func (c *Config) FoldersPath() string {
	return filepath.Join(c.Data.Dir, c.Data.FoldersFile)
}

// UsersPath returns the full path of the allowed-users file.
func (c *Config) UsersPath() string {
	return filepath.Join(c.Data.Dir, c.Data.UsersFile)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Storage.Token == "" {
		return fmt.Errorf("storage token is required (set storage.token or YANDEX_DISK_TOKEN)")
	}
	if c.Storage.MaxAttempts < 1 {
		return fmt.Errorf("storage.max_attempts must be at least 1")
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port out of range: %d", c.HTTPPort)
	}
	return nil
}
