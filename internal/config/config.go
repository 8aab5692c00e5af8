package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/chatvat/chatvat/internal/domain"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "chatvat.yaml"

// Config holds the full bot configuration.
type Config struct {
	BotName      string          `yaml:"bot_name"`
	SystemPrompt string          `yaml:"system_prompt"`
	Sources      []domain.Source `yaml:"sources"`
	Refresh      RefreshConfig   `yaml:"refresh"`
	Ingest       IngestConfig    `yaml:"ingest"`
	HTTP         HTTPConfig      `yaml:"http"`
	Database     DatabaseConfig  `yaml:"database"`
	Embedding    EmbeddingConfig `yaml:"embedding"`
	Chat         ChatConfig      `yaml:"chat"`
	Storage      StorageConfig   `yaml:"storage"`
	Logging      LoggingConfig   `yaml:"logging"`

	// Unresolved lists ${VAR} placeholders left literal because the
	// variable was not set. Populated at load time for logging.
	Unresolved []string `yaml:"-"`
}

// RefreshConfig holds the background refresh schedule.
type RefreshConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"` // 0 = run once at startup, never repeat
	WarmupSec       int `yaml:"warmup_sec"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	Concurrency      int     `yaml:"concurrency"` // 1 = sequential
	SourceTimeoutSec int     `yaml:"source_timeout_sec"`
	MinWords         int     `yaml:"min_words"`
	CrawlRPS         float64 `yaml:"crawl_rps"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vector database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// ChatConfig holds answer composition settings.
type ChatConfig struct {
	Model string `yaml:"model"`
	TopK  int    `yaml:"top_k"`
}

// StorageConfig holds storage key settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
	IndexName string `yaml:"index_name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads the bot configuration from a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data, unresolved := expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Unresolved = unresolved

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetPath returns the config file path from CONFIG_PATH, defaulting to DefaultPath.
func GetPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.BotName == "" {
		c.BotName = "chatvat"
	}
	if c.Refresh.WarmupSec <= 0 {
		c.Refresh.WarmupSec = 5
	}
	if c.Ingest.Concurrency <= 0 {
		c.Ingest.Concurrency = 1
	}
	if c.Ingest.SourceTimeoutSec <= 0 {
		c.Ingest.SourceTimeoutSec = 30
	}
	if c.Ingest.MinWords <= 0 {
		c.Ingest.MinWords = 10
	}
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Chat.TopK <= 0 {
		c.Chat.TopK = 5
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "chatvat:doc:"
	}
	if c.Storage.IndexName == "" {
		c.Storage.IndexName = "chatvat_store"
	}
	for i := range c.Sources {
		if c.Sources[i].Headers == nil {
			c.Sources[i].Headers = map[string]string{}
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Refresh.IntervalMinutes < 0 {
		return fmt.Errorf("refresh.interval_minutes must be >= 0, got %d", c.Refresh.IntervalMinutes)
	}
	for i, src := range c.Sources {
		if !src.Kind.Valid() {
			return fmt.Errorf("sources[%d].kind %q is not one of crawled_page, json_api, local_file", i, src.Kind)
		}
		if src.Target == "" {
			return fmt.Errorf("sources[%d].target is required", i)
		}
	}
	return nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
// Missing variables leave the literal placeholder in place (fail-open)
// and are reported in the second return value so callers can log them.
var envVarRegex = regexp.MustCompile(`\$\{(\w+)\}`)

func expandEnvVars(data []byte) ([]byte, []string) {
	var unresolved []string
	out := envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		name := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(name); ok {
			return []byte(val)
		}
		unresolved = append(unresolved, name)
		return match
	})
	return out, unresolved
}
