package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chatvat/chatvat/internal/domain"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8000},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_NegativeRefreshInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Refresh.IntervalMinutes = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative refresh interval")
	}
}

func TestValidate_SourceKinds(t *testing.T) {
	cases := []struct {
		name    string
		source  domain.Source
		wantErr bool
	}{
		{"crawled page", domain.Source{Kind: domain.KindCrawledPage, Target: "https://example.com"}, false},
		{"json api", domain.Source{Kind: domain.KindJSONAPI, Target: "https://api.example.com"}, false},
		{"local file", domain.Source{Kind: domain.KindLocalFile, Target: "/data/notes.md"}, false},
		{"unknown kind", domain.Source{Kind: "rss_feed", Target: "https://example.com"}, true},
		{"missing target", domain.Source{Kind: domain.KindLocalFile}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Sources = []domain.Source{tc.source}

			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{
		Sources: []domain.Source{{Kind: domain.KindJSONAPI, Target: "https://api.example.com"}},
	}
	cfg.ApplyDefaults()

	if cfg.Refresh.WarmupSec != 5 {
		t.Errorf("warmup = %d, want 5", cfg.Refresh.WarmupSec)
	}
	if cfg.Ingest.Concurrency != 1 {
		t.Errorf("concurrency = %d, want 1", cfg.Ingest.Concurrency)
	}
	if cfg.HTTP.Port != 8000 {
		t.Errorf("port = %d, want 8000", cfg.HTTP.Port)
	}
	if cfg.Chat.TopK != 5 {
		t.Errorf("top_k = %d, want 5", cfg.Chat.TopK)
	}
	if cfg.Storage.KeyPrefix != "chatvat:doc:" {
		t.Errorf("key prefix = %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Sources[0].Headers == nil {
		t.Error("source headers should default to an empty map")
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Refresh: RefreshConfig{WarmupSec: 30},
		Ingest:  IngestConfig{Concurrency: 4},
		HTTP:    HTTPConfig{Port: 9090},
	}
	cfg.ApplyDefaults()

	if cfg.Refresh.WarmupSec != 30 {
		t.Errorf("warmup = %d, want 30", cfg.Refresh.WarmupSec)
	}
	if cfg.Ingest.Concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", cfg.Ingest.Concurrency)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CHATVAT_TEST_TOKEN", "s3cret")

	out, unresolved := expandEnvVars([]byte("token: ${CHATVAT_TEST_TOKEN}"))
	if string(out) != "token: s3cret" {
		t.Errorf("expanded = %q", out)
	}
	if len(unresolved) != 0 {
		t.Errorf("unresolved = %v, want none", unresolved)
	}
}

func TestExpandEnvVars_MissingKeepsPlaceholder(t *testing.T) {
	out, unresolved := expandEnvVars([]byte("token: ${CHATVAT_TEST_UNSET_VAR}"))
	if string(out) != "token: ${CHATVAT_TEST_UNSET_VAR}" {
		t.Errorf("expanded = %q, want placeholder preserved", out)
	}
	if len(unresolved) != 1 || unresolved[0] != "CHATVAT_TEST_UNSET_VAR" {
		t.Errorf("unresolved = %v", unresolved)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("CHATVAT_TEST_API_TOKEN", "abc123")

	path := filepath.Join(t.TempDir(), "chatvat.yaml")
	raw := `
bot_name: docs-bot
sources:
  - kind: json_api
    target: https://api.example.com/items
    headers:
      Authorization: Bearer ${CHATVAT_TEST_API_TOKEN}
refresh:
  interval_minutes: 15
database:
  addrs: ["localhost:6379"]
  password: ${CHATVAT_TEST_UNSET_PASSWORD}
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BotName != "docs-bot" {
		t.Errorf("bot_name = %q", cfg.BotName)
	}
	if got := cfg.Sources[0].Headers["Authorization"]; got != "Bearer abc123" {
		t.Errorf("header = %q, want expanded token", got)
	}
	if cfg.Database.Password != "${CHATVAT_TEST_UNSET_PASSWORD}" {
		t.Errorf("password = %q, want literal placeholder", cfg.Database.Password)
	}
	if len(cfg.Unresolved) != 1 || cfg.Unresolved[0] != "CHATVAT_TEST_UNSET_PASSWORD" {
		t.Errorf("unresolved = %v", cfg.Unresolved)
	}
	if cfg.Refresh.IntervalMinutes != 15 {
		t.Errorf("interval = %d", cfg.Refresh.IntervalMinutes)
	}
	// Defaults applied on load.
	if cfg.Refresh.WarmupSec != 5 {
		t.Errorf("warmup = %d, want default 5", cfg.Refresh.WarmupSec)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestGetPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/etc/chatvat/bot.yaml")
	if got := GetPath(); got != "/etc/chatvat/bot.yaml" {
		t.Errorf("GetPath() = %q", got)
	}
}
