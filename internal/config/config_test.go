package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"API_BASE_URL", "HTTP_TIMEOUT", "SNAPSHOT_DB_PATH", "SNAPSHOT_ENABLED",
		"ASSISTANT_USER_ID", "SUMMARY_CACHE_TTL", "REFRESH_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.APIBaseURL != "http://localhost:3008" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if !cfg.SnapshotEnabled {
		t.Errorf("SnapshotEnabled should default to true")
	}
	if cfg.RefreshInterval != 60*time.Second {
		t.Errorf("RefreshInterval = %v", cfg.RefreshInterval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("SNAPSHOT_ENABLED", "false")
	t.Setenv("ASSISTANT_USER_ID", "6584851c1998d9f468e442fc")

	cfg := Load()

	if cfg.APIBaseURL != "https://api.example.com" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.SnapshotEnabled {
		t.Errorf("SnapshotEnabled should be false")
	}
	if cfg.UserID != "6584851c1998d9f468e442fc" {
		t.Errorf("UserID = %q", cfg.UserID)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIBaseURL:      "http://localhost:3008",
			HTTPTimeout:     15 * time.Second,
			SnapshotDBPath:  t.TempDir() + "/assistant.db",
			SnapshotEnabled: true,
			SummaryCacheTTL: 30 * time.Second,
			RefreshInterval: time.Minute,
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad url scheme", func(c *Config) { c.APIBaseURL = "ftp://host" }, "scheme"},
		{"missing host", func(c *Config) { c.APIBaseURL = "http://" }, "host"},
		{"timeout too small", func(c *Config) { c.HTTPTimeout = time.Millisecond }, "timeout"},
		{"empty snapshot path", func(c *Config) { c.SnapshotDBPath = "" }, "snapshot"},
		{"negative cache ttl", func(c *Config) { c.SummaryCacheTTL = -time.Second }, "cache TTL"},
		{"refresh too small", func(c *Config) { c.RefreshInterval = time.Millisecond }, "refresh"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tc.want)) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
