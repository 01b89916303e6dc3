package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate clears every variable Load reads and runs from an empty directory
// so a memefeed.yaml in the working tree cannot leak in.
func isolate(t *testing.T) {
	t.Helper()
	for key := range envKeys {
		t.Setenv(EnvPrefix+strings.ToUpper(key), "")
		os.Unsetenv(EnvPrefix + strings.ToUpper(key))
	}
	t.Setenv(PathEnvVar, "")
	t.Chdir(t.TempDir())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadFromEnv_UsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv returned error: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("unexpected API base URL: %s", cfg.APIBaseURL)
	}
	if cfg.RefreshDelay != 500*time.Millisecond {
		t.Fatalf("unexpected refresh delay: %s", cfg.RefreshDelay)
	}
	if cfg.RequestTimeout != 10*time.Second || cfg.NearEndLookahead != 2 {
		t.Fatalf("unexpected timeouts: %+v", cfg)
	}
	if cfg.JournalPath != ":memory:" {
		t.Fatalf("unexpected journal path: %s", cfg.JournalPath)
	}
	if !cfg.Breaker.Enabled || cfg.Breaker.MaxFailures != 5 {
		t.Fatalf("unexpected breaker config: %+v", cfg.Breaker)
	}
	if cfg.Log.Level != "info" || cfg.Log.File != "memefeed.log" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	isolate(t)
	path := writeFile(t, "memefeed.yaml", `
api_base_url: http://memes.local:9000
refresh_delay: 750ms
near_end_lookahead: 4
breaker:
  max_failures: 2
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://memes.local:9000" {
		t.Fatalf("unexpected API base URL: %s", cfg.APIBaseURL)
	}
	if cfg.RefreshDelay != 750*time.Millisecond || cfg.NearEndLookahead != 4 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Breaker.MaxFailures != 2 || cfg.Breaker.OpenTimeout != 30*time.Second {
		t.Fatalf("unexpected breaker config: %+v", cfg.Breaker)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, "memefeed.yaml", "api_base_url: http://memes.local:9000\nlog:\n  level: debug\n")
	t.Setenv("MEMEFEED_API_BASE_URL", "http://override:18080")
	t.Setenv("MEMEFEED_LOG_LEVEL", "warn")
	t.Setenv("MEMEFEED_BREAKER_ENABLED", "false")
	t.Setenv("MEMEFEED_REFRESH_DELAY", "1s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://override:18080" {
		t.Fatalf("env did not override file: %s", cfg.APIBaseURL)
	}
	if cfg.Log.Level != "warn" || cfg.Breaker.Enabled || cfg.RefreshDelay != time.Second {
		t.Fatalf("env values not applied: %+v", cfg)
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv(PathEnvVar, writeFile(t, "custom.yaml", "near_end_lookahead: 7\n"))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.NearEndLookahead != 7 {
		t.Fatalf("expected lookahead from %s, got %d", PathEnvVar, cfg.NearEndLookahead)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_UnknownEnvIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("MEMEFEED_SOMETHING_ELSE", "x")

	if _, err := LoadFromEnv(); err != nil {
		t.Fatalf("unknown variable should be ignored, got %v", err)
	}
}

func TestValidate_APIBaseURLTrailingSlash(t *testing.T) {
	cfg := defaultConfig()
	cfg.APIBaseURL = "http://127.0.0.1:18080/"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidate_Rules(t *testing.T) {
	cases := map[string]func(*Config){
		"empty url":         func(c *Config) { c.APIBaseURL = "" },
		"not a url":         func(c *Config) { c.APIBaseURL = "memes" },
		"zero timeout":      func(c *Config) { c.RequestTimeout = 0 },
		"negative lookback": func(c *Config) { c.NearEndLookahead = -1 },
		"bad log level":     func(c *Config) { c.Log.Level = "loud" },
		"bad log format":    func(c *Config) { c.Log.Format = "xml" },
		"breaker no limit":  func(c *Config) { c.Breaker.MaxFailures = 0 },
		"empty journal":     func(c *Config) { c.JournalPath = "" },
	}
	for name, mutate := range cases {
		cfg := defaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	disabled := defaultConfig()
	disabled.Breaker = BreakerConfig{Enabled: false}
	if err := disabled.Validate(); err != nil {
		t.Fatalf("disabled breaker should not need limits: %v", err)
	}
}
