package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	defaultAPIBaseURL = "http://127.0.0.1:18080"

	EnvPrefix = "MEMEFEED_"
	// PathEnvVar overrides the config file location.
	PathEnvVar = EnvPrefix + "CONFIG"
)

// DefaultPaths are tried in order when no config file is named.
var DefaultPaths = []string{"memefeed.yaml", "memefeed.yml"}

// Config holds runtime settings for the CLI app.
type Config struct {
	APIBaseURL       string        `koanf:"api_base_url" validate:"required,url"`
	RequestTimeout   time.Duration `koanf:"request_timeout" validate:"gt=0"`
	RefreshDelay     time.Duration `koanf:"refresh_delay" validate:"gt=0"`
	NearEndLookahead int           `koanf:"near_end_lookahead" validate:"min=0,max=50"`
	ImagePreview     bool          `koanf:"image_preview"`
	JournalPath      string        `koanf:"journal_path" validate:"required"`
	Breaker          BreakerConfig `koanf:"breaker"`
	Log              LogConfig     `koanf:"log"`
}

type BreakerConfig struct {
	Enabled     bool          `koanf:"enabled"`
	MaxFailures uint32        `koanf:"max_failures" validate:"required_if=Enabled true,omitempty,min=1"`
	OpenTimeout time.Duration `koanf:"open_timeout" validate:"required_if=Enabled true,omitempty,gt=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	File   string `koanf:"file"`
}

func defaultConfig() Config {
	return Config{
		APIBaseURL:       defaultAPIBaseURL,
		RequestTimeout:   10 * time.Second,
		RefreshDelay:     500 * time.Millisecond,
		NearEndLookahead: 2,
		ImagePreview:     true,
		JournalPath:      ":memory:",
		Breaker: BreakerConfig{
			Enabled:     true,
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			File:   "memefeed.log",
		},
	}
}

// Load layers defaults, an optional YAML file and MEMEFEED_* environment
// variables, in that order of precedence. An explicit path that does not
// exist is an error; the default paths are optional.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	configPath, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromEnv loads without naming a config file.
func LoadFromEnv() (Config, error) {
	return Load("")
}

func resolvePath(path string) (string, error) {
	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}
	for _, candidate := range DefaultPaths {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

var envKeys = map[string]string{
	"api_base_url":         "api_base_url",
	"request_timeout":      "request_timeout",
	"refresh_delay":        "refresh_delay",
	"near_end_lookahead":   "near_end_lookahead",
	"image_preview":        "image_preview",
	"journal_path":         "journal_path",
	"breaker_enabled":      "breaker.enabled",
	"breaker_max_failures": "breaker.max_failures",
	"breaker_open_timeout": "breaker.open_timeout",
	"log_level":            "log.level",
	"log_format":           "log.format",
	"log_file":             "log.file",
}

// envKey maps MEMEFEED_LOG_LEVEL to log.level. Unknown variables are dropped.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envKeys[key]
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config %s: failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if strings.HasSuffix(c.APIBaseURL, "/") {
		return fmt.Errorf("APIBaseURL must not end with '/': %s", c.APIBaseURL)
	}
	return nil
}
