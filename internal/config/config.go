package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// STTConfig selects and configures the transcription provider.
type STTConfig struct {
	Provider       string `yaml:"provider"`
	OpenAIKey      string `yaml:"openai_key"`
	DeepgramKey    string `yaml:"deepgram_key"`
	DeepgramURL    string `yaml:"deepgram_url"`
	Language       string `yaml:"language"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
	RetryDelayMS   int    `yaml:"retry_delay_ms"`
}

type Config struct {
	Port        string    `yaml:"port"`
	Environment string    `yaml:"environment"`
	DatabaseURL string    `yaml:"database_url"`
	UploadDir   string    `yaml:"upload_dir"`
	MaxUploadMB int64     `yaml:"max_upload_mb"`
	STT         STTConfig `yaml:"stt"`
}

// Default returns the configuration the server starts with before any
// file or environment override is applied.
func Default() *Config {
	return &Config{
		Port:        "8080",
		Environment: "development",
		UploadDir:   "uploads",
		MaxUploadMB: 25,
		STT: STTConfig{
			Provider:       "whisper",
			DeepgramURL:    "https://api.deepgram.com/v1/listen",
			Language:       "en",
			TimeoutSeconds: 30,
			MaxRetries:     2,
			RetryDelayMS:   500,
		},
	}
}

// Load builds the configuration from an optional YAML file at path, then
// applies environment variable overrides and validates the result. An
// empty path skips the file step entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.Environment, "APP_ENV")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.UploadDir, "UPLOAD_DIR")
	overrideInt64(&cfg.MaxUploadMB, "MAX_UPLOAD_MB")
	overrideString(&cfg.STT.Provider, "STT_PROVIDER")
	overrideString(&cfg.STT.OpenAIKey, "OPENAI_API_KEY")
	overrideString(&cfg.STT.DeepgramKey, "DEEPGRAM_API_KEY")
	overrideString(&cfg.STT.DeepgramURL, "DEEPGRAM_URL")
	overrideString(&cfg.STT.Language, "STT_LANGUAGE")
	overrideInt(&cfg.STT.TimeoutSeconds, "STT_TIMEOUT_SECONDS")
	overrideInt(&cfg.STT.MaxRetries, "STT_MAX_RETRIES")
	overrideInt(&cfg.STT.RetryDelayMS, "STT_RETRY_DELAY_MS")
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	if c.STT.TimeoutSeconds <= 0 {
		return fmt.Errorf("stt.timeout_seconds must be positive, got %d", c.STT.TimeoutSeconds)
	}
	if c.STT.MaxRetries < 0 {
		return fmt.Errorf("stt.max_retries must not be negative, got %d", c.STT.MaxRetries)
	}

	switch strings.ToLower(c.STT.Provider) {
	case "whisper":
		if c.STT.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when stt provider is %q", c.STT.Provider)
		}
	case "deepgram":
		if c.STT.DeepgramKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY is required when stt provider is %q", c.STT.Provider)
		}
	case "mock":
		// No credentials needed; used in tests and local development.
	default:
		return fmt.Errorf("unknown stt provider %q (want whisper, deepgram or mock)", c.STT.Provider)
	}

	return nil
}

// IsProduction reports whether the server runs with production settings.
// It controls how much detail error responses carry.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func overrideString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func overrideInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*target = parsed
		}
	}
}

func overrideInt64(target *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*target = parsed
		}
	}
}
