// Package config loads tool configuration from an optional .env file,
// environment variables and an optional YAML config file, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the immutable configuration snapshot for one process.
type Config struct {
	APIKey           string `mapstructure:"api_key"`
	BaseURL          string `mapstructure:"base_url"`
	ModelID          string `mapstructure:"model_id"`
	SegmentLengthMin int    `mapstructure:"segment_length_min"`
	OutputDir        string `mapstructure:"output_dir"`
	LogLevel         string `mapstructure:"log_level"`
	LogFormat        string `mapstructure:"log_format"`
}

// SegmentLengthMs returns the configured segment length in
// milliseconds.
func (c *Config) SegmentLengthMs() int64 {
	return int64(c.SegmentLengthMin) * 60 * 1000
}

// Load reads configuration. A missing config file is fine; defaults
// and environment cover everything. The API key is also read from
// ELEVENLABS_API_KEY for compatibility with the service's own
// tooling.
func Load() (*Config, error) {
	// Best effort: a .env in the working directory, if present.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("base_url", "https://api.elevenlabs.io")
	v.SetDefault("model_id", "scribe_v1")
	v.SetDefault("segment_length_min", 45)
	v.SetDefault("output_dir", ".")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetEnvPrefix("SCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api_key", "SCRIBE_API_KEY", "ELEVENLABS_API_KEY")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "scribe"))
	}
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.SegmentLengthMin <= 0 {
		return nil, fmt.Errorf("segment_length_min must be positive, got %d", cfg.SegmentLengthMin)
	}
	return &cfg, nil
}
