// Package config holds operator-level configuration for a Veil
// installation: data directory, NER backend selection, and retention.
// Per-run redaction options (threshold, category toggles) are NOT here —
// they travel as flags or request fields with each run.
//
// Values come from env vars with the VEIL_ prefix (e.g. VEIL_NER_BASE_URL)
// or from a veil.config.yaml file, merged by viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Viper keys. Each maps to an env var with the VEIL_ prefix and to a
// YAML field in veil.config.yaml.
const (
	KeyDataDir       = "data_dir"
	KeyNERProvider   = "ner_provider"
	KeyNERBaseURL    = "ner_base_url"
	KeyOpenAIAPIKey  = "openai_api_key"
	KeyOpenAIModel   = "openai_model"
	KeyRetentionDays = "retention_days"
	KeyAPIKey        = "api_key"
)

// Defaults.
const (
	DefaultNERProvider   = "http"
	DefaultNERBaseURL    = "http://localhost:8090"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultRetentionDays = 30
)

// Config holds resolved operator-level configuration for a Veil process.
type Config struct {
	DataDir       string // Base directory for all state (~/.veil)
	NERProvider   string // "http" or "openai"
	NERBaseURL    string // token-classification endpoint for the http provider
	OpenAIAPIKey  string // API key for the openai provider
	OpenAIModel   string // chat model for the openai provider
	RetentionDays int    // run-history retention for the report store
	APIKey        string // serve-mode API key; empty disables auth
}

// ReportDBPath returns the full path to the run-history SQLite database.
func (c *Config) ReportDBPath() string {
	return filepath.Join(c.DataDir, "runs.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o700)
}

func init() {
	viper.SetEnvPrefix("VEIL")
	viper.AutomaticEnv()
	viper.SetDefault(KeyNERProvider, DefaultNERProvider)
	viper.SetDefault(KeyNERBaseURL, DefaultNERBaseURL)
	viper.SetDefault(KeyOpenAIModel, DefaultOpenAIModel)
	viper.SetDefault(KeyRetentionDays, DefaultRetentionDays)
}

// Load reads configuration from viper (which merges env vars, config
// file, and defaults) and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:       resolveDataDir(),
		NERProvider:   viper.GetString(KeyNERProvider),
		NERBaseURL:    viper.GetString(KeyNERBaseURL),
		OpenAIAPIKey:  viper.GetString(KeyOpenAIAPIKey),
		OpenAIModel:   viper.GetString(KeyOpenAIModel),
		RetentionDays: viper.GetInt(KeyRetentionDays),
		APIKey:        viper.GetString(KeyAPIKey),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func resolveDataDir() string {
	if dir := viper.GetString(KeyDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".veil"
	}
	return filepath.Join(home, ".veil")
}

func (c *Config) validate() error {
	switch c.NERProvider {
	case "http", "openai":
	default:
		return fmt.Errorf("ner_provider must be \"http\" or \"openai\" (got %q)", c.NERProvider)
	}
	if c.NERProvider == "openai" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("openai_api_key is required when ner_provider is \"openai\"; set VEIL_OPENAI_API_KEY")
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be positive")
	}
	return nil
}
