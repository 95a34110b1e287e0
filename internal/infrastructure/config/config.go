// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	pipeline := recon.NewPipeline(cfg.PipelineConfig(), logger)
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Sohaniboston/Smart-Recon/internal/application/recon"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/fuzzy"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/matcher"
)

// Config represents the entire application configuration
type Config struct {
	Matching      MatchingConfig      `yaml:"matching"`
	Fuzzy         FuzzyConfig         `yaml:"fuzzy"`
	Sources       SourcesConfig       `yaml:"sources"`
	Storage       StorageConfig       `yaml:"storage"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// MatchingConfig tunes normalization and the exact strategy chain
type MatchingConfig struct {
	AmountPrecision   int32    `yaml:"amount_precision"`
	AmountTolerance   string   `yaml:"amount_tolerance"`
	CaseSensitive     bool     `yaml:"case_sensitive"`
	StripCurrency     bool     `yaml:"strip_currency"`
	SignInsensitive   bool     `yaml:"sign_insensitive"`
	DescriptionKeyLen int      `yaml:"description_key_len"`
	CompositeDescLen  int      `yaml:"composite_desc_len"`
	Strategies        []string `yaml:"strategies"`
}

// FuzzyConfig tunes the similarity scoring engine
type FuzzyConfig struct {
	MinConfidence      float64       `yaml:"min_confidence"`
	AutoMatchThreshold float64       `yaml:"auto_match_threshold"`
	AmountTolerance    string        `yaml:"amount_tolerance"`
	DateToleranceDays  int           `yaml:"date_tolerance_days"`
	MaxCandidates      int           `yaml:"max_candidates"`
	Workers            int           `yaml:"workers"`
	Weights            fuzzy.Weights `yaml:"weights"`
}

// SourcesConfig holds the two ledger-side file settings
type SourcesConfig struct {
	Internal SourceConfig `yaml:"internal"`
	External SourceConfig `yaml:"external"`
}

// SourceConfig describes one CSV input
type SourceConfig struct {
	Path        string            `yaml:"path"`
	Delimiter   string            `yaml:"delimiter"`
	DateFormats []string          `yaml:"date_formats"`
	Columns     map[string]string `yaml:"columns"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${RECON_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	return &Config{
		Matching: MatchingConfig{
			AmountPrecision:   int32(getEnvInt("RECON_AMOUNT_PRECISION", 2)),
			AmountTolerance:   getEnv("RECON_AMOUNT_TOLERANCE", "0.01"),
			StripCurrency:     true,
			DescriptionKeyLen: getEnvInt("RECON_DESC_KEY_LEN", 20),
			CompositeDescLen:  getEnvInt("RECON_COMPOSITE_DESC_LEN", 30),
		},
		Fuzzy: FuzzyConfig{
			MinConfidence:      getEnvFloat("RECON_FUZZY_MIN_CONFIDENCE", 70),
			AutoMatchThreshold: getEnvFloat("RECON_FUZZY_AUTO_THRESHOLD", 85),
			AmountTolerance:    getEnv("RECON_FUZZY_AMOUNT_TOLERANCE", "0.01"),
			DateToleranceDays:  getEnvInt("RECON_FUZZY_DATE_DAYS", 5),
			Workers:            getEnvInt("RECON_FUZZY_WORKERS", 0),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("RECON_DB_PATH", "smartrecon.db"),
		},
		Server: ServerConfig{
			Host: getEnv("RECON_API_HOST", "127.0.0.1"),
			Port: getEnvInt("RECON_API_PORT", 8080),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// PipelineConfig converts the file/env representation into the typed
// per-stage configs consumed by the pipeline. Malformed decimal strings
// and empty fields fall back to stage defaults.
func (c *Config) PipelineConfig() recon.Config {
	cfg := recon.DefaultConfig()

	if c.Matching.AmountPrecision > 0 {
		cfg.Normalizer.AmountPrecision = c.Matching.AmountPrecision
	}
	cfg.Normalizer.CaseSensitive = c.Matching.CaseSensitive
	cfg.Normalizer.StripCurrency = c.Matching.StripCurrency
	cfg.Normalizer.SignInsensitive = c.Matching.SignInsensitive
	if c.Matching.CompositeDescLen > 0 {
		cfg.Normalizer.CompositeDescLen = c.Matching.CompositeDescLen
	}

	if tol, err := decimal.NewFromString(c.Matching.AmountTolerance); err == nil && tol.IsPositive() {
		cfg.Matcher.AmountTolerance = tol
	}
	if c.Matching.DescriptionKeyLen > 0 {
		cfg.Matcher.DescriptionKeyLen = c.Matching.DescriptionKeyLen
	}
	if len(c.Matching.Strategies) > 0 {
		cfg.Matcher.Strategies = nil
		for _, s := range c.Matching.Strategies {
			cfg.Matcher.Strategies = append(cfg.Matcher.Strategies, matcher.Strategy(s))
		}
	}

	if c.Fuzzy.MinConfidence > 0 {
		cfg.Fuzzy.MinConfidence = c.Fuzzy.MinConfidence
	}
	if c.Fuzzy.AutoMatchThreshold > 0 {
		cfg.Fuzzy.AutoMatchThreshold = c.Fuzzy.AutoMatchThreshold
	}
	if tol, err := decimal.NewFromString(c.Fuzzy.AmountTolerance); err == nil && tol.IsPositive() {
		cfg.Fuzzy.AmountTolerance = tol
	}
	if c.Fuzzy.DateToleranceDays > 0 {
		cfg.Fuzzy.DateToleranceDays = c.Fuzzy.DateToleranceDays
	}
	if c.Fuzzy.MaxCandidates > 0 {
		cfg.Fuzzy.MaxCandidates = c.Fuzzy.MaxCandidates
	}
	if c.Fuzzy.Workers > 0 {
		cfg.Fuzzy.Workers = c.Fuzzy.Workers
	}
	if c.Fuzzy.Weights != (fuzzy.Weights{}) {
		cfg.Fuzzy.Weights = c.Fuzzy.Weights
	}

	return cfg
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback default
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		var result float64
		if _, err := fmt.Sscanf(val, "%g", &result); err == nil {
			return result
		}
	}
	return fallback
}
