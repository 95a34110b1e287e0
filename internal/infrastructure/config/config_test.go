package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/matcher"
)

func TestLoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
matching:
  amount_precision: 2
  amount_tolerance: "0.05"
  description_key_len: 15
  strategies:
    - reference_exact
    - amount_date_exact
fuzzy:
  min_confidence: 75
  auto_match_threshold: 90
  date_tolerance_days: 3
  weights:
    ratio: 0.4
    partial_ratio: 0.2
    token_sort: 0.2
    token_set: 0.1
    jaro_winkler: 0.1
storage:
  database_path: "recon.db"
server:
  host: "0.0.0.0"
  port: 9090
observability:
  logging:
    level: "debug"
    format: "json"
`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "recon.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "0.05", cfg.Matching.AmountTolerance)
	assert.Equal(t, 0.4, cfg.Fuzzy.Weights.Ratio)
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("RECON_DB_PATH", "test.db")
	os.Setenv("RECON_AMOUNT_TOLERANCE", "0.25")
	os.Setenv("RECON_FUZZY_AUTO_THRESHOLD", "92.5")
	defer func() {
		os.Unsetenv("RECON_DB_PATH")
		os.Unsetenv("RECON_AMOUNT_TOLERANCE")
		os.Unsetenv("RECON_FUZZY_AUTO_THRESHOLD")
	}()

	cfg := LoadFromEnv()
	assert.NotNil(t, cfg)
	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "0.25", cfg.Matching.AmountTolerance)
	assert.Equal(t, 92.5, cfg.Fuzzy.AutoMatchThreshold)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	os.Unsetenv("RECON_DB_PATH")
	os.Unsetenv("RECON_AMOUNT_TOLERANCE")

	cfg := LoadFromEnv()
	assert.NotNil(t, cfg)
	assert.Equal(t, "smartrecon.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "0.01", cfg.Matching.AmountTolerance)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	os.Setenv("RECON_DB_PATH", "fallback.db")
	defer os.Unsetenv("RECON_DB_PATH")

	cfg := LoadOrEnvWithPath("nonexistent.yaml")
	assert.NotNil(t, cfg)
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestEnvVarExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
storage:
  database_path: "${TEST_RECON_DB_PATH}"
`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	os.Setenv("TEST_RECON_DB_PATH", "expanded.db")
	defer os.Unsetenv("TEST_RECON_DB_PATH")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "expanded.db", cfg.Storage.DatabasePath)
}

func TestPipelineConfig(t *testing.T) {
	cfg := &Config{
		Matching: MatchingConfig{
			AmountPrecision:   3,
			AmountTolerance:   "0.10",
			DescriptionKeyLen: 12,
			Strategies:        []string{"amount_date_exact", "amount_tolerance"},
		},
		Fuzzy: FuzzyConfig{
			MinConfidence:      80,
			AutoMatchThreshold: 95,
			DateToleranceDays:  2,
		},
	}

	pc := cfg.PipelineConfig()

	assert.Equal(t, int32(3), pc.Normalizer.AmountPrecision)
	assert.Equal(t, "0.1", pc.Matcher.AmountTolerance.String())
	assert.Equal(t, 12, pc.Matcher.DescriptionKeyLen)
	assert.Equal(t, []matcher.Strategy{matcher.StrategyAmountDateExact, matcher.StrategyAmountTolerance}, pc.Matcher.Strategies)
	assert.Equal(t, 80.0, pc.Fuzzy.MinConfidence)
	assert.Equal(t, 2, pc.Fuzzy.DateToleranceDays)
}

func TestPipelineConfig_Defaults(t *testing.T) {
	pc := (&Config{}).PipelineConfig()

	assert.Equal(t, int32(2), pc.Normalizer.AmountPrecision)
	assert.Equal(t, "0.01", pc.Matcher.AmountTolerance.String())
	assert.Equal(t, 70.0, pc.Fuzzy.MinConfidence)
	assert.Equal(t, 85.0, pc.Fuzzy.AutoMatchThreshold)
	assert.Len(t, pc.Matcher.Strategies, 5)
}
