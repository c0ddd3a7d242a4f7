package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every VEIL_ variable the tests touch so ambient
// configuration can't leak in. Viper ignores empty env vars.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VEIL_DATA_DIR", "VEIL_NER_PROVIDER", "VEIL_NER_BASE_URL",
		"VEIL_OPENAI_API_KEY", "VEIL_OPENAI_MODEL", "VEIL_RETENTION_DAYS",
		"VEIL_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultNERProvider, cfg.NERProvider)
	assert.Equal(t, DefaultNERBaseURL, cfg.NERBaseURL)
	assert.Equal(t, DefaultOpenAIModel, cfg.OpenAIModel)
	assert.Equal(t, DefaultRetentionDays, cfg.RetentionDays)
	assert.Empty(t, cfg.APIKey)
	assert.Contains(t, cfg.DataDir, ".veil")
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("VEIL_DATA_DIR", "/tmp/veil-test")
	t.Setenv("VEIL_NER_BASE_URL", "http://ner.internal:9000")
	t.Setenv("VEIL_RETENTION_DAYS", "7")
	t.Setenv("VEIL_API_KEY", "sekrit")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/veil-test", cfg.DataDir)
	assert.Equal(t, "http://ner.internal:9000", cfg.NERBaseURL)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, "sekrit", cfg.APIKey)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown provider",
			env:     map[string]string{"VEIL_NER_PROVIDER": "ollama"},
			wantErr: "ner_provider",
		},
		{
			name:    "openai without key",
			env:     map[string]string{"VEIL_NER_PROVIDER": "openai"},
			wantErr: "openai_api_key",
		},
		{
			name:    "retention must be positive",
			env:     map[string]string{"VEIL_RETENTION_DAYS": "-1"},
			wantErr: "retention_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadOpenAIWithKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("VEIL_NER_PROVIDER", "openai")
	t.Setenv("VEIL_OPENAI_API_KEY", "sk-test")
	t.Setenv("VEIL_OPENAI_MODEL", "gpt-4o")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.NERProvider)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
}

func TestReportDBPath(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/veil"}
	assert.Equal(t, filepath.Join("/var/lib/veil", "runs.db"), cfg.ReportDBPath())
}

func TestEnsureDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "veil")
	cfg := &Config{DataDir: dir}
	require.NoError(t, cfg.EnsureDataDir())
	assert.DirExists(t, dir)
}
