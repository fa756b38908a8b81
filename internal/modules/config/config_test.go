package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(body), 0o644))
	t.Setenv(configDirENV, dir)
	t.Setenv(configFilePathENV, "test.yaml")
	return dir
}

func TestNewConfigDefaults(t *testing.T) {
	writeConfig(t, "capital:\n  identifier: me@example.com\n")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "me@example.com", cfg.Capital.Identifier)
	assert.Equal(t, 5, cfg.Reconcile.MaxAttempts)
	assert.Equal(t, 1500*time.Millisecond, cfg.Reconcile.Delay)
	assert.Zero(t, cfg.Reconcile.Tolerance)
	assert.Equal(t, 5, cfg.Open.MaxPositions)
	assert.Equal(t, 10, cfg.Close.AfterBusinessDays)
	assert.Equal(t, 300*time.Millisecond, cfg.Close.Delay)
	assert.Equal(t, 20, cfg.Screen.TopX)
	assert.Equal(t, "gpt-4-turbo", cfg.AI.Model)
	assert.Equal(t, filepath.Join("data", "step1_candidates.json"), cfg.DataFile("step1_candidates.json"))
	assert.Contains(t, cfg.Pipeline.Steps, "open")
	assert.Equal(t, 6, cfg.Sentiment.MaxItems)
	assert.Equal(t, 700*time.Millisecond, cfg.Sentiment.Delay)
	assert.Equal(t, 10, cfg.Analyze.MaxHoldDays)
	assert.Equal(t, 3, cfg.Analyze.BanLimit)
	assert.Equal(t, []string{
		"universe", "technical", "sentiment", "rank", "comment", "sltp", "normalize",
		"report", "send", "archive", "analyze", "open", "close",
	}, cfg.Pipeline.Steps)
}

func TestNewConfigEnvOverrides(t *testing.T) {
	writeConfig(t, "reconcile:\n  max_attempts: 3\n")
	t.Setenv("CAPITAL_API_KEY", "key-from-env")
	t.Setenv("RECONCILE_DELAY", "2s")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Reconcile.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Reconcile.Delay)
	assert.Equal(t, "key-from-env", cfg.Capital.APIKey)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
}

func TestNewConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(configDirENV, t.TempDir())
	t.Setenv(configFilePathENV, "absent.yaml")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Reconcile.MaxAttempts)
}

func TestDumpMasksSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Capital.APIKey = "secret"
	cfg.Capital.Identifier = "me"
	cfg.Mail.SecretKey = "s2"

	out, err := cfg.Dump()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "api_key: secret")
	assert.NotContains(t, string(out), "s2")
	assert.Contains(t, string(out), "'***'")
	assert.Contains(t, string(out), "identifier: me")
	assert.Equal(t, "secret", cfg.Capital.APIKey)
}
