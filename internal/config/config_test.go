package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("StaleLocationAfter converts minutes to duration", func(t *testing.T) {
		cfg := &Config{StaleLocationAfterMinutes: 10}
		assert.Equal(t, 10*time.Minute, cfg.StaleLocationAfter())
	})

	t.Run("AnalyzerEnabled needs both key and model", func(t *testing.T) {
		assert.False(t, (&Config{}).AnalyzerEnabled())
		assert.False(t, (&Config{ArkAPIKey: "k"}).AnalyzerEnabled())
		assert.False(t, (&Config{ArkModel: "m"}).AnalyzerEnabled())
		assert.True(t, (&Config{ArkAPIKey: "k", ArkModel: "m"}).AnalyzerEnabled())
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads config with defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("NTFY_BASE_URL", "")
		t.Setenv("TRANSCRIPT_CAPACITY", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "https://ntfy.sh", cfg.NtfyBaseURL)
		assert.Equal(t, 6, cfg.TranscriptCapacity)
		assert.Equal(t, 10, cfg.StaleLocationAfterMinutes)
	})

	t.Run("reads overrides from environment", func(t *testing.T) {
		t.Setenv("PORT", "9000")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("TRANSCRIPT_CAPACITY", "12")
		t.Setenv("STALE_LOCATION_AFTER_MINUTES", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Port)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 12, cfg.TranscriptCapacity)
		assert.Equal(t, time.Duration(0), cfg.StaleLocationAfter())
	})

	t.Run("invalid port is an error", func(t *testing.T) {
		t.Setenv("PORT", "not-a-port")

		_, err := Load()
		assert.Error(t, err)
	})
}
