package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("SEARCH_API_KEY", "")
	t.Setenv("SEARCH_ENGINE_ID", "")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.SearchEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadPortOverride(t *testing.T) {
	t.Setenv("PORT", "9090")
	assert.Equal(t, 9090, Load().Port)

	t.Setenv("PORT", "not-a-number")
	assert.Equal(t, 8080, Load().Port)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:         8080,
			DatabaseURL:  "postgres://localhost/jobs",
			GeminiAPIKey: "key",
		}
	}

	t.Run("valid without search", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("valid with search", func(t *testing.T) {
		cfg := base()
		cfg.SearchAPIKey = "sk"
		cfg.SearchEngineID = "cx"
		assert.NoError(t, cfg.Validate())
		assert.True(t, cfg.SearchEnabled())
	})

	t.Run("missing database url", func(t *testing.T) {
		cfg := base()
		cfg.DatabaseURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing gemini key", func(t *testing.T) {
		cfg := base()
		cfg.GeminiAPIKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("half-configured search", func(t *testing.T) {
		cfg := base()
		cfg.SearchAPIKey = "sk"
		assert.Error(t, cfg.Validate())
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := base()
		cfg.Port = 70000
		assert.Error(t, cfg.Validate())
	})
}
