package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		BackendProtocol: "https",
		BackendHostname: "skins.example.com",
		MinModels:       MinModelsOff,
		OpsPort:         9090,
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("BACKEND_PROTOCOL", "https")
	t.Setenv("BACKEND_HOSTNAME", "skins.example.com")
	t.Setenv("API_KEY", "secret")
	t.Setenv("REFRESH_COOLDOWN_SECONDS", "30")
	t.Setenv("FALLBACK_TEAM_LOOKUP", "true")
	t.Setenv("MINIMUM_MODELS", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://skins.example.com", cfg.BackendBaseURL())
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, 30, cfg.RefreshCooldownSeconds)
	assert.True(t, cfg.FallbackTeamLookup)
	assert.True(t, cfg.WearCacheFix)
	assert.False(t, cfg.AgentsEnabled())
}

func TestLoad_MissingHostnameIsFatal(t *testing.T) {
	t.Setenv("BACKEND_HOSTNAME", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BadIntIsFatal(t *testing.T) {
	t.Setenv("BACKEND_HOSTNAME", "skins.example.com")
	t.Setenv("REFRESH_COOLDOWN_SECONDS", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_COOLDOWN_SECONDS")
}

func TestValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, Validate(validConfig()))
	})

	t.Run("out-of-range minimum models", func(t *testing.T) {
		cfg := validConfig()
		cfg.MinModels = 3
		assert.Error(t, Validate(cfg))
	})

	t.Run("bad protocol", func(t *testing.T) {
		cfg := validConfig()
		cfg.BackendProtocol = "gopher"
		assert.Error(t, Validate(cfg))
	})

	t.Run("negative cooldown", func(t *testing.T) {
		cfg := validConfig()
		cfg.RefreshCooldownSeconds = -1
		assert.Error(t, Validate(cfg))
	})
}
