package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:          "8471",
		Env:           "development",
		SessionSecret: "dev-session-secret-change-me",
	}
}

func TestValidateAcceptsDevelopmentDefaults(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRequiresPort(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Port = ""
	assert.ErrorContains(t, cfg.Validate(), "PORT")
}

func TestValidateRequiresSessionSecret(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.SessionSecret = ""
	assert.ErrorContains(t, cfg.Validate(), "SESSION_SECRET")
}

func TestValidateProductionRejectsDefaultSecret(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Env = "production"
	assert.ErrorContains(t, cfg.Validate(), "SESSION_SECRET")

	cfg.SessionSecret = "an-actual-secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateProductionRejectsOfflineMode(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Env = "prod"
	cfg.SessionSecret = "an-actual-secret"
	cfg.OfflineMode = true
	assert.ErrorContains(t, cfg.Validate(), "OFFLINE_MODE")
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8471", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.OfflineMode)
	assert.Empty(t, cfg.ModerationURL, "moderation disabled unless configured")
	assert.Equal(t, 10, cfg.MediaMaxUploadMB)
	assert.NotEmpty(t, cfg.MediaBaseURL)
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("OFFLINE_MODE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Port)
	assert.True(t, cfg.OfflineMode)
}
