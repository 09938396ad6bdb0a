package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "0 9 * * *", cfg.ReminderSchedule)
	assert.NotEmpty(t, cfg.DBConn)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.HMACSecret)
	assert.NotEmpty(t, cfg.ECBURL)
}

func TestNewConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "override")
	t.Setenv("REMINDER_SCHEDULE", "30 8 * * 1-5")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "override", cfg.JWTSecret)
	assert.Equal(t, "30 8 * * 1-5", cfg.ReminderSchedule)
}
