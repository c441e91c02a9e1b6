package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/tutoring")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Empty(t, cfg.LogLevel)
	assert.Equal(t, "America/Los_Angeles", cfg.Timezone)
	assert.Equal(t, "localhost:8080", cfg.HTTPServer.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Reminders.SessionWindow)
	assert.False(t, cfg.EmailEnabled())
	assert.False(t, cfg.SMSEnabled())
	assert.Equal(t, "America/Los_Angeles", cfg.Location().String())
}

func TestLoad_RequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	require.NoError(t, os.Unsetenv("DB_DSN"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/tutoring")
	t.Setenv("BUSINESS_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Providers(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/tutoring")
	t.Setenv("SENDGRID_API_KEY", "SG.key")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_FROM_PHONE", "+15550001111")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.EmailEnabled())
	assert.True(t, cfg.SMSEnabled())
}
