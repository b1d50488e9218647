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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  url: "file:test.db"
jwt:
  secret: access
review:
  token_secret: review
reminder:
  delay_days: 3
  timezone: Europe/Berlin
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 3, cfg.Reminder.DelayDays)
	assert.Equal(t, 168*time.Hour, cfg.Review.TokenTTL)
	assert.Equal(t, 240*time.Hour, cfg.Review.Window)
	assert.Equal(t, "0 0 * * *", cfg.Reminder.Cron)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "featured", cfg.Hires.RequiredTier)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
	assert.Same(t, cfg, GetConfig())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  url: "postgres://file"
jwt:
  secret: access
review:
  token_secret: review
`)
	t.Setenv("BILCA_DATABASE_URL", "postgres://env")
	t.Setenv("BILCA_REMINDER_RETRY_MISSED", "true")
	t.Setenv("BILCA_REVIEW_WINDOW", "48h")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.True(t, cfg.Reminder.RetryMissed)
	assert.Equal(t, 48*time.Hour, cfg.Review.Window)
}

func TestLoadConfig_RequiresSecrets(t *testing.T) {
	path := writeConfig(t, `
database:
  url: "postgres://x"
jwt:
  secret: access
`)
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "review.token_secret")
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := &Config{}
	cfg.Reminder.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}
