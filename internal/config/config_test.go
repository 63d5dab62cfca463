package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutor_scheduler/internal/service"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultsMatchServiceDefaults(t *testing.T) {
	cfg := Default()
	cfg.DBDSN = "postgres://localhost/test"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, service.DefaultBookingOptions(), cfg.BookingOptions())
	assert.Equal(t, service.DefaultReminderOptions(), cfg.ReminderOptions())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/test")
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoad_RequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("CONFIG_FILE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
}

func TestLoad_BadRedisDB(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/test")
	t.Setenv("REDIS_DB", "first")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFile_Overrides(t *testing.T) {
	path := writeFile(t, `
[booking]
slot_step_minutes = 15
tutor_cancel_notice_minutes = 180

[reminders]
interval = "2m"
lock_ttl = "90s"
window_24h_from = 23.75
window_24h_to = 24.25

[http]
read_timeout = "5s"
`)

	cfg := Default()
	cfg.DBDSN = "postgres://localhost/test"
	require.NoError(t, cfg.LoadFile(path))
	require.NoError(t, cfg.Validate())

	opts := cfg.BookingOptions()
	assert.Equal(t, 15*time.Minute, opts.SlotStep)
	assert.Equal(t, 3*time.Hour, opts.TutorCancelNotice)
	assert.Equal(t, 30, opts.HorizonDays)

	assert.Equal(t, 2*time.Minute, cfg.Reminders.Interval)
	assert.Equal(t, 90*time.Second, cfg.Reminders.LockTTL)
	assert.Equal(t, service.Window{From: 23.75, To: 24.25}, cfg.ReminderOptions().Window24h)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.WriteTimeout)
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := writeFile(t, `
[reminders]
intervall = "2m"
`)
	err := Default().LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reminders.intervall")
}

func TestValidate_Reminders(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"interval too long for window", func(c *Config) { c.Reminders.Interval = 31 * time.Minute }},
		{"reversed 24h window", func(c *Config) { c.Reminders.Window24hFrom, c.Reminders.Window24hTo = 24.5, 23.5 }},
		{"reversed 1h window", func(c *Config) { c.Reminders.Window1hFrom = 2 }},
		{"overlapping windows", func(c *Config) { c.Reminders.Window1hTo = 23.6 }},
		{"zero interval", func(c *Config) { c.Reminders.Interval = 0 }},
		{"zero lock ttl", func(c *Config) { c.Reminders.LockTTL = 0 }},
		{"lock ttl outlives interval", func(c *Config) { c.Reminders.LockTTL = c.Reminders.Interval }},
		{"zero step", func(c *Config) { c.Booking.SlotStepMinutes = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.DBDSN = "postgres://localhost/test"
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
