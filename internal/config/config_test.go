package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/makeup")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, GuardAdvisory, cfg.BookingGuard)
	assert.Equal(t, NotifySMTP, cfg.NotifyMode)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}, cfg.Weekdays)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.Migrations)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/makeup")
	t.Setenv("ENV", "production")
	t.Setenv("WEEKDAYS", "Sunday, Monday ,Tuesday")
	t.Setenv("BOOKING_GUARD", "NONE")
	t.Setenv("NOTIFY_MODE", "amqp")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("SMTP_TIMEOUT_SECONDS", "5")
	t.Setenv("MIGRATIONS", "off")
	t.Setenv("FREE_SLOT_CONCURRENCY", "0")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "-100200")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"Sunday", "Monday", "Tuesday"}, cfg.Weekdays)
	assert.Equal(t, GuardNone, cfg.BookingGuard)
	assert.Equal(t, NotifyAMQP, cfg.NotifyMode)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 5*time.Second, cfg.SMTPTimeout)
	assert.False(t, cfg.Migrations)
	assert.Equal(t, 1, cfg.FreeSlotConcurrency)
	assert.Equal(t, int64(-100200), cfg.TelegramAdminChatID)
}

func TestLoadRejectsUnknownModes(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/makeup")
	t.Setenv("BOOKING_GUARD", "optimistic")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("BOOKING_GUARD", "advisory")
	t.Setenv("NOTIFY_MODE", "pigeon")
	_, err = Load()
	assert.Error(t, err)
}
