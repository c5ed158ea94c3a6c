package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"TELEGRAM_BOT_TOKEN", "DB_DRIVER", "DB_DSN", "REPORT_CHANNEL_ID", "ALERT_CHAT_ID",
	"WEBHOOK_URL", "WEBHOOK_PATH", "ADDRESS", "TIMEZONE", "REPORT_HOUR", "REPORT_MINUTE",
	"COINGECKO_URL", "SECTORS_FILE", "SESSION_TTL", "LOG_FILE", "LOG_LEVEL",
}

// clearEnv убирает переменные, чтобы окружение машины не влияло на тесты
func clearEnv(t *testing.T) {
	t.Helper()

	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func missing(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missing(t))
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "./journal.db", cfg.DBDSN)
	assert.Equal(t, "/webhook", cfg.WebhookPath)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address)
	assert.Equal(t, "Asia/Seoul", cfg.Location.String())
	assert.Equal(t, 22, cfg.ReportHour)
	assert.Equal(t, 0, cfg.ReportMinute)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.Webhook())

	assert.EqualError(t, cfg.Validate(), "TELEGRAM_BOT_TOKEN not set")
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("REPORT_CHANNEL_ID", "-1001234567890")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com/")
	t.Setenv("WEBHOOK_PATH", "tg")
	t.Setenv("SESSION_TTL", "10m")
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := Load(missing(t))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, int64(-1001234567890), cfg.ReportChannelID)
	assert.Equal(t, "https://bot.example.com/tg", cfg.WebhookEndpoint())
	assert.True(t, cfg.Webhook())
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALERT_CHAT_ID", "77")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TELEGRAM_BOT_TOKEN=from-file\nALERT_CHAT_ID=1\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.TelegramToken)
	// переменная окружения важнее .env
	assert.Equal(t, int64(77), cfg.AlertChatID)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPORT_HOUR", "ten")
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := Load(missing(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_HOUR")
	assert.Contains(t, err.Error(), "SESSION_TTL")
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			TelegramToken: "t",
			DBDriver:      DriverSQLite,
			ReportHour:    22,
			SessionTTL:    time.Minute,
		}
	}

	tests := []struct {
		name   string
		modify func(c *Config)
		want   string
	}{
		{"driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"hour", func(c *Config) { c.ReportHour = 24 }, "REPORT_HOUR"},
		{"minute", func(c *Config) { c.ReportMinute = -1 }, "REPORT_MINUTE"},
		{"ttl", func(c *Config) { c.SessionTTL = 0 }, "SESSION_TTL"},
		{"webhook", func(c *Config) { c.WebhookURL = "http://bot.example.com" }, "WEBHOOK_URL"},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)

			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
