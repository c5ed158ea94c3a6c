package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config содержит конфигурацию приложения
type Config struct {
	TelegramToken string

	DBDriver string
	DBDSN    string

	ReportChannelID int64 // канал для еженедельных и ежемесячных отчётов
	AlertChatID     int64 // чат для оповещений по секторам

	// Webhook configuration
	WebhookURL  string // URL для webhook (e.g., https://tg.example.com)
	WebhookPath string // Path для webhook endpoint (e.g., /webhook)
	Address     string // Address для HTTP сервера (e.g., 0.0.0.0:8080)

	Timezone     string
	Location     *time.Location
	ReportHour   int
	ReportMinute int

	CoinGeckoURL string
	SectorsFile  string // YAML с переопределением секторов, необязательный
	SessionTTL   time.Duration

	LogFile  string
	LogLevel slog.Level
}

// Load загружает конфигурацию из .env (если есть) и переменных окружения.
// Переменные окружения имеют приоритет над .env.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var errs []error

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBDSN:         getEnv("DB_DSN", "./journal.db"),
		WebhookURL:    strings.TrimRight(os.Getenv("WEBHOOK_URL"), "/"),
		WebhookPath:   getEnv("WEBHOOK_PATH", "/webhook"),
		Address:       getEnv("ADDRESS", "0.0.0.0:8080"),
		Timezone:      getEnv("TIMEZONE", "Asia/Seoul"),
		CoinGeckoURL:  getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		SectorsFile:   os.Getenv("SECTORS_FILE"),
		LogFile:       os.Getenv("LOG_FILE"),
	}

	cfg.ReportChannelID = getInt64(&errs, "REPORT_CHANNEL_ID", 0)
	cfg.AlertChatID = getInt64(&errs, "ALERT_CHAT_ID", 0)
	cfg.ReportHour = int(getInt64(&errs, "REPORT_HOUR", 22))
	cfg.ReportMinute = int(getInt64(&errs, "REPORT_MINUTE", 0))
	cfg.SessionTTL = getDuration(&errs, "SESSION_TTL", 30*time.Minute)

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "DEBUG"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}
	cfg.Location = loc

	if !strings.HasPrefix(cfg.WebhookPath, "/") {
		cfg.WebhookPath = "/" + cfg.WebhookPath
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return cfg, nil
}

// Validate проверяет настройки, нужные для запуска бота
func (c *Config) Validate() error {
	var errs []error

	if c.TelegramToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN not set"))
	}

	if c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver))
	}

	if c.ReportHour < 0 || c.ReportHour > 23 {
		errs = append(errs, fmt.Errorf("REPORT_HOUR must be 0..23, got %d", c.ReportHour))
	}

	if c.ReportMinute < 0 || c.ReportMinute > 59 {
		errs = append(errs, fmt.Errorf("REPORT_MINUTE must be 0..59, got %d", c.ReportMinute))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	if c.WebhookURL != "" && !strings.HasPrefix(c.WebhookURL, "https://") {
		errs = append(errs, errors.New("WEBHOOK_URL must use https"))
	}

	return errors.Join(errs...)
}

// Webhook сообщает, включён ли режим webhook
func (c *Config) Webhook() bool {
	return c.WebhookURL != ""
}

// WebhookEndpoint - полный URL webhook
func (c *Config) WebhookEndpoint() string {
	return c.WebhookURL + c.WebhookPath
}

// LogValue скрывает токен бота в логах
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("db_driver", c.DBDriver),
		slog.String("address", c.Address),
		slog.Bool("webhook", c.Webhook()),
		slog.String("timezone", c.Timezone),
		slog.Int64("report_channel_id", c.ReportChannelID),
		slog.Int64("alert_chat_id", c.AlertChatID),
		slog.Duration("session_ttl", c.SessionTTL),
	)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return def
}

func getInt64(errs *[]error, key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}

	return n
}

func getDuration(errs *[]error, key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}

	return d
}
