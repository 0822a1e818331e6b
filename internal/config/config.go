// Package config loads application settings from environment variables.
// envconfig maps the variables onto the struct fields.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds ALL application settings.
type Config struct {
	// --- Database ---
	// Inside Docker "localhost" is almost always wrong; the default is
	// the compose service name. Override DB_HOST=localhost for local runs.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"ledger"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"investment_ledger"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	// Business timezone; accrual cutoffs and withdrawal windows use it.
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Asia/Karachi"`

	// --- Accrual ---
	AccrualCronSpec     string `envconfig:"ACCRUAL_CRON_SPEC" default:"1 0 * * *"`
	AccrualWeekdaysOnly bool   `envconfig:"ACCRUAL_WEEKDAYS_ONLY" default:"false"`

	// --- Withdrawals ---
	WithdrawalMinAmount    string `envconfig:"WITHDRAWAL_MIN_AMOUNT" default:"30"`
	WithdrawalWeekday      int    `envconfig:"WITHDRAWAL_WEEKDAY" default:"5"`
	WithdrawalCooldownDays int    `envconfig:"WITHDRAWAL_COOLDOWN_DAYS" default:"14"`

	// --- Notifications (optional; empty token disables them) ---
	TelegramBotToken     string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramOperatorChat int64  `envconfig:"TELEGRAM_OPERATOR_CHAT"`

	// --- Metrics ---
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// WithdrawalWeekdayValue converts the numeric setting to a weekday.
func (c *Config) WithdrawalWeekdayValue() time.Weekday {
	return time.Weekday(c.WithdrawalWeekday)
}

// WithdrawalMinAmountValue parses the configured minimum.
func (c *Config) WithdrawalMinAmountValue() (decimal.Decimal, error) {
	return decimal.NewFromString(c.WithdrawalMinAmount)
}

func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.WithdrawalWeekday < 0 || c.WithdrawalWeekday > 6 {
		return fmt.Errorf("WITHDRAWAL_WEEKDAY must be 0..6, got %d", c.WithdrawalWeekday)
	}
	if c.WithdrawalCooldownDays <= 0 {
		return fmt.Errorf("WITHDRAWAL_COOLDOWN_DAYS must be > 0")
	}
	if min, err := c.WithdrawalMinAmountValue(); err != nil || !min.IsPositive() {
		return fmt.Errorf("WITHDRAWAL_MIN_AMOUNT must be a positive amount")
	}
	if c.TelegramBotToken != "" && c.TelegramOperatorChat == 0 {
		return fmt.Errorf("TELEGRAM_OPERATOR_CHAT required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

// Load reads the environment and fills the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
