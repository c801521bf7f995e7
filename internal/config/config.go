package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the whole application configuration.
// Populated from environment variables, with .env support for local runs.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Loan     LoanConfig
	Room     RoomConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
	TitleTTL time.Duration // cache TTL for title metadata
}

// LoanConfig carries the lending policy. Threaded into the loan ledger at
// construction so there is no global policy state.
type LoanConfig struct {
	DefaultPeriodDays int             // loan period when the title has none
	RenewalCap        int             // max renewals per loan
	DefaultFinePerDay decimal.Decimal // overdue rate when the title has none
}

// RoomConfig carries the study-room booking policy.
type RoomConfig struct {
	MaxAdvanceWindow time.Duration // how far ahead a booking may start
	ClosingHour      int           // bookings must end before this hour (24h clock)
	MinPartySize     int
}

// Load reads configuration from environment variables.
// A .env file is honored when present; production uses the system environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	finePerDay, err := decimal.NewFromString(getEnv("LOAN_FINE_PER_DAY", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOAN_FINE_PER_DAY: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Library Core"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "library"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TitleTTL: time.Duration(getEnvInt("REDIS_TITLE_TTL_MINUTES", 30)) * time.Minute,
		},
		Loan: LoanConfig{
			DefaultPeriodDays: getEnvInt("LOAN_DEFAULT_PERIOD_DAYS", 14),
			RenewalCap:        getEnvInt("LOAN_RENEWAL_CAP", 2),
			DefaultFinePerDay: finePerDay,
		},
		Room: RoomConfig{
			MaxAdvanceWindow: time.Duration(getEnvInt("ROOM_MAX_ADVANCE_HOURS", 3)) * time.Hour,
			ClosingHour:      getEnvInt("ROOM_CLOSING_HOUR", 22),
			MinPartySize:     getEnvInt("ROOM_MIN_PARTY_SIZE", 2),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the core cannot run with.
func (c *Config) Validate() error {
	if c.App.Environment == "production" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD must be set in production")
	}
	if c.Loan.DefaultPeriodDays <= 0 {
		return fmt.Errorf("LOAN_DEFAULT_PERIOD_DAYS must be positive")
	}
	if c.Loan.RenewalCap < 0 {
		return fmt.Errorf("LOAN_RENEWAL_CAP cannot be negative")
	}
	if c.Loan.DefaultFinePerDay.IsNegative() {
		return fmt.Errorf("LOAN_FINE_PER_DAY cannot be negative")
	}
	if c.Room.ClosingHour < 0 || c.Room.ClosingHour > 24 {
		return fmt.Errorf("ROOM_CLOSING_HOUR must be between 0 and 24")
	}
	if c.Room.MinPartySize < 1 {
		return fmt.Errorf("ROOM_MIN_PARTY_SIZE must be at least 1")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
