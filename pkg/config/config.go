package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional trade ledger source)
	Database DatabaseConfig

	// Redis (report memoization)
	Redis RedisConfig

	// Ledger files
	Ledger LedgerConfig

	// Engine
	EngineConfigPath string

	// Price feed collaborator
	PriceFeed PriceFeedConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	ReportTTL time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a Postgres ledger is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// LedgerConfig holds trade ledger file locations
type LedgerConfig struct {
	TradesPath string // trades.jsonl
	CSVPath    string // optional CSV export
	StatePath  string // dashboard.json
	// StartingBalance is used when the state file does not carry one
	StartingBalance float64
}

// PriceFeedConfig holds the live price collaborator configuration
type PriceFeedConfig struct {
	BaseURL        string // Binance
	CoinGeckoURL   string
	CacheTTL       time.Duration
	RequestsPerSec float64
	Timeout        time.Duration
}

// SchedulerConfig holds cron expressions for background jobs
type SchedulerConfig struct {
	Enabled         bool
	ReportRefresh   string
	PriceCacheSweep string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			Enabled:   getEnvAsBool("REDIS_ENABLED", false),
			ReportTTL: getEnvAsDuration("REDIS_REPORT_TTL", "5m"),
		},

		Ledger: LedgerConfig{
			TradesPath:      getEnv("LEDGER_TRADES_PATH", "trades.jsonl"),
			CSVPath:         getEnv("LEDGER_CSV_PATH", ""),
			StatePath:       getEnv("LEDGER_STATE_PATH", "dashboard.json"),
			StartingBalance: getEnvAsFloat("LEDGER_STARTING_BALANCE", 0),
		},

		EngineConfigPath: getEnv("ENGINE_CONFIG_PATH", ""),

		PriceFeed: PriceFeedConfig{
			BaseURL:        getEnv("PRICE_BASE_URL", "https://api.binance.com"),
			CoinGeckoURL:   getEnv("PRICE_COINGECKO_URL", "https://api.coingecko.com"),
			CacheTTL:       getEnvAsDuration("PRICE_CACHE_TTL", "5m"),
			RequestsPerSec: getEnvAsFloat("PRICE_REQUESTS_PER_SEC", 5),
			Timeout:        getEnvAsDuration("PRICE_TIMEOUT", "10s"),
		},

		Scheduler: SchedulerConfig{
			Enabled:         getEnvAsBool("SCHEDULER_ENABLED", true),
			ReportRefresh:   getEnv("SCHEDULER_REPORT_REFRESH", "0 */5 * * * *"),
			PriceCacheSweep: getEnv("SCHEDULER_PRICE_SWEEP", "0 * * * * *"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Ledger.StartingBalance < 0 {
		return fmt.Errorf("LEDGER_STARTING_BALANCE must be >= 0")
	}

	if c.PriceFeed.RequestsPerSec <= 0 {
		return fmt.Errorf("PRICE_REQUESTS_PER_SEC must be > 0")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
