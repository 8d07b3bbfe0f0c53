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
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production, test

	// Database (optional: the results store is disabled when URL is empty)
	Database DatabaseConfig

	// Redis (optional: shared rate budget + price history cache)
	Redis RedisConfig

	// External APIs
	SEC   SECConfig
	Yahoo YahooConfig

	// Engine tuning
	Engine EngineConfig

	// Scheduler
	WatchlistPath string
	Workers       int

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

// SECConfig holds settings for the regulator's public endpoints.
// The regulator rejects requests without a descriptive User-Agent.
type SECConfig struct {
	UserAgent    string
	BaseURL      string // bulk ticker directory host
	DataURL      string // per-filer facts host
	MinInterval  time.Duration
	DirectoryTTL time.Duration
	FactsTTL     time.Duration
}

// YahooConfig holds the price/split history collaborator settings
type YahooConfig struct {
	BaseURL      string
	HistoryStart time.Time
	CacheTTL     time.Duration
}

// EngineConfig holds the ratio sanity ceilings
type EngineConfig struct {
	RatioCeiling   float64
	NetDebtCeiling float64
	ResultTTL      time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only caller of os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		SEC: SECConfig{
			UserAgent:    getEnv("SEC_USER_AGENT", "fundscope/1.0 ops@fundscope.dev"),
			BaseURL:      getEnv("SEC_BASE_URL", "https://www.sec.gov"),
			DataURL:      getEnv("SEC_DATA_URL", "https://data.sec.gov"),
			MinInterval:  getEnvAsDuration("SEC_MIN_INTERVAL", "110ms"),
			DirectoryTTL: getEnvAsDuration("DIRECTORY_TTL", "24h"),
			FactsTTL:     getEnvAsDuration("FACTS_TTL", "24h"),
		},

		Yahoo: YahooConfig{
			BaseURL:      getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
			HistoryStart: getEnvAsDate("PRICE_HISTORY_START", "2000-01-01"),
			CacheTTL:     getEnvAsDuration("PRICE_CACHE_TTL", "24h"),
		},

		Engine: EngineConfig{
			RatioCeiling:   getEnvAsFloat("RATIO_CEILING", 500),
			NetDebtCeiling: getEnvAsFloat("NET_DEBT_CEILING", 50),
			ResultTTL:      getEnvAsDuration("RESULT_TTL", "24h"),
		},

		WatchlistPath: getEnv("WATCHLIST_PATH", "watchlist.yaml"),
		Workers:       getEnvAsInt("WORKERS", 4),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// StoreEnabled reports whether a results database is configured
func (c *Config) StoreEnabled() bool {
	return c.Database.URL != ""
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.SEC.UserAgent == "" {
		return fmt.Errorf("SEC_USER_AGENT is required")
	}

	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	if c.SEC.MinInterval <= 0 {
		return fmt.Errorf("SEC_MIN_INTERVAL must be positive")
	}

	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

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

func getEnvAsDate(key string, defaultValue string) time.Time {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	date, err := time.Parse("2006-01-02", valueStr)
	if err != nil {
		date, _ = time.Parse("2006-01-02", defaultValue)
	}

	return date
}
