package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Curve engine
	Curve CurveConfig

	// FX rate feed
	FX FXConfig

	// Curve export
	Export ExportConfig

	// Feed definitions for the full-year merge
	FeedsPath string

	// Logging
	LogLevel     string
	LogFormat    string
	LogFile      string
	LogMaxSizeMB int
	LogMaxAgeDay int

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
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

// CurveConfig holds curve build parameters
type CurveConfig struct {
	TargetYear     int    // 0 = current year
	TargetCurrency string // e.g. EUR
	TradeDate      string // YYYY-MM-DD override for the quote source, empty = last business day

	// YearSupersedesActive lets an active yearly contract win over active quarter/season contracts
	YearSupersedesActive bool

	Workers       int
	MinGateScore  float64
	ReadCacheTTL  time.Duration
	QueryTimeout  time.Duration
	BuildSchedule string
}

// FXConfig holds the exchange rate feed configuration
type FXConfig struct {
	BaseURL      string
	APIKey       string
	FromCurrency string
	ToCurrency   string
	RatePerSec   int
}

// ExportConfig holds parquet export configuration
type ExportConfig struct {
	Dir         string
	Compression string // snappy, gzip, none
	S3Bucket    string
	S3Region    string
	S3Prefix    string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Curve: CurveConfig{
			TargetYear:           getEnvAsInt("CURVE_TARGET_YEAR", 0),
			TargetCurrency:       strings.ToUpper(getEnv("CURVE_TARGET_CURRENCY", "EUR")),
			TradeDate:            getEnv("CURVE_TRADE_DATE", ""),
			YearSupersedesActive: getEnvAsBool("CURVE_YEAR_SUPERSEDES_ACTIVE", false),
			Workers:              getEnvAsInt("CURVE_WORKERS", 4),
			MinGateScore:         getEnvAsFloat("CURVE_MIN_GATE_SCORE", 0.8),
			ReadCacheTTL:         getEnvAsDuration("CURVE_READ_CACHE_TTL", "10m"),
			QueryTimeout:         getEnvAsDuration("CURVE_QUERY_TIMEOUT", "2m"),
			BuildSchedule:        getEnv("CURVE_BUILD_SCHEDULE", "0 0 7 * * 1-5"),
		},

		FX: FXConfig{
			BaseURL:      getEnv("FX_BASE_URL", "https://api.frankfurter.app"),
			APIKey:       getEnv("FX_API_KEY", ""),
			FromCurrency: strings.ToUpper(getEnv("FX_FROM_CURRENCY", "USD")),
			ToCurrency:   strings.ToUpper(getEnv("FX_TO_CURRENCY", "EUR")),
			RatePerSec:   getEnvAsInt("FX_RATE_PER_SEC", 2),
		},

		Export: ExportConfig{
			Dir:         getEnv("EXPORT_DIR", "./exports"),
			Compression: strings.ToLower(getEnv("EXPORT_COMPRESSION", "snappy")),
			S3Bucket:    getEnv("EXPORT_S3_BUCKET", ""),
			S3Region:    getEnv("EXPORT_S3_REGION", "eu-central-1"),
			S3Prefix:    getEnv("EXPORT_S3_PREFIX", "forward-curves"),
		},

		FeedsPath: getEnv("FEEDS_PATH", "configs/feeds.yaml"),

		// Logging
		LogLevel:     getEnv("LOG_LEVEL", "debug"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		LogFile:      getEnv("LOG_FILE", ""),
		LogMaxSizeMB: getEnvAsInt("LOG_MAX_SIZE_MB", 100),
		LogMaxAgeDay: getEnvAsInt("LOG_MAX_AGE_DAYS", 14),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// TargetYear resolves the configured target year against now
func (c *Config) TargetYear(now time.Time) int {
	if c.Curve.TargetYear > 0 {
		return c.Curve.TargetYear
	}
	return now.Year()
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Curve.TargetYear < 0 {
		return fmt.Errorf("CURVE_TARGET_YEAR must not be negative")
	}

	if len(c.Curve.TargetCurrency) != 3 {
		return fmt.Errorf("CURVE_TARGET_CURRENCY must be a 3-letter code, got %q", c.Curve.TargetCurrency)
	}

	if c.Curve.TradeDate != "" {
		if _, err := time.Parse("2006-01-02", c.Curve.TradeDate); err != nil {
			return fmt.Errorf("CURVE_TRADE_DATE must be YYYY-MM-DD: %w", err)
		}
	}

	if c.Curve.Workers < 1 {
		return fmt.Errorf("CURVE_WORKERS must be at least 1")
	}

	switch c.Export.Compression {
	case "snappy", "gzip", "none":
	default:
		return fmt.Errorf("EXPORT_COMPRESSION must be one of: snappy, gzip, none")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
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
