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
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Logging
	LogLevel  string
	LogFormat string // json, console

	// Screening
	Screen ScreenConfig

	// External providers
	Yahoo  ProviderConfig
	Finviz ProviderConfig

	// Shared HTTP settings for providers
	HTTP HTTPConfig

	// Cache
	Cache CacheConfig

	// Redis
	Redis RedisConfig

	// Database
	Database DatabaseConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Monitoring
	MetricsEnabled bool
}

// ScreenConfig holds batch screening settings
type ScreenConfig struct {
	Workers        int
	FetchTimeout   time.Duration // per adapter call
	BatchTimeout   time.Duration // 0 = no global timeout
	ConfigFile     string        // YAML with thresholds and source priority
	DirectorsLimit int
}

// ProviderConfig holds settings for one data provider
type ProviderConfig struct {
	BaseURL    string
	ProfileURL string // Yahoo only: HTML profile pages
	RatePerSec float64
	Burst      int
	Enabled    bool
}

// HTTPConfig holds provider HTTP client settings
type HTTPConfig struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	InitialDelay time.Duration
}

// CacheConfig holds provider response cache settings
type CacheConfig struct {
	Backend string // memory, redis, postgres, none
	TTL     time.Duration
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

// SchedulerConfig holds the watchlist warm-up job settings
type SchedulerConfig struct {
	Enabled   bool
	Schedule  string
	Watchlist []string
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		Screen: ScreenConfig{
			Workers:        getEnvAsInt("SCREEN_WORKERS", 4),
			FetchTimeout:   getEnvAsDuration("SCREEN_FETCH_TIMEOUT", "10s"),
			BatchTimeout:   getEnvAsDuration("SCREEN_BATCH_TIMEOUT", "0s"),
			ConfigFile:     getEnv("SCREEN_CONFIG_FILE", ""),
			DirectorsLimit: getEnvAsInt("SCREEN_DIRECTORS_LIMIT", 10),
		},

		Yahoo: ProviderConfig{
			BaseURL:    getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
			ProfileURL: getEnv("YAHOO_PROFILE_URL", "https://finance.yahoo.com"),
			RatePerSec: getEnvAsFloat("YAHOO_RATE_PER_SEC", 5),
			Burst:      getEnvAsInt("YAHOO_RATE_BURST", 5),
			Enabled:    getEnvAsBool("YAHOO_ENABLED", true),
		},

		Finviz: ProviderConfig{
			BaseURL:    getEnv("FINVIZ_BASE_URL", "https://finviz.com"),
			RatePerSec: getEnvAsFloat("FINVIZ_RATE_PER_SEC", 2),
			Burst:      getEnvAsInt("FINVIZ_RATE_BURST", 2),
			Enabled:    getEnvAsBool("FINVIZ_ENABLED", true),
		},

		HTTP: HTTPConfig{
			UserAgent:    getEnv("HTTP_USER_AGENT", "Mozilla/5.0 (compatible; supersignal/1.0)"),
			Timeout:      getEnvAsDuration("HTTP_TIMEOUT", "10s"),
			MaxRetries:   getEnvAsInt("HTTP_MAX_RETRIES", 2),
			InitialDelay: getEnvAsDuration("HTTP_RETRY_DELAY", "500ms"),
		},

		Cache: CacheConfig{
			Backend: strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
			TTL:     getEnvAsDuration("CACHE_TTL", "1h"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Scheduler: SchedulerConfig{
			Enabled:   getEnvAsBool("SCHEDULER_ENABLED", false),
			Schedule:  getEnv("SCHEDULER_SCHEDULE", "0 */30 * * * *"),
			Watchlist: getEnvAsList("SCHEDULER_WATCHLIST"),
		},

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with built-in defaults and no environment overrides.
func Default() *Config {
	cfg := &Config{
		Port:      "8089",
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
		Screen: ScreenConfig{
			Workers:        4,
			FetchTimeout:   10 * time.Second,
			DirectorsLimit: 10,
		},
		Yahoo: ProviderConfig{
			BaseURL:    "https://query2.finance.yahoo.com",
			ProfileURL: "https://finance.yahoo.com",
			RatePerSec: 5,
			Burst:      5,
			Enabled:    true,
		},
		Finviz: ProviderConfig{
			BaseURL:    "https://finviz.com",
			RatePerSec: 2,
			Burst:      2,
			Enabled:    true,
		},
		HTTP: HTTPConfig{
			UserAgent:    "Mozilla/5.0 (compatible; supersignal/1.0)",
			Timeout:      10 * time.Second,
			MaxRetries:   2,
			InitialDelay: 500 * time.Millisecond,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     time.Hour,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Database: DatabaseConfig{
			MaxConns:        5,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
		Scheduler: SchedulerConfig{
			Schedule: "0 */30 * * * *",
		},
		MetricsEnabled: true,
	}
	return cfg
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Screen.Workers < 1 {
		return fmt.Errorf("SCREEN_WORKERS must be >= 1")
	}
	if c.Screen.FetchTimeout <= 0 {
		return fmt.Errorf("SCREEN_FETCH_TIMEOUT must be > 0")
	}
	if c.Screen.BatchTimeout < 0 {
		return fmt.Errorf("SCREEN_BATCH_TIMEOUT must be >= 0")
	}

	if !c.Yahoo.Enabled && !c.Finviz.Enabled {
		return fmt.Errorf("at least one provider must be enabled")
	}

	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("CACHE_BACKEND=redis requires REDIS_ENABLED=true")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("CACHE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, redis, postgres, none")
	}

	if c.Scheduler.Enabled && len(c.Scheduler.Watchlist) == 0 {
		return fmt.Errorf("SCHEDULER_WATCHLIST is required when SCHEDULER_ENABLED=true")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma-separated variable, dropping blanks
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
