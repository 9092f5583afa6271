package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store modes
const (
	StoreModeDirect = "direct"
	StoreModeHTTP   = "http"
)

// Fusion keys
const (
	FusionKeyTitle     = "title"
	FusionKeyTitleYear = "title_year"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Store      StoreConfig
	LLM        LLMConfig
	Cache      CacheConfig
	Fusion     FusionConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence over the fields below
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	MoviesTable        string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	GinMode         string
	AllowedOrigins  string
	ShutdownTimeout time.Duration
}

// StoreConfig selects how filter executors reach the movie store
type StoreConfig struct {
	Mode    string // "direct" or "http"
	APIBase string // per-filter endpoint base when Mode is "http"
	Timeout time.Duration
}

// LLMConfig holds the OpenAI-compatible inference endpoint configuration
type LLMConfig struct {
	APIKey      string
	APIBase     string
	ChatModel   string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Enabled     bool
}

// CacheConfig holds Redis result cache configuration
type CacheConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether a Redis address is configured
func (c CacheConfig) Enabled() bool {
	return c.Address != ""
}

// FusionConfig holds result fusion configuration
type FusionConfig struct {
	FilterTimeout time.Duration
	Key           string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "movies"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
			MoviesTable:        getEnv("PG_MOVIES_TABLE", "movies"),
		},
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:         getEnv("GIN_MODE", "release"),
			AllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
			ShutdownTimeout: getEnvAsSeconds("SERVER_SHUTDOWN_TIMEOUT", 10),
		},
		Store: StoreConfig{
			Mode:    strings.ToLower(getEnv("STORE_MODE", StoreModeDirect)),
			APIBase: strings.TrimRight(getEnv("STORE_API_BASE", "http://localhost:8080/api/v1"), "/"),
			Timeout: getEnvAsSeconds("STORE_TIMEOUT", 10),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("LLM_API_KEY", ""),
			APIBase:     strings.TrimRight(getEnv("LLM_API_BASE", "http://localhost:11434/v1"), "/"),
			ChatModel:   getEnv("LLM_CHAT_MODEL", "llama3.2:1b"),
			Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0),
			MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 1024),
			Timeout:     getEnvAsSeconds("LLM_TIMEOUT", 30),
			Enabled:     getEnvAsBool("LLM_ENABLED", true),
		},
		Cache: CacheConfig{
			Address:  getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsSeconds("CACHE_TTL", 300),
		},
		Fusion: FusionConfig{
			FilterTimeout: getEnvAsSeconds("FUSION_FILTER_TIMEOUT", 10),
			Key:           strings.ToLower(getEnv("FUSION_KEY", FusionKeyTitle)),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Store.Mode {
	case StoreModeDirect, StoreModeHTTP:
	default:
		return fmt.Errorf("invalid STORE_MODE %q, must be one of: %s, %s", c.Store.Mode, StoreModeDirect, StoreModeHTTP)
	}

	switch c.Fusion.Key {
	case FusionKeyTitle, FusionKeyTitleYear:
	default:
		return fmt.Errorf("invalid FUSION_KEY %q, must be one of: %s, %s", c.Fusion.Key, FusionKeyTitle, FusionKeyTitleYear)
	}

	if c.Store.Mode == StoreModeHTTP && c.Store.APIBase == "" {
		return fmt.Errorf("STORE_API_BASE is required when STORE_MODE=%s", StoreModeHTTP)
	}

	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
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
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
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
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSeconds(key string, defaultSeconds int) time.Duration {
	seconds := getEnvAsInt(key, defaultSeconds)
	if seconds <= 0 {
		seconds = defaultSeconds
	}
	return time.Duration(seconds) * time.Second
}
