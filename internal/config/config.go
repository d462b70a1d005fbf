// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront
type Config struct {
	App       AppConfig
	Server    ServerConfig
	API       APIConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Gateway   GatewayConfig
	Catalog   CatalogConfig
	Chat      ChatConfig
	Checkout  CheckoutConfig
	Security  SecurityConfig
	Session   SessionConfig
	Telemetry TelemetryConfig
	Receipt   ReceiptConfig
	Logging   LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains local HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// APIConfig describes the remote bakery REST API
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// DatabaseConfig contains the checkout journal database configuration.
// An empty Host disables the journal.
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// GatewayConfig contains the hosted payment widget configuration
type GatewayConfig struct {
	ClientKey    string
	ScriptURL    string
	IsProduction bool
}

// CatalogConfig controls the shared product and category cache
type CatalogConfig struct {
	CacheTTL time.Duration
}

// ChatConfig contains the polling cadence of the chat screen
type ChatConfig struct {
	UsersInterval    time.Duration
	MessagesInterval time.Duration
	RefetchDelay     time.Duration
}

// CheckoutConfig controls the order submission pipeline
type CheckoutConfig struct {
	Compensate bool
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	SubmitGuardWindow  time.Duration
}

// SessionConfig controls device cookies and persisted auth sessions
type SessionConfig struct {
	CookieName   string
	CookieMaxAge int
	TTL          time.Duration
	IdleTTL      time.Duration
	SecureCookie bool
}

// TelemetryConfig controls tracing
type TelemetryConfig struct {
	TracingEnabled bool
	JaegerEndpoint string
}

// ReceiptConfig holds the store details printed on receipts
type ReceiptConfig struct {
	StoreName    string
	StoreAddress string
	StorePhone   string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Bakery Storefront"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:         getEnv("APP_PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		API: APIConfig{
			BaseURL:   strings.TrimSuffix(getEnv("API_BASE_URL", "http://localhost:8000/api"), "/"),
			Timeout:   getEnvAsDuration("API_TIMEOUT", 30*time.Second),
			UserAgent: getEnv("API_USER_AGENT", "bakery-storefront/1.0"),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", ""),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "bakery_journal"),
			User:         getEnv("DB_USER", "bakery"),
			Password:     getEnv("DB_PASSWORD", ""),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Gateway: GatewayConfig{
			ClientKey:    getEnv("MIDTRANS_CLIENT_KEY", ""),
			ScriptURL:    getEnv("MIDTRANS_SNAP_URL", "https://app.sandbox.midtrans.com/snap/snap.js"),
			IsProduction: getEnvAsBool("MIDTRANS_PRODUCTION", false),
		},
		Catalog: CatalogConfig{
			CacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 30*time.Second),
		},
		Chat: ChatConfig{
			UsersInterval:    getEnvAsDuration("CHAT_USERS_INTERVAL", 30*time.Second),
			MessagesInterval: getEnvAsDuration("CHAT_MESSAGES_INTERVAL", 5*time.Second),
			RefetchDelay:     getEnvAsDuration("CHAT_REFETCH_DELAY", time.Second),
		},
		Checkout: CheckoutConfig{
			Compensate: getEnvAsBool("CHECKOUT_COMPENSATE", false),
		},
		Security: SecurityConfig{
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}),
			SubmitGuardWindow:  getEnvAsDuration("SUBMIT_GUARD_WINDOW", 30*time.Second),
		},
		Session: SessionConfig{
			CookieName:   getEnv("SESSION_COOKIE_NAME", "bakery_device"),
			CookieMaxAge: getEnvAsInt("SESSION_COOKIE_MAX_AGE", 30*24*3600),
			TTL:          getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
			IdleTTL:      getEnvAsDuration("SESSION_IDLE_TTL", time.Hour),
			SecureCookie: getEnvAsBool("SESSION_SECURE_COOKIE", false),
		},
		Telemetry: TelemetryConfig{
			TracingEnabled: getEnvAsBool("TRACING_ENABLED", false),
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Receipt: ReceiptConfig{
			StoreName:    getEnv("RECEIPT_STORE_NAME", "Bakery"),
			StoreAddress: getEnv("RECEIPT_STORE_ADDRESS", ""),
			StorePhone:   getEnv("RECEIPT_STORE_PHONE", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.Chat.UsersInterval <= 0 || c.Chat.MessagesInterval <= 0 {
		return fmt.Errorf("chat poll intervals must be positive")
	}
	if c.Chat.MessagesInterval >= c.Chat.UsersInterval {
		return fmt.Errorf("CHAT_MESSAGES_INTERVAL must be shorter than CHAT_USERS_INTERVAL")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// JournalEnabled reports whether a journal database is configured
func (c *Config) JournalEnabled() bool {
	return c.Database.Host != ""
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	return defaultValue
}
