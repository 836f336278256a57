package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	S3       S3Config
	Seed     SeedConfig
	Redis    RedisConfig
	Notify   NotifyConfig
	Pricing  PricingConfig
	Delivery DeliveryConfig
	Timeouts TimeoutConfig
	Payment  PaymentConfig
	CORS     CORSConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds token signing and admin bootstrap configuration.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// S3Config holds AWS S3 configuration for seed files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "seed/")
}

// SeedConfig controls catalog seeding at startup.
type SeedConfig struct {
	Enabled bool
	File    string
}

// RedisConfig holds the catalog cache configuration.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NotifyConfig holds the notification broker configuration.
// An empty BrokerURL means notifications are only logged.
type NotifyConfig struct {
	BrokerURL   string
	Exchange    string
	AdminEmails []string
}

// PricingConfig holds pricing parameters.
type PricingConfig struct {
	TaxRate decimal.Decimal
}

// DeliveryConfig holds the delivery fee schedule and ready-time estimates.
type DeliveryConfig struct {
	BaseFee            decimal.Decimal
	FreeRadiusMiles    decimal.Decimal
	PerMileFee         decimal.Decimal
	MaxDeliveryMiles   decimal.Decimal
	FixedDistanceMiles decimal.Decimal
	DeliveryReadyAfter time.Duration
	PickupReadyAfter   time.Duration
}

// TimeoutConfig bounds calls to external collaborators.
type TimeoutConfig struct {
	Store   time.Duration
	Payment time.Duration
	Notify  time.Duration
}

// PaymentConfig holds per-provider credentials. A provider without an
// endpoint or key is disabled.
type PaymentConfig struct {
	StripeEndpoint string
	StripeKey      string
	SquareEndpoint string
	SquareKey      string
	PayPalEndpoint string
	PayPalKey      string
}

// CORSConfig holds the allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from a .env file, if present, and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "pizzeria"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTL:      getEnvAsDuration("JWT_TTL", 15*time.Minute),
			AdminEmail:    getEnv("ADMIN_EMAIL", ""),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "seed/"),
		},
		Seed: SeedConfig{
			Enabled: getEnvAsBool("SEED_ENABLED", true),
			File:    getEnv("SEED_FILE", "data/seed/menu.json"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("REDIS_CATALOG_TTL", 5*time.Minute),
		},
		Notify: NotifyConfig{
			BrokerURL: getEnv("NOTIFY_BROKER_URL", ""),
			Exchange:  getEnv("NOTIFY_EXCHANGE", "notifications"),
			AdminEmails: getEnvAsSlice("NOTIFY_ADMIN_EMAILS", []string{
				"admin@nypizzawoodstock.com",
				"kitchen@nypizzawoodstock.com",
				"manager@nypizzawoodstock.com",
			}),
		},
		Pricing: PricingConfig{
			TaxRate: getEnvAsDecimal("TAX_RATE", "0.085"),
		},
		Delivery: DeliveryConfig{
			BaseFee:            getEnvAsDecimal("DELIVERY_BASE_FEE", "4.00"),
			FreeRadiusMiles:    getEnvAsDecimal("DELIVERY_FREE_RADIUS_MILES", "5"),
			PerMileFee:         getEnvAsDecimal("DELIVERY_PER_MILE_FEE", "2.00"),
			MaxDeliveryMiles:   getEnvAsDecimal("DELIVERY_MAX_MILES", "9"),
			FixedDistanceMiles: getEnvAsDecimal("DELIVERY_FIXED_DISTANCE_MILES", "3"),
			DeliveryReadyAfter: getEnvAsDuration("DELIVERY_READY_AFTER", 45*time.Minute),
			PickupReadyAfter:   getEnvAsDuration("PICKUP_READY_AFTER", 25*time.Minute),
		},
		Timeouts: TimeoutConfig{
			Store:   getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
			Payment: getEnvAsDuration("PAYMENT_TIMEOUT", 10*time.Second),
			Notify:  getEnvAsDuration("NOTIFY_TIMEOUT", 3*time.Second),
		},
		Payment: PaymentConfig{
			StripeEndpoint: getEnv("STRIPE_ENDPOINT", ""),
			StripeKey:      getEnv("STRIPE_SECRET_KEY", ""),
			SquareEndpoint: getEnv("SQUARE_ENDPOINT", ""),
			SquareKey:      getEnv("SQUARE_ACCESS_TOKEN", ""),
			PayPalEndpoint: getEnv("PAYPAL_ENDPOINT", ""),
			PayPalKey:      getEnv("PAYPAL_ACCESS_TOKEN", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ORIGINS", []string{"*"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT TTL must be positive")
	}

	if (c.Auth.AdminEmail == "") != (c.Auth.AdminPassword == "") {
		return fmt.Errorf("admin email and password must be set together")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	if c.Pricing.TaxRate.IsNegative() || c.Pricing.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("invalid tax rate: %s (must be in [0, 1))", c.Pricing.TaxRate)
	}

	d := c.Delivery
	if d.BaseFee.IsNegative() || d.PerMileFee.IsNegative() {
		return fmt.Errorf("delivery fees must not be negative")
	}
	if d.FreeRadiusMiles.IsNegative() || d.MaxDeliveryMiles.LessThan(d.FreeRadiusMiles) {
		return fmt.Errorf("delivery max miles (%s) must be at least the free radius (%s)", d.MaxDeliveryMiles, d.FreeRadiusMiles)
	}
	if d.FixedDistanceMiles.IsNegative() {
		return fmt.Errorf("delivery fixed distance must not be negative")
	}

	if c.Timeouts.Store <= 0 || c.Timeouts.Payment <= 0 || c.Timeouts.Notify <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(defaultValue)
}

// getEnvAsSlice splits a comma separated variable, dropping empty entries.
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
