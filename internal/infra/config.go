package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"playhall"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"playhall"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"playhall"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	// Redis (wager rate limiting; empty disables the limiter)
	RedisURL string `env:"REDIS_URL"`

	// JWT
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTPlayerExpiry time.Duration `env:"JWT_PLAYER_EXPIRY" envDefault:"24h"`
	JWTAdminExpiry  time.Duration `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server ports
	APIPort     int `env:"API_PORT" envDefault:"3200"`
	MetricsPort int `env:"METRICS_PORT" envDefault:"9200"`

	// Kafka (outbox consumer)
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// Settlement tuning
	PlatformTZ        string        `env:"PLATFORM_TZ" envDefault:"UTC"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SettlementRetries int           `env:"SETTLEMENT_RETRIES" envDefault:"3"`

	// Rate limiting
	WagerRateLimit  int           `env:"WAGER_RATE_LIMIT" envDefault:"30"`
	WagerRateWindow time.Duration `env:"WAGER_RATE_WINDOW" envDefault:"1m"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure or unusable configuration.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass the JWT checks (local dev only).
func (c *Config) Validate() error {
	if c.SettlementRetries < 1 {
		return fmt.Errorf("SETTLEMENT_RETRIES must be at least 1, got %d", c.SettlementRetries)
	}
	if _, err := LoadPlatformLocation(c.PlatformTZ); err != nil {
		return err
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// LoadPlatformLocation resolves the platform reference time zone used for
// calendar-day limit aggregation.
func LoadPlatformLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid PLATFORM_TZ %q: %w", name, err)
	}
	return loc, nil
}
