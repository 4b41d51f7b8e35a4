package config

import (
	"fmt"
	"time"

	"github.com/toymall/user-service/internal/auth"
	pkgconfig "github.com/toymall/user-service/pkg/config"
	"github.com/toymall/user-service/pkg/database"
	"github.com/toymall/user-service/pkg/tracing"
)

// defaultJWTSecret is a development-only placeholder and fails validation in
// any other environment.
const defaultJWTSecret = "insecure-development-secret-32-bytes!"

// Config holds all configuration for the user service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"USER_HTTP_PORT" envDefault:"8006"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// PostgreSQL
	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER" envDefault:"toymall"`
	PostgresPass     string        `env:"POSTGRES_PASSWORD" envDefault:"toymall_secret"`
	PostgresDB       string        `env:"USER_DB_NAME" envDefault:"user_db"`
	PostgresSSL      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	PostgresMinConns int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	PostgresConnLife time.Duration `env:"POSTGRES_CONN_LIFETIME" envDefault:"30m"`
	PostgresConnIdle time.Duration `env:"POSTGRES_CONN_IDLE" envDefault:"5m"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret        string        `env:"JWT_SECRET" envDefault:"insecure-development-secret-32-bytes!"`
	JWTIssuer        string        `env:"JWT_ISSUER" envDefault:"user-service"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"168h"`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load user config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration contract. Token lifetime invariants are
// enforced here at load, not per-token.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	// Outside development an explicitly set secret is required.
	if c.Environment != "development" && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
	}

	if err := c.JWT().Validate(); err != nil {
		return err
	}

	return nil
}

// JWT returns the token provider configuration.
func (c *Config) JWT() auth.Config {
	return auth.Config{
		Secret:     c.JWTSecret,
		Issuer:     c.JWTIssuer,
		AccessTTL:  c.JWTAccessExpiry,
		RefreshTTL: c.JWTRefreshExpiry,
	}
}

// Postgres returns the connection pool configuration.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.PostgresMaxConns,
		MinConns:        c.PostgresMinConns,
		MaxConnLifetime: c.PostgresConnLife,
		MaxConnIdleTime: c.PostgresConnIdle,
	}
}

// Tracing returns the tracer initialization configuration.
func (c *Config) Tracing(serviceVersion string) tracing.Config {
	return tracing.Config{
		ServiceName:    "user-service",
		ServiceVersion: serviceVersion,
		Environment:    c.Environment,
		OTLPEndpoint:   c.TracingEndpoint,
		SampleRate:     c.TracingSampleRate,
		Enabled:        c.TracingEnabled,
	}
}
