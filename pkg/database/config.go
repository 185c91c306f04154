package database

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds database connection settings.
type Config struct {
	// URL is a full connection string (DATABASE_URL). When set it wins
	// over the discrete fields.
	URL string

	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// EnvConfigured reports whether the environment carries database settings at
// all. When it does not, the service runs with the in-memory stats store.
func EnvConfigured() bool {
	return os.Getenv("DATABASE_URL") != "" || os.Getenv("DB_HOST") != ""
}

// LoadConfigFromEnv loads database configuration from environment variables:
// DATABASE_URL as a whole, or the discrete DB_* variables.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		URL:             os.Getenv("DATABASE_URL"),
		Host:            getEnvOrDefault("DB_HOST", "localhost"),
		User:            getEnvOrDefault("DB_USER", "clippnj"),
		Password:        os.Getenv("DB_PASSWORD"),
		Database:        getEnvOrDefault("DB_NAME", "clippnj"),
		SSLMode:         getEnvOrDefault("DB_SSL_MODE", "disable"),
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}

	port, err := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Port = port

	maxOpen, err := strconv.Atoi(getEnvOrDefault("DB_MAX_OPEN_CONNS", "10"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}
	cfg.MaxOpenConns = maxOpen

	maxIdle, err := strconv.Atoi(getEnvOrDefault("DB_MAX_IDLE_CONNS", "5"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}
	cfg.MaxIdleConns = maxIdle

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for obvious misconfiguration.
func (c Config) Validate() error {
	if c.MaxOpenConns < 1 {
		return errors.New("max open connections must be at least 1")
	}
	if c.MaxIdleConns < 0 {
		return errors.New("max idle connections must not be negative")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max idle connections must not exceed max open connections")
	}
	if c.URL != "" {
		return nil
	}
	if c.Password == "" {
		return errors.New("DB_PASSWORD is required when DATABASE_URL is not set")
	}
	return nil
}

// DSN returns the connection string for database/sql.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
