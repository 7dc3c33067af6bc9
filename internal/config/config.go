// Package config provides configuration management for the cars API server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultEventsEnabled   = true
	DefaultStoreDriver     = StoreDriverSQLite
	DefaultDBPath          = "cars.db"
	DefaultEnvFile         = ".env"
)

// Supported store drivers.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvEventsEnabled   = "APP_EVENTS_ENABLED"
	EnvStoreDriver     = "APP_STORE_DRIVER"
	EnvDBPath          = "APP_DB_PATH"
	EnvEnvFile         = "APP_ENV_FILE"
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
	EventsEnabled   bool

	// Storage settings.
	StoreDriver string
	DBPath      string
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidStoreDriver     = errors.New("store driver must be one of: sqlite, memory")
	ErrDBPathRequired         = errors.New("database path must be set when store driver is sqlite")
)

// Load reads configuration from an optional dotenv file and environment
// variables with defaults. Variables already set in the environment win over
// the dotenv file.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := Default()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		EventsEnabled:   DefaultEventsEnabled,
		StoreDriver:     DefaultStoreDriver,
		DBPath:          DefaultDBPath,
	}
}

// loadEnvFile loads the dotenv file named by APP_ENV_FILE, if it exists.
func loadEnvFile() error {
	path := os.Getenv(EnvEnvFile)
	if path == "" {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}

	return nil
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if err := c.loadServerEnv(); err != nil {
		return err
	}

	c.loadStoreEnv()

	return nil
}

// loadServerEnv loads server-related environment variables.
func (c *Config) loadServerEnv() error {
	if val := os.Getenv(EnvServerPort); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvServerPort, err)
		}
		c.ServerPort = port
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetricsEnabled, err)
		}
		c.MetricsEnabled = enabled
	}

	if val := os.Getenv(EnvEventsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvEventsEnabled, err)
		}
		c.EventsEnabled = enabled
	}

	return nil
}

// loadStoreEnv loads storage-related environment variables.
func (c *Config) loadStoreEnv() {
	if val := os.Getenv(EnvStoreDriver); val != "" {
		c.StoreDriver = val
	}

	if val := os.Getenv(EnvDBPath); val != "" {
		c.DBPath = val
	}
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateStore()
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

// validateStore validates storage configuration.
func (c *Config) validateStore() error {
	switch c.StoreDriver {
	case StoreDriverSQLite:
		if c.DBPath == "" {
			return ErrDBPathRequired
		}
	case StoreDriverMemory:
	default:
		return ErrInvalidStoreDriver
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
