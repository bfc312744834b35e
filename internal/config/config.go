// Package config loads server and database settings. Values are layered:
// built-in defaults, then an optional TOML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultConfigFile      = "config.toml"
	DefaultPort            = "8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultSQLitePath      = "todos.db"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the full configuration for the API server
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string   `toml:"port"`
	Mode            string   `toml:"mode"` // gin mode: debug, release, test
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	UseMemory       bool     `toml:"use_memory_storage"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver       string   `toml:"driver"` // sqlite or postgres
	Path         string   `toml:"path"`   // SQLite file path
	Host         string   `toml:"host"`
	Port         string   `toml:"port"`
	User         string   `toml:"user"`
	Password     string   `toml:"password"`
	Name         string   `toml:"name"`
	SSLMode      string   `toml:"ssl_mode"`
	MaxOpenConns int      `toml:"max_open_conns"`
	MaxIdleConns int      `toml:"max_idle_conns"`
	LogLevel     string   `toml:"log_level"` // GORM log level
	SlowQuery    Duration `toml:"slow_query"`
	AutoMigrate  bool     `toml:"auto_migrate"`
}

// Duration wraps time.Duration so TOML files can use strings like "10s"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			Mode:            "release",
			ShutdownTimeout: Duration{DefaultShutdownTimeout},
		},
		Database: DatabaseConfig{
			Driver:       DriverSQLite,
			Path:         DefaultSQLitePath,
			Host:         "localhost",
			Port:         "5432",
			User:         "postgres",
			Password:     "postgres",
			Name:         "todos",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			LogLevel:     "warn",
			SlowQuery:    Duration{200 * time.Millisecond},
			AutoMigrate:  true,
		},
	}
}

// Load builds the configuration from defaults, the TOML file named by
// CONFIG_FILE (default config.toml), and environment overrides.
// A missing file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	path := getEnv("CONFIG_FILE", DefaultConfigFile)
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Mode = getEnv("GIN_MODE", c.Server.Mode)
	c.Server.ShutdownTimeout.Duration = getEnvDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout.Duration)
	c.Server.UseMemory = getEnvBool("USE_MEMORY_STORAGE", c.Server.UseMemory)

	db := &c.Database
	db.Driver = getEnv("DB_DRIVER", db.Driver)
	db.Path = getEnv("DB_PATH", db.Path)
	db.Host = getEnv("DB_HOST", db.Host)
	db.Port = getEnv("DB_PORT", db.Port)
	db.User = getEnv("DB_USER", db.User)
	db.Password = getEnv("DB_PASSWORD", db.Password)
	db.Name = getEnv("DB_NAME", db.Name)
	db.SSLMode = getEnv("DB_SSL_MODE", db.SSLMode)
	db.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", db.MaxOpenConns)
	db.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", db.MaxIdleConns)
	db.LogLevel = getEnv("DB_LOG_LEVEL", db.LogLevel)
	db.SlowQuery.Duration = getEnvDuration("DB_SLOW_QUERY", db.SlowQuery.Duration)
	db.AutoMigrate = getEnvBool("AUTO_MIGRATE", db.AutoMigrate)
}

// Validate checks for settings that cannot work
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port must not be empty")
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path must not be empty for sqlite")
		}
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database host and name are required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q (want %s or %s)",
			c.Database.Driver, DriverSQLite, DriverPostgres)
	}
	return nil
}

// PostgresDSN returns the key/value DSN used by the GORM postgres driver
func (d *DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// PostgresURL returns the URL form used by lib/pq and golang-migrate
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
