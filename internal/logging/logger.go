// Package logging owns the process-wide logrus logger and its GORM adapter.
package logging

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds configuration for logging
type LogConfig struct {
	Enabled    bool   // Also write to a rotating file
	FilePath   string // Path to log file
	MaxSize    int    // Megabytes before rotation
	MaxBackups int    // Rotated files to keep
	MaxAge     int    // Days to keep rotated files
	Compress   bool   // Gzip rotated files
	Level      string // trace, debug, info, warn, error, fatal, panic
	JSONFormat bool
}

// Logger is the global logger instance. It starts as a plain logrus logger
// so packages can log before InitLogger runs (e.g. in tests).
var Logger = logrus.New()

// rotator is the open log file, if any
var rotator *lumberjack.Logger

// InitLogger replaces the global logger with one built from config
func InitLogger(config *LogConfig) *logrus.Logger {
	_ = Close()

	logger := logrus.New()
	logger.SetFormatter(newFormatter(config.JSONFormat))

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	var out io.Writer = os.Stdout
	if config.Enabled && config.FilePath != "" {
		rotator = &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		}
		out = io.MultiWriter(os.Stdout, rotator)
	}
	logger.SetOutput(out)

	Logger = logger

	if err != nil {
		Logger.Warnf("Invalid log level '%s', using 'info'", config.Level)
	}
	if rotator != nil {
		Logger.WithFields(logrus.Fields{
			"path":        config.FilePath,
			"max_size_mb": config.MaxSize,
			"max_backups": config.MaxBackups,
			"max_age_d":   config.MaxAge,
		}).Info("File logging enabled")
	} else {
		Logger.Info("File logging disabled, logging to stdout only")
	}

	return Logger
}

// Close flushes and closes the log file opened by InitLogger
func Close() error {
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	return err
}

func newFormatter(json bool) logrus.Formatter {
	if json {
		return &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	}
	return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"}
}

// NewLogConfigFromEnv creates a LogConfig from environment variables
func NewLogConfigFromEnv() *LogConfig {
	return &LogConfig{
		Enabled:    getEnvBool("LOG_FILE_ENABLED", true),
		FilePath:   getEnv("LOG_FILE_PATH", "./logs/futuristic-todo-api.log"),
		MaxSize:    getEnvInt("LOG_MAX_SIZE_MB", 100),
		MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		MaxAge:     getEnvInt("LOG_MAX_AGE_DAYS", 28),
		Compress:   getEnvBool("LOG_COMPRESS", true),
		Level:      getEnv("LOG_LEVEL", "info"),
		JSONFormat: getEnvBool("LOG_JSON_FORMAT", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if parsed, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return parsed
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if parsed, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return parsed
	}
	return defaultValue
}
