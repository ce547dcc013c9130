package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration options for the attendance service
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Validation   ValidationConfig
	Notification NotificationConfig
	Report       ReportConfig
	Auth         AuthConfig
	Logging      LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `env:"ATT_SERVER_ADDR"`
	ReadTimeout     time.Duration `env:"ATT_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `env:"ATT_SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `env:"ATT_SERVER_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig holds record-store configuration
type DatabaseConfig struct {
	Dir          string        `env:"ATT_DB_DIR"`
	Filename     string        `env:"ATT_DB_FILENAME"`
	QueryTimeout time.Duration `env:"ATT_DB_QUERY_TIMEOUT"`
	WriteTimeout time.Duration `env:"ATT_DB_WRITE_TIMEOUT"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TaskNameMaxLength  int           `env:"ATT_VALIDATION_TASK_NAME_MAX"`
	MaxSessionDuration time.Duration `env:"ATT_VALIDATION_MAX_SESSION_DURATION"`
}

// NotificationConfig holds the clock-event side channel configuration.
// An empty WebhookURL disables delivery entirely.
type NotificationConfig struct {
	WebhookURL string        `env:"ATT_NOTIFY_WEBHOOK_URL"`
	Timeout    time.Duration `env:"ATT_NOTIFY_TIMEOUT"`
}

// ReportConfig holds read-side configuration
type ReportConfig struct {
	CacheTTL time.Duration `env:"ATT_REPORT_CACHE_TTL"`
}

// AuthConfig holds the development token table: "token:userID" pairs
// separated by commas. Production deployments resolve users remotely.
type AuthConfig struct {
	Tokens map[string]string `env:"ATT_AUTH_TOKENS"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level       string `env:"ATT_LOG_LEVEL"`
	Development bool   `env:"ATT_LOG_DEVELOPMENT"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".attd")

	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Dir:          defaultDBDir,
			Filename:     "attendance.db",
			QueryTimeout: 10 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Validation: ValidationConfig{
			TaskNameMaxLength:  255,
			MaxSessionDuration: 24 * time.Hour,
		},
		Notification: NotificationConfig{
			WebhookURL: "",
			Timeout:    3 * time.Second,
		},
		Report: ReportConfig{
			CacheTTL: 60 * time.Second,
		},
		Auth: AuthConfig{
			Tokens: map[string]string{},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Server configuration
	if addr := os.Getenv("ATT_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if timeout := os.Getenv("ATT_SERVER_READ_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Server.ReadTimeout = d
		}
	}
	if timeout := os.Getenv("ATT_SERVER_WRITE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Server.WriteTimeout = d
		}
	}
	if timeout := os.Getenv("ATT_SERVER_SHUTDOWN_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Server.ShutdownTimeout = d
		}
	}

	// Database configuration
	if dir := os.Getenv("ATT_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("ATT_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if timeout := os.Getenv("ATT_DB_QUERY_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Database.QueryTimeout = d
		}
	}
	if timeout := os.Getenv("ATT_DB_WRITE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Database.WriteTimeout = d
		}
	}

	// Validation configuration
	if maxLen := os.Getenv("ATT_VALIDATION_TASK_NAME_MAX"); maxLen != "" {
		if n, err := strconv.Atoi(maxLen); err == nil {
			c.Validation.TaskNameMaxLength = n
		}
	}
	if maxDur := os.Getenv("ATT_VALIDATION_MAX_SESSION_DURATION"); maxDur != "" {
		if d, err := time.ParseDuration(maxDur); err == nil {
			c.Validation.MaxSessionDuration = d
		}
	}

	// Notification configuration
	if url := os.Getenv("ATT_NOTIFY_WEBHOOK_URL"); url != "" {
		c.Notification.WebhookURL = url
	}
	if timeout := os.Getenv("ATT_NOTIFY_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Notification.Timeout = d
		}
	}

	// Report configuration
	if ttl := os.Getenv("ATT_REPORT_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			c.Report.CacheTTL = d
		}
	}

	// Auth configuration
	if tokens := os.Getenv("ATT_AUTH_TOKENS"); tokens != "" {
		parsed, err := parseTokenTable(tokens)
		if err != nil {
			return err
		}
		c.Auth.Tokens = parsed
	}

	// Logging configuration
	if level := os.Getenv("ATT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if dev := os.Getenv("ATT_LOG_DEVELOPMENT"); dev != "" {
		if b, err := strconv.ParseBool(dev); err == nil {
			c.Logging.Development = b
		}
	}

	return nil
}

// parseTokenTable parses "token:user,token:user" pairs.
func parseTokenTable(raw string) (map[string]string, error) {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, &ConfigError{
				Field:   "auth.tokens",
				Message: fmt.Sprintf("malformed token pair %q (expected token:user)", pair),
			}
		}
		tokens[parts[0]] = parts[1]
	}
	return tokens, nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "server address cannot be empty"}
	}
	if c.Database.Dir == "" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}
	if c.Validation.TaskNameMaxLength < 1 {
		return &ConfigError{Field: "validation.task_name_max_length", Message: "task name maximum length must be at least 1"}
	}
	if c.Validation.MaxSessionDuration <= 0 {
		return &ConfigError{Field: "validation.max_session_duration", Message: "maximum session duration must be positive"}
	}
	if c.Report.CacheTTL < 0 {
		return &ConfigError{Field: "report.cache_ttl", Message: "cache TTL cannot be negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}
