package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Gray Data Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Audit    AuditConfig    `yaml:"audit"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig selects and configures the database backend.
type DatabaseConfig struct {
	// Driver is the database backend: "sqlite" or "postgres".
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig contains SQLite database settings.
type SQLiteConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// PostgresConfig contains PostgreSQL connection settings.
//
// Credentials should be supplied through environment variables
// (GRAYDATA_POSTGRES_USER, GRAYDATA_POSTGRES_PASSWORD) rather than
// committed to the config file.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// AuditConfig contains audit log file settings.
type AuditConfig struct {
	// Path is the filesystem path to the active audit log file.
	Path string `yaml:"path"`

	// MaxSizeBytes is the rotation threshold for the active file.
	// Default: 5 MiB.
	MaxSizeBytes int64 `yaml:"max_size_bytes"`

	// MaxBackups is the number of rotated generations to retain.
	// Default: 3.
	MaxBackups int `yaml:"max_backups"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYDATA_SECTION_KEY
// For example: GRAYDATA_DATABASE_DRIVER, GRAYDATA_POSTGRES_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default audit log bounds, matching the documented rotation contract.
const (
	defaultAuditMaxSize = 5 * 1024 * 1024
	defaultAuditBackups = 3
	defaultBusyTimeout  = 5
	defaultPostgresPort = 5432
	defaultSQLitePath   = "./data/graydata.db"
	defaultAuditLogPath = "./log/db_log.csv"
)

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path:        defaultSQLitePath,
				WALMode:     true,
				BusyTimeout: defaultBusyTimeout,
			},
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    defaultPostgresPort,
				SSLMode: "disable",
			},
		},
		Audit: AuditConfig{
			Path:         defaultAuditLogPath,
			MaxSizeBytes: defaultAuditMaxSize,
			MaxBackups:   defaultAuditBackups,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYDATA_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("GRAYDATA_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("GRAYDATA_SQLITE_PATH"); v != "" {
		cfg.Database.SQLite.Path = v
	}

	// Postgres connection parameters
	if v := os.Getenv("GRAYDATA_POSTGRES_HOST"); v != "" {
		cfg.Database.Postgres.Host = v
	}
	if v := os.Getenv("GRAYDATA_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Postgres.Port = port
		}
	}
	if v := os.Getenv("GRAYDATA_POSTGRES_NAME"); v != "" {
		cfg.Database.Postgres.Name = v
	}
	if v := os.Getenv("GRAYDATA_POSTGRES_USER"); v != "" {
		cfg.Database.Postgres.User = v
	}
	if v := os.Getenv("GRAYDATA_POSTGRES_PASSWORD"); v != "" {
		cfg.Database.Postgres.Password = v
	}

	// Audit log
	if v := os.Getenv("GRAYDATA_AUDIT_PATH"); v != "" {
		cfg.Audit.Path = v
	}

	// Logging
	if v := os.Getenv("GRAYDATA_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			errs = append(errs, "database.sqlite.path is required")
		}
	case "postgres":
		if c.Database.Postgres.Host == "" {
			errs = append(errs, "database.postgres.host is required")
		}
		if c.Database.Postgres.Port < 1 || c.Database.Postgres.Port > 65535 {
			errs = append(errs, "database.postgres.port must be between 1 and 65535")
		}
		if c.Database.Postgres.Name == "" {
			errs = append(errs, "database.postgres.name is required")
		}
		if c.Database.Postgres.User == "" {
			errs = append(errs, "database.postgres.user is required (set GRAYDATA_POSTGRES_USER)")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be sqlite or postgres, got %q", c.Database.Driver))
	}

	if c.Audit.Path == "" {
		errs = append(errs, "audit.path is required")
	}
	if c.Audit.MaxSizeBytes <= 0 {
		errs = append(errs, "audit.max_size_bytes must be positive")
	}
	if c.Audit.MaxBackups < 1 {
		errs = append(errs, "audit.max_backups must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
