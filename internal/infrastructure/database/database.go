package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver (database/sql adapter)
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Database configuration constants.
const (
	// dirPermissions is the permission mode for the SQLite database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the SQLite database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second
)

// DB wraps a sql.DB handle with Gray Data-specific functionality.
// It provides dialect-aware placeholder rendering, health checks,
// and scoped per-operation connections.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Config contains database configuration options.
// These map to the database section of config.yaml.
type Config struct {
	// Driver selects the backend: DriverSQLite or DriverPostgres.
	Driver string

	// Path is the filesystem path to the SQLite database file.
	// The directory will be created if it doesn't exist. SQLite only.
	Path string

	// WALMode enables Write-Ahead Logging for better concurrent access.
	// SQLite only.
	WALMode bool

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	// SQLite only.
	BusyTimeout int

	// PostgreSQL connection parameters.
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// Open creates a new database handle with the specified configuration.
//
// For SQLite it creates the database directory if needed, opens the file,
// configures WAL mode and busy timeout, and sets file permissions to 0600.
// For PostgreSQL it builds a DSN from the connection parameters and opens
// the pgx stdlib driver.
//
// In both cases the pool is configured so that released connections are
// closed rather than kept idle: every Handler operation acquires a fresh
// scoped connection and releases it on return.
//
// Parameters:
//   - cfg: Database configuration
//
// Returns:
//   - *DB: Connected database wrapper
//   - error: If connection or configuration fails
func Open(cfg Config) (*DB, error) {
	var (
		sqlDB   *sql.DB
		dialect Dialect
		err     error
	)

	switch cfg.Driver {
	case DriverSQLite, "":
		sqlDB, err = openSQLite(cfg)
		dialect = SQLiteDialect{}
	case DriverPostgres:
		sqlDB, err = openPostgres(cfg)
		dialect = PostgresDialect{}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	// No idle connections: each released connection is closed, so every
	// operation runs on a connection of its own.
	sqlDB.SetMaxIdleConns(0)

	db := &DB{
		DB:      sqlDB,
		dialect: dialect,
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	if cfg.Driver != DriverPostgres {
		// Set file permissions (owner read/write only)
		// Ignore error - file might not exist yet on first run, will be set after first write
		_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // Intentional: first run creates file later
	}

	return db, nil
}

// openSQLite opens a SQLite database file, creating its directory if needed.
func openSQLite(cfg Config) (*sql.DB, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// Build connection string with pragmas
	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)

	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer
	sqlDB.SetMaxOpenConns(1)

	return sqlDB, nil
}

// openPostgres opens a PostgreSQL database through the pgx stdlib adapter.
func openPostgres(cfg Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		cfg.SSLMode,
	)

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return sqlDB, nil
}

// Dialect returns the SQL dialect for this database.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Conn returns a dedicated connection scoped to one operation.
// The caller must Close it; with no idle pool, closing releases the
// underlying connection entirely.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - *sql.Conn: Dedicated connection
//   - error: If no connection could be established
func (db *DB) Conn(ctx context.Context) (*sql.Conn, error) {
	conn, err := db.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	return conn, nil
}

// Close closes the database handle gracefully.
// It should be called when the application shuts down.
//
// Returns:
//   - error: If closing fails
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// HealthCheck verifies the database is accessible and functioning.
// It performs a simple query to ensure the connection is alive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Stats returns database connection pool statistics.
// Useful for monitoring and debugging connection issues.
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}
