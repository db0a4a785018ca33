// Gray Data Core - Generic Data Access Layer
//
// This is the main entry point for the Gray Data demo runner. It wires
// the configuration, database, audit log, and access handler together
// and walks through the CRUD surface against a demo table, leaving an
// audit trail in the configured log file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/gray-data-core/internal/access"
	"github.com/nerrad567/gray-data-core/internal/auditlog"
	"github.com/nerrad567/gray-data-core/internal/infrastructure/config"
	"github.com/nerrad567/gray-data-core/internal/infrastructure/database"
	"github.com/nerrad567/gray-data-core/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean completion, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Data Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Driver:      cfg.Database.Driver,
		Path:        cfg.Database.SQLite.Path,
		WALMode:     cfg.Database.SQLite.WALMode,
		BusyTimeout: cfg.Database.SQLite.BusyTimeout,
		Host:        cfg.Database.Postgres.Host,
		Port:        cfg.Database.Postgres.Port,
		Name:        cfg.Database.Postgres.Name,
		User:        cfg.Database.Postgres.User,
		Password:    cfg.Database.Postgres.Password,
		SSLMode:     cfg.Database.Postgres.SSLMode,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "driver", cfg.Database.Driver)

	// Open the audit log
	audit, err := auditlog.New(auditlog.Config{
		Path:         cfg.Audit.Path,
		MaxSizeBytes: cfg.Audit.MaxSizeBytes,
		MaxBackups:   cfg.Audit.MaxBackups,
	})
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer func() {
		if closeErr := audit.Close(); closeErr != nil {
			log.Error("error closing audit log", "error", closeErr)
		}
	}()
	log.Info("audit log ready", "path", cfg.Audit.Path)

	return demo(ctx, access.New(db, audit, log), cfg.Database.Driver, log)
}

// demo walks the handler through the CRUD surface against a users table.
func demo(ctx context.Context, handler *access.Handler, driver string, log *logging.Logger) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == database.DriverPostgres {
		idColumn = "SERIAL PRIMARY KEY"
	}

	if err := handler.CreateTable(ctx, "users", []access.ColumnDef{
		{Name: "id", Type: idColumn},
		{Name: "name", Type: "VARCHAR(100)"},
		{Name: "email", Type: "VARCHAR(100)"},
		{Name: "age", Type: "INTEGER"},
	}); err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	ids, err := handler.BulkInsert(ctx, "users", []access.Row{
		{"name": "Robert Johnson II", "email": "rj2@example.com", "age": 18},
		{"name": "William Smith II", "email": "ws2@example.com", "age": 15},
	})
	if err != nil {
		return fmt.Errorf("bulk inserting users: %w", err)
	}
	log.Info("inserted records", "ids", ids)

	results, err := handler.SelectRecords(ctx, "users", access.SelectOptions{
		OrderBy: "age DESC",
	})
	if err != nil {
		return fmt.Errorf("selecting users: %w", err)
	}
	fmt.Println(results.Columns)
	for _, row := range results.Rows {
		fmt.Println(row)
	}

	// Catalog query through the raw path; the structured operations
	// cannot express it.
	catalogQuery := "SELECT name FROM sqlite_master WHERE type = 'table'"
	if driver == database.DriverPostgres {
		catalogQuery = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public'"
	}
	tables, err := handler.ExecuteRawQuery(ctx, catalogQuery)
	if err != nil {
		return fmt.Errorf("listing tables: %w", err)
	}
	for _, row := range tables.Rows {
		fmt.Println(row)
	}

	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYDATA_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYDATA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
