package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestOpen verifies database connection establishment.
func TestOpen(t *testing.T) {
	t.Run("creates database file", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		db := openTestDB(t, dbPath)

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}

		if err := db.HealthCheck(context.Background()); err != nil {
			t.Errorf("HealthCheck() on fresh database error = %v", err)
		}
	})

	t.Run("creates directory if not exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

		openTestDB(t, dbPath)

		dir := filepath.Dir(dbPath)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Error("database directory was not created")
		}
	})

	t.Run("empty driver defaults to sqlite", func(t *testing.T) {
		tmpDir := t.TempDir()
		db, err := Open(Config{
			Path:        filepath.Join(tmpDir, "test.db"),
			BusyTimeout: 5,
		})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if db.Dialect().Name() != DriverSQLite {
			t.Errorf("Dialect().Name() = %q, want sqlite", db.Dialect().Name())
		}
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		if _, err := Open(Config{Driver: "oracle"}); err == nil {
			t.Error("Open() with unknown driver should fail")
		}
	})
}

// TestConn verifies scoped connection acquisition.
func TestConn(t *testing.T) {
	tmpDir := t.TempDir()
	db := openTestDB(t, filepath.Join(tmpDir, "test.db"))

	ctx := context.Background()

	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn() error = %v", err)
	}

	var result int
	if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		t.Fatalf("query on scoped connection error = %v", err)
	}
	if result != 1 {
		t.Errorf("SELECT 1 = %d", result)
	}

	if err := conn.Close(); err != nil {
		t.Errorf("Close() on scoped connection error = %v", err)
	}
}

// TestHealthCheck verifies the health check functionality.
func TestHealthCheck(t *testing.T) {
	tmpDir := t.TempDir()
	db := openTestDB(t, filepath.Join(tmpDir, "test.db"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

// TestClose verifies graceful shutdown.
func TestClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(Config{Driver: DriverSQLite, Path: dbPath, WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Second close should not error (nil check)
	db.DB = nil
	if err := db.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}
}

// TestNoIdleConnections verifies the per-operation connection discipline.
func TestNoIdleConnections(t *testing.T) {
	tmpDir := t.TempDir()
	db := openTestDB(t, filepath.Join(tmpDir, "test.db"))

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn() error = %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// With no idle pool, a released connection is not retained.
	if stats := db.Stats(); stats.Idle != 0 {
		t.Errorf("Idle = %d, want 0", stats.Idle)
	}
}

// openTestDB creates a temporary SQLite database for testing.
func openTestDB(t *testing.T, path string) *DB {
	t.Helper()

	db, err := Open(Config{
		Driver:      DriverSQLite,
		Path:        path,
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	return db
}
