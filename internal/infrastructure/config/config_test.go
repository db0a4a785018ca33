package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
database:
  driver: "sqlite"
  sqlite:
    path: "/tmp/test.db"
    wal_mode: true
    busy_timeout: 5
audit:
  path: "/tmp/log/db_log.csv"
  max_size_bytes: 1048576
  max_backups: 2
logging:
  level: "debug"
  format: "text"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.SQLite.Path != "/tmp/test.db" {
		t.Errorf("SQLite.Path = %q, want /tmp/test.db", cfg.Database.SQLite.Path)
	}
	if cfg.Audit.MaxSizeBytes != 1048576 {
		t.Errorf("Audit.MaxSizeBytes = %d, want 1048576", cfg.Audit.MaxSizeBytes)
	}
	if cfg.Audit.MaxBackups != 2 {
		t.Errorf("Audit.MaxBackups = %d, want 2", cfg.Audit.MaxBackups)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// A minimal file keeps every default.
	cfg, err := Load(writeConfig(t, "database:\n  driver: sqlite\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Audit.MaxSizeBytes != 5*1024*1024 {
		t.Errorf("Audit.MaxSizeBytes = %d, want 5 MiB default", cfg.Audit.MaxSizeBytes)
	}
	if cfg.Audit.MaxBackups != 3 {
		t.Errorf("Audit.MaxBackups = %d, want 3", cfg.Audit.MaxBackups)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if !cfg.Database.SQLite.WALMode {
		t.Error("SQLite.WALMode default should be true")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown driver",
			content: "database:\n  driver: oracle\n",
		},
		{
			name: "postgres missing name",
			content: `
database:
  driver: postgres
  postgres:
    host: localhost
    port: 5432
    user: app
`,
		},
		{
			name: "empty audit path",
			content: `
database:
  driver: sqlite
audit:
  path: ""
`,
		},
		{
			name: "negative rotation threshold",
			content: `
database:
  driver: sqlite
audit:
  max_size_bytes: -1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() expected validation error, got nil")
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GRAYDATA_DATABASE_DRIVER", "postgres")
	t.Setenv("GRAYDATA_POSTGRES_HOST", "db.internal")
	t.Setenv("GRAYDATA_POSTGRES_PORT", "6432")
	t.Setenv("GRAYDATA_POSTGRES_NAME", "graydata")
	t.Setenv("GRAYDATA_POSTGRES_USER", "app")
	t.Setenv("GRAYDATA_POSTGRES_PASSWORD", "secret")
	t.Setenv("GRAYDATA_AUDIT_PATH", "/var/log/graydata/db_log.csv")

	cfg, err := Load(writeConfig(t, "database:\n  driver: sqlite\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Database.Postgres.Host != "db.internal" {
		t.Errorf("Postgres.Host = %q, want db.internal", cfg.Database.Postgres.Host)
	}
	if cfg.Database.Postgres.Port != 6432 {
		t.Errorf("Postgres.Port = %d, want 6432", cfg.Database.Postgres.Port)
	}
	if cfg.Database.Postgres.Password != "secret" {
		t.Errorf("Postgres.Password not overridden")
	}
	if cfg.Audit.Path != "/var/log/graydata/db_log.csv" {
		t.Errorf("Audit.Path = %q", cfg.Audit.Path)
	}
}

// writeConfig writes a temporary config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}
