package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Status is the outcome of a logged database operation.
type Status string

// Operation outcomes.
const (
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// Default rotation bounds.
const (
	// DefaultMaxSize is the rotation threshold for the active file (5 MiB).
	DefaultMaxSize = 5 * 1024 * 1024

	// DefaultMaxBackups is the number of rotated generations retained.
	DefaultMaxBackups = 3

	// dirPermissions is the permission mode for the log directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for log files.
	filePermissions = 0600
)

// header is the fixed first row of every audit log file generation.
var header = []string{"timestamp", "operation", "table", "status", "affected_rows", "error", "execution_time"}

// Config contains audit logger settings.
// These map to the audit section of config.yaml.
type Config struct {
	// Path is the filesystem path to the active log file.
	// The directory will be created if it doesn't exist.
	Path string

	// MaxSizeBytes is the size threshold that triggers rotation.
	// Zero selects DefaultMaxSize.
	MaxSizeBytes int64

	// MaxBackups is the number of rotated generations to retain.
	// Zero selects DefaultMaxBackups.
	MaxBackups int
}

// Entry is one operation record appended to the audit log.
type Entry struct {
	// Operation is the operation kind, e.g. "INSERT" or "RAW_QUERY".
	Operation string

	// Table is the target table name, or "N/A" for table-less operations.
	Table string

	// Status is SUCCESS or ERROR.
	Status Status

	// AffectedRows is the number of rows touched or returned.
	AffectedRows int64

	// Err is the failure that produced an ERROR status, nil otherwise.
	Err error

	// Elapsed is the wall-clock duration of the whole operation.
	Elapsed time.Duration
}

// Logger appends operation records to a size-bounded CSV audit log.
//
// Rotation keeps at most MaxBackups prior generations next to the active
// file (name.1 = most recent), dropping the oldest generation first.
//
// Thread Safety:
//   - Record serialises the size check, rotation, and append behind one
//     mutex, so concurrent callers cannot corrupt the backup chain.
type Logger struct {
	mu         sync.Mutex
	path       string
	maxSize    int64
	maxBackups int
	file       *os.File
	size       int64
}

// New creates the audit logger, ensuring the log directory and active
// file exist. A new or empty file gets the fixed header row; calling New
// on an existing non-empty log is a no-op beyond the existence check.
//
// Parameters:
//   - cfg: Audit log configuration
//
// Returns:
//   - *Logger: Logger ready for Record calls
//   - error: If the directory or file cannot be prepared
func New(cfg Config) (*Logger, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("audit log path is required")
	}
	if cfg.MaxSizeBytes <= 0 {
		cfg.MaxSizeBytes = DefaultMaxSize
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = DefaultMaxBackups
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}

	l := &Logger{
		path:       cfg.Path,
		maxSize:    cfg.MaxSizeBytes,
		maxBackups: cfg.MaxBackups,
	}

	if err := l.openActive(); err != nil {
		return nil, err
	}

	return l, nil
}

// openActive opens the active log file for appending, writing the header
// row if the file is new or empty, and records its current size.
func (l *Logger) openActive() error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermissions)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("inspecting audit log: %w", err)
	}

	l.file = f
	l.size = info.Size()

	if l.size == 0 {
		if err := l.writeRow(header); err != nil {
			f.Close() //nolint:errcheck // Best effort cleanup on error path
			return fmt.Errorf("writing audit log header: %w", err)
		}
	}

	return nil
}

// writeRow appends one CSV row to the active file and updates the
// tracked size. Callers must hold the mutex (or be inside New).
func (l *Logger) writeRow(row []string) error {
	cw := &countingWriter{w: l.file}
	w := csv.NewWriter(cw)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	l.size += cw.n
	return nil
}

// Record appends one operation record, rotating first if the active file
// has grown past the size threshold.
//
// The returned error is a best-effort signal: callers must treat audit
// write failures as a side channel and never let them alter the primary
// operation's result.
//
// Parameters:
//   - e: The operation record to append
//
// Returns:
//   - error: If rotation or the append failed
func (l *Logger) Record(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("audit log is closed")
	}

	if l.size > l.maxSize {
		if err := l.rotate(); err != nil {
			return fmt.Errorf("rotating audit log: %w", err)
		}
	}

	errText := ""
	if e.Err != nil {
		errText = e.Err.Error()
	}

	row := []string{
		time.Now().Format(time.RFC3339),
		e.Operation,
		e.Table,
		string(e.Status),
		strconv.FormatInt(e.AffectedRows, 10),
		errText,
		strconv.FormatFloat(e.Elapsed.Seconds(), 'f', 4, 64),
	}

	if err := l.writeRow(row); err != nil {
		return fmt.Errorf("appending audit record: %w", err)
	}

	return nil
}

// rotate shifts the backup chain one generation and recreates the active
// file with the header row. Callers must hold the mutex.
//
// Backup n is the n-th most recent generation; the generation at
// maxBackups is deleted, every younger one is renamed up a slot, and the
// active file becomes backup 1. Total files never exceed maxBackups + 1.
func (l *Logger) rotate() error {
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing active file: %w", err)
	}
	l.file = nil

	for i := l.maxBackups; i >= 1; i-- {
		backup := fmt.Sprintf("%s.%d", l.path, i)
		if _, err := os.Stat(backup); os.IsNotExist(err) {
			continue
		}
		if i == l.maxBackups {
			if err := os.Remove(backup); err != nil {
				return fmt.Errorf("removing oldest backup: %w", err)
			}
			continue
		}
		if err := os.Rename(backup, fmt.Sprintf("%s.%d", l.path, i+1)); err != nil {
			return fmt.Errorf("shifting backup %d: %w", i, err)
		}
	}

	if err := os.Rename(l.path, l.path+".1"); err != nil {
		return fmt.Errorf("archiving active file: %w", err)
	}

	return l.openActive()
}

// Path returns the filesystem path of the active log file.
func (l *Logger) Path() string {
	return l.path
}

// Close closes the active log file. Record calls after Close fail.
//
// Returns:
//   - error: If closing fails
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("closing audit log: %w", err)
	}
	return nil
}

// countingWriter tracks bytes written so the logger can maintain the
// active file size without a Stat per record.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
