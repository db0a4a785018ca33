// Package auditlog provides the durable operation audit trail for
// Gray Data Core.
//
// Every database operation the access handler performs is recorded as
// one CSV row: timestamp, operation kind, table, status, affected rows,
// error message, and execution time (seconds, 4 decimal places).
//
// # Rotation
//
// The active file is size-bounded. When an append finds the file past
// the configured threshold (default 5 MiB), the backup chain shifts one
// generation — name.1 is the most recent, higher suffixes are older —
// the oldest retained generation is deleted, and a fresh active file is
// created with the header row. Disk usage is bounded at
// MaxBackups + 1 files.
//
// # Failure Semantics
//
// Audit writes are a best-effort side channel. Record returns an error
// so callers can surface it to their own logs, but a failed audit write
// must never change the outcome of the database operation it describes.
//
// # Usage
//
//	audit, err := auditlog.New(auditlog.Config{Path: "log/db_log.csv"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer audit.Close()
//
//	audit.Record(auditlog.Entry{
//	    Operation: "INSERT",
//	    Table:     "users",
//	    Status:    auditlog.StatusSuccess,
//	    AffectedRows: 1,
//	    Elapsed:   elapsed,
//	})
package auditlog
