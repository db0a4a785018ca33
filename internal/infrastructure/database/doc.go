// Package database provides database connectivity for Gray Data Core.
//
// This package manages:
//   - Opening SQLite or PostgreSQL backends behind one handle
//   - Dialect-aware placeholder rendering (? vs $n)
//   - Identifier validation and quoting
//   - Scoped per-operation connections and lifecycle management
//
// Security Considerations:
//   - All values are bound through parameterised statements (no SQL injection)
//   - Identifiers are validated and double-quoted before interpolation
//   - SQLite file permissions are set to 0600 (owner read/write only)
//
// Connection Discipline:
//
// The pool keeps no idle connections. Every data-access operation calls
// Conn to acquire a dedicated connection for its whole duration and
// closes it on return, so a released connection is genuinely released.
//
// Usage:
//
//	db, err := database.Open(database.Config{Driver: "sqlite", Path: "data/graydata.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package database
