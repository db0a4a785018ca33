package database

import (
	"fmt"
	"regexp"
	"strings"
)

// Dialect abstracts the SQL flavour differences between backends.
// Only placeholder rendering differs today; identifier quoting is
// the same double-quote form for both SQLite and PostgreSQL.
type Dialect interface {
	// Name returns the driver name for this dialect.
	Name() string

	// Placeholder returns the parameter placeholder for the n-th
	// bound value, 1-based.
	Placeholder(n int) string
}

// SQLiteDialect renders ? placeholders.
type SQLiteDialect struct{}

// Name returns "sqlite".
func (SQLiteDialect) Name() string { return DriverSQLite }

// Placeholder returns "?" regardless of position.
func (SQLiteDialect) Placeholder(_ int) string { return "?" }

// PostgresDialect renders $n placeholders.
type PostgresDialect struct{}

// Name returns "postgres".
func (PostgresDialect) Name() string { return DriverPostgres }

// Placeholder returns "$n" for the n-th bound value.
func (PostgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

// identifierPattern matches a bare SQL identifier: a letter or underscore
// followed by letters, digits, or underscores.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QuoteIdentifier validates a table or column name and returns it
// double-quoted for safe interpolation into SQL text.
//
// A single qualification dot is allowed (schema.table); each part is
// validated and quoted separately. Anything else is rejected — callers
// supply identifiers programmatically, but a hostile or malformed name
// must not be able to alter statement structure.
//
// Parameters:
//   - name: Table or column identifier, optionally schema-qualified
//
// Returns:
//   - string: Quoted identifier, e.g. `"users"` or `"public"."users"`
//   - error: If the identifier is empty or contains disallowed characters
func QuoteIdentifier(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty identifier")
	}

	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid identifier %q: too many qualification levels", name)
	}

	quoted := make([]string, len(parts))
	for i, part := range parts {
		if !identifierPattern.MatchString(part) {
			return "", fmt.Errorf("invalid identifier %q", name)
		}
		quoted[i] = `"` + part + `"`
	}

	return strings.Join(quoted, "."), nil
}
