package access

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nerrad567/gray-data-core/internal/infrastructure/database"
)

// Row maps column names to values for writes and equality predicates.
// Predicates built from a Row are AND-combined exact matches; OR, ranges,
// and NULL checks must go through ExecuteRawQuery.
type Row map[string]any

// ColumnDef declares one column for CreateTable. Definitions are ordered
// (a slice, not a map) so the generated DDL is deterministic.
type ColumnDef struct {
	// Name is the column identifier.
	Name string

	// Type is the column type declaration, e.g. "SERIAL PRIMARY KEY"
	// or "VARCHAR(100) NOT NULL".
	Type string
}

// SelectOptions controls the shape of a SelectRecords query.
type SelectOptions struct {
	// Columns restricts the selected columns. Empty selects all.
	Columns []string

	// Where is an AND-combined equality predicate. Empty selects all rows.
	Where Row

	// OrderBy is an ordering clause of the form
	// "column [ASC|DESC], column [ASC|DESC], ...". Empty for no ordering.
	OrderBy string

	// Limit caps the number of returned rows. Zero or negative for no cap.
	Limit int
}

// columnTypePattern constrains CreateTable type declarations. Letters,
// digits, spaces, parens, commas, quotes, and a few punctuation marks
// cover the usual declarations (NUMERIC(10,2), DEFAULT 'x', NOT NULL)
// without letting a declaration smuggle in statement structure.
var columnTypePattern = regexp.MustCompile(`^[A-Za-z0-9_ ()',.\-]+$`)

// orderTermPattern matches one ordering term: an identifier with an
// optional ASC/DESC direction.
var orderTermPattern = regexp.MustCompile(`(?i)^[A-Za-z_][A-Za-z0-9_]*( (ASC|DESC))?$`)

// sortedKeys returns the Row's column names in deterministic order.
// Go maps iterate randomly; statement text and parameter order must not.
func sortedKeys(row Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildCreateTable renders a CREATE TABLE IF NOT EXISTS statement.
func buildCreateTable(table string, columns []ColumnDef) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("%w: table %q has no columns", ErrEmptyRow, table)
	}

	quotedTable, err := database.QuoteIdentifier(table)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		quotedCol, err := database.QuoteIdentifier(col.Name)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
		}
		if !columnTypePattern.MatchString(col.Type) {
			return "", fmt.Errorf("%w: column type %q", ErrInvalidIdentifier, col.Type)
		}
		defs[i] = quotedCol + " " + col.Type
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quotedTable, strings.Join(defs, ", ")), nil
}

// buildInsert renders a parameterised INSERT ... RETURNING id statement
// with the Row's values as bound arguments, columns in sorted order.
func buildInsert(d database.Dialect, table string, row Row) (string, []any, error) {
	if len(row) == 0 {
		return "", nil, fmt.Errorf("%w: insert into %q", ErrEmptyRow, table)
	}

	quotedTable, err := database.QuoteIdentifier(table)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
	}

	keys := sortedKeys(row)
	cols := make([]string, len(keys))
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		quotedCol, err := database.QuoteIdentifier(k)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
		}
		cols[i] = quotedCol
		placeholders[i] = d.Placeholder(i + 1)
		args[i] = row[k]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		quotedTable, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return query, args, nil
}

// buildPredicate renders an AND-combined equality predicate, continuing
// placeholder numbering from next. Returns the clause without the WHERE
// keyword, the bound arguments, and the next placeholder index.
func buildPredicate(d database.Dialect, where Row, next int) (string, []any, int, error) {
	keys := sortedKeys(where)
	conditions := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		quotedCol, err := database.QuoteIdentifier(k)
		if err != nil {
			return "", nil, next, fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
		}
		conditions[i] = quotedCol + " = " + d.Placeholder(next)
		args[i] = where[k]
		next++
	}
	return strings.Join(conditions, " AND "), args, next, nil
}

// buildOrderBy validates an ordering clause: comma-separated identifiers,
// each with an optional ASC/DESC direction.
func buildOrderBy(clause string) (string, error) {
	terms := strings.Split(clause, ",")
	cleaned := make([]string, len(terms))
	for i, term := range terms {
		term = strings.Join(strings.Fields(term), " ")
		if !orderTermPattern.MatchString(term) {
			return "", fmt.Errorf("%w: order-by term %q", ErrInvalidIdentifier, term)
		}
		cleaned[i] = term
	}
	return strings.Join(cleaned, ", "), nil
}

// buildSelect renders a parameterised SELECT statement from the options.
func buildSelect(d database.Dialect, table string, opts SelectOptions) (string, []any, error) {
	quotedTable, err := database.QuoteIdentifier(table)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
	}

	cols := "*"
	if len(opts.Columns) > 0 {
		quoted := make([]string, len(opts.Columns))
		for i, c := range opts.Columns {
			q, err := database.QuoteIdentifier(c)
			if err != nil {
				return "", nil, fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
			}
			quoted[i] = q
		}
		cols = strings.Join(quoted, ", ")
	}

	query := fmt.Sprintf("SELECT %s FROM %s", cols, quotedTable)

	var args []any
	if len(opts.Where) > 0 {
		clause, whereArgs, _, err := buildPredicate(d, opts.Where, 1)
		if err != nil {
			return "", nil, err
		}
		query += " WHERE " + clause
		args = whereArgs
	}

	if opts.OrderBy != "" {
		clause, err := buildOrderBy(opts.OrderBy)
		if err != nil {
			return "", nil, err
		}
		query += " ORDER BY " + clause
	}

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	return query, args, nil
}

// buildUpdate renders a parameterised UPDATE statement. SET values bind
// first, predicate values after, so placeholder numbering stays dense.
func buildUpdate(d database.Dialect, table string, set Row, where Row) (string, []any, error) {
	if len(set) == 0 {
		return "", nil, fmt.Errorf("%w: update of %q", ErrEmptyRow, table)
	}
	if len(where) == 0 {
		return "", nil, fmt.Errorf("%w: update of %q", ErrEmptyPredicate, table)
	}

	quotedTable, err := database.QuoteIdentifier(table)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
	}

	keys := sortedKeys(set)
	assignments := make([]string, len(keys))
	args := make([]any, 0, len(set)+len(where))
	next := 1
	for i, k := range keys {
		quotedCol, err := database.QuoteIdentifier(k)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
		}
		assignments[i] = quotedCol + " = " + d.Placeholder(next)
		args = append(args, set[k])
		next++
	}

	clause, whereArgs, _, err := buildPredicate(d, where, next)
	if err != nil {
		return "", nil, err
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		quotedTable, strings.Join(assignments, ", "), clause)
	return query, args, nil
}

// buildDelete renders a parameterised DELETE statement.
func buildDelete(d database.Dialect, table string, where Row) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, fmt.Errorf("%w: delete from %q", ErrEmptyPredicate, table)
	}

	quotedTable, err := database.QuoteIdentifier(table)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidIdentifier, err)
	}

	clause, args, _, err := buildPredicate(d, where, 1)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("DELETE FROM %s WHERE %s", quotedTable, clause), args, nil
}

// isSelect reports whether raw statement text is a SELECT, matching on
// the first keyword case-insensitively after trimming whitespace.
func isSelect(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT")
}
