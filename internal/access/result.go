package access

import (
	"database/sql"
	"fmt"
)

// ResultSet is the tabular outcome of a query.
//
// For row-returning statements, Columns carries the result column names
// and Rows the row tuples in result order. For statements that return no
// rows (raw non-SELECT execution), Columns and Rows are empty and
// RowsAffected carries the driver-reported count.
//
// Callers that only want tuples can range over Rows directly; callers
// that want a table keep Columns alongside.
type ResultSet struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
}

// Len returns the number of result rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// emptyResultSet is the documented failure value for row-returning
// operations: an empty table, distinguishable from success only by the
// accompanying error.
func emptyResultSet() *ResultSet {
	return &ResultSet{Columns: []string{}, Rows: [][]any{}}
}

// collectRows drains a sql.Rows cursor into a ResultSet.
func collectRows(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading result columns: %w", err)
	}

	rs := &ResultSet{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating result rows: %w", err)
	}

	rs.RowsAffected = int64(len(rs.Rows))
	return rs, nil
}
