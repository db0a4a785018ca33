package access

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-data-core/internal/auditlog"
	"github.com/nerrad567/gray-data-core/internal/infrastructure/database"
	"github.com/nerrad567/gray-data-core/internal/infrastructure/logging"
)

// Operation kinds as recorded in the audit log.
const (
	opCreateTable = "CREATE_TABLE"
	opInsert      = "INSERT"
	opBulkInsert  = "BULK_INSERT"
	opSelect      = "SELECT"
	opUpdate      = "UPDATE"
	opDelete      = "DELETE"
	opRawQuery    = "RAW_QUERY"

	// tableNone marks operations that are not scoped to one table.
	tableNone = "N/A"
)

// Handler translates table-agnostic CRUD intents into parameterised
// statements, executes them on a scoped connection, and records every
// outcome in the audit log.
//
// Error semantics:
//   - Connection-establishment failures wrap ErrConnection.
//   - Statement failures wrap ErrExecution.
//   - Identifier and predicate validation failures wrap
//     ErrInvalidIdentifier / ErrEmptyPredicate / ErrEmptyRow.
//
// Every failure still yields the legacy zero value (0, empty ResultSet,
// empty id slice) alongside the error, and every operation — success or
// failure — produces exactly one audit record.
//
// Thread Safety:
//   - Safe for concurrent use. Each operation runs on its own connection
//     and the audit logger serialises its writes internally.
type Handler struct {
	db    *database.DB
	audit *auditlog.Logger
	log   *logging.Logger
}

// New creates a Handler over an open database and audit logger.
//
// Parameters:
//   - db: Database handle (connection factory boundary)
//   - audit: Audit logger receiving one record per operation
//   - log: Structured logger; nil selects the default logger
//
// Returns:
//   - *Handler: Ready for operations
func New(db *database.DB, audit *auditlog.Logger, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Default()
	}
	return &Handler{
		db:    db,
		audit: audit,
		log:   log.With("component", "access"),
	}
}

// opTimer tracks one operation from entry to audit record.
type opTimer struct {
	h     *Handler
	kind  string
	table string
	id    string
	start time.Time
}

// startOp begins timing an operation and logs its entry at debug level.
// The wall clock starts here, before connection acquisition, so recorded
// execution time covers the whole operation.
func (h *Handler) startOp(kind, table string) *opTimer {
	t := &opTimer{
		h:     h,
		kind:  kind,
		table: table,
		id:    "op-" + uuid.NewString()[:8],
		start: time.Now(),
	}
	h.log.Debug("operation started", "op_id", t.id, "operation", kind, "table", table)
	return t
}

// finish writes the operation's audit record. An audit write failure is
// surfaced to the structured log only; it never alters the operation's
// result.
func (t *opTimer) finish(affected int64, opErr error) {
	elapsed := time.Since(t.start)
	status := auditlog.StatusSuccess
	if opErr != nil {
		status = auditlog.StatusError
		t.h.log.Debug("operation failed",
			"op_id", t.id, "operation", t.kind, "table", t.table,
			"error", opErr, "elapsed", elapsed)
	} else {
		t.h.log.Debug("operation complete",
			"op_id", t.id, "operation", t.kind, "table", t.table,
			"affected_rows", affected, "elapsed", elapsed)
	}

	err := t.h.audit.Record(auditlog.Entry{
		Operation:    t.kind,
		Table:        t.table,
		Status:       status,
		AffectedRows: affected,
		Err:          opErr,
		Elapsed:      elapsed,
	})
	if err != nil {
		t.h.log.Warn("audit record failed", "op_id", t.id, "operation", t.kind, "error", err)
	}
}

// CreateTable creates a table if it does not already exist. Column
// definitions are applied in the given order. Idempotent: repeating the
// call for an existing table succeeds without altering it.
func (h *Handler) CreateTable(ctx context.Context, table string, columns []ColumnDef) error {
	op := h.startOp(opCreateTable, table)

	query, err := buildCreateTable(table, columns)
	if err != nil {
		op.finish(0, err)
		return err
	}

	conn, err := h.db.Conn(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConnection, err)
		op.finish(0, err)
		return err
	}
	defer conn.Close() //nolint:errcheck // Scoped connection release

	if _, err := conn.ExecContext(ctx, query); err != nil {
		err = fmt.Errorf("%w: %w", ErrExecution, err)
		op.finish(0, err)
		return err
	}

	op.finish(0, nil)
	return nil
}

// InsertRecord inserts one row and returns its generated id.
// Returns 0 with a non-nil error on failure.
func (h *Handler) InsertRecord(ctx context.Context, table string, row Row) (int64, error) {
	op := h.startOp(opInsert, table)

	query, args, err := buildInsert(h.db.Dialect(), table, row)
	if err != nil {
		op.finish(0, err)
		return 0, err
	}

	conn, err := h.db.Conn(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConnection, err)
		op.finish(0, err)
		return 0, err
	}
	defer conn.Close() //nolint:errcheck // Scoped connection release

	var id int64
	if err := conn.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		err = fmt.Errorf("%w: %w", ErrExecution, err)
		op.finish(0, err)
		return 0, err
	}

	op.finish(1, nil)
	return id, nil
}

// BulkInsert inserts rows in order inside a single transaction and
// returns their generated ids. All rows are assumed to share one column
// set. An empty input is an idempotent no-op: no statement, no audit
// record. On failure the transaction rolls back and the returned slice
// is empty.
func (h *Handler) BulkInsert(ctx context.Context, table string, rows []Row) ([]int64, error) {
	if len(rows) == 0 {
		return []int64{}, nil
	}

	op := h.startOp(opBulkInsert, table)

	query, _, err := buildInsert(h.db.Dialect(), table, rows[0])
	if err != nil {
		op.finish(0, err)
		return []int64{}, err
	}

	conn, err := h.db.Conn(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConnection, err)
		op.finish(0, err)
		return []int64{}, err
	}
	defer conn.Close() //nolint:errcheck // Scoped connection release

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrExecution, err)
		op.finish(0, err)
		return []int64{}, err
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	ids := make([]int64, 0, len(rows))
	keys := sortedKeys(rows[0])
	for _, row := range rows {
		args := make([]any, len(keys))
		for i, k := range keys {
			args[i] = row[k]
		}
		var id int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			err = fmt.Errorf("%w: %w", ErrExecution, err)
			op.finish(0, err)
			return []int64{}, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		err = fmt.Errorf("%w: %w", ErrExecution, err)
		op.finish(0, err)
		return []int64{}, err
	}

	op.finish(int64(len(ids)), nil)
	return ids, nil
}

// SelectRecords queries rows with optional column restriction, equality
// predicate, ordering, and limit. Returns an empty ResultSet with a
// non-nil error on failure.
func (h *Handler) SelectRecords(ctx context.Context, table string, opts SelectOptions) (*ResultSet, error) {
	op := h.startOp(opSelect, table)

	query, args, err := buildSelect(h.db.Dialect(), table, opts)
	if err != nil {
		op.finish(0, err)
		return emptyResultSet(), err
	}

	conn, err := h.db.Conn(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConnection, err)
		op.finish(0, err)
		return emptyResultSet(), err
	}
	defer conn.Close() //nolint:errcheck // Scoped connection release

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrExecution, err)
		op.finish(0, err)
		return emptyResultSet(), err
	}
	defer rows.Close() //nolint:errcheck // Drained by collectRows

	rs, err := collectRows(rows)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrExecution, err)
		op.finish(0, err)
		return emptyResultSet(), err
	}

	op.finish(rs.RowsAffected, nil)
	return rs, nil
}

// UpdateRecords updates rows matching the equality predicate and returns
// the affected-row count. An empty predicate is rejected with
// ErrEmptyPredicate to keep a malformed call from touching every row.
// Returns 0 with a non-nil error on failure.
func (h *Handler) UpdateRecords(ctx context.Context, table string, set Row, where Row) (int64, error) {
	op := h.startOp(opUpdate, table)

	query, args, err := buildUpdate(h.db.Dialect(), table, set, where)
	if err != nil {
		op.finish(0, err)
		return 0, err
	}

	return h.execCount(ctx, op, query, args)
}

// DeleteRecords deletes rows matching the equality predicate and returns
// the affected-row count. Empty predicates are rejected like in
// UpdateRecords. Returns 0 with a non-nil error on failure.
func (h *Handler) DeleteRecords(ctx context.Context, table string, where Row) (int64, error) {
	op := h.startOp(opDelete, table)

	query, args, err := buildDelete(h.db.Dialect(), table, where)
	if err != nil {
		op.finish(0, err)
		return 0, err
	}

	return h.execCount(ctx, op, query, args)
}

// execCount runs a row-modifying statement on a scoped connection and
// audits the affected-row count.
func (h *Handler) execCount(ctx context.Context, op *opTimer, query string, args []any) (int64, error) {
	conn, err := h.db.Conn(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConnection, err)
		op.finish(0, err)
		return 0, err
	}
	defer conn.Close() //nolint:errcheck // Scoped connection release

	result, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrExecution, err)
		op.finish(0, err)
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrExecution, err)
		op.finish(0, err)
		return 0, err
	}

	op.finish(affected, nil)
	return affected, nil
}

// ExecuteRawQuery runs literal SQL text with optional bound parameters.
//
// If the statement begins with SELECT (case-insensitive, whitespace
// trimmed) the result carries columns and row tuples. Otherwise the
// statement is executed and the result carries only RowsAffected. The
// raw path exists for anything the structured operations cannot express
// (OR predicates, ranges, catalog queries); the caller owns the SQL.
func (h *Handler) ExecuteRawQuery(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	op := h.startOp(opRawQuery, tableNone)

	conn, err := h.db.Conn(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConnection, err)
		op.finish(0, err)
		return emptyResultSet(), err
	}
	defer conn.Close() //nolint:errcheck // Scoped connection release

	if isSelect(query) {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrExecution, err)
			op.finish(0, err)
			return emptyResultSet(), err
		}
		defer rows.Close() //nolint:errcheck // Drained by collectRows

		rs, err := collectRows(rows)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrExecution, err)
			op.finish(0, err)
			return emptyResultSet(), err
		}

		op.finish(rs.RowsAffected, nil)
		return rs, nil
	}

	result, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrExecution, err)
		op.finish(0, err)
		return emptyResultSet(), err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrExecution, err)
		op.finish(0, err)
		return emptyResultSet(), err
	}

	op.finish(affected, nil)
	return &ResultSet{Columns: []string{}, Rows: [][]any{}, RowsAffected: affected}, nil
}
