package access

import "errors"

// Sentinel errors for data-access operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, access.ErrConnection) {
//	    // Handle connection-establishment failure
//	}
var (
	// ErrConnection indicates a connection could not be established.
	ErrConnection = errors.New("access: connection failed")

	// ErrExecution indicates a statement failed at the database.
	ErrExecution = errors.New("access: statement execution failed")

	// ErrInvalidIdentifier indicates a table or column name was rejected
	// before any SQL was built.
	ErrInvalidIdentifier = errors.New("access: invalid identifier")

	// ErrEmptyPredicate indicates an update or delete was attempted
	// without any equality conditions.
	ErrEmptyPredicate = errors.New("access: empty predicate")

	// ErrEmptyRow indicates a write was attempted with no column values.
	ErrEmptyRow = errors.New("access: empty row")
)
