// Package access provides the table-agnostic data-access handler for
// Gray Data Core.
//
// The Handler builds parameterised SQL for the CRUD verbs (create table,
// insert, bulk insert, select, update, delete) plus raw statement
// execution, runs each operation on a connection scoped to that one
// call, and records every outcome — success or error, with wall-clock
// timing — in the audit log.
//
// # Statement Construction
//
// Values are always bound as parameters. Identifiers (table and column
// names) are interpolated, but only after validation and double-quoting;
// a name that is not a plain identifier is rejected before any SQL is
// built. Column order in generated statements is deterministic (sorted),
// since Go map iteration is not.
//
// Equality predicates are AND-combined exact matches only. OR, ranges,
// and NULL checks go through ExecuteRawQuery.
//
// # Failure Semantics
//
// Operations return their documented zero value alongside a sentinel-
// wrapped error: ErrConnection for connection establishment,
// ErrExecution for statement failures, and validation sentinels for
// rejected input. The error return is what distinguishes "no rows
// matched" from "the query failed".
//
// # Usage
//
//	handler := access.New(db, audit, logger)
//
//	id, err := handler.InsertRecord(ctx, "users", access.Row{
//	    "name": "Ada", "email": "ada@example.com",
//	})
package access
