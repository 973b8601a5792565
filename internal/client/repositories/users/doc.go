// Package users provides the local persistence layer for user records.
//
// # Overview
//
// The package defines a Repository interface over the Users table of the
// local SQLite cache and a SQLite implementation (SQLiteRepository) built on
// dbx.DBTX, so it can run against either *sql.DB or *sql.Tx.
//
// # Uniqueness
//
// Email is the reconciliation key. InsertIfAbsent relies on the table's
// UNIQUE constraint and a single INSERT ... ON CONFLICT(Email) DO NOTHING
// statement, so concurrent callers can never create two rows for the same
// email. Comparison is exact (case-sensitive); only GetByEmail matches
// case-insensitively.
//
// # Errors
//
// Failures wrap the sentinels in internal/common: ErrDuplicateUser,
// ErrInsert, ErrUpdate and ErrNotFound.
//
// Typical Usage
//
//	repo := users.NewSQLiteRepository(db)
//	rec, err := repo.InsertIfAbsent(ctx, models.UserRecord{Email: "a@b.io", Contact: "555", RemoteID: "u1"})
//	all, _ := repo.ReadAll(ctx)
//	_ = repo.UpdateContact(ctx, "a@b.io", "556")
package users
