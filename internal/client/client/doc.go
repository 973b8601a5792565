// Package client contains client-side building blocks for UserDash.
//
// # Overview
//
// The package provides:
//  1. Transport-agnostic contracts for the remote side: IdentityProvider
//     (sign up / sign in) and DocumentStore (the remote users collection).
//     Concrete implementations live in internal/client/identity and
//     internal/client/remote.
//  2. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying the embedded goose migrations, plus
//     NewRepositories to build the repositories over it.
//
// # Error Handling
//
// Schema failures wrap common.ErrSchema. Transport conditions are exposed as
// sentinel errors that callers can match with errors.Is: ErrUnavailable,
// ErrUnauthorized, ErrLocalDataNotAvailable.
//
// See Also
//
//   - Contracts:  IdentityProvider, DocumentStore
//   - DB helpers: InitDatabase, RunMigrations, NewRepositories
//   - Errors:     ErrUnavailable, ErrUnauthorized, ErrLocalDataNotAvailable
package client
