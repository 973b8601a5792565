// Package common contains sentinel errors and small helpers shared by the
// UserDash client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Local store errors.
	ErrSchema        = errors.New("schema unavailable")
	ErrDuplicateUser = errors.New("user already exists")
	ErrInsert        = errors.New("insert failed")
	ErrUpdate        = errors.New("update failed")
	ErrNotFound      = errors.New("not found")

	// Remote store errors.
	ErrFetch = errors.New("fetch failed")

	// Service-level errors.
	ErrNoSession    = errors.New("no active session")
	ErrInvalidInput = errors.New("invalid input")
)
