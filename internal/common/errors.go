// Package common defines shared sentinel errors used across TaskKeeper
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateIdentity = errors.New("username or email already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal           = errors.New("internal error")
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Session errors (absent, tampered or expired token).
	ErrInvalidSession = errors.New("invalid session")

	// Authorization errors.
	ErrAccessDenied = errors.New("access denied")
)
