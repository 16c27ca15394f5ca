// Package common defines sentinel errors and small helpers shared by the
// repository and service layers. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Credential envelope errors.
	ErrInvalidToken = errors.New("invalid token")
)
