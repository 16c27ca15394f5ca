// Package services contains the session layer's business logic: the user
// directory, the token store and the session manager that ties them to an
// identity verifier and a transport.
package services

import "errors"

var (
	// ErrMissingCredential is returned by Login for an empty ticket, before any I/O.
	ErrMissingCredential = errors.New("missing credential")

	// ErrVerificationFailed wraps identity.ErrUnreachable or *identity.RejectedError.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrInvalidProfile wraps the ValidationErrors of a profile that could not be registered.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrAccountDisabled is only returned when disabled logins are configured to fail.
	ErrAccountDisabled = errors.New("account disabled")
)
