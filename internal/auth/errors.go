package auth

import "errors"

// Credential failures.  Each maps to a distinct 401 message in apperr.
var (
	ErrMissingCredential = errors.New("auth: missing credential")
	ErrInvalidCredential = errors.New("auth: invalid credential")
	ErrExpiredCredential = errors.New("auth: expired credential")
	ErrUnknownSubject    = errors.New("auth: unknown subject")
	ErrInactiveSubject   = errors.New("auth: inactive subject")
)

// Authorization failures returned by the gate.
var (
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	ErrForbidden       = errors.New("auth: forbidden")
)
