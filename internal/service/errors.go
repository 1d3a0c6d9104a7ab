package service

import "errors"

// Error taxonomy shared by all services. Handlers map these onto HTTP
// statuses with errors.Is; services wrap them with context via fmt.Errorf.
var (
	// ErrUnauthenticated means no credential was presented at all.
	ErrUnauthenticated = errors.New("no credential presented")

	// ErrInvalidToken means a credential was presented but failed
	// signature or expiry verification.
	ErrInvalidToken = errors.New("invalid token")

	// ErrForbidden means the credential or subject is valid in form but
	// not allowed: consumed refresh token, suspended member, bad password.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means a referenced entity is absent.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness or state invariant would be violated.
	ErrConflict = errors.New("conflict")

	// ErrValidation means malformed or missing required input.
	ErrValidation = errors.New("validation failed")
)
