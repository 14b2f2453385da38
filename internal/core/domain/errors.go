package domain

import "errors"

// Error taxonomy for the identity core. Storage and transport failures are
// translated into these sentinels at the adapter boundaries; raw driver
// errors never cross into handlers.
var (
	// ErrDuplicateEmail is returned when a registration collides with an
	// existing account, whether caught by the pre-check or by the store's
	// unique constraint at insert time.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. The two cases are deliberately indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled blocks login for users with enabled=false.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrTooManyAttempts is returned when the login throttle window for an
	// email is exhausted.
	ErrTooManyAttempts = errors.New("too many login attempts")

	// ErrUserNotFound is returned by lookups on an absent user id.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidToken covers every token rejection: bad signature, expiry,
	// or malformed structure. Callers are never told which check failed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrForbidden is returned when a valid token carries a role outside
	// the set an operation requires.
	ErrForbidden = errors.New("access forbidden")

	// ErrInvalidRole is returned for role values outside the fixed set.
	ErrInvalidRole = errors.New("invalid role value")
)
