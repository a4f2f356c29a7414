package auth

import "errors"

var (
	// ErrUnauthenticated is returned when a request carries no valid API key.
	ErrUnauthenticated = errors.New("not logged in")

	// ErrMalformedKey is returned when an API key is not of the form "<key id>.<secret>".
	ErrMalformedKey = errors.New("malformed api key")

	// ErrInvalidKey is returned when the secret of an API key does not match.
	ErrInvalidKey = errors.New("invalid api key")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserNameExists is returned when attempting to create a user with a name that already exists.
	ErrUserNameExists = errors.New("user with this name already exists")

	// ErrForbidden is returned when the user may not access a resource.
	ErrForbidden = errors.New("forbidden")
)
