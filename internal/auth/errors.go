package auth

import "errors"

var (
	// ErrUserExists is returned when registering an email that is already taken
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned when a user id or email has no account
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials hides whether the email or the password was wrong
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers malformed, expired and wrongly signed tokens
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenRevoked is returned for tokens presented after logout
	ErrTokenRevoked = errors.New("token revoked")

	// ErrInvalidInput wraps register/login payload problems
	ErrInvalidInput = errors.New("invalid input")
)
