package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead is missing or owned by another user
	ErrLeadNotFound = errors.New("lead not found")

	// ErrInvalidLeadID is returned when an id is not a valid lead identifier
	ErrInvalidLeadID = errors.New("invalid lead ID")

	// ErrDuplicateEmail is returned when another lead already uses the email
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrMissingOwner is returned when a write has no owning user
	ErrMissingOwner = errors.New("owner user id is required")

	// ErrValidation is matched by every ValidationError
	ErrValidation = errors.New("validation failed")
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets callers use errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
