package services

import "errors"

var (
	// ErrVendorEmailExists is returned when a vendor email is already taken.
	ErrVendorEmailExists = errors.New("vendor with this email already exists")
	// ErrNoProposals is returned when an RFP has nothing to compare.
	ErrNoProposals = errors.New("no proposals found for this RFP")
	// ErrPollInProgress is returned when another inbox poll holds the lock.
	ErrPollInProgress = errors.New("an inbox check is already in progress")
	// ErrInboxNotConfigured is returned when no IMAP host is configured.
	ErrInboxNotConfigured = errors.New("inbound mail is not configured")
)

// ValidationError is a caller mistake; the message is safe to return as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
