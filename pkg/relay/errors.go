package relay

import "errors"

// RelayError carries a machine-readable code so callers can map
// failures onto transport-level responses.
type RelayError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RelayError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RelayError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeUpstream   = "UPSTREAM_ERROR"
)

// NewValidationError creates an error for rejected caller input
func NewValidationError(message string) *RelayError {
	return &RelayError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// NewUpstreamError creates an error for a failed generation call,
// keeping the underlying cause available via Unwrap
func NewUpstreamError(message string, cause error) *RelayError {
	return &RelayError{
		Code:    ErrCodeUpstream,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf extracts the relay error code from err, or returns an
// empty string when err carries none.
func CodeOf(err error) string {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr.Code
	}
	return ""
}
