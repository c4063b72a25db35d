package asaas

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected marks 4xx provider responses (bad input). Not retried.
	ErrRejected = errors.New("provider rejected request")

	// ErrUnavailable marks network failures and 5xx responses that
	// survived the retry budget.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrInvalidSplitConfig is a configuration error: a split cannot be
	// built without both wallet ids. Fails fast, no request is issued.
	ErrInvalidSplitConfig = errors.New("invalid split configuration")

	// ErrTokenizationFailed marks card data the provider refused to
	// tokenize (invalid number, expired card).
	ErrTokenizationFailed = errors.New("card tokenization failed")

	// ErrNotConfigured is returned when no API key is set and the caller
	// has no fallback path.
	ErrNotConfigured = errors.New("provider API key not configured")
)

// apiError carries the provider's status code and message through the
// sentinel wrapping, so callers can log the detail while matching with
// errors.Is.
type apiError struct {
	sentinel   error
	statusCode int
	message    string
}

func (e *apiError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("%v (status %d)", e.sentinel, e.statusCode)
	}
	return fmt.Sprintf("%v (status %d): %s", e.sentinel, e.statusCode, e.message)
}

func (e *apiError) Unwrap() error {
	return e.sentinel
}
