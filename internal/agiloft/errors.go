package agiloft

import "fmt"

// AuthError indicates a failed credential exchange or a call made without a
// token when one is required.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// APIError indicates a non-2xx remote response or a transport-level failure.
// StatusCode is zero for transport failures; Body carries the raw response
// when one was received.
type APIError struct {
	Message    string
	StatusCode int
	Body       string
	Cause      error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}
