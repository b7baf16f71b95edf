package gateway

import "fmt"

// AuthError reports a missing or rejected API key. Its message is meant to be
// shown to the user as is.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// TransportError wraps a failure to reach the completion service at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BackendError is a non-success answer from the completion service.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion service error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("completion service error: %s", e.Message)
}
