package conversation

import (
	"errors"

	"github.com/papercomputeco/rubberduck/pkg/completion"
	"github.com/papercomputeco/rubberduck/pkg/gateway"
)

const (
	transportErrorMessage = "Could not reach the completion service. Check your network connection and try again."
	unknownErrorMessage   = "Something went wrong while producing the answer."
)

// DescribeError converts an answer failure into the message stored in the
// error state. The result is never empty.
func DescribeError(err error) string {
	if err == nil {
		return unknownErrorMessage
	}

	var authErr *gateway.AuthError
	if errors.As(err, &authErr) {
		return authErr.Error()
	}

	var transportErr *gateway.TransportError
	if errors.As(err, &transportErr) {
		return transportErrorMessage
	}

	var backendErr *gateway.BackendError
	if errors.As(err, &backendErr) {
		if backendErr.Message == "" {
			return "The completion service returned an error."
		}
		return "The completion service returned an error: " + backendErr.Message
	}

	if errors.Is(err, completion.ErrEmptyInput) {
		return "Nothing to send: the selection or instruction is empty."
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return unknownErrorMessage
}
