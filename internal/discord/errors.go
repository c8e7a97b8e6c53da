package discord

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means the token was rejected (HTTP 401). Fatal: nothing
	// can be fetched with it.
	ErrUnauthorized = errors.New("discord: token rejected")

	// ErrSkippable marks a per-resource failure (403/404, or a channel that
	// stayed rate-limited past the retry budget). The run continues without
	// that resource.
	ErrSkippable = errors.New("discord: resource skipped")
)

// APIError carries the HTTP status of a failed API call.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("discord API %s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("discord API %s: HTTP %d", e.Endpoint, e.StatusCode)
}
