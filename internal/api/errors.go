// Package api provides error types for wallhaven API responses.
package api

import "errors"

// APIError is an application-level failure: the request succeeded at the
// transport level but the decoded payload carried an error field. It aborts
// the enclosing operation (collection validation or page walk).
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "api error: " + e.Message
}

// IsAPIError reports whether err is (or wraps) an application-level API error.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
