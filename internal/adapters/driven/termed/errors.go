package termed

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse indicates a 2xx response whose body could not be decoded.
var ErrMalformedResponse = errors.New("termed: malformed response")

// APIError represents a non-2xx response from the graph API.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("termed: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// failureHint returns a suffix for soft-failure logs that points at the
// likely misconfiguration, or "" when there is none.
func failureHint(err error) string {
	switch {
	case IsUnauthorized(err):
		return " (check source credentials)"
	case IsNotFound(err):
		return " (check source.url)"
	default:
		return ""
	}
}

// isSoftFailure reports whether err is an API-level failure that reads as an
// empty result rather than aborting the run.
func isSoftFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) || errors.Is(err, ErrMalformedResponse)
}
