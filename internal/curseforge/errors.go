package curseforge

import (
	"errors"
	"fmt"
)

// Sentinel errors for CurseForge API operations.
var (
	// ErrNetwork is returned for transport failures and non-success HTTP statuses.
	ErrNetwork = errors.New("network error")

	// ErrDecode is returned when a response body does not match the expected JSON shape.
	ErrDecode = errors.New("decode error")

	// ErrModNotFound is returned when a mod or file cannot be found.
	ErrModNotFound = errors.New("mod not found")

	// ErrRateLimitExceeded is returned when the API rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidSearchQuery is returned when the search query is empty.
	ErrInvalidSearchQuery = errors.New("invalid search query")
)

// APIError represents a non-success response from the API.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error returns the error message.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Status, e.Body, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Status, e.StatusCode)
}

// Is reports every API error as a network error.
func (e *APIError) Is(target error) bool {
	return target == ErrNetwork
}

// NewAPIError creates a new APIError.
func NewAPIError(statusCode int, status, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Status:     status,
		Body:       body,
	}
}

// statusError wraps a sentinel so it also matches ErrNetwork.
func statusError(sentinel error) error {
	return fmt.Errorf("%w: %w", ErrNetwork, sentinel)
}

func networkError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
}

func decodeError(err error) error {
	return fmt.Errorf("decode response: %w: %w", ErrDecode, err)
}
