// internal/fetch/errors.go
package fetch

import (
	"errors"
	"fmt"
)

// ErrFetch matches every FetchError via errors.Is.
var ErrFetch = errors.New("fetch failed")

// FetchError reports a transport failure or a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Underlying error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	switch {
	case e.Underlying != nil && e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Underlying)
	case e.Underlying != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Underlying)
	default:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Underlying
}

// Is reports ErrFetch for any FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// GetStatusCode returns the HTTP status, or 0 when no response arrived.
func (e *FetchError) GetStatusCode() int {
	return e.StatusCode
}

func newFetchError(url string, status int, err error) *FetchError {
	return &FetchError{URL: url, StatusCode: status, Underlying: err}
}
