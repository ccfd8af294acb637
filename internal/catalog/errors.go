// internal/catalog/errors.go
package catalog

import (
	"errors"
	"fmt"
)

// Page-level failures. Either one ends a collection run.
var (
	ErrNoProductTags = errors.New("no product tags found on category page")
	ErrNoRecords     = errors.New("no data collected")
	ErrSplit         = errors.New("product text separator not found")
)

// SkipReason says why a product node produced no record
type SkipReason string

const (
	SkipNoWrapper     SkipReason = "NO_WRAPPER"
	SkipNoLink        SkipReason = "NO_LINK"
	SkipNoAltText     SkipReason = "NO_ALT_TEXT"
	SkipMalformedText SkipReason = "MALFORMED_TEXT"
)

// SkipError is returned by the extractor for a node that must be dropped.
type SkipError struct {
	Reason     SkipReason
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *SkipError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Unwrap returns the underlying error
func (e *SkipError) Unwrap() error {
	return e.Underlying
}

// Is matches another SkipError with the same reason.
func (e *SkipError) Is(target error) bool {
	if t, ok := target.(*SkipError); ok {
		return e.Reason == t.Reason
	}
	return false
}

func skip(reason SkipReason, message string, err error) *SkipError {
	return &SkipError{Reason: reason, Message: message, Underlying: err}
}

// ReasonOf extracts the skip reason from err, or "" if err is not a skip.
func ReasonOf(err error) SkipReason {
	var se *SkipError
	if errors.As(err, &se) {
		return se.Reason
	}
	return ""
}
