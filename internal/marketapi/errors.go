package marketapi

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the backend answers 404 for a ticker.
	ErrNotFound = errors.New("ticker not found")

	// ErrMalformedResponse matches every *SchemaError and JSON decode failure.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrEmptyTicker is returned before any request when the ticker is blank.
	ErrEmptyTicker = errors.New("ticker is required")
)

// StatusError reports a non-2xx answer from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// SchemaError pinpoints the first element of a response that breaks the contract.
// Index is -1 when the problem is with the document itself.
type SchemaError struct {
	Index  int
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Index < 0 && e.Field == "":
		return "schema: " + e.Reason
	case e.Index < 0:
		return fmt.Sprintf("schema: field %q: %s", e.Field, e.Reason)
	case e.Field == "":
		return fmt.Sprintf("schema: item %d: %s", e.Index, e.Reason)
	default:
		return fmt.Sprintf("schema: item %d: field %q: %s", e.Index, e.Field, e.Reason)
	}
}

func (e *SchemaError) Unwrap() error { return ErrMalformedResponse }
