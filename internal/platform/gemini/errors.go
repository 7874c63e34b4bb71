package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyOperationName is returned when a poll is requested without a name.
	ErrEmptyOperationName = errors.New("operation name cannot be empty")

	// ErrNilResponse is returned when the SDK returns neither a value nor an error.
	ErrNilResponse = errors.New("upstream returned an empty response")
)
