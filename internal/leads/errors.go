package leads

import (
	"errors"
	"fmt"
)

// Sentinel errors for the scoring pipeline
var (
	// ErrInvalidCategory is returned for a news type outside the known set when
	// the unknown category policy is "fail"
	ErrInvalidCategory = errors.New("invalid news category")

	// ErrMalformedRecord is returned for a record with a missing required field or
	// an unparseable value
	ErrMalformedRecord = errors.New("malformed record")
)

// RecordError locates a failure on a specific input record
type RecordError struct {
	// Index is the zero-based position of the record in the input sequence
	Index int
	// Row is the 1-based source row when the record came from a file, 0 otherwise
	Row   int
	Field string
	Value string
	Err   error
}

// Error implements the error interface
func (e *RecordError) Error() string {
	loc := fmt.Sprintf("record %d", e.Index)
	if e.Row > 0 {
		loc = fmt.Sprintf("row %d", e.Row)
	}
	if e.Value != "" {
		return fmt.Sprintf("%s: field %s=%q: %v", loc, e.Field, e.Value, e.Err)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field %s: %v", loc, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

// Unwrap allows errors.Is and errors.As to reach the underlying cause
func (e *RecordError) Unwrap() error {
	return e.Err
}

// NewMalformedError creates a RecordError wrapping ErrMalformedRecord
func NewMalformedError(index int, field, value, reason string) *RecordError {
	err := ErrMalformedRecord
	if reason != "" {
		err = fmt.Errorf("%w: %s", ErrMalformedRecord, reason)
	}
	return &RecordError{Index: index, Field: field, Value: value, Err: err}
}

// NewInvalidCategoryError creates a RecordError wrapping ErrInvalidCategory
func NewInvalidCategoryError(index int, value string) *RecordError {
	return &RecordError{Index: index, Field: "news_type", Value: value, Err: ErrInvalidCategory}
}
