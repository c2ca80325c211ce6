package dataset

import (
	"errors"
	"fmt"
)

// Sentinel errors for loading the dataset.
var (
	ErrFetch           = errors.New("dataset fetch failed")
	ErrStatus          = errors.New("unexpected dataset status")
	ErrDecode          = errors.New("dataset is not valid JSON")
	ErrMalformedRecord = errors.New("malformed record")
)

// RecordError locates a record that could not be parsed.
type RecordError struct {
	Index int
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: field %s: %v", e.Index, e.Field, e.Err)
}

// Unwrap exposes both ErrMalformedRecord and the field error.
func (e *RecordError) Unwrap() []error {
	return []error{ErrMalformedRecord, e.Err}
}
