package service

import (
	"errors"
	"fmt"
)

// ValidationError is a caller error that ends a request before any store
// access. Kind is stable and machine-readable; Message is the text returned
// to clients.
type ValidationError struct {
	Kind    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return e.Kind
	}
	return e.Message
}

// Is matches any ValidationError of the same Kind, so callers can test
// against the sentinels below regardless of Field or Message.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && e.Kind == t.Kind
}

const (
	KindInvalidDate         = "invalid_date"
	KindInvalidWindow       = "invalid_window"
	KindRangeOrder          = "range_order_violation"
	KindReferenceOutOfRange = "reference_out_of_range"
	KindMissingIdentifier   = "missing_identifier"
	KindInvalidIdentifier   = "invalid_identifier"
)

var (
	ErrInvalidDate         = &ValidationError{Kind: KindInvalidDate}
	ErrInvalidWindow       = &ValidationError{Kind: KindInvalidWindow}
	ErrRangeOrder          = &ValidationError{Kind: KindRangeOrder}
	ErrReferenceOutOfRange = &ValidationError{Kind: KindReferenceOutOfRange}
	ErrMissingIdentifier   = &ValidationError{Kind: KindMissingIdentifier}
	ErrInvalidIdentifier   = &ValidationError{Kind: KindInvalidIdentifier}
)

func invalidDate(field string) *ValidationError {
	return &ValidationError{
		Kind:    KindInvalidDate,
		Field:   field,
		Message: fmt.Sprintf("Invalid %s format or invalid date/time values. Use YYYY-MM-DD HH:MM:SS with valid dates.", field),
	}
}

func invalidWindow() *ValidationError {
	return &ValidationError{
		Kind:    KindInvalidWindow,
		Field:   "window",
		Message: "Invalid window format or value. Window must be a positive integer value.",
	}
}

func rangeOrder() *ValidationError {
	return &ValidationError{
		Kind:    KindRangeOrder,
		Field:   "query_from",
		Message: "query_from must be earlier than or equal to query_to.",
	}
}

func referenceOutOfRange() *ValidationError {
	return &ValidationError{
		Kind:    KindReferenceOutOfRange,
		Field:   "query_to",
		Message: "The reference time must lie between query_from and query_to.",
	}
}

func missingIdentifier(field, message string) *ValidationError {
	return &ValidationError{Kind: KindMissingIdentifier, Field: field, Message: message}
}

func invalidIdentifier(field string) *ValidationError {
	return &ValidationError{
		Kind:    KindInvalidIdentifier,
		Field:   field,
		Message: "Invalid VRM format. VRM must only contain letters and numbers. Spaces are allowed.",
	}
}

const (
	msgMissingVRM   = "A VRM is required."
	msgMissingPlate = "A vehicle license plate is required via the plate query string. e.g. `plate=AA%201234AB`."
)

// AsValidation unwraps err to a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// MalformedTimestampError describes a stored entry whose entry time could
// not be parsed. It is logged and the entry is skipped.
type MalformedTimestampError struct {
	EntryID int64
	Raw     string
	Err     error
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("entry %d: malformed entered_at %q: %v", e.EntryID, e.Raw, e.Err)
}

func (e *MalformedTimestampError) Unwrap() error { return e.Err }
