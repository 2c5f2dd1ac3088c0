package crawl

import (
	"fmt"
)

// FetchKind categorizes a failed HTTP fetch.
type FetchKind string

const (
	// FetchNetwork indicates a network-level failure (connection refused, DNS, reset).
	FetchNetwork FetchKind = "network"
	// FetchTimeout indicates the request exceeded its deadline.
	FetchTimeout FetchKind = "timeout"
	// FetchHTTPStatus indicates a response arrived with a non-success status code.
	FetchHTTPStatus FetchKind = "http_status"
)

// FetchError is a classified failure from the source client. The client never
// retries; the calling crawler decides whether to skip the page or tick.
type FetchError struct {
	Kind       FetchKind
	StatusCode int
	Target     string
	Cause      error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: %s error (status %d)", e.Target, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s error: %v", e.Target, e.Kind, e.Cause)
}

// Unwrap supports errors.Is and errors.As.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates a network-level fetch error.
func NewNetworkError(target string, cause error) *FetchError {
	return &FetchError{Kind: FetchNetwork, Target: target, Cause: cause}
}

// NewTimeoutError creates a timeout fetch error.
func NewTimeoutError(target string, cause error) *FetchError {
	return &FetchError{Kind: FetchTimeout, Target: target, Cause: cause}
}

// NewHTTPStatusError creates a fetch error for a non-success status code.
func NewHTTPStatusError(target string, statusCode int) *FetchError {
	return &FetchError{Kind: FetchHTTPStatus, Target: target, StatusCode: statusCode}
}

// ParseKind categorizes a parser failure for one row, element, or payload.
type ParseKind string

const (
	// ParseMissingField indicates a required field was absent from the source item.
	ParseMissingField ParseKind = "missing_field"
	// ParseMalformedValue indicates a field was present but not in a usable shape.
	ParseMalformedValue ParseKind = "malformed_value"
)

// ParseError is a per-item extraction failure. It never aborts sibling items.
type ParseError struct {
	Kind  ParseKind
	Field string
	Ref   string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse %s: %s field %q", e.Ref, e.Kind, e.Field)
	}
	return fmt.Sprintf("parse %s: %s", e.Ref, e.Kind)
}

// NewMissingFieldError creates a parse error for an absent required field.
func NewMissingFieldError(ref, field string) *ParseError {
	return &ParseError{Kind: ParseMissingField, Field: field, Ref: ref}
}

// NewMalformedValueError creates a parse error for an unusable field value.
func NewMalformedValueError(ref, field string) *ParseError {
	return &ParseError{Kind: ParseMalformedValue, Field: field, Ref: ref}
}

// NormalizeKind categorizes a normalization rejection.
type NormalizeKind string

const (
	// NormalizeInvalidPrice indicates a price that failed numeric parse or was negative.
	NormalizeInvalidPrice NormalizeKind = "invalid_price"
	// NormalizeInvalidRank indicates a rank that failed numeric parse or was non-positive.
	NormalizeInvalidRank NormalizeKind = "invalid_rank"
	// NormalizeDuplicateRank indicates a rank already seen within the same run.
	NormalizeDuplicateRank NormalizeKind = "duplicate_rank"
)

// NormalizationError rejects one raw record during coercion into a PriceRecord.
type NormalizationError struct {
	Kind  NormalizeKind
	Value string
	Ref   string
}

// Error implements the error interface.
func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s: %s (%q)", e.Ref, e.Kind, e.Value)
}

// NewNormalizationError creates a normalization rejection for one record.
func NewNormalizationError(kind NormalizeKind, ref, value string) *NormalizationError {
	return &NormalizationError{Kind: kind, Value: value, Ref: ref}
}

// RunError is a run-level failure, reported only when an entire run produced
// nothing usable despite at least one attempted fetch.
type RunError struct {
	Mode     Mode
	Attempts int
}

// Error implements the error interface.
func (e *RunError) Error() string {
	return fmt.Sprintf("%s run: all items failed after %d fetch attempt(s)", e.Mode, e.Attempts)
}
