package tracing

import "fmt"

// SizeError reports a violated baggage limit: too many entries on Set, or an
// encoded header that exceeds the byte budget on Encode. Both conditions are
// pre-flight-checkable; callers are expected to shed data and retry at a
// higher layer rather than rely on this package retrying.
type SizeError struct {
	Limit  int
	Actual int
	Unit   string // "entries" or "bytes"
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("baggage exceeds maximum %s: %d > %d", e.Unit, e.Actual, e.Limit)
}

// ParseError reports a structural failure decoding a baggage header.
// Individual malformed entries never produce a ParseError; they are dropped
// so unknown or foreign extensions cannot break parsing.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse baggage header: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
