package datasource

import (
	"errors"
	"fmt"
)

// FetchReason classifies a provider failure.
type FetchReason string

const (
	ReasonSymbolNotFound    FetchReason = "symbol_not_found"
	ReasonTimeout           FetchReason = "timeout"
	ReasonAuthFailure       FetchReason = "auth_failure"
	ReasonMalformedResponse FetchReason = "malformed_response"
)

// FetchError is the single error type surfaced by the quote client. The
// handler maps any FetchError to a user-facing "data unavailable" reply.
type FetchError struct {
	Reason FetchReason
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch failed (%s)", e.Reason)
	}
	return fmt.Sprintf("fetch failed (%s): %v", e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func fetchErr(reason FetchReason, err error) *FetchError {
	return &FetchError{Reason: reason, Err: err}
}

// ReasonOf extracts the fetch reason from an error chain.
func ReasonOf(err error) (FetchReason, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Reason, true
	}
	return "", false
}
