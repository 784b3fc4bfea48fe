package trends

import (
	"errors"
	"fmt"
)

// Kind classifies why a fetch produced no data.
type Kind int

const (
	// KindRemoteRejected is a non-200 answer from the provider.
	KindRemoteRejected Kind = iota + 1
	// KindTransport is a failure before any HTTP status was received.
	KindTransport
	// KindMalformed is a 200 answer whose body could not be read as a series.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindRemoteRejected:
		return "rejected"
	case KindTransport:
		return "transport"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// FetchError is returned by Client.Fetch for every failure. Callers treat all
// kinds the same way: warn and continue with an empty series.
type FetchError struct {
	Kind   Kind
	Status int
	Body   string
	Cause  error
}

func RemoteRejected(status int, body string) *FetchError {
	return &FetchError{Kind: KindRemoteRejected, Status: status, Body: body}
}

func Transport(cause error) *FetchError {
	return &FetchError{Kind: KindTransport, Cause: cause}
}

func Malformed(cause error) *FetchError {
	return &FetchError{Kind: KindMalformed, Cause: cause}
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindRemoteRejected:
		return fmt.Sprintf("trend API returned status %d: %s", e.Status, e.Body)
	case KindTransport:
		return fmt.Sprintf("trend API request failed: %v", e.Cause)
	case KindMalformed:
		return fmt.Sprintf("trend API response malformed: %v", e.Cause)
	default:
		return fmt.Sprintf("trend API error: %v", e.Cause)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// AsFetchError unwraps err into a *FetchError when possible.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
