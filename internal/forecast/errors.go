package forecast

import (
	"errors"
)

// DefaultFailureMessage is used when the provider gives no usable message.
const DefaultFailureMessage = "Weather API request failed"

// ErrEmptyRequest is returned when a cache write has nothing to derive a key from.
var ErrEmptyRequest = errors.New("forecast request has neither location nor postal code")

// ErrorKind classifies why a forecast could not be produced.
type ErrorKind string

const (
	// KindTransport: the HTTP call itself failed (network, circuit open).
	KindTransport ErrorKind = "transport_error"
	// KindAPI: the provider answered with a non-success status.
	KindAPI ErrorKind = "api_error"
	// KindMalformed: a success response whose body is not a JSON object.
	KindMalformed ErrorKind = "malformed_response"
)

// Error is a classified forecast failure. Message is safe to show to users.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
