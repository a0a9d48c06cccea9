package gateway

import (
	"errors"
	"net/http"
)

// FallbackMessage is sent when a failure carries no message of its own.
const FallbackMessage = "An error occurred while processing your request"

// Kind classifies a relay failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidRequest
	KindConfiguration
	KindUpstreamRejected
	KindUpstreamUnavailable
	KindRequestTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindConfiguration:
		return "configuration_error"
	case KindUpstreamRejected:
		return "upstream_rejected"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindRequestTooLarge:
		return "request_too_large"
	}
	return "unknown"
}

// HTTPStatus is the response status a failure of this kind is reported with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindUpstreamRejected:
		return http.StatusBadGateway
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case KindRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// Error is a classified relay failure. Message is safe to show to clients;
// Err keeps the full cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = FallbackMessage
	}
	if e.Err != nil {
		return e.Kind.String() + ": " + msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a classified error, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// PublicMessage returns the text a client may see for err. It is never empty.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return FallbackMessage
}
