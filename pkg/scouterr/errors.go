// Package scouterr defines the error kinds reported by schema inference,
// endpoint fetches and token exchange.
//
// Every failure carries a Kind so callers can branch with errors.Is against
// the exported sentinels, a human-readable Message, and the underlying Cause
// when one exists:
//
//	if errors.Is(err, scouterr.ErrTokenNotFound) {
//	    // token path misconfigured
//	}
package scouterr

import (
	"errors"
	"fmt"
)

// Kind identifies a category of failure.
type Kind string

const (
	KindMalformedResponse  Kind = "malformed_response"
	KindTransportFailure   Kind = "transport_failure"
	KindTokenNotFound      Kind = "token_not_found"
	KindUnknownAuthType    Kind = "unknown_auth_type"
	KindAuthExchangeFailed Kind = "auth_exchange_failed"
	KindEndpointNotFound   Kind = "endpoint_not_found"
)

// Error is a categorized failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. A target with an
// empty Message (the sentinels below) matches any error of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Sentinels for errors.Is.
var (
	ErrMalformedResponse  = &Error{Kind: KindMalformedResponse}
	ErrTransportFailure   = &Error{Kind: KindTransportFailure}
	ErrTokenNotFound      = &Error{Kind: KindTokenNotFound}
	ErrUnknownAuthType    = &Error{Kind: KindUnknownAuthType}
	ErrAuthExchangeFailed = &Error{Kind: KindAuthExchangeFailed}
	ErrEndpointNotFound   = &Error{Kind: KindEndpointNotFound}
)

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// MalformedResponse reports a body that is not valid JSON.
func MalformedResponse(message string, cause error) *Error {
	return Wrap(KindMalformedResponse, message, cause)
}

// TransportFailure reports a failed network call.
func TransportFailure(message string, cause error) *Error {
	return Wrap(KindTransportFailure, message, cause)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
