package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/usestring/apiscout-mcp/pkg/client"
	"github.com/usestring/apiscout-mcp/pkg/scouterr"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeUpstream          = "UPSTREAM_ERROR"
	ErrCodeAuth              = "AUTH_ERROR"
	ErrCodeMalformedResponse = "MALFORMED_RESPONSE"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapScoutError converts an analysis, fetch or auth failure to a coded
// error.
func WrapScoutError(err error) error {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}

	coded = &CodedError{Code: codeFor(err), Message: messageFor(err), Cause: err}

	slog.Warn("tool call failed",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)
	return coded
}

func codeFor(err error) string {
	if isTimeout(err) {
		return ErrCodeTimeout
	}

	var statusErr *client.StatusError
	if errors.As(err, &statusErr) &&
		(statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
		return ErrCodeAuth
	}

	switch scouterr.KindOf(err) {
	case scouterr.KindEndpointNotFound:
		return ErrCodeNotFound
	case scouterr.KindMalformedResponse:
		return ErrCodeMalformedResponse
	case scouterr.KindTokenNotFound, scouterr.KindAuthExchangeFailed, scouterr.KindUnknownAuthType:
		return ErrCodeAuth
	default:
		return ErrCodeUpstream
	}
}

func messageFor(err error) string {
	switch {
	case isTimeout(err):
		return "request timed out"
	case scouterr.KindOf(err) == scouterr.KindEndpointNotFound:
		var se *scouterr.Error
		errors.As(err, &se)
		return se.Message
	default:
		return "failed to analyze endpoint"
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
