package client

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Request describes one outbound call.
type Request struct {
	Method  string // defaults to GET
	URL     string
	Headers map[string]string
	Query   url.Values // merged into any query already present in URL
	Body    []byte
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the media type of the response without parameters,
// or "" when absent or unparsable.
func (r *Response) ContentType() string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

const maxStatusMessageLen = 200

// StatusError is returned (wrapped) for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// errorResponse covers the common JSON error envelopes.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
}

func newStatusError(resp *Response) *StatusError {
	var errResp errorResponse
	if json.Unmarshal(resp.Body, &errResp) == nil {
		switch {
		case errResp.ErrorDescription != "":
			return &StatusError{StatusCode: resp.StatusCode, Message: errResp.ErrorDescription}
		case errResp.Error != "":
			return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Error}
		case errResp.Message != "":
			return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Message}
		}
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: truncate(strings.TrimSpace(string(resp.Body)))}
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxStatusMessageLen {
		return s
	}
	return string([]rune(s)[:maxStatusMessageLen]) + "..."
}
