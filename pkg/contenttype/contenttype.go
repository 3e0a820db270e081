// Package contenttype classifies the media type an endpoint declares for its
// response body.
package contenttype

import (
	"bytes"
	"mime"
	"strings"
)

// Category is a broad media-type classification.
type Category string

const (
	JSON    Category = "json"
	HTML    Category = "html"
	XML     Category = "xml"
	Text    Category = "text"
	Binary  Category = "binary"
	Unknown Category = "unknown"
)

// Classify returns the category for a Content-Type header value. Parameters
// such as charset are ignored. An empty value is Unknown.
func Classify(contentType string) Category {
	if strings.TrimSpace(contentType) == "" {
		return Unknown
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch {
	// application/json, application/problem+json, application/vnd.api+json
	case strings.Contains(mediaType, "json"):
		return JSON
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return HTML
	case strings.Contains(mediaType, "xml"):
		return XML
	case strings.HasPrefix(mediaType, "text/"):
		return Text
	case strings.HasPrefix(mediaType, "image/"),
		strings.HasPrefix(mediaType, "audio/"),
		strings.HasPrefix(mediaType, "video/"),
		strings.Contains(mediaType, "octet-stream"),
		strings.Contains(mediaType, "pdf"),
		strings.Contains(mediaType, "zip"):
		return Binary
	}
	return Unknown
}

// IsJSON reports whether contentType declares a JSON body.
func IsJSON(contentType string) bool {
	return Classify(contentType) == JSON
}

// LooksLikeJSON reports whether body starts like a JSON document once
// leading whitespace and a UTF-8 BOM are skipped.
func LooksLikeJSON(body []byte) bool {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	body = bytes.TrimLeft(body, " \t\r\n")
	if len(body) == 0 {
		return false
	}
	switch c := body[0]; {
	case c == '{', c == '[', c == '"', c == '-', c >= '0' && c <= '9':
		return true
	case bytes.HasPrefix(body, []byte("true")),
		bytes.HasPrefix(body, []byte("false")),
		bytes.HasPrefix(body, []byte("null")):
		return true
	}
	return false
}

// Hint describes why a body that failed to decode was probably not JSON.
// It returns "" when nothing useful can be said.
func Hint(contentType string, body []byte) string {
	switch Classify(contentType) {
	case HTML:
		return "endpoint returned an HTML page (check the URL and credentials)"
	case XML:
		return "endpoint returned XML"
	case Binary:
		return "endpoint returned binary content"
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "endpoint returned an empty body"
	}
	if !LooksLikeJSON(body) {
		return "body does not start like a JSON document"
	}
	return ""
}
