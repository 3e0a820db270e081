package schema

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	numericPattern = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)$`)
)

const (
	dateLayout      = "2006-01-02"
	dateTimeLayout  = "2006-01-02 15:04:05"
	uuidCanonLength = 36
	minBase64Length = 4
	minJSONLength   = 2
)

// dateTimeLayouts are tried in order when deciding whether a string is a
// timestamp. Layouts without fractional seconds still accept them on parse.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 Z07:00",
	"2006-01-02 15:04:05 MST",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
	time.RubyDate,
}

// Classify returns the DataType of a decoded JSON value. Numbers decoded as
// json.Number keep their literal's integer/decimal form; float64 values (as
// produced by a plain json.Unmarshal) are integers when they have no
// fractional part.
func Classify(v any) DataType {
	switch val := v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case json.Number:
		if strings.ContainsAny(string(val), ".eE") {
			return TypeFloat
		}
		return TypeInteger
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger
	case float32:
		return classifyFloat(float64(val))
	case float64:
		return classifyFloat(val)
	case string:
		return ClassifyString(val)
	case []any:
		return TypeArray
	case map[string]any, *Object:
		return TypeObject
	default:
		return TypeUnknown
	}
}

func classifyFloat(f float64) DataType {
	if math.Trunc(f) == f && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return TypeInteger
	}
	return TypeFloat
}

// ClassifyString applies the string heuristics from most to least specific.
func ClassifyString(s string) DataType {
	switch {
	case isEmail(s):
		return TypeEmail
	case isURL(s):
		return TypeURL
	case isUUID(s):
		return TypeUUID
	case isDate(s):
		return TypeDate
	case isDateTime(s):
		return TypeDateTime
	case isNumeric(s):
		return TypeNumericString
	case isJSONString(s):
		return TypeJSONString
	case isBase64(s):
		return TypeBase64
	default:
		return TypeString
	}
}

func isEmail(s string) bool {
	if strings.ContainsAny(s, " \t\r\n<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && at < len(s)-1
}

func isURL(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Hostname() != ""
}

func isUUID(s string) bool {
	return len(s) == uuidCanonLength && uuid.Validate(s) == nil
}

func isDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	t, err := time.Parse(dateLayout, s)
	return err == nil && t.Format(dateLayout) == s
}

// isDateTime rejects timestamps that land exactly on midnight, so values such
// as "1970-01-01 00:00:00" are not reported as date-times.
func isDateTime(s string) bool {
	if isDate(s) || isNumeric(s) {
		return false
	}
	t, ok := parseTimestamp(s)
	if !ok {
		return false
	}
	return t.Format(dateTimeLayout) != t.Format(dateLayout)+" 00:00:00"
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isNumeric(s string) bool {
	return numericPattern.MatchString(s)
}

func isJSONString(s string) bool {
	if len(s) < minJSONLength {
		return false
	}
	return json.Valid([]byte(s))
}

func isBase64(s string) bool {
	if len(s) < minBase64Length {
		return false
	}
	decoded, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return false
	}
	return base64.StdEncoding.EncodeToString(decoded) == s
}
