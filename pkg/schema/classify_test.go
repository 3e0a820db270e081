package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  DataType
	}{
		{"nil", nil, TypeNull},
		{"true", true, TypeBoolean},
		{"false", false, TypeBoolean},
		{"int", 42, TypeInteger},
		{"int64", int64(-7), TypeInteger},
		{"uint8", uint8(3), TypeInteger},
		{"whole float", 30.0, TypeInteger},
		{"fractional float", 3.14, TypeFloat},
		{"float32", float32(2.5), TypeFloat},
		{"infinity", math.Inf(1), TypeFloat},
		{"json integer", json.Number("30"), TypeInteger},
		{"json decimal", json.Number("1.0"), TypeFloat},
		{"json exponent", json.Number("1e3"), TypeFloat},
		{"array", []any{1, 2}, TypeArray},
		{"empty array", []any{}, TypeArray},
		{"map", map[string]any{"a": 1}, TypeObject},
		{"ordered object", NewObject(), TypeObject},
		{"struct", struct{}{}, TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.value))
		})
	}
}

func TestClassifyString(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  DataType
	}{
		// email
		{"email", "test@example.com", TypeEmail},
		{"email plus", "user.name+tag@example.co.uk", TypeEmail},
		{"email no local part", "@example.com", TypeString},
		{"email no domain", "test@", TypeString},
		{"email missing at", "test.example.com", TypeString},
		{"email display name", "Jane <jane@example.com>", TypeString},

		// url
		{"https url", "https://example.com", TypeURL},
		{"http url with path", "http://www.example.com/path?q=1", TypeURL},
		{"ftp url", "ftp://example.com", TypeURL},
		{"bare http scheme", "http://", TypeString},
		{"bare https scheme", "https://", TypeString},
		{"host without scheme", "example.com", TypeString},

		// uuid
		{"uuid", "550e8400-e29b-41d4-a716-446655440000", TypeUUID},
		{"uuid upper", "550E8400-E29B-41D4-A716-446655440000", TypeUUID},
		{"uuid braces", "{550e8400-e29b-41d4-a716-446655440000}", TypeString},
		{"uuid short", "550e8400-e29b-41d4-a716", TypeString},

		// date
		{"date", "2023-12-25", TypeDate},
		{"leap day", "2024-02-29", TypeDate},
		{"bad month", "2023-13-25", TypeString},
		{"bad day", "2023-12-32", TypeString},
		{"not a leap year", "2023-02-29", TypeString},

		// datetime
		{"datetime space", "2023-12-25 10:30:00", TypeDateTime},
		{"datetime T", "2023-12-25T10:30:00", TypeDateTime},
		{"datetime Z", "2023-12-25T10:30:00Z", TypeDateTime},
		{"datetime offset", "2023-12-25T10:30:00+00:00", TypeDateTime},
		{"datetime fraction", "2023-12-25 10:30:00.123", TypeDateTime},
		{"one second past epoch", "1970-01-01 00:00:01", TypeDateTime},
		{"epoch midnight", "1970-01-01 00:00:00", TypeString},
		{"any midnight", "2023-12-25T00:00:00Z", TypeString},
		{"datetime bad month", "2023-13-25 10:30:00", TypeString},
		{"datetime bad hour", "2023-12-25 25:30:00", TypeString},
		{"not a datetime", "not-a-datetime", TypeString},

		// numeric string
		{"numeric", "123", TypeNumericString},
		{"numeric negative", "-42", TypeNumericString},
		{"numeric decimal", "123.45", TypeNumericString},
		{"numeric leading dot", ".5", TypeNumericString},
		{"numeric trailing dot", "5.", TypeNumericString},
		{"numeric with letters", "12abc", TypeString},

		// json string
		{"json empty array", "[]", TypeJSONString},
		{"json empty object", "{}", TypeJSONString},
		{"json array", "[1, 2, 3]", TypeJSONString},
		{"json object", `{"key": "value"}`, TypeJSONString},
		{"json invalid", `{"key": value}`, TypeString},

		// base64
		{"base64 padded", "SGVsbG8gV29ybGQ=", TypeBase64},
		{"base64 double pad", "dGVzdA==", TypeBase64},
		{"base64 alphabet", "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/", TypeBase64},
		{"base64 missing pad", "SGVsbG8gV29ybGQ", TypeString},
		{"base64 extra pad", "SGVsbG8gV29ybGQ==", TypeString},
		{"base64 bad char", "SGVsbG8gV29ybGQ!", TypeString},

		// plain string
		{"empty", "", TypeString},
		{"words", "hello world", TypeString},
		{"name", "Alice Smith", TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyString(tt.value), "value %q", tt.value)
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// An email is also a valid URL-ish string; email is checked first.
	assert.Equal(t, TypeEmail, Classify("admin@example.org"))
	// Digits-only strings are numeric before they are JSON.
	assert.Equal(t, TypeNumericString, Classify("2023"))
	// A date is never reported as a datetime.
	assert.Equal(t, TypeDate, Classify("2023-12-25"))
}

func TestDataType_Label(t *testing.T) {
	tests := []struct {
		typ  DataType
		want string
	}{
		{TypeInteger, "Number (Integer)"},
		{TypeFloat, "Number (Decimal)"},
		{TypeBoolean, "True/False"},
		{TypeEmail, "Email Address"},
		{TypeURL, "Website URL"},
		{TypeUUID, "Unique ID"},
		{TypeDateTime, "Date & Time"},
		{TypeDate, "Date"},
		{TypeNumericString, "Number (as Text)"},
		{TypeJSONString, "JSON Data"},
		{TypeBase64, "Encoded Data"},
		{TypeArray, "List"},
		{TypeObject, "Object"},
		{TypeNull, "Empty"},
		{TypeString, "String"},
		{TypeUnknown, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Label())
		})
	}
}

func TestParseDataType(t *testing.T) {
	for _, dt := range AllDataTypes() {
		got, err := ParseDataType(dt.String())
		assert.NoError(t, err)
		assert.Equal(t, dt, got)
	}

	_, err := ParseDataType("timestamp")
	assert.Error(t, err)
	assert.Len(t, AllDataTypes(), 16)
}
