package schema

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DataType is the semantic type detected for a single JSON value.
type DataType string

const (
	TypeNull          DataType = "null"
	TypeBoolean       DataType = "boolean"
	TypeInteger       DataType = "integer"
	TypeFloat         DataType = "float"
	TypeString        DataType = "string"
	TypeEmail         DataType = "email"
	TypeURL           DataType = "url"
	TypeUUID          DataType = "uuid"
	TypeDateTime      DataType = "datetime"
	TypeDate          DataType = "date"
	TypeNumericString DataType = "numeric_string"
	TypeJSONString    DataType = "json_string"
	TypeBase64        DataType = "base64"
	TypeArray         DataType = "array"
	TypeObject        DataType = "object"
	TypeUnknown       DataType = "unknown"
)

var allDataTypes = []DataType{
	TypeNull, TypeBoolean, TypeInteger, TypeFloat, TypeString, TypeEmail,
	TypeURL, TypeUUID, TypeDateTime, TypeDate, TypeNumericString,
	TypeJSONString, TypeBase64, TypeArray, TypeObject, TypeUnknown,
}

// AllDataTypes returns every DataType in declaration order.
func AllDataTypes() []DataType {
	out := make([]DataType, len(allDataTypes))
	copy(out, allDataTypes)
	return out
}

// ParseDataType converts an identifier such as "numeric_string" to a DataType.
func ParseDataType(s string) (DataType, error) {
	for _, t := range allDataTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown data type: %q", s)
}

// String returns the identifier.
func (t DataType) String() string {
	return string(t)
}

// Label returns a human-readable label for the type.
func (t DataType) Label() string {
	switch t {
	case TypeInteger:
		return "Number (Integer)"
	case TypeFloat:
		return "Number (Decimal)"
	case TypeBoolean:
		return "True/False"
	case TypeEmail:
		return "Email Address"
	case TypeURL:
		return "Website URL"
	case TypeUUID:
		return "Unique ID"
	case TypeDateTime:
		return "Date & Time"
	case TypeDate:
		return "Date"
	case TypeNumericString:
		return "Number (as Text)"
	case TypeJSONString:
		return "JSON Data"
	case TypeBase64:
		return "Encoded Data"
	case TypeArray:
		return "List"
	case TypeObject:
		return "Object"
	case TypeNull:
		return "Empty"
	default:
		// Casers are stateful, so one per call.
		return cases.Title(language.English).String(string(t))
	}
}

// IsContainer reports whether values of this type hold nested structure.
func (t DataType) IsContainer() bool {
	return t == TypeArray || t == TypeObject
}
