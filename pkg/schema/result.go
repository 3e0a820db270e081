package schema

import (
	"encoding/json"
	"time"
)

// Kinds returned by Result.Kind.
const (
	KindArray   = "array"
	KindObject  = "object"
	KindUnknown = "unknown"
)

// Result is the inferred schema of one payload.
type Result struct {
	IsArray        bool
	IsObject       bool
	TotalRecords   int
	SampledRecords int
	SampleData     any
	AnalyzedAt     time.Time

	fields *Fields
}

// Fields returns the ordered field map. Never nil.
func (r *Result) Fields() *Fields {
	if r.fields == nil {
		return NewFields()
	}
	return r.fields
}

// FieldNames returns field names in payload order.
func (r *Result) FieldNames() []string {
	return r.Fields().Names()
}

// NullableFields returns the fields that were null or missing in at least one
// sampled record.
func (r *Result) NullableFields() *Fields {
	return r.Fields().Filter(func(_ string, f FieldDescriptor) bool {
		return f.Nullable
	})
}

// FieldsByType returns the fields whose detected type is t.
func (r *Result) FieldsByType(t DataType) *Fields {
	return r.Fields().Filter(func(_ string, f FieldDescriptor) bool {
		return f.Type == t
	})
}

// Kind returns "array", "object" or "unknown".
func (r *Result) Kind() string {
	switch {
	case r.IsArray:
		return KindArray
	case r.IsObject:
		return KindObject
	default:
		return KindUnknown
	}
}

type resultJSON struct {
	IsArray        bool      `json:"is_array"`
	IsObject       bool      `json:"is_object"`
	TotalRecords   int       `json:"total_records"`
	SampledRecords int       `json:"sampled_records"`
	Fields         *Fields   `json:"fields"`
	SampleData     any       `json:"sample_data"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		IsArray:        r.IsArray,
		IsObject:       r.IsObject,
		TotalRecords:   r.TotalRecords,
		SampledRecords: r.SampledRecords,
		Fields:         r.Fields(),
		SampleData:     r.SampleData,
		AnalyzedAt:     r.AnalyzedAt,
	})
}
