package scout

import (
	"encoding/json"
	"time"

	"github.com/usestring/apiscout-mcp/pkg/schema"
)

// Result is the analysis of one endpoint.
type Result struct {
	EndpointKey string
	Schema      *schema.Result
}

// Summary is a compact overview of a Result.
type Summary struct {
	Endpoint     string    `json:"endpoint"`
	Type         string    `json:"type"`
	TotalRecords int       `json:"total_records"`
	FieldCount   int       `json:"field_count"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}

// Summary returns the overview of the analysis.
func (r *Result) Summary() Summary {
	return Summary{
		Endpoint:     r.EndpointKey,
		Type:         r.Schema.Kind(),
		TotalRecords: r.Schema.TotalRecords,
		FieldCount:   r.Schema.Fields().Len(),
		AnalyzedAt:   r.Schema.AnalyzedAt,
	}
}

func (r *Result) Fields() *schema.Fields         { return r.Schema.Fields() }
func (r *Result) FieldNames() []string           { return r.Schema.FieldNames() }
func (r *Result) NullableFields() *schema.Fields { return r.Schema.NullableFields() }
func (r *Result) SampleData() any                { return r.Schema.SampleData }
func (r *Result) IsArray() bool                  { return r.Schema.IsArray }
func (r *Result) IsObject() bool                 { return r.Schema.IsObject }
func (r *Result) TotalRecords() int              { return r.Schema.TotalRecords }

// FieldsByType returns the fields detected as t.
func (r *Result) FieldsByType(t schema.DataType) *schema.Fields {
	return r.Schema.FieldsByType(t)
}

type resultJSON struct {
	EndpointKey string         `json:"endpoint_key"`
	Analysis    *schema.Result `json:"analysis"`
	Summary     Summary        `json:"summary"`
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		EndpointKey: r.EndpointKey,
		Analysis:    r.Schema,
		Summary:     r.Summary(),
	})
}
