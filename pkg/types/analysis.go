package types

// FieldInfo is one top-level field of an analysis.
type FieldInfo struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	TypeLabel string `json:"type_label"`
	Nullable  bool   `json:"nullable"`
	Example   any    `json:"example,omitempty"`
	// Nested is the number of fields of a nested object or array of
	// objects.
	Nested int `json:"nested_fields,omitempty"`
}

// AnalysisSummary is the compact overview of one analysis.
type AnalysisSummary struct {
	Endpoint     string `json:"endpoint"`
	Type         string `json:"type"`
	TotalRecords int    `json:"total_records"`
	FieldCount   int    `json:"field_count"`
	AnalyzedAt   string `json:"analyzed_at"`
}

// AnalyzeEndpointOutput is the output of apiscout_analyze_endpoint.
type AnalyzeEndpointOutput struct {
	Summary        AnalysisSummary `json:"summary"`
	IsArray        bool            `json:"is_array"`
	IsObject       bool            `json:"is_object"`
	SampledRecords int             `json:"sampled_records"`
	Fields         []FieldInfo     `json:"fields,omitzero"`
	NullableFields []string        `json:"nullable_fields,omitzero"`
	// SampleData holds up to three records, compacted for display.
	SampleData any          `json:"sample_data,omitempty"`
	Cached     bool         `json:"cached"`
	Resource   *ResourceRef `json:"resource,omitempty"`
	Hint       string       `json:"hint,omitempty"`
}

// AnalyzeAllOutput is the output of apiscout_analyze_all.
type AnalyzeAllOutput struct {
	Results []AnalysisSummary `json:"results,omitzero"`
	Total   int               `json:"total"`
	Hint    string            `json:"hint,omitempty"`
}

// FieldStatInfo is one row of apiscout_get_fields, covering nested paths.
type FieldStatInfo struct {
	Path      string  `json:"path"`
	Type      string  `json:"type"`
	TypeLabel string  `json:"type_label"`
	Frequency float64 `json:"frequency"`
	Required  bool    `json:"required"`
	Nullable  bool    `json:"nullable"`
	Seen      int     `json:"seen"`
	NullCount int     `json:"null_count"`
	Example   any     `json:"example,omitempty"`
}

// GetFieldsOutput is the output of apiscout_get_fields.
type GetFieldsOutput struct {
	Endpoint string          `json:"endpoint"`
	Fields   []FieldStatInfo `json:"fields,omitzero"`
	Total    int             `json:"total"`
	Hint     string          `json:"hint,omitempty"`
}

// ExportSchemaOutput is the output of apiscout_export_schema.
type ExportSchemaOutput struct {
	Endpoint string `json:"endpoint"`
	// Schema is a JSON Schema (draft 2020-12) document.
	Schema any    `json:"schema"`
	Hint   string `json:"hint,omitempty"`
}

// ValidateEndpointOutput is the output of apiscout_validate_endpoint.
type ValidateEndpointOutput struct {
	Endpoint string   `json:"endpoint"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitzero"`
	// BaselineAnalyzedAt is when the schema validated against was inferred.
	BaselineAnalyzedAt string `json:"baseline_analyzed_at"`
	Hint               string `json:"hint,omitempty"`
}
