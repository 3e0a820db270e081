package types

// EndpointInfo describes one configured endpoint. Credentials are never
// included.
type EndpointInfo struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Method      string `json:"method"`
	AuthType    string `json:"auth_type"`
	Select      string `json:"select,omitempty"`
	Description string `json:"description,omitempty"`
	// LastAnalyzedAt is set when an analysis of the endpoint is cached.
	LastAnalyzedAt string `json:"last_analyzed_at,omitempty"`
}

// ListEndpointsOutput is the output of apiscout_list_endpoints.
type ListEndpointsOutput struct {
	Endpoints []EndpointInfo `json:"endpoints,omitzero"`
	Total     int            `json:"total"`
	Hint      string         `json:"hint,omitempty"`
}
