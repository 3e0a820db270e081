package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/apiscout-mcp/pkg/types"
)

// AnalyzeEndpointInput is the input for apiscout_analyze_endpoint.
type AnalyzeEndpointInput struct {
	Endpoint    string `json:"endpoint" jsonschema:"Endpoint key from apiscout_list_endpoints"`
	Refresh     bool   `json:"refresh,omitempty" jsonschema:"Fetch again even if a cached analysis exists (default: false)"`
	SampleSize  int    `json:"sample_size,omitempty" jsonschema:"Records inspected for arrays (default: configured sample size). Implies refresh."`
	StrictTypes *bool  `json:"strict_types,omitempty" jsonschema:"Override the strict-types setting. Implies refresh."`
}

// ToolAnalyzeEndpoint fetches one endpoint and infers its schema.
func ToolAnalyzeEndpoint(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input AnalyzeEndpointInput) (*sdkmcp.CallToolResult, types.AnalyzeEndpointOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input AnalyzeEndpointInput) (*sdkmcp.CallToolResult, types.AnalyzeEndpointOutput, error) {
		if input.Endpoint == "" {
			return nil, types.AnalyzeEndpointOutput{}, ErrInvalidInput("endpoint is required")
		}
		if input.SampleSize < 0 {
			return nil, types.AnalyzeEndpointOutput{}, ErrInvalidInput("sample_size must be positive")
		}

		if _, err := d.Registry.Get(input.Endpoint); err != nil {
			return nil, types.AnalyzeEndpointOutput{}, WrapScoutError(err)
		}

		overrides := AnalyzeOverrides{SampleSize: input.SampleSize, StrictTypes: input.StrictTypes}
		cached := false
		var err error
		res, ok := d.Results.Get(input.Endpoint)
		if ok && !input.Refresh && overrides.empty() {
			cached = true
		} else {
			res, err = d.Analyze(ctx, input.Endpoint, overrides)
			if err != nil {
				return nil, types.AnalyzeEndpointOutput{}, err
			}
		}

		out := types.AnalyzeEndpointOutput{
			Summary:        toSummary(res),
			IsArray:        res.IsArray(),
			IsObject:       res.IsObject(),
			SampledRecords: res.Schema.SampledRecords,
			Fields:         fieldInfos(res.Fields()),
			NullableFields: res.NullableFields().Names(),
			SampleData:     compactSample(res.SampleData(), d.Config.CompactOptions()),
			Cached:         cached,
			Resource: &types.ResourceRef{
				URI:  ResultURI(res.EndpointKey),
				MIME: MimeJSON,
				Hint: "Full analysis including nested schemas",
			},
		}

		switch {
		case !res.IsArray() && !res.IsObject():
			out.Hint = "The response is a scalar; nothing to describe. Set 'select' on the endpoint to point at the records."
		case out.Summary.FieldCount == 0:
			out.Hint = "No fields found. If the records sit inside an envelope, set 'select' (e.g. .data) on the endpoint."
		case cached:
			out.Hint = fmt.Sprintf("Cached analysis from %s. Pass refresh=true to fetch again.", out.Summary.AnalyzedAt)
		default:
			out.Hint = "Use apiscout_get_fields for nested field statistics or apiscout_export_schema for a JSON Schema."
		}
		return nil, out, nil
	}
}

// AnalyzeAllInput is the input for apiscout_analyze_all.
type AnalyzeAllInput struct{}

// ToolAnalyzeAll analyzes every configured endpoint. The first failure
// aborts the call.
func ToolAnalyzeAll(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input AnalyzeAllInput) (*sdkmcp.CallToolResult, types.AnalyzeAllOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input AnalyzeAllInput) (*sdkmcp.CallToolResult, types.AnalyzeAllOutput, error) {
		results, err := d.Analyzer.AnalyzeAll(ctx, d.Registry)
		if err != nil {
			return nil, types.AnalyzeAllOutput{}, WrapScoutError(err)
		}

		out := types.AnalyzeAllOutput{
			Results: make([]types.AnalysisSummary, 0, len(results)),
			Total:   len(results),
		}
		for _, res := range results {
			d.Results.Put(res)
			out.Results = append(out.Results, toSummary(res))
		}
		out.Hint = "Results are cached. Use apiscout_analyze_endpoint or the apiscout://result/{endpoint} resource for details."
		return nil, out, nil
	}
}
