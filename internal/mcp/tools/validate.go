package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/apiscout-mcp/pkg/schema"
	"github.com/usestring/apiscout-mcp/pkg/types"
)

// maxValidationErrors caps the errors returned by apiscout_validate_endpoint.
const maxValidationErrors = 50

// ValidateEndpointInput is the input for apiscout_validate_endpoint.
type ValidateEndpointInput struct {
	Endpoint string `json:"endpoint" jsonschema:"Endpoint key from apiscout_list_endpoints"`
}

// ToolValidateEndpoint fetches an endpoint again and checks the live
// response against the schema of its cached analysis, reporting drift. When
// nothing is cached the endpoint is analyzed first to establish a baseline.
func ToolValidateEndpoint(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateEndpointInput) (*sdkmcp.CallToolResult, types.ValidateEndpointOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateEndpointInput) (*sdkmcp.CallToolResult, types.ValidateEndpointOutput, error) {
		if input.Endpoint == "" {
			return nil, types.ValidateEndpointOutput{}, ErrInvalidInput("endpoint is required")
		}

		baseline, cached, err := d.Result(ctx, input.Endpoint, false)
		if err != nil {
			return nil, types.ValidateEndpointOutput{}, err
		}

		validator, err := schema.NewValidator(baseline.Schema)
		if err != nil {
			return nil, types.ValidateEndpointOutput{}, fmt.Errorf("compiling baseline schema: %w", err)
		}

		ep, err := d.Registry.Get(input.Endpoint)
		if err != nil {
			return nil, types.ValidateEndpointOutput{}, WrapScoutError(err)
		}
		doc, err := d.Analyzer.Fetch(ctx, ep)
		if err != nil {
			return nil, types.ValidateEndpointOutput{}, WrapScoutError(err)
		}

		result := validator.ValidateValue(doc)
		out := types.ValidateEndpointOutput{
			Endpoint:           input.Endpoint,
			Valid:              result.Valid,
			Errors:             result.Errors,
			BaselineAnalyzedAt: formatTime(baseline.Schema.AnalyzedAt),
		}
		if len(out.Errors) > maxValidationErrors {
			out.Errors = out.Errors[:maxValidationErrors]
		}

		switch {
		case !cached:
			out.Hint = "No baseline was cached; the endpoint was analyzed first, so only changes between the two fetches show up."
		case !out.Valid:
			out.Hint = "The response no longer matches the cached analysis. Run apiscout_analyze_endpoint with refresh=true to accept the new shape."
		}
		return nil, out, nil
	}
}
