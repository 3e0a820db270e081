package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/apiscout-mcp/pkg/types"
)

// ExportSchemaInput is the input for apiscout_export_schema.
type ExportSchemaInput struct {
	Endpoint string `json:"endpoint" jsonschema:"Endpoint key from apiscout_list_endpoints"`
	Refresh  bool   `json:"refresh,omitempty" jsonschema:"Fetch again instead of using the cached analysis"`
}

// ToolExportSchema renders the inferred schema as a JSON Schema document.
func ToolExportSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportSchemaInput) (*sdkmcp.CallToolResult, types.ExportSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportSchemaInput) (*sdkmcp.CallToolResult, types.ExportSchemaOutput, error) {
		if input.Endpoint == "" {
			return nil, types.ExportSchemaOutput{}, ErrInvalidInput("endpoint is required")
		}

		res, _, err := d.Result(ctx, input.Endpoint, input.Refresh)
		if err != nil {
			return nil, types.ExportSchemaOutput{}, err
		}

		doc, err := types.ToAny(res.Schema.JSONSchema())
		if err != nil {
			return nil, types.ExportSchemaOutput{}, fmt.Errorf("serializing schema: %w", err)
		}

		return nil, types.ExportSchemaOutput{
			Endpoint: input.Endpoint,
			Schema:   doc,
			Hint:     "Fields that were null or missing in a sampled record are optional and accept null.",
		}, nil
	}
}
