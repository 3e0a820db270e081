package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/apiscout-mcp/pkg/types"
)

// ListEndpointsInput is the input for apiscout_list_endpoints.
type ListEndpointsInput struct{}

// ToolListEndpoints lists the configured endpoints without credentials.
func ToolListEndpoints(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListEndpointsInput) (*sdkmcp.CallToolResult, types.ListEndpointsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListEndpointsInput) (*sdkmcp.CallToolResult, types.ListEndpointsOutput, error) {
		keys := d.Registry.Keys()
		out := types.ListEndpointsOutput{
			Endpoints: make([]types.EndpointInfo, 0, len(keys)),
			Total:     len(keys),
		}

		for _, key := range keys {
			ep, err := d.Registry.Get(key)
			if err != nil {
				// Removed by a concurrent reload.
				continue
			}
			info := types.EndpointInfo{
				Key:         key,
				URL:         ep.URL,
				Method:      ep.Method,
				AuthType:    ep.Auth.Type(),
				Select:      ep.Select,
				Description: ep.Description,
			}
			if res, ok := d.Results.Get(key); ok {
				info.LastAnalyzedAt = formatTime(res.Schema.AnalyzedAt)
			}
			out.Endpoints = append(out.Endpoints, info)
		}
		out.Total = len(out.Endpoints)

		if out.Total == 0 {
			out.Hint = "No endpoints configured. Add entries under 'endpoints' in " + d.Config.EndpointsFile + "."
		} else {
			out.Hint = "Use apiscout_analyze_endpoint with a key to infer its response schema."
		}
		return nil, out, nil
	}
}
