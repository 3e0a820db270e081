package tools

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/apiscout-mcp/pkg/schema"
	"github.com/usestring/apiscout-mcp/pkg/types"
)

// GetFieldsInput is the input for apiscout_get_fields.
type GetFieldsInput struct {
	Endpoint     string `json:"endpoint" jsonschema:"Endpoint key from apiscout_list_endpoints"`
	Type         string `json:"type,omitempty" jsonschema:"Only fields of this detected type, e.g. email, uuid, datetime, integer"`
	NullableOnly bool   `json:"nullable_only,omitempty" jsonschema:"Only fields that were null or missing in some record"`
	PathPrefix   string `json:"path_prefix,omitempty" jsonschema:"Only fields under this path, e.g. 'address' or 'items[]'"`
	Refresh      bool   `json:"refresh,omitempty" jsonschema:"Fetch again instead of using the cached analysis"`
}

// ToolGetFields returns per-field statistics including nested paths.
func ToolGetFields(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetFieldsInput) (*sdkmcp.CallToolResult, types.GetFieldsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetFieldsInput) (*sdkmcp.CallToolResult, types.GetFieldsOutput, error) {
		if input.Endpoint == "" {
			return nil, types.GetFieldsOutput{}, ErrInvalidInput("endpoint is required")
		}

		var want schema.DataType
		if input.Type != "" {
			t, err := schema.ParseDataType(input.Type)
			if err != nil {
				return nil, types.GetFieldsOutput{}, ErrInvalidInput(err.Error())
			}
			want = t
		}

		res, _, err := d.Result(ctx, input.Endpoint, input.Refresh)
		if err != nil {
			return nil, types.GetFieldsOutput{}, err
		}

		out := types.GetFieldsOutput{Endpoint: input.Endpoint}
		for _, st := range res.Schema.FieldStats() {
			if want != "" && st.Type != want {
				continue
			}
			if input.NullableOnly && !st.Nullable {
				continue
			}
			if input.PathPrefix != "" && !underPath(st.Path, input.PathPrefix) {
				continue
			}
			out.Fields = append(out.Fields, fieldStatInfo(st))
		}
		out.Total = len(out.Fields)

		if out.Total == 0 {
			out.Hint = "No fields matched the filters."
		}
		return nil, out, nil
	}
}

func underPath(path, prefix string) bool {
	if path == prefix {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return strings.HasPrefix(rest, ".") || strings.HasPrefix(rest, "[]")
}
