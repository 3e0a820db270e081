package mcpsrv

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/apiscout-mcp/internal/mcp/tools"
)

// AddTool registers a tool with the server after checking that the zero
// value of its output type passes the JSON schema the SDK infers for it. A
// nil slice marshals as null, which an inferred "type": "array" rejects at
// call time; the check moves that failure to startup.
//
// Panics with the offending type and a suggested fix when the check fails.
//
// Use this instead of [sdkmcp.AddTool] to get the additional check.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	tools.AddTool(srv, t, h)
}
