// Package mcpsrv provides an extensible MCP server that analyzes the
// responses of configured HTTP/JSON endpoints.
//
// Endpoints are read from a YAML or JSON file (APISCOUT_ENDPOINTS_FILE,
// default endpoints.yaml):
//
//	timeout: 30
//	type_detection:
//	  sample_size: 5
//	endpoints:
//	  users:
//	    url: https://api.example.com/users
//	    select: .data
//	    auth:
//	      type: token_endpoint
//	      token_endpoint: https://api.example.com/oauth/token
//	      credentials:
//	        client_id: ${CLIENT_ID}
//	        client_secret: ${CLIENT_SECRET}
//
// # Basic Usage
//
//	server, err := mcpsrv.NewServer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly. WithDepsTool gives the
// handler access to the analyzer, registry and result cache:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type CountInput struct {
//	    Endpoint string `json:"endpoint"`
//	}
//
//	type CountOutput struct {
//	    Records int `json:"records"`
//	}
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithDepsTool(&mcp.Tool{Name: "count_records"},
//	        func(d *mcpsrv.Deps) func(ctx context.Context, req *mcp.CallToolRequest, in CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	            return func(ctx context.Context, req *mcp.CallToolRequest, in CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	                res, err := d.Analyzer.AnalyzeKey(ctx, d.Registry, in.Endpoint)
//	                if err != nil {
//	                    return nil, CountOutput{}, err
//	                }
//	                return nil, CountOutput{Records: res.TotalRecords()}, nil
//	            }
//	        }),
//	)
//
// # Configuration
//
// Everything is configured through environment variables (see
// internal/config); options override them:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithEndpointsFile("/etc/apiscout/endpoints.yaml"),
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/apiscout-mcp.log"),
//	)
package mcpsrv
