package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	// Tool 1: apiscout_list_endpoints
	AddTool(srv, &sdkmcp.Tool{
		Name:        "apiscout_list_endpoints",
		Description: "List the configured API endpoints with their URL, method, auth type and optional jq select expression. Credentials are never returned. Use the key with the other apiscout tools.",
	}, ToolListEndpoints(d))

	// Tool 2: apiscout_analyze_endpoint
	AddTool(srv, &sdkmcp.Tool{
		Name:        "apiscout_analyze_endpoint",
		Description: "Fetch a configured endpoint (authenticating as configured) and infer the schema of its JSON response. Returns whether the payload is an array or object, record counts, top-level fields with detected type (integer, float, email, url, uuid, date, datetime, numeric_string, json_string, base64, ...), nullability and examples, plus up to three sample records. Uses the cached analysis unless refresh=true.",
	}, ToolAnalyzeEndpoint(d))

	// Tool 3: apiscout_analyze_all
	AddTool(srv, &sdkmcp.Tool{
		Name:        "apiscout_analyze_all",
		Description: "Analyze every configured endpoint and return one summary per endpoint (type, total_records, field_count). Fails on the first endpoint that cannot be analyzed.",
	}, ToolAnalyzeAll(d))

	// Tool 4: apiscout_get_fields
	AddTool(srv, &sdkmcp.Tool{
		Name:        "apiscout_get_fields",
		Description: "Per-field statistics for an endpoint including nested paths (e.g. address.city, items[].id): type, frequency across sampled records, required/nullable, null count and an example. Filter by type, nullable_only or path_prefix.",
	}, ToolGetFields(d))

	// Tool 5: apiscout_export_schema
	AddTool(srv, &sdkmcp.Tool{
		Name:        "apiscout_export_schema",
		Description: "Export the inferred schema of an endpoint as a JSON Schema (draft 2020-12) document, with formats for emails, URLs, UUIDs and timestamps.",
	}, ToolExportSchema(d))

	// Tool 6: apiscout_validate_endpoint
	AddTool(srv, &sdkmcp.Tool{
		Name:        "apiscout_validate_endpoint",
		Description: "Fetch an endpoint again and validate the live response against its cached analysis to detect schema drift. Returns valid and a list of violations by JSON pointer.",
	}, ToolValidateEndpoint(d))

	// Tool 7: apiscout_token_info
	AddTool(srv, &sdkmcp.Tool{
		Name:        "apiscout_token_info",
		Description: "Show the cached token-endpoint token for a cache key or endpoint: masked value, type, expiry and decoded JWT claims (unverified).",
	}, ToolTokenInfo(d))

	// Tool 8: apiscout_clear_tokens
	AddTool(srv, &sdkmcp.Tool{
		Name:        "apiscout_clear_tokens",
		Description: "Drop all cached tokens so the next analysis exchanges credentials again. Optionally drop cached analyses too.",
	}, ToolClearTokens(d))
}
