package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleDocumentAPI implements the data dictionary workflow.
func HandleDocumentAPI(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments

		endpoint := ""
		audience := ""
		if args != nil {
			if v, ok := args["endpoint"]; ok {
				endpoint = strings.TrimSpace(v)
			}
			if v, ok := args["audience"]; ok {
				audience = strings.TrimSpace(v)
			}
		}

		var sb strings.Builder

		// 1. Role/Persona
		sb.WriteString("# Document API Responses\n\n")
		sb.WriteString("You are a technical writer documenting the data returned by HTTP/JSON APIs. ")
		sb.WriteString("Your goal is an accurate data dictionary built only from what the endpoints actually return.\n\n")
		if audience != "" {
			fmt.Fprintf(&sb, "Write for: **%s**.\n\n", audience)
		}

		// 2. Scope
		sb.WriteString("## Scope\n\n")
		if endpoint != "" {
			fmt.Fprintf(&sb, "Document only the endpoint `%s`.\n\n", endpoint)
		} else if keys := cfg.endpointKeys(); len(keys) > 0 {
			sb.WriteString("Document these configured endpoints:\n")
			for _, k := range keys {
				fmt.Fprintf(&sb, "- `%s`\n", k)
			}
			sb.WriteString("\n")
		} else {
			sb.WriteString("Call `apiscout_list_endpoints` first to find the configured endpoints.\n\n")
		}

		// 3. Workflow Steps
		sb.WriteString("## Workflow Steps\n\n")
		sb.WriteString("1. **Summarize** - Get shape and record counts\n")
		sb.WriteString("   - `is_array` endpoints return collections; describe one record\n")
		sb.WriteString("   - `is_object` endpoints return a single document\n")
		sb.WriteString("   - Neither flag set means a scalar payload; say so and move on\n\n")
		sb.WriteString("2. **Collect fields** - Walk nested paths\n")
		sb.WriteString("   - Use `frequency` below 1.0 to mark optional fields\n")
		sb.WriteString("   - `nullable` fields need an explicit note\n")
		sb.WriteString("   - Report detected formats (email, url, uuid, date, datetime) rather than plain string\n\n")
		sb.WriteString("3. **Auth** - Note how each endpoint authenticates (`auth_type` from the listing)\n\n")

		sb.WriteString("## Suggested Tools\n\n")
		sb.WriteString("```\n")
		if endpoint != "" {
			sb.WriteString("# Step 1: Summarize\n")
			fmt.Fprintf(&sb, "apiscout_analyze_endpoint(endpoint=\"%s\")\n\n", endpoint)
			sb.WriteString("# Step 2: Nested fields\n")
			fmt.Fprintf(&sb, "apiscout_get_fields(endpoint=\"%s\")\n\n", endpoint)
			sb.WriteString("# Step 3 (optional): JSON Schema appendix\n")
			fmt.Fprintf(&sb, "apiscout_export_schema(endpoint=\"%s\")\n", endpoint)
		} else {
			sb.WriteString("# Step 1: Summarize everything in one call\n")
			sb.WriteString("apiscout_analyze_all()\n\n")
			sb.WriteString("# Step 2: Nested fields per endpoint\n")
			sb.WriteString("apiscout_get_fields(endpoint=\"<key>\")\n\n")
			sb.WriteString("# Step 3: Auth types\n")
			sb.WriteString("apiscout_list_endpoints()\n")
		}
		sb.WriteString("```\n\n")

		// 4. Output format
		sb.WriteString("## Expected Output Format\n\n")
		sb.WriteString("For each endpoint:\n\n")
		sb.WriteString("1. **Heading**: endpoint key, method and URL\n")
		sb.WriteString("2. **Shape**: collection or single object, record count at analysis time\n")
		sb.WriteString("3. **Field table**: path, type label, required/optional, nullable, example\n")
		sb.WriteString("4. **Notes**: envelopes, encoded payloads (json_string, base64), auth requirements\n\n")

		// 5. Constraints
		sb.WriteString("## Constraints\n\n")
		sb.WriteString("- Do NOT invent fields that were not observed\n")
		sb.WriteString("- Do NOT copy credentials or token previews into the documentation\n")
		sb.WriteString("- Do NOT read the `apiscout://result/` resources unless the tool output is insufficient\n\n")

		// 6. Error Recovery
		sb.WriteString("## If Things Go Wrong\n\n")
		sb.WriteString("- **AUTH_ERROR?** Inspect `apiscout_token_info(endpoint=...)`, then `apiscout_clear_tokens` and retry once\n")
		sb.WriteString("- **MALFORMED_RESPONSE?** The endpoint did not return JSON; document it as such\n")
		sb.WriteString("- **Only 5 records sampled?** Re-run `apiscout_analyze_endpoint` with a larger `sample_size` if optional fields look incomplete\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide for documenting API response data",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
