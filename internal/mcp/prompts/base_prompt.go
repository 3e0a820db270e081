package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleGuide serves the tool usage guide. The endpoint table lists the keys
// configured when the prompt is requested.
func HandleGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var sb strings.Builder

		sb.WriteString("# apiscout Tool Guide\n\n")

		// --- Configured endpoints ---
		sb.WriteString("## Configured Endpoints\n\n")
		keys := cfg.endpointKeys()
		if len(keys) == 0 {
			sb.WriteString("No endpoints are configured")
			if cfg != nil && cfg.EndpointsFile != "" {
				fmt.Fprintf(&sb, " (endpoints file: `%s`)", cfg.EndpointsFile)
			}
			sb.WriteString(". Ask the user to add entries under `endpoints:` in the endpoints file; it is reloaded automatically when watching is enabled.\n")
		} else {
			for _, k := range keys {
				fmt.Fprintf(&sb, "- `%s`\n", k)
			}
		}

		// --- Which tool ---
		sb.WriteString("\n## Which Tool\n\n")
		sb.WriteString("| Goal | Tool | Cost |\n")
		sb.WriteString("|------|------|------|\n")
		sb.WriteString("| See what can be analyzed | `apiscout_list_endpoints` | none (no network) |\n")
		sb.WriteString("| Shape of one response | `apiscout_analyze_endpoint` | one request, cached afterwards |\n")
		sb.WriteString("| Overview of every endpoint | `apiscout_analyze_all` | one request per endpoint |\n")
		sb.WriteString("| Nested paths and field frequency | `apiscout_get_fields` | cached analysis |\n")
		sb.WriteString("| Machine-readable contract | `apiscout_export_schema` | cached analysis |\n")
		sb.WriteString("| Has the API drifted? | `apiscout_validate_endpoint` | one request |\n")
		sb.WriteString("| Why does auth fail? | `apiscout_token_info` | none |\n")
		sb.WriteString("| Force a new token exchange | `apiscout_clear_tokens` | none |\n")

		// --- Types ---
		sb.WriteString("\n## Detected Types\n\n")
		sb.WriteString("Strings are refined in this order: `email`, `url`, `uuid`, `datetime`, `date`, `numeric_string`, `json_string`, `base64`, then plain `string`. ")
		sb.WriteString("Numbers are `integer` or `float` by their literal. `array` and `object` fields carry nested fields.\n")
		if cfg != nil && cfg.StrictTypes {
			sb.WriteString("\nStrict type detection is on: strings are never refined.\n")
		}

		// --- Sampling ---
		sb.WriteString("\n## Sampling\n\n")
		sampleSize := 5
		if cfg != nil && cfg.SampleSize > 0 {
			sampleSize = cfg.SampleSize
		}
		fmt.Fprintf(&sb, "- Arrays are inferred from the first %d records; pass `sample_size` to `apiscout_analyze_endpoint` to widen it\n", sampleSize)
		sb.WriteString("- A field's type is taken from the first record that has a non-null value; later conflicting records do not change it\n")
		sb.WriteString("- A field is `nullable` when it was null or missing in at least one sampled record\n")

		// --- Tips ---
		sb.WriteString("\n## Tips\n")
		sb.WriteString("- Analyses are cached; pass `refresh: true` only when the upstream data changed\n")
		sb.WriteString("- Responses wrapped in an envelope (`{\"data\": [...]}`) are best narrowed with a `select` expression in the endpoints file\n")
		sb.WriteString("- The full cached analysis is available as the resource `apiscout://result/{endpoint}` (high context cost)\n")
		sb.WriteString("- `AUTH_ERROR` results: check `apiscout_token_info` for expiry before retrying\n")

		return &sdkmcp.GetPromptResult{
			Description: "Essential guide for efficient tool usage",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
