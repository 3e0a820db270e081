package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	// Prompt 1: Tool usage guide
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "apiscout_guide",
		Description: "RECOMMENDED: Short guide to the apiscout tools, detected types and the cheapest order to call them. Start here.",
	}, HandleGuide(cfg))

	// Prompt 2: Document the configured APIs
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "document_api",
		Description: "Produce a data dictionary for the configured endpoints: record shape, field types, nullability and auth, using the analysis tools.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "endpoint",
				Description: "Document only this endpoint key (default: all configured endpoints)",
				Required:    false,
			},
			{
				Name:        "audience",
				Description: "Who the documentation is for (e.g. 'frontend developers', 'data analysts')",
				Required:    false,
			},
		},
	}, HandleDocumentAPI(cfg))
}
