package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/apiscout-mcp/internal/mcp/tools"
)

// Supported URIs:
//   apiscout://result/{endpoint}

// registerResources registers resource templates and handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: tools.ResultURIPrefix + "{endpoint}",
		Name:        "Endpoint Analysis",
		Description: "Full cached analysis of an endpoint: every field with nested schemas, sample data and summary. High context cost - apiscout_analyze_endpoint already returns the top-level fields. Only available after the endpoint was analyzed.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceResult)
}

func (s *Server) handleResourceResult(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	key, err := parseResultURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	res, ok := s.deps.Results.Get(key)
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	return toResourceResult(req.Params.URI, res)
}

// parseResultURI extracts the endpoint key from an apiscout://result/ URI.
func parseResultURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, tools.ResultURIPrefix) {
		return "", tools.ErrInvalidInput("invalid URI: expected " + tools.ResultURIPrefix + "{endpoint}")
	}

	raw := strings.TrimPrefix(uri, tools.ResultURIPrefix)
	if raw == "" || strings.Contains(raw, "/") {
		return "", tools.ErrInvalidInput("result URI requires exactly one endpoint key")
	}

	key, err := url.PathUnescape(raw)
	if err != nil {
		return "", tools.ErrInvalidInput(fmt.Sprintf("invalid endpoint key %q: %v", raw, err))
	}
	return key, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
