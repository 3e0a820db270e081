package prompts

import (
	"context"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptText(t *testing.T, res *sdkmcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, res.Messages, 1)
	tc, ok := res.Messages[0].Content.(*sdkmcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func getPrompt(args map[string]string) *sdkmcp.GetPromptRequest {
	return &sdkmcp.GetPromptRequest{Params: &sdkmcp.GetPromptParams{Arguments: args}}
}

func TestHandleGuide(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		contains []string
		excludes []string
	}{
		{
			name: "lists endpoints",
			cfg: &Config{
				SampleSize: 10,
				Endpoints:  func() []string { return []string{"users", "orders"} },
			},
			contains: []string{"- `users`", "- `orders`", "first 10 records"},
			excludes: []string{"No endpoints are configured", "Strict type detection"},
		},
		{
			name:     "no endpoints",
			cfg:      &Config{EndpointsFile: "api.yaml", StrictTypes: true},
			contains: []string{"No endpoints are configured (endpoints file: `api.yaml`)", "Strict type detection is on", "first 5 records"},
		},
		{
			name:     "nil config",
			cfg:      nil,
			contains: []string{"No endpoints are configured."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := HandleGuide(tt.cfg)(context.Background(), getPrompt(nil))
			require.NoError(t, err)
			text := promptText(t, res)
			for _, s := range tt.contains {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestHandleDocumentAPI(t *testing.T) {
	cfg := &Config{Endpoints: func() []string { return []string{"users"} }}

	t.Run("single endpoint", func(t *testing.T) {
		res, err := HandleDocumentAPI(cfg)(context.Background(), getPrompt(map[string]string{
			"endpoint": " orders ",
			"audience": "data analysts",
		}))
		require.NoError(t, err)
		text := promptText(t, res)
		assert.Contains(t, text, "Document only the endpoint `orders`.")
		assert.Contains(t, text, `apiscout_get_fields(endpoint="orders")`)
		assert.Contains(t, text, "Write for: **data analysts**.")
		assert.NotContains(t, text, "apiscout_analyze_all()")
	})

	t.Run("all configured", func(t *testing.T) {
		res, err := HandleDocumentAPI(cfg)(context.Background(), getPrompt(nil))
		require.NoError(t, err)
		text := promptText(t, res)
		assert.Contains(t, text, "- `users`")
		assert.Contains(t, text, "apiscout_analyze_all()")
		assert.NotContains(t, text, "Write for:")
	})

	t.Run("nothing configured", func(t *testing.T) {
		res, err := HandleDocumentAPI(&Config{})(context.Background(), getPrompt(nil))
		require.NoError(t, err)
		assert.Contains(t, promptText(t, res), "Call `apiscout_list_endpoints` first")
	})
}
