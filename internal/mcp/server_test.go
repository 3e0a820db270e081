package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/apiscout-mcp/internal/cache"
	"github.com/usestring/apiscout-mcp/internal/config"
	"github.com/usestring/apiscout-mcp/internal/mcp/tools"
	"github.com/usestring/apiscout-mcp/pkg/client"
	"github.com/usestring/apiscout-mcp/pkg/schema"
	"github.com/usestring/apiscout-mcp/pkg/scout"
)

func newTestServer(t *testing.T, opts ...ServerOption) *Server {
	t.Helper()
	results, err := cache.NewResultCache(8)
	require.NoError(t, err)

	reg := scout.NewRegistry().Add("users", scout.Endpoint{URL: "https://api.example.com/users"})
	deps := &tools.Deps{
		Analyzer: scout.NewAnalyzer(client.New(), nil),
		Registry: reg,
		Results:  results,
		Config:   config.Load(),
	}
	s, err := NewServer(deps, opts...)
	require.NoError(t, err)
	return s
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
}

func TestNewServer_Registrations(t *testing.T) {
	called := false
	s := newTestServer(t,
		WithBuiltinTools(),
		WithBuiltinPrompts(),
		WithCustomRegistration(func(srv *sdkmcp.Server) {
			called = true
		}),
	)
	assert.NotNil(t, s.MCPServer())
	assert.True(t, called)

	cfg := s.promptConfig()
	assert.Equal(t, []string{"users"}, cfg.Endpoints())
	assert.Equal(t, s.deps.Config.SampleSize, cfg.SampleSize)
}

func TestParseResultURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{uri: "apiscout://result/users", want: "users"},
		{uri: "apiscout://result/a%2Fb", want: "a/b"},
		{uri: "apiscout://result/", wantErr: true},
		{uri: "apiscout://result/a/b", wantErr: true},
		{uri: "apiscout://other/users", wantErr: true},
		{uri: "apiscout://result/%zz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := parseResultURI(tt.uri)
			if tt.wantErr {
				var coded *tools.CodedError
				require.True(t, errors.As(err, &coded))
				assert.Equal(t, tools.ErrCodeInvalidInput, coded.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleResourceResult(t *testing.T) {
	s := newTestServer(t, WithBuiltinTools())
	ctx := context.Background()
	uri := tools.ResultURI("users")

	read := func() (*sdkmcp.ReadResourceResult, error) {
		return s.handleResourceResult(ctx, &sdkmcp.ReadResourceRequest{
			Params: &sdkmcp.ReadResourceParams{URI: uri},
		})
	}

	_, err := read()
	require.Error(t, err, "nothing analyzed yet")

	sch, err := schema.NewEngine().InferBytes([]byte(`[{"id": 1}]`))
	require.NoError(t, err)
	s.deps.Results.Put(&scout.Result{EndpointKey: "users", Schema: sch})

	res, err := read()
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, uri, res.Contents[0].URI)
	assert.Equal(t, tools.MimeJSON, res.Contents[0].MIMEType)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &doc))
	assert.Equal(t, "users", doc["endpoint_key"])
	summary, ok := doc["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "array", summary["type"])
}
