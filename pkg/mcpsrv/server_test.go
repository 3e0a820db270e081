package mcpsrv

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/apiscout-mcp/internal/config"
	"github.com/usestring/apiscout-mcp/pkg/auth"
	"github.com/usestring/apiscout-mcp/pkg/schema"
	"github.com/usestring/apiscout-mcp/pkg/scout"
)

const endpointsYAML = `
timeout: 5
type_detection:
  sample_size: 2
  strict_types: true
endpoints:
  users:
    url: https://api.example.com/users
  orders:
    url: https://api.example.com/orders
    auth:
      type: api_key
      key: secret
`

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("TOKEN_STORE", "memory")

	s, err := NewServer(append([]Option{WithLogLevel("error")}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeEndpoints(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewServer_EndpointsFile(t *testing.T) {
	t.Setenv("SAMPLE_SIZE", "")
	t.Setenv("STRICT_TYPES", "")
	s := newTestServer(t, WithEndpointsFile(writeEndpoints(t, endpointsYAML)))

	d := s.Deps()
	require.NotNil(t, d)
	assert.Equal(t, []string{"users", "orders"}, d.Registry.Keys())
	assert.Equal(t, 2, d.Config.SampleSize)
	assert.True(t, d.Config.StrictTypes)
	assert.Equal(t, 5*time.Second, d.Config.HTTPClientTimeout)
	assert.Equal(t, 2, d.Analyzer.Engine().SampleSize())
	assert.True(t, d.Analyzer.Engine().StrictTypes())
	assert.Same(t, d.Resolver, d.Analyzer.Resolver())
}

func TestNewServer_MissingEndpointsFile(t *testing.T) {
	s := newTestServer(t, WithEndpointsFile(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Zero(t, s.Deps().Registry.Len())
}

func TestNewServer_InvalidEndpointsFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, err := NewServer(
		WithLogLevel("error"),
		WithEndpointsFile(writeEndpoints(t, "endpoints:\n  users:\n    method: GET\n")),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load endpoints")
}

func TestNewServer_UnknownTokenStore(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("TOKEN_STORE", "etcd")

	_, err := NewServer(WithLogLevel("error"), WithRegistry(scout.NewRegistry()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown TOKEN_STORE")
}

func TestNewServer_Overrides(t *testing.T) {
	reg := scout.NewRegistry().Add("ping", scout.Endpoint{URL: "https://api.example.com/ping"})
	store := auth.NewTokenCache()

	var gotDeps *Deps
	s := newTestServer(t,
		WithRegistry(reg),
		WithTokenStore(store),
		WithoutBuiltinPrompts(),
		WithDepsTool(&mcp.Tool{Name: "endpoint_count"},
			func(d *Deps) func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, struct{}, error) {
				gotDeps = d
				return func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, struct{}, error) {
					return nil, struct{}{}, nil
				}
			}),
	)

	assert.Same(t, reg, s.Deps().Registry)
	assert.Same(t, store, s.Deps().Resolver.Store())
	assert.Same(t, s.Deps(), gotDeps)
	assert.Empty(t, s.watchPath)
}

func TestServer_Reload(t *testing.T) {
	s := newTestServer(t, WithEndpointsFile(writeEndpoints(t, endpointsYAML)))
	d := s.Deps()

	sch, err := schema.NewEngine().InferBytes([]byte(`{"id": 1}`))
	require.NoError(t, err)
	d.Results.Put(&scout.Result{EndpointKey: "users", Schema: sch})

	eps, err := config.ParseEndpoints([]byte("endpoints:\n  status:\n    url: https://api.example.com/status\n"))
	require.NoError(t, err)
	s.reload(eps)

	assert.Equal(t, []string{"status"}, d.Registry.Keys())
	assert.Zero(t, d.Results.Len())
}

func TestServer_WatchPath(t *testing.T) {
	t.Setenv("APISCOUT_WATCH_ENDPOINTS", "true")
	path := writeEndpoints(t, endpointsYAML)

	s := newTestServer(t, WithEndpointsFile(path))
	assert.Equal(t, path, s.watchPath)
}
