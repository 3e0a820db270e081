package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/apiscout-mcp/pkg/client"
	"github.com/usestring/apiscout-mcp/pkg/scouterr"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type capturedRequest struct {
	Method      string
	ContentType string
	Query       string
	Body        string
	Headers     http.Header
}

// tokenServer answers every request with body and records what it received.
func tokenServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, *capturedRequest) {
	t.Helper()
	var calls atomic.Int32
	var mu sync.Mutex
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		*captured = capturedRequest{
			Method:      r.Method,
			ContentType: r.Header.Get("Content-Type"),
			Query:       r.URL.RawQuery,
			Body:        string(b),
			Headers:     r.Header.Clone(),
		}
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, captured
}

func TestResolveHeaders_Static(t *testing.T) {
	r := NewResolver(client.New())
	ctx := context.Background()

	tests := []struct {
		name string
		desc Descriptor
		want map[string]string
	}{
		{"nil", nil, map[string]string{}},
		{"none", None{}, map[string]string{}},
		{"bearer", Bearer{Token: "abc"}, map[string]string{"Authorization": "Bearer abc"}},
		{"basic", Basic{Username: "user", Password: "pass"}, map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}},
		{"api key default header", APIKey{Key: "k1"}, map[string]string{"X-API-Key": "k1"}},
		{"api key custom header", APIKey{Key: "k2", Header: "X-Token"}, map[string]string{"X-Token": "k2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveHeaders(ctx, tt.desc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveHeaders_TokenEndpointCaches(t *testing.T) {
	srv, calls, captured := tokenServer(t, http.StatusOK, `{"access_token":"abc123","expires_in":3600,"token_type":"Bearer"}`)
	clock := newFakeClock()
	r := NewResolver(client.New(), WithClock(clock.Now))
	te := TokenEndpoint{
		Endpoint:    srv.URL,
		Credentials: map[string]any{"client_id": "id", "client_secret": "secret"},
	}
	ctx := context.Background()

	h1, err := r.ResolveHeaders(ctx, te)
	require.NoError(t, err)
	h2, err := r.ResolveHeaders(ctx, te)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Authorization": "Bearer abc123"}, h1)
	assert.Equal(t, h1, h2)
	assert.Equal(t, int32(1), calls.Load())

	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "application/json", captured.ContentType)
	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(captured.Body), &body))
	assert.Equal(t, map[string]string{"client_id": "id", "client_secret": "secret"}, body)

	info, err := r.TokenInfo(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "abc123", info.Token)
	assert.Equal(t, "Bearer", info.TokenType)
	require.NotNil(t, info.ExpiresIn)
	assert.Equal(t, 3600, *info.ExpiresIn)
	require.NotNil(t, info.ExpiresAt)
	assert.Equal(t, clock.Now().Add(time.Hour), *info.ExpiresAt)
}

func TestResolveHeaders_TokenEndpointRefreshesBeforeExpiry(t *testing.T) {
	srv, calls, _ := tokenServer(t, http.StatusOK, `{"access_token":"abc123","expires_in":60}`)
	clock := newFakeClock()
	r := NewResolver(client.New(), WithClock(clock.Now))
	te := TokenEndpoint{Endpoint: srv.URL}
	ctx := context.Background()

	_, err := r.ResolveHeaders(ctx, te)
	require.NoError(t, err)

	clock.Advance(29 * time.Second)
	_, err = r.ResolveHeaders(ctx, te)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// 30s before the 60s expiry the token is considered stale.
	clock.Advance(time.Second)
	_, err = r.ResolveHeaders(ctx, te)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestResolveHeaders_TokenWithoutExpiryNeverRefreshes(t *testing.T) {
	srv, calls, _ := tokenServer(t, http.StatusOK, `{"access_token":"forever"}`)
	clock := newFakeClock()
	r := NewResolver(client.New(), WithClock(clock.Now))
	te := TokenEndpoint{Endpoint: srv.URL}
	ctx := context.Background()

	_, err := r.ResolveHeaders(ctx, te)
	require.NoError(t, err)
	clock.Advance(365 * 24 * time.Hour)
	_, err = r.ResolveHeaders(ctx, te)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	info, _ := r.TokenInfo(ctx, DefaultCacheKey)
	assert.Nil(t, info.ExpiresAt)
	assert.Nil(t, info.ExpiresIn)
}

func TestResolveHeaders_LongLifetimesStayCached(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "beyond duration range", body: `{"access_token":"long","expires_in":10000000000}`},
		{name: "huge float", body: `{"access_token":"long","expires_in":1e300}`},
		{name: "huge string", body: `{"access_token":"long","expires_in":"99999999999999999999"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls, _ := tokenServer(t, http.StatusOK, tt.body)
			clock := newFakeClock()
			r := NewResolver(client.New(), WithClock(clock.Now))
			te := TokenEndpoint{Endpoint: srv.URL}
			ctx := context.Background()

			_, err := r.ResolveHeaders(ctx, te)
			require.NoError(t, err)
			clock.Advance(365 * 24 * time.Hour)
			_, err = r.ResolveHeaders(ctx, te)
			require.NoError(t, err)

			assert.Equal(t, int32(1), calls.Load())
			info, err := r.TokenInfo(ctx, DefaultCacheKey)
			require.NoError(t, err)
			require.NotNil(t, info.ExpiresAt)
			assert.True(t, info.ExpiresAt.After(clock.Now()))
			assert.False(t, info.Expired(clock.Now()))
		})
	}
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   int
		wantOK bool
	}{
		{name: "number", in: json.Number("3600"), want: 3600, wantOK: true},
		{name: "fraction truncated", in: 90.9, want: 90, wantOK: true},
		{name: "numeric string", in: " 120 ", want: 120, wantOK: true},
		{name: "zero", in: json.Number("0"), want: 0, wantOK: true},
		{name: "clamped", in: json.Number("1e30"), want: int(maxLifetimeSeconds), wantOK: true},
		{name: "clamped int", in: int(maxLifetimeSeconds) + 1, want: int(maxLifetimeSeconds), wantOK: true},
		{name: "negative", in: json.Number("-5"), wantOK: false},
		{name: "not a number", in: "soon", wantOK: false},
		{name: "bool", in: true, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := seconds(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolveHeaders_NegativeLifetimeIgnored(t *testing.T) {
	srv, _, _ := tokenServer(t, http.StatusOK, `{"access_token":"tok","expires_in":-60}`)
	r := NewResolver(client.New(), WithClock(newFakeClock().Now))
	ctx := context.Background()

	_, err := r.ResolveHeaders(ctx, TokenEndpoint{Endpoint: srv.URL})
	require.NoError(t, err)

	info, err := r.TokenInfo(ctx, DefaultCacheKey)
	require.NoError(t, err)
	assert.Nil(t, info.ExpiresIn)
	assert.Nil(t, info.ExpiresAt)
}

func TestResolveHeaders_NestedPaths(t *testing.T) {
	srv, _, _ := tokenServer(t, http.StatusOK,
		`{"data":{"auth":{"token":"deep","ttl":"120","kind":"MAC"}}}`)
	clock := newFakeClock()
	r := NewResolver(client.New(), WithClock(clock.Now))
	te := TokenEndpoint{
		Endpoint:      srv.URL,
		TokenPath:     "data.auth.token",
		ExpiresInPath: "data.auth.ttl",
		TokenTypePath: "data.auth.kind",
		CacheKey:      "nested",
	}
	ctx := context.Background()

	h, err := r.ResolveHeaders(ctx, te)
	require.NoError(t, err)
	assert.Equal(t, "Bearer deep", h["Authorization"])

	info, err := r.TokenInfo(ctx, "nested")
	require.NoError(t, err)
	assert.Equal(t, "MAC", info.TokenType)
	require.NotNil(t, info.ExpiresAt)
	assert.Equal(t, clock.Now().Add(2*time.Minute), *info.ExpiresAt)

	none, err := r.TokenInfo(ctx, DefaultCacheKey)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestResolveHeaders_TokenNotFound(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
	}{
		{"missing", `{"token":"x"}`, ""},
		{"null", `{"access_token":null}`, ""},
		{"empty", `{"access_token":""}`, ""},
		{"object", `{"access_token":{"v":"x"}}`, ""},
		{"nested missing", `{"data":{}}`, "data.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := tokenServer(t, http.StatusOK, tt.body)
			r := NewResolver(client.New())

			_, err := r.ResolveHeaders(context.Background(), TokenEndpoint{Endpoint: srv.URL, TokenPath: tt.path})
			require.Error(t, err)
			assert.True(t, errors.Is(err, scouterr.ErrTokenNotFound))

			want := tt.path
			if want == "" {
				want = DefaultTokenPath
			}
			assert.Equal(t, "token not found in response at path: "+want, err.Error())
		})
	}
}

func TestResolveHeaders_InvalidJSON(t *testing.T) {
	srv, _, _ := tokenServer(t, http.StatusOK, `<html>nope</html>`)
	r := NewResolver(client.New())

	_, err := r.ResolveHeaders(context.Background(), TokenEndpoint{Endpoint: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, scouterr.ErrMalformedResponse))
	assert.Contains(t, err.Error(), "invalid JSON response from token endpoint")
}

func TestResolveHeaders_ExchangeFailure(t *testing.T) {
	srv, _, _ := tokenServer(t, http.StatusUnauthorized, `{"error":"invalid_client"}`)
	r := NewResolver(client.New())

	_, err := r.ResolveHeaders(context.Background(), TokenEndpoint{Endpoint: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, scouterr.ErrAuthExchangeFailed))
	assert.True(t, errors.Is(err, scouterr.ErrTransportFailure))
	assert.Equal(t, scouterr.KindAuthExchangeFailed, scouterr.KindOf(err))

	var se *client.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)

	info, _ := r.TokenInfo(context.Background(), "")
	assert.Nil(t, info, "failed exchanges must not be cached")
}

func TestResolveHeaders_CredentialFormats(t *testing.T) {
	creds := map[string]any{"client_id": "id", "scope": "read write"}

	t.Run("form", func(t *testing.T) {
		srv, _, captured := tokenServer(t, http.StatusOK, `{"access_token":"t"}`)
		r := NewResolver(client.New())
		_, err := r.ResolveHeaders(context.Background(), TokenEndpoint{
			Endpoint: srv.URL, CredentialFormat: FormatForm, Credentials: creds,
		})
		require.NoError(t, err)
		assert.Equal(t, "application/x-www-form-urlencoded", captured.ContentType)
		assert.Equal(t, "client_id=id&scope=read+write", captured.Body)
	})

	t.Run("query", func(t *testing.T) {
		srv, _, captured := tokenServer(t, http.StatusOK, `{"access_token":"t"}`)
		r := NewResolver(client.New())
		_, err := r.ResolveHeaders(context.Background(), TokenEndpoint{
			Endpoint: srv.URL, Method: "GET", CredentialFormat: FormatQuery, Credentials: creds,
		})
		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, captured.Method)
		assert.Equal(t, "client_id=id&scope=read+write", captured.Query)
		assert.Empty(t, captured.Body)
	})

	t.Run("unrecognized falls back to json", func(t *testing.T) {
		srv, _, captured := tokenServer(t, http.StatusOK, `{"access_token":"t"}`)
		r := NewResolver(client.New())
		_, err := r.ResolveHeaders(context.Background(), TokenEndpoint{
			Endpoint: srv.URL, CredentialFormat: "xml", Credentials: creds,
		})
		require.NoError(t, err)
		assert.Equal(t, "application/json", captured.ContentType)
		assert.JSONEq(t, `{"client_id":"id","scope":"read write"}`, captured.Body)
	})

	t.Run("custom headers applied", func(t *testing.T) {
		srv, _, captured := tokenServer(t, http.StatusOK, `{"access_token":"t"}`)
		r := NewResolver(client.New())
		_, err := r.ResolveHeaders(context.Background(), TokenEndpoint{
			Endpoint: srv.URL,
			Headers:  map[string]string{"X-Tenant": "acme", "Content-Type": "application/vnd.api+json"},
		})
		require.NoError(t, err)
		assert.Equal(t, "acme", captured.Headers.Get("X-Tenant"))
		assert.Equal(t, "application/vnd.api+json", captured.ContentType)
	})
}

func TestResolveHeaders_ConcurrentExchangeDeduplicated(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"access_token":"shared","expires_in":3600}`))
	}))
	defer srv.Close()

	r := NewResolver(client.New())
	te := TokenEndpoint{Endpoint: srv.URL}

	const n = 8
	var wg sync.WaitGroup
	results := make([]map[string]string, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.ResolveHeaders(context.Background(), te)
		}(i)
	}

	// Let the first exchange reach the server before releasing it.
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, "Bearer shared", results[i]["Authorization"])
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolver_ClearTokens(t *testing.T) {
	srv, calls, _ := tokenServer(t, http.StatusOK, `{"access_token":"abc","expires_in":3600}`)
	r := NewResolver(client.New())
	te := TokenEndpoint{Endpoint: srv.URL}
	ctx := context.Background()

	_, err := r.ResolveHeaders(ctx, te)
	require.NoError(t, err)
	require.NoError(t, r.ClearTokens(ctx))

	info, err := r.TokenInfo(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, info)

	_, err = r.ResolveHeaders(ctx, te)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*CachedToken, error) {
	return nil, errors.New("store down")
}
func (failingStore) Put(context.Context, string, *CachedToken) error { return errors.New("store down") }
func (failingStore) Clear(context.Context) error                     { return nil }

func TestResolver_StoreErrorsDoNotBlockExchange(t *testing.T) {
	srv, _, _ := tokenServer(t, http.StatusOK, `{"access_token":"abc"}`)
	r := NewResolver(client.New(), WithStore(failingStore{}))

	h, err := r.ResolveHeaders(context.Background(), TokenEndpoint{Endpoint: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", h["Authorization"])
}
