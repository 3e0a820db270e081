package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/usestring/apiscout-mcp/pkg/client"
	"github.com/usestring/apiscout-mcp/pkg/schema"
	"github.com/usestring/apiscout-mcp/pkg/scouterr"
)

// Resolver produces authentication headers for descriptors.
type Resolver struct {
	doer  client.Doer
	store TokenStore
	now   func() time.Time
	group singleflight.Group
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithStore replaces the default in-memory token store.
func WithStore(store TokenStore) ResolverOption {
	return func(r *Resolver) {
		if store != nil {
			r.store = store
		}
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver creates a Resolver that performs token exchanges with doer.
func NewResolver(doer client.Doer, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		doer:  doer,
		store: NewTokenCache(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the token store in use.
func (r *Resolver) Store() TokenStore {
	return r.store
}

// ResolveHeaders returns the headers that authenticate a request for d.
func (r *Resolver) ResolveHeaders(ctx context.Context, d Descriptor) (map[string]string, error) {
	switch a := d.(type) {
	case nil, None:
		return map[string]string{}, nil
	case Bearer:
		return bearerHeader(a.Token), nil
	case Basic:
		cred := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		return map[string]string{"Authorization": "Basic " + cred}, nil
	case APIKey:
		return map[string]string{orDefault(a.Header, DefaultAPIKeyHeader): a.Key}, nil
	case TokenEndpoint:
		tok, err := r.token(ctx, a)
		if err != nil {
			return nil, err
		}
		return bearerHeader(tok.Token), nil
	default:
		return nil, scouterr.New(scouterr.KindUnknownAuthType, fmt.Sprintf("unknown auth type: %s", d.Type()))
	}
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// TokenInfo returns the cached token for key, or nil when none is cached.
// An empty key means the default cache key.
func (r *Resolver) TokenInfo(ctx context.Context, key string) (*CachedToken, error) {
	return r.store.Get(ctx, orDefault(key, DefaultCacheKey))
}

// ClearTokens drops every cached token.
func (r *Resolver) ClearTokens(ctx context.Context) error {
	return r.store.Clear(ctx)
}

// token returns a valid cached token or exchanges for a new one. At most one
// exchange per cache key is in flight; concurrent callers share its result.
func (r *Resolver) token(ctx context.Context, te TokenEndpoint) (*CachedToken, error) {
	key := te.cacheKey()
	v, err, shared := r.group.Do(key, func() (any, error) {
		cached, err := r.store.Get(ctx, key)
		if err != nil {
			slog.Warn("token store lookup failed",
				slog.String("cache_key", key),
				slog.String("error", err.Error()),
			)
		}
		if cached != nil && !cached.Expired(r.now()) {
			return cached, nil
		}

		tok, err := r.exchange(ctx, te)
		if err != nil {
			return nil, err
		}
		if err := r.store.Put(ctx, key, tok); err != nil {
			slog.Warn("token store write failed",
				slog.String("cache_key", key),
				slog.String("error", err.Error()),
			)
		}
		return tok, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("token exchange shared", slog.String("cache_key", key))
	}
	return v.(*CachedToken), nil
}

// exchange performs one token request and extracts the token.
func (r *Resolver) exchange(ctx context.Context, te TokenEndpoint) (*CachedToken, error) {
	start := r.now()
	req, err := buildExchangeRequest(te)
	if err != nil {
		return nil, scouterr.Wrap(scouterr.KindAuthExchangeFailed, "failed to authenticate", err)
	}

	resp, err := r.doer.Do(ctx, req)
	if err != nil {
		slog.Warn("token exchange failed",
			slog.String("cache_key", te.cacheKey()),
			slog.String("endpoint", te.Endpoint),
			slog.String("error", err.Error()),
		)
		return nil, scouterr.Wrap(scouterr.KindAuthExchangeFailed, "failed to authenticate", err)
	}

	doc, err := schema.Decode(resp.Body)
	if err != nil {
		return nil, scouterr.MalformedResponse("invalid JSON response from token endpoint", err)
	}

	tok, err := extractToken(doc, te, r.now())
	if err != nil {
		return nil, err
	}

	slog.Info("token obtained",
		slog.String("cache_key", te.cacheKey()),
		slog.String("token_type", tok.TokenType),
		slog.Bool("expires", tok.ExpiresAt != nil),
		slog.Int64("duration_ms", r.now().Sub(start).Milliseconds()),
	)
	return tok, nil
}

func buildExchangeRequest(te TokenEndpoint) (*client.Request, error) {
	req := &client.Request{
		Method:  orDefault(te.Method, http.MethodPost),
		URL:     te.Endpoint,
		Headers: make(map[string]string, len(te.Headers)+1),
	}

	switch te.format() {
	case FormatForm:
		req.Body = []byte(credentialValues(te.Credentials).Encode())
		req.Headers["Content-Type"] = "application/x-www-form-urlencoded"
	case FormatQuery:
		req.Query = credentialValues(te.Credentials)
	default:
		creds := te.Credentials
		if creds == nil {
			creds = map[string]any{}
		}
		body, err := json.Marshal(creds)
		if err != nil {
			return nil, fmt.Errorf("encoding credentials: %w", err)
		}
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	}

	for k, v := range te.Headers {
		req.Headers[k] = v
	}
	return req, nil
}

func credentialValues(creds map[string]any) url.Values {
	vals := make(url.Values, len(creds))
	for k, v := range creds {
		if v == nil {
			continue
		}
		vals.Set(k, fmt.Sprint(v))
	}
	return vals
}

func extractToken(doc any, te TokenEndpoint, now time.Time) (*CachedToken, error) {
	tokenPath := orDefault(te.TokenPath, DefaultTokenPath)

	token, ok := scalarString(doc, tokenPath)
	if !ok || token == "" {
		return nil, scouterr.New(scouterr.KindTokenNotFound,
			fmt.Sprintf("token not found in response at path: %s", tokenPath))
	}

	tok := &CachedToken{
		Token:      token,
		TokenType:  DefaultTokenType,
		ObtainedAt: now,
	}
	if tt, ok := scalarString(doc, orDefault(te.TokenTypePath, DefaultTokenTypePath)); ok && tt != "" {
		tok.TokenType = tt
	}
	if raw, ok := Lookup(doc, orDefault(te.ExpiresInPath, DefaultExpiresInPath)); ok {
		if n, ok := seconds(raw); ok {
			tok.ExpiresIn = &n
			if n != 0 {
				at := now.Add(time.Duration(n) * time.Second)
				tok.ExpiresAt = &at
			}
		}
	}
	return tok, nil
}

// scalarString reads a string or number at path as text.
func scalarString(doc any, path string) (string, bool) {
	v, ok := Lookup(doc, path)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return "", false
	}
}

// maxLifetimeSeconds is the longest lifetime a time.Duration can hold.
const maxLifetimeSeconds = math.MaxInt64 / int64(time.Second)

// seconds converts a numeric or numeric-string lifetime to whole seconds.
// Negative lifetimes are rejected; longer ones than a time.Duration holds
// are clamped.
func seconds(v any) (int, bool) {
	var f float64
	switch val := v.(type) {
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = val
	case int:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || f < 0 {
		return 0, false
	}
	if f >= float64(maxLifetimeSeconds) {
		return int(maxLifetimeSeconds), true
	}
	return int(f), true
}
