package tools

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/apiscout-mcp/pkg/auth"
	"github.com/usestring/apiscout-mcp/pkg/types"
)

// TokenInfoInput is the input for apiscout_token_info.
type TokenInfoInput struct {
	TokenKey string `json:"token_key,omitempty" jsonschema:"Token cache key (token_key in the endpoint auth config, default: 'default')"`
	Endpoint string `json:"endpoint,omitempty" jsonschema:"Endpoint key; its token_endpoint cache key is used instead of token_key"`
}

// ToolTokenInfo reports the cached token for a cache key. The token value is
// masked; JWT claims are decoded without verification.
func ToolTokenInfo(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input TokenInfoInput) (*sdkmcp.CallToolResult, types.TokenInfoOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input TokenInfoInput) (*sdkmcp.CallToolResult, types.TokenInfoOutput, error) {
		key := input.TokenKey
		if input.Endpoint != "" {
			ep, err := d.Registry.Get(input.Endpoint)
			if err != nil {
				return nil, types.TokenInfoOutput{}, WrapScoutError(err)
			}
			te, ok := ep.Auth.(auth.TokenEndpoint)
			if !ok {
				return nil, types.TokenInfoOutput{}, ErrInvalidInput(
					fmt.Sprintf("endpoint %s uses %s auth, not token_endpoint", input.Endpoint, ep.Auth.Type()))
			}
			key = te.CacheKey
		}
		if key == "" {
			key = auth.DefaultCacheKey
		}

		tok, err := d.Analyzer.Resolver().TokenInfo(ctx, key)
		if err != nil {
			return nil, types.TokenInfoOutput{}, fmt.Errorf("reading token store: %w", err)
		}

		out := types.TokenInfoOutput{TokenKey: key}
		if tok == nil {
			out.Hint = "No token cached for this key. Tokens are obtained on the first analysis of an endpoint that needs one."
			return nil, out, nil
		}

		out.Cached = true
		out.Expired = tok.Expired(time.Now())
		out.Preview = maskToken(tok.Token)
		out.TokenType = tok.TokenType
		out.ExpiresIn = tok.ExpiresIn
		out.ObtainedAt = formatTime(tok.ObtainedAt)
		if tok.ExpiresAt != nil {
			out.ExpiresAt = formatTime(*tok.ExpiresAt)
		}
		if claims, err := auth.InspectToken(tok.Token); err == nil {
			out.Claims = claimsInfo(claims)
		}
		if out.Expired {
			out.Hint = "The token is expired or within the refresh buffer; the next analysis will obtain a new one."
		}
		return nil, out, nil
	}
}

func claimsInfo(c *auth.TokenClaims) *types.TokenClaimsInfo {
	info := &types.TokenClaimsInfo{
		Subject:  c.Subject,
		Issuer:   c.Issuer,
		Audience: c.Audience,
	}
	if c.ExpiresAt != nil {
		info.ExpiresAt = formatTime(*c.ExpiresAt)
	}
	if c.IssuedAt != nil {
		info.IssuedAt = formatTime(*c.IssuedAt)
	}
	return info
}

// ClearTokensInput is the input for apiscout_clear_tokens.
type ClearTokensInput struct {
	InvalidateResults bool `json:"invalidate_results,omitempty" jsonschema:"Also drop cached analyses (default: false)"`
}

// ToolClearTokens drops every cached token so the next analysis exchanges
// credentials again.
func ToolClearTokens(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ClearTokensInput) (*sdkmcp.CallToolResult, types.ClearTokensOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ClearTokensInput) (*sdkmcp.CallToolResult, types.ClearTokensOutput, error) {
		if err := d.Analyzer.Resolver().ClearTokens(ctx); err != nil {
			return nil, types.ClearTokensOutput{}, fmt.Errorf("clearing tokens: %w", err)
		}

		out := types.ClearTokensOutput{Cleared: true}
		if input.InvalidateResults {
			out.InvalidatedResults = d.Results.Len()
			d.Results.Purge()
		}
		return nil, out, nil
	}
}
