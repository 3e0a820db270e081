// Package auth turns endpoint authentication settings into request headers.
//
// Static schemes (bearer token, basic credentials, API key) map directly to
// a header. The token endpoint scheme exchanges credentials for an access
// token, extracts it from the response by dotted path, and caches it per key
// until 30 seconds before it expires.
package auth

import (
	"fmt"

	"github.com/usestring/apiscout-mcp/pkg/scouterr"
)

// Auth type tags used in configuration.
const (
	TypeNone          = "none"
	TypeBearer        = "bearer"
	TypeBasic         = "basic"
	TypeAPIKey        = "api_key"
	TypeTokenEndpoint = "token_endpoint"
)

// Defaults applied to token endpoint exchanges.
const (
	DefaultAPIKeyHeader  = "X-API-Key"
	DefaultCacheKey      = "default"
	DefaultTokenPath     = "access_token"
	DefaultExpiresInPath = "expires_in"
	DefaultTokenTypePath = "token_type"
	DefaultTokenType     = "Bearer"
)

// CredentialFormat selects how credentials are sent to a token endpoint.
type CredentialFormat string

const (
	FormatForm  CredentialFormat = "form"
	FormatJSON  CredentialFormat = "json"
	FormatQuery CredentialFormat = "query"
)

// Descriptor is one of None, Bearer, Basic, APIKey or TokenEndpoint.
type Descriptor interface {
	// Type returns the configuration tag of the scheme.
	Type() string
	sealed()
}

// None sends no credentials.
type None struct{}

// Bearer sends a static bearer token.
type Bearer struct {
	Token string
}

// Basic sends HTTP basic credentials.
type Basic struct {
	Username string
	Password string
}

// APIKey sends a key in a header, X-API-Key unless Header is set.
type APIKey struct {
	Key    string
	Header string
}

// TokenEndpoint obtains a bearer token by exchanging credentials.
type TokenEndpoint struct {
	Endpoint         string
	Method           string // defaults to POST
	CredentialFormat CredentialFormat
	Credentials      map[string]any
	Headers          map[string]string
	TokenPath        string
	ExpiresInPath    string
	TokenTypePath    string
	CacheKey         string
}

func (None) Type() string          { return TypeNone }
func (Bearer) Type() string        { return TypeBearer }
func (Basic) Type() string         { return TypeBasic }
func (APIKey) Type() string        { return TypeAPIKey }
func (TokenEndpoint) Type() string { return TypeTokenEndpoint }

func (None) sealed()          {}
func (Bearer) sealed()        {}
func (Basic) sealed()         {}
func (APIKey) sealed()        {}
func (TokenEndpoint) sealed() {}

func (t TokenEndpoint) cacheKey() string {
	if t.CacheKey == "" {
		return DefaultCacheKey
	}
	return t.CacheKey
}

func (t TokenEndpoint) format() CredentialFormat {
	switch t.CredentialFormat {
	case FormatForm, FormatQuery:
		return t.CredentialFormat
	default:
		return FormatJSON
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Spec is the flat, declarative form of a Descriptor as written in
// endpoint configuration files.
type Spec struct {
	Type string `json:"type,omitempty" yaml:"type,omitempty" jsonschema:"enum=none,enum=bearer,enum=basic,enum=api_key,enum=token_endpoint,description=Auth scheme; bearer when omitted"`

	Token string `json:"token,omitempty" yaml:"token,omitempty" jsonschema:"description=Static bearer token"`

	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	Key    string `json:"key,omitempty" yaml:"key,omitempty" jsonschema:"description=API key value"`
	Header string `json:"header,omitempty" yaml:"header,omitempty" jsonschema:"description=API key header name (default X-API-Key)"`

	TokenEndpoint string            `json:"token_endpoint,omitempty" yaml:"token_endpoint,omitempty" jsonschema:"description=URL of the token endpoint"`
	Method        string            `json:"method,omitempty" yaml:"method,omitempty" jsonschema:"description=Token request method (default POST)"`
	AuthType      string            `json:"auth_type,omitempty" yaml:"auth_type,omitempty" jsonschema:"enum=form,enum=json,enum=query,description=How credentials are sent (default json)"`
	Credentials   map[string]any    `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	Headers       map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	TokenPath     string            `json:"token_path,omitempty" yaml:"token_path,omitempty" jsonschema:"description=Dotted path to the token (default access_token)"`
	ExpiresInPath string            `json:"expires_in_path,omitempty" yaml:"expires_in_path,omitempty"`
	TokenTypePath string            `json:"token_type_path,omitempty" yaml:"token_type_path,omitempty"`
	TokenKey      string            `json:"token_key,omitempty" yaml:"token_key,omitempty" jsonschema:"description=Cache key shared by endpoints using the same token (default default)"`
}

// Descriptor converts s to a Descriptor. A nil Spec is None; an empty type means
// bearer.
func (s *Spec) Descriptor() (Descriptor, error) {
	if s == nil {
		return None{}, nil
	}

	switch orDefault(s.Type, TypeBearer) {
	case TypeNone:
		return None{}, nil
	case TypeBearer:
		return Bearer{Token: s.Token}, nil
	case TypeBasic:
		return Basic{Username: s.Username, Password: s.Password}, nil
	case TypeAPIKey:
		return APIKey{Key: s.Key, Header: s.Header}, nil
	case TypeTokenEndpoint:
		return TokenEndpoint{
			Endpoint:         s.TokenEndpoint,
			Method:           s.Method,
			CredentialFormat: CredentialFormat(s.AuthType),
			Credentials:      s.Credentials,
			Headers:          s.Headers,
			TokenPath:        s.TokenPath,
			ExpiresInPath:    s.ExpiresInPath,
			TokenTypePath:    s.TokenTypePath,
			CacheKey:         s.TokenKey,
		}, nil
	default:
		return nil, scouterr.New(scouterr.KindUnknownAuthType, fmt.Sprintf("unknown auth type: %s", s.Type))
	}
}
