// Package scout analyzes configured HTTP/JSON endpoints: it authenticates,
// fetches, optionally narrows the response with a jq expression, and infers
// the schema of what comes back.
//
//	reg := scout.NewRegistry()
//	reg.Add("users", scout.Endpoint{URL: "https://api.example.com/users"})
//
//	a := scout.NewAnalyzer(client.New(), auth.NewResolver(client.New()))
//	res, err := a.AnalyzeKey(ctx, reg, "users")
package scout

import (
	"maps"
	"net/http"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/usestring/apiscout-mcp/pkg/auth"
	"github.com/usestring/apiscout-mcp/pkg/scouterr"
)

// Endpoint describes one remote resource to analyze.
type Endpoint struct {
	URL     string
	Method  string            // defaults to GET
	Headers map[string]string // defaults to Accept: application/json
	Auth    auth.Descriptor   // nil means no authentication
	// Select is an optional jq expression applied to the decoded response
	// before inference.
	Select      string
	Description string
}

// WithDefaults returns a copy with the default method and headers filled in.
func (e Endpoint) WithDefaults() Endpoint {
	if e.Method == "" {
		e.Method = http.MethodGet
	}
	e.Method = strings.ToUpper(e.Method)
	if e.Headers == nil {
		e.Headers = map[string]string{"Accept": "application/json"}
	} else {
		e.Headers = maps.Clone(e.Headers)
	}
	if e.Auth == nil {
		e.Auth = auth.None{}
	}
	return e
}

// Registry is a concurrency-safe set of endpoints keyed by name, kept in
// insertion order.
type Registry struct {
	mu        sync.RWMutex
	endpoints *orderedmap.OrderedMap[string, Endpoint]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{endpoints: orderedmap.New[string, Endpoint]()}
}

// Add registers or replaces an endpoint.
func (r *Registry) Add(key string, ep Endpoint) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints.Set(key, ep)
	return r
}

// Get returns the endpoint with defaults applied, or an endpoint_not_found
// error.
func (r *Registry) Get(key string) (Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.endpoints.Get(key)
	if !ok {
		return Endpoint{}, scouterr.New(scouterr.KindEndpointNotFound,
			"endpoint '"+key+"' not found in configuration")
	}
	return ep.WithDefaults(), nil
}

// Keys returns endpoint keys in registration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, r.endpoints.Len())
	for pair := r.endpoints.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of endpoints.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.endpoints.Len()
}

// Replace swaps the contents of r for those of other.
func (r *Registry) Replace(other *Registry) {
	fresh := orderedmap.New[string, Endpoint]()
	other.mu.RLock()
	for pair := other.endpoints.Oldest(); pair != nil; pair = pair.Next() {
		fresh.Set(pair.Key, pair.Value)
	}
	other.mu.RUnlock()

	r.mu.Lock()
	r.endpoints = fresh
	r.mu.Unlock()
}
