package scout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/apiscout-mcp/internal/query"
	"github.com/usestring/apiscout-mcp/pkg/auth"
	"github.com/usestring/apiscout-mcp/pkg/client"
	"github.com/usestring/apiscout-mcp/pkg/contenttype"
	"github.com/usestring/apiscout-mcp/pkg/schema"
	"github.com/usestring/apiscout-mcp/pkg/scouterr"
)

// DefaultWorkers bounds concurrent analyses in AnalyzeAll.
const DefaultWorkers = 4

// Selector narrows a decoded document with an expression.
type Selector interface {
	Select(ctx context.Context, expression string, doc any) (any, error)
}

// Options maps the type-detection settings onto engine options.
type Options struct {
	SampleSize  int
	StrictTypes bool
}

// EngineOptions converts o into schema engine options.
func (o Options) EngineOptions() []schema.Option {
	return []schema.Option{
		schema.WithSampleSize(o.SampleSize),
		schema.WithStrictTypes(o.StrictTypes),
	}
}

// Analyzer fetches endpoints and infers their schemas.
type Analyzer struct {
	doer     client.Doer
	resolver *auth.Resolver
	engine   *schema.Engine
	selector Selector
	workers  int
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithEngine sets the inference engine.
func WithEngine(e *schema.Engine) AnalyzerOption {
	return func(a *Analyzer) {
		if e != nil {
			a.engine = e
		}
	}
}

// WithSelector sets the expression engine used for Endpoint.Select.
func WithSelector(s Selector) AnalyzerOption {
	return func(a *Analyzer) {
		if s != nil {
			a.selector = s
		}
	}
}

// WithWorkers bounds concurrent analyses in AnalyzeAll.
func WithWorkers(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// NewAnalyzer creates an Analyzer that fetches with doer and authenticates
// with resolver.
func NewAnalyzer(doer client.Doer, resolver *auth.Resolver, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		doer:     doer,
		resolver: resolver,
		engine:   schema.NewEngine(),
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.selector == nil {
		a.selector = query.NewEngine(0)
	}
	if a.resolver == nil {
		a.resolver = auth.NewResolver(doer)
	}
	return a
}

// Clone returns a copy of a with opts applied. The copy shares the doer,
// resolver and selector.
func (a *Analyzer) Clone(opts ...AnalyzerOption) *Analyzer {
	c := *a
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Engine returns the inference engine.
func (a *Analyzer) Engine() *schema.Engine {
	return a.engine
}

// Resolver returns the auth resolver.
func (a *Analyzer) Resolver() *auth.Resolver {
	return a.resolver
}

// AnalyzeKey looks up key in reg and analyzes it.
func (a *Analyzer) AnalyzeKey(ctx context.Context, reg *Registry, key string) (*Result, error) {
	ep, err := reg.Get(key)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, key, ep)
}

// Analyze fetches ep and infers the schema of its response.
func (a *Analyzer) Analyze(ctx context.Context, key string, ep Endpoint) (*Result, error) {
	start := time.Now()
	ep = ep.WithDefaults()

	doc, err := a.Fetch(ctx, ep)
	if err != nil {
		slog.Warn("endpoint analysis failed",
			slog.String("endpoint", key),
			slog.String("kind", string(scouterr.KindOf(err))),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("analyzing endpoint %s: %w", key, err)
	}

	res := &Result{EndpointKey: key, Schema: a.engine.Infer(doc)}

	slog.Info("endpoint analyzed",
		slog.String("endpoint", key),
		slog.String("type", res.Schema.Kind()),
		slog.Int("total_records", res.Schema.TotalRecords),
		slog.Int("fields", res.Schema.Fields().Len()),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return res, nil
}

// Fetch authenticates, requests ep and returns the decoded (and selected)
// document.
func (a *Analyzer) Fetch(ctx context.Context, ep Endpoint) (any, error) {
	ep = ep.WithDefaults()

	authHeaders, err := a.resolver.ResolveHeaders(ctx, ep.Auth)
	if err != nil {
		return nil, err
	}
	headers := ep.Headers
	for k, v := range authHeaders {
		headers[k] = v
	}

	resp, err := a.doer.Do(ctx, &client.Request{
		Method:  ep.Method,
		URL:     ep.URL,
		Headers: headers,
	})
	if err != nil {
		return nil, err
	}

	ct := resp.ContentType()
	if ct != "" && !contenttype.IsJSON(ct) {
		slog.Debug("endpoint did not declare JSON content",
			slog.String("url", ep.URL),
			slog.String("content_type", ct),
		)
	}

	doc, err := schema.Decode(resp.Body)
	if err != nil {
		msg := "invalid JSON response from endpoint"
		if hint := contenttype.Hint(ct, resp.Body); hint != "" {
			msg += ": " + hint
		}
		return nil, scouterr.MalformedResponse(msg, err)
	}

	if ep.Select != "" {
		doc, err = a.selector.Select(ctx, ep.Select, doc)
		if err != nil {
			return nil, fmt.Errorf("selecting records: %w", err)
		}
	}
	return doc, nil
}

// AnalyzeAll analyzes every endpoint of reg concurrently. Results follow
// registry order. The first failure cancels the remaining analyses.
func (a *Analyzer) AnalyzeAll(ctx context.Context, reg *Registry) ([]*Result, error) {
	keys := reg.Keys()
	results := make([]*Result, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, key := range keys {
		g.Go(func() error {
			res, err := a.AnalyzeKey(gctx, reg, key)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
