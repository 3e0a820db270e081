package tools

import (
	"context"

	"github.com/usestring/apiscout-mcp/internal/cache"
	"github.com/usestring/apiscout-mcp/internal/config"
	"github.com/usestring/apiscout-mcp/pkg/schema"
	"github.com/usestring/apiscout-mcp/pkg/scout"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Analyzer *scout.Analyzer
	Registry *scout.Registry
	Results  *cache.ResultCache
	Config   *config.Config
}

// AnalyzeOverrides are per-call type-detection settings. Zero values keep
// the configured defaults.
type AnalyzeOverrides struct {
	SampleSize  int
	StrictTypes *bool
}

func (o AnalyzeOverrides) empty() bool {
	return o.SampleSize <= 0 && o.StrictTypes == nil
}

// Analyze analyzes an endpoint and caches the result.
func (d *Deps) Analyze(ctx context.Context, key string, o AnalyzeOverrides) (*scout.Result, error) {
	a := d.Analyzer
	if !o.empty() {
		a = a.Clone(scout.WithEngine(d.engine(o)))
	}

	res, err := a.AnalyzeKey(ctx, d.Registry, key)
	if err != nil {
		return nil, WrapScoutError(err)
	}
	d.Results.Put(res)
	return res, nil
}

// Result returns the cached analysis of an endpoint, analyzing it first
// when nothing is cached or refresh is set. The second return value reports
// whether the cached analysis was used.
func (d *Deps) Result(ctx context.Context, key string, refresh bool) (*scout.Result, bool, error) {
	if _, err := d.Registry.Get(key); err != nil {
		return nil, false, WrapScoutError(err)
	}
	if !refresh {
		if res, ok := d.Results.Get(key); ok {
			return res, true, nil
		}
	}
	res, err := d.Analyze(ctx, key, AnalyzeOverrides{})
	return res, false, err
}

func (d *Deps) engine(o AnalyzeOverrides) *schema.Engine {
	sampleSize := d.Config.SampleSize
	if o.SampleSize > 0 {
		sampleSize = o.SampleSize
	}
	strict := d.Config.StrictTypes
	if o.StrictTypes != nil {
		strict = *o.StrictTypes
	}
	return schema.NewEngine(
		schema.WithSampleSize(sampleSize),
		schema.WithStrictTypes(strict),
		schema.WithMaxDepth(d.Config.MaxNestingDepth),
	)
}
