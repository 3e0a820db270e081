// Package schema infers a structural description of decoded JSON payloads.
//
// An array payload is treated as a list of records: a bounded sample of its
// elements is folded into one field map with MergeFieldSets. An object
// payload is a single record. Every field carries a semantic DataType (email,
// uuid, datetime, ...), a nullability flag, one example value and, for
// containers, the nested schema of that example.
package schema

import (
	"maps"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/usestring/apiscout-mcp/pkg/scouterr"
)

const (
	DefaultSampleSize    = 5
	DefaultMaxDepth      = 32
	DefaultExampleMaxLen = 50

	sampleDataLimit  = 3
	truncationSuffix = "..."
)

// Engine infers schemas. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	sampleSize    int
	strictTypes   bool
	maxDepth      int
	exampleMaxLen int
	now           func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSampleSize bounds how many array elements are inspected. Values below 1
// are ignored.
func WithSampleSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.sampleSize = n
		}
	}
}

// WithStrictTypes records the strict-types preference. Detection does not
// currently change with it.
func WithStrictTypes(strict bool) Option {
	return func(e *Engine) {
		e.strictTypes = strict
	}
}

// WithMaxDepth limits how deep nested schemas are computed. Zero disables
// nesting entirely.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth >= 0 {
			e.maxDepth = depth
		}
	}
}

// WithExampleMaxLen sets the rune length after which string examples are
// truncated.
func WithExampleMaxLen(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.exampleMaxLen = n
		}
	}
}

// WithClock overrides the time source used for AnalyzedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an Engine with defaults overridden by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		sampleSize:    DefaultSampleSize,
		maxDepth:      DefaultMaxDepth,
		exampleMaxLen: DefaultExampleMaxLen,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SampleSize returns the configured sample bound.
func (e *Engine) SampleSize() int { return e.sampleSize }

// StrictTypes returns the strict-types preference.
func (e *Engine) StrictTypes() bool { return e.strictTypes }

// InferBytes decodes data preserving key order and infers its schema.
func (e *Engine) InferBytes(data []byte) (*Result, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, scouterr.MalformedResponse("invalid JSON response", err)
	}
	return e.Infer(v), nil
}

// Infer builds the schema of an already-decoded value.
func (e *Engine) Infer(v any) *Result {
	return e.infer(v, 0)
}

func (e *Engine) infer(v any, depth int) *Result {
	res := &Result{
		TotalRecords: 1,
		AnalyzedAt:   e.now().UTC(),
		fields:       NewFields(),
	}

	switch val := v.(type) {
	case []any:
		res.IsArray = true
		res.TotalRecords = len(val)
		n := min(len(val), e.sampleSize)
		res.SampledRecords = n
		res.SampleData = slices.Clone(val[:min(len(val), sampleDataLimit)])
		for i, record := range val[:n] {
			res.fields = MergeFieldSets(res.fields, e.recordFields(record, i, depth))
		}
		markMissing(res.fields, n)
	case *Object, map[string]any:
		res.IsObject = true
		res.SampledRecords = 1
		res.SampleData = val
		res.fields = e.recordFields(val, 0, depth)
	default:
		res.SampledRecords = 1
		res.SampleData = val
	}

	return res
}

// markMissing makes every field absent from at least one of the n sampled
// records nullable. MergeFieldSets only sees keys missing from a later
// record; the presence bitmaps also cover keys missing from earlier ones.
func markMissing(fields *Fields, n int) {
	for _, name := range fields.Names() {
		f, _ := fields.Get(name)
		if !f.Nullable && f.Seen() < n {
			f.Nullable = true
			fields.Set(name, f)
		}
	}
}

// recordFields describes the keys of one record. Non-keyed records yield an
// empty set.
func (e *Engine) recordFields(record any, index, depth int) *Fields {
	fields := NewFields()
	switch rec := record.(type) {
	case *Object:
		for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
			fields.Set(pair.Key, e.describe(pair.Value, index, depth))
		}
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(rec)) {
			fields.Set(k, e.describe(rec[k], index, depth))
		}
	}
	return fields
}

func (e *Engine) describe(v any, index, depth int) FieldDescriptor {
	t := Classify(v)
	f := FieldDescriptor{
		Type:     t,
		Nullable: v == nil,
		Example:  e.example(v),
		present:  roaring.BitmapOf(uint32(index)),
	}
	if v == nil {
		f.nulls = roaring.BitmapOf(uint32(index))
	}
	if t.IsContainer() && depth < e.maxDepth {
		f.Nested = e.infer(v, depth+1)
	}
	return f
}

func (e *Engine) example(v any) any {
	s, ok := v.(string)
	if !ok || utf8.RuneCountInString(s) <= e.exampleMaxLen {
		return v
	}
	runes := []rune(s)
	return string(runes[:e.exampleMaxLen]) + truncationSuffix
}
