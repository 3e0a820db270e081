// Package jsoncompact shrinks decoded JSON for display by trimming long
// arrays and strings. Key order of ordered objects is kept.
package jsoncompact

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/usestring/apiscout-mcp/pkg/schema"
)

// Options controls compaction.
type Options struct {
	MaxArrayItems int // Trim arrays to N items (0 = no limit)
	MaxStringLen  int // Truncate strings longer than N runes (0 = no limit)
	MaxDepth      int // Max nesting depth (0 = unlimited)
}

const (
	DefaultMaxArrayItems = 3
	DefaultMaxStringLen  = 500
	DefaultMaxDepth      = 0 // unlimited
)

const maxDepthMarker = "[max depth]"

// DefaultOptions returns the default compaction settings.
func DefaultOptions() *Options {
	return &Options{
		MaxArrayItems: DefaultMaxArrayItems,
		MaxStringLen:  DefaultMaxStringLen,
		MaxDepth:      DefaultMaxDepth,
	}
}

// Compact compacts JSON bytes. Object key order is kept. An empty input is
// returned unchanged. If opts is nil, DefaultOptions() is used.
func Compact(data []byte, opts *Options) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	v, err := schema.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return json.Marshal(CompactValue(v, opts))
}

// CompactValue compacts a decoded value: the output of schema.Decode or
// json.Unmarshal. Inputs are not modified. If opts is nil, DefaultOptions()
// is used.
func CompactValue(v any, opts *Options) any {
	if opts == nil {
		opts = DefaultOptions()
	}
	return compactRecursive(v, opts, 0)
}

func compactRecursive(v any, opts *Options, depth int) any {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return maxDepthMarker
	}

	switch val := v.(type) {
	case []any:
		return compactArray(val, opts, depth)
	case *schema.Object:
		return compactObject(val, opts, depth)
	case map[string]any:
		return compactMap(val, opts, depth)
	case string:
		return compactString(val, opts)
	default:
		return v
	}
}

func compactString(s string, opts *Options) string {
	if opts.MaxStringLen <= 0 || utf8.RuneCountInString(s) <= opts.MaxStringLen {
		return s
	}
	runes := []rune(s)
	remaining := len(runes) - opts.MaxStringLen
	return string(runes[:opts.MaxStringLen]) + fmt.Sprintf("... (%d more chars)", remaining)
}

func compactArray(arr []any, opts *Options, depth int) []any {
	if len(arr) == 0 {
		return arr
	}

	keep := len(arr)
	if opts.MaxArrayItems > 0 && keep > opts.MaxArrayItems {
		keep = opts.MaxArrayItems
	}

	result := make([]any, keep, keep+1)
	for i := range keep {
		result[i] = compactRecursive(arr[i], opts, depth+1)
	}
	if remaining := len(arr) - keep; remaining > 0 {
		result = append(result, fmt.Sprintf("... (%d more items)", remaining))
	}
	return result
}

func compactObject(obj *schema.Object, opts *Options, depth int) *schema.Object {
	result := schema.NewObject()
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		result.Set(pair.Key, compactRecursive(pair.Value, opts, depth+1))
	}
	return result
}

func compactMap(obj map[string]any, opts *Options, depth int) map[string]any {
	result := make(map[string]any, len(obj))
	for k, v := range obj {
		result[k] = compactRecursive(v, opts, depth+1)
	}
	return result
}
