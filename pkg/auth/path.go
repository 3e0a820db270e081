package auth

import (
	"strconv"
	"strings"

	"github.com/usestring/apiscout-mcp/pkg/schema"
)

// Lookup walks doc along a dot-separated path. Object segments are keys;
// array segments are decimal indices. A missing key, out-of-range index or
// null value reports false.
func Lookup(doc any, path string) (any, bool) {
	cur := doc
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case *schema.Object:
			v, ok := node.Get(seg)
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
		if cur == nil {
			return nil, false
		}
	}
	return cur, true
}
