// Package tools contains the MCP tool implementations for apiscout.
package tools

import (
	"net/url"
	"time"

	"github.com/usestring/apiscout-mcp/pkg/jsoncompact"
	"github.com/usestring/apiscout-mcp/pkg/schema"
	"github.com/usestring/apiscout-mcp/pkg/scout"
	"github.com/usestring/apiscout-mcp/pkg/types"
)

// MIME type constant.
const MimeJSON = "application/json"

// ResultURIPrefix prefixes the resource URI of a cached analysis.
const ResultURIPrefix = "apiscout://result/"

// ResultURI returns the resource URI of the cached analysis of key.
func ResultURI(key string) string {
	return ResultURIPrefix + url.PathEscape(key)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toSummary(res *scout.Result) types.AnalysisSummary {
	s := res.Summary()
	return types.AnalysisSummary{
		Endpoint:     s.Endpoint,
		Type:         s.Type,
		TotalRecords: s.TotalRecords,
		FieldCount:   s.FieldCount,
		AnalyzedAt:   formatTime(s.AnalyzedAt),
	}
}

func fieldInfos(fs *schema.Fields) []types.FieldInfo {
	out := make([]types.FieldInfo, 0, fs.Len())
	for name, f := range fs.All() {
		info := types.FieldInfo{
			Name:      name,
			Type:      f.Type.String(),
			TypeLabel: f.Label(),
			Nullable:  f.Nullable,
		}
		if f.Nested != nil {
			info.Nested = f.Nested.Fields().Len()
		} else {
			info.Example = f.Example
		}
		out = append(out, info)
	}
	return out
}

func fieldStatInfo(st schema.FieldStat) types.FieldStatInfo {
	return types.FieldStatInfo{
		Path:      st.Path,
		Type:      st.Type.String(),
		TypeLabel: st.TypeLabel,
		Frequency: st.Frequency,
		Required:  st.Required,
		Nullable:  st.Nullable,
		Seen:      st.Seen,
		NullCount: st.NullCount,
		Example:   st.Example,
	}
}

// compactSample shrinks sample records for display. Key order is kept.
func compactSample(v any, opts *jsoncompact.Options) any {
	if v == nil {
		return nil
	}
	return jsoncompact.CompactValue(v, opts)
}

// maskToken keeps the first and last four characters of long tokens.
func maskToken(tok string) string {
	if len(tok) <= 12 {
		return "****"
	}
	return tok[:4] + "..." + tok[len(tok)-4:]
}
