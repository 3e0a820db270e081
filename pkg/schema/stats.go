package schema

// FieldStat is a flattened per-field summary of a Result.
type FieldStat struct {
	// Path uses "." for object nesting and "[]" for array elements,
	// e.g. "user.name" or "items[].id".
	Path      string   `json:"path"`
	Type      DataType `json:"type"`
	TypeLabel string   `json:"type_label"`
	// Frequency is the fraction of sampled records containing the key.
	Frequency float64 `json:"frequency"`
	// Required is set when the key was present in every sampled record and
	// never null.
	Required  bool `json:"required"`
	Nullable  bool `json:"nullable"`
	Seen      int  `json:"seen"`
	NullCount int  `json:"null_count"`
	Example   any  `json:"example,omitempty"`
}

// FieldStats walks the result and its nested schemas and returns one row per
// field path. Container examples are omitted since their children have rows
// of their own.
func (r *Result) FieldStats() []FieldStat {
	var stats []FieldStat
	walkFields(r, "", &stats)
	return stats
}

func walkFields(r *Result, prefix string, stats *[]FieldStat) {
	if r == nil {
		return
	}
	for name, f := range r.Fields().All() {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		stat := FieldStat{
			Path:      path,
			Type:      f.Type,
			TypeLabel: f.Label(),
			Nullable:  f.Nullable,
			Seen:      f.Seen(),
			NullCount: f.NullCount(),
		}
		if r.SampledRecords > 0 {
			stat.Frequency = float64(stat.Seen) / float64(r.SampledRecords)
		}
		stat.Required = stat.Seen == r.SampledRecords && !f.Nullable
		if !f.Type.IsContainer() {
			stat.Example = f.Example
		}
		*stats = append(*stats, stat)

		switch {
		case f.Nested == nil:
		case f.Nested.IsArray:
			walkFields(f.Nested, path+"[]", stats)
		default:
			walkFields(f.Nested, path, stats)
		}
	}
}
