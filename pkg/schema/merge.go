package schema

import "github.com/RoaringBitmap/roaring/v2"

// MergeFieldSets combines the schema observed so far with the schema of the
// next record and returns a new set. Neither input is modified.
//
// Keys missing from incoming become nullable. For shared keys nullability is
// OR'd, the first non-null type wins, and the first non-null example wins
// together with its nested schema.
func MergeFieldSets(existing, incoming *Fields) *Fields {
	out := NewFields()

	for name, ex := range existing.All() {
		in, ok := incoming.Get(name)
		if !ok {
			ex.Nullable = true
			out.Set(name, ex)
			continue
		}
		out.Set(name, mergeField(ex, in))
	}

	for name, in := range incoming.All() {
		if existing.Has(name) {
			continue
		}
		out.Set(name, in)
	}

	return out
}

func mergeField(ex, in FieldDescriptor) FieldDescriptor {
	merged := ex
	merged.Nullable = ex.Nullable || in.Nullable

	if ex.Type == TypeNull && in.Type != TypeNull {
		merged.Type = in.Type
	}
	if ex.Example == nil && in.Example != nil {
		merged.Example = in.Example
		merged.Nested = in.Nested
	}

	merged.present = unionBitmaps(ex.present, in.present)
	merged.nulls = unionBitmaps(ex.nulls, in.nulls)
	return merged
}

// unionBitmaps returns a ∪ b without mutating either argument.
func unionBitmaps(a, b *roaring.Bitmap) *roaring.Bitmap {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return b.Clone()
	case b == nil || a == b:
		return a.Clone()
	default:
		return roaring.Or(a, b)
	}
}
