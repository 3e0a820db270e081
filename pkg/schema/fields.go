package schema

import (
	"encoding/json"
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FieldDescriptor describes one key of a record schema.
type FieldDescriptor struct {
	Type     DataType
	Nullable bool
	Example  any
	Nested   *Result // set when the example is an array or object

	// Sampled record indices in which the key was present / null.
	present *roaring.Bitmap
	nulls   *roaring.Bitmap
}

// Label returns the human-readable label of the field's type.
func (f FieldDescriptor) Label() string {
	return f.Type.Label()
}

// Seen returns the number of sampled records that contained the key.
func (f FieldDescriptor) Seen() int {
	if f.present == nil {
		return 0
	}
	return int(f.present.GetCardinality())
}

// NullCount returns the number of sampled records where the key was null.
func (f FieldDescriptor) NullCount() int {
	if f.nulls == nil {
		return 0
	}
	return int(f.nulls.GetCardinality())
}

// SeenIn reports whether the key was present in the sampled record at index i.
func (f FieldDescriptor) SeenIn(i int) bool {
	return f.present != nil && i >= 0 && f.present.Contains(uint32(i))
}

type fieldJSON struct {
	Type      DataType `json:"type"`
	TypeLabel string   `json:"type_label"`
	Nullable  bool     `json:"nullable"`
	Example   any      `json:"example"`
	Nested    *Result  `json:"nested,omitempty"`
	Seen      int      `json:"seen"`
	NullCount int      `json:"null_count"`
}

func (f FieldDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldJSON{
		Type:      f.Type,
		TypeLabel: f.Label(),
		Nullable:  f.Nullable,
		Example:   f.Example,
		Nested:    f.Nested,
		Seen:      f.Seen(),
		NullCount: f.NullCount(),
	})
}

// Fields is an insertion-ordered set of field descriptors keyed by name.
type Fields struct {
	m *orderedmap.OrderedMap[string, FieldDescriptor]
}

// NewFields returns an empty field set.
func NewFields() *Fields {
	return &Fields{m: orderedmap.New[string, FieldDescriptor]()}
}

// Len returns the number of fields. A nil *Fields is empty.
func (fs *Fields) Len() int {
	if fs == nil {
		return 0
	}
	return fs.m.Len()
}

// Get returns the descriptor for name.
func (fs *Fields) Get(name string) (FieldDescriptor, bool) {
	if fs == nil {
		return FieldDescriptor{}, false
	}
	return fs.m.Get(name)
}

// Has reports whether name is present.
func (fs *Fields) Has(name string) bool {
	_, ok := fs.Get(name)
	return ok
}

// Set adds or replaces name. New names are appended at the end.
func (fs *Fields) Set(name string, f FieldDescriptor) {
	fs.m.Set(name, f)
}

// Names returns field names in order.
func (fs *Fields) Names() []string {
	names := make([]string, 0, fs.Len())
	for name := range fs.All() {
		names = append(names, name)
	}
	return names
}

// All iterates fields in order.
func (fs *Fields) All() iter.Seq2[string, FieldDescriptor] {
	return func(yield func(string, FieldDescriptor) bool) {
		if fs == nil {
			return
		}
		for pair := fs.m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Filter returns a new set holding the fields for which keep returns true.
func (fs *Fields) Filter(keep func(name string, f FieldDescriptor) bool) *Fields {
	out := NewFields()
	for name, f := range fs.All() {
		if keep(name, f) {
			out.Set(name, f)
		}
	}
	return out
}

// MarshalJSON renders the fields as a JSON object in insertion order.
func (fs *Fields) MarshalJSON() ([]byte, error) {
	if fs == nil {
		return []byte("{}"), nil
	}
	return fs.m.MarshalJSON()
}
