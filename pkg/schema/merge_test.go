package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, e *Engine, doc string) *Fields {
	t.Helper()
	res, err := e.InferBytes([]byte(doc))
	require.NoError(t, err)
	return res.Fields()
}

func TestMergeFieldSets_MissingKeyBecomesNullable(t *testing.T) {
	e := NewEngine()
	existing := fieldsOf(t, e, `{"id": 1, "email": "a@example.com"}`)
	incoming := fieldsOf(t, e, `{"id": 2}`)

	merged := MergeFieldSets(existing, incoming)

	email, ok := merged.Get("email")
	require.True(t, ok)
	assert.True(t, email.Nullable)
	assert.Equal(t, TypeEmail, email.Type)
	assert.Equal(t, "a@example.com", email.Example)

	id, _ := merged.Get("id")
	assert.False(t, id.Nullable)
}

func TestMergeFieldSets_IncomingOnlyKeyCopied(t *testing.T) {
	e := NewEngine()
	existing := fieldsOf(t, e, `{"id": 1}`)
	incoming := fieldsOf(t, e, `{"id": 2, "tags": ["a"]}`)

	merged := MergeFieldSets(existing, incoming)

	assert.Equal(t, []string{"id", "tags"}, merged.Names())
	tags, _ := merged.Get("tags")
	assert.Equal(t, TypeArray, tags.Type)
	// Absence from earlier records is applied by the engine after the fold.
	assert.False(t, tags.Nullable)
}

func TestMergeFieldSets_NullAdoptsLaterType(t *testing.T) {
	e := NewEngine()
	existing := fieldsOf(t, e, `{"age": null}`)
	incoming := fieldsOf(t, e, `{"age": 30}`)

	merged := MergeFieldSets(existing, incoming)

	age, _ := merged.Get("age")
	assert.Equal(t, TypeInteger, age.Type)
	assert.True(t, age.Nullable)
	assert.Equal(t, json.Number("30"), age.Example)
}

func TestMergeFieldSets_FirstNonNullTypeWins(t *testing.T) {
	e := NewEngine()
	existing := fieldsOf(t, e, `{"value": 1}`)
	incoming := fieldsOf(t, e, `{"value": "hello world"}`)

	merged := MergeFieldSets(existing, incoming)

	v, _ := merged.Get("value")
	assert.Equal(t, TypeInteger, v.Type)
	assert.False(t, v.Nullable)
}

func TestMergeFieldSets_AdoptsNestedWithExample(t *testing.T) {
	e := NewEngine()
	existing := fieldsOf(t, e, `{"owner": null}`)
	incoming := fieldsOf(t, e, `{"owner": {"name": "Alice Smith"}}`)

	merged := MergeFieldSets(existing, incoming)

	owner, _ := merged.Get("owner")
	assert.Equal(t, TypeObject, owner.Type)
	require.NotNil(t, owner.Nested)
	assert.Equal(t, []string{"name"}, owner.Nested.FieldNames())
}

func TestMergeFieldSets_InputsUntouched(t *testing.T) {
	e := NewEngine()
	existing := fieldsOf(t, e, `{"id": 1, "extra": true}`)
	incoming := fieldsOf(t, e, `{"id": null}`)

	_ = MergeFieldSets(existing, incoming)

	id, _ := existing.Get("id")
	assert.False(t, id.Nullable)
	extra, _ := existing.Get("extra")
	assert.False(t, extra.Nullable)
	assert.Equal(t, 1, id.Seen())
	assert.Equal(t, 1, incoming.Len())
}

func TestMergeFieldSets_SelfIsIdentity(t *testing.T) {
	e := NewEngine()
	fs := fieldsOf(t, e, `{"id": 1, "name": null, "tags": [1, 2]}`)

	merged := MergeFieldSets(fs, fs)

	assert.Equal(t, fs.Names(), merged.Names())
	for name, want := range fs.All() {
		got, _ := merged.Get(name)
		assert.Equal(t, want.Type, got.Type, name)
		assert.Equal(t, want.Nullable, got.Nullable, name)
		assert.Equal(t, want.Example, got.Example, name)
		assert.Equal(t, want.Seen(), got.Seen(), name)
		assert.Equal(t, want.NullCount(), got.NullCount(), name)
	}
}

func TestMergeFieldSets_NilInputs(t *testing.T) {
	fs := fieldsOf(t, NewEngine(), `{"id": 1}`)

	assert.Equal(t, 0, MergeFieldSets(nil, nil).Len())

	fromNil := MergeFieldSets(nil, fs)
	assert.Equal(t, []string{"id"}, fromNil.Names())

	toNil := MergeFieldSets(fs, nil)
	id, _ := toNil.Get("id")
	assert.True(t, id.Nullable)
}
