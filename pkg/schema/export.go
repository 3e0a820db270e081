package schema

import (
	"github.com/invopop/jsonschema"
)

const draft202012 = "https://json-schema.org/draft/2020-12/schema"

// JSONSchema converts the inferred result into a Draft 2020-12 JSON Schema.
// Non-nullable fields are required; nullable fields accept null in addition
// to their detected type.
func (r *Result) JSONSchema() *jsonschema.Schema {
	s := r.containerSchema()
	s.Version = draft202012
	return s
}

func (r *Result) containerSchema() *jsonschema.Schema {
	switch {
	case r.IsArray:
		s := &jsonschema.Schema{Type: "array"}
		s.Items = r.itemSchema()
		return s
	case r.IsObject:
		return r.objectSchema()
	default:
		return typeSchema(Classify(r.SampleData))
	}
}

// itemSchema describes the elements of an array result: the merged record
// schema when elements were keyed, otherwise the common scalar type of the
// sample, if there is one.
func (r *Result) itemSchema() *jsonschema.Schema {
	if r.Fields().Len() > 0 {
		return r.objectSchema()
	}

	sample, _ := r.SampleData.([]any)
	if len(sample) == 0 {
		return nil
	}
	first := Classify(sample[0])
	for _, item := range sample[1:] {
		if Classify(item) != first {
			return nil
		}
	}
	return typeSchema(first)
}

func (r *Result) objectSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
	for name, f := range r.Fields().All() {
		s.Properties.Set(name, fieldSchema(f))
		if !f.Nullable {
			s.Required = append(s.Required, name)
		}
	}
	return s
}

func fieldSchema(f FieldDescriptor) *jsonschema.Schema {
	var s *jsonschema.Schema
	if f.Nested != nil {
		s = f.Nested.containerSchema()
	} else {
		s = typeSchema(f.Type)
	}
	if f.Nullable && f.Type != TypeNull {
		return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{s, {Type: "null"}}}
	}
	return s
}

// typeSchema maps a DataType to its JSON Schema form. Unknown maps to the
// empty schema, which accepts anything.
func typeSchema(t DataType) *jsonschema.Schema {
	switch t {
	case TypeNull:
		return &jsonschema.Schema{Type: "null"}
	case TypeBoolean:
		return &jsonschema.Schema{Type: "boolean"}
	case TypeInteger:
		return &jsonschema.Schema{Type: "integer"}
	case TypeFloat:
		return &jsonschema.Schema{Type: "number"}
	case TypeString:
		return &jsonschema.Schema{Type: "string"}
	case TypeEmail:
		return &jsonschema.Schema{Type: "string", Format: "email"}
	case TypeURL:
		return &jsonschema.Schema{Type: "string", Format: "uri"}
	case TypeUUID:
		return &jsonschema.Schema{Type: "string", Format: "uuid"}
	case TypeDateTime:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case TypeDate:
		return &jsonschema.Schema{Type: "string", Format: "date"}
	case TypeNumericString:
		return &jsonschema.Schema{Type: "string", Pattern: numericPattern.String()}
	case TypeJSONString:
		return &jsonschema.Schema{Type: "string", ContentMediaType: "application/json"}
	case TypeBase64:
		return &jsonschema.Schema{Type: "string", ContentEncoding: "base64"}
	case TypeArray:
		return &jsonschema.Schema{Type: "array"}
	case TypeObject:
		return &jsonschema.Schema{Type: "object"}
	default:
		return &jsonschema.Schema{}
	}
}
