package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ValidationResult is the outcome of checking a payload against a schema.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validator checks payloads against the JSON Schema exported from a Result.
type Validator struct {
	schema *jsv.Schema
}

// NewValidator compiles the JSON Schema of r.
func NewValidator(r *Result) (*Validator, error) {
	raw, err := json.Marshal(r.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}

	compiler := jsv.NewCompiler()
	if err := compiler.AddResource("result.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("result.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks raw JSON bytes.
func (v *Validator) Validate(data []byte) *ValidationResult {
	value, err := Decode(data)
	if err != nil {
		return &ValidationResult{Errors: []string{fmt.Sprintf("invalid JSON: %s", err)}}
	}
	return v.ValidateValue(value)
}

// ValidateValue checks an already-decoded value. Ordered objects are
// accepted.
func (v *Validator) ValidateValue(value any) *ValidationResult {
	err := v.schema.Validate(Plain(value))
	if err == nil {
		return &ValidationResult{Valid: true}
	}
	return &ValidationResult{Errors: validationMessages(err)}
}

var printer = message.NewPrinter(language.English)

func validationMessages(err error) []string {
	var verr *jsv.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}

	byPath := make(map[string][]string)
	collectErrors(verr, byPath)

	var out []string
	for _, path := range slices.Sorted(maps.Keys(byPath)) {
		seen := make(map[string]bool)
		for _, msg := range byPath[path] {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				out = append(out, path+": "+msg)
			} else {
				out = append(out, msg)
			}
		}
	}
	return out
}

// collectErrors gathers leaf errors keyed by instance location.
func collectErrors(err *jsv.ValidationError, byPath map[string][]string) {
	path := ""
	if len(err.InstanceLocation) > 0 {
		path = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			byPath[path] = append(byPath[path], msg)
		}
	}

	for _, cause := range err.Causes {
		collectErrors(cause, byPath)
	}
}
