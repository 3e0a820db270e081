// Package query narrows decoded responses with jq expressions before schema
// inference, e.g. ".data.items" to analyze the records inside an envelope.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/itchyny/gojq"

	"github.com/usestring/apiscout-mcp/pkg/schema"
)

// DefaultCacheSize is the number of compiled expressions kept.
const DefaultCacheSize = 128

// Engine compiles and runs jq expressions. Compiled programs are cached by
// expression text.
type Engine struct {
	compiled *lru.Cache[string, *gojq.Code]
}

// NewEngine creates an engine caching up to cacheSize compiled expressions.
// Non-positive sizes use DefaultCacheSize.
func NewEngine(cacheSize int) *Engine {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes.
	c, _ := lru.New[string, *gojq.Code](cacheSize)
	return &Engine{compiled: c}
}

// Compile parses and compiles expression, reusing a cached program when
// available.
func (e *Engine) Compile(expression string) (*gojq.Code, error) {
	if code, ok := e.compiled.Get(expression); ok {
		return code, nil
	}

	q, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}

	e.compiled.Add(expression, code)
	return code, nil
}

// ValidateExpression checks if a jq expression is valid without executing it.
func (e *Engine) ValidateExpression(expression string) error {
	_, err := e.Compile(expression)
	return err
}

// Select runs expression against doc. A single output is returned as is;
// several outputs are collected into a list; no output yields nil.
func (e *Engine) Select(ctx context.Context, expression string, doc any) (any, error) {
	code, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}

	var out []any
	iter := code.RunWithContext(ctx, normalize(doc))
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return nil, errors.New(formatJQError(expression, err))
		}
		out = append(out, denormalize(v))
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0], nil
	default:
		return out, nil
	}
}

// normalize converts decoded values into the forms gojq accepts. Integer
// literals become int (or *big.Int when they overflow) and every other number
// float64, so the literal's int/float distinction survives as the Go kind.
func normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		s := val.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := val.Int64(); err == nil {
				return int(i)
			}
			if bi, ok := new(big.Int).SetString(s, 10); ok {
				return bi
			}
		}
		f, err := val.Float64()
		if err != nil {
			return s
		}
		return f
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case *schema.Object:
		return normalize(schema.Plain(val))
	default:
		return v
	}
}

// denormalize turns gojq numbers back into json.Number. Floats always carry
// a fraction or exponent so they still classify as float.
func denormalize(v any) any {
	switch val := v.(type) {
	case int:
		return json.Number(strconv.Itoa(val))
	case *big.Int:
		return json.Number(val.String())
	case float64:
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return val
		}
		s := strconv.FormatFloat(val, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return json.Number(s)
	case map[string]any:
		for k, item := range val {
			val[k] = denormalize(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = denormalize(item)
		}
		return val
	default:
		return v
	}
}

// formatJQError adds hints for the runtime errors users hit most often when
// pointing at the wrong part of a response.
//
// Runtime jq errors are plain errors without typed wrappers in gojq, so the
// hints are picked by matching the message text.
func formatJQError(expression string, err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		return fmt.Sprintf("%s: query halted with: %v", expression, haltErr.Value())
	}

	errStr := err.Error()

	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the path may not exist in this response)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}

	return fmt.Sprintf("%s: %s%s", expression, errStr, hint)
}
