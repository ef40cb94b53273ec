// Package jq filters workflow results with jq expressions.
package jq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/itchyny/gojq"
)

const (
	// DefaultTimeout bounds a single filter evaluation.
	DefaultTimeout = 2 * time.Second

	// DefaultMaxInputSize is the largest result text accepted (10MB).
	DefaultMaxInputSize = 10 * 1024 * 1024
)

// Executor evaluates jq expressions with a timeout and an input size cap.
type Executor struct {
	timeout      time.Duration
	maxInputSize int
}

// NewExecutor creates an executor. Zero values select the defaults.
func NewExecutor(timeout time.Duration, maxInputSize int) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxInputSize <= 0 {
		maxInputSize = DefaultMaxInputSize
	}
	return &Executor{timeout: timeout, maxInputSize: maxInputSize}
}

// Compile parses and compiles expression so flag values fail fast.
func Compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed: %w", err)
	}
	return code, nil
}

// Run evaluates expression against a decoded JSON value and returns every
// emitted value.
func (e *Executor) Run(ctx context.Context, expression string, input any) ([]any, error) {
	code, err := Compile(expression)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var results []any
	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("jq evaluation timed out after %v", e.timeout)
			}
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}

// Apply filters a JSON result text and renders each emitted value on its
// own line, strings unquoted and other values as 2-space indented JSON.
func (e *Executor) Apply(ctx context.Context, expression, text string) (string, error) {
	if expression == "" {
		return text, nil
	}
	if len(text) > e.maxInputSize {
		return "", fmt.Errorf("result size (%d bytes) exceeds maximum (%d bytes)", len(text), e.maxInputSize)
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var input any
	if err := dec.Decode(&input); err != nil {
		return "", fmt.Errorf("result is not JSON: %w", err)
	}
	input = normalizeNumbers(input)

	results, err := e.Run(ctx, expression, input)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(results))
	for _, v := range results {
		if s, ok := v.(string); ok {
			lines = append(lines, s)
			continue
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("failed to encode jq result: %w", err)
		}
		lines = append(lines, strings.TrimSuffix(buf.String(), "\n"))
	}
	return strings.Join(lines, "\n"), nil
}

// normalizeNumbers converts json.Number values into the int or float64
// values gojq operates on.
func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, item := range x {
			x[k] = normalizeNumbers(item)
		}
		return x
	case []any:
		for i, item := range x {
			x[i] = normalizeNumbers(item)
		}
		return x
	default:
		return v
	}
}
