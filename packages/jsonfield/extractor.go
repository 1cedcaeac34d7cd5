// Package jsonfield resolves path expressions against JSON documents.
//
// Three syntaxes are supported: simple dot notation ("data.user.name"),
// bracket/nested notation ("data['user'][0]"), and full path queries
// evaluated by gjson ("items.#.id", JSONPath-style "$.items[*].id"). Path
// queries that cannot be evaluated fall back to simple dot notation, so
// callers must not rely on query-only syntax being honored in that
// degraded mode.
//
// Extraction never returns a Go error on the happy path: a missing field
// yields Found=false with an explanatory message and the caller's default.
package jsonfield

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Syntax selects how the path expression is interpreted.
type Syntax string

const (
	// SyntaxSimple splits the path on dots.
	SyntaxSimple Syntax = "simple"
	// SyntaxNested tokenizes bracket notation.
	SyntaxNested Syntax = "nested"
	// SyntaxPath evaluates a full path query, falling back to simple.
	SyntaxPath Syntax = "jsonpath"
)

// ReturnType controls how a matched value is rendered.
type ReturnType string

const (
	// ReturnAuto renders scalars plainly and structured values as JSON.
	ReturnAuto ReturnType = "auto"
	// ReturnString forces plain string rendering.
	ReturnString ReturnType = "string"
	// ReturnJSON forces indented JSON rendering.
	ReturnJSON ReturnType = "json"
)

// Options tunes one extraction.
type Options struct {
	Syntax     Syntax
	Default    string
	ReturnType ReturnType
	// Multiple returns every match serialized as a JSON array instead of
	// just the first.
	Multiple bool
}

// Result is the outcome of an extraction. Count reports how many values
// matched even when only the first is returned.
type Result struct {
	Value     string
	Formatted string
	Count     int
	Found     bool
	Message   string
}

// Extract resolves path against the JSON document in jsonData.
func Extract(jsonData, path string, opts Options) Result {
	var data any
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		msg := fmt.Sprintf("JSON parsing error: %v", err)
		return Result{Value: opts.Default, Formatted: opts.Default, Message: msg}
	}

	var matches []any
	var message string

	switch opts.Syntax {
	case SyntaxSimple:
		matches, message = simpleExtract(data, path)
	case SyntaxNested:
		matches, message = nestedExtract(data, path)
	case SyntaxPath, "":
		matches, message = pathExtract(jsonData, data, path)
	default:
		return Result{Value: opts.Default, Formatted: opts.Default,
			Message: fmt.Sprintf("unknown extraction syntax %q", opts.Syntax)}
	}

	if len(matches) == 0 {
		if message == "" {
			message = fmt.Sprintf("path %q not found", path)
		}
		return Result{Value: opts.Default, Formatted: opts.Default, Message: message}
	}

	return shape(matches, opts)
}

// simpleExtract walks dot-separated segments. A leading $ segment is the
// JSONPath root marker and is skipped. Numeric segments index sequences
// with bounds checking; any miss short-circuits with a message.
func simpleExtract(data any, path string) ([]any, string) {
	current := data
	walked := false
	for _, part := range strings.Split(strings.TrimSpace(path), ".") {
		if part == "" || strings.HasPrefix(part, "$") {
			continue
		}
		next, msg := step(current, part, path)
		if msg != "" {
			return nil, msg
		}
		current = next
		walked = true
	}
	// An empty path (or one that is only a root marker) selects nothing.
	if !walked {
		return nil, fmt.Sprintf("path %q is empty", path)
	}
	if current == nil {
		return nil, fmt.Sprintf("path %q resolved to null", path)
	}
	return []any{current}, ""
}

var nestedTokenPattern = regexp.MustCompile(`(?:\['([^']+)'\]|\["([^"]+)"\]|\[(\d+)\]|\.([^.\[]+)|([^.\[]+))`)

// nestedExtract tokenizes bracket notation: ['key'], ["key"], [0], .seg,
// and bare segments, applied left to right with the same rules as
// simpleExtract.
func nestedExtract(data any, path string) ([]any, string) {
	p := strings.TrimSpace(path)
	p = strings.TrimPrefix(p, "$")

	current := data
	walked := false
	for _, groups := range nestedTokenPattern.FindAllStringSubmatch(p, -1) {
		var part string
		for _, g := range groups[1:] {
			if g != "" {
				part = g
				break
			}
		}
		if part == "" {
			continue
		}
		next, msg := step(current, part, path)
		if msg != "" {
			return nil, msg
		}
		current = next
		walked = true
	}
	if !walked {
		return nil, fmt.Sprintf("path %q is empty", path)
	}
	if current == nil {
		return nil, fmt.Sprintf("path %q resolved to null", path)
	}
	return []any{current}, ""
}

// step resolves one path segment against a mapping or sequence.
func step(current any, part, fullPath string) (any, string) {
	switch v := current.(type) {
	case map[string]any:
		value, ok := v[part]
		if !ok {
			return nil, fmt.Sprintf("field %q not found in path %q", part, fullPath)
		}
		return value, ""
	case []any:
		index, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Sprintf("cannot access list with key %q", part)
		}
		if index < 0 || index >= len(v) {
			return nil, fmt.Sprintf("list index %d out of range", index)
		}
		return v[index], ""
	default:
		return nil, fmt.Sprintf("field %q not found in path %q", part, fullPath)
	}
}

// pathExtract evaluates a path query with gjson, accepting JSONPath-style
// spellings by normalizing them first. When the query matches nothing it
// falls back to simple dot extraction on the original path.
func pathExtract(jsonData string, data any, path string) ([]any, string) {
	gpath, wildcard := normalizePathQuery(path)
	if gpath != "" {
		result := gjson.Get(jsonData, gpath)
		if result.Exists() {
			if wildcard && result.IsArray() {
				var matches []any
				result.ForEach(func(_, value gjson.Result) bool {
					matches = append(matches, value.Value())
					return true
				})
				return matches, ""
			}
			return []any{result.Value()}, ""
		}
	}
	return simpleExtract(data, path)
}

var (
	quotedBracketPattern = regexp.MustCompile(`\[['"]([^'"]+)['"]\]`)
	indexBracketPattern  = regexp.MustCompile(`\[(\d+)\]`)
)

// normalizePathQuery rewrites JSONPath-style expressions into gjson paths:
// a leading $ is dropped, ['key'] and [0] become dot segments, and [*]
// becomes the # wildcard. Filter expressions are left as-is and simply fail
// to match, triggering the fallback; a `..` descent collapses into a plain
// dot path, which matches only a key at that literal position — the same
// degraded behavior the fallback gives.
func normalizePathQuery(path string) (string, bool) {
	p := strings.TrimSpace(path)
	p = strings.TrimPrefix(p, "$")
	wildcard := strings.Contains(p, "[*]") || strings.Contains(p, ".#")

	p = strings.ReplaceAll(p, "[*]", ".#")
	p = quotedBracketPattern.ReplaceAllString(p, ".$1")
	p = indexBracketPattern.ReplaceAllString(p, ".$1")
	for strings.Contains(p, "..") {
		p = strings.ReplaceAll(p, "..", ".")
	}
	return strings.Trim(p, "."), wildcard
}

// shape renders matched values according to the result options.
func shape(matches []any, opts Options) Result {
	count := len(matches)

	if opts.Multiple {
		compact, err := json.Marshal(matches)
		if err != nil {
			return Result{Value: opts.Default, Formatted: opts.Default,
				Message: fmt.Sprintf("serializing matches: %v", err)}
		}
		formatted := indentJSON(compact)
		value := string(compact)
		if opts.ReturnType == ReturnJSON {
			value = formatted
		}
		return Result{Value: value, Formatted: formatted, Count: count, Found: true}
	}

	first := matches[0]

	switch opts.ReturnType {
	case ReturnString:
		s := scalarString(first)
		return Result{Value: s, Formatted: s, Count: count, Found: true}
	case ReturnJSON:
		compact, err := json.Marshal(first)
		if err != nil {
			return Result{Value: opts.Default, Formatted: opts.Default,
				Message: fmt.Sprintf("serializing match: %v", err)}
		}
		formatted := indentJSON(compact)
		return Result{Value: formatted, Formatted: formatted, Count: count, Found: true}
	default: // auto
		switch first.(type) {
		case map[string]any, []any:
			compact, err := json.Marshal(first)
			if err != nil {
				return Result{Value: opts.Default, Formatted: opts.Default,
					Message: fmt.Sprintf("serializing match: %v", err)}
			}
			return Result{Value: string(compact), Formatted: indentJSON(compact), Count: count, Found: true}
		default:
			s := scalarString(first)
			return Result{Value: s, Formatted: s, Count: count, Found: true}
		}
	}
}

// scalarString renders a scalar the way a template would expect: numbers
// without a trailing .0, booleans as true/false, null spelled out.
func scalarString(v any) string {
	switch value := v.(type) {
	case nil:
		return "null"
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(data)
	}
}

func indentJSON(compact []byte) string {
	return strings.TrimRight(string(pretty.Pretty(compact)), "\n")
}
