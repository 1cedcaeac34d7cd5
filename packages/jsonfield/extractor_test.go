package jsonfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sample = `{"a": {"b": [42, 43]}, "items": [{"id": 1}, {"id": 2}, {"id": 3}], "name": "widget", "active": true, "nothing": null}`

func TestExtract_SimpleDotPath(t *testing.T) {
	result := Extract(sample, "a.b.0", Options{Syntax: SyntaxSimple})

	assert.True(t, result.Found)
	assert.Equal(t, "42", result.Value)
	assert.Equal(t, 1, result.Count)
	assert.Empty(t, result.Message)
}

func TestExtract_SimpleIndexOutOfRange(t *testing.T) {
	result := Extract(sample, "a.b.5", Options{Syntax: SyntaxSimple, Default: "fallback"})

	assert.False(t, result.Found)
	assert.Equal(t, "fallback", result.Value)
	assert.Equal(t, 0, result.Count)
	assert.Contains(t, result.Message, "out of range")
}

func TestExtract_SimpleNonNumericSegmentOnList(t *testing.T) {
	result := Extract(sample, "a.b.first", Options{Syntax: SyntaxSimple})

	assert.False(t, result.Found)
	assert.Contains(t, result.Message, "cannot access list")
}

func TestExtract_SimpleMissingField(t *testing.T) {
	result := Extract(sample, "a.missing.x", Options{Syntax: SyntaxSimple, Default: "d"})

	assert.False(t, result.Found)
	assert.Equal(t, "d", result.Value)
	assert.Contains(t, result.Message, "missing")
}

func TestExtract_SimpleLeadingRootMarkerIgnored(t *testing.T) {
	result := Extract(sample, "$.name", Options{Syntax: SyntaxSimple})

	assert.True(t, result.Found)
	assert.Equal(t, "widget", result.Value)
}

func TestExtract_NestedBracketNotation(t *testing.T) {
	result := Extract(sample, "a['b'][1]", Options{Syntax: SyntaxNested})
	assert.True(t, result.Found)
	assert.Equal(t, "43", result.Value)

	result = Extract(sample, `items[0].id`, Options{Syntax: SyntaxNested})
	assert.True(t, result.Found)
	assert.Equal(t, "1", result.Value)

	result = Extract(sample, `a["b"][0]`, Options{Syntax: SyntaxNested})
	assert.True(t, result.Found)
	assert.Equal(t, "42", result.Value)
}

func TestExtract_PathQueryWildcard(t *testing.T) {
	result := Extract(sample, "$.items[*].id", Options{Syntax: SyntaxPath, Multiple: true})

	assert.True(t, result.Found)
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, "[1,2,3]", result.Value)
	assert.NotEmpty(t, result.Formatted)
}

func TestExtract_PathQuerySingleMatchReportsCount(t *testing.T) {
	result := Extract(sample, "$.items[*].id", Options{Syntax: SyntaxPath})

	assert.True(t, result.Found)
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, "1", result.Value)
}

func TestExtract_PathQueryFallsBackToSimple(t *testing.T) {
	// A filter expression gjson cannot evaluate falls back to simple dot
	// extraction, which cannot evaluate it either: default applies.
	result := Extract(sample, "$.items[?(@.id>1)].id", Options{Syntax: SyntaxPath, Default: "none"})
	assert.False(t, result.Found)
	assert.Equal(t, "none", result.Value)

	// A plain dot path works through the query evaluator unchanged.
	result = Extract(sample, "a.b.1", Options{Syntax: SyntaxPath})
	assert.True(t, result.Found)
	assert.Equal(t, "43", result.Value)
}

func TestExtract_ReturnTypes(t *testing.T) {
	structured := Extract(sample, "a", Options{Syntax: SyntaxSimple})
	assert.True(t, structured.Found)
	assert.JSONEq(t, `{"b": [42, 43]}`, structured.Value)
	assert.Contains(t, structured.Formatted, "\n")

	forcedString := Extract(sample, "a.b.0", Options{Syntax: SyntaxSimple, ReturnType: ReturnString})
	assert.Equal(t, "42", forcedString.Value)

	forcedJSON := Extract(sample, "name", Options{Syntax: SyntaxSimple, ReturnType: ReturnJSON})
	assert.Equal(t, `"widget"`, forcedJSON.Value)

	boolean := Extract(sample, "active", Options{Syntax: SyntaxSimple})
	assert.Equal(t, "true", boolean.Value)
}

func TestExtract_FloatsRenderWithoutTrailingZero(t *testing.T) {
	result := Extract(`{"price": 19.5, "count": 3}`, "count", Options{Syntax: SyntaxSimple})
	assert.Equal(t, "3", result.Value)

	result = Extract(`{"price": 19.5}`, "price", Options{Syntax: SyntaxSimple})
	assert.Equal(t, "19.5", result.Value)
}

func TestExtract_EmptyPathIsNotFound(t *testing.T) {
	for _, syntax := range []Syntax{SyntaxSimple, SyntaxNested, SyntaxPath} {
		result := Extract(sample, "", Options{Syntax: syntax, Default: "d"})
		assert.False(t, result.Found, string(syntax))
		assert.Equal(t, "d", result.Value, string(syntax))
		assert.NotEmpty(t, result.Message, string(syntax))
	}

	// A bare root marker selects nothing either.
	result := Extract(sample, "$", Options{Syntax: SyntaxSimple, Default: "d"})
	assert.False(t, result.Found)
	assert.Equal(t, "d", result.Value)
}

func TestExtract_InvalidJSONIsNotFound(t *testing.T) {
	result := Extract(`{broken`, "a.b", Options{Syntax: SyntaxSimple, Default: "d"})

	assert.False(t, result.Found)
	assert.Equal(t, "d", result.Value)
	assert.Contains(t, result.Message, "JSON parsing error")
}

func TestExtract_NullValueYieldsDefault(t *testing.T) {
	result := Extract(sample, "nothing", Options{Syntax: SyntaxSimple, Default: "d"})

	assert.False(t, result.Found)
	assert.Equal(t, "d", result.Value)
}

func TestExtract_MultipleWithSingleMatch(t *testing.T) {
	result := Extract(sample, "name", Options{Syntax: SyntaxSimple, Multiple: true})

	assert.True(t, result.Found)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, `["widget"]`, result.Value)
}

func TestNormalizePathQuery(t *testing.T) {
	path, wildcard := normalizePathQuery("$.items[*].id")
	assert.Equal(t, "items.#.id", path)
	assert.True(t, wildcard)

	path, wildcard = normalizePathQuery("$['data']['user'][0]")
	assert.Equal(t, "data.user.0", path)
	assert.False(t, wildcard)

	path, _ = normalizePathQuery("a.b.c")
	assert.Equal(t, "a.b.c", path)
}
