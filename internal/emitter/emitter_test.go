package emitter

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/mcncl/jsonemit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		value    models.Value
		expected string
	}{
		{name: "string", value: models.String("hello"), expected: `"hello"`},
		{name: "empty string", value: models.String(""), expected: `""`},
		{name: "integer", value: models.Number(42), expected: `42`},
		{name: "negative float", value: models.Number(-3.25), expected: `-3.25`},
		{name: "true", value: models.Bool(true), expected: `true`},
		{name: "false", value: models.Bool(false), expected: `false`},
		{name: "null", value: models.NullValue, expected: `null`},
		{name: "nil value", value: nil, expected: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Pretty(tt.value))
			assert.Equal(t, tt.expected, Compact(tt.value))
		})
	}
}

func TestRender_StringEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "quote backslash newline", input: "a\"b\\c\n", expected: `"a\"b\\c\n"`},
		{name: "forward slash", input: "a/b", expected: `"a\/b"`},
		{name: "carriage return and tab", input: "\r\t", expected: `"\r\t"`},
		{name: "form feed and backspace", input: "\f\b", expected: `"\f\b"`},
		{name: "other control characters pass through", input: "\x00\x01\x1f", expected: "\"\x00\x01\x1f\""},
		{name: "unicode passes through", input: "héllo 世界 🎉", expected: `"héllo 世界 🎉"`},
		{name: "invalid utf8 passes through", input: "a\xffb", expected: "\"a\xffb\""},
		{name: "escape at both ends", input: "\"x\"", expected: `"\"x\""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compact(models.String(tt.input)))
		})
	}
}

func TestRender_ObjectKeysAreEscaped(t *testing.T) {
	obj := models.Object{{Key: "a/b\"c", Value: models.Number(1)}}
	assert.Equal(t, `{"a\/b\"c":1}`, Compact(obj))
}

func TestRender_EmptyContainers(t *testing.T) {
	for _, compact := range []bool{false, true} {
		assert.Equal(t, "[]", Render(models.Array{}, Options{Compact: compact}))
		assert.Equal(t, "{}", Render(models.Object{}, Options{Compact: compact}))
		assert.Equal(t, "[]", Render(models.Array(nil), Options{Compact: compact}))
		assert.Equal(t, "{}", Render(models.Object(nil), Options{Compact: compact}))
	}
}

func TestRender_FlatObject(t *testing.T) {
	obj := models.Object{}.
		Set("a", models.Number(1)).
		Set("b", models.Bool(true))

	assert.Equal(t, `{"a":1,"b":true}`, Compact(obj))

	expected := `{
    "a": 1,
    "b": true
}`
	assert.Equal(t, expected, Pretty(obj))
}

func TestRender_NestedArrayOfObjects(t *testing.T) {
	value := models.Array{models.Object{{Key: "x", Value: models.NullValue}}}

	assert.Equal(t, `[{"x":null}]`, Compact(value))
	assert.Equal(t, "[{\n    \"x\": null\n}]", Pretty(value))
}

func TestRender_KeyOrderPreserved(t *testing.T) {
	obj := models.Object{}.
		Set("z", models.Number(1)).
		Set("a", models.Number(2))

	out := Compact(obj)
	assert.Equal(t, `{"z":1,"a":2}`, out)
	assert.Less(t, strings.Index(out, `"z"`), strings.Index(out, `"a"`))
}

func TestRender_DuplicateKeysKept(t *testing.T) {
	obj := models.Object{}.
		Set("k", models.Number(1)).
		Set("k", models.Number(2))

	assert.Equal(t, `{"k":1,"k":2}`, Compact(obj))
}

func TestRender_ArraysStayInline(t *testing.T) {
	value := models.Array{
		models.Number(1),
		models.Array{models.String("a"), models.Array{}},
		models.Object{},
	}

	assert.Equal(t, `[1, ["a", []], {}]`, Pretty(value))
	assert.Equal(t, `[1,["a",[]],{}]`, Compact(value))
}

func TestRender_NestedObjectsPretty(t *testing.T) {
	value := models.Object{
		{Key: "name", Value: models.String("jsonemit")},
		{Key: "tags", Value: models.Array{models.String("go"), models.String("json")}},
		{Key: "owner", Value: models.Object{
			{Key: "id", Value: models.Number(7)},
			{Key: "meta", Value: models.Object{}},
			{Key: "roles", Value: models.Array{models.Object{{Key: "r", Value: models.Bool(false)}}}},
		}},
	}

	expected := `{
    "name": "jsonemit",
    "tags": ["go", "json"],
    "owner": {
        "id": 7,
        "meta": {},
        "roles": [{
            "r": false
        }]
    }
}`
	assert.Equal(t, expected, Pretty(value))
	assert.Equal(t, `{"name":"jsonemit","tags":["go","json"],"owner":{"id":7,"meta":{},"roles":[{"r":false}]}}`, Compact(value))
}

func TestRender_SeparatorDensity(t *testing.T) {
	value := sampleTree()

	compact := Compact(value)
	assert.NotContains(t, compact, ", ")
	assert.NotContains(t, compact, ": ")
	assert.NotContains(t, compact, "\n")

	pretty := Pretty(value)
	assert.Contains(t, pretty, ": ")
	assert.Contains(t, pretty, ", ")
	for _, line := range strings.Split(pretty, "\n") {
		assert.Equal(t, strings.TrimRight(line, " "), line, "no trailing whitespace expected")
	}
}

func TestRender_RoundTrip(t *testing.T) {
	value := sampleTree()
	want := models.ToNative(value)

	for _, compact := range []bool{false, true} {
		var got any
		require.NoError(t, json.Unmarshal([]byte(Render(value, Options{Compact: compact})), &got))
		assert.Equal(t, want, got)
	}
}

func TestRender_DepthReturnsToZero(t *testing.T) {
	values := []models.Value{
		models.Object{},
		models.Array{},
		sampleTree(),
		deepObject(64),
		deepArray(64),
	}

	for _, v := range values {
		for _, compact := range []bool{false, true} {
			e := New(Options{Compact: compact})
			e.Render(v)
			assert.Equal(t, 0, e.Depth())
			_ = e.Consume()
		}
	}
}

func TestRender_DeepNestingDoesNotOverflow(t *testing.T) {
	const depth = 200000

	out := Compact(deepArray(depth))
	assert.Equal(t, strings.Repeat("[", depth)+strings.Repeat("]", depth), out)

	out = Compact(deepObject(depth))
	assert.True(t, strings.HasPrefix(out, `{"k":{"k":`))
	assert.Equal(t, depth, strings.Count(out, "}"))
}

func TestRender_DeepObjectIndentation(t *testing.T) {
	expected := "{\n    \"k\": {\n        \"k\": {}\n    }\n}"
	assert.Equal(t, expected, Pretty(deepObject(3)))
}

func TestEmitter_ConsumeIsTerminal(t *testing.T) {
	e := New(Options{Compact: true})
	e.Render(models.Number(1))
	assert.Equal(t, "1", e.Consume())

	assert.Panics(t, func() { e.Render(models.Number(2)) })
	assert.Panics(t, func() { _ = e.Consume() })
}

func TestEmitter_RenderAppends(t *testing.T) {
	e := New(Options{})
	assert.False(t, e.Compact())
	e.Render(models.String("a"))
	e.Render(models.Bool(true))
	assert.Equal(t, `"a"true`, e.Consume())
}

func TestEmitter_DedentBelowZeroPanics(t *testing.T) {
	e := New(Options{})
	assert.Panics(t, func() { e.dedent() })
}

func TestRender_ConcurrentRendersShareTree(t *testing.T) {
	value := sampleTree()
	want := Pretty(value)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Pretty(value)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func sampleTree() models.Value {
	return models.Object{
		{Key: "string", Value: models.String("line\nbreak \"quoted\" back\\slash /path\t\f\b\r")},
		{Key: "int", Value: models.Number(12345)},
		{Key: "float", Value: models.Number(0.1)},
		{Key: "tiny", Value: models.Number(1e-9)},
		{Key: "huge", Value: models.Number(1.5e300)},
		{Key: "bools", Value: models.Array{models.Bool(true), models.Bool(false)}},
		{Key: "null", Value: models.NullValue},
		{Key: "empty", Value: models.Object{{Key: "arr", Value: models.Array{}}, {Key: "obj", Value: models.Object{}}}},
		{Key: "nested", Value: models.Array{
			models.Object{{Key: "x", Value: models.NullValue}},
			models.Array{models.Number(-1), models.String("ü")},
		}},
	}
}

func deepArray(depth int) models.Value {
	var v models.Value = models.Array{}
	for i := 1; i < depth; i++ {
		v = models.Array{v}
	}
	return v
}

func deepObject(depth int) models.Value {
	var v models.Value = models.Object{}
	for i := 1; i < depth; i++ {
		v = models.Object{{Key: "k", Value: v}}
	}
	return v
}
