package ir

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalScalars(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"bool", Bool(true), `{"bool":true}`},
		{"i8", I8(-5), `{"i8":-5}`},
		{"i64 min", I64(math.MinInt64), `{"i64":-9223372036854775808}`},
		{"u64 max", U64(math.MaxUint64), `{"u64":18446744073709551615}`},
		{"f32", F32(1.5), `{"f32":"1.5"}`},
		{"f64 nan", F64(math.NaN()), `{"f64":"NaN"}`},
		{"f64 -inf", F64(math.Inf(-1)), `{"f64":"-Inf"}`},
		{"char", Char('a'), `{"char":"a"}`},
		{"str", Str("hello"), `{"str":"hello"}`},
		{"bytes", Bytes{0xde, 0xad}, `{"bytes":"dead"}`},
		{"none", None{}, `{"none":{}}`},
		{"unit", Unit{}, `{"unit":{}}`},
		{"some", Some{Value: I32(1)}, `{"some":{"i32":1}}`},
		{"unit struct", UnitStruct{Name: "Marker"}, `{"unit_struct":{"name":"Marker"}}`},
		{"unit variant", UnitVariant{Name: "E", Index: 1, Variant: "B"},
			`{"unit_variant":{"index":1,"name":"E","variant":"B"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalCompound(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{
			name:     "seq with hint",
			input:    NewSeq(I32(1), I32(2)),
			expected: `{"seq":{"elems":[{"i32":1},{"i32":2}],"len":2}}`,
		},
		{
			name:     "seq without hint",
			input:    Seq{Elems: []Value{}},
			expected: `{"seq":{"elems":[]}}`,
		},
		{
			name:     "tuple struct",
			input:    TupleStruct{Name: "Foo", Elems: []Value{I32(1), I32(2)}},
			expected: `{"tuple_struct":{"elems":[{"i32":1},{"i32":2}],"name":"Foo"}}`,
		},
		{
			name:     "map keeps entry order",
			input:    NewMap(E(Char('b'), I32(20)), E(Char('a'), I32(10))),
			expected: `{"map":{"entries":[[{"char":"b"},{"i32":20}],[{"char":"a"},{"i32":10}]],"len":2}}`,
		},
		{
			name:     "struct keeps field order",
			input:    NewStruct("Point", F("y", I32(2)), F("x", I32(1))),
			expected: `{"struct":{"fields":[{"name":"y","value":{"i32":2}},{"name":"x","value":{"i32":1}}],"name":"Point"}}`,
		},
		{
			name:     "newtype variant",
			input:    NewtypeVariant{Name: "E", Index: 2, Variant: "C", Value: Str("x")},
			expected: `{"newtype_variant":{"index":2,"name":"E","value":{"str":"x"},"variant":"C"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNilValue(t *testing.T) {
	_, err := MarshalCanonical(NewSeq(I32(1), nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elems[1]")

	_, err = MarshalCanonical(nil)
	require.Error(t, err)
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(Str("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `{"str":"<a & b>"}`, string(result))
}

func TestMarshalCanonicalPayloadsNotNormalized(t *testing.T) {
	decomposed, err := MarshalCanonical(Str("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "{\"str\":\"e\u0301\"}", string(decomposed))

	composed, err := MarshalCanonical(Str("\u00e9"))
	require.NoError(t, err)
	assert.NotEqual(t, string(composed), string(decomposed))

	field, err := MarshalCanonical(Struct{Name: "S", Fields: []Field{{Name: "e\u0301", Value: Char('\u00e9')}}})
	require.NoError(t, err)
	assert.Contains(t, string(field), "\"name\":\"e\u0301\"")
	assert.Contains(t, string(field), "{\"char\":\"\u00e9\"}")
}

func TestWriteNodeNormalizesKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeNode(&buf, object{"e\u0301": int64(1), "a": int64(2)}))
	assert.Equal(t, "{\"a\":2,\"\u00e9\":1}", buf.String())

	buf.Reset()
	err := writeNode(&buf, object{"e\u0301": int64(1), "\u00e9": int64(2)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate after normalization")
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical(Str("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "{\"str\":\"a\u2028b\u2029c\"}", string(result))
}

func TestMarshalCanonicalEscapedBackslashBeforeU2028Text(t *testing.T) {
	// A literal backslash followed by the text "u2028" must stay escaped.
	result, err := MarshalCanonical(Str(`\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `{"str":"\\u2028"}`, string(result))
}

func TestMarshalCanonicalControlCharacters(t *testing.T) {
	result, err := MarshalCanonical(Str("a\nb\tc"))
	require.NoError(t, err)
	assert.Equal(t, `{"str":"a\nb\tc"}`, string(result))
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	v := NewStruct("S",
		F("m", NewMap(E(Str("k"), Some{Value: F64(0.1)}))),
		F("v", StructVariant{Name: "E", Index: 3, Variant: "D", Fields: []Field{F("a", Unit{})}}),
	)
	first, err := MarshalCanonical(v)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(v)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
