package harness

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tokentest/ser"
	"github.com/roach88/tokentest/token"
)

func TestSerializer_Primitives(t *testing.T) {
	tests := []struct {
		name   string
		value  ser.Serialize
		tokens []token.Token
	}{
		{"bool", ser.Bool(true), []token.Token{token.Bool(true)}},
		{"i8", ser.I8(-8), []token.Token{token.I8(-8)}},
		{"i16", ser.I16(-16), []token.Token{token.I16(-16)}},
		{"i32", ser.I32(-32), []token.Token{token.I32(-32)}},
		{"i64", ser.I64(math.MinInt64), []token.Token{token.I64(math.MinInt64)}},
		{"u8", ser.U8(8), []token.Token{token.U8(8)}},
		{"u16", ser.U16(16), []token.Token{token.U16(16)}},
		{"u32", ser.U32(32), []token.Token{token.U32(32)}},
		{"u64", ser.U64(math.MaxUint64), []token.Token{token.U64(math.MaxUint64)}},
		{"f32", ser.F32(1.5), []token.Token{token.F32(1.5)}},
		{"f64 NaN", ser.F64(math.NaN()), []token.Token{token.F64(math.NaN())}},
		{"char", ser.Char('é'), []token.Token{token.Char('é')}},
		{"str", ser.Str("hello"), []token.Token{token.Str("hello")}},
		{"bytes", ser.Bytes{1, 2}, []token.Token{token.Bytes{1, 2}}},
		{"unit", ser.Unit{}, []token.Token{token.Unit{}}},
		{"none", ser.Option(nil), []token.Token{token.None{}}},
		{"some", ser.Option(ser.I32(1)), []token.Token{token.Some{}, token.I32(1)}},
		{"unit struct", marker{}, []token.Token{token.UnitStruct{Name: "Marker"}}},
		{"newtype struct", meters(2.5), []token.Token{token.NewtypeStruct{Name: "Meters"}, token.F64(2.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, CheckSerTokens(tt.value, tt.tokens))
		})
	}
}

func TestSerializer_EmptyMap(t *testing.T) {
	AssertSerTokens(t, orderedMap{}, []token.Token{
		token.Map{Len: token.Hint(0)},
		token.MapEnd{},
	})
}

func TestSerializer_MapKeepsInsertionOrder(t *testing.T) {
	m := orderedMap{{'b', 20}, {'a', 10}, {'c', 30}}

	AssertSerTokens(t, m, []token.Token{
		token.Map{Len: token.Hint(3)},
		token.Char('b'), token.I32(20),
		token.Char('a'), token.I32(10),
		token.Char('c'), token.I32(30),
		token.MapEnd{},
	})

	err := CheckSerTokens(m, []token.Token{
		token.Map{Len: token.Hint(3)},
		token.Char('a'), token.I32(10),
		token.Char('b'), token.I32(20),
		token.Char('c'), token.I32(30),
		token.MapEnd{},
	})
	require.Error(t, err)

	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, FailMismatch, ae.Kind)
	assert.Equal(t, 1, ae.Index)
	assert.Equal(t, "Char('a')", ae.Expected)
	assert.Equal(t, "Char('b')", ae.Actual)
}

func TestSerializer_Mismatch(t *testing.T) {
	err := CheckSerTokens(ser.I32(1), []token.Token{token.Bool(true)})
	require.Error(t, err)

	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "ser_tokens", ae.Check)
	assert.Equal(t, FailMismatch, ae.Kind)
	assert.Equal(t, 0, ae.Index)
	assert.Equal(t, "Bool(true)", ae.Expected)
	assert.Equal(t, "I32(1)", ae.Actual)
	assert.EqualError(t, ae.Err, "expected Bool(true) but serialized as I32(1)")
	assert.Contains(t, err.Error(), "> [0] Bool(true)")
}

func TestSerializer_Failures(t *testing.T) {
	tests := []struct {
		name    string
		value   ser.Serialize
		tokens  []token.Token
		kind    Failure
		message string
	}{
		{
			name:    "exhausted",
			value:   point{1, 2},
			tokens:  []token.Token{token.Struct{Name: "Point", Len: 2}, token.Field("x"), token.I32(1)},
			kind:    FailExhausted,
			message: `expected end of tokens, but Field("y") was serialized`,
		},
		{
			name:    "leftover",
			value:   ser.I32(1),
			tokens:  []token.Token{token.I32(1), token.I32(2), token.I32(3)},
			kind:    FailLeftover,
			message: "expected 2 more tokens, serializer produced none",
		},
		{
			name:    "single leftover",
			value:   ser.I32(1),
			tokens:  []token.Token{token.I32(1), token.I32(2)},
			kind:    FailLeftover,
			message: "expected 1 more token, serializer produced none",
		},
		{
			name: "declared length too long",
			value: ser.Func(func(s ser.Serializer) error {
				seq, err := s.SerializeSeq(3)
				if err != nil {
					return err
				}
				if err := seq.SerializeElement(ser.I32(1)); err != nil {
					return err
				}
				if err := seq.SerializeElement(ser.I32(2)); err != nil {
					return err
				}
				return seq.End()
			}),
			tokens: []token.Token{
				token.Seq{Len: token.Hint(3)}, token.I32(1), token.I32(2), token.SeqEnd{},
			},
			kind:    FailLength,
			message: "Seq{len: 3} declared 3 elements but 2 were serialized",
		},
		{
			name:    "wrong close",
			value:   ints{},
			tokens:  []token.Token{token.Seq{Len: token.Hint(0)}, token.MapEnd{}},
			kind:    FailBracket,
			message: "expected MapEnd but serialized as SeqEnd",
		},
		{
			name: "unclosed",
			value: ser.Func(func(s ser.Serializer) error {
				seq, err := s.SerializeSeq(1)
				if err != nil {
					return err
				}
				return seq.SerializeElement(ser.I32(1))
			}),
			tokens:  []token.Token{token.Seq{Len: token.Hint(1)}, token.I32(1)},
			kind:    FailUnclosed,
			message: "serializer returned with Seq{len: 1} at [0] still open",
		},
		{
			name:    "nil some",
			value:   ser.Func(func(s ser.Serializer) error { return s.SerializeSome(nil) }),
			tokens:  []token.Token{token.Some{}},
			kind:    FailCustom,
			message: "nil value passed to serializer",
		},
		{
			name:    "value logic error",
			value:   shape{Variant: "Hexagon"},
			tokens:  []token.Token{token.Unit{}},
			kind:    FailCustom,
			message: `unknown shape "Hexagon"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSerTokens(tt.value, tt.tokens)
			require.Error(t, err)
			assert.True(t, IsFailure(err, tt.kind), "got %v", err)

			var ae *AssertionError
			require.True(t, errors.As(err, &ae))
			assert.EqualError(t, ae.Err, tt.message)
		})
	}
}

func TestSerializer_UnknownLengthNeverFails(t *testing.T) {
	v := ser.Func(func(s ser.Serializer) error {
		seq, err := s.SerializeSeq(-1)
		if err != nil {
			return err
		}
		for _, n := range []int32{1, 2} {
			if err := seq.SerializeElement(ser.I32(n)); err != nil {
				return err
			}
		}
		return seq.End()
	})

	AssertSerTokens(t, v, []token.Token{
		token.Seq{}, token.I32(1), token.I32(2), token.SeqEnd{},
	})
}

func TestSerializer_OutOfOrderEnd(t *testing.T) {
	v := ser.Func(func(s ser.Serializer) error {
		outer, err := s.SerializeSeq(1)
		if err != nil {
			return err
		}
		if _, err := s.SerializeSeq(0); err != nil {
			return err
		}
		return outer.End()
	})

	_, err := Record(v)
	require.Error(t, err)
	assert.True(t, IsFailure(err, FailBracket))
	assert.EqualError(t, err, "End called on a scope that is not the innermost open scope")
}

func TestSerializer_MapCallOrder(t *testing.T) {
	tests := []struct {
		name    string
		drive   func(m ser.MapSerializer) error
		message string
	}{
		{
			name: "value before key",
			drive: func(m ser.MapSerializer) error {
				return m.SerializeValue(ser.I32(1))
			},
			message: "SerializeValue called before SerializeKey",
		},
		{
			name: "key twice",
			drive: func(m ser.MapSerializer) error {
				if err := m.SerializeKey(ser.Str("a")); err != nil {
					return err
				}
				return m.SerializeKey(ser.Str("b"))
			},
			message: "SerializeKey called twice without SerializeValue",
		},
		{
			name: "end after key",
			drive: func(m ser.MapSerializer) error {
				if err := m.SerializeKey(ser.Str("a")); err != nil {
					return err
				}
				return m.End()
			},
			message: "map ended between a key and its value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Record(ser.Func(func(s ser.Serializer) error {
				m, err := s.SerializeMap(-1)
				if err != nil {
					return err
				}
				return tt.drive(m)
			}))
			require.Error(t, err)
			assert.True(t, IsFailure(err, FailCustom))
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestSerializer_SkipField(t *testing.T) {
	v := ser.Func(func(s ser.Serializer) error {
		st, err := s.SerializeStruct("Partial", 1)
		if err != nil {
			return err
		}
		if err := st.SerializeField("a", ser.Bool(true)); err != nil {
			return err
		}
		if err := st.SkipField("b"); err != nil {
			return err
		}
		return st.End()
	})

	AssertSerTokens(t, v, []token.Token{
		token.Struct{Name: "Partial", Len: 1},
		token.Field("a"), token.Bool(true),
		token.StructEnd{},
	})
}

func TestSerializer_Enum(t *testing.T) {
	tests := []struct {
		name   string
		value  shape
		tokens []token.Token
	}{
		{
			name:   "unit variant",
			value:  shape{Variant: "Empty"},
			tokens: []token.Token{token.UnitVariant{Name: "Shape", Index: 0, Variant: "Empty"}},
		},
		{
			name:  "newtype variant",
			value: shape{Variant: "Circle", Radius: 3},
			tokens: []token.Token{
				token.NewtypeVariant{Name: "Shape", Index: 1, Variant: "Circle"}, token.I32(3),
			},
		},
		{
			name:  "tuple variant",
			value: shape{Variant: "Rect", W: 2, H: 4},
			tokens: []token.Token{
				token.TupleVariant{Name: "Shape", Index: 2, Variant: "Rect", Len: 2},
				token.I32(2), token.I32(4),
				token.TupleVariantEnd{},
			},
		},
		{
			name:  "struct variant",
			value: shape{Variant: "Tagged", Label: "x"},
			tokens: []token.Token{
				token.StructVariant{Name: "Shape", Index: 3, Variant: "Tagged", Len: 1},
				token.Field("label"), token.Str("x"),
				token.StructVariantEnd{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			AssertSerTokens(t, tt.value, tt.tokens)
		})
	}
}

func TestRecord(t *testing.T) {
	tokens, err := Record(point{1, 2})
	require.NoError(t, err)
	assert.True(t, token.EqualSeq([]token.Token{
		token.Struct{Name: "Point", Len: 2},
		token.Field("x"), token.I32(1),
		token.Field("y"), token.I32(2),
		token.StructEnd{},
	}, tokens), token.Format(tokens))
}

func TestRecord_StillChecksLength(t *testing.T) {
	_, err := Record(ser.Func(func(s ser.Serializer) error {
		st, err := s.SerializeStruct("Point", 3)
		if err != nil {
			return err
		}
		if err := st.SerializeField("x", ser.I32(1)); err != nil {
			return err
		}
		return st.End()
	}))
	require.Error(t, err)
	assert.True(t, IsFailure(err, FailLength))
	assert.EqualError(t, err, `Struct{name: "Point", len: 3} declared 3 fields but 1 were serialized`)
}

func TestSerializer_Remaining(t *testing.T) {
	s := NewSerializer([]token.Token{token.I32(1), token.I32(2)})
	assert.Equal(t, 2, s.Remaining())
	require.NoError(t, ser.I32(1).Serialize(s))
	assert.Equal(t, 1, s.Remaining())
}

func TestSerializer_LogsMatches(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	require.NoError(t, CheckSerTokens(ser.I32(7), []token.Token{token.I32(7)}, WithLogger(logger)))
	assert.Contains(t, buf.String(), "token matched")
	assert.Contains(t, buf.String(), "index=0")
}

func TestSerializer_HumanReadableFlag(t *testing.T) {
	assert.False(t, NewSerializer(nil).IsHumanReadable())
	assert.True(t, NewSerializer(nil, WithHumanReadable(true)).IsHumanReadable())
}
