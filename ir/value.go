package ir

import (
	"slices"
	"unicode/utf16"

	"github.com/roach88/tokentest/ser"
	"github.com/roach88/tokentest/token"
)

// Value is a sealed interface over the shapes a self-describing token stream
// can take. Every Value serializes back to exactly the tokens it was read
// from, so a tree can stand in for any concrete type in round trips.
type Value interface {
	ser.Serialize
	irValue() // Sealed
}

type (
	Bool  bool
	I8    int8
	I16   int16
	I32   int32
	I64   int64
	U8    uint8
	U16   uint16
	U32   uint32
	U64   uint64
	F32   float32
	F64   float64
	Char  rune
	Str   string
	Bytes []byte
)

// None is an absent optional.
type None struct{}

// Some is a present optional.
type Some struct {
	Value Value
}

// Unit is the empty value.
type Unit struct{}

type UnitStruct struct {
	Name string
}

type UnitVariant struct {
	Name    string
	Index   uint32
	Variant string
}

type NewtypeStruct struct {
	Name  string
	Value Value
}

type NewtypeVariant struct {
	Name    string
	Index   uint32
	Variant string
	Value   Value
}

// Seq keeps the hint it was read with; a hinted Seq always has Len equal
// to len(Elems).
type Seq struct {
	Len   token.Len
	Elems []Value
}

type Tuple struct {
	Elems []Value
}

type TupleStruct struct {
	Name  string
	Elems []Value
}

type TupleVariant struct {
	Name    string
	Index   uint32
	Variant string
	Elems   []Value
}

// Entry is one map entry. Map entries keep their stream order.
type Entry struct {
	Key   Value
	Value Value
}

type Map struct {
	Len     token.Len
	Entries []Entry
}

// Field is one named struct field.
type Field struct {
	Name  string
	Value Value
}

type Struct struct {
	Name   string
	Fields []Field
}

type StructVariant struct {
	Name    string
	Index   uint32
	Variant string
	Fields  []Field
}

func (Bool) irValue()           {}
func (I8) irValue()             {}
func (I16) irValue()            {}
func (I32) irValue()            {}
func (I64) irValue()            {}
func (U8) irValue()             {}
func (U16) irValue()            {}
func (U32) irValue()            {}
func (U64) irValue()            {}
func (F32) irValue()            {}
func (F64) irValue()            {}
func (Char) irValue()           {}
func (Str) irValue()            {}
func (Bytes) irValue()          {}
func (None) irValue()           {}
func (Some) irValue()           {}
func (Unit) irValue()           {}
func (UnitStruct) irValue()     {}
func (UnitVariant) irValue()    {}
func (NewtypeStruct) irValue()  {}
func (NewtypeVariant) irValue() {}
func (Seq) irValue()            {}
func (Tuple) irValue()          {}
func (TupleStruct) irValue()    {}
func (TupleVariant) irValue()   {}
func (Map) irValue()            {}
func (Struct) irValue()         {}
func (StructVariant) irValue()  {}

// NewSeq creates a Seq whose hint is the element count.
func NewSeq(elems ...Value) Seq {
	return Seq{Len: token.Hint(len(elems)), Elems: elems}
}

// NewMap creates a Map whose hint is the entry count.
func NewMap(entries ...Entry) Map {
	return Map{Len: token.Hint(len(entries)), Entries: entries}
}

// NewStruct creates a Struct from fields in order.
func NewStruct(name string, fields ...Field) Struct {
	return Struct{Name: name, Fields: fields}
}

// E is shorthand for an Entry.
// Example: NewMap(E(Str("x"), I32(5)))
func E(key, value Value) Entry {
	return Entry{Key: key, Value: value}
}

// F is shorthand for a Field.
// Example: NewStruct("Point", F("x", I32(1)), F("y", I32(2)))
func F(name string, value Value) Field {
	return Field{Name: name, Value: value}
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// CRITICAL: Go's sort.Strings uses UTF-8 which produces DIFFERENT order.
func SortedKeys[V any](obj map[string]V) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	// If all compared units are equal, shorter string comes first
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
