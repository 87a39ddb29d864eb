package token

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Token is a sealed interface over the primitive encoding events.
// Only the types in this package implement it.
type Token interface {
	Kind() Kind
	String() string
	token() // sealed
}

// Len is an optional length hint carried by Seq and Map.
// The zero value means "no hint".
type Len struct {
	n     int
	known bool
}

// Hint returns a known length hint.
func Hint(n int) Len {
	return Len{n: n, known: true}
}

// LenOf converts the int convention used by producers (negative means
// unknown) into a Len.
func LenOf(n int) Len {
	if n < 0 {
		return Len{}
	}
	return Hint(n)
}

// Get returns the hint and whether one is present.
func (l Len) Get() (int, bool) {
	return l.n, l.known
}

// Int returns the hint, or -1 when absent.
func (l Len) Int() int {
	if !l.known {
		return -1
	}
	return l.n
}

func (l Len) String() string {
	if !l.known {
		return "none"
	}
	return strconv.Itoa(l.n)
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

	// Field names the struct field whose value tokens follow.
	Field string
)

// None is an absent optional.
type None struct{}

// Some wraps the single value that follows it.
type Some struct{}

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

// NewtypeStruct is followed by the wrapped value.
type NewtypeStruct struct {
	Name string
}

// NewtypeVariant is followed by the wrapped value.
type NewtypeVariant struct {
	Name    string
	Index   uint32
	Variant string
}

type Seq struct {
	Len Len
}

type SeqEnd struct{}

type Tuple struct {
	Len int
}

type TupleEnd struct{}

type TupleStruct struct {
	Name string
	Len  int
}

type TupleStructEnd struct{}

type TupleVariant struct {
	Name    string
	Index   uint32
	Variant string
	Len     int
}

type TupleVariantEnd struct{}

type Map struct {
	Len Len
}

type MapEnd struct{}

type Struct struct {
	Name string
	Len  int
}

type StructEnd struct{}

type StructVariant struct {
	Name    string
	Index   uint32
	Variant string
	Len     int
}

type StructVariantEnd struct{}

func (Bool) Kind() Kind             { return KindBool }
func (I8) Kind() Kind               { return KindI8 }
func (I16) Kind() Kind              { return KindI16 }
func (I32) Kind() Kind              { return KindI32 }
func (I64) Kind() Kind              { return KindI64 }
func (U8) Kind() Kind               { return KindU8 }
func (U16) Kind() Kind              { return KindU16 }
func (U32) Kind() Kind              { return KindU32 }
func (U64) Kind() Kind              { return KindU64 }
func (F32) Kind() Kind              { return KindF32 }
func (F64) Kind() Kind              { return KindF64 }
func (Char) Kind() Kind             { return KindChar }
func (Str) Kind() Kind              { return KindStr }
func (Bytes) Kind() Kind            { return KindBytes }
func (Field) Kind() Kind            { return KindField }
func (None) Kind() Kind             { return KindNone }
func (Some) Kind() Kind             { return KindSome }
func (Unit) Kind() Kind             { return KindUnit }
func (UnitStruct) Kind() Kind       { return KindUnitStruct }
func (UnitVariant) Kind() Kind      { return KindUnitVariant }
func (NewtypeStruct) Kind() Kind    { return KindNewtypeStruct }
func (NewtypeVariant) Kind() Kind   { return KindNewtypeVariant }
func (Seq) Kind() Kind              { return KindSeq }
func (SeqEnd) Kind() Kind           { return KindSeqEnd }
func (Tuple) Kind() Kind            { return KindTuple }
func (TupleEnd) Kind() Kind         { return KindTupleEnd }
func (TupleStruct) Kind() Kind      { return KindTupleStruct }
func (TupleStructEnd) Kind() Kind   { return KindTupleStructEnd }
func (TupleVariant) Kind() Kind     { return KindTupleVariant }
func (TupleVariantEnd) Kind() Kind  { return KindTupleVariantEnd }
func (Map) Kind() Kind              { return KindMap }
func (MapEnd) Kind() Kind           { return KindMapEnd }
func (Struct) Kind() Kind           { return KindStruct }
func (StructEnd) Kind() Kind        { return KindStructEnd }
func (StructVariant) Kind() Kind    { return KindStructVariant }
func (StructVariantEnd) Kind() Kind { return KindStructVariantEnd }

func (Bool) token()             {}
func (I8) token()               {}
func (I16) token()              {}
func (I32) token()              {}
func (I64) token()              {}
func (U8) token()               {}
func (U16) token()              {}
func (U32) token()              {}
func (U64) token()              {}
func (F32) token()              {}
func (F64) token()              {}
func (Char) token()             {}
func (Str) token()              {}
func (Bytes) token()            {}
func (Field) token()            {}
func (None) token()             {}
func (Some) token()             {}
func (Unit) token()             {}
func (UnitStruct) token()       {}
func (UnitVariant) token()      {}
func (NewtypeStruct) token()    {}
func (NewtypeVariant) token()   {}
func (Seq) token()              {}
func (SeqEnd) token()           {}
func (Tuple) token()            {}
func (TupleEnd) token()         {}
func (TupleStruct) token()      {}
func (TupleStructEnd) token()   {}
func (TupleVariant) token()     {}
func (TupleVariantEnd) token()  {}
func (Map) token()              {}
func (MapEnd) token()           {}
func (Struct) token()           {}
func (StructEnd) token()        {}
func (StructVariant) token()    {}
func (StructVariantEnd) token() {}

func (t Bool) String() string  { return fmt.Sprintf("Bool(%t)", bool(t)) }
func (t I8) String() string    { return fmt.Sprintf("I8(%d)", t) }
func (t I16) String() string   { return fmt.Sprintf("I16(%d)", t) }
func (t I32) String() string   { return fmt.Sprintf("I32(%d)", t) }
func (t I64) String() string   { return fmt.Sprintf("I64(%d)", t) }
func (t U8) String() string    { return fmt.Sprintf("U8(%d)", t) }
func (t U16) String() string   { return fmt.Sprintf("U16(%d)", t) }
func (t U32) String() string   { return fmt.Sprintf("U32(%d)", t) }
func (t U64) String() string   { return fmt.Sprintf("U64(%d)", t) }
func (t F32) String() string   { return "F32(" + strconv.FormatFloat(float64(t), 'g', -1, 32) + ")" }
func (t F64) String() string   { return "F64(" + strconv.FormatFloat(float64(t), 'g', -1, 64) + ")" }
func (t Char) String() string  { return fmt.Sprintf("Char(%q)", rune(t)) }
func (t Str) String() string   { return fmt.Sprintf("Str(%q)", string(t)) }
func (t Bytes) String() string { return fmt.Sprintf("Bytes(%q)", []byte(t)) }
func (t Field) String() string { return fmt.Sprintf("Field(%q)", string(t)) }

func (None) String() string { return "None" }
func (Some) String() string { return "Some" }
func (Unit) String() string { return "Unit" }

func (t UnitStruct) String() string {
	return fmt.Sprintf("UnitStruct{name: %q}", t.Name)
}

func (t UnitVariant) String() string {
	return fmt.Sprintf("UnitVariant{name: %q, index: %d, variant: %q}", t.Name, t.Index, t.Variant)
}

func (t NewtypeStruct) String() string {
	return fmt.Sprintf("NewtypeStruct{name: %q}", t.Name)
}

func (t NewtypeVariant) String() string {
	return fmt.Sprintf("NewtypeVariant{name: %q, index: %d, variant: %q}", t.Name, t.Index, t.Variant)
}

func (t Seq) String() string   { return fmt.Sprintf("Seq{len: %s}", t.Len) }
func (t Tuple) String() string { return fmt.Sprintf("Tuple{len: %d}", t.Len) }
func (t Map) String() string   { return fmt.Sprintf("Map{len: %s}", t.Len) }

func (t TupleStruct) String() string {
	return fmt.Sprintf("TupleStruct{name: %q, len: %d}", t.Name, t.Len)
}

func (t TupleVariant) String() string {
	return fmt.Sprintf("TupleVariant{name: %q, index: %d, variant: %q, len: %d}", t.Name, t.Index, t.Variant, t.Len)
}

func (t Struct) String() string {
	return fmt.Sprintf("Struct{name: %q, len: %d}", t.Name, t.Len)
}

func (t StructVariant) String() string {
	return fmt.Sprintf("StructVariant{name: %q, index: %d, variant: %q, len: %d}", t.Name, t.Index, t.Variant, t.Len)
}

func (SeqEnd) String() string           { return "SeqEnd" }
func (TupleEnd) String() string         { return "TupleEnd" }
func (TupleStructEnd) String() string   { return "TupleStructEnd" }
func (TupleVariantEnd) String() string  { return "TupleVariantEnd" }
func (MapEnd) String() string           { return "MapEnd" }
func (StructEnd) String() string        { return "StructEnd" }
func (StructVariantEnd) String() string { return "StructVariantEnd" }

// Equal reports whether a and b are the same token. Equality is structural:
// kinds, widths and payloads must all match. NaN payloads compare equal to
// each other so float expectations can be written literally.
func Equal(a, b Token) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Bytes:
		return bytes.Equal(av, b.(Bytes))
	case F32:
		bv := b.(F32)
		return av == bv || (math.IsNaN(float64(av)) && math.IsNaN(float64(bv)))
	case F64:
		bv := b.(F64)
		return av == bv || (math.IsNaN(float64(av)) && math.IsNaN(float64(bv)))
	}
	return a == b
}

// EqualSeq reports whether two token sequences are element-wise Equal.
func EqualSeq(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
