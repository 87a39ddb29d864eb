package de

import "github.com/roach88/tokentest/ir"

// Deserialize is implemented by pointer types that know how to read
// themselves back from a Deserializer.
type Deserialize interface {
	Deserialize(d Deserializer) error
}

// Deserializer is the consumer capability. Decode logic pulls one primitive
// at a time; each call names the kind it expects and fails if the source
// holds something else.
//
// Bracketing reads take a callback. The callback drives the scope through
// the access value it receives and reads element tokens from the same
// Deserializer. When the callback returns nil, the Deserializer checks and
// consumes the matching close. An error from the callback is returned as is.
type Deserializer interface {
	// IsHumanReadable reports whether the source prefers a descriptive
	// representation over a compact one.
	IsHumanReadable() bool

	Bool() (bool, error)
	I8() (int8, error)
	I16() (int16, error)
	I32() (int32, error)
	I64() (int64, error)
	U8() (uint8, error)
	U16() (uint16, error)
	U32() (uint32, error)
	U64() (uint64, error)
	F32() (float32, error)
	F64() (float64, error)
	Char() (rune, error)
	Str() (string, error)
	Bytes() ([]byte, error)

	// Option consumes None or Some. When it reports true the wrapped value
	// follows and is read from the same Deserializer.
	Option() (bool, error)
	Unit() error
	UnitStruct(name string) error
	// NewtypeStruct consumes the wrapper; the wrapped value follows.
	NewtypeStruct(name string) error

	Seq(fn func(SeqAccess) error) error
	Tuple(fn func(SeqAccess) error) error
	TupleStruct(name string, fn func(SeqAccess) error) error
	Map(fn func(MapAccess) error) error
	// Struct reads a struct scope. Each entry is a FieldName followed by
	// the field value.
	Struct(name string, fn func(MapAccess) error) error
	// Enum consumes the variant token of the named enum and returns access
	// to its payload.
	Enum(name string) (VariantAccess, error)
	FieldName() (string, error)

	// Any reads the next value without knowing its shape up front.
	Any() (ir.Value, error)
	// Skip reads and discards the next value.
	Skip() error
}

// SeqAccess drives a sequence-like scope.
type SeqAccess interface {
	// Next reports whether another element follows. It never consumes the
	// element itself.
	Next() (bool, error)
	// SizeHint returns the declared element count, if any.
	SizeHint() (int, bool)
}

// MapAccess drives a map or struct scope. After Next reports true the
// caller reads one key (or field name) and one value.
type MapAccess interface {
	Next() (bool, error)
	SizeHint() (int, bool)
}

// VariantAccess reads the payload of an enum variant.
type VariantAccess interface {
	// Variant returns the variant index and name. Both are always set.
	Variant() (uint32, string)
	Unit() error
	// Newtype prepares the wrapped value, which is then read from the
	// Deserializer that produced this access.
	Newtype() error
	Tuple(fn func(SeqAccess) error) error
	Struct(fn func(MapAccess) error) error
}
