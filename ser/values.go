package ser

import "fmt"

// Primitive adapters let encode logic pass plain Go values wherever a
// Serialize is expected, e.g. seq.SerializeElement(ser.I32(5)).
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
	Unit  struct{}
)

func (v Bool) Serialize(s Serializer) error  { return s.SerializeBool(bool(v)) }
func (v I8) Serialize(s Serializer) error    { return s.SerializeI8(int8(v)) }
func (v I16) Serialize(s Serializer) error   { return s.SerializeI16(int16(v)) }
func (v I32) Serialize(s Serializer) error   { return s.SerializeI32(int32(v)) }
func (v I64) Serialize(s Serializer) error   { return s.SerializeI64(int64(v)) }
func (v U8) Serialize(s Serializer) error    { return s.SerializeU8(uint8(v)) }
func (v U16) Serialize(s Serializer) error   { return s.SerializeU16(uint16(v)) }
func (v U32) Serialize(s Serializer) error   { return s.SerializeU32(uint32(v)) }
func (v U64) Serialize(s Serializer) error   { return s.SerializeU64(uint64(v)) }
func (v F32) Serialize(s Serializer) error   { return s.SerializeF32(float32(v)) }
func (v F64) Serialize(s Serializer) error   { return s.SerializeF64(float64(v)) }
func (v Char) Serialize(s Serializer) error  { return s.SerializeChar(rune(v)) }
func (v Str) Serialize(s Serializer) error   { return s.SerializeStr(string(v)) }
func (v Bytes) Serialize(s Serializer) error { return s.SerializeBytes([]byte(v)) }
func (Unit) Serialize(s Serializer) error    { return s.SerializeUnit() }

// Func adapts an ordinary function to Serialize.
type Func func(s Serializer) error

func (f Func) Serialize(s Serializer) error { return f(s) }

// Option serializes Some(v) when v is non-nil and None otherwise.
func Option(v Serialize) Serialize {
	return Func(func(s Serializer) error {
		if v == nil {
			return s.SerializeNone()
		}
		return s.SerializeSome(v)
	})
}

// Slice serializes elems as a sequence with a known length.
func Slice[T Serialize](elems []T) Serialize {
	return Func(func(s Serializer) error {
		seq, err := s.SerializeSeq(len(elems))
		if err != nil {
			return err
		}
		for _, e := range elems {
			if err := seq.SerializeElement(e); err != nil {
				return err
			}
		}
		return seq.End()
	})
}

// Error is a serialization failure raised by encode logic.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Custom builds an Error from a format string.
func Custom(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}
