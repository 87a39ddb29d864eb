package ser

// Serialize is implemented by values that know how to emit themselves as a
// series of primitive calls.
type Serialize interface {
	Serialize(s Serializer) error
}

// Serializer is the producer capability. Length arguments are element or
// field counts; a negative length means the count is not known up front.
type Serializer interface {
	// IsHumanReadable reports whether the sink prefers a descriptive
	// representation over a compact one.
	IsHumanReadable() bool

	SerializeBool(v bool) error
	SerializeI8(v int8) error
	SerializeI16(v int16) error
	SerializeI32(v int32) error
	SerializeI64(v int64) error
	SerializeU8(v uint8) error
	SerializeU16(v uint16) error
	SerializeU32(v uint32) error
	SerializeU64(v uint64) error
	SerializeF32(v float32) error
	SerializeF64(v float64) error
	SerializeChar(v rune) error
	SerializeStr(v string) error
	SerializeBytes(v []byte) error

	SerializeNone() error
	SerializeSome(v Serialize) error
	SerializeUnit() error
	SerializeUnitStruct(name string) error
	SerializeUnitVariant(name string, index uint32, variant string) error
	SerializeNewtypeStruct(name string, v Serialize) error
	SerializeNewtypeVariant(name string, index uint32, variant string, v Serialize) error

	SerializeSeq(len int) (SeqSerializer, error)
	SerializeTuple(len int) (SeqSerializer, error)
	SerializeTupleStruct(name string, len int) (SeqSerializer, error)
	SerializeTupleVariant(name string, index uint32, variant string, len int) (SeqSerializer, error)
	SerializeMap(len int) (MapSerializer, error)
	SerializeStruct(name string, len int) (StructSerializer, error)
	SerializeStructVariant(name string, index uint32, variant string, len int) (StructSerializer, error)
}

// SeqSerializer continues a sequence, tuple, tuple struct or tuple variant.
type SeqSerializer interface {
	SerializeElement(v Serialize) error
	End() error
}

// MapSerializer continues a map. Keys and values alternate.
type MapSerializer interface {
	SerializeKey(k Serialize) error
	SerializeValue(v Serialize) error
	SerializeEntry(k, v Serialize) error
	End() error
}

// StructSerializer continues a struct or struct variant.
type StructSerializer interface {
	SerializeField(name string, v Serialize) error
	// SkipField records that a field was left out. The struct length
	// passed at the start counts only fields that are serialized.
	SkipField(name string) error
	End() error
}
