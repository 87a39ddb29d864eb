package ir

import "github.com/roach88/tokentest/ser"

func (v Bool) Serialize(s ser.Serializer) error  { return s.SerializeBool(bool(v)) }
func (v I8) Serialize(s ser.Serializer) error    { return s.SerializeI8(int8(v)) }
func (v I16) Serialize(s ser.Serializer) error   { return s.SerializeI16(int16(v)) }
func (v I32) Serialize(s ser.Serializer) error   { return s.SerializeI32(int32(v)) }
func (v I64) Serialize(s ser.Serializer) error   { return s.SerializeI64(int64(v)) }
func (v U8) Serialize(s ser.Serializer) error    { return s.SerializeU8(uint8(v)) }
func (v U16) Serialize(s ser.Serializer) error   { return s.SerializeU16(uint16(v)) }
func (v U32) Serialize(s ser.Serializer) error   { return s.SerializeU32(uint32(v)) }
func (v U64) Serialize(s ser.Serializer) error   { return s.SerializeU64(uint64(v)) }
func (v F32) Serialize(s ser.Serializer) error   { return s.SerializeF32(float32(v)) }
func (v F64) Serialize(s ser.Serializer) error   { return s.SerializeF64(float64(v)) }
func (v Char) Serialize(s ser.Serializer) error  { return s.SerializeChar(rune(v)) }
func (v Str) Serialize(s ser.Serializer) error   { return s.SerializeStr(string(v)) }
func (v Bytes) Serialize(s ser.Serializer) error { return s.SerializeBytes([]byte(v)) }

func (None) Serialize(s ser.Serializer) error { return s.SerializeNone() }
func (Unit) Serialize(s ser.Serializer) error { return s.SerializeUnit() }

func (v Some) Serialize(s ser.Serializer) error {
	return s.SerializeSome(v.Value)
}

func (v UnitStruct) Serialize(s ser.Serializer) error {
	return s.SerializeUnitStruct(v.Name)
}

func (v UnitVariant) Serialize(s ser.Serializer) error {
	return s.SerializeUnitVariant(v.Name, v.Index, v.Variant)
}

func (v NewtypeStruct) Serialize(s ser.Serializer) error {
	return s.SerializeNewtypeStruct(v.Name, v.Value)
}

func (v NewtypeVariant) Serialize(s ser.Serializer) error {
	return s.SerializeNewtypeVariant(v.Name, v.Index, v.Variant, v.Value)
}

func (v Seq) Serialize(s ser.Serializer) error {
	seq, err := s.SerializeSeq(v.Len.Int())
	if err != nil {
		return err
	}
	return serializeElems(seq, v.Elems)
}

func (v Tuple) Serialize(s ser.Serializer) error {
	seq, err := s.SerializeTuple(len(v.Elems))
	if err != nil {
		return err
	}
	return serializeElems(seq, v.Elems)
}

func (v TupleStruct) Serialize(s ser.Serializer) error {
	seq, err := s.SerializeTupleStruct(v.Name, len(v.Elems))
	if err != nil {
		return err
	}
	return serializeElems(seq, v.Elems)
}

func (v TupleVariant) Serialize(s ser.Serializer) error {
	seq, err := s.SerializeTupleVariant(v.Name, v.Index, v.Variant, len(v.Elems))
	if err != nil {
		return err
	}
	return serializeElems(seq, v.Elems)
}

func (v Map) Serialize(s ser.Serializer) error {
	m, err := s.SerializeMap(v.Len.Int())
	if err != nil {
		return err
	}
	for _, e := range v.Entries {
		if err := m.SerializeEntry(e.Key, e.Value); err != nil {
			return err
		}
	}
	return m.End()
}

func (v Struct) Serialize(s ser.Serializer) error {
	st, err := s.SerializeStruct(v.Name, len(v.Fields))
	if err != nil {
		return err
	}
	return serializeFields(st, v.Fields)
}

func (v StructVariant) Serialize(s ser.Serializer) error {
	st, err := s.SerializeStructVariant(v.Name, v.Index, v.Variant, len(v.Fields))
	if err != nil {
		return err
	}
	return serializeFields(st, v.Fields)
}

func serializeElems(seq ser.SeqSerializer, elems []Value) error {
	for _, e := range elems {
		if err := seq.SerializeElement(e); err != nil {
			return err
		}
	}
	return seq.End()
}

func serializeFields(st ser.StructSerializer, fields []Field) error {
	for _, f := range fields {
		if err := st.SerializeField(f.Name, f.Value); err != nil {
			return err
		}
	}
	return st.End()
}
