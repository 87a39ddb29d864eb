package harness

import (
	"github.com/roach88/tokentest/de"
	"github.com/roach88/tokentest/ser"
)

// Readable marks Value as human-readable in both directions, regardless of
// the mode the check was started with. The mode applies to everything
// nested inside Value unless a nested Compact overrides it.
//
//	harness.AssertTokens(t, harness.Readable[Version]{Version{1, 0}},
//		[]token.Token{token.Str("1.0")})
type Readable[T any] struct {
	Value T
}

// Compact marks Value as compact (not human-readable) in both directions.
type Compact[T any] struct {
	Value T
}

func (r Readable[T]) Serialize(s ser.Serializer) error {
	return serializeMode(r.Value, s, true)
}

func (r *Readable[T]) Deserialize(d de.Deserializer) error {
	return deserializeMode(&r.Value, d, true)
}

func (c Compact[T]) Serialize(s ser.Serializer) error {
	return serializeMode(c.Value, s, false)
}

func (c *Compact[T]) Deserialize(d de.Deserializer) error {
	return deserializeMode(&c.Value, d, false)
}

func serializeMode(v any, s ser.Serializer, readable bool) error {
	sv, ok := v.(ser.Serialize)
	if !ok {
		return ser.Custom("%T does not implement ser.Serialize", v)
	}
	return sv.Serialize(&modeSerializer{Serializer: s, readable: readable})
}

func deserializeMode(p any, d de.Deserializer, readable bool) error {
	dv, ok := p.(de.Deserialize)
	if !ok {
		return de.Custom("%T does not implement de.Deserialize", p)
	}
	return dv.Deserialize(&modeDeserializer{Deserializer: d, readable: readable})
}

// modeDeserializer overrides the mode query. Decode logic reads nested
// values from the Deserializer it was handed, so the override reaches
// them without further wrapping.
type modeDeserializer struct {
	de.Deserializer
	readable bool
}

func (m *modeDeserializer) IsHumanReadable() bool { return m.readable }

// modeSerializer overrides the mode query. Nested values are handed back
// to encode logic by the wrapped serializer, so every value and every
// continuation passed through here is wrapped as well.
type modeSerializer struct {
	ser.Serializer
	readable bool
}

func (m *modeSerializer) IsHumanReadable() bool { return m.readable }

func (m *modeSerializer) wrap(v ser.Serialize) ser.Serialize {
	if v == nil {
		return nil
	}
	return modeValue{v: v, readable: m.readable}
}

func (m *modeSerializer) SerializeSome(v ser.Serialize) error {
	return m.Serializer.SerializeSome(m.wrap(v))
}

func (m *modeSerializer) SerializeNewtypeStruct(name string, v ser.Serialize) error {
	return m.Serializer.SerializeNewtypeStruct(name, m.wrap(v))
}

func (m *modeSerializer) SerializeNewtypeVariant(name string, index uint32, variant string, v ser.Serialize) error {
	return m.Serializer.SerializeNewtypeVariant(name, index, variant, m.wrap(v))
}

func (m *modeSerializer) SerializeSeq(n int) (ser.SeqSerializer, error) {
	return m.seq(m.Serializer.SerializeSeq(n))
}

func (m *modeSerializer) SerializeTuple(n int) (ser.SeqSerializer, error) {
	return m.seq(m.Serializer.SerializeTuple(n))
}

func (m *modeSerializer) SerializeTupleStruct(name string, n int) (ser.SeqSerializer, error) {
	return m.seq(m.Serializer.SerializeTupleStruct(name, n))
}

func (m *modeSerializer) SerializeTupleVariant(name string, index uint32, variant string, n int) (ser.SeqSerializer, error) {
	return m.seq(m.Serializer.SerializeTupleVariant(name, index, variant, n))
}

func (m *modeSerializer) SerializeMap(n int) (ser.MapSerializer, error) {
	inner, err := m.Serializer.SerializeMap(n)
	if err != nil {
		return nil, err
	}
	return &modeMap{inner: inner, m: m}, nil
}

func (m *modeSerializer) SerializeStruct(name string, n int) (ser.StructSerializer, error) {
	return m.strct(m.Serializer.SerializeStruct(name, n))
}

func (m *modeSerializer) SerializeStructVariant(name string, index uint32, variant string, n int) (ser.StructSerializer, error) {
	return m.strct(m.Serializer.SerializeStructVariant(name, index, variant, n))
}

func (m *modeSerializer) seq(inner ser.SeqSerializer, err error) (ser.SeqSerializer, error) {
	if err != nil {
		return nil, err
	}
	return &modeSeq{inner: inner, m: m}, nil
}

func (m *modeSerializer) strct(inner ser.StructSerializer, err error) (ser.StructSerializer, error) {
	if err != nil {
		return nil, err
	}
	return &modeStruct{inner: inner, m: m}, nil
}

// modeValue serializes v through a modeSerializer.
type modeValue struct {
	v        ser.Serialize
	readable bool
}

func (w modeValue) Serialize(s ser.Serializer) error {
	return w.v.Serialize(&modeSerializer{Serializer: s, readable: w.readable})
}

type modeSeq struct {
	inner ser.SeqSerializer
	m     *modeSerializer
}

func (q *modeSeq) SerializeElement(v ser.Serialize) error {
	return q.inner.SerializeElement(q.m.wrap(v))
}

func (q *modeSeq) End() error { return q.inner.End() }

type modeMap struct {
	inner ser.MapSerializer
	m     *modeSerializer
}

func (mm *modeMap) SerializeKey(k ser.Serialize) error {
	return mm.inner.SerializeKey(mm.m.wrap(k))
}

func (mm *modeMap) SerializeValue(v ser.Serialize) error {
	return mm.inner.SerializeValue(mm.m.wrap(v))
}

func (mm *modeMap) SerializeEntry(k, v ser.Serialize) error {
	return mm.inner.SerializeEntry(mm.m.wrap(k), mm.m.wrap(v))
}

func (mm *modeMap) End() error { return mm.inner.End() }

type modeStruct struct {
	inner ser.StructSerializer
	m     *modeSerializer
}

func (st *modeStruct) SerializeField(name string, v ser.Serialize) error {
	return st.inner.SerializeField(name, st.m.wrap(v))
}

func (st *modeStruct) SkipField(name string) error { return st.inner.SkipField(name) }

func (st *modeStruct) End() error { return st.inner.End() }
