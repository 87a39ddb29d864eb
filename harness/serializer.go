package harness

import (
	"slices"

	"github.com/roach88/tokentest/ser"
	"github.com/roach88/tokentest/token"
)

// Serializer is the recording producer. Every primitive call is checked
// against the next expected token and fails on the first divergence.
//
// In capture mode (see Record) there are no expected tokens: every call is
// accepted and appended, while nesting and declared lengths are still
// enforced.
type Serializer struct {
	tokens  []token.Token
	pos     int
	stack   []scope
	nextID  int
	capture bool
	cfg     config
}

var _ ser.Serializer = (*Serializer)(nil)

// NewSerializer creates a Serializer that expects exactly tokens.
// The slice is read, never modified.
func NewSerializer(tokens []token.Token, opts ...Option) *Serializer {
	return &Serializer{
		tokens: tokens,
		cfg:    newConfig(opts),
	}
}

// Remaining returns the number of expected tokens not yet matched.
func (s *Serializer) Remaining() int {
	if s.capture {
		return 0
	}
	return len(s.tokens) - s.pos
}

// Record runs v's encode logic against an unconstrained producer and
// returns the tokens it emitted.
func Record(v ser.Serialize, opts ...Option) ([]token.Token, error) {
	s := &Serializer{capture: true, cfg: newConfig(opts)}
	if err := v.Serialize(s); err != nil {
		return s.tokens, err
	}
	if err := s.checkClosed(); err != nil {
		return s.tokens, err
	}
	return s.tokens, nil
}

func (s *Serializer) IsHumanReadable() bool { return s.cfg.humanReadable }

// emit matches actual against the next expected token.
func (s *Serializer) emit(actual token.Token) error {
	if s.capture {
		s.tokens = append(s.tokens, actual)
		s.cfg.logger.Debug("token recorded", "index", s.pos, "token", actual)
		s.pos++
		return nil
	}

	if s.pos >= len(s.tokens) {
		return newError(FailExhausted, s.pos, "end of tokens", actual.String(),
			"expected end of tokens, but %s was serialized", actual)
	}

	want := s.tokens[s.pos]
	if !token.Equal(want, actual) {
		kind := FailMismatch
		if want.Kind().IsClose() || actual.Kind().IsClose() {
			kind = FailBracket
		}
		return newError(kind, s.pos, want.String(), actual.String(),
			"expected %s but serialized as %s", want, actual)
	}

	s.cfg.logger.Debug("token matched", "index", s.pos, "token", actual)
	s.pos++
	return nil
}

// open emits an open token and pushes its scope.
func (s *Serializer) open(t token.Token) (scopeRef, error) {
	if err := s.emit(t); err != nil {
		return scopeRef{}, err
	}
	s.nextID++
	sc, err := newScope(t, s.pos-1, s.nextID)
	if err != nil {
		return scopeRef{}, err
	}
	s.stack = append(s.stack, sc)
	return scopeRef{depth: len(s.stack) - 1, id: sc.id}, nil
}

// inner returns the scope ref points at, failing unless it is the
// innermost open one.
func (s *Serializer) inner(ref scopeRef, op string) (*scope, error) {
	if !current(s.stack, ref) {
		return nil, scopeError(s.stack, ref, s.pos, op)
	}
	return &s.stack[ref.depth], nil
}

// close emits the end token for the scope and checks its length.
func (s *Serializer) close(ref scopeRef) error {
	sc, err := s.inner(ref, "End")
	if err != nil {
		return err
	}
	if err := s.emit(token.EndToken(sc.kind())); err != nil {
		return err
	}
	if err := sc.checkLen("serialized"); err != nil {
		return err
	}
	s.stack = s.stack[:ref.depth]
	return nil
}

// checkClosed fails if a scope was left open.
func (s *Serializer) checkClosed() error {
	if len(s.stack) == 0 {
		return nil
	}
	sc := s.stack[len(s.stack)-1]
	end := token.EndToken(sc.kind())
	return newError(FailUnclosed, s.pos, end.String(), "no further calls",
		"serializer returned with %s at [%d] still open", sc.open, sc.index)
}

func (s *Serializer) SerializeBool(v bool) error     { return s.emit(token.Bool(v)) }
func (s *Serializer) SerializeI8(v int8) error       { return s.emit(token.I8(v)) }
func (s *Serializer) SerializeI16(v int16) error     { return s.emit(token.I16(v)) }
func (s *Serializer) SerializeI32(v int32) error     { return s.emit(token.I32(v)) }
func (s *Serializer) SerializeI64(v int64) error     { return s.emit(token.I64(v)) }
func (s *Serializer) SerializeU8(v uint8) error      { return s.emit(token.U8(v)) }
func (s *Serializer) SerializeU16(v uint16) error    { return s.emit(token.U16(v)) }
func (s *Serializer) SerializeU32(v uint32) error    { return s.emit(token.U32(v)) }
func (s *Serializer) SerializeU64(v uint64) error    { return s.emit(token.U64(v)) }
func (s *Serializer) SerializeF32(v float32) error   { return s.emit(token.F32(v)) }
func (s *Serializer) SerializeF64(v float64) error   { return s.emit(token.F64(v)) }
func (s *Serializer) SerializeChar(v rune) error     { return s.emit(token.Char(v)) }
func (s *Serializer) SerializeStr(v string) error    { return s.emit(token.Str(v)) }
func (s *Serializer) SerializeBytes(v []byte) error  { return s.emit(token.Bytes(slices.Clone(v))) }
func (s *Serializer) SerializeNone() error           { return s.emit(token.None{}) }
func (s *Serializer) SerializeUnit() error           { return s.emit(token.Unit{}) }

func (s *Serializer) SerializeUnitStruct(name string) error {
	return s.emit(token.UnitStruct{Name: name})
}

func (s *Serializer) SerializeUnitVariant(name string, index uint32, variant string) error {
	return s.emit(token.UnitVariant{Name: name, Index: index, Variant: variant})
}

func (s *Serializer) SerializeSome(v ser.Serialize) error {
	if err := s.emit(token.Some{}); err != nil {
		return err
	}
	return s.value(v)
}

func (s *Serializer) SerializeNewtypeStruct(name string, v ser.Serialize) error {
	if err := s.emit(token.NewtypeStruct{Name: name}); err != nil {
		return err
	}
	return s.value(v)
}

func (s *Serializer) SerializeNewtypeVariant(name string, index uint32, variant string, v ser.Serialize) error {
	if err := s.emit(token.NewtypeVariant{Name: name, Index: index, Variant: variant}); err != nil {
		return err
	}
	return s.value(v)
}

func (s *Serializer) value(v ser.Serialize) error {
	if v == nil {
		return newError(FailCustom, s.pos, "a value", "nil", "nil value passed to serializer")
	}
	return v.Serialize(s)
}

func (s *Serializer) SerializeSeq(n int) (ser.SeqSerializer, error) {
	return s.openSeq(token.Seq{Len: token.LenOf(n)})
}

func (s *Serializer) SerializeTuple(n int) (ser.SeqSerializer, error) {
	return s.openSeq(token.Tuple{Len: n})
}

func (s *Serializer) SerializeTupleStruct(name string, n int) (ser.SeqSerializer, error) {
	return s.openSeq(token.TupleStruct{Name: name, Len: n})
}

func (s *Serializer) SerializeTupleVariant(name string, index uint32, variant string, n int) (ser.SeqSerializer, error) {
	return s.openSeq(token.TupleVariant{Name: name, Index: index, Variant: variant, Len: n})
}

func (s *Serializer) SerializeMap(n int) (ser.MapSerializer, error) {
	ref, err := s.open(token.Map{Len: token.LenOf(n)})
	if err != nil {
		return nil, err
	}
	return &mapSerializer{s: s, ref: ref}, nil
}

func (s *Serializer) SerializeStruct(name string, n int) (ser.StructSerializer, error) {
	return s.openStruct(token.Struct{Name: name, Len: n})
}

func (s *Serializer) SerializeStructVariant(name string, index uint32, variant string, n int) (ser.StructSerializer, error) {
	return s.openStruct(token.StructVariant{Name: name, Index: index, Variant: variant, Len: n})
}

func (s *Serializer) openSeq(t token.Token) (ser.SeqSerializer, error) {
	ref, err := s.open(t)
	if err != nil {
		return nil, err
	}
	return &seqSerializer{s: s, ref: ref}, nil
}

func (s *Serializer) openStruct(t token.Token) (ser.StructSerializer, error) {
	ref, err := s.open(t)
	if err != nil {
		return nil, err
	}
	return &structSerializer{s: s, ref: ref}, nil
}

type seqSerializer struct {
	s   *Serializer
	ref scopeRef
}

func (q *seqSerializer) SerializeElement(v ser.Serialize) error {
	sc, err := q.s.inner(q.ref, "SerializeElement")
	if err != nil {
		return err
	}
	sc.count++
	return q.s.value(v)
}

func (q *seqSerializer) End() error { return q.s.close(q.ref) }

type mapSerializer struct {
	s          *Serializer
	ref        scopeRef
	pendingKey bool
}

func (m *mapSerializer) SerializeKey(k ser.Serialize) error {
	sc, err := m.s.inner(m.ref, "SerializeKey")
	if err != nil {
		return err
	}
	if m.pendingKey {
		return newError(FailCustom, m.s.pos, "SerializeValue", "SerializeKey",
			"SerializeKey called twice without SerializeValue")
	}
	sc.count++
	m.pendingKey = true
	return m.s.value(k)
}

func (m *mapSerializer) SerializeValue(v ser.Serialize) error {
	if _, err := m.s.inner(m.ref, "SerializeValue"); err != nil {
		return err
	}
	if !m.pendingKey {
		return newError(FailCustom, m.s.pos, "SerializeKey", "SerializeValue",
			"SerializeValue called before SerializeKey")
	}
	m.pendingKey = false
	return m.s.value(v)
}

func (m *mapSerializer) SerializeEntry(k, v ser.Serialize) error {
	if err := m.SerializeKey(k); err != nil {
		return err
	}
	return m.SerializeValue(v)
}

func (m *mapSerializer) End() error {
	if m.pendingKey {
		return newError(FailCustom, m.s.pos, "SerializeValue", "End",
			"map ended between a key and its value")
	}
	return m.s.close(m.ref)
}

type structSerializer struct {
	s   *Serializer
	ref scopeRef
}

func (st *structSerializer) SerializeField(name string, v ser.Serialize) error {
	sc, err := st.s.inner(st.ref, "SerializeField")
	if err != nil {
		return err
	}
	if err := st.s.emit(token.Field(name)); err != nil {
		return err
	}
	sc.count++
	return st.s.value(v)
}

func (st *structSerializer) SkipField(name string) error {
	if _, err := st.s.inner(st.ref, "SkipField"); err != nil {
		return err
	}
	st.s.cfg.logger.Debug("field skipped", "index", st.s.pos, "field", name)
	return nil
}

func (st *structSerializer) End() error { return st.s.close(st.ref) }

// finish fails if a scope is still open or expected tokens remain.
func (s *Serializer) finish() error {
	if err := s.checkClosed(); err != nil {
		return err
	}
	return s.leftover()
}

func (s *Serializer) leftover() error {
	switch n := s.Remaining(); {
	case n == 1:
		return newError(FailLeftover, s.pos, s.tokens[s.pos].String(), "end of serialization",
			"expected 1 more token, serializer produced none")
	case n > 1:
		return newError(FailLeftover, s.pos, s.tokens[s.pos].String(), "end of serialization",
			"expected %d more tokens, serializer produced none", n)
	}
	return nil
}
