package harness

import (
	"slices"

	"github.com/roach88/tokentest/de"
	"github.com/roach88/tokentest/ir"
	"github.com/roach88/tokentest/token"
)

// Deserializer is the replaying consumer. It hands out tokens in order to
// the decode logic that drives it. Kinds are matched exactly: an I32 token
// only satisfies I32(), a Struct token only satisfies Struct().
type Deserializer struct {
	tokens []token.Token
	pos    int
	stack  []scope
	nextID int
	cfg    config
}

var _ de.Deserializer = (*Deserializer)(nil)

// NewDeserializer creates a Deserializer that replays tokens.
// The slice is read, never modified.
func NewDeserializer(tokens []token.Token, opts ...Option) *Deserializer {
	return &Deserializer{
		tokens: tokens,
		cfg:    newConfig(opts),
	}
}

// Remaining returns the number of tokens not yet consumed.
func (d *Deserializer) Remaining() int {
	return len(d.tokens) - d.pos
}

func (d *Deserializer) IsHumanReadable() bool { return d.cfg.humanReadable }

func (d *Deserializer) peek() (token.Token, bool) {
	if d.pos >= len(d.tokens) {
		return nil, false
	}
	return d.tokens[d.pos], true
}

func (d *Deserializer) advance() token.Token {
	t := d.tokens[d.pos]
	d.cfg.logger.Debug("token consumed", "index", d.pos, "token", t)
	d.pos++
	return t
}

// next returns the next token without consuming it. exp names what the
// caller wanted, for the end-of-tokens message.
func (d *Deserializer) next(exp string) (token.Token, error) {
	t, ok := d.peek()
	if !ok {
		return nil, newError(FailExhausted, d.pos, exp, "end of tokens",
			"end of tokens reached, deserializer wanted %s", exp)
	}
	return t, nil
}

// take consumes the next token if it has kind k.
func (d *Deserializer) take(k token.Kind, exp string) (token.Token, error) {
	t, err := d.next(exp)
	if err != nil {
		return nil, err
	}
	if t.Kind() != k {
		return nil, d.unexpected(t, exp)
	}
	return d.advance(), nil
}

// takeNamed is take plus a check of the type or enum name.
func (d *Deserializer) takeNamed(k token.Kind, name, exp string) (token.Token, error) {
	t, err := d.next(exp)
	if err != nil {
		return nil, err
	}
	if t.Kind() != k {
		return nil, d.unexpected(t, exp)
	}
	if got := nameOf(t); got != name {
		return nil, newError(FailMismatch, d.pos, exp, t.String(),
			"expected %s but found %s", exp, t)
	}
	return d.advance(), nil
}

// unexpected reports t where exp was wanted. The token is not consumed.
func (d *Deserializer) unexpected(t token.Token, exp string) error {
	k := t.Kind()
	switch {
	case k.IsClose():
		return newError(FailBracket, d.pos, exp, t.String(),
			"unexpected token %s, expected %s", t, exp)
	case k == token.KindField:
		return newError(FailMismatch, d.pos, exp, t.String(),
			"unexpected token %s, expected %s", t, exp)
	}
	return newError(FailMismatch, d.pos, exp, t.String(),
		"%s", de.InvalidType(unexpectedOf(t), exp))
}

func (d *Deserializer) Bool() (bool, error) {
	t, err := d.take(token.KindBool, "a boolean")
	if err != nil {
		return false, err
	}
	return bool(t.(token.Bool)), nil
}

func (d *Deserializer) I8() (int8, error) {
	t, err := d.take(token.KindI8, "i8")
	if err != nil {
		return 0, err
	}
	return int8(t.(token.I8)), nil
}

func (d *Deserializer) I16() (int16, error) {
	t, err := d.take(token.KindI16, "i16")
	if err != nil {
		return 0, err
	}
	return int16(t.(token.I16)), nil
}

func (d *Deserializer) I32() (int32, error) {
	t, err := d.take(token.KindI32, "i32")
	if err != nil {
		return 0, err
	}
	return int32(t.(token.I32)), nil
}

func (d *Deserializer) I64() (int64, error) {
	t, err := d.take(token.KindI64, "i64")
	if err != nil {
		return 0, err
	}
	return int64(t.(token.I64)), nil
}

func (d *Deserializer) U8() (uint8, error) {
	t, err := d.take(token.KindU8, "u8")
	if err != nil {
		return 0, err
	}
	return uint8(t.(token.U8)), nil
}

func (d *Deserializer) U16() (uint16, error) {
	t, err := d.take(token.KindU16, "u16")
	if err != nil {
		return 0, err
	}
	return uint16(t.(token.U16)), nil
}

func (d *Deserializer) U32() (uint32, error) {
	t, err := d.take(token.KindU32, "u32")
	if err != nil {
		return 0, err
	}
	return uint32(t.(token.U32)), nil
}

func (d *Deserializer) U64() (uint64, error) {
	t, err := d.take(token.KindU64, "u64")
	if err != nil {
		return 0, err
	}
	return uint64(t.(token.U64)), nil
}

func (d *Deserializer) F32() (float32, error) {
	t, err := d.take(token.KindF32, "f32")
	if err != nil {
		return 0, err
	}
	return float32(t.(token.F32)), nil
}

func (d *Deserializer) F64() (float64, error) {
	t, err := d.take(token.KindF64, "f64")
	if err != nil {
		return 0, err
	}
	return float64(t.(token.F64)), nil
}

func (d *Deserializer) Char() (rune, error) {
	t, err := d.take(token.KindChar, "a character")
	if err != nil {
		return 0, err
	}
	return rune(t.(token.Char)), nil
}

func (d *Deserializer) Str() (string, error) {
	t, err := d.take(token.KindStr, "a string")
	if err != nil {
		return "", err
	}
	return string(t.(token.Str)), nil
}

func (d *Deserializer) Bytes() ([]byte, error) {
	t, err := d.take(token.KindBytes, "a byte array")
	if err != nil {
		return nil, err
	}
	return slices.Clone([]byte(t.(token.Bytes))), nil
}

func (d *Deserializer) Option() (bool, error) {
	t, err := d.next("option")
	if err != nil {
		return false, err
	}
	switch t.Kind() {
	case token.KindNone:
		d.advance()
		return false, nil
	case token.KindSome:
		d.advance()
		return true, nil
	}
	return false, d.unexpected(t, "option")
}

func (d *Deserializer) Unit() error {
	_, err := d.take(token.KindUnit, "unit")
	return err
}

func (d *Deserializer) UnitStruct(name string) error {
	_, err := d.takeNamed(token.KindUnitStruct, name, "unit struct "+name)
	return err
}

func (d *Deserializer) NewtypeStruct(name string) error {
	_, err := d.takeNamed(token.KindNewtypeStruct, name, "newtype struct "+name)
	return err
}

func (d *Deserializer) Seq(fn func(de.SeqAccess) error) error {
	t, err := d.take(token.KindSeq, "a sequence")
	if err != nil {
		return err
	}
	return d.scoped(t, func(a *access) error { return fn(a) })
}

func (d *Deserializer) Tuple(fn func(de.SeqAccess) error) error {
	t, err := d.take(token.KindTuple, "a tuple")
	if err != nil {
		return err
	}
	return d.scoped(t, func(a *access) error { return fn(a) })
}

func (d *Deserializer) TupleStruct(name string, fn func(de.SeqAccess) error) error {
	t, err := d.takeNamed(token.KindTupleStruct, name, "tuple struct "+name)
	if err != nil {
		return err
	}
	return d.scoped(t, func(a *access) error { return fn(a) })
}

func (d *Deserializer) Map(fn func(de.MapAccess) error) error {
	t, err := d.take(token.KindMap, "a map")
	if err != nil {
		return err
	}
	return d.scoped(t, func(a *access) error { return fn(a) })
}

func (d *Deserializer) Struct(name string, fn func(de.MapAccess) error) error {
	t, err := d.takeNamed(token.KindStruct, name, "struct "+name)
	if err != nil {
		return err
	}
	return d.scoped(t, func(a *access) error { return fn(a) })
}

func (d *Deserializer) FieldName() (string, error) {
	t, err := d.next("a field name")
	if err != nil {
		return "", err
	}
	if len(d.stack) == 0 || !d.stack[len(d.stack)-1].kind().IsStructLike() {
		return "", newError(FailBracket, d.pos, "a struct scope", t.String(),
			"field name read outside a struct")
	}
	f, ok := t.(token.Field)
	if !ok {
		return "", d.unexpected(t, "a field name")
	}
	d.advance()
	return string(f), nil
}

func (d *Deserializer) Enum(name string) (de.VariantAccess, error) {
	exp := "enum " + name
	t, err := d.next(exp)
	if err != nil {
		return nil, err
	}
	switch t.Kind() {
	case token.KindUnitVariant, token.KindNewtypeVariant, token.KindTupleVariant, token.KindStructVariant:
	default:
		return nil, d.unexpected(t, exp)
	}
	if got := nameOf(t); got != name {
		return nil, newError(FailMismatch, d.pos, exp, t.String(),
			"expected %s but found %s", exp, t)
	}
	d.advance()

	v := &variantAccess{d: d, tok: t, index: d.pos - 1, ref: scopeRef{depth: -1}}
	if t.Kind().IsOpen() {
		ref, err := d.push(t, v.index)
		if err != nil {
			return nil, err
		}
		v.ref = ref
	}
	return v, nil
}

// push opens the scope for t, found at index.
func (d *Deserializer) push(t token.Token, index int) (scopeRef, error) {
	d.nextID++
	sc, err := newScope(t, index, d.nextID)
	if err != nil {
		return scopeRef{}, err
	}
	d.stack = append(d.stack, sc)
	return scopeRef{depth: len(d.stack) - 1, id: sc.id}, nil
}

// scoped pushes the scope opened by t (already consumed), runs fn and
// closes the scope. An error from fn is returned before any close check.
func (d *Deserializer) scoped(t token.Token, fn func(*access) error) error {
	ref, err := d.push(t, d.pos-1)
	if err != nil {
		return err
	}
	if err := fn(&access{d: d, ref: ref}); err != nil {
		return err
	}
	return d.close(ref)
}

// close checks and consumes the end token for the scope ref points at.
func (d *Deserializer) close(ref scopeRef) error {
	if !current(d.stack, ref) {
		return scopeError(d.stack, ref, d.pos, "End")
	}
	depth := ref.depth
	sc := &d.stack[depth]
	end := sc.kind().End()
	t, err := d.next(end.String())
	if err != nil {
		return err
	}
	if t.Kind() != end {
		if t.Kind().IsClose() {
			return d.unexpected(t, end.String())
		}
		return newError(FailLeftover, d.pos, end.String(), t.String(),
			"deserializer stopped before %s: next token is %s", end, t)
	}
	if err := sc.checkLen("deserialized"); err != nil {
		return err
	}
	d.advance()
	d.stack = d.stack[:depth]
	return nil
}

// finish fails if a scope is still open or tokens remain.
func (d *Deserializer) finish() error {
	if len(d.stack) > 0 {
		sc := d.stack[len(d.stack)-1]
		return newError(FailUnclosed, d.pos, sc.kind().End().String(), "no further reads",
			"deserializer returned with %s at [%d] still open", sc.open, sc.index)
	}
	return d.leftover()
}

func (d *Deserializer) leftover() error {
	switch n := d.Remaining(); {
	case n == 1:
		return newError(FailLeftover, d.pos, "end of tokens", d.tokens[d.pos].String(),
			"1 token remains after deserialization, next is %s", d.tokens[d.pos])
	case n > 1:
		return newError(FailLeftover, d.pos, "end of tokens", d.tokens[d.pos].String(),
			"%d tokens remain after deserialization, next is %s", n, d.tokens[d.pos])
	}
	return nil
}

// access drives one sequence, map or struct scope.
type access struct {
	d   *Deserializer
	ref scopeRef
}

func (a *access) Next() (bool, error) {
	d := a.d
	if !current(d.stack, a.ref) {
		return false, scopeError(d.stack, a.ref, d.pos, "Next")
	}
	sc := &d.stack[a.ref.depth]
	end := sc.kind().End()
	t, err := d.next(end.String())
	if err != nil {
		return false, err
	}
	if t.Kind() == end {
		return false, nil
	}
	if t.Kind().IsClose() {
		return false, d.unexpected(t, end.String())
	}
	sc.count++
	return true, nil
}

func (a *access) SizeHint() (int, bool) {
	if a.ref.depth < 0 || a.ref.depth >= len(a.d.stack) || a.d.stack[a.ref.depth].id != a.ref.id {
		return 0, false
	}
	sc := a.d.stack[a.ref.depth]
	if sc.len < 0 {
		return 0, false
	}
	return sc.len, true
}

type variantAccess struct {
	d     *Deserializer
	tok   token.Token
	index int
	ref   scopeRef // depth -1 unless a tuple or struct variant
}

func (v *variantAccess) Variant() (uint32, string) {
	switch t := v.tok.(type) {
	case token.UnitVariant:
		return t.Index, t.Variant
	case token.NewtypeVariant:
		return t.Index, t.Variant
	case token.TupleVariant:
		return t.Index, t.Variant
	case token.StructVariant:
		return t.Index, t.Variant
	}
	return 0, ""
}

func (v *variantAccess) shape(k token.Kind, exp string) error {
	if v.tok.Kind() == k {
		return nil
	}
	return newError(FailMismatch, v.index, exp, v.tok.String(),
		"%s", de.InvalidType(unexpectedOf(v.tok), exp))
}

func (v *variantAccess) Unit() error {
	return v.shape(token.KindUnitVariant, "unit variant")
}

func (v *variantAccess) Newtype() error {
	return v.shape(token.KindNewtypeVariant, "newtype variant")
}

func (v *variantAccess) Tuple(fn func(de.SeqAccess) error) error {
	if err := v.shape(token.KindTupleVariant, "tuple variant"); err != nil {
		return err
	}
	if err := fn(&access{d: v.d, ref: v.ref}); err != nil {
		return err
	}
	return v.d.close(v.ref)
}

func (v *variantAccess) Struct(fn func(de.MapAccess) error) error {
	if err := v.shape(token.KindStructVariant, "struct variant"); err != nil {
		return err
	}
	if err := fn(&access{d: v.d, ref: v.ref}); err != nil {
		return err
	}
	return v.d.close(v.ref)
}

// Any reads the next value by dispatching on the next token alone.
func (d *Deserializer) Any() (ir.Value, error) {
	t, err := d.next("any value")
	if err != nil {
		return nil, err
	}
	switch t := t.(type) {
	case token.Bool:
		d.advance()
		return ir.Bool(t), nil
	case token.I8:
		d.advance()
		return ir.I8(t), nil
	case token.I16:
		d.advance()
		return ir.I16(t), nil
	case token.I32:
		d.advance()
		return ir.I32(t), nil
	case token.I64:
		d.advance()
		return ir.I64(t), nil
	case token.U8:
		d.advance()
		return ir.U8(t), nil
	case token.U16:
		d.advance()
		return ir.U16(t), nil
	case token.U32:
		d.advance()
		return ir.U32(t), nil
	case token.U64:
		d.advance()
		return ir.U64(t), nil
	case token.F32:
		d.advance()
		return ir.F32(t), nil
	case token.F64:
		d.advance()
		return ir.F64(t), nil
	case token.Char:
		d.advance()
		return ir.Char(t), nil
	case token.Str:
		d.advance()
		return ir.Str(t), nil
	case token.Bytes:
		d.advance()
		return ir.Bytes(slices.Clone([]byte(t))), nil
	case token.None:
		d.advance()
		return ir.None{}, nil
	case token.Some:
		d.advance()
		inner, err := d.Any()
		if err != nil {
			return nil, err
		}
		return ir.Some{Value: inner}, nil
	case token.Unit:
		d.advance()
		return ir.Unit{}, nil
	case token.UnitStruct:
		d.advance()
		return ir.UnitStruct{Name: t.Name}, nil
	case token.UnitVariant:
		d.advance()
		return ir.UnitVariant{Name: t.Name, Index: t.Index, Variant: t.Variant}, nil
	case token.NewtypeStruct:
		d.advance()
		inner, err := d.Any()
		if err != nil {
			return nil, err
		}
		return ir.NewtypeStruct{Name: t.Name, Value: inner}, nil
	case token.NewtypeVariant:
		d.advance()
		inner, err := d.Any()
		if err != nil {
			return nil, err
		}
		return ir.NewtypeVariant{Name: t.Name, Index: t.Index, Variant: t.Variant, Value: inner}, nil
	case token.Seq:
		d.advance()
		elems, err := d.anyElems(t)
		if err != nil {
			return nil, err
		}
		return ir.Seq{Len: t.Len, Elems: elems}, nil
	case token.Tuple:
		d.advance()
		elems, err := d.anyElems(t)
		if err != nil {
			return nil, err
		}
		return ir.Tuple{Elems: elems}, nil
	case token.TupleStruct:
		d.advance()
		elems, err := d.anyElems(t)
		if err != nil {
			return nil, err
		}
		return ir.TupleStruct{Name: t.Name, Elems: elems}, nil
	case token.TupleVariant:
		d.advance()
		elems, err := d.anyElems(t)
		if err != nil {
			return nil, err
		}
		return ir.TupleVariant{Name: t.Name, Index: t.Index, Variant: t.Variant, Elems: elems}, nil
	case token.Map:
		d.advance()
		entries, err := d.anyEntries(t)
		if err != nil {
			return nil, err
		}
		return ir.Map{Len: t.Len, Entries: entries}, nil
	case token.Struct:
		d.advance()
		fields, err := d.anyFields(t)
		if err != nil {
			return nil, err
		}
		return ir.Struct{Name: t.Name, Fields: fields}, nil
	case token.StructVariant:
		d.advance()
		fields, err := d.anyFields(t)
		if err != nil {
			return nil, err
		}
		return ir.StructVariant{Name: t.Name, Index: t.Index, Variant: t.Variant, Fields: fields}, nil
	}
	return nil, d.unexpected(t, "any value")
}

// Skip reads and discards the next value.
func (d *Deserializer) Skip() error {
	_, err := d.Any()
	return err
}

func (d *Deserializer) anyElems(open token.Token) ([]ir.Value, error) {
	elems := []ir.Value{}
	err := d.scoped(open, func(a *access) error {
		for {
			more, err := a.Next()
			if err != nil || !more {
				return err
			}
			v, err := d.Any()
			if err != nil {
				return err
			}
			elems = append(elems, v)
		}
	})
	return elems, err
}

func (d *Deserializer) anyEntries(open token.Token) ([]ir.Entry, error) {
	entries := []ir.Entry{}
	err := d.scoped(open, func(a *access) error {
		for {
			more, err := a.Next()
			if err != nil || !more {
				return err
			}
			k, err := d.Any()
			if err != nil {
				return err
			}
			v, err := d.Any()
			if err != nil {
				return err
			}
			entries = append(entries, ir.Entry{Key: k, Value: v})
		}
	})
	return entries, err
}

func (d *Deserializer) anyFields(open token.Token) ([]ir.Field, error) {
	fields := []ir.Field{}
	err := d.scoped(open, func(a *access) error {
		for {
			more, err := a.Next()
			if err != nil || !more {
				return err
			}
			name, err := d.FieldName()
			if err != nil {
				return err
			}
			v, err := d.Any()
			if err != nil {
				return err
			}
			fields = append(fields, ir.Field{Name: name, Value: v})
		}
	})
	return fields, err
}

func nameOf(t token.Token) string {
	switch t := t.(type) {
	case token.UnitStruct:
		return t.Name
	case token.UnitVariant:
		return t.Name
	case token.NewtypeStruct:
		return t.Name
	case token.NewtypeVariant:
		return t.Name
	case token.TupleStruct:
		return t.Name
	case token.TupleVariant:
		return t.Name
	case token.Struct:
		return t.Name
	case token.StructVariant:
		return t.Name
	}
	return ""
}

// unexpectedOf describes a value token the way decode errors name it.
func unexpectedOf(t token.Token) de.Unexpected {
	switch t := t.(type) {
	case token.Bool:
		return de.UnexpectedBool(bool(t))
	case token.I8:
		return de.UnexpectedSigned(int64(t))
	case token.I16:
		return de.UnexpectedSigned(int64(t))
	case token.I32:
		return de.UnexpectedSigned(int64(t))
	case token.I64:
		return de.UnexpectedSigned(int64(t))
	case token.U8:
		return de.UnexpectedUnsigned(uint64(t))
	case token.U16:
		return de.UnexpectedUnsigned(uint64(t))
	case token.U32:
		return de.UnexpectedUnsigned(uint64(t))
	case token.U64:
		return de.UnexpectedUnsigned(uint64(t))
	case token.F32:
		return de.UnexpectedFloat(float64(t))
	case token.F64:
		return de.UnexpectedFloat(float64(t))
	case token.Char:
		return de.UnexpectedChar(rune(t))
	case token.Str:
		return de.UnexpectedStr(string(t))
	case token.Bytes:
		return de.UnexpectedBytes
	case token.None, token.Some:
		return de.UnexpectedOption
	case token.Unit, token.UnitStruct:
		return de.UnexpectedUnit
	case token.UnitVariant:
		return de.UnexpectedUnitVariant
	case token.NewtypeStruct:
		return de.UnexpectedNewtypeStruct
	case token.NewtypeVariant:
		return de.UnexpectedNewtypeVariant
	case token.Seq, token.Tuple, token.TupleStruct:
		return de.UnexpectedSeq
	case token.TupleVariant:
		return de.UnexpectedTupleVariant
	case token.Map, token.Struct:
		return de.UnexpectedMap
	case token.StructVariant:
		return de.UnexpectedStructVariant
	}
	return de.UnexpectedOther(t.String())
}
