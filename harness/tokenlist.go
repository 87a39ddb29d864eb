package harness

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tokentest/token"
)

// TokenList is a token sequence as written in fixture files.
//
// Payload-less tokens are bare identifiers, everything else is a
// single-key mapping from the identifier to its payload:
//
//	- struct: {name: Point, len: 2}
//	- field: x
//	- i32: 1
//	- seq                # no length hint
//	- seq: {len: 3}
//	- struct_end
type TokenList []token.Token

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *TokenList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: tokens must be a list", value.Line)
	}
	out := make(TokenList, 0, len(value.Content))
	for i, n := range value.Content {
		t, err := decodeToken(n)
		if err != nil {
			return fmt.Errorf("tokens[%d]: %w", i, err)
		}
		out = append(out, t)
	}
	*l = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (l TokenList) MarshalYAML() (any, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for i, t := range l {
		n, err := encodeToken(t)
		if err != nil {
			return nil, fmt.Errorf("tokens[%d]: %w", i, err)
		}
		seq.Content = append(seq.Content, n)
	}
	return seq, nil
}

// bare lists the kinds written without a payload.
func bare(k token.Kind) bool {
	switch k {
	case token.KindNone, token.KindSome, token.KindUnit:
		return true
	}
	return k.IsClose()
}

func decodeToken(n *yaml.Node) (token.Token, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		k, ok := token.KindByIdent(n.Value)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown token %q", n.Line, n.Value)
		}
		switch {
		case bare(k):
			return bareToken(k), nil
		case k == token.KindSeq:
			return token.Seq{}, nil
		case k == token.KindMap:
			return token.Map{}, nil
		}
		return nil, fmt.Errorf("line %d: token %q requires a payload", n.Line, n.Value)

	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return nil, fmt.Errorf("line %d: token must be a single-key mapping", n.Line)
		}
		key, val := n.Content[0], n.Content[1]
		k, ok := token.KindByIdent(key.Value)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown token %q", key.Line, key.Value)
		}
		if bare(k) {
			if isNull(val) {
				return bareToken(k), nil
			}
			return nil, fmt.Errorf("line %d: token %q takes no payload", key.Line, key.Value)
		}
		return payloadToken(k, val)
	}
	return nil, fmt.Errorf("line %d: token must be an identifier or a single-key mapping", n.Line)
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func bareToken(k token.Kind) token.Token {
	switch k {
	case token.KindNone:
		return token.None{}
	case token.KindSome:
		return token.Some{}
	case token.KindUnit:
		return token.Unit{}
	}
	return token.EndToken(k - 1)
}

// payload holds the named fields of compound token payloads.
type payload struct {
	Name    string `yaml:"name"`
	Index   uint32 `yaml:"index"`
	Variant string `yaml:"variant"`
	Len     *int   `yaml:"len"`
}

// decodePayload decodes a mapping payload, rejecting keys outside required
// and optional and requiring every key in required.
func decodePayload(n *yaml.Node, ident string, required, optional []string) (payload, error) {
	var p payload
	if isNull(n) && len(required) == 0 {
		return p, nil
	}
	if n.Kind != yaml.MappingNode {
		return p, fmt.Errorf("line %d: %s payload must be a mapping", n.Line, ident)
	}
	seen := map[string]bool{}
	for i := 0; i < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if !contains(required, key) && !contains(optional, key) {
			return p, fmt.Errorf("line %d: field %s not found in %s payload", n.Content[i].Line, key, ident)
		}
		seen[key] = true
	}
	for _, key := range required {
		if !seen[key] {
			return p, fmt.Errorf("line %d: %s payload requires %s", n.Line, ident, key)
		}
	}
	if err := n.Decode(&p); err != nil {
		return p, fmt.Errorf("%s payload: %w", ident, err)
	}
	if p.Len != nil && *p.Len < 0 {
		return p, fmt.Errorf("line %d: %s len must not be negative", n.Line, ident)
	}
	return p, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func hint(l *int) token.Len {
	if l == nil {
		return token.Len{}
	}
	return token.Hint(*l)
}

func scalar[T any](n *yaml.Node, ident string) (T, error) {
	var v T
	if n.Kind != yaml.ScalarNode {
		return v, fmt.Errorf("line %d: %s payload must be a scalar", n.Line, ident)
	}
	if err := n.Decode(&v); err != nil {
		return v, fmt.Errorf("%s payload: %w", ident, err)
	}
	return v, nil
}

var (
	variantKeys = []string{"name", "index", "variant"}
	sizedKeys   = []string{"name", "len"}
	allKeys     = []string{"name", "index", "variant", "len"}
)

func payloadToken(k token.Kind, n *yaml.Node) (token.Token, error) {
	ident := k.Ident()
	switch k {
	case token.KindBool:
		v, err := scalar[bool](n, ident)
		return token.Bool(v), err
	case token.KindI8:
		v, err := scalar[int8](n, ident)
		return token.I8(v), err
	case token.KindI16:
		v, err := scalar[int16](n, ident)
		return token.I16(v), err
	case token.KindI32:
		v, err := scalar[int32](n, ident)
		return token.I32(v), err
	case token.KindI64:
		v, err := scalar[int64](n, ident)
		return token.I64(v), err
	case token.KindU8:
		v, err := scalar[uint8](n, ident)
		return token.U8(v), err
	case token.KindU16:
		v, err := scalar[uint16](n, ident)
		return token.U16(v), err
	case token.KindU32:
		v, err := scalar[uint32](n, ident)
		return token.U32(v), err
	case token.KindU64:
		v, err := scalar[uint64](n, ident)
		return token.U64(v), err
	case token.KindF32:
		v, err := scalar[float64](n, ident)
		return token.F32(v), err
	case token.KindF64:
		v, err := scalar[float64](n, ident)
		return token.F64(v), err
	case token.KindChar:
		s, err := scalar[string](n, ident)
		if err != nil {
			return nil, err
		}
		if utf8.RuneCountInString(s) != 1 {
			return nil, fmt.Errorf("line %d: char payload must be exactly one character, got %q", n.Line, s)
		}
		r, _ := utf8.DecodeRuneInString(s)
		return token.Char(r), nil
	case token.KindStr:
		s, err := scalar[string](n, ident)
		return token.Str(s), err
	case token.KindField:
		s, err := scalar[string](n, ident)
		return token.Field(s), err
	case token.KindBytes:
		b, err := decodeBytes(n)
		return token.Bytes(b), err
	}

	switch k {
	case token.KindUnitStruct:
		p, err := decodePayload(n, ident, []string{"name"}, nil)
		return token.UnitStruct{Name: p.Name}, err
	case token.KindNewtypeStruct:
		p, err := decodePayload(n, ident, []string{"name"}, nil)
		return token.NewtypeStruct{Name: p.Name}, err
	case token.KindUnitVariant:
		p, err := decodePayload(n, ident, variantKeys, nil)
		return token.UnitVariant{Name: p.Name, Index: p.Index, Variant: p.Variant}, err
	case token.KindNewtypeVariant:
		p, err := decodePayload(n, ident, variantKeys, nil)
		return token.NewtypeVariant{Name: p.Name, Index: p.Index, Variant: p.Variant}, err
	case token.KindSeq:
		p, err := decodePayload(n, ident, nil, []string{"len"})
		return token.Seq{Len: hint(p.Len)}, err
	case token.KindMap:
		p, err := decodePayload(n, ident, nil, []string{"len"})
		return token.Map{Len: hint(p.Len)}, err
	case token.KindTuple:
		p, err := decodePayload(n, ident, []string{"len"}, nil)
		if err != nil {
			return nil, err
		}
		return token.Tuple{Len: *p.Len}, nil
	case token.KindTupleStruct:
		p, err := decodePayload(n, ident, sizedKeys, nil)
		if err != nil {
			return nil, err
		}
		return token.TupleStruct{Name: p.Name, Len: *p.Len}, nil
	case token.KindStruct:
		p, err := decodePayload(n, ident, sizedKeys, nil)
		if err != nil {
			return nil, err
		}
		return token.Struct{Name: p.Name, Len: *p.Len}, nil
	case token.KindTupleVariant:
		p, err := decodePayload(n, ident, allKeys, nil)
		if err != nil {
			return nil, err
		}
		return token.TupleVariant{Name: p.Name, Index: p.Index, Variant: p.Variant, Len: *p.Len}, nil
	case token.KindStructVariant:
		p, err := decodePayload(n, ident, allKeys, nil)
		if err != nil {
			return nil, err
		}
		return token.StructVariant{Name: p.Name, Index: p.Index, Variant: p.Variant, Len: *p.Len}, nil
	}
	return nil, fmt.Errorf("line %d: unsupported token %q", n.Line, ident)
}

// decodeBytes accepts a string, a !!binary scalar or a list of byte values.
func decodeBytes(n *yaml.Node) ([]byte, error) {
	switch {
	case n.Kind == yaml.ScalarNode && n.Tag == "!!binary":
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return nil, fmt.Errorf("line %d: bytes payload: %w", n.Line, err)
		}
		return b, nil
	case n.Kind == yaml.ScalarNode:
		return []byte(n.Value), nil
	case n.Kind == yaml.SequenceNode:
		var ints []int
		if err := n.Decode(&ints); err != nil {
			return nil, fmt.Errorf("bytes payload: %w", err)
		}
		b := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > math.MaxUint8 {
				return nil, fmt.Errorf("line %d: bytes payload value %d out of range", n.Line, v)
			}
			b[i] = byte(v)
		}
		return b, nil
	}
	return nil, fmt.Errorf("line %d: bytes payload must be a string or a list", n.Line)
}

func encodeToken(t token.Token) (*yaml.Node, error) {
	k := t.Kind()
	ident := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k.Ident()}
	if bare(k) {
		return ident, nil
	}

	var val *yaml.Node
	var err error
	switch t := t.(type) {
	case token.Seq:
		if _, ok := t.Len.Get(); !ok {
			return ident, nil
		}
		val = fields("len", t.Len.Int())
	case token.Map:
		if _, ok := t.Len.Get(); !ok {
			return ident, nil
		}
		val = fields("len", t.Len.Int())
	case token.F32:
		val = floatNode(float64(t), 32)
	case token.F64:
		val = floatNode(float64(t), 64)
	case token.Char:
		val, err = encodeValue(string(rune(t)))
	case token.Bytes:
		val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!binary", Value: base64.StdEncoding.EncodeToString(t)}
	case token.UnitStruct:
		val = fields("name", t.Name)
	case token.NewtypeStruct:
		val = fields("name", t.Name)
	case token.UnitVariant:
		val = fields("name", t.Name, "index", t.Index, "variant", t.Variant)
	case token.NewtypeVariant:
		val = fields("name", t.Name, "index", t.Index, "variant", t.Variant)
	case token.Tuple:
		val = fields("len", t.Len)
	case token.TupleStruct:
		val = fields("name", t.Name, "len", t.Len)
	case token.Struct:
		val = fields("name", t.Name, "len", t.Len)
	case token.TupleVariant:
		val = fields("name", t.Name, "index", t.Index, "variant", t.Variant, "len", t.Len)
	case token.StructVariant:
		val = fields("name", t.Name, "index", t.Index, "variant", t.Variant, "len", t.Len)
	case token.Bool:
		val, err = encodeValue(bool(t))
	case token.I8, token.I16, token.I32, token.I64, token.U8, token.U16, token.U32, token.U64:
		val, err = encodeValue(t)
	case token.Str:
		val, err = encodeValue(string(t))
	case token.Field:
		val, err = encodeValue(string(t))
	default:
		return nil, fmt.Errorf("unsupported token %s", t)
	}
	if err != nil {
		return nil, err
	}
	return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{ident, val}}, nil
}

func encodeValue(v any) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return &n, nil
}

// fields builds a flow mapping from alternating keys and values, keeping
// the order given.
func fields(kv ...any) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	for i := 0; i < len(kv); i += 2 {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kv[i].(string)}
		val, err := encodeValue(kv[i+1])
		if err != nil {
			val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(kv[i+1])}
		}
		m.Content = append(m.Content, key, val)
	}
	return m
}

func floatNode(f float64, bits int) *yaml.Node {
	var s string
	switch {
	case math.IsNaN(f):
		s = ".nan"
	case math.IsInf(f, 1):
		s = ".inf"
	case math.IsInf(f, -1):
		s = "-.inf"
	default:
		s = strconv.FormatFloat(f, 'g', -1, bits)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
}
