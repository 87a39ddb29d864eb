package token

// Kind identifies the variant of a Token.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Atomic
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindU8
	KindU16
	KindU32
	KindU64
	KindF32
	KindF64
	KindChar
	KindStr
	KindBytes
	KindNone
	KindSome // prefix: one value follows, no close
	KindUnit
	KindUnitStruct
	KindUnitVariant
	KindNewtypeStruct  // prefix
	KindNewtypeVariant // prefix

	// Bracketing
	KindSeq
	KindSeqEnd
	KindTuple
	KindTupleEnd
	KindTupleStruct
	KindTupleStructEnd
	KindTupleVariant
	KindTupleVariantEnd
	KindMap
	KindMapEnd
	KindStruct
	KindStructEnd
	KindStructVariant
	KindStructVariantEnd
	KindField
)

var kindNames = [...]string{
	KindInvalid:          "Invalid",
	KindBool:             "Bool",
	KindI8:               "I8",
	KindI16:              "I16",
	KindI32:              "I32",
	KindI64:              "I64",
	KindU8:               "U8",
	KindU16:              "U16",
	KindU32:              "U32",
	KindU64:              "U64",
	KindF32:              "F32",
	KindF64:              "F64",
	KindChar:             "Char",
	KindStr:              "Str",
	KindBytes:            "Bytes",
	KindNone:             "None",
	KindSome:             "Some",
	KindUnit:             "Unit",
	KindUnitStruct:       "UnitStruct",
	KindUnitVariant:      "UnitVariant",
	KindNewtypeStruct:    "NewtypeStruct",
	KindNewtypeVariant:   "NewtypeVariant",
	KindSeq:              "Seq",
	KindSeqEnd:           "SeqEnd",
	KindTuple:            "Tuple",
	KindTupleEnd:         "TupleEnd",
	KindTupleStruct:      "TupleStruct",
	KindTupleStructEnd:   "TupleStructEnd",
	KindTupleVariant:     "TupleVariant",
	KindTupleVariantEnd:  "TupleVariantEnd",
	KindMap:              "Map",
	KindMapEnd:           "MapEnd",
	KindStruct:           "Struct",
	KindStructEnd:        "StructEnd",
	KindStructVariant:    "StructVariant",
	KindStructVariantEnd: "StructVariantEnd",
	KindField:            "Field",
}

// String returns the kind name as it appears in rendered tokens.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsOpen reports whether k opens a scope that a later close token ends.
func (k Kind) IsOpen() bool {
	switch k {
	case KindSeq, KindTuple, KindTupleStruct, KindTupleVariant,
		KindMap, KindStruct, KindStructVariant:
		return true
	}
	return false
}

// IsClose reports whether k ends a scope.
func (k Kind) IsClose() bool {
	switch k {
	case KindSeqEnd, KindTupleEnd, KindTupleStructEnd, KindTupleVariantEnd,
		KindMapEnd, KindStructEnd, KindStructVariantEnd:
		return true
	}
	return false
}

// End returns the close kind matching an open kind, or KindInvalid.
func (k Kind) End() Kind {
	if k.IsOpen() {
		return k + 1
	}
	return KindInvalid
}

// IsStructLike reports whether field-name tokens may appear directly inside
// a scope opened by k.
func (k Kind) IsStructLike() bool {
	return k == KindStruct || k == KindStructVariant
}

// EndToken returns the close token for an open kind, or nil.
func EndToken(open Kind) Token {
	switch open.End() {
	case KindSeqEnd:
		return SeqEnd{}
	case KindTupleEnd:
		return TupleEnd{}
	case KindTupleStructEnd:
		return TupleStructEnd{}
	case KindTupleVariantEnd:
		return TupleVariantEnd{}
	case KindMapEnd:
		return MapEnd{}
	case KindStructEnd:
		return StructEnd{}
	case KindStructVariantEnd:
		return StructVariantEnd{}
	}
	return nil
}

var kindIdents = map[Kind]string{}
var identKinds = map[string]Kind{}

func init() {
	for k := KindBool; k <= KindField; k++ {
		id := snake(kindNames[k])
		kindIdents[k] = id
		identKinds[id] = k
	}
}

// Ident returns the snake_case identifier of k ("tuple_struct_end"), used
// by fixture files and tagged JSON.
func (k Kind) Ident() string {
	if id, ok := kindIdents[k]; ok {
		return id
	}
	return "invalid"
}

// KindByIdent is the inverse of Kind.Ident.
func KindByIdent(ident string) (Kind, bool) {
	k, ok := identKinds[ident]
	return k, ok
}

func snake(name string) string {
	out := make([]byte, 0, len(name)+4)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
