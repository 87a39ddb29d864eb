package ir

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/tokentest/token"
)

// MarshalCanonical renders v as tagged canonical JSON.
//
// Every value becomes a single-key object named by its token kind
// ({"i32":5}, {"seq":{"len":2,"elems":[...]}}). The output follows RFC 8785
// so that identical trees always produce identical bytes:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Object keys are NFC normalized; string payloads are written as is
//  4. Floats are written as strings so NaN and infinities survive
//  5. Bytes are written as lowercase hex
func MarshalCanonical(v Value) ([]byte, error) {
	n, err := tagged(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type object = map[string]any

func tag(k token.Kind, payload any) object {
	return object{k.Ident(): payload}
}

// tagged lowers a Value into plain JSON nodes.
func tagged(v Value) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("nil value in tree")
	case Bool:
		return tag(token.KindBool, bool(val)), nil
	case I8:
		return tag(token.KindI8, int64(val)), nil
	case I16:
		return tag(token.KindI16, int64(val)), nil
	case I32:
		return tag(token.KindI32, int64(val)), nil
	case I64:
		return tag(token.KindI64, int64(val)), nil
	case U8:
		return tag(token.KindU8, uint64(val)), nil
	case U16:
		return tag(token.KindU16, uint64(val)), nil
	case U32:
		return tag(token.KindU32, uint64(val)), nil
	case U64:
		return tag(token.KindU64, uint64(val)), nil
	case F32:
		return tag(token.KindF32, formatFloat(float64(val), 32)), nil
	case F64:
		return tag(token.KindF64, formatFloat(float64(val), 64)), nil
	case Char:
		return tag(token.KindChar, string(rune(val))), nil
	case Str:
		return tag(token.KindStr, string(val)), nil
	case Bytes:
		return tag(token.KindBytes, hex.EncodeToString(val)), nil
	case None:
		return tag(token.KindNone, object{}), nil
	case Unit:
		return tag(token.KindUnit, object{}), nil
	case Some:
		inner, err := tagged(val.Value)
		if err != nil {
			return nil, fmt.Errorf("some: %w", err)
		}
		return tag(token.KindSome, inner), nil
	case UnitStruct:
		return tag(token.KindUnitStruct, object{"name": val.Name}), nil
	case UnitVariant:
		return tag(token.KindUnitVariant, variantObject(val.Name, val.Index, val.Variant)), nil
	case NewtypeStruct:
		inner, err := tagged(val.Value)
		if err != nil {
			return nil, fmt.Errorf("newtype_struct %s: %w", val.Name, err)
		}
		return tag(token.KindNewtypeStruct, object{"name": val.Name, "value": inner}), nil
	case NewtypeVariant:
		inner, err := tagged(val.Value)
		if err != nil {
			return nil, fmt.Errorf("newtype_variant %s::%s: %w", val.Name, val.Variant, err)
		}
		obj := variantObject(val.Name, val.Index, val.Variant)
		obj["value"] = inner
		return tag(token.KindNewtypeVariant, obj), nil
	case Seq:
		elems, err := taggedElems(val.Elems)
		if err != nil {
			return nil, err
		}
		obj := object{"elems": elems}
		if n, ok := val.Len.Get(); ok {
			obj["len"] = int64(n)
		}
		return tag(token.KindSeq, obj), nil
	case Tuple:
		elems, err := taggedElems(val.Elems)
		if err != nil {
			return nil, err
		}
		return tag(token.KindTuple, object{"elems": elems}), nil
	case TupleStruct:
		elems, err := taggedElems(val.Elems)
		if err != nil {
			return nil, err
		}
		return tag(token.KindTupleStruct, object{"name": val.Name, "elems": elems}), nil
	case TupleVariant:
		elems, err := taggedElems(val.Elems)
		if err != nil {
			return nil, err
		}
		obj := variantObject(val.Name, val.Index, val.Variant)
		obj["elems"] = elems
		return tag(token.KindTupleVariant, obj), nil
	case Map:
		entries := make([]any, len(val.Entries))
		for i, e := range val.Entries {
			k, err := tagged(e.Key)
			if err != nil {
				return nil, fmt.Errorf("entries[%d] key: %w", i, err)
			}
			v, err := tagged(e.Value)
			if err != nil {
				return nil, fmt.Errorf("entries[%d] value: %w", i, err)
			}
			entries[i] = []any{k, v}
		}
		obj := object{"entries": entries}
		if n, ok := val.Len.Get(); ok {
			obj["len"] = int64(n)
		}
		return tag(token.KindMap, obj), nil
	case Struct:
		fields, err := taggedFields(val.Fields)
		if err != nil {
			return nil, err
		}
		return tag(token.KindStruct, object{"name": val.Name, "fields": fields}), nil
	case StructVariant:
		fields, err := taggedFields(val.Fields)
		if err != nil {
			return nil, err
		}
		obj := variantObject(val.Name, val.Index, val.Variant)
		obj["fields"] = fields
		return tag(token.KindStructVariant, obj), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func variantObject(name string, index uint32, variant string) object {
	return object{"name": name, "index": uint64(index), "variant": variant}
}

func taggedElems(elems []Value) ([]any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		n, err := tagged(e)
		if err != nil {
			return nil, fmt.Errorf("elems[%d]: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

func taggedFields(fields []Field) ([]any, error) {
	out := make([]any, len(fields))
	for i, f := range fields {
		n, err := tagged(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		out[i] = object{"name": f.Name, "value": n}
	}
	return out, nil
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

func writeNode(buf *bytes.Buffer, n any) error {
	switch val := n.(type) {
	case string:
		b, err := marshalCanonicalString(val)
		if err != nil {
			return err
		}
		buf.Write(b)
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(val, 10))
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNode(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case object:
		keys := make(map[string]string, len(val)) // normalized -> original
		for k := range val {
			nk := norm.NFC.String(k)
			if _, dup := keys[nk]; dup {
				return fmt.Errorf("key %q: duplicate after normalization", k)
			}
			keys[nk] = k
		}
		buf.WriteByte('{')
		// CRITICAL: RFC 8785 UTF-16 code unit ordering
		for i, nk := range SortedKeys(keys) {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := marshalCanonicalString(nk)
			if err != nil {
				return fmt.Errorf("key %q: %w", nk, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := writeNode(buf, val[keys[nk]]); err != nil {
				return fmt.Errorf("value for key %q: %w", nk, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported node type %T", n)
	}
	return nil
}

// marshalCanonicalString produces a canonical JSON string. Only control
// characters, backslash and quote are escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // CRITICAL: <, >, & must NOT be escaped
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json emits back into literal characters. The scan walks whole
// escape sequences, so an escaped backslash followed by "u2028" is left alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if i+6 <= len(data) && data[i+1] == 'u' && string(data[i+2:i+5]) == "202" {
			switch data[i+5] {
			case '8':
				out = append(out, "\u2028"...)
				i += 5
				continue
			case '9':
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}
