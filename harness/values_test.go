package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/tokentest/de"
	"github.com/roach88/tokentest/ser"
)

// Value types exercised by the harness tests. Each carries hand-written
// encode and decode logic, the way a user type would.

type point struct {
	X, Y int32
}

func (p point) Serialize(s ser.Serializer) error {
	st, err := s.SerializeStruct("Point", 2)
	if err != nil {
		return err
	}
	if err := st.SerializeField("x", ser.I32(p.X)); err != nil {
		return err
	}
	if err := st.SerializeField("y", ser.I32(p.Y)); err != nil {
		return err
	}
	return st.End()
}

func (p *point) Deserialize(d de.Deserializer) error {
	var hasX, hasY bool
	err := d.Struct("Point", func(m de.MapAccess) error {
		for {
			more, err := m.Next()
			if err != nil || !more {
				return err
			}
			name, err := d.FieldName()
			if err != nil {
				return err
			}
			switch name {
			case "x":
				if hasX {
					return de.DuplicateField("x")
				}
				if p.X, err = d.I32(); err != nil {
					return err
				}
				hasX = true
			case "y":
				if hasY {
					return de.DuplicateField("y")
				}
				if p.Y, err = d.I32(); err != nil {
					return err
				}
				hasY = true
			default:
				return de.UnknownField(name, []string{"x", "y"})
			}
		}
	})
	if err != nil {
		return err
	}
	if !hasX {
		return de.MissingField("x")
	}
	if !hasY {
		return de.MissingField("y")
	}
	return nil
}

// foo is a two-element tuple struct.
type foo struct {
	A, B int32
}

func (f foo) Serialize(s ser.Serializer) error {
	t, err := s.SerializeTupleStruct("Foo", 2)
	if err != nil {
		return err
	}
	if err := t.SerializeElement(ser.I32(f.A)); err != nil {
		return err
	}
	if err := t.SerializeElement(ser.I32(f.B)); err != nil {
		return err
	}
	return t.End()
}

func (f *foo) Deserialize(d de.Deserializer) error {
	return d.TupleStruct("Foo", func(seq de.SeqAccess) error {
		fields := []*int32{&f.A, &f.B}
		n := 0
		for {
			more, err := seq.Next()
			if err != nil {
				return err
			}
			if !more {
				break
			}
			if n == len(fields) {
				return de.InvalidLength(n+1, "2")
			}
			if *fields[n], err = d.I32(); err != nil {
				return err
			}
			n++
		}
		if n != len(fields) {
			return de.InvalidLength(n, "2")
		}
		return nil
	})
}

// entry and orderedMap model a map that keeps insertion order.
type entry struct {
	K rune
	V int32
}

type orderedMap []entry

func (m orderedMap) Serialize(s ser.Serializer) error {
	ms, err := s.SerializeMap(len(m))
	if err != nil {
		return err
	}
	for _, e := range m {
		if err := ms.SerializeEntry(ser.Char(e.K), ser.I32(e.V)); err != nil {
			return err
		}
	}
	return ms.End()
}

func (m *orderedMap) Deserialize(d de.Deserializer) error {
	out := orderedMap{}
	err := d.Map(func(ma de.MapAccess) error {
		for {
			more, err := ma.Next()
			if err != nil || !more {
				return err
			}
			k, err := d.Char()
			if err != nil {
				return err
			}
			v, err := d.I32()
			if err != nil {
				return err
			}
			out = append(out, entry{K: k, V: v})
		}
	})
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// strMap serializes its keys in sorted order.
type strMap map[string]int32

func (m strMap) Serialize(s ser.Serializer) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	ms, err := s.SerializeMap(len(m))
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := ms.SerializeEntry(ser.Str(k), ser.I32(m[k])); err != nil {
			return err
		}
	}
	return ms.End()
}

func (m *strMap) Deserialize(d de.Deserializer) error {
	out := strMap{}
	err := d.Map(func(ma de.MapAccess) error {
		for {
			more, err := ma.Next()
			if err != nil || !more {
				return err
			}
			k, err := d.Str()
			if err != nil {
				return err
			}
			if _, dup := out[k]; dup {
				return de.Custom("duplicate key %q", k)
			}
			if out[k], err = d.I32(); err != nil {
				return err
			}
		}
	})
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// ints is a sequence with a known length.
type ints []int32

func (v ints) Serialize(s ser.Serializer) error {
	seq, err := s.SerializeSeq(len(v))
	if err != nil {
		return err
	}
	for _, n := range v {
		if err := seq.SerializeElement(ser.I32(n)); err != nil {
			return err
		}
	}
	return seq.End()
}

func (v *ints) Deserialize(d de.Deserializer) error {
	out := ints{}
	err := d.Seq(func(seq de.SeqAccess) error {
		for {
			more, err := seq.Next()
			if err != nil || !more {
				return err
			}
			n, err := d.I32()
			if err != nil {
				return err
			}
			out = append(out, n)
		}
	})
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// i32 is a bare integer.
type i32 int32

func (v i32) Serialize(s ser.Serializer) error { return s.SerializeI32(int32(v)) }

func (v *i32) Deserialize(d de.Deserializer) error {
	n, err := d.I32()
	*v = i32(n)
	return err
}

// shape is an enum with one variant of each kind.
type shape struct {
	Variant string
	Radius  int32
	W, H    int32
	Label   string
}

var shapeVariants = []string{"Empty", "Circle", "Rect", "Tagged"}

func (v shape) Serialize(s ser.Serializer) error {
	switch v.Variant {
	case "Empty":
		return s.SerializeUnitVariant("Shape", 0, "Empty")
	case "Circle":
		return s.SerializeNewtypeVariant("Shape", 1, "Circle", ser.I32(v.Radius))
	case "Rect":
		t, err := s.SerializeTupleVariant("Shape", 2, "Rect", 2)
		if err != nil {
			return err
		}
		if err := t.SerializeElement(ser.I32(v.W)); err != nil {
			return err
		}
		if err := t.SerializeElement(ser.I32(v.H)); err != nil {
			return err
		}
		return t.End()
	case "Tagged":
		st, err := s.SerializeStructVariant("Shape", 3, "Tagged", 1)
		if err != nil {
			return err
		}
		if err := st.SerializeField("label", ser.Str(v.Label)); err != nil {
			return err
		}
		return st.End()
	}
	return ser.Custom("unknown shape %q", v.Variant)
}

func (v *shape) Deserialize(d de.Deserializer) error {
	va, err := d.Enum("Shape")
	if err != nil {
		return err
	}
	_, name := va.Variant()
	v.Variant = name
	switch name {
	case "Empty":
		return va.Unit()
	case "Circle":
		if err := va.Newtype(); err != nil {
			return err
		}
		v.Radius, err = d.I32()
		return err
	case "Rect":
		return va.Tuple(func(seq de.SeqAccess) error {
			for _, dst := range []*int32{&v.W, &v.H} {
				more, err := seq.Next()
				if err != nil {
					return err
				}
				if !more {
					return de.InvalidLength(0, "tuple variant Shape::Rect with 2 elements")
				}
				if *dst, err = d.I32(); err != nil {
					return err
				}
			}
			return nil
		})
	case "Tagged":
		return va.Struct(func(m de.MapAccess) error {
			for {
				more, err := m.Next()
				if err != nil || !more {
					return err
				}
				field, err := d.FieldName()
				if err != nil {
					return err
				}
				if field != "label" {
					return de.UnknownField(field, []string{"label"})
				}
				if v.Label, err = d.Str(); err != nil {
					return err
				}
			}
		})
	}
	return de.UnknownVariant(name, shapeVariants)
}

// version is "1.0" in human-readable mode and a (major, minor) tuple
// otherwise.
type version struct {
	Major, Minor uint8
}

func (v version) Serialize(s ser.Serializer) error {
	if s.IsHumanReadable() {
		return s.SerializeStr(fmt.Sprintf("%d.%d", v.Major, v.Minor))
	}
	t, err := s.SerializeTuple(2)
	if err != nil {
		return err
	}
	if err := t.SerializeElement(ser.U8(v.Major)); err != nil {
		return err
	}
	if err := t.SerializeElement(ser.U8(v.Minor)); err != nil {
		return err
	}
	return t.End()
}

func (v *version) Deserialize(d de.Deserializer) error {
	if d.IsHumanReadable() {
		s, err := d.Str()
		if err != nil {
			return err
		}
		if _, err := fmt.Sscanf(s, "%d.%d", &v.Major, &v.Minor); err != nil {
			return de.InvalidValue(de.UnexpectedStr(s), "a version string")
		}
		return nil
	}
	return d.Tuple(func(seq de.SeqAccess) error {
		for _, dst := range []*uint8{&v.Major, &v.Minor} {
			more, err := seq.Next()
			if err != nil {
				return err
			}
			if !more {
				return de.InvalidLength(0, "a tuple of size 2")
			}
			if *dst, err = d.U8(); err != nil {
				return err
			}
		}
		return nil
	})
}

// release pairs a version forced compact with one in the ambient mode.
type release struct {
	Pinned  Compact[version]
	Current version
}

func (r release) Serialize(s ser.Serializer) error {
	t, err := s.SerializeTuple(2)
	if err != nil {
		return err
	}
	if err := t.SerializeElement(r.Pinned); err != nil {
		return err
	}
	if err := t.SerializeElement(r.Current); err != nil {
		return err
	}
	return t.End()
}

func (r *release) Deserialize(d de.Deserializer) error {
	return d.Tuple(func(seq de.SeqAccess) error {
		for _, dst := range []de.Deserialize{&r.Pinned, &r.Current} {
			more, err := seq.Next()
			if err != nil {
				return err
			}
			if !more {
				return de.InvalidLength(0, "a tuple of size 2")
			}
			if err := dst.Deserialize(d); err != nil {
				return err
			}
		}
		return nil
	})
}

// meters is a newtype struct around f64.
type meters float64

func (m meters) Serialize(s ser.Serializer) error {
	return s.SerializeNewtypeStruct("Meters", ser.F64(m))
}

func (m *meters) Deserialize(d de.Deserializer) error {
	if err := d.NewtypeStruct("Meters"); err != nil {
		return err
	}
	f, err := d.F64()
	*m = meters(f)
	return err
}

// marker is a unit struct.
type marker struct{}

func (marker) Serialize(s ser.Serializer) error { return s.SerializeUnitStruct("Marker") }

func (*marker) Deserialize(d de.Deserializer) error { return d.UnitStruct("Marker") }

// maybe is an optional i32.
type maybe struct {
	V *int32
}

func (m maybe) Serialize(s ser.Serializer) error {
	if m.V == nil {
		return ser.Option(nil).Serialize(s)
	}
	return ser.Option(ser.I32(*m.V)).Serialize(s)
}

func (m *maybe) Deserialize(d de.Deserializer) error {
	v, err := de.Option[i32](d)
	if err != nil || v == nil {
		m.V = nil
		return err
	}
	n := int32(*v)
	m.V = &n
	return nil
}

// blob holds raw bytes.
type blob []byte

func (b blob) Serialize(s ser.Serializer) error { return s.SerializeBytes(b) }

func (b *blob) Deserialize(d de.Deserializer) error {
	v, err := d.Bytes()
	*b = v
	return err
}

// approx compares with a tolerance through its Equal method.
type approx float64

func (a approx) Equal(b approx) bool {
	diff := float64(a - b)
	return diff < 0.01 && diff > -0.01
}

func (a approx) Serialize(s ser.Serializer) error { return s.SerializeF64(float64(a)) }

func (a *approx) Deserialize(d de.Deserializer) error {
	f, err := d.F64()
	*a = approx(f)
	return err
}

func ptr[T any](v T) *T { return &v }
