package de

import (
	"github.com/roach88/tokentest/ir"
	"github.com/roach88/tokentest/ser"
)

// Content holds any value read without a known target type. It decodes
// through Any and serializes back to the same tokens, so it can stand in
// for a concrete type on either side of a round trip.
type Content struct {
	Value ir.Value
}

func (c *Content) Deserialize(d Deserializer) error {
	v, err := d.Any()
	if err != nil {
		return err
	}
	c.Value = v
	return nil
}

func (c Content) Serialize(s ser.Serializer) error {
	if c.Value == nil {
		return ser.Custom("content is empty")
	}
	return c.Value.Serialize(s)
}

// maxPrealloc bounds the capacity taken from a size hint. The hint comes
// from the input and may be wrong.
const maxPrealloc = 4096

// Slice reads a sequence of T.
func Slice[T any, P interface {
	*T
	Deserialize
}](d Deserializer) ([]T, error) {
	var out []T
	err := d.Seq(func(seq SeqAccess) error {
		if n, ok := seq.SizeHint(); ok {
			out = make([]T, 0, min(n, maxPrealloc))
		}
		for {
			more, err := seq.Next()
			if err != nil || !more {
				return err
			}
			var elem T
			if err := P(&elem).Deserialize(d); err != nil {
				return err
			}
			out = append(out, elem)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Option reads an optional T. It returns nil for None.
func Option[T any, P interface {
	*T
	Deserialize
}](d Deserializer) (*T, error) {
	present, err := d.Option()
	if err != nil || !present {
		return nil, err
	}
	v := new(T)
	if err := P(v).Deserialize(d); err != nil {
		return nil, err
	}
	return v, nil
}
