// Package de defines the consumer capability: the interface a value's own
// decode logic calls into to read its structure back, one primitive at a
// time.
//
// A type implements Deserialize on its pointer:
//
//	func (p *Point) Deserialize(d de.Deserializer) error {
//		return d.Struct("Point", func(m de.MapAccess) error {
//			for {
//				more, err := m.Next()
//				if err != nil || !more {
//					return err
//				}
//				name, err := d.FieldName()
//				if err != nil {
//					return err
//				}
//				switch name {
//				case "x":
//					p.X, err = d.I32()
//				case "y":
//					p.Y, err = d.I32()
//				default:
//					err = d.Skip()
//				}
//				if err != nil {
//					return err
//				}
//			}
//		})
//	}
//
// The error constructors (InvalidType, InvalidLength, UnknownField, ...)
// produce the conventional messages decode logic reports, so tests can
// compare error text exactly.
package de
