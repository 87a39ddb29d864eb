// Package ser defines the producer capability: the interface a value's own
// encode logic calls into, one primitive at a time, to emit its structure.
//
// A value implements Serialize:
//
//	func (p Point) Serialize(s ser.Serializer) error {
//		st, err := s.SerializeStruct("Point", 2)
//		if err != nil {
//			return err
//		}
//		if err := st.SerializeField("x", ser.I32(p.X)); err != nil {
//			return err
//		}
//		if err := st.SerializeField("y", ser.I32(p.Y)); err != nil {
//			return err
//		}
//		return st.End()
//	}
//
// Begin methods return a continuation that the caller feeds each element
// into and then ends. Nothing in this package writes bytes; sinks decide
// what the calls mean.
package ser
