// Package token defines the closed vocabulary of primitive encoding events.
//
// A token sequence is written once by a test author as a literal slice and
// is never mutated:
//
//	[]token.Token{
//		token.Map{Len: token.Hint(1)},
//		token.Str("x"),
//		token.I32(5),
//		token.MapEnd{},
//	}
//
// Atomic tokens stand alone. Bracketing tokens (Seq, Tuple, TupleStruct,
// TupleVariant, Map, Struct, StructVariant) open a scope that the matching
// *End token closes; scopes nest like a stack. Some, NewtypeStruct and
// NewtypeVariant prefix exactly one following value. Field appears only
// directly inside Struct and StructVariant scopes, before each field value.
//
// Tokens carry no behavior beyond Kind, String and structural Equal.
package token
