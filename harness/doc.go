// Package harness checks encode and decode logic against an expected token
// sequence.
//
// A Serializer stands in for a real output format: every call made by the
// value's encode logic is matched against the next expected token, and the
// first divergence fails. A Deserializer stands in for a real input format:
// it replays the tokens to the value's decode logic, which pulls them one
// call at a time.
//
// # Drivers
//
//	harness.CheckSerTokens(v, tokens)           // encode only
//	harness.CheckDeTokens[T](want, tokens)      // decode only
//	harness.CheckTokens[T](v, tokens)           // both directions
//	harness.CheckSerTokensError(v, tokens, msg) // encode must fail with msg
//	harness.CheckDeTokensError[T](tokens, msg)  // decode must fail with msg
//
// Each returns *AssertionError on failure, which renders the token listing
// with the divergence marked:
//
//	Assertion failed: ser_tokens (MISMATCH)
//	  Error: expected Bool(true) but serialized as I32(1)
//	  Expected: Bool(true)
//	  Actual: I32(1)
//
//	Tokens:
//	> [0] Bool(true)
//
// The Assert variants take a testing.TB and call t.Fatal instead.
//
// # Modes
//
// Checks run in compact mode unless WithHumanReadable(true) is given.
// Readable[T] and Compact[T] override the mode for one value and
// everything nested inside it.
//
// # Fixture Scenarios
//
// Scenarios are YAML documents:
//
//	name: ordered_map
//	description: "map entries keep their order"
//	tokens:
//	  - map: {len: 2}
//	  - char: b
//	  - i32: 2
//	  - char: a
//	  - i32: 1
//	  - map_end
//
// Run decodes the tokens into an untyped tree and serializes it back; both
// directions must reproduce the sequence exactly. With expect_error set,
// decoding must fail with that message instead.
package harness
