package harness

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/tokentest/de"
	"github.com/roach88/tokentest/ser"
	"github.com/roach88/tokentest/token"
)

// Driver names reported in AssertionError.Check.
const (
	checkSerTokens      = "ser_tokens"
	checkDeTokens       = "de_tokens"
	checkTokens         = "tokens"
	checkSerTokensError = "ser_tokens_error"
	checkDeTokensError  = "de_tokens_error"
	checkDecodeTokens   = "decode_tokens"
)

// Decodable is satisfied by *T when T decodes itself.
type Decodable[T any] interface {
	*T
	de.Deserialize
}

// Codable is satisfied by *T when T both encodes and decodes itself.
type Codable[T any] interface {
	*T
	de.Deserialize
	ser.Serialize
}

// CheckSerTokens drives v's encode logic against tokens. Every emitted
// token must match, and every expected token must be emitted.
func CheckSerTokens(v ser.Serialize, tokens []token.Token, opts ...Option) error {
	return checkSer(checkSerTokens, v, tokens, opts)
}

func checkSer(check string, v ser.Serialize, tokens []token.Token, opts []Option) error {
	s := NewSerializer(tokens, opts...)
	if err := v.Serialize(s); err != nil {
		return assertionFrom(check, tokens, s.pos, err)
	}
	if err := s.finish(); err != nil {
		return assertionFrom(check, tokens, s.pos, err)
	}
	return nil
}

// DecodeTokens runs T's decode logic over tokens and returns the result.
// All tokens must be consumed.
func DecodeTokens[T any, P Decodable[T]](tokens []token.Token, opts ...Option) (T, error) {
	return decode[T, P](checkDecodeTokens, tokens, opts)
}

func decode[T any, P Decodable[T]](check string, tokens []token.Token, opts []Option) (T, error) {
	var v T
	d := NewDeserializer(tokens, opts...)
	if err := P(&v).Deserialize(d); err != nil {
		return v, assertionFrom(check, tokens, d.pos, err)
	}
	if err := d.finish(); err != nil {
		return v, assertionFrom(check, tokens, d.pos, err)
	}
	return v, nil
}

// CheckDeTokens decodes tokens into a T and compares it with want.
//
// Equality uses an Equal(T) bool method when T has one, and
// assert.ObjectsAreEqual otherwise.
func CheckDeTokens[T any, P Decodable[T]](want T, tokens []token.Token, opts ...Option) error {
	return checkDe[T, P](checkDeTokens, want, tokens, opts)
}

func checkDe[T any, P Decodable[T]](check string, want T, tokens []token.Token, opts []Option) error {
	got, err := decode[T, P](check, tokens, opts)
	if err != nil {
		return err
	}
	if !valuesEqual(want, got) {
		return &AssertionError{
			Check:    check,
			Kind:     FailValue,
			Index:    -1,
			Expected: fmt.Sprintf("%+v", want),
			Actual:   fmt.Sprintf("%+v", got),
			Diff:     valueDiff(want, got),
			Err:      newError(FailValue, -1, "", "", "decoded value does not equal the expected value"),
			Tokens:   tokens,
		}
	}
	return nil
}

// CheckTokens runs both directions: v must encode to exactly tokens, and
// tokens must decode to a value equal to v.
func CheckTokens[T any, P Codable[T]](v T, tokens []token.Token, opts ...Option) error {
	if err := checkSer(checkTokens, P(&v), tokens, opts); err != nil {
		return err
	}
	return checkDe[T, P](checkTokens, v, tokens, opts)
}

// CheckSerTokensError expects v's encode logic to fail with exactly
// wantErr after emitting tokens.
func CheckSerTokensError(v ser.Serialize, tokens []token.Token, wantErr string, opts ...Option) error {
	s := NewSerializer(tokens, opts...)
	err := v.Serialize(s)
	if werr := expectError(checkSerTokensError, tokens, s.pos, err, wantErr, "value serialized successfully"); werr != nil {
		return werr
	}
	if err := s.leftover(); err != nil {
		return assertionFrom(checkSerTokensError, tokens, s.pos, err)
	}
	return nil
}

// CheckDeTokensError expects T's decode logic to fail on tokens with
// exactly wantErr.
func CheckDeTokensError[T any, P Decodable[T]](tokens []token.Token, wantErr string, opts ...Option) error {
	var v T
	d := NewDeserializer(tokens, opts...)
	err := P(&v).Deserialize(d)
	if werr := expectError(checkDeTokensError, tokens, d.pos, err, wantErr, "tokens deserialized successfully"); werr != nil {
		return werr
	}
	// One token may be left if a peek caused the error.
	if d.pos < len(d.tokens) {
		d.pos++
	}
	if err := d.leftover(); err != nil {
		return assertionFrom(checkDeTokensError, tokens, d.pos, err)
	}
	return nil
}

func expectError(check string, tokens []token.Token, pos int, err error, wantErr, success string) error {
	if err == nil {
		return &AssertionError{
			Check:    check,
			Kind:     FailUnexpectedSuccess,
			Index:    pos,
			Expected: wantErr,
			Actual:   "success",
			Err: newError(FailUnexpectedSuccess, pos, wantErr, "success",
				"%s, expected error %q", success, wantErr),
			Tokens: tokens,
		}
	}
	if err.Error() != wantErr {
		return &AssertionError{
			Check:    check,
			Kind:     FailWrongError,
			Index:    pos,
			Expected: wantErr,
			Actual:   err.Error(),
			Err:      err,
			Tokens:   tokens,
		}
	}
	return nil
}

func valuesEqual[T any](want, got T) bool {
	if eq, ok := any(want).(interface{ Equal(T) bool }); ok {
		return eq.Equal(got)
	}
	return assert.ObjectsAreEqual(want, got)
}

func valueDiff(want, got any) (diff string) {
	defer func() {
		if recover() != nil {
			diff = ""
		}
	}()
	return cmp.Diff(want, got, cmp.Exporter(func(reflect.Type) bool { return true }))
}

// AssertSerTokens is CheckSerTokens that fails the test.
func AssertSerTokens(t testing.TB, v ser.Serialize, tokens []token.Token, opts ...Option) {
	t.Helper()
	if err := CheckSerTokens(v, tokens, opts...); err != nil {
		t.Fatal(err)
	}
}

// AssertDeTokens is CheckDeTokens that fails the test.
func AssertDeTokens[T any, P Decodable[T]](t testing.TB, want T, tokens []token.Token, opts ...Option) {
	t.Helper()
	if err := CheckDeTokens[T, P](want, tokens, opts...); err != nil {
		t.Fatal(err)
	}
}

// AssertTokens is CheckTokens that fails the test.
func AssertTokens[T any, P Codable[T]](t testing.TB, v T, tokens []token.Token, opts ...Option) {
	t.Helper()
	if err := CheckTokens[T, P](v, tokens, opts...); err != nil {
		t.Fatal(err)
	}
}

// AssertSerTokensError is CheckSerTokensError that fails the test.
func AssertSerTokensError(t testing.TB, v ser.Serialize, tokens []token.Token, wantErr string, opts ...Option) {
	t.Helper()
	if err := CheckSerTokensError(v, tokens, wantErr, opts...); err != nil {
		t.Fatal(err)
	}
}

// AssertDeTokensError is CheckDeTokensError that fails the test.
func AssertDeTokensError[T any, P Decodable[T]](t testing.TB, tokens []token.Token, wantErr string, opts ...Option) {
	t.Helper()
	if err := CheckDeTokensError[T, P](tokens, wantErr, opts...); err != nil {
		t.Fatal(err)
	}
}
