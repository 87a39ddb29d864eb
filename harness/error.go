package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tokentest/token"
)

// Failure categorizes why a check did not pass.
type Failure string

const (
	// FailExhausted indicates the token cursor ran out while a call still
	// needed a token.
	FailExhausted Failure = "EXHAUSTED"

	// FailMismatch indicates the next token differs from what the call
	// declared (kind, width, payload, name, index or variant).
	FailMismatch Failure = "MISMATCH"

	// FailBracket indicates a close token that does not end the innermost
	// open scope, or a close where a value was required.
	FailBracket Failure = "BRACKET"

	// FailLength indicates a declared length that disagrees with the number
	// of elements actually written or read.
	FailLength Failure = "LENGTH"

	// FailLeftover indicates unconsumed tokens once the value logic was done.
	FailLeftover Failure = "LEFTOVER"

	// FailUnclosed indicates the value logic returned with a scope still open.
	FailUnclosed Failure = "UNCLOSED"

	// FailValue indicates a decoded value that is not equal to the expected one.
	FailValue Failure = "VALUE"

	// FailUnexpectedSuccess indicates an error was expected but none occurred.
	FailUnexpectedSuccess Failure = "UNEXPECTED_SUCCESS"

	// FailWrongError indicates an error occurred with different text than expected.
	FailWrongError Failure = "WRONG_ERROR"

	// FailCustom indicates the value logic raised its own error.
	FailCustom Failure = "CUSTOM"
)

// Error is returned by Serializer and Deserializer to the value logic that
// drives them. Error() is the bare message, so value logic can pass it
// through unchanged and error expectations can compare it verbatim.
type Error struct {
	// Kind identifies the failure category.
	Kind Failure

	// Message is the full error text.
	Message string

	// Index is the token position the failure refers to.
	Index int

	// Expected describes what the token sequence (or caller) wanted.
	Expected string

	// Actual describes what was found or attempted.
	Actual string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Failure, index int, expected, actual string, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Index:    index,
		Expected: expected,
		Actual:   actual,
	}
}

// IsFailure reports whether err carries the given failure kind.
// Uses errors.As to handle wrapped errors.
func IsFailure(err error, kind Failure) bool {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind == kind
	}
	var ae *AssertionError
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// AssertionError is returned when a check fails.
// It includes the token listing with the point of divergence marked.
type AssertionError struct {
	Check    string // which driver failed, e.g. "ser_tokens"
	Kind     Failure
	Index    int    // token position of the divergence, -1 if none
	Expected string // human-readable expected outcome
	Actual   string // human-readable actual outcome
	Diff     string // value diff for FailValue
	Err      error  // underlying error, if any
	Tokens   []token.Token
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s (%s)\n", e.Check, e.Kind)
	if e.Err != nil {
		fmt.Fprintf(&buf, "  Error: %s\n", e.Err)
	}
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Diff != "" {
		fmt.Fprintf(&buf, "\nDiff (-want +got):\n%s", e.Diff)
	}

	fmt.Fprintf(&buf, "\nTokens:\n")
	buf.WriteString(token.FormatMarked(e.Tokens, e.Index))

	return buf.String()
}

func (e *AssertionError) Unwrap() error { return e.Err }

// assertionFrom wraps an error raised during a check. Harness errors keep
// their kind and position; anything else came from the value logic.
func assertionFrom(check string, tokens []token.Token, pos int, err error) *AssertionError {
	var he *Error
	if errors.As(err, &he) {
		return &AssertionError{
			Check:    check,
			Kind:     he.Kind,
			Index:    he.Index,
			Expected: he.Expected,
			Actual:   he.Actual,
			Err:      err,
			Tokens:   tokens,
		}
	}
	expected := "success"
	if pos < len(tokens) {
		expected = tokens[pos].String()
	}
	return &AssertionError{
		Check:    check,
		Kind:     FailCustom,
		Index:    pos,
		Expected: expected,
		Actual:   err.Error(),
		Err:      err,
		Tokens:   tokens,
	}
}
