package de

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Error is a deserialization failure raised by decode logic. Its text is
// the whole message; nothing is prefixed or wrapped.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Custom builds an Error from a format string.
func Custom(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// InvalidType reports that the input held a value of the wrong kind.
// Example: InvalidType(UnexpectedBool(true), "i32") reads
// "invalid type: boolean `true`, expected i32".
func InvalidType(unexp Unexpected, exp string) error {
	return Custom("invalid type: %s, expected %s", unexp, exp)
}

// InvalidValue reports that the input held the right kind with an
// unacceptable value.
func InvalidValue(unexp Unexpected, exp string) error {
	return Custom("invalid value: %s, expected %s", unexp, exp)
}

// InvalidLength reports a sequence or map with the wrong number of
// elements. exp describes what was wanted, e.g. "2" or "a tuple of size 2".
func InvalidLength(n int, exp string) error {
	return Custom("invalid length %d, expected %s", n, exp)
}

// UnknownVariant reports an enum variant name that is not in expected.
func UnknownVariant(variant string, expected []string) error {
	if len(expected) == 0 {
		return Custom("unknown variant `%s`, there are no variants", variant)
	}
	return Custom("unknown variant `%s`, expected %s", variant, oneOf(expected))
}

// UnknownField reports a struct field name that is not in expected.
func UnknownField(field string, expected []string) error {
	if len(expected) == 0 {
		return Custom("unknown field `%s`, there are no fields", field)
	}
	return Custom("unknown field `%s`, expected %s", field, oneOf(expected))
}

func MissingField(field string) error {
	return Custom("missing field `%s`", field)
}

func DuplicateField(field string) error {
	return Custom("duplicate field `%s`", field)
}

func oneOf(names []string) string {
	switch len(names) {
	case 1:
		return "`" + names[0] + "`"
	case 2:
		return "`" + names[0] + "` or `" + names[1] + "`"
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return "one of " + strings.Join(quoted, ", ")
}

// Unexpected describes what was found in the input when it did not match.
type Unexpected struct {
	desc string
}

func (u Unexpected) String() string { return u.desc }

var (
	UnexpectedBytes          = Unexpected{"byte array"}
	UnexpectedUnit           = Unexpected{"unit value"}
	UnexpectedOption         = Unexpected{"Option value"}
	UnexpectedNewtypeStruct  = Unexpected{"newtype struct"}
	UnexpectedSeq            = Unexpected{"sequence"}
	UnexpectedMap            = Unexpected{"map"}
	UnexpectedEnum           = Unexpected{"enum"}
	UnexpectedUnitVariant    = Unexpected{"unit variant"}
	UnexpectedNewtypeVariant = Unexpected{"newtype variant"}
	UnexpectedTupleVariant   = Unexpected{"tuple variant"}
	UnexpectedStructVariant  = Unexpected{"struct variant"}
)

func UnexpectedBool(v bool) Unexpected {
	return Unexpected{fmt.Sprintf("boolean `%t`", v)}
}

func UnexpectedSigned(v int64) Unexpected {
	return Unexpected{fmt.Sprintf("integer `%d`", v)}
}

func UnexpectedUnsigned(v uint64) Unexpected {
	return Unexpected{fmt.Sprintf("integer `%d`", v)}
}

// UnexpectedFloat always shows a decimal point for finite values, so 1
// reads as "floating point `1.0`".
func UnexpectedFloat(v float64) Unexpected {
	var s string
	switch {
	case math.IsNaN(v):
		s = "NaN"
	case math.IsInf(v, 1):
		s = "inf"
	case math.IsInf(v, -1):
		s = "-inf"
	default:
		s = strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
	}
	return Unexpected{"floating point `" + s + "`"}
}

func UnexpectedChar(v rune) Unexpected {
	return Unexpected{"character `" + string(v) + "`"}
}

func UnexpectedStr(v string) Unexpected {
	return Unexpected{"string " + strconv.Quote(v)}
}

// UnexpectedOther describes anything the named kinds do not cover.
func UnexpectedOther(desc string) Unexpected {
	return Unexpected{desc}
}
