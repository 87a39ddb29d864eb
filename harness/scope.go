package harness

import (
	"fmt"

	"github.com/roach88/tokentest/token"
)

// scope is one open bracket on a producer or consumer stack.
type scope struct {
	open  token.Token
	id    int // unique per stack, tells apart scopes reopened at one depth
	index int // position of the open token
	len   int // declared count, -1 when the open token carries no hint
	count int // elements, entries or fields seen so far
}

// scopeRef is what a continuation holds on to: the depth it was opened
// at and the id of that scope.
type scopeRef struct {
	depth int
	id    int
}

// newScope builds the scope for the open token t found at index. Only Seq
// and Map may omit their length; a negative declared length fails.
func newScope(t token.Token, index, id int) (scope, error) {
	n, declared := declaredLen(t)
	if declared && n < 0 {
		return scope{}, newError(FailLength, index, "a length of 0 or more", t.String(),
			"%s declares a negative length", t)
	}
	if !declared {
		n = -1
	}
	return scope{open: t, id: id, index: index, len: n}, nil
}

func (sc *scope) kind() token.Kind { return sc.open.Kind() }

func declaredLen(t token.Token) (int, bool) {
	switch t := t.(type) {
	case token.Seq:
		return t.Len.Get()
	case token.Map:
		return t.Len.Get()
	case token.Tuple:
		return t.Len, true
	case token.TupleStruct:
		return t.Len, true
	case token.TupleVariant:
		return t.Len, true
	case token.Struct:
		return t.Len, true
	case token.StructVariant:
		return t.Len, true
	}
	return -1, false
}

// scopeError reports a continuation used out of turn. ref names the
// scope the caller holds, stack the current open scopes.
func scopeError(stack []scope, ref scopeRef, pos int, op string) error {
	top := len(stack) - 1
	actual := "no open scope"
	if top >= 0 {
		actual = stack[top].open.String()
	}
	if ref.depth < 0 || ref.depth > top || stack[ref.depth].id != ref.id {
		return newError(FailBracket, pos, "an open scope", actual,
			"%s called on a scope that is already closed", op)
	}
	return newError(FailBracket, pos, fmt.Sprintf("scope at depth %d", ref.depth), actual,
		"%s called on a scope that is not the innermost open scope", op)
}

// current reports whether ref is the innermost open scope.
func current(stack []scope, ref scopeRef) bool {
	top := len(stack) - 1
	return ref.depth == top && top >= 0 && stack[top].id == ref.id
}

func (sc *scope) unit() string {
	switch sc.kind() {
	case token.KindMap:
		return "entries"
	case token.KindStruct, token.KindStructVariant:
		return "fields"
	}
	return "elements"
}

// checkLen compares the count against the declared length. verb is
// "serialized" or "deserialized".
func (sc *scope) checkLen(verb string) error {
	if sc.len < 0 || sc.count == sc.len {
		return nil
	}
	return newError(FailLength, sc.index,
		fmt.Sprintf("%d %s", sc.len, sc.unit()),
		fmt.Sprintf("%d %s", sc.count, sc.unit()),
		"%s declared %d %s but %d were %s", sc.open, sc.len, sc.unit(), sc.count, verb)
}
