package token

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders tokens one per line with their index, indented by scope
// depth.
func Format(tokens []Token) string {
	return FormatMarked(tokens, -1)
}

// FormatMarked is Format with a ">" marker on the line at index mark.
// A mark at len(tokens) renders an extra end-of-tokens line.
func FormatMarked(tokens []Token, mark int) string {
	var buf strings.Builder
	width := len(strconv.Itoa(len(tokens)))
	depth := 0
	for i, t := range tokens {
		if t.Kind().IsClose() && depth > 0 {
			depth--
		}
		prefix := "  "
		if i == mark {
			prefix = "> "
		}
		fmt.Fprintf(&buf, "%s[%*d] %s%s\n", prefix, width, i, strings.Repeat("  ", depth), t)
		if t.Kind().IsOpen() {
			depth++
		}
	}
	if mark >= len(tokens) {
		fmt.Fprintf(&buf, "> [%*d] <end of tokens>\n", width, len(tokens))
	}
	return buf.String()
}
