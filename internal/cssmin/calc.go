package cssmin

import (
	"regexp"
	"strings"
)

var (
	calcSpanRe     = regexp.MustCompile(`calc\([^;}]*\)`)
	varDashRe      = regexp.MustCompile(`var\(-\s-\s`)
	varAfterParen  = regexp.MustCompile(`\)(var\(--)`)
	parenWordRe    = regexp.MustCompile(`\)([a-zA-Z0-9])`)
	parenGroupRe   = regexp.MustCompile(`\(([^)]*?)\)`)
	plusRe         = regexp.MustCompile(`\s*\+\s*`)
	customPropRe   = regexp.MustCompile(`var\(--[^;})]*\)`)
	calcOperators  = []byte{'+', '-', '*', '/'}
	calcOperandEnd = "-|%)pxemrvhw0123456789"
)

// spaceCalcOperators puts back the spaces calc() needs around its
// operators, which earlier passes removed.
func spaceCalcOperators(css string) string {
	return calcSpanRe.ReplaceAllStringFunc(css, func(s string) string {
		s = whitespaceRe.ReplaceAllString(s, "")
		for _, op := range calcOperators {
			s = spaceOperator(s, op)
		}
		s = varDashRe.ReplaceAllString(s, "var(--")
		return varAfterParen.ReplaceAllString(s, ") ${1}")
	})
}

// spaceOperator surrounds op with spaces wherever it follows the end of
// an operand. The check looks at the input, not at what was written.
func spaceOperator(s string, op byte) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if s[i] == op && i > 0 && strings.IndexByte(calcOperandEnd, s[i-1]) >= 0 {
			b.WriteByte(' ')
			b.WriteByte(op)
			b.WriteByte(' ')
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// separateTokens keeps ")" and "calc" from gluing onto a neighbouring word.
func separateTokens(css string) string {
	css = parenWordRe.ReplaceAllString(css, ") ${1}")

	var b strings.Builder
	b.Grow(len(css))
	for i := 0; i < len(css); i++ {
		if i > 0 && isAlnum(css[i-1]) && strings.HasPrefix(css[i:], "calc") {
			b.WriteByte(' ')
		}
		b.WriteByte(css[i])
	}
	return b.String()
}

// spacePlusInParens writes "a + b" for every "+" inside a parenthesized
// group that is not a url() argument.
func spacePlusInParens(css string) string {
	return replaceUnless(parenGroupRe, css, afterFold("url"), func(g []string) string {
		return "(" + plusRe.ReplaceAllString(g[1], " + ") + ")"
	})
}

// compactCustomProperties removes whitespace from var(--name) references.
func compactCustomProperties(css string) string {
	return customPropRe.ReplaceAllStringFunc(css, func(s string) string {
		return whitespaceRe.ReplaceAllString(s, "")
	})
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
