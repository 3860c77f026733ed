package cssmin

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	pseudoColonRe  = regexp.MustCompile(`(^|\})((^|([^{:])+):)+([^{]*\{)`)
	spaceBeforeRe  = regexp.MustCompile(`\s+([!{};:>+()\],])`)
	firstLineRe    = regexp.MustCompile(`(?i)::?first-(line|letter)([{,])`)
	charsetHoistRe = regexp.MustCompile(`(?i)^(.*)(@charset)( "[^"]*";)`)
	charsetDedupRe = regexp.MustCompile(`(?i)^((\s*)(@charset)( [^;]+;\s*))+`)
	atRuleRe       = regexp.MustCompile(`(?i)@(font-face|import|(?:-(?:atsc|khtml|moz|ms|o|wap|webkit)-)?keyframe|media|page|namespace)`)
	pseudoRe       = regexp.MustCompile(`(?i):(active|after|before|checked|disabled|empty|enabled|first-(?:child|of-type)|focus|hover|last-(?:child|of-type)|link|only-(?:child|of-type)|root|:selection|target|visited)`)
	pseudoFuncRe   = regexp.MustCompile(`(?i):(lang|not|nth-child|nth-last-child|nth-last-of-type|nth-of-type|(?:-(?:moz|webkit)-)?any)\(`)
	valueFuncRe    = regexp.MustCompile(`(?i)([:,( ]\s*)(attr|color-stop|from|rgba|to|url|(?:-(?:atsc|khtml|moz|ms|o|wap|webkit)-)?(?:calc|max|min|(?:repeating-)?(?:linear|radial)-gradient)|-webkit-gradient)`)
	andParenRe     = regexp.MustCompile(`(?i)\band\(`)
	orParenRe      = regexp.MustCompile(`(?i)\bor\(`)
	spaceAfterRe   = regexp.MustCompile(`([!{}:;>+(\[,])\s+`)
	semicolonEndRe = regexp.MustCompile(`;+\}`)
	semicolonsRe   = regexp.MustCompile(`;;+`)
	fractionRe     = regexp.MustCompile(`\(([\-A-Za-z]+):([0-9]+)/([0-9]+)\)`)
	emptyRuleRe    = regexp.MustCompile(`[^}{/;]+\{\}`)
)

const (
	pseudoColonSentinel = "___YUICSSMIN_PSEUDOCLASSCOLON___"
	fractionSentinel    = "___YUI_QUERY_FRACTION___"
)

// replaceSubmatchFunc is regexp.ReplaceAllStringFunc with access to the
// submatches. Groups that did not participate are empty.
func replaceSubmatchFunc(re *regexp.Regexp, s string, fn func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = s[m[2*i]:m[2*i+1]]
			}
		}
		b.WriteString(fn(groups))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// replaceUnless works like replaceSubmatchFunc but leaves a match
// untouched when skip reports true for the text in front of it. The
// search then resumes one byte past the rejected match start.
func replaceUnless(re *regexp.Regexp, s string, skip func(before string) bool, fn func(groups []string) string) string {
	var b strings.Builder
	last, from := 0, 0
	for from <= len(s) {
		m := re.FindStringSubmatchIndex(s[from:])
		if m == nil {
			break
		}
		for i := range m {
			if m[i] >= 0 {
				m[i] += from
			}
		}
		if skip(s[:m[0]]) {
			from = m[0] + 1
			continue
		}
		b.WriteString(s[last:m[0]])
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = s[m[2*i]:m[2*i+1]]
			}
		}
		b.WriteString(fn(groups))
		last = m[1]
		from = m[1]
		if m[1] == m[0] {
			from++
		}
	}
	b.WriteString(s[last:])
	return b.String()
}

// afterFold returns a skip func matching text that ends with any of the
// suffixes, ignoring case.
func afterFold(suffixes ...string) func(string) bool {
	return func(s string) bool {
		for _, suffix := range suffixes {
			if len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
				return true
			}
		}
		return false
	}
}

// fixedPoint applies fn until the text stops changing.
func fixedPoint(css string, fn func(string) string) string {
	for {
		next := fn(css)
		if next == css {
			return next
		}
		css = next
	}
}

func collapseWhitespace(css string) string {
	return whitespaceRe.ReplaceAllString(css, " ")
}

// removeSpaceBefore strips spaces in front of punctuation. Pseudo-class
// colons in selectors are hidden first so "p :link" keeps its space.
func removeSpaceBefore(css string) string {
	css = pseudoColonRe.ReplaceAllStringFunc(css, func(s string) string {
		return strings.ReplaceAll(s, ":", pseudoColonSentinel)
	})
	css = spaceBeforeRe.ReplaceAllString(css, "${1}")
	css = strings.ReplaceAll(css, "!important", " !important")
	return strings.ReplaceAll(css, pseudoColonSentinel, ":")
}

// firstLineSpace normalizes :first-line and :first-letter to their single
// colon lowercase form. Old IE needs a space before a following selector.
func firstLineSpace(css string) string {
	return replaceSubmatchFunc(firstLineRe, css, func(g []string) string {
		if g[2] == "," {
			return ":first-" + strings.ToLower(g[1]) + " ,"
		}
		return ":first-" + strings.ToLower(g[1]) + g[2]
	})
}

func trimCommentEnd(css string) string {
	return strings.ReplaceAll(css, "*/ ", "*/")
}

// hoistCharset moves @charset to the top and keeps only the first one.
func hoistCharset(css string) string {
	css = replaceSubmatchFunc(charsetHoistRe, css, func(g []string) string {
		return strings.ToLower(g[2]) + g[3] + g[1]
	})
	return replaceSubmatchFunc(charsetDedupRe, css, func(g []string) string {
		return g[2] + strings.ToLower(g[3]) + g[4]
	})
}

func lowercaseKeywords(css string) string {
	css = replaceSubmatchFunc(atRuleRe, css, func(g []string) string {
		return "@" + strings.ToLower(g[1])
	})
	css = replaceSubmatchFunc(pseudoRe, css, func(g []string) string {
		return ":" + strings.ToLower(g[1])
	})
	css = normalizeSpace(css)
	css = replaceSubmatchFunc(pseudoFuncRe, css, func(g []string) string {
		return ":" + strings.ToLower(g[1]) + "("
	})
	css = normalizeSpace(css)
	return replaceSubmatchFunc(valueFuncRe, css, func(g []string) string {
		return g[1] + strings.ToLower(g[2])
	})
}

// mediaParenSpace keeps "and (" in media queries such as
// "@media screen and (-webkit-min-device-pixel-ratio:0)".
func mediaParenSpace(css string) string {
	css = andParenRe.ReplaceAllString(css, "and (")
	return orParenRe.ReplaceAllString(css, "or (")
}

func removeSpaceAfter(css string) string {
	return spaceAfterRe.ReplaceAllString(css, "${1}")
}

func removeLastSemicolon(css string) string {
	return semicolonEndRe.ReplaceAllString(css, "}")
}

// removeEmptyRules drops rules without declarations. Ratio fractions in
// media features are hidden first so their "/" is not taken for the end
// of a comment.
func removeEmptyRules(css string) string {
	css = fractionRe.ReplaceAllString(css, "(${1}:${2}"+fractionSentinel+"${3})")
	css = emptyRuleRe.ReplaceAllString(css, "")
	return strings.ReplaceAll(css, fractionSentinel, "/")
}

// breakLines inserts a newline after a "}" once the current line is
// longer than column bytes.
func breakLines(css string, column int) string {
	var b strings.Builder
	b.Grow(len(css) + len(css)/column)
	lineStart, pos := 0, 0
	for i := 0; i < len(css); i++ {
		c := css[i]
		b.WriteByte(c)
		pos++
		if c == '}' && pos-lineStart > column {
			b.WriteByte('\n')
			lineStart = pos
			pos++
		}
	}
	return b.String()
}

func collapseSemicolons(css string) string {
	return semicolonsRe.ReplaceAllString(css, ";")
}

// normalizeSpace collapses whitespace runs to one space and trims the
// result. A no-break space is kept as a plain space without collapsing.
func normalizeSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if isJavaSpace(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		if r == '\u00a0' {
			r = ' '
		}
		b.WriteRune(r)
	}
	return trimControl(b.String())
}

func isJavaSpace(r rune) bool {
	switch r {
	case '\u00a0', '\u2007', '\u202f':
		return false
	case '\u001c', '\u001d', '\u001e', '\u001f':
		return true
	}
	return unicode.IsSpace(r)
}

// trimControl removes leading and trailing spaces and control characters.
func trimControl(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })
}
