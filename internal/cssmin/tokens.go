package cssmin

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	preservedPrefix = "___YUICSSMIN_PRESERVED_TOKEN_"
	commentPrefix   = "___YUICSSMIN_PRESERVE_CANDIDATE_COMMENT_"
	placeholderEnd  = "___"
)

// tokenKind tells the final restoration which tokens carry calc()
// payloads. Those come back before the calc spacing passes; everything
// else stays opaque until the very end.
type tokenKind int

const (
	kindOpaque tokenKind = iota
	kindCalc
)

// tokens holds the per-run tables. A fresh value is used for every
// compression so concurrent runs never share state.
type tokens struct {
	preserved []string
	kinds     []tokenKind
	comments  []string
}

func preservedPlaceholder(i int) string {
	return preservedPrefix + strconv.Itoa(i) + placeholderEnd
}

func commentPlaceholder(i int) string {
	return commentPrefix + strconv.Itoa(i) + placeholderEnd
}

// preserve appends s to the table and returns its placeholder.
func (t *tokens) preserve(s string, kind tokenKind) string {
	t.preserved = append(t.preserved, s)
	t.kinds = append(t.kinds, kind)
	return preservedPlaceholder(len(t.preserved) - 1)
}

// extractComments swaps the body of every /* ... */ block for a comment
// candidate placeholder. An unterminated comment runs to the end of input.
func (t *tokens) extractComments(css string) string {
	start := 0
	for {
		i := strings.Index(css[start:], "/*")
		if i < 0 {
			return css
		}
		start += i
		end := strings.Index(css[start+2:], "*/")
		if end < 0 {
			end = len(css)
		} else {
			end += start + 2
		}
		t.comments = append(t.comments, css[start+2:end])
		css = css[:start+2] + commentPlaceholder(len(t.comments)-1) + css[end:]
		start += 2
	}
}

// restoreComments puts the original comment text back into s. Strings and
// protected payloads may not have their content changed by comment removal.
func (t *tokens) restoreComments(s string) string {
	if !strings.Contains(s, commentPrefix) {
		return s
	}
	for i, c := range t.comments {
		s = strings.ReplaceAll(s, commentPlaceholder(i), c)
	}
	return s
}

var matrixName = "progid:DXImageTransform.Microsoft.Matrix"

var (
	svgDataURLRe   = regexp.MustCompile(`(?i)url\(\s*(["']?)data:\s*image/svg\+xml`)
	otherDataURLRe = regexp.MustCompile(`(?i)url\(\s*(["']?)data:\s*`)
	calcRe         = regexp.MustCompile(`(?i)calc\(\s*(["']?)`)
	matrixRe       = regexp.MustCompile(`(?i)progid:DXImageTransform.Microsoft.Matrix\s*(["']?)`)
)

// preserveFunctions protects payloads that later passes would damage.
func (t *tokens) preserveFunctions(css string) string {
	css = t.preserveCall(css, "url", svgDataURLRe, nil, false, kindOpaque)
	css = t.preserveCall(css, "url", otherDataURLRe, isSVGPayload, true, kindOpaque)
	css = t.preserveCall(css, "calc", calcRe, nil, false, kindCalc)
	return t.preserveCall(css, matrixName, matrixRe, nil, false, kindOpaque)
}

func isSVGPayload(rest string) bool {
	return len(rest) >= len("image/svg+xml") && strings.EqualFold(rest[:len("image/svg+xml")], "image/svg+xml")
}

// preserveCall finds every match of re, locates the end of the call and
// moves its payload into the preserved table, leaving
// name(___YUICSSMIN_PRESERVED_TOKEN_n___) behind. The first submatch of
// re is the quote that must close the payload; without one the payload
// ends at the next unescaped ")". A match whose remaining input satisfies
// reject is given up on its trailing whitespace or skipped. When no
// terminator exists the matched text is kept as is.
func (t *tokens) preserveCall(css, name string, re *regexp.Regexp, reject func(string) bool, stripSpace bool, kind tokenKind) string {
	var b strings.Builder
	maxIndex := len(css) - 1
	appendIndex := 0

	for _, m := range re.FindAllStringSubmatchIndex(css, -1) {
		matchStart, matchEnd := m[0], m[1]
		if matchStart < appendIndex {
			continue
		}
		if reject != nil && reject(css[matchEnd:]) {
			if matchEnd == matchStart || !isSpace(css[matchEnd-1]) {
				continue
			}
			matchEnd--
		}

		terminator := ")"
		if m[2] >= 0 && m[3] > m[2] {
			terminator = css[m[2]:m[3]]
		}

		found := false
		endIndex := matchEnd - 1
		for !found && endIndex+1 <= maxIndex {
			next := strings.Index(css[endIndex+1:], terminator)
			if next < 0 {
				break
			}
			endIndex += next + 1
			if css[endIndex-1] == '\\' {
				continue
			}
			found = true
			if terminator != ")" {
				paren := strings.Index(css[endIndex:], ")")
				if paren < 0 {
					found = false
					break
				}
				endIndex += paren
			}
		}

		startIndex := matchStart + len(name) + 1
		b.WriteString(css[appendIndex:matchStart])
		if found && startIndex <= endIndex {
			token := t.restoreComments(css[startIndex:endIndex])
			if stripSpace {
				token = whitespaceRe.ReplaceAllString(token, "")
			}
			b.WriteString(name + "(" + t.preserve(token, kind) + ")")
			appendIndex = endIndex + 1
		} else {
			b.WriteString(css[matchStart:matchEnd])
			appendIndex = matchEnd
		}
	}

	b.WriteString(css[appendIndex:])
	return b.String()
}

var (
	stringRe = regexp.MustCompile(`"(?:[^"\r\n\f\\]|\\[^0-9a-fA-F]|\\[0-9a-fA-F]{1,6}(?:\r\n|[ \t\r\n\f])?)*"|'(?:[^'\r\n\f\\]|\\[^0-9a-fA-F]|\\[0-9a-fA-F]{1,6}(?:\r\n|[ \t\r\n\f])?)*'`)
	alphaRe  = regexp.MustCompile(`(?i)progid:DXImageTransform.Microsoft.Alpha\(Opacity=`)
)

// preserveStrings replaces quoted strings with placeholders, keeping the
// quote characters around them.
func (t *tokens) preserveStrings(css string) string {
	return stringRe.ReplaceAllStringFunc(css, func(s string) string {
		quote := s[:1]
		body := t.restoreComments(s[1 : len(s)-1])
		body = alphaRe.ReplaceAllString(body, "alpha(opacity=")
		return quote + t.preserve(body, kindOpaque) + quote
	})
}

// resolveComments decides the fate of every comment candidate: bang
// comments survive, the Mac/IE5 backslash hack becomes /*\*/ followed by
// /**/, an empty comment after ">" is kept for IE7, and the rest go away.
func (t *tokens) resolveComments(css string) string {
	for i := 0; i < len(t.comments); i++ {
		token := t.comments[i]
		placeholder := commentPlaceholder(i)

		if strings.HasPrefix(token, "!") {
			css = strings.ReplaceAll(css, placeholder, t.preserve(token, kindOpaque))
			continue
		}

		if strings.HasSuffix(token, "\\") {
			css = strings.ReplaceAll(css, placeholder, t.preserve("\\", kindOpaque))
			i++
			css = strings.ReplaceAll(css, commentPlaceholder(i), t.preserve("", kindOpaque))
			continue
		}

		if token == "" {
			if idx := strings.Index(css, placeholder); idx > 2 && css[idx-3] == '>' {
				css = strings.ReplaceAll(css, placeholder, t.preserve("", kindOpaque))
			}
		}

		css = strings.ReplaceAll(css, "/*"+placeholder+"*/", "")
		css = strings.TrimSuffix(css, "/*"+placeholder)
	}
	return css
}

// preserveBackslashNine keeps the IE \9 hack away from whitespace folding.
func (t *tokens) preserveBackslashNine(css string) string {
	if !strings.Contains(css, `\9`) {
		return css
	}
	return strings.ReplaceAll(css, `\9`, t.preserve(`\9`, kindOpaque))
}

// restore substitutes placeholders of the accepted kinds. A token may
// itself contain placeholders created before it, so restoration repeats
// until nothing restorable is left.
func (t *tokens) restore(css string, accept func(tokenKind) bool) string {
	for pass := 0; pass <= len(t.preserved); pass++ {
		if !strings.Contains(css, preservedPrefix) {
			break
		}
		before := css
		for i, tok := range t.preserved {
			if accept(t.kinds[i]) {
				css = strings.ReplaceAll(css, preservedPlaceholder(i), tok)
			}
		}
		if css == before {
			break
		}
	}
	return css
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
