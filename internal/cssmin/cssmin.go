// Package cssmin compresses stylesheets with an ordered sequence of text
// passes. It is not a parser: input it does not understand is passed
// through unchanged.
//
// Comments, strings and payloads that must not be touched (data URIs,
// calc() arguments, IE filters) are swapped for opaque placeholders before
// any folding happens and are put back at the end.
package cssmin

import (
	"fmt"
	"io"
)

// Result reports the sizes of one compression in bytes.
type Result struct {
	InputSize  int
	OutputSize int
}

// Compress returns the minified form of css. A positive lineBreak starts a
// new line after the first "}" past that column; zero keeps everything on
// one line.
func Compress(css string, lineBreak int) string {
	t := &tokens{}

	css = t.extractComments(css)
	css = t.preserveFunctions(css)
	css = t.preserveStrings(css)
	css = t.resolveComments(css)
	css = t.preserveBackslashNine(css)

	css = collapseWhitespace(css)
	css = removeSpaceBefore(css)
	css = firstLineSpace(css)
	css = trimCommentEnd(css)
	css = hoistCharset(css)
	css = lowercaseKeywords(css)
	css = mediaParenSpace(css)
	css = removeSpaceAfter(css)
	css = removeLastSemicolon(css)

	css = foldZeroUnits(css)
	css = foldZeroUnitsInGroups(css)
	css = dropZeroFraction(css)
	css = collapseZeroShorthands(css)
	css = expandPositionZero(css)
	css = dropLeadingZero(css)

	css = rgbToHex(css)
	css = shortenHexColors(css)
	css = nameColors(css)
	css = noneToZero(css)
	css = shortenAlpha(css)

	css = removeEmptyRules(css)
	if lineBreak > 0 {
		css = breakLines(css, lineBreak)
	}
	css = collapseSemicolons(css)

	// calc() payloads come back first so their operators can be spaced.
	// Strings and other opaque tokens stay hidden from the spacing passes.
	css = t.restore(css, func(k tokenKind) bool { return k == kindCalc })
	css = spaceCalcOperators(css)
	css = separateTokens(css)
	css = spacePlusInParens(css)
	css = compactCustomProperties(css)
	css = t.restore(css, func(tokenKind) bool { return true })

	return trimControl(css)
}

// Minify reads a whole stylesheet from r and writes its compressed form
// to w.
func Minify(w io.Writer, r io.Reader, lineBreak int) (Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("reading stylesheet: %w", err)
	}
	out := Compress(string(src), lineBreak)
	if _, err := io.WriteString(w, out); err != nil {
		return Result{}, fmt.Errorf("writing stylesheet: %w", err)
	}
	return Result{InputSize: len(src), OutputSize: len(out)}, nil
}
