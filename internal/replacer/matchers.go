package replacer

import (
	"io"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Resource markers used by JSF style stylesheets.
const (
	ResourceStart = "#{resource["
	ResourceEnd   = "]}"
)

type fixedMarker struct {
	start []rune
	end   []rune
}

// FixedMarker matches tokens between two literal markers.
func FixedMarker(start, end string) Matcher {
	return &fixedMarker{start: []rune(start), end: []rune(end)}
}

// NewFixedMarkerReader replaces every start...end token of r.
func NewFixedMarkerReader(r io.Reader, start, end string, resolver TokenResolver) *Reader {
	return NewReader(r, FixedMarker(start, end), resolver)
}

func (m *fixedMarker) Lookahead() int {
	return max(len(m.start), len(m.end))
}

func (m *fixedMarker) MatchStart(src *PushbackReader) (string, bool, error) {
	got, err := src.ReadRunes(len(m.start))
	if err != nil {
		return "", false, err
	}
	if slices.Equal(got, m.start) {
		return string(m.start), true, nil
	}
	return "", false, src.Unread(got)
}

// ScanToken slides a window of len(end) runes over the input until it
// holds the end marker.
func (m *fixedMarker) ScanToken(src *PushbackReader) (string, string, bool, error) {
	var token strings.Builder
	for {
		got, err := src.ReadRunes(len(m.end))
		if err != nil {
			return token.String(), "", false, err
		}
		if slices.Equal(got, m.end) {
			log.Debugf("Extracted %s%s token %q.", string(m.start), string(m.end), token.String())
			return token.String(), string(m.end), true, nil
		}
		if len(got) == 0 {
			return token.String(), "", false, nil
		}
		token.WriteRune(got[0])
		if err := src.Unread(got[1:]); err != nil {
			return token.String(), "", false, err
		}
	}
}

func (m *fixedMarker) Replacement(_, value string) string {
	return value
}

const urlWindow = 20

var (
	urlCall         = []rune("url(")
	ignoredURLStart = []string{"https:", "http:", "blob:", "#", "data:"}
)

type cssURL struct{}

// CSSURL matches the argument of url() calls. Absolute URLs, data URIs,
// blobs and fragments are left alone without consulting the resolver.
func CSSURL() Matcher {
	return cssURL{}
}

// NewCSSURLReader replaces the relative url() arguments of r.
func NewCSSURLReader(r io.Reader, resolver TokenResolver) *Reader {
	return NewReader(r, CSSURL(), resolver)
}

func (cssURL) Lookahead() int {
	return urlWindow
}

// MatchStart looks at a window of runes for a separator followed by
// "url(". Leading tabs and quotes of the argument become part of the
// prefix.
func (cssURL) MatchStart(src *PushbackReader) (string, bool, error) {
	window, err := src.ReadRunes(urlWindow)
	if err != nil {
		return "", false, err
	}
	reject := func() (string, bool, error) {
		return "", false, src.Unread(window)
	}

	if len(window) <= len(urlCall)+1 {
		return reject()
	}
	// A quote can sit right in front: content:" - "url(star.gif)
	switch window[0] {
	case ' ', '\t', ':', '"':
	default:
		return reject()
	}
	if !slices.Equal(window[1:len(urlCall)+1], urlCall) {
		return reject()
	}

	argStart := len(urlCall) + 1
	for argStart < len(window) && strings.ContainsRune("\t'\"", window[argStart]) {
		argStart++
	}
	if argStart == len(window) {
		return reject()
	}

	arg := strings.ToLower(string(window[argStart:]))
	for _, prefix := range ignoredURLStart {
		if strings.HasPrefix(arg, prefix) {
			log.Debugf("Skipping url(%s...).", prefix)
			return reject()
		}
	}

	log.Debugf("Found url() call %q.", string(window))
	if err := src.Unread(window[argStart:]); err != nil {
		return "", false, err
	}
	return string(window[:argStart]), true, nil
}

// ScanToken reads up to the closing parenthesis. Trailing quotes belong
// to the terminator. A "#" means an SVG fragment; it is pushed back and
// the call is copied unchanged.
func (cssURL) ScanToken(src *PushbackReader) (string, string, bool, error) {
	var token strings.Builder
	for {
		c, _, err := src.ReadRune()
		if err == io.EOF {
			return token.String(), "", false, nil
		}
		if err != nil {
			return token.String(), "", false, err
		}
		switch c {
		case ')':
			raw := token.String()
			arg := strings.TrimRight(raw, "\t'\"")
			log.Debugf("Extracted url() argument %q.", arg)
			return arg, raw[len(arg):] + ")", true, nil
		case '#':
			return token.String(), "", false, src.Unread([]rune{c})
		}
		token.WriteRune(c)
	}
}

// Replacement keeps the separator and "url(" that preceded the argument.
// Quotes around the argument are dropped.
func (cssURL) Replacement(prefix, value string) string {
	head := []rune(prefix)[:len(urlCall)+1]
	return string(head) + value + ")"
}
