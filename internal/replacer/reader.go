package replacer

import (
	"fmt"
	"io"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

// Matcher recognizes tokens in a stream. The Reader drives it and owns
// the state between calls.
type Matcher interface {
	// Lookahead is the number of runes the matcher may read and unread
	// again.
	Lookahead() int

	// MatchStart tries to read the start of a token. On success it
	// returns the consumed prefix. Otherwise everything it read must be
	// pushed back.
	MatchStart(src *PushbackReader) (prefix string, ok bool, err error)

	// ScanToken reads the token body and its terminator. When the input
	// ends or the token turns out to be invalid it reports !ok, and the
	// prefix and body are replayed as literal text.
	ScanToken(src *PushbackReader) (token, end string, ok bool, err error)

	// Replacement builds the text that replaces a resolved token.
	Replacement(prefix, value string) string
}

type state int

const (
	stateIdle state = iota
	stateScanning
	stateResolving
	stateReplaying
)

// Reader substitutes resolved tokens while text is read through it.
// Unresolved tokens come out exactly as they went in. A resolver error
// stops the reader and is returned by every later call.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src      *PushbackReader
	matcher  Matcher
	resolver TokenResolver

	state  state
	prefix string
	token  string
	end    string
	replay []rune

	pending []byte
	err     error
}

func NewReader(r io.Reader, m Matcher, resolver TokenResolver) *Reader {
	return &Reader{
		src:      NewPushbackReader(r, m.Lookahead()),
		matcher:  m,
		resolver: resolver,
	}
}

func (r *Reader) ReadRune() (rune, int, error) {
	if r.err != nil {
		return 0, 0, r.err
	}
	for {
		switch r.state {
		case stateReplaying:
			if len(r.replay) > 0 {
				c := r.replay[0]
				r.replay = r.replay[1:]
				return c, runeLen(c), nil
			}
			r.state = stateIdle

		case stateIdle:
			prefix, ok, err := r.matcher.MatchStart(r.src)
			if err != nil {
				return r.fail(err)
			}
			if !ok {
				c, size, err := r.src.ReadRune()
				if err != nil {
					return r.fail(err)
				}
				return c, size, nil
			}
			r.prefix = prefix
			r.state = stateScanning

		case stateScanning:
			token, end, ok, err := r.matcher.ScanToken(r.src)
			if err != nil {
				return r.fail(err)
			}
			r.token, r.end = token, end
			if !ok {
				log.Debugf("Unterminated token %q%s, copying it as is.", r.prefix, token)
				r.replay = []rune(r.prefix + token)
				r.state = stateReplaying
				continue
			}
			r.state = stateResolving

		case stateResolving:
			res, err := r.resolver.ResolveToken(r.token)
			if err != nil {
				return r.fail(fmt.Errorf("resolving token %q: %w", r.token, err))
			}
			if res.Resolved {
				r.replay = []rune(r.matcher.Replacement(r.prefix, res.Value))
			} else {
				r.replay = []rune(r.prefix + r.token + r.end)
			}
			r.state = stateReplaying
		}
	}
}

func (r *Reader) fail(err error) (rune, int, error) {
	r.err = err
	return 0, 0, err
}

// Read implements io.Reader on top of ReadRune.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.pending) > 0 {
			c := copy(p[n:], r.pending)
			r.pending = r.pending[c:]
			n += c
			continue
		}
		c, _, err := r.ReadRune()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		var buf [utf8.UTFMax]byte
		w := utf8.EncodeRune(buf[:], c)
		copied := copy(p[n:], buf[:w])
		n += copied
		if copied < w {
			r.pending = append(r.pending[:0], buf[copied:w]...)
		}
	}
	return n, nil
}
