package replacer

import (
	"bufio"
	"errors"
	"io"
	"unicode/utf8"
)

// ErrPushbackFull is returned when more runes are unread than the
// reader was sized for.
var ErrPushbackFull = errors.New("pushback buffer full")

// PushbackReader is a rune reader that can take back up to size runes.
// Unread runes are returned again in their original order.
type PushbackReader struct {
	src   io.RuneReader
	stack []rune
	size  int
}

func NewPushbackReader(r io.Reader, size int) *PushbackReader {
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	return &PushbackReader{src: rr, stack: make([]rune, 0, size), size: size}
}

func (p *PushbackReader) ReadRune() (rune, int, error) {
	if n := len(p.stack); n > 0 {
		c := p.stack[n-1]
		p.stack = p.stack[:n-1]
		return c, runeLen(c), nil
	}
	return p.src.ReadRune()
}

// ReadRunes reads up to n runes. It returns fewer only at the end of the
// input; io.EOF itself is not reported.
func (p *PushbackReader) ReadRunes(n int) ([]rune, error) {
	out := make([]rune, 0, n)
	for len(out) < n {
		c, _, err := p.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Unread pushes runes back so that runes[0] is read next.
func (p *PushbackReader) Unread(runes []rune) error {
	if len(p.stack)+len(runes) > p.size {
		return ErrPushbackFull
	}
	for i := len(runes) - 1; i >= 0; i-- {
		p.stack = append(p.stack, runes[i])
	}
	return nil
}

func runeLen(c rune) int {
	if n := utf8.RuneLen(c); n > 0 {
		return n
	}
	return 1
}
