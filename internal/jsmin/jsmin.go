// Package jsmin compresses JavaScript with the tdewolff minifier, driven
// by compilation levels named after the Closure Compiler ones.
package jsmin

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"
)

const mediaType = "application/javascript"

// UseStrict is the directive written in front of the output when
// Options.UseStrict is set.
const UseStrict = "'use strict';"

var (
	// ErrUnknownLevel is returned by ParseLevel for unsupported level names.
	ErrUnknownLevel = errors.New("unknown compilation level")

	// ErrUnknownLanguage is returned by ParseLanguage for unsupported
	// language modes.
	ErrUnknownLanguage = errors.New("unknown language mode")
)

type Level int

const (
	// WhitespaceOnly strips whitespace and comments but keeps identifiers.
	WhitespaceOnly Level = iota
	// Simple also renames local variables.
	Simple
	// Advanced is accepted for compatibility and compresses like Simple.
	Advanced
)

var levelNames = map[Level]string{
	WhitespaceOnly: "WHITESPACE_ONLY",
	Simple:         "SIMPLE_OPTIMIZATIONS",
	Advanced:       "ADVANCED_OPTIMIZATIONS",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel parses a level name case-insensitively. The empty string is
// Simple.
func ParseLevel(name string) (Level, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return Simple, nil
	}
	for level, n := range levelNames {
		if n == name {
			return level, nil
		}
	}
	return Simple, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
}

// Language is the newest ECMAScript edition the output may use, as a
// year from 2015 on or 3 and 5 for the older editions. Latest puts no
// limit on it.
type Language int

const Latest Language = 0

// NoTranspile is the language mode name of Latest.
const NoTranspile = "NO_TRANSPILE"

var editionRe = regexp.MustCompile(`^ECMASCRIPT_?([0-9]+)(?:_STRICT|_TYPED)?$`)

func (l Language) String() string {
	switch {
	case l == Latest:
		return NoTranspile
	case l < 2015:
		return "ECMASCRIPT" + strconv.Itoa(int(l))
	}
	return "ECMASCRIPT_" + strconv.Itoa(int(l))
}

// ParseLanguage parses a language mode such as ECMASCRIPT5 or
// ECMASCRIPT_2017. NO_TRANSPILE, ECMASCRIPT_NEXT, STABLE and the empty
// string are Latest.
func ParseLanguage(name string) (Language, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	switch name {
	case "", NoTranspile, "ECMASCRIPT_NEXT", "STABLE":
		return Latest, nil
	}
	m := editionRe.FindStringSubmatch(name)
	if m == nil {
		return Latest, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	edition, err := strconv.Atoi(m[1])
	if err != nil {
		return Latest, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	switch {
	case edition == 3 || edition == 5:
		return Language(edition), nil
	case edition == 6:
		return 2015, nil
	case edition >= 2015:
		return Language(edition), nil
	}
	return Latest, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
}

type Options struct {
	Level     Level
	UseStrict bool
	// LanguageOut keeps the minifier from rewriting code into syntax
	// newer than this edition.
	LanguageOut Language
}

// Minifier compresses scripts. It is safe for concurrent use.
type Minifier struct {
	opts Options
	m    *minify.M
}

func New(opts Options) *Minifier {
	if opts.Level == Advanced {
		log.Debugf("%s compresses like %s.", Advanced, Simple)
	}
	m := minify.New()
	m.Add(mediaType, &js.Minifier{
		KeepVarNames: opts.Level == WhitespaceOnly,
		Version:      int(opts.LanguageOut),
	})
	return &Minifier{opts: opts, m: m}
}

// Minify reads a script from r and writes the compressed script to w.
func (j *Minifier) Minify(w io.Writer, r io.Reader) error {
	if j.opts.UseStrict {
		if _, err := io.WriteString(w, UseStrict); err != nil {
			return fmt.Errorf("writing script: %w", err)
		}
	}
	if err := j.m.Minify(mediaType, w, r); err != nil {
		return fmt.Errorf("minifying script: %w", err)
	}
	return nil
}
