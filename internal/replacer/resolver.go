// Package replacer rewrites references inside a character stream while it
// is being read. A Reader finds tokens with a Matcher, asks a
// TokenResolver for their replacement and emits everything else as is.
package replacer

// Resolution is the outcome of resolving one token. A token that could
// not be resolved is not an error: it is written back unchanged.
type Resolution struct {
	Value    string
	Resolved bool
}

// Unresolved leaves the token as it was found.
var Unresolved = Resolution{}

// Found returns a Resolution that replaces the token with value. An
// empty value removes the token.
func Found(value string) Resolution {
	return Resolution{Value: value, Resolved: true}
}

// TokenResolver maps a token to its replacement. The error return is
// reserved for I/O failures; a missing target is Unresolved.
type TokenResolver interface {
	ResolveToken(token string) (Resolution, error)
}

// ResolverFunc adapts a function to TokenResolver.
type ResolverFunc func(token string) (Resolution, error)

func (f ResolverFunc) ResolveToken(token string) (Resolution, error) {
	return f(token)
}
