package grammar

import (
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/uribuilder/internal/constraints"
)

// Components holds the raw substrings of a URI reference.
// Nothing is decoded here.
type Components struct {
	// Scheme is the text before "://" of an absolute URI.
	Scheme string
	// Authority is the raw "[userinfo@]host[:port]" of an absolute URI.
	Authority string
	// Lead is the leading token of a relative reference (text before the first "/"), e.g. ".".
	Lead string
	// Path is the raw path including its leading "/".
	Path string
	// Query is the raw query without the "?".
	Query string
	// Fragment is everything after the first "#".
	Fragment string

	Relative    bool
	HasQuery    bool
	HasFragment bool
}

// Split scans s into URI components.
//
// Delimiters are resolved with a fixed precedence so that no component can swallow
// another one: the first "#" starts the fragment, the first "?" before it starts the query,
// and only the remaining prefix is matched against "scheme://authority[path]"
// or against a relative reference starting with "." or "/".
func Split[T constraints.Byteseq](s T) (Components, error) {
	if len(s) == 0 {
		return Components{}, errtrace.Wrap(ErrEmptyInput)
	}

	var c Components
	rest := string(s)
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		c.Fragment, c.HasFragment = rest[i+1:], true
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		c.Query, c.HasQuery = rest[i+1:], true
		rest = rest[:i]
	}

	if scheme, auth, ok := matchURIShaped(rest); ok {
		c.Scheme, c.Authority = scheme, auth
		c.Path = rest[len(scheme)+len("://")+len(auth):]
		return c, nil
	}

	if rest == "" || (rest[0] != '.' && rest[0] != '/') {
		return Components{}, errtrace.Wrap(newMalformedInputErr("expected scheme://authority or a relative reference, got %q", string(s)))
	}

	c.Relative = true
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		c.Lead, c.Path = rest[:i], rest[i:]
	} else {
		c.Lead = rest
	}
	return c, nil
}

// SplitPath splits a raw path into segments.
// One leading "/" is dropped, every other "/" separates segments,
// so empty segments produced by "//" or a trailing "/" are kept.
// An empty path has no segments.
func SplitPath(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}
