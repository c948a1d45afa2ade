package grammar

import (
	"bytes"

	"github.com/ghettovoice/uribuilder/internal/constraints"
)

// Unescape converts each "%" HEXDIG HEXDIG triplet of s into the byte it encodes.
// Malformed triplets are kept as is.
func Unescape[T constraints.Byteseq](s T) T {
	if len(s) == 0 || bytes.IndexByte([]byte(s), '%') < 0 {
		return s
	}

	var b bytes.Buffer
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && ishex(s[i+1]) && ishex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		} else {
			b.WriteByte(s[i])
		}
	}
	return T(b.Bytes())
}

// Escape replaces each byte matched by shouldEscape with its "%" HEXDIG HEXDIG form.
// Upper-case hex digits are used.
//
// Unlike escaping helpers that keep already escaped triplets, every "%" is escaped
// (unless shouldEscape allows it), so Unescape(Escape(s)) == s for any s.
// If shouldEscape is nil, every byte except the unreserved ones is escaped.
func Escape[T constraints.Byteseq](s T, shouldEscape func(c byte) bool) T {
	if len(s) == 0 {
		return s
	}
	if shouldEscape == nil {
		shouldEscape = func(c byte) bool { return !IsCharUnreserved(c) }
	}

	var b bytes.Buffer
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			b.WriteByte('%')
			b.WriteByte(upperhex[s[i]>>4])
			b.WriteByte(upperhex[s[i]&15])
		} else {
			b.WriteByte(s[i])
		}
	}
	return T(b.Bytes())
}

const upperhex = "0123456789ABCDEF"

func ishex(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// IsAlphanumChar checks alphanum rule.
func IsAlphanumChar(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

var unreservedChars = [256]bool{
	'-': true, '_': true, '.': true, '!': true, '~': true,
	'*': true, '\'': true, '(': true, ')': true,
}

// IsCharUnreserved checks on unreserved rule.
// The set matches the one of ECMAScript encodeURIComponent.
func IsCharUnreserved(c byte) bool {
	return unreservedChars[c] || IsAlphanumChar(c)
}

var userUnreservedChars = [256]bool{
	'&': true, '=': true, '+': true, '$': true, ',': true, ';': true,
}

// IsUserCharUnreserved checks on user-unreserved rule.
// "/", "?", "#", ":" and "@" are excluded so the user never breaks the authority.
func IsUserCharUnreserved(c byte) bool {
	return userUnreservedChars[c] || IsCharUnreserved(c)
}

// IsPasswdCharUnreserved checks on password-unreserved rule.
// The password is split off the user at the first ":", so it may contain more of them.
func IsPasswdCharUnreserved(c byte) bool {
	return c == ':' || IsUserCharUnreserved(c)
}

// IsQueryCharUnreserved reports whether c may stay unescaped in a query name or value.
// "=", "&", "#", "+" and "%" are always escaped.
func IsQueryCharUnreserved(c byte) bool { return IsCharUnreserved(c) }
