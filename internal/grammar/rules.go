package grammar

import (
	"strconv"
	"strings"

	"github.com/ghettovoice/abnf"

	"github.com/ghettovoice/uribuilder/internal/constraints"
)

func byteRange(key string, lo, hi byte) abnf.Operator {
	return abnf.Range(key, []byte{lo}, []byte{hi})
}

// int-literal = [ "+" / "-" ] ( %x31-39 *DIGIT / "0" )
var intLiteral = abnf.Concat(
	"int-literal",
	abnf.Optional("sign", abnf.AltFirst(
		"sign",
		abnf.Literal("plus", []byte("+")),
		abnf.Literal("minus", []byte("-")),
	)),
	abnf.AltFirst(
		"digits",
		abnf.Concat(
			"nonzero-digits",
			byteRange("DIGIT", '1', '9'),
			abnf.Repeat0Inf("DIGITS", byteRange("DIGIT", '0', '9')),
		),
		abnf.Literal("zero", []byte("0")),
	),
)

// IsURIShaped reports whether s starts with "scheme://authority".
// The rest of the input is not inspected.
func IsURIShaped[T constraints.Byteseq](s T) bool {
	_, _, ok := matchURIShaped(string(s))
	return ok
}

// matchURIShaped returns the scheme and the authority of the "scheme://authority" prefix of s.
// The scheme is one or more bytes other than ":/?#",
// the authority is one or more bytes other than "/?#".
func matchURIShaped(s string) (scheme, authority string, ok bool) {
	i := strings.Index(s, "://")
	if i <= 0 || strings.ContainsAny(s[:i], ":/?#") {
		return "", "", false
	}
	rest := s[i+len("://"):]
	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}
	if end == 0 {
		return "", "", false
	}
	return s[:i], rest[:end], true
}

// maxIntDigits is the number of digits of the longest int64 literal.
const maxIntDigits = 19

// IsIntLiteral reports whether the whole s is a canonical integer literal:
// an optional sign followed by "0" or by a non-zero digit and any digits.
// Literals with more digits than any int64 has are rejected without matching.
func IsIntLiteral[T constraints.Byteseq](s T) bool {
	if len(s) == 0 {
		return false
	}
	digits := len(s)
	if s[0] == '+' || s[0] == '-' {
		digits--
	}
	if digits > maxIntDigits {
		return false
	}

	ns := abnf.NewNodes()
	defer ns.Free()

	if err := intLiteral([]byte(s), 0, ns); err != nil {
		return false
	}
	return ns.Best().Len() == len(s)
}

// ParseInt converts an integer literal into int64.
// It reports false for text that is not an integer literal
// and for literals outside the int64 range.
func ParseInt[T constraints.Byteseq](s T) (int64, bool) {
	if !IsIntLiteral(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
