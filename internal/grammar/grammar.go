// Package grammar implements the lexical rules of URI references:
// the coarse URI shape, integer literals, the component scanner and percent-encoding.
package grammar

//go:generate go tool errtrace -w .

import (
	"github.com/ghettovoice/abnf"

	"github.com/ghettovoice/uribuilder/internal/errorutil"
)

func init() {
	abnf.EnableNodeCache(1024)
}

// Error is a grammar sentinel error.
type Error string

func (e Error) Error() string { return string(e) }

// Grammar marks the error as a grammar error, see [errorutil.IsGrammarErr].
func (Error) Grammar() bool { return true }

const (
	ErrEmptyInput     Error = "empty input"
	ErrMalformedInput Error = "malformed input"
)

func newMalformedInputErr(args ...any) error {
	return errorutil.NewWrapperError(ErrMalformedInput, args...) //errtrace:skip
}
