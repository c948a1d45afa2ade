// Package types contains the interfaces shared by the URI and query models
// together with generic type-check and equality helpers.
package types

import (
	"io"

	"github.com/google/go-cmp/cmp"
)

// Renderer is implemented by values that have a textual URI representation.
type Renderer interface {
	// Render renders the value to a string with the given options.
	Render(opts *RenderOptions) string
	// RenderTo renders the value to a writer with the given options.
	RenderTo(w io.Writer, opts *RenderOptions) (int, error)
}

// RenderOptions is passed to rendering methods.
type RenderOptions struct {
	// Compact omits optional parts that carry no information,
	// e.g. an explicit port equal to the scheme default.
	Compact bool `json:"compact,omitempty" yaml:"compact,omitempty"`
}

type Equalable interface {
	Equal(val any) bool
}

// IsEqual reports whether v1 and v2 are equal.
// Values implementing [Equalable] are compared with their own Equal method,
// everything else is compared with go-cmp.
func IsEqual(v1, v2 any) bool {
	if e, ok := v1.(Equalable); ok {
		return e.Equal(v2)
	}
	return cmp.Equal(v1, v2)
}

// Is reports whether v holds a value of type T.
func Is[T any](v any) bool {
	_, ok := v.(T)
	return ok
}
