// Package ioutil contains writer helpers used by the renderers.
package ioutil

//go:generate go tool errtrace -w .

import (
	"fmt"
	"io"
	"sync"

	"braces.dev/errtrace"
)

// CountingWriter wraps an io.Writer, counts written bytes and remembers the first error.
// Once an error occurred every further write is a no-op, so renderers can chain writes
// and check the outcome once with [CountingWriter.Result].
type CountingWriter struct {
	w   io.Writer
	num int
	err error
}

// NewCountingWriter creates a new CountingWriter wrapping the given writer.
func NewCountingWriter(w io.Writer) *CountingWriter {
	return &CountingWriter{w: w}
}

func (cw *CountingWriter) track(n int, err error) (int, error) {
	cw.num += n
	if err != nil {
		cw.err = errtrace.Wrap(err)
	}
	return n, errtrace.Wrap(cw.err)
}

// Write implements io.Writer.
func (cw *CountingWriter) Write(p []byte) (n int, err error) {
	if cw.err != nil {
		return 0, errtrace.Wrap(cw.err)
	}
	return errtrace.Wrap2(cw.track(cw.w.Write(p)))
}

// WriteString writes every given string in order.
func (cw *CountingWriter) WriteString(ss ...string) (n int, err error) {
	for _, s := range ss {
		if cw.err != nil {
			return n, errtrace.Wrap(cw.err)
		}
		m, _ := cw.track(io.WriteString(cw.w, s))
		n += m
	}
	return n, errtrace.Wrap(cw.err)
}

// Fprint writes args formatted with the default formats.
func (cw *CountingWriter) Fprint(args ...any) (n int, err error) {
	if cw.err != nil {
		return 0, errtrace.Wrap(cw.err)
	}
	return errtrace.Wrap2(cw.track(fmt.Fprint(cw.w, args...)))
}

// Call executes a RenderTo-style function against the underlying writer.
func (cw *CountingWriter) Call(fn func(io.Writer) (int, error)) *CountingWriter {
	if cw.err != nil {
		return cw
	}
	cw.track(fn(cw.w)) //nolint:errcheck
	return cw
}

// Result returns the total number of bytes written and the first error encountered.
func (cw *CountingWriter) Result() (num int, err error) {
	return cw.num, errtrace.Wrap(cw.err)
}

// Count returns the total number of bytes written.
func (cw *CountingWriter) Count() int { return cw.num }

var cntWrtPool = &sync.Pool{
	New: func() any { return &CountingWriter{} },
}

func GetCountingWriter(w io.Writer) *CountingWriter {
	cw := cntWrtPool.Get().(*CountingWriter) //nolint:forcetypeassert
	cw.w = w
	return cw
}

func FreeCountingWriter(cw *CountingWriter) {
	cw.w = nil
	cw.num = 0
	cw.err = nil
	cntWrtPool.Put(cw)
}
